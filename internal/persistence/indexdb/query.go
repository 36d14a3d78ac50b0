package indexdb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
)

type Summary struct {
	Chunks      int
	Edits       int
	NonAir      int64
	LastEditSeq int64
}

type ActorCount struct {
	Actor string
	Edits int
}

type EditRow struct {
	Seq    int64
	Time   string
	Actor  string
	Action string
	Pos    [3]int32
	From   int64
	To     int64
}

// OpenReadOnly opens an existing index for queries without starting a writer.
func OpenReadOnly(path string) (*sql.DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return sql.Open("sqlite", "file:"+path+"?mode=ro")
}

func QuerySummary(ctx context.Context, db *sql.DB) (Summary, error) {
	var s Summary
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(non_air),0) FROM chunks`).Scan(&s.Chunks, &s.NonAir); err != nil {
		return s, fmt.Errorf("chunks: %w", err)
	}
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(MAX(seq),0) FROM edits`).Scan(&s.Edits, &s.LastEditSeq); err != nil {
		return s, fmt.Errorf("edits: %w", err)
	}
	return s, nil
}

func QueryTopEditors(ctx context.Context, db *sql.DB, limit int) ([]ActorCount, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := db.QueryContext(ctx, `SELECT actor, COUNT(*) AS n FROM edits GROUP BY actor ORDER BY n DESC, actor ASC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ActorCount
	for rows.Next() {
		var a ActorCount
		if err := rows.Scan(&a.Actor, &a.Edits); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// QueryEditsAt lists edits of one block column, oldest first.
func QueryEditsAt(ctx context.Context, db *sql.DB, x, z int32) ([]EditRow, error) {
	rows, err := db.QueryContext(ctx, `SELECT seq,time,actor,action,x,y,z,from_block,to_block FROM edits WHERE x=? AND z=? ORDER BY seq ASC`, x, z)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []EditRow
	for rows.Next() {
		var e EditRow
		if err := rows.Scan(&e.Seq, &e.Time, &e.Actor, &e.Action, &e.Pos[0], &e.Pos[1], &e.Pos[2], &e.From, &e.To); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
