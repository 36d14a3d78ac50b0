package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"voxelgrid.ai/internal/persistence/indexdb"
	persistlog "voxelgrid.ai/internal/persistence/log"
)

func statsCmd(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	wf := addWorldFlags(fs)
	limit := fs.Int("limit", 10, "result limit for editors")
	_ = fs.Parse(args)

	q := "summary"
	if fs.NArg() > 0 {
		q = strings.TrimSpace(fs.Arg(0))
	}
	env, err := wf.load()
	if err != nil {
		fail("config", err)
	}
	db, err := indexdb.OpenReadOnly(env.path(env.tune.Storage.IndexDB))
	if err != nil {
		fail("open index", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch q {
	case "summary":
		s, err := indexdb.QuerySummary(ctx, db)
		if err != nil {
			fail("query", err)
		}
		printJSON(s)
	case "editors":
		rows, err := indexdb.QueryTopEditors(ctx, db, *limit)
		if err != nil {
			fail("query", err)
		}
		printJSON(rows)
	case "at":
		if fs.NArg() < 2 {
			fmt.Fprintln(os.Stderr, "usage: admin stats at x,z")
			os.Exit(2)
		}
		xz, err := parseInts(fs.Arg(1), 2)
		if err != nil {
			fail("position", err)
		}
		rows, err := indexdb.QueryEditsAt(ctx, db, int32(xz[0]), int32(xz[1]))
		if err != nil {
			fail("query", err)
		}
		printJSON(rows)
	default:
		fmt.Fprintln(os.Stderr, "unknown stats query:", q)
		os.Exit(2)
	}
}

func editsCmd(args []string) {
	fs := flag.NewFlagSet("edits", flag.ExitOnError)
	wf := addWorldFlags(fs)
	actor := fs.String("actor", "", "only edits by this player")
	limit := fs.Int("limit", 50, "print at most the newest n edits (0 = all)")
	_ = fs.Parse(args)

	env, err := wf.load()
	if err != nil {
		fail("config", err)
	}
	files, err := persistlog.EditFiles(env.path(env.tune.Storage.AuditDir))
	if err != nil {
		fail("list edits", err)
	}
	var n int
	var lines []string
	for _, f := range files {
		entries, err := persistlog.ReadEdits(f)
		if err != nil {
			fail("read edits", err)
		}
		for _, e := range entries {
			if *actor != "" && e.Actor != *actor {
				continue
			}
			n++
			lines = append(lines, fmt.Sprintf("%d %s %s %s %d,%d,%d %d->%d",
				e.Seq, e.Time, e.Actor, e.Action, e.Pos[0], e.Pos[1], e.Pos[2], e.From, e.To))
		}
	}
	if *limit > 0 && len(lines) > *limit {
		lines = lines[len(lines)-*limit:]
	}
	for _, l := range lines {
		fmt.Println(l)
	}
	fmt.Fprintf(os.Stderr, "%d edits in %d files\n", n, len(files))
}
