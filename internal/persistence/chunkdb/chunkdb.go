// Package chunkdb keeps the authoritative copy of every edited or generated
// chunk in a leveldb directory. Values are wire-encoded chunks.
package chunkdb

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/df-mc/goleveldb/leveldb"
	"github.com/df-mc/goleveldb/leveldb/opt"

	"voxelgrid.ai/internal/sim/world/logic/mathx"
)

type DB struct {
	ldb *leveldb.DB
}

// Open creates the directory when missing. Payloads are already deflated so
// leveldb block compression is turned off.
func Open(dir string) (*DB, error) {
	if dir == "" {
		return nil, fmt.Errorf("chunkdb: empty path")
	}
	ldb, err := leveldb.OpenFile(dir, &opt.Options{Compression: opt.NoCompression})
	if err != nil {
		return nil, fmt.Errorf("chunkdb: open %s: %w", dir, err)
	}
	return &DB{ldb: ldb}, nil
}

// Key is the 8-byte big-endian XZ index of a chunk.
func Key(cx, cz int32) []byte {
	var k [8]byte
	binary.BigEndian.PutUint64(k[:], mathx.XZToIndex(cx, cz))
	return k[:]
}

func (d *DB) Put(cx, cz int32, data []byte) error {
	return d.ldb.Put(Key(cx, cz), data, nil)
}

// Get returns ok=false when the chunk was never stored.
func (d *DB) Get(cx, cz int32) ([]byte, bool, error) {
	v, err := d.ldb.Get(Key(cx, cz), nil)
	switch {
	case errors.Is(err, leveldb.ErrNotFound):
		return nil, false, nil
	case err != nil:
		return nil, false, err
	}
	return v, true, nil
}

// PutBatch writes all entries atomically.
func (d *DB) PutBatch(entries map[uint64][]byte) error {
	if len(entries) == 0 {
		return nil
	}
	b := new(leveldb.Batch)
	var k [8]byte
	for idx, data := range entries {
		binary.BigEndian.PutUint64(k[:], idx)
		b.Put(k[:], data)
	}
	return d.ldb.Write(b, nil)
}

func (d *DB) Delete(cx, cz int32) error {
	return d.ldb.Delete(Key(cx, cz), nil)
}

// ForEach visits stored chunks in key order. The value slice is only valid
// during the callback. Returning an error stops the walk.
func (d *DB) ForEach(fn func(index uint64, data []byte) error) error {
	it := d.ldb.NewIterator(nil, nil)
	defer it.Release()
	for it.Next() {
		k := it.Key()
		if len(k) != 8 {
			continue
		}
		if err := fn(binary.BigEndian.Uint64(k), it.Value()); err != nil {
			return err
		}
	}
	return it.Error()
}

func (d *DB) Count() (int, error) {
	n := 0
	err := d.ForEach(func(uint64, []byte) error { n++; return nil })
	return n, err
}

func (d *DB) Close() error { return d.ldb.Close() }
