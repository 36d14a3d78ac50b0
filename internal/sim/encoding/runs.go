package encoding

import (
	"encoding/binary"
	"fmt"
	"sort"
)

// EncodeIndexRuns appends a sorted index list as uvarint pairs (gap, run):
// gap is the distance from the end of the previous run, run the number of
// consecutive indices. The pair count is written first.
func EncodeIndexRuns(dst []byte, idx []uint16) []byte {
	sorted := idx
	if !sort.SliceIsSorted(idx, func(i, j int) bool { return idx[i] < idx[j] }) {
		sorted = append([]uint16(nil), idx...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	}

	type run struct{ start, n int }
	var runs []run
	for i := 0; i < len(sorted); {
		j := i + 1
		for j < len(sorted) && int(sorted[j]) == int(sorted[j-1])+1 {
			j++
		}
		runs = append(runs, run{int(sorted[i]), j - i})
		i = j
	}

	dst = binary.AppendUvarint(dst, uint64(len(runs)))
	end := 0
	for _, r := range runs {
		dst = binary.AppendUvarint(dst, uint64(r.start-end))
		dst = binary.AppendUvarint(dst, uint64(r.n))
		end = r.start + r.n
	}
	return dst
}

// DecodeIndexRuns reads one list written by EncodeIndexRuns and returns the
// indices plus the number of bytes consumed. Indices at or above limit are
// rejected.
func DecodeIndexRuns(src []byte, limit int) ([]uint16, int, error) {
	off := 0
	readUvarint := func() (uint64, error) {
		v, n := binary.Uvarint(src[off:])
		if n <= 0 {
			return 0, fmt.Errorf("%w at %d", ErrShortBuffer, off)
		}
		off += n
		return v, nil
	}
	count, err := readUvarint()
	if err != nil {
		return nil, off, err
	}
	if count > uint64(limit) {
		return nil, off, fmt.Errorf("%w: %d runs", ErrBadIndex, count)
	}
	var out []uint16
	end := uint64(0)
	for k := uint64(0); k < count; k++ {
		gap, err := readUvarint()
		if err != nil {
			return nil, off, err
		}
		n, err := readUvarint()
		if err != nil {
			return nil, off, err
		}
		start := end + gap
		if gap > uint64(limit) || n > uint64(limit) || start+n > uint64(limit) {
			return nil, off, fmt.Errorf("%w: run %d+%d", ErrBadIndex, start, n)
		}
		for i := start; i < start+n; i++ {
			out = append(out, uint16(i))
		}
		end = start + n
	}
	return out, off, nil
}
