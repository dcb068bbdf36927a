package propstore

import "math"

const removedRow = math.MaxUint32

// Remap translates pre-compaction row indices of one collection into
// handles valid after it.
type Remap[K Kind] struct {
	table []uint32
	size  int
	gen   uint32
}

// Map returns the post-compaction handle for h, or the invalid handle if h
// was invalid or its row was removed.
func (r Remap[K]) Map(h Handle[K]) Handle[K] {
	if !h.Valid() {
		return Handle[K]{}
	}
	idx, ok := r.MapIndex(h.Index())
	if !ok {
		return Handle[K]{}
	}
	return newHandle[K](idx, r.gen)
}

// MapIndex returns the new index of the row that lived at old.
func (r Remap[K]) MapIndex(old int) (int, bool) {
	if old < 0 || old >= len(r.table) {
		return -1, false
	}
	m := r.table[old]
	if m == removedRow {
		return -1, false
	}
	return int(m), true
}

// Len is the number of surviving rows.
func (r Remap[K]) Len() int {
	return r.size
}

// Generation is the generation handles produced by Map carry.
func (r Remap[K]) Generation() uint32 {
	return r.gen
}

// partition moves every live row in front of every deleted row with the
// fewest swaps: a low cursor stops on deleted rows, a high cursor stops on
// live rows, and the two are exchanged until they meet. deleted must be the
// deleted column's own backing slice so swap keeps it current.
func partition(deleted []bool, swap func(i, j int)) (int, []uint32) {
	n := len(deleted)
	table := make([]uint32, n)
	for i := range table {
		table[i] = uint32(i)
	}
	if n == 0 {
		return 0, table
	}

	i0, i1 := 0, n-1
	for {
		for !deleted[i0] && i0 < i1 {
			i0++
		}
		for deleted[i1] && i0 < i1 {
			i1--
		}
		if i0 >= i1 {
			break
		}
		swap(i0, i1)
		table[i1] = uint32(i0)
		table[i0] = removedRow
	}

	size := i0 + 1
	if deleted[i0] {
		size = i0
	}
	// Rows past the cut that never moved were deleted in place.
	for i := size; i < n; i++ {
		if table[i] == uint32(i) {
			table[i] = removedRow
		}
	}
	return size, table
}
