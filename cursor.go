package propstore

import "iter"

var _ iCursor[NodeKind] = &Cursor[NodeKind]{}

// Cursor walks the live rows of a collection. The collection is locked from
// the first Next until the walk is exhausted or Reset, so deletes and
// compaction requested meanwhile must go through the Enqueue variants.
type Cursor[K Kind] struct {
	collection *Collection[K]

	// 1-based position of the current row, 0 before the first Next
	rowIndex  int
	remaining int

	initialized bool
	err         error
}

func newCursor[K Kind](c *Collection[K]) *Cursor[K] {
	return &Cursor[K]{collection: c}
}

func (c *Cursor[K]) Next() bool {
	if !c.initialized {
		c.initialize()
	}
	deleted := c.collection.deleted.arr.data
	// Rows dropped from under the walk end it early.
	for c.rowIndex < c.remaining && c.rowIndex < len(deleted) {
		c.rowIndex++
		if !deleted[c.rowIndex-1] {
			return true
		}
	}
	c.Reset()
	return false
}

// Handles walks every live row, yielding a running count and the handle.
func (c *Cursor[K]) Handles() iter.Seq2[int, Handle[K]] {
	return func(yield func(int, Handle[K]) bool) {
		n := 0
		for c.Next() {
			if !yield(n, c.Handle()) {
				c.Reset()
				return
			}
			n++
		}
	}
}

func (c *Cursor[K]) initialize() {
	c.collection.acquireCursor()
	c.rowIndex = 0
	c.remaining = c.collection.Len()
	c.err = nil
	c.initialized = true
}

// Handle returns the row the cursor stands on.
func (c *Cursor[K]) Handle() Handle[K] {
	if c.rowIndex == 0 {
		return Handle[K]{}
	}
	return c.collection.container.handle(c.rowIndex - 1)
}

// Reset ends the walk and releases the cursor's lock, running any queued
// operations if no other lock remains.
func (c *Cursor[K]) Reset() {
	if !c.initialized {
		return
	}
	c.rowIndex = 0
	c.remaining = 0
	c.initialized = false
	c.err = c.collection.releaseCursor()
}

// Err reports the failure of queued operations run when the walk ended.
func (c *Cursor[K]) Err() error {
	return c.err
}

// Remaining is the number of rows, deleted ones included, not yet visited.
func (c *Cursor[K]) Remaining() int {
	return c.remaining - c.rowIndex
}
