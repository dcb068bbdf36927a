package propstore

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/TheBitDrifter/mask"
)

// MaxLockBits is the number of distinct lock bits a collection accepts.
const MaxLockBits = 64

const (
	mainLockBit   uint32 = 0
	cursorLockBit uint32 = 1
)

var allLockBits mask.Mask

func init() {
	for bit := uint32(0); bit < MaxLockBits; bit++ {
		allLockBits.Mark(bit)
	}
}

// Collection is a container with deferred row deletion. Deleting only flags
// a row; GarbageCollection is the only operation that moves rows.
type Collection[K Kind] struct {
	container *Container[K]
	deleted   Property[K, bool]
	nDeleted  int
	hooks     CollectionHooks[K]
	locks     mask.Mask
	cursors   int
	opQueue   opQueue

	// onUnlock runs after the queue whenever the last lock is removed
	onUnlock func() error
}

func newCollection[K Kind](hooks CollectionHooks[K]) *Collection[K] {
	c := &Collection[K]{
		container: newContainer[K](),
		hooks:     hooks,
		opQueue:   newOpQueue(),
	}
	c.deleted = addBuiltin(c.container, columnName[K]("deleted"), false)
	return c
}

// addBuiltin registers a column the owning structure depends on and pins it.
func addBuiltin[T any, K Kind](c *Container[K], name string, def T) Property[K, T] {
	p := AddProperty(c, name, def)
	c.pin(name)
	return p
}

// Container exposes the underlying columns, e.g. to register custom
// properties.
func (c *Collection[K]) Container() *Container[K] {
	return c.container
}

func (c *Collection[K]) Len() int {
	return c.container.size
}

func (c *Collection[K]) DeletedCount() int {
	return c.nDeleted
}

func (c *Collection[K]) LiveCount() int {
	return c.container.size - c.nDeleted
}

func (c *Collection[K]) HasGarbage() bool {
	return c.nDeleted > 0
}

func (c *Collection[K]) Columns() []string {
	return c.container.Names()
}

// New appends a row holding every column's default.
func (c *Collection[K]) New() Handle[K] {
	return c.container.handle(c.container.PushBack())
}

// Reserve grows capacity of every column to at least n rows.
func (c *Collection[K]) Reserve(n int) {
	c.container.Reserve(n)
}

func (c *Collection[K]) Check(h Handle[K]) error {
	return c.container.Check(h)
}

// CheckLive validates h and additionally rejects deleted rows.
func (c *Collection[K]) CheckLive(h Handle[K]) error {
	if err := c.container.Check(h); err != nil {
		return err
	}
	if c.deleted.get(h) {
		var k K
		return InvalidHandleError{Kind: "deleted " + k.Label()}
	}
	return nil
}

func (c *Collection[K]) IsDeleted(h Handle[K]) (bool, error) {
	return c.deleted.Get(h)
}

// Delete flags the row behind h. Deleting an already deleted row is a no-op.
func (c *Collection[K]) Delete(h Handle[K]) error {
	if c.Locked() {
		return LockedError{}
	}
	if err := c.container.Check(h); err != nil {
		return err
	}
	c.deleteRow(h)
	return nil
}

// deleteRow routes a delete through the specialization's hook, if any.
func (c *Collection[K]) deleteRow(h Handle[K]) {
	if c.hooks.Delete != nil {
		c.hooks.Delete(h)
		return
	}
	c.markDeleted(h.Index())
}

func (c *Collection[K]) markDeleted(i int) {
	if c.deleted.arr.data[i] {
		return
	}
	c.deleted.arr.data[i] = true
	c.nDeleted++
}

// DeleteRows flags every row in rows. Nothing is flagged if any row is out
// of range.
func (c *Collection[K]) DeleteRows(rows *roaring.Bitmap) error {
	if c.Locked() {
		return LockedError{}
	}
	if rows == nil || rows.IsEmpty() {
		return nil
	}
	if last := int(rows.Maximum()); last >= c.container.size {
		return IndexOutOfRangeError{Index: last, Size: c.container.size}
	}
	it := rows.Iterator()
	for it.HasNext() {
		c.deleteRow(c.container.handle(int(it.Next())))
	}
	return nil
}

// DeletedRows snapshots the indices of every flagged row.
func (c *Collection[K]) DeletedRows() *roaring.Bitmap {
	rows := roaring.New()
	for i, d := range c.deleted.arr.data {
		if d {
			rows.Add(uint32(i))
		}
	}
	return rows
}

// All iterates every row including deleted ones.
func (c *Collection[K]) All() iter.Seq[Handle[K]] {
	return func(yield func(Handle[K]) bool) {
		for i := 0; i < c.container.size; i++ {
			if !yield(c.container.handle(i)) {
				return
			}
		}
	}
}

// Live iterates rows that are not flagged deleted.
func (c *Collection[K]) Live() iter.Seq[Handle[K]] {
	return func(yield func(Handle[K]) bool) {
		for i := 0; i < c.container.size; i++ {
			if c.deleted.arr.data[i] {
				continue
			}
			if !yield(c.container.handle(i)) {
				return
			}
		}
	}
}

// GarbageCollection physically removes every flagged row. Row indices move
// and every previously issued handle becomes stale.
func (c *Collection[K]) GarbageCollection() error {
	if c.Locked() {
		return LockedError{}
	}
	c.collectGarbage()
	return nil
}

func (c *Collection[K]) collectGarbage() {
	if c.nDeleted == 0 {
		return
	}
	var k K
	before := c.container.size
	if fn := Config.compactionEvents.OnBeforeCompact; fn != nil {
		fn(k.Label(), before, c.nDeleted)
	}

	size, table := partition(c.deleted.arr.data, func(i, j int) {
		c.container.swap(i, j)
		if c.hooks.Swap != nil {
			c.hooks.Swap(i, j)
		}
	})
	c.container.advanceEpoch()
	if c.hooks.Patch != nil {
		c.hooks.Patch(Remap[K]{table: table, size: size, gen: c.container.epoch})
	}

	c.container.Resize(size)
	c.container.FreeMemory()
	if c.hooks.Resize != nil {
		c.hooks.Resize(size)
	}
	c.nDeleted = 0

	if fn := Config.compactionEvents.OnAfterCompact; fn != nil {
		fn(k.Label(), size, c.container.epoch)
	}
	Config.logger.LogCompaction(k.Label(), before, size, c.container.epoch)
}

// EnqueueDelete deletes h now, or once the collection is unlocked.
func (c *Collection[K]) EnqueueDelete(h Handle[K]) error {
	if !c.Locked() {
		return c.Delete(h)
	}
	if err := c.container.Check(h); err != nil {
		return err
	}
	c.opQueue.enqueueDelete(h.id, func() error {
		c.deleteRow(h)
		return nil
	})
	return nil
}

// EnqueueGarbageCollection compacts now, or after the last lock is removed.
func (c *Collection[K]) EnqueueGarbageCollection() error {
	if !c.Locked() {
		return c.GarbageCollection()
	}
	c.opQueue.enqueueCollect()
	return nil
}

// enqueue defers a specialization's delete of h while locked.
func (c *Collection[K]) enqueue(h Handle[K], run func() error) {
	c.opQueue.enqueueDelete(h.id, run)
}

func (c *Collection[K]) Locked() bool {
	return !c.locks.ContainsNone(allLockBits)
}

// AddLock holds bit. Lock bits are independent; the collection stays locked
// until all of them are removed.
func (c *Collection[K]) AddLock(bit uint32) error {
	if bit >= MaxLockBits {
		return LockBitRangeError{Bit: bit}
	}
	c.locks.Mark(bit)
	return nil
}

// RemoveLock releases bit and runs queued operations once no lock is held.
func (c *Collection[K]) RemoveLock(bit uint32) error {
	if bit >= MaxLockBits {
		return LockBitRangeError{Bit: bit}
	}
	var held mask.Mask
	held.Mark(bit)
	if !c.locks.ContainsAll(held) {
		return LockNotHeldError{Bit: bit}
	}
	c.locks.Unmark(bit)
	if c.Locked() {
		return nil
	}
	return c.processOperationQueue()
}

// Lock holds the main lock bit.
func (c *Collection[K]) Lock() {
	c.locks.Mark(mainLockBit)
}

// Unlock releases the main lock bit and runs queued operations if nothing
// else holds the collection.
func (c *Collection[K]) Unlock() error {
	return c.RemoveLock(mainLockBit)
}

func (c *Collection[K]) acquireCursor() {
	if c.cursors == 0 {
		c.locks.Mark(cursorLockBit)
	}
	c.cursors++
}

func (c *Collection[K]) releaseCursor() error {
	if c.cursors == 0 {
		return nil
	}
	c.cursors--
	if c.cursors > 0 {
		return nil
	}
	return c.RemoveLock(cursorLockBit)
}

// Clear drops every row but keeps the registered columns. It is refused
// while the collection is locked, since lock holders still walk its rows.
func (c *Collection[K]) Clear() error {
	if c.Locked() {
		return LockedError{}
	}
	c.container.Resize(0)
	c.container.FreeMemory()
	c.container.advanceEpoch()
	if c.hooks.Resize != nil {
		c.hooks.Resize(0)
	}
	c.nDeleted = 0
	c.opQueue.reset()
	return nil
}

// clone deep-copies rows and deletion state. Locks and queued work are not
// carried over.
func (c *Collection[K]) clone(hooks CollectionHooks[K]) *Collection[K] {
	container := c.container.Clone()
	return &Collection[K]{
		container: container,
		deleted:   GetProperty[bool](container, c.deleted.Name()),
		nDeleted:  c.nDeleted,
		hooks:     hooks,
		opQueue:   newOpQueue(),
	}
}
