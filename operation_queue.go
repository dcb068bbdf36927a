package propstore

import "fmt"

type operation struct {
	row uint32
	run func() error
}

// opQueue holds work deferred while a collection is locked. Deletes run in
// enqueue order, compaction always runs last so that queued handles are
// still valid when their deletes execute.
type opQueue struct {
	deleteOps     []operation
	collect       bool
	pendingDelete map[uint32]struct{}
}

func newOpQueue() opQueue {
	return opQueue{
		pendingDelete: make(map[uint32]struct{}),
	}
}

func (q *opQueue) empty() bool {
	return len(q.deleteOps) == 0 && !q.collect
}

// enqueueDelete records run for row unless a delete for the same row is
// already pending.
func (q *opQueue) enqueueDelete(row uint32, run func() error) {
	if _, exists := q.pendingDelete[row]; exists {
		return
	}
	q.pendingDelete[row] = struct{}{}
	q.deleteOps = append(q.deleteOps, operation{
		row: row,
		run: run,
	})
}

func (q *opQueue) enqueueCollect() {
	q.collect = true
}

func (q *opQueue) reset() {
	q.deleteOps = q.deleteOps[:0]
	q.collect = false
	clear(q.pendingDelete)
}

// process runs queued deletes in order, then collect if a compaction was
// requested. The queue is empty afterwards even if a delete fails.
func (q *opQueue) process(collect func()) error {
	if q.empty() {
		return nil
	}
	ops := q.deleteOps
	collectRequested := q.collect
	defer q.reset()

	for _, op := range ops {
		if err := op.run(); err != nil {
			return fmt.Errorf("failed to process queued delete of row %d: %w", op.row, err)
		}
	}
	if collectRequested && collect != nil {
		collect()
	}
	return nil
}

func (c *Collection[K]) processOperationQueue() error {
	if err := c.opQueue.process(c.collectGarbage); err != nil {
		return err
	}
	if c.onUnlock != nil {
		return c.onUnlock()
	}
	return nil
}
