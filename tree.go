package propstore

import "slices"

var _ Store = &Tree{}

// Tree is a node hierarchy stored as parent and child-list columns.
type Tree struct {
	nodes    *Collection[NodeKind]
	parent   Property[NodeKind, NodeHandle]
	children Property[NodeKind, []NodeHandle]
}

func newTree() *Tree {
	t := &Tree{}
	t.nodes = newCollection(CollectionHooks[NodeKind]{
		Delete: t.deleteNode,
		Patch:  t.remapLinks,
	})
	t.parent = addBuiltin(t.nodes.container, columnName[NodeKind]("parent"), NodeHandle{})
	t.children = addBuiltin(t.nodes.container, columnName[NodeKind]("children"), []NodeHandle(nil))
	return t
}

// Nodes exposes the node collection for custom properties and iteration.
// Deletes issued through it follow the same rule as DeleteNode.
func (t *Tree) Nodes() *Collection[NodeKind] {
	return t.nodes
}

func (t *Tree) Len() int {
	return t.nodes.Len()
}

func (t *Tree) Columns() []string {
	return t.nodes.Columns()
}

func (t *Tree) NewNode() NodeHandle {
	return t.nodes.New()
}

func (t *Tree) Parent(n NodeHandle) (NodeHandle, error) {
	return t.parent.Get(n)
}

// Children returns a copy of n's child list.
func (t *Tree) Children(n NodeHandle) ([]NodeHandle, error) {
	kids, err := t.children.Get(n)
	if err != nil {
		return nil, err
	}
	return slices.Clone(kids), nil
}

// IsOrphan reports whether n has no parent.
func (t *Tree) IsOrphan(n NodeHandle) (bool, error) {
	p, err := t.parent.Get(n)
	if err != nil {
		return false, err
	}
	return !p.Valid(), nil
}

// IsRoot reports whether n has no parent. Roots and orphans are the same
// rows; the two names read better in different call sites.
func (t *Tree) IsRoot(n NodeHandle) (bool, error) {
	return t.IsOrphan(n)
}

// FindChildIdx returns the position of child in parent's child list, or -1.
func (t *Tree) FindChildIdx(parent, child NodeHandle) (int, error) {
	if err := t.nodes.Check(parent); err != nil {
		return -1, err
	}
	return t.findChild(parent, child), nil
}

func (t *Tree) findChild(parent, child NodeHandle) int {
	return slices.Index(t.children.get(parent), child)
}

// AttachToParent detaches n from its current parent, if any, and appends it
// to parent's children.
func (t *Tree) AttachToParent(n, parent NodeHandle) error {
	if err := t.nodes.CheckLive(n); err != nil {
		return err
	}
	if err := t.nodes.CheckLive(parent); err != nil {
		return err
	}
	if n == parent {
		return CycleError{Node: n}
	}
	t.detach(n)
	t.parent.set(n, parent)
	t.children.set(parent, append(t.children.get(parent), n))
	return nil
}

// DetachFromParent removes n from its parent's child list. The last child
// takes n's slot, so sibling order is not preserved.
func (t *Tree) DetachFromParent(n NodeHandle) error {
	if err := t.nodes.Check(n); err != nil {
		return err
	}
	t.detach(n)
	return nil
}

func (t *Tree) detach(n NodeHandle) {
	p := t.parent.get(n)
	if !p.Valid() {
		return
	}
	if idx := t.findChild(p, n); idx >= 0 {
		kids := t.children.get(p)
		last := len(kids) - 1
		kids[idx] = kids[last]
		t.children.set(p, kids[:last])
	}
	t.parent.set(n, NodeHandle{})
}

// DeleteNode flags n and its direct children deleted and detaches n from
// its parent. Deeper descendants are left in place as orphans of deleted
// rows until they are deleted or reattached themselves.
func (t *Tree) DeleteNode(n NodeHandle) error {
	if t.nodes.Locked() {
		return LockedError{}
	}
	if err := t.nodes.Check(n); err != nil {
		return err
	}
	t.deleteNode(n)
	return nil
}

func (t *Tree) deleteNode(n NodeHandle) {
	t.detach(n)
	t.nodes.markDeleted(n.Index())
	for _, child := range t.children.get(n) {
		t.nodes.markDeleted(child.Index())
	}
}

// EnqueueDeleteNode deletes n now, or once the tree is unlocked.
func (t *Tree) EnqueueDeleteNode(n NodeHandle) error {
	if !t.nodes.Locked() {
		return t.DeleteNode(n)
	}
	if err := t.nodes.Check(n); err != nil {
		return err
	}
	t.nodes.enqueue(n, func() error {
		t.deleteNode(n)
		return nil
	})
	return nil
}

func (t *Tree) IsDeleted(n NodeHandle) (bool, error) {
	return t.nodes.IsDeleted(n)
}

// Roots lists live nodes without a live parent.
func (t *Tree) Roots() []NodeHandle {
	var roots []NodeHandle
	for n := range t.nodes.Live() {
		if t.isRootLike(n) {
			roots = append(roots, n)
		}
	}
	return roots
}

func (t *Tree) isRootLike(n NodeHandle) bool {
	p := t.parent.get(n)
	return !p.Valid() || t.nodes.deleted.get(p)
}

// TopologicalOrder lists every live node with each parent ahead of its
// children, walking from Roots depth-first. A node reachable twice or not
// at all means the parent links form a cycle.
func (t *Tree) TopologicalOrder() ([]NodeHandle, error) {
	const (
		unvisited = iota
		visited
	)
	state := make([]uint8, t.nodes.Len())
	order := make([]NodeHandle, 0, t.nodes.LiveCount())

	var stack []NodeHandle
	for _, root := range t.Roots() {
		stack = append(stack[:0], root)
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if state[n.Index()] != unvisited {
				return nil, CycleError{Node: n}
			}
			state[n.Index()] = visited
			order = append(order, n)

			kids := t.children.get(n)
			for i := len(kids) - 1; i >= 0; i-- {
				if !t.nodes.deleted.get(kids[i]) {
					stack = append(stack, kids[i])
				}
			}
		}
	}

	for n := range t.nodes.Live() {
		if state[n.Index()] == unvisited {
			return nil, CycleError{Node: n}
		}
	}
	return order, nil
}

// GarbageCollection removes deleted nodes and rewrites every surviving
// parent and child reference to the compacted rows.
func (t *Tree) GarbageCollection() error {
	return t.nodes.GarbageCollection()
}

func (t *Tree) EnqueueGarbageCollection() error {
	return t.nodes.EnqueueGarbageCollection()
}

func (t *Tree) remapLinks(remap Remap[NodeKind]) {
	parents := t.parent.arr.data
	children := t.children.arr.data
	for i := 0; i < remap.Len(); i++ {
		parents[i] = remap.Map(parents[i])

		kept := children[i][:0]
		for _, child := range children[i] {
			if m := remap.Map(child); m.Valid() {
				kept = append(kept, m)
			}
		}
		children[i] = kept
	}
}

// Clone deep-copies the tree, child lists included.
func (t *Tree) Clone() *Tree {
	cloned := &Tree{}
	cloned.nodes = t.nodes.clone(CollectionHooks[NodeKind]{
		Delete: cloned.deleteNode,
		Patch:  cloned.remapLinks,
	})
	cloned.parent = GetProperty[NodeHandle](cloned.nodes.container, t.parent.Name())
	cloned.children = GetProperty[[]NodeHandle](cloned.nodes.container, t.children.Name())
	kids := cloned.children.arr.data
	for i := range kids {
		kids[i] = slices.Clone(kids[i])
	}
	return cloned
}

func (t *Tree) Clear() error {
	return t.nodes.Clear()
}

func (t *Tree) Locked() bool {
	return t.nodes.Locked()
}

func (t *Tree) Lock() {
	t.nodes.Lock()
}

func (t *Tree) Unlock() error {
	return t.nodes.Unlock()
}

func (t *Tree) NewCursor() *Cursor[NodeKind] {
	return newCursor(t.nodes)
}
