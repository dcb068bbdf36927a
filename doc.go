/*
Package propstore provides a handle-indexed columnar property store and the
entity collections built on it.

Every structure keeps its data as named columns of equal length. Rows are
addressed by typed handles, deleted lazily, and reclaimed by an explicit
garbage collection pass that compacts all columns at once and patches the
cross references each structure keeps.

Core Concepts:

  - Column: a named, dense array of one element type with a default value.
  - Container: a set of columns kept the same length.
  - Handle: a typed row reference carrying the generation it was issued in.
  - Property: a checked typed view of one column, indexed by handle.
  - Collection: a container with a deleted flag per row and compaction.
  - Tree, VertexSet, VoxelGrid, Graph: collections with their own columns
    and cross-reference patching.

Basic Usage:

	tree := propstore.Factory.NewTree()
	root := tree.NewNode()
	child := tree.NewNode()
	tree.AttachToParent(child, root)

	// Custom columns live alongside the built-in ones
	names := propstore.AddProperty(tree.Nodes().Container(), "n:name", "")
	names.Set(root, "root")

	tree.DeleteNode(child)
	tree.GarbageCollection()

	// Handles from before the pass are stale now
	_, err := names.Get(root) // StaleHandleError

Garbage collection moves rows. A handle obtained before a pass is rejected
afterwards; reacquire handles by iterating the collection. Nothing in the
package synchronizes access: a collection must not be mutated from more
than one goroutine, and lock bits (Lock, AddLock) only defer deletes and
compaction while a caller holds handles.
*/
package propstore
