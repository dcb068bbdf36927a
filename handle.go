package propstore

import "fmt"

// Kind tags a handle category. Handles of different kinds are distinct types,
// so a NodeHandle can never index a vertex column.
type Kind interface {
	// Prefix is the one-letter column name prefix used for the category.
	Prefix() string
	// Label names the category in handle and error strings.
	Label() string
}

type (
	NodeKind     struct{}
	VertexKind   struct{}
	HalfEdgeKind struct{}
	EdgeKind     struct{}
	VoxelKind    struct{}
)

func (NodeKind) Prefix() string     { return "n" }
func (NodeKind) Label() string      { return "node" }
func (VertexKind) Prefix() string   { return "v" }
func (VertexKind) Label() string    { return "vertex" }
func (HalfEdgeKind) Prefix() string { return "h" }
func (HalfEdgeKind) Label() string  { return "halfedge" }
func (EdgeKind) Prefix() string     { return "e" }
func (EdgeKind) Label() string      { return "edge" }
func (VoxelKind) Prefix() string    { return "x" }
func (VoxelKind) Label() string     { return "voxel" }

type (
	NodeHandle     = Handle[NodeKind]
	VertexHandle   = Handle[VertexKind]
	HalfEdgeHandle = Handle[HalfEdgeKind]
	EdgeHandle     = Handle[EdgeKind]
	VoxelHandle    = Handle[VoxelKind]
)

// Handle is a typed row reference. The zero value is the invalid handle.
// IDs start at 1 so that index 0 is distinguishable from "no row".
type Handle[K Kind] struct {
	id  uint32
	gen uint32
}

func newHandle[K Kind](index int, gen uint32) Handle[K] {
	return Handle[K]{id: uint32(index) + 1, gen: gen}
}

// Valid reports whether the handle refers to a row at all. It does not check
// the row against any collection.
func (h Handle[K]) Valid() bool {
	return h.id != 0
}

// Index returns the row index, or -1 for the invalid handle.
func (h Handle[K]) Index() int {
	return int(h.id) - 1
}

// Generation returns the container epoch the handle was issued under.
func (h Handle[K]) Generation() uint32 {
	return h.gen
}

func (h Handle[K]) String() string {
	var k K
	if !h.Valid() {
		return fmt.Sprintf("%s(invalid)", k.Label())
	}
	return fmt.Sprintf("%s(%d@%d)", k.Label(), h.Index(), h.gen)
}

func columnName[K Kind](name string) string {
	var k K
	return k.Prefix() + ":" + name
}
