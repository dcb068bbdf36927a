package propstore

import "math"

var _ Store = &VertexSet{}

// VertexSet is a point cloud: vertices with a position and no connectivity.
type VertexSet struct {
	vertices *Collection[VertexKind]
	position Property[VertexKind, Vec3]
}

func newVertexSet() *VertexSet {
	s := &VertexSet{
		vertices: newCollection(CollectionHooks[VertexKind]{}),
	}
	s.position = addBuiltin(s.vertices.container, columnName[VertexKind]("position"), Vec3{})
	return s
}

func (s *VertexSet) Vertices() *Collection[VertexKind] {
	return s.vertices
}

func (s *VertexSet) Len() int {
	return s.vertices.Len()
}

func (s *VertexSet) Columns() []string {
	return s.vertices.Columns()
}

func (s *VertexSet) NewVertex(p Vec3) VertexHandle {
	v := s.vertices.New()
	s.position.set(v, p)
	return v
}

func (s *VertexSet) Position(v VertexHandle) (Vec3, error) {
	return s.position.Get(v)
}

func (s *VertexSet) SetPosition(v VertexHandle, p Vec3) error {
	return s.position.Set(v, p)
}

func (s *VertexSet) DeleteVertex(v VertexHandle) error {
	return s.vertices.Delete(v)
}

func (s *VertexSet) EnqueueDeleteVertex(v VertexHandle) error {
	return s.vertices.EnqueueDelete(v)
}

func (s *VertexSet) IsDeleted(v VertexHandle) (bool, error) {
	return s.vertices.IsDeleted(v)
}

// Bounds returns the axis-aligned box around every live vertex. ok is false
// when there are none.
func (s *VertexSet) Bounds() (lo, hi Vec3, ok bool) {
	for i := range lo {
		lo[i] = math.MaxFloat32
		hi[i] = -math.MaxFloat32
	}
	for v := range s.vertices.Live() {
		p := s.position.get(v)
		for i := range p {
			lo[i] = min(lo[i], p[i])
			hi[i] = max(hi[i], p[i])
		}
		ok = true
	}
	if !ok {
		return Vec3{}, Vec3{}, false
	}
	return lo, hi, true
}

// GarbageCollection compacts deleted vertices away. Nothing refers to a
// vertex by handle from inside the set, so there is nothing to patch.
func (s *VertexSet) GarbageCollection() error {
	return s.vertices.GarbageCollection()
}

func (s *VertexSet) EnqueueGarbageCollection() error {
	return s.vertices.EnqueueGarbageCollection()
}

func (s *VertexSet) Clear() error {
	return s.vertices.Clear()
}

func (s *VertexSet) Locked() bool {
	return s.vertices.Locked()
}

func (s *VertexSet) Lock() {
	s.vertices.Lock()
}

func (s *VertexSet) Unlock() error {
	return s.vertices.Unlock()
}

func (s *VertexSet) NewCursor() *Cursor[VertexKind] {
	return newCursor(s.vertices)
}
