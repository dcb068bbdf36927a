package propstore

import (
	"errors"
	"iter"
)

var _ Store = &Graph{}

// Graph is a half-edge graph. Every edge owns two half-edges at rows 2e and
// 2e+1; each vertex keeps one outgoing half-edge as the entry point into the
// circular list of all half-edges leaving it.
type Graph struct {
	vertices  *Collection[VertexKind]
	edges     *Collection[EdgeKind]
	halfedges *Container[HalfEdgeKind]

	anchor Property[VertexKind, HalfEdgeHandle]
	target Property[HalfEdgeKind, VertexHandle]
	next   Property[HalfEdgeKind, HalfEdgeHandle]
	prev   Property[HalfEdgeKind, HalfEdgeHandle]

	// work deferred until neither collection is locked
	vertexOps opQueue
	edgeOps   opQueue
}

func newGraph() *Graph {
	g := &Graph{
		halfedges: newContainer[HalfEdgeKind](),
		vertexOps: newOpQueue(),
		edgeOps:   newOpQueue(),
	}
	g.vertices = newCollection(g.vertexHooks())
	g.edges = newCollection(g.edgeHooks())
	g.vertices.onUnlock = g.processPending
	g.edges.onUnlock = g.processPending
	g.anchor = addBuiltin(g.vertices.container, columnName[VertexKind]("connectivity"), HalfEdgeHandle{})
	g.target = addBuiltin(g.halfedges, columnName[HalfEdgeKind]("vertex"), VertexHandle{})
	g.next = addBuiltin(g.halfedges, columnName[HalfEdgeKind]("next"), HalfEdgeHandle{})
	g.prev = addBuiltin(g.halfedges, columnName[HalfEdgeKind]("prev"), HalfEdgeHandle{})
	return g
}

func (g *Graph) vertexHooks() CollectionHooks[VertexKind] {
	return CollectionHooks[VertexKind]{
		Delete: func(v VertexHandle) {
			if g.locked() {
				g.vertexOps.enqueueDelete(v.id, func() error {
					g.deleteVertex(v)
					return nil
				})
				return
			}
			g.deleteVertex(v)
		},
		Resize: g.resizeVertices,
		Patch:  g.remapVertices,
	}
}

func (g *Graph) edgeHooks() CollectionHooks[EdgeKind] {
	return CollectionHooks[EdgeKind]{
		Delete: func(e EdgeHandle) {
			if g.locked() {
				g.edgeOps.enqueueDelete(e.id, func() error {
					g.deleteEdge(e)
					return nil
				})
				return
			}
			g.deleteEdge(e)
		},
		Swap:   g.swapHalfEdges,
		Resize: g.resizeHalfEdges,
		Patch:  g.remapEdges,
	}
}

// Vertices exposes the vertex collection. Deletes issued through it remove
// incident edges the way DeleteVertex does, deferred while the edge
// collection is locked.
func (g *Graph) Vertices() *Collection[VertexKind] {
	return g.vertices
}

// Edges exposes the edge collection. Deletes issued through it unlink the
// half-edges the way DeleteEdge does.
func (g *Graph) Edges() *Collection[EdgeKind] {
	return g.edges
}

func (g *Graph) HalfEdges() *Container[HalfEdgeKind] {
	return g.halfedges
}

// Len is the number of vertex rows.
func (g *Graph) Len() int {
	return g.vertices.Len()
}

func (g *Graph) Columns() []string {
	names := g.vertices.Columns()
	names = append(names, g.edges.Columns()...)
	return append(names, g.halfedges.Names()...)
}

func (g *Graph) AddVertex() VertexHandle {
	return g.vertices.New()
}

// NewEdge allocates an unattached edge: its two half-edges point at each
// other and at no vertex.
func (g *Graph) NewEdge() EdgeHandle {
	e := g.edges.New()
	h0 := g.halfedges.handle(g.halfedges.PushBack())
	h1 := g.halfedges.handle(g.halfedges.PushBack())
	g.next.set(h0, h1)
	g.prev.set(h0, h1)
	g.next.set(h1, h0)
	g.prev.set(h1, h0)
	return e
}

// AddEdge connects v0 and v1, returning the existing edge if they are
// already connected.
func (g *Graph) AddEdge(v0, v1 VertexHandle) (EdgeHandle, error) {
	for _, v := range [2]VertexHandle{v0, v1} {
		if err := g.vertices.CheckLive(v); err != nil {
			return EdgeHandle{}, InvalidEndpointError{Vertex: v, Err: err}
		}
	}
	if h, ok := g.findHalfEdge(v0, v1); ok {
		return g.Edge(h), nil
	}

	e := g.NewEdge()
	h0, h1 := g.HalfEdge(e, 0), g.HalfEdge(e, 1)
	g.target.set(h0, v1)
	g.target.set(h1, v0)
	g.splice(v0, h0)
	g.splice(v1, h1)
	return e, nil
}

// splice links h into the outgoing cycle of v right after v's anchor, or
// makes it v's anchor as a self-loop when v has no half-edges yet.
func (g *Graph) splice(v VertexHandle, h HalfEdgeHandle) {
	a := g.anchor.get(v)
	if !a.Valid() {
		g.next.set(h, h)
		g.prev.set(h, h)
		g.anchor.set(v, h)
		return
	}
	n := g.next.get(a)
	g.next.set(h, n)
	g.prev.set(n, h)
	g.next.set(a, h)
	g.prev.set(h, a)
}

// unsplice removes h from the outgoing cycle of v.
func (g *Graph) unsplice(v VertexHandle, h HalfEdgeHandle) {
	if !v.Valid() {
		return
	}
	n, p := g.next.get(h), g.prev.get(h)
	if n == h {
		if g.anchor.get(v) == h {
			g.anchor.set(v, HalfEdgeHandle{})
		}
		return
	}
	g.next.set(p, n)
	g.prev.set(n, p)
	if g.anchor.get(v) == h {
		g.anchor.set(v, n)
	}
}

// FindHalfEdge returns the half-edge from v0 to v1.
func (g *Graph) FindHalfEdge(v0, v1 VertexHandle) (HalfEdgeHandle, bool) {
	if g.vertices.Check(v0) != nil || g.vertices.Check(v1) != nil {
		return HalfEdgeHandle{}, false
	}
	return g.findHalfEdge(v0, v1)
}

func (g *Graph) findHalfEdge(v0, v1 VertexHandle) (HalfEdgeHandle, bool) {
	for h := range g.outgoing(v0) {
		if g.target.get(h) == v1 {
			return h, true
		}
	}
	return HalfEdgeHandle{}, false
}

func (g *Graph) FindEdge(v0, v1 VertexHandle) (EdgeHandle, bool) {
	h, ok := g.FindHalfEdge(v0, v1)
	if !ok {
		return EdgeHandle{}, false
	}
	return g.Edge(h), true
}

// Edge returns the edge owning h.
func (g *Graph) Edge(h HalfEdgeHandle) EdgeHandle {
	if !h.Valid() {
		return EdgeHandle{}
	}
	return newHandle[EdgeKind](h.Index()/2, g.edges.container.epoch)
}

// HalfEdge returns half-edge i of e. Any i other than 0 or 1 yields the
// invalid handle.
func (g *Graph) HalfEdge(e EdgeHandle, i int) HalfEdgeHandle {
	if !e.Valid() || i < 0 || i > 1 {
		return HalfEdgeHandle{}
	}
	return newHandle[HalfEdgeKind](e.Index()*2+i, g.halfedges.epoch)
}

func (g *Graph) Opposite(h HalfEdgeHandle) HalfEdgeHandle {
	if !h.Valid() {
		return HalfEdgeHandle{}
	}
	return newHandle[HalfEdgeKind](h.Index()^1, h.gen)
}

// Target is the vertex h points to.
func (g *Graph) Target(h HalfEdgeHandle) (VertexHandle, error) {
	return g.target.Get(h)
}

// Source is the vertex h leaves from.
func (g *Graph) Source(h HalfEdgeHandle) (VertexHandle, error) {
	return g.target.Get(g.Opposite(h))
}

// Next is the following outgoing half-edge around h's source.
func (g *Graph) Next(h HalfEdgeHandle) (HalfEdgeHandle, error) {
	return g.next.Get(h)
}

func (g *Graph) Prev(h HalfEdgeHandle) (HalfEdgeHandle, error) {
	return g.prev.Get(h)
}

// Anchor is v's designated outgoing half-edge, invalid for isolated
// vertices.
func (g *Graph) Anchor(v VertexHandle) (HalfEdgeHandle, error) {
	return g.anchor.Get(v)
}

// Outgoing iterates the half-edges leaving v, starting at its anchor.
func (g *Graph) Outgoing(v VertexHandle) iter.Seq[HalfEdgeHandle] {
	if g.vertices.Check(v) != nil {
		return func(func(HalfEdgeHandle) bool) {}
	}
	return g.outgoing(v)
}

func (g *Graph) outgoing(v VertexHandle) iter.Seq[HalfEdgeHandle] {
	return func(yield func(HalfEdgeHandle) bool) {
		start := g.anchor.get(v)
		if !start.Valid() {
			return
		}
		h := start
		// The walk is bounded by the half-edge count so that a corrupted
		// cycle cannot spin forever.
		for steps := 0; steps < g.halfedges.size; steps++ {
			if !yield(h) {
				return
			}
			h = g.next.get(h)
			if h == start {
				return
			}
		}
	}
}

// Valence counts the half-edges leaving v.
func (g *Graph) Valence(v VertexHandle) (int, error) {
	if err := g.vertices.Check(v); err != nil {
		return 0, err
	}
	n := 0
	for range g.outgoing(v) {
		n++
	}
	return n, nil
}

func (g *Graph) IsIsolated(v VertexHandle) (bool, error) {
	a, err := g.anchor.Get(v)
	if err != nil {
		return false, err
	}
	return !a.Valid(), nil
}

func (g *Graph) locked() bool {
	return g.vertices.Locked() || g.edges.Locked()
}

// DeleteEdge unlinks both half-edges of e from their vertices and flags e.
func (g *Graph) DeleteEdge(e EdgeHandle) error {
	if g.locked() {
		return LockedError{}
	}
	if err := g.edges.Check(e); err != nil {
		return err
	}
	g.deleteEdge(e)
	return nil
}

func (g *Graph) deleteEdge(e EdgeHandle) {
	if g.edges.deleted.get(e) {
		return
	}
	h0 := newHandle[HalfEdgeKind](e.Index()*2, g.halfedges.epoch)
	h1 := g.Opposite(h0)
	g.unsplice(g.target.get(h1), h0)
	g.unsplice(g.target.get(h0), h1)
	g.next.set(h0, h1)
	g.prev.set(h0, h1)
	g.next.set(h1, h0)
	g.prev.set(h1, h0)
	g.edges.markDeleted(e.Index())
}

// DeleteVertex deletes every edge incident to v, then flags v.
func (g *Graph) DeleteVertex(v VertexHandle) error {
	if g.locked() {
		return LockedError{}
	}
	if err := g.vertices.Check(v); err != nil {
		return err
	}
	g.deleteVertex(v)
	return nil
}

func (g *Graph) deleteVertex(v VertexHandle) {
	if g.vertices.deleted.get(v) {
		return
	}
	for {
		a := g.anchor.get(v)
		if !a.Valid() {
			break
		}
		g.deleteEdge(g.Edge(a))
	}
	g.vertices.markDeleted(v.Index())
}

func (g *Graph) EnqueueDeleteEdge(e EdgeHandle) error {
	if !g.locked() {
		return g.DeleteEdge(e)
	}
	if err := g.edges.Check(e); err != nil {
		return err
	}
	g.edgeOps.enqueueDelete(e.id, func() error {
		g.deleteEdge(e)
		return nil
	})
	return nil
}

func (g *Graph) EnqueueDeleteVertex(v VertexHandle) error {
	if !g.locked() {
		return g.DeleteVertex(v)
	}
	if err := g.vertices.Check(v); err != nil {
		return err
	}
	g.vertexOps.enqueueDelete(v.id, func() error {
		g.deleteVertex(v)
		return nil
	})
	return nil
}

// GarbageCollection compacts vertices, then edges together with their
// half-edge pairs, rewriting every connectivity reference.
func (g *Graph) GarbageCollection() error {
	if g.locked() {
		return LockedError{}
	}
	g.collectGarbage()
	return nil
}

func (g *Graph) EnqueueGarbageCollection() error {
	if !g.locked() {
		return g.GarbageCollection()
	}
	g.edgeOps.enqueueCollect()
	return nil
}

func (g *Graph) collectGarbage() {
	g.vertices.collectGarbage()
	g.edges.collectGarbage()
}

// processPending runs deferred graph work once the last lock on either
// collection is gone: vertex deletes, then edge deletes, then compaction.
func (g *Graph) processPending() error {
	if g.locked() {
		return nil
	}
	if err := g.vertexOps.process(nil); err != nil {
		return err
	}
	return g.edgeOps.process(g.collectGarbage)
}

func (g *Graph) remapVertices(remap Remap[VertexKind]) {
	targets := g.target.arr.data
	for i := range targets {
		targets[i] = remap.Map(targets[i])
	}
}

func (g *Graph) swapHalfEdges(i, j int) {
	g.halfedges.swap(2*i, 2*j)
	g.halfedges.swap(2*i+1, 2*j+1)
}

func (g *Graph) resizeHalfEdges(n int) {
	g.halfedges.Resize(2 * n)
	g.halfedges.FreeMemory()
	if n > 0 {
		return
	}
	// No half-edge survives, so neither may any handle or anchor to one.
	g.halfedges.advanceEpoch()
	anchors := g.anchor.arr.data
	for i := range anchors {
		anchors[i] = HalfEdgeHandle{}
	}
}

// resizeVertices detaches every edge once no vertex row is left.
func (g *Graph) resizeVertices(n int) {
	if n > 0 {
		return
	}
	targets, next, prev := g.target.arr.data, g.next.arr.data, g.prev.arr.data
	gen := g.halfedges.epoch
	for i := range targets {
		pair := newHandle[HalfEdgeKind](i^1, gen)
		targets[i] = VertexHandle{}
		next[i] = pair
		prev[i] = pair
	}
}

func (g *Graph) remapEdges(remap Remap[EdgeKind]) {
	g.halfedges.advanceEpoch()
	gen := g.halfedges.epoch
	mapHalf := func(h HalfEdgeHandle) HalfEdgeHandle {
		if !h.Valid() {
			return HalfEdgeHandle{}
		}
		e, ok := remap.MapIndex(h.Index() / 2)
		if !ok {
			return HalfEdgeHandle{}
		}
		return newHandle[HalfEdgeKind](e*2+h.Index()%2, gen)
	}

	next, prev := g.next.arr.data, g.prev.arr.data
	for i := 0; i < 2*remap.Len(); i++ {
		next[i] = mapHalf(next[i])
		prev[i] = mapHalf(prev[i])
	}
	anchors := g.anchor.arr.data
	for i := range anchors {
		anchors[i] = mapHalf(anchors[i])
	}
}

// CheckTopology verifies that next and prev are inverse everywhere, that
// every cycle stays around one source vertex, and that each anchor leaves
// its own vertex.
func (g *Graph) CheckTopology() error {
	for e := range g.edges.Live() {
		for i := range 2 {
			h := g.HalfEdge(e, i)
			n, err := g.next.Get(h)
			if err != nil {
				return TopologyError{HalfEdge: h, Reason: "next: " + err.Error()}
			}
			p, err := g.prev.Get(h)
			if err != nil {
				return TopologyError{HalfEdge: h, Reason: "prev: " + err.Error()}
			}
			if g.prev.get(n) != h {
				return TopologyError{HalfEdge: h, Reason: "prev(next(h)) != h"}
			}
			if g.next.get(p) != h {
				return TopologyError{HalfEdge: h, Reason: "next(prev(h)) != h"}
			}
			if g.target.get(g.Opposite(n)) != g.target.get(g.Opposite(h)) {
				return TopologyError{HalfEdge: h, Reason: "next(h) leaves another vertex"}
			}
		}
	}
	for v := range g.vertices.Live() {
		a := g.anchor.get(v)
		if !a.Valid() {
			continue
		}
		if err := g.halfedges.Check(a); err != nil {
			return TopologyError{HalfEdge: a, Reason: "anchor: " + err.Error()}
		}
		if g.target.get(g.Opposite(a)) != v {
			return TopologyError{HalfEdge: a, Reason: "anchor leaves another vertex"}
		}
	}
	return nil
}

// Clone deep-copies vertices, edges and half-edges.
func (g *Graph) Clone() *Graph {
	cloned := &Graph{
		halfedges: g.halfedges.Clone(),
		vertexOps: newOpQueue(),
		edgeOps:   newOpQueue(),
	}
	cloned.vertices = g.vertices.clone(cloned.vertexHooks())
	cloned.edges = g.edges.clone(cloned.edgeHooks())
	cloned.anchor = GetProperty[HalfEdgeHandle](cloned.vertices.container, g.anchor.Name())
	cloned.target = GetProperty[VertexHandle](cloned.halfedges, g.target.Name())
	cloned.next = GetProperty[HalfEdgeHandle](cloned.halfedges, g.next.Name())
	cloned.prev = GetProperty[HalfEdgeHandle](cloned.halfedges, g.prev.Name())
	cloned.vertices.onUnlock = cloned.processPending
	cloned.edges.onUnlock = cloned.processPending
	return cloned
}

// Clear drops every vertex, edge and half-edge. It is refused while either
// collection is locked.
func (g *Graph) Clear() error {
	if g.locked() {
		return LockedError{}
	}
	if err := g.edges.Clear(); err != nil {
		return err
	}
	if err := g.vertices.Clear(); err != nil {
		return err
	}
	g.vertexOps.reset()
	g.edgeOps.reset()
	return nil
}

func (g *Graph) Locked() bool {
	return g.locked()
}

func (g *Graph) Lock() {
	g.vertices.Lock()
	g.edges.Lock()
}

// Unlock releases both collections. Queued vertex deletes run before queued
// edge deletes, since deleting a vertex already deletes its edges.
func (g *Graph) Unlock() error {
	return errors.Join(g.vertices.Unlock(), g.edges.Unlock())
}

// EdgeList returns every live edge as its (source, target) vertex pair.
func (g *Graph) EdgeList() [][2]VertexHandle {
	var list [][2]VertexHandle
	for e := range g.edges.Live() {
		h := g.HalfEdge(e, 0)
		list = append(list, [2]VertexHandle{g.target.get(g.Opposite(h)), g.target.get(h)})
	}
	return list
}
