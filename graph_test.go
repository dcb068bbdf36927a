package propstore

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// path builds v0 - v1 - v2.
func path(t *testing.T) (*Graph, []VertexHandle) {
	t.Helper()
	g := Factory.NewGraph()
	v := []VertexHandle{g.AddVertex(), g.AddVertex(), g.AddVertex()}
	_, err := g.AddEdge(v[0], v[1])
	require.NoError(t, err)
	_, err = g.AddEdge(v[1], v[2])
	require.NoError(t, err)
	return g, v
}

func valences(t *testing.T, g *Graph, vs ...VertexHandle) []int {
	t.Helper()
	out := make([]int, len(vs))
	for i, v := range vs {
		n, err := g.Valence(v)
		require.NoError(t, err)
		out[i] = n
	}
	return out
}

func TestGraphAddEdge(t *testing.T) {
	g, v := path(t)

	assert.Equal(t, 2, g.Edges().Len())
	assert.Equal(t, 4, g.HalfEdges().Len())
	assert.Equal(t, []int{1, 2, 1}, valences(t, g, v...))
	require.NoError(t, g.CheckTopology())

	h, ok := g.FindHalfEdge(v[0], v[1])
	require.True(t, ok)
	target, err := g.Target(h)
	require.NoError(t, err)
	assert.Equal(t, v[1], target)
	source, err := g.Source(h)
	require.NoError(t, err)
	assert.Equal(t, v[0], source)

	back, ok := g.FindHalfEdge(v[1], v[0])
	require.True(t, ok)
	assert.Equal(t, g.Opposite(h), back)
	assert.Equal(t, g.Edge(h), g.Edge(back))

	_, ok = g.FindEdge(v[0], v[2])
	assert.False(t, ok)
}

func TestGraphAddEdgeIdempotent(t *testing.T) {
	g, v := path(t)
	e, ok := g.FindEdge(v[0], v[1])
	require.True(t, ok)

	for _, pair := range [][2]VertexHandle{{v[0], v[1]}, {v[1], v[0]}} {
		again, err := g.AddEdge(pair[0], pair[1])
		require.NoError(t, err)
		assert.Equal(t, e, again)
	}
	assert.Equal(t, 2, g.Edges().Len())
}

func TestGraphAddEdgeInvalidEndpoint(t *testing.T) {
	g, v := path(t)
	lone := g.AddVertex()
	require.NoError(t, g.DeleteVertex(lone))

	tests := []struct {
		name   string
		v0, v1 VertexHandle
	}{
		{"Invalid handle", VertexHandle{}, v[0]},
		{"Deleted", v[0], lone},
		{"Out of range", v[0], newHandle[VertexKind](99, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.AddEdge(tt.v0, tt.v1)
			var endpoint InvalidEndpointError
			require.ErrorAs(t, err, &endpoint)
			assert.Error(t, endpoint.Unwrap())
		})
	}
	assert.Equal(t, 2, g.Edges().Len())
}

func TestGraphOutgoingCycle(t *testing.T) {
	g := Factory.NewGraph()
	hub := g.AddVertex()
	spokes := make([]VertexHandle, 4)
	for i := range spokes {
		spokes[i] = g.AddVertex()
		_, err := g.AddEdge(hub, spokes[i])
		require.NoError(t, err)
	}

	var targets []VertexHandle
	for h := range g.Outgoing(hub) {
		tgt, err := g.Target(h)
		require.NoError(t, err)
		targets = append(targets, tgt)
	}
	assert.ElementsMatch(t, spokes, targets)

	anchor, err := g.Anchor(hub)
	require.NoError(t, err)
	h := anchor
	for range 4 {
		next, err := g.Next(h)
		require.NoError(t, err)
		prev, err := g.Prev(next)
		require.NoError(t, err)
		assert.Equal(t, h, prev)
		h = next
	}
	assert.Equal(t, anchor, h, "four steps close the cycle")
}

func TestGraphSelfLoopAnchor(t *testing.T) {
	g := Factory.NewGraph()
	a := g.AddVertex()
	b := g.AddVertex()
	_, err := g.AddEdge(a, b)
	require.NoError(t, err)

	anchor, err := g.Anchor(b)
	require.NoError(t, err)
	next, err := g.Next(anchor)
	require.NoError(t, err)
	assert.Equal(t, anchor, next, "single half-edge cycles onto itself")

	steps := 0
	for range g.Outgoing(b) {
		steps++
	}
	assert.Equal(t, 1, steps)

	again, err := g.AddEdge(b, a)
	require.NoError(t, err)
	assert.Equal(t, g.Edge(anchor), again)
	_, err = g.AddEdge(b, g.AddVertex())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, valences(t, g, a, b))
	require.NoError(t, g.CheckTopology())

	isolated, err := g.IsIsolated(g.AddVertex())
	require.NoError(t, err)
	assert.True(t, isolated)
}

func TestGraphNewEdgeUnattached(t *testing.T) {
	g := Factory.NewGraph()
	e := g.NewEdge()
	h0, h1 := g.HalfEdge(e, 0), g.HalfEdge(e, 1)

	next, err := g.Next(h0)
	require.NoError(t, err)
	assert.Equal(t, h1, next)
	tgt, err := g.Target(h0)
	require.NoError(t, err)
	assert.False(t, tgt.Valid())

	require.NoError(t, g.DeleteEdge(e))
	require.NoError(t, g.GarbageCollection())
	assert.Equal(t, 0, g.HalfEdges().Len())
}

func TestGraphDeleteEdge(t *testing.T) {
	g, v := path(t)
	e, _ := g.FindEdge(v[0], v[1])

	require.NoError(t, g.DeleteEdge(e))
	assert.Equal(t, []int{0, 1, 1}, valences(t, g, v...))
	isolated, _ := g.IsIsolated(v[0])
	assert.True(t, isolated)
	require.NoError(t, g.CheckTopology())

	require.NoError(t, g.GarbageCollection())
	assert.Equal(t, 1, g.Edges().Len())
	assert.Equal(t, 2, g.HalfEdges().Len())
	require.NoError(t, g.CheckTopology())

	edges := g.EdgeList()
	require.Len(t, edges, 1)
	assert.ElementsMatch(t, []VertexHandle{v[1], v[2]}, edges[0][:])
}

func TestGraphDeleteVertex(t *testing.T) {
	g, v := path(t)
	names := AddProperty(g.Vertices().Container(), "v:name", "")
	for i, label := range []string{"v0", "v1", "v2"} {
		require.NoError(t, names.Set(v[i], label))
	}

	require.NoError(t, g.DeleteVertex(v[1]))
	assert.Equal(t, []int{0, 0}, valences(t, g, v[0], v[2]))
	assert.Equal(t, 2, g.Edges().DeletedCount())

	require.NoError(t, g.GarbageCollection())
	assert.Equal(t, 2, g.Len())
	assert.Equal(t, 0, g.Edges().Len())
	assert.Equal(t, 0, g.HalfEdges().Len())
	assert.ElementsMatch(t, []string{"v0", "v2"}, names.Values())
	require.NoError(t, g.CheckTopology())
}

func TestGraphCollectRemapsConnectivity(t *testing.T) {
	g := Factory.NewGraph()
	names := AddProperty(g.Vertices().Container(), "v:name", "")
	mk := func(name string) VertexHandle {
		v := g.AddVertex()
		require.NoError(t, names.Set(v, name))
		return v
	}
	a, b, c, d, e := mk("a"), mk("b"), mk("c"), mk("d"), mk("e")
	for _, pair := range [][2]VertexHandle{{a, b}, {b, c}, {c, d}, {d, e}, {e, a}, {a, c}} {
		_, err := g.AddEdge(pair[0], pair[1])
		require.NoError(t, err)
	}

	require.NoError(t, g.DeleteVertex(b))
	ed, _ := g.FindEdge(d, e)
	require.NoError(t, g.DeleteEdge(ed))
	require.NoError(t, g.GarbageCollection())
	require.NoError(t, g.CheckTopology())

	byName := map[string]VertexHandle{}
	for v := range g.Vertices().Live() {
		name, err := names.Get(v)
		require.NoError(t, err)
		byName[name] = v
	}
	require.Len(t, byName, 4)

	want := map[[2]string]bool{{"c", "d"}: true, {"e", "a"}: true, {"a", "c"}: true}
	assert.Equal(t, len(want), g.Edges().Len())
	for pair := range want {
		_, ok := g.FindEdge(byName[pair[0]], byName[pair[1]])
		assert.True(t, ok, "edge %v lost", pair)
	}
	_, ok := g.FindEdge(byName["d"], byName["e"])
	assert.False(t, ok)

	assert.Equal(t, []int{2, 2, 1, 1},
		valences(t, g, byName["a"], byName["c"], byName["d"], byName["e"]))
}

func TestGraphStaleHandlesAfterCollect(t *testing.T) {
	g, v := path(t)
	h, _ := g.FindHalfEdge(v[0], v[1])
	e, _ := g.FindEdge(v[1], v[2])
	require.NoError(t, g.DeleteEdge(e))
	require.NoError(t, g.GarbageCollection())

	_, err := g.Next(h)
	assert.ErrorAs(t, err, &StaleHandleError{})
	assert.ErrorAs(t, g.Edges().Check(e), &StaleHandleError{})
	_, err = g.Anchor(v[0])
	assert.NoError(t, err, "vertices were not compacted")
}

func TestGraphLockedDeletes(t *testing.T) {
	g, v := path(t)
	e, _ := g.FindEdge(v[1], v[2])

	cursor := FactoryNewCursor(g.Vertices())
	require.True(t, cursor.Next())
	assert.True(t, g.Locked())

	assert.ErrorAs(t, g.DeleteEdge(e), &LockedError{})
	assert.ErrorAs(t, g.DeleteVertex(v[0]), &LockedError{})
	assert.ErrorAs(t, g.GarbageCollection(), &LockedError{})

	require.NoError(t, g.EnqueueDeleteEdge(e))
	require.NoError(t, g.EnqueueDeleteVertex(v[0]))
	require.NoError(t, g.EnqueueGarbageCollection())
	assert.Equal(t, 0, g.Edges().DeletedCount())

	cursor.Reset()
	require.NoError(t, cursor.Err())
	assert.False(t, g.Locked())
	assert.Equal(t, 2, g.Len())
	assert.Equal(t, 0, g.Edges().Len())
	require.NoError(t, g.CheckTopology())
}

func TestGraphLockUnlock(t *testing.T) {
	g, v := path(t)

	g.Lock()
	require.NoError(t, g.EnqueueDeleteVertex(v[2]))
	require.NoError(t, g.EnqueueGarbageCollection())
	require.NoError(t, g.Unlock())

	assert.Equal(t, 2, g.Len())
	assert.Equal(t, 1, g.Edges().Len())
	require.NoError(t, g.CheckTopology())

	assert.Error(t, g.Unlock())
}

func TestGraphClone(t *testing.T) {
	g, v := path(t)
	cloned := g.Clone()

	require.NoError(t, cloned.DeleteVertex(v[1]))
	require.NoError(t, cloned.GarbageCollection())
	require.NoError(t, cloned.CheckTopology())

	assert.Equal(t, []int{1, 2, 1}, valences(t, g, v...))
	require.NoError(t, g.CheckTopology())
	assert.Equal(t, 0, cloned.Edges().Len())
}

func TestGraphClear(t *testing.T) {
	g, v := path(t)
	h, _ := g.FindHalfEdge(v[0], v[1])

	require.NoError(t, g.Clear())
	assert.Equal(t, 0, g.Len())
	assert.Equal(t, 0, g.HalfEdges().Len())
	_, err := g.Next(h)
	assert.Error(t, err)

	a, b := g.AddVertex(), g.AddVertex()
	_, err = g.AddEdge(a, b)
	require.NoError(t, err)
	require.NoError(t, g.CheckTopology())
}

func TestGraphHalfEdgeIndexRange(t *testing.T) {
	g, v := path(t)
	e, ok := g.FindEdge(v[0], v[1])
	require.True(t, ok)

	for _, i := range []int{-1, 2, 3} {
		assert.False(t, g.HalfEdge(e, i).Valid(), "index %d", i)
	}
	assert.Equal(t, g.HalfEdge(e, 1), g.Opposite(g.HalfEdge(e, 0)))
}

func TestGraphCollectionDeletesUnlink(t *testing.T) {
	g, v := path(t)
	e, _ := g.FindEdge(v[0], v[1])

	require.NoError(t, g.Edges().Delete(e))
	assert.Equal(t, []int{0, 1, 1}, valences(t, g, v...))
	require.NoError(t, g.CheckTopology())

	require.NoError(t, g.Vertices().Delete(v[2]))
	assert.Equal(t, []int{0, 0}, valences(t, g, v[0], v[1]))
	assert.Equal(t, 2, g.Edges().DeletedCount())

	require.NoError(t, g.GarbageCollection())
	assert.Equal(t, 2, g.Len())
	assert.Equal(t, 0, g.HalfEdges().Len())
	require.NoError(t, g.CheckTopology())
}

func TestGraphCollectionDeleteWaitsForEdgeLock(t *testing.T) {
	g, v := path(t)

	cursor := FactoryNewCursor(g.Edges())
	require.True(t, cursor.Next())
	require.NoError(t, g.Vertices().Delete(v[1]))
	assert.Equal(t, 0, g.Edges().DeletedCount())
	deleted, err := g.Vertices().IsDeleted(v[1])
	require.NoError(t, err)
	assert.False(t, deleted)

	cursor.Reset()
	require.NoError(t, cursor.Err())
	deleted, _ = g.Vertices().IsDeleted(v[1])
	assert.True(t, deleted)
	assert.Equal(t, []int{0, 0}, valences(t, g, v[0], v[2]))
	require.NoError(t, g.CheckTopology())
}

func TestGraphClearRefusedWhileLocked(t *testing.T) {
	g, _ := path(t)

	cursor := FactoryNewCursor(g.Edges())
	require.True(t, cursor.Next())
	assert.ErrorAs(t, g.Clear(), &LockedError{})
	assert.Equal(t, 3, g.Len())
	assert.Equal(t, 4, g.HalfEdges().Len())

	cursor.Reset()
	require.NoError(t, g.Clear())
	assert.Equal(t, 0, g.Len())
}

func TestGraphEdgeClearStalesHalfEdges(t *testing.T) {
	g, v := path(t)
	h, _ := g.FindHalfEdge(v[0], v[1])

	require.NoError(t, g.Edges().Clear())
	assert.Equal(t, 0, g.HalfEdges().Len())
	_, err := g.Next(h)
	assert.ErrorAs(t, err, &StaleHandleError{})
	assert.Equal(t, []int{0, 0, 0}, valences(t, g, v...))
	require.NoError(t, g.CheckTopology())

	_, err = g.AddEdge(v[0], v[2])
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0, 1}, valences(t, g, v...))
	require.NoError(t, g.CheckTopology())
}

func TestGraphVertexClearDetachesEdges(t *testing.T) {
	g, v := path(t)
	e, _ := g.FindEdge(v[0], v[1])

	require.NoError(t, g.Vertices().Clear())
	h0 := g.HalfEdge(e, 0)
	target, err := g.Target(h0)
	require.NoError(t, err)
	assert.False(t, target.Valid())
	next, err := g.Next(h0)
	require.NoError(t, err)
	assert.Equal(t, g.HalfEdge(e, 1), next)

	n, err := g.Valence(g.AddVertex())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestGraphRandomizedTopology(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	g := Factory.NewGraph()

	for step := range 2000 {
		vertices := slices.Collect(g.Vertices().Live())
		edges := slices.Collect(g.Edges().Live())
		op := rng.IntN(12)

		switch {
		case op < 3 || len(vertices) < 2:
			g.AddVertex()
		case op < 7:
			a, b := vertices[rng.IntN(len(vertices))], vertices[rng.IntN(len(vertices))]
			if a != b {
				_, err := g.AddEdge(a, b)
				require.NoError(t, err)
			}
		case op < 9 && len(edges) > 0:
			e := edges[rng.IntN(len(edges))]
			if op == 7 {
				require.NoError(t, g.DeleteEdge(e))
			} else {
				require.NoError(t, g.Edges().Delete(e))
			}
		case op == 9:
			require.NoError(t, g.DeleteVertex(vertices[rng.IntN(len(vertices))]))
		case op == 10:
			require.NoError(t, g.Vertices().Delete(vertices[rng.IntN(len(vertices))]))
		case op == 11:
			require.NoError(t, g.GarbageCollection())
		}

		require.NoError(t, g.CheckTopology(), "step %d", step)
		total := 0
		for v := range g.Vertices().Live() {
			n, err := g.Valence(v)
			require.NoError(t, err)
			total += n
		}
		require.Equal(t, 2*g.Edges().LiveCount(), total, "step %d", step)
	}
}
