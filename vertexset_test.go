package propstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVertexSetPositions(t *testing.T) {
	s := Factory.NewVertexSet()
	a := s.NewVertex(Vec3{1, 2, 3})
	b := s.NewVertex(Vec3{-1, 5, 0})

	p, err := s.Position(a)
	require.NoError(t, err)
	assert.Equal(t, Vec3{1, 2, 3}, p)

	require.NoError(t, s.SetPosition(b, Vec3{-2, 4, 1}))
	lo, hi, ok := s.Bounds()
	require.True(t, ok)
	assert.Equal(t, Vec3{-2, 2, 1}, lo)
	assert.Equal(t, Vec3{1, 4, 3}, hi)
}

func TestVertexSetBoundsSkipsDeleted(t *testing.T) {
	s := Factory.NewVertexSet()
	_, _, ok := s.Bounds()
	assert.False(t, ok)

	far := s.NewVertex(Vec3{100, 100, 100})
	s.NewVertex(Vec3{0, 0, 0})
	require.NoError(t, s.DeleteVertex(far))

	_, hi, ok := s.Bounds()
	require.True(t, ok)
	assert.Equal(t, Vec3{}, hi)
}

func TestVertexSetCollect(t *testing.T) {
	s := Factory.NewVertexSet()
	var handles []VertexHandle
	for i := range 5 {
		handles = append(handles, s.NewVertex(Vec3{float32(i), 0, 0}))
	}
	require.NoError(t, s.DeleteVertex(handles[1]))
	require.NoError(t, s.DeleteVertex(handles[3]))

	deleted, err := s.IsDeleted(handles[3])
	require.NoError(t, err)
	assert.True(t, deleted)

	require.NoError(t, s.GarbageCollection())
	assert.Equal(t, 3, s.Len())

	var xs []float32
	cursor := s.NewCursor()
	for _, v := range cursor.Handles() {
		p, err := s.Position(v)
		require.NoError(t, err)
		xs = append(xs, p[0])
	}
	assert.ElementsMatch(t, []float32{0, 2, 4}, xs)
	assert.False(t, s.Locked())
	assert.ElementsMatch(t, []string{"v:deleted", "v:position"}, s.Columns())
}

func TestCursorEarlyBreakReleasesLock(t *testing.T) {
	s := Factory.NewVertexSet()
	for range 4 {
		s.NewVertex(Vec3{})
	}

	cursor := s.NewCursor()
	for i := range cursor.Handles() {
		if i == 1 {
			break
		}
	}
	assert.False(t, s.Locked())

	require.True(t, cursor.Next())
	assert.Equal(t, 3, cursor.Remaining())
	assert.True(t, s.Locked())
	cursor.Reset()
	assert.False(t, s.Locked())
	assert.False(t, cursor.Handle().Valid())
}

func TestCursorNestedWalks(t *testing.T) {
	s := Factory.NewVertexSet()
	first := s.NewVertex(Vec3{})
	s.NewVertex(Vec3{})

	outer := s.NewCursor()
	inner := s.NewCursor()
	pairs := 0
	for outer.Next() {
		for inner.Next() {
			pairs++
		}
		assert.True(t, s.Locked(), "outer walk still holds the lock")
	}
	assert.Equal(t, 4, pairs)

	require.NoError(t, s.EnqueueDeleteVertex(first))
	deleted, _ := s.IsDeleted(first)
	assert.True(t, deleted, "unlocked set deletes immediately")
}
