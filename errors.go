package propstore

import "fmt"

type IndexOutOfRangeError struct {
	Index, Size int
}

func (e IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("index %d out of range [0, %d)", e.Index, e.Size)
}

type InvalidHandleError struct {
	Kind string
}

func (e InvalidHandleError) Error() string {
	return fmt.Sprintf("invalid %s handle", e.Kind)
}

// StaleHandleError is returned for a handle issued before the last
// compaction of its collection.
type StaleHandleError struct {
	Handle     fmt.Stringer
	Generation uint32
}

func (e StaleHandleError) Error() string {
	return fmt.Sprintf("stale handle %v: collection is at generation %d", e.Handle, e.Generation)
}

type InvalidPropertyError struct {
	Name string
}

func (e InvalidPropertyError) Error() string {
	if e.Name == "" {
		return "property is not bound to a column"
	}
	return fmt.Sprintf("property %q is not bound to a column", e.Name)
}

type LockedError struct{}

func (e LockedError) Error() string {
	return "collection is currently locked"
}

type LockNotHeldError struct {
	Bit uint32
}

func (e LockNotHeldError) Error() string {
	return fmt.Sprintf("lock bit %d is not held", e.Bit)
}

type LockBitRangeError struct {
	Bit uint32
}

func (e LockBitRangeError) Error() string {
	return fmt.Sprintf("lock bit %d exceeds maximum of %d", e.Bit, MaxLockBits-1)
}

type InvalidEndpointError struct {
	Vertex VertexHandle
	Err    error
}

func (e InvalidEndpointError) Error() string {
	return fmt.Sprintf("invalid edge endpoint %v: %v", e.Vertex, e.Err)
}

func (e InvalidEndpointError) Unwrap() error {
	return e.Err
}

type CycleError struct {
	Node NodeHandle
}

func (e CycleError) Error() string {
	return fmt.Sprintf("cycle detected at %v", e.Node)
}

type StoreExistsError struct {
	Name string
}

func (e StoreExistsError) Error() string {
	return fmt.Sprintf("store already registered: %s", e.Name)
}

type StoreNotFoundError struct {
	Name string
}

func (e StoreNotFoundError) Error() string {
	return fmt.Sprintf("store not registered: %s", e.Name)
}

type SchemaFullError struct {
	Capacity int
}

func (e SchemaFullError) Error() string {
	return fmt.Sprintf("schema at maximum capacity (%d)", e.Capacity)
}

type TopologyError struct {
	HalfEdge HalfEdgeHandle
	Reason   string
}

func (e TopologyError) Error() string {
	return fmt.Sprintf("broken topology at %v: %s", e.HalfEdge, e.Reason)
}

type GridDimensionsError struct {
	X, Y, Z int
}

func (e GridDimensionsError) Error() string {
	return fmt.Sprintf("invalid grid dimensions %dx%dx%d", e.X, e.Y, e.Z)
}
