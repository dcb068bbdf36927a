package propstore

import (
	"iter"
	"reflect"
)

// Column is the type-erased view of an Array that containers fan structural
// changes out to.
type Column interface {
	Name() string
	Len() int
	Dims() int
	Type() reflect.Type
	Reserve(n int)
	Resize(n int)
	PushBack()
	Swap(i, j int) error
	FreeMemory()
	Clone() Column

	swap(i, j int)
	bind(*header)
	bound() bool
}

// Store is an entity collection specialization that a Registry can own.
type Store interface {
	Len() int
	Columns() []string
	GarbageCollection() error
	EnqueueGarbageCollection() error
	Clear() error
	Locked() bool
	Lock()
	Unlock() error
}

type Query interface {
	QueryNode
	And(items ...interface{}) QueryNode
	Or(items ...interface{}) QueryNode
	Not(items ...interface{}) QueryNode
}

type QueryNode interface {
	Evaluate(store Store, schema Schema) bool
}

// Schema assigns every column name a stable bit for query masks.
type Schema interface {
	BitFor(name string) (uint32, error)
	Lookup(name string) (uint32, bool)
	Len() int
}

type iCursor[K Kind] interface {
	Next() bool
	Handle() Handle[K]
	Handles() iter.Seq2[int, Handle[K]]
	Reset()
}

// CollectionHooks let a specialization take part in deletion and the shared
// compaction pass. Delete replaces the plain deleted flag for every delete
// issued through the collection itself. Swap and Resize cover storage kept
// outside the collection's own container; Patch rewrites cross references
// once row moves are known.
type CollectionHooks[K Kind] struct {
	Delete func(h Handle[K])
	Swap   func(i, j int)
	Resize func(n int)
	Patch  func(remap Remap[K])
}

// Vec3 is the fixed-size position element used by vertex columns.
type Vec3 [3]float32
