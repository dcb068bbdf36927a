package propstore

import (
	"reflect"
	"slices"
)

var _ Column = &Array[int]{}

// Array is a densely packed column of T values with a default used for every
// row the column grows by.
type Array[T any] struct {
	name  string
	def   T
	data  []T
	owner *header
}

// NewArray creates a detached column. It becomes part of a container through
// AddProperty.
func NewArray[T any](name string, def T) *Array[T] {
	return &Array[T]{name: name, def: def}
}

func (a *Array[T]) Name() string {
	return a.name
}

func (a *Array[T]) Len() int {
	return len(a.data)
}

func (a *Array[T]) Default() T {
	return a.def
}

func (a *Array[T]) Type() reflect.Type {
	return reflect.TypeFor[T]()
}

// Dims is the element arity: the length for fixed-size array elements,
// 1 otherwise.
func (a *Array[T]) Dims() int {
	t := a.Type()
	if t.Kind() == reflect.Array {
		return t.Len()
	}
	return 1
}

func (a *Array[T]) Reserve(n int) {
	if n > cap(a.data) {
		a.data = slices.Grow(a.data, n-len(a.data))
	}
}

func (a *Array[T]) Resize(n int) {
	if n < 0 {
		n = 0
	}
	switch {
	case n < len(a.data):
		clear(a.data[n:])
		a.data = a.data[:n]
	case n > len(a.data):
		a.Reserve(n)
		for len(a.data) < n {
			a.data = append(a.data, a.def)
		}
	}
}

func (a *Array[T]) PushBack() {
	a.data = append(a.data, a.def)
}

// Swap exchanges the values of rows i and j.
func (a *Array[T]) Swap(i, j int) error {
	if err := a.check(i); err != nil {
		return err
	}
	if err := a.check(j); err != nil {
		return err
	}
	a.swap(i, j)
	return nil
}

func (a *Array[T]) swap(i, j int) {
	a.data[i], a.data[j] = a.data[j], a.data[i]
}

// FreeMemory releases capacity beyond the current length.
func (a *Array[T]) FreeMemory() {
	if cap(a.data) == len(a.data) {
		return
	}
	if len(a.data) == 0 {
		a.data = nil
		return
	}
	shrunk := make([]T, len(a.data))
	copy(shrunk, a.data)
	a.data = shrunk
}

// Clone returns a detached copy. Element values are copied as-is, so
// reference-typed elements still share their backing storage.
func (a *Array[T]) Clone() Column {
	return a.clone()
}

func (a *Array[T]) clone() *Array[T] {
	return &Array[T]{
		name: a.name,
		def:  a.def,
		data: slices.Clone(a.data),
	}
}

func (a *Array[T]) At(i int) (T, error) {
	if err := a.check(i); err != nil {
		var zero T
		return zero, err
	}
	return a.data[i], nil
}

func (a *Array[T]) SetAt(i int, v T) error {
	if err := a.check(i); err != nil {
		return err
	}
	a.data[i] = v
	return nil
}

// Ref returns a pointer into the column. It is invalidated by any resize.
func (a *Array[T]) Ref(i int) (*T, error) {
	if err := a.check(i); err != nil {
		return nil, err
	}
	return &a.data[i], nil
}

// Values exposes the backing slice for bulk reads and writes.
func (a *Array[T]) Values() []T {
	return a.data
}

func (a *Array[T]) check(i int) error {
	if i < 0 || i >= len(a.data) {
		return IndexOutOfRangeError{Index: i, Size: len(a.data)}
	}
	return nil
}

func (a *Array[T]) bind(h *header) {
	a.owner = h
}

func (a *Array[T]) bound() bool {
	return a.owner != nil
}
