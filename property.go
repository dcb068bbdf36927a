package propstore

// Property is a checked, typed view bound once to one column. It stays valid
// while the column exists, across any resize of the owning container.
type Property[K Kind, T any] struct {
	arr *Array[T]
}

// Valid reports whether the property is still bound to a live column.
func (p Property[K, T]) Valid() bool {
	return p.arr != nil && p.arr.bound()
}

func (p Property[K, T]) Name() string {
	if p.arr == nil {
		return ""
	}
	return p.arr.name
}

// Array returns the bound column, or nil for an invalid property.
func (p Property[K, T]) Array() *Array[T] {
	if !p.Valid() {
		return nil
	}
	return p.arr
}

func (p Property[K, T]) Get(h Handle[K]) (T, error) {
	if err := p.check(h); err != nil {
		var zero T
		return zero, err
	}
	return p.arr.data[h.Index()], nil
}

func (p Property[K, T]) Set(h Handle[K], v T) error {
	if err := p.check(h); err != nil {
		return err
	}
	p.arr.data[h.Index()] = v
	return nil
}

// Ref returns a pointer to the row's value. Any resize of the container
// invalidates it.
func (p Property[K, T]) Ref(h Handle[K]) (*T, error) {
	if err := p.check(h); err != nil {
		return nil, err
	}
	return &p.arr.data[h.Index()], nil
}

// Values exposes the column's backing slice, nil for an invalid property.
func (p Property[K, T]) Values() []T {
	if !p.Valid() {
		return nil
	}
	return p.arr.data
}

func (p Property[K, T]) check(h Handle[K]) error {
	if !p.Valid() {
		err := InvalidPropertyError{Name: p.Name()}
		Config.logger.LogInvalidAccess(p.Name(), err)
		return err
	}
	return checkHandle(p.arr.owner, h)
}

// get and set skip validation for callers that already checked h against
// the owning container.
func (p Property[K, T]) get(h Handle[K]) T {
	return p.arr.data[h.Index()]
}

func (p Property[K, T]) set(h Handle[K], v T) {
	p.arr.data[h.Index()] = v
}
