package propstore

import (
	"iter"
	"reflect"
	"slices"

	iter_util "github.com/TheBitDrifter/util/iter"
)

// header is the row count and generation shared by a container with every
// column it owns.
type header struct {
	size  int
	epoch uint32
}

// Container owns a set of columns that always have the same length.
type Container[K Kind] struct {
	header
	columns []Column
	byName  map[string]int
	pinned  map[string]struct{}
}

// ColumnInfo describes one registered column for introspection.
type ColumnInfo struct {
	Name string
	Type reflect.Type
	Dims int
	Len  int
}

func newContainer[K Kind]() *Container[K] {
	return &Container[K]{
		byName: make(map[string]int),
		pinned: make(map[string]struct{}),
	}
}

// AddProperty registers a new column named name whose rows default to def.
// A taken name is not an error: a warning is logged and an invalid property
// is returned, leaving the existing column untouched.
func AddProperty[T any, K Kind](c *Container[K], name string, def T) Property[K, T] {
	if idx, ok := c.byName[name]; ok {
		Config.logger.LogDuplicateProperty(name, c.columns[idx].Type(), reflect.TypeFor[T]())
		return Property[K, T]{}
	}
	arr := NewArray(name, def)
	arr.Resize(c.size)
	arr.bind(&c.header)
	c.byName[name] = len(c.columns)
	c.columns = append(c.columns, arr)
	return Property[K, T]{arr: arr}
}

// GetProperty returns the column named name, or an invalid property if it is
// absent or stores a type other than T.
func GetProperty[T any, K Kind](c *Container[K], name string) Property[K, T] {
	idx, ok := c.byName[name]
	if !ok {
		return Property[K, T]{}
	}
	arr, ok := c.columns[idx].(*Array[T])
	if !ok {
		Config.logger.LogTypeMismatch(name, c.columns[idx].Type(), reflect.TypeFor[T]())
		return Property[K, T]{}
	}
	return Property[K, T]{arr: arr}
}

// GetOrAddProperty returns the existing column or registers it with def.
func GetOrAddProperty[T any, K Kind](c *Container[K], name string, def T) Property[K, T] {
	if c.Has(name) {
		return GetProperty[T](c, name)
	}
	return AddProperty(c, name, def)
}

// RemoveProperty deletes the column behind p and invalidates p. Other copies
// of the property report invalid from then on.
func RemoveProperty[T any, K Kind](c *Container[K], p *Property[K, T]) bool {
	if p == nil || !p.Valid() {
		return false
	}
	idx, ok := c.byName[p.arr.name]
	if !ok || c.columns[idx] != Column(p.arr) {
		return false
	}
	if _, pin := c.pinned[p.arr.name]; pin {
		return false
	}
	c.removeAt(idx)
	*p = Property[K, T]{}
	return true
}

func (c *Container[K]) removeAt(idx int) {
	col := c.columns[idx]
	col.bind(nil)
	delete(c.byName, col.Name())
	c.columns = slices.Delete(c.columns, idx, idx+1)
	for i := idx; i < len(c.columns); i++ {
		c.byName[c.columns[i].Name()] = i
	}
}

func (c *Container[K]) Len() int {
	return c.size
}

// Generation is bumped whenever row indices may have moved.
func (c *Container[K]) Generation() uint32 {
	return c.epoch
}

func (c *Container[K]) Has(name string) bool {
	_, ok := c.byName[name]
	return ok
}

// Column returns the type-erased column named name, or nil.
func (c *Container[K]) Column(name string) Column {
	idx, ok := c.byName[name]
	if !ok {
		return nil
	}
	return c.columns[idx]
}

// Columns iterates registered columns in registration order.
func (c *Container[K]) Columns() iter.Seq[Column] {
	return func(yield func(Column) bool) {
		for _, col := range c.columns {
			if !yield(col) {
				return
			}
		}
	}
}

func (c *Container[K]) columnNames() iter.Seq[string] {
	return func(yield func(string) bool) {
		for col := range c.Columns() {
			if !yield(col.Name()) {
				return
			}
		}
	}
}

// Names lists column names in registration order.
func (c *Container[K]) Names() []string {
	return iter_util.Collect(c.columnNames())
}

func (c *Container[K]) Describe() []ColumnInfo {
	infos := make([]ColumnInfo, 0, len(c.columns))
	for _, col := range c.columns {
		infos = append(infos, ColumnInfo{
			Name: col.Name(),
			Type: col.Type(),
			Dims: col.Dims(),
			Len:  col.Len(),
		})
	}
	return infos
}

// PushBack appends one row holding every column's default and returns its
// index.
func (c *Container[K]) PushBack() int {
	for _, col := range c.columns {
		col.PushBack()
	}
	c.size++
	return c.size - 1
}

func (c *Container[K]) Resize(n int) {
	if n < 0 {
		n = 0
	}
	for _, col := range c.columns {
		col.Resize(n)
	}
	c.size = n
}

func (c *Container[K]) Reserve(n int) {
	for _, col := range c.columns {
		col.Reserve(n)
	}
}

// Swap exchanges rows i and j in every column.
func (c *Container[K]) Swap(i, j int) error {
	if i < 0 || i >= c.size {
		return IndexOutOfRangeError{Index: i, Size: c.size}
	}
	if j < 0 || j >= c.size {
		return IndexOutOfRangeError{Index: j, Size: c.size}
	}
	c.swap(i, j)
	return nil
}

func (c *Container[K]) swap(i, j int) {
	for _, col := range c.columns {
		col.swap(i, j)
	}
}

func (c *Container[K]) FreeMemory() {
	for _, col := range c.columns {
		col.FreeMemory()
	}
}

// Clear destroys every column and drops every row. Properties bound to the
// destroyed columns become invalid. Columns pinned by an owning collection
// survive with zero rows.
func (c *Container[K]) Clear() {
	for i := len(c.columns) - 1; i >= 0; i-- {
		if _, pin := c.pinned[c.columns[i].Name()]; !pin {
			c.removeAt(i)
		}
	}
	c.Resize(0)
	c.FreeMemory()
	c.epoch++
}

// pin protects a column that the owning collection depends on from
// RemoveProperty and Clear.
func (c *Container[K]) pin(name string) {
	c.pinned[name] = struct{}{}
}

// Clone deep-copies every column into a new container at the same
// generation, so handles into c also address the copy.
func (c *Container[K]) Clone() *Container[K] {
	cloned := newContainer[K]()
	cloned.header = c.header
	for name := range c.pinned {
		cloned.pin(name)
	}
	for _, col := range c.columns {
		cp := col.Clone()
		cp.bind(&cloned.header)
		cloned.byName[cp.Name()] = len(cloned.columns)
		cloned.columns = append(cloned.columns, cp)
	}
	return cloned
}

// Handle returns the handle of row i under the current generation.
func (c *Container[K]) Handle(i int) (Handle[K], error) {
	if i < 0 || i >= c.size {
		return Handle[K]{}, IndexOutOfRangeError{Index: i, Size: c.size}
	}
	return c.handle(i), nil
}

func (c *Container[K]) handle(i int) Handle[K] {
	return newHandle[K](i, c.epoch)
}

// Check validates h against the current rows and generation.
func (c *Container[K]) Check(h Handle[K]) error {
	return checkHandle(&c.header, h)
}

func checkHandle[K Kind](hd *header, h Handle[K]) error {
	if !h.Valid() {
		var k K
		return InvalidHandleError{Kind: k.Label()}
	}
	if h.gen != hd.epoch {
		return StaleHandleError{Handle: h, Generation: hd.epoch}
	}
	if idx := h.Index(); idx >= hd.size {
		return IndexOutOfRangeError{Index: idx, Size: hd.size}
	}
	return nil
}

func (c *Container[K]) advanceEpoch() {
	c.epoch++
}
