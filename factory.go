package propstore

type factory struct{}

var Factory factory

func (f factory) NewTree() *Tree {
	return newTree()
}

func (f factory) NewVertexSet() *VertexSet {
	return newVertexSet()
}

func (f factory) NewVoxelGrid(nx, ny, nz int) (*VoxelGrid, error) {
	return newVoxelGrid(nx, ny, nz)
}

func (f factory) NewGraph() *Graph {
	return newGraph()
}

func (f factory) NewRegistry() *Registry {
	return newRegistry()
}

func (f factory) NewQuery() Query {
	return newQuery()
}

func FactoryNewContainer[K Kind]() *Container[K] {
	return newContainer[K]()
}

// FactoryNewCollection creates a bare collection for a custom
// specialization; hooks may be the zero value.
func FactoryNewCollection[K Kind](hooks CollectionHooks[K]) *Collection[K] {
	return newCollection(hooks)
}

func FactoryNewCursor[K Kind](c *Collection[K]) *Cursor[K] {
	return newCursor(c)
}
