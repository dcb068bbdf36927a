package propstore

import "iter"

var _ Store = &VoxelGrid{}

// VoxelGrid stores only occupied cells of an nx*ny*nz grid. A hash index
// maps each occupied cell's linear index to its voxel row.
type VoxelGrid struct {
	voxels *Collection[VoxelKind]
	index  Property[VoxelKind, int]
	sparse map[int]VoxelHandle

	nx, ny, nz int
}

func newVoxelGrid(nx, ny, nz int) (*VoxelGrid, error) {
	if nx <= 0 || ny <= 0 || nz <= 0 {
		return nil, GridDimensionsError{X: nx, Y: ny, Z: nz}
	}
	g := &VoxelGrid{
		sparse: make(map[int]VoxelHandle),
		nx:     nx,
		ny:     ny,
		nz:     nz,
	}
	g.voxels = newCollection(CollectionHooks[VoxelKind]{
		Delete: g.deleteVoxel,
		Patch:  g.rebuildIndex,
	})
	g.index = addBuiltin(g.voxels.container, columnName[VoxelKind]("index"), -1)
	return g, nil
}

// Voxels exposes the voxel collection. Deletes issued through it empty the
// cell the same way DeleteVoxel does.
func (g *VoxelGrid) Voxels() *Collection[VoxelKind] {
	return g.voxels
}

func (g *VoxelGrid) Dimensions() (nx, ny, nz int) {
	return g.nx, g.ny, g.nz
}

func (g *VoxelGrid) Len() int {
	return g.voxels.Len()
}

// Occupied is the number of live voxels.
func (g *VoxelGrid) Occupied() int {
	return len(g.sparse)
}

func (g *VoxelGrid) Columns() []string {
	return g.voxels.Columns()
}

// LinearIndex flattens a cell coordinate, x varying fastest.
func (g *VoxelGrid) LinearIndex(x, y, z int) (int, error) {
	switch {
	case x < 0 || x >= g.nx:
		return -1, IndexOutOfRangeError{Index: x, Size: g.nx}
	case y < 0 || y >= g.ny:
		return -1, IndexOutOfRangeError{Index: y, Size: g.ny}
	case z < 0 || z >= g.nz:
		return -1, IndexOutOfRangeError{Index: z, Size: g.nz}
	}
	return x + g.nx*(y+g.ny*z), nil
}

func (g *VoxelGrid) Coord(linear int) (x, y, z int, err error) {
	if total := g.nx * g.ny * g.nz; linear < 0 || linear >= total {
		return 0, 0, 0, IndexOutOfRangeError{Index: linear, Size: total}
	}
	x = linear % g.nx
	y = (linear / g.nx) % g.ny
	z = linear / (g.nx * g.ny)
	return x, y, z, nil
}

// Insert returns the voxel at the cell, creating it if the cell is empty.
func (g *VoxelGrid) Insert(x, y, z int) (VoxelHandle, error) {
	linear, err := g.LinearIndex(x, y, z)
	if err != nil {
		return VoxelHandle{}, err
	}
	return g.insert(linear), nil
}

func (g *VoxelGrid) InsertLinear(linear int) (VoxelHandle, error) {
	if _, _, _, err := g.Coord(linear); err != nil {
		return VoxelHandle{}, err
	}
	return g.insert(linear), nil
}

func (g *VoxelGrid) insert(linear int) VoxelHandle {
	if v, ok := g.sparse[linear]; ok {
		return v
	}
	v := g.voxels.New()
	g.index.set(v, linear)
	g.sparse[linear] = v
	return v
}

func (g *VoxelGrid) Find(x, y, z int) (VoxelHandle, bool) {
	linear, err := g.LinearIndex(x, y, z)
	if err != nil {
		return VoxelHandle{}, false
	}
	return g.FindLinear(linear)
}

func (g *VoxelGrid) FindLinear(linear int) (VoxelHandle, bool) {
	v, ok := g.sparse[linear]
	return v, ok
}

// VoxelIndex returns the linear cell index stored for v.
func (g *VoxelGrid) VoxelIndex(v VoxelHandle) (int, error) {
	return g.index.Get(v)
}

func (g *VoxelGrid) VoxelCoord(v VoxelHandle) (x, y, z int, err error) {
	linear, err := g.index.Get(v)
	if err != nil {
		return 0, 0, 0, err
	}
	return g.Coord(linear)
}

// Occupancy iterates live voxels with their linear cell index.
func (g *VoxelGrid) Occupancy() iter.Seq2[VoxelHandle, int] {
	return func(yield func(VoxelHandle, int) bool) {
		for v := range g.voxels.Live() {
			if !yield(v, g.index.get(v)) {
				return
			}
		}
	}
}

// DeleteVoxel empties v's cell and flags its row.
func (g *VoxelGrid) DeleteVoxel(v VoxelHandle) error {
	if g.voxels.Locked() {
		return LockedError{}
	}
	if err := g.voxels.Check(v); err != nil {
		return err
	}
	g.deleteVoxel(v)
	return nil
}

func (g *VoxelGrid) deleteVoxel(v VoxelHandle) {
	if g.voxels.deleted.get(v) {
		return
	}
	linear := g.index.get(v)
	if cur, ok := g.sparse[linear]; ok && cur == v {
		delete(g.sparse, linear)
	}
	g.voxels.markDeleted(v.Index())
}

func (g *VoxelGrid) EnqueueDeleteVoxel(v VoxelHandle) error {
	if !g.voxels.Locked() {
		return g.DeleteVoxel(v)
	}
	if err := g.voxels.Check(v); err != nil {
		return err
	}
	g.voxels.enqueue(v, func() error {
		g.deleteVoxel(v)
		return nil
	})
	return nil
}

func (g *VoxelGrid) IsDeleted(v VoxelHandle) (bool, error) {
	return g.voxels.IsDeleted(v)
}

// GarbageCollection compacts deleted voxels away and rebuilds the sparse
// index from the surviving rows, empty survivors included.
func (g *VoxelGrid) GarbageCollection() error {
	return g.voxels.GarbageCollection()
}

func (g *VoxelGrid) EnqueueGarbageCollection() error {
	return g.voxels.EnqueueGarbageCollection()
}

func (g *VoxelGrid) rebuildIndex(remap Remap[VoxelKind]) {
	clear(g.sparse)
	linear := g.index.arr.data
	for i := 0; i < remap.Len(); i++ {
		g.sparse[linear[i]] = newHandle[VoxelKind](i, remap.Generation())
	}
}

func (g *VoxelGrid) Clear() error {
	if err := g.voxels.Clear(); err != nil {
		return err
	}
	clear(g.sparse)
	return nil
}

func (g *VoxelGrid) Locked() bool {
	return g.voxels.Locked()
}

func (g *VoxelGrid) Lock() {
	g.voxels.Lock()
}

func (g *VoxelGrid) Unlock() error {
	return g.voxels.Unlock()
}

func (g *VoxelGrid) NewCursor() *Cursor[VoxelKind] {
	return newCursor(g.voxels)
}
