package field

import (
	"fmt"
	"sort"
)

// ElemKind distinguishes fields of plain scalars from fields whose elements
// are small matrices (vectors are n×1 matrices).
type ElemKind int

const (
	KindScalar ElemKind = iota
	KindMatrix
)

func (k ElemKind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindMatrix:
		return "matrix"
	default:
		return "unknown"
	}
}

// Field is a named, typed storage region. Shape and layout are fixed at
// Place time; after that all metadata accessors are pure and safe for
// concurrent readers.
type Field struct {
	name  string
	dtype DType
	kind  ElemKind
	rows  int
	cols  int

	placed bool
	node   *SNode
	levels []axisExtent // flattened chain, outermost first

	axes      []Axis      // distinct axes, ascending id
	slot      map[Axis]int // axis -> position in axes / in caller index lists
	shape     []int        // logical extent per axis, same order as axes
	innerSame []int64      // per level: product of extents of later levels on the same axis
	cells     int64
	data      []byte
}

// NewScalar declares an unplaced scalar field.
func NewScalar(name string, dt DType) *Field {
	return &Field{name: name, dtype: dt, kind: KindScalar, rows: 1, cols: 1}
}

// NewVector declares an unplaced field of n-component vectors.
func NewVector(name string, dt DType, n int) *Field {
	return &Field{name: name, dtype: dt, kind: KindMatrix, rows: n, cols: 1}
}

// NewMatrix declares an unplaced field of n×m matrix elements.
func NewMatrix(name string, dt DType, n, m int) *Field {
	return &Field{name: name, dtype: dt, kind: KindMatrix, rows: n, cols: m}
}

// FromShape declares and places a scalar field dense over axes 0..len(shape)-1
// in row-major order, the common case for fields created without an explicit
// tree.
func FromShape(name string, dt DType, shape ...int) (*Field, error) {
	if len(shape) == 0 {
		return nil, fmt.Errorf("field %s: empty shape", name)
	}
	axes := make([]Axis, len(shape))
	for i := range shape {
		axes[i] = Axis(i)
	}
	f := NewScalar(name, dt)
	if err := NewTree().Root().DenseAxes(axes, shape).Place(f); err != nil {
		return nil, err
	}
	return f, nil
}

// bind finalizes the field against a flattened chain. Called by SNode.Place.
func (f *Field) bind(n *SNode, levels []axisExtent) error {
	if f.rows < 1 || f.cols < 1 {
		return fmt.Errorf("field %s: invalid element shape %dx%d", f.name, f.rows, f.cols)
	}
	if f.dtype.Size() == 0 {
		return fmt.Errorf("field %s: unsupported dtype", f.name)
	}

	extent := map[Axis]int{}
	for _, lv := range levels {
		if _, ok := extent[lv.axis]; !ok {
			extent[lv.axis] = 1
		}
		extent[lv.axis] *= lv.extent
	}
	axes := make([]Axis, 0, len(extent))
	for ax := range extent {
		axes = append(axes, ax)
	}
	sort.Slice(axes, func(i, j int) bool { return axes[i] < axes[j] })

	slot := make(map[Axis]int, len(axes))
	shape := make([]int, len(axes))
	for i, ax := range axes {
		slot[ax] = i
		shape[i] = extent[ax]
	}

	// For axes spanning several levels the logical index splits into
	// per-level digits; innerSame holds the divisor for each level's digit.
	innerSame := make([]int64, len(levels))
	for i := range levels {
		prod := int64(1)
		for j := i + 1; j < len(levels); j++ {
			if levels[j].axis == levels[i].axis {
				prod *= int64(levels[j].extent)
			}
		}
		innerSame[i] = prod
	}

	cells := int64(1)
	for _, lv := range levels {
		cells *= int64(lv.extent)
	}

	f.node = n
	f.levels = levels
	f.axes = axes
	f.slot = slot
	f.shape = shape
	f.innerSame = innerSame
	f.cells = cells
	f.data = make([]byte, cells*int64(f.CellSize()))
	f.placed = true
	return nil
}

// Name returns the field's declared name.
func (f *Field) Name() string { return f.name }

// DType returns the field's scalar element type.
func (f *Field) DType() DType { return f.dtype }

// Kind reports whether elements are scalars or small matrices.
func (f *Field) Kind() ElemKind { return f.kind }

// Rows returns the per-element row count (1 for scalar fields).
func (f *Field) Rows() int { return f.rows }

// Cols returns the per-element column count (1 for scalar fields).
func (f *Field) Cols() int { return f.cols }

// Node returns the storage node the field is placed under, or nil before
// placement.
func (f *Field) Node() *SNode { return f.node }

// Shape returns the logical extent per used axis, in ascending axis-id order.
// The returned slice is a copy.
func (f *Field) Shape() []int {
	out := make([]int, len(f.shape))
	copy(out, f.shape)
	return out
}

// NumCells returns the total number of elements.
func (f *Field) NumCells() int64 { return f.cells }

// CellSize returns the byte size of one element (all matrix components).
func (f *Field) CellSize() int { return f.dtype.Size() * f.rows * f.cols }

// Bytes exposes the backing storage for upload to GPU-visible buffers. The
// slice aliases the field's memory.
func (f *Field) Bytes() []byte { return f.data }

// PhysicalIndexPosition delegates to the field's storage node.
func (f *Field) PhysicalIndexPosition() (map[int]int, error) {
	if !f.placed {
		return nil, fmt.Errorf("field %s: %w", f.name, ErrNotPlaced)
	}
	return f.node.PhysicalIndexPosition(), nil
}

// Address returns the byte offset of the element at the given virtual
// indices (one per used axis, ascending axis-id order). The offset is
// row-major in the declared physical nesting order and scaled by the cell
// size, so stepping the physically innermost axis by one moves the address
// by exactly one cell.
func (f *Field) Address(indices ...int) (int64, error) {
	if !f.placed {
		return 0, fmt.Errorf("field %s: %w", f.name, ErrNotPlaced)
	}
	if len(indices) != len(f.axes) {
		return 0, fmt.Errorf("field %s: got %d indices, want %d", f.name, len(indices), len(f.axes))
	}
	for i, idx := range indices {
		if idx < 0 || idx >= f.shape[i] {
			return 0, fmt.Errorf("field %s: index %d out of range [0, %d) on axis %d",
				f.name, idx, f.shape[i], int(f.axes[i]))
		}
	}
	var off int64
	for l, lv := range f.levels {
		idx := int64(indices[f.slot[lv.axis]])
		digit := (idx / f.innerSame[l]) % int64(lv.extent)
		off = off*int64(lv.extent) + digit
	}
	return off * int64(f.CellSize()), nil
}

// SetComp writes one matrix component at the given indices. Components are
// stored row-major within the cell.
func (f *Field) SetComp(r, c int, v any, indices ...int) error {
	off, err := f.compOffset(r, c, indices)
	if err != nil {
		return err
	}
	return putScalar(f.data[off:off+int64(f.dtype.Size())], f.dtype, v)
}

// GetComp reads one matrix component at the given indices.
func (f *Field) GetComp(r, c int, indices ...int) (any, error) {
	off, err := f.compOffset(r, c, indices)
	if err != nil {
		return nil, err
	}
	return getScalar(f.data[off:off+int64(f.dtype.Size())], f.dtype)
}

// Set writes the element at the given indices. Only valid on scalar fields;
// matrix fields use SetComp.
func (f *Field) Set(v any, indices ...int) error {
	if f.kind != KindScalar {
		return fmt.Errorf("field %s: Set on %s field, use SetComp", f.name, f.kind)
	}
	return f.SetComp(0, 0, v, indices...)
}

// Get reads the element at the given indices. Only valid on scalar fields.
func (f *Field) Get(indices ...int) (any, error) {
	if f.kind != KindScalar {
		return nil, fmt.Errorf("field %s: Get on %s field, use GetComp", f.name, f.kind)
	}
	return f.GetComp(0, 0, indices...)
}

// SetFloat32 is the fast path for f32 scalar fields.
func (f *Field) SetFloat32(v float32, indices ...int) error {
	if f.dtype != F32 {
		return fmt.Errorf("field %s: SetFloat32 on %s field", f.name, f.dtype)
	}
	return f.Set(v, indices...)
}

// Float32At is the fast path for f32 scalar fields.
func (f *Field) Float32At(indices ...int) (float32, error) {
	if f.dtype != F32 {
		return 0, fmt.Errorf("field %s: Float32At on %s field", f.name, f.dtype)
	}
	v, err := f.Get(indices...)
	if err != nil {
		return 0, err
	}
	return v.(float32), nil
}

func (f *Field) compOffset(r, c int, indices []int) (int64, error) {
	if r < 0 || r >= f.rows || c < 0 || c >= f.cols {
		return 0, fmt.Errorf("field %s: component (%d,%d) out of range %dx%d",
			f.name, r, c, f.rows, f.cols)
	}
	base, err := f.Address(indices...)
	if err != nil {
		return 0, err
	}
	return base + int64((r*f.cols+c)*f.dtype.Size()), nil
}
