package field

import (
	"testing"
)

// TestPhysicalIndexPositionIdentity verifies that a plain row-major field
// maps every axis to itself.
func TestPhysicalIndexPositionIdentity(t *testing.T) {
	a, err := FromShape("a", F32, 128, 32, 8)
	if err != nil {
		t.Fatalf("FromShape failed: %v", err)
	}

	mapping, err := a.PhysicalIndexPosition()
	if err != nil {
		t.Fatalf("PhysicalIndexPosition failed: %v", err)
	}
	want := map[int]int{0: 0, 1: 1, 2: 2}
	if len(mapping) != len(want) {
		t.Fatalf("Expected mapping %v, got %v", want, mapping)
	}
	for k, v := range want {
		if mapping[k] != v {
			t.Errorf("Expected mapping[%d] = %d, got %d", k, v, mapping[k])
		}
	}
}

// TestPhysicalIndexPositionColumnMajor declares axis j outside axis i. The
// index mapping stays identity (slots follow axis ids, not nesting), but the
// memory layout is column-major: stepping i moves by one element.
func TestPhysicalIndexPositionColumnMajor(t *testing.T) {
	b := NewScalar("b", F32)
	if err := NewTree().Root().Dense(AxisJ, 32).Dense(AxisI, 16).Place(b); err != nil {
		t.Fatalf("Place failed: %v", err)
	}

	mapping, err := b.PhysicalIndexPosition()
	if err != nil {
		t.Fatalf("PhysicalIndexPosition failed: %v", err)
	}
	if len(mapping) != 2 || mapping[0] != 0 || mapping[1] != 1 {
		t.Fatalf("Expected mapping {0:0, 1:1}, got %v", mapping)
	}

	// The virtual first index exposed to the user comes second in the
	// memory layout, so adjacent i values are adjacent in memory.
	a0, err := b.Address(0, 1)
	if err != nil {
		t.Fatalf("Address(0,1) failed: %v", err)
	}
	a1, err := b.Address(1, 1)
	if err != nil {
		t.Fatalf("Address(1,1) failed: %v", err)
	}
	if a1 != a0+4 {
		t.Errorf("Expected i-step of 4 bytes, got %d (addr %d -> %d)", a1-a0, a0, a1)
	}
}

// TestAddressRowMajorStride checks that the innermost declared axis has unit
// element stride under a plain row-major placement.
func TestAddressRowMajorStride(t *testing.T) {
	a, err := FromShape("a", F32, 16, 32)
	if err != nil {
		t.Fatalf("FromShape failed: %v", err)
	}

	a0, _ := a.Address(3, 7)
	a1, _ := a.Address(3, 8)
	if a1 != a0+4 {
		t.Errorf("Expected j-step of 4 bytes, got %d", a1-a0)
	}
	a2, _ := a.Address(4, 7)
	if a2 != a0+32*4 {
		t.Errorf("Expected i-step of 128 bytes, got %d", a2-a0)
	}
}

// TestRoundTripColumnMajor fills a column-major field through logical
// indices and reads every element back.
func TestRoundTripColumnMajor(t *testing.T) {
	b := NewScalar("b", F32)
	if err := NewTree().Root().Dense(AxisJ, 32).Dense(AxisI, 16).Place(b); err != nil {
		t.Fatalf("Place failed: %v", err)
	}

	shape := b.Shape()
	if len(shape) != 2 || shape[0] != 16 || shape[1] != 32 {
		t.Fatalf("Expected shape [16, 32], got %v", shape)
	}

	for i := 0; i < 16; i++ {
		for j := 0; j < 32; j++ {
			if err := b.SetFloat32(float32(i*10+j), i, j); err != nil {
				t.Fatalf("SetFloat32(%d,%d) failed: %v", i, j, err)
			}
		}
	}
	for i := 0; i < 16; i++ {
		for j := 0; j < 32; j++ {
			v, err := b.Float32At(i, j)
			if err != nil {
				t.Fatalf("Float32At(%d,%d) failed: %v", i, j, err)
			}
			if v != float32(i*10+j) {
				t.Fatalf("Expected b[%d,%d] = %d, got %f", i, j, i*10+j, v)
			}
		}
	}
}

// TestRepeatedAxisDecomposition places a field whose i axis spans two
// nesting levels with another axis between them.
func TestRepeatedAxisDecomposition(t *testing.T) {
	f := NewScalar("blk", F32)
	err := NewTree().Root().Dense(AxisI, 4).Dense(AxisJ, 2).Dense(AxisI, 8).Place(f)
	if err != nil {
		t.Fatalf("Place failed: %v", err)
	}

	shape := f.Shape()
	if len(shape) != 2 || shape[0] != 32 || shape[1] != 2 {
		t.Fatalf("Expected shape [32, 2], got %v", shape)
	}

	// Offset layout: ((i/8)*2 + j)*8 + i%8, in elements.
	for i := 0; i < 32; i++ {
		for j := 0; j < 2; j++ {
			addr, err := f.Address(i, j)
			if err != nil {
				t.Fatalf("Address(%d,%d) failed: %v", i, j, err)
			}
			want := int64(((i/8)*2+j)*8+i%8) * 4
			if addr != want {
				t.Fatalf("Expected address %d at (%d,%d), got %d", want, i, j, addr)
			}
		}
	}

	// Round-trip still holds through the split axis.
	for i := 0; i < 32; i++ {
		for j := 0; j < 2; j++ {
			if err := f.SetFloat32(float32(i*100+j), i, j); err != nil {
				t.Fatalf("SetFloat32 failed: %v", err)
			}
		}
	}
	for i := 0; i < 32; i++ {
		for j := 0; j < 2; j++ {
			v, _ := f.Float32At(i, j)
			if v != float32(i*100+j) {
				t.Fatalf("Expected blk[%d,%d] = %d, got %f", i, j, i*100+j, v)
			}
		}
	}
}

// TestMatrixComponents verifies per-component storage of a vector field.
func TestMatrixComponents(t *testing.T) {
	v := NewVector("vel", F32, 3)
	if err := NewTree().Root().Dense(AxisI, 8).Place(v); err != nil {
		t.Fatalf("Place failed: %v", err)
	}

	if v.Kind() != KindMatrix || v.Rows() != 3 || v.Cols() != 1 {
		t.Fatalf("Expected 3x1 matrix kind, got %s %dx%d", v.Kind(), v.Rows(), v.Cols())
	}
	if v.CellSize() != 12 {
		t.Fatalf("Expected cell size 12, got %d", v.CellSize())
	}

	for r := 0; r < 3; r++ {
		if err := v.SetComp(r, 0, float32(r)+0.5, 5); err != nil {
			t.Fatalf("SetComp failed: %v", err)
		}
	}
	for r := 0; r < 3; r++ {
		got, err := v.GetComp(r, 0, 5)
		if err != nil {
			t.Fatalf("GetComp failed: %v", err)
		}
		if got.(float32) != float32(r)+0.5 {
			t.Errorf("Expected component %d = %f, got %v", r, float32(r)+0.5, got)
		}
	}

	// Scalar accessors must refuse matrix fields.
	if err := v.Set(float32(1), 0); err == nil {
		t.Error("Set on a vector field should fail")
	}
}

// TestDeclarationErrors exercises the deferred construction errors.
func TestDeclarationErrors(t *testing.T) {
	f := NewScalar("f", F32)

	if err := NewTree().Root().Dense(AxisI, 0).Place(f); err == nil {
		t.Error("Zero extent should fail at Place")
	}
	if err := NewTree().Root().Dense(Axis(9), 4).Place(f); err == nil {
		t.Error("Out-of-range axis should fail at Place")
	}
	if err := NewTree().Root().DenseAxes([]Axis{AxisI}, []int{4, 4}).Place(f); err == nil {
		t.Error("Mismatched axes/extents should fail at Place")
	}
	if err := NewTree().Root().Place(f); err == nil {
		t.Error("Placing directly under the root should fail")
	}

	if err := NewTree().Root().Dense(AxisI, 4).Place(f); err != nil {
		t.Fatalf("Valid place failed: %v", err)
	}
	if err := NewTree().Root().Dense(AxisI, 4).Place(f); err == nil {
		t.Error("Placing the same field twice should fail")
	}
}

// TestAccessErrors exercises indexing error paths.
func TestAccessErrors(t *testing.T) {
	unplaced := NewScalar("u", F32)
	if _, err := unplaced.Address(0); err == nil {
		t.Error("Address before placement should fail")
	}
	if _, err := unplaced.PhysicalIndexPosition(); err == nil {
		t.Error("PhysicalIndexPosition before placement should fail")
	}

	f, err := FromShape("f", F32, 4, 4)
	if err != nil {
		t.Fatalf("FromShape failed: %v", err)
	}
	if _, err := f.Address(1); err == nil {
		t.Error("Wrong index arity should fail")
	}
	if _, err := f.Address(4, 0); err == nil {
		t.Error("Out-of-bounds index should fail")
	}
	if _, err := f.Address(0, -1); err == nil {
		t.Error("Negative index should fail")
	}
	if err := f.Set(int32(1), 0, 0); err == nil {
		t.Error("Setting an int32 into an f32 field should fail")
	}
}

// TestSameAxisOrderSameMapping checks that mappings depend on the axis set
// only, not on extents.
func TestSameAxisOrderSameMapping(t *testing.T) {
	f1 := NewScalar("f1", F32)
	if err := NewTree().Root().Dense(AxisJ, 8).Dense(AxisI, 4).Place(f1); err != nil {
		t.Fatalf("Place failed: %v", err)
	}
	f2 := NewScalar("f2", F64)
	if err := NewTree().Root().Dense(AxisJ, 64).Dense(AxisI, 128).Place(f2); err != nil {
		t.Fatalf("Place failed: %v", err)
	}

	m1, _ := f1.PhysicalIndexPosition()
	m2, _ := f2.PhysicalIndexPosition()
	if len(m1) != len(m2) {
		t.Fatalf("Mapping sizes differ: %v vs %v", m1, m2)
	}
	for k, v := range m1 {
		if m2[k] != v {
			t.Errorf("Mappings differ at axis %d: %d vs %d", k, v, m2[k])
		}
	}
}
