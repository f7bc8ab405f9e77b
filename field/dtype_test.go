package field

import "testing"

func TestDTypeSizes(t *testing.T) {
	cases := map[DType]int{
		F32: 4, F64: 8, I8: 1, I16: 2, I32: 4, I64: 8,
		U8: 1, U16: 2, U32: 4, U64: 8,
	}
	for dt, want := range cases {
		if dt.Size() != want {
			t.Errorf("Expected %s size %d, got %d", dt, want, dt.Size())
		}
	}
}

func TestParseDType(t *testing.T) {
	dt, err := ParseDType("f32")
	if err != nil || dt != F32 {
		t.Errorf("ParseDType(f32) = %v, %v", dt, err)
	}
	dt, err = ParseDType("uint16")
	if err != nil || dt != U16 {
		t.Errorf("ParseDType(uint16) = %v, %v", dt, err)
	}
	if _, err := ParseDType("complex64"); err == nil {
		t.Error("ParseDType should reject unknown names")
	}
}

func TestScalarCodecRoundTrip(t *testing.T) {
	f, err := FromShape("x", I64, 4)
	if err != nil {
		t.Fatalf("FromShape failed: %v", err)
	}
	if err := f.Set(int64(-12345678901), 2); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	v, err := f.Get(2)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if v.(int64) != -12345678901 {
		t.Errorf("Expected -12345678901, got %v", v)
	}

	u, err := FromShape("y", U8, 4)
	if err != nil {
		t.Fatalf("FromShape failed: %v", err)
	}
	if err := u.Set(uint8(200), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	v, _ = u.Get(0)
	if v.(uint8) != 200 {
		t.Errorf("Expected 200, got %v", v)
	}
}
