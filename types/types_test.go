package types

import "testing"

func TestScalarSizes(t *testing.T) {
	tests := []struct {
		ty   Type
		want int
	}{
		{New(Bool), 1},
		{New(Char), 1},
		{New(Int), 4},
		{New(UInt), 4},
		{New(Long), 8},
		{New(ULong), 8},
		{New(Double), 8},
		{New(Void), 0},
		{NewPointer(Int, 1), 8},
		{NewPointer(Void, 3), 8},
	}

	for _, tt := range tests {
		if got := tt.ty.Size(); got != tt.want {
			t.Errorf("%s: Size() = %d, want %d", tt.ty, got, tt.want)
		}
	}
}

func TestArraySize(t *testing.T) {
	arr := New(Int).WithArrayDimension(3)
	if got := arr.Size(); got != 12 {
		t.Errorf("int[3]: Size() = %d, want 12", got)
	}

	matrix := New(Double).WithArrayDimension(2).WithArrayDimension(3)
	if got := matrix.Size(); got != 48 {
		t.Errorf("double[2][3]: Size() = %d, want 48", got)
	}
}

func TestStructFieldAlignment(t *testing.T) {
	st := NewStruct("point", 0)
	st = st.WithField("x", New(Char))
	st = st.WithField("y", New(Int))
	st = st.WithField("z", New(Double))

	xf, _ := st.Field("x")
	yf, _ := st.Field("y")
	zf, _ := st.Field("z")

	if xf.Offset != 0 {
		t.Errorf("x offset = %d, want 0", xf.Offset)
	}
	if yf.Offset != 4 {
		t.Errorf("y offset = %d, want 4 (aligned up from 1)", yf.Offset)
	}
	if zf.Offset != 8 {
		t.Errorf("z offset = %d, want 8", zf.Offset)
	}
	if got := st.Size(); got != 16 {
		t.Errorf("struct size = %d, want 16", got)
	}
}

func TestPointerIsAlways8(t *testing.T) {
	st := NewStruct("huge", 1)
	if got := st.Size(); got != 8 {
		t.Errorf("pointer-to-struct size = %d, want 8", got)
	}
}

func TestAssignCompatible(t *testing.T) {
	tests := []struct {
		name    string
		lhs     Type
		rhs     Type
		compat  bool
	}{
		{"equal ints", New(Int), New(Int), true},
		{"int to long widens", New(Long), New(Int), true},
		{"long to int narrows, rejected", New(Int), New(Long), false},
		{"int to double widens", New(Double), New(Int), true},
		{"long to double widens", New(Double), New(Long), true},
		{"double to int rejected", New(Int), New(Double), false},
		{"void pointer to any pointer", NewPointer(Int, 1), NewPointer(Void, 1), true},
		{"int to pointer (candidate null)", NewPointer(Int, 1), New(Int), true},
		{"pointer to int rejected", New(Int), NewPointer(Int, 1), false},
		{"mismatched struct names", NewStruct("a", 0), NewStruct("b", 0), false},
	}

	for _, tt := range tests {
		if got := tt.lhs.AssignCompatibleFrom(tt.rhs); got != tt.compat {
			t.Errorf("%s: AssignCompatibleFrom = %v, want %v", tt.name, got, tt.compat)
		}
	}
}

func TestConvertCompatible(t *testing.T) {
	if !New(Int).ConvertCompatibleFrom(New(Double)) {
		t.Errorf("expected explicit int<-double cast to be convert-compatible")
	}
	if New(Int).ConvertCompatibleFrom(NewPointer(Int, 1)) {
		t.Errorf("did not expect int<-pointer to be convert-compatible")
	}
	if NewStruct("a", 0).ConvertCompatibleFrom(New(Int)) {
		t.Errorf("did not expect struct<-int to be convert-compatible")
	}
}

func TestArrayElementCount(t *testing.T) {
	arr := New(Int).WithArrayDimension(2).WithArrayDimension(5)
	if got := arr.ArrayElementCount(); got != 10 {
		t.Errorf("ArrayElementCount() = %d, want 10", got)
	}
	if got := New(Int).ArrayElementCount(); got != 0 {
		t.Errorf("non-array ArrayElementCount() = %d, want 0", got)
	}
}

func TestPointerToArrayDecay(t *testing.T) {
	arr := New(Int).WithArrayDimension(4)
	ptr := arr.PointerTo()
	if !ptr.IsPointer() || ptr.IsArray() {
		t.Errorf("address-of array should decay to pointer-to-element, got %s", ptr)
	}
	if ptr.Base != Int {
		t.Errorf("expected pointer-to-int, got %s", ptr)
	}
}
