// Package types implements the value-type descriptors used throughout
// the compiler: base kind, pointer depth, array dimensions and struct
// fields, their sizes/alignment, and the assign-/convert-compatibility
// predicates the semantic analyser consults when checking assignments,
// casts, and call arguments.
//
// Grounded on original_source/include/type.h and type.cpp, translated
// from a mutable C++ class into an immutable Go value type: every
// "mutating" operation (adding an array dimension, adding a struct
// field) returns a new Type rather than mutating in place.
package types

import (
	"fmt"
	"strings"
)

// BaseKind is the base type a Type is built from.
type BaseKind int

// The closed set of base kinds.
const (
	Int BaseKind = iota
	Long
	UInt
	ULong
	Double
	Void
	Char
	Bool
	Struct
)

func (b BaseKind) String() string {
	switch b {
	case Int:
		return "int"
	case Long:
		return "long"
	case UInt:
		return "unsigned int"
	case ULong:
		return "unsigned long"
	case Double:
		return "double"
	case Void:
		return "void"
	case Char:
		return "char"
	case Bool:
		return "bool"
	case Struct:
		return "struct"
	default:
		return "unknown"
	}
}

// Field is one member of a struct type: its name, its type, and its
// byte offset within the struct. Fields are kept in declaration order.
type Field struct {
	Name   string
	Type   Type
	Offset int
}

// Type is an immutable value-type descriptor. The zero Type is `int`,
// since Int is the first BaseKind.
type Type struct {
	Base       BaseKind
	PtrDepth   int
	ArrayDims  []int
	StructName string
	Fields     []Field
}

// New builds a scalar type of the given base kind.
func New(base BaseKind) Type {
	return Type{Base: base}
}

// NewPointer builds a pointer-depth-N type of the given base kind.
func NewPointer(base BaseKind, depth int) Type {
	return Type{Base: base, PtrDepth: depth}
}

// NewStruct builds an (initially fieldless) named struct type.
func NewStruct(name string, ptrDepth int) Type {
	return Type{Base: Struct, StructName: name, PtrDepth: ptrDepth}
}

// WithArrayDimension returns a copy of t with an outer array dimension
// appended. Pointer depth and array dimensions are independent: a
// pointer-to-array and an array-of-pointers are distinguished by the
// order dimensions were added versus PtrDepth.
func (t Type) WithArrayDimension(size int) Type {
	dims := make([]int, len(t.ArrayDims)+1)
	copy(dims, t.ArrayDims)
	dims[len(t.ArrayDims)] = size
	t.ArrayDims = dims
	return t
}

// WithoutOuterArrayDimension returns the element type obtained by
// stripping one array dimension — the type of `a[i]` when `a` has type
// t. Stripping the last dimension yields the (possibly still-array)
// element type.
func (t Type) WithoutOuterArrayDimension() Type {
	if len(t.ArrayDims) == 0 {
		return t
	}
	dims := make([]int, len(t.ArrayDims)-1)
	copy(dims, t.ArrayDims[:len(t.ArrayDims)-1])
	t.ArrayDims = dims
	return t
}

// Pointee returns the type one pointer-depth lower: the type of `*p`
// when p has type t. For a type with PtrDepth 0, arrays included, t is
// returned unchanged; an array's element type comes from
// WithoutOuterArrayDimension, and `&array`'s type from PointerTo.
func (t Type) Pointee() Type {
	if t.PtrDepth > 0 {
		t.PtrDepth--
		return t
	}
	return t
}

// PointerTo returns the type of `&x` when x has type t: pointer depth
// one greater, unless t is an array, in which case the result is a
// pointer to the array's element type (array-to-pointer decay).
func (t Type) PointerTo() Type {
	if t.IsArray() {
		elem := t.WithoutOuterArrayDimension()
		elem.PtrDepth++
		return elem
	}
	t.PtrDepth++
	return t
}

// WithField returns a copy of t (which must be a struct type) with a
// new field appended. The field's offset is the running struct size
// rounded up to min(field-size, 8), with a floor of 1 byte — the
// natural-alignment rule from spec.md §4.3.
func (t Type) WithField(name string, fieldType Type) Type {
	offset := 0
	if n := len(t.Fields); n > 0 {
		last := t.Fields[n-1]
		offset = AlignFieldOffset(last.Offset+last.Type.Size(), fieldType)
	} else {
		offset = AlignFieldOffset(0, fieldType)
	}

	fields := make([]Field, len(t.Fields)+1)
	copy(fields, t.Fields)
	fields[len(t.Fields)] = Field{Name: name, Type: fieldType, Offset: offset}
	t.Fields = fields
	return t
}

// AlignFieldOffset rounds `current` up to the natural alignment of
// fieldType: min(field size, 8), with a floor of 1 byte.
func AlignFieldOffset(current int, fieldType Type) int {
	align := fieldType.Size()
	if align > 8 {
		align = 8
	}
	if align == 0 {
		align = 1
	}
	return (current + align - 1) &^ (align - 1)
}

// Field looks up a struct field by name.
func (t Type) Field(name string) (Field, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// IsPointer reports whether t has pointer depth greater than zero.
func (t Type) IsPointer() bool { return t.PtrDepth > 0 }

// IsArray reports whether t has at least one array dimension.
func (t Type) IsArray() bool { return len(t.ArrayDims) > 0 }

// IsStruct reports whether t's base kind is Struct.
func (t Type) IsStruct() bool { return t.Base == Struct }

// IsVoid reports whether t is exactly `void` (no pointer, no array).
func (t Type) IsVoid() bool { return t.Base == Void && !t.IsPointer() && !t.IsArray() }

// IsSize8 reports whether t occupies exactly 8 bytes.
func (t Type) IsSize8() bool { return t.Size() == 8 }

// IsSigned reports whether arithmetic on t uses signed instructions.
// Only plain (non-pointer, non-array) int and long are signed; this
// mirrors original_source/src/type.cpp's is_signed, which intentionally
// treats char/bool/double/unsigned kinds as unsigned for instruction
// selection purposes (doubles never reach the signed/unsigned integer
// instruction-selection path at all).
func (t Type) IsSigned() bool {
	if t.IsPointer() || t.IsArray() {
		return false
	}
	return t.Base == Int || t.Base == Long
}

// IsIntegral reports whether t is one of the integral base kinds.
func (t Type) IsIntegral() bool {
	switch t.Base {
	case Int, UInt, Long, ULong, Char, Bool:
		return !t.IsPointer() && !t.IsArray()
	default:
		return false
	}
}

// Size returns the size, in bytes, of a value of type t.
func (t Type) Size() int {
	if t.IsPointer() {
		return 8
	}

	var base int
	switch t.Base {
	case Bool, Char:
		base = 1
	case Int, UInt:
		base = 4
	case Long, ULong, Double:
		base = 8
	case Void:
		base = 0
	case Struct:
		if n := len(t.Fields); n > 0 {
			last := t.Fields[n-1]
			base = last.Offset + last.Type.Size()
		}
	}

	if t.IsArray() {
		total := base
		for _, d := range t.ArrayDims {
			total *= d
		}
		return total
	}

	return base
}

// ArrayElementCount returns the product of t's array dimensions, or 0
// if t is not an array.
func (t Type) ArrayElementCount() int {
	if !t.IsArray() {
		return 0
	}
	total := 1
	for _, d := range t.ArrayDims {
		total *= d
	}
	return total
}

// Equal reports structural equality between two types.
func (a Type) Equal(b Type) bool {
	if a.Base != b.Base || a.PtrDepth != b.PtrDepth {
		return false
	}
	if len(a.ArrayDims) != len(b.ArrayDims) {
		return false
	}
	for i := range a.ArrayDims {
		if a.ArrayDims[i] != b.ArrayDims[i] {
			return false
		}
	}
	if a.Base == Struct {
		return a.StructName == b.StructName
	}
	return true
}

// AssignCompatibleFrom reports whether a value of type `other` may be
// assigned into a variable of type t, per spec.md §3: equality; or t is
// a pointer and other is either a void-pointer or (at the type level)
// a non-pointer `int` — callers that can see the source expression
// must additionally require the literal value 0 in the non-pointer-int
// case, since that restriction isn't expressible on types alone; or
// both are non-pointer and other widens to t within
// {int->long, int/long->double}.
//
// This is a total function: every path returns an explicit bool. The
// original can_assign_from (type.cpp) falls off the end of the function
// with no return on its final branch; SPEC_FULL.md requires a default
// of false, which this implementation provides.
func (t Type) AssignCompatibleFrom(other Type) bool {
	if t.Equal(other) {
		return true
	}

	if t.IsPointer() {
		if other.IsPointer() && other.Base == Void {
			return true
		}
		if !other.IsPointer() && other.Base == Int {
			return true
		}
		return false
	}

	if !t.IsPointer() && !other.IsPointer() {
		if t.Base == Long && other.Base == Int {
			return true
		}
		if t.Base == Double && (other.Base == Int || other.Base == Long) {
			return true
		}
	}

	return false
}

// ConvertCompatibleFrom reports whether a value of type `other` may be
// explicitly cast to type t: assign-compatible, or both are non-pointer,
// non-array, non-struct, non-void scalars (an explicit cast is then
// required, but the conversion itself is legal).
func (t Type) ConvertCompatibleFrom(other Type) bool {
	if t.AssignCompatibleFrom(other) {
		return true
	}

	if !t.IsPointer() && !other.IsPointer() && !t.IsArray() && !other.IsArray() {
		if t.Base != Void && t.Base != Struct && other.Base != Void && other.Base != Struct {
			return true
		}
	}

	return false
}

// String renders t the way the compiler's diagnostics do: base kind,
// then one `*` per pointer level, then `[n]` per array dimension.
func (t Type) String() string {
	var b strings.Builder
	if t.Base == Struct {
		name := t.StructName
		if name == "" {
			name = "unknown"
		}
		fmt.Fprintf(&b, "struct %s", name)
	} else {
		b.WriteString(t.Base.String())
	}
	for i := 0; i < t.PtrDepth; i++ {
		b.WriteByte('*')
	}
	for _, d := range t.ArrayDims {
		fmt.Fprintf(&b, "[%d]", d)
	}
	return b.String()
}
