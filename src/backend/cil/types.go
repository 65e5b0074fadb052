package cil

import (
	"strings"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// TypeID identifies a target type.
type TypeID uint

// Type is a target type. Primitive types are shared package values; composite types are built with PointerTo,
// VectorOf, FunctionOf and NewValueType and compared structurally with Equal.
type Type struct {
	ID       TypeID
	Elem     *Type   // Element type of Pointer and Vector.
	Ret      *Type   // Return type of Function.
	Params   []*Type // Parameter types of Function.
	Variadic bool    // True if a Function takes a variable argument list.
	Name     string  // Name of ValueType.
	Size     int     // Size in bytes of ValueType.
}

// ---------------------
// ----- Constants -----
// ---------------------

const (
	Void TypeID = iota
	Bool
	Int8
	UInt8
	Int16
	UInt16
	Int32
	UInt32
	Int64
	UInt64
	NativeInt
	NativeUInt
	Float32
	Float64
	TypedRef
	Pointer
	Vector
	Function
	ValueType
)

// lastPrimitive is the last TypeID without element, parameter or name data.
const lastPrimitive = TypedRef

// -------------------
// ----- Globals -----
// -------------------

// Primitive target types.
var (
	VoidType       = &Type{ID: Void}
	BoolType       = &Type{ID: Bool}
	Int8Type       = &Type{ID: Int8}
	UInt8Type      = &Type{ID: UInt8}
	Int16Type      = &Type{ID: Int16}
	UInt16Type     = &Type{ID: UInt16}
	Int32Type      = &Type{ID: Int32}
	UInt32Type     = &Type{ID: UInt32}
	Int64Type      = &Type{ID: Int64}
	UInt64Type     = &Type{ID: UInt64}
	NativeIntType  = &Type{ID: NativeInt}
	NativeUIntType = &Type{ID: NativeUInt}
	Float32Type    = &Type{ID: Float32}
	Float64Type    = &Type{ID: Float64}
	TypedRefType   = &Type{ID: TypedRef}
)

// tTyp provides the textual target representation of primitive TypeID constants.
var tTyp = [...]string{
	"void",
	"bool",
	"int8",
	"unsigned int8",
	"int16",
	"unsigned int16",
	"int32",
	"unsigned int32",
	"int64",
	"unsigned int64",
	"native int",
	"native unsigned int",
	"float32",
	"float64",
	"typedref",
}

// unsignedOf maps signed integer types to their unsigned counterparts.
var unsignedOf = map[TypeID]*Type{
	Bool:      UInt8Type,
	Int8:      UInt8Type,
	Int16:     UInt16Type,
	Int32:     UInt32Type,
	Int64:     UInt64Type,
	NativeInt: NativeUIntType,
}

// ---------------------
// ----- Functions -----
// ---------------------

// PointerTo returns an unmanaged pointer type to elem.
func PointerTo(elem *Type) *Type {
	return &Type{ID: Pointer, Elem: elem}
}

// VectorOf returns a vector type of elem.
func VectorOf(elem *Type) *Type {
	return &Type{ID: Vector, Elem: elem}
}

// FunctionOf returns a function signature type.
func FunctionOf(ret *Type, variadic bool, params ...*Type) *Type {
	return &Type{ID: Function, Ret: ret, Params: params, Variadic: variadic}
}

// NewValueType returns an opaque value type of the given name and size in bytes.
func NewValueType(name string, size int) *Type {
	return &Type{ID: ValueType, Name: name, Size: size}
}

// IsPrimitive returns true if Type t carries no element, parameter or name data.
func (t *Type) IsPrimitive() bool {
	return t.ID <= lastPrimitive
}

// IsInteger returns true if Type t is a sized or native integer type, including Bool.
func (t *Type) IsInteger() bool {
	return t.ID >= Bool && t.ID <= NativeUInt
}

// IsFloat returns true if Type t is Float32 or Float64.
func (t *Type) IsFloat() bool {
	return t.ID == Float32 || t.ID == Float64
}

// Unsigned returns the unsigned counterpart of a signed integer Type t, or t itself.
func (t *Type) Unsigned() *Type {
	if u, ok := unsignedOf[t.ID]; ok {
		return u
	}
	return t
}

// Equal returns true if Types t and o are structurally equal. Value types are equal if their names are equal.
func (t *Type) Equal(o *Type) bool {
	if t == o {
		return true
	}
	if t == nil || o == nil || t.ID != o.ID {
		return false
	}
	switch t.ID {
	case Pointer, Vector:
		return t.Elem.Equal(o.Elem)
	case Function:
		if t.Variadic != o.Variadic || len(t.Params) != len(o.Params) || !t.Ret.Equal(o.Ret) {
			return false
		}
		for i1, e1 := range t.Params {
			if !e1.Equal(o.Params[i1]) {
				return false
			}
		}
		return true
	case ValueType:
		return t.Name == o.Name
	default:
		return true
	}
}

// String returns the textual target representation of Type t.
func (t *Type) String() string {
	switch t.ID {
	case Pointer:
		if t.Elem.ID == Function {
			return t.Elem.String()
		}
		return t.Elem.String() + "*"
	case Vector:
		return t.Elem.String() + "[]"
	case Function:
		sb := strings.Builder{}
		sb.WriteString("method ")
		if t.Variadic {
			sb.WriteString("vararg ")
		}
		sb.WriteString(t.Ret.String())
		sb.WriteString(" *(")
		sb.WriteString(typeList(t.Params))
		sb.WriteRune(')')
		return sb.String()
	case ValueType:
		return "valuetype " + quote(t.Name)
	default:
		if t.ID <= lastPrimitive {
			return tTyp[t.ID]
		}
		return "unknown"
	}
}

// typeList joins the textual representation of ts with commas.
func typeList(ts []*Type) string {
	s := make([]string, len(ts))
	for i1, e1 := range ts {
		s[i1] = e1.String()
	}
	return strings.Join(s, ", ")
}
