// Package types defines SSA instruction opcodes, comparison predicates, calling conventions and the source data
// types of the SSA IR.
package types

import (
	"fmt"
	"strings"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Kind identifies the shape of a source data type.
type Kind uint

// Opcode defines the different SSA instructions.
type Opcode uint

// Predicate defines the relational predicates of integer and floating point comparisons.
type Predicate uint

// CallConv defines the calling convention of a function.
type CallConv uint

// Linkage defines the visibility of a global or function outside its module.
type Linkage uint

// Type is a source data type. Scalars carry their width, composites their element, field or parameter types.
type Type struct {
	Kind     Kind    // Shape of the type.
	Width    int     // Bit width of integer types.
	Elem     *Type   // Element type of pointers and arrays.
	Len      int     // Number of elements of array types.
	Ret      *Type   // Return type of function types.
	Params   []*Type // Parameter types of function types.
	Variadic bool    // True if a function type takes a variable argument list.
	Fields   []*Type // Field types of struct types.
	Packed   bool    // True if a struct type has no padding between fields.
	Name     string  // Optional name of struct types.
}

// ---------------------
// ----- Constants -----
// ---------------------

const (
	VoidKind Kind = iota
	IntKind
	FloatKind
	DoubleKind
	PointerKind
	ArrayKind
	FuncKind
	StructKind
	LabelKind
)

const (
	Alloca Opcode = iota
	Load
	Store
	GetElementPtr
	Add
	FAdd
	Sub
	FSub
	Mul
	FMul
	UDiv
	SDiv
	FDiv
	URem
	SRem
	FRem
	Shl
	LShr
	AShr
	And
	Or
	Xor
	ICmp
	FCmp
	Trunc
	ZExt
	SExt
	FPTrunc
	FPExt
	FPToUI
	FPToSI
	UIToFP
	SIToFP
	PtrToInt
	IntToPtr
	BitCast
	Select
	Call
	Phi
	Ret
	Br
	CondBr
	Unreachable
)

const (
	IntEQ Predicate = iota
	IntNE
	IntUGT
	IntUGE
	IntULT
	IntULE
	IntSGT
	IntSGE
	IntSLT
	IntSLE
	FloatFalse
	FloatOEQ
	FloatOGT
	FloatOGE
	FloatOLT
	FloatOLE
	FloatONE
	FloatORD
	FloatUNO
	FloatUEQ
	FloatUGT
	FloatUGE
	FloatULT
	FloatULE
	FloatUNE
	FloatTrue
)

const (
	CallConvC           CallConv = iota // CallConvC is the default C calling convention.
	CallConvFast                        // CallConvFast is the fast calling convention.
	CallConvCold                        // CallConvCold is the cold calling convention.
	CallConvX86Stdcall                  // CallConvX86Stdcall is the x86 stdcall convention.
	CallConvX86Fastcall                 // CallConvX86Fastcall is the x86 fastcall convention.
	CallConvX86Thiscall                 // CallConvX86Thiscall is the x86 thiscall convention.
	CallConvStatic                      // CallConvStatic marks a function lowered to a managed static method.
	CallConvOther                       // CallConvOther is any convention the IR readers do not recognise.
)

const (
	External Linkage = iota
	Internal
)

// -------------------
// ----- Globals -----
// -------------------

// Frequently used scalar types.
var (
	Void   = &Type{Kind: VoidKind}
	I1     = &Type{Kind: IntKind, Width: 1}
	I8     = &Type{Kind: IntKind, Width: 8}
	I16    = &Type{Kind: IntKind, Width: 16}
	I32    = &Type{Kind: IntKind, Width: 32}
	I64    = &Type{Kind: IntKind, Width: 64}
	Float  = &Type{Kind: FloatKind}
	Double = &Type{Kind: DoubleKind}
	Label  = &Type{Kind: LabelKind}
)

// oTyp provides string literals for Opcode constants.
var oTyp = [...]string{
	"alloca",
	"load",
	"store",
	"getelementptr",
	"add",
	"fadd",
	"sub",
	"fsub",
	"mul",
	"fmul",
	"udiv",
	"sdiv",
	"fdiv",
	"urem",
	"srem",
	"frem",
	"shl",
	"lshr",
	"ashr",
	"and",
	"or",
	"xor",
	"icmp",
	"fcmp",
	"trunc",
	"zext",
	"sext",
	"fptrunc",
	"fpext",
	"fptoui",
	"fptosi",
	"uitofp",
	"sitofp",
	"ptrtoint",
	"inttoptr",
	"bitcast",
	"select",
	"call",
	"phi",
	"ret",
	"br",
	"br",
	"unreachable",
}

// pTyp provides string literals for Predicate constants.
var pTyp = [...]string{
	"eq",
	"ne",
	"ugt",
	"uge",
	"ult",
	"ule",
	"sgt",
	"sge",
	"slt",
	"sle",
	"false",
	"oeq",
	"ogt",
	"oge",
	"olt",
	"ole",
	"one",
	"ord",
	"uno",
	"ueq",
	"ugt",
	"uge",
	"ult",
	"ule",
	"une",
	"true",
}

// cTyp provides string literals for CallConv constants.
var cTyp = [...]string{
	"ccc",
	"fastcc",
	"coldcc",
	"x86_stdcallcc",
	"x86_fastcallcc",
	"x86_thiscallcc",
	"cil_static",
	"unknown",
}

// ---------------------
// ----- Functions -----
// ---------------------

// String provides a print friendly string representation of the Opcode.
func (op Opcode) String() string {
	return oTyp[op]
}

// String provides a print friendly string representation of the Predicate.
func (p Predicate) String() string {
	return pTyp[p]
}

// IsFloat returns true if the Predicate belongs to the floating point comparison family.
func (p Predicate) IsFloat() bool {
	return p >= FloatFalse
}

// String provides a print friendly string representation of the CallConv.
func (cc CallConv) String() string {
	return cTyp[cc]
}

// IsTerminator returns true if instructions of Opcode op end a basic block.
func (op Opcode) IsTerminator() bool {
	return op == Ret || op == Br || op == CondBr || op == Unreachable
}

// IsBinary returns true if Opcode op is a two operand arithmetic or bitwise operation.
func (op Opcode) IsBinary() bool {
	return op >= Add && op <= Xor
}

// IsCast returns true if Opcode op converts a single operand to another type.
func (op Opcode) IsCast() bool {
	return op >= Trunc && op <= BitCast
}

// NewInt returns an integer type of the given bit width.
func NewInt(width int) *Type {
	return &Type{Kind: IntKind, Width: width}
}

// NewPointer returns a pointer type to elem.
func NewPointer(elem *Type) *Type {
	return &Type{Kind: PointerKind, Elem: elem}
}

// NewArray returns an array type of n elements of type elem.
func NewArray(n int, elem *Type) *Type {
	return &Type{Kind: ArrayKind, Len: n, Elem: elem}
}

// NewFunc returns a function type.
func NewFunc(ret *Type, variadic bool, params ...*Type) *Type {
	return &Type{Kind: FuncKind, Ret: ret, Params: params, Variadic: variadic}
}

// NewStruct returns a struct type with the given field types.
func NewStruct(name string, packed bool, fields ...*Type) *Type {
	return &Type{Kind: StructKind, Name: name, Packed: packed, Fields: fields}
}

// IsVoid returns true if t is the void type.
func (t *Type) IsVoid() bool {
	return t.Kind == VoidKind
}

// IsInt returns true if t is an integer type.
func (t *Type) IsInt() bool {
	return t.Kind == IntKind
}

// IsFloating returns true if t is a single or double precision floating point type.
func (t *Type) IsFloating() bool {
	return t.Kind == FloatKind || t.Kind == DoubleKind
}

// IsPointer returns true if t is a pointer type.
func (t *Type) IsPointer() bool {
	return t.Kind == PointerKind
}

// IsAggregate returns true if t is an array or struct type.
func (t *Type) IsAggregate() bool {
	return t.Kind == ArrayKind || t.Kind == StructKind
}

// String returns the textual IR representation of Type t. Two types are structurally equal if their
// string representations are equal.
func (t *Type) String() string {
	switch t.Kind {
	case VoidKind:
		return "void"
	case IntKind:
		return fmt.Sprintf("i%d", t.Width)
	case FloatKind:
		return "float"
	case DoubleKind:
		return "double"
	case PointerKind:
		return t.Elem.String() + "*"
	case ArrayKind:
		return fmt.Sprintf("[%d x %s]", t.Len, t.Elem.String())
	case FuncKind:
		sb := strings.Builder{}
		sb.WriteString(t.Ret.String())
		sb.WriteString(" (")
		for i1, e1 := range t.Params {
			if i1 > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(e1.String())
		}
		if t.Variadic {
			if len(t.Params) > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("...")
		}
		sb.WriteRune(')')
		return sb.String()
	case StructKind:
		if len(t.Name) > 0 {
			return "%" + t.Name
		}
		sb := strings.Builder{}
		if t.Packed {
			sb.WriteRune('<')
		}
		sb.WriteString("{ ")
		for i1, e1 := range t.Fields {
			if i1 > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(e1.String())
		}
		sb.WriteString(" }")
		if t.Packed {
			sb.WriteRune('>')
		}
		return sb.String()
	case LabelKind:
		return "label"
	default:
		return "unknown"
	}
}
