package ssa

import (
	"strconv"
	"strings"

	"cilc/src/ir/ssa/types"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Constant is a Value known at compile time. Constants are rematerialised at every use.
type Constant interface {
	Value
	isConstant()
}

// ConstInt is an integer constant. The value is stored sign extended.
type ConstInt struct {
	typ *types.Type
	V   int64
}

// ConstFloat is a single or double precision floating point constant.
type ConstFloat struct {
	typ *types.Type
	V   float64
}

// ConstNull is the null pointer constant.
type ConstNull struct {
	typ *types.Type
}

// ConstZero is the all zero value of any type.
type ConstZero struct {
	typ *types.Type
}

// ConstUndef is an undefined value of any type.
type ConstUndef struct {
	typ *types.Type
}

// ConstArray is a constant array.
type ConstArray struct {
	typ   *types.Type
	Elems []Constant
}

// ConstStruct is a constant struct.
type ConstStruct struct {
	typ    *types.Type
	Fields []Constant
}

// ---------------------
// ----- Functions -----
// ---------------------

// NewInt returns an integer constant of type typ. v is truncated to the width of typ and sign extended from it;
// booleans are 0 or 1.
func NewInt(typ *types.Type, v int64) *ConstInt {
	switch w := typ.Width; {
	case w == 1:
		v &= 1
	case w > 1 && w < 64:
		shift := uint(64 - w)
		v = v << shift >> shift
	}
	return &ConstInt{typ: typ, V: v}
}

// NewFloat returns a floating point constant of type typ.
func NewFloat(typ *types.Type, v float64) *ConstFloat {
	return &ConstFloat{typ: typ, V: v}
}

// NewNull returns the null pointer of pointer type typ.
func NewNull(typ *types.Type) *ConstNull {
	return &ConstNull{typ: typ}
}

// NewZero returns the zero value of type typ.
func NewZero(typ *types.Type) *ConstZero {
	return &ConstZero{typ: typ}
}

// NewUndef returns an undefined value of type typ.
func NewUndef(typ *types.Type) *ConstUndef {
	return &ConstUndef{typ: typ}
}

// NewArray returns a constant array of elems. typ is the array type.
func NewArray(typ *types.Type, elems ...Constant) *ConstArray {
	return &ConstArray{typ: typ, Elems: elems}
}

// NewStruct returns a constant struct of fields. typ is the struct type.
func NewStruct(typ *types.Type, fields ...Constant) *ConstStruct {
	return &ConstStruct{typ: typ, Fields: fields}
}

func (c *ConstInt) isConstant()    {}
func (c *ConstFloat) isConstant()  {}
func (c *ConstNull) isConstant()   {}
func (c *ConstZero) isConstant()   {}
func (c *ConstUndef) isConstant()  {}
func (c *ConstArray) isConstant()  {}
func (c *ConstStruct) isConstant() {}

// Type returns the data type of the constant.
func (c *ConstInt) Type() *types.Type { return c.typ }

// Type returns the data type of the constant.
func (c *ConstFloat) Type() *types.Type { return c.typ }

// Type returns the data type of the constant.
func (c *ConstNull) Type() *types.Type { return c.typ }

// Type returns the data type of the constant.
func (c *ConstZero) Type() *types.Type { return c.typ }

// Type returns the data type of the constant.
func (c *ConstUndef) Type() *types.Type { return c.typ }

// Type returns the data type of the constant.
func (c *ConstArray) Type() *types.Type { return c.typ }

// Type returns the data type of the constant.
func (c *ConstStruct) Type() *types.Type { return c.typ }

// Ident returns the literal text of the constant.
func (c *ConstInt) Ident() string {
	if c.typ.Width == 1 {
		if c.V != 0 {
			return "true"
		}
		return "false"
	}
	return strconv.FormatInt(c.V, 10)
}

// Ident returns the literal text of the constant.
func (c *ConstFloat) Ident() string {
	return strconv.FormatFloat(c.V, 'g', -1, 64)
}

// Ident returns the literal text of the constant.
func (c *ConstNull) Ident() string {
	return "null"
}

// Ident returns the literal text of the constant.
func (c *ConstZero) Ident() string {
	return "zeroinitializer"
}

// Ident returns the literal text of the constant.
func (c *ConstUndef) Ident() string {
	return "undef"
}

// Ident returns the literal text of the constant.
func (c *ConstArray) Ident() string {
	return "[" + joinTyped(c.Elems) + "]"
}

// Ident returns the literal text of the constant.
func (c *ConstStruct) Ident() string {
	return "{ " + joinTyped(c.Fields) + " }"
}

// joinTyped joins the typed literals of cs with commas.
func joinTyped(cs []Constant) string {
	s := make([]string, len(cs))
	for i1, e1 := range cs {
		s[i1] = typed(e1)
	}
	return strings.Join(s, ", ")
}
