package cil

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Inst is a single target instruction: an opcode and its operand. Which operand field is meaningful depends on
// the opcode. Instructions are built with the constructor functions below, which select the encoding.
type Inst struct {
	Op     Opcode
	Int    int64      // Argument or local index, or integer literal.
	Float  float64    // Floating point literal.
	Label  string     // Branch target.
	Field  string     // Static field name.
	Type   *Type      // Static field type.
	Method *MethodRef // Method of call and ldftn, signature of calli.
	cond   Cond       // Branch condition, kept for re-encoding.
	un     bool       // Unsigned branch comparison.
}

// Cond is the condition of a branch instruction.
type Cond uint

// CmpKind is a comparison with a dedicated opcode.
type CmpKind uint

// ---------------------
// ----- Constants -----
// ---------------------

const (
	Always Cond = iota
	IfTrue
	IfFalse
	IfEq
	IfNe
	IfGe
	IfGt
	IfLe
	IfLt
	Leave
)

const (
	CmpEq CmpKind = iota
	CmpGt
	CmpLt
)

// -------------------
// ----- Globals -----
// -------------------

// branchOps holds the branch opcodes indexed by condition, signedness (signed, unsigned) and form (long, short).
var branchOps = [...][2][2]Opcode{
	Always:  {{OpBr, OpBrS}, {OpBr, OpBrS}},
	IfTrue:  {{OpBrtrue, OpBrtrueS}, {OpBrtrue, OpBrtrueS}},
	IfFalse: {{OpBrfalse, OpBrfalseS}, {OpBrfalse, OpBrfalseS}},
	IfEq:    {{OpBeq, OpBeqS}, {OpBeq, OpBeqS}},
	IfNe:    {{OpBneUn, OpBneUnS}, {OpBneUn, OpBneUnS}},
	IfGe:    {{OpBge, OpBgeS}, {OpBgeUn, OpBgeUnS}},
	IfGt:    {{OpBgt, OpBgtS}, {OpBgtUn, OpBgtUnS}},
	IfLe:    {{OpBle, OpBleS}, {OpBleUn, OpBleUnS}},
	IfLt:    {{OpBlt, OpBltS}, {OpBltUn, OpBltUnS}},
	Leave:   {{OpLeave, OpLeaveS}, {OpLeave, OpLeaveS}},
}

// ldcSmall holds the dedicated opcodes for the integer constants -1 to 8.
var ldcSmall = [...]Opcode{
	OpLdcI4M1, OpLdcI40, OpLdcI41, OpLdcI42, OpLdcI43, OpLdcI44, OpLdcI45, OpLdcI46, OpLdcI47, OpLdcI48,
}

// Indexed access opcodes: dedicated forms for indices 0 to 3, followed by the short and long form.
var (
	ldargOps = [...]Opcode{OpLdarg0, OpLdarg1, OpLdarg2, OpLdarg3, OpLdargS, OpLdarg}
	ldlocOps = [...]Opcode{OpLdloc0, OpLdloc1, OpLdloc2, OpLdloc3, OpLdlocS, OpLdloc}
	stlocOps = [...]Opcode{OpStloc0, OpStloc1, OpStloc2, OpStloc3, OpStlocS, OpStloc}
)

// ldindOps and stindOps map primitive types to their indirect load and store opcodes.
var (
	ldindOps = map[TypeID]Opcode{
		Bool:       OpLdindU1,
		Int8:       OpLdindI1,
		UInt8:      OpLdindU1,
		Int16:      OpLdindI2,
		UInt16:     OpLdindU2,
		Int32:      OpLdindI4,
		UInt32:     OpLdindU4,
		Int64:      OpLdindI8,
		UInt64:     OpLdindI8,
		NativeInt:  OpLdindI,
		NativeUInt: OpLdindI,
		Pointer:    OpLdindI,
		Float32:    OpLdindR4,
		Float64:    OpLdindR8,
		TypedRef:   OpLdindRef,
	}
	stindOps = map[TypeID]Opcode{
		Bool:       OpStindI1,
		Int8:       OpStindI1,
		UInt8:      OpStindI1,
		Int16:      OpStindI2,
		UInt16:     OpStindI2,
		Int32:      OpStindI4,
		UInt32:     OpStindI4,
		Int64:      OpStindI8,
		UInt64:     OpStindI8,
		NativeInt:  OpStindI,
		NativeUInt: OpStindI,
		Pointer:    OpStindI,
		Float32:    OpStindR4,
		Float64:    OpStindR8,
		TypedRef:   OpStindRef,
	}
)

// convOps holds the conversion opcodes per target type, indexed by plain, overflow checked and overflow checked
// with unsigned source.
var convOps = map[TypeID][3]Opcode{
	Bool:       {OpConvU1, OpConvOvfU1, OpConvOvfU1Un},
	Int8:       {OpConvI1, OpConvOvfI1, OpConvOvfI1Un},
	UInt8:      {OpConvU1, OpConvOvfU1, OpConvOvfU1Un},
	Int16:      {OpConvI2, OpConvOvfI2, OpConvOvfI2Un},
	UInt16:     {OpConvU2, OpConvOvfU2, OpConvOvfU2Un},
	Int32:      {OpConvI4, OpConvOvfI4, OpConvOvfI4Un},
	UInt32:     {OpConvU4, OpConvOvfU4, OpConvOvfU4Un},
	Int64:      {OpConvI8, OpConvOvfI8, OpConvOvfI8Un},
	UInt64:     {OpConvU8, OpConvOvfU8, OpConvOvfU8Un},
	NativeInt:  {OpConvI, OpConvOvfI, OpConvOvfIUn},
	NativeUInt: {OpConvU, OpConvOvfU, OpConvOvfUUn},
	Pointer:    {OpConvU, OpConvOvfU, OpConvOvfUUn},
}

// ---------------------
// ----- Functions -----
// ---------------------

// Plain returns an instruction without operands.
func Plain(op Opcode) Inst {
	return Inst{Op: op}
}

// indexed selects among the dedicated, short and long forms of an indexed access.
func indexed(ops [6]Opcode, n int) Inst {
	switch {
	case n >= 0 && n <= 3:
		return Inst{Op: ops[n], Int: int64(n)}
	case n <= 255:
		return Inst{Op: ops[4], Int: int64(n)}
	default:
		return Inst{Op: ops[5], Int: int64(n)}
	}
}

// shortOrLong selects the short form of an indexed access for indices up to 255.
func shortOrLong(short, long Opcode, n int) Inst {
	if n <= 255 {
		return Inst{Op: short, Int: int64(n)}
	}
	return Inst{Op: long, Int: int64(n)}
}

// LoadArg returns an instruction pushing argument n.
func LoadArg(n int) Inst {
	return indexed(ldargOps, n)
}

// LoadArgAddr returns an instruction pushing the address of argument n.
func LoadArgAddr(n int) Inst {
	return shortOrLong(OpLdargaS, OpLdarga, n)
}

// StoreArg returns an instruction popping a value into argument n. There are no dedicated forms for small n.
func StoreArg(n int) Inst {
	return shortOrLong(OpStargS, OpStarg, n)
}

// LoadLocal returns an instruction pushing local n.
func LoadLocal(n int) Inst {
	return indexed(ldlocOps, n)
}

// LoadLocalAddr returns an instruction pushing the address of local n.
func LoadLocalAddr(n int) Inst {
	return shortOrLong(OpLdlocaS, OpLdloca, n)
}

// StoreLocal returns an instruction popping a value into local n.
func StoreLocal(n int) Inst {
	return indexed(stlocOps, n)
}

// LoadInt32 returns an instruction pushing the 32-bit integer v, using the shortest encoding.
func LoadInt32(v int32) Inst {
	switch {
	case v >= -1 && v <= 8:
		return Inst{Op: ldcSmall[v+1], Int: int64(v)}
	case v >= -128 && v < 128:
		return Inst{Op: OpLdcI4S, Int: int64(v)}
	default:
		return Inst{Op: OpLdcI4, Int: int64(v)}
	}
}

// LoadInt64 returns an instruction pushing the 64-bit integer v.
func LoadInt64(v int64) Inst {
	return Inst{Op: OpLdcI8, Int: v}
}

// LoadFloat32 returns an instruction pushing the single precision float v.
func LoadFloat32(v float32) Inst {
	return Inst{Op: OpLdcR4, Float: float64(v)}
}

// LoadFloat64 returns an instruction pushing the double precision float v.
func LoadFloat64(v float64) Inst {
	return Inst{Op: OpLdcR8, Float: v}
}

// Branch returns a branch to label on condition c, in its long form.
func Branch(c Cond, un bool, label string) Inst {
	return Inst{Op: branchOps[c][boolIndex(un)][0], Label: label, cond: c, un: un}
}

// BranchOffset returns a branch to label on condition c, choosing the short form if the offset from the end of
// the short instruction to the target fits in a signed byte.
func BranchOffset(c Cond, un bool, label string, offset int) Inst {
	inst := Branch(c, un, label)
	if offset >= math.MinInt8 && offset <= math.MaxInt8 {
		inst.Op = branchOps[c][boolIndex(un)][1]
	}
	return inst
}

// LoadIndirect returns an instruction loading a value of type t from the address on the stack.
func LoadIndirect(t *Type) (Inst, error) {
	if op, ok := ldindOps[t.ID]; ok {
		return Plain(op), nil
	}
	return Inst{}, &UnsupportedTypeError{Type: t.String(), Reason: "no indirect load"}
}

// StoreIndirect returns an instruction storing a value of type t to an address.
func StoreIndirect(t *Type) (Inst, error) {
	if op, ok := stindOps[t.ID]; ok {
		return Plain(op), nil
	}
	return Inst{}, &UnsupportedTypeError{Type: t.String(), Reason: "no indirect store"}
}

// Conv returns an instruction converting the top of the stack to type t. Overflow checked conversions treat the
// source as unsigned if un is set.
func Conv(t *Type, ovf, un bool) (Inst, error) {
	switch t.ID {
	case Float32:
		if !ovf {
			return Plain(OpConvR4), nil
		}
	case Float64:
		if !ovf {
			return Plain(OpConvR8), nil
		}
	default:
		if ops, ok := convOps[t.ID]; ok {
			switch {
			case !ovf:
				return Plain(ops[0]), nil
			case !un:
				return Plain(ops[1]), nil
			default:
				return Plain(ops[2]), nil
			}
		}
	}
	return Inst{}, &UnsupportedTypeError{Type: t.String(), Reason: "no conversion"}
}

// arith selects among the plain, overflow checked and unsigned overflow checked form of an operation.
func arith(plain, ovf, ovfUn Opcode, checked, un bool) Inst {
	switch {
	case !checked:
		return Plain(plain)
	case !un:
		return Plain(ovf)
	default:
		return Plain(ovfUn)
	}
}

// Add returns an addition.
func Add(ovf, un bool) Inst {
	return arith(OpAdd, OpAddOvf, OpAddOvfUn, ovf, un)
}

// Sub returns a subtraction.
func Sub(ovf, un bool) Inst {
	return arith(OpSub, OpSubOvf, OpSubOvfUn, ovf, un)
}

// Mul returns a multiplication.
func Mul(ovf, un bool) Inst {
	return arith(OpMul, OpMulOvf, OpMulOvfUn, ovf, un)
}

// Div returns a signed or unsigned division.
func Div(un bool) Inst {
	if un {
		return Plain(OpDivUn)
	}
	return Plain(OpDiv)
}

// Rem returns a signed or unsigned remainder.
func Rem(un bool) Inst {
	if un {
		return Plain(OpRemUn)
	}
	return Plain(OpRem)
}

// Shr returns an arithmetic or logical right shift.
func Shr(un bool) Inst {
	if un {
		return Plain(OpShrUn)
	}
	return Plain(OpShr)
}

// Cmp returns a comparison pushing 1 if the relation holds and 0 otherwise. Equality has no unsigned form.
func Cmp(c CmpKind, un bool) Inst {
	switch c {
	case CmpGt:
		if un {
			return Plain(OpCgtUn)
		}
		return Plain(OpCgt)
	case CmpLt:
		if un {
			return Plain(OpCltUn)
		}
		return Plain(OpClt)
	default:
		return Plain(OpCeq)
	}
}

// Call returns a direct call of method m.
func Call(m MethodRef) Inst {
	return Inst{Op: OpCall, Method: &m}
}

// CallIndirect returns a call through the function pointer on top of the stack. sig carries no name.
func CallIndirect(sig MethodRef) Inst {
	sig.Name = ""
	return Inst{Op: OpCalli, Method: &sig}
}

// LoadFunction returns an instruction pushing a pointer to method m.
func LoadFunction(m MethodRef) Inst {
	return Inst{Op: OpLdftn, Method: &m}
}

// LoadStaticField returns an instruction pushing the value of a static field.
func LoadStaticField(t *Type, name string) Inst {
	return Inst{Op: OpLdsfld, Type: t, Field: name}
}

// LoadStaticFieldAddr returns an instruction pushing the address of a static field.
func LoadStaticFieldAddr(t *Type, name string) Inst {
	return Inst{Op: OpLdsflda, Type: t, Field: name}
}

// StoreStaticField returns an instruction popping a value into a static field.
func StoreStaticField(t *Type, name string) Inst {
	return Inst{Op: OpStsfld, Type: t, Field: name}
}

// IsBranch returns true if Inst i transfers control to a label.
func (i Inst) IsBranch() bool {
	return len(i.Label) > 0
}

// IsShortBranch returns true if Inst i is a branch in its short form.
func (i Inst) IsShortBranch() bool {
	return i.IsBranch() && i.Op == branchOps[i.cond][boolIndex(i.un)][1]
}

// Mnemonic returns the opcode text of Inst i.
func (i Inst) Mnemonic() string {
	return i.Op.String()
}

// Operand returns the operand text of Inst i, or an empty string for instructions without operand.
func (i Inst) Operand() string {
	switch i.Op {
	case OpLdargS, OpLdarg, OpLdargaS, OpLdarga, OpStargS, OpStarg, OpLdlocS, OpLdloc, OpLdlocaS, OpLdloca,
		OpStlocS, OpStloc, OpLdcI4S, OpLdcI4, OpLdcI8:
		return strconv.FormatInt(i.Int, 10)
	case OpLdcR4:
		return formatFloat(i.Float, 32)
	case OpLdcR8:
		return formatFloat(i.Float, 64)
	case OpCall, OpCalli, OpLdftn:
		return i.Method.String()
	case OpLdsfld, OpLdsflda, OpStsfld:
		return i.Type.String() + " " + quote(i.Field)
	default:
		if i.IsBranch() {
			return quote(i.Label)
		}
		return ""
	}
}

// String returns the textual target representation of Inst i.
func (i Inst) String() string {
	if s := i.Operand(); len(s) > 0 {
		return i.Mnemonic() + " " + s
	}
	return i.Mnemonic()
}

// Size returns the number of bytes the encoding of Inst i occupies.
func (i Inst) Size() int {
	n := i.Op.Len()
	switch i.Op {
	case OpLdargS, OpLdargaS, OpStargS, OpLdlocS, OpLdlocaS, OpStlocS, OpLdcI4S:
		n++
	case OpLdarg, OpLdarga, OpStarg, OpLdloc, OpLdloca, OpStloc:
		n += 2
	case OpLdcI4, OpLdcR4, OpCall, OpCalli, OpLdftn, OpLdsfld, OpLdsflda, OpStsfld:
		n += 4
	case OpLdcI8, OpLdcR8:
		n += 8
	default:
		if i.IsBranch() {
			if i.IsShortBranch() {
				n++
			} else {
				n += 4
			}
		}
	}
	return n
}

// stack returns the number of values Inst i pops from and pushes onto the evaluation stack. The pop count of
// ret is reported as -1.
func (i Inst) stack() (int, int) {
	info := opTable[i.Op]
	switch i.Op {
	case OpCall, OpCalli:
		pop := len(i.Method.Params) + len(i.Method.Extra)
		if i.Op == OpCalli {
			pop++
		}
		push := 0
		if i.Method.Ret.ID != Void {
			push = 1
		}
		return pop, push
	default:
		return info.pop, info.push
	}
}

// boolIndex returns 1 for true and 0 for false.
func boolIndex(b bool) int {
	if b {
		return 1
	}
	return 0
}

// formatFloat returns the literal text of v at the given precision. Values without a decimal literal are
// written as their bit pattern.
func formatFloat(v float64, bits int) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		if bits == 32 {
			return fmt.Sprintf("float32(%d)", int32(math.Float32bits(float32(v))))
		}
		return fmt.Sprintf("float64(%d)", int64(math.Float64bits(v)))
	}
	s := strconv.FormatFloat(v, 'g', -1, bits)
	if strings.Contains(s, ".") {
		return s
	}
	if i1 := strings.IndexByte(s, 'e'); i1 >= 0 {
		return s[:i1] + ".0" + s[i1:]
	}
	return s + ".0"
}
