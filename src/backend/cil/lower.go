package cil

import (
	"fmt"
	"strings"

	"cilc/src/ir/ssa"
	"cilc/src/ir/ssa/types"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// blockCode holds the lowered instructions of one basic block.
type blockCode struct {
	label string
	insts []Inst
}

// lowerer lowers the instructions of one function onto the evaluation stack.
type lowerer struct {
	e      *Emitter      // Module level state: type mapper, data layout and global bindings.
	f      *ssa.Function // Function being lowered.
	locals *Locals       // Local slots of f.
	code   []Inst        // Instructions of the block being lowered.
}

// -------------------
// ----- Globals -----
// -------------------

// binOps maps binary source opcodes to their target instruction.
var binOps = map[types.Opcode]Inst{
	types.Add:  Add(false, false),
	types.FAdd: Add(false, false),
	types.Sub:  Sub(false, false),
	types.FSub: Sub(false, false),
	types.Mul:  Mul(false, false),
	types.FMul: Mul(false, false),
	types.UDiv: Div(true),
	types.SDiv: Div(false),
	types.FDiv: Div(false),
	types.URem: Rem(true),
	types.SRem: Rem(false),
	types.FRem: Rem(false),
	types.Shl:  Plain(OpShl),
	types.LShr: Shr(true),
	types.AShr: Shr(false),
	types.And:  Plain(OpAnd),
	types.Or:   Plain(OpOr),
	types.Xor:  Plain(OpXor),
}

// cmpRule describes how a predicate is evaluated: a primitive comparison, optionally negated.
type cmpRule struct {
	kind   CmpKind
	un     bool
	negate bool
}

// cmpRules maps every relational predicate to its comparison. Predicates without a primitive comparison are
// evaluated as the negation of the complementary one.
var cmpRules = map[types.Predicate]cmpRule{
	types.IntEQ:    {CmpEq, false, false},
	types.IntNE:    {CmpEq, false, true},
	types.IntUGT:   {CmpGt, true, false},
	types.IntUGE:   {CmpLt, true, true},
	types.IntULT:   {CmpLt, true, false},
	types.IntULE:   {CmpGt, true, true},
	types.IntSGT:   {CmpGt, false, false},
	types.IntSGE:   {CmpLt, false, true},
	types.IntSLT:   {CmpLt, false, false},
	types.IntSLE:   {CmpGt, false, true},
	types.FloatOEQ: {CmpEq, false, false},
	types.FloatUEQ: {CmpEq, false, false},
	types.FloatONE: {CmpEq, false, true},
	types.FloatUNE: {CmpEq, false, true},
	types.FloatOGT: {CmpGt, false, false},
	types.FloatUGT: {CmpGt, true, false},
	types.FloatOLT: {CmpLt, false, false},
	types.FloatULT: {CmpLt, true, false},
	types.FloatOGE: {CmpLt, true, true},
	types.FloatUGE: {CmpLt, false, true},
	types.FloatOLE: {CmpGt, true, true},
	types.FloatULE: {CmpGt, false, true},
}

// ignoredIntrinsics lists name prefixes of intrinsics that carry no runtime semantics.
var ignoredIntrinsics = []string{
	"llvm.dbg.",
	"llvm.lifetime.",
}

// ---------------------
// ----- Functions -----
// ---------------------

// lowerBlocks lowers every basic block of the function. Block and local names must have been assigned.
func (lo *lowerer) lowerBlocks() ([]blockCode, error) {
	body := make([]blockCode, 0, len(lo.f.Blocks()))
	for _, e1 := range lo.f.Blocks() {
		lo.code = make([]Inst, 0, 4*len(e1.Instructions()))
		for _, e2 := range e1.Instructions() {
			if err := lo.lower(e2); err != nil {
				return nil, fmt.Errorf("block %s: %w", e1.Name(), err)
			}
		}
		body = append(body, blockCode{label: e1.Name(), insts: lo.code})
	}
	return body, nil
}

// emit appends instructions to the current block.
func (lo *lowerer) emit(insts ...Inst) {
	lo.code = append(lo.code, insts...)
}

// lower appends the target instructions of inst to the current block. If inst has an indirect or temporary slot
// its result is stored there.
func (lo *lowerer) lower(inst *ssa.Instruction) error {
	var err error
	switch op := inst.Opcode(); {
	case op == types.Alloca:
		err = lo.alloca(inst)
	case op == types.Load:
		err = lo.load(inst)
	case op == types.Store:
		err = lo.store(inst)
	case op == types.GetElementPtr:
		err = lo.gep(inst)
	case op.IsBinary():
		err = lo.binary(inst)
	case op == types.ICmp, op == types.FCmp:
		err = lo.compare(inst)
	case op.IsCast():
		err = lo.cast(inst)
	case op == types.Call:
		err = lo.call(inst)
	case op == types.Ret:
		if len(inst.Operands()) > 0 {
			err = lo.push(inst.Operand(0))
		}
		lo.emit(Plain(OpRet))
	case op == types.Br:
		lo.emit(Branch(Always, false, inst.Targets()[0].Name()))
	case op == types.CondBr:
		if err = lo.push(inst.Operand(0)); err == nil {
			lo.emit(
				Plain(OpDup),
				Branch(IfTrue, false, inst.Targets()[0].Name()),
				Branch(IfFalse, false, inst.Targets()[1].Name()),
			)
		}
	case op == types.Unreachable:
		lo.emit(Plain(OpBreak))
	default:
		return &UnsupportedInstructionError{Inst: inst.String(), Reason: "no stack machine lowering"}
	}
	if err != nil {
		return err
	}

	if s, ok := lo.locals.Slot(inst); ok && s.Cat != RegLocal {
		lo.emit(StoreLocal(lo.locals.Frame(s)))
	}
	return nil
}

// ---------------------------
// ----- Operand loading -----
// ---------------------------

// push appends the instructions that load value v onto the stack. Constants are rematerialised, register-local
// allocations yield the address of their slot and globals yield the address of their field.
func (lo *lowerer) push(v ssa.Value) error {
	switch v := v.(type) {
	case ssa.Constant:
		return lo.pushConst(v)
	case *ssa.Argument:
		lo.emit(LoadArg(v.Index()))
	case *ssa.Instruction:
		s, ok := lo.locals.Slot(v)
		if !ok {
			return &InvalidOperandError{Inst: v.String(), Reason: "value has no local slot"}
		}
		if s.Cat == RegLocal {
			lo.emit(LoadLocalAddr(lo.locals.Frame(s)))
		} else {
			lo.emit(LoadLocal(lo.locals.Frame(s)))
		}
	case *ssa.Global:
		b, err := lo.e.bind(v)
		if err != nil {
			return err
		}
		lo.emit(LoadStaticFieldAddr(b.typ, v.Name()))
	case *ssa.Function:
		ref, err := lo.e.methodRef(v)
		if err != nil {
			return err
		}
		lo.emit(LoadFunction(ref))
	default:
		return &InvalidOperandError{Inst: v.Ident(), Reason: "unknown value kind"}
	}
	return nil
}

// pushConst appends the instructions that materialise constant c.
func (lo *lowerer) pushConst(c ssa.Constant) error {
	switch c := c.(type) {
	case *ssa.ConstInt:
		switch w := c.Type().Width; {
		case w == 1:
			if c.V != 0 {
				lo.emit(LoadInt32(1))
			} else {
				lo.emit(LoadInt32(0))
			}
		case w > 32:
			lo.emit(LoadInt64(c.V))
		default:
			lo.emit(LoadInt32(int32(c.V)))
		}
		return nil
	case *ssa.ConstFloat:
		if c.Type().Kind == types.FloatKind {
			lo.emit(LoadFloat32(float32(c.V)))
		} else {
			lo.emit(LoadFloat64(c.V))
		}
		return nil
	case *ssa.ConstNull, *ssa.ConstZero, *ssa.ConstUndef:
		t, err := lo.e.mapper.Map(c.Type())
		if err != nil {
			return err
		}
		insts, err := zeroOf(t)
		if err != nil {
			return err
		}
		lo.emit(insts...)
		return nil
	default:
		return &InvalidOperandError{Inst: c.Ident(), Reason: "aggregate constants cannot be loaded onto the stack"}
	}
}

// zeroOf returns the instructions that push the zero value of type t.
func zeroOf(t *Type) ([]Inst, error) {
	switch t.ID {
	case Bool, Int8, UInt8, Int16, UInt16, Int32, UInt32:
		return []Inst{LoadInt32(0)}, nil
	case Int64, UInt64:
		return []Inst{LoadInt64(0)}, nil
	case NativeInt, NativeUInt, Pointer:
		return []Inst{LoadInt32(0), Plain(OpConvU)}, nil
	case Float32:
		return []Inst{LoadFloat32(0)}, nil
	case Float64:
		return []Inst{LoadFloat64(0)}, nil
	default:
		return nil, &UnsupportedTypeError{Type: t.String(), Reason: "no zero value"}
	}
}

// regSlot returns the frame index of v if v is a register-local allocation of a value of type t.
func (lo *lowerer) regSlot(v ssa.Value, t *types.Type) (int, bool) {
	inst, ok := v.(*ssa.Instruction)
	if !ok {
		return 0, false
	}
	s, ok := lo.locals.Slot(inst)
	if !ok || s.Cat != RegLocal || inst.ElemType().String() != t.String() {
		return 0, false
	}
	return lo.locals.Frame(s), true
}

// scalarGlobal returns v as a global if it holds a scalar value of type t.
func scalarGlobal(v ssa.Value, t *types.Type) (*ssa.Global, bool) {
	g, ok := v.(*ssa.Global)
	if !ok || g.ContentType().IsAggregate() || g.ContentType().String() != t.String() {
		return nil, false
	}
	return g, true
}

// -------------------------------
// ----- Memory instructions -----
// -------------------------------

// alloca lowers a stack allocation. Register-local and unused allocations emit nothing; any other allocation
// pushes its size in bytes and allocates it with localloc.
func (lo *lowerer) alloca(inst *ssa.Instruction) error {
	count := inst.Operand(0)
	if !count.Type().IsInt() {
		return &InvalidOperandError{Inst: inst.String(), Reason: "allocation count must be an integer"}
	}
	if s, ok := lo.locals.Slot(inst); !ok || s.Cat == RegLocal {
		return nil
	}
	size := lo.e.layout.SizeOf(inst.ElemType())
	if c, ok := count.(*ssa.ConstInt); ok {
		lo.emit(LoadInt32(int32(c.V * int64(size))))
	} else {
		if err := lo.push(count); err != nil {
			return err
		}
		if count.Type().Width > 32 {
			lo.emit(Plain(OpConvU))
		}
		lo.emit(LoadInt32(int32(size)), Mul(false, false))
	}
	lo.emit(Plain(OpLocalloc))
	return nil
}

// load lowers a load. Register-local slots and scalar globals are read directly; anything else is read through
// its address.
func (lo *lowerer) load(inst *ssa.Instruction) error {
	src := inst.Operand(0)
	if n, ok := lo.regSlot(src, inst.Type()); ok {
		lo.emit(LoadLocal(n))
		return nil
	}
	if g, ok := scalarGlobal(src, inst.Type()); ok {
		b, err := lo.e.bind(g)
		if err != nil {
			return err
		}
		lo.emit(LoadStaticField(b.typ, g.Name()))
		return nil
	}
	if err := lo.push(src); err != nil {
		return err
	}
	t, err := lo.e.mapper.Map(inst.Type())
	if err != nil {
		return err
	}
	ldind, err := LoadIndirect(t)
	if err != nil {
		return err
	}
	lo.emit(ldind)
	return nil
}

// store lowers a store. Register-local slots and scalar globals are written directly; anything else is written
// through its address.
func (lo *lowerer) store(inst *ssa.Instruction) error {
	val, dst := inst.Operand(0), inst.Operand(1)
	if n, ok := lo.regSlot(dst, val.Type()); ok {
		if err := lo.push(val); err != nil {
			return err
		}
		lo.emit(StoreLocal(n))
		return nil
	}
	if g, ok := scalarGlobal(dst, val.Type()); ok {
		b, err := lo.e.bind(g)
		if err != nil {
			return err
		}
		if err := lo.push(val); err != nil {
			return err
		}
		lo.emit(StoreStaticField(b.typ, g.Name()))
		return nil
	}
	if err := lo.push(dst); err != nil {
		return err
	}
	if err := lo.push(val); err != nil {
		return err
	}
	t, err := lo.e.mapper.Map(val.Type())
	if err != nil {
		return err
	}
	stind, err := StoreIndirect(t)
	if err != nil {
		return err
	}
	lo.emit(stind)
	return nil
}

// gep lowers an address computation. The base address is loaded once; every array or pointer step adds the index
// scaled by the element size, every struct step adds the constant field offset.
func (lo *lowerer) gep(inst *ssa.Instruction) error {
	if err := lo.push(inst.Operand(0)); err != nil {
		return err
	}
	cur := inst.ElemType()
	for i1, e1 := range inst.Operands()[1:] {
		if i1 > 0 {
			switch cur.Kind {
			case types.ArrayKind:
				cur = cur.Elem
			case types.StructKind:
				c, ok := e1.(*ssa.ConstInt)
				if !ok || c.V < 0 || int(c.V) >= len(cur.Fields) {
					return &InvalidOperandError{Inst: inst.String(), Reason: "struct field index must be a constant"}
				}
				lo.emit(LoadInt32(int32(lo.e.layout.FieldOffset(cur, int(c.V)))), Plain(OpConvU), Add(false, false))
				cur = cur.Fields[c.V]
				continue
			default:
				return &InvalidOperandError{Inst: inst.String(), Reason: "cannot index into " + cur.String()}
			}
		}
		if !e1.Type().IsInt() {
			return &InvalidOperandError{Inst: inst.String(), Reason: "index must be an integer"}
		}
		lo.emit(LoadInt32(int32(lo.e.layout.SizeOf(cur))), Plain(OpConvU))
		if err := lo.push(e1); err != nil {
			return err
		}
		lo.emit(Plain(OpConvI), Mul(false, false), Add(false, false))
	}
	return nil
}

// -----------------------------
// ----- Data instructions -----
// -----------------------------

// binary lowers arithmetic and bitwise operations. Operands of unsigned division and logical right shift
// narrower than 32 bits are zero extended first, and 64-bit shift amounts are narrowed to 32 bits.
func (lo *lowerer) binary(inst *ssa.Instruction) error {
	op := inst.Opcode()
	x, y := inst.Operand(0), inst.Operand(1)
	unsigned := op == types.UDiv || op == types.URem || op == types.LShr
	if err := lo.push(x); err != nil {
		return err
	}
	if unsigned {
		lo.zeroExtend(x.Type())
	}
	if err := lo.push(y); err != nil {
		return err
	}
	switch {
	case op == types.Shl || op == types.LShr || op == types.AShr:
		if y.Type().Width > 32 {
			lo.emit(Plain(OpConvI4))
		}
	case unsigned:
		lo.zeroExtend(y.Type())
	}
	lo.emit(binOps[op])
	return nil
}

// zeroExtend appends a zero extension of an 8 or 16-bit integer on top of the stack.
func (lo *lowerer) zeroExtend(t *types.Type) {
	switch t.Width {
	case 8:
		lo.emit(Plain(OpConvU1))
	case 16:
		lo.emit(Plain(OpConvU2))
	}
}

// compare lowers icmp and fcmp. Predicates without a primitive comparison evaluate the complementary
// comparison and xor the result with 1. The constant predicates push their result without loading operands.
func (lo *lowerer) compare(inst *ssa.Instruction) error {
	switch inst.Predicate() {
	case types.FloatTrue:
		lo.emit(LoadInt32(1))
		return nil
	case types.FloatFalse:
		lo.emit(LoadInt32(0))
		return nil
	}
	rule, ok := cmpRules[inst.Predicate()]
	if !ok {
		return &InvalidOperandError{Inst: inst.String(),
			Reason: fmt.Sprintf("predicate %s is not implemented", inst.Predicate().String())}
	}
	if err := lo.push(inst.Operand(0)); err != nil {
		return err
	}
	if err := lo.push(inst.Operand(1)); err != nil {
		return err
	}
	lo.emit(Cmp(rule.kind, rule.un))
	if rule.negate {
		lo.emit(LoadInt32(1), Plain(OpXor))
	}
	return nil
}

// cast lowers conversions.
func (lo *lowerer) cast(inst *ssa.Instruction) error {
	v := inst.Operand(0)
	from, to := v.Type(), inst.Type()
	if err := lo.push(v); err != nil {
		return err
	}
	dst, err := lo.e.mapper.Map(to)
	if err != nil {
		return err
	}
	conv := func(t *Type) error {
		c, err := Conv(t, false, false)
		if err == nil {
			lo.emit(c)
		}
		return err
	}

	switch inst.Opcode() {
	case types.Trunc:
		if to.Width == 1 {
			if from.Width > 32 {
				lo.emit(Plain(OpConvI4))
			}
			lo.emit(LoadInt32(1), Plain(OpAnd))
			return nil
		}
		return conv(dst)
	case types.ZExt:
		if from.Width > 1 && from.Width < 32 {
			lo.zeroExtend(from)
		}
		if to.Width > 32 {
			lo.emit(Plain(OpConvU8))
		}
		return nil
	case types.SExt:
		switch {
		case from.Width == 1:
			lo.emit(Plain(OpNeg))
		case from.Width < 32:
			src, err := lo.e.mapper.Map(from)
			if err != nil {
				return err
			}
			if err := conv(src); err != nil {
				return err
			}
		}
		if to.Width > 32 {
			lo.emit(Plain(OpConvI8))
		}
		return nil
	case types.FPTrunc, types.FPExt, types.SIToFP, types.FPToSI, types.IntToPtr:
		return conv(dst)
	case types.UIToFP:
		lo.zeroExtend(from)
		lo.emit(Plain(OpConvRUn))
		return conv(dst)
	case types.FPToUI, types.PtrToInt:
		return conv(dst.Unsigned())
	case types.BitCast:
		if from.IsPointer() && to.IsPointer() {
			return nil
		}
		return &UnsupportedInstructionError{Inst: inst.String(), Reason: "bitcast between non-pointer types"}
	default:
		return &UnsupportedInstructionError{Inst: inst.String(), Reason: "unknown conversion"}
	}
}

// --------------------------------
// ----- Control instructions -----
// --------------------------------

// call lowers direct and indirect calls. Arguments are pushed in order; an indirect call pushes the function
// pointer last. An unused result is popped.
func (lo *lowerer) call(inst *ssa.Instruction) error {
	callee := inst.Callee()
	f, direct := callee.(*ssa.Function)
	if direct && f.IsIntrinsic() {
		for _, e1 := range ignoredIntrinsics {
			if strings.HasPrefix(f.Name(), e1) {
				return nil
			}
		}
		return &UnsupportedInstructionError{Inst: inst.String(), Reason: "intrinsic has no lowering"}
	}
	if !direct {
		t := callee.Type()
		if !t.IsPointer() || t.Elem.Kind != types.FuncKind {
			return &InvalidCalleeError{Callee: callee.Ident(), Type: t.String()}
		}
	}

	ref, err := lo.e.callSite(inst.ElemType(), inst.Args())
	if err != nil {
		return err
	}
	for _, e1 := range inst.Args() {
		if err := lo.push(e1); err != nil {
			return err
		}
	}
	if direct {
		ref.Name = f.Name()
		lo.emit(Call(ref))
	} else {
		if err := lo.push(callee); err != nil {
			return err
		}
		lo.emit(CallIndirect(ref))
	}
	if inst.HasResult() && inst.NumUses() == 0 {
		lo.emit(Plain(OpPop))
	}
	return nil
}

// maxStack returns the largest evaluation stack depth reached by body. The stack is empty at block boundaries.
func maxStack(body []blockCode) int {
	deepest := 0
	for _, e1 := range body {
		depth := 0
		for _, e2 := range e1.insts {
			pop, push := e2.stack()
			if pop < 0 {
				pop = depth
			}
			depth += push - pop
			if depth < 0 {
				depth = 0
			}
			if depth > deepest {
				deepest = depth
			}
		}
	}
	return deepest
}
