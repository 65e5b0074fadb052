//go:build llvm

// Package llvm reads LLVM IR assembly and bitcode into the SSA IR through the system installed LLVM libraries.
// It is only built with the llvm build tag.
package llvm

import (
	"fmt"
	"path/filepath"
	"strings"
)

import (
	"tinygo.org/x/go-llvm"
)

import (
	"cilc/src/ir/ssa"
	"cilc/src/ir/ssa/types"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// transformer converts one LLVM module. Values and blocks are resolved by identity of their LLVM handles.
type transformer struct {
	m      *ssa.Module
	types  map[llvm.Type]*types.Type
	values map[llvm.Value]ssa.Value
	blocks map[llvm.BasicBlock]*ssa.Block
	phis   []pendingPhi
}

// pendingPhi is a phi node whose incoming values are resolved once every block of its function is converted.
type pendingPhi struct {
	src llvm.Value
	dst *ssa.Instruction
}

// ---------------------
// ----- Constants -----
// ---------------------

const debugPrefix = "llvm.dbg." // Debug info intrinsics carry metadata operands only.

// x86ThiscallCallConv is the LLVM numbering of the x86 thiscall convention, which go-llvm does not export.
const x86ThiscallCallConv llvm.CallConv = 70

// -------------------
// ----- Globals -----
// -------------------

// intPreds maps LLVM integer predicates to SSA predicates.
var intPreds = map[llvm.IntPredicate]types.Predicate{
	llvm.IntEQ:  types.IntEQ,
	llvm.IntNE:  types.IntNE,
	llvm.IntUGT: types.IntUGT,
	llvm.IntUGE: types.IntUGE,
	llvm.IntULT: types.IntULT,
	llvm.IntULE: types.IntULE,
	llvm.IntSGT: types.IntSGT,
	llvm.IntSGE: types.IntSGE,
	llvm.IntSLT: types.IntSLT,
	llvm.IntSLE: types.IntSLE,
}

// floatPreds maps LLVM floating point predicates to SSA predicates.
var floatPreds = map[llvm.FloatPredicate]types.Predicate{
	llvm.FloatPredicateFalse: types.FloatFalse,
	llvm.FloatOEQ:            types.FloatOEQ,
	llvm.FloatOGT:            types.FloatOGT,
	llvm.FloatOGE:            types.FloatOGE,
	llvm.FloatOLT:            types.FloatOLT,
	llvm.FloatOLE:            types.FloatOLE,
	llvm.FloatONE:            types.FloatONE,
	llvm.FloatORD:            types.FloatORD,
	llvm.FloatUNO:            types.FloatUNO,
	llvm.FloatUEQ:            types.FloatUEQ,
	llvm.FloatUGT:            types.FloatUGT,
	llvm.FloatUGE:            types.FloatUGE,
	llvm.FloatULT:            types.FloatULT,
	llvm.FloatULE:            types.FloatULE,
	llvm.FloatUNE:            types.FloatUNE,
	llvm.FloatPredicateTrue:  types.FloatTrue,
}

// callConvs maps LLVM calling conventions to SSA calling conventions.
var callConvs = map[llvm.CallConv]types.CallConv{
	llvm.CCallConv:           types.CallConvC,
	llvm.FastCallConv:        types.CallConvFast,
	llvm.ColdCallConv:        types.CallConvCold,
	llvm.X86StdcallCallConv:  types.CallConvX86Stdcall,
	llvm.X86FastcallCallConv: types.CallConvX86Fastcall,
	x86ThiscallCallConv:      types.CallConvX86Thiscall,
}

// binOps maps LLVM binary opcodes to SSA opcodes.
var binOps = map[llvm.Opcode]types.Opcode{
	llvm.Add:  types.Add,
	llvm.FAdd: types.FAdd,
	llvm.Sub:  types.Sub,
	llvm.FSub: types.FSub,
	llvm.Mul:  types.Mul,
	llvm.FMul: types.FMul,
	llvm.UDiv: types.UDiv,
	llvm.SDiv: types.SDiv,
	llvm.FDiv: types.FDiv,
	llvm.URem: types.URem,
	llvm.SRem: types.SRem,
	llvm.FRem: types.FRem,
	llvm.Shl:  types.Shl,
	llvm.LShr: types.LShr,
	llvm.AShr: types.AShr,
	llvm.And:  types.And,
	llvm.Or:   types.Or,
	llvm.Xor:  types.Xor,
}

// castOps maps LLVM conversion opcodes to SSA opcodes.
var castOps = map[llvm.Opcode]types.Opcode{
	llvm.Trunc:    types.Trunc,
	llvm.ZExt:     types.ZExt,
	llvm.SExt:     types.SExt,
	llvm.FPTrunc:  types.FPTrunc,
	llvm.FPExt:    types.FPExt,
	llvm.FPToUI:   types.FPToUI,
	llvm.FPToSI:   types.FPToSI,
	llvm.UIToFP:   types.UIToFP,
	llvm.SIToFP:   types.SIToFP,
	llvm.PtrToInt: types.PtrToInt,
	llvm.IntToPtr: types.IntToPtr,
	llvm.BitCast:  types.BitCast,
}

// ---------------------
// ----- Functions -----
// ---------------------

// ReadFile parses the LLVM IR assembly or bitcode file at path.
func ReadFile(path string) (*ssa.Module, error) {
	ctx := llvm.NewContext()
	defer ctx.Dispose()

	buf, err := llvm.NewMemoryBufferFromFile(path)
	if err != nil {
		return nil, err
	}
	// The module takes ownership of the buffer.
	m, err := ctx.ParseIR(buf)
	if err != nil {
		return nil, fmt.Errorf("could not parse %s: %w", path, err)
	}
	defer m.Dispose()

	base := filepath.Base(path)
	return Convert(strings.TrimSuffix(base, filepath.Ext(base)), m)
}

// Convert converts the LLVM module src into an SSA module of the given name.
func Convert(name string, src llvm.Module) (*ssa.Module, error) {
	t := &transformer{
		m:      ssa.NewModule(name),
		types:  make(map[llvm.Type]*types.Type, 32),
		values: make(map[llvm.Value]ssa.Value, 256),
	}
	if dl := src.DataLayout(); len(dl) > 0 {
		t.m.Layout = ssa.ParseDataLayout(dl)
		td := llvm.NewTargetData(dl)
		t.m.Layout.PointerSize = td.PointerSize()
		td.Dispose()
	}

	// Globals and function headers first, so that bodies and initialisers may refer to any of them.
	for g := src.FirstGlobal(); !g.IsNil(); g = llvm.NextGlobal(g) {
		if err := t.globalHeader(g); err != nil {
			return nil, fmt.Errorf("global %s: %w", g.Name(), err)
		}
	}
	for f := src.FirstFunction(); !f.IsNil(); f = llvm.NextFunction(f) {
		if strings.HasPrefix(f.Name(), debugPrefix) {
			continue
		}
		if err := t.funcHeader(f); err != nil {
			return nil, fmt.Errorf("function %s: %w", f.Name(), err)
		}
	}
	for g := src.FirstGlobal(); !g.IsNil(); g = llvm.NextGlobal(g) {
		if g.IsDeclaration() {
			continue
		}
		c, err := t.initialiser(g.Initializer())
		if err != nil {
			return nil, fmt.Errorf("global %s: %w", g.Name(), err)
		}
		t.values[g].(*ssa.Global).SetInit(c)
	}
	for f := src.FirstFunction(); !f.IsNil(); f = llvm.NextFunction(f) {
		if f.IsDeclaration() || strings.HasPrefix(f.Name(), debugPrefix) {
			continue
		}
		if err := t.funcBody(f); err != nil {
			return nil, fmt.Errorf("function %s: %w", f.Name(), err)
		}
	}
	return t.m, nil
}

// typ converts the LLVM type lt.
func (t *transformer) typ(lt llvm.Type) (*types.Type, error) {
	if res, ok := t.types[lt]; ok {
		return res, nil
	}
	var res *types.Type
	switch lt.TypeKind() {
	case llvm.VoidTypeKind:
		res = types.Void
	case llvm.IntegerTypeKind:
		res = types.NewInt(lt.IntTypeWidth())
	case llvm.FloatTypeKind:
		res = types.Float
	case llvm.DoubleTypeKind:
		res = types.Double
	case llvm.LabelTypeKind:
		res = types.Label
	case llvm.PointerTypeKind:
		elem, err := t.typ(lt.ElementType())
		if err != nil {
			return nil, err
		}
		res = types.NewPointer(elem)
	case llvm.ArrayTypeKind:
		elem, err := t.typ(lt.ElementType())
		if err != nil {
			return nil, err
		}
		res = types.NewArray(lt.ArrayLength(), elem)
	case llvm.StructTypeKind:
		// Cached before its fields, named structs may point to themselves.
		res = types.NewStruct(lt.StructName(), lt.IsStructPacked())
		t.types[lt] = res
		elems := lt.StructElementTypes()
		fields := make([]*types.Type, len(elems))
		for i1, e1 := range elems {
			f, err := t.typ(e1)
			if err != nil {
				delete(t.types, lt)
				return nil, err
			}
			fields[i1] = f
		}
		res.Fields = fields
		return res, nil
	case llvm.FunctionTypeKind:
		ret, err := t.typ(lt.ReturnType())
		if err != nil {
			return nil, err
		}
		pts := lt.ParamTypes()
		params := make([]*types.Type, len(pts))
		for i1, e1 := range pts {
			if params[i1], err = t.typ(e1); err != nil {
				return nil, err
			}
		}
		res = types.NewFunc(ret, lt.IsFunctionVarArg(), params...)
	default:
		return nil, fmt.Errorf("unsupported type %s", lt.String())
	}
	t.types[lt] = res
	return res, nil
}

// linkage converts LLVM linkage. Internal and private symbols are local to the module.
func linkage(l llvm.Linkage) types.Linkage {
	switch l {
	case llvm.InternalLinkage, llvm.PrivateLinkage:
		return types.Internal
	default:
		return types.External
	}
}

// globalHeader creates the SSA global of g without its initialiser.
func (t *transformer) globalHeader(g llvm.Value) error {
	content, err := t.typ(g.Type().ElementType())
	if err != nil {
		return err
	}
	res := t.m.NewGlobal(g.Name(), content, nil)
	res.SetConstant(g.IsGlobalConstant())
	res.SetLinkage(linkage(g.Linkage()))
	t.values[g] = res
	return nil
}

// funcHeader creates the SSA function of f with its parameters.
func (t *transformer) funcHeader(f llvm.Value) error {
	sig, err := t.typ(f.Type().ElementType())
	if err != nil {
		return err
	}
	res := t.m.NewFunction(f.Name(), sig)
	res.SetLinkage(linkage(f.Linkage()))
	if cc, ok := callConvs[f.FunctionCallConv()]; ok {
		res.SetCallConv(cc)
	} else {
		res.SetCallConv(types.CallConvOther)
	}
	for i1, e1 := range f.Params() {
		res.Params()[i1].SetName(e1.Name())
		t.values[e1] = res.Params()[i1]
	}
	t.values[f] = res
	return nil
}

// initialiser converts a global initialiser. Only data constants are accepted.
func (t *transformer) initialiser(c llvm.Value) (ssa.Constant, error) {
	typ, err := t.typ(c.Type())
	if err != nil {
		return nil, err
	}
	switch {
	case !c.IsAConstantInt().IsNil():
		return ssa.NewInt(typ, intValue(c, typ)), nil
	case !c.IsAConstantFP().IsNil():
		v, _ := c.DoubleValue()
		return ssa.NewFloat(typ, v), nil
	case !c.IsAConstantPointerNull().IsNil():
		return ssa.NewNull(typ), nil
	case !c.IsAConstantAggregateZero().IsNil():
		return ssa.NewZero(typ), nil
	case !c.IsAUndefValue().IsNil():
		return ssa.NewUndef(typ), nil
	case c.IsConstantString():
		s := c.ConstGetAsString()
		elems := make([]ssa.Constant, len(s))
		for i1 := 0; i1 < len(s); i1++ {
			elems[i1] = ssa.NewInt(types.I8, int64(int8(s[i1])))
		}
		return ssa.NewArray(typ, elems...), nil
	case !c.IsAConstantArray().IsNil():
		elems, err := t.initialisers(c)
		if err != nil {
			return nil, err
		}
		return ssa.NewArray(typ, elems...), nil
	case !c.IsAConstantStruct().IsNil():
		fields, err := t.initialisers(c)
		if err != nil {
			return nil, err
		}
		return ssa.NewStruct(typ, fields...), nil
	default:
		return nil, fmt.Errorf("unsupported initialiser of type %s", c.Type().String())
	}
}

// initialisers converts the operands of aggregate constant c.
func (t *transformer) initialisers(c llvm.Value) ([]ssa.Constant, error) {
	res := make([]ssa.Constant, c.OperandsCount())
	for i1 := range res {
		e, err := t.initialiser(c.Operand(i1))
		if err != nil {
			return nil, err
		}
		res[i1] = e
	}
	return res, nil
}

// intValue returns the value of integer constant c. Booleans are 0 or 1.
func intValue(c llvm.Value, typ *types.Type) int64 {
	if typ.Width == 1 {
		return int64(c.ZExtValue())
	}
	return c.SExtValue()
}

// funcBody converts the basic blocks of function definition f.
func (t *transformer) funcBody(f llvm.Value) error {
	dst := t.values[f].(*ssa.Function)
	t.blocks = make(map[llvm.BasicBlock]*ssa.Block, f.BasicBlocksCount())
	t.phis = t.phis[:0]
	for bb := f.FirstBasicBlock(); !bb.IsNil(); bb = llvm.NextBasicBlock(bb) {
		t.blocks[bb] = dst.NewBlock(bb.AsValue().Name())
	}
	for bb := f.FirstBasicBlock(); !bb.IsNil(); bb = llvm.NextBasicBlock(bb) {
		b := t.blocks[bb]
		for inst := bb.FirstInstruction(); !inst.IsNil(); inst = llvm.NextInstruction(inst) {
			if err := t.inst(b, inst); err != nil {
				return fmt.Errorf("block %s: %w", b.Ident(), err)
			}
		}
	}
	for _, e1 := range t.phis {
		for i1 := 0; i1 < e1.src.IncomingCount(); i1++ {
			v, err := t.operand(nil, e1.src.IncomingValue(i1))
			if err != nil {
				return fmt.Errorf("phi %s: %w", e1.dst.Ident(), err)
			}
			e1.dst.AddIncoming(v, t.blocks[e1.src.IncomingBlock(i1)])
		}
	}
	return nil
}

// operand resolves v as an operand of an instruction in block b. Constant expressions are materialised as
// instructions in b.
func (t *transformer) operand(b *ssa.Block, v llvm.Value) (ssa.Value, error) {
	if res, ok := t.values[v]; ok {
		return res, nil
	}
	typ, err := t.typ(v.Type())
	if err != nil {
		return nil, err
	}
	switch {
	case !v.IsAConstantInt().IsNil():
		return ssa.NewInt(typ, intValue(v, typ)), nil
	case !v.IsAConstantFP().IsNil():
		f, _ := v.DoubleValue()
		return ssa.NewFloat(typ, f), nil
	case !v.IsAConstantPointerNull().IsNil():
		return ssa.NewNull(typ), nil
	case !v.IsAConstantAggregateZero().IsNil():
		return ssa.NewZero(typ), nil
	case !v.IsAUndefValue().IsNil():
		return ssa.NewUndef(typ), nil
	case !v.IsAConstantExpr().IsNil() && b != nil:
		return t.constExpr(b, v, typ)
	}
	return nil, fmt.Errorf("unsupported operand of type %s", v.Type().String())
}

// constExpr materialises constant expression v in block b.
func (t *transformer) constExpr(b *ssa.Block, v llvm.Value, typ *types.Type) (ssa.Value, error) {
	ops, err := t.operands(b, v, 0)
	if err != nil {
		return nil, err
	}
	switch op := v.Opcode(); op {
	case llvm.GetElementPtr:
		elem, err := t.typ(v.Operand(0).Type().ElementType())
		if err != nil {
			return nil, err
		}
		return b.NewGetElementPtr(elem, ops[0], ops[1:]...), nil
	case llvm.BitCast, llvm.PtrToInt, llvm.IntToPtr:
		return b.NewCast(castOps[op], ops[0], typ), nil
	default:
		return nil, fmt.Errorf("unsupported constant expression of type %s", v.Type().String())
	}
}

// operands resolves the operands of v from index start on.
func (t *transformer) operands(b *ssa.Block, v llvm.Value, start int) ([]ssa.Value, error) {
	n := v.OperandsCount()
	res := make([]ssa.Value, 0, n-start)
	for i1 := start; i1 < n; i1++ {
		op, err := t.operand(b, v.Operand(i1))
		if err != nil {
			return nil, err
		}
		res = append(res, op)
	}
	return res, nil
}

// inst converts instruction inst and appends it to block b.
func (t *transformer) inst(b *ssa.Block, inst llvm.Value) error {
	opcode := inst.InstructionOpcode()
	switch opcode {
	case llvm.Ret, llvm.Br, llvm.Unreachable:
		return t.term(b, inst, opcode)
	case llvm.Switch, llvm.IndirectBr, llvm.Invoke, llvm.Resume:
		return fmt.Errorf("unsupported terminator with opcode %d", opcode)
	case llvm.PHI:
		typ, err := t.typ(inst.Type())
		if err != nil {
			return err
		}
		res := b.NewPhi(typ)
		res.SetName(inst.Name())
		t.values[inst] = res
		t.phis = append(t.phis, pendingPhi{src: inst, dst: res})
		return nil
	case llvm.Call:
		callee := inst.Operand(inst.OperandsCount() - 1)
		if strings.HasPrefix(callee.Name(), debugPrefix) {
			return nil
		}
	}

	ops, err := t.operands(b, inst, 0)
	if err != nil {
		return err
	}
	var res *ssa.Instruction
	switch opcode {
	case llvm.Alloca:
		elem, err := t.typ(inst.Type().ElementType())
		if err != nil {
			return err
		}
		res = b.NewAlloca(elem, ops[0])
	case llvm.Load:
		typ, err := t.typ(inst.Type())
		if err != nil {
			return err
		}
		res = b.NewLoad(typ, ops[0])
	case llvm.Store:
		res = b.NewStore(ops[0], ops[1])
	case llvm.GetElementPtr:
		elem, err := t.typ(inst.Operand(0).Type().ElementType())
		if err != nil {
			return err
		}
		res = b.NewGetElementPtr(elem, ops[0], ops[1:]...)
	case llvm.ICmp:
		pred, ok := intPreds[inst.IntPredicate()]
		if !ok {
			return fmt.Errorf("unsupported integer predicate %d", inst.IntPredicate())
		}
		res = b.NewICmp(pred, ops[0], ops[1])
	case llvm.FCmp:
		pred, ok := floatPreds[inst.FloatPredicate()]
		if !ok {
			return fmt.Errorf("unsupported floating point predicate %d", inst.FloatPredicate())
		}
		res = b.NewFCmp(pred, ops[0], ops[1])
	case llvm.Select:
		res = b.NewSelect(ops[0], ops[1], ops[2])
	case llvm.Call:
		// The callee is the last operand.
		last := len(ops) - 1
		sig, err := t.typ(inst.Operand(last).Type().ElementType())
		if err != nil {
			return err
		}
		if sig.Kind != types.FuncKind {
			return fmt.Errorf("callee of type %s is not a function pointer", sig.String())
		}
		res = b.NewCall(sig, ops[last], ops[:last]...)
	default:
		if op, ok := binOps[opcode]; ok {
			res = b.NewBinOp(op, ops[0], ops[1])
		} else if op, ok := castOps[opcode]; ok {
			typ, err := t.typ(inst.Type())
			if err != nil {
				return err
			}
			res = b.NewCast(op, ops[0], typ)
		} else {
			return fmt.Errorf("unsupported instruction with opcode %d", opcode)
		}
	}
	res.SetName(inst.Name())
	t.values[inst] = res
	return nil
}

// term converts the terminator inst and appends it to block b. Conditional branch operands are ordered condition,
// false successor, true successor.
func (t *transformer) term(b *ssa.Block, inst llvm.Value, opcode llvm.Opcode) error {
	switch opcode {
	case llvm.Ret:
		if inst.OperandsCount() == 0 {
			b.NewRet(nil)
			return nil
		}
		v, err := t.operand(b, inst.Operand(0))
		if err != nil {
			return err
		}
		b.NewRet(v)
	case llvm.Br:
		if inst.OperandsCount() == 1 {
			b.NewBr(t.blocks[inst.Operand(0).AsBasicBlock()])
			return nil
		}
		cond, err := t.operand(b, inst.Operand(0))
		if err != nil {
			return err
		}
		b.NewCondBr(cond, t.blocks[inst.Operand(2).AsBasicBlock()], t.blocks[inst.Operand(1).AsBasicBlock()])
	case llvm.Unreachable:
		b.NewUnreachable()
	}
	return nil
}
