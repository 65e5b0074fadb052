// Package llir reads textual LLVM IR into the SSA IR using the pure Go parser of github.com/llir/llvm. It is the
// default frontend and needs no system installed LLVM.
package llir

import (
	"fmt"
	"math"
	"math/big"
	"path/filepath"
	"strings"

	"github.com/llir/llvm/asm"
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	lltypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"cilc/src/ir/ssa"
	"cilc/src/ir/ssa/types"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// reader converts one llir module. Values are resolved by identity of their llir counterpart.
type reader struct {
	m      *ssa.Module
	types  map[lltypes.Type]*types.Type
	values map[value.Value]ssa.Value
	blocks map[*ir.Block]*ssa.Block
	phis   []pendingPhi
}

// pendingPhi is a phi node whose incoming values are resolved once every block of its function is converted.
type pendingPhi struct {
	src *ir.InstPhi
	dst *ssa.Instruction
}

// unnamed is implemented by llir values that may carry a numeric id in place of a name.
type unnamed interface {
	IsUnnamed() bool
	Name() string
}

// ---------------------
// ----- Constants -----
// ---------------------

// debugPrefix prefixes debug info intrinsics. Their metadata operands have no SSA representation.
const debugPrefix = "llvm.dbg."

// -------------------
// ----- Globals -----
// -------------------

// intPreds maps llir integer predicates to SSA predicates.
var intPreds = map[enum.IPred]types.Predicate{
	enum.IPredEQ:  types.IntEQ,
	enum.IPredNE:  types.IntNE,
	enum.IPredUGT: types.IntUGT,
	enum.IPredUGE: types.IntUGE,
	enum.IPredULT: types.IntULT,
	enum.IPredULE: types.IntULE,
	enum.IPredSGT: types.IntSGT,
	enum.IPredSGE: types.IntSGE,
	enum.IPredSLT: types.IntSLT,
	enum.IPredSLE: types.IntSLE,
}

// floatPreds maps llir floating point predicates to SSA predicates.
var floatPreds = map[enum.FPred]types.Predicate{
	enum.FPredFalse: types.FloatFalse,
	enum.FPredOEQ:   types.FloatOEQ,
	enum.FPredOGT:   types.FloatOGT,
	enum.FPredOGE:   types.FloatOGE,
	enum.FPredOLT:   types.FloatOLT,
	enum.FPredOLE:   types.FloatOLE,
	enum.FPredONE:   types.FloatONE,
	enum.FPredORD:   types.FloatORD,
	enum.FPredUEQ:   types.FloatUEQ,
	enum.FPredUGT:   types.FloatUGT,
	enum.FPredUGE:   types.FloatUGE,
	enum.FPredULT:   types.FloatULT,
	enum.FPredULE:   types.FloatULE,
	enum.FPredUNE:   types.FloatUNE,
	enum.FPredUNO:   types.FloatUNO,
	enum.FPredTrue:  types.FloatTrue,
}

// callConvs maps the textual llir calling conventions to SSA calling conventions.
var callConvs = map[string]types.CallConv{
	"ccc":            types.CallConvC,
	"fastcc":         types.CallConvFast,
	"coldcc":         types.CallConvCold,
	"x86_stdcallcc":  types.CallConvX86Stdcall,
	"x86_fastcallcc": types.CallConvX86Fastcall,
	"x86_thiscallcc": types.CallConvX86Thiscall,
}

// ---------------------
// ----- Functions -----
// ---------------------

// ReadFile parses the LLVM IR assembly file at path.
func ReadFile(path string) (*ssa.Module, error) {
	m, err := asm.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return Convert(moduleName(path), m)
}

// ReadString parses LLVM IR assembly src. The name is used in error messages and as the module name.
func ReadString(name, src string) (*ssa.Module, error) {
	m, err := asm.ParseString(name, src)
	if err != nil {
		return nil, err
	}
	return Convert(moduleName(name), m)
}

// moduleName returns the base name of path without its extension.
func moduleName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Convert converts the parsed llir module src into an SSA module of the given name.
func Convert(name string, src *ir.Module) (res *ssa.Module, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("malformed module: %v", r)
		}
	}()

	rd := &reader{
		m:      ssa.NewModule(name),
		types:  make(map[lltypes.Type]*types.Type, 32),
		values: make(map[value.Value]ssa.Value, 256),
	}
	if len(src.DataLayout) > 0 {
		rd.m.Layout = ssa.ParseDataLayout(src.DataLayout)
	}

	// Globals and function headers first, so that bodies and initialisers may refer to any of them.
	for _, e1 := range src.Globals {
		if err := rd.globalHeader(e1); err != nil {
			return nil, fmt.Errorf("global %s: %w", e1.Ident(), err)
		}
	}
	for _, e1 := range src.Funcs {
		if isDebug(e1) {
			continue
		}
		if err := rd.funcHeader(e1); err != nil {
			return nil, fmt.Errorf("function %s: %w", e1.Ident(), err)
		}
	}
	for _, e1 := range src.Globals {
		if err := rd.globalInit(e1); err != nil {
			return nil, fmt.Errorf("global %s: %w", e1.Ident(), err)
		}
	}
	for _, e1 := range src.Funcs {
		if isDebug(e1) {
			continue
		}
		if err := rd.funcBody(e1); err != nil {
			return nil, fmt.Errorf("function %s: %w", e1.Ident(), err)
		}
	}
	return rd.m, nil
}

// isDebug reports whether f is a debug info intrinsic.
func isDebug(f *ir.Func) bool {
	return strings.HasPrefix(f.Name(), debugPrefix)
}

// localName returns the name of v, or an empty string if v is only numbered.
func localName(v interface{}) string {
	if n, ok := v.(unnamed); ok && !n.IsUnnamed() {
		return n.Name()
	}
	return ""
}

// ---------------------------
// ----- Type conversion -----
// ---------------------------

// typ converts the llir type t.
func (rd *reader) typ(t lltypes.Type) (*types.Type, error) {
	if res, ok := rd.types[t]; ok {
		return res, nil
	}
	var res *types.Type
	switch t := t.(type) {
	case *lltypes.VoidType:
		res = types.Void
	case *lltypes.IntType:
		res = types.NewInt(int(t.BitSize))
	case *lltypes.FloatType:
		switch t.Kind {
		case lltypes.FloatKindFloat:
			res = types.Float
		case lltypes.FloatKindDouble:
			res = types.Double
		default:
			return nil, fmt.Errorf("unsupported floating point type %s", t.String())
		}
	case *lltypes.PointerType:
		elem, err := rd.typ(t.ElemType)
		if err != nil {
			return nil, err
		}
		res = types.NewPointer(elem)
	case *lltypes.ArrayType:
		elem, err := rd.typ(t.ElemType)
		if err != nil {
			return nil, err
		}
		res = types.NewArray(int(t.Len), elem)
	case *lltypes.StructType:
		// Named structs may refer to themselves through pointers, so the struct is cached before its fields.
		res = types.NewStruct(t.Name(), t.Packed)
		rd.types[t] = res
		fields := make([]*types.Type, len(t.Fields))
		for i1, e1 := range t.Fields {
			f, err := rd.typ(e1)
			if err != nil {
				delete(rd.types, t)
				return nil, err
			}
			fields[i1] = f
		}
		res.Fields = fields
		return res, nil
	case *lltypes.FuncType:
		ret, err := rd.typ(t.RetType)
		if err != nil {
			return nil, err
		}
		params := make([]*types.Type, len(t.Params))
		for i1, e1 := range t.Params {
			if params[i1], err = rd.typ(e1); err != nil {
				return nil, err
			}
		}
		res = types.NewFunc(ret, t.Variadic, params...)
	case *lltypes.LabelType:
		res = types.Label
	default:
		return nil, fmt.Errorf("unsupported type %s", t.String())
	}
	rd.types[t] = res
	return res, nil
}

// ----------------------------------
// ----- Globals and signatures -----
// ----------------------------------

// globalHeader creates the SSA global of g without its initialiser.
func (rd *reader) globalHeader(g *ir.Global) error {
	content, err := rd.typ(g.ContentType)
	if err != nil {
		return err
	}
	res := rd.m.NewGlobal(g.Name(), content, nil)
	res.SetConstant(g.Immutable)
	res.SetLinkage(linkage(g.Linkage))
	rd.values[g] = res
	return nil
}

// globalInit converts the initialiser of g. Declarations keep a nil initialiser.
func (rd *reader) globalInit(g *ir.Global) error {
	if g.Init == nil {
		return nil
	}
	c, err := rd.initialiser(g.Init)
	if err != nil {
		return err
	}
	rd.values[g].(*ssa.Global).SetInit(c)
	return nil
}

// funcHeader creates the SSA function of f with its parameters.
func (rd *reader) funcHeader(f *ir.Func) error {
	sig, err := rd.typ(f.Sig)
	if err != nil {
		return err
	}
	res := rd.m.NewFunction(f.Name(), sig)
	res.SetLinkage(linkage(f.Linkage))
	if f.CallingConv != enum.CallingConvNone {
		cc, ok := callConvs[f.CallingConv.String()]
		if !ok {
			cc = types.CallConvOther
		}
		res.SetCallConv(cc)
	}
	for i1, e1 := range f.Params {
		res.Params()[i1].SetName(localName(e1))
		rd.values[e1] = res.Params()[i1]
	}
	rd.values[f] = res
	return nil
}

// linkage converts llir linkage. Internal and private symbols are local to the module.
func linkage(l enum.Linkage) types.Linkage {
	switch l {
	case enum.LinkageInternal, enum.LinkagePrivate:
		return types.Internal
	default:
		return types.External
	}
}

// -------------------------------
// ----- Constant conversion -----
// -------------------------------

// initialiser converts a global initialiser. Only data constants are accepted; addresses of other symbols have
// no data representation.
func (rd *reader) initialiser(c constant.Constant) (ssa.Constant, error) {
	t, err := rd.typ(c.Type())
	if err != nil {
		return nil, err
	}
	switch c := c.(type) {
	case *constant.Int:
		return ssa.NewInt(t, intValue(c)), nil
	case *constant.Float:
		return ssa.NewFloat(t, floatValue(c)), nil
	case *constant.Null:
		return ssa.NewNull(t), nil
	case *constant.ZeroInitializer:
		return ssa.NewZero(t), nil
	case *constant.Undef:
		return ssa.NewUndef(t), nil
	case *constant.CharArray:
		elems := make([]ssa.Constant, len(c.X))
		for i1, e1 := range c.X {
			elems[i1] = ssa.NewInt(types.I8, int64(int8(e1)))
		}
		return ssa.NewArray(t, elems...), nil
	case *constant.Array:
		elems := make([]ssa.Constant, len(c.Elems))
		for i1, e1 := range c.Elems {
			if elems[i1], err = rd.initialiser(e1); err != nil {
				return nil, err
			}
		}
		return ssa.NewArray(t, elems...), nil
	case *constant.Struct:
		fields := make([]ssa.Constant, len(c.Fields))
		for i1, e1 := range c.Fields {
			if fields[i1], err = rd.initialiser(e1); err != nil {
				return nil, err
			}
		}
		return ssa.NewStruct(t, fields...), nil
	default:
		return nil, fmt.Errorf("unsupported initialiser %s", c.Ident())
	}
}

// intValue returns the value of integer constant c, sign extended from its width. Booleans are 0 or 1.
func intValue(c *constant.Int) int64 {
	x := new(big.Int).Set(c.X)
	width := uint(c.Typ.BitSize)
	if width == 1 {
		return int64(x.Bit(0))
	}
	if width < 64 {
		mask := new(big.Int).Lsh(big.NewInt(1), width)
		x.Mod(x, mask)
		if x.Bit(int(width)-1) == 1 {
			x.Sub(x, mask)
		}
		return x.Int64()
	}
	if x.IsInt64() {
		return x.Int64()
	}
	return int64(x.Uint64())
}

// floatValue returns the value of floating point constant c.
func floatValue(c *constant.Float) float64 {
	if c.NaN {
		return math.NaN()
	}
	v, _ := c.X.Float64()
	return v
}

// ------------------------
// ----- Instructions -----
// ------------------------

// funcBody converts the basic blocks of f. Declarations have none.
func (rd *reader) funcBody(f *ir.Func) error {
	if len(f.Blocks) == 0 {
		return nil
	}
	dst := rd.values[f].(*ssa.Function)
	rd.blocks = make(map[*ir.Block]*ssa.Block, len(f.Blocks))
	rd.phis = rd.phis[:0]
	for _, e1 := range f.Blocks {
		rd.blocks[e1] = dst.NewBlock(localName(e1))
	}
	for _, e1 := range f.Blocks {
		b := rd.blocks[e1]
		for _, e2 := range e1.Insts {
			if err := rd.inst(b, e2); err != nil {
				return fmt.Errorf("block %s: %w", e1.Ident(), err)
			}
		}
		if err := rd.term(b, e1.Term); err != nil {
			return fmt.Errorf("block %s: %w", e1.Ident(), err)
		}
	}
	for _, e1 := range rd.phis {
		for _, e2 := range e1.src.Incs {
			pred, ok := e2.Pred.(*ir.Block)
			if !ok {
				return fmt.Errorf("phi %s: invalid incoming block %s", e1.src.Ident(), e2.Pred.Ident())
			}
			v, err := rd.operand(nil, e2.X)
			if err != nil {
				return fmt.Errorf("phi %s: %w", e1.src.Ident(), err)
			}
			e1.dst.AddIncoming(v, rd.blocks[pred])
		}
	}
	return nil
}

// operand resolves v as an operand of an instruction in block b. Constant expressions are materialised as
// instructions in b.
func (rd *reader) operand(b *ssa.Block, v value.Value) (ssa.Value, error) {
	if res, ok := rd.values[v]; ok {
		return res, nil
	}
	t, err := rd.typ(v.Type())
	if err != nil {
		return nil, err
	}
	switch v := v.(type) {
	case *constant.Int:
		return ssa.NewInt(t, intValue(v)), nil
	case *constant.Float:
		return ssa.NewFloat(t, floatValue(v)), nil
	case *constant.Null:
		return ssa.NewNull(t), nil
	case *constant.ZeroInitializer:
		return ssa.NewZero(t), nil
	case *constant.Undef:
		return ssa.NewUndef(t), nil
	case *constant.ExprGetElementPtr:
		if b == nil {
			break
		}
		src, err := rd.operand(b, v.Src)
		if err != nil {
			return nil, err
		}
		indices, err := constOperands(rd, b, v.Indices)
		if err != nil {
			return nil, err
		}
		elem, err := rd.typ(v.ElemType)
		if err != nil {
			return nil, err
		}
		return b.NewGetElementPtr(elem, src, indices...), nil
	case *constant.ExprBitCast:
		return rd.constCast(b, types.BitCast, v.From, t)
	case *constant.ExprPtrToInt:
		return rd.constCast(b, types.PtrToInt, v.From, t)
	case *constant.ExprIntToPtr:
		return rd.constCast(b, types.IntToPtr, v.From, t)
	}
	return nil, fmt.Errorf("unsupported operand %s", v.Ident())
}

// constOperands resolves the operands of a constant expression.
func constOperands[C constant.Constant](rd *reader, b *ssa.Block, cs []C) ([]ssa.Value, error) {
	res := make([]ssa.Value, len(cs))
	for i1, e1 := range cs {
		v, err := rd.operand(b, e1)
		if err != nil {
			return nil, err
		}
		res[i1] = v
	}
	return res, nil
}

// constCast materialises a constant cast expression in block b.
func (rd *reader) constCast(b *ssa.Block, op types.Opcode, from constant.Constant, to *types.Type) (ssa.Value, error) {
	if b == nil {
		return nil, fmt.Errorf("constant expression %s outside a basic block", from.Ident())
	}
	v, err := rd.operand(b, from)
	if err != nil {
		return nil, err
	}
	return b.NewCast(op, v, to), nil
}

// operands resolves every value of vs.
func (rd *reader) operands(b *ssa.Block, vs ...value.Value) ([]ssa.Value, error) {
	res := make([]ssa.Value, len(vs))
	for i1, e1 := range vs {
		v, err := rd.operand(b, e1)
		if err != nil {
			return nil, err
		}
		res[i1] = v
	}
	return res, nil
}

// inst converts a non-terminator instruction and appends it to block b.
func (rd *reader) inst(b *ssa.Block, inst ir.Instruction) error {
	var res *ssa.Instruction
	var err error
	switch inst := inst.(type) {
	case *ir.InstAlloca:
		res, err = rd.alloca(b, inst)
	case *ir.InstLoad:
		res, err = rd.load(b, inst)
	case *ir.InstStore:
		var ops []ssa.Value
		if ops, err = rd.operands(b, inst.Src, inst.Dst); err == nil {
			res = b.NewStore(ops[0], ops[1])
		}
	case *ir.InstGetElementPtr:
		res, err = rd.gep(b, inst)
	case *ir.InstFNeg:
		var x ssa.Value
		if x, err = rd.operand(b, inst.X); err == nil {
			res = b.NewBinOp(types.FSub, ssa.NewFloat(x.Type(), math.Copysign(0, -1)), x)
		}
	case *ir.InstICmp:
		pred, ok := intPreds[inst.Pred]
		if !ok {
			return fmt.Errorf("unsupported predicate in %s", inst.LLString())
		}
		var ops []ssa.Value
		if ops, err = rd.operands(b, inst.X, inst.Y); err == nil {
			res = b.NewICmp(pred, ops[0], ops[1])
		}
	case *ir.InstFCmp:
		pred, ok := floatPreds[inst.Pred]
		if !ok {
			return fmt.Errorf("unsupported predicate in %s", inst.LLString())
		}
		var ops []ssa.Value
		if ops, err = rd.operands(b, inst.X, inst.Y); err == nil {
			res = b.NewFCmp(pred, ops[0], ops[1])
		}
	case *ir.InstSelect:
		var ops []ssa.Value
		if ops, err = rd.operands(b, inst.Cond, inst.ValueTrue, inst.ValueFalse); err == nil {
			res = b.NewSelect(ops[0], ops[1], ops[2])
		}
	case *ir.InstCall:
		res, err = rd.call(b, inst)
	case *ir.InstPhi:
		var t *types.Type
		if t, err = rd.typ(inst.Type()); err == nil {
			res = b.NewPhi(t)
			rd.phis = append(rd.phis, pendingPhi{src: inst, dst: res})
		}
	default:
		if op, x, y, ok := binary(inst); ok {
			var ops []ssa.Value
			if ops, err = rd.operands(b, x, y); err == nil {
				res = b.NewBinOp(op, ops[0], ops[1])
			}
		} else if op, from, to, ok := cast(inst); ok {
			var v ssa.Value
			var t *types.Type
			if v, err = rd.operand(b, from); err == nil {
				if t, err = rd.typ(to); err == nil {
					res = b.NewCast(op, v, t)
				}
			}
		} else {
			return fmt.Errorf("unsupported instruction %s", inst.LLString())
		}
	}
	if err != nil {
		return err
	}
	if res != nil {
		res.SetName(localName(inst))
		if v, ok := inst.(value.Value); ok {
			rd.values[v] = res
		}
	}
	return nil
}

// alloca converts a stack allocation. A missing element count allocates one element.
func (rd *reader) alloca(b *ssa.Block, inst *ir.InstAlloca) (*ssa.Instruction, error) {
	elem, err := rd.typ(inst.ElemType)
	if err != nil {
		return nil, err
	}
	var count ssa.Value
	if inst.NElems != nil {
		if count, err = rd.operand(b, inst.NElems); err != nil {
			return nil, err
		}
	}
	return b.NewAlloca(elem, count), nil
}

// load converts a load.
func (rd *reader) load(b *ssa.Block, inst *ir.InstLoad) (*ssa.Instruction, error) {
	t, err := rd.typ(inst.ElemType)
	if err != nil {
		return nil, err
	}
	src, err := rd.operand(b, inst.Src)
	if err != nil {
		return nil, err
	}
	return b.NewLoad(t, src), nil
}

// gep converts an address computation.
func (rd *reader) gep(b *ssa.Block, inst *ir.InstGetElementPtr) (*ssa.Instruction, error) {
	elem, err := rd.typ(inst.ElemType)
	if err != nil {
		return nil, err
	}
	src, err := rd.operand(b, inst.Src)
	if err != nil {
		return nil, err
	}
	indices, err := rd.operands(b, inst.Indices...)
	if err != nil {
		return nil, err
	}
	return b.NewGetElementPtr(elem, src, indices...), nil
}

// call converts a call. Debug info intrinsics are dropped.
func (rd *reader) call(b *ssa.Block, inst *ir.InstCall) (*ssa.Instruction, error) {
	if f, ok := inst.Callee.(*ir.Func); ok && isDebug(f) {
		return nil, nil
	}
	pt, ok := inst.Callee.Type().(*lltypes.PointerType)
	if !ok {
		return nil, fmt.Errorf("callee %s is not a function pointer", inst.Callee.Ident())
	}
	sig, err := rd.typ(pt.ElemType)
	if err != nil {
		return nil, err
	}
	if sig.Kind != types.FuncKind {
		return nil, fmt.Errorf("callee %s is not a function pointer", inst.Callee.Ident())
	}
	callee, err := rd.operand(b, inst.Callee)
	if err != nil {
		return nil, err
	}
	args, err := rd.operands(b, inst.Args...)
	if err != nil {
		return nil, err
	}
	return b.NewCall(sig, callee, args...), nil
}

// binary returns the SSA opcode and operands of binary instruction inst.
func binary(inst ir.Instruction) (types.Opcode, value.Value, value.Value, bool) {
	switch inst := inst.(type) {
	case *ir.InstAdd:
		return types.Add, inst.X, inst.Y, true
	case *ir.InstFAdd:
		return types.FAdd, inst.X, inst.Y, true
	case *ir.InstSub:
		return types.Sub, inst.X, inst.Y, true
	case *ir.InstFSub:
		return types.FSub, inst.X, inst.Y, true
	case *ir.InstMul:
		return types.Mul, inst.X, inst.Y, true
	case *ir.InstFMul:
		return types.FMul, inst.X, inst.Y, true
	case *ir.InstUDiv:
		return types.UDiv, inst.X, inst.Y, true
	case *ir.InstSDiv:
		return types.SDiv, inst.X, inst.Y, true
	case *ir.InstFDiv:
		return types.FDiv, inst.X, inst.Y, true
	case *ir.InstURem:
		return types.URem, inst.X, inst.Y, true
	case *ir.InstSRem:
		return types.SRem, inst.X, inst.Y, true
	case *ir.InstFRem:
		return types.FRem, inst.X, inst.Y, true
	case *ir.InstShl:
		return types.Shl, inst.X, inst.Y, true
	case *ir.InstLShr:
		return types.LShr, inst.X, inst.Y, true
	case *ir.InstAShr:
		return types.AShr, inst.X, inst.Y, true
	case *ir.InstAnd:
		return types.And, inst.X, inst.Y, true
	case *ir.InstOr:
		return types.Or, inst.X, inst.Y, true
	case *ir.InstXor:
		return types.Xor, inst.X, inst.Y, true
	default:
		return 0, nil, nil, false
	}
}

// cast returns the SSA opcode, operand and destination type of conversion instruction inst.
func cast(inst ir.Instruction) (types.Opcode, value.Value, lltypes.Type, bool) {
	switch inst := inst.(type) {
	case *ir.InstTrunc:
		return types.Trunc, inst.From, inst.To, true
	case *ir.InstZExt:
		return types.ZExt, inst.From, inst.To, true
	case *ir.InstSExt:
		return types.SExt, inst.From, inst.To, true
	case *ir.InstFPTrunc:
		return types.FPTrunc, inst.From, inst.To, true
	case *ir.InstFPExt:
		return types.FPExt, inst.From, inst.To, true
	case *ir.InstFPToUI:
		return types.FPToUI, inst.From, inst.To, true
	case *ir.InstFPToSI:
		return types.FPToSI, inst.From, inst.To, true
	case *ir.InstUIToFP:
		return types.UIToFP, inst.From, inst.To, true
	case *ir.InstSIToFP:
		return types.SIToFP, inst.From, inst.To, true
	case *ir.InstPtrToInt:
		return types.PtrToInt, inst.From, inst.To, true
	case *ir.InstIntToPtr:
		return types.IntToPtr, inst.From, inst.To, true
	case *ir.InstBitCast:
		return types.BitCast, inst.From, inst.To, true
	default:
		return 0, nil, nil, false
	}
}

// term converts the terminator of a block and appends it to block b.
func (rd *reader) term(b *ssa.Block, term ir.Terminator) error {
	switch term := term.(type) {
	case *ir.TermRet:
		if term.X == nil {
			b.NewRet(nil)
			return nil
		}
		v, err := rd.operand(b, term.X)
		if err != nil {
			return err
		}
		b.NewRet(v)
	case *ir.TermBr:
		b.NewBr(rd.blocks[term.Succs()[0]])
	case *ir.TermCondBr:
		cond, err := rd.operand(b, term.Cond)
		if err != nil {
			return err
		}
		succs := term.Succs()
		b.NewCondBr(cond, rd.blocks[succs[0]], rd.blocks[succs[1]])
	case *ir.TermUnreachable:
		b.NewUnreachable()
	default:
		return fmt.Errorf("unsupported terminator %s", term.LLString())
	}
	return nil
}
