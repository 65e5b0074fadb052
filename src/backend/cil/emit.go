// Package cil lowers SSA IR modules to CIL assembly text accepted by ilasm. Functions defined in the module
// become static methods of the module's global class, external functions become pinvokeimpl stubs of a native
// library and globals become static fields bound to initialised data.
package cil

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"cilc/src/ir/ssa"
	"cilc/src/ir/ssa/types"
	"cilc/src/util"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Emitter writes one module at a time as CIL assembly. Output is buffered and only written once the whole module
// has been lowered without error.
type Emitter struct {
	opt      util.Options
	log      *log.Logger
	mapper   *Mapper                  // Source to target type mapping, shared by every function of a module.
	layout   ssa.DataLayout           // Sizes of source types.
	bindings map[*ssa.Global]*binding // Static fields of globals, created on first use.
	wr       util.Writer              // Buffered output.
}

// binding is the static field a global is stored in.
type binding struct {
	typ *Type // Type of the field.
	vt  *Type // Synthesised value type of aggregate globals. nil for scalars.
}

// ---------------------
// ----- Constants -----
// ---------------------

const (
	dataSuffix  = "$data" // Suffix of the data label of an initialised global.
	typeSuffix  = "$type" // Suffix of the value type synthesised for an aggregate global.
	entryCallee = "main"  // Function called by the entry point.
)

// -------------------
// ----- Globals -----
// -------------------

// pinvokeCC maps calling conventions of external functions to pinvokeimpl conventions.
var pinvokeCC = map[types.CallConv]string{
	types.CallConvC:           "cdecl",
	types.CallConvFast:        "fastcall",
	types.CallConvX86Fastcall: "fastcall",
	types.CallConvX86Stdcall:  "stdcall",
	types.CallConvX86Thiscall: "thiscall",
}

// ---------------------
// ----- Functions -----
// ---------------------

// GenCIL writes module m as CIL assembly to out.
func GenCIL(opt util.Options, logger *log.Logger, m *ssa.Module, out io.Writer) error {
	return NewEmitter(opt, logger).Emit(m, out)
}

// NewEmitter returns an Emitter configured by opt. A nil logger discards log messages.
func NewEmitter(opt util.Options, logger *log.Logger) *Emitter {
	if logger == nil {
		logger = util.Discard()
	}
	return &Emitter{opt: opt, log: logger}
}

// Emit writes module m to out. Nothing is written if m cannot be lowered. The calling conventions of function
// definitions and the names of anonymous blocks, arguments and locals are set as a side effect.
func (e *Emitter) Emit(m *ssa.Module, out io.Writer) error {
	e.reset(m)
	main := m.Function(entryCallee)
	if main == nil || main.IsDeclaration() {
		return &MissingEntryPointError{Name: entryCallee}
	}
	if err := assignCallingConventions(m); err != nil {
		return err
	}

	e.prologue()
	for _, e1 := range m.Globals() {
		if err := e.global(e1); err != nil {
			return fmt.Errorf("global %s: %w", e1.Name(), err)
		}
	}
	defs := 0
	for _, e1 := range m.Functions() {
		if !e1.IsDeclaration() {
			defs++
			continue
		}
		if err := e.declaration(e1); err != nil {
			return fmt.Errorf("function %s: %w", e1.Name(), err)
		}
	}
	for _, e1 := range m.Functions() {
		if e1.IsDeclaration() {
			continue
		}
		if err := e.definition(e1); err != nil {
			return fmt.Errorf("function %s: %w", e1.Name(), err)
		}
	}
	if err := e.entryPoint(main); err != nil {
		return fmt.Errorf("entry point: %w", err)
	}

	if e.opt.Verbose {
		e.log.Info("module lowered", "module", m.Name, "globals", len(m.Globals()),
			"declarations", len(m.Functions())-defs, "definitions", defs, "bytes", e.wr.Len())
	}
	return e.wr.Flush(out)
}

// reset clears all per-module state.
func (e *Emitter) reset(m *ssa.Module) {
	e.mapper = NewMapper()
	e.layout = m.Layout
	if e.opt.PointerSize > 0 {
		e.layout.PointerSize = e.opt.PointerSize
	}
	e.bindings = make(map[*ssa.Global]*binding, len(m.Globals()))
	e.wr = util.Writer{}
}

// assignCallingConventions turns every function definition using the C calling convention into a managed static
// method. Definitions using any other convention cannot be expressed.
func assignCallingConventions(m *ssa.Module) error {
	for _, e1 := range m.Functions() {
		if e1.IsDeclaration() {
			continue
		}
		switch e1.CallConv() {
		case types.CallConvC:
			e1.SetCallConv(types.CallConvStatic)
		case types.CallConvStatic:
		default:
			return &UnsupportedCallingConventionError{Function: e1.Name(), CallConv: e1.CallConv().String()}
		}
	}
	return nil
}

// prologue writes the assembly references and the module header. The module version id is derived from the
// assembly name, so equal inputs give equal outputs.
func (e *Emitter) prologue() {
	asm := orDefault(e.opt.Assembly, util.DefaultAssembly)
	ext := orDefault(e.opt.ExternAssembly, util.DefaultExternAssembly)
	mvid := uuid.NewSHA1(uuid.NameSpaceURL, []byte("cil:"+asm+".exe"))
	e.wr.Write(".assembly extern %s { }\n", quote(ext))
	e.wr.Write(".assembly %s { }\n", quote(asm))
	e.wr.Write(".module %s.exe\n", quote(asm))
	e.wr.Write("// MVID: {%s}\n\n", strings.ToUpper(mvid.String()))
}

// orDefault returns s, or def if s is empty.
func orDefault(s, def string) string {
	if len(s) == 0 {
		return def
	}
	return s
}

// ----------------------------
// ----- Global variables -----
// ----------------------------

// bind returns the static field of global g, creating it on first use. Aggregates are stored in a synthesised
// value type of the aggregate's size.
func (e *Emitter) bind(g *ssa.Global) (*binding, error) {
	if b, ok := e.bindings[g]; ok {
		return b, nil
	}
	b := &binding{}
	if ct := g.ContentType(); ct.IsAggregate() {
		b.vt = NewValueType(g.Name()+typeSuffix, e.layout.SizeOf(ct))
		b.typ = b.vt
	} else {
		t, err := e.mapper.Map(ct)
		if err != nil {
			return nil, err
		}
		b.typ = t
	}
	e.bindings[g] = b
	return b, nil
}

// global writes the field of global g and, for definitions, its initial data.
func (e *Emitter) global(g *ssa.Global) error {
	b, err := e.bind(g)
	if err != nil {
		return err
	}
	if b.vt != nil {
		e.wr.Write(".class public explicit sealed value %s { .size %d }\n", quote(b.vt.Name), b.vt.Size)
	}
	if g.IsDeclaration() {
		e.wr.Write(".field static public %s %s\n\n", b.typ.String(), quote(g.Name()))
		return nil
	}

	items, err := e.dataItems(g.ContentType(), g.Init())
	if err != nil {
		return err
	}
	data := quote(g.Name() + dataSuffix)
	e.wr.Write(".field static public %s %s at %s\n", b.typ.String(), quote(g.Name()), data)
	e.wr.Write(".data %s =%s\n", data, dataBody(items, b.vt != nil))
	return nil
}

// -------------------
// ----- Methods -----
// -------------------

// signature returns the mapped return and parameter types of function f.
func (e *Emitter) signature(f *ssa.Function) (*Type, []*Type, error) {
	sig := f.Signature()
	ret, err := e.mapper.Map(sig.Ret)
	if err != nil {
		return nil, nil, err
	}
	params := make([]*Type, len(sig.Params))
	for i1, e1 := range sig.Params {
		if params[i1], err = e.mapper.Map(e1); err != nil {
			return nil, nil, err
		}
	}
	return ret, params, nil
}

// methodRef returns the reference to function f used by call and ldftn.
func (e *Emitter) methodRef(f *ssa.Function) (MethodRef, error) {
	ret, params, err := e.signature(f)
	if err != nil {
		return MethodRef{}, err
	}
	ref := MethodRef{Ret: ret, Name: f.Name(), Params: params}
	if f.Signature().Variadic {
		ref.CC.Kind = CallVararg
	}
	return ref, nil
}

// callSite returns the method signature of a call through signature sig with the given arguments. Arguments past
// the fixed parameters of variadic signatures are listed as extra argument types.
func (e *Emitter) callSite(sig *types.Type, args []ssa.Value) (MethodRef, error) {
	ret, err := e.mapper.Map(sig.Ret)
	if err != nil {
		return MethodRef{}, err
	}
	ref := MethodRef{Ret: ret, Params: make([]*Type, len(sig.Params))}
	for i1, e1 := range sig.Params {
		if ref.Params[i1], err = e.mapper.Map(e1); err != nil {
			return MethodRef{}, err
		}
	}
	if sig.Variadic {
		ref.CC.Kind = CallVararg
	}
	if len(args) > len(sig.Params) {
		for _, e1 := range args[len(sig.Params):] {
			t, err := e.mapper.Map(e1.Type())
			if err != nil {
				return MethodRef{}, err
			}
			ref.Extra = append(ref.Extra, t)
		}
	}
	return ref, nil
}

// visibility returns the method access keyword of a linkage.
func visibility(l types.Linkage) string {
	if l == types.Internal {
		return "private"
	}
	return "public"
}

// varargKeyword returns the calling convention keyword of variadic functions.
func varargKeyword(variadic bool) string {
	if variadic {
		return "vararg "
	}
	return ""
}

// declaration writes the pinvokeimpl stub of external function f. Intrinsics are skipped.
func (e *Emitter) declaration(f *ssa.Function) error {
	if f.IsIntrinsic() || f.CallConv() == types.CallConvStatic {
		return nil
	}
	cc, ok := pinvokeCC[f.CallConv()]
	if !ok {
		return &UnsupportedCallingConventionError{Function: f.Name(), CallConv: f.CallConv().String()}
	}
	ret, params, err := e.signature(f)
	if err != nil {
		return err
	}
	e.wr.Write(".method static %s pinvokeimpl(\"%s\" %s) %s%s %s(%s)\n{ }\n\n",
		visibility(f.Linkage()), orDefault(e.opt.PInvokeLib, util.DefaultPInvokeLib), cc,
		varargKeyword(f.Signature().Variadic), ret.String(), quote(f.Name()), typeList(params))
	return nil
}

// definition lowers function f and writes its method.
func (e *Emitter) definition(f *ssa.Function) error {
	locals := Classify(f)
	AssignNames(f, locals)
	ret, params, err := e.signature(f)
	if err != nil {
		return err
	}
	lo := &lowerer{e: e, f: f, locals: locals}
	body, err := lo.lowerBlocks()
	if err != nil {
		return err
	}
	shortened := 0
	if e.opt.ShortBranches {
		shortened = relax(body)
	}

	args := make([]string, len(params))
	for i1, e1 := range f.Params() {
		args[i1] = params[i1].String() + " " + quote(e1.Name())
	}
	e.wr.Write(".method static %s %s%s %s(%s)\n{\n", visibility(f.Linkage()),
		varargKeyword(f.Signature().Variadic), ret.String(), quote(f.Name()), strings.Join(args, ", "))
	stack := maxStack(body)
	e.wr.Directive(".maxstack %d", stack)
	if err := e.localsTable(locals); err != nil {
		return err
	}
	n := e.writeBody(body)
	e.wr.Write("}\n\n")

	e.log.Debug("function lowered", "name", f.Name(), "blocks", len(body),
		"register", len(locals.Category(RegLocal)), "indirect", len(locals.Category(IndLocal)),
		"temporary", len(locals.Category(TmpLocal)), "instructions", n, "maxstack", stack,
		"short_branches", shortened)
	return nil
}

// localType returns the type of the local slot of inst in category c. Register-locals hold the allocated value,
// indirect-locals the address of the allocation and temporaries the instruction result.
func (e *Emitter) localType(c Category, inst *ssa.Instruction) (*Type, error) {
	if c == RegLocal {
		return e.mapper.Map(inst.ElemType())
	}
	return e.mapper.Map(inst.Type())
}

// localsTable writes one .locals directive per non-empty category.
func (e *Emitter) localsTable(l *Locals) error {
	for c := Category(0); c < numCategories; c++ {
		insts := l.Category(c)
		for i1, e1 := range insts {
			t, err := e.localType(c, e1)
			if err != nil {
				return fmt.Errorf("%s local %s: %w", c.String(), e1.Name(), err)
			}
			prefix, suffix := "           ", ",\n"
			if i1 == 0 {
				prefix = "  .locals ("
			}
			if i1 == len(insts)-1 {
				suffix = ")\n"
			}
			e.wr.Write("%s[%d] %s %s%s", prefix, l.Frame(Slot{Cat: c, Index: i1}), t.String(), quote(e1.Name()), suffix)
		}
	}
	return nil
}

// writeBody writes the labels and instructions of body and returns the number of instructions written.
func (e *Emitter) writeBody(body []blockCode) int {
	n := 0
	for _, e1 := range body {
		if len(e1.label) > 0 {
			e.wr.Label(quote(e1.label))
		}
		for _, e2 := range e1.insts {
			if operand := e2.Operand(); len(operand) > 0 {
				e.wr.Ins1(e2.Mnemonic(), operand)
			} else {
				e.wr.Ins0(e2.Mnemonic())
			}
			n++
		}
	}
	return n
}

// entryPoint writes the method the runtime starts in. It calls main with zero arguments and returns main's
// result as an int32, or 0 if main returns nothing.
func (e *Emitter) entryPoint(main *ssa.Function) error {
	ref, err := e.methodRef(main)
	if err != nil {
		return err
	}
	insts := make([]Inst, 0, len(ref.Params)+4)
	for _, e1 := range ref.Params {
		zero, err := zeroOf(e1)
		if err != nil {
			return err
		}
		insts = append(insts, zero...)
	}
	insts = append(insts, Call(ref))
	switch ref.Ret.ID {
	case Void:
		insts = append(insts, LoadInt32(0))
	case Int32:
	default:
		conv, err := Conv(Int32Type, false, false)
		if err != nil {
			return err
		}
		insts = append(insts, conv)
	}
	insts = append(insts, Plain(OpRet))
	body := []blockCode{{insts: insts}}

	e.wr.Write(".method static public int32 %s()\n{\n", quote(orDefault(e.opt.EntryPoint, util.DefaultEntryPoint)))
	e.wr.Directive(".entrypoint")
	e.wr.Directive(".maxstack %d", maxStack(body))
	e.writeBody(body)
	e.wr.Write("}\n")
	return nil
}
