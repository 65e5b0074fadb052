package cil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"cilc/src/ir/ssa"
	"cilc/src/ir/ssa/types"
	"cilc/src/util"
)

// lowerFunction classifies, names and lowers function f with default options.
func lowerFunction(t *testing.T, f *ssa.Function) []blockCode {
	t.Helper()
	body, err := tryLower(f)
	require.NoError(t, err)
	return body
}

// tryLower is lowerFunction without the test assertion.
func tryLower(f *ssa.Function) ([]blockCode, error) {
	e := NewEmitter(util.DefaultOptions(), nil)
	e.reset(f.Module())
	locals := Classify(f)
	AssignNames(f, locals)
	lo := &lowerer{e: e, f: f, locals: locals}
	return lo.lowerBlocks()
}

// text renders instructions one per element.
func text(insts []Inst) []string {
	res := make([]string, len(insts))
	for i1, e1 := range insts {
		res[i1] = e1.String()
	}
	return res
}

// roundTrip builds the function
//
//	entry: %sum = add %a, %b; br %sum, then, else
//	then:  ret 1
//	else:  ret 0
func roundTrip() (*ssa.Module, *ssa.Function) {
	m := ssa.NewModule("roundtrip")
	f := m.NewFunction("pick", types.NewFunc(types.I32, false, types.I32, types.I32))
	f.Params()[0].SetName("a")
	f.Params()[1].SetName("b")
	entry := f.NewBlock("entry")
	thn := f.NewBlock("then")
	els := f.NewBlock("else")
	sum := entry.NewBinOp(types.Add, f.Params()[0], f.Params()[1])
	entry.NewCondBr(sum, thn, els)
	thn.NewRet(ssa.NewInt(types.I32, 1))
	els.NewRet(ssa.NewInt(types.I32, 0))
	return m, f
}

// goldenModule builds a module exercising globals of every shape, an external variadic function, a loop over
// register-locals and address arithmetic into aggregate globals.
func goldenModule() *ssa.Module {
	m := ssa.NewModule("golden")
	i8p := types.NewPointer(types.I8)

	counter := m.NewGlobal("counter", types.I32, ssa.NewInt(types.I32, 7))
	tableT := types.NewArray(3, types.I32)
	table := m.NewGlobal("table", tableT, ssa.NewArray(tableT,
		ssa.NewInt(types.I32, 1), ssa.NewInt(types.I32, 2), ssa.NewInt(types.I32, 3)))
	pairT := types.NewStruct("", false, types.I8, types.I32)
	m.NewGlobal("pair", pairT, ssa.NewStruct(pairT, ssa.NewInt(types.I8, 1), ssa.NewInt(types.I32, 2)))
	fmtT := types.NewArray(4, types.I8)
	fmtG := m.NewGlobal("fmt", fmtT, ssa.NewArray(fmtT,
		ssa.NewInt(types.I8, '%'), ssa.NewInt(types.I8, 'd'), ssa.NewInt(types.I8, '\n'), ssa.NewInt(types.I8, 0)))
	m.NewGlobal("errno_val", types.I32, nil)

	printfSig := types.NewFunc(types.I32, true, i8p)
	printf := m.NewFunction("printf", printfSig)

	// sum(n) adds 0 to n-1.
	sumSig := types.NewFunc(types.I32, false, types.I32)
	sum := m.NewFunction("sum", sumSig)
	n := sum.Params()[0]
	n.SetName("n")
	entry := sum.NewBlock("entry")
	loop := sum.NewBlock("loop")
	body := sum.NewBlock("body")
	exit := sum.NewBlock("exit")
	acc := entry.NewAlloca(types.I32, nil)
	acc.SetName("acc")
	i := entry.NewAlloca(types.I32, nil)
	i.SetName("i")
	entry.NewStore(ssa.NewInt(types.I32, 0), acc)
	entry.NewStore(ssa.NewInt(types.I32, 0), i)
	entry.NewBr(loop)
	iv := loop.NewLoad(types.I32, i)
	iv.SetName("iv")
	c := loop.NewICmp(types.IntSLT, iv, n)
	c.SetName("c")
	loop.NewCondBr(c, body, exit)
	av := body.NewLoad(types.I32, acc)
	av.SetName("av")
	x := body.NewBinOp(types.Add, av, iv)
	x.SetName("x")
	body.NewStore(x, acc)
	inc := body.NewBinOp(types.Add, iv, ssa.NewInt(types.I32, 1))
	inc.SetName("inc")
	body.NewStore(inc, i)
	body.NewBr(loop)
	r := exit.NewLoad(types.I32, acc)
	r.SetName("r")
	exit.NewRet(r)

	main := m.NewFunction("main", types.NewFunc(types.I32, false))
	mb := main.NewBlock("entry")
	p := mb.NewGetElementPtr(tableT, table, ssa.NewInt(types.I32, 0), ssa.NewInt(types.I32, 1))
	p.SetName("p")
	v := mb.NewLoad(types.I32, p)
	v.SetName("v")
	s := mb.NewCall(sumSig, sum, v)
	s.SetName("s")
	fp := mb.NewGetElementPtr(fmtT, fmtG, ssa.NewInt(types.I32, 0), ssa.NewInt(types.I32, 0))
	fp.SetName("f")
	mb.NewCall(printfSig, printf, fp, s)
	mb.NewStore(s, counter)
	mb.NewRet(ssa.NewInt(types.I32, 0))
	return m
}

// mainReturning adds "define ret @main() { ret }" to m, returning zero if ret is not void.
func mainReturning(m *ssa.Module, ret *types.Type, params ...*types.Type) *ssa.Function {
	f := m.NewFunction("main", types.NewFunc(ret, false, params...))
	b := f.NewBlock("")
	if ret.IsVoid() {
		b.NewRet(nil)
	} else if ret.IsFloating() {
		b.NewRet(ssa.NewFloat(ret, 0))
	} else {
		b.NewRet(ssa.NewInt(ret, 0))
	}
	return f
}
