package cil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cilc/src/ir/ssa"
	"cilc/src/ir/ssa/types"
)

// loopFunction builds a function whose block "head" allocates a slot and branches back to itself through "body".
func loopFunction() (*ssa.Function, *ssa.Instruction, *ssa.Instruction) {
	m := ssa.NewModule("loop")
	f := m.NewFunction("spin", types.NewFunc(types.Void, false, types.I1))
	entry := f.NewBlock("entry")
	head := f.NewBlock("head")
	body := f.NewBlock("body")
	exit := f.NewBlock("exit")

	outer := entry.NewAlloca(types.I32, nil)
	entry.NewStore(ssa.NewInt(types.I32, 0), outer)
	entry.NewBr(head)
	inner := head.NewAlloca(types.I32, nil)
	head.NewStore(ssa.NewInt(types.I32, 1), inner)
	head.NewCondBr(f.Params()[0], body, exit)
	body.NewBr(head)
	exit.NewRet(nil)
	return f, outer, inner
}

func TestIsReachable(t *testing.T) {
	f, _, _ := loopFunction()
	blocks := f.Blocks()
	assert.False(t, IsReachable(blocks[0]), "entry")
	assert.True(t, IsReachable(blocks[1]), "head")
	assert.True(t, IsReachable(blocks[2]), "body")
	assert.False(t, IsReachable(blocks[3]), "exit")
}

func TestIsReachableSelfLoop(t *testing.T) {
	m := ssa.NewModule("self")
	f := m.NewFunction("f", types.NewFunc(types.Void, false))
	b := f.NewBlock("b")
	b.NewBr(b)
	assert.True(t, IsReachable(b))
}

func TestClassifyLoopAllocaIsIndirect(t *testing.T) {
	f, outer, inner := loopFunction()
	l := Classify(f)

	s, ok := l.Slot(outer)
	require.True(t, ok)
	assert.Equal(t, Slot{Cat: RegLocal, Index: 0}, s)
	s, ok = l.Slot(inner)
	require.True(t, ok)
	assert.Equal(t, Slot{Cat: IndLocal, Index: 0}, s)
	assert.Equal(t, 2, l.Len())
}

func TestClassifyStraightLine(t *testing.T) {
	m := ssa.NewModule("line")
	f := m.NewFunction("f", types.NewFunc(types.I32, false))
	b := f.NewBlock("")
	x := b.NewAlloca(types.I32, nil)
	unused := b.NewAlloca(types.I64, nil)
	arr := b.NewAlloca(types.NewArray(4, types.I8), nil)
	many := b.NewAlloca(types.I32, ssa.NewInt(types.I32, 3))
	b.NewStore(ssa.NewInt(types.I32, 3), x)
	v := b.NewLoad(types.I32, x)
	w := b.NewBinOp(types.Add, v, v)
	b.NewStore(ssa.NewInt(types.I8, 0), b.NewGetElementPtr(arr.ElemType(), arr, ssa.NewInt(types.I32, 0), ssa.NewInt(types.I32, 0)))
	b.NewStore(w, many)
	b.NewRet(w)

	l := Classify(f)
	tests := []struct {
		inst *ssa.Instruction
		want Slot
	}{
		{x, Slot{Cat: RegLocal, Index: 0}},
		{arr, Slot{Cat: IndLocal, Index: 0}},
		{many, Slot{Cat: IndLocal, Index: 1}},
		{v, Slot{Cat: TmpLocal, Index: 0}},
		{w, Slot{Cat: TmpLocal, Index: 1}},
	}
	for _, e1 := range tests {
		s, ok := l.Slot(e1.inst)
		require.True(t, ok, e1.inst.String())
		assert.Equal(t, e1.want, s, e1.inst.String())
	}
	_, ok := l.Slot(unused)
	assert.False(t, ok, "unused alloca has no slot")

	// The getelementptr is the third temporary.
	assert.Len(t, l.Category(TmpLocal), 3)
	assert.Equal(t, 6, l.Len())
	assert.Equal(t, 0, l.Frame(Slot{Cat: RegLocal, Index: 0}))
	assert.Equal(t, 1, l.Frame(Slot{Cat: IndLocal, Index: 0}))
	assert.Equal(t, 3, l.Frame(Slot{Cat: TmpLocal, Index: 0}))
	assert.Equal(t, 5, l.Frame(Slot{Cat: TmpLocal, Index: 2}))
}

func TestClassifyIsDeterministic(t *testing.T) {
	m := goldenModule()
	f := m.Function("sum")
	a, b := Classify(f), Classify(f)
	for c := Category(0); c < numCategories; c++ {
		assert.Equal(t, a.Category(c), b.Category(c), c.String())
	}
}

func TestClassifyIndicesAreDense(t *testing.T) {
	l := Classify(goldenModule().Function("sum"))
	for c := Category(0); c < numCategories; c++ {
		for i1, e1 := range l.Category(c) {
			s, ok := l.Slot(e1)
			require.True(t, ok)
			assert.Equal(t, Slot{Cat: c, Index: i1}, s)
		}
	}
	assert.Len(t, l.Category(RegLocal), 2)
	assert.Empty(t, l.Category(IndLocal))
	assert.Len(t, l.Category(TmpLocal), 6)
}

func TestAssignNames(t *testing.T) {
	m := ssa.NewModule("names")
	f := m.NewFunction("f", types.NewFunc(types.I32, false, types.I32, types.I32))
	f.Params()[1].SetName("keep")
	b0 := f.NewBlock("")
	b1 := f.NewBlock("named")
	b2 := f.NewBlock("")
	x := b0.NewAlloca(types.I32, nil)
	b0.NewStore(f.Params()[0], x)
	v := b0.NewLoad(types.I32, x)
	w := b0.NewBinOp(types.Add, v, f.Params()[1])
	w.SetName("w")
	u := b0.NewBinOp(types.Mul, w, w)
	b0.NewBr(b1)
	b1.NewBr(b2)
	b2.NewRet(u)

	l := Classify(f)
	AssignNames(f, l)
	assert.Equal(t, "BB_0", b0.Name())
	assert.Equal(t, "named", b1.Name())
	assert.Equal(t, "BB_1", b2.Name())
	assert.Equal(t, "$ARG_0", f.Params()[0].Name())
	assert.Equal(t, "keep", f.Params()[1].Name())
	assert.Equal(t, "$REG_0", x.Name())
	assert.Equal(t, "$TMP_0", v.Name())
	assert.Equal(t, "w", w.Name())
	assert.Equal(t, "$TMP_2", u.Name())

	// Naming again changes nothing.
	before := f.String()
	AssignNames(f, Classify(f))
	assert.Equal(t, before, f.String())
}

func TestCategoryString(t *testing.T) {
	assert.Equal(t, "register", RegLocal.String())
	assert.Equal(t, "indirect", IndLocal.String())
	assert.Equal(t, "temporary", TmpLocal.String())
}
