package ssa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cilc/src/ir/ssa/types"
)

func TestDataLayoutSizeOf(t *testing.T) {
	dl := DefaultLayout()
	tests := []struct {
		name string
		typ  *types.Type
		size int
	}{
		{"i1", types.I1, 1},
		{"i8", types.I8, 1},
		{"i16", types.I16, 2},
		{"i24", types.NewInt(24), 4},
		{"i32", types.I32, 4},
		{"i64", types.I64, 8},
		{"float", types.Float, 4},
		{"double", types.Double, 8},
		{"pointer", types.NewPointer(types.I8), 8},
		{"array", types.NewArray(10, types.I32), 40},
		{"nested array", types.NewArray(2, types.NewArray(3, types.I16)), 12},
		{"struct", types.NewStruct("", false, types.I8, types.I32, types.I8), 12},
		{"packed struct", types.NewStruct("", true, types.I8, types.I32, types.I8), 6},
	}
	for _, e1 := range tests {
		t.Run(e1.name, func(t *testing.T) {
			assert.Equal(t, e1.size, dl.SizeOf(e1.typ))
		})
	}
}

func TestNewIntNormalises(t *testing.T) {
	tests := []struct {
		typ  *types.Type
		v    int64
		want int64
	}{
		{types.I1, 1, 1},
		{types.I1, -1, 1},
		{types.I1, 2, 0},
		{types.I8, 200, -56},
		{types.I8, -1, -1},
		{types.I16, 65535, -1},
		{types.I32, 1 << 31, -1 << 31},
		{types.I64, -1, -1},
	}
	for _, e1 := range tests {
		assert.Equal(t, e1.want, NewInt(e1.typ, e1.v).V, "%s %d", e1.typ.String(), e1.v)
	}
}

func TestDataLayoutFieldOffset(t *testing.T) {
	dl := DefaultLayout()
	st := types.NewStruct("pair", false, types.I8, types.I64, types.I16)
	assert.Equal(t, 0, dl.FieldOffset(st, 0))
	assert.Equal(t, 8, dl.FieldOffset(st, 1))
	assert.Equal(t, 16, dl.FieldOffset(st, 2))
	assert.Equal(t, 24, dl.SizeOf(st))
}

func TestParseDataLayout(t *testing.T) {
	assert.Equal(t, 4, ParseDataLayout("e-m:e-p:32:32-i64:64-n32-S128").PointerSize)
	assert.Equal(t, 8, ParseDataLayout("e-m:e-p0:64:64-i64:64").PointerSize)
	assert.Equal(t, 8, ParseDataLayout("").PointerSize)
	assert.Equal(t, 8, ParseDataLayout("e-p:bogus").PointerSize)
}

func TestBuilderUsesAndCFG(t *testing.T) {
	m := NewModule("test")
	f := m.NewFunction("f", types.NewFunc(types.I32, false, types.I32, types.I32))
	entry := f.NewBlock("entry")
	thn := f.NewBlock("then")
	els := f.NewBlock("else")

	a, b := f.Params()[0], f.Params()[1]
	sum := entry.NewBinOp(types.Add, a, b)
	cmp := entry.NewICmp(types.IntSGT, sum, NewInt(types.I32, 0))
	entry.NewCondBr(cmp, thn, els)
	thn.NewRet(sum)
	els.NewRet(NewInt(types.I32, 0))

	assert.Equal(t, 2, sum.NumUses())
	assert.Equal(t, 1, cmp.NumUses())
	assert.Equal(t, []*Block{thn, els}, entry.Successors())
	assert.Equal(t, []*Block{entry}, thn.Predecessors())
	assert.Empty(t, entry.Predecessors())
	assert.False(t, f.IsDeclaration())
	assert.Same(t, f, m.Function("f"))
	assert.Len(t, f.Instructions(), 5)
}

func TestBuilderRejectsInstructionAfterTerminator(t *testing.T) {
	m := NewModule("test")
	f := m.NewFunction("f", types.NewFunc(types.Void, false))
	b := f.NewBlock("entry")
	b.NewRet(nil)
	require.Panics(t, func() {
		b.NewRet(nil)
	})
}

func TestGetElementPtrResultType(t *testing.T) {
	m := NewModule("test")
	st := types.NewStruct("s", false, types.I32, types.NewArray(4, types.I16))
	g := m.NewGlobal("g", st, NewZero(st))
	f := m.NewFunction("f", types.NewFunc(types.Void, false))
	b := f.NewBlock("entry")
	gep := b.NewGetElementPtr(st, g, NewInt(types.I32, 0), NewInt(types.I32, 1), NewInt(types.I64, 2))
	assert.Equal(t, "i16*", gep.Type().String())
	assert.Same(t, st, gep.ElemType())
}

func TestModuleString(t *testing.T) {
	m := NewModule("test")
	m.NewGlobal("counter", types.I32, NewInt(types.I32, 5))
	puts := m.NewFunction("puts", types.NewFunc(types.I32, false, types.NewPointer(types.I8)))
	f := m.NewFunction("main", types.NewFunc(types.I32, false))
	b := f.NewBlock("entry")
	b.NewCall(puts.Signature(), puts, NewNull(types.NewPointer(types.I8)))
	b.NewRet(NewInt(types.I32, 0))

	s := m.String()
	assert.Contains(t, s, "@counter = global i32 5")
	assert.Contains(t, s, "declare i32 @puts(i8*)")
	assert.Contains(t, s, "define i32 @main() {")
	assert.Contains(t, s, "call i32 @puts(i8* null)")
	assert.Contains(t, s, "ret i32 0")
}
