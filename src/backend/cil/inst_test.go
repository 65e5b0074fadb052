package cil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadInt32Selection(t *testing.T) {
	tests := []struct {
		v    int32
		want string
		size int
	}{
		{-1, "ldc.i4.m1", 1},
		{0, "ldc.i4.0", 1},
		{1, "ldc.i4.1", 1},
		{2, "ldc.i4.2", 1},
		{3, "ldc.i4.3", 1},
		{4, "ldc.i4.4", 1},
		{5, "ldc.i4.5", 1},
		{6, "ldc.i4.6", 1},
		{7, "ldc.i4.7", 1},
		{8, "ldc.i4.8", 1},
		{9, "ldc.i4.s 9", 2},
		{-2, "ldc.i4.s -2", 2},
		{127, "ldc.i4.s 127", 2},
		{-128, "ldc.i4.s -128", 2},
		{128, "ldc.i4 128", 5},
		{200, "ldc.i4 200", 5},
		{-1000, "ldc.i4 -1000", 5},
		{math.MaxInt32, "ldc.i4 2147483647", 5},
	}
	seen := make(map[Opcode]int32)
	for _, e1 := range tests {
		inst := LoadInt32(e1.v)
		assert.Equal(t, e1.want, inst.String())
		assert.Equal(t, e1.size, inst.Size(), "size of %s", e1.want)
		if e1.v >= -1 && e1.v <= 8 {
			_, dup := seen[inst.Op]
			assert.False(t, dup, "opcode of %d reused", e1.v)
			seen[inst.Op] = e1.v
			assert.Empty(t, inst.Operand())
		}
	}
}

func TestIndexedAccessSelection(t *testing.T) {
	tests := []struct {
		name string
		inst Inst
		want string
	}{
		{"ldarg 0", LoadArg(0), "ldarg.0"},
		{"ldarg 3", LoadArg(3), "ldarg.3"},
		{"ldarg 4", LoadArg(4), "ldarg.s 4"},
		{"ldarg 255", LoadArg(255), "ldarg.s 255"},
		{"ldarg 256", LoadArg(256), "ldarg 256"},
		{"ldloc 0", LoadLocal(0), "ldloc.0"},
		{"ldloc 3", LoadLocal(3), "ldloc.3"},
		{"ldloc 4", LoadLocal(4), "ldloc.s 4"},
		{"ldloc 300", LoadLocal(300), "ldloc 300"},
		{"stloc 2", StoreLocal(2), "stloc.2"},
		{"stloc 200", StoreLocal(200), "stloc.s 200"},
		{"stloc 1000", StoreLocal(1000), "stloc 1000"},
		{"starg 0", StoreArg(0), "starg.s 0"},
		{"starg 256", StoreArg(256), "starg 256"},
		{"ldarga 1", LoadArgAddr(1), "ldarga.s 1"},
		{"ldloca 0", LoadLocalAddr(0), "ldloca.s 0"},
		{"ldloca 256", LoadLocalAddr(256), "ldloca 256"},
	}
	for _, e1 := range tests {
		t.Run(e1.name, func(t *testing.T) {
			assert.Equal(t, e1.want, e1.inst.String())
		})
	}
}

func TestInstSize(t *testing.T) {
	assert.Equal(t, 1, LoadLocal(2).Size())
	assert.Equal(t, 2, LoadLocal(4).Size())
	assert.Equal(t, 4, LoadLocal(256).Size())
	assert.Equal(t, 9, LoadInt64(1).Size())
	assert.Equal(t, 5, LoadFloat32(1).Size())
	assert.Equal(t, 9, LoadFloat64(1).Size())
	assert.Equal(t, 5, Branch(Always, false, "L").Size())
	assert.Equal(t, 2, BranchOffset(Always, false, "L", 10).Size())
	assert.Equal(t, 2, Cmp(CmpEq, false).Size())
	assert.Equal(t, 5, Call(MethodRef{Ret: VoidType, Name: "f"}).Size())
}

func TestBranchSelection(t *testing.T) {
	tests := []struct {
		c     Cond
		un    bool
		long  string
		short string
	}{
		{Always, false, "br", "br.s"},
		{IfTrue, false, "brtrue", "brtrue.s"},
		{IfFalse, false, "brfalse", "brfalse.s"},
		{IfEq, false, "beq", "beq.s"},
		{IfNe, true, "bne.un", "bne.un.s"},
		{IfGe, false, "bge", "bge.s"},
		{IfGe, true, "bge.un", "bge.un.s"},
		{IfGt, true, "bgt.un", "bgt.un.s"},
		{IfLe, false, "ble", "ble.s"},
		{IfLt, true, "blt.un", "blt.un.s"},
		{Leave, false, "leave", "leave.s"},
	}
	for _, e1 := range tests {
		t.Run(e1.long, func(t *testing.T) {
			assert.Equal(t, e1.long+" L", Branch(e1.c, e1.un, "L").String())
			assert.Equal(t, e1.long+" L", BranchOffset(e1.c, e1.un, "L", 128).String())
			assert.Equal(t, e1.long+" L", BranchOffset(e1.c, e1.un, "L", -129).String())
			assert.Equal(t, e1.short+" L", BranchOffset(e1.c, e1.un, "L", 127).String())
			assert.Equal(t, e1.short+" L", BranchOffset(e1.c, e1.un, "L", -128).String())
			assert.True(t, BranchOffset(e1.c, e1.un, "L", 0).IsShortBranch())
			assert.False(t, Branch(e1.c, e1.un, "L").IsShortBranch())
		})
	}
}

func TestTypedOpcodes(t *testing.T) {
	tests := []struct {
		typ   *Type
		ldind string
		stind string
		conv  string
	}{
		{BoolType, "ldind.u1", "stind.i1", "conv.u1"},
		{Int8Type, "ldind.i1", "stind.i1", "conv.i1"},
		{UInt8Type, "ldind.u1", "stind.i1", "conv.u1"},
		{Int16Type, "ldind.i2", "stind.i2", "conv.i2"},
		{UInt16Type, "ldind.u2", "stind.i2", "conv.u2"},
		{Int32Type, "ldind.i4", "stind.i4", "conv.i4"},
		{UInt32Type, "ldind.u4", "stind.i4", "conv.u4"},
		{Int64Type, "ldind.i8", "stind.i8", "conv.i8"},
		{UInt64Type, "ldind.i8", "stind.i8", "conv.u8"},
		{NativeIntType, "ldind.i", "stind.i", "conv.i"},
		{NativeUIntType, "ldind.i", "stind.i", "conv.u"},
		{Float32Type, "ldind.r4", "stind.r4", "conv.r4"},
		{Float64Type, "ldind.r8", "stind.r8", "conv.r8"},
		{PointerTo(Int32Type), "ldind.i", "stind.i", "conv.u"},
	}
	for _, e1 := range tests {
		t.Run(e1.typ.String(), func(t *testing.T) {
			ld, err := LoadIndirect(e1.typ)
			require.NoError(t, err)
			assert.Equal(t, e1.ldind, ld.String())
			st, err := StoreIndirect(e1.typ)
			require.NoError(t, err)
			assert.Equal(t, e1.stind, st.String())
			cv, err := Conv(e1.typ, false, false)
			require.NoError(t, err)
			assert.Equal(t, e1.conv, cv.String())
		})
	}

	_, err := LoadIndirect(VectorOf(Int32Type))
	var target *UnsupportedTypeError
	assert.ErrorAs(t, err, &target)
	_, err = Conv(VoidType, false, false)
	assert.ErrorAs(t, err, &target)
	_, err = Conv(Float64Type, true, false)
	assert.ErrorAs(t, err, &target)
}

func TestOverflowVariants(t *testing.T) {
	assert.Equal(t, "add", Add(false, false).String())
	assert.Equal(t, "add", Add(false, true).String())
	assert.Equal(t, "add.ovf", Add(true, false).String())
	assert.Equal(t, "add.ovf.un", Add(true, true).String())
	assert.Equal(t, "sub.ovf", Sub(true, false).String())
	assert.Equal(t, "mul.ovf.un", Mul(true, true).String())
	assert.Equal(t, "div", Div(false).String())
	assert.Equal(t, "div.un", Div(true).String())
	assert.Equal(t, "rem.un", Rem(true).String())
	assert.Equal(t, "shr.un", Shr(true).String())

	cv, err := Conv(Int32Type, true, false)
	require.NoError(t, err)
	assert.Equal(t, "conv.ovf.i4", cv.String())
	cv, err = Conv(UInt8Type, true, true)
	require.NoError(t, err)
	assert.Equal(t, "conv.ovf.u1.un", cv.String())
}

func TestCompareOpcodes(t *testing.T) {
	assert.Equal(t, "ceq", Cmp(CmpEq, false).String())
	assert.Equal(t, "ceq", Cmp(CmpEq, true).String())
	assert.Equal(t, "cgt", Cmp(CmpGt, false).String())
	assert.Equal(t, "cgt.un", Cmp(CmpGt, true).String())
	assert.Equal(t, "clt", Cmp(CmpLt, false).String())
	assert.Equal(t, "clt.un", Cmp(CmpLt, true).String())
}

func TestFloatLiterals(t *testing.T) {
	assert.Equal(t, "ldc.r8 1.5", LoadFloat64(1.5).String())
	assert.Equal(t, "ldc.r8 2.0", LoadFloat64(2).String())
	assert.Equal(t, "ldc.r8 1.0e+100", LoadFloat64(1e100).String())
	assert.Equal(t, "ldc.r4 0.1", LoadFloat32(0.1).String())
	assert.Equal(t, "ldc.r4 float32(2139095040)", LoadFloat32(float32(math.Inf(1))).String())
	assert.Equal(t, "ldc.r8 float64(-4503599627370496)", LoadFloat64(math.Inf(-1)).String())
	assert.Equal(t, "ldc.i8 -5", LoadInt64(-5).String())
}

func TestMethodRefs(t *testing.T) {
	printf := MethodRef{
		CC:     CallConv{Kind: CallVararg},
		Ret:    Int32Type,
		Name:   "printf",
		Params: []*Type{PointerTo(Int8Type)},
		Extra:  []*Type{Int32Type, Float64Type},
	}
	assert.Equal(t, "call vararg int32 printf(int8*, ..., int32, float64)", Call(printf).String())

	sig := MethodRef{Ret: VoidType, Name: "ignored", Params: []*Type{Int64Type}}
	assert.Equal(t, "calli void(int64)", CallIndirect(sig).String())
	assert.Equal(t, "ldftn void ignored(int64)", LoadFunction(sig).String())

	unmanaged := MethodRef{CC: CallConv{Kind: CallCdecl}, Ret: Float32Type, Name: "add"}
	assert.Equal(t, "call unmanaged cdecl float32 'add'()", Call(unmanaged).String())

	assert.True(t, CallConv{}.IsDefault())
	assert.False(t, CallConv{Kind: CallDefault, Attr: AttrInstance}.IsDefault())
	assert.Equal(t, CallConv{Kind: CallStdcall}, CallConv{Kind: CallStdcall})
	assert.Equal(t, "instance explicit unmanaged thiscall", CallConv{Kind: CallThiscall, Attr: AttrInstanceExplicit}.String())
}

func TestStackEffects(t *testing.T) {
	pop, push := Plain(OpDup).stack()
	assert.Equal(t, []int{1, 2}, []int{pop, push})
	pop, push = Call(MethodRef{Ret: Int32Type, Params: []*Type{Int32Type, Int32Type}, Extra: []*Type{Int8Type}}).stack()
	assert.Equal(t, []int{3, 1}, []int{pop, push})
	pop, push = CallIndirect(MethodRef{Ret: VoidType, Params: []*Type{Int32Type}}).stack()
	assert.Equal(t, []int{2, 0}, []int{pop, push})
}

func TestOpcodeEncoding(t *testing.T) {
	assert.Equal(t, uint16(0x2A), OpRet.Code())
	assert.Equal(t, 1, OpRet.Len())
	assert.Equal(t, uint16(0xFE01), OpCeq.Code())
	assert.Equal(t, 2, OpCeq.Len())
	assert.Equal(t, "ldc.i4.m1", OpLdcI4M1.String())
}

func TestQuote(t *testing.T) {
	assert.Equal(t, "main", quote("main"))
	assert.Equal(t, "$TMP_0", quote("$TMP_0"))
	assert.Equal(t, "'add'", quote("add"))
	assert.Equal(t, "'.str.1'", quote(".str.1"))
	assert.Equal(t, `'it\'s'`, quote("it's"))
	assert.Equal(t, "'café'", quote("café"))
}
