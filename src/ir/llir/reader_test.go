package llir

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cilc/src/backend/cil"
	"cilc/src/ir/ssa"
	"cilc/src/ir/ssa/types"
	"cilc/src/util"
)

const hello = `source_filename = "hello.c"
target datalayout = "e-m:e-p:32:32-i64:64-n32-S128"

@.str = private unnamed_addr constant [4 x i8] c"%d\0A\00", align 1
@counter = global i32 7, align 4
@ext = external global i64

declare i32 @printf(i8*, ...)

define i32 @main() {
entry:
  %x = alloca i32, align 4
  store i32 5, i32* %x, align 4
  %v = load i32, i32* %x, align 4
  %c = icmp sgt i32 %v, 3
  br i1 %c, label %yes, label %no

yes:
  %call = call i32 (i8*, ...) @printf(i8* getelementptr inbounds ([4 x i8], [4 x i8]* @.str, i32 0, i32 0), i32 %v)
  ret i32 0

no:
  %0 = zext i1 %c to i32
  ret i32 %0
}
`

// opcodes returns the opcodes of the instructions of b.
func opcodes(b *ssa.Block) []types.Opcode {
	res := make([]types.Opcode, 0, len(b.Instructions()))
	for _, e1 := range b.Instructions() {
		res = append(res, e1.Opcode())
	}
	return res
}

func TestReadModule(t *testing.T) {
	m, err := ReadString("hello.ll", hello)
	require.NoError(t, err)
	assert.Equal(t, "hello", m.Name)
	assert.Equal(t, 4, m.Layout.PointerSize)

	require.Len(t, m.Globals(), 3)
	str := m.Globals()[0]
	assert.Equal(t, ".str", str.Name())
	assert.True(t, str.IsConstant())
	assert.Equal(t, types.Internal, str.Linkage())
	init, ok := str.Init().(*ssa.ConstArray)
	require.True(t, ok)
	values := make([]int64, 0, 4)
	for _, e1 := range init.Elems {
		values = append(values, e1.(*ssa.ConstInt).V)
	}
	assert.Equal(t, []int64{'%', 'd', '\n', 0}, values)
	assert.Equal(t, int64(7), m.Globals()[1].Init().(*ssa.ConstInt).V)
	assert.True(t, m.Globals()[2].IsDeclaration())

	printf := m.Function("printf")
	require.NotNil(t, printf)
	assert.True(t, printf.IsDeclaration())
	assert.True(t, printf.Signature().Variadic)
	assert.Equal(t, types.CallConvC, printf.CallConv())

	main := m.Function("main")
	require.NotNil(t, main)
	require.Len(t, main.Blocks(), 3)
	entry, yes, no := main.Blocks()[0], main.Blocks()[1], main.Blocks()[2]
	assert.Equal(t, "entry", entry.Name())
	assert.Equal(t, []types.Opcode{types.Alloca, types.Store, types.Load, types.ICmp, types.CondBr}, opcodes(entry))
	assert.Equal(t, []*ssa.Block{yes, no}, entry.Successors())
	assert.Equal(t, types.IntSGT, entry.Instructions()[3].Predicate())

	// The constant getelementptr operand is materialised in front of the call.
	assert.Equal(t, []types.Opcode{types.GetElementPtr, types.Call, types.Ret}, opcodes(yes))
	call := yes.Instructions()[1]
	assert.Same(t, printf, call.Callee())
	assert.Same(t, yes.Instructions()[0], call.Args()[0])
	assert.Same(t, entry.Instructions()[2], call.Args()[1])
	assert.Equal(t, "call", call.Name())

	zext := no.Instructions()[0]
	assert.Equal(t, types.ZExt, zext.Opcode())
	assert.Empty(t, zext.Name(), "numbered values are left for the backend to name")
}

func TestReadAndEmit(t *testing.T) {
	m, err := ReadString("hello.ll", hello)
	require.NoError(t, err)
	buf := bytes.Buffer{}
	require.NoError(t, cil.GenCIL(util.DefaultOptions(), nil, m, &buf))

	out := buf.String()
	assert.Contains(t, out, ".method static public pinvokeimpl(\"msvcrt.dll\" cdecl) vararg int32 printf(int8*)\n")
	assert.Contains(t, out, "  call vararg int32 printf(int8*, ..., int32)\n")
	assert.Contains(t, out, ".data '.str$data' =\n  { int8(37)\n  , int8(100)\n  , int8(10)\n  , int8(0)\n  }\n")
	assert.Contains(t, out, ".field static public int64 ext\n")
}

func TestReadPhi(t *testing.T) {
	src := `define i32 @f(i1 %c) {
entry:
  br i1 %c, label %a, label %b

a:
  br label %b

b:
  %p = phi i32 [ 1, %entry ], [ 2, %a ]
  ret i32 %p
}
`
	m, err := ReadString("phi.ll", src)
	require.NoError(t, err)
	f := m.Function("f")
	phi := f.Blocks()[2].Instructions()[0]
	assert.Equal(t, types.Phi, phi.Opcode())
	assert.Equal(t, []*ssa.Block{f.Blocks()[0], f.Blocks()[1]}, phi.Targets())
	require.Len(t, phi.Operands(), 2)
	assert.Equal(t, int64(2), phi.Operand(1).(*ssa.ConstInt).V)
	assert.Equal(t, 1, phi.NumUses())
}

func TestReadRecursiveStruct(t *testing.T) {
	src := `%struct.node = type { i32, %struct.node* }

@head = global %struct.node zeroinitializer
`
	m, err := ReadString("list.ll", src)
	require.NoError(t, err)
	ct := m.Globals()[0].ContentType()
	assert.Equal(t, types.StructKind, ct.Kind)
	assert.Equal(t, "struct.node", ct.Name)
	require.Len(t, ct.Fields, 2)
	assert.Same(t, ct, ct.Fields[1].Elem)
	assert.Equal(t, 16, m.Layout.SizeOf(ct))
}

func TestReadFNeg(t *testing.T) {
	src := `define double @neg(double %x) {
entry:
  %n = fneg double %x
  ret double %n
}
`
	m, err := ReadString("neg.ll", src)
	require.NoError(t, err)
	n := m.Function("neg").Blocks()[0].Instructions()[0]
	assert.Equal(t, types.FSub, n.Opcode())
	zero := n.Operand(0).(*ssa.ConstFloat)
	assert.True(t, math.Signbit(zero.V))
}

func TestReadSkipsDebugIntrinsics(t *testing.T) {
	src := `declare void @llvm.dbg.declare(metadata, metadata, metadata)

define void @f() {
entry:
  %x = alloca i32
  call void @llvm.dbg.declare(metadata i32* %x, metadata !1, metadata !DIExpression())
  ret void
}

!1 = !{}
`
	m, err := ReadString("dbg.ll", src)
	require.NoError(t, err)
	assert.Equal(t, []types.Opcode{types.Alloca, types.Ret}, opcodes(m.Function("f").Blocks()[0]))
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"switch", `define void @f(i32 %v) {
entry:
  switch i32 %v, label %a [ i32 0, label %b ]
a:
  ret void
b:
  ret void
}
`, "unsupported terminator"},
		{"half", `@h = global half 0xH0000
`, "unsupported floating point type"},
		{"syntax", `define void @f( {`, ""},
	}
	for _, e1 := range tests {
		t.Run(e1.name, func(t *testing.T) {
			_, err := ReadString(e1.name+".ll", e1.src)
			require.Error(t, err)
			assert.Contains(t, err.Error(), e1.want)
		})
	}
}

func TestIntValue(t *testing.T) {
	m, err := ReadString("ints.ll", `@a = global i1 true
@b = global i8 -1
@c = global i64 -9223372036854775808
@d = global i16 65535
`)
	require.NoError(t, err)
	want := []int64{1, -1, math.MinInt64, -1}
	for i1, e1 := range m.Globals() {
		assert.Equal(t, want[i1], e1.Init().(*ssa.ConstInt).V, e1.Name())
	}
}
