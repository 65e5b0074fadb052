//go:build llvm

package llvm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cilc/src/ir/ssa"
	"cilc/src/ir/ssa/types"
)

const count = `target datalayout = "e-m:e-p:32:32-i64:64-n32-S128"

@total = internal global i32 3, align 4
@msg = private unnamed_addr constant [3 x i8] c"hi\00", align 1

declare i32 @puts(i8*)

define i32 @count(i32 %n) {
entry:
  %acc = alloca i32, align 4
  store i32 0, i32* %acc, align 4
  br label %loop

loop:
  %i = phi i32 [ 0, %entry ], [ %next, %loop ]
  %next = add nsw i32 %i, 1
  %done = icmp uge i32 %next, %n
  br i1 %done, label %exit, label %loop

exit:
  %r = call i32 @puts(i8* getelementptr inbounds ([3 x i8], [3 x i8]* @msg, i32 0, i32 0))
  ret i32 %next
}
`

// readString writes src to a temporary file and reads it back.
func readString(t *testing.T, src string) (*ssa.Module, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "count.ll")
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))
	return ReadFile(path)
}

func TestReadFile(t *testing.T) {
	m, err := readString(t, count)
	require.NoError(t, err)
	assert.Equal(t, "count", m.Name)
	assert.Equal(t, 4, m.Layout.PointerSize)

	require.Len(t, m.Globals(), 2)
	assert.Equal(t, types.Internal, m.Globals()[0].Linkage())
	assert.Equal(t, int64(3), m.Globals()[0].Init().(*ssa.ConstInt).V)
	msg := m.Globals()[1].Init().(*ssa.ConstArray)
	require.Len(t, msg.Elems, 3)
	assert.Equal(t, int64('h'), msg.Elems[0].(*ssa.ConstInt).V)

	f := m.Function("count")
	require.NotNil(t, f)
	require.Len(t, f.Blocks(), 3)
	entry, loop, exit := f.Blocks()[0], f.Blocks()[1], f.Blocks()[2]
	assert.Equal(t, "loop", loop.Name())
	assert.Equal(t, []*ssa.Block{loop}, entry.Successors())
	assert.Equal(t, []*ssa.Block{exit, loop}, loop.Successors())

	phi := loop.Instructions()[0]
	assert.Equal(t, types.Phi, phi.Opcode())
	assert.Equal(t, []*ssa.Block{entry, loop}, phi.Targets())
	assert.Same(t, loop.Instructions()[1], phi.Operand(1))
	assert.Equal(t, types.IntUGE, loop.Instructions()[2].Predicate())

	call := exit.Instructions()[1]
	assert.Equal(t, types.Call, call.Opcode())
	assert.Same(t, m.Function("puts"), call.Callee())
	assert.Equal(t, types.GetElementPtr, exit.Instructions()[0].Opcode())
}

func TestReadFileErrors(t *testing.T) {
	_, err := readString(t, "define void @f( {")
	assert.Error(t, err)

	_, err = readString(t, `define void @f(i32 %v) {
entry:
  switch i32 %v, label %a [ i32 0, label %a ]
a:
  ret void
}
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported terminator")

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.ll"))
	assert.Error(t, err)
}
