//go:build llvm

package cli

import (
	"cilc/src/ir/llvm"
	"cilc/src/ir/ssa"
)

// readLLVM reads the LLVM IR assembly or bitcode file at path with the system installed LLVM.
func readLLVM(path string) (*ssa.Module, error) {
	return llvm.ReadFile(path)
}
