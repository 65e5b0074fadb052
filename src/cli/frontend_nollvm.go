//go:build !llvm

package cli

import (
	"cilc/src/ir/ssa"
)

// readLLVM reports that the binary cannot read files with the system installed LLVM.
func readLLVM(string) (*ssa.Module, error) {
	return nil, errNoLLVM
}
