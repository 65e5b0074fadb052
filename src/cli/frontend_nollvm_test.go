//go:build !llvm

package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLLVMFrontendMissing(t *testing.T) {
	_, err := execute(t, writeFile(t, "jump.ll", jump), "--llvm")
	assert.ErrorIs(t, err, errNoLLVM)
}
