package backend

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"cilc/src/backend/cil"
	"cilc/src/ir/ssa"
	"cilc/src/util"
)

// ---------------------
// ----- Functions -----
// ---------------------

// GenerateAssembler lowers module m and writes the assembler code of the target defined by opt to out.
func GenerateAssembler(opt util.Options, logger *log.Logger, m *ssa.Module, out io.Writer) error {
	switch opt.Target {
	case util.CIL:
		return cil.GenCIL(opt, logger, m, out)
	default:
		return fmt.Errorf("unsupported output target %d", opt.Target)
	}
}
