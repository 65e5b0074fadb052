// Package cli implements the cilc command line: it reads an LLVM IR module through one of the frontends, lowers
// it to CIL and writes the assembly.
package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"cilc/src/backend"
	"cilc/src/ir/llir"
	"cilc/src/ir/ssa"
	"cilc/src/util"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// flags holds the command line flags that may override configuration file values.
type flags struct {
	target        string
	shortBranches bool
}

// ---------------------
// ----- Constants -----
// ---------------------

const stdinName = "stdin.ll" // Module name of source read from stdin.

// -------------------
// ----- Globals -----
// -------------------

// errNoLLVM is returned by the go-llvm frontend of binaries built without the llvm build tag.
var errNoLLVM = errors.New("built without LLVM support, rebuild with -tags llvm")

// ---------------------
// ----- Functions -----
// ---------------------

// NewRootCommand creates the cilc command.
func NewRootCommand() *cobra.Command {
	opt := util.DefaultOptions()
	fl := flags{}

	cmd := &cobra.Command{
		Use:   "cilc [flags] <input.ll|input.bc>",
		Short: "cilc - LLVM IR to CIL compiler",
		Long: `Compile an LLVM IR module to CIL assembly accepted by ilasm.

Functions defined in the module become static methods, external functions
become pinvokeimpl stubs and globals become static fields. Source is read
from stdin if no input file is given.`,
		Version:       util.Version(),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opt.Src = args[0]
			}
			if err := configure(cmd, &opt, fl); err != nil {
				return err
			}
			logger := util.NewLogger(cmd.ErrOrStderr(), opt.Verbose)
			return Run(opt, logger, cmd.OutOrStdout())
		},
	}
	cmd.SetVersionTemplate("{{.Version}}\n")

	cmd.Flags().StringVarP(&opt.Out, "output", "o", "", "output file path (default stdout)")
	cmd.Flags().StringVar(&opt.Config, "config", "", "YAML configuration file")
	cmd.Flags().BoolVarP(&opt.Verbose, "verbose", "v", false, "log compilation statistics")
	cmd.Flags().BoolVar(&opt.LLVM, "llvm", false, "read the input with the system installed LLVM")
	cmd.Flags().BoolVar(&opt.DumpIR, "dump-ir", false, "print the SSA IR of the input and exit")
	cmd.Flags().BoolVar(&fl.shortBranches, "short-branches", false, "relax branches to their short encodings")
	cmd.Flags().StringVar(&fl.target, "target", "cil", "output target")
	return cmd
}

// configure applies the configuration file named by opt and then every flag set on the command line.
func configure(cmd *cobra.Command, opt *util.Options, fl flags) error {
	if len(opt.Config) > 0 {
		cfg, err := util.LoadConfig(opt.Config)
		if err != nil {
			return err
		}
		if err := cfg.Apply(opt); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("target") {
		t, err := util.ParseTarget(fl.target)
		if err != nil {
			return err
		}
		opt.Target = t
	}
	if cmd.Flags().Changed("short-branches") {
		opt.ShortBranches = fl.shortBranches
	}
	return opt.Validate()
}

// Run compiles the source described by opt. Output goes to the output file of opt, or to stdout if none is set.
// Nothing is written if compilation fails.
func Run(opt util.Options, logger *log.Logger, stdout io.Writer) error {
	m, err := readModule(opt)
	if err != nil {
		return err
	}
	logger.Debug("module read", "module", m.Name, "globals", len(m.Globals()), "functions", len(m.Functions()))

	buf := bytes.Buffer{}
	if opt.DumpIR {
		buf.WriteString(m.String())
	} else if err := backend.GenerateAssembler(opt, logger, m, &buf); err != nil {
		return err
	}

	if len(opt.Out) < 1 {
		_, err := buf.WriteTo(stdout)
		return err
	}
	out, closer, err := util.OpenOutput(opt)
	if err != nil {
		return err
	}
	if _, err := buf.WriteTo(out); err != nil {
		_ = closer()
		return err
	}
	return closer()
}

// readModule reads the source module with the frontend selected by opt.
func readModule(opt util.Options) (*ssa.Module, error) {
	if opt.LLVM {
		if len(opt.Src) < 1 || opt.Src == "-" {
			return nil, fmt.Errorf("the LLVM frontend needs an input file")
		}
		return readLLVM(opt.Src)
	}
	src, err := util.ReadSource(opt)
	if err != nil {
		return nil, fmt.Errorf("could not read source: %w", err)
	}
	name := stdinName
	if len(opt.Src) > 0 && opt.Src != "-" {
		name = filepath.Base(opt.Src)
	}
	return llir.ReadString(name, src)
}
