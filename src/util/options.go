package util

import (
	"fmt"
	"strings"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Options holds the compiler configuration assembled from defaults, the optional configuration file and the
// command line.
type Options struct {
	Src            string // Path to source file. Empty or "-" reads stdin.
	Out            string // Path to output file. Empty writes to stdout.
	Config         string // Path to YAML configuration file.
	Verbose        bool   // Set true if compiler should log statistical data.
	LLVM           bool   // Set true if the system installed LLVM should read the source file.
	DumpIR         bool   // Set true if the compiler should print the SSA IR and exit.
	ShortBranches  bool   // Set true if branches should be relaxed to their short encodings.
	Target         int    // Output target.
	Assembly       string // Name of the emitted assembly.
	ExternAssembly string // Name of the referenced core library assembly.
	PInvokeLib     string // Native library external functions are imported from.
	EntryPoint     string // Name of the synthesised entry point method.
	PointerSize    int    // Pointer size in bytes. 0 keeps the size given by the source module.
}

// ---------------------
// ----- Constants -----
// ---------------------

const appVersion = "cilc 1.0"

// Output targets.
const (
	UnknownTarget = iota
	CIL
)

// Default values of Options.
const (
	DefaultAssembly       = "CIL"
	DefaultExternAssembly = "mscorlib"
	DefaultPInvokeLib     = "msvcrt.dll"
	DefaultEntryPoint     = "$CIL_Entry"
)

// -------------------
// ----- Globals -----
// -------------------

// targetNames maps command line target names to target constants.
var targetNames = map[string]int{
	"cil":  CIL,
	"msil": CIL,
}

// ---------------------
// ----- Functions -----
// ---------------------

// Version returns the compiler version string.
func Version() string {
	return appVersion
}

// DefaultOptions returns Options with every field set to its default value.
func DefaultOptions() Options {
	return Options{
		Target:         CIL,
		Assembly:       DefaultAssembly,
		ExternAssembly: DefaultExternAssembly,
		PInvokeLib:     DefaultPInvokeLib,
		EntryPoint:     DefaultEntryPoint,
	}
}

// ParseTarget returns the target constant named by s.
func ParseTarget(s string) (int, error) {
	if t, ok := targetNames[strings.ToLower(s)]; ok {
		return t, nil
	}
	return UnknownTarget, fmt.Errorf("unknown target %q", s)
}

// Validate checks that Options opt describe a configuration the compiler can run.
func (opt Options) Validate() error {
	if opt.Target != CIL {
		return fmt.Errorf("unsupported output target %d", opt.Target)
	}
	if len(opt.Assembly) < 1 {
		return fmt.Errorf("assembly name must not be empty")
	}
	if len(opt.EntryPoint) < 1 {
		return fmt.Errorf("entry point name must not be empty")
	}
	switch opt.PointerSize {
	case 0, 4, 8:
	default:
		return fmt.Errorf("unsupported pointer size %d, expected 4 or 8", opt.PointerSize)
	}
	return nil
}
