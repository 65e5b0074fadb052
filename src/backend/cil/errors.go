package cil

import "fmt"

// UnsupportedTypeError is returned when a source type has no target representation.
type UnsupportedTypeError struct {
	Type   string // Textual source or target type.
	Reason string // Optional detail.
}

// UnsupportedWidthError is returned for integer types of a bit width the target cannot represent.
type UnsupportedWidthError struct {
	Width int
}

// InvalidOperandError is returned for instruction operands of a shape the lowering cannot handle.
type InvalidOperandError struct {
	Inst   string // Textual IR of the offending instruction.
	Reason string
}

// InvalidCalleeError is returned when a call target is neither a function nor a pointer to a function.
type InvalidCalleeError struct {
	Callee string // Operand reference of the callee.
	Type   string // Source type of the callee.
}

// MissingEntryPointError is returned when the module defines no function the entry point can call.
type MissingEntryPointError struct {
	Name string
}

// UnsupportedCallingConventionError is returned for functions using a calling convention the target cannot
// express.
type UnsupportedCallingConventionError struct {
	Function string
	CallConv string
}

// UnsupportedInstructionError is returned for instructions that have no lowering.
type UnsupportedInstructionError struct {
	Inst   string
	Reason string
}

func (e *UnsupportedTypeError) Error() string {
	if len(e.Reason) > 0 {
		return fmt.Sprintf("unsupported type %s: %s", e.Type, e.Reason)
	}
	return fmt.Sprintf("unsupported type %s", e.Type)
}

func (e *UnsupportedWidthError) Error() string {
	return fmt.Sprintf("unsupported integer width %d, expected 1, 8, 16, 32 or 64", e.Width)
}

func (e *InvalidOperandError) Error() string {
	return fmt.Sprintf("invalid operand in %q: %s", e.Inst, e.Reason)
}

func (e *InvalidCalleeError) Error() string {
	return fmt.Sprintf("invalid callee %s of type %s: expected a function or function pointer", e.Callee, e.Type)
}

func (e *MissingEntryPointError) Error() string {
	return fmt.Sprintf("missing entry point: module defines no function %q", e.Name)
}

func (e *UnsupportedCallingConventionError) Error() string {
	return fmt.Sprintf("function %s: unsupported calling convention %s", e.Function, e.CallConv)
}

func (e *UnsupportedInstructionError) Error() string {
	return fmt.Sprintf("unsupported instruction %q: %s", e.Inst, e.Reason)
}
