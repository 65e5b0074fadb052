// Package ssa provides the typed, SSA form intermediate representation consumed by the CIL backend. Modules hold
// globals and functions, functions hold basic blocks and basic blocks hold instructions. Every instruction is
// built through the Block builder methods, which keep track of how many times each instruction result is used.
package ssa

import (
	"cilc/src/ir/ssa/types"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Value is anything an instruction can consume: arguments, instruction results, globals, functions and constants.
// Values are compared by identity.
type Value interface {
	Type() *types.Type // Source data type of the value.
	Ident() string     // Textual reference to the value when used as an operand.
}

// Named is a Value that carries a name which may be assigned after construction.
type Named interface {
	Value
	Name() string
	SetName(name string)
}

// ---------------------
// ----- Constants -----
// ---------------------

// unnamed is printed in place of values that have not been named yet.
const unnamed = "?"

// ---------------------
// ----- Functions -----
// ---------------------

// ident returns the textual operand reference of a named value with the given sigil.
func ident(sigil, name string) string {
	if len(name) == 0 {
		return sigil + unnamed
	}
	return sigil + name
}
