package ssa

import (
	"fmt"
	"strings"

	"cilc/src/ir/ssa/types"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Function represents a function. It has a name, a signature, parameters and basic blocks. A function without
// basic blocks is a declaration of a function defined elsewhere. Using a function as a Value yields its address.
type Function struct {
	m       *Module        // Parent module.
	name    string         // Name of function.
	sig     *types.Type    // Function signature.
	typ     *types.Type    // Pointer to sig.
	params  []*Argument    // Parameters of function.
	blocks  []*Block       // Basic blocks in function body.
	cc      types.CallConv // Calling convention.
	linkage types.Linkage  // Visibility of function.
}

// Argument represents a function parameter.
type Argument struct {
	f     *Function   // Parent function.
	index int         // Position in the parameter list.
	name  string      // Optional name of parameter.
	typ   *types.Type // Data type of parameter.
}

// ---------------------
// ----- Constants -----
// ---------------------

// intrinsicPrefix prefixes the names of functions provided by the code generator itself.
const intrinsicPrefix = "llvm."

// ---------------------
// ----- Functions -----
// ---------------------

// ----------------------------
// ----- Function methods -----
// ----------------------------

// Name returns the name of Function f.
func (f *Function) Name() string {
	return f.name
}

// SetName sets the name of Function f.
func (f *Function) SetName(name string) {
	if f.m != nil && f.m.lookup[f.name] == f {
		delete(f.m.lookup, f.name)
		f.m.lookup[name] = f
	}
	f.name = name
}

// Type returns the pointer to function type of Function f.
func (f *Function) Type() *types.Type {
	return f.typ
}

// Signature returns the function type of Function f.
func (f *Function) Signature() *types.Type {
	return f.sig
}

// Ident returns the operand reference of Function f.
func (f *Function) Ident() string {
	return ident("@", f.name)
}

// Module returns the parent module of Function f.
func (f *Function) Module() *Module {
	return f.m
}

// Params returns the parameters of Function f.
func (f *Function) Params() []*Argument {
	return f.params
}

// Blocks returns the basic blocks of Function f.
func (f *Function) Blocks() []*Block {
	return f.blocks
}

// NewBlock appends a new basic block with the given optional name to Function f.
func (f *Function) NewBlock(name string) *Block {
	b := &Block{
		f:     f,
		name:  name,
		insts: make([]*Instruction, 0, 16),
	}
	f.blocks = append(f.blocks, b)
	return b
}

// IsDeclaration returns true if Function f has no body.
func (f *Function) IsDeclaration() bool {
	return len(f.blocks) == 0
}

// IsIntrinsic returns true if Function f is provided by the code generator.
func (f *Function) IsIntrinsic() bool {
	return strings.HasPrefix(f.name, intrinsicPrefix)
}

// CallConv returns the calling convention of Function f.
func (f *Function) CallConv() types.CallConv {
	return f.cc
}

// SetCallConv sets the calling convention of Function f.
func (f *Function) SetCallConv(cc types.CallConv) {
	f.cc = cc
}

// Linkage returns the linkage of Function f.
func (f *Function) Linkage() types.Linkage {
	return f.linkage
}

// SetLinkage sets the linkage of Function f.
func (f *Function) SetLinkage(l types.Linkage) {
	f.linkage = l
}

// Instructions returns every instruction of Function f in program order.
func (f *Function) Instructions() []*Instruction {
	n := 0
	for _, e1 := range f.blocks {
		n += len(e1.insts)
	}
	res := make([]*Instruction, 0, n)
	for _, e1 := range f.blocks {
		res = append(res, e1.insts...)
	}
	return res
}

// String returns the textual IR representation of Function f.
func (f *Function) String() string {
	sb := strings.Builder{}
	if f.IsDeclaration() {
		sb.WriteString("declare ")
	} else {
		sb.WriteString("define ")
	}
	if f.linkage == types.Internal {
		sb.WriteString("internal ")
	}
	if f.cc != types.CallConvC {
		sb.WriteString(f.cc.String())
		sb.WriteRune(' ')
	}
	sb.WriteString(fmt.Sprintf("%s %s(", f.sig.Ret.String(), f.Ident()))
	for i1, e1 := range f.params {
		if i1 > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(e1.typ.String())
		if len(e1.name) > 0 {
			sb.WriteString(" " + e1.Ident())
		}
	}
	if f.sig.Variadic {
		if len(f.params) > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("...")
	}
	sb.WriteRune(')')

	if len(f.blocks) > 0 {
		sb.WriteString(" {\n")
		for i1, e1 := range f.blocks {
			if i1 > 0 {
				sb.WriteRune('\n')
			}
			sb.WriteString(e1.String())
		}
		sb.WriteRune('}')
	}
	return sb.String()
}

// ----------------------------
// ----- Argument methods -----
// ----------------------------

// Index returns the position of Argument a in its function's parameter list.
func (a *Argument) Index() int {
	return a.index
}

// Parent returns the function Argument a belongs to.
func (a *Argument) Parent() *Function {
	return a.f
}

// Name returns the name of Argument a.
func (a *Argument) Name() string {
	return a.name
}

// SetName sets the name of Argument a.
func (a *Argument) SetName(name string) {
	a.name = name
}

// Type returns the data type of Argument a.
func (a *Argument) Type() *types.Type {
	return a.typ
}

// Ident returns the operand reference of Argument a.
func (a *Argument) Ident() string {
	return ident("%", a.name)
}
