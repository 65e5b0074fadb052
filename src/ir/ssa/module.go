package ssa

import (
	"fmt"
	"strings"

	"cilc/src/ir/ssa/types"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Module defines a program that contains globals and functions.
type Module struct {
	Name      string               // Name of module.
	Layout    DataLayout           // Target data layout used for sizing types.
	globals   []*Global            // Global variables in declaration order.
	functions []*Function          // Functions in declaration order.
	lookup    map[string]*Function // Functions by name.
}

// Global is a module level variable. Using a Global as a Value yields its address.
type Global struct {
	m        *Module        // Parent module.
	name     string         // Name of global.
	content  *types.Type    // Type of the value stored in the global.
	typ      *types.Type    // Pointer to content.
	init     Constant       // Initialiser. nil for external declarations.
	linkage  types.Linkage  // Visibility of global.
	constant bool           // True if the global is never written.
}

// ---------------------
// ----- Constants -----
// ---------------------

// defaultModuleName is assigned to modules created without a name.
const defaultModuleName = "module"

// ---------------------
// ----- Functions -----
// ---------------------

// NewModule creates a new empty module with the given optional name and the default data layout.
func NewModule(name string) *Module {
	if len(name) < 1 {
		name = defaultModuleName
	}
	return &Module{
		Name:      name,
		Layout:    DefaultLayout(),
		globals:   make([]*Global, 0, 16),
		functions: make([]*Function, 0, 16),
		lookup:    make(map[string]*Function, 16),
	}
}

// Globals returns the global variables of Module m in declaration order.
func (m *Module) Globals() []*Global {
	return m.globals
}

// Functions returns the functions of Module m in declaration order.
func (m *Module) Functions() []*Function {
	return m.functions
}

// Function returns the function with the given name, or nil if Module m has no such function.
func (m *Module) Function(name string) *Function {
	return m.lookup[name]
}

// NewFunction creates a function declaration with signature sig. Parameters are created from the signature.
// The function becomes a definition once a basic block is added to it.
func (m *Module) NewFunction(name string, sig *types.Type) *Function {
	if sig.Kind != types.FuncKind {
		panic(fmt.Sprintf("function %s: expected function type, got %s", name, sig.String()))
	}
	f := &Function{
		m:      m,
		name:   name,
		sig:    sig,
		typ:    types.NewPointer(sig),
		params: make([]*Argument, len(sig.Params)),
		blocks: make([]*Block, 0, 8),
		cc:     types.CallConvC,
	}
	for i1, e1 := range sig.Params {
		f.params[i1] = &Argument{f: f, index: i1, typ: e1}
	}
	m.functions = append(m.functions, f)
	if len(name) > 0 {
		m.lookup[name] = f
	}
	return f
}

// NewGlobal creates a global variable holding values of type content. A nil initialiser makes the global an
// external declaration.
func (m *Module) NewGlobal(name string, content *types.Type, init Constant) *Global {
	g := &Global{
		m:       m,
		name:    name,
		content: content,
		typ:     types.NewPointer(content),
		init:    init,
	}
	m.globals = append(m.globals, g)
	return g
}

// String returns a textual representation of the module.
func (m *Module) String() string {
	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf("; module %s\n", m.Name))
	sb.WriteString(fmt.Sprintf("; pointer size %d\n\n", m.Layout.PointerSize))

	for _, e1 := range m.globals {
		sb.WriteString(e1.String())
		sb.WriteRune('\n')
	}
	if len(m.globals) > 0 {
		sb.WriteRune('\n')
	}

	for _, e1 := range m.functions {
		sb.WriteString(e1.String())
		sb.WriteString("\n\n")
	}
	return sb.String()
}

// --------------------------
// ----- Global methods -----
// --------------------------

// Name returns the name of Global g.
func (g *Global) Name() string {
	return g.name
}

// SetName sets the name of Global g.
func (g *Global) SetName(name string) {
	g.name = name
}

// Type returns the pointer type of Global g. A global used as an operand is its address.
func (g *Global) Type() *types.Type {
	return g.typ
}

// ContentType returns the type of the value stored in Global g.
func (g *Global) ContentType() *types.Type {
	return g.content
}

// Ident returns the operand reference of Global g.
func (g *Global) Ident() string {
	return ident("@", g.name)
}

// Init returns the initialiser of Global g, or nil for declarations.
func (g *Global) Init() Constant {
	return g.init
}

// SetInit sets the initialiser of Global g. A nil initialiser turns g into a declaration.
func (g *Global) SetInit(c Constant) {
	g.init = c
}

// IsDeclaration returns true if Global g is defined in another module.
func (g *Global) IsDeclaration() bool {
	return g.init == nil
}

// Linkage returns the linkage of Global g.
func (g *Global) Linkage() types.Linkage {
	return g.linkage
}

// SetLinkage sets the linkage of Global g.
func (g *Global) SetLinkage(l types.Linkage) {
	g.linkage = l
}

// IsConstant returns true if Global g is never written.
func (g *Global) IsConstant() bool {
	return g.constant
}

// SetConstant marks Global g as read only.
func (g *Global) SetConstant(c bool) {
	g.constant = c
}

// String returns the textual IR representation of Global g.
func (g *Global) String() string {
	kind := "global"
	if g.constant {
		kind = "constant"
	}
	if g.IsDeclaration() {
		return fmt.Sprintf("%s = external %s %s", g.Ident(), kind, g.content.String())
	}
	link := ""
	if g.linkage == types.Internal {
		link = "internal "
	}
	return fmt.Sprintf("%s = %s%s %s %s", g.Ident(), link, kind, g.content.String(), g.init.Ident())
}
