package cil

import (
	"strings"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// CallConvKind is the kind of a method calling convention.
type CallConvKind uint

// CallConvAttr is the instance attribute of a method calling convention.
type CallConvAttr uint

// CallConv is a method calling convention. It is a plain value compared with ==.
type CallConv struct {
	Kind CallConvKind
	Attr CallConvAttr
}

// MethodRef names a method and its signature at a call site. Extra holds the types of the arguments passed in
// place of the variable argument list of vararg methods.
type MethodRef struct {
	CC     CallConv
	Ret    *Type
	Name   string
	Params []*Type
	Extra  []*Type
}

// ---------------------
// ----- Constants -----
// ---------------------

const (
	CallDefault CallConvKind = iota
	CallCdecl
	CallFastcall
	CallStdcall
	CallThiscall
	CallVararg
)

const (
	AttrNone CallConvAttr = iota
	AttrInstance
	AttrInstanceExplicit
)

// -------------------
// ----- Globals -----
// -------------------

// ccKind provides string literals for CallConvKind constants.
var ccKind = [...]string{
	"default",
	"unmanaged cdecl",
	"unmanaged fastcall",
	"unmanaged stdcall",
	"unmanaged thiscall",
	"vararg",
}

// ccAttr provides string literals for CallConvAttr constants.
var ccAttr = [...]string{
	"",
	"instance ",
	"instance explicit ",
}

// ---------------------
// ----- Functions -----
// ---------------------

// String returns the textual target representation of CallConv cc.
func (cc CallConv) String() string {
	return ccAttr[cc.Attr] + ccKind[cc.Kind]
}

// IsDefault returns true if CallConv cc is the default convention without attributes. The default convention is
// left out when printing method references.
func (cc CallConv) IsDefault() bool {
	return cc == CallConv{}
}

// Signature returns the function type described by MethodRef r.
func (r MethodRef) Signature() *Type {
	return FunctionOf(r.Ret, r.CC.Kind == CallVararg, r.Params...)
}

// String returns the textual target representation of MethodRef r as used by call and ldftn.
func (r MethodRef) String() string {
	sb := strings.Builder{}
	if !r.CC.IsDefault() {
		sb.WriteString(r.CC.String())
		sb.WriteRune(' ')
	}
	sb.WriteString(r.Ret.String())
	if len(r.Name) > 0 {
		sb.WriteRune(' ')
		sb.WriteString(quote(r.Name))
	}
	sb.WriteRune('(')
	sb.WriteString(r.params())
	sb.WriteRune(')')
	return sb.String()
}

// params returns the parameter list of MethodRef r, with the vararg sentinel before any extra argument types.
func (r MethodRef) params() string {
	s := typeList(r.Params)
	if len(r.Extra) == 0 {
		return s
	}
	if len(s) > 0 {
		s += ", "
	}
	return s + "..., " + typeList(r.Extra)
}
