package cil

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// simpleName matches identifiers the assembler accepts without quotes.
var simpleName = regexp.MustCompile("^[A-Za-z_$@?`][A-Za-z0-9_$@?`]*$")

// reserved holds assembler keywords and mnemonics that must be quoted when used as names.
var reserved = map[string]bool{
	"add": true, "and": true, "at": true, "bool": true, "br": true, "break": true, "call": true,
	"char": true, "class": true, "data": true, "default": true, "div": true, "dup": true, "explicit": true,
	"field": true, "float32": true, "float64": true, "instance": true, "int": true, "int16": true,
	"int32": true, "int64": true, "int8": true, "method": true, "mul": true, "native": true, "neg": true,
	"nop": true, "not": true, "object": true, "or": true, "pop": true, "private": true, "public": true,
	"rem": true, "ret": true, "sealed": true, "shl": true, "shr": true, "static": true, "string": true,
	"sub": true, "typedref": true, "unsigned": true, "value": true, "valuetype": true, "vararg": true,
	"void": true, "xor": true,
}

// quote returns name in NFC normal form, wrapped in single quotes unless it is a plain identifier.
func quote(name string) string {
	name = norm.NFC.String(name)
	if simpleName.MatchString(name) && !reserved[name] {
		return name
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(name) + "'"
}
