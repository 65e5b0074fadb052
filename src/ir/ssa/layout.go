package ssa

import (
	"strconv"
	"strings"

	"cilc/src/ir/ssa/types"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// DataLayout answers size and alignment queries for source types on the target.
type DataLayout struct {
	PointerSize int // Size of pointers in bytes.
}

// ---------------------
// ----- Constants -----
// ---------------------

// defaultPointerSize is the pointer size in bytes assumed when the module does not specify one.
const defaultPointerSize = 8

// ---------------------
// ----- Functions -----
// ---------------------

// DefaultLayout returns the data layout of a 64-bit target.
func DefaultLayout() DataLayout {
	return DataLayout{PointerSize: defaultPointerSize}
}

// ParseDataLayout reads the pointer size of address space 0 from an LLVM data layout string such as
// "e-m:e-p:32:32-i64:64". Unknown or missing pointer entries fall back to the default layout.
func ParseDataLayout(s string) DataLayout {
	dl := DefaultLayout()
	for _, e1 := range strings.Split(s, "-") {
		if !strings.HasPrefix(e1, "p:") && !strings.HasPrefix(e1, "p0:") {
			continue
		}
		fields := strings.Split(e1, ":")
		if len(fields) < 2 {
			continue
		}
		if bits, err := strconv.Atoi(fields[1]); err == nil && bits > 0 && bits%8 == 0 {
			dl.PointerSize = bits / 8
		}
	}
	return dl
}

// SizeOf returns the number of bytes between successive values of type t in memory, including alignment padding.
func (dl DataLayout) SizeOf(t *types.Type) int {
	switch t.Kind {
	case types.IntKind:
		return alignTo(storeSize(t.Width), dl.AlignOf(t))
	case types.FloatKind:
		return 4
	case types.DoubleKind:
		return 8
	case types.PointerKind:
		return dl.PointerSize
	case types.ArrayKind:
		return t.Len * dl.SizeOf(t.Elem)
	case types.StructKind:
		size := 0
		for _, e1 := range t.Fields {
			if !t.Packed {
				size = alignTo(size, dl.AlignOf(e1))
			}
			size += dl.SizeOf(e1)
		}
		return alignTo(size, dl.AlignOf(t))
	default:
		return 0
	}
}

// AlignOf returns the ABI alignment of type t in bytes.
func (dl DataLayout) AlignOf(t *types.Type) int {
	switch t.Kind {
	case types.IntKind:
		a := 1
		for a < storeSize(t.Width) {
			a <<= 1
		}
		if a > 8 {
			a = 8
		}
		return a
	case types.FloatKind:
		return 4
	case types.DoubleKind:
		return 8
	case types.PointerKind:
		return dl.PointerSize
	case types.ArrayKind:
		return dl.AlignOf(t.Elem)
	case types.StructKind:
		if t.Packed {
			return 1
		}
		a := 1
		for _, e1 := range t.Fields {
			if fa := dl.AlignOf(e1); fa > a {
				a = fa
			}
		}
		return a
	default:
		return 1
	}
}

// FieldOffset returns the byte offset of field i within struct type t.
func (dl DataLayout) FieldOffset(t *types.Type, i int) int {
	offset := 0
	for i1 := 0; i1 <= i && i1 < len(t.Fields); i1++ {
		if !t.Packed {
			offset = alignTo(offset, dl.AlignOf(t.Fields[i1]))
		}
		if i1 < i {
			offset += dl.SizeOf(t.Fields[i1])
		}
	}
	return offset
}

// storeSize returns the number of bytes needed to hold an integer of the given bit width.
func storeSize(width int) int {
	return (width + 7) / 8
}

// alignTo rounds n up to the next multiple of a.
func alignTo(n, a int) int {
	if a <= 1 {
		return n
	}
	return (n + a - 1) / a * a
}
