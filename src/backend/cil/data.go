package cil

import (
	"fmt"
	"math"
	"strings"

	"cilc/src/ir/ssa"
	"cilc/src/ir/ssa/types"
)

// dataItems flattens the initialiser c of type t into typed data items. Nested arrays and structs are flattened
// recursively; struct padding is written as zero bytes. Zero and undefined aggregates become one repeated zero
// byte item.
func (e *Emitter) dataItems(t *types.Type, c ssa.Constant) ([]string, error) {
	switch c := c.(type) {
	case *ssa.ConstInt:
		return []string{intItem(t.Width, c.V)}, nil
	case *ssa.ConstFloat:
		return []string{floatItem(t.Kind == types.FloatKind, c.V)}, nil
	case *ssa.ConstNull:
		return []string{intItem(8*e.layout.PointerSize, 0)}, nil
	case *ssa.ConstZero, *ssa.ConstUndef:
		return e.zeroItems(t)
	case *ssa.ConstArray:
		items := make([]string, 0, len(c.Elems))
		for _, e1 := range c.Elems {
			sub, err := e.dataItems(t.Elem, e1)
			if err != nil {
				return nil, err
			}
			items = append(items, sub...)
		}
		return items, nil
	case *ssa.ConstStruct:
		items := make([]string, 0, 2*len(c.Fields))
		pos := 0
		for i1, e1 := range c.Fields {
			if off := e.layout.FieldOffset(t, i1); off > pos {
				items = append(items, padItem(off-pos))
				pos = off
			}
			sub, err := e.dataItems(t.Fields[i1], e1)
			if err != nil {
				return nil, err
			}
			items = append(items, sub...)
			pos += e.layout.SizeOf(t.Fields[i1])
		}
		if size := e.layout.SizeOf(t); size > pos {
			items = append(items, padItem(size-pos))
		}
		return items, nil
	default:
		return nil, &UnsupportedTypeError{Type: t.String(), Reason: "initialiser " + c.Ident() + " has no data representation"}
	}
}

// zeroItems returns the data items of the zero value of type t.
func (e *Emitter) zeroItems(t *types.Type) ([]string, error) {
	switch t.Kind {
	case types.IntKind:
		return []string{intItem(t.Width, 0)}, nil
	case types.FloatKind, types.DoubleKind:
		return []string{floatItem(t.Kind == types.FloatKind, 0)}, nil
	case types.PointerKind:
		return []string{intItem(8*e.layout.PointerSize, 0)}, nil
	case types.ArrayKind, types.StructKind:
		if size := e.layout.SizeOf(t); size > 0 {
			return []string{padItem(size)}, nil
		}
		return nil, nil
	default:
		return nil, &UnsupportedTypeError{Type: t.String(), Reason: "no zero data"}
	}
}

// intItem returns the data item of an integer of the given bit width.
func intItem(width int, v int64) string {
	switch {
	case width == 1:
		if v != 0 {
			return "int8(1)"
		}
		return "int8(0)"
	case width <= 8:
		return fmt.Sprintf("int8(%d)", int8(v))
	case width <= 16:
		return fmt.Sprintf("int16(%d)", int16(v))
	case width <= 32:
		return fmt.Sprintf("int32(%d)", int32(v))
	default:
		return fmt.Sprintf("int64(%d)", v)
	}
}

// floatItem returns the data item of a single or double precision float. Infinities and NaNs are written as
// integers of the same bit pattern.
func floatItem(single bool, v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		if single {
			return fmt.Sprintf("int32(%d)", int32(math.Float32bits(float32(v))))
		}
		return fmt.Sprintf("int64(%d)", int64(math.Float64bits(v)))
	}
	if single {
		return "float32(" + formatFloat(float64(float32(v)), 32) + ")"
	}
	return "float64(" + formatFloat(v, 64) + ")"
}

// padItem returns n zero bytes as a single data item.
func padItem(n int) string {
	if n == 1 {
		return "int8(0)"
	}
	return fmt.Sprintf("int8(0) [%d]", n)
}

// dataBody returns the text following "=" of a .data directive. Aggregates are written as an item list, one item
// per line.
func dataBody(items []string, aggregate bool) string {
	if !aggregate {
		return " " + strings.Join(items, " ") + "\n"
	}
	if len(items) == 0 {
		return " { }\n"
	}
	sb := strings.Builder{}
	sb.WriteRune('\n')
	for i1, e1 := range items {
		if i1 == 0 {
			sb.WriteString("  { ")
		} else {
			sb.WriteString("  , ")
		}
		sb.WriteString(e1)
		sb.WriteRune('\n')
	}
	sb.WriteString("  }\n")
	return sb.String()
}
