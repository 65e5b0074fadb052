package cil

import (
	"cilc/src/ir/ssa/types"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Mapper maps source types to target types. Results are memoised per structural source type.
type Mapper struct {
	cache map[string]*Type
}

// ---------------------
// ----- Functions -----
// ---------------------

// NewMapper returns a Mapper with an empty cache.
func NewMapper() *Mapper {
	return &Mapper{cache: make(map[string]*Type, 32)}
}

// Map returns the target type of source type t. Integer widths other than 1, 8, 16, 32 and 64 fail with
// UnsupportedWidthError; struct, label and unknown types fail with UnsupportedTypeError. Integers map to signed
// target types, signedness is carried by the opcodes operating on them.
func (m *Mapper) Map(t *types.Type) (*Type, error) {
	key := t.String()
	if res, ok := m.cache[key]; ok {
		return res, nil
	}
	res, err := m.convert(t)
	if err != nil {
		return nil, err
	}
	m.cache[key] = res
	return res, nil
}

// convert maps t without consulting the cache for t itself.
func (m *Mapper) convert(t *types.Type) (*Type, error) {
	switch t.Kind {
	case types.VoidKind:
		return VoidType, nil
	case types.IntKind:
		switch t.Width {
		case 1:
			return BoolType, nil
		case 8:
			return Int8Type, nil
		case 16:
			return Int16Type, nil
		case 32:
			return Int32Type, nil
		case 64:
			return Int64Type, nil
		default:
			return nil, &UnsupportedWidthError{Width: t.Width}
		}
	case types.FloatKind:
		return Float32Type, nil
	case types.DoubleKind:
		return Float64Type, nil
	case types.PointerKind:
		elem, err := m.Map(t.Elem)
		if err != nil {
			return nil, err
		}
		return PointerTo(elem), nil
	case types.ArrayKind:
		elem, err := m.Map(t.Elem)
		if err != nil {
			return nil, err
		}
		return VectorOf(elem), nil
	case types.FuncKind:
		ret, err := m.Map(t.Ret)
		if err != nil {
			return nil, err
		}
		params := make([]*Type, len(t.Params))
		for i1, e1 := range t.Params {
			if params[i1], err = m.Map(e1); err != nil {
				return nil, err
			}
		}
		return FunctionOf(ret, t.Variadic, params...), nil
	case types.StructKind:
		return nil, &UnsupportedTypeError{Type: t.String(), Reason: "struct types have no target representation"}
	default:
		return nil, &UnsupportedTypeError{Type: t.String()}
	}
}
