package ssa

import (
	"fmt"
	"strings"

	"cilc/src/ir/ssa/types"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Instruction is a single SSA instruction. The meaning of operands, targets and the element type depends on the
// opcode:
//
//	alloca         operands [count], elem is the allocated type
//	load           operands [src]
//	store          operands [value, dst]
//	getelementptr  operands [src, indices...], elem is the source element type
//	binary, cmp    operands [x, y]
//	cast           operands [value]
//	select         operands [cond, x, y]
//	call           operands [callee, args...], elem is the callee signature
//	phi            operands [values...], targets [incoming blocks...]
//	ret            operands [] or [value]
//	br             targets [dst]
//	condbr         operands [cond], targets [true, false]
type Instruction struct {
	b        *Block          // Parent basic block.
	op       types.Opcode    // Instruction opcode.
	name     string          // Optional name of the result.
	typ      *types.Type     // Result type. types.Void for instructions without a result.
	elem     *types.Type     // Opcode specific auxiliary type.
	pred     types.Predicate // Comparison predicate of icmp and fcmp.
	operands []Value         // Input values.
	targets  []*Block        // Successor or incoming basic blocks.
	uses     int             // Number of operand slots referring to this instruction.
}

// ---------------------
// ----- Functions -----
// ---------------------

// Parent returns the basic block holding Instruction inst.
func (inst *Instruction) Parent() *Block {
	return inst.b
}

// Opcode returns the opcode of Instruction inst.
func (inst *Instruction) Opcode() types.Opcode {
	return inst.op
}

// Name returns the name of the result of Instruction inst.
func (inst *Instruction) Name() string {
	return inst.name
}

// SetName sets the name of the result of Instruction inst.
func (inst *Instruction) SetName(name string) {
	inst.name = name
}

// Type returns the result type of Instruction inst.
func (inst *Instruction) Type() *types.Type {
	return inst.typ
}

// Ident returns the operand reference of the result of Instruction inst.
func (inst *Instruction) Ident() string {
	return ident("%", inst.name)
}

// HasResult returns true if Instruction inst produces a value.
func (inst *Instruction) HasResult() bool {
	return !inst.typ.IsVoid()
}

// Operands returns the input values of Instruction inst.
func (inst *Instruction) Operands() []Value {
	return inst.operands
}

// Operand returns the n-th input value of Instruction inst.
func (inst *Instruction) Operand(n int) Value {
	return inst.operands[n]
}

// Targets returns the successor blocks of a branch, or the incoming blocks of a phi.
func (inst *Instruction) Targets() []*Block {
	return inst.targets
}

// Predicate returns the comparison predicate of an icmp or fcmp Instruction inst.
func (inst *Instruction) Predicate() types.Predicate {
	return inst.pred
}

// ElemType returns the allocated type of an alloca, the source element type of a getelementptr or the callee
// signature of a call.
func (inst *Instruction) ElemType() *types.Type {
	return inst.elem
}

// NumUses returns the number of operand slots that refer to the result of Instruction inst.
func (inst *Instruction) NumUses() int {
	return inst.uses
}

// Callee returns the called value of a call instruction.
func (inst *Instruction) Callee() Value {
	return inst.operands[0]
}

// Args returns the arguments of a call instruction.
func (inst *Instruction) Args() []Value {
	return inst.operands[1:]
}

// AddIncoming adds an incoming value and its predecessor block to a phi instruction.
func (inst *Instruction) AddIncoming(v Value, pred *Block) {
	if inst.op != types.Phi {
		panic(fmt.Sprintf("cannot add incoming value to %s instruction", inst.op.String()))
	}
	inst.operands = append(inst.operands, v)
	inst.targets = append(inst.targets, pred)
	use(v)
}

// String returns the textual IR representation of Instruction inst.
func (inst *Instruction) String() string {
	sb := strings.Builder{}
	if inst.HasResult() {
		sb.WriteString(inst.Ident())
		sb.WriteString(" = ")
	}
	sb.WriteString(inst.op.String())

	switch inst.op {
	case types.Alloca:
		sb.WriteString(fmt.Sprintf(" %s, %s", inst.elem.String(), typed(inst.operands[0])))
	case types.Load:
		sb.WriteString(fmt.Sprintf(" %s, %s", inst.typ.String(), typed(inst.operands[0])))
	case types.GetElementPtr:
		sb.WriteString(fmt.Sprintf(" %s", inst.elem.String()))
		for _, e1 := range inst.operands {
			sb.WriteString(", " + typed(e1))
		}
	case types.ICmp, types.FCmp:
		sb.WriteString(fmt.Sprintf(" %s %s, %s", inst.pred.String(), typed(inst.operands[0]), inst.operands[1].Ident()))
	case types.Call:
		sb.WriteString(fmt.Sprintf(" %s %s(", inst.typ.String(), inst.operands[0].Ident()))
		for i1, e1 := range inst.operands[1:] {
			if i1 > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(typed(e1))
		}
		sb.WriteRune(')')
	case types.Phi:
		sb.WriteString(" " + inst.typ.String())
		for i1, e1 := range inst.operands {
			if i1 > 0 {
				sb.WriteRune(',')
			}
			sb.WriteString(fmt.Sprintf(" [ %s, %s ]", e1.Ident(), inst.targets[i1].Ident()))
		}
	case types.Br:
		sb.WriteString(" label " + inst.targets[0].Ident())
	case types.CondBr:
		sb.WriteString(fmt.Sprintf(" %s, label %s, label %s", typed(inst.operands[0]),
			inst.targets[0].Ident(), inst.targets[1].Ident()))
	case types.Ret:
		if len(inst.operands) == 0 {
			sb.WriteString(" void")
		} else {
			sb.WriteString(" " + typed(inst.operands[0]))
		}
	default:
		if inst.op.IsBinary() {
			sb.WriteString(fmt.Sprintf(" %s, %s", typed(inst.operands[0]), inst.operands[1].Ident()))
			break
		}
		for i1, e1 := range inst.operands {
			if i1 > 0 {
				sb.WriteRune(',')
			}
			sb.WriteString(" " + typed(e1))
		}
		if inst.op.IsCast() {
			sb.WriteString(" to " + inst.typ.String())
		}
	}
	return sb.String()
}

// typed returns the operand reference of v prefixed by its type.
func typed(v Value) string {
	return v.Type().String() + " " + v.Ident()
}

// use records a use of v if v is an instruction result.
func use(v Value) {
	if inst, ok := v.(*Instruction); ok {
		inst.uses++
	}
}
