package ssa

import (
	"fmt"
	"strings"

	"cilc/src/ir/ssa/types"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Block defines a basic block. A basic block is a sequence of instructions that is terminated by a branch
// instruction, a return instruction or unreachable.
type Block struct {
	f     *Function      // Parent function that owns the basic block.
	name  string         // Optional label of the basic block.
	insts []*Instruction // Instructions in the basic block.
}

// ---------------------
// ----- Functions -----
// ---------------------

// Name returns the label of Block b.
func (b *Block) Name() string {
	return b.name
}

// SetName sets the label of Block b.
func (b *Block) SetName(name string) {
	b.name = name
}

// Ident returns the label reference of Block b.
func (b *Block) Ident() string {
	return ident("%", b.name)
}

// Parent returns the function owning Block b.
func (b *Block) Parent() *Function {
	return b.f
}

// Instructions returns the instructions of Block b.
func (b *Block) Instructions() []*Instruction {
	return b.insts
}

// Terminator returns the last instruction of Block b if it terminates the block, else nil.
func (b *Block) Terminator() *Instruction {
	if len(b.insts) == 0 {
		return nil
	}
	if last := b.insts[len(b.insts)-1]; last.op.IsTerminator() {
		return last
	}
	return nil
}

// Successors returns the basic blocks control may flow to from Block b, in terminator operand order.
func (b *Block) Successors() []*Block {
	term := b.Terminator()
	if term == nil {
		return nil
	}
	return term.targets
}

// Predecessors returns the basic blocks of the parent function that may branch to Block b.
func (b *Block) Predecessors() []*Block {
	res := make([]*Block, 0, 2)
	for _, e1 := range b.f.blocks {
		for _, e2 := range e1.Successors() {
			if e2 == b {
				res = append(res, e1)
				break
			}
		}
	}
	return res
}

// String returns the textual IR representation of all instructions in Block b.
func (b *Block) String() string {
	sb := strings.Builder{}
	if len(b.name) > 0 {
		sb.WriteString(fmt.Sprintf("%s:\n", b.name))
	}
	for _, e1 := range b.insts {
		sb.WriteString("  ")
		sb.WriteString(e1.String())
		sb.WriteRune('\n')
	}
	if b.Terminator() == nil {
		sb.WriteString("  ; error: basic block is not terminated\n")
	}
	return sb.String()
}

// add appends inst to Block b and records the uses of its operands.
func (b *Block) add(inst *Instruction) *Instruction {
	if b.Terminator() != nil {
		panic(fmt.Sprintf("function %s, block %s: cannot append %s after terminator",
			b.f.Name(), b.Name(), inst.op.String()))
	}
	inst.b = b
	if inst.typ == nil {
		inst.typ = types.Void
	}
	for _, e1 := range inst.operands {
		use(e1)
	}
	b.insts = append(b.insts, inst)
	return inst
}

// -------------------------------
// ----- Memory instructions -----
// -------------------------------

// NewAlloca creates a stack allocation of count elements of type elem. A nil count allocates one element.
func (b *Block) NewAlloca(elem *types.Type, count Value) *Instruction {
	if count == nil {
		count = NewInt(types.I32, 1)
	}
	return b.add(&Instruction{
		op:       types.Alloca,
		typ:      types.NewPointer(elem),
		elem:     elem,
		operands: []Value{count},
	})
}

// NewLoad creates a load of a value of type typ from the address src.
func (b *Block) NewLoad(typ *types.Type, src Value) *Instruction {
	return b.add(&Instruction{
		op:       types.Load,
		typ:      typ,
		operands: []Value{src},
	})
}

// NewStore creates a store of val to the address dst.
func (b *Block) NewStore(val, dst Value) *Instruction {
	return b.add(&Instruction{
		op:       types.Store,
		operands: []Value{val, dst},
	})
}

// NewGetElementPtr creates an address computation over src, which points to values of type elem. The first index
// steps over whole elements of src; every following index steps into an array element or a struct field. Struct
// field indices must be constant integers.
func (b *Block) NewGetElementPtr(elem *types.Type, src Value, indices ...Value) *Instruction {
	cur := elem
	for i1, e1 := range indices {
		if i1 == 0 {
			continue
		}
		switch cur.Kind {
		case types.ArrayKind:
			cur = cur.Elem
		case types.StructKind:
			c, ok := e1.(*ConstInt)
			if !ok || c.V < 0 || int(c.V) >= len(cur.Fields) {
				panic(fmt.Sprintf("getelementptr: invalid struct field index %s into %s", e1.Ident(), cur.String()))
			}
			cur = cur.Fields[c.V]
		default:
			panic(fmt.Sprintf("getelementptr: cannot index into %s", cur.String()))
		}
	}
	operands := make([]Value, 0, len(indices)+1)
	operands = append(operands, src)
	operands = append(operands, indices...)
	return b.add(&Instruction{
		op:       types.GetElementPtr,
		typ:      types.NewPointer(cur),
		elem:     elem,
		operands: operands,
	})
}

// -----------------------------
// ----- Data instructions -----
// -----------------------------

// NewBinOp creates a binary arithmetic or bitwise instruction. The result has the type of x.
func (b *Block) NewBinOp(op types.Opcode, x, y Value) *Instruction {
	if !op.IsBinary() {
		panic(fmt.Sprintf("%s is not a binary operation", op.String()))
	}
	return b.add(&Instruction{
		op:       op,
		typ:      x.Type(),
		operands: []Value{x, y},
	})
}

// NewICmp creates an integer or pointer comparison yielding an i1.
func (b *Block) NewICmp(pred types.Predicate, x, y Value) *Instruction {
	if pred.IsFloat() {
		panic(fmt.Sprintf("icmp: unexpected floating point predicate %s", pred.String()))
	}
	return b.add(&Instruction{
		op:       types.ICmp,
		typ:      types.I1,
		pred:     pred,
		operands: []Value{x, y},
	})
}

// NewFCmp creates a floating point comparison yielding an i1.
func (b *Block) NewFCmp(pred types.Predicate, x, y Value) *Instruction {
	if !pred.IsFloat() {
		panic(fmt.Sprintf("fcmp: unexpected integer predicate %s", pred.String()))
	}
	return b.add(&Instruction{
		op:       types.FCmp,
		typ:      types.I1,
		pred:     pred,
		operands: []Value{x, y},
	})
}

// NewCast creates a conversion of v to type to.
func (b *Block) NewCast(op types.Opcode, v Value, to *types.Type) *Instruction {
	if !op.IsCast() {
		panic(fmt.Sprintf("%s is not a cast operation", op.String()))
	}
	return b.add(&Instruction{
		op:       op,
		typ:      to,
		operands: []Value{v},
	})
}

// NewSelect creates a selection between x and y on cond.
func (b *Block) NewSelect(cond, x, y Value) *Instruction {
	return b.add(&Instruction{
		op:       types.Select,
		typ:      x.Type(),
		operands: []Value{cond, x, y},
	})
}

// NewCall creates a call of callee with signature sig.
func (b *Block) NewCall(sig *types.Type, callee Value, args ...Value) *Instruction {
	if sig.Kind != types.FuncKind {
		panic(fmt.Sprintf("call: expected function signature, got %s", sig.String()))
	}
	operands := make([]Value, 0, len(args)+1)
	operands = append(operands, callee)
	operands = append(operands, args...)
	return b.add(&Instruction{
		op:       types.Call,
		typ:      sig.Ret,
		elem:     sig,
		operands: operands,
	})
}

// NewPhi creates a phi node of type typ. Incoming values are added with AddIncoming.
func (b *Block) NewPhi(typ *types.Type) *Instruction {
	return b.add(&Instruction{
		op:  types.Phi,
		typ: typ,
	})
}

// -------------------------------
// ----- Branch instructions -----
// -------------------------------

// NewRet creates a return instruction, terminating Block b. A nil val returns void.
func (b *Block) NewRet(val Value) *Instruction {
	inst := &Instruction{op: types.Ret}
	if val != nil {
		inst.operands = []Value{val}
	}
	return b.add(inst)
}

// NewBr creates an unconditional branch to dst, terminating Block b.
func (b *Block) NewBr(dst *Block) *Instruction {
	return b.add(&Instruction{
		op:      types.Br,
		targets: []*Block{dst},
	})
}

// NewCondBr creates a conditional branch to thn if cond is true and to els otherwise, terminating Block b.
func (b *Block) NewCondBr(cond Value, thn, els *Block) *Instruction {
	return b.add(&Instruction{
		op:       types.CondBr,
		operands: []Value{cond},
		targets:  []*Block{thn, els},
	})
}

// NewUnreachable marks the end of Block b as unreachable.
func (b *Block) NewUnreachable() *Instruction {
	return b.add(&Instruction{op: types.Unreachable})
}
