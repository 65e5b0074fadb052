package cil

import (
	"cilc/src/ir/ssa"
	"cilc/src/ir/ssa/types"
	"cilc/src/util"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Category is the storage class of a local slot.
type Category uint

// Slot identifies a local by its category and its index within that category.
type Slot struct {
	Cat   Category
	Index int
}

// Locals holds the local slots of one function. It is computed by Classify and discarded once the function has
// been emitted.
type Locals struct {
	slots map[*ssa.Instruction]Slot
	cats  [numCategories][]*ssa.Instruction
}

// ---------------------
// ----- Constants -----
// ---------------------

const (
	RegLocal Category = iota // Scalar stack allocation held directly in a local slot.
	IndLocal                 // Stack allocation that must be addressable memory.
	TmpLocal                 // Any other instruction result used at least once.
	numCategories
)

// -------------------
// ----- Globals -----
// -------------------

// catTyp provides string literals for Category constants.
var catTyp = [...]string{
	"register",
	"indirect",
	"temporary",
}

// catPrefix holds the name prefixes of anonymous locals per category.
var catPrefix = [...]string{
	util.PrefixRegLocal,
	util.PrefixIndLocal,
	util.PrefixTmpLocal,
}

// ---------------------
// ----- Functions -----
// ---------------------

// String provides a print friendly string representation of the Category.
func (c Category) String() string {
	return catTyp[c]
}

// Classify assigns a local slot to every instruction of function f with at least one use. A stack allocation is
// a register-local unless its block can be reached again from its own successors, in which case it is an
// indirect-local. Allocations of aggregates or of more than one element are always indirect-locals, since they
// need addressable memory. Every other used instruction is a temporary-local. Indices are dense per category in
// instruction order.
func Classify(f *ssa.Function) *Locals {
	l := &Locals{slots: make(map[*ssa.Instruction]Slot, 32)}
	reach := make(map[*ssa.Block]bool, len(f.Blocks()))
	for _, e1 := range f.Blocks() {
		for _, e2 := range e1.Instructions() {
			if e2.NumUses() < 1 {
				continue
			}
			cat := TmpLocal
			if e2.Opcode() == types.Alloca {
				r, ok := reach[e1]
				if !ok {
					r = IsReachable(e1)
					reach[e1] = r
				}
				if r || !isScalarAlloca(e2) {
					cat = IndLocal
				} else {
					cat = RegLocal
				}
			}
			l.slots[e2] = Slot{Cat: cat, Index: len(l.cats[cat])}
			l.cats[cat] = append(l.cats[cat], e2)
		}
	}
	return l
}

// isScalarAlloca returns true if the alloca inst allocates exactly one non-aggregate element.
func isScalarAlloca(inst *ssa.Instruction) bool {
	if inst.ElemType().IsAggregate() {
		return false
	}
	c, ok := inst.Operand(0).(*ssa.ConstInt)
	return ok && c.V == 1
}

// IsReachable returns true if block b can be reached from any of its successors. The search is breadth first
// over successor edges and visits every block at most once.
func IsReachable(b *ssa.Block) bool {
	visited := make(map[*ssa.Block]bool, 16)
	q := util.Queue{}
	for _, e1 := range b.Successors() {
		if !visited[e1] {
			visited[e1] = true
			q.Push(e1)
		}
	}
	for q.Size() > 0 {
		cur := q.Pop().(*ssa.Block)
		if cur == b {
			return true
		}
		for _, e1 := range cur.Successors() {
			if !visited[e1] {
				visited[e1] = true
				q.Push(e1)
			}
		}
	}
	return false
}

// Slot returns the slot of instruction inst and true, or false if inst has no slot.
func (l *Locals) Slot(inst *ssa.Instruction) (Slot, bool) {
	s, ok := l.slots[inst]
	return s, ok
}

// Category returns the instructions of category c in index order.
func (l *Locals) Category(c Category) []*ssa.Instruction {
	return l.cats[c]
}

// Len returns the total number of slots.
func (l *Locals) Len() int {
	return len(l.slots)
}

// Frame returns the index of slot s in the method's local variable frame. Register-locals come first, followed
// by indirect-locals and temporaries.
func (l *Locals) Frame(s Slot) int {
	base := 0
	for c := Category(0); c < s.Cat; c++ {
		base += len(l.cats[c])
	}
	return base + s.Index
}

// AssignNames gives every anonymous block, argument and local of function f a name. Blocks are numbered by a
// per-function counter, arguments by position and locals by their index within their category. Existing names
// are never replaced, so naming a function twice changes nothing.
func AssignNames(f *ssa.Function, l *Locals) {
	blocks := util.NewNamer(util.PrefixBlock)
	for _, e1 := range f.Blocks() {
		if len(e1.Name()) == 0 {
			e1.SetName(blocks.Next())
		}
	}
	args := util.NewNamer(util.PrefixArgument)
	for _, e1 := range f.Params() {
		if len(e1.Name()) == 0 {
			e1.SetName(args.Name(e1.Index()))
		}
	}
	for c := Category(0); c < numCategories; c++ {
		n := util.NewNamer(catPrefix[c])
		for i1, e1 := range l.cats[c] {
			if len(e1.Name()) == 0 {
				e1.SetName(n.Name(i1))
			}
		}
	}
}
