package cil

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Opcode identifies a single target instruction encoding.
type Opcode uint

// opInfo describes an Opcode: its mnemonic, numeric encoding and stack behaviour. A negative pop or push count
// depends on the instruction's method signature.
type opInfo struct {
	name string
	code uint16
	pop  int
	push int
}

// ---------------------
// ----- Constants -----
// ---------------------

const (
	OpNop Opcode = iota
	OpBreak
	OpLdarg0
	OpLdarg1
	OpLdarg2
	OpLdarg3
	OpLdargS
	OpLdarg
	OpLdargaS
	OpLdarga
	OpStargS
	OpStarg
	OpLdloc0
	OpLdloc1
	OpLdloc2
	OpLdloc3
	OpLdlocS
	OpLdloc
	OpLdlocaS
	OpLdloca
	OpStloc0
	OpStloc1
	OpStloc2
	OpStloc3
	OpStlocS
	OpStloc
	OpLdcI4M1
	OpLdcI40
	OpLdcI41
	OpLdcI42
	OpLdcI43
	OpLdcI44
	OpLdcI45
	OpLdcI46
	OpLdcI47
	OpLdcI48
	OpLdcI4S
	OpLdcI4
	OpLdcI8
	OpLdcR4
	OpLdcR8
	OpDup
	OpPop
	OpCall
	OpCalli
	OpRet
	OpBrS
	OpBrfalseS
	OpBrtrueS
	OpBeqS
	OpBgeS
	OpBgtS
	OpBleS
	OpBltS
	OpBneUnS
	OpBgeUnS
	OpBgtUnS
	OpBleUnS
	OpBltUnS
	OpBr
	OpBrfalse
	OpBrtrue
	OpBeq
	OpBge
	OpBgt
	OpBle
	OpBlt
	OpBneUn
	OpBgeUn
	OpBgtUn
	OpBleUn
	OpBltUn
	OpLeaveS
	OpLeave
	OpLdindI1
	OpLdindU1
	OpLdindI2
	OpLdindU2
	OpLdindI4
	OpLdindU4
	OpLdindI8
	OpLdindI
	OpLdindR4
	OpLdindR8
	OpLdindRef
	OpStindRef
	OpStindI1
	OpStindI2
	OpStindI4
	OpStindI8
	OpStindR4
	OpStindR8
	OpStindI
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpDivUn
	OpRem
	OpRemUn
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr
	OpShrUn
	OpNeg
	OpNot
	OpAddOvf
	OpAddOvfUn
	OpSubOvf
	OpSubOvfUn
	OpMulOvf
	OpMulOvfUn
	OpConvI1
	OpConvI2
	OpConvI4
	OpConvI8
	OpConvR4
	OpConvR8
	OpConvU1
	OpConvU2
	OpConvU4
	OpConvU8
	OpConvI
	OpConvU
	OpConvRUn
	OpConvOvfI1
	OpConvOvfU1
	OpConvOvfI2
	OpConvOvfU2
	OpConvOvfI4
	OpConvOvfU4
	OpConvOvfI8
	OpConvOvfU8
	OpConvOvfI
	OpConvOvfU
	OpConvOvfI1Un
	OpConvOvfU1Un
	OpConvOvfI2Un
	OpConvOvfU2Un
	OpConvOvfI4Un
	OpConvOvfU4Un
	OpConvOvfI8Un
	OpConvOvfU8Un
	OpConvOvfIUn
	OpConvOvfUUn
	OpCeq
	OpCgt
	OpCgtUn
	OpClt
	OpCltUn
	OpLdftn
	OpLdsfld
	OpLdsflda
	OpStsfld
	OpLocalloc
)

// -------------------
// ----- Globals -----
// -------------------

// opTable describes every Opcode constant.
var opTable = [...]opInfo{
	OpNop:         {"nop", 0x00, 0, 0},
	OpBreak:       {"break", 0x01, 0, 0},
	OpLdarg0:      {"ldarg.0", 0x02, 0, 1},
	OpLdarg1:      {"ldarg.1", 0x03, 0, 1},
	OpLdarg2:      {"ldarg.2", 0x04, 0, 1},
	OpLdarg3:      {"ldarg.3", 0x05, 0, 1},
	OpLdargS:      {"ldarg.s", 0x0E, 0, 1},
	OpLdarg:       {"ldarg", 0xFE09, 0, 1},
	OpLdargaS:     {"ldarga.s", 0x0F, 0, 1},
	OpLdarga:      {"ldarga", 0xFE0A, 0, 1},
	OpStargS:      {"starg.s", 0x10, 1, 0},
	OpStarg:       {"starg", 0xFE0B, 1, 0},
	OpLdloc0:      {"ldloc.0", 0x06, 0, 1},
	OpLdloc1:      {"ldloc.1", 0x07, 0, 1},
	OpLdloc2:      {"ldloc.2", 0x08, 0, 1},
	OpLdloc3:      {"ldloc.3", 0x09, 0, 1},
	OpLdlocS:      {"ldloc.s", 0x11, 0, 1},
	OpLdloc:       {"ldloc", 0xFE0C, 0, 1},
	OpLdlocaS:     {"ldloca.s", 0x12, 0, 1},
	OpLdloca:      {"ldloca", 0xFE0D, 0, 1},
	OpStloc0:      {"stloc.0", 0x0A, 1, 0},
	OpStloc1:      {"stloc.1", 0x0B, 1, 0},
	OpStloc2:      {"stloc.2", 0x0C, 1, 0},
	OpStloc3:      {"stloc.3", 0x0D, 1, 0},
	OpStlocS:      {"stloc.s", 0x13, 1, 0},
	OpStloc:       {"stloc", 0xFE0E, 1, 0},
	OpLdcI4M1:     {"ldc.i4.m1", 0x15, 0, 1},
	OpLdcI40:      {"ldc.i4.0", 0x16, 0, 1},
	OpLdcI41:      {"ldc.i4.1", 0x17, 0, 1},
	OpLdcI42:      {"ldc.i4.2", 0x18, 0, 1},
	OpLdcI43:      {"ldc.i4.3", 0x19, 0, 1},
	OpLdcI44:      {"ldc.i4.4", 0x1A, 0, 1},
	OpLdcI45:      {"ldc.i4.5", 0x1B, 0, 1},
	OpLdcI46:      {"ldc.i4.6", 0x1C, 0, 1},
	OpLdcI47:      {"ldc.i4.7", 0x1D, 0, 1},
	OpLdcI48:      {"ldc.i4.8", 0x1E, 0, 1},
	OpLdcI4S:      {"ldc.i4.s", 0x1F, 0, 1},
	OpLdcI4:       {"ldc.i4", 0x20, 0, 1},
	OpLdcI8:       {"ldc.i8", 0x21, 0, 1},
	OpLdcR4:       {"ldc.r4", 0x22, 0, 1},
	OpLdcR8:       {"ldc.r8", 0x23, 0, 1},
	OpDup:         {"dup", 0x25, 1, 2},
	OpPop:         {"pop", 0x26, 1, 0},
	OpCall:        {"call", 0x28, -1, -1},
	OpCalli:       {"calli", 0x29, -1, -1},
	OpRet:         {"ret", 0x2A, -1, 0},
	OpBrS:         {"br.s", 0x2B, 0, 0},
	OpBrfalseS:    {"brfalse.s", 0x2C, 1, 0},
	OpBrtrueS:     {"brtrue.s", 0x2D, 1, 0},
	OpBeqS:        {"beq.s", 0x2E, 2, 0},
	OpBgeS:        {"bge.s", 0x2F, 2, 0},
	OpBgtS:        {"bgt.s", 0x30, 2, 0},
	OpBleS:        {"ble.s", 0x31, 2, 0},
	OpBltS:        {"blt.s", 0x32, 2, 0},
	OpBneUnS:      {"bne.un.s", 0x33, 2, 0},
	OpBgeUnS:      {"bge.un.s", 0x34, 2, 0},
	OpBgtUnS:      {"bgt.un.s", 0x35, 2, 0},
	OpBleUnS:      {"ble.un.s", 0x36, 2, 0},
	OpBltUnS:      {"blt.un.s", 0x37, 2, 0},
	OpBr:          {"br", 0x38, 0, 0},
	OpBrfalse:     {"brfalse", 0x39, 1, 0},
	OpBrtrue:      {"brtrue", 0x3A, 1, 0},
	OpBeq:         {"beq", 0x3B, 2, 0},
	OpBge:         {"bge", 0x3C, 2, 0},
	OpBgt:         {"bgt", 0x3D, 2, 0},
	OpBle:         {"ble", 0x3E, 2, 0},
	OpBlt:         {"blt", 0x3F, 2, 0},
	OpBneUn:       {"bne.un", 0x40, 2, 0},
	OpBgeUn:       {"bge.un", 0x41, 2, 0},
	OpBgtUn:       {"bgt.un", 0x42, 2, 0},
	OpBleUn:       {"ble.un", 0x43, 2, 0},
	OpBltUn:       {"blt.un", 0x44, 2, 0},
	OpLeaveS:      {"leave.s", 0xDE, 0, 0},
	OpLeave:       {"leave", 0xDD, 0, 0},
	OpLdindI1:     {"ldind.i1", 0x46, 1, 1},
	OpLdindU1:     {"ldind.u1", 0x47, 1, 1},
	OpLdindI2:     {"ldind.i2", 0x48, 1, 1},
	OpLdindU2:     {"ldind.u2", 0x49, 1, 1},
	OpLdindI4:     {"ldind.i4", 0x4A, 1, 1},
	OpLdindU4:     {"ldind.u4", 0x4B, 1, 1},
	OpLdindI8:     {"ldind.i8", 0x4C, 1, 1},
	OpLdindI:      {"ldind.i", 0x4D, 1, 1},
	OpLdindR4:     {"ldind.r4", 0x4E, 1, 1},
	OpLdindR8:     {"ldind.r8", 0x4F, 1, 1},
	OpLdindRef:    {"ldind.ref", 0x50, 1, 1},
	OpStindRef:    {"stind.ref", 0x51, 2, 0},
	OpStindI1:     {"stind.i1", 0x52, 2, 0},
	OpStindI2:     {"stind.i2", 0x53, 2, 0},
	OpStindI4:     {"stind.i4", 0x54, 2, 0},
	OpStindI8:     {"stind.i8", 0x55, 2, 0},
	OpStindR4:     {"stind.r4", 0x56, 2, 0},
	OpStindR8:     {"stind.r8", 0x57, 2, 0},
	OpStindI:      {"stind.i", 0xDF, 2, 0},
	OpAdd:         {"add", 0x58, 2, 1},
	OpSub:         {"sub", 0x59, 2, 1},
	OpMul:         {"mul", 0x5A, 2, 1},
	OpDiv:         {"div", 0x5B, 2, 1},
	OpDivUn:       {"div.un", 0x5C, 2, 1},
	OpRem:         {"rem", 0x5D, 2, 1},
	OpRemUn:       {"rem.un", 0x5E, 2, 1},
	OpAnd:         {"and", 0x5F, 2, 1},
	OpOr:          {"or", 0x60, 2, 1},
	OpXor:         {"xor", 0x61, 2, 1},
	OpShl:         {"shl", 0x62, 2, 1},
	OpShr:         {"shr", 0x63, 2, 1},
	OpShrUn:       {"shr.un", 0x64, 2, 1},
	OpNeg:         {"neg", 0x65, 1, 1},
	OpNot:         {"not", 0x66, 1, 1},
	OpAddOvf:      {"add.ovf", 0xD6, 2, 1},
	OpAddOvfUn:    {"add.ovf.un", 0xD7, 2, 1},
	OpSubOvf:      {"sub.ovf", 0xDA, 2, 1},
	OpSubOvfUn:    {"sub.ovf.un", 0xDB, 2, 1},
	OpMulOvf:      {"mul.ovf", 0xD8, 2, 1},
	OpMulOvfUn:    {"mul.ovf.un", 0xD9, 2, 1},
	OpConvI1:      {"conv.i1", 0x67, 1, 1},
	OpConvI2:      {"conv.i2", 0x68, 1, 1},
	OpConvI4:      {"conv.i4", 0x69, 1, 1},
	OpConvI8:      {"conv.i8", 0x6A, 1, 1},
	OpConvR4:      {"conv.r4", 0x6B, 1, 1},
	OpConvR8:      {"conv.r8", 0x6C, 1, 1},
	OpConvU1:      {"conv.u1", 0xD2, 1, 1},
	OpConvU2:      {"conv.u2", 0xD1, 1, 1},
	OpConvU4:      {"conv.u4", 0x6D, 1, 1},
	OpConvU8:      {"conv.u8", 0x6E, 1, 1},
	OpConvI:       {"conv.i", 0xD3, 1, 1},
	OpConvU:       {"conv.u", 0xE0, 1, 1},
	OpConvRUn:     {"conv.r.un", 0x76, 1, 1},
	OpConvOvfI1:   {"conv.ovf.i1", 0xB3, 1, 1},
	OpConvOvfU1:   {"conv.ovf.u1", 0xB4, 1, 1},
	OpConvOvfI2:   {"conv.ovf.i2", 0xB5, 1, 1},
	OpConvOvfU2:   {"conv.ovf.u2", 0xB6, 1, 1},
	OpConvOvfI4:   {"conv.ovf.i4", 0xB7, 1, 1},
	OpConvOvfU4:   {"conv.ovf.u4", 0xB8, 1, 1},
	OpConvOvfI8:   {"conv.ovf.i8", 0xB9, 1, 1},
	OpConvOvfU8:   {"conv.ovf.u8", 0xBA, 1, 1},
	OpConvOvfI:    {"conv.ovf.i", 0xD4, 1, 1},
	OpConvOvfU:    {"conv.ovf.u", 0xD5, 1, 1},
	OpConvOvfI1Un: {"conv.ovf.i1.un", 0x82, 1, 1},
	OpConvOvfU1Un: {"conv.ovf.u1.un", 0x86, 1, 1},
	OpConvOvfI2Un: {"conv.ovf.i2.un", 0x83, 1, 1},
	OpConvOvfU2Un: {"conv.ovf.u2.un", 0x87, 1, 1},
	OpConvOvfI4Un: {"conv.ovf.i4.un", 0x84, 1, 1},
	OpConvOvfU4Un: {"conv.ovf.u4.un", 0x88, 1, 1},
	OpConvOvfI8Un: {"conv.ovf.i8.un", 0x85, 1, 1},
	OpConvOvfU8Un: {"conv.ovf.u8.un", 0x89, 1, 1},
	OpConvOvfIUn:  {"conv.ovf.i.un", 0x8A, 1, 1},
	OpConvOvfUUn:  {"conv.ovf.u.un", 0x8B, 1, 1},
	OpCeq:         {"ceq", 0xFE01, 2, 1},
	OpCgt:         {"cgt", 0xFE02, 2, 1},
	OpCgtUn:       {"cgt.un", 0xFE03, 2, 1},
	OpClt:         {"clt", 0xFE04, 2, 1},
	OpCltUn:       {"clt.un", 0xFE05, 2, 1},
	OpLdftn:       {"ldftn", 0xFE06, 0, 1},
	OpLdsfld:      {"ldsfld", 0x7E, 0, 1},
	OpLdsflda:     {"ldsflda", 0x7F, 0, 1},
	OpStsfld:      {"stsfld", 0x80, 1, 0},
	OpLocalloc:    {"localloc", 0xFE0F, 1, 1},
}

// ---------------------
// ----- Functions -----
// ---------------------

// String returns the mnemonic of Opcode op.
func (op Opcode) String() string {
	return opTable[op].name
}

// Code returns the numeric encoding of Opcode op. Two byte opcodes carry the 0xFE prefix in the high byte.
func (op Opcode) Code() uint16 {
	return opTable[op].code
}

// Len returns the number of bytes the encoding of Opcode op occupies, excluding operands.
func (op Opcode) Len() int {
	if opTable[op].code > 0xFF {
		return 2
	}
	return 1
}
