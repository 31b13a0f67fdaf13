// Copyright (C) 2026  The gomlem authors

// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.

// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU General Public License for
// more details.

// You should have received a copy of the GNU General Public License along
// with this program.  If not, see <http://www.gnu.org/licenses/>.

package machine

// Word is one machine word. All registers, stack cells and I/O values are
// unsigned 64-bit; signed interpretations are two's complement views.
type Word = uint64

// Register names one of the machine's addressable registers. R0 through R7
// are the general purpose registers; SP and BP are the stack and base
// pointers, addressable like any other register.
type Register uint8

const (
	R0 Register = iota
	R1
	R2
	R3
	R4
	R5
	R6
	R7
	SP
	BP

	registerCount
)

// NumGPRs is the number of general purpose registers.
const NumGPRs = 8

var registerNames = [registerCount]string{
	"r0", "r1", "r2", "r3", "r4", "r5", "r6", "r7", "sp", "bp",
}

func (r Register) String() string {
	if r < registerCount {
		return registerNames[r]
	}
	return "r?"
}

// Mode selects how an Address resolves to a value or location.
type Mode uint8

const (
	// RegAbs reads or writes a register directly.
	RegAbs Mode = iota
	// StackAbs reads or writes the stack cell at an absolute offset.
	StackAbs
	// StackRel reads or writes the stack cell at BP plus a signed offset.
	StackRel
	// Immediate is a literal value. Writing through an Immediate faults.
	Immediate
)

// Address describes where an operand value is read from or written to.
// Reg is meaningful for RegAbs; Value holds the StackAbs offset, the
// StackRel offset (a two's complement signed delta from BP), or the
// Immediate literal.
type Address struct {
	Mode  Mode
	Reg   Register
	Value Word
}

// Reg addresses a register directly.
func Reg(r Register) Address {
	return Address{Mode: RegAbs, Reg: r}
}

// StackAt addresses the stack cell at an absolute offset.
func StackAt(offset Word) Address {
	return Address{Mode: StackAbs, Value: offset}
}

// RelBP addresses the stack cell at BP plus a signed offset.
func RelBP(offset int64) Address {
	return Address{Mode: StackRel, Value: Word(offset)}
}

// Imm is a read-only literal operand.
func Imm(value Word) Address {
	return Address{Mode: Immediate, Value: value}
}

// Opcode identifies an instruction's operation.
type Opcode uint8

const (
	OpNoOp Opcode = iota
	OpZero
	OpMove
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpPush
	OpPop
	OpJump
	OpJumpIfZero
	OpJumpNotZero
	OpJumpIfNeg
	OpCall
	OpReturn
	OpInput
	OpOutput
	OpHalt
	OpIllegal

	opcodeCount
)

var opcodeNames = [opcodeCount]string{
	"nop", "zero", "move", "add", "sub", "mul", "div", "mod",
	"push", "pop", "jump", "jz", "jnz", "jneg", "call", "ret",
	"input", "output", "halt", "illegal",
}

func (op Opcode) String() string {
	if op < opcodeCount {
		return opcodeNames[op]
	}
	return "op?"
}

// Operands reports how many Address operands the opcode carries. Opcodes
// outside the known table report zero; they fault when executed.
func (op Opcode) Operands() int {
	switch op {
	case OpMove, OpAdd, OpSub, OpMul, OpDiv, OpMod,
		OpJumpIfZero, OpJumpNotZero, OpJumpIfNeg:
		return 2
	case OpZero, OpPush, OpPop, OpJump, OpCall, OpInput, OpOutput:
		return 1
	default:
		return 0
	}
}

// Instruction is one decoded instruction. A is the first operand
// (destination where the opcode writes one), B the second.
type Instruction struct {
	Op Opcode
	A  Address
	B  Address
}

// Program is an immutable ordered instruction sequence. The machine only
// ever reads it; program and data spaces are disjoint.
type Program []Instruction

// MachineDebugger receives hooks from a running machine. Step is called
// before each fetch; StackRead and StackWrite after each stack cell access.
type MachineDebugger interface {
	Step(mc *Machine)
	StackRead(offset Word, mc *Machine)
	StackWrite(offset Word, mc *Machine)
}
