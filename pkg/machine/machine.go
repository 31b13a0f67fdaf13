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

// Package machine implements a 64-bit Harvard-architecture virtual machine
// for programs produced by evolutionary search. Programs are arbitrary
// instruction sequences: they may be malformed or never halt, so every
// operand access is bounds checked, every error is a terminal Outcome, and
// every run is bounded by a step budget. The machine never panics on any
// program/input pair.
package machine

// MachineState is the complete mutable state of one run: the registers,
// the two stack pointers, the program counter, the stack cells and the
// step count. The program, input and output live outside it; state is
// fresh per run.
type MachineState struct {
	Registers [NumGPRs]Word
	SP        Word
	BP        Word
	PC        Word
	Stack     []Word
	Steps     uint64
}

// Machine executes one program against one input sequence. It owns its
// state exclusively; concurrent runs need one Machine each.
type Machine struct {
	State    MachineState
	Debugger MachineDebugger

	config   Config
	program  Program
	input    []Word
	inputPos int
	output   []Word
}

// New builds a machine with zeroed state and an allocated stack. The zero
// Config selects DefaultStepLimit and DefaultStackCapacity.
func New(cfg Config) *Machine {
	mc := &Machine{config: cfg.withDefaults()}
	mc.State.Stack = make([]Word, mc.config.StackCapacity)
	return mc
}

// Reset returns the machine to its initial state: registers, SP, BP, PC and
// the step count zeroed, stack cells cleared, input rewound, output dropped.
func (mc *Machine) Reset() {
	for i := range mc.State.Registers {
		mc.State.Registers[i] = 0
	}

	for i := range mc.State.Stack {
		mc.State.Stack[i] = 0
	}

	mc.State.SP = 0
	mc.State.BP = 0
	mc.State.PC = 0
	mc.State.Steps = 0
	mc.inputPos = 0
	mc.output = nil
}

// LoadProgram installs the program and resets PC. The machine never writes
// to the program.
func (mc *Machine) LoadProgram(p Program) {
	mc.program = p
	mc.State.PC = 0
}

// LoadInput installs the input sequence and rewinds the cursor. Input is
// consumed front to back by Input instructions and never replenished.
func (mc *Machine) LoadInput(input []Word) {
	mc.input = input
	mc.inputPos = 0
}

// Program returns the loaded program.
func (mc *Machine) Program() Program { return mc.program }

// Config returns the machine's resource bounds.
func (mc *Machine) Config() Config { return mc.config }

// Output returns the values emitted so far, in emission order.
func (mc *Machine) Output() []Word { return mc.output }

// InputRemaining returns the not-yet-consumed tail of the input sequence.
func (mc *Machine) InputRemaining() []Word { return mc.input[mc.inputPos:] }

func (mc *Machine) readRegister(r Register) (Word, FaultKind) {
	switch {
	case r < NumGPRs:
		return mc.State.Registers[r], FaultNone
	case r == SP:
		return mc.State.SP, FaultNone
	case r == BP:
		return mc.State.BP, FaultNone
	}
	return 0, FaultInvalidAddress
}

func (mc *Machine) writeRegister(r Register, v Word) FaultKind {
	switch {
	case r < NumGPRs:
		mc.State.Registers[r] = v
	case r == SP:
		mc.State.SP = v
	case r == BP:
		mc.State.BP = v
	default:
		return FaultInvalidAddress
	}
	return FaultNone
}

func (mc *Machine) stackRead(offset Word) (Word, FaultKind) {
	if offset >= mc.config.StackCapacity {
		return 0, FaultInvalidAddress
	}

	v := mc.State.Stack[offset]

	if mc.Debugger != nil {
		mc.Debugger.StackRead(offset, mc)
	}

	return v, FaultNone
}

func (mc *Machine) stackWrite(offset Word, v Word) FaultKind {
	if offset >= mc.config.StackCapacity {
		return FaultInvalidAddress
	}

	mc.State.Stack[offset] = v

	if mc.Debugger != nil {
		mc.Debugger.StackWrite(offset, mc)
	}

	return FaultNone
}

// readAddr resolves an operand to its value. Unknown modes and out-of-range
// locations are faults, never undefined behavior.
func (mc *Machine) readAddr(a Address) (Word, FaultKind) {
	switch a.Mode {
	case RegAbs:
		return mc.readRegister(a.Reg)
	case StackAbs:
		return mc.stackRead(a.Value)
	case StackRel:
		// Signed offsets wrap; anything landing outside the stack fails
		// the capacity check.
		return mc.stackRead(mc.State.BP + a.Value)
	case Immediate:
		return a.Value, FaultNone
	}
	return 0, FaultInvalidAddress
}

// writeAddr resolves an operand to a location and stores v there. Writing
// through an Immediate is a fault.
func (mc *Machine) writeAddr(a Address, v Word) FaultKind {
	switch a.Mode {
	case RegAbs:
		return mc.writeRegister(a.Reg, v)
	case StackAbs:
		return mc.stackWrite(a.Value, v)
	case StackRel:
		return mc.stackWrite(mc.State.BP+a.Value, v)
	}
	return FaultInvalidAddress
}

func (mc *Machine) push(v Word) FaultKind {
	if mc.State.SP >= mc.config.StackCapacity {
		return FaultStackOverflow
	}

	mc.State.Stack[mc.State.SP] = v

	if mc.Debugger != nil {
		mc.Debugger.StackWrite(mc.State.SP, mc)
	}

	mc.State.SP++
	return FaultNone
}

func (mc *Machine) pop() (Word, FaultKind) {
	if mc.State.SP == 0 {
		return 0, FaultStackUnderflow
	}

	// SP is program-writable through RegAbs; a pop with SP parked beyond
	// the stack reads no valid cell.
	if mc.State.SP > mc.config.StackCapacity {
		return 0, FaultInvalidAddress
	}

	mc.State.SP--
	v := mc.State.Stack[mc.State.SP]

	if mc.Debugger != nil {
		mc.Debugger.StackRead(mc.State.SP, mc)
	}

	return v, FaultNone
}

// jump redirects PC. Targets outside the program fault instead of being
// taken.
func (mc *Machine) jump(target Word) Outcome {
	if target >= Word(len(mc.program)) {
		return Faulted(FaultPCOutOfBounds)
	}
	mc.State.PC = target
	return Continue
}

// arith executes a two-operand arithmetic instruction: A ← A op B with
// wrapping 64-bit semantics; Div and Mod fault on a zero divisor.
func (mc *Machine) arith(ins Instruction) FaultKind {
	a, kind := mc.readAddr(ins.A)
	if kind != FaultNone {
		return kind
	}

	b, kind := mc.readAddr(ins.B)
	if kind != FaultNone {
		return kind
	}

	var v Word

	switch ins.Op {
	case OpAdd:
		v = a + b
	case OpSub:
		v = a - b
	case OpMul:
		v = a * b
	case OpDiv:
		if b == 0 {
			return FaultDivisionByZero
		}
		v = a / b
	case OpMod:
		if b == 0 {
			return FaultDivisionByZero
		}
		v = a % b
	}

	return mc.writeAddr(ins.A, v)
}

// condJump executes a one-condition jump: PC ← B iff pred(A).
func (mc *Machine) condJump(ins Instruction, pred func(Word) bool) Outcome {
	cond, kind := mc.readAddr(ins.A)
	if kind != FaultNone {
		return Faulted(kind)
	}

	target, kind := mc.readAddr(ins.B)
	if kind != FaultNone {
		return Faulted(kind)
	}

	if pred(cond) {
		return mc.jump(target)
	}

	mc.State.PC++
	return Continue
}

// Step executes exactly one fetch-decode-execute cycle and returns Continue,
// Halted or a fault. It does not touch the step counter; Run owns the
// budget.
func (mc *Machine) Step() Outcome {
	if mc.Debugger != nil {
		mc.Debugger.Step(mc)
	}

	if mc.State.PC >= Word(len(mc.program)) {
		return Faulted(FaultPCOutOfBounds)
	}

	ins := mc.program[mc.State.PC]

	switch ins.Op {

	// NOP  |            | Advance PC
	case OpNoOp:

	// ZERO |dst         | dst ← 0
	case OpZero:
		if kind := mc.writeAddr(ins.A, 0); kind != FaultNone {
			return Faulted(kind)
		}

	// MOVE |dst, src    | dst ← src
	case OpMove:
		v, kind := mc.readAddr(ins.B)
		if kind != FaultNone {
			return Faulted(kind)
		}
		if kind := mc.writeAddr(ins.A, v); kind != FaultNone {
			return Faulted(kind)
		}

	// ADD  |dst, src    | dst ← dst + src (wrapping)
	// SUB  |dst, src    | dst ← dst - src (wrapping)
	// MUL  |dst, src    | dst ← dst * src (wrapping)
	// DIV  |dst, src    | dst ← dst / src; src = 0 faults
	// MOD  |dst, src    | dst ← dst % src; src = 0 faults
	case OpAdd, OpSub, OpMul, OpDiv, OpMod:
		if kind := mc.arith(ins); kind != FaultNone {
			return Faulted(kind)
		}

	// PUSH |src         | stack[SP] ← src; SP ← SP + 1
	case OpPush:
		v, kind := mc.readAddr(ins.A)
		if kind != FaultNone {
			return Faulted(kind)
		}
		if kind := mc.push(v); kind != FaultNone {
			return Faulted(kind)
		}

	// POP  |dst         | SP ← SP - 1; dst ← stack[SP]
	case OpPop:
		v, kind := mc.pop()
		if kind != FaultNone {
			return Faulted(kind)
		}
		if kind := mc.writeAddr(ins.A, v); kind != FaultNone {
			return Faulted(kind)
		}

	// JUMP |target      | PC ← target
	case OpJump:
		target, kind := mc.readAddr(ins.A)
		if kind != FaultNone {
			return Faulted(kind)
		}
		return mc.jump(target)

	// JZ   |cond, target| PC ← target iff cond = 0
	case OpJumpIfZero:
		return mc.condJump(ins, func(v Word) bool { return v == 0 })

	// JNZ  |cond, target| PC ← target iff cond ≠ 0
	case OpJumpNotZero:
		return mc.condJump(ins, func(v Word) bool { return v != 0 })

	// JNEG |cond, target| PC ← target iff cond < 0 (two's complement)
	case OpJumpIfNeg:
		return mc.condJump(ins, func(v Word) bool { return v>>63 == 1 })

	// CALL |target      | push PC+1; push BP; BP ← SP; PC ← target
	case OpCall:
		target, kind := mc.readAddr(ins.A)
		if kind != FaultNone {
			return Faulted(kind)
		}
		if target >= Word(len(mc.program)) {
			return Faulted(FaultPCOutOfBounds)
		}
		if kind := mc.push(mc.State.PC + 1); kind != FaultNone {
			return Faulted(kind)
		}
		if kind := mc.push(mc.State.BP); kind != FaultNone {
			return Faulted(kind)
		}
		mc.State.BP = mc.State.SP
		mc.State.PC = target
		return Continue

	// RET  |            | pop BP; pop PC
	case OpReturn:
		bp, kind := mc.pop()
		if kind != FaultNone {
			return Faulted(kind)
		}
		ret, kind := mc.pop()
		if kind != FaultNone {
			return Faulted(kind)
		}
		mc.State.BP = bp
		// A garbage return address faults at the next fetch.
		mc.State.PC = ret
		return Continue

	// IN   |dst         | dst ← next input value
	case OpInput:
		if mc.inputPos >= len(mc.input) {
			return Faulted(FaultInputExhausted)
		}
		if kind := mc.writeAddr(ins.A, mc.input[mc.inputPos]); kind != FaultNone {
			return Faulted(kind)
		}
		mc.inputPos++

	// OUT  |src         | append src to the output sequence
	case OpOutput:
		v, kind := mc.readAddr(ins.A)
		if kind != FaultNone {
			return Faulted(kind)
		}
		mc.output = append(mc.output, v)

	// HALT |            | Graceful termination
	case OpHalt:
		return Halted

	// Illegal and anything a mutated genome decoded to.
	default:
		return Faulted(FaultIllegalOpcode)
	}

	mc.State.PC++
	return Continue
}

// Run steps the machine until it halts, faults or spends its step budget.
// Each executed instruction, including the terminal one, costs one step.
func (mc *Machine) Run() Outcome {
	for {
		o := mc.Step()
		mc.State.Steps++

		if o.Kind != OutcomeContinue {
			return o
		}

		if mc.State.Steps >= mc.config.StepLimit {
			return StepLimitExceeded
		}
	}
}

// Result snapshots the run for external consumers. The stack snapshot is
// the live extent, cells [0, SP).
func (mc *Machine) Result(outcome Outcome) Result {
	res := Result{
		Outcome:   outcome,
		Steps:     mc.State.Steps,
		Registers: mc.State.Registers,
		SP:        mc.State.SP,
		BP:        mc.State.BP,
	}

	top := mc.State.SP
	if top > Word(len(mc.State.Stack)) {
		top = Word(len(mc.State.Stack))
	}

	res.Stack = make([]Word, top)
	copy(res.Stack, mc.State.Stack[:top])

	res.Output = make([]Word, len(mc.output))
	copy(res.Output, mc.output)

	return res
}

// Execute runs one program against one input on a fresh machine and returns
// the terminal outcome with the final state and output. Identical
// (program, input, config) triples yield identical Results.
func Execute(program Program, input []Word, cfg Config) Result {
	mc := New(cfg)
	mc.LoadProgram(program)
	mc.LoadInput(input)
	return mc.Result(mc.Run())
}
