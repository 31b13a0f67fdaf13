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

package machine_test

import (
	"math"
	"reflect"
	"testing"

	"github.com/gomlem/gomlem/pkg/machine"
)

type testMachineState struct {
	Registers [machine.NumGPRs]machine.Word
	SP        machine.Word
	BP        machine.Word
	PC        machine.Word
	Stack     map[machine.Word]machine.Word
}

type testCase struct {
	Name    string
	Steps   uint
	Config  machine.Config
	Program machine.Program
	Input   []machine.Word
	Output  []machine.Word
	Outcome machine.Outcome
	Before  testMachineState
	After   testMachineState
}

func testMachineStep(t *testing.T, test *testCase) {
	mc := machine.New(test.Config)
	mc.LoadProgram(test.Program)
	mc.LoadInput(test.Input)

	mc.State.Registers = test.Before.Registers
	mc.State.SP = test.Before.SP
	mc.State.BP = test.Before.BP
	mc.State.PC = test.Before.PC

	for offset, value := range test.Before.Stack {
		mc.State.Stack[offset] = value
	}

	if test.Steps == 0 {
		test.Steps = 1
	}

	outcome := machine.Continue

	for i := uint(0); i < test.Steps; i++ {
		outcome = mc.Step()
		if outcome.Kind != machine.OutcomeContinue {
			break
		}
	}

	if outcome != test.Outcome {
		t.Errorf(
			"Outcome mismatch\nwant:%v (test.Outcome)\nhave:%v",
			test.Outcome,
			outcome,
		)
	}

	for i := 0; i < machine.NumGPRs; i++ {
		want := test.After.Registers[i]
		have := mc.State.Registers[i]
		if have != want {
			t.Errorf(
				"Register mismatch"+
					"\nwant:%#016x (test.After.Registers[%d])\nhave:%#016x",
				want,
				i,
				have,
			)
		}
	}

	if mc.State.SP != test.After.SP {
		t.Errorf(
			"SP mismatch\nwant:%d (test.After.SP)\nhave:%d",
			test.After.SP,
			mc.State.SP,
		)
	}

	if mc.State.BP != test.After.BP {
		t.Errorf(
			"BP mismatch\nwant:%d (test.After.BP)\nhave:%d",
			test.After.BP,
			mc.State.BP,
		)
	}

	if mc.State.PC != test.After.PC {
		t.Errorf(
			"PC mismatch\nwant:%d (test.After.PC)\nhave:%d",
			test.After.PC,
			mc.State.PC,
		)
	}

	for offset, value := range mc.State.Stack {
		before, hadBefore := test.Before.Stack[machine.Word(offset)]
		after, wantAfter := test.After.Stack[machine.Word(offset)]

		if wantAfter {
			if value != after {
				t.Fatalf(
					"Stack cell mismatch"+
						"\nwant:%d (test.After.Stack[%d])\nhave:%d",
					after,
					offset,
					value,
				)
			}
		} else if hadBefore {
			if value != before {
				t.Fatalf(
					"Stack cell mismatch"+
						"\nwant:%d (test.Before.Stack[%d])\nhave:%d",
					before,
					offset,
					value,
				)
			}
		} else if value != 0 {
			t.Fatalf(
				"Stack cell unexpectedly changed"+
					"\nwant:0 (stack[%d])\nhave:%d",
				offset,
				value,
			)
		}
	}

	if !reflect.DeepEqual(mc.Output(), test.Output) &&
		!(len(mc.Output()) == 0 && len(test.Output) == 0) {
		t.Errorf(
			"Output mismatch\nwant:%v (test.Output)\nhave:%v",
			test.Output,
			mc.Output(),
		)
	}
}

func testSteps(t *testing.T, tests []testCase) {
	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			testMachineStep(t, &test)
		})
	}
}

// ADD  |dst, src    | dst ← dst + src (wrapping)
// SUB  |dst, src    | dst ← dst - src (wrapping)
// MUL  |dst, src    | dst ← dst * src (wrapping)
func TestArithmetic(t *testing.T) {
	testSteps(t, []testCase{
		{
			Name: "ADD Registers",
			Program: machine.Program{
				{Op: machine.OpAdd, A: machine.Reg(machine.R0), B: machine.Reg(machine.R1)},
				{Op: machine.OpHalt},
			},
			Before: testMachineState{
				Registers: [8]machine.Word{0: 2, 1: 3},
			},
			After: testMachineState{
				Registers: [8]machine.Word{0: 5, 1: 3},
				PC:        1,
			},
		},
		{
			Name: "ADD Wraparound",
			Program: machine.Program{
				{Op: machine.OpAdd, A: machine.Reg(machine.R0), B: machine.Reg(machine.R1)},
				{Op: machine.OpHalt},
			},
			Before: testMachineState{
				Registers: [8]machine.Word{0: math.MaxUint64, 1: 1},
			},
			After: testMachineState{
				Registers: [8]machine.Word{0: 0, 1: 1},
				PC:        1,
			},
		},
		{
			Name: "ADD Immediate",
			Program: machine.Program{
				{Op: machine.OpAdd, A: machine.Reg(machine.R3), B: machine.Imm(40)},
				{Op: machine.OpHalt},
			},
			Before: testMachineState{
				Registers: [8]machine.Word{3: 2},
			},
			After: testMachineState{
				Registers: [8]machine.Word{3: 42},
				PC:        1,
			},
		},
		{
			Name: "SUB Wraparound",
			Program: machine.Program{
				{Op: machine.OpSub, A: machine.Reg(machine.R0), B: machine.Imm(1)},
				{Op: machine.OpHalt},
			},
			After: testMachineState{
				Registers: [8]machine.Word{0: math.MaxUint64},
				PC:        1,
			},
		},
		{
			Name: "MUL Registers",
			Program: machine.Program{
				{Op: machine.OpMul, A: machine.Reg(machine.R0), B: machine.Reg(machine.R0)},
				{Op: machine.OpHalt},
			},
			Before: testMachineState{
				Registers: [8]machine.Word{0: 12},
			},
			After: testMachineState{
				Registers: [8]machine.Word{0: 144},
				PC:        1,
			},
		},
	})
}

// DIV  |dst, src    | dst ← dst / src; src = 0 faults
// MOD  |dst, src    | dst ← dst % src; src = 0 faults
func TestDivision(t *testing.T) {
	testSteps(t, []testCase{
		{
			Name: "DIV Registers",
			Program: machine.Program{
				{Op: machine.OpDiv, A: machine.Reg(machine.R0), B: machine.Imm(4)},
				{Op: machine.OpHalt},
			},
			Before: testMachineState{
				Registers: [8]machine.Word{0: 42},
			},
			After: testMachineState{
				Registers: [8]machine.Word{0: 10},
				PC:        1,
			},
		},
		{
			Name: "MOD Registers",
			Program: machine.Program{
				{Op: machine.OpMod, A: machine.Reg(machine.R0), B: machine.Imm(4)},
				{Op: machine.OpHalt},
			},
			Before: testMachineState{
				Registers: [8]machine.Word{0: 42},
			},
			After: testMachineState{
				Registers: [8]machine.Word{0: 2},
				PC:        1,
			},
		},
		{
			Name: "DIV Zero Divisor",
			Program: machine.Program{
				{Op: machine.OpDiv, A: machine.Reg(machine.R0), B: machine.Reg(machine.R1)},
			},
			Before: testMachineState{
				Registers: [8]machine.Word{0: 42},
			},
			After: testMachineState{
				Registers: [8]machine.Word{0: 42},
			},
			Outcome: machine.Faulted(machine.FaultDivisionByZero),
		},
		{
			Name: "MOD Zero Divisor",
			Program: machine.Program{
				{Op: machine.OpMod, A: machine.Reg(machine.R0), B: machine.Imm(0)},
			},
			Outcome: machine.Faulted(machine.FaultDivisionByZero),
		},
	})
}

// MOVE |dst, src    | dst ← src
// ZERO |dst         | dst ← 0
func TestMove(t *testing.T) {
	testSteps(t, []testCase{
		{
			Name: "MOVE Immediate To Register",
			Program: machine.Program{
				{Op: machine.OpMove, A: machine.Reg(machine.R5), B: machine.Imm(0xDEADBEEF)},
				{Op: machine.OpHalt},
			},
			After: testMachineState{
				Registers: [8]machine.Word{5: 0xDEADBEEF},
				PC:        1,
			},
		},
		{
			Name: "MOVE Register To Stack",
			Program: machine.Program{
				{Op: machine.OpMove, A: machine.StackAt(3), B: machine.Reg(machine.R1)},
				{Op: machine.OpHalt},
			},
			Before: testMachineState{
				Registers: [8]machine.Word{1: 7},
			},
			After: testMachineState{
				Registers: [8]machine.Word{1: 7},
				Stack:     map[machine.Word]machine.Word{3: 7},
				PC:        1,
			},
		},
		{
			Name: "MOVE BP Relative",
			Program: machine.Program{
				{Op: machine.OpMove, A: machine.Reg(machine.R0), B: machine.RelBP(-2)},
				{Op: machine.OpHalt},
			},
			Before: testMachineState{
				BP:    10,
				Stack: map[machine.Word]machine.Word{8: 99},
			},
			After: testMachineState{
				Registers: [8]machine.Word{0: 99},
				BP:        10,
				Stack:     map[machine.Word]machine.Word{8: 99},
				PC:        1,
			},
		},
		{
			Name: "MOVE To Immediate Faults",
			Program: machine.Program{
				{Op: machine.OpMove, A: machine.Imm(1), B: machine.Reg(machine.R0)},
			},
			Outcome: machine.Faulted(machine.FaultInvalidAddress),
		},
		{
			Name: "MOVE Stack Out Of Range Faults",
			Config: machine.Config{
				StackCapacity: 16,
			},
			Program: machine.Program{
				{Op: machine.OpMove, A: machine.Reg(machine.R0), B: machine.StackAt(16)},
			},
			Outcome: machine.Faulted(machine.FaultInvalidAddress),
		},
		{
			Name: "MOVE BP Relative Underflow Faults",
			Program: machine.Program{
				{Op: machine.OpMove, A: machine.Reg(machine.R0), B: machine.RelBP(-1)},
			},
			Outcome: machine.Faulted(machine.FaultInvalidAddress),
		},
		{
			Name: "ZERO Register",
			Program: machine.Program{
				{Op: machine.OpZero, A: machine.Reg(machine.R2)},
				{Op: machine.OpHalt},
			},
			Before: testMachineState{
				Registers: [8]machine.Word{2: 0xCAFE},
			},
			After: testMachineState{
				PC: 1,
			},
		},
		{
			Name: "MOVE SP As Register",
			Program: machine.Program{
				{Op: machine.OpMove, A: machine.Reg(machine.SP), B: machine.Imm(4)},
				{Op: machine.OpHalt},
			},
			After: testMachineState{
				SP: 4,
				PC: 1,
			},
		},
	})
}

// PUSH |src         | stack[SP] ← src; SP ← SP + 1
// POP  |dst         | SP ← SP - 1; dst ← stack[SP]
func TestStack(t *testing.T) {
	testSteps(t, []testCase{
		{
			Name: "PUSH",
			Program: machine.Program{
				{Op: machine.OpPush, A: machine.Imm(11)},
				{Op: machine.OpHalt},
			},
			After: testMachineState{
				SP:    1,
				Stack: map[machine.Word]machine.Word{0: 11},
				PC:    1,
			},
		},
		{
			Name: "POP",
			Program: machine.Program{
				{Op: machine.OpPop, A: machine.Reg(machine.R0)},
				{Op: machine.OpHalt},
			},
			Before: testMachineState{
				SP:    1,
				Stack: map[machine.Word]machine.Word{0: 11},
			},
			After: testMachineState{
				Registers: [8]machine.Word{0: 11},
				Stack:     map[machine.Word]machine.Word{0: 11},
				PC:        1,
			},
		},
		{
			Name: "PUSH Full Stack Faults",
			Config: machine.Config{
				StackCapacity: 2,
			},
			Program: machine.Program{
				{Op: machine.OpPush, A: machine.Imm(1)},
			},
			Before: testMachineState{
				SP: 2,
			},
			After: testMachineState{
				SP: 2,
			},
			Outcome: machine.Faulted(machine.FaultStackOverflow),
		},
		{
			Name: "POP Empty Stack Faults",
			Program: machine.Program{
				{Op: machine.OpPop, A: machine.Reg(machine.R0)},
			},
			Outcome: machine.Faulted(machine.FaultStackUnderflow),
		},
		{
			Name: "POP With Corrupted SP Faults",
			Config: machine.Config{
				StackCapacity: 8,
			},
			Steps: 2,
			Program: machine.Program{
				{Op: machine.OpMove, A: machine.Reg(machine.SP), B: machine.Imm(1000)},
				{Op: machine.OpPop, A: machine.Reg(machine.R0)},
			},
			After: testMachineState{
				SP: 1000,
				PC: 1,
			},
			Outcome: machine.Faulted(machine.FaultInvalidAddress),
		},
	})
}

// JUMP |target      | PC ← target
// JZ   |cond, target| PC ← target iff cond = 0
// JNZ  |cond, target| PC ← target iff cond ≠ 0
// JNEG |cond, target| PC ← target iff cond < 0 (two's complement)
func TestJumps(t *testing.T) {
	testSteps(t, []testCase{
		{
			Name: "JUMP",
			Program: machine.Program{
				{Op: machine.OpJump, A: machine.Imm(2)},
				{Op: machine.OpHalt},
				{Op: machine.OpHalt},
			},
			After: testMachineState{
				PC: 2,
			},
		},
		{
			Name: "JUMP Register Target",
			Program: machine.Program{
				{Op: machine.OpJump, A: machine.Reg(machine.R7)},
				{Op: machine.OpHalt},
				{Op: machine.OpHalt},
			},
			Before: testMachineState{
				Registers: [8]machine.Word{7: 1},
			},
			After: testMachineState{
				Registers: [8]machine.Word{7: 1},
				PC:        1,
			},
		},
		{
			Name: "JUMP Out Of Bounds Faults",
			Program: machine.Program{
				{Op: machine.OpJump, A: machine.Imm(3)},
			},
			Outcome: machine.Faulted(machine.FaultPCOutOfBounds),
		},
		{
			Name: "JZ Taken",
			Program: machine.Program{
				{Op: machine.OpJumpIfZero, A: machine.Reg(machine.R0), B: machine.Imm(2)},
				{Op: machine.OpHalt},
				{Op: machine.OpHalt},
			},
			After: testMachineState{
				PC: 2,
			},
		},
		{
			Name: "JZ Not Taken",
			Program: machine.Program{
				{Op: machine.OpJumpIfZero, A: machine.Reg(machine.R0), B: machine.Imm(2)},
				{Op: machine.OpHalt},
				{Op: machine.OpHalt},
			},
			Before: testMachineState{
				Registers: [8]machine.Word{0: 1},
			},
			After: testMachineState{
				Registers: [8]machine.Word{0: 1},
				PC:        1,
			},
		},
		{
			Name: "JNZ Taken",
			Program: machine.Program{
				{Op: machine.OpJumpNotZero, A: machine.Imm(5), B: machine.Imm(2)},
				{Op: machine.OpHalt},
				{Op: machine.OpHalt},
			},
			After: testMachineState{
				PC: 2,
			},
		},
		{
			Name: "JNEG Taken",
			Program: machine.Program{
				{Op: machine.OpJumpIfNeg, A: machine.Reg(machine.R0), B: machine.Imm(2)},
				{Op: machine.OpHalt},
				{Op: machine.OpHalt},
			},
			Before: testMachineState{
				Registers: [8]machine.Word{0: math.MaxUint64}, // -1
			},
			After: testMachineState{
				Registers: [8]machine.Word{0: math.MaxUint64},
				PC:        2,
			},
		},
		{
			Name: "JNEG Not Taken",
			Program: machine.Program{
				{Op: machine.OpJumpIfNeg, A: machine.Imm(1), B: machine.Imm(2)},
				{Op: machine.OpHalt},
				{Op: machine.OpHalt},
			},
			After: testMachineState{
				PC: 1,
			},
		},
	})
}

// CALL |target      | push PC+1; push BP; BP ← SP; PC ← target
// RET  |            | pop BP; pop PC
func TestCallReturn(t *testing.T) {
	testSteps(t, []testCase{
		{
			Name: "CALL",
			Program: machine.Program{
				{Op: machine.OpCall, A: machine.Imm(2)},
				{Op: machine.OpHalt},
				{Op: machine.OpHalt},
			},
			Before: testMachineState{
				BP: 0,
			},
			After: testMachineState{
				SP: 2,
				BP: 2,
				PC: 2,
				Stack: map[machine.Word]machine.Word{
					0: 1, // return address
					1: 0, // saved BP
				},
			},
		},
		{
			Name: "CALL Then RET",
			Steps: 2,
			Program: machine.Program{
				{Op: machine.OpCall, A: machine.Imm(2)},
				{Op: machine.OpHalt},
				{Op: machine.OpReturn},
			},
			After: testMachineState{
				SP:    0,
				BP:    0,
				PC:    1,
				Stack: map[machine.Word]machine.Word{0: 1},
			},
		},
		{
			Name: "CALL Out Of Bounds Faults",
			Program: machine.Program{
				{Op: machine.OpCall, A: machine.Imm(9)},
			},
			Outcome: machine.Faulted(machine.FaultPCOutOfBounds),
		},
		{
			Name: "CALL Full Stack Faults",
			Config: machine.Config{
				StackCapacity: 1,
			},
			Program: machine.Program{
				{Op: machine.OpCall, A: machine.Imm(0)},
			},
			After: testMachineState{
				SP:    1,
				Stack: map[machine.Word]machine.Word{0: 1},
			},
			Outcome: machine.Faulted(machine.FaultStackOverflow),
		},
		{
			Name: "RET Empty Stack Faults",
			Program: machine.Program{
				{Op: machine.OpReturn},
			},
			Outcome: machine.Faulted(machine.FaultStackUnderflow),
		},
		{
			Name: "RET Garbage Address Faults At Fetch",
			Steps: 2,
			Program: machine.Program{
				{Op: machine.OpReturn},
			},
			Before: testMachineState{
				SP: 2,
				Stack: map[machine.Word]machine.Word{
					0: 500, // bogus return address
					1: 7,   // saved BP
				},
			},
			After: testMachineState{
				BP:    7,
				PC:    500,
				Stack: map[machine.Word]machine.Word{0: 500, 1: 7},
			},
			Outcome: machine.Faulted(machine.FaultPCOutOfBounds),
		},
	})
}

// IN   |dst         | dst ← next input value
// OUT  |src         | append src to the output sequence
func TestInputOutput(t *testing.T) {
	testSteps(t, []testCase{
		{
			Name:  "IN Consumes FIFO",
			Steps: 2,
			Input: []machine.Word{10, 20},
			Program: machine.Program{
				{Op: machine.OpInput, A: machine.Reg(machine.R0)},
				{Op: machine.OpInput, A: machine.Reg(machine.R1)},
				{Op: machine.OpHalt},
			},
			After: testMachineState{
				Registers: [8]machine.Word{0: 10, 1: 20},
				PC:        2,
			},
		},
		{
			Name: "IN Exhausted Faults",
			Program: machine.Program{
				{Op: machine.OpInput, A: machine.Reg(machine.R0)},
			},
			Outcome: machine.Faulted(machine.FaultInputExhausted),
		},
		{
			Name:   "OUT Appends",
			Steps:  2,
			Output: []machine.Word{0xCAFE, 0xCAFE},
			Program: machine.Program{
				{Op: machine.OpOutput, A: machine.Imm(0xCAFE)},
				{Op: machine.OpOutput, A: machine.Imm(0xCAFE)},
				{Op: machine.OpHalt},
			},
			After: testMachineState{
				PC: 2,
			},
		},
	})
}

func TestTermination(t *testing.T) {
	testSteps(t, []testCase{
		{
			Name: "HALT",
			Program: machine.Program{
				{Op: machine.OpHalt},
			},
			Outcome: machine.Halted,
		},
		{
			Name: "NOP Advances",
			Program: machine.Program{
				{Op: machine.OpNoOp},
				{Op: machine.OpHalt},
			},
			After: testMachineState{
				PC: 1,
			},
		},
		{
			Name: "Illegal Instruction Faults",
			Program: machine.Program{
				{Op: machine.OpIllegal},
			},
			Outcome: machine.Faulted(machine.FaultIllegalOpcode),
		},
		{
			Name: "Unknown Opcode Faults",
			Program: machine.Program{
				{Op: machine.Opcode(0xFF)},
			},
			Outcome: machine.Faulted(machine.FaultIllegalOpcode),
		},
		{
			Name:    "Empty Program Faults",
			Program: machine.Program{},
			Outcome: machine.Faulted(machine.FaultPCOutOfBounds),
		},
		{
			Name:  "Running Off The End Faults",
			Steps: 2,
			Program: machine.Program{
				{Op: machine.OpNoOp},
			},
			After: testMachineState{
				PC: 1,
			},
			Outcome: machine.Faulted(machine.FaultPCOutOfBounds),
		},
	})
}

// The README scenario: read four values, add the first pair, subtract the
// second, emit both results.
func TestWorkedExample(t *testing.T) {
	program := machine.Program{
		{Op: machine.OpInput, A: machine.Reg(machine.R0)},
		{Op: machine.OpInput, A: machine.Reg(machine.R1)},
		{Op: machine.OpInput, A: machine.Reg(machine.R2)},
		{Op: machine.OpInput, A: machine.Reg(machine.R3)},
		{Op: machine.OpAdd, A: machine.Reg(machine.R0), B: machine.Reg(machine.R1)},
		{Op: machine.OpSub, A: machine.Reg(machine.R2), B: machine.Reg(machine.R3)},
		{Op: machine.OpOutput, A: machine.Reg(machine.R0)},
		{Op: machine.OpOutput, A: machine.Reg(machine.R2)},
		{Op: machine.OpHalt},
	}

	res := machine.Execute(program, []machine.Word{2, 2, 2, 2}, machine.Config{})

	if res.Outcome != machine.Halted {
		t.Fatalf("Program did not halt: %v", res.Outcome)
	}

	if want := []machine.Word{4, 0}; !reflect.DeepEqual(res.Output, want) {
		t.Fatalf("Output mismatch\nwant:%v\nhave:%v", want, res.Output)
	}
}

func TestInputExhaustion(t *testing.T) {
	program := machine.Program{
		{Op: machine.OpInput, A: machine.Reg(machine.R0)},
		{Op: machine.OpInput, A: machine.Reg(machine.R1)},
		{Op: machine.OpInput, A: machine.Reg(machine.R2)},
		{Op: machine.OpInput, A: machine.Reg(machine.R3)},
		{Op: machine.OpInput, A: machine.Reg(machine.R4)},
		{Op: machine.OpHalt},
	}

	res := machine.Execute(program, []machine.Word{2, 2, 2, 2}, machine.Config{})

	if want := machine.Faulted(machine.FaultInputExhausted); res.Outcome != want {
		t.Fatalf("Outcome mismatch\nwant:%v\nhave:%v", want, res.Outcome)
	}
}

// A single Jump 0 loops forever; the step budget is the only way out, and
// it is spent after exactly StepLimit steps.
func TestStepLimit(t *testing.T) {
	program := machine.Program{
		{Op: machine.OpJump, A: machine.Imm(0)},
	}

	res := machine.Execute(program, nil, machine.Config{StepLimit: 100})

	if res.Outcome != machine.StepLimitExceeded {
		t.Fatalf("Outcome mismatch\nwant:%v\nhave:%v",
			machine.StepLimitExceeded, res.Outcome)
	}

	if res.Steps != 100 {
		t.Fatalf("Step count mismatch\nwant:100\nhave:%d", res.Steps)
	}
}

func TestStackOverflowDiscipline(t *testing.T) {
	const capacity = 8

	// capacity+1 pushes with no pops; the last one must overflow.
	program := make(machine.Program, 0, capacity+2)
	for i := 0; i < capacity+1; i++ {
		program = append(program, machine.Instruction{
			Op: machine.OpPush, A: machine.Imm(machine.Word(i)),
		})
	}
	program = append(program, machine.Instruction{Op: machine.OpHalt})

	res := machine.Execute(program, nil, machine.Config{StackCapacity: capacity})

	if want := machine.Faulted(machine.FaultStackOverflow); res.Outcome != want {
		t.Fatalf("Outcome mismatch\nwant:%v\nhave:%v", want, res.Outcome)
	}

	if res.SP != capacity {
		t.Fatalf("SP mismatch\nwant:%d\nhave:%d", capacity, res.SP)
	}
}

func TestDeterminism(t *testing.T) {
	program := machine.Program{
		{Op: machine.OpInput, A: machine.Reg(machine.R0)},
		{Op: machine.OpMove, A: machine.Reg(machine.R1), B: machine.Imm(10)},
		{Op: machine.OpMul, A: machine.Reg(machine.R0), B: machine.Reg(machine.R0)},
		{Op: machine.OpPush, A: machine.Reg(machine.R0)},
		{Op: machine.OpSub, A: machine.Reg(machine.R1), B: machine.Imm(1)},
		{Op: machine.OpJumpNotZero, A: machine.Reg(machine.R1), B: machine.Imm(2)},
		{Op: machine.OpPop, A: machine.Reg(machine.R2)},
		{Op: machine.OpOutput, A: machine.Reg(machine.R2)},
		{Op: machine.OpHalt},
	}
	input := []machine.Word{3}

	first := machine.Execute(program, input, machine.Config{})
	second := machine.Execute(program, input, machine.Config{})

	if !reflect.DeepEqual(first, second) {
		t.Fatalf(
			"Identical runs diverged\nfirst:%+v\nsecond:%+v",
			first,
			second,
		)
	}
}

// Every opcode and operand mode value, in range or not, must produce a
// defined Outcome rather than a panic.
func TestTotality(t *testing.T) {
	operands := []machine.Address{
		machine.Reg(machine.R0),
		machine.Reg(machine.SP),
		machine.Reg(machine.Register(0xEE)),
		machine.StackAt(0),
		machine.StackAt(math.MaxUint64),
		machine.RelBP(-1),
		machine.Imm(0),
		{Mode: machine.Mode(0x7F), Value: 123},
	}

	cfg := machine.Config{StepLimit: 64, StackCapacity: 16}

	for op := 0; op < 64; op++ {
		for _, a := range operands {
			for _, b := range operands {
				program := machine.Program{
					{Op: machine.Opcode(op), A: a, B: b},
					{Op: machine.OpHalt},
				}

				res := machine.Execute(program, []machine.Word{1}, cfg)

				if res.Outcome.Kind == machine.OutcomeContinue {
					t.Fatalf(
						"Run ended in Continue\nop:%d a:%+v b:%+v",
						op,
						a,
						b,
					)
				}
			}
		}
	}
}
