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

import "fmt"

// FaultKind names the reason execution could not continue safely.
type FaultKind uint8

const (
	FaultNone FaultKind = iota
	FaultStackOverflow
	FaultStackUnderflow
	FaultDivisionByZero
	FaultInvalidAddress
	FaultPCOutOfBounds
	FaultInputExhausted
	FaultIllegalOpcode

	faultKindCount
)

var faultNames = [faultKindCount]string{
	"none",
	"stack overflow",
	"stack underflow",
	"division by zero",
	"invalid address",
	"program counter out of bounds",
	"input exhausted",
	"illegal opcode",
}

func (k FaultKind) String() string {
	if k < faultKindCount {
		return faultNames[k]
	}
	return "unknown fault"
}

// OutcomeKind classifies a step or run result.
type OutcomeKind uint8

const (
	// OutcomeContinue: the machine can keep running. Never returned by Run.
	OutcomeContinue OutcomeKind = iota
	// OutcomeHalt: a Halt instruction executed.
	OutcomeHalt
	// OutcomeFault: execution cannot continue safely.
	OutcomeFault
	// OutcomeStepLimit: the step budget was spent without halting.
	OutcomeStepLimit
)

// Outcome is the terminal classification of a run. Fault is meaningful only
// when Kind is OutcomeFault.
type Outcome struct {
	Kind  OutcomeKind
	Fault FaultKind
}

// Continue is the intermediate per-step result.
var Continue = Outcome{Kind: OutcomeContinue}

// Halted is the outcome of a graceful Halt.
var Halted = Outcome{Kind: OutcomeHalt}

// StepLimitExceeded is the outcome of an exhausted step budget.
var StepLimitExceeded = Outcome{Kind: OutcomeStepLimit}

// Faulted builds a fault outcome.
func Faulted(kind FaultKind) Outcome {
	return Outcome{Kind: OutcomeFault, Fault: kind}
}

func (o Outcome) String() string {
	switch o.Kind {
	case OutcomeContinue:
		return "continue"
	case OutcomeHalt:
		return "halt"
	case OutcomeFault:
		return fmt.Sprintf("fault: %s", o.Fault)
	case OutcomeStepLimit:
		return "step limit exceeded"
	}
	return "unknown outcome"
}

// Result is everything externally observable about one finished run.
// Stack holds the live extent, cells [0, SP).
type Result struct {
	Outcome   Outcome
	Steps     uint64
	Registers [NumGPRs]Word
	SP        Word
	BP        Word
	Stack     []Word
	Output    []Word
}
