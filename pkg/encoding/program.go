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

// Package encoding converts programs and word sequences between their
// in-memory forms and their serialized forms: the CBOR genome format for
// programs and big-endian word streams for machine I/O.
package encoding

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/gomlem/gomlem/pkg/machine"
)

// Wire forms are flat CBOR arrays, not maps, to keep genomes compact.
// Opcode and mode bytes are NOT validated on decode: a mutated genome
// must still load, and executes up to the point where the bad byte
// faults the machine.

type wireAddress struct {
	_     struct{} `cbor:",toarray"`
	Mode  uint8
	Reg   uint8
	Value uint64
}

type wireInstruction struct {
	_  struct{} `cbor:",toarray"`
	Op uint8
	A  wireAddress
	B  wireAddress
}

func toWireAddress(a machine.Address) wireAddress {
	return wireAddress{
		Mode:  uint8(a.Mode),
		Reg:   uint8(a.Reg),
		Value: a.Value,
	}
}

func fromWireAddress(w wireAddress) machine.Address {
	return machine.Address{
		Mode:  machine.Mode(w.Mode),
		Reg:   machine.Register(w.Reg),
		Value: w.Value,
	}
}

// EncodeProgram serializes a program to its CBOR genome form.
func EncodeProgram(p machine.Program) ([]byte, error) {
	wire := make([]wireInstruction, len(p))

	for i, ins := range p {
		wire[i] = wireInstruction{
			Op: uint8(ins.Op),
			A:  toWireAddress(ins.A),
			B:  toWireAddress(ins.B),
		}
	}

	return cbor.Marshal(wire)
}

// DecodeProgram deserializes a CBOR genome into a program. Structurally
// valid CBOR with out-of-range opcode or mode bytes decodes successfully;
// only malformed CBOR is an error here.
func DecodeProgram(data []byte) (machine.Program, error) {
	var wire []wireInstruction

	if err := cbor.Unmarshal(data, &wire); err != nil {
		return nil, err
	}

	program := make(machine.Program, len(wire))

	for i, ins := range wire {
		program[i] = machine.Instruction{
			Op: machine.Opcode(ins.Op),
			A:  fromWireAddress(ins.A),
			B:  fromWireAddress(ins.B),
		}
	}

	return program, nil
}
