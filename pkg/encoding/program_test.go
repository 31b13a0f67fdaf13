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

package encoding_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gomlem/gomlem/pkg/encoding"
	"github.com/gomlem/gomlem/pkg/machine"
)

func TestProgramRoundTrip(t *testing.T) {
	program := machine.Program{
		{Op: machine.OpInput, A: machine.Reg(machine.R0)},
		{Op: machine.OpMove, A: machine.RelBP(-2), B: machine.Imm(math.MaxUint64)},
		{Op: machine.OpAdd, A: machine.Reg(machine.SP), B: machine.StackAt(7)},
		{Op: machine.OpJumpNotZero, A: machine.Reg(machine.R3), B: machine.Imm(0)},
		{Op: machine.OpHalt},
	}

	data, err := encoding.EncodeProgram(program)
	require.NoError(t, err)

	decoded, err := encoding.DecodeProgram(data)
	require.NoError(t, err)

	require.Equal(t, program, decoded)
}

func TestProgramEmptyRoundTrip(t *testing.T) {
	data, err := encoding.EncodeProgram(machine.Program{})
	require.NoError(t, err)

	decoded, err := encoding.DecodeProgram(data)
	require.NoError(t, err)
	require.Empty(t, decoded)
}

// A mutated genome with bytes outside the opcode and mode tables must decode;
// rejecting it here would make the byte unreachable by the machine's own
// fault path.
func TestProgramLenientDecode(t *testing.T) {
	program := machine.Program{
		{
			Op: machine.Opcode(0xEE),
			A:  machine.Address{Mode: machine.Mode(0x7F), Reg: 0x99, Value: 1},
		},
	}

	data, err := encoding.EncodeProgram(program)
	require.NoError(t, err)

	decoded, err := encoding.DecodeProgram(data)
	require.NoError(t, err)
	require.Equal(t, program, decoded)

	res := machine.Execute(decoded, nil, machine.Config{})
	require.Equal(t, machine.Faulted(machine.FaultIllegalOpcode), res.Outcome)
}

func TestProgramMalformed(t *testing.T) {
	_, err := encoding.DecodeProgram([]byte{0xFF, 0x00, 0x01})
	require.Error(t, err)
}
