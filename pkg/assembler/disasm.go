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

package assembler

import (
	"fmt"
	"io"
	"math"

	"github.com/gomlem/gomlem/pkg/machine"
)

// FormatAddress renders an operand in assemblable form. Values past the
// signed range render as hex so they survive a round trip.
func FormatAddress(a machine.Address) string {
	switch a.Mode {
	case machine.RegAbs:
		return a.Reg.String()

	case machine.StackAbs:
		if a.Value > math.MaxInt64 {
			return fmt.Sprintf("[x%X]", a.Value)
		}
		return fmt.Sprintf("[%d]", a.Value)

	case machine.StackRel:
		if offset := int64(a.Value); offset < 0 {
			return fmt.Sprintf("[bp%d]", offset)
		} else {
			return fmt.Sprintf("[bp+%d]", offset)
		}

	case machine.Immediate:
		if a.Value > math.MaxInt64 {
			return fmt.Sprintf("x%X", a.Value)
		}
		return fmt.Sprintf("#%d", a.Value)
	}

	return "?"
}

// FormatInstruction renders one instruction in assemblable form.
func FormatInstruction(ins machine.Instruction) string {
	switch ins.Op.Operands() {
	case 2:
		return fmt.Sprintf(
			"%s %s, %s",
			ins.Op,
			FormatAddress(ins.A),
			FormatAddress(ins.B),
		)
	case 1:
		return fmt.Sprintf("%s %s", ins.Op, FormatAddress(ins.A))
	}

	return ins.Op.String()
}

// Disassemble writes the textual form of a program to w. With a symbol table
// the original label names reappear at their declaration addresses; without
// one every address is unlabeled. Label operands are not reconstructed; they
// were resolved to immediates at assembly.
func Disassemble(p machine.Program, symtable *SymTable, w io.Writer) error {
	for addr, ins := range p {
		if symtable != nil {
			if label, exists := symtable.Labels[machine.Word(addr)]; exists {
				if _, err := fmt.Fprintf(w, "%s\n", label); err != nil {
					return err
				}
			}
		}

		_, err := fmt.Fprintf(w, "\t%s\n", FormatInstruction(ins))

		if err != nil {
			return err
		}
	}

	return nil
}
