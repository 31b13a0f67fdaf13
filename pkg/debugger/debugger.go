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

package debugger

import (
	"bufio"
	"fmt"
	"io"

	"github.com/gomlem/gomlem/pkg/assembler"
	"github.com/gomlem/gomlem/pkg/machine"
)

func (dbg *Debugger) Step(mc *machine.Machine) {
	if dbg.HandleBreak == nil {
		return
	}

	if dbg.Break {
		dbg.HandleBreak(dbg, mc)
		return
	}

	for _, breakpoint := range dbg.Breakpoints {
		if mc.State.PC == breakpoint.Addr {
			dbg.HandleBreak(dbg, mc)
			break
		}
	}
}

func (dbg *Debugger) StackRead(offset machine.Word, mc *machine.Machine) {
	if dbg.HandleRead == nil {
		return
	}

	for _, watchpoint := range dbg.Watchpoints {
		if watchpoint.Type == WriteWatch {
			continue
		}

		if offset == watchpoint.Offset {
			dbg.HandleRead(offset, dbg, mc)
			break
		}
	}
}

func (dbg *Debugger) StackWrite(offset machine.Word, mc *machine.Machine) {
	if dbg.HandleWrite == nil {
		return
	}

	for _, watchpoint := range dbg.Watchpoints {
		if watchpoint.Type == ReadWatch {
			continue
		}

		if offset == watchpoint.Offset {
			dbg.HandleWrite(offset, dbg, mc)
			break
		}
	}
}

// PrintSource prints count source lines starting at the line that assembled
// to addr, marking lines that map to instruction addresses.
func (dbg *Debugger) PrintSource(w io.Writer, addr, count machine.Word) {
	if dbg.Source == nil {
		fmt.Fprintln(w, "No source file loaded")
		return
	}

	if dbg.SymTable == nil {
		fmt.Fprintln(w, "No symbol table loaded")
		return
	}

	if offset, exists := dbg.SymTable.Symbols[addr]; exists {
		if _, err := dbg.Source.Seek(offset, io.SeekStart); err != nil {
			fmt.Fprintln(w, err)
			return
		}

		scanner := bufio.NewScanner(dbg.Source)
		scanner.Split(bufio.ScanLines)

		for i := machine.Word(0); i < count; i++ {
			if !scanner.Scan() {
				break
			}

			line := scanner.Text()

			foundaddr := false
			for lineaddr, linebyte := range dbg.SymTable.Symbols {
				if linebyte == offset {
					fmt.Fprintf(w, "\033[1m[%04d]\033[0m ", lineaddr)
					foundaddr = true
					break
				}
			}

			if !foundaddr {
				fmt.Fprint(w, "\033[1;30m~~~~~~\033[0m ")
			}

			fmt.Fprintln(w, line)

			offset += int64(len(line) + 1)
		}

		if err := scanner.Err(); err != nil {
			fmt.Fprintln(w, err)
		}
	} else {
		fmt.Fprintf(w, "No instruction found at %04d\n", addr)
	}
}

// PrintProgram prints count disassembled instructions starting at addr, with
// labels from the symbol table when one is loaded.
func (dbg *Debugger) PrintProgram(w io.Writer, mc *machine.Machine, addr, count machine.Word) {
	program := mc.Program()

	for i := addr; i < addr+count && i < machine.Word(len(program)); i++ {
		if dbg.SymTable != nil {
			if label, exists := dbg.SymTable.Labels[i]; exists {
				fmt.Fprintf(w, "%s\n", label)
			}
		}

		marker := " "
		if i == mc.State.PC {
			marker = ">"
		}

		fmt.Fprintf(
			w,
			"%s \033[1m[%04d]\033[0m %s\n",
			marker,
			i,
			assembler.FormatInstruction(program[i]),
		)
	}
}

// PrintStack prints count stack cells starting at offset, four per row, with
// zero cells dimmed.
func (dbg *Debugger) PrintStack(w io.Writer, mc *machine.MachineState, offset, count machine.Word) {
	for i := offset; i < offset+count && i < machine.Word(len(mc.Stack)); i++ {
		if i == offset {
			fmt.Fprintf(w, "\033[1m[%04d]\033[0m ", i)
		} else if (i-offset)%4 == 0 {
			fmt.Fprintln(w)
			fmt.Fprintf(w, "\033[1m[%04d]\033[0m ", i)
		}

		result := mc.Stack[i]

		if result == 0 {
			fmt.Fprintf(w, "\033[1;30m%#016x\033[0m ", result)
		} else {
			fmt.Fprintf(w, "%#016x ", result)
		}
	}

	fmt.Fprintln(w)
}

// PrintRegisters prints the register file, SP, BP, PC and the step count.
func (dbg *Debugger) PrintRegisters(w io.Writer, mc *machine.MachineState) {
	for i := 0; i < machine.NumGPRs; i++ {
		fmt.Fprintf(w, "r%d: %#016x\n", i, mc.Registers[i])
	}

	fmt.Fprintf(w, "sp: %#016x\n", mc.SP)
	fmt.Fprintf(w, "bp: %#016x\n", mc.BP)
	fmt.Fprintf(w, "pc: %#016x\n", mc.PC)
	fmt.Fprintf(w, "steps: %d\n", mc.Steps)
}
