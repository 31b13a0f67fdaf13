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
	"os"

	"github.com/gomlem/gomlem/pkg/assembler"
	"github.com/gomlem/gomlem/pkg/machine"
)

type WatchpointType uint

const (
	ReadWatch WatchpointType = iota
	WriteWatch
	ReadWriteWatch
)

// Watchpoint observes one stack cell by absolute offset.
type Watchpoint struct {
	Offset machine.Word
	Type   WatchpointType
}

// Breakpoint stops execution when PC reaches Addr.
type Breakpoint struct {
	Addr machine.Word
}

// Debugger hooks into a running machine through the MachineDebugger
// interface. Break forces the break handler on the next step regardless of
// breakpoints.
type Debugger struct {
	Break bool

	Breakpoints []Breakpoint
	Watchpoints []Watchpoint

	Source   *os.File
	SymTable *assembler.SymTable

	HandleBreak func(*Debugger, *machine.Machine)
	HandleRead  func(machine.Word, *Debugger, *machine.Machine)
	HandleWrite func(machine.Word, *Debugger, *machine.Machine)
}
