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

package main

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/gomlem/gomlem/pkg/debugger"
	"github.com/gomlem/gomlem/pkg/encoding"
	"github.com/gomlem/gomlem/pkg/machine"
)

var shouldexit bool
var lastcmd []string

// debugRun drives the machine under the debugger until it terminates or the
// user quits. A quit mid-run returns Continue.
func debugRun(dbg *debugger.Debugger, mc *machine.Machine) machine.Outcome {
	for !shouldexit {
		o := mc.Step()
		mc.State.Steps++

		if o.Kind != machine.OutcomeContinue {
			fmt.Printf("Program finished: %s\n", o)
			return o
		}

		if mc.State.Steps >= mc.Config().StepLimit {
			fmt.Println("Program finished: step limit exceeded")
			return machine.StepLimitExceeded
		}
	}

	return machine.Continue
}

func debugBreak(dbg *debugger.Debugger, args []string) {
	const usage = "break [add|list|remove]"

	if len(args) == 0 {
		args = append(args, "l")
	}

	cmd := args[0]
	args = args[1:]

	switch cmd {
	case "a", "add":
		const usage = "break add [addr]"

		if len(args) != 1 {
			fmt.Println(usage)
			return
		}

		addr, err := encoding.DecodeWord(args[0])

		if err != nil {
			fmt.Println(err)
			return
		}

		exists := false

		for _, breakpoint := range dbg.Breakpoints {
			if breakpoint.Addr == addr {
				exists = true
				break
			}
		}

		if !exists {
			dbg.Breakpoints = append(
				dbg.Breakpoints,
				debugger.Breakpoint{Addr: addr},
			)

			fmt.Printf("Breakpoint added [%04d]\n", addr)
		}

	case "l", "ls", "list":
		for i, breakpoint := range dbg.Breakpoints {
			fmt.Printf("#%d: %04d\n", i, breakpoint.Addr)
		}

	case "r", "rm", "remove":
		const usage = "break remove [#]"

		if len(args) != 1 {
			fmt.Println(usage)
			return
		}

		i, err := strconv.ParseInt(args[0], 10, 64)

		if err != nil {
			fmt.Println(err)
			return
		}

		if i < 0 || i >= int64(len(dbg.Breakpoints)) {
			fmt.Println("Invalid breakpoint number")
			return
		}

		dbg.Breakpoints[i] = dbg.Breakpoints[len(dbg.Breakpoints)-1]
		dbg.Breakpoints = dbg.Breakpoints[:len(dbg.Breakpoints)-1]
		fmt.Printf("Breakpoint removed [%d]\n", i)

	case "clear":
		dbg.Breakpoints = make([]debugger.Breakpoint, 0)
		fmt.Println("Breakpoints reset")

	default:
		fmt.Printf("break: '%s' is not a valid command\n", cmd)
		fmt.Println(usage)
	}
}

func debugWatch(dbg *debugger.Debugger, args []string) {
	const usage = "watch [add|list|remove]"

	if len(args) == 0 {
		args = append(args, "l")
	}

	cmd := args[0]
	args = args[1:]

	switch cmd {
	case "a", "add":
		const usage = "watch add [offset] [read|write|readwrite]"

		if len(args) != 2 {
			fmt.Println(usage)
			return
		}

		offset, err := encoding.DecodeWord(args[0])

		if err != nil {
			fmt.Println(err)
			return
		}

		var wtype debugger.WatchpointType

		switch args[1] {
		case "r", "read":
			wtype = debugger.ReadWatch
		case "w", "write":
			wtype = debugger.WriteWatch
		case "rw", "rwrite", "readwrite":
			wtype = debugger.ReadWriteWatch
		default:
			fmt.Println(usage)
			return
		}

		exists := false

		for _, watchpoint := range dbg.Watchpoints {
			if watchpoint.Offset == offset && watchpoint.Type == wtype {
				exists = true
				break
			}
		}

		if !exists {
			dbg.Watchpoints = append(
				dbg.Watchpoints,
				debugger.Watchpoint{Offset: offset, Type: wtype},
			)

			fmt.Printf("Watchpoint added [%04d]\n", offset)
		}

	case "l", "ls", "list":
		for i, watchpoint := range dbg.Watchpoints {
			var typename string

			switch watchpoint.Type {
			case debugger.ReadWatch:
				typename = "read"
			case debugger.WriteWatch:
				typename = "write"
			case debugger.ReadWriteWatch:
				typename = "rwrite"
			}

			fmt.Printf("#%d: %04d %s\n", i, watchpoint.Offset, typename)
		}

	case "r", "rm", "remove":
		const usage = "watch remove [#]"

		if len(args) != 1 {
			fmt.Println(usage)
			return
		}

		i, err := strconv.ParseInt(args[0], 10, 64)

		if err != nil {
			fmt.Println(err)
			return
		}

		if i < 0 || i >= int64(len(dbg.Watchpoints)) {
			fmt.Println("Invalid watchpoint number")
			return
		}

		dbg.Watchpoints[i] = dbg.Watchpoints[len(dbg.Watchpoints)-1]
		dbg.Watchpoints = dbg.Watchpoints[:len(dbg.Watchpoints)-1]
		fmt.Printf("Watchpoint removed [%d]\n", i)

	case "clear":
		dbg.Watchpoints = make([]debugger.Watchpoint, 0)
		fmt.Println("Watchpoints reset")

	default:
		fmt.Printf("watch: '%s' is not a valid command\n", cmd)
		fmt.Println(usage)
	}
}

func debugReg(dbg *debugger.Debugger, mc *machine.MachineState, args []string) {
	const usage = "register [r#|sp|bp|pc] [value]"

	if len(args) == 0 {
		dbg.PrintRegisters(os.Stdout, mc)
		return
	}

	if len(args) != 2 {
		fmt.Println(usage)
		return
	}

	value, err := encoding.DecodeWord(args[1])

	if err != nil {
		fmt.Println(err)
		return
	}

	name := strings.ToLower(args[0])

	switch name {
	case "r0", "r1", "r2", "r3", "r4", "r5", "r6", "r7":
		mc.Registers[name[1]-'0'] = value
	case "sp":
		mc.SP = value
	case "bp":
		mc.BP = value
	case "pc":
		mc.PC = value
	default:
		fmt.Println("Invalid register")
		return
	}

	fmt.Printf("\033[1m%s:\033[0m %#016x\n", name, value)
}

func debugSource(dbg *debugger.Debugger, mc *machine.MachineState, args []string) {
	const usage = "source [addr|label] [#]"

	if len(args) > 2 {
		fmt.Println(usage)
		return
	}

	if dbg.SymTable == nil {
		fmt.Println("No symbol table loaded")
		return
	}

	var addr machine.Word = mc.PC
	var size machine.Word = 3

	if len(args) > 0 {
		isLabel := false
		for labelAddr, label := range dbg.SymTable.Labels {
			if label == args[0] {
				isLabel = true
				addr = labelAddr
				break
			}
		}

		if !isLabel {
			value, err := encoding.DecodeWord(args[0])

			if err != nil {
				fmt.Println(err)
				return
			}

			addr = value
		}
	}

	if len(args) > 1 {
		value, err := encoding.DecodeWord(args[1])

		if err != nil {
			fmt.Println(err)
			return
		}

		size = value
	}

	dbg.PrintSource(os.Stdout, addr, size)
}

func debugLabels(dbg *debugger.Debugger, args []string) {
	if dbg.SymTable == nil {
		fmt.Println("No symbol table loaded")
		return
	}

	keys := make([]machine.Word, 0, len(dbg.SymTable.Labels))
	for addr := range dbg.SymTable.Labels {
		keys = append(keys, addr)
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	for _, addr := range keys {
		fmt.Printf(
			"\033[1m[%04d]\033[0m %s\n", addr, dbg.SymTable.Labels[addr],
		)
	}
}

func debugList(dbg *debugger.Debugger, mc *machine.Machine, args []string) {
	const usage = "list [addr] [#]"

	if len(args) > 2 {
		fmt.Println(usage)
		return
	}

	var addr machine.Word = mc.State.PC
	var size machine.Word = 8

	if len(args) > 0 {
		value, err := encoding.DecodeWord(args[0])

		if err != nil {
			fmt.Println(err)
			return
		}

		addr = value
	}

	if len(args) > 1 {
		value, err := encoding.DecodeWord(args[1])

		if err != nil {
			fmt.Println(err)
			return
		}

		size = value
	}

	dbg.PrintProgram(os.Stdout, mc, addr, size)
}

func debugJump(dbg *debugger.Debugger, mc *machine.MachineState, args []string) {
	const usage = "jump [addr|label]"

	if len(args) != 1 {
		fmt.Println(usage)
		return
	}

	if addr, err := encoding.DecodeWord(args[0]); err == nil {
		mc.PC = addr

		fmt.Printf("\033[1mpc:\033[0m %04d\n", addr)
	} else if dbg.SymTable != nil {
		for addr, label := range dbg.SymTable.Labels {
			if label == args[0] {
				mc.PC = addr
				fmt.Printf(
					"\033[1mpc:\033[0m %04d \033[1;30m(%s)\033[0m\n",
					addr,
					label,
				)
				return
			}
		}

		fmt.Printf("Unable to find '%s'\n", args[0])
	} else {
		fmt.Println("No symbol table loaded")
	}
}

func debugStack(dbg *debugger.Debugger, mc *machine.MachineState, args []string) {
	const usage = "stack [offset] [#]"

	if len(args) > 2 {
		fmt.Println(usage)
		return
	}

	var offset machine.Word = 0
	var size machine.Word = mc.SP

	if size == 0 {
		size = 4
	}

	if len(args) > 0 {
		value, err := encoding.DecodeWord(args[0])

		if err != nil {
			fmt.Println(err)
			return
		}

		offset = value
		size = 1
	}

	if len(args) > 1 {
		value, err := encoding.DecodeWord(args[1])

		if err != nil {
			fmt.Println(err)
			return
		}

		size = value
	}

	dbg.PrintStack(os.Stdout, mc, offset, size)
}

func debugSet(dbg *debugger.Debugger, mc *machine.MachineState, args []string) {
	const usage = "set [offset] [value]"

	if len(args) != 2 {
		fmt.Println(usage)
		return
	}

	offset, err := encoding.DecodeWord(args[0])

	if err != nil {
		fmt.Println(err)
		return
	}

	value, err := encoding.DecodeWord(args[1])

	if err != nil {
		fmt.Println(err)
		return
	}

	if offset >= machine.Word(len(mc.Stack)) {
		fmt.Println("Offset beyond stack capacity")
		return
	}

	mc.Stack[offset] = value
	dbg.PrintStack(os.Stdout, mc, offset, 1)
}

func debugIO(mc *machine.Machine) {
	fmt.Printf("\033[1minput:\033[0m  %v\n", mc.InputRemaining())
	fmt.Printf("\033[1moutput:\033[0m %v\n", mc.Output())
}

func debugREPL(dbg *debugger.Debugger, mc *machine.Machine) {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("\033[1;30m(dbg)\033[0m ")

		if !scanner.Scan() {
			fmt.Println()
			shouldexit = true
			return
		}

		args := strings.Fields(scanner.Text())

		if len(args) == 0 {
			if len(lastcmd) == 0 {
				continue
			}
			args = lastcmd
		} else {
			lastcmd = make([]string, len(args))
			copy(lastcmd, args)
		}

		cmd := args[0]
		args = args[1:]

		switch cmd {
		case "b", "bp", "break", "breakpoint":
			debugBreak(dbg, args)

		case "w", "wp", "watch", "watchpoint":
			debugWatch(dbg, args)

		case "r", "reg", "register", "registers":
			debugReg(dbg, &mc.State, args)

		case "s", "src", "source":
			debugSource(dbg, &mc.State, args)

		case "l", "label", "labels":
			debugLabels(dbg, args)

		case "list":
			debugList(dbg, mc, args)

		case "j", "jmp", "jump":
			debugJump(dbg, &mc.State, args)

		case "st", "stack":
			debugStack(dbg, &mc.State, args)

		case "set":
			debugSet(dbg, &mc.State, args)

		case "io":
			debugIO(mc)

		case "c", "continue":
			dbg.Break = false
			return

		case "n", "next", "step":
			dbg.Break = true
			return

		case "q", "quit", "exit":
			shouldexit = true
			return

		case "clear":
			fmt.Print("\033[H\033[2J")

		default:
			fmt.Printf("error: '%s' is not a valid command\n", cmd)
		}
	}
}

func handleBreak(dbg *debugger.Debugger, mc *machine.Machine) {
	if !dbg.Break {
		fmt.Println()
		fmt.Println("Program stopped")
		dbg.PrintProgram(os.Stdout, mc, mc.State.PC, 4)
	}
	debugREPL(dbg, mc)
}

func handleRead(offset machine.Word, dbg *debugger.Debugger, mc *machine.Machine) {
	fmt.Println()
	fmt.Println("Program stopped")
	dbg.PrintStack(os.Stdout, &mc.State, offset, 1)
	debugREPL(dbg, mc)
}

func handleWrite(offset machine.Word, dbg *debugger.Debugger, mc *machine.Machine) {
	fmt.Println()
	fmt.Println("Program stopped")
	dbg.PrintStack(os.Stdout, &mc.State, offset, 1)
	debugREPL(dbg, mc)
}
