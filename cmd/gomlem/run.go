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
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/gomlem/gomlem/pkg/debugger"
	"github.com/gomlem/gomlem/pkg/encoding"
	"github.com/gomlem/gomlem/pkg/machine"
)

func parseInput(words []string, infile string) ([]machine.Word, error) {
	if infile != "" {
		file, err := os.Open(infile)

		if err != nil {
			return nil, err
		}

		defer file.Close()

		return encoding.ReadWords(file)
	}

	input := make([]machine.Word, 0, len(words))

	for _, word := range words {
		value, err := encoding.DecodeWord(word)

		if err != nil {
			return nil, fmt.Errorf("invalid input word %q: %w", word, err)
		}

		input = append(input, value)
	}

	return input, nil
}

func writeOutput(output []machine.Word, outfile string) error {
	if outfile != "" {
		file, err := os.Create(outfile)

		if err != nil {
			return err
		}

		defer file.Close()

		return encoding.WriteWords(file, output)
	}

	for _, word := range output {
		fmt.Println(word)
	}

	return nil
}

func runCmd() *cobra.Command {
	var inputvar []string
	var infilevar string
	var outfilevar string
	var stepsvar uint64
	var stackvar uint64
	var debugvar bool

	cmd := &cobra.Command{
		Use:   "run filename",
		Short: "Run a genome and print its output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])

			if err != nil {
				return err
			}

			program, err := encoding.DecodeProgram(data)

			if err != nil {
				return err
			}

			input, err := parseInput(inputvar, infilevar)

			if err != nil {
				return err
			}

			cfg := machine.Config{
				StepLimit:     stepsvar,
				StackCapacity: stackvar,
			}

			mc := machine.New(cfg)
			mc.LoadProgram(program)
			mc.LoadInput(input)

			var outcome machine.Outcome

			if debugvar {
				dbg := &debugger.Debugger{
					Break:       true,
					HandleBreak: handleBreak,
					HandleRead:  handleRead,
					HandleWrite: handleWrite,
					SymTable:    loadSymTable(args[0]),
				}

				if dbg.SymTable != nil && dbg.SymTable.Source != "" {
					if file, err := os.Open(dbg.SymTable.Source); err == nil {
						dbg.Source = file
						defer file.Close()
					} else {
						slog.Warn("no source file", "error", err)
					}
				}

				mc.Debugger = dbg

				c := make(chan os.Signal, 1)
				defer close(c)

				signal.Notify(c, os.Interrupt)
				defer signal.Stop(c)

				go func() {
					for range c {
						fmt.Println()
						dbg.Break = true
					}
				}()

				outcome = debugRun(dbg, mc)
			} else {
				outcome = mc.Run()
			}

			if outcome.Kind == machine.OutcomeContinue {
				// User quit the debugger mid-run.
				slog.Info("run aborted", "steps", mc.State.Steps)
				return nil
			}

			slog.Info(
				"run finished",
				"outcome", outcome.String(),
				"steps", mc.State.Steps,
				"outputs", len(mc.Output()),
			)

			if err := writeOutput(mc.Output(), outfilevar); err != nil {
				return err
			}

			switch outcome.Kind {
			case machine.OutcomeFault:
				os.Exit(2)
			case machine.OutcomeStepLimit:
				os.Exit(3)
			}

			return nil
		},
	}

	cmd.Flags().StringSliceVarP(
		&inputvar, "input", "i", nil,
		"Input words, consumed front to back (e.g. -i 2,2,2,2)",
	)
	cmd.Flags().StringVar(
		&infilevar, "input-file", "",
		"Reads input words from a big-endian binary file instead of --input",
	)
	cmd.Flags().StringVar(
		&outfilevar, "output-file", "",
		"Writes output words to a big-endian binary file instead of stdout",
	)
	cmd.Flags().Uint64Var(
		&stepsvar, "steps", machine.DefaultStepLimit,
		"Step budget before the run is cut off",
	)
	cmd.Flags().Uint64Var(
		&stackvar, "stack", machine.DefaultStackCapacity,
		"Stack capacity in cells",
	)
	cmd.Flags().BoolVar(
		&debugvar, "debug", false,
		"Runs the machine in a debug CLI",
	)

	return cmd
}
