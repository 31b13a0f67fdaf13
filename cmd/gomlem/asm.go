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
	"encoding/gob"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gomlem/gomlem/pkg/assembler"
	"github.com/gomlem/gomlem/pkg/encoding"
)

// ProgramExt is the file extension for assembled genome files.
const ProgramExt = ".mvm"

// printAsmErrors echoes assembly errors with the offending source line and
// an underline when the input can be reread.
func printAsmErrors(input io.ReadSeeker, errs []error) {
	for _, err := range errs {
		tokenErr, ok := err.(assembler.TokenError)

		if !ok || input == nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}

		cursor := tokenErr.GetPosition()

		if _, serr := input.Seek(cursor.LineByte, io.SeekStart); serr != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}

		line, _ := bufio.NewReader(input).ReadString('\n')
		line = strings.TrimSuffix(line, "\n")

		underlinefmt := fmt.Sprintf(
			"%% %ds%s",
			int(cursor.Byte-cursor.LineByte)+1,
			strings.Repeat("~", int(cursor.Size)-1),
		)

		fmt.Fprintf(
			os.Stderr,
			"%s\n%s\n\033[31m%s\033[0m\n",
			err,
			line,
			fmt.Sprintf(underlinefmt, "^"),
		)
	}
}

func asmCmd() *cobra.Command {
	var outvar string
	var debugvar bool

	cmd := &cobra.Command{
		Use:   "asm [filename]",
		Short: "Assemble a source file into a genome",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var input io.ReadSeeker
			var infile string

			if len(args) == 0 {
				// Stdin is buffered wholesale so errors can be underlined.
				data, err := io.ReadAll(os.Stdin)
				if err != nil {
					return err
				}

				input = strings.NewReader(string(data))

				if outvar == "" {
					outvar = "out" + ProgramExt
				}
			} else {
				file, err := os.Open(args[0])

				if err != nil {
					return err
				}

				defer file.Close()

				input = file
				infile = file.Name()

				if outvar == "" {
					filename := filepath.Base(infile)
					outvar = strings.TrimSuffix(
						filename, filepath.Ext(filename),
					) + ProgramExt
				}
			}

			var symtable assembler.SymTable
			var symtarget *assembler.SymTable = nil

			if debugvar {
				if infile != "" {
					var err error
					if symtable.Source, err = filepath.Abs(infile); err != nil {
						slog.Warn("no source path for symbol table", "error", err)
						symtable.Source = ""
					}
				}
				symtable.Symbols = make(map[uint64]int64)
				symtable.Labels = make(map[uint64]string)
				symtarget = &symtable
			}

			program, errs := assembler.AssembleSource(input, symtarget)

			if len(errs) > 0 {
				printAsmErrors(input, errs)
				return fmt.Errorf("%d assembly errors", len(errs))
			}

			data, err := encoding.EncodeProgram(program)

			if err != nil {
				return err
			}

			if err := os.WriteFile(outvar, data, 0666); err != nil {
				return err
			}

			slog.Info(
				"assembled",
				"out", outvar,
				"instructions", len(program),
				"bytes", len(data),
			)

			if debugvar {
				filename := strings.TrimSuffix(
					outvar, filepath.Ext(outvar),
				) + assembler.SymTableExt

				file, err := os.Create(filename)

				if err != nil {
					return err
				}

				defer file.Close()

				if err := gob.NewEncoder(file).Encode(symtable); err != nil {
					return err
				}

				slog.Info("symbol table written", "out", filename)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(
		&outvar, "out", "o", "",
		"Output filename, defaulting to the input name with extension '"+
			ProgramExt+"'",
	)
	cmd.Flags().BoolVar(
		&debugvar, "debug", false,
		"Writes a symbol table sidecar with extension '"+
			assembler.SymTableExt+"'",
	)

	return cmd
}
