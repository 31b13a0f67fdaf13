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
	"encoding/gob"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gomlem/gomlem/pkg/assembler"
	"github.com/gomlem/gomlem/pkg/encoding"
)

// loadSymTable reads the symbol table sidecar next to a genome file, if one
// exists.
func loadSymTable(genomefile string) *assembler.SymTable {
	filename := strings.TrimSuffix(
		genomefile, filepath.Ext(genomefile),
	) + assembler.SymTableExt

	file, err := os.Open(filename)

	if err != nil {
		return nil
	}

	defer file.Close()

	var symtable assembler.SymTable

	if err := gob.NewDecoder(file).Decode(&symtable); err != nil {
		slog.Warn("unreadable symbol table", "file", filename, "error", err)
		return nil
	}

	return &symtable
}

func disasmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "disasm filename",
		Short: "Disassemble a genome into its textual form",
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

			symtable := loadSymTable(args[0])

			return assembler.Disassemble(program, symtable, os.Stdout)
		},
	}

	return cmd
}
