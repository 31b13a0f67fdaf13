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
	"os"

	"github.com/spf13/cobra"
)

var (
	Version = "dev"
	Commit  = "none"
)

var logfilevar string
var logdebugvar bool

func main() {
	rootCmd := &cobra.Command{
		Use:     "gomlem",
		Short:   "64-bit word machine for evolved programs",
		Version: fmt.Sprintf("%s (%s)", Version, Commit),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initLogging(logdebugvar, logfilevar)
		},
		SilenceUsage: true,
	}

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(
		&logfilevar, "log-file", "",
		"Appends JSON logs to the given file in addition to stderr",
	)
	rootCmd.PersistentFlags().BoolVar(
		&logdebugvar, "log-debug", false,
		"Sets the log level to debug",
	)

	rootCmd.AddCommand(asmCmd())
	rootCmd.AddCommand(disasmCmd())
	rootCmd.AddCommand(runCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
