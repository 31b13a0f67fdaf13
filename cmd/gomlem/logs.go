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
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
)

var level = new(slog.LevelVar)

// initLogging installs the default logger: text on stderr, fanned out to a
// JSON file when one is given. The file handler always logs at debug.
func initLogging(debug bool, logfile string) error {
	if debug {
		level.Set(slog.LevelDebug)
	}

	handlers := []slog.Handler{
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		}),
	}

	if logfile != "" {
		file, err := os.OpenFile(
			logfile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0666,
		)

		if err != nil {
			return err
		}

		handlers = append(handlers, slog.NewJSONHandler(
			file, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			},
		))
	}

	slog.SetDefault(slog.New(slogmulti.Fanout(handlers...)))

	return nil
}
