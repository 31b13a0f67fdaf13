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

package machine

const (
	// DefaultStepLimit bounds a run's fetch-decode-execute cycles. Evolved
	// programs loop freely; the budget is the only termination guarantee.
	DefaultStepLimit uint64 = 1 << 16

	// DefaultStackCapacity is the stack size in cells.
	DefaultStackCapacity uint64 = 4096
)

// Config carries the per-machine resource bounds. The zero value selects
// the defaults. Bounds are fixed at construction; no instruction can
// change them.
type Config struct {
	StepLimit     uint64
	StackCapacity uint64
}

func (c Config) withDefaults() Config {
	if c.StepLimit == 0 {
		c.StepLimit = DefaultStepLimit
	}
	if c.StackCapacity == 0 {
		c.StackCapacity = DefaultStackCapacity
	}
	return c
}
