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

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ExecuteBatch evaluates a population of candidate programs against one
// shared input sequence. Every candidate gets a fresh machine, so the runs
// share no mutable state and proceed in parallel, bounded by GOMAXPROCS.
// Results are indexed like programs.
func ExecuteBatch(programs []Program, input []Word, cfg Config) []Result {
	results := make([]Result, len(programs))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, p := range programs {
		i, p := i, p
		g.Go(func() error {
			results[i] = Execute(p, input, cfg)
			return nil
		})
	}

	// Workers never return errors; faults are Outcomes in the results.
	_ = g.Wait()

	return results
}
