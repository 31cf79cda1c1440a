// Copyright 2024 the symjoin authors

// This file is part of symjoin.
//
// symjoin is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// symjoin is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with symjoin.  If not, see <https://www.gnu.org/licenses/>.

// Package runtime is the glue between merge, callrecord/calltree, and
// testcase: a reference ExecutionState, the run configuration, and the
// output-directory writer that turns terminated states into files on
// disk, in the spirit of the source's KleeHandler.
package runtime

import (
	"flag"
	"time"
)

// Config holds every flag the core reads at startup. Field names follow
// the source's own flag names (use-merge, debug-log-merge, ...), just
// camel-cased.
type Config struct {
	UseMerge                bool
	DebugLogMerge           bool
	UseIncompleteMerge      bool
	DebugLogIncompleteMerge bool

	DumpCallTraces        bool
	DumpCallTracePrefixes bool

	OutputDir string

	StopAfterNTests int
	MaxTime         time.Duration
}

// RegisterFlags binds Config's fields onto fs, mirroring the teacher's
// own flag.Bool/flag.Parse style (analysis tools in this corpus never
// reach for a CLI framework — there isn't one anywhere in the pack).
func RegisterFlags(fs *flag.FlagSet, cfg *Config) {
	fs.BoolVar(&cfg.UseMerge, "use-merge", false, "enable support for open_merge/close_merge regions")
	fs.BoolVar(&cfg.DebugLogMerge, "debug-log-merge", false, "enhanced verbosity for region based merge operations")
	fs.BoolVar(&cfg.UseIncompleteMerge, "use-incomplete-merge", false, "heuristic based merging")
	fs.BoolVar(&cfg.DebugLogIncompleteMerge, "debug-log-incomplete-merge", false, "debug info about incomplete merging")
	fs.BoolVar(&cfg.DumpCallTraces, "dump-call-traces", false, "write one plaintext call-path file per terminated state")
	fs.BoolVar(&cfg.DumpCallTracePrefixes, "dump-call-trace-prefixes", false, "write the s-expression call-tree prefix dump")
	fs.StringVar(&cfg.OutputDir, "output-dir", "symjoin-out", "directory to write test cases and call traces into")
	fs.IntVar(&cfg.StopAfterNTests, "stop-after-n-tests", 0, "halt after this many tests have been generated (0 = unlimited)")
	fs.DurationVar(&cfg.MaxTime, "max-time", 0, "halt after this much wall-clock time (0 = unlimited)")
}
