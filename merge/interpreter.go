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

// Package merge implements region-based state merging: a Handler tracks
// the states that entered an open_merge region together and tries to
// fold states back into each other as they reach the matching
// close_merge point, instead of letting them explore independently.
package merge

// ExecutionState is the interpreter's view of one symbolic execution
// branch, as far as merging needs to know about it.
type ExecutionState interface {
	// SteppedInstructions is the total number of instructions this state
	// has executed since the run began. Handler uses the delta between
	// this value at open_merge time and at close_merge time as the
	// state's instruction distance through the region.
	SteppedInstructions() uint64

	// Merge attempts to fold other into the receiver. On success the
	// receiver now represents both states (typically by disjoining their
	// path constraints) and other should be discarded by the caller.
	Merge(other ExecutionState) bool
}

// ClosePoint identifies one close_merge call site. States that reach
// different close points within the same Handler never compete to merge
// with each other. Any comparable value works; the callers in this
// repository (cmd/symjoin and the tests) use a string label.
type ClosePoint interface{}

// Interpreter is the subset of the symbolic execution loop Handler calls
// back into. It mirrors the klee::Executor side of the merge protocol:
// pausing a state removes it from the active worklist without destroying
// it, continuing puts it back, and InCloseMerge/ForgetCloseMerge track
// which states are currently blocked waiting inside some close_merge.
type Interpreter interface {
	PauseState(es ExecutionState)
	ContinueState(es ExecutionState)
	TerminateState(es ExecutionState)

	// InCloseMerge reports whether es is currently paused inside any
	// Handler's close set — GetPrioritizeState skips those, since forcing
	// a state that is already waiting to merge to run further only
	// shrinks its own merge odds.
	InCloseMerge(es ExecutionState) bool

	// ForgetCloseMerge drops es from the interpreter's close-merge
	// bookkeeping. Implementations call this as part of TerminateState
	// and of handling a state that exits a close_merge region without
	// merging, so no Handler ever mistakes a gone state for one still
	// waiting.
	ForgetCloseMerge(es ExecutionState)
}
