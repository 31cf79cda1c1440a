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

package runtime

import (
	"github.com/practical-formal-methods/symjoin/callrecord"
	"github.com/practical-formal-methods/symjoin/merge"
	"github.com/practical-formal-methods/symjoin/symval"
	"github.com/practical-formal-methods/symjoin/testcase"
)

// State is the reference ExecutionState: enough bookkeeping to drive
// merge.Handler and to feed a terminated run into calltree and testcase.
// Constraint solving is out of scope here — PathConstraints is carried as
// an opaque ordered log, and whether two states are compatible enough to
// merge is decided by Mergeable, a caller-supplied predicate standing in
// for what a real build would hand to an SMT solver.
type State struct {
	ID      uint64
	stepped uint64

	PathConstraints []symval.Ref
	CallPath        callrecord.CallPath

	Symbolics []testcase.SymbolicValue
	Havocs    []testcase.HavocedRegion

	// Mergeable reports whether other's path constraints are compatible
	// enough with the receiver's to fold together. A nil Mergeable means
	// "never merges", the conservative default.
	Mergeable func(other *State) bool

	// mergedIn accumulates constraints absorbed from states this one
	// merged with, in the order they were folded in.
	mergedIn [][]symval.Ref
}

// NewState returns a fresh state with the given id, starting at
// instruction count 0.
func NewState(id uint64) *State {
	return &State{ID: id}
}

// SteppedInstructions implements merge.ExecutionState.
func (s *State) SteppedInstructions() uint64 { return s.stepped }

// Step advances the state's instruction counter by n — the runtime
// driving loop calls this as it interprets, not the merge package.
func (s *State) Step(n uint64) { s.stepped += n }

// Fork returns a new sibling state starting from s's current instruction
// count and path constraints, with its own id.
func (s *State) Fork(id uint64) *State {
	child := &State{
		ID:              id,
		stepped:         s.stepped,
		PathConstraints: append([]symval.Ref{}, s.PathConstraints...),
		CallPath:        append(callrecord.CallPath{}, s.CallPath...),
		Mergeable:       s.Mergeable,
	}
	return child
}

// Merge implements merge.ExecutionState: it absorbs other into s if
// Mergeable accepts, recording other's constraints as an additional
// disjunct rather than discarding them.
func (s *State) Merge(other merge.ExecutionState) bool {
	o, ok := other.(*State)
	if !ok || s.Mergeable == nil || !s.Mergeable(o) {
		return false
	}
	s.mergedIn = append(s.mergedIn, append([]symval.Ref{}, o.PathConstraints...))
	return true
}
