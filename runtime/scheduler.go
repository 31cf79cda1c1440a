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
	"sync"

	"github.com/practical-formal-methods/symjoin/merge"
)

// Scheduler is the reference merge.Interpreter: a run-to-completion
// worklist of *State that stands in for klee::Executor's side of the
// open_merge/close_merge protocol. PauseState/ContinueState move a state
// in and out of the active set without destroying it; TerminateState
// drops it for good, which is what happens to a state a Handler folds
// into another.
type Scheduler struct {
	mu sync.Mutex

	active     []*State
	inClose    map[*State]bool
	terminated map[*State]bool
}

// NewScheduler returns a Scheduler with initial already active.
func NewScheduler(initial *State) *Scheduler {
	s := &Scheduler{
		inClose:    map[*State]bool{},
		terminated: map[*State]bool{},
	}
	if initial != nil {
		s.active = append(s.active, initial)
	}
	return s
}

// AddActive registers st as active without going through a Handler —
// used to seed every state of a region before any of them reaches
// open_merge or close_merge.
func (s *Scheduler) AddActive(st *State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = append(s.active, st)
}

// Active returns a snapshot of the states currently active (neither
// paused at a close point nor terminated).
func (s *Scheduler) Active() []*State {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*State, len(s.active))
	copy(out, s.active)
	return out
}

// Terminated reports whether st was terminated, which for a state
// folded into another by Handler.AddClosedState means it was merged
// away rather than run to completion on its own.
func (s *Scheduler) Terminated(st *State) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.terminated[st]
}

func (s *Scheduler) removeActiveLocked(st *State) {
	for i, cur := range s.active {
		if cur == st {
			last := len(s.active) - 1
			s.active[i] = s.active[last]
			s.active = s.active[:last]
			return
		}
	}
}

// PauseState implements merge.Interpreter: it removes es from the active
// set and marks it as blocked inside a close_merge, without discarding
// it.
func (s *Scheduler) PauseState(es merge.ExecutionState) {
	st := es.(*State)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeActiveLocked(st)
	s.inClose[st] = true
}

// ContinueState implements merge.Interpreter: it moves es back into the
// active set and clears its close_merge bookkeeping.
func (s *Scheduler) ContinueState(es merge.ExecutionState) {
	st := es.(*State)
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inClose, st)
	s.active = append(s.active, st)
}

// TerminateState implements merge.Interpreter: es is dropped for good,
// neither active nor waiting at any close point again.
func (s *Scheduler) TerminateState(es merge.ExecutionState) {
	st := es.(*State)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeActiveLocked(st)
	delete(s.inClose, st)
	s.terminated[st] = true
}

// InCloseMerge implements merge.Interpreter.
func (s *Scheduler) InCloseMerge(es merge.ExecutionState) bool {
	st := es.(*State)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inClose[st]
}

// ForgetCloseMerge implements merge.Interpreter.
func (s *Scheduler) ForgetCloseMerge(es merge.ExecutionState) {
	st := es.(*State)
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inClose, st)
}
