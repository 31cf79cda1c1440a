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

package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeState is a bare ExecutionState for tests: a fixed instruction count
// and a scripted Merge result.
type fakeState struct {
	name      string
	stepped   uint64
	mergeWith func(other ExecutionState) bool
}

func (s *fakeState) SteppedInstructions() uint64 { return s.stepped }
func (s *fakeState) Merge(other ExecutionState) bool {
	if s.mergeWith == nil {
		return false
	}
	return s.mergeWith(other)
}

// fakeInterpreter records every callback it receives.
type fakeInterpreter struct {
	paused      []ExecutionState
	continued   []ExecutionState
	terminated  []ExecutionState
	closeMerge  map[ExecutionState]bool
}

func newFakeInterpreter() *fakeInterpreter {
	return &fakeInterpreter{closeMerge: map[ExecutionState]bool{}}
}

func (f *fakeInterpreter) PauseState(es ExecutionState) {
	f.paused = append(f.paused, es)
	f.closeMerge[es] = true
}
func (f *fakeInterpreter) ContinueState(es ExecutionState) {
	f.continued = append(f.continued, es)
}
func (f *fakeInterpreter) TerminateState(es ExecutionState) {
	f.terminated = append(f.terminated, es)
}
func (f *fakeInterpreter) InCloseMerge(es ExecutionState) bool { return f.closeMerge[es] }
func (f *fakeInterpreter) ForgetCloseMerge(es ExecutionState)  { delete(f.closeMerge, es) }

// TestMeanInvariant covers testable property #1: after n AddClosedState
// calls with distances d1..dn, GetMean equals their arithmetic mean, and
// is 0 before the first call.
func TestMeanInvariant(t *testing.T) {
	interp := newFakeInterpreter()
	reg := NewRegistry()
	a := &fakeState{name: "a", stepped: 0}
	h := NewHandler(reg, interp, a)
	assert.Equal(t, 0.0, h.GetMean())

	b := &fakeState{name: "b", stepped: 0}
	h.AddOpenState(b)

	a.stepped = 10
	h.AddClosedState(a, "cp")
	assert.InDelta(t, 10.0, h.GetMean(), 1e-9)

	b.stepped = 12
	h.AddClosedState(b, "cp")
	assert.InDelta(t, 11.0, h.GetMean(), 1e-9)
}

// TestPauseContinueBalance covers testable property #3: ReleaseStates
// continues every paused state exactly once.
func TestPauseContinueBalance(t *testing.T) {
	interp := newFakeInterpreter()
	reg := NewRegistry()
	a := &fakeState{stepped: 0}
	h := NewHandler(reg, interp, a)
	b := &fakeState{stepped: 0}
	h.AddOpenState(b)

	a.stepped, b.stepped = 10, 12
	h.AddClosedState(a, "cp")
	h.AddClosedState(b, "cp")

	require.Len(t, interp.paused, 2)
	require.Empty(t, interp.continued)

	h.ReleaseStates()
	assert.Len(t, interp.continued, 2)
	assert.False(t, h.HasMergedStates())
}

// TestMergeTerminationRuleE1 covers the accepting half of testable
// property #4 and scenario E1: when a peer accepts the merge, the new
// state is terminated and never joins the bucket. The rejecting half is
// TestMergeTerminationRuleE2.
func TestMergeTerminationRuleE1(t *testing.T) {
	interp := newFakeInterpreter()
	reg := NewRegistry()

	a := &fakeState{name: "A", stepped: 0}
	h := NewHandler(reg, interp, a)
	b := &fakeState{name: "B", stepped: 0}
	h.AddOpenState(b)

	a.stepped = 10
	h.AddClosedState(a, "cp") // bucket={A}, paused={A}

	b.stepped = 12
	b.mergeWith = nil
	a.mergeWith = func(other ExecutionState) bool { return other == b }
	h.AddClosedState(b, "cp") // A.merge(B) succeeds -> B terminated

	assert.Equal(t, uint64(2), h.closedStateCount)
	assert.InDelta(t, 11.0, h.GetMean(), 1e-9)
	assert.Equal(t, []ExecutionState{b}, interp.terminated)
	assert.Equal(t, []ExecutionState{a}, interp.paused)
	group := h.reachedMergeClose["cp"]
	assert.Equal(t, []ExecutionState{a}, group)
}

// TestMergeTerminationRuleE2 is E2: merge always rejected, both states end
// up in the bucket and paused, then both continued exactly once.
func TestMergeTerminationRuleE2(t *testing.T) {
	interp := newFakeInterpreter()
	reg := NewRegistry()

	a := &fakeState{stepped: 0}
	a.mergeWith = func(ExecutionState) bool { return false }
	h := NewHandler(reg, interp, a)
	b := &fakeState{stepped: 0}
	h.AddOpenState(b)

	a.stepped, b.stepped = 10, 12
	h.AddClosedState(a, "cp")
	h.AddClosedState(b, "cp")

	group := h.reachedMergeClose["cp"]
	assert.Equal(t, []ExecutionState{a, b}, group)
	assert.Equal(t, []ExecutionState{a, b}, interp.paused)
	assert.Empty(t, interp.terminated)

	h.ReleaseStates()
	assert.Equal(t, []ExecutionState{a, b}, interp.continued)
}

// TestGetPrioritizeStateE3 is E3: open states at distances 5, 100, 8 with
// closeMean=6 (so the 2*mean gate is 12); candidates are the states at 5
// and 8, and the one returned is whichever of those comes first in
// insertion order.
func TestGetPrioritizeStateE3(t *testing.T) {
	interp := newFakeInterpreter()
	reg := NewRegistry()

	// The region opens at instruction 0, so each state's distance equals
	// its stepped count.
	first := &fakeState{stepped: 0}
	h := NewHandler(reg, interp, first)
	first.stepped = 5
	second := &fakeState{stepped: 100}
	third := &fakeState{stepped: 8}
	h.AddOpenState(second)
	h.AddOpenState(third)

	// Force closeMean to 6 by routing a closed call through a state whose
	// distance is exactly 6, without disturbing the three open states.
	probe := &fakeState{stepped: 6}
	h.AddOpenState(probe)
	h.AddClosedState(probe, "cp")
	require.InDelta(t, 6.0, h.GetMean(), 1e-9)

	got := h.GetPrioritizeState()
	assert.Same(t, first, got, "insertion order breaks the tie between the states at distance 5 and 8")
}

// TestGetPrioritizeStateSkipsClosedStates ensures a state already paused
// at a close point is never returned even if its distance qualifies.
func TestGetPrioritizeStateSkipsClosedStates(t *testing.T) {
	interp := newFakeInterpreter()
	reg := NewRegistry()

	a := &fakeState{stepped: 1}
	h := NewHandler(reg, interp, a)
	b := &fakeState{stepped: 2}
	h.AddOpenState(b)

	probe := &fakeState{stepped: 6}
	h.AddOpenState(probe)
	h.AddClosedState(probe, "cp")

	interp.closeMerge[a] = true // a is paused elsewhere, still nominally "open" here
	got := h.GetPrioritizeState()
	assert.Same(t, b, got)
}

// TestReleaseIsIdempotentAndRunsOnce covers the reference-counted release
// contract: only the last Release runs the teardown, and it runs it
// exactly once even if called again afterward.
func TestReleaseIsIdempotentAndRunsOnce(t *testing.T) {
	interp := newFakeInterpreter()
	reg := NewRegistry()
	a := &fakeState{stepped: 0}
	h := NewHandler(reg, interp, a)
	h.Retain()

	require.Equal(t, 1, reg.Len())

	a.stepped = 10
	h.AddClosedState(a, "cp")

	h.Release() // refCount 2 -> 1, no teardown yet
	assert.Empty(t, interp.continued)
	assert.Equal(t, 1, reg.Len())

	h.Release() // refCount 1 -> 0, teardown runs
	assert.Len(t, interp.continued, 1)
	assert.Equal(t, 0, reg.Len())

	h.Release() // already at 0; must not panic or double-continue
	assert.Len(t, interp.continued, 1)
}
