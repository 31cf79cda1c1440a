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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/practical-formal-methods/symjoin/merge"
)

func TestSchedulerPauseContinueMovesBetweenActiveAndClose(t *testing.T) {
	a := NewState(1)
	b := NewState(2)
	sched := NewScheduler(a)
	sched.AddActive(b)

	sched.PauseState(a)
	assert.True(t, sched.InCloseMerge(a))
	assert.Len(t, sched.Active(), 1)

	sched.ContinueState(a)
	assert.False(t, sched.InCloseMerge(a))
	assert.Len(t, sched.Active(), 2)
}

func TestSchedulerTerminateStateRemovesFromActiveAndClose(t *testing.T) {
	a := NewState(1)
	sched := NewScheduler(a)

	sched.PauseState(a)
	sched.TerminateState(a)

	assert.True(t, sched.Terminated(a))
	assert.False(t, sched.InCloseMerge(a))
	assert.Empty(t, sched.Active())
}

func TestSchedulerForgetCloseMergeClearsBookkeepingWithoutTerminating(t *testing.T) {
	a := NewState(1)
	sched := NewScheduler(a)

	sched.PauseState(a)
	sched.ForgetCloseMerge(a)

	assert.False(t, sched.InCloseMerge(a))
	assert.False(t, sched.Terminated(a))
}

func TestSchedulerDrivesHandlerEndToEnd(t *testing.T) {
	a := NewState(1)
	b := NewState(2)
	a.CallPath = nil
	b.CallPath = nil
	a.Mergeable = func(other *State) bool { return true }

	sched := NewScheduler(a)
	sched.AddActive(b)

	reg := merge.NewRegistry()
	handler := merge.NewHandler(reg, sched, a)
	handler.AddOpenState(b)

	handler.AddClosedState(a, "p")
	handler.AddClosedState(b, "p")

	assert.True(t, sched.Terminated(b), "b should have merged into a and been terminated")
	assert.False(t, sched.Terminated(a))
	assert.True(t, sched.InCloseMerge(a), "a is still paused waiting at the close point")

	handler.Release()
	assert.False(t, sched.InCloseMerge(a))
	assert.Contains(t, sched.Active(), a)
}
