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
	"fmt"
	"sync"
	"sync/atomic"
)

// Handler tracks the states that entered one open_merge region together.
// As each reaches a close_merge point it is either folded into a state
// already waiting there or added to that point's waiting set itself.
// Handler is not safe for concurrent use from multiple goroutines except
// through Retain/Release, which are.
type Handler struct {
	interp Interpreter
	reg    *Registry

	openStates []ExecutionState

	// reachedMergeClose buckets paused states by the close_merge point
	// they're waiting at; closePointOrder fixes ReleaseStates' traversal
	// order so a repeated run visits close points in the order they were
	// first reached, not map iteration order.
	reachedMergeClose map[ClosePoint][]ExecutionState
	closePointOrder   []ClosePoint

	openInstruction  uint64
	closedStateCount uint64
	closeMean        float64

	refCount int32
	release  sync.Once
}

// NewHandler opens a merge region starting from openState, registers
// itself with reg, and sets its own reference count to 1 — the caller
// owns that first reference and must Release it exactly once.
func NewHandler(reg *Registry, interp Interpreter, openState ExecutionState) *Handler {
	h := &Handler{
		interp:            interp,
		reg:               reg,
		reachedMergeClose: map[ClosePoint][]ExecutionState{},
		openInstruction:   openState.SteppedInstructions(),
		refCount:          1,
	}
	reg.register(h)
	h.AddOpenState(openState)
	return h
}

// Retain adds a reference to h — typically because a second state forked
// off one already inside the region and both must now keep it alive.
func (h *Handler) Retain() {
	atomic.AddInt32(&h.refCount, 1)
}

// Release drops a reference to h. The last Release performs the actual
// teardown exactly once: every state still paused at a close point is
// resumed, and h deregisters itself.
func (h *Handler) Release() {
	if atomic.AddInt32(&h.refCount, -1) > 0 {
		return
	}
	h.release.Do(func() {
		h.ReleaseStates()
		h.reg.deregister(h)
	})
}

// GetMean returns the running mean instruction distance across every
// state that has reached a close point so far, or 0 before the first one
// has.
func (h *Handler) GetMean() float64 {
	if h.closedStateCount == 0 {
		return 0
	}
	return h.closeMean
}

func (h *Handler) getInstrDistance(es ExecutionState) uint64 {
	return es.SteppedInstructions() - h.openInstruction
}

// GetPrioritizeState returns an open state that the scheduler should run
// next in preference to others: one not already paused at a close point
// and whose instruction distance through the region is still below twice
// the running mean, taking the first such state in insertion order.
// Running such states first keeps siblings roughly
// synchronized, which is what gives later close-point states a chance to
// actually find a merge partner instead of each closing alone.
func (h *Handler) GetPrioritizeState() ExecutionState {
	for _, cur := range h.openStates {
		if h.interp.InCloseMerge(cur) {
			continue
		}
		if float64(h.getInstrDistance(cur)) < 2*h.GetMean() {
			return cur
		}
	}
	return nil
}

// AddOpenState registers es as still exploring inside the region.
func (h *Handler) AddOpenState(es ExecutionState) {
	h.openStates = append(h.openStates, es)
}

// RemoveOpenState drops es from the open set. es must currently be open;
// calling this otherwise is a caller bug.
func (h *Handler) RemoveOpenState(es ExecutionState) {
	for i, cur := range h.openStates {
		if cur == es {
			// Keep the remaining states in insertion order, which
			// GetPrioritizeState relies on to pick deterministically.
			h.openStates = append(h.openStates[:i], h.openStates[i+1:]...)
			return
		}
	}
	panic(fmt.Sprintf("merge: RemoveOpenState: %v is not an open state of this handler", es))
}

// AddClosedState moves es from the open set to point's waiting set,
// first trying to fold es into a state already waiting there. On a
// successful merge the interpreter terminates es; otherwise es itself
// starts (or joins) the waiting set and is paused.
func (h *Handler) AddClosedState(es ExecutionState, point ClosePoint) {
	h.closedStateCount++
	dist := float64(h.getInstrDistance(es))
	h.closeMean += (dist - h.closeMean) / float64(h.closedStateCount)

	h.RemoveOpenState(es)

	group, seen := h.reachedMergeClose[point]
	if !seen {
		h.reachedMergeClose[point] = []ExecutionState{es}
		h.closePointOrder = append(h.closePointOrder, point)
		h.interp.PauseState(es)
		return
	}

	for _, waiting := range group {
		if waiting.Merge(es) {
			h.interp.TerminateState(es)
			return
		}
	}
	h.reachedMergeClose[point] = append(group, es)
	h.interp.PauseState(es)
}

// ReleaseStates resumes every state currently paused at any close point
// and clears the waiting sets. Called automatically by the last Release,
// and safe to call again afterward (it is then a no-op).
func (h *Handler) ReleaseStates() {
	for _, point := range h.closePointOrder {
		for _, es := range h.reachedMergeClose[point] {
			h.interp.ContinueState(es)
		}
	}
	h.reachedMergeClose = map[ClosePoint][]ExecutionState{}
	h.closePointOrder = nil
}

// HasMergedStates reports whether any state is currently paused waiting
// at a close point.
func (h *Handler) HasMergedStates() bool {
	return len(h.reachedMergeClose) > 0
}
