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

import "sync"

// Registry is the process-wide set of live Handlers, mirroring the
// interpreter's own mergeGroups list. A Handler appends itself on
// construction and removes itself on its last Release by swap-and-pop,
// so removal costs no more than a slice scan.
type Registry struct {
	mu       sync.Mutex
	handlers []*Handler
}

// NewRegistry returns an empty handler registry.
func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) register(h *Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers = append(r.handlers, h)
}

func (r *Registry) deregister(h *Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := -1
	for i, cur := range r.handlers {
		if cur == h {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	last := len(r.handlers) - 1
	r.handlers[idx] = r.handlers[last]
	r.handlers = r.handlers[:last]
}

// Handlers returns a snapshot of the currently live handlers.
func (r *Registry) Handlers() []*Handler {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Handler, len(r.handlers))
	copy(out, r.handlers)
	return out
}

// Len reports how many handlers are currently registered.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handlers)
}
