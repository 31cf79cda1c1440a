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

package callrecord

// CallExtraPtr is a pointer not in the call's signature that the user
// asked to trace across this call. At least one of AccessibleIn,
// AccessibleOut must hold — a pointer that is accessible neither before
// nor after the call carries no information and should not be recorded.
type CallExtraPtr struct {
	Name          string
	PtrAddr       uint64
	AccessibleIn  bool
	AccessibleOut bool
	Pointee       *FieldDescr
}

func (e *CallExtraPtr) eq(o *CallExtraPtr) bool {
	return e.Name == o.Name && e.PtrAddr == o.PtrAddr &&
		e.AccessibleIn == o.AccessibleIn && e.AccessibleOut == o.AccessibleOut &&
		e.Pointee.eq(o.Pointee)
}

func (e *CallExtraPtr) sameShape(o *CallExtraPtr) bool {
	return e.AccessibleIn == o.AccessibleIn && e.AccessibleOut == o.AccessibleOut &&
		e.Pointee.sameShape(o.Pointee)
}

// OrderedExtraPtrs is a mapping from the extra pointer's address (the
// size_t key in the source) to its CallExtraPtr, walked in key order at
// dump time — matching the source's std::map<size_t, CallExtraPtr>.
type OrderedExtraPtrs struct {
	keys []uint64
	byKey map[uint64]*CallExtraPtr
}

// NewOrderedExtraPtrs returns an empty extra-pointer map.
func NewOrderedExtraPtrs() *OrderedExtraPtrs {
	return &OrderedExtraPtrs{byKey: map[uint64]*CallExtraPtr{}}
}

// Set records an extra pointer under key (its address).
func (o *OrderedExtraPtrs) Set(key uint64, e *CallExtraPtr) {
	if _, exists := o.byKey[key]; !exists {
		o.keys = append(o.keys, key)
		insertSorted(&o.keys, key)
	}
	o.byKey[key] = e
}

func insertSorted(keys *[]uint64, k uint64) {
	s := *keys
	// keys already contains k (appended above) and is otherwise sorted;
	// swap k down into place. The extra-pointer set is small (a handful
	// per call), so this linear pass is not worth replacing with a binary
	// search.
	for i := len(s) - 1; i > 0; i-- {
		if s[i-1] <= s[i] {
			break
		}
		s[i-1], s[i] = s[i], s[i-1]
	}
	*keys = s
}

// Keys returns the extra-pointer addresses in ascending order.
func (o *OrderedExtraPtrs) Keys() []uint64 {
	if o == nil {
		return nil
	}
	out := make([]uint64, len(o.keys))
	copy(out, o.keys)
	return out
}

// Get returns the extra pointer recorded under key.
func (o *OrderedExtraPtrs) Get(key uint64) (*CallExtraPtr, bool) {
	e, ok := o.byKey[key]
	return e, ok
}

// Len reports the number of tracked extra pointers.
func (o *OrderedExtraPtrs) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

func (o *OrderedExtraPtrs) eq(other *OrderedExtraPtrs) bool {
	if o.Len() != other.Len() {
		return false
	}
	for _, k := range o.Keys() {
		a, _ := o.Get(k)
		b, ok := other.Get(k)
		if !ok || !a.eq(b) {
			return false
		}
	}
	return true
}

func (o *OrderedExtraPtrs) sameShape(other *OrderedExtraPtrs) bool {
	if o.Len() != other.Len() {
		return false
	}
	for _, k := range o.Keys() {
		a, _ := o.Get(k)
		b, ok := other.Get(k)
		if !ok || !a.sameShape(b) {
			return false
		}
	}
	return true
}
