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

// Package callrecord is the in-memory schema for one intercepted call: its
// arguments, traced pointees, extra tracked pointers, return value, and the
// path-constraint contexts gathered at entry and during the call.
package callrecord

import "github.com/practical-formal-methods/symjoin/symval"

// ExprRef is the core's view of an expression: an opaque, value-equal,
// cheaply-comparable handle into the interpreter's expression pool.
type ExprRef = symval.Ref

// FieldDescr describes one named field of a traced pointee. InVal is
// present iff DoTraceValueIn holds; OutVal is present iff DoTraceValueOut
// holds — callers that construct a FieldDescr by hand must keep the two
// pairs in sync, the constructors below do it for them.
type FieldDescr struct {
	Name  string
	Type  string
	Addr  uint64

	DoTraceValueIn bool
	InVal          ExprRef

	DoTraceValueOut bool
	OutVal          ExprRef

	// NestedFields is an ordered mapping from integer byte offset to the
	// field at that offset, mirroring a struct's layout.
	NestedFields *OrderedFields
}

// NewFieldDescr builds a FieldDescr, enforcing the InVal/DoTraceValueIn
// (and Out) pairing invariant at construction time rather than leaving it
// to be violated by hand.
func NewFieldDescr(name, typ string, addr uint64) *FieldDescr {
	return &FieldDescr{
		Name:         name,
		Type:         typ,
		Addr:         addr,
		NestedFields: NewOrderedFields(),
	}
}

// TraceIn records the pre-call value of the field.
func (f *FieldDescr) TraceIn(v ExprRef) *FieldDescr {
	f.DoTraceValueIn = true
	f.InVal = v
	return f
}

// TraceOut records the post-call value of the field.
func (f *FieldDescr) TraceOut(v ExprRef) *FieldDescr {
	f.DoTraceValueOut = true
	f.OutVal = v
	return f
}

// eq is structural equality between two FieldDescrs, including nested
// fields, used by CallInfo.Eq.
func (f *FieldDescr) eq(o *FieldDescr) bool {
	if f == nil || o == nil {
		return f == o
	}
	if f.Name != o.Name || f.Type != o.Type || f.Addr != o.Addr {
		return false
	}
	if f.DoTraceValueIn != o.DoTraceValueIn || f.DoTraceValueOut != o.DoTraceValueOut {
		return false
	}
	if f.DoTraceValueIn && !f.InVal.Equal(o.InVal) {
		return false
	}
	if f.DoTraceValueOut && !f.OutVal.Equal(o.OutVal) {
		return false
	}
	return f.NestedFields.eq(o.NestedFields)
}

// sameShape compares only the traced-field *structure* — offsets and the
// DoTraceValueIn/Out flags — ignoring InVal/OutVal content. This is the
// building block for CallInfo.SameInvocation.
func (f *FieldDescr) sameShape(o *FieldDescr) bool {
	if f == nil || o == nil {
		return f == o
	}
	if f.DoTraceValueIn != o.DoTraceValueIn || f.DoTraceValueOut != o.DoTraceValueOut {
		return false
	}
	return f.NestedFields.sameShape(o.NestedFields)
}

// OrderedFields is an ordered mapping from integer offset to FieldDescr,
// preserving insertion order for deterministic dumping.
type OrderedFields struct {
	order []int
	byOff map[int]*FieldDescr
}

// NewOrderedFields returns an empty ordered field map.
func NewOrderedFields() *OrderedFields {
	return &OrderedFields{byOff: map[int]*FieldDescr{}}
}

// Set inserts or overwrites the field at offset. First insertion fixes its
// iteration position.
func (o *OrderedFields) Set(offset int, f *FieldDescr) {
	if _, exists := o.byOff[offset]; !exists {
		o.order = append(o.order, offset)
	}
	o.byOff[offset] = f
}

// Get returns the field at offset, if any.
func (o *OrderedFields) Get(offset int) (*FieldDescr, bool) {
	f, ok := o.byOff[offset]
	return f, ok
}

// Len reports the number of fields.
func (o *OrderedFields) Len() int {
	if o == nil {
		return 0
	}
	return len(o.order)
}

// Offsets returns the field offsets in insertion order.
func (o *OrderedFields) Offsets() []int {
	if o == nil {
		return nil
	}
	out := make([]int, len(o.order))
	copy(out, o.order)
	return out
}

func (o *OrderedFields) eq(other *OrderedFields) bool {
	if o.Len() != other.Len() {
		return false
	}
	for _, off := range o.Offsets() {
		a, _ := o.Get(off)
		b, ok := other.Get(off)
		if !ok || !a.eq(b) {
			return false
		}
	}
	return true
}

func (o *OrderedFields) sameShape(other *OrderedFields) bool {
	if o.Len() != other.Len() {
		return false
	}
	for _, off := range o.Offsets() {
		a, _ := o.Get(off)
		b, ok := other.Get(off)
		if !ok || !a.sameShape(b) {
			return false
		}
	}
	return true
}
