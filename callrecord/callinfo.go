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

import "hash/fnv"

// CallInfo is one complete intercepted-call record. It is consumed by the
// rest of the core only once Returned holds — a CallInfo for a call that
// has not yet returned (interpreter is still inside the callee) is an
// interpreter-internal intermediate that never reaches CallTree.Insert or
// the dumpers.
type CallInfo struct {
	Callee   string
	CallSite int // source line, matching the teacher's "lineno:callee(...)" convention

	Args      []*CallArg
	ExtraPtrs *OrderedExtraPtrs
	Ret       RetVal
	Returned  bool

	// CallContext is the ordered sequence of path constraints accumulated
	// at the moment the call was entered.
	CallContext []ExprRef
	// ReturnContext is the ordered sequence of constraints added during
	// the call's execution, up to and including its return.
	ReturnContext []ExprRef
}

// NewCallInfo returns an unreturned CallInfo for callee at callSite.
func NewCallInfo(callee string, callSite int) *CallInfo {
	return &CallInfo{
		Callee:    callee,
		CallSite:  callSite,
		ExtraPtrs: NewOrderedExtraPtrs(),
	}
}

// Eq is structural equality: every field equal, including both contexts.
// This is what CallTree.Insert uses to decide whether a new call
// collapses into an existing child.
func (c *CallInfo) Eq(o *CallInfo) bool {
	if c == o {
		return true
	}
	if c == nil || o == nil {
		return false
	}
	if c.Callee != o.Callee || c.CallSite != o.CallSite || c.Returned != o.Returned {
		return false
	}
	if len(c.Args) != len(o.Args) {
		return false
	}
	for i, a := range c.Args {
		if !a.eq(o.Args[i]) {
			return false
		}
	}
	if !c.ExtraPtrs.eq(o.ExtraPtrs) {
		return false
	}
	if !c.Ret.eq(&o.Ret) {
		return false
	}
	return exprSliceEq(c.CallContext, o.CallContext) && exprSliceEq(c.ReturnContext, o.ReturnContext)
}

// SameInvocation is invocation-equivalence: same callee, same
// IsPtr/FunPtr shape for every argument and the return value, same traced
// field structure, and an identical CallContext. ReturnContext and
// out-values may differ — those are exactly the dimensions that
// CallTree.GroupChildren groups over.
func (c *CallInfo) SameInvocation(o *CallInfo) bool {
	if c == o {
		return true
	}
	if c == nil || o == nil {
		return false
	}
	if c.Callee != o.Callee {
		return false
	}
	if len(c.Args) != len(o.Args) {
		return false
	}
	for i, a := range c.Args {
		if !a.sameShape(o.Args[i]) {
			return false
		}
	}
	if !c.ExtraPtrs.sameShape(o.ExtraPtrs) {
		return false
	}
	if !c.Ret.sameShape(&o.Ret) {
		return false
	}
	return exprSliceEq(c.CallContext, o.CallContext)
}

func exprSliceEq(a, b []ExprRef) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// StructuralHash is a cheap pre-check hash over the fields Eq compares,
// used by CallTree to avoid a full Eq walk against every sibling before
// finding (or failing to find) a structurally-equal child. Modeled on the
// teacher's own prefixHash: analysis/lookahead-analyzer.go hashes a
// program-counter prefix incrementally with fnv32a; here the whole
// printed record is hashed at once since a CallInfo is small and
// immutable once Returned.
func (c *CallInfo) StructuralHash() uint32 {
	h := fnv.New32a()
	writeString(h, c.Callee)
	writeUint64(h, uint64(c.CallSite))
	for _, a := range c.Args {
		writeString(h, a.Name)
		writeString(h, a.Expr.String())
		writeBool(h, a.IsPtr)
		writeString(h, a.FunPtr)
	}
	writeBool(h, c.Ret.HasExpr)
	if c.Ret.HasExpr {
		writeString(h, c.Ret.Expr.String())
	}
	for _, e := range c.CallContext {
		writeString(h, e.String())
	}
	for _, e := range c.ReturnContext {
		writeString(h, e.String())
	}
	return h.Sum32()
}

// InvocationHash is the analogous pre-check hash for SameInvocation,
// deliberately excluding ReturnContext and any out-value.
func (c *CallInfo) InvocationHash() uint32 {
	h := fnv.New32a()
	writeString(h, c.Callee)
	for _, a := range c.Args {
		writeBool(h, a.IsPtr)
		writeString(h, a.FunPtr)
	}
	for _, e := range c.CallContext {
		writeString(h, e.String())
	}
	return h.Sum32()
}

// CallPath is the finite ordered sequence of calls observed along one
// terminated state.
type CallPath []*CallInfo
