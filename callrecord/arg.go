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

// CallArg is one formal argument of an intercepted call.
//
// If IsPtr and FunPtr is set, Pointee is ignored — the argument is a
// function pointer, named by FunPtr. If IsPtr and FunPtr is empty,
// Pointee may describe either an opaque "path pointer" (neither
// DoTraceValueIn nor DoTraceValueOut set) or a traced pointee.
type CallArg struct {
	Name    string
	Expr    ExprRef
	IsPtr   bool
	FunPtr  string // empty means "not a function pointer"
	Pointee *FieldDescr
}

// IsFunPtr reports whether this argument is a function pointer.
func (a *CallArg) IsFunPtr() bool {
	return a.IsPtr && a.FunPtr != ""
}

// IsTracedPointer reports whether this argument is a pointer whose pointee
// has at least one traced (in or out) value, as opposed to an opaque path
// pointer.
func (a *CallArg) IsTracedPointer() bool {
	return a.IsPtr && !a.IsFunPtr() && a.Pointee != nil &&
		(a.Pointee.DoTraceValueIn || a.Pointee.DoTraceValueOut)
}

func (a *CallArg) eq(o *CallArg) bool {
	if a.Name != o.Name || a.IsPtr != o.IsPtr || a.FunPtr != o.FunPtr {
		return false
	}
	if !a.Expr.Equal(o.Expr) {
		return false
	}
	if a.IsPtr && a.FunPtr == "" {
		return a.Pointee.eq(o.Pointee)
	}
	return true
}

// sameShape ignores Expr value and out-values; used by sameInvocation.
func (a *CallArg) sameShape(o *CallArg) bool {
	if a.Name != o.Name || a.IsPtr != o.IsPtr || a.FunPtr != o.FunPtr {
		return false
	}
	if a.IsPtr && a.FunPtr == "" {
		return a.Pointee.sameShape(o.Pointee)
	}
	return true
}
