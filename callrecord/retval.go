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

// RetVal is the return value of an intercepted call. HasExpr false means
// "no return value" — a void call.
type RetVal struct {
	HasExpr bool
	Expr    ExprRef
	IsPtr   bool
	FunPtr  string
	Pointee *FieldDescr
}

func (r *RetVal) eq(o *RetVal) bool {
	if r.HasExpr != o.HasExpr {
		return false
	}
	if r.HasExpr && !r.Expr.Equal(o.Expr) {
		return false
	}
	if r.IsPtr != o.IsPtr || r.FunPtr != o.FunPtr {
		return false
	}
	if r.IsPtr && r.FunPtr == "" {
		return r.Pointee.eq(o.Pointee)
	}
	return true
}

func (r *RetVal) sameShape(o *RetVal) bool {
	if r.HasExpr != o.HasExpr || r.IsPtr != o.IsPtr || r.FunPtr != o.FunPtr {
		return false
	}
	if r.IsPtr && r.FunPtr == "" {
		return r.Pointee.sameShape(o.Pointee)
	}
	return true
}
