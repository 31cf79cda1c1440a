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

package calltree

import (
	"fmt"
	"io"

	"github.com/practical-formal-methods/symjoin/callrecord"
)

// writePointeeSExpr renders a FieldDescr as
// ((full (<expr>?)) (sname ("type"?)) (break_down ( ... ))), selecting
// either the in-value or the out-value (and the matching recursive
// variant for nested fields) depending on useOut. It returns false, per
// the core's dump-time failure semantics, iff a field along the way is
// marked traced on the requested side but its expression is absent.
func writePointeeSExpr(w io.Writer, f *callrecord.FieldDescr, useOut bool) bool {
	if f == nil {
		fmt.Fprint(w, "((full ()) (sname ()) (break_down ()))")
		return true
	}
	traced := f.DoTraceValueIn
	val := f.InVal
	if useOut {
		traced = f.DoTraceValueOut
		val = f.OutVal
	}
	if traced && val.IsZero() {
		return false
	}
	fmt.Fprint(w, "((full (")
	if traced {
		fmt.Fprint(w, val.String())
	}
	fmt.Fprint(w, ")) (sname (")
	if f.Type != "" {
		fmt.Fprintf(w, "%q", f.Type)
	}
	fmt.Fprint(w, ")) (break_down (")
	for _, off := range f.NestedFields.Offsets() {
		nested, _ := f.NestedFields.Get(off)
		fmt.Fprintf(w, "\n((fname %q) (value ", nested.Name)
		if !writePointeeSExpr(w, nested, useOut) {
			return false
		}
		fmt.Fprintf(w, ") (addr %d))", off)
	}
	fmt.Fprint(w, ")))")
	return true
}

// writeCallArgSExpr renders one CallArg as
// ((aname "…") (value <expr>) (ptr <PtrShape>)).
func writeCallArgSExpr(w io.Writer, a *callrecord.CallArg) bool {
	fmt.Fprintf(w, "\n((aname %q)\n(value %s)\n(ptr ", a.Name, a.Expr.String())
	switch {
	case !a.IsPtr:
		fmt.Fprint(w, "Nonptr")
	case a.IsFunPtr():
		fmt.Fprintf(w, "(Funptr %q)", a.FunPtr)
	case a.IsTracedPointer():
		fmt.Fprint(w, "(Curioptr\n((before ")
		if !writePointeeSExpr(w, a.Pointee, false) {
			return false
		}
		fmt.Fprint(w, ")\n(after ")
		if !writePointeeSExpr(w, a.Pointee, true) {
			return false
		}
		fmt.Fprint(w, ")))")
	default:
		fmt.Fprint(w, "Apathptr")
	}
	fmt.Fprint(w, "))")
	return true
}

// writeRetSExpr renders a RetVal as (ret ...).
func writeRetSExpr(w io.Writer, r *callrecord.RetVal) bool {
	if !r.HasExpr {
		fmt.Fprint(w, "(ret ())")
		return true
	}
	fmt.Fprintf(w, "(ret (((value %s)\n(ptr ", r.Expr.String())
	switch {
	case !r.IsPtr:
		fmt.Fprint(w, "Nonptr")
	case r.FunPtr != "":
		fmt.Fprintf(w, "(Funptr %q)", r.FunPtr)
	case r.Pointee != nil && r.Pointee.DoTraceValueOut:
		fmt.Fprint(w, "(Curioptr ((before ((full ()) (break_down ()) (sname ()))) (after ")
		if !writePointeeSExpr(w, r.Pointee, true) {
			return false
		}
		fmt.Fprint(w, ")))")
	default:
		fmt.Fprint(w, "Apathptr")
	}
	fmt.Fprint(w, "))))")
	return true
}

// writeExtraPtrSExpr renders one CallExtraPtr as
// ((pname "…") (value N) (ptee (Changing|Closing|Opening ...))). An extra
// pointer with neither AccessibleIn nor AccessibleOut is a construction
// error, not a dump-time one — CallExtraPtr's invariant guarantees it
// never reaches here.
func writeExtraPtrSExpr(w io.Writer, e *callrecord.CallExtraPtr) bool {
	fmt.Fprintf(w, "\n((pname %q)\n(value %d)\n(ptee ", e.Name, e.PtrAddr)
	switch {
	case e.AccessibleIn && e.AccessibleOut:
		fmt.Fprint(w, "(Changing (")
		if !writePointeeSExpr(w, e.Pointee, false) {
			return false
		}
		fmt.Fprint(w, "\n")
		if !writePointeeSExpr(w, e.Pointee, true) {
			return false
		}
		fmt.Fprint(w, "))")
	case e.AccessibleIn:
		fmt.Fprint(w, "(Closing ")
		if !writePointeeSExpr(w, e.Pointee, false) {
			return false
		}
		fmt.Fprint(w, ")")
	default:
		fmt.Fprint(w, "(Opening ")
		if !writePointeeSExpr(w, e.Pointee, true) {
			return false
		}
		fmt.Fprint(w, ")")
	}
	fmt.Fprint(w, "))")
	return true
}

// WriteCallInfoSExpr renders one CallInfo record as
// ((fun_name "…") (args (…)) (extra_ptrs (…)) (ret …) (call_context (…))
// (ret_context (…))). It returns false without completing the write if a
// traced out-value is absent — the caller's Writer has already received
// a partial record in that case and must discard or truncate its output.
func WriteCallInfoSExpr(w io.Writer, ci *callrecord.CallInfo) bool {
	fmt.Fprintf(w, "((fun_name %q)\n (args (", ci.Callee)
	for _, a := range ci.Args {
		if !writeCallArgSExpr(w, a) {
			return false
		}
	}
	fmt.Fprint(w, "))\n(extra_ptrs (")
	for _, k := range ci.ExtraPtrs.Keys() {
		e, _ := ci.ExtraPtrs.Get(k)
		if !writeExtraPtrSExpr(w, e) {
			return false
		}
	}
	fmt.Fprint(w, "))\n")
	if !writeRetSExpr(w, &ci.Ret) {
		return false
	}
	fmt.Fprint(w, "(call_context (")
	for _, e := range ci.CallContext {
		fmt.Fprintf(w, "\n%s", e.String())
	}
	fmt.Fprint(w, "))\n(ret_context (")
	for _, e := range ci.ReturnContext {
		fmt.Fprintf(w, "\n%s", e.String())
	}
	fmt.Fprint(w, ")))\n")
	return true
}
