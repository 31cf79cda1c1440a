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
	"strings"

	"github.com/practical-formal-methods/symjoin/callrecord"
)

// renderPointeeValue renders a traced pointee's full before/after value
// plus a recursive per-field breakdown, e.g. "[3->7][len:4->4]". A nil
// f (opaque path pointer) renders as "[...]" with no breakdown. Returns
// ok=false if any traced side is marked present but its value is absent.
func renderPointeeValue(f *callrecord.FieldDescr) (string, bool) {
	if f == nil {
		return "[...]", true
	}
	in, ok := renderSide(f.DoTraceValueIn, f.InVal)
	if !ok {
		return "", false
	}
	out, ok := renderSide(f.DoTraceValueOut, f.OutVal)
	if !ok {
		return "", false
	}
	s := fmt.Sprintf("[%s->%s]", in, out)
	for _, off := range f.NestedFields.Offsets() {
		nested, _ := f.NestedFields.Get(off)
		ns, ok := renderPointeeValue(nested)
		if !ok {
			return "", false
		}
		// ns starts with the nested field's own "[in->out]"; label that
		// bracket with the field name, giving "[len:4->4]".
		s += "[" + nested.Name + ":" + strings.TrimPrefix(ns, "[")
	}
	return s, true
}

// renderExtraPointeeValue renders an extra pointer's top-level before/after
// value only. Unlike a traced argument pointee, an extra pointer never
// recurses into NestedFields here — the plaintext format only ever
// tracked the whole-object value for extras, not a field breakdown.
func renderExtraPointeeValue(f *callrecord.FieldDescr) (string, bool) {
	if f == nil {
		return "[...]", true
	}
	in, ok := renderSide(f.DoTraceValueIn, f.InVal)
	if !ok {
		return "", false
	}
	out, ok := renderSide(f.DoTraceValueOut, f.OutVal)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("[%s->%s]", in, out), true
}

func renderSide(traced bool, v callrecord.ExprRef) (string, bool) {
	if !traced {
		return "?", true
	}
	if v.IsZero() {
		return "", false
	}
	return v.String(), true
}

func renderArg(a *callrecord.CallArg) (string, bool) {
	switch {
	case !a.IsPtr:
		return a.Name + ":" + a.Expr.String(), true
	case a.IsFunPtr():
		return a.Name + ":&" + a.FunPtr, true
	case a.IsTracedPointer():
		s, ok := renderPointeeValue(a.Pointee)
		if !ok {
			return "", false
		}
		return a.Name + ":&" + s, true
	default:
		return a.Name + ":&[...]", true
	}
}

func renderRet(r *callrecord.RetVal) (string, bool) {
	if !r.HasExpr {
		return "void", true
	}
	switch {
	case r.IsPtr && r.FunPtr != "":
		return "&" + r.FunPtr, true
	case r.IsPtr && r.Pointee != nil && (r.Pointee.DoTraceValueIn || r.Pointee.DoTraceValueOut):
		s, ok := renderPointeeValue(r.Pointee)
		if !ok {
			return "", false
		}
		return "&" + s, true
	case r.IsPtr:
		return "&[...]", true
	default:
		return r.Expr.String(), true
	}
}

// WriteCallInfoPlain writes one call as "<line>:<callee>(<args>) -> <ret>"
// followed by one "extra:" line per tracked extra pointer, in ascending
// address order. It returns false — writing nothing further for this
// call — the moment a traced out-value turns out to be absent.
func WriteCallInfoPlain(w io.Writer, ci *callrecord.CallInfo) bool {
	args := make([]string, 0, len(ci.Args))
	for _, a := range ci.Args {
		s, ok := renderArg(a)
		if !ok {
			return false
		}
		args = append(args, s)
	}
	ret, ok := renderRet(&ci.Ret)
	if !ok {
		return false
	}
	fmt.Fprintf(w, "%d:%s(%s) -> %s\n", ci.CallSite, ci.Callee, strings.Join(args, ", "), ret)

	for _, k := range ci.ExtraPtrs.Keys() {
		e, _ := ci.ExtraPtrs.Get(k)
		s, ok := renderExtraPointeeValue(e.Pointee)
		if !ok {
			return false
		}
		fmt.Fprintf(w, "  extra: %s@%d = %s\n", e.Name, e.PtrAddr, s)
	}
	return true
}

// WriteCallPathPlain writes path one call per line in order, stopping —
// without an error, without writing any marker — at the first call whose
// traced out-value is absent. It then always writes a trailing
// ";;-- Constraints --" section listing constraints in order, even when
// the call dump above was cut short: the source's KleeHandler::dumpCallPath
// writes that footer unconditionally after its own early-break loop, and
// a truncated call dump is no reason to also lose the path's constraints.
func WriteCallPathPlain(w io.Writer, path callrecord.CallPath, constraints []callrecord.ExprRef) {
	for _, call := range path {
		if !WriteCallInfoPlain(w, call) {
			break
		}
	}
	fmt.Fprint(w, ";;-- Constraints --\n")
	for _, c := range constraints {
		fmt.Fprintf(w, "%s\n", c.String())
	}
}
