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

package symval

import "crypto/sha256"

// Ref is an opaque, value-equal, cheaply-comparable handle to an interned
// expression — the concrete type behind callrecord.ExprRef in this repo's
// demo and test fixtures.
type Ref struct {
	key string
	e   Expr
}

// Expr returns the underlying expression. Absent (the zero Ref) means
// "no value", mirroring RetVal.Expr being nil for a void call.
func (r Ref) Expr() Expr { return r.e }

// IsZero reports whether r holds no expression.
func (r Ref) IsZero() bool { return r.e == nil }

func (r Ref) String() string {
	if r.e == nil {
		return "<none>"
	}
	return r.e.String()
}

// Equal is value equality on the interned content, not pointer identity —
// two Refs produced by the same or different Pools are equal iff their
// printed forms are equal. This is what callrecord.Eq relies on to treat
// ExprRef as a plain comparable value.
func (r Ref) Equal(other Ref) bool {
	return r.key == other.key
}

// Pool hash-conses expressions: structurally identical expressions map to
// the same Ref. Grounded on the teacher's own prefixHash use of fnv to key
// repeated structures (analysis/lookahead-analyzer.go), generalized here to
// sha256 over the printed form so keys never collide on truncation.
type Pool struct {
	entries map[string]Ref
}

// NewPool returns an empty hash-consing pool.
func NewPool() *Pool {
	return &Pool{entries: map[string]Ref{}}
}

// Intern returns the canonical Ref for e, creating one if this is the
// first time e's printed form has been seen.
func (p *Pool) Intern(e Expr) Ref {
	if e == nil {
		return Ref{}
	}
	key := contentKey(e)
	if r, ok := p.entries[key]; ok {
		return r
	}
	r := Ref{key: key, e: e}
	p.entries[key] = r
	return r
}

// ConstInt interns a width-bit constant holding v.
func (p *Pool) ConstInt(v int64, width uint) Ref {
	return p.Intern(&Constant{Value: bigFromInt64(v), Width: width})
}

// Sym interns a fresh symbolic value named name.
func (p *Pool) Sym(name string, width uint) Ref {
	return p.Intern(&Symbolic{Name: name, Width: width})
}

func contentKey(e Expr) string {
	sum := sha256.Sum256([]byte(e.String()))
	return string(sum[:])
}
