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

// Package symval is a minimal stand-in for the interpreter's hash-consed
// expression pool. The core packages (callrecord, calltree, merge) only
// ever treat an expression as an opaque, value-equal, cheaply-comparable
// handle (symval.Ref); this package gives that handle a concrete body so
// the rest of the repo and its tests have something to exercise.
package symval

import (
	"fmt"
	"math/big"
)

// Expr is a symbolic or constant expression node. Real interpreters carry
// dozens of kinds (select, concat, extract, ...); this package keeps only
// the handful needed to drive call records and constraint lists.
type Expr interface {
	String() string
	expr()
}

// Constant is a concrete, fully-evaluated value of the given bit width.
type Constant struct {
	Value *big.Int
	Width uint
}

func (*Constant) expr() {}

func (c *Constant) String() string {
	if c.Value == nil {
		return fmt.Sprintf("%d:i%d", 0, c.Width)
	}
	return fmt.Sprintf("%d:i%d", c.Value, c.Width)
}

// Symbolic names an unconstrained input value.
type Symbolic struct {
	Name  string
	Width uint
}

func (*Symbolic) expr() {}

func (s *Symbolic) String() string {
	return fmt.Sprintf("%s:i%d", s.Name, s.Width)
}

// Binary is a two-operand symbolic operation (Add, Eq, ULt, ...). Op is
// free-form; the core never interprets it, only prints it.
type Binary struct {
	Op       string
	LHS, RHS Expr
}

func (*Binary) expr() {}

func (b *Binary) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Op, b.LHS.String(), b.RHS.String())
}

// Not is a boolean negation of a path constraint. Nothing else in this
// repository constructs one.
type Not struct {
	Src Expr
}

func (*Not) expr() {}

func (n *Not) String() string {
	return fmt.Sprintf("(Not %s)", n.Src.String())
}
