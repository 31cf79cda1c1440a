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
	"bytes"
	"fmt"
	"io"

	"github.com/practical-formal-methods/symjoin/callrecord"
)

// NextPrefixFile returns a fresh writer for the next prefix record to be
// emitted, and is called at most once per sibling group actually
// written. Modeled on the source's KleeHandler::openNextCallPathPrefixFile,
// which hands CallTree a new numbered call-prefix<NNNNNN>.txt file for
// every group it dumps.
type NextPrefixFile func() (io.WriteCloser, error)

// DumpPrefixesSExpr walks root pre-order and, for every sibling group at
// every node that has children, asks next for a fresh writer and writes
// one "(history (...)) (tip_calls (...))" record into it. history is the
// chain of calls from the tree root down to and including the group's
// parent (not including the grouped tips themselves; empty for groups of
// the root's children); tip_calls holds every member of the group —
// deliberately not collapsed to one representative, since members differ
// only in the dimensions SameInvocation ignores (out-values,
// ReturnContext) and a consumer may care about exactly those
// differences.
//
// A group whose history or tip_calls contains a call with an absent
// traced out-value is dropped entirely — next is never called for it, so
// it consumes no file — rather than written partially; the walk
// continues into that node's children regardless, since they are
// independent subtrees.
func DumpPrefixesSExpr(root *Node, next NextPrefixFile) error {
	return dumpPrefixesSExpr(root, nil, next)
}

func dumpPrefixesSExpr(n *Node, history callrecord.CallPath, next NextPrefixFile) error {
	if len(n.children) > 0 {
		groups := n.GroupChildren()
		for _, group := range groups {
			var buf bytes.Buffer
			if !writeGroupRecord(&buf, history, group) {
				continue
			}
			w, err := next()
			if err != nil {
				return err
			}
			_, writeErr := w.Write(buf.Bytes())
			closeErr := w.Close()
			if writeErr != nil {
				return writeErr
			}
			if closeErr != nil {
				return closeErr
			}
		}
	}
	for _, c := range n.children {
		nextHistory := append(append(callrecord.CallPath{}, history...), c.tip.Call)
		if err := dumpPrefixesSExpr(c, nextHistory, next); err != nil {
			return err
		}
	}
	return nil
}

func writeGroupRecord(buf *bytes.Buffer, history callrecord.CallPath, group []Tip) bool {
	fmt.Fprint(buf, "(history (")
	for _, call := range history {
		if !WriteCallInfoSExpr(buf, call) {
			return false
		}
	}
	fmt.Fprint(buf, "))\n(tip_calls (")
	for _, tip := range group {
		if !WriteCallInfoSExpr(buf, tip.Call) {
			return false
		}
	}
	fmt.Fprint(buf, "))\n")
	return true
}
