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

// Package calltree is the prefix-sharing tree of call records: insertion
// of terminated call paths, grouping of sibling tips by invocation
// equivalence, and the two serialized dump formats described in the core
// specification (s-expression prefixes and plaintext call traces).
package calltree

import "github.com/practical-formal-methods/symjoin/callrecord"

// Tip pairs one call record with the id of the path that first introduced
// it into the tree.
type Tip struct {
	Call   *callrecord.CallInfo
	PathID uint64
}

// Node is one node of the call tree. The root holds a zero-value Tip and
// is never itself emitted by a dumper; every other node's Tip is the call
// that all paths passing through it have in common up to that point.
//
// Invariant: among the children of any node, no two share a structurally
// equal (CallInfo.Eq) tip call — Insert collapses those into one node.
// Two children may still be invocation-equivalent; GroupChildren reveals
// that at dump time.
type Node struct {
	tip      Tip
	children []*Node

	// hashIndex speeds up the child lookup Insert performs on every step:
	// candidates sharing a CallInfo.StructuralHash are compared with the
	// full Eq; everyone else is skipped without a field-by-field walk.
	hashIndex map[uint32][]int

	// terminalPathIDs records the ids of every inserted CallPath that ends
	// exactly at n (as opposed to merely passing through it on the way to
	// a longer path). CollectPaths reads these while walking down from the
	// root to rebuild each path for plaintext call-path dumping.
	terminalPathIDs []uint64
}

// NewTree returns an empty call tree (a root with no children).
func NewTree() *Node {
	return &Node{hashIndex: map[uint32][]int{}}
}

// Tip returns the node's own tip (undefined for the root).
func (n *Node) Tip() Tip { return n.tip }

// Children returns the node's children in insertion order. The returned
// slice must not be mutated by the caller.
func (n *Node) Children() []*Node { return n.children }

// Insert recursively walks the tree from n, collapsing path into existing
// nodes wherever a structurally equal call has already been recorded, and
// appending new nodes (tagged with pathID) where it has not.
func (n *Node) Insert(path callrecord.CallPath, pathID uint64) {
	if len(path) == 0 {
		n.terminalPathIDs = append(n.terminalPathIDs, pathID)
		return
	}
	head, tail := path[0], path[1:]
	if child := n.findEqualChild(head); child != nil {
		child.Insert(tail, pathID)
		return
	}
	child := &Node{
		tip:       Tip{Call: head, PathID: pathID},
		hashIndex: map[uint32][]int{},
	}
	idx := len(n.children)
	n.children = append(n.children, child)
	h := head.StructuralHash()
	n.hashIndex[h] = append(n.hashIndex[h], idx)
	child.Insert(tail, pathID)
}

func (n *Node) findEqualChild(call *callrecord.CallInfo) *Node {
	for _, idx := range n.hashIndex[call.StructuralHash()] {
		if n.children[idx].tip.Call.Eq(call) {
			return n.children[idx]
		}
	}
	return nil
}

// Size returns the number of nodes below n, not counting n itself. Called
// on the tree root, this is the number of distinct prefixes.
func (n *Node) Size() int {
	count := 0
	for _, c := range n.children {
		count += 1 + c.Size()
	}
	return count
}

// CollectPaths reconstructs every inserted CallPath, keyed by the id it
// was inserted under. Every inserted id gets its own entry and its own
// slice, including a path that is Eq to an earlier one call for call —
// Insert collapsed such paths onto the same terminal node, so their
// entries hold the same calls.
func (n *Node) CollectPaths() map[uint64]callrecord.CallPath {
	result := map[uint64]callrecord.CallPath{}
	var walk func(node *Node, acc callrecord.CallPath)
	walk = func(node *Node, acc callrecord.CallPath) {
		for _, id := range node.terminalPathIDs {
			result[id] = append(callrecord.CallPath{}, acc...)
		}
		for _, c := range node.children {
			next := append(append(callrecord.CallPath{}, acc...), c.tip.Call)
			walk(c, next)
		}
	}
	walk(n, nil)
	return result
}
