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

// GroupChildren partitions n's children into an ordered sequence of
// groups: two tip calls land in the same group iff they are
// invocation-equivalent (CallInfo.SameInvocation). Group order follows
// first-appearance order of each group's representative in Children();
// order within a group follows Children() order.
//
// GroupChildren is a pure function of Children() — calling it twice
// yields the same partition, and every child appears in exactly one
// group.
func (n *Node) GroupChildren() [][]Tip {
	var groups [][]Tip
	repHash := map[int]uint32{} // group index -> representative's InvocationHash, for a cheap pre-filter

	for _, child := range n.children {
		tip := child.tip
		h := tip.Call.InvocationHash()

		placed := false
		for gi, group := range groups {
			if repHash[gi] != h {
				continue
			}
			if group[0].Call.SameInvocation(tip.Call) {
				groups[gi] = append(groups[gi], tip)
				placed = true
				break
			}
		}
		if !placed {
			repHash[len(groups)] = h
			groups = append(groups, []Tip{tip})
		}
	}
	return groups
}
