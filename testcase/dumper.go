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

package testcase

// SymbolicValue is one (name, concrete bytes) pair the solver assigned to
// a symbolic object along a terminated path.
type SymbolicValue struct {
	Name  string
	Bytes []byte
}

// HavocedRegion is one memory region the engine gave up tracking
// precisely and declared "any value" for, over the run.
type HavocedRegion struct {
	Name  string
	Value []byte
	Mask  Mask
}

// BuildKTest materializes a terminated state's symbolic solution into a
// KTest record. Only the symbolic object names get the trailing
// "_<digits>" suffix stripped — the source does this for the solver's own
// "<name>_<n>" disambiguation scheme on symbolic reads, never for havoc
// region names, which already come from the program's own memory layout.
func BuildKTest(args []string, symbolics []SymbolicValue, havocs []HavocedRegion) *KTest {
	objects := make([]Object, len(symbolics))
	for i, s := range symbolics {
		objects[i] = Object{Name: StripSymbolicSuffix(s.Name), Bytes: s.Bytes}
	}
	khavocs := make([]Havoc, len(havocs))
	for i, h := range havocs {
		khavocs[i] = Havoc{Name: h.Name, Bytes: h.Value, Mask: h.Mask}
	}
	return &KTest{Args: args, Objects: objects, Havocs: khavocs}
}
