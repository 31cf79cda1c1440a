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

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripSymbolicSuffix(t *testing.T) {
	cases := map[string]string{
		"buf_1":    "buf",
		"buf_42":   "buf",
		"buf_1a":   "buf_1a",
		"buf":      "buf",
		"a_b_3":    "a_b",
		"trailing_": "trailing",
	}
	for in, want := range cases {
		assert.Equal(t, want, StripSymbolicSuffix(in), "input %q", in)
	}
}

// TestRoundTrip covers testable property #7: writing a ktest and reading
// it back yields byte-identical objects.
func TestRoundTrip(t *testing.T) {
	mask := NewMask(5)
	mask.Set(0)
	mask.Set(4)

	kt := &KTest{
		Args: []string{"prog", "--flag"},
		Objects: []Object{
			{Name: "buf", Bytes: []byte{1, 2, 3}},
			{Name: "len", Bytes: []byte{0, 0, 0, 4}},
		},
		Havocs: []Havoc{
			{Name: "heap_region", Bytes: []byte{9, 9, 9, 9, 9}, Mask: mask},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, kt))

	got, err := Read(&buf)
	require.NoError(t, err)

	require.Equal(t, kt.Args, got.Args)
	require.Len(t, got.Objects, len(kt.Objects))
	for i := range kt.Objects {
		assert.Equal(t, kt.Objects[i].Name, got.Objects[i].Name)
		assert.Equal(t, kt.Objects[i].Bytes, got.Objects[i].Bytes)
	}
	require.Len(t, got.Havocs, len(kt.Havocs))
	assert.Equal(t, kt.Havocs[0].Name, got.Havocs[0].Name)
	assert.Equal(t, kt.Havocs[0].Bytes, got.Havocs[0].Bytes)
	assert.Equal(t, []byte(kt.Havocs[0].Mask), []byte(got.Havocs[0].Mask))
	assert.True(t, got.Havocs[0].Mask.Get(0))
	assert.False(t, got.Havocs[0].Mask.Get(1))
	assert.True(t, got.Havocs[0].Mask.Get(4))
}

func TestBuildKTestStripsOnlySymbolicNames(t *testing.T) {
	kt := BuildKTest(
		[]string{"prog"},
		[]SymbolicValue{{Name: "x_1", Bytes: []byte{1}}},
		[]HavocedRegion{{Name: "region_1", Value: []byte{2}, Mask: NewMask(1)}},
	)
	assert.Equal(t, "x", kt.Objects[0].Name)
	assert.Equal(t, "region_1", kt.Havocs[0].Name)
}
