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

package runtime

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/practical-formal-methods/symjoin/callrecord"
	"github.com/practical-formal-methods/symjoin/calltree"
	"github.com/practical-formal-methods/symjoin/symval"
	"github.com/practical-formal-methods/symjoin/testcase"
)

func TestHandlerProcessTestCaseWritesNumberedFiles(t *testing.T) {
	dir := t.TempDir()
	h, err := NewHandler(Config{OutputDir: dir})
	require.NoError(t, err)

	h.ProcessTestCase(&testcase.KTest{Args: []string{"prog"}})
	h.ProcessTestCase(&testcase.KTest{Args: []string{"prog"}})

	assert.FileExists(t, filepath.Join(dir, "test000001.ktest"))
	assert.FileExists(t, filepath.Join(dir, "test000002.ktest"))
	assert.FileExists(t, filepath.Join(dir, "messages.txt"))
	assert.FileExists(t, filepath.Join(dir, "warnings.txt"))
}

func TestHandlerProcessCallPathRespectsFlag(t *testing.T) {
	dir := t.TempDir()
	h, err := NewHandler(Config{OutputDir: dir, DumpCallTraces: true})
	require.NoError(t, err)

	pool := symval.NewPool()
	ci := callrecord.NewCallInfo("f", 1)
	ci.Args = []*callrecord.CallArg{{Name: "x", Expr: pool.ConstInt(1, 32)}}
	ci.Returned = true
	constraints := []callrecord.ExprRef{pool.ConstInt(1, 1)}

	h.ProcessCallPath(1, callrecord.CallPath{ci}, constraints)
	path := filepath.Join(dir, "call-path000001.txt")
	assert.FileExists(t, path)
	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(contents), ";;-- Constraints --")
	assert.Contains(t, string(contents), constraints[0].String())

	h2, err := NewHandler(Config{OutputDir: t.TempDir()})
	require.NoError(t, err)
	h2.ProcessCallPath(1, callrecord.CallPath{ci}, constraints)
	entries, err := os.ReadDir(h2.cfg.OutputDir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), "call-path", "ProcessCallPath must no-op when DumpCallTraces is off")
	}
}

func TestHandlerProcessCallTreePrefixes(t *testing.T) {
	dir := t.TempDir()
	h, err := NewHandler(Config{OutputDir: dir, DumpCallTracePrefixes: true})
	require.NoError(t, err)

	pool := symval.NewPool()
	root := calltree.NewTree()
	ci := callrecord.NewCallInfo("f", 1)
	ci.Args = []*callrecord.CallArg{{Name: "x", Expr: pool.ConstInt(1, 32)}}
	ci.Returned = true
	root.Insert(callrecord.CallPath{ci}, 1)

	ci2 := callrecord.NewCallInfo("g", 2)
	ci2.Returned = true
	root.Insert(callrecord.CallPath{ci2}, 2)

	h.ProcessCallTreePrefixes(root)
	assert.FileExists(t, filepath.Join(dir, "call-prefix000001.txt"))
	assert.FileExists(t, filepath.Join(dir, "call-prefix000002.txt"))
	assert.NoFileExists(t, filepath.Join(dir, "call-prefix000000.txt"))
}
