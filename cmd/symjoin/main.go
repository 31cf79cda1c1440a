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

// Command symjoin reads a JSON fixture describing a set of terminated
// call paths, inserts them into one call tree, and writes out test cases
// and call-trace dumps for the resulting prefixes. It plays the role the
// teacher's own main.go plays for its analyzer: a thin batch driver over
// a JSON fixture, not an interactive tool.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/practical-formal-methods/symjoin/callrecord"
	"github.com/practical-formal-methods/symjoin/calltree"
	"github.com/practical-formal-methods/symjoin/merge"
	"github.com/practical-formal-methods/symjoin/runtime"
	"github.com/practical-formal-methods/symjoin/symval"
	"github.com/practical-formal-methods/symjoin/testcase"
)

// fixture is the on-disk JSON shape this command reads: a list of
// terminated call paths, each a list of calls with scalar integer
// arguments and return values. It is intentionally narrower than
// callrecord.CallInfo — real call records come from the interpreter, not
// a hand-written file — but wide enough to exercise call-tree insertion,
// grouping, both dump formats, and (with -use-merge) the state-merge
// region protocol end to end.
type fixture struct {
	Paths []fixturePath `json:"paths"`
}

type fixturePath struct {
	ID          uint64        `json:"id"`
	Calls       []fixtureCall `json:"calls"`
	Constraints []int64       `json:"constraints"`
}

type fixtureCall struct {
	Callee   string       `json:"callee"`
	CallSite int          `json:"callSite"`
	Args     []fixtureArg `json:"args"`
	Ret      *int64       `json:"ret"`
}

type fixtureArg struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

func loadFixture(path string) (*fixture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixture: %w", err)
	}
	defer f.Close()

	var fx fixture
	if err := json.NewDecoder(f).Decode(&fx); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	return &fx, nil
}

func buildCallPath(pool *symval.Pool, calls []fixtureCall) callrecord.CallPath {
	path := make(callrecord.CallPath, 0, len(calls))
	for _, c := range calls {
		ci := callrecord.NewCallInfo(c.Callee, c.CallSite)
		for _, a := range c.Args {
			ci.Args = append(ci.Args, &callrecord.CallArg{Name: a.Name, Expr: pool.ConstInt(a.Value, 64)})
		}
		ci.Returned = true
		if c.Ret != nil {
			ci.Ret = callrecord.RetVal{HasExpr: true, Expr: pool.ConstInt(*c.Ret, 64)}
		}
		path = append(path, ci)
	}
	return path
}

func buildConstraints(pool *symval.Pool, vals []int64) []callrecord.ExprRef {
	out := make([]callrecord.ExprRef, 0, len(vals))
	for _, v := range vals {
		out = append(out, pool.ConstInt(v, 64))
	}
	return out
}

// pending is one call path that has survived whatever processing ran
// before it reaches the call tree: either every fixture path, unchanged,
// or only the states a merge region left standing.
type pending struct {
	id          uint64
	path        callrecord.CallPath
	constraints []callrecord.ExprRef
}

// callPathsMergeable reports whether a and b are the same length and
// invocation-equivalent call for call. It stands in for the real
// constraint-solver check a build with klee's Expr/Solver would use —
// this demo has no solver, so "mergeable" degrades to "the two states
// took the same sequence of invocation-equivalent calls" (argument and
// return values may differ).
func callPathsMergeable(a, b callrecord.CallPath) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].SameInvocation(b[i]) {
			return false
		}
	}
	return true
}

// runMergeRegion demonstrates the open_merge/close_merge protocol end to
// end: every path in the fixture opens together in one merge.Handler
// region, and all of them reach a single shared close point, where
// callPathsMergeable decides which pairs fold together. States that get
// folded into another are dropped; the rest are returned for normal
// call-tree insertion exactly like the non-merging path.
func runMergeRegion(fx *fixture, pool *symval.Pool, logger *log.Logger) []pending {
	if len(fx.Paths) == 0 {
		return nil
	}

	states := make([]*runtime.State, len(fx.Paths))
	items := make([]pending, len(fx.Paths))
	for i, p := range fx.Paths {
		st := runtime.NewState(p.ID)
		st.CallPath = buildCallPath(pool, p.Calls)
		st.Step(uint64(len(p.Calls)))
		states[i] = st
		items[i] = pending{id: p.ID, path: st.CallPath, constraints: buildConstraints(pool, p.Constraints)}
	}
	for _, st := range states {
		st := st
		st.Mergeable = func(other *runtime.State) bool {
			return callPathsMergeable(st.CallPath, other.CallPath)
		}
	}

	sched := runtime.NewScheduler(states[0])
	reg := merge.NewRegistry()
	handler := merge.NewHandler(reg, sched, states[0])
	for _, st := range states[1:] {
		sched.AddActive(st)
		handler.AddOpenState(st)
	}

	const closePoint = "fixture-end"
	for _, st := range states {
		handler.AddClosedState(st, closePoint)
	}
	handler.Release()

	survivors := make([]pending, 0, len(items))
	for i, st := range states {
		if sched.Terminated(st) {
			logger.Infof("state %d merged away at close point %q", st.ID, closePoint)
			continue
		}
		survivors = append(survivors, items[i])
	}
	return survivors
}

func main() {
	fs := flag.NewFlagSet("symjoin", flag.ExitOnError)
	var cfg runtime.Config
	runtime.RegisterFlags(fs, &cfg)
	fixtureFlag := fs.String("fixture", "", "path to a JSON call-path fixture")
	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	if *fixtureFlag == "" {
		fmt.Fprintln(os.Stderr, "symjoin: -fixture is required")
		os.Exit(2)
	}

	out, err := runtime.NewHandler(cfg)
	if err != nil {
		log.WithError(err).Fatal("unable to set up output directory")
	}
	logger := out.Logger()

	fx, err := loadFixture(*fixtureFlag)
	if err != nil {
		logger.WithError(err).Fatal("unable to load fixture")
	}

	pool := symval.NewPool()
	root := calltree.NewTree()

	var survivors []pending
	if cfg.UseMerge {
		survivors = runMergeRegion(fx, pool, logger)
	} else {
		for _, p := range fx.Paths {
			survivors = append(survivors, pending{
				id:          p.ID,
				path:        buildCallPath(pool, p.Calls),
				constraints: buildConstraints(pool, p.Constraints),
			})
		}
	}

	if cfg.StopAfterNTests > 0 && len(survivors) > cfg.StopAfterNTests {
		logger.Infof("stopping after %d tests as requested", cfg.StopAfterNTests)
		survivors = survivors[:cfg.StopAfterNTests]
	}

	constraintsByID := make(map[uint64][]callrecord.ExprRef, len(survivors))
	for _, s := range survivors {
		root.Insert(s.path, s.id)
		constraintsByID[s.id] = s.constraints

		// This fixture-driven demo has no solver, so every test case is a
		// concrete argv with no symbolic objects or havocs — real runs
		// populate both from ExecutionState.getSymbolicSolution.
		out.ProcessTestCase(testcase.BuildKTest([]string{"symjoin"}, nil, nil))
	}

	for id, path := range root.CollectPaths() {
		out.ProcessCallPath(id, path, constraintsByID[id])
	}
	out.ProcessCallTreePrefixes(root)

	logger.Infof("processed %d fixture paths (%d reached the call tree), %d distinct prefixes",
		len(fx.Paths), len(survivors), root.Size())
}
