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
	"fmt"
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/practical-formal-methods/symjoin/callrecord"
	"github.com/practical-formal-methods/symjoin/calltree"
	"github.com/practical-formal-methods/symjoin/testcase"
)

// Handler owns the output directory: it numbers and writes each
// terminated state's test case and call-trace dump, and tees warnings
// and informational messages to both stderr and files in that directory.
// Modeled on the source's KleeHandler, rendered with logrus (a
// TextFormatter with full timestamps, SetOutput to stderr plus
// messages.txt, and a hook copying warnings into warnings.txt) instead of
// the source's ad hoc warnings.txt/messages.txt writers.
type Handler struct {
	cfg Config
	log *log.Logger

	numTests    int
	numPrefixes int
}

// NewHandler creates cfg.OutputDir (including parents) and wires up
// logrus to tee into warnings.txt inside it, returning a ready Handler.
func NewHandler(cfg Config) (*Handler, error) {
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("runtime: create output dir: %w", err)
	}

	messages, err := os.Create(filepath.Join(cfg.OutputDir, "messages.txt"))
	if err != nil {
		return nil, fmt.Errorf("runtime: create messages.txt: %w", err)
	}
	warnings, err := os.Create(filepath.Join(cfg.OutputDir, "warnings.txt"))
	if err != nil {
		return nil, fmt.Errorf("runtime: create warnings.txt: %w", err)
	}

	logger := log.New()
	logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	logger.SetOutput(io.MultiWriter(os.Stderr, messages))
	logger.AddHook(&warningTeeHook{w: warnings})
	if cfg.DebugLogMerge || cfg.DebugLogIncompleteMerge {
		logger.SetLevel(log.DebugLevel)
	}

	return &Handler{cfg: cfg, log: logger}, nil
}

// warningTeeHook duplicates warning-and-above entries into warnings.txt,
// so it holds exactly the subset of messages.txt a user triaging a run
// cares about first.
type warningTeeHook struct{ w io.Writer }

func (h *warningTeeHook) Levels() []log.Level {
	return []log.Level{log.WarnLevel, log.ErrorLevel, log.FatalLevel, log.PanicLevel}
}

func (h *warningTeeHook) Fire(entry *log.Entry) error {
	line, err := entry.String()
	if err != nil {
		return err
	}
	_, err = io.WriteString(h.w, line)
	return err
}

// Logger returns the handler's configured logrus instance, for the rest
// of the runtime to log through.
func (h *Handler) Logger() *log.Logger { return h.log }

func (h *Handler) testFilename(id int, suffix string) string {
	return filepath.Join(h.cfg.OutputDir, fmt.Sprintf("test%06d.%s", id, suffix))
}

// ProcessTestCase writes one numbered .ktest file for kt. An I/O error
// opening the file is logged as a warning and the test is skipped rather
// than aborting the run — a stale descriptor left behind by a half-open
// file can exhaust descriptors long before the run is done.
func (h *Handler) ProcessTestCase(kt *testcase.KTest) {
	h.numTests++
	id := h.numTests
	path := h.testFilename(id, "ktest")

	f, err := os.Create(path)
	if err != nil {
		h.log.WithError(err).Warnf("unable to open %s, losing test case", path)
		return
	}
	defer f.Close()

	if err := testcase.Write(f, kt); err != nil {
		h.log.WithError(err).Warnf("unable to write %s, losing test case", path)
	}
}

// ProcessCallPath writes the plaintext call-path dump for one terminated
// path, plus its trailing ";;-- Constraints --" section, under
// call-path<id>.txt, honoring DumpCallTraces.
func (h *Handler) ProcessCallPath(id uint64, path callrecord.CallPath, constraints []callrecord.ExprRef) {
	if !h.cfg.DumpCallTraces {
		return
	}
	name := filepath.Join(h.cfg.OutputDir, fmt.Sprintf("call-path%06d.txt", id))
	f, err := os.Create(name)
	if err != nil {
		h.log.WithError(err).Warnf("unable to open %s, skipping call-path dump", name)
		return
	}
	defer f.Close()

	calltree.WriteCallPathPlain(f, path, constraints)
}

// ProcessCallTreePrefixes writes root's sibling-group prefix records,
// one per numbered call-prefix<NNNNNN>.txt file, honoring
// DumpCallTracePrefixes. Mirrors the source's
// KleeHandler::openNextCallPathPrefixFile, which hands CallTree a fresh
// numbered file for every group it dumps rather than one shared stream.
func (h *Handler) ProcessCallTreePrefixes(root *calltree.Node) {
	if !h.cfg.DumpCallTracePrefixes {
		return
	}
	err := calltree.DumpPrefixesSExpr(root, func() (io.WriteCloser, error) {
		h.numPrefixes++
		name := filepath.Join(h.cfg.OutputDir, fmt.Sprintf("call-prefix%06d.txt", h.numPrefixes))
		f, err := os.Create(name)
		if err != nil {
			h.log.WithError(err).Warnf("unable to open %s, skipping this prefix group", name)
			return &discardWriteCloser{}, nil
		}
		return f, nil
	})
	if err != nil {
		h.log.WithError(err).Warn("error writing call-tree prefix dump")
	}
}

// discardWriteCloser absorbs a prefix group's bytes when its file could
// not be opened, so one bad file doesn't abort the rest of the walk.
type discardWriteCloser struct{}

func (*discardWriteCloser) Write(p []byte) (int, error) { return len(p), nil }
func (*discardWriteCloser) Close() error                { return nil }
