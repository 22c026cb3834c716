package testutil

import (
	"bufio"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// THelper provides testing.T integration for pipeline fixtures.
type THelper struct {
	t   *testing.T
	ctx context.Context
	dir string
}

// T wraps a testing.T to provide helper methods. Files created through the
// helper live in a temporary directory removed when the test ends.
//
// Example:
//
//	func TestReverse(t *testing.T) {
//	    h := testutil.T(t)
//	    in := h.File("in.txt", "a", "b")
//	    ...
//	    h.AssertLines(out, "b", "a")
//	}
func T(t *testing.T) *THelper {
	t.Helper()
	return &THelper{
		t:   t,
		ctx: context.Background(),
		dir: t.TempDir(),
	}
}

// WithContext sets a custom context for the helper.
func (h *THelper) WithContext(ctx context.Context) *THelper {
	h.ctx = ctx
	return h
}

// Context returns the helper's context.
func (h *THelper) Context() context.Context { return h.ctx }

// Dir returns the temporary directory of the test.
func (h *THelper) Dir() string { return h.dir }

// Path returns the absolute path of name inside the temporary directory.
func (h *THelper) Path(name string) string {
	return filepath.Join(h.dir, name)
}

// File writes lines, each followed by a newline, to name and returns its path.
func (h *THelper) File(name string, lines ...string) string {
	h.t.Helper()
	p := h.Path(name)
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(p, []byte(b.String()), 0o644); err != nil {
		h.t.Fatalf("failed to write fixture %s: %v", name, err)
	}
	return p
}

// Script writes an executable /bin/sh script with the given body and
// returns its path.
func (h *THelper) Script(name, body string) string {
	h.t.Helper()
	p := h.Path(name)
	if err := os.WriteFile(p, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		h.t.Fatalf("failed to write script %s: %v", name, err)
	}
	return p
}

// Lines reads the file at path and returns its lines without newlines.
func (h *THelper) Lines(path string) []string {
	h.t.Helper()
	lines, err := ReadLines(path)
	if err != nil {
		h.t.Fatalf("failed to read %s: %v", path, err)
	}
	return lines
}

// AssertLines fails the test unless the file at path holds exactly want.
func (h *THelper) AssertLines(path string, want ...string) {
	h.t.Helper()
	got := h.Lines(path)
	if len(got) != len(want) {
		h.t.Fatalf("%s: got %d lines %q, want %d lines %q", filepath.Base(path), len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			h.t.Fatalf("%s line %d: got %q, want %q", filepath.Base(path), i+1, got[i], want[i])
		}
	}
}

// RequireTools skips the test unless every named executable is on PATH.
func (h *THelper) RequireTools(names ...string) {
	h.t.Helper()
	for _, n := range names {
		if _, err := exec.LookPath(n); err != nil {
			h.t.Skipf("%s not available: %v", n, err)
		}
	}
}

// ReadLines reads a file and returns its lines without newlines.
func ReadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck // read-only

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}

// Recorder is a concurrency-safe record collector for native sinks.
type Recorder struct {
	mu    sync.Mutex
	lines []string
}

// Record appends a line. It satisfies the signature expected by pipeline.Consumer.
func (r *Recorder) Record(_ context.Context, line string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, line)
	return nil
}

// Lines returns a copy of the recorded lines.
func (r *Recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}

// Len returns the number of recorded lines.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.lines)
}
