// Package testutil provides fixtures for pipeline tests.
//
// T wraps a testing.T with a temporary directory for input files, executable
// scripts and output assertions:
//
//	func TestFeature(t *testing.T) {
//	    h := testutil.T(t)
//	    h.RequireTools("sort")
//	    in := h.File("in.txt", "b", "a")
//	    out := h.Path("out.txt")
//	    ...
//	    h.AssertLines(out, "a", "b")
//	}
//
// Recorder collects records from native sinks safely across goroutines.
package testutil
