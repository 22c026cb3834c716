package process

import "time"

// Result holds the status of a completed subprocess.
type Result struct {
	// Stdout is the captured standard output. Only set by Run.
	Stdout []byte
	// Stderr is the captured standard error. Only set by Run.
	Stderr []byte
	// ExitCode is the process exit code, or the negated signal number if the
	// process was killed by a signal. -1 if the process never started.
	ExitCode int
	// Duration is how long the process ran.
	Duration time.Duration
}

// Success reports whether the process exited with code 0.
func (r *Result) Success() bool { return r != nil && r.ExitCode == 0 }
