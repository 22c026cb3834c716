package process

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"

	"golang.org/x/term"
)

// Handle is a started subprocess.
type Handle struct {
	cmd      Command
	c        *exec.Cmd
	start    time.Time
	startErr error
}

// Start launches a subprocess without waiting for it.
// If the context is canceled, SIGTERM is sent to the process group first,
// then SIGKILL after GracePeriod.
func Start(ctx context.Context, cmd Command) (*Handle, error) {
	h := &Handle{cmd: cmd, start: time.Now()}
	if cmd.Binary == "" {
		h.startErr = fmt.Errorf("process: binary is required")
		return h, h.startErr
	}

	gracePeriod := cmd.GracePeriod
	if gracePeriod == 0 {
		gracePeriod = DefaultGracePeriod
	}

	c := exec.CommandContext(ctx, cmd.Binary, cmd.Args...) //nolint:gosec // dynamic args are the purpose of this package
	c.Dir = cmd.Dir
	c.Env = mergeEnv(cmd.Env)
	c.Stdin = cmd.Stdin
	c.Stdout = cmd.Stdout
	c.Stderr = cmd.Stderr

	group := ownGroup(cmd)
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: group}

	// SIGTERM first; WaitDelay escalates to SIGKILL.
	c.Cancel = func() error {
		if c.Process == nil {
			return nil
		}
		if group {
			return syscall.Kill(-c.Process.Pid, syscall.SIGTERM)
		}
		return c.Process.Signal(syscall.SIGTERM)
	}
	c.WaitDelay = gracePeriod

	h.c = c
	if err := c.Start(); err != nil {
		h.startErr = fmt.Errorf("process: start %s: %w", cmd.Binary, err)
		return h, h.startErr
	}
	return h, nil
}

// Command returns the command the handle was started from.
func (h *Handle) Command() Command { return h.cmd }

// Pid returns the process ID, or 0 if the process never started.
func (h *Handle) Pid() int {
	if h.c == nil || h.c.Process == nil {
		return 0
	}
	return h.c.Process.Pid
}

// Wait blocks until the process exits. A non-zero exit is reported as an
// error alongside the result.
func (h *Handle) Wait() (*Result, error) {
	if h.startErr != nil {
		return &Result{ExitCode: -1}, h.startErr
	}

	err := h.c.Wait()
	result := &Result{
		ExitCode: exitCode(h.c.ProcessState),
		Duration: time.Since(h.start),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if !stderrors.As(err, &exitErr) && result.ExitCode == 0 {
			// I/O copying failed after a clean exit.
			return result, fmt.Errorf("process: %w", err)
		}
		return result, fmt.Errorf("process: exit code %d: %w", result.ExitCode, err)
	}
	return result, nil
}

// Run executes a subprocess, capturing its output, and waits for it to complete.
func Run(ctx context.Context, cmd Command) (*Result, error) {
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	h, err := Start(ctx, cmd)
	if err != nil {
		return &Result{ExitCode: -1}, err
	}
	result, err := h.Wait()
	result.Stdout = stdout.Bytes()
	result.Stderr = stderr.Bytes()

	if err != nil && ctx.Err() != nil {
		// Context cancellation is the expected way to kill a process
		return result, fmt.Errorf("process: killed by context: %w", ctx.Err())
	}
	return result, err
}

func exitCode(state *os.ProcessState) int {
	if state == nil {
		return -1
	}
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return -int(ws.Signal())
	}
	return state.ExitCode()
}

// ownGroup reports whether the child gets its own process group, so that
// cancellation reaches everything it spawned. A child reading or writing a
// terminal stays in the caller's group: the terminal belongs to the
// foreground group and a background reader is stopped by SIGTTIN.
func ownGroup(cmd Command) bool {
	for _, s := range []any{cmd.Stdin, cmd.Stdout, cmd.Stderr} {
		if f, ok := s.(*os.File); ok && f != nil && term.IsTerminal(int(f.Fd())) {
			return false
		}
	}
	return true
}

// mergeEnv merges additional env vars with the current environment.
func mergeEnv(extra []string) []string {
	if len(extra) == 0 {
		return nil // inherit parent env
	}
	env := os.Environ()
	return append(env, extra...)
}
