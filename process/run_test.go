package process_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/pypeline/process"
)

func sh(script string) process.Command {
	return process.Command{Binary: "sh", Args: []string{"-c", script}}
}

func TestRun(t *testing.T) {
	withStdin := process.Command{Binary: "cat", Stdin: strings.NewReader("fed\n")}
	withEnv := sh(`printf %s "$PYPELINE_TEST"`)
	withEnv.Env = []string{"PYPELINE_TEST=from-env"}
	withDir := process.Command{Binary: "pwd", Dir: "/"}

	tests := []struct {
		name    string
		cmd     process.Command
		code    int
		stdout  string
		stderr  string
		wantErr bool
	}{
		{"argv", process.Command{Binary: "echo", Args: []string{"two", "words"}}, 0, "two words\n", "", false},
		{"stdin", withStdin, 0, "fed\n", "", false},
		{"env", withEnv, 0, "from-env", "", false},
		{"dir", withDir, 0, "/\n", "", false},
		{"stderr", sh("echo warn >&2"), 0, "", "warn\n", false},
		{"exit code", sh("exit 42"), 42, "", "", true},
		{"signal", sh("kill -KILL $$"), -9, "", "", true},
		{"no binary", process.Command{}, -1, "", "", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, err := process.Run(context.Background(), tc.cmd)
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tc.wantErr)
			}
			if res.ExitCode != tc.code {
				t.Errorf("exit code = %d, want %d", res.ExitCode, tc.code)
			}
			if string(res.Stdout) != tc.stdout {
				t.Errorf("stdout = %q, want %q", res.Stdout, tc.stdout)
			}
			if string(res.Stderr) != tc.stderr {
				t.Errorf("stderr = %q, want %q", res.Stderr, tc.stderr)
			}
		})
	}
}

func TestRun_CanceledSendsTerm(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	cmd := process.Command{Binary: "sleep", Args: []string{"10"}, GracePeriod: time.Second}
	res, err := process.Run(ctx, cmd)
	if err == nil || !strings.Contains(err.Error(), "killed by context") {
		t.Fatalf("expected a context kill, got %v", err)
	}
	if res.ExitCode != -15 {
		t.Errorf("expected SIGTERM exit code -15, got %d", res.ExitCode)
	}
	if res.Duration > 5*time.Second {
		t.Errorf("process outlived its grace period: %v", res.Duration)
	}
}

func TestStartWait_Pipes(t *testing.T) {
	var out strings.Builder
	h, err := process.Start(context.Background(), process.Command{
		Binary: "tr",
		Args:   []string{"a-z", "A-Z"},
		Stdin:  strings.NewReader("shout\n"),
		Stdout: &out,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Pid() == 0 {
		t.Fatal("expected a pid")
	}
	result, err := h.Wait()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success() {
		t.Fatalf("expected success, got %d", result.ExitCode)
	}
	if out.String() != "SHOUT\n" {
		t.Fatalf("expected 'SHOUT\\n', got %q", out.String())
	}
}

func TestStartFailure(t *testing.T) {
	h, err := process.Start(context.Background(), process.Command{Binary: "/nonexistent/binary"})
	if err == nil {
		t.Fatal("expected start error")
	}
	result, werr := h.Wait()
	if werr == nil || result.ExitCode != -1 {
		t.Fatalf("expected -1 and an error, got %d, %v", result.ExitCode, werr)
	}
}

func TestWaitSignaled(t *testing.T) {
	h, err := process.Start(context.Background(), process.Command{
		Binary: "sh",
		Args:   []string{"-c", "kill -TERM $$"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result, _ := h.Wait()
	if result.ExitCode != -15 {
		t.Fatalf("expected -15, got %d", result.ExitCode)
	}
}
