package pipeline

import (
	"strings"

	"github.com/kbukum/pypeline/endpoint"
	"github.com/kbukum/pypeline/errors"
	"github.com/kbukum/pypeline/process"
)

type stageKind int

const (
	processStage stageKind = iota
	nativeStage
)

func (k stageKind) String() string {
	if k == processStage {
		return "process"
	}
	return "native"
}

// Stage is one element of a pipeline: an external command line or a chain
// of native transforms. Stages are immutable; every method returns a copy.
type Stage struct {
	kind       stageKind
	line       string
	dir        string
	stderr     endpoint.Endpoint
	transforms []Transform
}

// ProcessStage returns a stage running the given command line.
func ProcessStage(line string) Stage {
	return Stage{kind: processStage, line: line}
}

// NativeStage returns a stage applying transforms in order.
func NativeStage(transforms ...Transform) Stage {
	return Stage{kind: nativeStage, transforms: append([]Transform(nil), transforms...)}
}

// IsProcess reports whether the stage runs an external command.
func (s Stage) IsProcess() bool { return s.kind == processStage }

// Line returns the command line of a process stage.
func (s Stage) Line() string { return s.line }

// Transforms returns the transforms of a native stage.
func (s Stage) Transforms() []Transform { return append([]Transform(nil), s.transforms...) }

// Identity names the stage in errors and logs.
func (s Stage) Identity() string {
	if s.kind == processStage {
		return s.line
	}
	return transformNames(s.transforms)
}

// Append returns a process stage with suffix added as further arguments.
func (s Stage) Append(suffix string) (Stage, error) {
	if s.kind != processStage {
		return s, errors.Misuse("append", "arguments can only be appended to a process stage")
	}
	s.line = s.line + " " + suffix
	return s, nil
}

// Format returns a process stage with {}, {N} and {name} placeholders filled.
func (s Stage) Format(positional []any, named map[string]any) (Stage, error) {
	if s.kind != processStage {
		return s, errors.Misuse("format", "only a process stage has a command line to fill")
	}
	line, err := fillTemplate(s.line, positional, named)
	if err != nil {
		return s, errors.Misuse("format", err.Error()).WithCause(err).WithDetail("command", s.line)
	}
	s.line = line
	return s, nil
}

// WithStderr returns a copy with a stage-local error stream.
func (s Stage) WithStderr(e endpoint.Endpoint) Stage {
	s.stderr = e
	return s
}

// WithDir returns a copy running in dir. Only meaningful for process stages.
func (s Stage) WithDir(dir string) Stage {
	s.dir = dir
	return s
}

// command parses the stage into a process command.
func (s Stage) command() (process.Command, error) {
	cmd, err := process.Parse(s.line)
	if err != nil {
		return cmd, err
	}
	cmd.Dir = s.dir
	return cmd, nil
}

func transformNames(ts []Transform) string {
	names := make([]string, len(ts))
	for i, t := range ts {
		names[i] = t.Name
	}
	return strings.Join(names, " | ")
}
