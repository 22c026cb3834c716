package config

import (
	"time"

	"github.com/kbukum/pypeline/validation"
)

// Stderr targets understood by EngineConfig.Stderr besides a file path.
const (
	StderrInherit = "stderr"
	StderrStdout  = "stdout"
	StderrDiscard = "discard"
)

// Output modes for file endpoints bound as pipeline output.
const (
	OutputTruncate = "truncate"
	OutputAppend   = "append"
)

// DefaultGracePeriod is the delay between SIGTERM and SIGKILL on cancellation.
const DefaultGracePeriod = 5 * time.Second

// EngineConfig holds the defaults applied once at the root of every composition.
type EngineConfig struct {
	// Stderr is the default error stream: "stderr", "stdout", "discard" or a file path.
	Stderr string `yaml:"stderr" mapstructure:"stderr" validate:"required"`
	// OutputMode selects how path endpoints bound as output are opened.
	OutputMode string `yaml:"output_mode" mapstructure:"output_mode" validate:"oneof=truncate append"`
	// Dir is the working directory of external processes. Empty means the current directory.
	Dir string `yaml:"dir" mapstructure:"dir" validate:"omitempty,dir"`
	// Env holds extra KEY=value pairs merged into the environment of external processes.
	Env []string `yaml:"env" mapstructure:"env"`
	// GracePeriod is how long a cancelled process may run after SIGTERM.
	GracePeriod time.Duration `yaml:"grace_period" mapstructure:"grace_period"`
}

// ApplyDefaults applies default values to the engine configuration.
func (c *EngineConfig) ApplyDefaults() {
	if c.Stderr == "" {
		c.Stderr = StderrInherit
	}
	if c.OutputMode == "" {
		c.OutputMode = OutputTruncate
	}
	if c.GracePeriod == 0 {
		c.GracePeriod = DefaultGracePeriod
	}
}

// Validate validates the engine configuration.
func (c *EngineConfig) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	return validation.New().
		NonNegative("grace_period", c.GracePeriod).
		EnvPairs("env", c.Env).
		WritableTarget("stderr", c.Stderr, StderrInherit, StderrStdout, StderrDiscard).
		Err()
}
