package pipeline

import (
	"context"
	"io"
	"os"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/pypeline/config"
	"github.com/kbukum/pypeline/endpoint"
	"github.com/kbukum/pypeline/logger"
	"github.com/kbukum/pypeline/observability"
	"github.com/kbukum/pypeline/process"
)

// Shell is the root of every composition. It carries the context processes
// are started with and the defaults applied when a fragment runs.
type Shell struct {
	ctx        context.Context
	log        *logger.Logger
	stderr     endpoint.Endpoint
	outputMode endpoint.Mode
	dir        string
	env        []string
	grace      time.Duration
	tracer     trace.Tracer
	metrics    *observability.Metrics
}

// Option configures a Shell.
type Option func(*Shell)

// WithStderr sets the default error stream of every stage. The writer is
// never closed by the shell. Nil discards error output.
func WithStderr(w io.Writer) Option {
	return func(s *Shell) {
		if w == nil {
			s.stderr = endpoint.Discard()
			return
		}
		s.stderr = endpoint.FromWriter(w).Borrowed()
	}
}

// WithStderrEndpoint sets the default error stream to an arbitrary endpoint,
// e.g. a log file opened in append mode for every execution.
func WithStderrEndpoint(e endpoint.Endpoint) Option {
	return func(s *Shell) { s.stderr = e.Borrowed() }
}

// WithLogger sets the logger used for execution diagnostics.
func WithLogger(l *logger.Logger) Option {
	return func(s *Shell) {
		if l != nil {
			s.log = l
		}
	}
}

// WithDir sets the working directory of external processes.
func WithDir(dir string) Option {
	return func(s *Shell) { s.dir = dir }
}

// WithEnv adds KEY=value pairs to the environment of external processes.
func WithEnv(env ...string) Option {
	return func(s *Shell) { s.env = append(s.env, env...) }
}

// WithAppend makes path endpoints bound as output append instead of truncate.
func WithAppend() Option {
	return func(s *Shell) { s.outputMode = endpoint.Append }
}

// WithGracePeriod sets how long a canceled process may run after SIGTERM.
func WithGracePeriod(d time.Duration) Option {
	return func(s *Shell) { s.grace = d }
}

// WithTracer sets the tracer for execution spans. Defaults to the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(s *Shell) { s.tracer = t }
}

// WithMetrics enables execution metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Shell) { s.metrics = m }
}

// NewShell creates a shell bound to ctx. Canceling ctx terminates the
// processes of every execution started from this shell.
func NewShell(ctx context.Context, opts ...Option) *Shell {
	if ctx == nil {
		ctx = context.Background()
	}
	s := &Shell{
		ctx:        ctx,
		log:        logger.Get(logger.ComponentPipeline),
		stderr:     endpoint.FromFile(os.Stderr),
		outputMode: endpoint.Write,
		grace:      process.DefaultGracePeriod,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewShellFromConfig creates a shell from loaded configuration. Options are
// applied after the configuration and take precedence.
func NewShellFromConfig(ctx context.Context, cfg *config.Config, opts ...Option) (*Shell, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	base := []Option{
		WithLogger(logger.New(&cfg.Logging, cfg.Name).WithComponent("pipeline")),
		WithDir(cfg.Engine.Dir),
		WithEnv(cfg.Engine.Env...),
		WithGracePeriod(cfg.Engine.GracePeriod),
	}
	switch cfg.Engine.Stderr {
	case config.StderrInherit:
	case config.StderrStdout:
		base = append(base, WithStderrEndpoint(endpoint.FromFile(os.Stdout)))
	case config.StderrDiscard:
		base = append(base, WithStderr(nil))
	default:
		base = append(base, WithStderrEndpoint(endpoint.FromPath(cfg.Engine.Stderr)))
	}
	if cfg.Engine.OutputMode == config.OutputAppend {
		base = append(base, WithAppend())
	}
	return NewShell(ctx, append(base, opts...)...), nil
}

// Context returns the context processes are started with.
func (s *Shell) Context() context.Context { return s.ctx }

// Logger returns the shell's logger.
func (s *Shell) Logger() *logger.Logger { return s.log }

// Command returns a fragment holding one process stage.
func (s *Shell) Command(line string, opts ...StageOption) *Fragment {
	return s.fragment(ProcessStage(line), opts)
}

// Func returns a fragment holding one native stage. The transform is named
// after the Go function.
func (s *Shell) Func(fn TransformFunc, opts ...StageOption) *Fragment {
	return s.fragment(NativeStage(newTransform("", fn)), opts)
}

// NamedFunc returns a fragment holding one native stage identified by name.
func (s *Shell) NamedFunc(name string, fn TransformFunc, opts ...StageOption) *Fragment {
	return s.fragment(NativeStage(newTransform(name, fn)), opts)
}

// Stage returns a fragment holding st.
func (s *Shell) Stage(st Stage, opts ...StageOption) *Fragment {
	return s.fragment(st, opts)
}

func (s *Shell) fragment(st Stage, opts []StageOption) *Fragment {
	f := &Fragment{shell: s}
	for _, opt := range opts {
		if err := opt(&st); err != nil && f.err == nil {
			f.err = err
		}
	}
	f.stages = []Stage{st}
	return f
}

// StageOption configures a single stage at construction.
type StageOption func(*Stage) error

// StderrTo redirects the error stream of this stage only. Accepts any value
// endpoint.From does.
func StderrTo(v any) StageOption {
	return func(st *Stage) error {
		e, err := endpoint.From(v)
		if err != nil {
			return err
		}
		st.stderr = e
		return nil
	}
}

// InDir runs a process stage in dir.
func InDir(dir string) StageOption {
	return func(st *Stage) error {
		st.dir = dir
		return nil
	}
}

var defaultShell atomic.Pointer[Shell]

// DefaultShell returns the shell used by the package-level constructors.
func DefaultShell() *Shell {
	if s := defaultShell.Load(); s != nil {
		return s
	}
	defaultShell.CompareAndSwap(nil, NewShell(context.Background()))
	return defaultShell.Load()
}

// SetDefaultShell replaces the shell used by the package-level constructors.
func SetDefaultShell(s *Shell) {
	defaultShell.Store(s)
}

// Command returns a process fragment on the default shell.
func Command(line string, opts ...StageOption) *Fragment {
	return DefaultShell().Command(line, opts...)
}

// Func returns a native fragment on the default shell.
func Func(fn TransformFunc, opts ...StageOption) *Fragment {
	return DefaultShell().Func(fn, opts...)
}

// NamedFunc returns a named native fragment on the default shell.
func NamedFunc(name string, fn TransformFunc, opts ...StageOption) *Fragment {
	return DefaultShell().NamedFunc(name, fn, opts...)
}
