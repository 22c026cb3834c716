package pipeline

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"syscall"

	"github.com/kbukum/pypeline/logger"
	"github.com/kbukum/pypeline/stream"
)

// shovelState describes which ends a native run is connected to. It is
// chosen once when the task is built.
type shovelState int

const (
	// noPipes: the run is both origin and terminus.
	noPipes shovelState = iota
	// shovelIn: the run produces records into a sink.
	shovelIn
	// shovelOut: the run consumes an upstream source for side effects.
	shovelOut
	// shovelThrough: the run maps a source onto a sink.
	shovelThrough
)

func (s shovelState) String() string {
	switch s {
	case noPipes:
		return "NO_PIPES"
	case shovelIn:
		return "SHOVEL_IN"
	case shovelOut:
		return "SHOVEL_OUT"
	default:
		return "SHOVEL_THROUGH"
	}
}

func stateFor(hasSource, hasSink bool) shovelState {
	switch {
	case hasSource && hasSink:
		return shovelThrough
	case hasSource:
		return shovelOut
	case hasSink:
		return shovelIn
	default:
		return noPipes
	}
}

// boundTransform is a transform together with the error stream of the
// stage it came from.
type boundTransform struct {
	Transform
	stderr io.Writer
}

// task drives the transforms of one native run and moves records between
// its source and sink.
type task struct {
	identity   string
	transforms []boundTransform
	source     stream.Iterator[string]
	sink       io.Writer
	closers    []io.Closer
	state      shovelState
	log        *logger.Logger

	done chan struct{}
	err  error
}

func newTask(identity string, transforms []boundTransform, source stream.Iterator[string], sink io.Writer, closers []io.Closer, log *logger.Logger) *task {
	return &task{
		identity:   identity,
		transforms: transforms,
		source:     source,
		sink:       sink,
		closers:    closers,
		state:      stateFor(source != nil, sink != nil),
		log:        log,
		done:       make(chan struct{}),
	}
}

func (t *task) start(ctx context.Context) {
	t.log.Debug("native run started", logger.Fields(
		logger.FieldStage, t.identity,
		logger.FieldStatus, t.state.String(),
	))
	go t.run(ctx)
}

func (t *task) run(ctx context.Context) {
	defer close(t.done)
	defer t.release()
	defer func() {
		if r := recover(); r != nil {
			t.err = fmt.Errorf("native run %s panicked: %v", t.identity, r)
		}
	}()
	t.err = t.shovel(ctx)
}

func (t *task) shovel(ctx context.Context) error {
	cur := t.source
	for _, bt := range t.transforms {
		out, err := bt.Fn(withStderr(ctx, bt.stderr), cur)
		if err != nil {
			return fmt.Errorf("%s: %w", bt.Name, err)
		}
		if out != nil && bt.stderr != nil {
			out = stderrScoped{Iterator: out, stderr: bt.stderr}
		}
		cur = out
	}
	if cur == nil {
		return nil
	}

	var err error
	if t.sink != nil {
		_, err = stream.WriteLines(ctx, cur, t.sink)
	} else {
		_, err = stream.Drain(ctx, cur)
	}
	// A downstream process that stops reading early is not a failure of this run.
	if stderrors.Is(err, syscall.EPIPE) {
		return nil
	}
	return err
}

// stderrScoped keeps a transform's error stream in the context of every
// pull, so per-record callbacks see it through StderrFrom.
type stderrScoped struct {
	stream.Iterator[string]
	stderr io.Writer
}

func (s stderrScoped) Next(ctx context.Context) (string, bool, error) {
	return s.Iterator.Next(withStderr(ctx, s.stderr))
}

// release closes the junction pipe ends owned by this task so neighbors
// see end-of-file or a broken pipe.
func (t *task) release() {
	for _, c := range t.closers {
		_ = c.Close()
	}
}

// wait blocks until the task finishes and returns its recorded error.
func (t *task) wait() error {
	<-t.done
	return t.err
}
