package pipeline

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/pypeline/endpoint"
	"github.com/kbukum/pypeline/errors"
	"github.com/kbukum/pypeline/logger"
	"github.com/kbukum/pypeline/observability"
	"github.com/kbukum/pypeline/process"
)

// member is one joinable unit of an execution: a process or a native run.
type member struct {
	identity string
	kind     stageKind
	proc     *process.Handle
	task     *task
}

// join waits for the member and returns its exit code. Native runs that
// fail report 1.
func (m member) join() (int, error) {
	if m.proc != nil {
		result, err := m.proc.Wait()
		code := result.ExitCode
		if err != nil && code == 0 {
			code = -1
		}
		return code, err
	}
	if err := m.task.wait(); err != nil {
		return 1, err
	}
	return 0, nil
}

// Execution is a running pipeline. It is waited on exactly once, either by
// the call that completed the fragment or by the parallel group it was
// registered with.
type Execution struct {
	id       string
	fragment string
	members  []member
	streams  []*endpoint.Stream
	log      *logger.Logger
	obs      *observability.ExecutionContext
	span     trace.Span
	ctx      context.Context

	once sync.Once
	err  error
}

// ID returns the unique identifier of the execution.
func (e *Execution) ID() string { return e.id }

// String returns the fragment the execution was started from.
func (e *Execution) String() string { return e.fragment }

// Wait joins every member in pipeline order, then closes the resolved
// endpoints. A failed member does not stop the others from being joined;
// all failures are reported together. Later calls return the same result.
func (e *Execution) Wait() error {
	e.once.Do(func() { e.err = e.wait() })
	return e.err
}

func (e *Execution) wait() error {
	var failures []errors.Failure
	for _, m := range e.members {
		code, err := m.join()
		e.obs.MemberJoined(e.ctx, e.span, m.kind.String(), m.identity, code)
		if code == 0 && err == nil {
			continue
		}
		failures = append(failures, errors.Failure{Identity: m.identity, Code: code, Err: err})
		e.log.Warn("pipeline member failed",
			logger.WithErr(logger.MemberFields(m.identity, m.kind.String(), code), err))
	}

	var closeErr error
	for _, s := range e.streams {
		if err := s.Close(); err != nil && closeErr == nil {
			closeErr = errors.EndpointUnavailable(s.Name(), err)
		}
	}

	var err error
	switch {
	case len(failures) > 0:
		err = errors.ExecutionFailed(failures)
	case closeErr != nil:
		err = closeErr
	}
	e.obs.End(e.ctx, e.span, err)
	e.log.Debug("execution finished", logger.Fields(
		logger.FieldMembers, len(e.members),
		logger.FieldStatus, statusOf(err),
		logger.FieldDuration, e.obs.Duration().Milliseconds(),
	))
	return err
}

func statusOf(err error) string {
	if err != nil {
		return observability.StatusFailed
	}
	return observability.StatusOK
}
