package pipeline

import (
	"sync"

	"github.com/google/uuid"

	"github.com/kbukum/pypeline/errors"
	"github.com/kbukum/pypeline/logger"
)

// Group collects background executions and waits on them when its scope
// ends. A Group only exists inside the function passed to Parallel.
type Group struct {
	id     string
	mu     sync.Mutex
	execs  []*Execution
	closed bool
	log    *logger.Logger
}

// ID returns the unique identifier of the group.
func (g *Group) ID() string { return g.id }

// Len returns the number of executions registered so far.
func (g *Group) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.execs)
}

func (g *Group) add(e *Execution) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.execs = append(g.execs, e)
	g.log.Debug("execution registered", logger.Fields(
		logger.FieldExecutionID, e.ID(),
		logger.FieldMembers, len(g.execs),
	))
}

func (g *Group) isClosed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.closed
}

// close ends the scope and returns the registered executions.
func (g *Group) close() []*Execution {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
	return g.execs
}

// Parallel runs fn with a fresh group. Fragments tagged with the group via
// Background start without blocking. When fn returns nil, every registered
// execution is waited on in registration order and all member failures are
// reported together. When fn returns an error, waiting is skipped and the
// error is returned as is: the executions keep running unobserved.
func Parallel(fn func(g *Group) error) error {
	id := uuid.NewString()
	g := &Group{
		id:  id,
		log: logger.Get(logger.ComponentPipeline).WithFields(logger.Fields(logger.FieldGroupID, id)),
	}

	if err := fn(g); err != nil {
		execs := g.close()
		g.log.Debug("scope failed, skipping wait", logger.Fields(
			logger.FieldMembers, len(execs),
			logger.FieldError, err.Error(),
		))
		return err
	}
	return g.wait(g.close())
}

func (g *Group) wait(execs []*Execution) error {
	var failures []errors.Failure
	var other error
	for _, e := range execs {
		err := e.Wait()
		if err == nil {
			continue
		}
		if fs := errors.FailuresOf(err); fs != nil {
			failures = append(failures, fs...)
		} else if other == nil {
			other = err
		}
	}
	if len(failures) > 0 {
		return errors.ExecutionFailed(failures)
	}
	return other
}
