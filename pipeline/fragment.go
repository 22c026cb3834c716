package pipeline

import (
	"fmt"
	"strings"

	"github.com/kbukum/pypeline/endpoint"
	"github.com/kbukum/pypeline/errors"
)

// Fragment is a partially or fully bound pipeline: an input, an ordered
// list of stages and an output. Fragments are immutable; every operator
// returns a new one.
//
// The moment both ends of a fragment are bound it runs. Without a parallel
// group the binding call blocks until every member has finished and returns
// the aggregate failure, if any. With a group it registers the execution
// and returns immediately.
type Fragment struct {
	shell     *Shell
	input     endpoint.Endpoint
	stages    []Stage
	output    endpoint.Endpoint
	stderr    endpoint.Endpoint
	group     *Group
	execution *Execution
	err       error
}

// Err returns the construction error recorded by a stage option, if any.
func (f *Fragment) Err() error { return f.err }

// Input returns the bound input, or an Unset endpoint.
func (f *Fragment) Input() endpoint.Endpoint { return f.input }

// Output returns the bound output, or an Unset endpoint.
func (f *Fragment) Output() endpoint.Endpoint { return f.output }

// Stages returns the stages in pipeline order.
func (f *Fragment) Stages() []Stage { return append([]Stage(nil), f.stages...) }

// Group returns the parallel group the fragment is tagged with, if any.
func (f *Fragment) Group() *Group { return f.group }

// Complete reports whether both ends are bound.
func (f *Fragment) Complete() bool {
	return !f.input.IsUnset() && !f.output.IsUnset()
}

// Execution returns the execution started when the fragment completed.
func (f *Fragment) Execution() *Execution { return f.execution }

// String renders the fragment as "input -> stage | stage -> output".
func (f *Fragment) String() string {
	ids := make([]string, len(f.stages))
	for i, s := range f.stages {
		ids[i] = s.Identity()
	}
	return fmt.Sprintf("%s -> %s -> %s", endString(f.input), strings.Join(ids, " | "), endString(f.output))
}

func endString(e endpoint.Endpoint) string {
	if e.IsUnset() {
		return "?"
	}
	return e.String()
}

func (f *Fragment) clone() *Fragment {
	c := *f
	c.stages = append([]Stage(nil), f.stages...)
	c.execution = nil
	return &c
}

func (f *Fragment) check(op string) error {
	if f == nil {
		return errors.Misuse(op, "nil fragment")
	}
	return f.err
}

// To binds the output. Accepts any value endpoint.From does.
func (f *Fragment) To(out any) (*Fragment, error) {
	if err := f.check("to"); err != nil {
		return nil, err
	}
	e, err := bindable(out)
	if err != nil {
		return nil, err
	}
	if !f.output.IsUnset() {
		return nil, errors.AlreadyBound("output", f.String())
	}
	g := f.clone()
	g.output = e
	return g.complete()
}

// From binds the input. Accepts any value endpoint.From does.
func (f *Fragment) From(in any) (*Fragment, error) {
	if err := f.check("from"); err != nil {
		return nil, err
	}
	e, err := bindable(in)
	if err != nil {
		return nil, err
	}
	if !f.input.IsUnset() {
		return nil, errors.AlreadyBound("input", f.String())
	}
	g := f.clone()
	g.input = e
	return g.complete()
}

// Feed binds in as the input of f. It is equivalent to f.From(in).
func Feed(in any, f *Fragment) (*Fragment, error) {
	return f.From(in)
}

func bindable(v any) (endpoint.Endpoint, error) {
	e, err := endpoint.From(v)
	if err != nil {
		return e, err
	}
	if e.IsUnset() {
		return e, errors.InvalidEndpoint(v, "cannot bind an unset endpoint")
	}
	return e, nil
}

// Pipe chains next after f. The output of f and the input of next must
// both be unbound; attributes merge under the one-value-wins rule.
func (f *Fragment) Pipe(next *Fragment) (*Fragment, error) {
	if err := f.check("pipe"); err != nil {
		return nil, err
	}
	if err := next.check("pipe"); err != nil {
		return nil, err
	}
	if !f.output.IsUnset() || !next.input.IsUnset() {
		return nil, errors.FilledJunction(f.String(), next.String())
	}

	shell, err := mergeShell(f.shell, next.shell)
	if err != nil {
		return nil, err
	}
	stderr, err := mergeEndpoint("stderr", f.stderr, next.stderr)
	if err != nil {
		return nil, err
	}
	group, err := mergeGroup(f.group, next.group)
	if err != nil {
		return nil, err
	}

	g := &Fragment{
		shell:  shell,
		input:  f.input,
		stages: append(append([]Stage(nil), f.stages...), next.stages...),
		output: next.output,
		stderr: stderr,
		group:  group,
	}
	return g.complete()
}

// Pipe chains fragments left to right.
func Pipe(fragments ...*Fragment) (*Fragment, error) {
	if len(fragments) == 0 {
		return nil, errors.Misuse("pipe", "no fragments")
	}
	acc := fragments[0]
	for _, next := range fragments[1:] {
		var err error
		if acc, err = acc.Pipe(next); err != nil {
			return nil, err
		}
	}
	if err := acc.check("pipe"); err != nil {
		return nil, err
	}
	return acc, nil
}

// Background tags the fragment with group. When it completes, its
// execution is registered with the group instead of being waited on.
func (f *Fragment) Background(g *Group) (*Fragment, error) {
	if err := f.check("background"); err != nil {
		return nil, err
	}
	if g == nil {
		return nil, errors.Misuse("background", "nil group")
	}
	if g.isClosed() {
		return nil, errors.Misuse("background", "group scope has already ended")
	}
	if f.Complete() {
		return nil, errors.Misuse("background", "fragment has already run")
	}
	if f.group != nil && f.group != g {
		return nil, errors.AlreadyParallel(f.String())
	}
	c := f.clone()
	c.group = g
	return c, nil
}

// Stderr sets the default error stream of every stage in the fragment that
// has no stage-local override.
func (f *Fragment) Stderr(v any) (*Fragment, error) {
	if err := f.check("stderr"); err != nil {
		return nil, err
	}
	e, err := bindable(v)
	if err != nil {
		return nil, err
	}
	merged, err := mergeEndpoint("stderr", f.stderr, e)
	if err != nil {
		return nil, err
	}
	c := f.clone()
	c.stderr = merged
	return c, nil
}

// Append adds suffix to the command line of a single bare process stage.
func (f *Fragment) Append(suffix string) (*Fragment, error) {
	return f.editStage("append", func(s Stage) (Stage, error) { return s.Append(suffix) })
}

// Format fills {} and {N} placeholders in the command line of a single
// bare process stage.
func (f *Fragment) Format(args ...any) (*Fragment, error) {
	return f.editStage("format", func(s Stage) (Stage, error) { return s.Format(args, nil) })
}

// FormatNamed fills {name} placeholders in the command line of a single
// bare process stage.
func (f *Fragment) FormatNamed(values map[string]any) (*Fragment, error) {
	return f.editStage("format", func(s Stage) (Stage, error) { return s.Format(nil, values) })
}

func (f *Fragment) editStage(op string, edit func(Stage) (Stage, error)) (*Fragment, error) {
	if err := f.check(op); err != nil {
		return nil, err
	}
	if len(f.stages) != 1 || !f.input.IsUnset() || !f.output.IsUnset() {
		return nil, errors.Misuse(op, "must be used directly on an individual command")
	}
	s, err := edit(f.stages[0])
	if err != nil {
		return nil, err
	}
	c := f.clone()
	c.stages[0] = s
	return c, nil
}

// Run binds every unbound end to discard, which runs the fragment.
// Running a fragment whose ends are both already bound is misuse.
func (f *Fragment) Run() error {
	if err := f.check("run"); err != nil {
		return err
	}
	if f.Complete() {
		return errors.Misuse("run", "fragment is already complete")
	}
	c := f.clone()
	if c.input.IsUnset() {
		c.input = endpoint.Discard()
	}
	if c.output.IsUnset() {
		c.output = endpoint.Discard()
	}
	_, err := c.complete()
	return err
}

// Run runs f with every unbound end discarded.
func Run(f *Fragment) error {
	return f.Run()
}

// complete starts the fragment if both ends are bound.
func (f *Fragment) complete() (*Fragment, error) {
	if !f.Complete() {
		return f, nil
	}
	if f.group != nil && f.group.isClosed() {
		return nil, errors.Misuse("background", "group scope has already ended")
	}
	if f.shell == nil {
		f.shell = DefaultShell()
	}
	exec, err := f.shell.execute(f)
	if err != nil {
		return nil, err
	}
	f.execution = exec
	if f.group != nil {
		f.group.add(exec)
		return f, nil
	}
	return f, exec.Wait()
}

func mergeEndpoint(name string, a, b endpoint.Endpoint) (endpoint.Endpoint, error) {
	switch {
	case a.IsUnset():
		return b, nil
	case b.IsUnset(), a.Same(b):
		return a, nil
	default:
		return a, errors.AttributeConflict(name, a.String(), b.String())
	}
}

func mergeGroup(a, b *Group) (*Group, error) {
	switch {
	case a == nil:
		return b, nil
	case b == nil, a == b:
		return a, nil
	default:
		return nil, errors.AttributeConflict("parallel group", a.ID(), b.ID())
	}
}

func mergeShell(a, b *Shell) (*Shell, error) {
	switch {
	case a == nil:
		return b, nil
	case b == nil, a == b:
		return a, nil
	default:
		return nil, errors.AttributeConflict("shell", fmt.Sprintf("%p", a), fmt.Sprintf("%p", b))
	}
}
