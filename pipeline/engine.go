package pipeline

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/kbukum/pypeline/endpoint"
	"github.com/kbukum/pypeline/errors"
	"github.com/kbukum/pypeline/logger"
	"github.com/kbukum/pypeline/observability"
	"github.com/kbukum/pypeline/process"
	"github.com/kbukum/pypeline/stream"
)

// run is a maximal sequence of stages of one kind.
type run struct {
	kind   stageKind
	stages []Stage
}

func (r run) identity() string {
	if r.kind == nativeStage {
		var ts []Transform
		for _, s := range r.stages {
			ts = append(ts, s.transforms...)
		}
		if len(ts) == 0 {
			return "<shovel>"
		}
		return transformNames(ts)
	}
	ids := make([]string, len(r.stages))
	for i, s := range r.stages {
		ids[i] = s.Identity()
	}
	return strings.Join(ids, " | ")
}

// partition splits stages into maximal runs of one kind.
func partition(stages []Stage) []run {
	var runs []run
	for _, s := range stages {
		if n := len(runs); n > 0 && runs[n-1].kind == s.kind {
			runs[n-1].stages = append(runs[n-1].stages, s)
			continue
		}
		runs = append(runs, run{kind: s.kind, stages: []Stage{s}})
	}
	return runs
}

// port is one slot of the junction array.
type port struct {
	reader  io.Reader
	writer  io.Writer
	records stream.Iterator[string]
	sink    endpoint.SinkFunc
	// pending marks a junction whose pipe is created by the following process run.
	pending bool
	// pipe is the pipe end owned by the native task attached to this port.
	pipe *os.File
}

func streamPort(s *endpoint.Stream) *port {
	return &port{reader: s.Reader, writer: s.Writer, records: s.Records, sink: s.Sink}
}

// resolved holds everything opened before anything is launched.
type resolved struct {
	input    *endpoint.Stream
	output   *endpoint.Stream
	stderr   *endpoint.Stream
	stageErr []*endpoint.Stream
	commands []process.Command
	writers  map[*endpoint.Stream]io.Writer
}

func (r *resolved) streams() []*endpoint.Stream {
	var out []*endpoint.Stream
	for _, s := range append([]*endpoint.Stream{r.input, r.output, r.stderr}, r.stageErr...) {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (r *resolved) close() {
	for _, s := range r.streams() {
		_ = s.Close()
	}
}

// stderrFor returns the error writer for stage i, safe for concurrent use.
// A negative index selects the fragment default.
func (r *resolved) stderrFor(i int) io.Writer {
	s := r.stderr
	if i >= 0 && r.stageErr[i] != nil {
		s = r.stageErr[i]
	}
	if s == nil || s.Writer == nil {
		return nil
	}
	if w, ok := r.writers[s]; ok {
		return w
	}
	var w io.Writer = s.Writer
	if _, isFile := w.(*os.File); !isFile {
		w = &lockedWriter{w: w}
	}
	r.writers[s] = w
	return w
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

// resolve opens every endpoint and checks every command of f. Nothing is
// launched; on failure everything already opened is closed again.
func (s *Shell) resolve(f *Fragment) (*resolved, error) {
	res := &resolved{
		stageErr: make([]*endpoint.Stream, len(f.stages)),
		commands: make([]process.Command, len(f.stages)),
		writers:  make(map[*endpoint.Stream]io.Writer),
	}
	fail := func(err error) (*resolved, error) {
		res.close()
		return nil, err
	}

	var err error
	if res.input, err = f.input.Resolve(endpoint.Read); err != nil {
		return fail(err)
	}
	if res.output, err = f.output.Resolve(s.outputMode); err != nil {
		return fail(err)
	}
	stderr := f.stderr
	if stderr.IsUnset() {
		stderr = s.stderr
	}
	if res.stderr, err = stderr.Resolve(endpoint.Append); err != nil {
		return fail(err)
	}

	for i, st := range f.stages {
		if !st.stderr.IsUnset() {
			if res.stageErr[i], err = st.stderr.Resolve(endpoint.Append); err != nil {
				return fail(err)
			}
		}
		if st.kind != processStage {
			continue
		}
		cmd, err := st.command()
		if err != nil {
			return fail(err)
		}
		if cmd.Dir == "" {
			cmd.Dir = s.dir
		}
		cmd.Env = s.env
		cmd.GracePeriod = s.grace
		if err := cmd.Check(); err != nil {
			return fail(err)
		}
		res.commands[i] = cmd
	}
	return res, nil
}

// execute launches a complete fragment and returns its live execution.
func (s *Shell) execute(f *Fragment) (*Execution, error) {
	id := uuid.NewString()
	ctx := logger.ContextWithExecutionID(s.ctx, id)
	log := s.log.WithContext(ctx)

	res, err := s.resolve(f)
	if err != nil {
		log.Debug("endpoint resolution failed", logger.ErrorFields("resolve", err))
		return nil, err
	}

	runs, offsets := partitionIndexed(f.stages)

	// A record sequence cannot feed a process directly, nor can a process
	// feed a sink function: an empty native run does the shoveling.
	if res.input.Records != nil && (len(runs) == 0 || runs[0].kind == processStage) {
		runs = append([]run{{kind: nativeStage}}, runs...)
		offsets = append([]int{-1}, offsets...)
	}
	if res.output.Sink != nil && (len(runs) == 0 || runs[len(runs)-1].kind == processStage) {
		runs = append(runs, run{kind: nativeStage})
		offsets = append(offsets, -1)
	}

	groupID := ""
	if f.group != nil {
		groupID = f.group.ID()
	}
	obs := observability.NewExecutionContext(id, groupID, s.tracer, s.metrics)
	ctx, span := obs.StartSpan(ctx, f.String(), len(f.stages), len(runs))

	exec := &Execution{
		id:       id,
		fragment: f.String(),
		streams:  res.streams(),
		log:      log,
		obs:      obs,
		span:     span,
		ctx:      ctx,
	}
	if len(runs) == 0 {
		log.Debug("empty execution")
		return exec, nil
	}

	pipes, err := newPipePool(pipesNeeded(runs))
	if err != nil {
		res.close()
		obs.End(ctx, span, err)
		return nil, errors.Internal(err)
	}

	members := make([][]member, len(runs))
	links := make([]*port, len(runs)+1)
	links[0] = streamPort(res.input)
	last := len(runs) - 1

	// First pass: launch process runs, creating junction pipes on demand.
	for i, r := range runs {
		if r.kind == nativeStage {
			links[i+1] = &port{pending: true}
			continue
		}

		var stdin io.Reader
		var parentEnds []*os.File
		if links[i].pending {
			pr, pw := pipes.take()
			stdin = pr
			parentEnds = append(parentEnds, pr)
			links[i] = &port{writer: pw, pipe: pw}
		} else {
			stdin = links[i].reader
		}

		var stdout io.Writer
		if i == last {
			links[i+1] = streamPort(res.output)
			stdout = links[i+1].writer
		} else {
			pr, pw := pipes.take()
			stdout = pw
			parentEnds = append(parentEnds, pw)
			links[i+1] = &port{reader: pr, pipe: pr}
		}

		cmds := make([]process.Command, len(r.stages))
		for j := range r.stages {
			k := offsets[i] + j
			cmds[j] = res.commands[k]
			if w := res.stderrFor(k); w != nil {
				cmds[j].Stderr = w
			}
		}
		handles, startErr := process.StartChain(s.ctx, cmds, stdin, stdout)
		for _, pe := range parentEnds {
			_ = pe.Close()
		}
		if startErr != nil {
			log.Warn("process failed to start", logger.ErrorFields("launch", startErr))
		}
		for _, h := range handles {
			log.Debug("process started", logger.Fields(
				logger.FieldStage, h.Command().String(),
				logger.FieldRun, i,
				"pid", h.Pid(),
			))
			members[i] = append(members[i], member{identity: h.Command().String(), kind: processStage, proc: h})
		}
	}

	// Backfill the true end if the last run left its sink pending.
	if links[len(runs)].pending {
		links[len(runs)] = streamPort(res.output)
	}

	// Second pass: every neighbor is concrete, start the native runs.
	for i, r := range runs {
		if r.kind != nativeStage {
			continue
		}
		var transforms []boundTransform
		for j, st := range r.stages {
			w := res.stderrFor(offsets[i] + j)
			for _, t := range st.transforms {
				transforms = append(transforms, boundTransform{Transform: t, stderr: w})
			}
		}
		identity := r.identity()

		src, sink := links[i], links[i+1]
		var closers []io.Closer
		var source stream.Iterator[string]
		switch {
		case src.records != nil:
			source = src.records
		case src.pipe != nil:
			source = stream.Lines(src.pipe)
			closers = append(closers, src.pipe)
		case src.reader != nil:
			source = stream.Lines(noCloseReader{src.reader})
		}

		var out io.Writer
		switch {
		case sink.sink != nil:
			fn := sink.sink
			transforms = append(transforms, boundTransform{
				Transform: Transform{Name: "sink", Fn: func(ctx context.Context, in stream.Iterator[string]) (stream.Iterator[string], error) {
					if in == nil {
						in = stream.Empty[string]()
					}
					return nil, fn(ctx, in)
				}},
				stderr: res.stderrFor(-1),
			})
		case sink.pipe != nil:
			out = sink.pipe
			closers = append(closers, sink.pipe)
		case sink.writer != nil:
			out = sink.writer
		}

		t := newTask(identity, transforms, source, out, closers, log)
		t.start(ctx)
		members[i] = append(members[i], member{identity: identity, kind: nativeStage, task: t})
	}

	for _, ms := range members {
		exec.members = append(exec.members, ms...)
	}
	log.Debug("execution launched", logger.Fields(
		logger.FieldMembers, len(exec.members),
		logger.FieldRun, len(runs),
	))
	return exec, nil
}

// partitionIndexed partitions stages and returns, per run, the index of its
// first stage in stages.
func partitionIndexed(stages []Stage) ([]run, []int) {
	runs := partition(stages)
	offsets := make([]int, len(runs))
	n := 0
	for i, r := range runs {
		offsets[i] = n
		n += len(r.stages)
	}
	return runs, offsets
}

// pipesNeeded counts the junction pipes created by process runs.
func pipesNeeded(runs []run) int {
	n := 0
	for i, r := range runs {
		if r.kind != processStage {
			continue
		}
		if i > 0 {
			n++
		}
		if i < len(runs)-1 {
			n++
		}
	}
	return n
}

// pipePool holds junction pipes created before anything is launched, so
// running out of descriptors never leaves a pipeline half started.
type pipePool struct {
	pipes [][2]*os.File
}

func newPipePool(n int) (*pipePool, error) {
	p := &pipePool{}
	for range n {
		r, w, err := os.Pipe()
		if err != nil {
			for _, pp := range p.pipes {
				_ = pp[0].Close()
				_ = pp[1].Close()
			}
			return nil, err
		}
		p.pipes = append(p.pipes, [2]*os.File{r, w})
	}
	return p, nil
}

func (p *pipePool) take() (*os.File, *os.File) {
	pp := p.pipes[0]
	p.pipes = p.pipes[1:]
	return pp[0], pp[1]
}

// noCloseReader hides Close so a line reader does not close a true end;
// the execution closes those after wait.
type noCloseReader struct{ io.Reader }
