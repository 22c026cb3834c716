// Package pipeline composes external commands and Go functions into
// shell-style pipelines.
//
// A Fragment holds an input, an ordered list of stages and an output. Stages
// are either process stages (a command line) or native stages (functions over
// a stream of text lines). Fragments are built from a Shell and chained with
// Pipe; binding both ends with From and To runs them:
//
//	sh := pipeline.NewShell(ctx)
//	f, err := sh.Command("sort -r").Pipe(sh.Func(pipeline.MapLines(strings.ToUpper)))
//	f, err = f.From("in.txt")
//	f, err = f.To("out.txt.gz") // runs and waits
//
// Adjacent stages of one kind form a run. Process runs are connected by OS
// pipes; native runs execute in a goroutine that moves lines between their
// neighbors. When the execution is waited on, every member is joined in
// pipeline order and all failures are returned together as one
// errors.ErrCodeExecutionFailed error.
//
// Inside Parallel, fragments tagged with Background start without blocking
// and are waited on when the scope ends.
package pipeline
