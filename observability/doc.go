// Package observability exports pipeline executions over OTLP HTTP.
//
//	tel, err := observability.Start(ctx, observability.Settings{
//	    Service:  "pypeline",
//	    Endpoint: "localhost:4318",
//	    Insecure: true,
//	})
//	defer tel.Shutdown(ctx)
//
//	sh := pipeline.NewShell(ctx,
//	    pipeline.WithTracer(tel.Tracer()),
//	    pipeline.WithMetrics(tel.Metrics()))
//
// Every execution gets a "pipeline.execution" span carrying one event per
// joined member, and feeds the pipeline.executions, pipeline.execution.duration,
// pipeline.executions.active and pipeline.member.failures instruments.
package observability
