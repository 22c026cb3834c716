package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Execution modes.
const (
	ModeForeground = "foreground"
	ModeBackground = "background"
)

// Execution statuses.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// ExecutionContext tracks one pipeline execution from launch to the end of wait.
type ExecutionContext struct {
	ExecutionID string
	GroupID     string
	Mode        string
	StartTime   time.Time
	Metrics     *Metrics
	Tracer      trace.Tracer
}

// NewExecutionContext creates an execution context. A nil tracer uses the
// global provider; nil metrics silently skip recording.
func NewExecutionContext(executionID, groupID string, tracer trace.Tracer, metrics *Metrics) *ExecutionContext {
	mode := ModeForeground
	if groupID != "" {
		mode = ModeBackground
	}
	if tracer == nil {
		tracer = Tracer(instrumentationName)
	}
	return &ExecutionContext{
		ExecutionID: executionID,
		GroupID:     groupID,
		Mode:        mode,
		StartTime:   time.Now(),
		Metrics:     metrics,
		Tracer:      tracer,
	}
}

type executionContextKey struct{}

// WithExecutionContext stores an ExecutionContext in the context.
func WithExecutionContext(ctx context.Context, ec *ExecutionContext) context.Context {
	return context.WithValue(ctx, executionContextKey{}, ec)
}

// ExecutionContextFromContext retrieves the ExecutionContext from context, or nil.
func ExecutionContextFromContext(ctx context.Context) *ExecutionContext {
	if ec, ok := ctx.Value(executionContextKey{}).(*ExecutionContext); ok {
		return ec
	}
	return nil
}

// StartSpan starts the execution span and records the execution start metric.
func (ec *ExecutionContext) StartSpan(ctx context.Context, fragment string, stages, runs int) (context.Context, trace.Span) {
	ctx, span := ec.Tracer.Start(ctx, SpanExecution)
	span.SetAttributes(
		attribute.String(AttrExecutionID, ec.ExecutionID),
		attribute.String(AttrPipeline, fragment),
		attribute.Int(AttrStages, stages),
		attribute.Int(AttrRuns, runs),
	)
	if ec.GroupID != "" {
		span.SetAttributes(attribute.String(AttrGroupID, ec.GroupID))
	}

	ec.Metrics.RecordExecutionStart(ctx)
	return WithExecutionContext(ctx, ec), span
}

// MemberJoined adds a span event for a joined member and counts failures.
func (ec *ExecutionContext) MemberJoined(ctx context.Context, span trace.Span, kind, identity string, exitCode int) {
	span.AddEvent(EventMemberJoined, trace.WithAttributes(
		attribute.String(AttrMemberKind, kind),
		attribute.String(AttrMember, identity),
		attribute.Int(AttrExitCode, exitCode),
	))
	if exitCode != 0 {
		ec.Metrics.RecordMemberFailure(ctx, kind)
	}
}

// End ends the span and records execution-end metrics.
func (ec *ExecutionContext) End(ctx context.Context, span trace.Span, err error) {
	duration := time.Since(ec.StartTime)
	status := StatusOK

	if err != nil {
		status = StatusFailed
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String(AttrErrorMessage, err.Error()))
	}

	span.SetAttributes(
		attribute.String(AttrStatus, status),
		attribute.Int64(AttrDurationMs, duration.Milliseconds()),
	)
	span.End()

	ec.Metrics.RecordExecutionEnd(ctx, ec.Mode, status, duration)
}

// Duration returns the elapsed time since the execution started.
func (ec *ExecutionContext) Duration() time.Duration {
	return time.Since(ec.StartTime)
}
