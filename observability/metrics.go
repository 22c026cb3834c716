package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the execution instruments. A nil *Metrics records nothing.
type Metrics struct {
	completed metric.Int64Counter
	duration  metric.Float64Histogram
	active    metric.Int64UpDownCounter
	failures  metric.Int64Counter
}

// NewMetrics registers the execution instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	var m Metrics
	var err error
	if m.completed, err = meter.Int64Counter("pipeline.executions",
		metric.WithDescription("Completed pipeline executions by mode and status")); err != nil {
		return nil, fmt.Errorf("creating executions counter: %w", err)
	}
	if m.duration, err = meter.Float64Histogram("pipeline.execution.duration",
		metric.WithDescription("Time from launch until every member was joined"),
		metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}
	if m.active, err = meter.Int64UpDownCounter("pipeline.executions.active",
		metric.WithDescription("Launched executions that have not been waited on")); err != nil {
		return nil, fmt.Errorf("creating active executions counter: %w", err)
	}
	if m.failures, err = meter.Int64Counter("pipeline.member.failures",
		metric.WithDescription("Members that finished with a nonzero code, by kind")); err != nil {
		return nil, fmt.Errorf("creating member failures counter: %w", err)
	}
	return &m, nil
}

// RecordExecutionStart counts a launched execution as active.
func (m *Metrics) RecordExecutionStart(ctx context.Context) {
	if m == nil {
		return
	}
	m.active.Add(ctx, 1)
}

// RecordExecutionEnd records a joined execution.
func (m *Metrics) RecordExecutionEnd(ctx context.Context, mode, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.active.Add(ctx, -1)
	m.completed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("mode", mode),
		attribute.String("status", status),
	))
	m.duration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attribute.String("mode", mode)))
}

// RecordMemberFailure counts one failed process or native member.
func (m *Metrics) RecordMemberFailure(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}
