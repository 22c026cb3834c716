package observability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/pypeline/logger"
)

const (
	instrumentationName = "github.com/kbukum/pypeline"
	shutdownTimeout     = 5 * time.Second
)

// Settings describes where executions are exported and how they are labeled.
type Settings struct {
	Service     string
	Version     string
	Environment string
	// Endpoint is the OTLP HTTP collector as host:port.
	Endpoint   string
	Insecure   bool
	SampleRate float64
	// Interval between metric exports; zero keeps the SDK default.
	Interval time.Duration
}

// Telemetry owns the tracer and meter providers installed by Start.
type Telemetry struct {
	settings Settings
	tp       *sdktrace.TracerProvider
	mp       *sdkmetric.MeterProvider
	metrics  *Metrics
}

// Start installs OTLP HTTP exporters for spans and metrics as the global
// providers. The caller must Shutdown the result to flush pending data.
func Start(ctx context.Context, s Settings) (*Telemetry, error) {
	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		attribute.String(AttrServiceName, s.Service),
		attribute.String(AttrServiceVersion, s.Version),
		attribute.String(AttrEnvironment, s.Environment),
	))
	if err != nil {
		return nil, fmt.Errorf("building resource: %w", err)
	}

	traceOpts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(s.Endpoint)}
	metricOpts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(s.Endpoint)}
	if s.Insecure {
		traceOpts = append(traceOpts, otlptracehttp.WithInsecure())
		metricOpts = append(metricOpts, otlpmetrichttp.WithInsecure())
	}

	spanExporter, err := otlptracehttp.New(ctx, traceOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating span exporter: %w", err)
	}
	metricExporter, err := otlpmetrichttp.New(ctx, metricOpts...)
	if err != nil {
		_ = spanExporter.Shutdown(ctx)
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if s.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(s.Interval))
	}

	t := &Telemetry{
		settings: s,
		tp: sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(spanExporter),
			sdktrace.WithResource(res),
			sdktrace.WithSampler(Sampler(s.SampleRate)),
		),
		mp: sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter, readerOpts...)),
			sdkmetric.WithResource(res),
		),
	}
	t.metrics, err = NewMetrics(t.mp.Meter(instrumentationName))
	if err != nil {
		_ = t.Shutdown(ctx)
		return nil, err
	}

	otel.SetTracerProvider(t.tp)
	otel.SetMeterProvider(t.mp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Debug("telemetry started", logger.Fields(
		"endpoint", s.Endpoint,
		"sample_rate", s.SampleRate,
		"interval", s.Interval.String(),
	))
	return t, nil
}

// Sampler maps a rate in [0, 1] to a parent-based sampler.
func Sampler(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1:
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	case rate <= 0:
		return sdktrace.ParentBased(sdktrace.NeverSample())
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(rate))
	}
}

// Tracer returns the tracer for execution spans.
func (t *Telemetry) Tracer() trace.Tracer { return t.tp.Tracer(instrumentationName) }

// Metrics returns the execution instruments bound to the meter provider.
func (t *Telemetry) Metrics() *Metrics { return t.metrics }

// Shutdown flushes and stops both providers. It ignores cancellation of ctx
// so that a run interrupted by a signal still exports what it recorded.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	return errors.Join(t.tp.Shutdown(ctx), t.mp.Shutdown(ctx))
}

// Tracer returns a named tracer from the global provider.
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}

// Span and event names.
const (
	SpanExecution     = "pipeline.execution"
	EventMemberJoined = "member.joined"
)

// Attribute keys.
const (
	AttrServiceName    = "service.name"
	AttrServiceVersion = "service.version"
	AttrEnvironment    = "deployment.environment"
	AttrExecutionID    = "execution.id"
	AttrGroupID        = "group.id"
	AttrPipeline       = "pipeline.fragment"
	AttrStages         = "pipeline.stages"
	AttrRuns           = "pipeline.runs"
	AttrMember         = "member.identity"
	AttrMemberKind     = "member.kind"
	AttrExitCode       = "member.exit_code"
	AttrDurationMs     = "duration_ms"
	AttrStatus         = "status"
	AttrErrorMessage   = "error.message"
)
