// Package observability provides the optional OpenTelemetry layer: spans
// around dispatch and per-channel sends, and the message counters and send
// duration histogram.
package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "f451-comms"

// TelemetryConfig controls the telemetry provider.
type TelemetryConfig struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	Environment    string
	OTLPEndpoint   string
	OTLPHeaders    map[string]string
	TracingEnabled bool
	MetricsEnabled bool
	SampleRate     float64
}

// TelemetryProvider wraps the tracer and the dispatch metrics. The zero
// provider (or one built from a disabled config) is a no-op.
type TelemetryProvider struct {
	config        *TelemetryConfig
	tracer        trace.Tracer
	meter         metric.Meter
	traceProvider *sdktrace.TracerProvider

	messagesSent   metric.Int64Counter
	messagesFailed metric.Int64Counter
	sendDuration   metric.Float64Histogram
}

// NewTelemetryProvider creates a telemetry provider. A nil config yields a
// disabled provider backed by the global no-op tracer and meter.
func NewTelemetryProvider(cfg *TelemetryConfig) (*TelemetryProvider, error) {
	if cfg == nil {
		cfg = &TelemetryConfig{
			ServiceName:    "f451-comms",
			ServiceVersion: "1.0.0",
			Environment:    "development",
			OTLPEndpoint:   "localhost:4318",
			TracingEnabled: true,
			MetricsEnabled: true,
			SampleRate:     1.0,
			Enabled:        false,
		}
	}

	tp := &TelemetryProvider{config: cfg}

	if !cfg.Enabled {
		tp.tracer = otel.Tracer(instrumentationName)
		tp.meter = otel.Meter(instrumentationName)
		return tp, nil
	}

	if cfg.TracingEnabled {
		if err := tp.initTracing(); err != nil {
			return nil, fmt.Errorf("init tracing: %v", err)
		}
	}
	if cfg.MetricsEnabled {
		if err := tp.initMetrics(); err != nil {
			return nil, fmt.Errorf("init metrics: %v", err)
		}
	}

	return tp, nil
}

func (tp *TelemetryProvider) initTracing() error {
	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(tp.config.ServiceName),
			semconv.ServiceVersion(tp.config.ServiceVersion),
			semconv.DeploymentEnvironment(tp.config.Environment),
		),
	)
	if err != nil {
		return fmt.Errorf("create resource: %v", err)
	}

	exporter, err := otlptrace.New(context.Background(),
		otlptracehttp.NewClient(
			otlptracehttp.WithEndpoint(tp.config.OTLPEndpoint),
			otlptracehttp.WithHeaders(tp.config.OTLPHeaders),
		),
	)
	if err != nil {
		return fmt.Errorf("create exporter: %v", err)
	}

	tp.traceProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(tp.config.SampleRate)),
	)

	otel.SetTracerProvider(tp.traceProvider)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	tp.tracer = otel.Tracer(instrumentationName,
		trace.WithSchemaURL(semconv.SchemaURL),
	)

	return nil
}

func (tp *TelemetryProvider) initMetrics() error {
	tp.meter = otel.Meter(instrumentationName,
		metric.WithSchemaURL(semconv.SchemaURL),
	)

	var err error

	tp.messagesSent, err = tp.meter.Int64Counter(
		"f451_comms_messages_sent_total",
		metric.WithDescription("Total number of messages sent"),
	)
	if err != nil {
		return fmt.Errorf("create messages_sent counter: %v", err)
	}

	tp.messagesFailed, err = tp.meter.Int64Counter(
		"f451_comms_messages_failed_total",
		metric.WithDescription("Total number of messages failed"),
	)
	if err != nil {
		return fmt.Errorf("create messages_failed counter: %v", err)
	}

	tp.sendDuration, err = tp.meter.Float64Histogram(
		"f451_comms_send_duration_seconds",
		metric.WithDescription("Duration of channel send operations"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("create send_duration histogram: %v", err)
	}

	return nil
}

// TraceOperation creates a span for an operation.
func (tp *TelemetryProvider) TraceOperation(ctx context.Context, operationName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	if tp == nil || tp.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tp.tracer.Start(ctx, operationName,
		trace.WithAttributes(attributes...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// TraceDispatch creates a span covering one full message fan-out.
func (tp *TelemetryProvider) TraceDispatch(ctx context.Context, messageID string, channels int) (context.Context, trace.Span) {
	return tp.TraceOperation(ctx, "f451_comms.dispatch",
		attribute.String("f451_comms.message.id", messageID),
		attribute.Int("f451_comms.channels.count", channels),
	)
}

// TraceChannelSend creates a span for one channel's send.
func (tp *TelemetryProvider) TraceChannelSend(ctx context.Context, messageID, channel string) (context.Context, trace.Span) {
	return tp.TraceOperation(ctx, "f451_comms.send",
		attribute.String("f451_comms.message.id", messageID),
		attribute.String("f451_comms.channel", channel),
	)
}

// RecordMessageSent records a successful channel send.
func (tp *TelemetryProvider) RecordMessageSent(ctx context.Context, channel string, duration time.Duration) {
	if tp == nil {
		return
	}
	if tp.messagesSent != nil {
		tp.messagesSent.Add(ctx, 1, metric.WithAttributes(
			attribute.String("channel", channel),
			attribute.String("status", "success"),
		))
	}
	if tp.sendDuration != nil {
		tp.sendDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
			attribute.String("channel", channel),
			attribute.String("status", "success"),
		))
	}
}

// RecordMessageFailed records a failed channel send.
func (tp *TelemetryProvider) RecordMessageFailed(ctx context.Context, channel string, duration time.Duration, errorType string) {
	if tp == nil {
		return
	}
	if tp.messagesFailed != nil {
		tp.messagesFailed.Add(ctx, 1, metric.WithAttributes(
			attribute.String("channel", channel),
			attribute.String("error_type", errorType),
		))
	}
	if tp.sendDuration != nil {
		tp.sendDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
			attribute.String("channel", channel),
			attribute.String("status", "error"),
		))
	}
}

// SetSpanError records an error on a span.
func (tp *TelemetryProvider) SetSpanError(span trace.Span, err error) {
	if span != nil && err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSpanSuccess marks a span successful.
func (tp *TelemetryProvider) SetSpanSuccess(span trace.Span) {
	if span != nil {
		span.SetStatus(codes.Ok, "")
	}
}

// Shutdown flushes and stops the trace provider.
func (tp *TelemetryProvider) Shutdown(ctx context.Context) error {
	if tp != nil && tp.traceProvider != nil {
		return tp.traceProvider.Shutdown(ctx)
	}
	return nil
}

// GetTracer returns the tracer instance.
func (tp *TelemetryProvider) GetTracer() trace.Tracer {
	if tp == nil {
		return nil
	}
	return tp.tracer
}

// GetMeter returns the meter instance.
func (tp *TelemetryProvider) GetMeter() metric.Meter {
	if tp == nil {
		return nil
	}
	return tp.meter
}
