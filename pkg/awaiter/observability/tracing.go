package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer is the awaiter tracer instance.
// Uses the global OTel tracer provider.
var tracer = otel.Tracer("awaiter")

// SpanManager handles trace span lifecycle.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartWaitSpan starts a span covering one single-shot wait.
	// Returns the context with span and the span itself.
	StartWaitSpan(ctx context.Context, event, subscriptionID string) (context.Context, trace.Span)

	// StartLoopSpan starts a span covering the lifetime of one streaming wait.
	StartLoopSpan(ctx context.Context, event, subscriptionID string) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)

	// AddSpanEvent adds an event to the current span in context.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

// otelSpanManager implements SpanManager using OpenTelemetry.
type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses OpenTelemetry.
//
// The span manager uses the global OTel tracer provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetTracerProvider(yourProvider)
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

// StartWaitSpan starts a span covering one single-shot wait.
func (m *otelSpanManager) StartWaitSpan(ctx context.Context, event, subscriptionID string) (context.Context, trace.Span) {
	return StartWaitSpan(ctx, event, subscriptionID)
}

// StartLoopSpan starts a span covering one streaming wait.
func (m *otelSpanManager) StartLoopSpan(ctx context.Context, event, subscriptionID string) (context.Context, trace.Span) {
	return StartLoopSpan(ctx, event, subscriptionID)
}

// EndSpanWithError completes a span, optionally recording an error.
func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	EndSpanWithError(span, err)
}

// AddSpanEvent adds an event to the current span.
func (m *otelSpanManager) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	AddSpanEvent(ctx, name, attrs...)
}

// Convenience functions that operate on the global tracer.
// These are useful for simple cases where you don't need the interface.

// StartWaitSpan starts a span covering one single-shot wait.
// Uses the global OTel tracer.
func StartWaitSpan(ctx context.Context, event, subscriptionID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "awaiter.wait",
		trace.WithAttributes(
			attribute.String("event", event),
			attribute.String("subscription.id", subscriptionID),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartLoopSpan starts a span covering one streaming wait.
// Uses the global OTel tracer.
func StartLoopSpan(ctx context.Context, event, subscriptionID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "awaiter.loop",
		trace.WithAttributes(
			attribute.String("event", event),
			attribute.String("subscription.id", subscriptionID),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// AddSpanEvent adds an event to the current span in context.
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
