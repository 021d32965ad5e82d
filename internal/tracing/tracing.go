// Package tracing wraps the OpenTelemetry tracer this module shares: a
// compile or mission run is one span tree, regardless of which exporter the
// process is eventually wired to.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/unitport/compiler"

// StartSpan starts a span from ctx under this module's tracer name. Callers
// that never configure a TracerProvider get otel's no-op implementation for
// free, so this is safe to call unconditionally.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name, opts...)
}

// RecordError records err on the span active in ctx, if any, and marks it.
func RecordError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() && err != nil {
		span.RecordError(err)
	}
}
