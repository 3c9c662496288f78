package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// SetSpanAttributes sets string attributes on the current span, skipping
// empty values. A no-op when no span is recording.
func SetSpanAttributes(ctx context.Context, attributes map[string]string) context.Context {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		for key, value := range attributes {
			if value != "" {
				span.SetAttributes(attribute.String(key, value))
			}
		}
	}
	return ctx
}
