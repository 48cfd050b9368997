package flowcore

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// tracerName identifies this package's spans in exported traces.
const tracerName = "github.com/flowkit/flowcore"

// tracer returns the global OpenTelemetry tracer for this package. Hosts
// that never configure a TracerProvider get otel's no-op implementation,
// so tracing is opt-in and free when unused — the same posture oriys-nova
// takes with its OTel wiring.
func tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// StartSpan is a small helper the Bridge entry points use to start a span
// named for the ABI operation being performed.
func StartSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return tracer().Start(ctx, name)
}
