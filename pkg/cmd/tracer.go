package cmd

import (
	"context"
	"log/slog"

	"github.com/dukex/operion-connections/pkg/otelhelper"
	"go.opentelemetry.io/otel/trace"
)

// NewTracer returns the OTLP tracer when tracing is enabled and a noop tracer otherwise.
// nolint:ireturn // Returning interface is intentional for OpenTelemetry tracing
func NewTracer(ctx context.Context, logger *slog.Logger, enabled bool) trace.Tracer {
	if !enabled {
		return otelhelper.NoopTracer()
	}

	tracer, err := otelhelper.NewTracer(ctx, serviceName)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to initialize tracer, tracing disabled", "error", err)

		return otelhelper.NoopTracer()
	}

	return tracer
}
