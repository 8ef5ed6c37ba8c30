package otelhelper

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestStartSpanAndSetError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tracer := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)).Tracer("test")

	_, span := StartSpan(t.Context(), tracer, "coordinator.load_connector", attribute.String(ConnectorIDKey, "sql"))
	SetError(span, errors.New("connector not found"), attribute.String(ConnectionIDKey, "conn-1"))
	span.End()

	_, saved := StartSpan(t.Context(), tracer, "coordinator.save_connection")
	SetError(saved, nil)
	saved.End()

	spans := recorder.Ended()
	assert.Len(t, spans, 2)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Len(t, spans[0].Events(), 1)
	assert.Equal(t, codes.Unset, spans[1].Status().Code)
}

func TestNoopTracer(t *testing.T) {
	_, span := StartSpan(t.Context(), NoopTracer(), "noop")
	SetError(span, errors.New("ignored"))
	span.End()

	assert.False(t, span.SpanContext().IsValid())
}
