package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/cory-johannsen/skirmish/internal/config"
)

func TestNewTracerProvider_DisabledIsNoop(t *testing.T) {
	tp, shutdown, err := NewTracerProvider(context.Background(), config.TelemetryConfig{})
	require.NoError(t, err)
	require.NotNil(t, tp)

	_, span := Tracer(tp, "combat").Start(context.Background(), "next_turn")
	assert.False(t, span.SpanContext().IsValid(), "noop spans carry no context")
	span.End()
	assert.NoError(t, shutdown(context.Background()))
}

func TestNewTracerProvider_EnabledExportsOverOTLP(t *testing.T) {
	prevTP := otel.GetTracerProvider()
	prevProp := otel.GetTextMapPropagator()
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})
	// Nothing listens on port 1; exports fail fast and are reported to the
	// otel error handler rather than to shutdown.
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://127.0.0.1:1")
	t.Setenv("OTEL_EXPORTER_OTLP_TIMEOUT", "200")

	tp, shutdown, err := NewTracerProvider(context.Background(), config.TelemetryConfig{
		Enabled:     true,
		ServiceName: "skirmish-test",
	})
	require.NoError(t, err)
	require.IsType(t, &sdktrace.TracerProvider{}, tp)
	assert.Same(t, tp, otel.GetTracerProvider(), "enabled provider is installed globally")

	_, span := Tracer(tp, "combat").Start(context.Background(), "start_encounter")
	assert.True(t, span.SpanContext().IsValid())
	assert.True(t, span.SpanContext().IsSampled())
	span.End()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, shutdown(ctx))

	_, after := Tracer(tp, "combat").Start(context.Background(), "after_shutdown")
	assert.False(t, after.IsRecording(), "a shut down provider stops recording")
}
