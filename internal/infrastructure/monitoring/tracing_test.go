package monitoring

import (
	"context"
	"testing"

	"github.com/alchemorsel/discovery/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestTracingProvider(t *testing.T) {
	app := config.AppConfig{Name: "discovery-test", Version: "0.0.1", Environment: "test"}

	t.Run("Disabled", func(t *testing.T) {
		tp, err := NewTracingProvider(context.Background(), app, config.TracingConfig{}, nil)
		require.NoError(t, err)
		assert.False(t, tp.Enabled())
		assert.NoError(t, tp.Shutdown(context.Background()))
	})

	t.Run("RecordsSpans", func(t *testing.T) {
		previous := otel.GetTracerProvider()
		t.Cleanup(func() { otel.SetTracerProvider(previous) })

		recorder := tracetest.NewSpanRecorder()
		tp, err := NewTracingProvider(context.Background(), app,
			config.TracingConfig{Enabled: true, SamplingRate: 1}, nil, recorder)
		require.NoError(t, err)
		require.True(t, tp.Enabled())

		ctx, span := otel.Tracer("test").Start(context.Background(), "work")
		assert.NotEmpty(t, TraceIDFromContext(ctx))
		span.End()

		require.NoError(t, tp.Shutdown(context.Background()))
		ended := recorder.Ended()
		require.Len(t, ended, 1)
		assert.Equal(t, "work", ended[0].Name())
	})

	t.Run("NoSpan_EmptyTraceID", func(t *testing.T) {
		assert.Empty(t, TraceIDFromContext(context.Background()))
	})
}
