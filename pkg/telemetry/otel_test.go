package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vzahanych/weather-dashboard/internal/config"
)

func TestNew_Disabled(t *testing.T) {
	tele, err := New(context.Background(), config.TelemetryConfig{Enabled: false}, "test")
	require.NoError(t, err)

	assert.False(t, tele.IsEnabled())
	assert.NotNil(t, tele.GetTracer())
	assert.NoError(t, tele.Shutdown(context.Background()))
}

func TestNilTelemetryIsSafe(t *testing.T) {
	var tele *Telemetry

	assert.False(t, tele.IsEnabled())

	ctx, span := tele.GetTracer().Start(context.Background(), "op")
	span.End()

	tele.RecordError(ctx, errors.New("boom"), map[string]interface{}{"city": "Seattle"})
	assert.NoError(t, tele.Shutdown(ctx))
}
