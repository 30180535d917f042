package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/vzahanych/weather-dashboard/internal/collector"
)

type countingRunner struct {
	runs atomic.Int32
}

func (r *countingRunner) Run(context.Context) (*collector.Summary, error) {
	r.runs.Add(1)
	return &collector.Summary{RunID: "test"}, nil
}

func TestParseInterval(t *testing.T) {
	d, err := ParseInterval("")
	require.NoError(t, err)
	assert.Zero(t, d)

	d, err = ParseInterval("15m")
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, d)

	_, err = ParseInterval("soon")
	assert.Error(t, err)

	_, err = ParseInterval("-1m")
	assert.Error(t, err)
}

func TestScheduler_DisabledDoesNothing(t *testing.T) {
	runner := &countingRunner{}
	s := New(runner, 0, zaptest.NewLogger(t))

	require.NoError(t, s.Start(context.Background()))
	s.Stop()

	assert.False(t, s.Enabled())
	assert.Equal(t, int32(0), runner.runs.Load())
}

func TestScheduler_RunsImmediately(t *testing.T) {
	runner := &countingRunner{}
	// the job goroutine may still log after the test returns
	s := New(runner, time.Hour, zap.NewNop())

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Eventually(t, func() bool { return runner.runs.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
}
