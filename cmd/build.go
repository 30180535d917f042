package cmd

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/vzahanych/weather-dashboard/internal/blobstore"
	"github.com/vzahanych/weather-dashboard/internal/collector"
	"github.com/vzahanych/weather-dashboard/internal/metrics"
	"github.com/vzahanych/weather-dashboard/internal/service"
)

// components is the wiring shared by collect and serve.
type components struct {
	collector *collector.Collector
	metrics   *metrics.Recorder
	close     func() error
}

func (a *app) buildComponents(ctx context.Context, out io.Writer) (*components, error) {
	cfg := a.cfg
	log := a.log.Logger

	backend, closeBackend, err := blobstore.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Backend, err)
	}

	store := blobstore.NewStore(backend, cfg.Storage.Bucket, cfg.Storage.Prefix, log, a.tele)
	ws := service.NewOpenWeatherServiceWithConfig(cfg.Weather, log, a.tele)
	coll := collector.NewCollector(cfg.Collector, ws, store, out, log, a.tele)

	rec := metrics.New()
	coll.SetMetricsRecorder(rec)

	return &components{
		collector: coll,
		metrics:   rec,
		close:     closeBackend,
	}, nil
}

func (a *app) reportRun(summary *collector.Summary, err error) error {
	if summary != nil {
		a.log.Info("Collection finished",
			zap.String("run_id", summary.RunID),
			zap.Int("saved", summary.Saved()),
			zap.Int("failed", summary.Failed()),
			zap.String("duration", summary.Duration))
	}
	if err != nil {
		a.log.Error("Collection aborted", zap.Error(err))
		return err
	}
	return nil
}
