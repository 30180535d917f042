package collector

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/vzahanych/weather-dashboard/internal/blobstore"
	"github.com/vzahanych/weather-dashboard/internal/config"
	"github.com/vzahanych/weather-dashboard/internal/service"
	"github.com/vzahanych/weather-dashboard/internal/weather"
	"github.com/vzahanych/weather-dashboard/pkg/telemetry"
)

// BlobStore is the part of blobstore.Store the collector drives.
type BlobStore interface {
	EnsureContainer(ctx context.Context) blobstore.ContainerResult
	Save(ctx context.Context, obs *weather.Observation, city string) blobstore.SaveResult
	Bucket() string
	BackendName() string
}

// MetricsRecorder interface for recording metrics
type MetricsRecorder interface {
	RecordFetch(ctx context.Context, city string, success bool)
	RecordSave(ctx context.Context, city string, success bool)
	RecordRun(ctx context.Context, success bool)
}

// Collector runs the fetch-display-save loop over a list of cities, one city at a time.
// Concurrent callers of Run are serialized.
type Collector struct {
	weather       service.WeatherService
	store         BlobStore
	cities        []string
	skipMalformed bool
	out           io.Writer
	logger        *zap.Logger
	tele          *telemetry.Telemetry
	metrics       MetricsRecorder

	mu sync.Mutex

	statusMu sync.RWMutex
	last     *RunStatus
}

func NewCollector(cfg config.CollectorConfig, ws service.WeatherService, store BlobStore, out io.Writer, logger *zap.Logger, tele *telemetry.Telemetry) *Collector {
	cities := make([]string, len(cfg.Cities))
	copy(cities, cfg.Cities)

	return &Collector{
		weather:       ws,
		store:         store,
		cities:        cities,
		skipMalformed: cfg.SkipMalformed,
		out:           out,
		logger:        logger,
		tele:          tele,
	}
}

// SetMetricsRecorder sets the metrics recorder for the collector
func (c *Collector) SetMetricsRecorder(metrics MetricsRecorder) {
	c.metrics = metrics
}

func (c *Collector) Cities() []string {
	cities := make([]string, len(c.cities))
	copy(cities, c.cities)
	return cities
}

// LastRun reports the outcome of the most recent finished run.
func (c *Collector) LastRun() (RunStatus, bool) {
	c.statusMu.RLock()
	defer c.statusMu.RUnlock()
	if c.last == nil {
		return RunStatus{}, false
	}
	return *c.last, true
}

func (c *Collector) Run(ctx context.Context) (*Summary, error) {
	return c.RunCities(ctx, c.cities)
}

// RunCities ensures the bucket once and then processes cities in order. Fetch and storage
// failures are recorded per city and never stop the loop. A payload missing a display field
// aborts the run with an error wrapping weather.ErrMissingField, unless skip_malformed is set.
func (c *Collector) RunCities(ctx context.Context, cities []string) (*Summary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	tracer := c.tele.GetTracer()
	ctx, span := tracer.Start(ctx, "collector.Run")
	defer span.End()

	summary := &Summary{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Bucket:    c.store.Bucket(),
		Cities:    make([]CityResult, 0, len(cities)),
	}
	log := c.logger.With(zap.String("run_id", summary.RunID))

	span.SetAttributes(
		attribute.String("run_id", summary.RunID),
		attribute.Int("cities", len(cities)),
	)

	log.Info("Collection run started", zap.Strings("cities", cities))

	ensure := c.store.EnsureContainer(ctx)
	summary.Container = ensure.State
	c.reportContainer(ensure)

	for _, city := range cities {
		if err := ctx.Err(); err != nil {
			log.Warn("Collection run cancelled", zap.String("next_city", city), zap.Error(err))
			return c.finish(ctx, log, summary, err)
		}

		res, err := c.collectCity(ctx, log, city)
		summary.Cities = append(summary.Cities, res)
		if err != nil {
			return c.finish(ctx, log, summary, err)
		}
	}

	span.SetAttributes(
		attribute.Int("saved", summary.Saved()),
		attribute.Int("failed", summary.Failed()),
	)

	return c.finish(ctx, log, summary, nil)
}

func (c *Collector) collectCity(ctx context.Context, log *zap.Logger, city string) (CityResult, error) {
	res := CityResult{City: city}
	c.printf("\nFetching weather for %s...\n", city)

	obs, err := c.weather.CurrentWeather(ctx, city)
	c.recordFetch(ctx, city, err == nil)
	if err != nil {
		res.Error = err.Error()
		c.printf("Error fetching weather data: %v\n", err)
		c.printf("Failed to fetch weather data for %s\n", city)
		return res, nil
	}
	res.Fetched = true

	display, err := obs.Display()
	if err != nil {
		err = fmt.Errorf("%s: %w", city, err)
		res.Error = err.Error()
		if !c.skipMalformed {
			log.Error("Malformed weather payload, aborting run", zap.String("city", city), zap.Error(err))
			return res, err
		}
		log.Warn("Skipping malformed weather payload", zap.String("city", city), zap.Error(err))
		c.printf("Malformed weather data for %s: %v\n", city, err)
		return res, nil
	}

	for _, line := range display.Lines() {
		c.printf("%s\n", line)
	}

	saved := c.store.Save(ctx, obs, city)
	c.recordSave(ctx, city, saved.OK())
	res.Key = saved.Key
	if !saved.OK() {
		res.Error = saved.Err.Error()
		c.printf("Error saving to %s: %v\n", c.store.BackendName(), saved.Err)
		return res, nil
	}

	res.Saved = true
	c.printf("Successfully saved data for %s to %s\n", city, c.store.BackendName())
	c.printf("Weather data for %s saved to %s!\n", city, c.store.BackendName())

	return res, nil
}

func (c *Collector) reportContainer(res blobstore.ContainerResult) {
	if res.State == blobstore.ContainerExists {
		c.printf("Bucket %s exists\n", res.Bucket)
		return
	}
	if res.CreateAttempted {
		c.printf("Creating bucket %s\n", res.Bucket)
	}
	if res.State == blobstore.ContainerCreated {
		c.printf("Successfully created bucket %s\n", res.Bucket)
		return
	}
	c.printf("Error checking/creating bucket: %v\n", res.Err)
}

func (c *Collector) finish(ctx context.Context, log *zap.Logger, summary *Summary, err error) (*Summary, error) {
	summary.Duration = time.Since(summary.StartedAt).String()

	status := &RunStatus{
		RunID:      summary.RunID,
		FinishedAt: time.Now().UTC(),
		OK:         err == nil,
		Saved:      summary.Saved(),
		Failed:     summary.Failed(),
	}
	if err != nil {
		status.Error = err.Error()
	}
	c.statusMu.Lock()
	c.last = status
	c.statusMu.Unlock()

	if c.metrics != nil {
		c.metrics.RecordRun(ctx, err == nil)
	}

	if err != nil {
		c.tele.RecordError(ctx, err, map[string]interface{}{"run_id": summary.RunID})
		return summary, err
	}

	log.Info("Collection run completed",
		zap.Int("saved", summary.Saved()),
		zap.Int("failed", summary.Failed()),
		zap.String("duration", summary.Duration))
	return summary, nil
}

func (c *Collector) recordFetch(ctx context.Context, city string, success bool) {
	if c.metrics != nil {
		c.metrics.RecordFetch(ctx, city, success)
	}
}

func (c *Collector) recordSave(ctx context.Context, city string, success bool) {
	if c.metrics != nil {
		c.metrics.RecordSave(ctx, city, success)
	}
}

func (c *Collector) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(c.out, format, args...)
}
