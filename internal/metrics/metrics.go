package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	resultSuccess = "success"
	resultFailure = "failure"
)

// Recorder owns a private registry so tests can build as many as they like.
type Recorder struct {
	registry *prometheus.Registry

	fetches        *prometheus.CounterVec
	saves          *prometheus.CounterVec
	runs           *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	activeRequests prometheus.Gauge
}

func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	f := promauto.With(reg)

	return &Recorder{
		registry: reg,
		fetches: f.NewCounterVec(prometheus.CounterOpts{
			Name: "weather_fetch_total",
			Help: "Weather API fetches by city and result.",
		}, []string{"city", "result"}),
		saves: f.NewCounterVec(prometheus.CounterOpts{
			Name: "weather_blob_save_total",
			Help: "Observation uploads by city and result.",
		}, []string{"city", "result"}),
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "weather_collection_runs_total",
			Help: "Collection runs by result.",
		}, []string{"result"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		activeRequests: f.NewGauge(prometheus.GaugeOpts{
			Name: "http_active_requests",
			Help: "Number of in-flight HTTP requests.",
		}),
	}
}

func (r *Recorder) RecordFetch(_ context.Context, city string, success bool) {
	r.fetches.WithLabelValues(city, result(success)).Inc()
}

func (r *Recorder) RecordSave(_ context.Context, city string, success bool) {
	r.saves.WithLabelValues(city, result(success)).Inc()
}

func (r *Recorder) RecordRun(_ context.Context, success bool) {
	r.runs.WithLabelValues(result(success)).Inc()
}

func (r *Recorder) RequestStarted() {
	r.activeRequests.Inc()
}

func (r *Recorder) RequestFinished(method, route, status string, d time.Duration) {
	r.activeRequests.Dec()
	r.httpRequests.WithLabelValues(method, route, status).Inc()
	r.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func result(success bool) string {
	if success {
		return resultSuccess
	}
	return resultFailure
}
