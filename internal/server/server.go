package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vzahanych/weather-dashboard/internal/collector"
	"github.com/vzahanych/weather-dashboard/internal/config"
	"github.com/vzahanych/weather-dashboard/internal/metrics"
	"github.com/vzahanych/weather-dashboard/internal/server/handlers"
	"github.com/vzahanych/weather-dashboard/internal/server/middlewares"
	"github.com/vzahanych/weather-dashboard/pkg/telemetry"
)

// Server exposes the collector over HTTP so runs can be triggered externally.
type Server struct {
	cfg       config.ServerConfig
	engine    *gin.Engine
	server    *http.Server
	collector *collector.Collector
	metrics   *metrics.Recorder
	logger    *zap.Logger
	tele      *telemetry.Telemetry
}

func NewServer(cfg config.ServerConfig, coll *collector.Collector, rec *metrics.Recorder, logger *zap.Logger, tele *telemetry.Telemetry) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middlewares.RequestIDMiddleware())
	engine.Use(middlewares.LoggingMiddleware(logger))
	engine.Use(middlewares.RecoveryMiddleware(logger, true))
	engine.Use(middlewares.TelemetryMiddleware(tele))
	engine.Use(middlewares.MetricsMiddleware(rec))

	s := &Server{
		cfg:       cfg,
		engine:    engine,
		collector: coll,
		metrics:   rec,
		logger:    logger,
		tele:      tele,
	}

	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	s.engine.POST("/collect", handlers.NewCollectHandler(s.collector, s.logger).Collect)

	health := handlers.NewHealthHandler(s.collector, s.logger)
	s.engine.GET("/health", health.Health)
	s.engine.GET("/health/live", health.Liveness)
	s.engine.GET("/health/ready", health.Readiness)

	s.engine.GET("/metrics", handlers.NewMetricsHandler(s.metrics.Handler()).ServeMetrics)
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:      s.engine,
		ReadTimeout:  time.Duration(s.cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.cfg.IdleTimeout) * time.Second,
	}

	s.logger.Info("Starting server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}
