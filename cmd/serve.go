package cmd

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vzahanych/weather-dashboard/internal/scheduler"
	"github.com/vzahanych/weather-dashboard/internal/server"
)

func serveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP trigger server and the optional collection schedule",
		Long: `Starts an HTTP server exposing POST /collect, health probes and Prometheus
metrics. When schedule.interval is set, collections also run on that interval.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runServe(cmd.Context())
		},
	}
}

func (a *app) runServe(ctx context.Context) error {
	cfg := a.cfg
	log := a.log.Logger

	interval, err := scheduler.ParseInterval(cfg.Schedule.Interval)
	if err != nil {
		return err
	}

	c, err := a.buildComponents(ctx, os.Stdout)
	if err != nil {
		return err
	}
	defer func() {
		if err := c.close(); err != nil {
			log.Warn("Failed to close storage client", zap.Error(err))
		}
	}()

	log.Info("Starting weather dashboard server",
		zap.String("config_path", a.configPath),
		zap.Bool("telemetry_enabled", a.tele.IsEnabled()),
		zap.Int("server_port", cfg.Server.Port),
		zap.Duration("schedule_interval", interval),
		zap.Strings("cities", c.collector.Cities()))

	sched := scheduler.New(c.collector, interval, log)
	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer sched.Stop()

	srv := server.NewServer(cfg.Server, c.collector, c.metrics, log, a.tele)

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		log.Error("Server error", zap.Error(err))
		return err
	case <-ctx.Done():
		log.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Error during server shutdown", zap.Error(err))
			return err
		}

		log.Info("Server shutdown complete")
		return nil
	}
}
