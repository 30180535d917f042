package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vzahanych/weather-dashboard/internal/config"
	"github.com/vzahanych/weather-dashboard/pkg/logger"
	"github.com/vzahanych/weather-dashboard/pkg/telemetry"
)

// app carries what PersistentPreRunE builds into the subcommands.
type app struct {
	configPath string
	cfg        *config.Config
	log        *logger.Logger
	tele       *telemetry.Telemetry
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weather-dashboard",
		Short: "Collect current weather for a list of cities into blob storage",
		Long: `Fetches current conditions for each configured city from OpenWeatherMap,
prints them, and stores every observation as a timestamped JSON object in a
Google Cloud Storage bucket (or a local directory).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initializeServices(cmd.Context())
		},
	}

	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to configuration file (default: ./config.yaml if present)")

	cmd.AddCommand(collectCmd(a))
	cmd.AddCommand(serveCmd(a))

	return cmd
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return execute(ctx, os.Args[1:])
}

// execute runs the command tree and always flushes telemetry and logs afterwards. Cobra skips
// post-run hooks when a command fails, so this cannot live in PersistentPostRunE.
func execute(ctx context.Context, args []string) error {
	a := &app{}
	defer func() { _ = a.shutdown(context.Background()) }()

	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

func (a *app) initializeServices(ctx context.Context) error {
	// 1. .env is optional
	envErr := godotenv.Load()

	// 2. Load config
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.cfg = cfg

	// 3. Initialize logger
	a.log, err = logger.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if envErr != nil && !errors.Is(envErr, fs.ErrNotExist) {
		a.log.Warn("Failed to load .env file", zap.Error(envErr))
	}

	a.tele, err = telemetry.New(ctx, cfg.Telemetry, cfg.Version)
	if err != nil {
		a.log.Warn("Failed to initialize telemetry", zap.Error(err))
		a.tele = &telemetry.Telemetry{}
	}

	a.log.Debug("Services initialized",
		zap.String("environment", cfg.Environment),
		zap.String("storage_backend", cfg.Storage.Backend),
		zap.String("bucket", cfg.Storage.Bucket),
		zap.Bool("api_key_set", cfg.Weather.APIKey != ""),
		zap.Bool("telemetry_enabled", a.tele.IsEnabled()))

	return nil
}

func (a *app) shutdown(ctx context.Context) error {
	if a.tele != nil {
		if err := a.tele.Shutdown(ctx); err != nil && a.log != nil {
			a.log.Warn("Telemetry shutdown failed", zap.Error(err))
		}
	}
	if a.log != nil {
		a.log.Debug("Services shut down")
		// syncing stderr returns EINVAL on some platforms
		_ = a.log.Sync()
	}
	return nil
}
