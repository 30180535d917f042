package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/vzahanych/weather-dashboard/internal/config"
)

type Logger struct {
	*zap.Logger
}

// New builds a logger from config. Logs go to stderr unless an output path is set, so they
// never interleave with the report printed on stdout.
func New(cfg config.LoggingConfig) (*Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	zcfg := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	output := "stderr"
	if cfg.OutputPath != "" {
		output = cfg.OutputPath
	}
	zcfg.OutputPaths = []string{output}
	zcfg.ErrorOutputPaths = []string{"stderr"}

	l, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{l}, nil
}

func (l *Logger) Sync() error {
	return l.Logger.Sync()
}
