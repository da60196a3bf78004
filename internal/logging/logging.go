// Package logging builds the run logger: a human-readable console stream plus a
// JSON log file per run under the configured log directory.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/skylane-qa/flightcheck/internal/config"
)

// TimestampLayout is shared by log, report and screenshot file names.
const TimestampLayout = "20060102_150405"

// New creates the run logger. The returned path is the log file, and the
// cleanup func flushes and closes it.
func New(cfg config.LoggingConfig, start time.Time) (*zap.Logger, string, func(), error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, "", nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, "", nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	path := filepath.Join(cfg.Dir, fmt.Sprintf("test_execution_%s.log", start.Format(TimestampLayout)))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, "", nil, fmt.Errorf("failed to open log file: %w", err)
	}

	fileEncoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	cores := []zapcore.Core{
		zapcore.NewCore(fileEncoder, zapcore.AddSync(file), level),
	}
	if cfg.Console {
		consoleCfg := zap.NewDevelopmentEncoderConfig()
		consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(os.Stderr), level))
	}

	logger := zap.New(zapcore.NewTee(cores...))
	cleanup := func() {
		_ = logger.Sync()
		_ = file.Close()
	}
	return logger, path, cleanup, nil
}
