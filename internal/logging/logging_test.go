package logging

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/skylane-qa/flightcheck/internal/config"
)

func TestNewWritesTimestampedFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	start := time.Date(2026, 10, 19, 8, 30, 15, 0, time.UTC)

	logger, path, cleanup, err := New(config.LoggingConfig{Level: "info", Dir: dir}, start)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "test_execution_20261019_083015.log"), path)

	logger.Info("session started", zap.String("case", "one_way/syd_mel"))
	logger.Debug("filtered out")
	cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"session started"`)
	assert.Contains(t, string(data), `"case":"one_way/syd_mel"`)
	assert.NotContains(t, string(data), "filtered out")
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, _, _, err := New(config.LoggingConfig{Level: "chatty", Dir: t.TempDir()}, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}
