package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flightcheck.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoaderDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := NewLoader("").Load()
	require.NoError(t, err)

	assert.Equal(t, "chromium", cfg.Browser.Engine)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 30*time.Second, cfg.Browser.DefaultTimeout())
	assert.Equal(t, time.Duration(0), cfg.Browser.SlowMotion())
	assert.Equal(t, 2, cfg.Runner.Workers)
	assert.Equal(t, 1, cfg.Runner.Reruns)
	assert.Equal(t, "reports", cfg.Report.Dir)
	assert.Equal(t, "screenshots", cfg.Report.ScreenshotsDir)
	assert.Equal(t, "data/scenarios.yaml", cfg.Data.Path)
}

func TestLoaderPrecedence(t *testing.T) {
	t.Chdir(t.TempDir())

	path := writeConfig(t, `
browser:
  headless: false
  slow_motion_ms: 1000
  maximize_window: true
runner:
  workers: 4
  run_timeout: 10m
`)

	t.Run("file overrides defaults", func(t *testing.T) {
		cfg, err := NewLoader(path).Load()
		require.NoError(t, err)
		assert.False(t, cfg.Browser.Headless)
		assert.Equal(t, time.Second, cfg.Browser.SlowMotion())
		assert.True(t, cfg.Browser.MaximizeWindow)
		assert.Equal(t, 4, cfg.Runner.Workers)
		assert.Equal(t, 10*time.Minute, cfg.Runner.RunTimeout)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		t.Setenv("FLIGHTCHECK_RUNNER_WORKERS", "3")
		t.Setenv("FLIGHTCHECK_BROWSER_DEFAULT_TIMEOUT_MS", "5000")

		cfg, err := NewLoader(path).Load()
		require.NoError(t, err)
		assert.Equal(t, 3, cfg.Runner.Workers)
		assert.Equal(t, 5*time.Second, cfg.Browser.DefaultTimeout())
	})

	t.Run("changed flags override environment", func(t *testing.T) {
		t.Setenv("FLIGHTCHECK_RUNNER_WORKERS", "3")

		fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
		fs.Int("workers", 2, "")
		fs.Bool("headless", true, "")
		fs.String("unrelated", "", "")
		require.NoError(t, fs.Parse([]string{"--workers=6"}))

		l := NewLoader(path)
		require.NoError(t, l.BindFlags(fs))
		cfg, err := l.Load()
		require.NoError(t, err)
		assert.Equal(t, 6, cfg.Runner.Workers)
		assert.False(t, cfg.Browser.Headless, "unchanged flag must not override the file")
		assert.Same(t, cfg, l.Get())
		assert.Equal(t, path, l.ConfigFile())
	})
}

func TestLoaderErrors(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Run("explicit file must exist", func(t *testing.T) {
		_, err := NewLoader(filepath.Join(t.TempDir(), "missing.yaml")).Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read config")
	})

	t.Run("invalid values are rejected", func(t *testing.T) {
		path := writeConfig(t, `
browser:
  engine: netscape
  default_timeout_ms: 0
runner:
  workers: 0
  reruns: -1
`)
		_, err := NewLoader(path).Load()
		require.Error(t, err)
		msg := err.Error()
		assert.Contains(t, msg, `browser.engine "netscape"`)
		assert.Contains(t, msg, "browser.default_timeout_ms must be positive")
		assert.Contains(t, msg, "runner.workers must be at least 1")
		assert.Contains(t, msg, "runner.reruns must not be negative")
	})
}

func TestValidatorWarnings(t *testing.T) {
	cfg := &Config{
		Browser: BrowserConfig{
			Engine:           "chromium",
			BaseURL:          "http://localhost",
			Headless:         true,
			MaximizeWindow:   true,
			DefaultTimeoutMS: 1000,
		},
		Runner: RunnerConfig{Workers: 1},
		Report: ReportConfig{Dir: "reports", ScreenshotsDir: "shots"},
		Data:   DataConfig{Path: "data.yaml"},
	}

	v := NewValidator(cfg)
	require.NoError(t, v.Validate(), "viewport may be zero when maximized")
	assert.Equal(t, []string{"browser.maximize_window has no effect in headless mode"}, v.Warnings())
}
