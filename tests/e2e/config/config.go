//go:build e2e

// Package config resolves the settings shared by the browser tests.
package config

import (
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/skylane-qa/flightcheck/internal/config"
	"github.com/skylane-qa/flightcheck/internal/scenario"
)

// TestConfig holds all configuration for E2E tests
type TestConfig struct {
	*config.Config
	// Today anchors relative scenario dates.
	Today time.Time
}

var (
	loadOnce sync.Once
	loaded   *TestConfig
	loadErr  error
)

// GetConfig loads the suite configuration once. FLIGHTCHECK_* variables and
// .env apply as they do for the CLI; E2E_CONFIG names an optional file.
func GetConfig() (*TestConfig, error) {
	loadOnce.Do(func() {
		cfg, err := config.NewLoader(os.Getenv("E2E_CONFIG")).Load()
		if err != nil {
			loadErr = err
			return
		}
		// Relative paths are resolved from the repository root.
		root := filepath.Join("..", "..")
		for _, p := range []*string{&cfg.Data.Path, &cfg.Report.ScreenshotsDir} {
			if !filepath.IsAbs(*p) {
				*p = filepath.Join(root, *p)
			}
		}
		loaded = &TestConfig{Config: cfg, Today: time.Now()}
		log.Printf("[e2e-config] base_url=%s headless=%v data=%s", cfg.Browser.BaseURL, cfg.Browser.Headless, cfg.Data.Path)
	})
	return loaded, loadErr
}

// Scenarios loads the data file named by the configuration.
func (c *TestConfig) Scenarios() (*scenario.Set, error) {
	return scenario.Load(c.Data.Path, c.Today)
}
