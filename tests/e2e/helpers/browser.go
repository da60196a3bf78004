//go:build e2e

package helpers

import (
	"context"
	"fmt"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/skylane-qa/flightcheck/internal/browser"
	"github.com/skylane-qa/flightcheck/internal/suite"
	"github.com/skylane-qa/flightcheck/internal/wait"
	"github.com/skylane-qa/flightcheck/tests/e2e/config"
)

// BrowserHelper owns the launcher shared by a test suite.
type BrowserHelper struct {
	Config   *config.TestConfig
	Launcher *browser.Launcher
	logger   *zap.Logger
}

// NewBrowserHelper loads the configuration and starts playwright.
func NewBrowserHelper(t *testing.T) (*BrowserHelper, error) {
	cfg, err := config.GetConfig()
	if err != nil {
		return nil, err
	}
	logger := zaptest.NewLogger(t)
	l := browser.NewLauncher(cfg.Browser, cfg.Report.ScreenshotsDir, logger)
	if err := l.Start(); err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}
	return &BrowserHelper{Config: cfg, Launcher: l, logger: logger}, nil
}

// Session opens a fresh browser on the booking page for t. The browser is
// released when t finishes, after a failure screenshot if t failed.
func (b *BrowserHelper) Session(t *testing.T) (*browser.Session, suite.Env, error) {
	s, err := b.Launcher.Acquire(context.Background(), t.Name())
	if err != nil {
		return nil, suite.Env{}, err
	}
	logger := zaptest.NewLogger(t)
	t.Cleanup(func() {
		if t.Failed() {
			if path, err := s.CaptureFailure(); err == nil {
				t.Logf("failure screenshot: %s", path)
			}
		}
		if err := s.Release(); err != nil {
			t.Logf("release browser: %v", err)
		}
	})
	env := suite.Env{
		Driver: s.Driver(),
		Poller: wait.NewPoller(b.Config.Browser.DefaultTimeout()),
		Logger: logger,
	}
	return s, env, nil
}

// TearDown stops playwright.
func (b *BrowserHelper) TearDown() {
	if err := b.Launcher.Stop(); err != nil {
		b.logger.Warn("failed to stop playwright", zap.Error(err))
	}
}
