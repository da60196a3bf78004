// Package browser owns the browser lifecycle: one exclusively owned Session
// per test attempt, launched through a shared Launcher.
package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"

	"github.com/skylane-qa/flightcheck/internal/config"
)

// actionTimeoutMS bounds a single driver call; the page-level poller retries it.
const actionTimeoutMS = 2000

// Launcher starts the playwright driver once and launches a fresh browser for
// every session it hands out.
type Launcher struct {
	cfg            config.BrowserConfig
	screenshotsDir string
	logger         *zap.Logger

	mu sync.Mutex
	pw *playwright.Playwright
}

// NewLauncher creates a launcher. Start must be called before Acquire.
func NewLauncher(cfg config.BrowserConfig, screenshotsDir string, logger *zap.Logger) *Launcher {
	return &Launcher{
		cfg:            cfg,
		screenshotsDir: screenshotsDir,
		logger:         logger.Named("browser"),
	}
}

// Start installs browsers when configured and starts the playwright driver.
func (l *Launcher) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pw != nil {
		return nil
	}

	if l.cfg.InstallBrowsers && os.Getenv("PLAYWRIGHT_PREINSTALLED") != "1" {
		if err := playwright.Install(&playwright.RunOptions{Browsers: []string{l.cfg.Engine}}); err != nil {
			return fmt.Errorf("could not install playwright browsers: %w", err)
		}
	}

	pw, err := playwright.Run()
	if err != nil {
		// Fallback: attempt install driver explicitly then retry
		_ = playwright.Install(&playwright.RunOptions{Browsers: []string{l.cfg.Engine}})
		pw, err = playwright.Run()
		if err != nil {
			return fmt.Errorf("could not start playwright after retry: %w", err)
		}
	}
	l.pw = pw
	l.logger.Info("playwright started", zap.String("engine", l.cfg.Engine), zap.Bool("headless", l.cfg.Headless))
	return nil
}

// Stop shuts the playwright driver down.
func (l *Launcher) Stop() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pw == nil {
		return nil
	}
	err := l.pw.Stop()
	l.pw = nil
	return err
}

func (l *Launcher) browserType() (playwright.BrowserType, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pw == nil {
		return nil, errors.New("launcher not started")
	}
	switch l.cfg.Engine {
	case "firefox":
		return l.pw.Firefox, nil
	case "webkit":
		return l.pw.WebKit, nil
	default:
		return l.pw.Chromium, nil
	}
}

// Acquire launches a browser, opens a page on the configured base URL and
// returns the session. The caller must Release it.
func (l *Launcher) Acquire(ctx context.Context, name string) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	bt, err := l.browserType()
	if err != nil {
		return nil, err
	}

	s := &Session{
		name:           name,
		screenshotsDir: l.screenshotsDir,
		logger:         l.logger.With(zap.String("case", name)),
		now:            time.Now,
	}
	s.logger.Info("setting up browser")

	launch := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(l.cfg.Headless),
		SlowMo:   playwright.Float(float64(l.cfg.SlowMotionMS)),
	}
	if l.cfg.MaximizeWindow {
		launch.Args = []string{"--start-maximized"}
	}
	browser, err := bt.Launch(launch)
	if err != nil {
		return nil, fmt.Errorf("could not launch browser: %w", err)
	}
	s.browser = browser

	// Create context with viewport and other settings
	contextOpts := playwright.BrowserNewContextOptions{}
	if l.cfg.MaximizeWindow {
		contextOpts.NoViewport = playwright.Bool(true)
	} else {
		contextOpts.Viewport = &playwright.Size{
			Width:  l.cfg.ViewportWidth,
			Height: l.cfg.ViewportHeight,
		}
	}
	bctx, err := browser.NewContext(contextOpts)
	if err != nil {
		s.Release()
		return nil, fmt.Errorf("could not create context: %w", err)
	}
	s.context = bctx

	page, err := bctx.NewPage()
	if err != nil {
		s.Release()
		return nil, fmt.Errorf("could not create page: %w", err)
	}
	s.page = page

	// Set default timeout
	page.SetDefaultTimeout(float64(l.cfg.DefaultTimeoutMS))
	s.driver = NewPageDriver(page, actionTimeoutMS)

	s.logger.Info("navigating to booking page", zap.String("url", l.cfg.BaseURL))
	if err := s.driver.Goto(l.cfg.BaseURL); err != nil {
		s.Release()
		return nil, err
	}
	return s, nil
}

// Session owns one browser, context and page. It must never be shared by two
// concurrently running tests.
type Session struct {
	name           string
	screenshotsDir string
	logger         *zap.Logger
	now            func() time.Time

	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
	driver  Driver

	releaseOnce sync.Once
	releaseErr  error
}

// NewSession wraps an already open driver. It is used by callers that manage
// the browser themselves, and by tests.
func NewSession(name string, driver Driver, screenshotsDir string, logger *zap.Logger) *Session {
	return &Session{
		name:           name,
		screenshotsDir: screenshotsDir,
		logger:         logger.With(zap.String("case", name)),
		now:            time.Now,
		driver:         driver,
	}
}

// Name returns the test name the session was acquired for.
func (s *Session) Name() string { return s.name }

// Driver returns the element-level driver for page objects.
func (s *Session) Driver() Driver { return s.driver }

// URL returns the current page URL, or "" when no page is open.
func (s *Session) URL() string {
	if s.driver == nil {
		return ""
	}
	return s.driver.URL()
}

// CaptureFailure saves a full-page screenshot tagged as a failure.
func (s *Session) CaptureFailure() (string, error) {
	return s.capture("FAILURE")
}

// CaptureFinal saves a full-page screenshot of the final page state.
func (s *Session) CaptureFinal() (string, error) {
	return s.capture("final")
}

func (s *Session) capture(suffix string) (string, error) {
	if s.driver == nil {
		return "", errors.New("no page to capture")
	}
	if err := os.MkdirAll(s.screenshotsDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create screenshots directory: %w", err)
	}
	path := filepath.Join(s.screenshotsDir, ScreenshotName(s.name, s.now(), suffix))
	if err := s.driver.Screenshot(path); err != nil {
		s.logger.Error("failed to capture screenshot", zap.String("kind", suffix), zap.Error(err))
		return "", fmt.Errorf("capture %s screenshot: %w", suffix, err)
	}
	s.logger.Info("screenshot captured", zap.String("kind", suffix), zap.String("path", path))
	return path, nil
}

// Release closes the page, context and browser. It is safe to call more than
// once and on partially constructed sessions.
func (s *Session) Release() error {
	s.releaseOnce.Do(func() {
		s.logger.Info("cleaning up browser")
		var errs []error
		if s.page != nil {
			errs = append(errs, s.page.Close())
		}
		if s.context != nil {
			errs = append(errs, s.context.Close())
		}
		if s.browser != nil {
			errs = append(errs, s.browser.Close())
		}
		s.releaseErr = errors.Join(errs...)
	})
	return s.releaseErr
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ScreenshotName builds "<test>_<timestamp>_<suffix>.png" with a file-safe test name.
func ScreenshotName(testName string, at time.Time, suffix string) string {
	safe := unsafeName.ReplaceAllString(testName, "_")
	return fmt.Sprintf("%s_%s_%s.png", safe, at.Format("20060102_150405"), suffix)
}
