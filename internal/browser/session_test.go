package browser_test

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/skylane-qa/flightcheck/internal/browser"
	"github.com/skylane-qa/flightcheck/internal/browser/browsertest"
	"github.com/skylane-qa/flightcheck/internal/config"
)

func TestScreenshotName(t *testing.T) {
	at := time.Date(2026, time.October, 19, 9, 5, 7, 0, time.UTC)

	assert.Equal(t, "one_way_syd_mel_20261019_090507_FAILURE.png",
		browser.ScreenshotName("one_way/syd_mel", at, "FAILURE"))
	assert.Equal(t, "TestBookingSuite_TestInfantLimit_adults_2_20261019_090507_final.png",
		browser.ScreenshotName("TestBookingSuite/TestInfantLimit/adults=2", at, "final"))
}

func TestSessionCapture(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "screenshots")
	d := browsertest.New("https://booking.example.test/en-hk")
	s := browser.NewSession("one_way/syd_mel", d, dir, zaptest.NewLogger(t))

	assert.Equal(t, "one_way/syd_mel", s.Name())
	assert.Equal(t, "https://booking.example.test/en-hk", s.URL())

	failure, err := s.CaptureFailure()
	require.NoError(t, err)
	assert.FileExists(t, failure)
	assert.Equal(t, dir, filepath.Dir(failure), "directory is created on demand")
	assert.Regexp(t, `^one_way_syd_mel_\d{8}_\d{6}_FAILURE\.png$`, filepath.Base(failure))

	final, err := s.CaptureFinal()
	require.NoError(t, err)
	assert.Regexp(t, `_final\.png$`, final)
	assert.Equal(t, []string{failure, final}, d.Screenshots)
}

func TestSessionCaptureErrors(t *testing.T) {
	d := browsertest.New("about:blank")
	d.Fail("screenshot", errors.New("target closed"))
	s := browser.NewSession("case", d, t.TempDir(), zaptest.NewLogger(t))

	_, err := s.CaptureFailure()
	assert.ErrorContains(t, err, "capture FAILURE screenshot: target closed")

	empty := browser.NewSession("case", nil, t.TempDir(), zaptest.NewLogger(t))
	_, err = empty.CaptureFinal()
	assert.EqualError(t, err, "no page to capture")
	assert.Equal(t, "", empty.URL())
}

func TestSessionReleaseIsIdempotent(t *testing.T) {
	s := browser.NewSession("case", browsertest.New("about:blank"), t.TempDir(), zaptest.NewLogger(t))
	assert.NoError(t, s.Release())
	assert.NoError(t, s.Release())
}

func TestLauncherAcquireBeforeStart(t *testing.T) {
	cfg := config.BrowserConfig{Engine: "chromium", BaseURL: "about:blank", DefaultTimeoutMS: 1000}
	l := browser.NewLauncher(cfg, t.TempDir(), zaptest.NewLogger(t))

	_, err := l.Acquire(t.Context(), "case")
	assert.EqualError(t, err, "launcher not started")
	assert.NoError(t, l.Stop(), "stopping an idle launcher is a no-op")
}
