package config

import (
	"fmt"
	"strings"
)

var engines = map[string]bool{
	"chromium": true,
	"firefox":  true,
	"webkit":   true,
}

// Validator checks a loaded configuration for values the suite cannot run with.
type Validator struct {
	config   *Config
	errors   []string
	warnings []string
}

func NewValidator(cfg *Config) *Validator {
	return &Validator{
		config:   cfg,
		errors:   []string{},
		warnings: []string{},
	}
}

// Validate returns an error listing every invalid setting.
func (v *Validator) Validate() error {
	v.validateBrowser()
	v.validateRunner()
	v.validatePaths()

	if len(v.errors) > 0 {
		return fmt.Errorf("invalid configuration:\n  %s", strings.Join(v.errors, "\n  "))
	}
	return nil
}

// Warnings returns non-fatal findings from the last Validate call.
func (v *Validator) Warnings() []string {
	return v.warnings
}

func (v *Validator) validateBrowser() {
	b := v.config.Browser
	if !engines[b.Engine] {
		v.errors = append(v.errors, fmt.Sprintf("browser.engine %q is not one of chromium, firefox, webkit", b.Engine))
	}
	if b.BaseURL == "" {
		v.errors = append(v.errors, "browser.base_url is required")
	}
	if b.DefaultTimeoutMS <= 0 {
		v.errors = append(v.errors, "browser.default_timeout_ms must be positive")
	}
	if b.SlowMotionMS < 0 {
		v.errors = append(v.errors, "browser.slow_motion_ms must not be negative")
	}
	if !b.MaximizeWindow && (b.ViewportWidth <= 0 || b.ViewportHeight <= 0) {
		v.errors = append(v.errors, "browser.viewport_width and browser.viewport_height must be positive unless maximize_window is set")
	}
	if b.MaximizeWindow && b.Headless {
		v.warnings = append(v.warnings, "browser.maximize_window has no effect in headless mode")
	}
}

func (v *Validator) validateRunner() {
	r := v.config.Runner
	if r.Workers < 1 {
		v.errors = append(v.errors, "runner.workers must be at least 1")
	}
	if r.Reruns < 0 {
		v.errors = append(v.errors, "runner.reruns must not be negative")
	}
	if r.RunTimeout < 0 {
		v.errors = append(v.errors, "runner.run_timeout must not be negative")
	}
}

func (v *Validator) validatePaths() {
	if v.config.Data.Path == "" {
		v.errors = append(v.errors, "data.path is required")
	}
	if v.config.Report.Dir == "" {
		v.errors = append(v.errors, "report.dir is required")
	}
	if v.config.Report.ScreenshotsDir == "" {
		v.errors = append(v.errors, "report.screenshots_dir is required")
	}
}
