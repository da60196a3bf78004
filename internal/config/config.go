package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment variable overrides, e.g.
// FLIGHTCHECK_BROWSER_HEADLESS=false.
const EnvPrefix = "FLIGHTCHECK"

// Config represents the suite configuration
type Config struct {
	Browser BrowserConfig `mapstructure:"browser"`
	Runner  RunnerConfig  `mapstructure:"runner"`
	Report  ReportConfig  `mapstructure:"report"`
	Logging LoggingConfig `mapstructure:"logging"`
	Data    DataConfig    `mapstructure:"data"`
}

// BrowserConfig controls how each browser session is launched.
type BrowserConfig struct {
	Engine           string `mapstructure:"engine"`
	BaseURL          string `mapstructure:"base_url"`
	Headless         bool   `mapstructure:"headless"`
	SlowMotionMS     int    `mapstructure:"slow_motion_ms"`
	DefaultTimeoutMS int    `mapstructure:"default_timeout_ms"`
	MaximizeWindow   bool   `mapstructure:"maximize_window"`
	ViewportWidth    int    `mapstructure:"viewport_width"`
	ViewportHeight   int    `mapstructure:"viewport_height"`
	InstallBrowsers  bool   `mapstructure:"install_browsers"`
}

type RunnerConfig struct {
	Workers    int           `mapstructure:"workers"`
	Reruns     int           `mapstructure:"reruns"`
	RunTimeout time.Duration `mapstructure:"run_timeout"`
	Schedule   string        `mapstructure:"schedule"`
}

type ReportConfig struct {
	Dir              string `mapstructure:"dir"`
	ScreenshotsDir   string `mapstructure:"screenshots_dir"`
	Title            string `mapstructure:"title"`
	Environment      string `mapstructure:"environment"`
	FinalScreenshots bool   `mapstructure:"final_screenshots"`
	XLSX             bool   `mapstructure:"xlsx"`
	Metrics          bool   `mapstructure:"metrics"`
}

type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Dir     string `mapstructure:"dir"`
	Console bool   `mapstructure:"console"`
}

type DataConfig struct {
	Path string `mapstructure:"path"`
}

// DefaultTimeout returns the per-operation timeout.
func (c BrowserConfig) DefaultTimeout() time.Duration {
	return time.Duration(c.DefaultTimeoutMS) * time.Millisecond
}

// SlowMotion returns the delay inserted between browser actions.
func (c BrowserConfig) SlowMotion() time.Duration {
	return time.Duration(c.SlowMotionMS) * time.Millisecond
}

var defaults = map[string]interface{}{
	"browser.engine":             "chromium",
	"browser.base_url":           "https://www.qantas.com/hk/en/book-a-trip/flights.html#make-a-flight-booking",
	"browser.headless":           true,
	"browser.slow_motion_ms":     0,
	"browser.default_timeout_ms": 30000,
	"browser.maximize_window":    false,
	"browser.viewport_width":     1280,
	"browser.viewport_height":    720,
	"browser.install_browsers":   false,
	"runner.workers":             2,
	"runner.reruns":              1,
	"runner.run_timeout":         0,
	"runner.schedule":            "0 0 */6 * * *",
	"report.dir":                 "reports",
	"report.screenshots_dir":     "screenshots",
	"report.title":               "Flight Booking Automation Test Report",
	"report.environment":         "Qantas Flight Booking System",
	"report.final_screenshots":   true,
	"report.xlsx":                true,
	"report.metrics":             true,
	"logging.level":              "info",
	"logging.dir":                "logs",
	"logging.console":            true,
	"data.path":                  "data/scenarios.yaml",
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"headless": "browser.headless",
	"base-url": "browser.base_url",
	"slow-mo":  "browser.slow_motion_ms",
	"timeout":  "browser.default_timeout_ms",
	"maximize": "browser.maximize_window",
	"workers":  "runner.workers",
	"reruns":   "runner.reruns",
	"data":     "data.path",
	"reports":  "report.dir",
	"schedule": "runner.schedule",
}

// Loader reads configuration from defaults, an optional yaml file, .env,
// the environment and command-line flags, in increasing precedence.
type Loader struct {
	v    *viper.Viper
	file string

	mu  sync.RWMutex
	cfg *Config
}

// NewLoader creates a loader. file may be empty, in which case
// flightcheck.yaml is looked up in the working directory.
func NewLoader(file string) *Loader {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetConfigType("yaml")
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("flightcheck")
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Loader{v: v, file: file}
}

// BindFlags binds every known flag present in fs. Unknown flags are ignored.
func (l *Loader) BindFlags(fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		flag := fs.Lookup(name)
		if flag == nil {
			continue
		}
		if err := l.v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

// Load reads and validates the configuration.
func (l *Loader) Load() (*Config, error) {
	// Existing environment variables take precedence over .env entries.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// An explicitly named file must exist; the default one is optional.
		if l.file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg, err := l.unmarshal()
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.cfg = cfg
	l.mu.Unlock()
	return cfg, nil
}

func (l *Loader) unmarshal() (*Config, error) {
	cfg := &Config{}
	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := NewValidator(cfg).Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Get returns the most recently loaded configuration (thread-safe)
func (l *Loader) Get() *Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cfg
}

// ConfigFile returns the file viper read, or "" when running on defaults.
func (l *Loader) ConfigFile() string {
	return l.v.ConfigFileUsed()
}

// Watch reloads the configuration whenever the config file changes. Invalid
// edits are reported through onError and the previous configuration is kept.
func (l *Loader) Watch(onChange func(*Config), onError func(error)) {
	if l.v.ConfigFileUsed() == "" {
		return
	}
	l.v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := l.unmarshal()
		if err != nil {
			if onError != nil {
				onError(fmt.Errorf("reload %s: %w", e.Name, err))
			}
			return
		}

		// Atomic swap
		l.mu.Lock()
		l.cfg = cfg
		l.mu.Unlock()

		if onChange != nil {
			onChange(cfg)
		}
	})
	l.v.WatchConfig()
}
