package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/skylane-qa/flightcheck/internal/browser"
	"github.com/skylane-qa/flightcheck/internal/config"
	"github.com/skylane-qa/flightcheck/internal/logging"
	"github.com/skylane-qa/flightcheck/internal/report"
	"github.com/skylane-qa/flightcheck/internal/runner"
	"github.com/skylane-qa/flightcheck/internal/scenario"
)

// sessionSource opens a session factory for one run. The returned func
// shuts it down.
type sessionSource func(cfg *config.Config, logger *zap.Logger) (runner.SessionFactory, func(), error)

type app struct {
	configFile string
	sessions   sessionSource
	now        func() time.Time
}

func launchBrowsers(cfg *config.Config, logger *zap.Logger) (runner.SessionFactory, func(), error) {
	l := browser.NewLauncher(cfg.Browser, cfg.Report.ScreenshotsDir, logger)
	if err := l.Start(); err != nil {
		return nil, nil, err
	}
	stop := func() {
		if err := l.Stop(); err != nil {
			logger.Warn("failed to stop playwright", zap.Error(err))
		}
	}
	return runner.FromLauncher(l), stop, nil
}

// loadConfig reads the configuration with the command's flags applied.
func (a *app) loadConfig(cmd *cobra.Command) (*config.Loader, *config.Config, error) {
	loader := config.NewLoader(a.configFile)
	if err := loader.BindFlags(cmd.Flags()); err != nil {
		return nil, nil, withCode(exitConfig, err)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, nil, withCode(exitConfig, err)
	}
	return loader, cfg, nil
}

// selectCases loads the data file and applies the filter.
func (a *app) selectCases(cfg *config.Config, filter string) ([]runner.Case, error) {
	set, err := scenario.Load(cfg.Data.Path, a.now())
	if err != nil {
		return nil, withCode(exitConfig, err)
	}
	cases, err := runner.Expand(set)
	if err != nil {
		return nil, withCode(exitConfig, err)
	}
	cases, err = runner.Filter(cases, filter)
	if err != nil {
		return nil, withCode(exitConfig, err)
	}
	return cases, nil
}

// runLogger builds the per-run logger and reports config warnings on it.
func (a *app) runLogger(cfg *config.Config) (*zap.Logger, string, func(), error) {
	logger, path, cleanup, err := logging.New(cfg.Logging, a.now())
	if err != nil {
		return nil, "", nil, withCode(exitConfig, err)
	}
	v := config.NewValidator(cfg)
	if v.Validate() == nil {
		for _, w := range v.Warnings() {
			logger.Warn(w)
		}
	}
	return logger, path, cleanup, nil
}

// execute runs cases on fresh browser sessions and writes the report.
func (a *app) execute(ctx context.Context, cfg *config.Config, logger *zap.Logger, logPath string, cases []runner.Case, filter string, out io.Writer) (*report.Run, error) {
	factory, release, err := a.sessions(cfg, logger)
	if err != nil {
		return nil, withCode(exitFailures, fmt.Errorf("failed to start browser: %w", err))
	}
	defer release()

	r := runner.New(factory, runner.Options{
		Workers:          cfg.Runner.Workers,
		Reruns:           cfg.Runner.Reruns,
		Timeout:          cfg.Browser.DefaultTimeout(),
		RunTimeout:       cfg.Runner.RunTimeout,
		FinalScreenshots: cfg.Report.FinalScreenshots,
		Title:            cfg.Report.Title,
		Environment:      cfg.Report.Environment,
		Filter:           filter,
	}, logger)
	run := r.Run(ctx, cases)
	run.LogFile = logPath

	artifacts, err := report.NewWriter(cfg.Report, logger).Write(run)
	if err != nil {
		logger.Error("report incomplete", zap.Error(err))
	}
	printSummary(out, run, artifacts)
	return run, nil
}

func printSummary(out io.Writer, run *report.Run, artifacts report.Artifacts) {
	s := run.Summary()
	fmt.Fprintf(out, "Run %s: %d cases, %d passed, %d rerun, %d failed, %d skipped (%.1f%%) in %s\n",
		run.ID, s.Total, s.Passed, s.Rerun, s.Failed, s.Skipped, s.PassRate(), run.Duration().Round(time.Millisecond))
	for _, res := range run.Results {
		if res.Status == report.StatusFailed || res.Status == report.StatusSkipped {
			fmt.Fprintf(out, "  %s %s: %s\n", strings.ToUpper(string(res.Status)), res.Name, res.Failure)
		}
	}
	for _, path := range []string{artifacts.HTML, artifacts.XLSX, artifacts.Metrics} {
		if path != "" {
			fmt.Fprintf(out, "  report: %s\n", path)
		}
	}
}

func verdict(run *report.Run) error {
	s := run.Summary()
	if s.OK() {
		return nil
	}
	return withCode(exitFailures, fmt.Errorf("%d of %d cases did not pass", s.Failed+s.Skipped, s.Total))
}

func filterArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
