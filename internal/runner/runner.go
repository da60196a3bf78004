// Package runner expands scenarios into test cases, filters them and runs
// them on a bounded pool of workers, one fresh browser session per attempt.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/skylane-qa/flightcheck/internal/pages"
	"github.com/skylane-qa/flightcheck/internal/report"
	"github.com/skylane-qa/flightcheck/internal/suite"
	"github.com/skylane-qa/flightcheck/internal/wait"
)

const banner = "================================================================================"

// Options controls one run.
type Options struct {
	Workers int
	Reruns  int
	// Timeout is the per-operation wait used by page objects.
	Timeout time.Duration
	// RunTimeout bounds the whole run; zero means none.
	RunTimeout       time.Duration
	FinalScreenshots bool
	Title            string
	Environment      string
	Filter           string
}

// Runner executes cases.
type Runner struct {
	factory SessionFactory
	opts    Options
	logger  *zap.Logger

	now       func() time.Time
	newPoller func() *wait.Poller
}

// New creates a runner. Workers below one run sequentially.
func New(factory SessionFactory, opts Options, logger *zap.Logger) *Runner {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Reruns < 0 {
		opts.Reruns = 0
	}
	r := &Runner{
		factory: factory,
		opts:    opts,
		logger:  logger.Named("runner"),
		now:     time.Now,
	}
	r.newPoller = func() *wait.Poller { return wait.NewPoller(r.opts.Timeout) }
	return r
}

// Run executes every case and returns the finished run. Results keep the
// order of cases. Cancellation of ctx, or the run timeout, marks cases that
// have not started as skipped and fails the ones in flight.
func (r *Runner) Run(ctx context.Context, cases []Case) *report.Run {
	if r.opts.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.RunTimeout)
		defer cancel()
	}

	run := &report.Run{
		ID:          uuid.NewString(),
		Title:       r.opts.Title,
		Environment: r.opts.Environment,
		Filter:      r.opts.Filter,
		StartedAt:   r.now(),
		Results:     make([]report.Result, len(cases)),
	}
	logger := r.logger.With(zap.String("run_id", run.ID))
	logger.Info("starting run",
		zap.Int("cases", len(cases)),
		zap.Int("workers", r.opts.Workers),
		zap.Int("reruns", r.opts.Reruns))

	var g errgroup.Group
	g.SetLimit(r.opts.Workers)
	for i, c := range cases {
		g.Go(func() error {
			run.Results[i] = r.runCase(ctx, c, logger)
			return nil
		})
	}
	_ = g.Wait()

	run.FinishedAt = r.now()
	s := run.Summary()
	logger.Info("run finished",
		zap.Int("passed", s.Passed),
		zap.Int("rerun", s.Rerun),
		zap.Int("failed", s.Failed),
		zap.Int("skipped", s.Skipped),
		zap.Duration("duration", run.Duration()))
	return run
}

func (r *Runner) runCase(ctx context.Context, c Case, logger *zap.Logger) report.Result {
	res := report.Result{
		Name:      c.Name,
		File:      c.File,
		Kind:      string(c.Scenario.Kind),
		Scenario:  c.Scenario.Name,
		Tags:      append([]string(nil), c.Tags...),
		StartedAt: r.now(),
	}
	logger = logger.With(zap.String("case", c.Name))

	if err := ctx.Err(); err != nil {
		res.Status = report.StatusSkipped
		res.Failure = fmt.Sprintf("not started: %v", err)
		res.ErrorKind = ErrorKind(err)
		logger.Warn("case skipped", zap.Error(err))
		return res
	}

	for n := 1; n <= 1+r.opts.Reruns; n++ {
		att := r.attempt(ctx, c, n, logger)
		res.Attempts = n
		res.URL = att.URL
		res.Screenshots = append(res.Screenshots, att.Screenshots...)

		if att.Err == nil {
			res.Status = report.StatusPassed
			if n > 1 {
				res.Status = report.StatusRerun
			}
			// Errors keeps the failed attempts.
			res.Failure, res.ErrorKind = "", ""
			break
		}

		res.Status = report.StatusFailed
		res.Failure = att.Err.Error()
		res.ErrorKind = ErrorKind(att.Err)
		res.Errors = append(res.Errors, att.Err.Error())
		if ctx.Err() != nil {
			break
		}
	}
	res.Duration = r.now().Sub(res.StartedAt)
	return res
}

func (r *Runner) attempt(ctx context.Context, c Case, n int, logger *zap.Logger) Attempt {
	name := c.Name
	if n > 1 {
		name = fmt.Sprintf("%s_rerun%d", c.Name, n-1)
	}
	logger = logger.With(zap.Int("attempt", n))

	logger.Info(banner)
	logger.Info("Starting Test: " + c.Name)
	logger.Info("Scenario: " + c.Scenario.String())
	logger.Info(banner)

	start := r.now()
	att := WithSession(ctx, r.factory, name, r.opts.FinalScreenshots, logger, func(s Session) error {
		env := suite.Env{
			Driver: s.Driver(),
			Poller: r.newPoller(),
			Logger: logger,
		}
		return c.Procedure.Run(ctx, env, c.Scenario)
	})
	att.Number = n
	elapsed := r.now().Sub(start)

	logger.Info(banner)
	if att.Err != nil {
		logger.Error("Test Failed: "+c.Name, zap.Duration("duration", elapsed), zap.Error(att.Err))
	} else {
		logger.Info("Test Passed: "+c.Name, zap.Duration("duration", elapsed))
	}
	logger.Info(banner)
	return att
}

// ErrorKind names the category of a test failure for reports.
func ErrorKind(err error) string {
	var failure *suite.AssertionFailure
	switch {
	case err == nil:
		return ""
	case errors.As(err, &failure):
		return "assertion"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	case errors.Is(err, pages.ErrOptionNotFound):
		return "option not found"
	case errors.Is(err, pages.ErrElementNotFound):
		return "element not found"
	case errors.Is(err, wait.ErrTimeout):
		return "timeout"
	case errors.Is(err, errPanic):
		return "panic"
	case errors.Is(err, ErrSetup):
		return "setup"
	default:
		return "error"
	}
}
