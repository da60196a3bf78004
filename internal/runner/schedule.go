package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler re-runs registered tasks on their cron schedules until its
// context is cancelled. An execution still in progress when the next tick
// fires makes that tick a no-op.
type Scheduler struct {
	cron     *cron.Cron
	registry *TaskRegistry
	logger   *zap.Logger
	wg       sync.WaitGroup
}

// NewScheduler creates a scheduler whose cron expressions carry a seconds field.
func NewScheduler(registry *TaskRegistry, logger *zap.Logger) *Scheduler {
	logger = logger.Named("scheduler")
	cronLogger := cron.PrintfLogger(zap.NewStdLog(logger))
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		registry: registry,
		logger:   logger,
	}
}

// Start schedules every task and blocks until ctx is done, then waits for
// running tasks to finish.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("starting scheduler")

	for _, task := range s.registry.All() {
		s.logger.Info("registering task", zap.String("task", task.Name()), zap.String("schedule", task.Schedule()))

		_, err := s.cron.AddFunc(task.Schedule(), func() {
			s.execute(ctx, task)
		})
		if err != nil {
			return fmt.Errorf("failed to schedule task %s: %w", task.Name(), err)
		}
	}

	s.cron.Start()
	for _, entry := range s.cron.Entries() {
		s.logger.Info("next run", zap.Time("at", entry.Next))
	}

	<-ctx.Done()
	s.logger.Info("context cancelled", zap.Error(ctx.Err()))
	s.Stop()
	return nil
}

// RunNow executes a registered task once, outside its schedule.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	task, ok := s.registry.Get(name)
	if !ok {
		return fmt.Errorf("unknown task %s", name)
	}
	return s.execute(ctx, task)
}

func (s *Scheduler) execute(ctx context.Context, task Task) error {
	s.wg.Add(1)
	defer s.wg.Done()

	taskCtx := ctx
	if task.Timeout() > 0 {
		var cancel context.CancelFunc
		taskCtx, cancel = context.WithTimeout(ctx, task.Timeout())
		defer cancel()
	}

	s.logger.Info("executing task", zap.String("task", task.Name()))

	start := time.Now()
	err := task.Run(taskCtx)
	duration := time.Since(start)

	if err != nil {
		s.logger.Error("task failed", zap.String("task", task.Name()), zap.Duration("duration", duration), zap.Error(err))
	} else {
		s.logger.Info("task completed", zap.String("task", task.Name()), zap.Duration("duration", duration))
	}
	return err
}

// Stop stops the cron loop and waits for running tasks.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")

	done := s.cron.Stop()
	s.wg.Wait()
	<-done.Done()

	s.logger.Info("scheduler stopped")
}
