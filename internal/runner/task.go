package runner

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// Task is a job the scheduler runs on a cron schedule.
type Task interface {
	// Name returns the unique name of the task
	Name() string

	// Schedule returns the cron expression, seconds field first
	Schedule() string

	Run(ctx context.Context) error

	// Timeout bounds one execution; zero means none
	Timeout() time.Duration
}

// FuncTask is a Task backed by a function.
type FuncTask struct {
	TaskName     string
	CronSchedule string
	MaxDuration  time.Duration
	Fn           func(ctx context.Context) error
}

func (t *FuncTask) Name() string                  { return t.TaskName }
func (t *FuncTask) Schedule() string              { return t.CronSchedule }
func (t *FuncTask) Timeout() time.Duration        { return t.MaxDuration }
func (t *FuncTask) Run(ctx context.Context) error { return t.Fn(ctx) }

// TaskRegistry holds the tasks handed to a scheduler.
type TaskRegistry struct {
	tasks map[string]Task
}

// NewTaskRegistry creates an empty registry.
func NewTaskRegistry() *TaskRegistry {
	return &TaskRegistry{
		tasks: make(map[string]Task),
	}
}

// Register adds a task. Names must be unique.
func (r *TaskRegistry) Register(task Task) error {
	if _, exists := r.tasks[task.Name()]; exists {
		return fmt.Errorf("task %s already registered", task.Name())
	}
	r.tasks[task.Name()] = task
	return nil
}

// Get returns a task by name
func (r *TaskRegistry) Get(name string) (Task, bool) {
	task, exists := r.tasks[name]
	return task, exists
}

// All returns every task ordered by name.
func (r *TaskRegistry) All() []Task {
	out := make([]Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}
