// Package wait provides the bounded polling primitive used by every page operation.
package wait

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrTimeout is returned when a polled condition never held within the timeout.
var ErrTimeout = errors.New("timed out waiting for condition")

const (
	// DefaultTimeout matches the browser default timeout.
	DefaultTimeout = 30 * time.Second
	// DefaultInterval is the delay between two condition checks.
	DefaultInterval = 250 * time.Millisecond
)

// Condition reports whether the awaited state holds. A non-nil error is
// treated as "not yet" unless it is marked permanent with Stop.
type Condition func(ctx context.Context) (bool, error)

// Poller checks a condition repeatedly until it holds or the timeout elapses.
type Poller struct {
	Timeout  time.Duration
	Interval time.Duration

	// now and sleep are swapped in tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewPoller creates a poller with the given timeout and the default interval.
func NewPoller(timeout time.Duration) *Poller {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Poller{
		Timeout:  timeout,
		Interval: DefaultInterval,
	}
}

// WithTimeout returns a copy of the poller using a different timeout.
func (p *Poller) WithTimeout(timeout time.Duration) *Poller {
	cp := *p
	cp.Timeout = timeout
	return &cp
}

// Until polls cond until it returns true. The last error seen from cond is
// attached to the timeout error so callers can tell why the wait failed.
func (p *Poller) Until(ctx context.Context, what string, cond Condition) error {
	now := p.now
	if now == nil {
		now = time.Now
	}
	sleep := p.sleep
	if sleep == nil {
		sleep = sleepCtx
	}
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	deadline := now().Add(p.Timeout)
	var lastErr error
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s: %w", what, err)
		}

		ok, err := cond(ctx)
		if err != nil {
			var stop *stopError
			if errors.As(err, &stop) {
				return stop.err
			}
			lastErr = err
		}
		if ok {
			return nil
		}

		remaining := deadline.Sub(now())
		if remaining <= 0 {
			if lastErr != nil {
				return &TimeoutError{What: what, Timeout: p.Timeout, Attempts: attempt, Last: lastErr}
			}
			return &TimeoutError{What: what, Timeout: p.Timeout, Attempts: attempt}
		}
		if remaining > interval {
			remaining = interval
		}
		if err := sleep(ctx, remaining); err != nil {
			return fmt.Errorf("%s: %w", what, err)
		}
	}
}

// TimeoutError describes a condition that never held.
type TimeoutError struct {
	What     string
	Timeout  time.Duration
	Attempts int
	Last     error
}

func (e *TimeoutError) Error() string {
	if e.Last != nil {
		return fmt.Sprintf("%s: not satisfied after %v (%d checks): %v", e.What, e.Timeout, e.Attempts, e.Last)
	}
	return fmt.Sprintf("%s: not satisfied after %v (%d checks)", e.What, e.Timeout, e.Attempts)
}

// Is makes errors.Is(err, ErrTimeout) hold for every TimeoutError.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

func (e *TimeoutError) Unwrap() error {
	return e.Last
}

type stopError struct {
	err error
}

func (e *stopError) Error() string { return e.err.Error() }

// Stop marks err as permanent: Until returns it immediately instead of retrying.
func Stop(err error) error {
	if err == nil {
		return nil
	}
	return &stopError{err: err}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
