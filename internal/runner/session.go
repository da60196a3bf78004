package runner

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/skylane-qa/flightcheck/internal/browser"
)

// Session is the part of browser.Session the runner needs.
type Session interface {
	Driver() browser.Driver
	URL() string
	CaptureFailure() (string, error)
	CaptureFinal() (string, error)
	Release() error
}

// SessionFactory hands out one exclusive session per attempt.
type SessionFactory interface {
	Acquire(ctx context.Context, name string) (Session, error)
}

// FactoryFunc adapts a function to SessionFactory.
type FactoryFunc func(ctx context.Context, name string) (Session, error)

func (f FactoryFunc) Acquire(ctx context.Context, name string) (Session, error) {
	return f(ctx, name)
}

// FromLauncher serves sessions from a started browser launcher.
func FromLauncher(l *browser.Launcher) SessionFactory {
	return FactoryFunc(func(ctx context.Context, name string) (Session, error) {
		s, err := l.Acquire(ctx, name)
		if err != nil {
			return nil, err
		}
		return s, nil
	})
}

// Attempt describes one run of a case on its own session.
type Attempt struct {
	Number      int
	Err         error
	Screenshots []string
	URL         string
}

// WithSession acquires a session, runs fn on it and always releases it. On
// failure a screenshot is captured before teardown; when final is set the
// final page state is captured as well.
func WithSession(ctx context.Context, factory SessionFactory, name string, final bool, logger *zap.Logger, fn func(Session) error) Attempt {
	var att Attempt
	s, err := factory.Acquire(ctx, name)
	if err != nil {
		att.Err = fmt.Errorf("%w: %w", ErrSetup, err)
		return att
	}
	defer func() {
		if err := s.Release(); err != nil {
			logger.Warn("failed to release browser session", zap.Error(err))
		}
	}()

	att.Err = runGuarded(s, fn)
	att.URL = s.URL()

	if att.Err != nil {
		if path, err := s.CaptureFailure(); err == nil {
			att.Screenshots = append(att.Screenshots, path)
		} else {
			logger.Warn("failure screenshot not captured", zap.Error(err))
		}
	}
	if final {
		if path, err := s.CaptureFinal(); err == nil {
			att.Screenshots = append(att.Screenshots, path)
		} else {
			logger.Warn("final screenshot not captured", zap.Error(err))
		}
	}
	return att
}

// ErrSetup marks an attempt whose browser session could not be acquired.
var ErrSetup = errors.New("acquire browser session")

// errPanic marks a procedure that panicked.
var errPanic = errors.New("test panicked")

func runGuarded(s Session, fn func(Session) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errPanic, r)
		}
	}()
	return fn(s)
}
