// Package pages holds the page objects for the flight booking flow. Page
// objects re-query the live page on every call and never assert: they report
// state and let the caller decide.
package pages

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/skylane-qa/flightcheck/internal/browser"
	"github.com/skylane-qa/flightcheck/internal/wait"
)

var (
	// ErrElementNotFound means a control never became actionable in time.
	ErrElementNotFound = errors.New("element not found")
	// ErrOptionNotFound means a container opened but the requested entry
	// (airport, calendar day, menu option) never appeared.
	ErrOptionNotFound = errors.New("option not found")
)

// shortTimeout bounds optional steps such as closing a dialog.
const shortTimeout = 5 * time.Second

type base struct {
	driver browser.Driver
	poller *wait.Poller
	logger *zap.Logger

	// ambient holds alert texts showing before the current interaction.
	ambient map[string]bool
}

func newBase(driver browser.Driver, poller *wait.Poller, logger *zap.Logger, name string) base {
	if poller == nil {
		poller = wait.NewPoller(0)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return base{driver: driver, poller: poller, logger: logger.Named(name)}
}

func (b *base) short() *wait.Poller {
	if b.poller.Timeout < shortTimeout {
		return b.poller
	}
	return b.poller.WithTimeout(shortTimeout)
}

// enabled treats disabled, aria-disabled and "*-disabled" styled controls
// as not actionable.
func (b *base) enabled(selector string) (bool, error) {
	ok, err := b.driver.IsEnabled(selector)
	if err != nil || !ok {
		return false, err
	}
	aria, err := b.driver.Attribute(selector, "aria-disabled")
	if err != nil {
		return false, err
	}
	if aria == "true" {
		return false, nil
	}
	class, err := b.driver.Attribute(selector, "class")
	if err != nil {
		return false, err
	}
	return !hasClassState(class, "disabled"), nil
}

// hasClassState reports a class token equal to state or ending in "-state",
// which also covers BEM "--state" modifiers.
func hasClassState(class, state string) bool {
	for _, c := range strings.Fields(class) {
		if c == state || strings.HasSuffix(c, "-"+state) {
			return true
		}
	}
	return false
}

func (b *base) actionable(selector string) (bool, error) {
	visible, err := b.driver.IsVisible(selector)
	if err != nil || !visible {
		return false, err
	}
	return b.enabled(selector)
}

// firstVisible returns the first selector with a visible match.
func (b *base) firstVisible(selectors []string) (string, bool, error) {
	var lastErr error
	for _, sel := range selectors {
		visible, err := b.driver.IsVisible(sel)
		if err != nil {
			lastErr = err
			continue
		}
		if visible {
			return sel, true, nil
		}
	}
	return "", false, lastErr
}

// firstActionable returns the first selector that is visible and enabled.
func (b *base) firstActionable(selectors []string) (string, bool, error) {
	var lastErr error
	for _, sel := range selectors {
		ok, err := b.actionable(sel)
		if err != nil {
			lastErr = err
			continue
		}
		if ok {
			return sel, true, nil
		}
	}
	return "", false, lastErr
}

// click waits for the first actionable alternative and clicks it. Click
// errors are retried until the poller gives up.
func (b *base) click(ctx context.Context, p *wait.Poller, what string, selectors ...string) error {
	return b.clickOr(ctx, p, ErrElementNotFound, what, selectors...)
}

// pick clicks an entry inside an opened container; absence is ErrOptionNotFound.
func (b *base) pick(ctx context.Context, what, selector string) error {
	return b.clickOr(ctx, b.poller, ErrOptionNotFound, what, selector)
}

func (b *base) clickOr(ctx context.Context, p *wait.Poller, sentinel error, what string, selectors ...string) error {
	err := p.Until(ctx, what, func(context.Context) (bool, error) {
		sel, ok, err := b.firstActionable(selectors)
		if err != nil || !ok {
			return false, err
		}
		if err := b.driver.Click(sel); err != nil {
			return false, err
		}
		b.logger.Debug("clicked", zap.String("target", what), zap.String("selector", sel))
		return true, nil
	})
	return classify(sentinel, err)
}

func (b *base) fill(ctx context.Context, what, value string, selectors ...string) error {
	err := b.poller.Until(ctx, what, func(context.Context) (bool, error) {
		sel, ok, err := b.firstActionable(selectors)
		if err != nil || !ok {
			return false, err
		}
		if err := b.driver.Fill(sel, value); err != nil {
			return false, err
		}
		return true, nil
	})
	return classify(ErrElementNotFound, err)
}

func (b *base) waitVisible(ctx context.Context, p *wait.Poller, what string, selectors ...string) (string, error) {
	var found string
	err := p.Until(ctx, what, func(context.Context) (bool, error) {
		sel, ok, err := b.firstVisible(selectors)
		found = sel
		return ok, err
	})
	return found, classify(ErrElementNotFound, err)
}

func (b *base) waitHidden(ctx context.Context, what, selector string) error {
	return b.poller.Until(ctx, what, func(context.Context) (bool, error) {
		visible, err := b.driver.IsVisible(selector)
		return err == nil && !visible, err
	})
}

func (b *base) anyVisible(selectors []string) (bool, error) {
	_, ok, err := b.firstVisible(selectors)
	return ok, err
}

// visibleMessages collects trimmed, non-empty, de-duplicated texts of every
// visible match across selectors, in order.
func (b *base) visibleMessages(selectors []string) ([]string, error) {
	var (
		out  []string
		seen = make(map[string]bool)
	)
	for _, sel := range selectors {
		texts, err := b.driver.VisibleTexts(sel)
		if err != nil {
			return nil, fmt.Errorf("read messages: %w", err)
		}
		for _, text := range texts {
			text = strings.TrimSpace(text)
			if text == "" || seen[text] {
				continue
			}
			seen[text] = true
			out = append(out, text)
		}
	}
	return out, nil
}

// noteAmbientAlerts records the alerts showing right now. They are left out
// of validationMessages until the next call.
func (b *base) noteAmbientAlerts() error {
	texts, err := b.visibleMessages([]string{AlertMessage})
	if err != nil {
		return err
	}
	b.ambient = make(map[string]bool, len(texts))
	for _, text := range texts {
		b.ambient[text] = true
	}
	if len(texts) > 0 {
		b.logger.Debug("ignoring standing alerts", zap.Strings("alerts", texts))
	}
	return nil
}

// validationMessages returns the form validation messages followed by any
// alert that was not already showing at noteAmbientAlerts.
func (b *base) validationMessages() ([]string, error) {
	msgs, err := b.visibleMessages(ValidationMessageSelectors)
	if err != nil {
		return nil, err
	}
	alerts, err := b.visibleMessages([]string{AlertMessage})
	if err != nil {
		return nil, err
	}
	for _, alert := range alerts {
		if !b.ambient[alert] && !slices.Contains(msgs, alert) {
			msgs = append(msgs, alert)
		}
	}
	return msgs, nil
}

// classify marks a timeout with the page-level sentinel while keeping
// wait.ErrTimeout matchable.
func classify(sentinel, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, wait.ErrTimeout) {
		return fmt.Errorf("%w: %w", sentinel, err)
	}
	return err
}
