package pages

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/skylane-qa/flightcheck/internal/browser"
	"github.com/skylane-qa/flightcheck/internal/wait"
)

// maxPassengers is the most travellers one booking accepts.
const maxPassengers = 9

// PassengerSelector is the passenger count dialog.
type PassengerSelector struct {
	base
}

// NewPassengerSelector creates the passenger dialog page object.
func NewPassengerSelector(driver browser.Driver, poller *wait.Poller, logger *zap.Logger) *PassengerSelector {
	return &PassengerSelector{base: newBase(driver, poller, logger, "passengers")}
}

// Open opens the dialog and waits for the adult counter. Alerts showing
// before it opens are not passenger messages.
func (p *PassengerSelector) Open(ctx context.Context) error {
	p.logger.Info("opening passenger selector")
	if err := p.noteAmbientAlerts(); err != nil {
		return err
	}
	if err := p.click(ctx, p.poller, "passenger selector", PassengerAnchor); err != nil {
		return err
	}
	_, err := p.waitVisible(ctx, p.poller, "adult counter", AdultsInput)
	return err
}

// Confirm closes the dialog keeping the selected counts.
func (p *PassengerSelector) Confirm(ctx context.Context) error {
	return p.click(ctx, p.poller, "confirm passengers", DialogConfirm)
}

// AdultCount reads the adult counter.
func (p *PassengerSelector) AdultCount(ctx context.Context) (int, error) {
	return p.count(ctx, "adult counter", AdultsInput)
}

// InfantCount reads the infant counter.
func (p *PassengerSelector) InfantCount(ctx context.Context) (int, error) {
	return p.count(ctx, "infant counter", InfantsInput)
}

func (p *PassengerSelector) count(ctx context.Context, what, selector string) (int, error) {
	if _, err := p.waitVisible(ctx, p.poller, what, selector); err != nil {
		return 0, err
	}
	return p.readCount(selector)
}

// readCount prefers aria-valuenow and falls back to the input value.
func (p *PassengerSelector) readCount(selector string) (int, error) {
	value, err := p.driver.Attribute(selector, "aria-valuenow")
	if err != nil {
		return 0, err
	}
	if value == "" {
		if value, err = p.driver.InputValue(selector); err != nil {
			return 0, err
		}
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("counter %s shows %q: %w", selector, value, err)
	}
	return n, nil
}

type counter struct {
	name        string
	input       string
	min         int
	plus, minus []string
}

var (
	adultCounter = counter{"adult", AdultsInput, 1,
		[]string{AdultPlus, AdultPlusAlt}, []string{AdultMinus, AdultMinusAlt}}
	childCounter = counter{"child", ChildrenInput, 0,
		[]string{ChildPlus, ChildPlusAlt}, []string{ChildMinus, ChildMinusAlt}}
)

// SetAdults clicks + or - until the adult counter reads n.
func (p *PassengerSelector) SetAdults(ctx context.Context, n int) error {
	return p.set(ctx, adultCounter, n)
}

// ChildCount reads the child counter.
func (p *PassengerSelector) ChildCount(ctx context.Context) (int, error) {
	return p.count(ctx, "child counter", ChildrenInput)
}

// SetChildren clicks + or - until the child counter reads n.
func (p *PassengerSelector) SetChildren(ctx context.Context, n int) error {
	return p.set(ctx, childCounter, n)
}

func (p *PassengerSelector) set(ctx context.Context, c counter, n int) error {
	if n < c.min || n > maxPassengers {
		return fmt.Errorf("%s count must be between %d and %d, got %d", c.name, c.min, maxPassengers, n)
	}
	p.logger.Info("setting passengers", zap.String("type", c.name), zap.Int("count", n))

	for i := 0; i < 2*maxPassengers; i++ {
		current, err := p.count(ctx, c.name+" counter", c.input)
		if err != nil {
			return err
		}
		if current == n {
			return nil
		}

		what, selectors := c.name+" +", c.plus
		if current > n {
			what, selectors = c.name+" -", c.minus
		}
		if err := p.click(ctx, p.poller, what, selectors...); err != nil {
			return err
		}
		if err := p.waitCountChange(ctx, c.name+" counter", c.input, current); err != nil {
			return err
		}
	}
	return fmt.Errorf("%s counter did not reach %d", c.name, n)
}

// IncrementInfants clicks infant + once and waits for the counter to move.
// It does not check whether adding an infant is allowed.
func (p *PassengerSelector) IncrementInfants(ctx context.Context) error {
	before, err := p.InfantCount(ctx)
	if err != nil {
		return err
	}
	if err := p.click(ctx, p.poller, "infant +", InfantPlus, InfantPlusAlt); err != nil {
		return err
	}
	if err := p.waitCountChange(ctx, "infant counter", InfantsInput, before); err != nil {
		return err
	}
	p.logger.Info("infant added", zap.Int("infants_before", before))
	return nil
}

// InfantControlIsEnabled reports the raw state of the infant + control.
func (p *PassengerSelector) InfantControlIsEnabled(ctx context.Context) (bool, error) {
	sel, err := p.waitVisible(ctx, p.poller, "infant + control", InfantPlus, InfantPlusAlt)
	if err != nil {
		return false, err
	}
	return p.enabled(sel)
}

// ValidationMessages returns the passenger messages showing right now.
func (p *PassengerSelector) ValidationMessages(_ context.Context) ([]string, error) {
	return p.validationMessages()
}

// WaitValidationMessages waits until at least one message shows.
func (p *PassengerSelector) WaitValidationMessages(ctx context.Context) ([]string, error) {
	var msgs []string
	err := p.poller.Until(ctx, "passenger validation message", func(ctx context.Context) (bool, error) {
		var err error
		msgs, err = p.ValidationMessages(ctx)
		return len(msgs) > 0, err
	})
	return msgs, err
}

func (p *PassengerSelector) waitCountChange(ctx context.Context, what, selector string, from int) error {
	return p.poller.Until(ctx, what+" to change", func(context.Context) (bool, error) {
		n, err := p.readCount(selector)
		return err == nil && n != from, err
	})
}
