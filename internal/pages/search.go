package pages

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/skylane-qa/flightcheck/internal/browser"
	"github.com/skylane-qa/flightcheck/internal/scenario"
	"github.com/skylane-qa/flightcheck/internal/wait"
)

// Outcome is what a submitted search led to.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeResults
	OutcomeError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeResults:
		return "results"
	case OutcomeError:
		return "error"
	default:
		return "none"
	}
}

// SearchPage is the flight search form.
type SearchPage struct {
	base
	results *ResultsPage
}

// NewSearchPage creates the search form page object.
func NewSearchPage(driver browser.Driver, poller *wait.Poller, logger *zap.Logger) *SearchPage {
	return &SearchPage{
		base:    newBase(driver, poller, logger, "search"),
		results: NewResultsPage(driver, poller, logger),
	}
}

// WaitReady waits until both location anchors and the search button are
// showing and no loading indicator is left.
func (p *SearchPage) WaitReady(ctx context.Context) error {
	for _, el := range []struct{ what, selector string }{
		{"departure location field", DepartureAnchor},
		{"arrival location field", ArrivalAnchor},
		{"search button", SearchButton},
	} {
		if _, err := p.waitVisible(ctx, p.poller, el.what, el.selector); err != nil {
			return err
		}
	}
	return p.waitLoaded(ctx)
}

// ResetForm reloads the booking page and waits for it to be ready.
func (p *SearchPage) ResetForm(ctx context.Context) error {
	p.logger.Info("resetting search form")
	if err := p.driver.Reload(); err != nil {
		return fmt.Errorf("reload booking page: %w", err)
	}
	return p.WaitReady(ctx)
}

// SetOrigin picks the departure airport by code.
func (p *SearchPage) SetOrigin(ctx context.Context, code string) error {
	return p.setLocation(ctx, "origin", DepartureAnchor, code)
}

// SetDestination picks the arrival airport by code.
func (p *SearchPage) SetDestination(ctx context.Context, code string) error {
	return p.setLocation(ctx, "destination", ArrivalAnchor, code)
}

func (p *SearchPage) setLocation(ctx context.Context, field, anchor, code string) error {
	p.logger.Info("selecting location", zap.String("field", field), zap.String("code", code))
	if err := p.click(ctx, p.poller, field+" field", anchor); err != nil {
		return err
	}
	if err := p.fill(ctx, field+" search input", code, LocationInput); err != nil {
		return err
	}

	if err := p.pick(ctx, fmt.Sprintf("%s suggestion %s", field, code), LocationSuggestion(code)); err != nil {
		// Leave the dialog so later steps see the form again.
		_ = p.driver.Press("Escape")
		return err
	}
	return nil
}

// CurrentTripType reads the selected trip type from the dropdown, or from the
// radio labels when the page renders those instead.
func (p *SearchPage) CurrentTripType(ctx context.Context) (scenario.TripType, error) {
	var current scenario.TripType
	err := p.poller.Until(ctx, "trip type control", func(context.Context) (bool, error) {
		t, ok, err := p.readTripType()
		current = t
		return ok, err
	})
	return current, classify(ErrElementNotFound, err)
}

func (p *SearchPage) readTripType() (scenario.TripType, bool, error) {
	visible, err := p.driver.IsVisible(TripTypeToggle)
	if err != nil {
		return "", false, err
	}
	if visible {
		text, err := p.driver.Text(TripTypeToggle)
		if err != nil {
			return "", false, err
		}
		t, ok := parseTripType(text)
		if !ok {
			return "", false, fmt.Errorf("unrecognised trip type %q", text)
		}
		return t, true, nil
	}

	for _, t := range []scenario.TripType{scenario.OneWay, scenario.RoundTrip} {
		checked, err := p.labelChecked(TripTypeLabel(t))
		if err != nil {
			return "", false, err
		}
		if checked {
			return t, true, nil
		}
	}
	return "", false, nil
}

// labelChecked reads aria-checked and checked/selected class tokens first,
// then the checked state of the radio the label belongs to.
func (p *SearchPage) labelChecked(selector string) (bool, error) {
	visible, err := p.driver.IsVisible(selector)
	if err != nil || !visible {
		return false, err
	}
	aria, err := p.driver.Attribute(selector, "aria-checked")
	if err != nil {
		return false, err
	}
	if aria == "true" {
		return true, nil
	}
	class, err := p.driver.Attribute(selector, "class")
	if err != nil {
		return false, err
	}
	if hasClassState(class, "checked") || hasClassState(class, "selected") {
		return true, nil
	}
	checked, err := p.driver.IsChecked(selector)
	if err != nil {
		// Styled labels without a radio behind them.
		return false, nil
	}
	return checked, nil
}

func parseTripType(text string) (scenario.TripType, bool) {
	text = strings.ToLower(text)
	switch {
	case strings.Contains(text, "one way"):
		return scenario.OneWay, true
	case strings.Contains(text, "return"):
		return scenario.RoundTrip, true
	default:
		return "", false
	}
}

// SelectTripType chooses the trip type. It does nothing when the form
// already shows the requested type. Labels that expose no checked state are
// clicked without verifying the result.
func (p *SearchPage) SelectTripType(ctx context.Context, t scenario.TripType) error {
	var (
		current scenario.TripType
		known   bool
	)
	err := p.poller.Until(ctx, "trip type control", func(context.Context) (bool, error) {
		var err error
		current, known, err = p.readTripType()
		if err != nil || known {
			return known, err
		}
		return p.anyVisible([]string{TripTypeLabel(scenario.OneWay), TripTypeLabel(scenario.RoundTrip)})
	})
	if err := classify(ErrElementNotFound, err); err != nil {
		return err
	}
	if known && current == t {
		p.logger.Debug("trip type already selected", zap.String("trip_type", string(t)))
		return nil
	}

	p.logger.Info("selecting trip type", zap.String("trip_type", string(t)))
	dropdown, err := p.driver.IsVisible(TripTypeToggle)
	if err != nil {
		return err
	}
	if dropdown {
		if err := p.click(ctx, p.poller, "trip type dropdown", TripTypeToggle); err != nil {
			return err
		}
		if err := p.pick(ctx, "trip type option "+t.Label(), TripTypeOption(t)); err != nil {
			return err
		}
	} else if err := p.click(ctx, p.poller, "trip type label "+t.Label(), TripTypeLabel(t)); err != nil {
		return err
	}

	if !known {
		p.logger.Warn("trip type state is not readable, assuming the label click took effect",
			zap.String("trip_type", string(t)))
		return nil
	}
	return p.poller.Until(ctx, "trip type "+string(t), func(context.Context) (bool, error) {
		got, _, err := p.readTripType()
		return got == t, err
	})
}

// SetDepartureDate picks a single departure day.
func (p *SearchPage) SetDepartureDate(ctx context.Context, departure time.Time) error {
	return p.SetDates(ctx, departure, nil)
}

// SetDates picks the departure day and, when returnDate is set, the return
// day. Without a return date the picker is confirmed if it allows that and
// closed otherwise, leaving the form without a return date.
func (p *SearchPage) SetDates(ctx context.Context, departure time.Time, returnDate *time.Time) error {
	fields := []zap.Field{zap.String("departure", departure.Format(scenario.DateLayout))}
	if returnDate != nil {
		fields = append(fields, zap.String("return", returnDate.Format(scenario.DateLayout)))
	}
	p.logger.Info("selecting travel dates", fields...)

	if err := p.click(ctx, p.poller, "travel dates field", TravelDatesAnchor); err != nil {
		return err
	}
	if err := p.pickDay(ctx, "departure", departure); err != nil {
		return err
	}
	if returnDate == nil {
		if err := p.click(ctx, p.short(), "confirm dates", DialogConfirm); err != nil {
			p.logger.Info("date picker not confirmable without return date, closing it")
			return p.closeDatePicker(ctx)
		}
		return nil
	}

	if err := p.pickDay(ctx, "return", *returnDate); err != nil {
		return err
	}
	return p.click(ctx, p.poller, "confirm dates", DialogConfirm)
}

func (p *SearchPage) pickDay(ctx context.Context, which string, day time.Time) error {
	what := fmt.Sprintf("%s day %s", which, day.Format(scenario.DateLayout))
	if err := p.pick(ctx, what, CalendarDay(day)); err != nil {
		_ = p.closeDatePicker(ctx)
		return err
	}
	return nil
}

func (p *SearchPage) closeDatePicker(ctx context.Context) error {
	if err := p.click(ctx, p.short(), "close date picker", DatePickerClose); err != nil {
		return p.driver.Press("Escape")
	}
	return nil
}

// SubmitSearch clicks search and waits for either results or a validation
// message. Neither showing up within the timeout is a wait.ErrTimeout.
// Alerts already showing before the click do not count.
func (p *SearchPage) SubmitSearch(ctx context.Context) (Outcome, error) {
	if err := p.waitLoaded(ctx); err != nil {
		return OutcomeNone, err
	}
	if err := p.noteAmbientAlerts(); err != nil {
		return OutcomeNone, err
	}
	p.logger.Info("submitting search")
	if err := p.click(ctx, p.poller, "search button", SearchButton); err != nil {
		return OutcomeNone, err
	}

	outcome := OutcomeNone
	err := p.poller.Until(ctx, "search outcome", func(ctx context.Context) (bool, error) {
		if ok, err := p.results.IsVisible(ctx); err != nil || ok {
			if ok {
				outcome = OutcomeResults
			}
			return ok, err
		}
		msgs, err := p.validationMessages()
		if err != nil {
			return false, err
		}
		if len(msgs) > 0 {
			outcome = OutcomeError
			return true, nil
		}
		return false, nil
	})
	if err != nil {
		return OutcomeNone, err
	}
	p.logger.Info("search submitted", zap.Stringer("outcome", outcome), zap.String("url", p.driver.URL()))
	return outcome, nil
}

// ErrorMessages returns the validation messages showing right now. Alerts
// that were already up when the search was submitted are left out.
func (p *SearchPage) ErrorMessages(_ context.Context) ([]string, error) {
	return p.validationMessages()
}

// ReadErrorMessage joins every message from ErrorMessages with "; ". ok is
// false when no message is showing.
func (p *SearchPage) ReadErrorMessage(ctx context.Context) (msg string, ok bool, err error) {
	msgs, err := p.ErrorMessages(ctx)
	if err != nil || len(msgs) == 0 {
		return "", false, err
	}
	return strings.Join(msgs, "; "), true, nil
}

func (p *SearchPage) waitLoaded(ctx context.Context) error {
	loading, err := p.driver.IsVisible(LoadingIndicator)
	if err != nil || !loading {
		return err
	}
	p.logger.Debug("waiting for loading indicator")
	return p.waitHidden(ctx, "loading to finish", LoadingIndicator)
}
