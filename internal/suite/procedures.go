package suite

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/skylane-qa/flightcheck/internal/pages"
	"github.com/skylane-qa/flightcheck/internal/scenario"
	"github.com/skylane-qa/flightcheck/internal/wait"
)

func init() {
	register(Procedure{
		Kind:        scenario.KindOneWay,
		Title:       "Successful one-way flight search",
		DefaultTags: []string{"smoke"},
		Run:         runSuccessfulSearch,
	})
	register(Procedure{
		Kind:        scenario.KindRoundTrip,
		Title:       "Successful round-trip flight search",
		DefaultTags: []string{"regression"},
		Run:         runSuccessfulSearch,
	})
	register(Procedure{
		Kind:        scenario.KindMissingReturnDate,
		Title:       "Round trip with missing return date",
		DefaultTags: []string{"regression"},
		Run:         runMissingReturnDate,
	})
	register(Procedure{
		Kind:        scenario.KindInfantLimit,
		Title:       "One infant per adult limit",
		DefaultTags: []string{"smoke"},
		Run:         runInfantLimit,
	})
}

// fillSearch enters route, trip type and dates. A round trip without a
// return date leaves the return date empty.
func (f *flow) fillSearch(ctx context.Context, sc scenario.Scenario) error {
	if err := f.steps.do("wait for booking form", func() error {
		return f.search.WaitReady(ctx)
	}); err != nil {
		return err
	}
	if err := f.steps.do("select trip type "+sc.TripType.Label(), func() error {
		return f.search.SelectTripType(ctx, sc.TripType)
	}); err != nil {
		return err
	}
	if err := f.steps.do("enter origin "+sc.Origin, func() error {
		return f.search.SetOrigin(ctx, sc.Origin)
	}); err != nil {
		return err
	}
	if err := f.steps.do("enter destination "+sc.Destination, func() error {
		return f.search.SetDestination(ctx, sc.Destination)
	}); err != nil {
		return err
	}
	return f.steps.do("select travel dates", func() error {
		if sc.TripType == scenario.RoundTrip && sc.HasReturnDate() {
			ret := sc.ReturnDate
			return f.search.SetDates(ctx, sc.DepartureDate, &ret)
		}
		if sc.TripType == scenario.RoundTrip {
			return f.search.SetDates(ctx, sc.DepartureDate, nil)
		}
		return f.search.SetDepartureDate(ctx, sc.DepartureDate)
	})
}

// fillPassengers sets the counters when they differ from one adult.
func (f *flow) fillPassengers(ctx context.Context, pax scenario.Passengers) error {
	if pax == (scenario.Passengers{Adults: 1}) {
		return nil
	}
	return f.steps.do("select passengers", func() error {
		if err := f.passengers.Open(ctx); err != nil {
			return err
		}
		if err := f.passengers.SetAdults(ctx, pax.Adults); err != nil {
			return err
		}
		if err := f.passengers.SetChildren(ctx, pax.Children); err != nil {
			return err
		}
		for i := 0; i < pax.Infants; i++ {
			if err := f.passengers.IncrementInfants(ctx); err != nil {
				return err
			}
		}
		return f.passengers.Confirm(ctx)
	})
}

func runSuccessfulSearch(ctx context.Context, env Env, sc scenario.Scenario) error {
	f := newFlow(env, sc)
	if err := f.fillSearch(ctx, sc); err != nil {
		return err
	}
	if err := f.fillPassengers(ctx, sc.Passengers); err != nil {
		return err
	}

	var outcome pages.Outcome
	if err := f.steps.do("search flights", func() error {
		var err error
		outcome, err = f.search.SubmitSearch(ctx)
		return err
	}); err != nil {
		return err
	}

	return f.steps.do("verify flight results", func() error {
		msg, shown, err := f.search.ReadErrorMessage(ctx)
		if err != nil {
			return err
		}
		if shown {
			return failf("no error message", msg, "search showed a validation error")
		}
		if outcome != pages.OutcomeResults {
			return failf(pages.OutcomeResults, outcome, "search did not reach flight results")
		}
		return f.results.WaitVisible(ctx)
	})
}

func runMissingReturnDate(ctx context.Context, env Env, sc scenario.Scenario) error {
	f := newFlow(env, sc)
	sc.ReturnDate = time.Time{}
	if err := f.fillSearch(ctx, sc); err != nil {
		return err
	}
	if err := f.fillPassengers(ctx, sc.Passengers); err != nil {
		return err
	}

	var outcome pages.Outcome
	if err := f.steps.do("search flights", func() error {
		var err error
		outcome, err = f.search.SubmitSearch(ctx)
		return err
	}); err != nil {
		return err
	}

	return f.steps.do("verify return date error", func() error {
		if outcome == pages.OutcomeResults {
			return failf("search blocked", "flight results", "search went ahead without a return date")
		}
		msgs, err := f.search.ErrorMessages(ctx)
		if err != nil {
			return err
		}
		if len(msgs) == 0 {
			return failf(sc.ExpectedError, "no message", "no validation error was displayed")
		}
		if !slices.ContainsFunc(msgs, func(msg string) bool { return sameMessage(sc.ExpectedError, msg) }) {
			return failf(sc.ExpectedError, strings.Join(msgs, "; "), "unexpected validation error")
		}
		visible, err := f.results.IsVisible(ctx)
		if err != nil {
			return err
		}
		if visible {
			return failf(false, true, "flight results are visible")
		}
		return nil
	})
}

func runInfantLimit(ctx context.Context, env Env, sc scenario.Scenario) error {
	f := newFlow(env, sc)
	if err := f.fillSearch(ctx, sc); err != nil {
		return err
	}

	adults := sc.Passengers.Adults
	if err := f.steps.do("open passenger selector", func() error {
		if err := f.passengers.Open(ctx); err != nil {
			return err
		}
		return f.passengers.SetAdults(ctx, adults)
	}); err != nil {
		return err
	}

	for i := 1; i <= adults; i++ {
		if err := f.steps.do("add infant", func() error {
			enabled, err := f.passengers.InfantControlIsEnabled(ctx)
			if err != nil {
				return err
			}
			if !enabled {
				return failf(true, false, "infant + disabled with %d infant(s) for %d adult(s)", i-1, adults)
			}
			return f.passengers.IncrementInfants(ctx)
		}); err != nil {
			return err
		}
	}

	return f.steps.do("verify infant limit", func() error {
		enabled, err := f.passengers.InfantControlIsEnabled(ctx)
		if err != nil {
			return err
		}
		if enabled {
			return failf(false, true, "infant + still enabled with %d infants for %d adults", adults, adults)
		}

		count, err := f.passengers.InfantCount(ctx)
		if err != nil {
			return err
		}
		if count != adults {
			return failf(adults, count, "infant count")
		}

		msgs, err := f.passengers.WaitValidationMessages(ctx)
		if errors.Is(err, wait.ErrTimeout) {
			return failf(sc.ExpectedError, "no message", "infant limit message was not displayed")
		}
		if err != nil {
			return err
		}
		for _, msg := range msgs {
			if sameMessage(sc.ExpectedError, msg) {
				f.steps.logger.Info("infant limit message shown", zap.String("message", msg))
				return nil
			}
		}
		return failf(sc.ExpectedError, msgs, "infant limit message")
	})
}
