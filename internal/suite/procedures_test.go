package suite

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/skylane-qa/flightcheck/internal/pages"
	"github.com/skylane-qa/flightcheck/internal/pages/pagestest"
	"github.com/skylane-qa/flightcheck/internal/scenario"
	"github.com/skylane-qa/flightcheck/internal/wait"
)

var today = time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC)

func run(t *testing.T, opts pagestest.Options, sc scenario.Scenario) (*pagestest.Site, error) {
	t.Helper()
	opts.Today = today
	site := pagestest.NewSite(opts)

	proc, ok := Lookup(sc.Kind)
	require.True(t, ok, "no procedure for %s", sc.Kind)

	env := Env{
		Driver: site,
		Poller: &wait.Poller{Timeout: 150 * time.Millisecond, Interval: time.Millisecond},
		Logger: zaptest.NewLogger(t),
	}
	return site, proc.Run(context.Background(), env, sc)
}

func oneWay() scenario.Scenario {
	return scenario.Scenario{
		Name:          "syd_mel",
		Kind:          scenario.KindOneWay,
		Origin:        "SYD",
		Destination:   "MEL",
		TripType:      scenario.OneWay,
		DepartureDate: today.AddDate(0, 0, 30),
		Passengers:    scenario.Passengers{Adults: 1},
	}
}

func roundTrip() scenario.Scenario {
	sc := oneWay()
	sc.Name, sc.Kind, sc.TripType = "syd_bne_return", scenario.KindRoundTrip, scenario.RoundTrip
	sc.Destination = "BNE"
	sc.ReturnDate = today.AddDate(0, 0, 37)
	return sc
}

func missingReturn() scenario.Scenario {
	sc := oneWay()
	sc.Name, sc.Kind, sc.TripType = "no_return", scenario.KindMissingReturnDate, scenario.RoundTrip
	sc.ExpectedError = pagestest.ReturnRequiredMessage
	return sc
}

func infantLimit(adults int) scenario.Scenario {
	sc := oneWay()
	sc.Name, sc.Kind = fmt.Sprintf("adults_%d", adults), scenario.KindInfantLimit
	sc.Origin, sc.Destination = "HKG", "NRT"
	sc.Passengers = scenario.Passengers{Adults: adults}
	sc.ExpectedError = pagestest.InfantLimitMessage
	return sc
}

func TestRegistry(t *testing.T) {
	var kinds []scenario.Kind
	for _, p := range Procedures() {
		kinds = append(kinds, p.Kind)
		assert.NotEmpty(t, p.Title)
		assert.NotNil(t, p.Run)
	}
	assert.ElementsMatch(t, scenario.Kinds, kinds)

	p, _ := Lookup(scenario.KindOneWay)
	assert.Equal(t, []string{"smoke"}, p.Tags(oneWay()))
	tagged := oneWay()
	tagged.Tags = []string{"regression"}
	assert.Equal(t, []string{"regression"}, p.Tags(tagged))

	p, _ = Lookup(scenario.KindMissingReturnDate)
	assert.Equal(t, []string{"regression"}, p.Tags(missingReturn()))

	_, ok := Lookup("multi_city")
	assert.False(t, ok)
}

func TestOneWaySearch(t *testing.T) {
	site, err := run(t, pagestest.Options{}, oneWay())
	require.NoError(t, err)

	assert.Equal(t, scenario.OneWay, site.TripType())
	origin, destination := site.Route()
	assert.Equal(t, "SYD", origin)
	assert.Equal(t, "MEL", destination)
	assert.Equal(t, pagestest.ResultsURL, site.URL())
	assert.Equal(t, 0, site.ClickCount(pages.PassengerAnchor), "default passengers are left alone")
}

func TestSearchWithStandingBanner(t *testing.T) {
	site, err := run(t, pagestest.Options{Banner: "Travel advisory: check entry requirements"}, oneWay())
	require.NoError(t, err)
	assert.Equal(t, pagestest.ResultsURL, site.URL())
}

func TestSearchWithNativeRadioLabels(t *testing.T) {
	site, err := run(t, pagestest.Options{RadioTripType: true, NativeRadios: true}, oneWay())
	require.NoError(t, err)
	assert.Equal(t, scenario.OneWay, site.TripType())
	assert.Equal(t, pagestest.ResultsURL, site.URL())
}

func TestRoundTripSearch(t *testing.T) {
	sc := roundTrip()
	sc.Passengers = scenario.Passengers{Adults: 2, Children: 1, Infants: 1}

	site, err := run(t, pagestest.Options{}, sc)
	require.NoError(t, err)

	dep, ret := site.Dates()
	assert.Equal(t, sc.DepartureDate, dep)
	assert.Equal(t, sc.ReturnDate, ret)
	adults, infants := site.Passengers()
	assert.Equal(t, 2, adults)
	assert.Equal(t, 1, infants)
	assert.Equal(t, 1, site.Children())
}

func TestSuccessfulSearchFailures(t *testing.T) {
	t.Run("validation error instead of results", func(t *testing.T) {
		sc := roundTrip()
		sc.ReturnDate = time.Time{}

		_, err := run(t, pagestest.Options{}, sc)
		var failure *AssertionFailure
		require.True(t, errors.As(err, &failure), "got %v", err)
		assert.Equal(t, pagestest.ReturnRequiredMessage, failure.Actual)
		assert.Contains(t, err.Error(), "verify flight results")
	})

	t.Run("no results page", func(t *testing.T) {
		_, err := run(t, pagestest.Options{NoResults: true}, oneWay())
		assert.ErrorIs(t, err, wait.ErrTimeout)
		var failure *AssertionFailure
		assert.False(t, errors.As(err, &failure))
	})

	t.Run("unknown airport", func(t *testing.T) {
		sc := oneWay()
		sc.Destination = "XYZ"
		_, err := run(t, pagestest.Options{}, sc)
		assert.ErrorIs(t, err, pages.ErrOptionNotFound)
		assert.Contains(t, err.Error(), "enter destination XYZ")
	})
}

func TestMissingReturnDate(t *testing.T) {
	site, err := run(t, pagestest.Options{InitialTripType: scenario.OneWay}, missingReturn())
	require.NoError(t, err)

	assert.Equal(t, scenario.RoundTrip, site.TripType())
	_, ret := site.Dates()
	assert.True(t, ret.IsZero())
	assert.Equal(t, pagestest.BaseURL, site.URL())
	assert.Equal(t, 1, site.Searches())
}

func TestMissingReturnDateAmongOtherMessages(t *testing.T) {
	_, err := run(t, pagestest.Options{SearchAlert: "Fares include taxes and fees"}, missingReturn())
	require.NoError(t, err)

	_, err = run(t, pagestest.Options{SearchAlert: "Fares include taxes and fees", ReturnMessage: "Pick a return date"}, missingReturn())
	var failure *AssertionFailure
	require.True(t, errors.As(err, &failure), "got %v", err)
	assert.Equal(t, "Pick a return date; Fares include taxes and fees", failure.Actual)
}

func TestMissingReturnDateMessageDrift(t *testing.T) {
	_, err := run(t, pagestest.Options{ReturnMessage: "Please select a return date."}, missingReturn())

	var failure *AssertionFailure
	require.True(t, errors.As(err, &failure), "got %v", err)
	assert.Equal(t, "Please select a return date", failure.Expected)
	assert.Equal(t, "Please select a return date.", failure.Actual)
}

func TestInfantLimit(t *testing.T) {
	for _, adults := range []int{1, 2, 3} {
		t.Run(fmt.Sprintf("adults=%d", adults), func(t *testing.T) {
			site, err := run(t, pagestest.Options{}, infantLimit(adults))
			require.NoError(t, err)

			a, infants := site.Passengers()
			assert.Equal(t, adults, a)
			assert.Equal(t, adults, infants)
			assert.Equal(t, 0, site.Searches())
		})
	}
}

func TestInfantLimitNotEnforced(t *testing.T) {
	_, err := run(t, pagestest.Options{NoInfantLimit: true}, infantLimit(2))

	var failure *AssertionFailure
	require.True(t, errors.As(err, &failure), "got %v", err)
	assert.Contains(t, failure.Message, "still enabled")
}

func TestInfantLimitWrongMessage(t *testing.T) {
	sc := infantLimit(1)
	sc.ExpectedError = "Only one infant per adult"

	_, err := run(t, pagestest.Options{}, sc)
	var failure *AssertionFailure
	require.True(t, errors.As(err, &failure), "got %v", err)
	assert.Equal(t, []string{pagestest.InfantLimitMessage}, failure.Actual)
}

func TestAssertionFailureMessage(t *testing.T) {
	err := failf("Please select a return date", "Select a date", "unexpected validation error")
	assert.EqualError(t, err, `unexpected validation error: expected "Please select a return date", got "Select a date"`)

	err = failf(2, 1, "infant count")
	assert.EqualError(t, err, "infant count: expected 2, got 1")
}
