package runner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skylane-qa/flightcheck/internal/scenario"
)

var today = time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC)

func testSet() *scenario.Set {
	dep := today.AddDate(0, 0, 30)
	return scenario.NewSet(
		scenario.Scenario{Name: "syd_mel", Kind: scenario.KindOneWay, Origin: "SYD", Destination: "MEL",
			TripType: scenario.OneWay, DepartureDate: dep, Passengers: scenario.Passengers{Adults: 1}},
		scenario.Scenario{Name: "syd_bne", Kind: scenario.KindRoundTrip, Origin: "SYD", Destination: "BNE",
			TripType: scenario.RoundTrip, DepartureDate: dep, ReturnDate: dep.AddDate(0, 0, 7),
			Passengers: scenario.Passengers{Adults: 1}, Tags: []string{"smoke", "regression"}},
		scenario.Scenario{Name: "no_return", Kind: scenario.KindMissingReturnDate, Origin: "SYD", Destination: "MEL",
			TripType: scenario.RoundTrip, DepartureDate: dep, Passengers: scenario.Passengers{Adults: 1},
			ExpectedError: "Please select a return date"},
		scenario.Scenario{Name: "two_adults", Kind: scenario.KindInfantLimit, Origin: "HKG", Destination: "NRT",
			TripType: scenario.OneWay, DepartureDate: dep, Passengers: scenario.Passengers{Adults: 2},
			ExpectedError: "Number of infants cannot exceed number of adults"},
		scenario.Scenario{Name: "one_adult", Kind: scenario.KindInfantLimit, Origin: "HKG", Destination: "NRT",
			TripType: scenario.OneWay, DepartureDate: dep, Passengers: scenario.Passengers{Adults: 1},
			ExpectedError: "Number of infants cannot exceed number of adults"},
	)
}

func names(cases []Case) []string {
	out := make([]string, len(cases))
	for i, c := range cases {
		out[i] = c.Name
	}
	return out
}

func TestExpand(t *testing.T) {
	cases, err := Expand(testSet())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"one_way/syd_mel",
		"round_trip/syd_bne",
		"missing_return_date/no_return",
		"infant_limit/one_adult",
		"infant_limit/two_adults",
	}, names(cases))

	assert.Equal(t, "one_way_test", cases[0].File)
	assert.Equal(t, []string{"smoke"}, cases[0].Tags, "procedure default tags")
	assert.Equal(t, []string{"smoke", "regression"}, cases[1].Tags, "scenario tags win")
	assert.Equal(t, []string{"regression"}, cases[2].Tags)
	assert.Equal(t, scenario.KindInfantLimit, cases[3].Procedure.Kind)
	assert.Equal(t, "one_adult", cases[3].Scenario.Name)
}

func TestFilter(t *testing.T) {
	cases, err := Expand(testSet())
	require.NoError(t, err)

	tests := []struct {
		filter string
		want   []string
	}{
		{"", names(cases)},
		{"all", names(cases)},
		{"smoke", []string{"one_way/syd_mel", "round_trip/syd_bne", "infant_limit/one_adult", "infant_limit/two_adults"}},
		{"regression", []string{"round_trip/syd_bne", "missing_return_date/no_return"}},
		{"infant_limit_test", []string{"infant_limit/one_adult", "infant_limit/two_adults"}},
		{"infant_limit_test.go", []string{"infant_limit/one_adult", "infant_limit/two_adults"}},
		{"round_trip/syd_bne", []string{"round_trip/syd_bne"}},
		{"two_adults", []string{"infant_limit/two_adults"}},
		{" smoke ", []string{"one_way/syd_mel", "round_trip/syd_bne", "infant_limit/one_adult", "infant_limit/two_adults"}},
	}
	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			got, err := Filter(cases, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(got))
		})
	}

	_, err = Filter(cases, "multi_city_test")
	assert.ErrorIs(t, err, ErrNoCases)
	assert.ErrorContains(t, err, `"multi_city_test"`)

	_, err = Filter(nil, "")
	assert.ErrorIs(t, err, ErrNoCases)
}
