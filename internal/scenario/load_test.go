package scenario

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A Monday.
var today = time.Date(2026, time.October, 19, 9, 30, 0, 0, time.UTC)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseValidFile(t *testing.T) {
	data := []byte(`
scenarios:
  syd_mel:
    kind: one_way
    tags: [smoke]
    origin: SYD
    destination: MEL
    trip_type: one_way
    departure_date: "+30d"
  syd_bne_return:
    kind: round_trip
    origin: SYD
    destination: BNE
    trip_type: round_trip
    departure_date: 2026-12-01
    return_date: 8 Dec 2026
    adults: 2
    infants: 1
  no_return:
    kind: missing_return_date
    origin: SYD
    destination: MEL
    trip_type: round_trip
    departure_date: "+30d"
    expected_error: "  Please select a return date "
`)

	set, err := Parse("inline.yaml", data, today)
	require.NoError(t, err)
	require.Equal(t, 3, set.Len())
	assert.Equal(t, "inline.yaml", set.Path())

	oneWay, ok := set.Get("syd_mel")
	require.True(t, ok)
	assert.Equal(t, KindOneWay, oneWay.Kind)
	assert.Equal(t, OneWay, oneWay.TripType)
	assert.Equal(t, day(2026, time.November, 18), oneWay.DepartureDate)
	assert.False(t, oneWay.HasReturnDate())
	assert.Equal(t, Passengers{Adults: 1}, oneWay.Passengers, "adults default to 1")
	assert.Equal(t, []string{"smoke"}, oneWay.Tags)

	ret, ok := set.Get("syd_bne_return")
	require.True(t, ok)
	assert.Equal(t, day(2026, time.December, 8), ret.ReturnDate)
	assert.Equal(t, Passengers{Adults: 2, Infants: 1}, ret.Passengers)

	missing, ok := set.Get("no_return")
	require.True(t, ok)
	assert.Equal(t, "Please select a return date", missing.ExpectedError)
	assert.True(t, missing.ExpectsError())

	names := []string{}
	for _, sc := range set.All() {
		names = append(names, sc.Name)
	}
	assert.Equal(t, []string{"no_return", "syd_bne_return", "syd_mel"}, names)
	assert.Len(t, set.ByKind(KindRoundTrip), 1)
	assert.Empty(t, set.ByKind(KindInfantLimit))
}

func TestSetReturnsCopies(t *testing.T) {
	set := NewSet(Scenario{Name: "a", Kind: KindOneWay, Tags: []string{"smoke"}})

	sc, _ := set.Get("a")
	sc.Tags[0] = "changed"
	sc.Origin = "XXX"

	again, _ := set.Get("a")
	assert.Equal(t, []string{"smoke"}, again.Tags)
	assert.Empty(t, again.Origin)

	_, ok := set.Get("missing")
	assert.False(t, ok)
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		problem string
	}{
		{
			name:    "empty document",
			data:    "",
			problem: "file is empty",
		},
		{
			name:    "malformed yaml",
			data:    "scenarios: [",
			problem: "not valid YAML/JSON",
		},
		{
			name: "missing required field",
			data: `
scenarios:
  a:
    kind: one_way
    origin: SYD
    trip_type: one_way
    departure_date: "+1d"`,
			problem: "destination is required",
		},
		{
			name: "unknown kind",
			data: `
scenarios:
  a:
    kind: multi_city
    origin: SYD
    destination: MEL
    trip_type: one_way
    departure_date: "+1d"`,
			problem: "a.kind",
		},
		{
			name: "zero adults",
			data: `
scenarios:
  a:
    kind: one_way
    origin: SYD
    destination: MEL
    trip_type: one_way
    departure_date: "+1d"
    adults: 0`,
			problem: "a.adults",
		},
		{
			name: "return before departure",
			data: `
scenarios:
  a:
    kind: round_trip
    origin: SYD
    destination: MEL
    trip_type: round_trip
    departure_date: 2026-12-10
    return_date: 2026-12-01`,
			problem: "a: return_date is before departure_date",
		},
		{
			name: "past departure",
			data: `
scenarios:
  a:
    kind: one_way
    origin: SYD
    destination: MEL
    trip_type: one_way
    departure_date: 2025-09-15`,
			problem: "a: departure_date 2025-09-15 is in the past",
		},
		{
			name: "missing return date needs round trip",
			data: `
scenarios:
  a:
    kind: missing_return_date
    origin: SYD
    destination: MEL
    trip_type: one_way
    departure_date: "+1d"
    expected_error: Please select a return date`,
			problem: "a: kind missing_return_date requires trip_type round_trip",
		},
		{
			name: "infant limit needs expected error",
			data: `
scenarios:
  a:
    kind: infant_limit
    origin: SYD
    destination: MEL
    trip_type: one_way
    departure_date: "+1d"`,
			problem: "a: kind infant_limit requires expected_error",
		},
		{
			name: "more infants than adults",
			data: `
scenarios:
  a:
    kind: one_way
    origin: SYD
    destination: MEL
    trip_type: one_way
    departure_date: "+1d"
    infants: 2`,
			problem: "a: infants cannot exceed adults",
		},
		{
			name: "same origin and destination",
			data: `
scenarios:
  a:
    kind: one_way
    origin: SYD
    destination: syd
    trip_type: one_way
    departure_date: "+1d"`,
			problem: "a: origin and destination must differ",
		},
		{
			name: "bad date",
			data: `
scenarios:
  a:
    kind: one_way
    origin: SYD
    destination: MEL
    trip_type: one_way
    departure_date: next tuesday`,
			problem: `a: departure_date: invalid date "next tuesday"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("bad.yaml", []byte(tt.data), today)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidData))

			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, "bad.yaml", cfgErr.Path)
			assert.Contains(t, err.Error(), tt.problem)
		})
	}
}

func TestParseReportsEveryProblem(t *testing.T) {
	data := []byte(`
scenarios:
  a:
    kind: one_way
    origin: SYD
    destination: MEL
    trip_type: round_trip
    departure_date: "+1d"
  b:
    kind: infant_limit
    origin: SYD
    destination: MEL
    trip_type: one_way
    departure_date: "+1d"
`)
	_, err := Parse("bad.yaml", data, today)

	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, []string{
		"a: kind one_way requires trip_type one_way",
		"b: kind infant_limit requires expected_error",
	}, cfgErr.Problems)
}

func TestLoad(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), today)
		require.Error(t, err)
		assert.True(t, errors.Is(err, os.ErrNotExist))
		assert.False(t, errors.Is(err, ErrInvalidData))
	})

	t.Run("json is accepted", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "scenarios.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"scenarios": {"a": {
			"kind": "one_way", "origin": "HKG", "destination": "NRT",
			"trip_type": "one_way", "departure_date": "2026-11-02"}}}`), 0o644))

		set, err := Load(path, today)
		require.NoError(t, err)
		sc, ok := set.Get("a")
		require.True(t, ok)
		assert.Equal(t, "HKG", sc.Origin)
	})

	t.Run("bundled data file", func(t *testing.T) {
		set, err := Load(filepath.Join("..", "..", "data", "scenarios.yaml"), today)
		require.NoError(t, err)
		assert.Len(t, set.ByKind(KindInfantLimit), 3)
		for _, sc := range set.ByKind(KindInfantLimit) {
			assert.Contains(t, []int{1, 2, 3}, sc.Passengers.Adults)
		}
		missing := set.ByKind(KindMissingReturnDate)
		require.Len(t, missing, 1)
		assert.Equal(t, "Please select a return date", missing[0].ExpectedError)
	})
}
