package pages_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/skylane-qa/flightcheck/internal/browser/browsertest"
	"github.com/skylane-qa/flightcheck/internal/pages"
	"github.com/skylane-qa/flightcheck/internal/pages/pagestest"
)

func openPassengers(t *testing.T, opts pagestest.Options) (*pages.PassengerSelector, *pagestest.Site) {
	t.Helper()
	opts.Today = today
	site := pagestest.NewSite(opts)
	selector := pages.NewPassengerSelector(site, testPoller(), zaptest.NewLogger(t))
	require.NoError(t, selector.Open(context.Background()))
	return selector, site
}

func TestPassengerSelectorSetAdults(t *testing.T) {
	ctx := context.Background()
	selector, site := openPassengers(t, pagestest.Options{})

	n, err := selector.AdultCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, selector.SetAdults(ctx, 3))
	adults, _ := site.Passengers()
	assert.Equal(t, 3, adults)
	assert.Equal(t, 2, site.ClickCount(pages.AdultPlus))

	require.NoError(t, selector.SetAdults(ctx, 2))
	adults, _ = site.Passengers()
	assert.Equal(t, 2, adults)
	assert.Equal(t, 1, site.ClickCount(pages.AdultMinus))

	assert.ErrorContains(t, selector.SetAdults(ctx, 0), "adult count must be between 1 and 9")
	assert.ErrorContains(t, selector.SetAdults(ctx, 10), "adult count must be between 1 and 9")
}

func TestPassengerSelectorSetChildren(t *testing.T) {
	ctx := context.Background()
	selector, site := openPassengers(t, pagestest.Options{})

	require.NoError(t, selector.SetChildren(ctx, 2))
	n, err := selector.ChildCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, site.Children())

	require.NoError(t, selector.SetChildren(ctx, 0))
	assert.Equal(t, 0, site.Children())
	assert.Equal(t, 2, site.ClickCount(pages.ChildMinus))
}

func TestPassengerSelectorFallsBackToAriaLabels(t *testing.T) {
	ctx := context.Background()
	selector, site := openPassengers(t, pagestest.Options{UseAltHandlers: true})

	require.NoError(t, selector.SetAdults(ctx, 2))
	require.NoError(t, selector.IncrementInfants(ctx))

	adults, infants := site.Passengers()
	assert.Equal(t, 2, adults)
	assert.Equal(t, 1, infants)
	assert.Equal(t, 0, site.ClickCount(pages.AdultPlus))
	assert.Equal(t, 1, site.ClickCount(pages.AdultPlusAlt))
	assert.Equal(t, 1, site.ClickCount(pages.InfantPlusAlt))
}

func TestPassengerSelectorInfantLimit(t *testing.T) {
	for _, adults := range []int{1, 2, 3} {
		t.Run(fmt.Sprintf("adults=%d", adults), func(t *testing.T) {
			ctx := context.Background()
			selector, _ := openPassengers(t, pagestest.Options{})
			require.NoError(t, selector.SetAdults(ctx, adults))

			for i := 0; i < adults; i++ {
				enabled, err := selector.InfantControlIsEnabled(ctx)
				require.NoError(t, err)
				require.True(t, enabled, "infant + should be enabled with %d infants", i)

				msgs, err := selector.ValidationMessages(ctx)
				require.NoError(t, err)
				assert.Empty(t, msgs)

				require.NoError(t, selector.IncrementInfants(ctx))
			}

			enabled, err := selector.InfantControlIsEnabled(ctx)
			require.NoError(t, err)
			assert.False(t, enabled)

			count, err := selector.InfantCount(ctx)
			require.NoError(t, err)
			assert.Equal(t, adults, count)

			msgs, err := selector.WaitValidationMessages(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{pagestest.InfantLimitMessage}, msgs)

			err = selector.IncrementInfants(ctx)
			assert.ErrorIs(t, err, pages.ErrElementNotFound)
		})
	}
}

func TestPassengerSelectorIgnoresStandingAlerts(t *testing.T) {
	ctx := context.Background()
	selector, site := openPassengers(t, pagestest.Options{Banner: "Cookies help us improve this site"})

	msgs, err := selector.ValidationMessages(ctx)
	require.NoError(t, err)
	assert.Empty(t, msgs)

	require.NoError(t, selector.IncrementInfants(ctx))
	msgs, err = selector.WaitValidationMessages(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{pagestest.InfantLimitMessage}, msgs)

	site.Set(pages.AlertMessage, browsertest.Visible("Cookies help us improve this site"), browsertest.Visible("Too many infants"))
	msgs, err = selector.ValidationMessages(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{pagestest.InfantLimitMessage, "Too many infants"}, msgs)
}

func TestPassengerSelectorDisabledStates(t *testing.T) {
	tests := []struct {
		name string
		el   *browsertest.Element
	}{
		{"disabled attribute", &browsertest.Element{Visible: true, Disabled: true}},
		{"aria-disabled", &browsertest.Element{Visible: true, Attrs: map[string]string{"aria-disabled": "true"}}},
		{"disabled class", &browsertest.Element{Visible: true, Attrs: map[string]string{"class": "rc-input-number-handler-up-disabled"}}},
		{"BEM disabled modifier", &browsertest.Element{Visible: true, Attrs: map[string]string{"class": "counter__plus counter__plus--disabled"}}},
		{"bare disabled class", &browsertest.Element{Visible: true, Attrs: map[string]string{"class": "handler disabled"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := browsertest.New(pagestest.BaseURL).Set(pages.InfantPlus, tt.el)
			selector := pages.NewPassengerSelector(d, testPoller(), zaptest.NewLogger(t))

			enabled, err := selector.InfantControlIsEnabled(context.Background())
			require.NoError(t, err)
			assert.False(t, enabled)
		})
	}

	for _, class := range []string{"not-disabled", "disabled-hint", "rc-input-number-handler-up"} {
		t.Run("enabled with class "+class, func(t *testing.T) {
			d := browsertest.New(pagestest.BaseURL).
				Set(pages.InfantPlus, &browsertest.Element{Visible: true, Attrs: map[string]string{"class": class}})
			selector := pages.NewPassengerSelector(d, testPoller(), zaptest.NewLogger(t))

			enabled, err := selector.InfantControlIsEnabled(context.Background())
			require.NoError(t, err)
			assert.True(t, enabled)
		})
	}

	t.Run("missing control", func(t *testing.T) {
		d := browsertest.New(pagestest.BaseURL)
		selector := pages.NewPassengerSelector(d, testPoller(), zaptest.NewLogger(t))

		_, err := selector.InfantControlIsEnabled(context.Background())
		assert.ErrorIs(t, err, pages.ErrElementNotFound)
	})
}

func TestPassengerSelectorCounts(t *testing.T) {
	ctx := context.Background()
	d := browsertest.New(pagestest.BaseURL).
		Set(pages.AdultsInput, &browsertest.Element{Visible: true, Value: "2"}).
		Set(pages.InfantsInput, &browsertest.Element{Visible: true, Value: " "})
	selector := pages.NewPassengerSelector(d, testPoller(), zaptest.NewLogger(t))

	adults, err := selector.AdultCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, adults, "input value is used without aria-valuenow")

	infants, err := selector.InfantCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, infants)

	d.Set(pages.InfantsInput, &browsertest.Element{Visible: true, Value: "many"})
	_, err = selector.InfantCount(ctx)
	assert.ErrorContains(t, err, `shows "many"`)
}

func TestPassengerSelectorConfirm(t *testing.T) {
	ctx := context.Background()
	selector, site := openPassengers(t, pagestest.Options{})
	require.NoError(t, selector.Confirm(ctx))
	assert.Equal(t, 1, site.ClickCount(pages.DialogConfirm))

	_, err := selector.AdultCount(ctx)
	assert.ErrorIs(t, err, pages.ErrElementNotFound, "counters are gone once the dialog closes")
}
