package pages

import (
	"context"

	"go.uber.org/zap"

	"github.com/skylane-qa/flightcheck/internal/browser"
	"github.com/skylane-qa/flightcheck/internal/wait"
)

// ResultsPage is the flight selection page reached after a successful search.
type ResultsPage struct {
	base
}

// NewResultsPage creates the results page object.
func NewResultsPage(driver browser.Driver, poller *wait.Poller, logger *zap.Logger) *ResultsPage {
	return &ResultsPage{base: newBase(driver, poller, logger, "results")}
}

// IsVisible reports whether any results indicator is showing right now.
func (p *ResultsPage) IsVisible(_ context.Context) (bool, error) {
	return p.anyVisible(ResultsIndicators)
}

// WaitVisible waits for the results page. It fails with wait.ErrTimeout.
func (p *ResultsPage) WaitVisible(ctx context.Context) error {
	return p.poller.Until(ctx, "flight results", func(ctx context.Context) (bool, error) {
		return p.IsVisible(ctx)
	})
}
