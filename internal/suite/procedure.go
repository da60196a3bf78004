// Package suite holds the business scenario procedures. Each procedure drives
// the page objects for one scenario kind and ends in assertions.
package suite

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/skylane-qa/flightcheck/internal/browser"
	"github.com/skylane-qa/flightcheck/internal/pages"
	"github.com/skylane-qa/flightcheck/internal/scenario"
	"github.com/skylane-qa/flightcheck/internal/wait"
)

// Env is what one test attempt hands to a procedure. It belongs to that
// attempt alone.
type Env struct {
	Driver browser.Driver
	Poller *wait.Poller
	Logger *zap.Logger
}

// Procedure runs one scenario kind.
type Procedure struct {
	Kind        scenario.Kind
	Title       string
	DefaultTags []string
	Run         func(ctx context.Context, env Env, sc scenario.Scenario) error
}

var procedures = map[scenario.Kind]Procedure{}

func register(p Procedure) {
	if _, dup := procedures[p.Kind]; dup {
		panic(fmt.Sprintf("suite: procedure %s registered twice", p.Kind))
	}
	procedures[p.Kind] = p
}

// Lookup returns the procedure for a scenario kind.
func Lookup(kind scenario.Kind) (Procedure, bool) {
	p, ok := procedures[kind]
	return p, ok
}

// Procedures returns every registered procedure ordered by kind.
func Procedures() []Procedure {
	out := make([]Procedure, 0, len(procedures))
	for _, p := range procedures {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out
}

// Tags returns the scenario's own tags, or the procedure defaults.
func (p Procedure) Tags(sc scenario.Scenario) []string {
	if len(sc.Tags) > 0 {
		return sc.Tags
	}
	return append([]string(nil), p.DefaultTags...)
}

// flow bundles the page objects of one attempt.
type flow struct {
	search     *pages.SearchPage
	passengers *pages.PassengerSelector
	results    *pages.ResultsPage
	steps      *steps
}

func newFlow(env Env, sc scenario.Scenario) *flow {
	logger := env.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("scenario", sc.Name), zap.String("kind", string(sc.Kind)))
	return &flow{
		search:     pages.NewSearchPage(env.Driver, env.Poller, logger),
		passengers: pages.NewPassengerSelector(env.Driver, env.Poller, logger),
		results:    pages.NewResultsPage(env.Driver, env.Poller, logger),
		steps:      &steps{logger: logger},
	}
}

// steps numbers and logs procedure steps and tags their errors.
type steps struct {
	logger *zap.Logger
	n      int
}

func (s *steps) do(name string, fn func() error) error {
	s.n++
	s.logger.Info(fmt.Sprintf("Step %d: %s", s.n, name))
	if err := fn(); err != nil {
		s.logger.Error("step failed", zap.Int("step", s.n), zap.String("name", name), zap.Error(err))
		return fmt.Errorf("step %d (%s): %w", s.n, name, err)
	}
	return nil
}
