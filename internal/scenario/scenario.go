// Package scenario loads the data file that drives the suite: named,
// immutable bundles of booking input plus the expected outcome.
package scenario

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// TripType is the booking form's journey type.
type TripType string

const (
	OneWay    TripType = "one_way"
	RoundTrip TripType = "round_trip"
)

// Label is the text the booking form shows for the trip type.
func (t TripType) Label() string {
	switch t {
	case OneWay:
		return "One way"
	case RoundTrip:
		return "Return"
	default:
		return string(t)
	}
}

// Kind selects the procedure a scenario is run with.
type Kind string

const (
	KindOneWay            Kind = "one_way"
	KindRoundTrip         Kind = "round_trip"
	KindMissingReturnDate Kind = "missing_return_date"
	KindInfantLimit       Kind = "infant_limit"
)

// Kinds lists every supported kind in display order.
var Kinds = []Kind{KindOneWay, KindRoundTrip, KindMissingReturnDate, KindInfantLimit}

// Passengers holds the requested passenger counts.
type Passengers struct {
	Adults   int
	Children int
	Infants  int
}

// Scenario is one named set of inputs and the expected outcome. Values are
// handed out by copy and never modified after loading.
type Scenario struct {
	Name          string
	Kind          Kind
	Tags          []string
	Origin        string
	Destination   string
	TripType      TripType
	DepartureDate time.Time
	// ReturnDate is zero when omitted.
	ReturnDate    time.Time
	Passengers    Passengers
	ExpectedError string
}

// HasReturnDate reports whether a return date was given.
func (s Scenario) HasReturnDate() bool {
	return !s.ReturnDate.IsZero()
}

// ExpectsError reports whether the scenario expects a validation message.
func (s Scenario) ExpectsError() bool {
	return s.ExpectedError != ""
}

func (s Scenario) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s %s→%s dep %s", s.Name, s.TripType, s.Origin, s.Destination, s.DepartureDate.Format(DateLayout))
	if s.HasReturnDate() {
		fmt.Fprintf(&b, " ret %s", s.ReturnDate.Format(DateLayout))
	}
	fmt.Fprintf(&b, " pax %d/%d/%d", s.Passengers.Adults, s.Passengers.Children, s.Passengers.Infants)
	return b.String()
}

func (s Scenario) clone() Scenario {
	s.Tags = append([]string(nil), s.Tags...)
	return s
}

// Set is the loaded, read-only collection of scenarios.
type Set struct {
	path      string
	scenarios map[string]Scenario
	names     []string
}

func newSet(path string, list []Scenario) *Set {
	set := &Set{path: path, scenarios: make(map[string]Scenario, len(list))}
	for _, s := range list {
		set.scenarios[s.Name] = s
		set.names = append(set.names, s.Name)
	}
	sort.Strings(set.names)
	return set
}

// NewSet builds a set from already validated scenarios.
func NewSet(list ...Scenario) *Set {
	return newSet("", list)
}

// Path returns the file the set was loaded from.
func (s *Set) Path() string { return s.path }

// Len returns the number of scenarios.
func (s *Set) Len() int { return len(s.names) }

// Get returns a copy of the named scenario.
func (s *Set) Get(name string) (Scenario, bool) {
	sc, ok := s.scenarios[name]
	if !ok {
		return Scenario{}, false
	}
	return sc.clone(), true
}

// All returns copies of every scenario ordered by name.
func (s *Set) All() []Scenario {
	out := make([]Scenario, 0, len(s.names))
	for _, name := range s.names {
		out = append(out, s.scenarios[name].clone())
	}
	return out
}

// ByKind returns the scenarios of one kind ordered by name.
func (s *Set) ByKind(kind Kind) []Scenario {
	var out []Scenario
	for _, name := range s.names {
		if sc := s.scenarios[name]; sc.Kind == kind {
			out = append(out, sc.clone())
		}
	}
	return out
}
