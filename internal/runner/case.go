package runner

import (
	"errors"
	"fmt"
	"strings"

	"github.com/skylane-qa/flightcheck/internal/scenario"
	"github.com/skylane-qa/flightcheck/internal/suite"
)

// ErrNoCases is returned when a filter selects nothing.
var ErrNoCases = errors.New("no test cases match")

// Case is one scenario bound to the procedure that runs it.
type Case struct {
	// Name is "<kind>/<scenario>".
	Name string
	// File groups cases by kind, "<kind>_test".
	File      string
	Tags      []string
	Scenario  scenario.Scenario
	Procedure suite.Procedure
}

// HasTag reports whether the case carries tag.
func (c Case) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Expand turns every scenario in the set into a case, ordered by kind and
// then by scenario name.
func Expand(set *scenario.Set) ([]Case, error) {
	var out []Case
	for _, kind := range scenario.Kinds {
		proc, ok := suite.Lookup(kind)
		if !ok {
			if len(set.ByKind(kind)) > 0 {
				return nil, fmt.Errorf("no procedure registered for kind %s", kind)
			}
			continue
		}
		for _, sc := range set.ByKind(kind) {
			out = append(out, Case{
				Name:      string(kind) + "/" + sc.Name,
				File:      FileName(kind),
				Tags:      proc.Tags(sc),
				Scenario:  sc,
				Procedure: proc,
			})
		}
	}
	return out, nil
}

// FileName returns the test file name for a kind.
func FileName(kind scenario.Kind) string {
	return string(kind) + "_test"
}

// Filter selects cases. An empty filter or "all" selects everything; a tag
// selects tagged cases; "<kind>_test" (optionally with .go) selects one file;
// anything else must be a case name or a bare scenario name.
func Filter(cases []Case, filter string) ([]Case, error) {
	filter = strings.TrimSpace(filter)
	if filter == "" || filter == "all" {
		if len(cases) == 0 {
			return nil, ErrNoCases
		}
		return cases, nil
	}

	file := strings.TrimSuffix(filter, ".go")
	var out []Case
	for _, c := range cases {
		switch {
		case c.HasTag(filter), c.File == file, c.Name == filter, c.Scenario.Name == filter:
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w %q", ErrNoCases, filter)
	}
	return out, nil
}
