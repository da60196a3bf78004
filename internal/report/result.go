// Package report turns a finished run into artifacts: an HTML report with
// embedded screenshots, an XLSX sheet and a prometheus textfile.
package report

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Status is the final state of one case.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusRerun   Status = "rerun"
	StatusSkipped Status = "skipped"
)

// Statuses lists every status in report order.
var Statuses = []Status{StatusPassed, StatusRerun, StatusFailed, StatusSkipped}

// Result is the outcome of one case after all of its attempts.
type Result struct {
	Name      string
	File      string
	Kind      string
	Scenario  string
	Tags      []string
	Status    Status
	Attempts  int
	StartedAt time.Time
	Duration  time.Duration
	// Failure is the error of the last failed attempt.
	Failure   string
	ErrorKind string
	// Errors holds the error of every failed attempt in order.
	Errors      []string
	Screenshots []string
	URL         string
}

// Passed reports whether the case ended green, on the first try or a rerun.
func (r Result) Passed() bool {
	return r.Status == StatusPassed || r.Status == StatusRerun
}

// Run is one execution of a case selection.
type Run struct {
	ID          string
	Title       string
	Environment string
	Filter      string
	StartedAt   time.Time
	FinishedAt  time.Time
	LogFile     string
	Results     []Result
}

// Duration is the wall time of the run.
func (r *Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Summary holds the aggregate counts of a run.
type Summary struct {
	Total   int
	Passed  int
	Failed  int
	Rerun   int
	Skipped int
}

// OK reports whether nothing failed or was skipped.
func (s Summary) OK() bool {
	return s.Failed == 0 && s.Skipped == 0
}

// PassRate is the share of cases that ended green, in percent.
func (s Summary) PassRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Passed+s.Rerun) * 100 / float64(s.Total)
}

// Summary counts the results by status.
func (r *Run) Summary() Summary {
	s := Summary{Total: len(r.Results)}
	for _, res := range r.Results {
		switch res.Status {
		case StatusPassed:
			s.Passed++
		case StatusFailed:
			s.Failed++
		case StatusRerun:
			s.Rerun++
		case StatusSkipped:
			s.Skipped++
		}
	}
	return s
}

// Failures returns the failed results ordered by name.
func (r *Run) Failures() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Status == StatusFailed {
			out = append(out, res)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// DisplayName turns "infant_limit/two_adults" into "Infant Limit / Two Adults".
func DisplayName(name string) string {
	titler := cases.Title(language.English)
	parts := strings.Split(name, "/")
	for i, p := range parts {
		parts[i] = titler.String(strings.NewReplacer("_", " ", "-", " ").Replace(p))
	}
	return strings.Join(parts, " / ")
}
