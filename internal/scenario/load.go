package scenario

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigError reports every problem found in a data file.
type ConfigError struct {
	Path     string
	Problems []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid scenario data in %s:\n  - %s", e.Path, strings.Join(e.Problems, "\n  - "))
}

// ErrInvalidData matches every ConfigError with errors.Is.
var ErrInvalidData = errors.New("invalid scenario data")

func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidData
}

type rawFile struct {
	Calendar  CalendarConfig         `yaml:"calendar"`
	Scenarios map[string]rawScenario `yaml:"scenarios"`
}

type rawScenario struct {
	Kind          string   `yaml:"kind"`
	Tags          []string `yaml:"tags"`
	Origin        string   `yaml:"origin"`
	Destination   string   `yaml:"destination"`
	TripType      string   `yaml:"trip_type"`
	DepartureDate string   `yaml:"departure_date"`
	ReturnDate    *string  `yaml:"return_date"`
	Adults        *int     `yaml:"adults"`
	Children      int      `yaml:"children"`
	Infants       int      `yaml:"infants"`
	ExpectedError string   `yaml:"expected_error"`
}

// Load reads, validates and parses the data file at path. Relative dates are
// resolved against today.
func Load(path string, today time.Time) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario data: %w", err)
	}
	return Parse(path, data, today)
}

// Parse validates and parses data file content. path is only used in errors.
func Parse(path string, data []byte, today time.Time) (*Set, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ConfigError{Path: path, Problems: []string{fmt.Sprintf("not valid YAML/JSON: %v", err)}}
	}
	if doc == nil {
		return nil, &ConfigError{Path: path, Problems: []string{"file is empty"}}
	}

	problems, err := validateSchema(doc)
	if err != nil {
		return nil, err
	}
	if len(problems) > 0 {
		return nil, &ConfigError{Path: path, Problems: problems}
	}

	var raw rawFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigError{Path: path, Problems: []string{err.Error()}}
	}

	resolver, err := NewDateResolver(today, raw.Calendar)
	if err != nil {
		return nil, &ConfigError{Path: path, Problems: []string{err.Error()}}
	}

	names := make([]string, 0, len(raw.Scenarios))
	for name := range raw.Scenarios {
		names = append(names, name)
	}
	sort.Strings(names)

	var list []Scenario
	for _, name := range names {
		sc, errs := build(name, raw.Scenarios[name], resolver)
		for _, e := range errs {
			problems = append(problems, fmt.Sprintf("%s: %s", name, e))
		}
		list = append(list, sc)
	}
	if len(problems) > 0 {
		return nil, &ConfigError{Path: path, Problems: problems}
	}
	return newSet(path, list), nil
}

func build(name string, raw rawScenario, resolver *DateResolver) (Scenario, []string) {
	var problems []string
	sc := Scenario{
		Name:          name,
		Kind:          Kind(raw.Kind),
		Tags:          raw.Tags,
		Origin:        strings.TrimSpace(raw.Origin),
		Destination:   strings.TrimSpace(raw.Destination),
		TripType:      TripType(raw.TripType),
		ExpectedError: strings.TrimSpace(raw.ExpectedError),
		Passengers: Passengers{
			Adults:   1,
			Children: raw.Children,
			Infants:  raw.Infants,
		},
	}
	if raw.Adults != nil {
		sc.Passengers.Adults = *raw.Adults
	}

	if strings.EqualFold(sc.Origin, sc.Destination) {
		problems = append(problems, "origin and destination must differ")
	}

	dep, err := resolver.Resolve(raw.DepartureDate)
	if err != nil {
		problems = append(problems, "departure_date: "+err.Error())
	} else if dep.Before(resolver.Today) {
		problems = append(problems, fmt.Sprintf("departure_date %s is in the past", dep.Format(DateLayout)))
	}
	sc.DepartureDate = dep

	if raw.ReturnDate != nil && strings.TrimSpace(*raw.ReturnDate) != "" {
		ret, err := resolver.Resolve(*raw.ReturnDate)
		switch {
		case err != nil:
			problems = append(problems, "return_date: "+err.Error())
		case !dep.IsZero() && ret.Before(dep):
			problems = append(problems, "return_date is before departure_date")
		}
		sc.ReturnDate = ret
	}

	if sc.Passengers.Adults+sc.Passengers.Children > 9 {
		problems = append(problems, "at most 9 adults and children can be booked together")
	}

	problems = append(problems, checkKind(sc)...)
	return sc, problems
}

// checkKind enforces what each procedure needs from its scenario.
func checkKind(sc Scenario) []string {
	var problems []string
	if sc.TripType == OneWay && sc.HasReturnDate() {
		problems = append(problems, "one_way trips cannot have a return_date")
	}

	switch sc.Kind {
	case KindOneWay, KindRoundTrip:
		want := OneWay
		if sc.Kind == KindRoundTrip {
			want = RoundTrip
		}
		if sc.TripType != want {
			problems = append(problems, fmt.Sprintf("kind %s requires trip_type %s", sc.Kind, want))
		}
		if sc.Kind == KindRoundTrip && !sc.HasReturnDate() {
			problems = append(problems, "kind round_trip requires return_date")
		}
		if sc.Passengers.Infants > sc.Passengers.Adults {
			problems = append(problems, "infants cannot exceed adults")
		}
		if sc.ExpectsError() {
			problems = append(problems, fmt.Sprintf("kind %s expects results, remove expected_error", sc.Kind))
		}
	case KindMissingReturnDate:
		if sc.TripType != RoundTrip {
			problems = append(problems, "kind missing_return_date requires trip_type round_trip")
		}
		if sc.HasReturnDate() {
			problems = append(problems, "kind missing_return_date must omit return_date")
		}
		if !sc.ExpectsError() {
			problems = append(problems, "kind missing_return_date requires expected_error")
		}
	case KindInfantLimit:
		if !sc.ExpectsError() {
			problems = append(problems, "kind infant_limit requires expected_error")
		}
		if sc.Passengers.Infants != 0 {
			problems = append(problems, "kind infant_limit adds infants itself, remove infants")
		}
	}
	return problems
}
