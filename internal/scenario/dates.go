package scenario

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rickar/cal/v2"
)

// DateLayout is the canonical date format, also used to address calendar days.
const DateLayout = "2006-01-02"

var dateLayouts = []string{DateLayout, "2 Jan 2006", "2 January 2006"}

var relativeDate = regexp.MustCompile(`^\+(\d+)d$`)

// CalendarConfig describes days that relative dates must avoid.
type CalendarConfig struct {
	SkipWeekends bool     `yaml:"skip_weekends" json:"skip_weekends"`
	Blackout     []string `yaml:"blackout" json:"blackout"`
}

// DateResolver turns data-file dates into calendar days. Relative dates
// ("+30d") count from Today and roll forward past non-travel days.
type DateResolver struct {
	Today    time.Time
	calendar *cal.BusinessCalendar
}

// NewDateResolver builds a resolver around a business calendar.
func NewDateResolver(today time.Time, cfg CalendarConfig) (*DateResolver, error) {
	c := cal.NewBusinessCalendar()
	if !cfg.SkipWeekends {
		c.SetWorkday(time.Saturday, true)
		c.SetWorkday(time.Sunday, true)
	}

	for _, day := range cfg.Blackout {
		month, dom, err := parseMonthDay(day)
		if err != nil {
			return nil, err
		}
		// Recurring blackout day, e.g. peak holiday travel.
		c.AddHoliday(&cal.Holiday{
			Name:  "blackout " + day,
			Type:  cal.ObservancePublic,
			Month: month,
			Day:   dom,
			Func:  cal.CalcDayOfMonth,
		})
	}

	y, m, d := today.Date()
	return &DateResolver{
		Today:    time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		calendar: c,
	}, nil
}

// Resolve parses an absolute or relative date.
func (r *DateResolver) Resolve(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if m := relativeDate.FindStringSubmatch(value); m != nil {
		days, err := strconv.Atoi(m[1])
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid relative date %q: %w", value, err)
		}
		return r.nextTravelDay(r.Today.AddDate(0, 0, days)), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD, \"15 Sep 2026\" or +Nd", value)
}

// IsTravelDay reports whether day is neither a blackout day nor, when
// configured, a weekend.
func (r *DateResolver) IsTravelDay(day time.Time) bool {
	return r.calendar.IsWorkday(day)
}

func (r *DateResolver) nextTravelDay(day time.Time) time.Time {
	for i := 0; i < 366 && !r.IsTravelDay(day); i++ {
		day = day.AddDate(0, 0, 1)
	}
	return day
}

func parseMonthDay(value string) (time.Month, int, error) {
	t, err := time.Parse("01-02", value)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid blackout day %q: want MM-DD", value)
	}
	return t.Month(), t.Day(), nil
}
