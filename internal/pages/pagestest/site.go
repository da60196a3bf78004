// Package pagestest renders a scripted booking site on top of the
// browsertest fake driver, so flows can be exercised without a browser.
package pagestest

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/skylane-qa/flightcheck/internal/browser/browsertest"
	"github.com/skylane-qa/flightcheck/internal/pages"
	"github.com/skylane-qa/flightcheck/internal/scenario"
)

const (
	// BaseURL is where the site starts.
	BaseURL = "https://booking.example.test/en-hk"
	// ResultsURL is where a successful search lands.
	ResultsURL = BaseURL + "/flight-select"

	ReturnRequiredMessage = "Please select a return date"
	InfantLimitMessage    = "Number of infants cannot exceed number of adults"
)

const calendarDays = 400

// Options changes how the fake site behaves.
type Options struct {
	// Airports with a search suggestion. Defaults to a small set.
	Airports []string
	// Today is the first day the calendar offers. Defaults to today (UTC).
	Today time.Time
	// InitialTripType defaults to round trip, like the real form.
	InitialTripType scenario.TripType
	// RadioTripType renders trip type labels instead of the dropdown.
	RadioTripType bool
	// NativeRadios makes those labels plain <label>s of radio inputs: no
	// aria-checked, the state only shows through the input.
	NativeRadios bool
	// UseAltHandlers renders only the aria-label counter buttons.
	UseAltHandlers bool
	// NoInfantLimit keeps infant + enabled past the limit.
	NoInfantLimit bool
	// NoResults makes searches silently do nothing.
	NoResults bool
	// ReturnMessage overrides the missing return date message.
	ReturnMessage string
	// Banner is a site-wide role="alert" notice showing from page load.
	Banner string
	// SearchAlert is a role="alert" notice that appears once a search is
	// submitted, whatever its outcome.
	SearchAlert string
}

// Site is a fake booking page. Its state resets on reload.
type Site struct {
	*browsertest.Driver

	opts Options

	mu          sync.Mutex
	tripType    scenario.TripType
	origin      string
	destination string
	departure   time.Time
	ret         time.Time
	adults      int
	children    int
	infants     int
	dialog      string
	editing     string
	query       string
	searched    bool
	searches    int
}

// NewSite renders the booking form at BaseURL.
func NewSite(opts Options) *Site {
	if len(opts.Airports) == 0 {
		opts.Airports = []string{"SYD", "MEL", "BNE", "HKG", "NRT"}
	}
	if opts.Today.IsZero() {
		opts.Today = time.Now().UTC()
	}
	y, m, d := opts.Today.Date()
	opts.Today = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	if opts.InitialTripType == "" {
		opts.InitialTripType = scenario.RoundTrip
	}
	if opts.ReturnMessage == "" {
		opts.ReturnMessage = ReturnRequiredMessage
	}

	s := &Site{Driver: browsertest.New(BaseURL), opts: opts}
	s.OnReload = func(*browsertest.Driver) { s.reset() }
	s.reset()
	return s
}

// TripType returns the selected trip type.
func (s *Site) TripType() scenario.TripType {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tripType
}

// Route returns the selected origin and destination.
func (s *Site) Route() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.origin, s.destination
}

// Dates returns the selected dates; zero when not picked.
func (s *Site) Dates() (time.Time, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.departure, s.ret
}

// Passengers returns the adult and infant counters.
func (s *Site) Passengers() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.adults, s.infants
}

// Children returns the child counter.
func (s *Site) Children() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.children
}

// Searches counts clicks on the search button.
func (s *Site) Searches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searches
}

func (s *Site) reset() {
	s.mu.Lock()
	s.tripType = s.opts.InitialTripType
	s.origin, s.destination = "", ""
	s.departure, s.ret = time.Time{}, time.Time{}
	s.adults, s.children, s.infants = 1, 0, 0
	s.dialog, s.editing, s.query = "", "", ""
	s.searched = false
	s.mu.Unlock()

	s.SetURL(BaseURL)
	s.render()
}

// update mutates state under the site lock and re-renders the page.
func (s *Site) update(fn func()) {
	s.mu.Lock()
	fn()
	s.mu.Unlock()
	s.render()
}

func (s *Site) onClick(fn func()) func(*browsertest.Driver) {
	return func(*browsertest.Driver) { s.update(fn) }
}

func (s *Site) render() {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.Driver

	d.Set(pages.DepartureAnchor, &browsertest.Element{Visible: true, Text: "Select departure location",
		OnClick: s.onClick(func() { s.dialog, s.editing, s.query = "location", "origin", "" })})
	d.Set(pages.ArrivalAnchor, &browsertest.Element{Visible: true, Text: "Select arrival location",
		OnClick: s.onClick(func() { s.dialog, s.editing, s.query = "location", "destination", "" })})
	d.Set(pages.TravelDatesAnchor, &browsertest.Element{Visible: true, Text: "Select travel dates",
		OnClick: s.onClick(func() { s.dialog = "dates" })})
	d.Set(pages.PassengerAnchor, &browsertest.Element{Visible: true, Text: "Select Passengers",
		OnClick: s.onClick(func() { s.dialog = "passengers" })})
	d.Set(pages.SearchButton, &browsertest.Element{Visible: true, Text: "SEARCH FLIGHTS",
		OnClick: s.onClick(s.search)})

	s.renderTripType()
	s.renderLocation()
	s.renderCalendar()
	s.renderPassengers()
	s.renderOutcome()
	s.renderAlerts()
}

func (s *Site) renderAlerts() {
	var alerts []*browsertest.Element
	if s.opts.Banner != "" {
		alerts = append(alerts, browsertest.Visible(s.opts.Banner))
	}
	if s.searched && s.opts.SearchAlert != "" {
		alerts = append(alerts, browsertest.Visible(s.opts.SearchAlert))
	}
	if len(alerts) == 0 {
		s.Driver.Remove(pages.AlertMessage)
		return
	}
	s.Driver.Set(pages.AlertMessage, alerts...)
}

func (s *Site) renderTripType() {
	d := s.Driver
	types := []scenario.TripType{scenario.OneWay, scenario.RoundTrip}

	if s.opts.RadioTripType {
		d.Remove(pages.TripTypeToggle)
		for _, t := range types {
			label := &browsertest.Element{Visible: true, Text: t.Label(),
				OnClick: s.onClick(func() { s.tripType = t })}
			if s.opts.NativeRadios {
				label.Checked = s.tripType == t
			} else {
				label.Attrs = map[string]string{"aria-checked": strconv.FormatBool(s.tripType == t)}
				label.Uncheckable = true
			}
			d.Set(pages.TripTypeLabel(t), label)
		}
		return
	}

	open := s.dialog == "trip_type"
	d.Set(pages.TripTypeToggle, &browsertest.Element{Visible: true, Text: s.tripType.Label(),
		OnClick: s.onClick(func() { s.dialog = "trip_type" })})
	for _, t := range types {
		if !open {
			d.Remove(pages.TripTypeOption(t))
			continue
		}
		d.Set(pages.TripTypeOption(t), &browsertest.Element{Visible: true, Text: t.Label(),
			OnClick: s.onClick(func() { s.tripType, s.dialog = t, "" })})
	}
}

func (s *Site) renderLocation() {
	d := s.Driver
	for _, code := range s.opts.Airports {
		d.Remove(pages.LocationSuggestion(code))
	}
	if s.dialog != "location" {
		d.Remove(pages.LocationInput)
		return
	}

	d.Set(pages.LocationInput, &browsertest.Element{Visible: true, Value: s.query,
		OnFill: func(_ *browsertest.Driver, value string) {
			s.update(func() { s.query = value })
		}})
	for _, code := range s.opts.Airports {
		if s.query == "" || !strings.EqualFold(code, strings.TrimSpace(s.query)) {
			continue
		}
		d.Set(pages.LocationSuggestion(code), &browsertest.Element{Visible: true, Text: code,
			OnClick: s.onClick(func() {
				if s.editing == "origin" {
					s.origin = code
				} else {
					s.destination = code
				}
				s.dialog, s.editing, s.query = "", "", ""
			})})
	}
}

func (s *Site) renderCalendar() {
	d := s.Driver
	open := s.dialog == "dates"
	for i := 0; i < calendarDays; i++ {
		day := s.opts.Today.AddDate(0, 0, i)
		if !open {
			d.Remove(pages.CalendarDay(day))
			continue
		}
		d.Set(pages.CalendarDay(day), &browsertest.Element{Visible: true, Text: strconv.Itoa(day.Day()),
			OnClick: s.onClick(func() {
				if s.tripType == scenario.RoundTrip && !s.departure.IsZero() && s.ret.IsZero() && !day.Before(s.departure) {
					s.ret = day
					return
				}
				s.departure, s.ret = day, time.Time{}
			})})
	}

	if !open {
		d.Remove(pages.DatePickerClose)
		if s.dialog != "passengers" {
			d.Remove(pages.DialogConfirm)
		}
		return
	}
	d.Set(pages.DatePickerClose, &browsertest.Element{Visible: true,
		OnClick: s.onClick(func() { s.dialog = "" })})
	incomplete := s.departure.IsZero() || (s.tripType == scenario.RoundTrip && s.ret.IsZero())
	d.Set(pages.DialogConfirm, &browsertest.Element{Visible: true, Disabled: incomplete, Text: "Continue",
		OnClick: s.onClick(func() { s.dialog = "" })})
}

func (s *Site) renderPassengers() {
	d := s.Driver
	counters := []string{pages.AdultsInput, pages.ChildrenInput, pages.InfantsInput,
		pages.AdultPlus, pages.AdultPlusAlt, pages.AdultMinus, pages.AdultMinusAlt,
		pages.ChildPlus, pages.ChildPlusAlt, pages.ChildMinus, pages.ChildMinusAlt,
		pages.InfantPlus, pages.InfantPlusAlt}
	if s.dialog != "passengers" {
		for _, sel := range counters {
			d.Remove(sel)
		}
		d.Remove(pages.ValidationMessageSelectors[2])
		return
	}

	d.Set(pages.DialogConfirm, &browsertest.Element{Visible: true, Text: "Confirm",
		OnClick: s.onClick(func() { s.dialog = "" })})
	d.Set(pages.AdultsInput, counter(s.adults))
	d.Set(pages.ChildrenInput, counter(s.children))
	d.Set(pages.InfantsInput, counter(s.infants))

	addAdult := s.onClick(func() {
		if s.adults+s.children < 9 {
			s.adults++
		}
	})
	removeAdult := s.onClick(func() {
		if s.adults > 1 {
			s.adults--
		}
		if s.infants > s.adults {
			s.infants = s.adults
		}
	})
	addChild := s.onClick(func() { s.children++ })
	removeChild := s.onClick(func() {
		if s.children > 0 {
			s.children--
		}
	})
	addInfant := s.onClick(func() { s.infants++ })

	atLimit := s.infants >= s.adults && !s.opts.NoInfantLimit
	s.handler(pages.AdultPlus, pages.AdultPlusAlt, "up", s.adults+s.children >= 9, addAdult)
	s.handler(pages.AdultMinus, pages.AdultMinusAlt, "down", s.adults <= 1, removeAdult)
	s.handler(pages.ChildPlus, pages.ChildPlusAlt, "up", s.adults+s.children >= 9, addChild)
	s.handler(pages.ChildMinus, pages.ChildMinusAlt, "down", s.children == 0, removeChild)
	s.handler(pages.InfantPlus, pages.InfantPlusAlt, "up", atLimit, addInfant)

	if atLimit {
		d.Set(pages.ValidationMessageSelectors[2], browsertest.Visible(InfantLimitMessage))
	} else {
		d.Remove(pages.ValidationMessageSelectors[2])
	}
}

// handler renders an rc-input-number button. A disabled handler gains a
// "-disabled" class, so the exact-class selector stops matching and only the
// aria-label selector finds it.
func (s *Site) handler(primary, alt, dir string, disabled bool, onClick func(*browsertest.Driver)) {
	class := "rc-input-number-handler rc-input-number-handler-" + dir
	if disabled {
		class += " rc-input-number-handler-" + dir + "-disabled"
	}
	el := func() *browsertest.Element {
		return &browsertest.Element{Visible: true, OnClick: onClick, Attrs: map[string]string{
			"class":         class,
			"aria-disabled": strconv.FormatBool(disabled),
		}}
	}

	if disabled || s.opts.UseAltHandlers {
		s.Driver.Remove(primary)
	} else {
		s.Driver.Set(primary, el())
	}
	s.Driver.Set(alt, el())
}

func counter(n int) *browsertest.Element {
	v := strconv.Itoa(n)
	return &browsertest.Element{Visible: true, Value: v, Attrs: map[string]string{"aria-valuenow": v}}
}

// search runs with the site lock held.
func (s *Site) search() {
	s.searches++
	s.dialog = ""
	s.searched = true
}

func (s *Site) renderOutcome() {
	d := s.Driver
	generic := pages.ValidationMessageSelectors[0]
	results := pages.ResultsIndicators[0]

	if !s.searched {
		d.Remove(generic)
		d.Remove(results)
		return
	}

	var msgs []*browsertest.Element
	if s.origin == "" {
		msgs = append(msgs, browsertest.Visible("Please select a departure location"))
	}
	if s.destination == "" {
		msgs = append(msgs, browsertest.Visible("Please select an arrival location"))
	}
	if s.departure.IsZero() {
		msgs = append(msgs, browsertest.Visible("Please select a departure date"))
	}
	if s.tripType == scenario.RoundTrip && s.ret.IsZero() {
		msgs = append(msgs, browsertest.Visible(s.opts.ReturnMessage))
	}

	if len(msgs) > 0 {
		d.Set(generic, msgs...)
		d.Remove(results)
		return
	}
	d.Remove(generic)
	if s.opts.NoResults {
		return
	}
	d.Set(results, browsertest.Visible("Select your flight"))
	d.SetURL(ResultsURL)
}
