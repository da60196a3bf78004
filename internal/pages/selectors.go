package pages

import (
	"fmt"
	"time"

	"github.com/skylane-qa/flightcheck/internal/scenario"
)

// Selectors for the booking site. They are exported for pagestest, which
// renders a fake booking page addressed by the same selectors.

// Search form.
const (
	TripTypeToggle  = "#trip-type-toggle-button"
	DepartureAnchor = "//div[contains(@class,'runway-popup-field__placeholder') and contains(text(),'departure')]"
	ArrivalAnchor   = "//div[contains(@class,'runway-popup-field__placeholder') and contains(text(),'arrival')]"
	LocationInput   = "input[type='text']:visible, input[placeholder*='search']:visible, input[placeholder*='location']:visible, input[placeholder*='city']:visible"

	TravelDatesAnchor = "//div[contains(text(),'Select travel dates')]"
	DialogConfirm     = "//button[@data-testid='dialogConfirmation']"
	DatePickerClose   = "//path[@d='M-5-5h24v24H-5z']/parent::*"

	SearchButton     = "//button[@type='submit' and contains(text(),'SEARCH FLIGHTS')]"
	LoadingIndicator = "//div[contains(@class,'loading') or contains(@class,'spinner')]"
)

// Passenger selector.
const (
	PassengerAnchor = "//span[contains(text(),'Select Passengers')]"

	AdultsInput   = "#adults"
	ChildrenInput = "#children"
	InfantsInput  = "#infants"

	AdultPlus     = "//div[@data-testid='adults']//span[@class='rc-input-number-handler rc-input-number-handler-up']"
	AdultPlusAlt  = "//span[contains(@aria-label,'Increase Value') and ancestor::div[@data-testid='adults']]"
	AdultMinus    = "//div[@data-testid='adults']//span[@class='rc-input-number-handler rc-input-number-handler-down']"
	AdultMinusAlt = "//span[contains(@aria-label,'Decrease Value') and ancestor::div[@data-testid='adults']]"
	ChildPlus     = "//div[@data-testid='children']//span[@class='rc-input-number-handler rc-input-number-handler-up']"
	ChildPlusAlt  = "//span[contains(@aria-label,'Increase Value') and ancestor::div[@data-testid='children']]"
	ChildMinus    = "//div[@data-testid='children']//span[@class='rc-input-number-handler rc-input-number-handler-down']"
	ChildMinusAlt = "//span[contains(@aria-label,'Decrease Value') and ancestor::div[@data-testid='children']]"
	InfantPlus    = "//div[@data-testid='infants']//span[@class='rc-input-number-handler rc-input-number-handler-up']"
	InfantPlusAlt = "//span[contains(@aria-label,'Increase Value') and ancestor::div[@data-testid='infants']]"
)

// Validation messages, generic region first.
var ValidationMessageSelectors = []string{
	"//span[contains(@class,'ValidationMessages')]//div",
	"//div[@data-testid='adults']//span[contains(@class,'ValidationMessages')]//div",
	"//div[@data-testid='infants']//span[contains(@class,'ValidationMessages')]//div",
}

// AlertMessage also matches site-wide notices, so only alerts that appear
// after an interaction count as validation messages.
const AlertMessage = "//*[@role='alert']"

// Any of these means the flight results page is showing.
var ResultsIndicators = []string{
	"//div[contains(@class,'flight-results')]",
	"//button[contains(text(),'Select') and contains(text(),'flight')]",
}

func TripTypeOption(t scenario.TripType) string {
	return fmt.Sprintf("text='%s'", t.Label())
}

func TripTypeLabel(t scenario.TripType) string {
	return fmt.Sprintf("//label[contains(text(),'%s')]", t.Label())
}

func LocationSuggestion(code string) string {
	return fmt.Sprintf("//*[self::li or self::div][contains(@class,'suggestion') or contains(@class,'option') or contains(@class,'result')][contains(normalize-space(.),'%s')]", code)
}

func CalendarDay(day time.Time) string {
	return fmt.Sprintf("//button[contains(@data-testid,'%s')]", day.Format(scenario.DateLayout))
}
