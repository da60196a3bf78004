package browser

import (
	"fmt"

	"github.com/playwright-community/playwright-go"
)

// Driver is the element-level capability page objects need from the browser.
// Every selector addresses the first match unless stated otherwise. Calls
// are single attempts; waiting is the caller's job.
type Driver interface {
	Goto(url string) error
	Reload() error
	URL() string

	Count(selector string) (int, error)
	IsVisible(selector string) (bool, error)
	IsEnabled(selector string) (bool, error)
	// IsChecked reads a checkbox or radio; a label reports its input.
	IsChecked(selector string) (bool, error)
	Text(selector string) (string, error)
	// VisibleTexts returns the trimmed text of every visible match.
	VisibleTexts(selector string) ([]string, error)
	Attribute(selector, name string) (string, error)
	InputValue(selector string) (string, error)

	Click(selector string) error
	Fill(selector, value string) error
	Press(key string) error

	Screenshot(path string) error
}

// pageDriver implements Driver on a playwright page.
type pageDriver struct {
	page playwright.Page
	// actionTimeout bounds a single playwright call so that our own poller,
	// not playwright's auto-wait, owns the overall timeout.
	actionTimeout float64
}

// NewPageDriver wraps a playwright page. actionTimeoutMS caps each call.
func NewPageDriver(page playwright.Page, actionTimeoutMS float64) Driver {
	return &pageDriver{page: page, actionTimeout: actionTimeoutMS}
}

func (d *pageDriver) first(selector string) playwright.Locator {
	return d.page.Locator(selector).First()
}

func (d *pageDriver) Goto(url string) error {
	if _, err := d.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	return nil
}

func (d *pageDriver) Reload() error {
	_, err := d.page.Reload()
	return err
}

func (d *pageDriver) URL() string {
	return d.page.URL()
}

func (d *pageDriver) Count(selector string) (int, error) {
	return d.page.Locator(selector).Count()
}

func (d *pageDriver) IsVisible(selector string) (bool, error) {
	return d.first(selector).IsVisible()
}

func (d *pageDriver) IsEnabled(selector string) (bool, error) {
	return d.first(selector).IsEnabled(playwright.LocatorIsEnabledOptions{
		Timeout: playwright.Float(d.actionTimeout),
	})
}

func (d *pageDriver) IsChecked(selector string) (bool, error) {
	return d.first(selector).IsChecked(playwright.LocatorIsCheckedOptions{
		Timeout: playwright.Float(d.actionTimeout),
	})
}

func (d *pageDriver) Text(selector string) (string, error) {
	return d.first(selector).TextContent(playwright.LocatorTextContentOptions{
		Timeout: playwright.Float(d.actionTimeout),
	})
}

func (d *pageDriver) VisibleTexts(selector string) ([]string, error) {
	loc := d.page.Locator(selector)
	n, err := loc.Count()
	if err != nil {
		return nil, err
	}
	texts := make([]string, 0, n)
	for i := 0; i < n; i++ {
		item := loc.Nth(i)
		visible, err := item.IsVisible()
		if err != nil || !visible {
			continue
		}
		text, err := item.TextContent(playwright.LocatorTextContentOptions{
			Timeout: playwright.Float(d.actionTimeout),
		})
		if err != nil {
			return nil, err
		}
		texts = append(texts, text)
	}
	return texts, nil
}

func (d *pageDriver) Attribute(selector, name string) (string, error) {
	return d.first(selector).GetAttribute(name, playwright.LocatorGetAttributeOptions{
		Timeout: playwright.Float(d.actionTimeout),
	})
}

func (d *pageDriver) InputValue(selector string) (string, error) {
	return d.first(selector).InputValue(playwright.LocatorInputValueOptions{
		Timeout: playwright.Float(d.actionTimeout),
	})
}

func (d *pageDriver) Click(selector string) error {
	return d.first(selector).Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(d.actionTimeout),
	})
}

func (d *pageDriver) Fill(selector, value string) error {
	loc := d.first(selector)
	if err := loc.Clear(playwright.LocatorClearOptions{
		Timeout: playwright.Float(d.actionTimeout),
	}); err != nil {
		return err
	}
	return loc.Fill(value, playwright.LocatorFillOptions{
		Timeout: playwright.Float(d.actionTimeout),
	})
}

func (d *pageDriver) Press(key string) error {
	return d.page.Keyboard().Press(key)
}

func (d *pageDriver) Screenshot(path string) error {
	_, err := d.page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	return err
}
