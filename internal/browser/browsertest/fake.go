// Package browsertest provides an in-memory browser.Driver for exercising
// page objects and the runner without a real browser.
package browsertest

import (
	"errors"
	"fmt"
	"os"
	"sync"
)

var (
	// ErrNoElement is returned for actions on selectors with no match.
	ErrNoElement = errors.New("no element matches selector")
	// ErrNotCheckable is returned by IsChecked on an Uncheckable element.
	ErrNotCheckable = errors.New("not a checkbox or radio button")
)

// Element is one fake DOM node. The zero value is hidden and enabled.
type Element struct {
	Visible  bool
	Disabled bool
	Text     string
	Value    string
	Attrs    map[string]string

	// Checked is the state of a radio or checkbox, or of a label's input.
	Checked bool
	// Uncheckable makes IsChecked fail, as playwright does for elements
	// that are neither a radio nor a checkbox.
	Uncheckable bool

	// OnClick runs after a successful click, outside the driver lock.
	OnClick func(d *Driver)
	// OnFill runs after a successful fill with the new value.
	OnFill func(d *Driver, value string)
}

// Visible is a shorthand for a visible element with the given text.
func Visible(text string) *Element {
	return &Element{Visible: true, Text: text}
}

// Driver is a scriptable fake implementing browser.Driver.
type Driver struct {
	mu       sync.Mutex
	elements map[string][]*Element
	failures map[string]error
	url      string

	Clicks      []string
	Fills       map[string]string
	Keys        []string
	Screenshots []string
	Visits      []string
	Reloads     int

	// OnReload runs after Reload, outside the driver lock.
	OnReload func(d *Driver)
}

// New creates an empty fake page at url.
func New(url string) *Driver {
	return &Driver{
		elements: make(map[string][]*Element),
		failures: make(map[string]error),
		url:      url,
		Fills:    make(map[string]string),
	}
}

// Set replaces the matches for selector.
func (d *Driver) Set(selector string, els ...*Element) *Driver {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.elements[selector] = els
	return d
}

// Remove deletes every match for selector.
func (d *Driver) Remove(selector string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.elements, selector)
}

// Get returns the first match for selector, or nil.
func (d *Driver) Get(selector string) *Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	if els := d.elements[selector]; len(els) > 0 {
		return els[0]
	}
	return nil
}

// Update mutates the first match for selector under the driver lock.
func (d *Driver) Update(selector string, fn func(e *Element)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if els := d.elements[selector]; len(els) > 0 {
		fn(els[0])
	}
}

// Fail makes every call touching selector return err.
func (d *Driver) Fail(selector string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failures[selector] = err
}

// SetURL simulates a navigation.
func (d *Driver) SetURL(url string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.url = url
}

// ClickCount returns how many times selector was clicked.
func (d *Driver) ClickCount(selector string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, s := range d.Clicks {
		if s == selector {
			n++
		}
	}
	return n
}

func (d *Driver) lookup(selector string) (*Element, error) {
	if err := d.failures[selector]; err != nil {
		return nil, err
	}
	els := d.elements[selector]
	if len(els) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoElement, selector)
	}
	return els[0], nil
}

func (d *Driver) Goto(url string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Visits = append(d.Visits, url)
	d.url = url
	return nil
}

func (d *Driver) Reload() error {
	d.mu.Lock()
	d.Reloads++
	hook := d.OnReload
	d.mu.Unlock()
	if hook != nil {
		hook(d)
	}
	return nil
}

func (d *Driver) URL() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.url
}

func (d *Driver) Count(selector string) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.failures[selector]; err != nil {
		return 0, err
	}
	return len(d.elements[selector]), nil
}

func (d *Driver) IsVisible(selector string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.failures[selector]; err != nil {
		return false, err
	}
	els := d.elements[selector]
	return len(els) > 0 && els[0].Visible, nil
}

func (d *Driver) IsEnabled(selector string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, err := d.lookup(selector)
	if err != nil {
		return false, err
	}
	return !e.Disabled, nil
}

func (d *Driver) IsChecked(selector string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, err := d.lookup(selector)
	if err != nil {
		return false, err
	}
	if e.Uncheckable {
		return false, fmt.Errorf("%w: %s", ErrNotCheckable, selector)
	}
	return e.Checked, nil
}

func (d *Driver) Text(selector string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, err := d.lookup(selector)
	if err != nil {
		return "", err
	}
	return e.Text, nil
}

func (d *Driver) VisibleTexts(selector string) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.failures[selector]; err != nil {
		return nil, err
	}
	var texts []string
	for _, e := range d.elements[selector] {
		if e.Visible {
			texts = append(texts, e.Text)
		}
	}
	return texts, nil
}

func (d *Driver) Attribute(selector, name string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, err := d.lookup(selector)
	if err != nil {
		return "", err
	}
	return e.Attrs[name], nil
}

func (d *Driver) InputValue(selector string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, err := d.lookup(selector)
	if err != nil {
		return "", err
	}
	return e.Value, nil
}

func (d *Driver) Click(selector string) error {
	d.mu.Lock()
	e, err := d.lookup(selector)
	if err != nil {
		d.mu.Unlock()
		return err
	}
	if !e.Visible || e.Disabled {
		d.mu.Unlock()
		return fmt.Errorf("element not actionable: %s", selector)
	}
	d.Clicks = append(d.Clicks, selector)
	hook := e.OnClick
	d.mu.Unlock()

	if hook != nil {
		hook(d)
	}
	return nil
}

func (d *Driver) Fill(selector, value string) error {
	d.mu.Lock()
	e, err := d.lookup(selector)
	if err != nil {
		d.mu.Unlock()
		return err
	}
	if !e.Visible || e.Disabled {
		d.mu.Unlock()
		return fmt.Errorf("element not editable: %s", selector)
	}
	e.Value = value
	d.Fills[selector] = value
	hook := e.OnFill
	d.mu.Unlock()

	if hook != nil {
		hook(d, value)
	}
	return nil
}

func (d *Driver) Press(key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Keys = append(d.Keys, key)
	return nil
}

// Screenshot writes a placeholder PNG header so report code can embed it.
func (d *Driver) Screenshot(path string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.failures["screenshot"]; err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte("\x89PNG\r\n\x1a\n"), 0o644); err != nil {
		return err
	}
	d.Screenshots = append(d.Screenshots, path)
	return nil
}
