package suite

import (
	"fmt"
	"strings"
)

// AssertionFailure is a check that ran and did not hold.
type AssertionFailure struct {
	Message  string
	Expected interface{}
	Actual   interface{}
}

func (e *AssertionFailure) Error() string {
	return fmt.Sprintf("%s: expected %v, got %v", e.Message, quote(e.Expected), quote(e.Actual))
}

func quote(v interface{}) interface{} {
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return v
}

func failf(expected, actual interface{}, format string, args ...interface{}) error {
	return &AssertionFailure{Message: fmt.Sprintf(format, args...), Expected: expected, Actual: actual}
}

// sameMessage compares messages exactly after trimming; wording drift fails.
func sameMessage(expected, actual string) bool {
	return strings.TrimSpace(expected) == strings.TrimSpace(actual)
}
