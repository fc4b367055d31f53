// internal/browser/jsdom/errors.go
package jsdom

import "fmt"

// ElementNotFoundError is returned when a selector matches no element.
type ElementNotFoundError struct {
	Selector string
}

func (e *ElementNotFoundError) Error() string {
	return fmt.Sprintf("element not found matching selector '%s'", e.Selector)
}

// NewElementNotFoundError creates a new ElementNotFoundError.
func NewElementNotFoundError(selector string) *ElementNotFoundError {
	return &ElementNotFoundError{Selector: selector}
}

// ScriptError wraps an exception thrown by page JavaScript.
type ScriptError struct {
	Op      string
	Message string
	Err     error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("%s: javascript exception: %s", e.Op, e.Message)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}
