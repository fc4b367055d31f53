// internal/browser/cdp/errors.go
package cdp

import (
	"errors"
	"fmt"
)

// ErrExtNotLoaded is returned by component lookups on a page without Ext JS.
var ErrExtNotLoaded = errors.New("Ext JS is not loaded in the page")

// ElementNotFoundError is returned when a selector matches nothing.
type ElementNotFoundError struct {
	Selector string
}

func (e *ElementNotFoundError) Error() string {
	return fmt.Sprintf("cdp: element not found for selector '%s'", e.Selector)
}

// ComponentNotFoundError is returned when no component is registered under ID.
type ComponentNotFoundError struct {
	ID string
}

func (e *ComponentNotFoundError) Error() string {
	return fmt.Sprintf("cdp: component '%s' not found", e.ID)
}
