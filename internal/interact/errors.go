package interact

import "errors"

var (
	// ErrInvalidWidget is returned when a widget lacks the capability a click needs.
	ErrInvalidWidget = errors.New("widget object is invalid")
	// ErrWidgetNotRendered is returned when clicking a widget that has no DOM.
	ErrWidgetNotRendered = errors.New("widget is not rendered")
	// ErrInvalidField is returned when typing into something that is not a form field.
	ErrInvalidField = errors.New("field object is invalid")
	// ErrFieldNotRendered is returned when typing into a field that has no DOM.
	ErrFieldNotRendered = errors.New("field is not rendered")
	// ErrUnknownKey is returned when a special key name has no code.
	ErrUnknownKey = errors.New("unknown key name")
)
