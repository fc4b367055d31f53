// Package widget declares the capabilities the interaction layer expects from
// UI components. Hosts return concrete adapters and callers discover what a
// component can do with a type assertion.
package widget

import (
	"context"

	"github.com/xkilldash9x/uxsim/internal/synth"
)

// Component is any UI component that may be rendered into the page.
type Component interface {
	// ID is the component identifier, unique per page.
	ID() string
	// Rendered reports whether the component currently has DOM.
	Rendered(ctx context.Context) (bool, error)
	// El returns the component's root element.
	El(ctx context.Context) (synth.Element, error)
}

// Button is a clickable button component. Clicks go to its root element.
type Button interface {
	Component
	IsButton()
}

// Checkbox is a check box form field. Clicks go to its input element.
type Checkbox interface {
	Component
	InputEl(ctx context.Context) (synth.Element, error)
	IsCheckbox()
}

// Radio is a radio button form field. Clicks go to its input element.
type Radio interface {
	Component
	InputEl(ctx context.Context) (synth.Element, error)
	IsRadio()
}

// FormField is a component that accepts typed text in its input element.
type FormField interface {
	Component
	InputEl(ctx context.Context) (synth.Element, error)
	IsFormField()
}

// Standard message box button names.
const (
	ButtonOK     = "ok"
	ButtonCancel = "cancel"
	ButtonYes    = "yes"
	ButtonNo     = "no"
)

// MessageBox is a modal dialog with a title, a message, standard buttons and
// optional single or multi line prompt fields.
type MessageBox interface {
	Component
	Title(ctx context.Context) (string, error)
	Message(ctx context.Context) (string, error)
	Close(ctx context.Context) error
	// MsgButton returns the named standard button, if the dialog has one.
	MsgButton(ctx context.Context, name string) (Component, bool, error)
	Multiline(ctx context.Context) (bool, error)
	TextField(ctx context.Context) (Component, error)
	TextArea(ctx context.Context) (Component, error)
}
