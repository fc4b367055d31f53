package schemas

// -- Platform Schemas --

// Engine identifies the event model of the page environment.
type Engine string

const (
	// EngineStandard covers every DOM Level 2/3 compliant engine.
	EngineStandard Engine = "standard"
	// EngineTrident is the legacy Internet Explorer engine.
	EngineTrident Engine = "trident"
)

// Valid reports whether e is a known engine.
func (e Engine) Valid() bool {
	return e == EngineStandard || e == EngineTrident
}

// EventClass is the event interface name passed to document.createEvent.
type EventClass string

const (
	ClassEvents      EventClass = "Events"
	ClassUIEvents    EventClass = "UIEvents"
	ClassMouseEvents EventClass = "MouseEvents"
)

// -- Input Intent Schemas --

// IntentKind discriminates the InputIntent variants.
type IntentKind string

const (
	IntentClick IntentKind = "click"
	IntentKey   IntentKind = "key"
)

// KeyPhase is one of the three keyboard event types.
type KeyPhase string

const (
	KeyDown  KeyPhase = "keydown"
	KeyPress KeyPhase = "keypress"
	KeyUp    KeyPhase = "keyup"
)

// Valid reports whether p is one of keydown, keypress or keyup.
func (p KeyPhase) Valid() bool {
	switch p {
	case KeyDown, KeyPress, KeyUp:
		return true
	}
	return false
}

// Modifiers is the set of modifier keys held during an event.
// The zero value means no modifier is pressed.
type Modifiers struct {
	Ctrl  bool `json:"ctrlKey"`
	Shift bool `json:"shiftKey"`
	Alt   bool `json:"altKey"`
	Meta  bool `json:"metaKey"`
}

// ClickOptions describes a mouse click.
type ClickOptions struct {
	Modifiers
	DoubleClick bool `json:"dblclick"`
	RightButton bool `json:"right"`
}

// KeyOptions describes a single key transition.
type KeyOptions struct {
	Modifiers
	// IsKeyCode marks Code as a key code (non-printable or control key)
	// rather than a character code.
	IsKeyCode bool `json:"isKeyCode"`
}

// InputIntent is a logical description of one synthetic input event.
type InputIntent struct {
	Kind  IntentKind   `json:"kind"`
	Click ClickOptions `json:"click,omitempty"`
	Phase KeyPhase     `json:"phase,omitempty"`
	Code  int          `json:"code,omitempty"`
	Key   KeyOptions   `json:"key,omitempty"`
}

// -- Native Event Schemas --

// NativeEvent is the platform event handed to the page for a single dispatch.
// Nil Button, KeyCode or CharCode fields are left unset on the page event.
type NativeEvent struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Bubbles    bool   `json:"bubbles"`
	Cancelable bool   `json:"cancelable"`
	View       string `json:"view,omitempty"`
	Modifiers
	Button   *int `json:"button,omitempty"`
	KeyCode  *int `json:"keyCode,omitempty"`
	CharCode *int `json:"charCode,omitempty"`
}

// IntPtr returns a pointer to v. Used when populating NativeEvent codes.
func IntPtr(v int) *int {
	return &v
}
