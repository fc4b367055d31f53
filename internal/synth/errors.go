package synth

import "errors"

var (
	// ErrInvalidTarget is returned when an injection is requested without a target.
	ErrInvalidTarget = errors.New("target is required")
	// ErrInvalidEventType is returned for key phases other than keydown, keyup and keypress.
	ErrInvalidEventType = errors.New("event type should be keyup, keydown or keypress")
	// ErrNoEventSimulationSupport is returned when the host exposes neither the
	// standards nor the legacy event construction API.
	ErrNoEventSimulationSupport = errors.New("no event simulation framework")
	// ErrUnsupportedEventClass is reported by hosts whose createEvent rejects
	// the requested event interface. The synthesizer retries with the next class.
	ErrUnsupportedEventClass = errors.New("unsupported event class")
)
