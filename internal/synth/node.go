package synth

import (
	"context"

	"github.com/xkilldash9x/uxsim/api/schemas"
)

// Node is a raw handle to a single node of the page under test.
type Node interface {
	// NodeRef identifies the node to the host that issued it.
	NodeRef() string
}

// Element is the logical wrapper around a Node. Elements are Nodes too, so
// every operation accepts either form.
type Element interface {
	Node
	// Dom returns the raw node used for native dispatch.
	Dom() Node
	Attribute(ctx context.Context, name string) (value string, ok bool, err error)
	Value(ctx context.Context) (string, error)
	SetValue(ctx context.Context, value string) error
}

// Capabilities is what a host reports when probed.
type Capabilities struct {
	Engine schemas.Engine
	// StandardEvents is true when document.createEvent is available.
	StandardEvents bool
	// LegacyEvents is true when document.createEventObject is available.
	LegacyEvents bool
}

// Host is the native event construction and dispatch facility of a page.
type Host interface {
	// Wrap resolves a raw node into its logical element.
	Wrap(ctx context.Context, n Node) (Element, error)
	// Probe reports the engine and the event APIs the page exposes.
	Probe(ctx context.Context) (Capabilities, error)
	// DispatchEvent builds ev through document.createEvent(class) and
	// dispatches it at target. Hosts return ErrUnsupportedEventClass when
	// createEvent rejects class.
	DispatchEvent(ctx context.Context, target Element, class schemas.EventClass, ev *schemas.NativeEvent) error
	// FireEvent delivers ev through document.createEventObject and
	// target.fireEvent("on" + ev.Type).
	FireEvent(ctx context.Context, target Element, ev *schemas.NativeEvent) error
}
