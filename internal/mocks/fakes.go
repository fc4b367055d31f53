package mocks

import (
	"context"
	"errors"
	"sync"

	"github.com/xkilldash9x/uxsim/api/schemas"
	"github.com/xkilldash9x/uxsim/internal/synth"
	"github.com/xkilldash9x/uxsim/internal/widget"
)

// -- Fake Nodes --

// FakeNode is a raw node handle identified by its reference string.
type FakeNode string

func (n FakeNode) NodeRef() string { return string(n) }

// FakeElement is an in-memory synth.Element.
type FakeElement struct {
	mu       sync.Mutex
	Ref      string
	Val      string
	Attrs    map[string]string
	SetErr   error
	setCalls int
}

// NewFakeElement returns an element with the given ref and optional id attribute.
func NewFakeElement(ref string) *FakeElement {
	return &FakeElement{Ref: ref, Attrs: map[string]string{"id": ref}}
}

func (e *FakeElement) NodeRef() string  { return e.Ref }
func (e *FakeElement) Dom() synth.Node { return FakeNode(e.Ref) }

func (e *FakeElement) Attribute(_ context.Context, name string) (string, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.Attrs[name]
	return v, ok, nil
}

func (e *FakeElement) Value(context.Context) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Val, nil
}

func (e *FakeElement) SetValue(_ context.Context, v string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.setCalls++
	if e.SetErr != nil {
		return e.SetErr
	}
	e.Val = v
	return nil
}

// SetValueCalls returns how many times SetValue was invoked.
func (e *FakeElement) SetValueCalls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.setCalls
}

// -- Recording Host --

// Dispatch records a single event delivered to a RecordingHost.
type Dispatch struct {
	// Legacy is true for FireEvent deliveries.
	Legacy bool
	Class  schemas.EventClass
	Target string
	Event  schemas.NativeEvent
}

// RecordingHost is a synth.Host that records every delivered event.
// Classes listed in Rejected are refused with synth.ErrUnsupportedEventClass.
type RecordingHost struct {
	mu         sync.Mutex
	Caps       synth.Capabilities
	ProbeErr   error
	Rejected   map[schemas.EventClass]bool
	elements   map[string]*FakeElement
	dispatches []Dispatch
	attempts   []schemas.EventClass

	// If set, these replace the default behavior.
	MockDispatchEvent func(ctx context.Context, target synth.Element, class schemas.EventClass, ev *schemas.NativeEvent) error
	MockFireEvent     func(ctx context.Context, target synth.Element, ev *schemas.NativeEvent) error
}

// NewRecordingHost returns a host reporting the given engine with the standard API.
func NewRecordingHost(engine schemas.Engine) *RecordingHost {
	return &RecordingHost{
		Caps:     synth.Capabilities{Engine: engine, StandardEvents: true},
		Rejected: make(map[schemas.EventClass]bool),
		elements: make(map[string]*FakeElement),
	}
}

// Element returns the element the host wraps ref into, creating it on first use.
func (h *RecordingHost) Element(ref string) *FakeElement {
	h.mu.Lock()
	defer h.mu.Unlock()
	el, ok := h.elements[ref]
	if !ok {
		el = NewFakeElement(ref)
		h.elements[ref] = el
	}
	return el
}

func (h *RecordingHost) Wrap(_ context.Context, n synth.Node) (synth.Element, error) {
	if n == nil {
		return nil, errors.New("nil node")
	}
	return h.Element(n.NodeRef()), nil
}

func (h *RecordingHost) Probe(context.Context) (synth.Capabilities, error) {
	return h.Caps, h.ProbeErr
}

func (h *RecordingHost) DispatchEvent(ctx context.Context, target synth.Element, class schemas.EventClass, ev *schemas.NativeEvent) error {
	h.mu.Lock()
	h.attempts = append(h.attempts, class)
	rejected := h.Rejected[class]
	h.mu.Unlock()

	if h.MockDispatchEvent != nil {
		return h.MockDispatchEvent(ctx, target, class, ev)
	}
	if rejected {
		return synth.ErrUnsupportedEventClass
	}
	h.record(Dispatch{Class: class, Target: target.NodeRef(), Event: *ev})
	return nil
}

func (h *RecordingHost) FireEvent(ctx context.Context, target synth.Element, ev *schemas.NativeEvent) error {
	if h.MockFireEvent != nil {
		return h.MockFireEvent(ctx, target, ev)
	}
	h.record(Dispatch{Legacy: true, Target: target.NodeRef(), Event: *ev})
	return nil
}

func (h *RecordingHost) record(d Dispatch) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dispatches = append(h.dispatches, d)
}

// Dispatches returns a copy of the recorded deliveries.
func (h *RecordingHost) Dispatches() []Dispatch {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Dispatch(nil), h.dispatches...)
}

// Types returns the event types delivered so far, in order.
func (h *RecordingHost) Types() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	types := make([]string, 0, len(h.dispatches))
	for _, d := range h.dispatches {
		types = append(types, d.Event.Type)
	}
	return types
}

// Attempts returns every class DispatchEvent was called with, including rejected ones.
func (h *RecordingHost) Attempts() []schemas.EventClass {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]schemas.EventClass(nil), h.attempts...)
}

// -- Fake Widgets --

// FakeComponent is a plain widget.Component.
type FakeComponent struct {
	Id          string
	IsRendered  bool
	Root        *FakeElement
	RenderedErr error
}

// NewFakeComponent returns a rendered component whose root element is root.
func NewFakeComponent(id string, root *FakeElement) FakeComponent {
	return FakeComponent{Id: id, IsRendered: true, Root: root}
}

func (c *FakeComponent) ID() string { return c.Id }

func (c *FakeComponent) Rendered(context.Context) (bool, error) {
	return c.IsRendered, c.RenderedErr
}

func (c *FakeComponent) El(context.Context) (synth.Element, error) {
	if c.Root == nil {
		return nil, errors.New("component has no element")
	}
	return c.Root, nil
}

// FakeButton is a widget.Button.
type FakeButton struct {
	FakeComponent
}

func (*FakeButton) IsButton() {}

// FakeInputComponent carries the input element shared by form widgets.
type FakeInputComponent struct {
	FakeComponent
	Input *FakeElement
}

func (c *FakeInputComponent) InputEl(context.Context) (synth.Element, error) {
	if c.Input == nil {
		return nil, errors.New("component has no input element")
	}
	return c.Input, nil
}

// FakeCheckbox is a widget.Checkbox.
type FakeCheckbox struct {
	FakeInputComponent
}

func (*FakeCheckbox) IsCheckbox() {}

// FakeRadio is a widget.Radio.
type FakeRadio struct {
	FakeInputComponent
}

func (*FakeRadio) IsRadio() {}

// FakeField is a widget.FormField.
type FakeField struct {
	FakeInputComponent
}

func (*FakeField) IsFormField() {}

// FakeMessageBox is a widget.MessageBox.
type FakeMessageBox struct {
	FakeComponent
	TitleText   string
	MessageText string
	IsMultiline bool
	Buttons     map[string]widget.Component
	Field       widget.Component
	Area        widget.Component

	mu     sync.Mutex
	closed int
}

func (b *FakeMessageBox) Title(context.Context) (string, error)   { return b.TitleText, nil }
func (b *FakeMessageBox) Message(context.Context) (string, error) { return b.MessageText, nil }
func (b *FakeMessageBox) Multiline(context.Context) (bool, error) { return b.IsMultiline, nil }

func (b *FakeMessageBox) Close(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed++
	return nil
}

// CloseCalls returns how many times Close was invoked.
func (b *FakeMessageBox) CloseCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

func (b *FakeMessageBox) MsgButton(_ context.Context, name string) (widget.Component, bool, error) {
	btn, ok := b.Buttons[name]
	return btn, ok, nil
}

func (b *FakeMessageBox) TextField(context.Context) (widget.Component, error) { return b.Field, nil }
func (b *FakeMessageBox) TextArea(context.Context) (widget.Component, error)  { return b.Area, nil }

var (
	_ synth.Host        = (*RecordingHost)(nil)
	_ synth.Host        = (*MockHost)(nil)
	_ synth.Element     = (*FakeElement)(nil)
	_ widget.Button     = (*FakeButton)(nil)
	_ widget.Checkbox   = (*FakeCheckbox)(nil)
	_ widget.Radio      = (*FakeRadio)(nil)
	_ widget.FormField  = (*FakeField)(nil)
	_ widget.MessageBox = (*FakeMessageBox)(nil)
)
