// internal/browser/jsdom/host.go
package jsdom

import (
	"context"
	"fmt"

	"github.com/dop251/goja"

	"github.com/xkilldash9x/uxsim/api/schemas"
	"github.com/xkilldash9x/uxsim/internal/synth"
)

// probeScript detects the event APIs and engine the same way page code does.
const probeScript = `({
	standard: typeof document.createEvent === 'function',
	legacy: typeof document.createEventObject !== 'undefined',
	trident: !!document.documentMode || /Trident|MSIE/.test(navigator.userAgent)
})`

// Wrap resolves a raw handle into an element of this page.
func (p *Page) Wrap(ctx context.Context, n synth.Node) (synth.Element, error) {
	el, err := p.element(ctx, n)
	if err != nil {
		return nil, err
	}
	return el, nil
}

func (p *Page) element(ctx context.Context, n synth.Node) (*Element, error) {
	switch v := n.(type) {
	case nil:
		return nil, synth.ErrInvalidTarget
	case *Element:
		if v == nil {
			return nil, synth.ErrInvalidTarget
		}
		if v.page != p {
			return nil, fmt.Errorf("jsdom: element '%s' belongs to another page", v.ref)
		}
		return v, nil
	case Node:
		return p.element(ctx, v.el)
	case Selector:
		return p.Query(ctx, string(v))
	default:
		return nil, fmt.Errorf("jsdom: unsupported node handle %T", n)
	}
}

// Probe reports what the page exposes to scripts.
func (p *Page) Probe(ctx context.Context) (synth.Capabilities, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	release := p.guard(ctx)
	defer release()

	v, err := p.vm.RunString(probeScript)
	if err != nil {
		return synth.Capabilities{}, p.scriptError(ctx, "Probe", err)
	}
	obj := v.ToObject(p.vm)
	caps := synth.Capabilities{
		Engine:         schemas.EngineStandard,
		StandardEvents: obj.Get("standard").ToBoolean(),
		LegacyEvents:   obj.Get("legacy").ToBoolean(),
	}
	if obj.Get("trident").ToBoolean() {
		caps.Engine = schemas.EngineTrident
	}
	return caps, nil
}

// DispatchEvent builds the event through the page's own document.createEvent
// and dispatches it at target with target.dispatchEvent.
func (p *Page) DispatchEvent(ctx context.Context, target synth.Element, class schemas.EventClass, ev *schemas.NativeEvent) error {
	el, err := p.element(ctx, target)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	release := p.guard(ctx)
	defer release()

	doc := p.document.obj
	createEvent, ok := goja.AssertFunction(doc.Get("createEvent"))
	if !ok {
		return fmt.Errorf("jsdom: DispatchEvent: %w", synth.ErrNoEventSimulationSupport)
	}
	v, err := createEvent(doc, p.vm.ToValue(string(class)))
	if err != nil {
		if isDOMException(err, "NotSupportedError") {
			return fmt.Errorf("jsdom: %w: '%s'", synth.ErrUnsupportedEventClass, class)
		}
		return p.scriptError(ctx, "DispatchEvent", err)
	}
	evObj := v.ToObject(p.vm)

	if initEvent, ok := goja.AssertFunction(evObj.Get("initEvent")); ok {
		if _, err := initEvent(evObj, p.vm.ToValue(ev.Type), p.vm.ToValue(ev.Bubbles), p.vm.ToValue(ev.Cancelable)); err != nil {
			return p.scriptError(ctx, "DispatchEvent", err)
		}
	}
	p.applyFields(evObj, ev)

	dispatch, ok := goja.AssertFunction(el.obj.Get("dispatchEvent"))
	if !ok {
		return fmt.Errorf("jsdom: DispatchEvent: element '%s' is not an event target: %w", el.ref, synth.ErrNoEventSimulationSupport)
	}
	p.interrupted = nil
	if _, err := dispatch(el.obj, evObj); err != nil {
		return p.scriptError(ctx, "DispatchEvent", err)
	}
	return p.takeInterrupt(ctx)
}

// FireEvent delivers the event through createEventObject and target.fireEvent.
func (p *Page) FireEvent(ctx context.Context, target synth.Element, ev *schemas.NativeEvent) error {
	el, err := p.element(ctx, target)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	release := p.guard(ctx)
	defer release()

	doc := p.document.obj
	createEventObject, ok := goja.AssertFunction(doc.Get("createEventObject"))
	if !ok {
		return fmt.Errorf("jsdom: FireEvent: %w", synth.ErrNoEventSimulationSupport)
	}
	v, err := createEventObject(doc)
	if err != nil {
		return p.scriptError(ctx, "FireEvent", err)
	}
	evObj := v.ToObject(p.vm)
	_ = evObj.Set("bubbles", ev.Bubbles)
	_ = evObj.Set("cancelable", ev.Cancelable)
	p.applyFields(evObj, ev)

	fire, ok := goja.AssertFunction(el.obj.Get("fireEvent"))
	if !ok {
		return fmt.Errorf("jsdom: FireEvent: element '%s' has no fireEvent: %w", el.ref, synth.ErrNoEventSimulationSupport)
	}
	p.interrupted = nil
	if _, err := fire(el.obj, p.vm.ToValue("on"+ev.Type), evObj); err != nil {
		return p.scriptError(ctx, "FireEvent", err)
	}
	return p.takeInterrupt(ctx)
}

// applyFields copies the descriptor onto the event object. Unset codes are
// left undefined.
func (p *Page) applyFields(obj *goja.Object, ev *schemas.NativeEvent) {
	if ev.View == "window" {
		_ = obj.Set("view", p.window)
	}
	_ = obj.Set("ctrlKey", ev.Ctrl)
	_ = obj.Set("shiftKey", ev.Shift)
	_ = obj.Set("altKey", ev.Alt)
	_ = obj.Set("metaKey", ev.Meta)
	if ev.Button != nil {
		_ = obj.Set("button", *ev.Button)
	}
	if ev.KeyCode != nil {
		_ = obj.Set("keyCode", *ev.KeyCode)
	}
	if ev.CharCode != nil {
		_ = obj.Set("charCode", *ev.CharCode)
	}
}

func (p *Page) takeInterrupt(ctx context.Context) error {
	if p.interrupted == nil {
		return nil
	}
	p.interrupted = nil
	err := ctx.Err()
	if err == nil {
		err = context.Canceled
	}
	return fmt.Errorf("jsdom: dispatch interrupted: %w", err)
}

// isDOMException reports whether err is a script exception whose name is name.
func isDOMException(err error, name string) bool {
	ex, ok := err.(*goja.Exception)
	if !ok || ex.Value() == nil {
		return false
	}
	obj, ok := ex.Value().(*goja.Object)
	if !ok {
		return false
	}
	n := obj.Get("name")
	return n != nil && n.String() == name
}

var (
	_ synth.Host = (*Page)(nil)
)
