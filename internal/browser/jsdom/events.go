// internal/browser/jsdom/events.go
package jsdom

import (
	"github.com/dop251/goja"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// EventPhase is the phase of an event dispatch.
type EventPhase int

const (
	EventPhaseNone      EventPhase = 0
	EventPhaseCapturing EventPhase = 1
	EventPhaseAtTarget  EventPhase = 2
	EventPhaseBubbling  EventPhase = 3
)

const eventWrapperKey = "__go_event__"

type listener struct {
	fn      goja.Callable
	value   goja.Value
	capture bool
	once    bool
}

// eventTarget holds the listeners registered on one JS object, both the
// standard addEventListener kind and legacy attachEvent handlers.
type eventTarget struct {
	obj       *goja.Object
	el        *Element
	listeners map[string][]listener
	handlers  map[string][]listener
}

func newEventTarget(obj *goja.Object, el *Element) *eventTarget {
	return &eventTarget{
		obj:       obj,
		el:        el,
		listeners: make(map[string][]listener),
		handlers:  make(map[string][]listener),
	}
}

func addListener(set map[string][]listener, typ string, l listener) {
	for _, existing := range set[typ] {
		if existing.value.SameAs(l.value) && existing.capture == l.capture {
			return
		}
	}
	set[typ] = append(set[typ], l)
}

func removeListener(set map[string][]listener, typ string, value goja.Value, capture bool) {
	list := set[typ]
	for i, l := range list {
		if l.value.SameAs(value) && l.capture == capture {
			set[typ] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

// event is the Go side state of a standard event object.
type event struct {
	obj           *goja.Object
	stop          bool
	stopImmediate bool
}

// newEvent creates an uninitialized event as returned by createEvent.
func (p *Page) newEvent() *event {
	ev := &event{obj: p.vm.NewObject()}
	o := ev.obj

	_ = o.DefineDataProperty(eventWrapperKey, p.vm.ToValue(ev), goja.FLAG_FALSE, goja.FLAG_FALSE, goja.FLAG_FALSE)
	_ = o.Set("type", "")
	_ = o.Set("bubbles", false)
	_ = o.Set("cancelable", false)
	_ = o.Set("defaultPrevented", false)
	_ = o.Set("target", goja.Null())
	_ = o.Set("currentTarget", goja.Null())
	_ = o.Set("eventPhase", int(EventPhaseNone))
	_ = o.Set("isTrusted", false)

	initEvent := func(call goja.FunctionCall) goja.Value {
		_ = o.Set("type", call.Argument(0).String())
		_ = o.Set("bubbles", call.Argument(1).ToBoolean())
		_ = o.Set("cancelable", call.Argument(2).ToBoolean())
		return goja.Undefined()
	}
	_ = o.Set("initEvent", initEvent)
	_ = o.Set("initUIEvent", func(call goja.FunctionCall) goja.Value {
		initEvent(call)
		_ = o.Set("view", call.Argument(3))
		return goja.Undefined()
	})
	_ = o.Set("preventDefault", func(goja.FunctionCall) goja.Value {
		if o.Get("cancelable").ToBoolean() {
			_ = o.Set("defaultPrevented", true)
		}
		return goja.Undefined()
	})
	_ = o.Set("stopPropagation", func(goja.FunctionCall) goja.Value {
		ev.stop = true
		return goja.Undefined()
	})
	_ = o.Set("stopImmediatePropagation", func(goja.FunctionCall) goja.Value {
		ev.stop = true
		ev.stopImmediate = true
		return goja.Undefined()
	})
	return ev
}

// unwrapEvent recovers the Go state of an event object. Plain objects
// dispatched by scripts get fresh state.
func (p *Page) unwrapEvent(v goja.Value) *event {
	obj := v.ToObject(p.vm)
	if w := obj.Get(eventWrapperKey); w != nil && !goja.IsUndefined(w) {
		if ev, ok := w.Export().(*event); ok {
			return ev
		}
	}
	return &event{obj: obj}
}

// bindEventTarget installs addEventListener, removeEventListener and dispatchEvent.
func (p *Page) bindEventTarget(t *eventTarget) {
	_ = t.obj.Set("addEventListener", func(call goja.FunctionCall) goja.Value {
		fn, ok := goja.AssertFunction(call.Argument(1))
		if !ok {
			return goja.Undefined()
		}
		capture, once := listenerOptions(p.vm, call.Argument(2))
		addListener(t.listeners, call.Argument(0).String(), listener{
			fn: fn, value: call.Argument(1), capture: capture, once: once,
		})
		return goja.Undefined()
	})
	_ = t.obj.Set("removeEventListener", func(call goja.FunctionCall) goja.Value {
		capture, _ := listenerOptions(p.vm, call.Argument(2))
		removeListener(t.listeners, call.Argument(0).String(), call.Argument(1), capture)
		return goja.Undefined()
	})
	_ = t.obj.Set("dispatchEvent", func(call goja.FunctionCall) goja.Value {
		arg := call.Argument(0)
		if goja.IsUndefined(arg) || goja.IsNull(arg) {
			panic(p.vm.NewTypeError("dispatchEvent requires an event"))
		}
		return p.vm.ToValue(p.dispatch(t, p.unwrapEvent(arg)))
	})
}

func listenerOptions(vm *goja.Runtime, v goja.Value) (capture, once bool) {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return false, false
	}
	if obj, ok := v.(*goja.Object); ok {
		if c := obj.Get("capture"); c != nil {
			capture = c.ToBoolean()
		}
		if o := obj.Get("once"); o != nil {
			once = o.ToBoolean()
		}
		return capture, once
	}
	return v.ToBoolean(), false
}

// path returns target followed by its ancestors, ending with the document.
func (p *Page) path(target *eventTarget) []*eventTarget {
	path := []*eventTarget{target}
	if target == p.document {
		return path
	}
	if target.el != nil {
		for n := target.el.node.Parent; n != nil; n = n.Parent {
			if n.Type == html.ElementNode {
				path = append(path, p.wrap(n).eventTarget)
			}
		}
	}
	return append(path, p.document)
}

// dispatch runs the capture, at-target and bubble phases and reports
// whether the default action was not prevented.
func (p *Page) dispatch(target *eventTarget, ev *event) bool {
	typ := ev.obj.Get("type").String()
	path := p.path(target)
	_ = ev.obj.Set("target", target.obj)
	_ = ev.obj.Set("srcElement", target.obj)

	for i := len(path) - 1; i > 0 && !ev.stop; i-- {
		p.invoke(path[i], typ, ev, EventPhaseCapturing)
	}
	if !ev.stop {
		p.invoke(target, typ, ev, EventPhaseAtTarget)
	}
	if ev.obj.Get("bubbles").ToBoolean() {
		for i := 1; i < len(path) && !ev.stop; i++ {
			p.invoke(path[i], typ, ev, EventPhaseBubbling)
		}
	}

	_ = ev.obj.Set("eventPhase", int(EventPhaseNone))
	_ = ev.obj.Set("currentTarget", goja.Null())
	return !ev.obj.Get("defaultPrevented").ToBoolean()
}

func (p *Page) invoke(t *eventTarget, typ string, ev *event, phase EventPhase) {
	list := append([]listener(nil), t.listeners[typ]...)
	if len(list) == 0 {
		return
	}
	_ = ev.obj.Set("currentTarget", t.obj)
	_ = ev.obj.Set("eventPhase", int(phase))

	for _, l := range list {
		if phase == EventPhaseCapturing && !l.capture {
			continue
		}
		if phase == EventPhaseBubbling && l.capture {
			continue
		}
		if l.once {
			removeListener(t.listeners, typ, l.value, l.capture)
		}
		if _, err := l.fn(t.obj, ev.obj); err != nil {
			if p.abort(err) {
				ev.stop, ev.stopImmediate = true, true
				return
			}
			p.logger.Warn("Event listener threw.", zap.String("type", typ), zap.Error(err))
		}
		if ev.stopImmediate {
			return
		}
	}
}

// bindLegacyEventTarget installs attachEvent, detachEvent and fireEvent.
func (p *Page) bindLegacyEventTarget(t *eventTarget) {
	_ = t.obj.Set("attachEvent", func(call goja.FunctionCall) goja.Value {
		fn, ok := goja.AssertFunction(call.Argument(1))
		if !ok {
			return p.vm.ToValue(false)
		}
		addListener(t.handlers, call.Argument(0).String(), listener{fn: fn, value: call.Argument(1)})
		return p.vm.ToValue(true)
	})
	_ = t.obj.Set("detachEvent", func(call goja.FunctionCall) goja.Value {
		removeListener(t.handlers, call.Argument(0).String(), call.Argument(1), false)
		return goja.Undefined()
	})
	_ = t.obj.Set("fireEvent", func(call goja.FunctionCall) goja.Value {
		name := call.Argument(0).String()
		var evObj *goja.Object
		if arg := call.Argument(1); arg != nil && !goja.IsUndefined(arg) && !goja.IsNull(arg) {
			evObj = arg.ToObject(p.vm)
		} else {
			evObj = p.jsCreateEventObject(goja.FunctionCall{}).ToObject(p.vm)
		}
		return p.vm.ToValue(p.fire(t, name, evObj))
	})
}

// fire delivers a legacy event to attachEvent handlers, bubbling until a
// handler sets cancelBubble. It reports whether returnValue was not false.
func (p *Page) fire(target *eventTarget, name string, ev *goja.Object) bool {
	typ := name
	if len(typ) > 2 && typ[:2] == "on" {
		typ = typ[2:]
	}
	_ = ev.Set("type", typ)
	_ = ev.Set("srcElement", target.obj)
	_ = p.window.Set("event", ev)
	defer func() { _ = p.window.Set("event", goja.Undefined()) }()

	for _, t := range p.path(target) {
		for _, h := range append([]listener(nil), t.handlers[name]...) {
			if _, err := h.fn(p.window, ev); err != nil {
				if p.abort(err) {
					return false
				}
				p.logger.Warn("Event handler threw.", zap.String("type", typ), zap.Error(err))
			}
		}
		if ev.Get("cancelBubble").ToBoolean() {
			break
		}
	}
	rv := ev.Get("returnValue")
	return rv == nil || !rv.StrictEquals(p.vm.ToValue(false))
}

// abort records an interruption raised inside a listener so the host call
// that started the dispatch can report it. Listener exceptions do not abort.
func (p *Page) abort(err error) bool {
	if ie, ok := err.(*goja.InterruptedError); ok {
		if p.interrupted == nil {
			p.interrupted = ie
		}
		return true
	}
	return false
}
