// internal/browser/cdp/host.go
package cdp

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/uxsim/api/schemas"
	"github.com/xkilldash9x/uxsim/internal/synth"
)

// Selector is a raw node handle: a CSS selector evaluated in the page.
type Selector string

func (s Selector) NodeRef() string { return string(s) }

// idSelector addresses an element by its id attribute.
func idSelector(id string) Selector {
	return Selector(`[id="` + strings.ReplaceAll(id, `"`, `\"`) + `"]`)
}

// Element is an element of a page addressed by selector. It holds no remote
// object, so it stays valid across re-renders that keep the selector.
type Element struct {
	page     *Page
	selector Selector
}

func (e *Element) NodeRef() string { return string(e.selector) }

// Dom returns the selector handle.
func (e *Element) Dom() synth.Node { return e.selector }

// Selector returns the selector the element is addressed by.
func (e *Element) Selector() string { return string(e.selector) }

const jsAttribute = `function (sel, name) {
	var el = document.querySelector(sel);
	if (!el) { return { status: 'missing' }; }
	var v = el.getAttribute(name);
	return { status: 'ok', found: v !== null && v !== undefined, value: v === null || v === undefined ? '' : String(v) };
}`

const jsValue = `function (sel, set, value) {
	var el = document.querySelector(sel);
	if (!el) { return { status: 'missing' }; }
	if (set) { el.value = value; }
	return { status: 'ok', value: el.value === undefined || el.value === null ? '' : String(el.value) };
}`

type valueResult struct {
	Status string `json:"status"`
	Found  bool   `json:"found"`
	Value  string `json:"value"`
}

func (e *Element) Attribute(ctx context.Context, name string) (string, bool, error) {
	var res valueResult
	if err := e.page.call(ctx, "Attribute", jsAttribute, &res, string(e.selector), name); err != nil {
		return "", false, err
	}
	if res.Status == statusMissing {
		return "", false, &ElementNotFoundError{Selector: string(e.selector)}
	}
	return res.Value, res.Found, nil
}

func (e *Element) Value(ctx context.Context) (string, error) {
	var res valueResult
	if err := e.page.call(ctx, "Value", jsValue, &res, string(e.selector), false, ""); err != nil {
		return "", err
	}
	if res.Status == statusMissing {
		return "", &ElementNotFoundError{Selector: string(e.selector)}
	}
	return res.Value, nil
}

func (e *Element) SetValue(ctx context.Context, value string) error {
	var res valueResult
	if err := e.page.call(ctx, "SetValue", jsValue, &res, string(e.selector), true, value); err != nil {
		return err
	}
	if res.Status == statusMissing {
		return &ElementNotFoundError{Selector: string(e.selector)}
	}
	return nil
}

// Dispatcher statuses.
const (
	statusOK          = "ok"
	statusMissing     = "missing"
	statusUnsupported = "unsupported"
	statusNoSupport   = "nosupport"
	statusNone        = "none"
)

const jsExists = `function (sel) {
	return { status: document.querySelector(sel) ? 'ok' : 'missing' };
}`

// Wrap resolves a raw handle into an element of this page after checking the
// selector matches.
func (p *Page) Wrap(ctx context.Context, n synth.Node) (synth.Element, error) {
	var sel Selector
	switch v := n.(type) {
	case nil:
		return nil, synth.ErrInvalidTarget
	case *Element:
		if v == nil {
			return nil, synth.ErrInvalidTarget
		}
		if v.page != p {
			return nil, fmt.Errorf("cdp: element '%s' belongs to another page", v.selector)
		}
		return v, nil
	case Selector:
		sel = v
	default:
		return nil, fmt.Errorf("cdp: unsupported node handle %T", n)
	}

	var res dispatchResult
	if err := p.call(ctx, "Wrap", jsExists, &res, string(sel)); err != nil {
		return nil, err
	}
	if res.Status != statusOK {
		return nil, &ElementNotFoundError{Selector: string(sel)}
	}
	return &Element{page: p, selector: sel}, nil
}

// jsProbe detects the event APIs and engine the same way page code does.
const jsProbe = `function () {
	return {
		standard: typeof document.createEvent === 'function',
		legacy: typeof document.createEventObject !== 'undefined',
		trident: !!document.documentMode || /Trident|MSIE/.test(navigator.userAgent)
	};
}`

// Probe reports the engine and event APIs of the loaded page.
func (p *Page) Probe(ctx context.Context) (synth.Capabilities, error) {
	var res struct {
		Standard bool `json:"standard"`
		Legacy   bool `json:"legacy"`
		Trident  bool `json:"trident"`
	}
	if err := p.call(ctx, "Probe", jsProbe, &res); err != nil {
		return synth.Capabilities{}, err
	}
	caps := synth.Capabilities{
		Engine:         schemas.EngineStandard,
		StandardEvents: res.Standard,
		LegacyEvents:   res.Legacy,
	}
	if res.Trident {
		caps.Engine = schemas.EngineTrident
	}
	return caps, nil
}

// jsApplyFields copies a descriptor onto an event object. Own properties
// shadow the read-only accessors of native event prototypes; engines that
// refuse defineProperty on plain objects get an assignment instead.
const jsApplyFields = `
	var put = function (name, value) {
		try {
			Object.defineProperty(ev, name, { value: value, configurable: true, enumerable: true, writable: true });
		} catch (e) {
			ev[name] = value;
		}
	};
	if (d.view === 'window') { put('view', window); }
	put('ctrlKey', !!d.ctrlKey);
	put('shiftKey', !!d.shiftKey);
	put('altKey', !!d.altKey);
	put('metaKey', !!d.metaKey);
	if (d.button !== undefined) { put('button', d.button); }
	if (d.keyCode !== undefined) { put('keyCode', d.keyCode); }
	if (d.charCode !== undefined) { put('charCode', d.charCode); }
`

const jsDispatchEvent = `function (sel, cls, d) {
	var el = document.querySelector(sel);
	if (!el) { return { status: 'missing' }; }
	if (typeof document.createEvent !== 'function' || typeof el.dispatchEvent !== 'function') { return { status: 'nosupport' }; }
	var ev;
	try {
		ev = document.createEvent(cls);
	} catch (e) {
		return { status: 'unsupported', message: String(e) };
	}
	ev.initEvent(d.type, d.bubbles, d.cancelable);
` + jsApplyFields + `
	return { status: 'ok', notPrevented: el.dispatchEvent(ev) };
}`

const jsFireEvent = `function (sel, d) {
	var el = document.querySelector(sel);
	if (!el) { return { status: 'missing' }; }
	if (typeof document.createEventObject === 'undefined' || !el.fireEvent) { return { status: 'nosupport' }; }
	var ev = document.createEventObject();
	ev.bubbles = d.bubbles;
	ev.cancelable = d.cancelable;
` + jsApplyFields + `
	return { status: 'ok', notPrevented: el.fireEvent('on' + d.type, ev) };
}`

type dispatchResult struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	NotPrevented bool   `json:"notPrevented"`
}

// DispatchEvent creates the event with the page's document.createEvent and
// dispatches it at target.
func (p *Page) DispatchEvent(ctx context.Context, target synth.Element, class schemas.EventClass, ev *schemas.NativeEvent) error {
	el, err := p.element(target)
	if err != nil {
		return err
	}
	var res dispatchResult
	if err := p.call(ctx, "DispatchEvent", jsDispatchEvent, &res, string(el.selector), string(class), ev); err != nil {
		return err
	}
	return p.dispatchStatus("DispatchEvent", el, class, ev, res)
}

// FireEvent delivers the event through createEventObject and fireEvent.
func (p *Page) FireEvent(ctx context.Context, target synth.Element, ev *schemas.NativeEvent) error {
	el, err := p.element(target)
	if err != nil {
		return err
	}
	var res dispatchResult
	if err := p.call(ctx, "FireEvent", jsFireEvent, &res, string(el.selector), ev); err != nil {
		return err
	}
	return p.dispatchStatus("FireEvent", el, "", ev, res)
}

func (p *Page) element(target synth.Element) (*Element, error) {
	el, ok := target.(*Element)
	if !ok || el == nil {
		return nil, fmt.Errorf("cdp: %w: %T is not an element of this host", synth.ErrInvalidTarget, target)
	}
	if el.page != p {
		return nil, fmt.Errorf("cdp: element '%s' belongs to another page", el.selector)
	}
	return el, nil
}

func (p *Page) dispatchStatus(op string, el *Element, class schemas.EventClass, ev *schemas.NativeEvent, res dispatchResult) error {
	switch res.Status {
	case statusOK:
		p.logger.Debug("Event delivered.",
			zap.String("op", op),
			zap.String("id", ev.ID),
			zap.String("type", ev.Type),
			zap.String("selector", string(el.selector)),
			zap.Bool("not_prevented", res.NotPrevented))
		return nil
	case statusMissing:
		return &ElementNotFoundError{Selector: string(el.selector)}
	case statusUnsupported:
		return fmt.Errorf("cdp: %w: '%s' (%s)", synth.ErrUnsupportedEventClass, class, res.Message)
	case statusNoSupport:
		return fmt.Errorf("cdp: %s: %w", op, synth.ErrNoEventSimulationSupport)
	default:
		return fmt.Errorf("cdp: %s: unexpected dispatcher status '%s'", op, res.Status)
	}
}

const jsQueryClass = `function (cls) {
	var els = document.getElementsByClassName(cls);
	var refs = [];
	window.__uxsimRefSeq = window.__uxsimRefSeq || 0;
	for (var i = 0; i < els.length; i++) {
		var ref = els[i].getAttribute('data-uxsim-ref');
		if (!ref) {
			window.__uxsimRefSeq++;
			ref = 'r' + window.__uxsimRefSeq;
			els[i].setAttribute('data-uxsim-ref', ref);
		}
		refs.push(ref);
	}
	return { status: 'ok', refs: refs };
}`

// QueryClass returns the elements carrying class in document order. Each
// element is tagged with a stable data-uxsim-ref attribute to address it.
func (p *Page) QueryClass(ctx context.Context, class string) ([]synth.Element, error) {
	var res struct {
		Refs []string `json:"refs"`
	}
	if err := p.call(ctx, "QueryClass", jsQueryClass, &res, class); err != nil {
		return nil, err
	}
	els := make([]synth.Element, 0, len(res.Refs))
	for _, ref := range res.Refs {
		els = append(els, &Element{page: p, selector: Selector(`[data-uxsim-ref="` + ref + `"]`)})
	}
	return els, nil
}

var (
	_ synth.Host    = (*Page)(nil)
	_ synth.Element = (*Element)(nil)
	_ synth.Node    = Selector("")
)
