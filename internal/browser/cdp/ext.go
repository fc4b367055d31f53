// internal/browser/cdp/ext.go
package cdp

import (
	"context"
	"fmt"

	"github.com/xkilldash9x/uxsim/internal/synth"
	"github.com/xkilldash9x/uxsim/internal/widget"
)

// jsComponentInfo reads the capability flags of an Ext JS component.
// Ext radios are checkboxes by xtype, so a radio is never reported as both.
const jsComponentInfo = `function (id) {
	var Ext = window.Ext;
	if (!Ext || typeof Ext.getCmp !== 'function') { return { status: 'noext' }; }
	var c = Ext.getCmp(id);
	if (!c) { return { status: 'missing' }; }
	var is = function (x) { return typeof c.isXType === 'function' && !!c.isXType(x); };
	return {
		status: 'ok',
		id: String(c.id || id),
		button: is('button'),
		checkbox: is('checkbox') && !is('radio'),
		radio: is('radio'),
		field: is('field') || is('textfield'),
		messageBox: is('messagebox') || c === Ext.Msg || c === Ext.MessageBox
	};
}`

// jsComponentEl returns the id of a component's root or input element,
// assigning one when the element has none.
const jsComponentEl = `function (id, part) {
	var c = window.Ext && Ext.getCmp(id);
	if (!c) { return { status: 'missing' }; }
	if (!c.rendered) { return { status: 'unrendered', rendered: false }; }
	var el = part === 'input' ? (c.inputEl || c.el) : (c.el || (typeof c.getEl === 'function' ? c.getEl() : null));
	var dom = el && (el.dom || el);
	if (!dom || typeof dom.getAttribute !== 'function') { return { status: 'none', rendered: true }; }
	if (!dom.id) {
		window.__uxsimRefSeq = (window.__uxsimRefSeq || 0) + 1;
		dom.id = 'uxsim-el-' + window.__uxsimRefSeq;
	}
	return { status: 'ok', rendered: true, value: String(dom.id) };
}`

// jsMessageBox reads or drives an Ext message box.
const jsMessageBox = `function (id, op, arg) {
	var c = window.Ext && Ext.getCmp(id);
	if (!c) { return { status: 'missing' }; }
	var ref = function (cmp) { return cmp ? { status: 'ok', value: String(cmp.id) } : { status: 'none' }; };
	switch (op) {
	case 'title':
		return { status: 'ok', value: c.title === undefined || c.title === null ? '' : String(c.title) };
	case 'message':
		var m = c.msg;
		var text = m && typeof m.getValue === 'function' ? m.getValue() : (m && m.html);
		return { status: 'ok', value: text === undefined || text === null ? '' : String(text) };
	case 'close':
		if (typeof c.close === 'function') { c.close(); } else if (typeof c.hide === 'function') { c.hide(); }
		return { status: 'ok' };
	case 'button':
		return ref(c.msgButtons && c.msgButtons[arg]);
	case 'multiline':
		return { status: 'ok', flag: !!c.multiline };
	case 'textField':
		return ref(c.textField);
	case 'textArea':
		return ref(c.textArea);
	}
	return { status: 'unknown' };
}`

type componentResult struct {
	Status     string `json:"status"`
	ID         string `json:"id"`
	Button     bool   `json:"button"`
	Checkbox   bool   `json:"checkbox"`
	Radio      bool   `json:"radio"`
	Field      bool   `json:"field"`
	MessageBox bool   `json:"messageBox"`
	Rendered   bool   `json:"rendered"`
	Value      string `json:"value"`
	Flag       bool   `json:"flag"`
}

// Component looks up an Ext JS component by id and returns the adapter for
// its capabilities: widget.Button, widget.Checkbox, widget.Radio,
// widget.FormField, widget.MessageBox or a plain widget.Component.
func (p *Page) Component(ctx context.Context, id string) (widget.Component, error) {
	var res componentResult
	if err := p.call(ctx, "Component", jsComponentInfo, &res, id); err != nil {
		return nil, err
	}
	switch res.Status {
	case statusOK:
	case "noext":
		return nil, fmt.Errorf("cdp: component '%s': %w", id, ErrExtNotLoaded)
	default:
		return nil, &ComponentNotFoundError{ID: id}
	}

	base := component{page: p, id: res.ID}
	switch {
	case res.MessageBox:
		return &messageBox{base}, nil
	case res.Button:
		return &button{base}, nil
	case res.Radio && res.Field:
		return &radioField{radio{inputComponent{base}}}, nil
	case res.Radio:
		return &radio{inputComponent{base}}, nil
	case res.Checkbox && res.Field:
		return &checkboxField{checkbox{inputComponent{base}}}, nil
	case res.Checkbox:
		return &checkbox{inputComponent{base}}, nil
	case res.Field:
		return &field{inputComponent{base}}, nil
	default:
		return &base, nil
	}
}

// Lookup returns the message box registered under id.
func (p *Page) Lookup(ctx context.Context, id string) (widget.MessageBox, bool, error) {
	c, err := p.Component(ctx, id)
	if err != nil {
		if _, ok := err.(*ComponentNotFoundError); ok {
			return nil, false, nil
		}
		return nil, false, err
	}
	mb, ok := c.(widget.MessageBox)
	return mb, ok, nil
}

type component struct {
	page *Page
	id   string
}

func (c *component) ID() string { return c.id }

func (c *component) Rendered(ctx context.Context) (bool, error) {
	var res componentResult
	if err := c.page.call(ctx, "Rendered", jsComponentEl, &res, c.id, "root"); err != nil {
		return false, err
	}
	if res.Status == statusMissing {
		return false, &ComponentNotFoundError{ID: c.id}
	}
	return res.Rendered, nil
}

func (c *component) El(ctx context.Context) (synth.Element, error) {
	return c.element(ctx, "root")
}

func (c *component) element(ctx context.Context, part string) (synth.Element, error) {
	var res componentResult
	if err := c.page.call(ctx, "El", jsComponentEl, &res, c.id, part); err != nil {
		return nil, err
	}
	switch res.Status {
	case statusOK:
		return &Element{page: c.page, selector: idSelector(res.Value)}, nil
	case statusMissing:
		return nil, &ComponentNotFoundError{ID: c.id}
	default:
		return nil, fmt.Errorf("cdp: component '%s' has no %s element (%s)", c.id, part, res.Status)
	}
}

type button struct{ component }

func (*button) IsButton() {}

type inputComponent struct{ component }

func (c *inputComponent) InputEl(ctx context.Context) (synth.Element, error) {
	return c.element(ctx, "input")
}

type checkbox struct{ inputComponent }

func (*checkbox) IsCheckbox() {}

type radio struct{ inputComponent }

func (*radio) IsRadio() {}

// Ext check boxes and radios are form fields too and accept typed input.
type checkboxField struct{ checkbox }

func (*checkboxField) IsFormField() {}

type radioField struct{ radio }

func (*radioField) IsFormField() {}

type field struct{ inputComponent }

func (*field) IsFormField() {}

type messageBox struct{ component }

func (m *messageBox) op(ctx context.Context, op, arg string) (componentResult, error) {
	var res componentResult
	if err := m.page.call(ctx, "MessageBox."+op, jsMessageBox, &res, m.id, op, arg); err != nil {
		return res, err
	}
	if res.Status == statusMissing {
		return res, &ComponentNotFoundError{ID: m.id}
	}
	return res, nil
}

func (m *messageBox) Title(ctx context.Context) (string, error) {
	res, err := m.op(ctx, "title", "")
	return res.Value, err
}

func (m *messageBox) Message(ctx context.Context) (string, error) {
	res, err := m.op(ctx, "message", "")
	return res.Value, err
}

func (m *messageBox) Close(ctx context.Context) error {
	_, err := m.op(ctx, "close", "")
	return err
}

func (m *messageBox) MsgButton(ctx context.Context, name string) (widget.Component, bool, error) {
	res, err := m.op(ctx, "button", name)
	if err != nil || res.Status != statusOK {
		return nil, false, err
	}
	c, err := m.page.Component(ctx, res.Value)
	if err != nil {
		return nil, false, err
	}
	return c, true, nil
}

func (m *messageBox) Multiline(ctx context.Context) (bool, error) {
	res, err := m.op(ctx, "multiline", "")
	return res.Flag, err
}

func (m *messageBox) TextField(ctx context.Context) (widget.Component, error) {
	return m.child(ctx, "textField")
}

func (m *messageBox) TextArea(ctx context.Context) (widget.Component, error) {
	return m.child(ctx, "textArea")
}

func (m *messageBox) child(ctx context.Context, op string) (widget.Component, error) {
	res, err := m.op(ctx, op, "")
	if err != nil {
		return nil, err
	}
	if res.Status != statusOK {
		return nil, fmt.Errorf("cdp: message box '%s' has no %s", m.id, op)
	}
	return m.page.Component(ctx, res.Value)
}

var (
	_ widget.Button     = (*button)(nil)
	_ widget.Checkbox   = (*checkbox)(nil)
	_ widget.Radio      = (*radio)(nil)
	_ widget.FormField  = (*field)(nil)
	_ widget.FormField  = (*checkboxField)(nil)
	_ widget.FormField  = (*radioField)(nil)
	_ widget.MessageBox = (*messageBox)(nil)
)
