// internal/browser/jsdom/element.go
package jsdom

import (
	"context"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/dop251/goja"
	"golang.org/x/net/html"

	"github.com/xkilldash9x/uxsim/internal/synth"
)

// Selector is a raw node handle given as a CSS selector. The page resolves
// it when the handle is wrapped.
type Selector string

func (s Selector) NodeRef() string { return string(s) }

// Node is the raw handle of an element already resolved by its page.
type Node struct {
	el *Element
}

func (n Node) NodeRef() string { return n.el.ref }

// Element wraps one element node of a page. Its JavaScript object is created
// once and reused, so listeners and script-set properties persist.
type Element struct {
	*eventTarget
	page  *Page
	node  *html.Node
	ref   string
	value string
}

func newElement(p *Page, n *html.Node, ref string) *Element {
	el := &Element{page: p, node: n, ref: ref, value: initialValue(n)}
	el.eventTarget = newEventTarget(p.vm.NewObject(), el)
	el.bind()
	return el
}

// initialValue mirrors how browsers seed the value property: from the value
// attribute, or from the text of a textarea.
func initialValue(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "textarea" {
		return htmlquery.InnerText(n)
	}
	return attr(n, "value")
}

func attr(n *html.Node, name string) string {
	v, _ := lookupAttr(n, name)
	return v
}

func lookupAttr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, name, value string) {
	for i, a := range n.Attr {
		if a.Key == name {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}

func (e *Element) bind() {
	p, o, n := e.page, e.obj, e.node

	_ = o.Set("nodeType", 1)
	_ = o.Set("nodeName", strings.ToUpper(n.Data))
	_ = o.Set("tagName", strings.ToUpper(n.Data))

	p.defineAccessor(o, "id",
		func() goja.Value { return p.vm.ToValue(attr(n, "id")) },
		func(v goja.Value) { setAttr(n, "id", v.String()) })
	p.defineAccessor(o, "className",
		func() goja.Value { return p.vm.ToValue(attr(n, "class")) },
		func(v goja.Value) { setAttr(n, "class", v.String()) })
	p.defineAccessor(o, "value",
		func() goja.Value { return p.vm.ToValue(e.value) },
		func(v goja.Value) { e.value = v.String() })
	p.defineGetter(o, "parentNode", func() goja.Value {
		if n.Parent == nil || n.Parent.Type != html.ElementNode {
			return goja.Null()
		}
		return p.wrap(n.Parent).obj
	})
	p.defineGetter(o, "textContent", func() goja.Value {
		return p.vm.ToValue(htmlquery.InnerText(n))
	})

	_ = o.Set("getAttribute", func(call goja.FunctionCall) goja.Value {
		if v, ok := lookupAttr(n, call.Argument(0).String()); ok {
			return p.vm.ToValue(v)
		}
		return goja.Null()
	})
	_ = o.Set("setAttribute", func(call goja.FunctionCall) goja.Value {
		setAttr(n, call.Argument(0).String(), call.Argument(1).String())
		return goja.Undefined()
	})
	_ = o.Set("hasAttribute", func(call goja.FunctionCall) goja.Value {
		_, ok := lookupAttr(n, call.Argument(0).String())
		return p.vm.ToValue(ok)
	})
	_ = o.Set("removeAttribute", func(call goja.FunctionCall) goja.Value {
		name := call.Argument(0).String()
		for i, a := range n.Attr {
			if a.Key == name {
				n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
				break
			}
		}
		return goja.Undefined()
	})
	_ = o.Set("querySelector", func(call goja.FunctionCall) goja.Value {
		return p.jsQuery(n, call.Argument(0).String())
	})
	_ = o.Set("querySelectorAll", func(call goja.FunctionCall) goja.Value {
		return p.jsQueryAll(n, call.Argument(0).String())
	})
	_ = o.Set("getElementsByClassName", func(call goja.FunctionCall) goja.Value {
		return p.wrapList(htmlquery.Find(n, ".//*["+classPredicate(call.Argument(0).String())+"]"))
	})

	if p.standard {
		p.bindEventTarget(e.eventTarget)
	}
	if p.legacy {
		p.bindLegacyEventTarget(e.eventTarget)
	}
}

// NodeRef identifies the element within its page.
func (e *Element) NodeRef() string { return e.ref }

// Dom returns the raw handle of the element.
func (e *Element) Dom() synth.Node { return Node{el: e} }

// TagName returns the lower case tag name.
func (e *Element) TagName() string { return e.node.Data }

func (e *Element) Attribute(_ context.Context, name string) (string, bool, error) {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	v, ok := lookupAttr(e.node, name)
	return v, ok, nil
}

func (e *Element) Value(context.Context) (string, error) {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	return e.value, nil
}

func (e *Element) SetValue(_ context.Context, value string) error {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	e.value = value
	return nil
}

var (
	_ synth.Element = (*Element)(nil)
	_ synth.Node    = Node{}
	_ synth.Node    = Selector("")
)
