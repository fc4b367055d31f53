// internal/browser/jsdom/document.go
package jsdom

import (
	"fmt"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/dop251/goja"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/xkilldash9x/uxsim/api/schemas"
)

// bindDocument defines the document object. Event construction APIs depend
// on the page's engine mode.
func (p *Page) bindDocument() {
	d := p.document.obj

	_ = d.Set("querySelector", func(call goja.FunctionCall) goja.Value {
		return p.jsQuery(p.root, call.Argument(0).String())
	})
	_ = d.Set("querySelectorAll", func(call goja.FunctionCall) goja.Value {
		return p.jsQueryAll(p.root, call.Argument(0).String())
	})
	_ = d.Set("getElementById", func(call goja.FunctionCall) goja.Value {
		node := htmlquery.FindOne(p.root, "//*[@id="+xpathLiteral(call.Argument(0).String())+"]")
		if node == nil {
			return goja.Null()
		}
		return p.wrap(node).obj
	})
	_ = d.Set("getElementsByClassName", func(call goja.FunctionCall) goja.Value {
		return p.wrapList(htmlquery.Find(p.root, "//*["+classPredicate(call.Argument(0).String())+"]"))
	})
	_ = d.Set("getElementsByTagName", func(call goja.FunctionCall) goja.Value {
		return p.wrapList(htmlquery.Find(p.root, "//"+strings.ToLower(call.Argument(0).String())))
	})
	p.defineGetter(d, "body", func() goja.Value {
		if body := htmlquery.FindOne(p.root, "//body"); body != nil {
			return p.wrap(body).obj
		}
		return goja.Null()
	})

	if p.standard {
		p.bindEventTarget(p.document)
		_ = d.Set("createEvent", p.jsCreateEvent)
	}
	if p.legacy {
		p.bindLegacyEventTarget(p.document)
		_ = d.Set("createEventObject", p.jsCreateEventObject)
	}
	if p.engine == schemas.EngineTrident {
		_ = d.Set("documentMode", tridentDocumentMode)
	}
}

func (p *Page) jsQuery(scope *html.Node, selector string) goja.Value {
	el, err := p.query(scope, selector)
	if err != nil {
		if _, notFound := err.(*ElementNotFoundError); notFound {
			return goja.Null()
		}
		p.throw("SyntaxError", err.Error())
	}
	return el.obj
}

func (p *Page) jsQueryAll(scope *html.Node, selector string) goja.Value {
	els, err := p.queryAll(scope, selector)
	if err != nil {
		p.throw("SyntaxError", err.Error())
	}
	items := make([]interface{}, len(els))
	for i, el := range els {
		items[i] = el.obj
	}
	return p.vm.NewArray(items...)
}

func (p *Page) wrapList(nodes []*html.Node) goja.Value {
	items := make([]interface{}, len(nodes))
	for i, n := range nodes {
		items[i] = p.wrap(n).obj
	}
	return p.vm.NewArray(items...)
}

// jsCreateEvent implements document.createEvent(class).
func (p *Page) jsCreateEvent(call goja.FunctionCall) goja.Value {
	class := schemas.EventClass(call.Argument(0).String())
	if !p.classes[class] {
		p.throw("NotSupportedError", fmt.Sprintf("the event class '%s' is not supported", class))
	}
	return p.newEvent().obj
}

// jsCreateEventObject implements the legacy document.createEventObject().
func (p *Page) jsCreateEventObject(call goja.FunctionCall) goja.Value {
	ev := p.vm.NewObject()
	_ = ev.Set("cancelBubble", false)
	_ = ev.Set("returnValue", goja.Undefined())
	_ = ev.Set("srcElement", goja.Null())
	_ = ev.Set("type", "")
	return ev
}

func (p *Page) defineGetter(obj *goja.Object, name string, getter func() goja.Value) {
	fn := p.vm.ToValue(func(goja.FunctionCall) goja.Value { return getter() })
	if err := obj.DefineAccessorProperty(name, fn, nil, goja.FLAG_FALSE, goja.FLAG_TRUE); err != nil {
		p.logger.Error("Failed to define getter", zap.String("property", name), zap.Error(err))
	}
}

func (p *Page) defineAccessor(obj *goja.Object, name string, getter func() goja.Value, setter func(goja.Value)) {
	get := p.vm.ToValue(func(goja.FunctionCall) goja.Value { return getter() })
	set := p.vm.ToValue(func(call goja.FunctionCall) goja.Value {
		setter(call.Argument(0))
		return goja.Undefined()
	})
	if err := obj.DefineAccessorProperty(name, get, set, goja.FLAG_FALSE, goja.FLAG_TRUE); err != nil {
		p.logger.Error("Failed to define accessor", zap.String("property", name), zap.Error(err))
	}
}
