// internal/browser/jsdom/page.go
// Package jsdom is an in-process page host: an x/net/html document exposed to
// a goja runtime with enough of the DOM and event model for application
// scripts to register handlers and for synthetic input to reach them.
package jsdom

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/antchfx/htmlquery"
	"github.com/dop251/goja"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/net/html"

	"github.com/xkilldash9x/uxsim/api/schemas"
	"github.com/xkilldash9x/uxsim/internal/synth"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ClassKeyboardEvents is accepted by createEvent in standard mode alongside
// the synthesizer's classes.
const ClassKeyboardEvents schemas.EventClass = "KeyboardEvent"

// documentMode reported in trident mode.
const tridentDocumentMode = 8

var (
	standardUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) uxsim-jsdom"
	tridentUserAgent  = "Mozilla/4.0 (compatible; MSIE 8.0; Windows NT 6.1; Trident/4.0; uxsim-jsdom)"
)

// Page is a loaded document bound to its own JavaScript runtime.
// A goja runtime is not goroutine safe; mu serializes every entry point that
// touches the runtime or the node tree. Functions invoked from JavaScript run
// with mu already held.
type Page struct {
	mu       sync.Mutex
	vm       *goja.Runtime
	logger   *zap.Logger
	root     *html.Node
	window   *goja.Object
	document *eventTarget

	elements map[*html.Node]*Element
	nextRef  int

	engine   schemas.Engine
	standard bool
	legacy   bool
	classes  map[schemas.EventClass]bool

	// interrupted is set when a listener was stopped by context cancellation.
	interrupted error
}

type options struct {
	engine   schemas.Engine
	standard *bool
	legacy   *bool
	classes  []schemas.EventClass
}

// Option configures a Page.
type Option func(*options)

// WithEngine selects the event model the page imitates. The standard engine
// exposes document.createEvent; trident exposes document.createEventObject
// and element.fireEvent and reports a documentMode.
func WithEngine(engine schemas.Engine) Option {
	return func(o *options) { o.engine = engine }
}

// WithStandardEvents forces document.createEvent on or off regardless of engine.
func WithStandardEvents(enabled bool) Option {
	return func(o *options) { o.standard = &enabled }
}

// WithLegacyEvents forces document.createEventObject on or off regardless of engine.
func WithLegacyEvents(enabled bool) Option {
	return func(o *options) { o.legacy = &enabled }
}

// WithEventClasses restricts the classes document.createEvent accepts.
func WithEventClasses(classes ...schemas.EventClass) Option {
	return func(o *options) { o.classes = classes }
}

// New parses source and builds a page around it.
func New(source string, logger *zap.Logger, opts ...Option) (*Page, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := options{
		engine: schemas.EngineStandard,
		classes: []schemas.EventClass{
			schemas.ClassEvents, schemas.ClassUIEvents, schemas.ClassMouseEvents, ClassKeyboardEvents,
		},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if !o.engine.Valid() {
		return nil, fmt.Errorf("jsdom: unknown engine '%s'", o.engine)
	}

	root, err := html.Parse(strings.NewReader(source))
	if err != nil {
		return nil, fmt.Errorf("jsdom: failed to parse document: %w", err)
	}

	p := &Page{
		vm:       goja.New(),
		logger:   logger.Named("jsdom"),
		root:     root,
		elements: make(map[*html.Node]*Element),
		engine:   o.engine,
		standard: o.engine == schemas.EngineStandard,
		legacy:   o.engine == schemas.EngineTrident,
		classes:  make(map[schemas.EventClass]bool, len(o.classes)),
	}
	if o.standard != nil {
		p.standard = *o.standard
	}
	if o.legacy != nil {
		p.legacy = *o.legacy
	}
	for _, c := range o.classes {
		p.classes[c] = true
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.initRuntime(); err != nil {
		return nil, err
	}
	return p, nil
}

// initRuntime exposes window, document, navigator and console.
func (p *Page) initRuntime() error {
	p.window = p.vm.GlobalObject()
	p.document = newEventTarget(p.vm.NewObject(), nil)
	p.bindDocument()

	ua := standardUserAgent
	if p.engine == schemas.EngineTrident {
		ua = tridentUserAgent
	}
	navigator := p.vm.NewObject()
	if err := navigator.Set("userAgent", ua); err != nil {
		return fmt.Errorf("jsdom: failed to set navigator: %w", err)
	}

	globals := map[string]interface{}{
		"window":    p.window,
		"self":      p.window,
		"document":  p.document.obj,
		"navigator": navigator,
	}
	for name, v := range globals {
		if err := p.window.Set(name, v); err != nil {
			return fmt.Errorf("jsdom: failed to set '%s' global: %w", name, err)
		}
	}
	p.initConsole()
	return nil
}

// initConsole routes console output to the page logger.
func (p *Page) initConsole() {
	console := p.vm.NewObject()
	logFunc := func(level zapcore.Level) func(goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			args := make([]string, len(call.Arguments))
			for i, arg := range call.Arguments {
				args[i] = arg.String()
			}
			p.logger.Log(level, "[JS Console]", zap.String("message", strings.Join(args, " ")))
			return goja.Undefined()
		}
	}
	_ = console.Set("log", logFunc(zap.InfoLevel))
	_ = console.Set("info", logFunc(zap.InfoLevel))
	_ = console.Set("warn", logFunc(zap.WarnLevel))
	_ = console.Set("error", logFunc(zap.ErrorLevel))
	_ = console.Set("debug", logFunc(zap.DebugLevel))
	_ = p.window.Set("console", console)
}

// Engine returns the event model the page imitates.
func (p *Page) Engine() schemas.Engine {
	return p.engine
}

// Run evaluates an application script in the page. Cancelling ctx interrupts
// a running script.
func (p *Page) Run(ctx context.Context, script string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	release := p.guard(ctx)
	defer release()

	if _, err := p.vm.RunString(script); err != nil {
		return p.scriptError(ctx, "Run", err)
	}
	return nil
}

// Eval evaluates an expression and exports its result to Go.
func (p *Page) Eval(ctx context.Context, expr string) (interface{}, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	release := p.guard(ctx)
	defer release()

	v, err := p.vm.RunString(expr)
	if err != nil {
		return nil, p.scriptError(ctx, "Eval", err)
	}
	return v.Export(), nil
}

// Evaluate evaluates an expression and returns its value serialized as JSON,
// the way CDP returns values by value. Undefined becomes null.
func (p *Page) Evaluate(ctx context.Context, expr string) ([]byte, error) {
	v, err := p.Eval(ctx, expr)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("jsdom: Evaluate: failed to encode result: %w", err)
	}
	return b, nil
}

// guard interrupts the runtime when ctx is done. The returned func must be
// called once the runtime is idle again.
func (p *Page) guard(ctx context.Context) func() {
	done := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		select {
		case <-ctx.Done():
			p.vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()
	return func() {
		close(done)
		<-exited
		p.vm.ClearInterrupt()
	}
}

func (p *Page) scriptError(ctx context.Context, op string, err error) error {
	switch e := err.(type) {
	case *goja.InterruptedError:
		return fmt.Errorf("jsdom: %s: javascript execution interrupted by context: %w", op, ctx.Err())
	case *goja.Exception:
		return &ScriptError{Op: "jsdom: " + op, Message: e.Value().String(), Err: err}
	default:
		return fmt.Errorf("jsdom: %s: javascript error: %w", op, err)
	}
}

// Query returns the first element matching a CSS selector.
func (p *Page) Query(ctx context.Context, selector string) (*Element, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.query(p.root, selector)
}

// QueryAll returns every element matching a CSS selector in document order.
func (p *Page) QueryAll(ctx context.Context, selector string) ([]*Element, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queryAll(p.root, selector)
}

// QueryClass returns the elements carrying class in document order.
func (p *Page) QueryClass(ctx context.Context, class string) ([]synth.Element, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	nodes, err := htmlquery.QueryAll(p.root, "//*["+classPredicate(class)+"]")
	if err != nil {
		return nil, fmt.Errorf("jsdom: failed to query class '%s': %w", class, err)
	}
	els := make([]synth.Element, 0, len(nodes))
	for _, n := range nodes {
		els = append(els, p.wrap(n))
	}
	return els, nil
}

func (p *Page) query(scope *html.Node, selector string) (*Element, error) {
	xpath, err := p.scopedXPath(scope, selector)
	if err != nil {
		return nil, err
	}
	node, err := htmlquery.Query(scope, xpath)
	if err != nil {
		return nil, fmt.Errorf("jsdom: invalid selector '%s': %w", selector, err)
	}
	if node == nil {
		return nil, NewElementNotFoundError(selector)
	}
	return p.wrap(node), nil
}

func (p *Page) queryAll(scope *html.Node, selector string) ([]*Element, error) {
	xpath, err := p.scopedXPath(scope, selector)
	if err != nil {
		return nil, err
	}
	nodes, err := htmlquery.QueryAll(scope, xpath)
	if err != nil {
		return nil, fmt.Errorf("jsdom: invalid selector '%s': %w", selector, err)
	}
	els := make([]*Element, 0, len(nodes))
	for _, n := range nodes {
		els = append(els, p.wrap(n))
	}
	return els, nil
}

func (p *Page) scopedXPath(scope *html.Node, selector string) (string, error) {
	xpath, err := translateCSSToXPath(selector)
	if err != nil {
		return "", fmt.Errorf("jsdom: %w", err)
	}
	// Element scoped queries must stay relative to the element.
	if scope != p.root && strings.HasPrefix(xpath, "/") {
		xpath = "." + xpath
	}
	return xpath, nil
}

// wrap returns the cached element for n, creating it on first use so that
// JavaScript identity and registered listeners survive repeated lookups.
func (p *Page) wrap(n *html.Node) *Element {
	if el, ok := p.elements[n]; ok {
		return el
	}
	p.nextRef++
	el := newElement(p, n, fmt.Sprintf("node-%d", p.nextRef))
	p.elements[n] = el
	return el
}

// throw raises a DOMException-like error inside the running script.
func (p *Page) throw(name, message string) {
	errCtor := p.vm.Get("Error")
	obj, err := p.vm.New(errCtor, p.vm.ToValue(message))
	if err != nil {
		panic(p.vm.NewGoError(fmt.Errorf("%s: %s", name, message)))
	}
	_ = obj.Set("name", name)
	panic(obj)
}
