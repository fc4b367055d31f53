// internal/browser/cdp/page.go
package cdp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	defaultOperationTimeout  = 10 * time.Second
	defaultNavigationTimeout = 30 * time.Second
	readyPollInterval        = 100 * time.Millisecond
)

// ActionRunner executes chromedp actions against a browser tab.
type ActionRunner func(ctx context.Context, actions ...chromedp.Action) error

// EvalFunc evaluates a JavaScript expression in the page and returns its
// result serialized as JSON.
type EvalFunc func(ctx context.Context, expression string) ([]byte, error)

// Page is a browser tab seen through CDP.
type Page struct {
	run        ActionRunner
	eval       EvalFunc
	logger     *zap.Logger
	timeout    time.Duration
	navTimeout time.Duration
}

// PageOption configures a Page.
type PageOption func(*Page)

// WithOperationTimeout bounds every evaluation made by the page.
func WithOperationTimeout(d time.Duration) PageOption {
	return func(p *Page) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithNavigationTimeout bounds Navigate.
func WithNavigationTimeout(d time.Duration) PageOption {
	return func(p *Page) {
		if d > 0 {
			p.navTimeout = d
		}
	}
}

// WithEvaluator replaces the CDP evaluation, which is built on the action
// runner by default.
func WithEvaluator(eval EvalFunc) PageOption {
	return func(p *Page) {
		if eval != nil {
			p.eval = eval
		}
	}
}

// NewPage creates a page that runs actions through run.
func NewPage(run ActionRunner, logger *zap.Logger, opts ...PageOption) *Page {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Page{
		run:        run,
		logger:     logger.Named("page"),
		timeout:    defaultOperationTimeout,
		navTimeout: defaultNavigationTimeout,
	}
	p.eval = evaluator(run)
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// evaluator evaluates through Runtime.evaluate, returning values by value and
// awaiting promises.
func evaluator(run ActionRunner) EvalFunc {
	return func(ctx context.Context, expression string) ([]byte, error) {
		// A *[]byte destination receives the raw JSON value.
		var res []byte
		err := run(ctx, chromedp.Evaluate(expression, &res, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithReturnByValue(true).WithAwaitPromise(true).WithSilent(true)
		}))
		if err != nil {
			return nil, err
		}
		return res, nil
	}
}

// Navigate loads url in the tab and waits for the load event.
func (p *Page) Navigate(ctx context.Context, url string) error {
	if p.run == nil {
		return fmt.Errorf("cdp: Navigate: page has no action runner")
	}
	navCtx, cancel := context.WithTimeout(ctx, p.navTimeout)
	defer cancel()

	p.logger.Debug("Navigating.", zap.String("url", url))
	if err := p.run(navCtx, chromedp.Navigate(url)); err != nil {
		if navCtx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("cdp: timeout navigating to '%s' after %v: %w", url, p.navTimeout, navCtx.Err())
		}
		return fmt.Errorf("cdp: failed to navigate to '%s': %w", url, err)
	}
	return nil
}

// WaitReady polls expr until it is truthy or ctx is done. Exceptions thrown
// by expr count as not ready.
func (p *Page) WaitReady(ctx context.Context, expr string) error {
	if strings.TrimSpace(expr) == "" {
		return nil
	}
	script := `(function () { try { return { ready: !!(` + expr + `) }; } catch (e) { return { ready: false }; } })()`

	ticker := time.NewTicker(readyPollInterval)
	defer ticker.Stop()
	for {
		var res struct {
			Ready bool `json:"ready"`
		}
		if err := p.evaluate(ctx, "WaitReady", script, &res); err != nil {
			return err
		}
		if res.Ready {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("cdp: page not ready (%s): %w", expr, ctx.Err())
		case <-ticker.C:
		}
	}
}

// Eval evaluates expr in the page and returns its value decoded from JSON.
// Undefined is returned as nil.
func (p *Page) Eval(ctx context.Context, expr string) (interface{}, error) {
	script := `(function () { var v = (` + expr + `); return { value: v === undefined ? null : v }; })()`
	var res struct {
		Value interface{} `json:"value"`
	}
	if err := p.evaluate(ctx, "Eval", script, &res); err != nil {
		return nil, err
	}
	return res.Value, nil
}

// call invokes the function expression fn with JSON encoded args and decodes
// its result into res.
func (p *Page) call(ctx context.Context, op, fn string, res interface{}, args ...interface{}) error {
	encoded := make([]string, len(args))
	for i, arg := range args {
		b, err := json.Marshal(arg)
		if err != nil {
			return fmt.Errorf("cdp: %s: failed to encode argument %d: %w", op, i, err)
		}
		encoded[i] = string(b)
	}
	return p.evaluate(ctx, op, "("+fn+")("+strings.Join(encoded, ", ")+")", res)
}

func (p *Page) evaluate(ctx context.Context, op, expression string, res interface{}) error {
	opCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	raw, err := p.eval(opCtx, expression)
	if err != nil {
		if opCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
			return fmt.Errorf("cdp: %s: timed out after %v: %w", op, p.timeout, opCtx.Err())
		}
		return fmt.Errorf("cdp: %s: evaluation failed: %w", op, err)
	}
	if res == nil {
		return nil
	}
	if err := json.Unmarshal(raw, res); err != nil {
		return fmt.Errorf("cdp: %s: failed to decode result: %w (payload: %s)", op, err, string(raw))
	}
	return nil
}
