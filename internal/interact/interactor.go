// Package interact is the test-facing facade over the event synthesizer:
// typing text, pressing special keys and clicking widgets.
package interact

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/uxsim/api/schemas"
	"github.com/xkilldash9x/uxsim/internal/synth"
	"github.com/xkilldash9x/uxsim/internal/widget"
)

// Injector is the subset of the synthesizer the facade drives.
// *synth.Synthesizer satisfies it.
type Injector interface {
	Resolve(ctx context.Context, target synth.Node) (synth.Element, error)
	InjectMouseClick(ctx context.Context, target synth.Node, opts schemas.ClickOptions) error
	InjectKeyEvent(ctx context.Context, target synth.Node, phase schemas.KeyPhase, code int, opts schemas.KeyOptions) error
}

// KeyOptions controls a typing gesture.
type KeyOptions struct {
	schemas.Modifiers
	// IsKeyCode marks codes as key codes rather than character codes.
	// Special key entry always sets it.
	IsKeyCode bool
	// Settle delays the completion after the last keystroke. Zero uses the
	// interactor default.
	Settle time.Duration
	// OnComplete runs once, right before the completion resolves.
	OnComplete func()
}

func (o KeyOptions) event() schemas.KeyOptions {
	return schemas.KeyOptions{Modifiers: o.Modifiers, IsKeyCode: o.IsKeyCode}
}

var keySequence = []schemas.KeyPhase{schemas.KeyDown, schemas.KeyPress, schemas.KeyUp}

// Interactor performs user level gestures against widgets.
type Interactor struct {
	injector Injector
	logger   *zap.Logger
	limiter  *rate.Limiter
	settle   time.Duration
}

// Option configures an Interactor.
type Option func(*Interactor)

// WithKeystrokeRate paces typed characters to perSecond keystrokes.
// A non-positive rate disables pacing.
func WithKeystrokeRate(perSecond float64) Option {
	return func(i *Interactor) {
		if perSecond <= 0 {
			i.limiter = nil
			return
		}
		i.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// WithSettle sets the default delay between the end of a gesture and its completion.
func WithSettle(d time.Duration) Option {
	return func(i *Interactor) {
		if d > 0 {
			i.settle = d
		}
	}
}

// New creates an Interactor driving injector.
func New(injector Injector, logger *zap.Logger, opts ...Option) *Interactor {
	if logger == nil {
		logger = zap.NewNop()
	}
	i := &Interactor{
		injector: injector,
		logger:   logger.Named("interact"),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// TypeKey issues keydown, keypress and keyup for code on target and then
// appends the matching character to the target's value, since synthetic
// events do not edit content on their own.
func (i *Interactor) TypeKey(ctx context.Context, target synth.Node, code int, opts KeyOptions) (*Completion, error) {
	if err := i.typeKey(ctx, target, code, opts); err != nil {
		return nil, err
	}
	return i.complete(opts), nil
}

// TypeText types text into field one character at a time, left to right.
// The completion resolves once, after the whole string.
func (i *Interactor) TypeText(ctx context.Context, field widget.Component, text string, opts KeyOptions) (*Completion, error) {
	f, ok := field.(widget.FormField)
	if !ok || f == nil {
		return nil, fmt.Errorf("interact: TypeText: %w", ErrInvalidField)
	}
	rendered, err := f.Rendered(ctx)
	if err != nil {
		return nil, fmt.Errorf("interact: TypeText: failed to check field '%s': %w", f.ID(), err)
	}
	if !rendered {
		return nil, fmt.Errorf("interact: TypeText: field '%s': %w", f.ID(), ErrFieldNotRendered)
	}

	el, err := f.InputEl(ctx)
	if err != nil {
		return nil, fmt.Errorf("interact: TypeText: failed to get input of '%s': %w", f.ID(), err)
	}

	i.logger.Debug("Typing text.", zap.String("field", f.ID()), zap.Int("length", len(text)))
	for _, r := range text {
		if err := i.typeKey(ctx, el, int(r), opts); err != nil {
			return nil, fmt.Errorf("interact: TypeText: field '%s': %w", f.ID(), err)
		}
	}
	return i.complete(opts), nil
}

// EnterSpecialKey types a special key into a component. Components that are
// missing or not rendered are ignored and an already resolved completion is
// returned.
func (i *Interactor) EnterSpecialKey(ctx context.Context, target widget.Component, code int, opts KeyOptions) (*Completion, error) {
	usable, err := i.usable(ctx, target)
	if err != nil {
		return nil, err
	}
	if !usable {
		return resolved(), nil
	}
	return i.enterSpecialKey(ctx, target, code, opts)
}

// PressSpecialKey is EnterSpecialKey with the key given by name (Enter, Esc,
// PgUp...) or as a decimal key code.
func (i *Interactor) PressSpecialKey(ctx context.Context, target widget.Component, key string, opts KeyOptions) (*Completion, error) {
	usable, err := i.usable(ctx, target)
	if err != nil {
		return nil, err
	}
	if !usable {
		return resolved(), nil
	}
	code, err := parseKey(key)
	if err != nil {
		return nil, fmt.Errorf("interact: PressSpecialKey: %w", err)
	}
	return i.enterSpecialKey(ctx, target, code, opts)
}

// PressEnter presses Enter in target.
func (i *Interactor) PressEnter(ctx context.Context, target widget.Component, opts KeyOptions) (*Completion, error) {
	return i.EnterSpecialKey(ctx, target, KeyEnter, opts)
}

// PressEscape presses Esc in target.
func (i *Interactor) PressEscape(ctx context.Context, target widget.Component, opts KeyOptions) (*Completion, error) {
	return i.EnterSpecialKey(ctx, target, KeyEsc, opts)
}

func (i *Interactor) enterSpecialKey(ctx context.Context, target widget.Component, code int, opts KeyOptions) (*Completion, error) {
	el, err := target.El(ctx)
	if err != nil {
		return nil, fmt.Errorf("interact: failed to get element of '%s': %w", target.ID(), err)
	}
	opts.IsKeyCode = true
	if err := i.typeKey(ctx, el, code, opts); err != nil {
		return nil, fmt.Errorf("interact: special key %d on '%s': %w", code, target.ID(), err)
	}
	return i.complete(opts), nil
}

// usable reports whether target is a present, rendered component.
func (i *Interactor) usable(ctx context.Context, target widget.Component) (bool, error) {
	if target == nil {
		return false, nil
	}
	rendered, err := target.Rendered(ctx)
	if err != nil {
		return false, fmt.Errorf("interact: failed to check component '%s': %w", target.ID(), err)
	}
	if !rendered {
		i.logger.Debug("Ignoring special key for unrendered component.", zap.String("component", target.ID()))
	}
	return rendered, nil
}

func (i *Interactor) typeKey(ctx context.Context, target synth.Node, code int, opts KeyOptions) error {
	if i.limiter != nil {
		if err := i.limiter.Wait(ctx); err != nil {
			return err
		}
	} else if err := ctx.Err(); err != nil {
		return err
	}

	el, err := i.injector.Resolve(ctx, target)
	if err != nil {
		return err
	}

	evOpts := opts.event()
	for _, phase := range keySequence {
		if err := i.injector.InjectKeyEvent(ctx, el, phase, code, evOpts); err != nil {
			return err
		}
	}

	value, err := el.Value(ctx)
	if err != nil {
		return fmt.Errorf("failed to read value of '%s': %w", el.NodeRef(), err)
	}
	if err := el.SetValue(ctx, value+string(rune(code))); err != nil {
		return fmt.Errorf("failed to update value of '%s': %w", el.NodeRef(), err)
	}
	return nil
}

func (i *Interactor) complete(opts KeyOptions) *Completion {
	settle := opts.Settle
	if settle <= 0 {
		settle = i.settle
	}
	return schedule(settle, opts.OnComplete)
}
