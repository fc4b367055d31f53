// Package dialog locates the topmost modal message box on a page and routes
// reads, clicks and prompt input to it. Helpers report "nothing found" rather
// than failing when no dialog is shown.
package dialog

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/uxsim/internal/interact"
	"github.com/xkilldash9x/uxsim/internal/synth"
	"github.com/xkilldash9x/uxsim/internal/widget"
)

// DefaultMarkerClass is the CSS class every message box element carries.
const DefaultMarkerClass = "x-message-box"

// Tree queries the live DOM.
type Tree interface {
	// QueryClass returns the elements carrying class in document order.
	QueryClass(ctx context.Context, class string) ([]synth.Element, error)
}

// Registry maps element ids to their owning message box component.
type Registry interface {
	Lookup(ctx context.Context, id string) (widget.MessageBox, bool, error)
}

// Clicker and Typist are the interaction operations the helpers delegate to.
// *interact.Interactor satisfies both.
type (
	Clicker interface {
		ClickButton(ctx context.Context, w widget.Component) error
	}
	Typist interface {
		TypeText(ctx context.Context, field widget.Component, text string, opts interact.KeyOptions) (*interact.Completion, error)
	}
)

// Interactor combines Clicker and Typist.
type Interactor interface {
	Clicker
	Typist
}

// Helper finds and drives message boxes.
type Helper struct {
	tree        Tree
	registry    Registry
	interactor  Interactor
	markerClass string
	logger      *zap.Logger
}

// Option configures a Helper.
type Option func(*Helper)

// WithMarkerClass overrides the class used to find dialog elements.
func WithMarkerClass(class string) Option {
	return func(h *Helper) {
		if class != "" {
			h.markerClass = class
		}
	}
}

// NewHelper creates a dialog helper.
func NewHelper(tree Tree, registry Registry, interactor Interactor, logger *zap.Logger, opts ...Option) *Helper {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Helper{
		tree:        tree,
		registry:    registry,
		interactor:  interactor,
		markerClass: DefaultMarkerClass,
		logger:      logger.Named("dialog"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// FindTopmost returns the most recently rendered message box, or nil when
// none is shown.
func (h *Helper) FindTopmost(ctx context.Context) (widget.MessageBox, error) {
	return h.Find(ctx, -1)
}

// Find returns the message box at position order among the rendered ones,
// counting from zero in document order. A negative order selects the last.
// It returns nil when no such dialog exists or its element has no owner.
func (h *Helper) Find(ctx context.Context, order int) (widget.MessageBox, error) {
	els, err := h.tree.QueryClass(ctx, h.markerClass)
	if err != nil {
		return nil, fmt.Errorf("dialog: failed to query '.%s': %w", h.markerClass, err)
	}
	if len(els) == 0 {
		return nil, nil
	}
	if order < 0 {
		order = len(els) - 1
	}
	if order >= len(els) || els[order] == nil {
		return nil, nil
	}

	id, ok, err := els[order].Attribute(ctx, "id")
	if err != nil {
		return nil, fmt.Errorf("dialog: failed to read dialog id: %w", err)
	}
	if !ok || id == "" {
		return nil, nil
	}

	box, found, err := h.registry.Lookup(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("dialog: failed to look up '%s': %w", id, err)
	}
	if !found {
		h.logger.Debug("Dialog element has no registered component.", zap.String("id", id))
		return nil, nil
	}
	return box, nil
}

// box returns explicit when given, otherwise the topmost dialog.
func (h *Helper) box(ctx context.Context, explicit widget.MessageBox) (widget.MessageBox, error) {
	if explicit != nil {
		return explicit, nil
	}
	return h.FindTopmost(ctx)
}

// Title returns the topmost dialog's title. ok is false when no dialog is shown.
func (h *Helper) Title(ctx context.Context) (string, bool, error) {
	return h.TitleIn(ctx, nil)
}

// TitleIn is Title for an explicit dialog.
func (h *Helper) TitleIn(ctx context.Context, box widget.MessageBox) (string, bool, error) {
	mb, err := h.box(ctx, box)
	if err != nil || mb == nil {
		return "", false, err
	}
	title, err := mb.Title(ctx)
	if err != nil {
		return "", false, fmt.Errorf("dialog: failed to read title of '%s': %w", mb.ID(), err)
	}
	return title, true, nil
}

// Message returns the topmost dialog's message text.
func (h *Helper) Message(ctx context.Context) (string, bool, error) {
	return h.MessageIn(ctx, nil)
}

// MessageIn is Message for an explicit dialog.
func (h *Helper) MessageIn(ctx context.Context, box widget.MessageBox) (string, bool, error) {
	mb, err := h.box(ctx, box)
	if err != nil || mb == nil {
		return "", false, err
	}
	msg, err := mb.Message(ctx)
	if err != nil {
		return "", false, fmt.Errorf("dialog: failed to read message of '%s': %w", mb.ID(), err)
	}
	return msg, true, nil
}

// Close closes the topmost dialog, if any.
func (h *Helper) Close(ctx context.Context) error {
	return h.CloseIn(ctx, nil)
}

// CloseIn is Close for an explicit dialog.
func (h *Helper) CloseIn(ctx context.Context, box widget.MessageBox) error {
	mb, err := h.box(ctx, box)
	if err != nil || mb == nil {
		return err
	}
	if err := mb.Close(ctx); err != nil {
		return fmt.Errorf("dialog: failed to close '%s': %w", mb.ID(), err)
	}
	return nil
}

// ClickButton clicks the named standard button (ok, cancel, yes, no) of the
// topmost dialog. Missing dialogs and buttons are ignored.
func (h *Helper) ClickButton(ctx context.Context, name string) error {
	return h.ClickButtonIn(ctx, name, nil)
}

// ClickButtonIn is ClickButton for an explicit dialog.
func (h *Helper) ClickButtonIn(ctx context.Context, name string, box widget.MessageBox) error {
	mb, err := h.box(ctx, box)
	if err != nil || mb == nil {
		return err
	}
	btn, ok, err := mb.MsgButton(ctx, name)
	if err != nil {
		return fmt.Errorf("dialog: failed to get button '%s' of '%s': %w", name, mb.ID(), err)
	}
	if !ok || btn == nil {
		h.logger.Debug("Dialog has no such button.", zap.String("dialog", mb.ID()), zap.String("button", name))
		return nil
	}
	return h.interactor.ClickButton(ctx, btn)
}

// ClickOK clicks the topmost dialog's ok button.
func (h *Helper) ClickOK(ctx context.Context) error {
	return h.ClickButton(ctx, widget.ButtonOK)
}

// ClickCancel clicks the topmost dialog's cancel button.
func (h *Helper) ClickCancel(ctx context.Context) error {
	return h.ClickButton(ctx, widget.ButtonCancel)
}

// ClickYes clicks the topmost dialog's yes button.
func (h *Helper) ClickYes(ctx context.Context) error {
	return h.ClickButton(ctx, widget.ButtonYes)
}

// ClickNo clicks the topmost dialog's no button.
func (h *Helper) ClickNo(ctx context.Context) error {
	return h.ClickButton(ctx, widget.ButtonNo)
}

// TypeInPrompt types text into the topmost dialog's prompt: the text area
// for multiline prompts, the text field otherwise. It returns a nil, already
// resolved, completion when no dialog is shown.
func (h *Helper) TypeInPrompt(ctx context.Context, text string, opts interact.KeyOptions) (*interact.Completion, error) {
	return h.TypeInPromptIn(ctx, text, opts, nil)
}

// TypeInPromptIn is TypeInPrompt for an explicit dialog.
func (h *Helper) TypeInPromptIn(ctx context.Context, text string, opts interact.KeyOptions, box widget.MessageBox) (*interact.Completion, error) {
	mb, err := h.box(ctx, box)
	if err != nil {
		return nil, err
	}
	if mb == nil {
		return nil, nil
	}

	multiline, err := mb.Multiline(ctx)
	if err != nil {
		return nil, fmt.Errorf("dialog: failed to inspect prompt of '%s': %w", mb.ID(), err)
	}
	field := mb.TextField
	if multiline {
		field = mb.TextArea
	}
	f, err := field(ctx)
	if err != nil {
		return nil, fmt.Errorf("dialog: failed to get prompt field of '%s': %w", mb.ID(), err)
	}
	return h.interactor.TypeText(ctx, f, text, opts)
}
