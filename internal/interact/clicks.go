package interact

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/uxsim/api/schemas"
	"github.com/xkilldash9x/uxsim/internal/synth"
	"github.com/xkilldash9x/uxsim/internal/widget"
)

// ClickButton clicks the root element of a rendered button.
func (i *Interactor) ClickButton(ctx context.Context, w widget.Component) error {
	b, ok := w.(widget.Button)
	if !ok || b == nil {
		return fmt.Errorf("interact: ClickButton: button %w", ErrInvalidWidget)
	}
	return i.clickWidget(ctx, "ClickButton", b, b.El)
}

// ClickCheckbox clicks the input element of a rendered check box.
func (i *Interactor) ClickCheckbox(ctx context.Context, w widget.Component) error {
	cb, ok := w.(widget.Checkbox)
	if !ok || cb == nil {
		return fmt.Errorf("interact: ClickCheckbox: checkbox %w", ErrInvalidWidget)
	}
	return i.clickWidget(ctx, "ClickCheckbox", cb, cb.InputEl)
}

// ClickRadio clicks the input element of a rendered radio button.
func (i *Interactor) ClickRadio(ctx context.Context, w widget.Component) error {
	rb, ok := w.(widget.Radio)
	if !ok || rb == nil {
		return fmt.Errorf("interact: ClickRadio: radio %w", ErrInvalidWidget)
	}
	return i.clickWidget(ctx, "ClickRadio", rb, rb.InputEl)
}

func (i *Interactor) clickWidget(ctx context.Context, op string, w widget.Component, target func(context.Context) (synth.Element, error)) error {
	rendered, err := w.Rendered(ctx)
	if err != nil {
		return fmt.Errorf("interact: %s: failed to check '%s': %w", op, w.ID(), err)
	}
	if !rendered {
		return fmt.Errorf("interact: %s: '%s': %w", op, w.ID(), ErrWidgetNotRendered)
	}

	el, err := target(ctx)
	if err != nil {
		return fmt.Errorf("interact: %s: failed to get element of '%s': %w", op, w.ID(), err)
	}

	i.logger.Debug("Clicking widget.", zap.String("op", op), zap.String("widget", w.ID()))
	if err := i.injector.InjectMouseClick(ctx, el, schemas.ClickOptions{}); err != nil {
		return fmt.Errorf("interact: %s: '%s': %w", op, w.ID(), err)
	}
	return nil
}
