package synth

import (
	"context"
	"fmt"

	"github.com/xkilldash9x/uxsim/api/schemas"
)

var mouseClasses = []schemas.EventClass{schemas.ClassMouseEvents, schemas.ClassEvents}

// InjectMouseClick emulates a click or double click on target.
func (s *Synthesizer) InjectMouseClick(ctx context.Context, target Node, opts schemas.ClickOptions) error {
	el, err := s.Resolve(ctx, target)
	if err != nil {
		return fmt.Errorf("synth: InjectMouseClick: %w", err)
	}

	eventType := "click"
	if opts.DoubleClick {
		eventType = "dblclick"
	}

	ev := newEvent(eventType, opts.Modifiers)
	ev.Button = schemas.IntPtr(s.quirks.Buttons.Code(s.quirks.Engine, opts.RightButton))

	s.logger.Debug("Injecting mouse event.", logFields(ev, el)...)
	if err := s.dispatch(ctx, el, ev, mouseClasses, nil); err != nil {
		return fmt.Errorf("synth: InjectMouseClick: %w", err)
	}
	return nil
}
