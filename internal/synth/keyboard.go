package synth

import (
	"context"
	"fmt"

	"github.com/xkilldash9x/uxsim/api/schemas"
)

var keyClasses = []schemas.EventClass{schemas.ClassEvents, schemas.ClassUIEvents}

// InjectKeyEvent emulates a single keyboard event of the given phase.
//
// On the Trident engine code is always delivered as keyCode and charCode is
// left unset. Elsewhere opts.IsKeyCode picks the channel: keyCode=code with
// charCode=0, or charCode=code with keyCode=0.
func (s *Synthesizer) InjectKeyEvent(ctx context.Context, target Node, phase schemas.KeyPhase, code int, opts schemas.KeyOptions) error {
	if target == nil {
		return fmt.Errorf("synth: InjectKeyEvent: %w", ErrInvalidTarget)
	}
	if !phase.Valid() {
		return fmt.Errorf("synth: InjectKeyEvent: %w (got '%s')", ErrInvalidEventType, phase)
	}

	el, err := s.Resolve(ctx, target)
	if err != nil {
		return fmt.Errorf("synth: InjectKeyEvent: %w", err)
	}

	ev := newEvent(string(phase), opts.Modifiers)
	ev.KeyCode, ev.CharCode = keyFields(s.quirks, code, opts.IsKeyCode)

	s.logger.Debug("Injecting key event.", logFields(ev, el)...)
	if err := s.dispatch(ctx, el, ev, keyClasses, legacyKeyFields(code)); err != nil {
		return fmt.Errorf("synth: InjectKeyEvent: %w", err)
	}
	return nil
}

// keyFields computes keyCode and charCode for the standards construction path.
func keyFields(q Quirks, code int, isKeyCode bool) (keyCode, charCode *int) {
	switch {
	case q.IsLegacyEngine():
		return schemas.IntPtr(code), nil
	case isKeyCode:
		return schemas.IntPtr(code), schemas.IntPtr(0)
	default:
		return schemas.IntPtr(0), schemas.IntPtr(code)
	}
}

// legacyKeyFields rewrites a descriptor for the event object path, which only
// carries keyCode.
func legacyKeyFields(code int) func(*schemas.NativeEvent) {
	return func(ev *schemas.NativeEvent) {
		ev.KeyCode = schemas.IntPtr(code)
		ev.CharCode = nil
	}
}
