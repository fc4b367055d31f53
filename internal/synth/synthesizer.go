// Package synth builds platform-normalized native input events and dispatches
// them through a page's own event pipeline, so application handlers see them
// exactly as they would see genuine mouse and keyboard input.
package synth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/uxsim/api/schemas"
)

// Synthesizer produces and dispatches exactly one native event per call.
// It holds no state besides its collaborators and is safe to share.
type Synthesizer struct {
	host   Host
	quirks Quirks
	logger *zap.Logger
}

// New creates a Synthesizer for host. quirks should come from Detect and is
// not re-evaluated afterwards.
func New(host Host, quirks Quirks, logger *zap.Logger) *Synthesizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if quirks.Buttons == nil {
		quirks.Buttons = DefaultButtonCodes()
	}
	return &Synthesizer{
		host:   host,
		quirks: quirks,
		logger: logger.Named("synth"),
	}
}

// Quirks returns the platform description the synthesizer was built with.
func (s *Synthesizer) Quirks() Quirks {
	return s.quirks
}

// Resolve normalizes a target handle into its element form. Raw nodes are
// wrapped by the host; elements are returned as-is.
func (s *Synthesizer) Resolve(ctx context.Context, target Node) (Element, error) {
	if target == nil {
		return nil, ErrInvalidTarget
	}
	if el, ok := target.(Element); ok {
		return el, nil
	}
	el, err := s.host.Wrap(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("failed to wrap node '%s': %w", target.NodeRef(), err)
	}
	if el == nil {
		return nil, ErrInvalidTarget
	}
	return el, nil
}

// Inject routes an input intent to the matching injection operation.
func (s *Synthesizer) Inject(ctx context.Context, target Node, intent schemas.InputIntent) error {
	switch intent.Kind {
	case schemas.IntentClick:
		return s.InjectMouseClick(ctx, target, intent.Click)
	case schemas.IntentKey:
		return s.InjectKeyEvent(ctx, target, intent.Phase, intent.Code, intent.Key)
	default:
		return fmt.Errorf("synth: unknown intent kind '%s'", intent.Kind)
	}
}

// newEvent returns a fresh descriptor. Descriptors are never reused.
func newEvent(eventType string, mods schemas.Modifiers) *schemas.NativeEvent {
	return &schemas.NativeEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		Bubbles:    true,
		Cancelable: true,
		View:       "window",
		Modifiers:  mods,
	}
}

// dispatch walks the construction fallback chain: the standards API with
// each class in order, then the legacy event object API.
func (s *Synthesizer) dispatch(ctx context.Context, el Element, ev *schemas.NativeEvent, classes []schemas.EventClass, legacy func(*schemas.NativeEvent)) error {
	switch {
	case s.quirks.StandardEvents:
		var err error
		for _, class := range classes {
			err = s.host.DispatchEvent(ctx, el, class, ev)
			if !errors.Is(err, ErrUnsupportedEventClass) {
				break
			}
			s.logger.Debug("Event class rejected by host, trying next.",
				zap.String("class", string(class)), zap.String("event_id", ev.ID))
		}
		return err
	case s.quirks.LegacyEvents:
		if legacy != nil {
			legacy(ev)
		}
		return s.host.FireEvent(ctx, el, ev)
	default:
		return ErrNoEventSimulationSupport
	}
}

func logFields(ev *schemas.NativeEvent, target Element) []zap.Field {
	fields := []zap.Field{
		zap.String("event_id", ev.ID),
		zap.String("type", ev.Type),
		zap.String("target", target.NodeRef()),
	}
	if ev.Button != nil {
		fields = append(fields, zap.Int("button", *ev.Button))
	}
	if ev.KeyCode != nil {
		fields = append(fields, zap.Int("key_code", *ev.KeyCode))
	}
	if ev.CharCode != nil {
		fields = append(fields, zap.Int("char_code", *ev.CharCode))
	}
	return fields
}
