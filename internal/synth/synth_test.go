package synth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/uxsim/api/schemas"
	"github.com/xkilldash9x/uxsim/internal/mocks"
	"github.com/xkilldash9x/uxsim/internal/synth"
)

// ignoreID drops the per-event correlation id from descriptor comparisons.
var ignoreID = cmpopts.IgnoreFields(schemas.NativeEvent{}, "ID")

func setupSynth(t *testing.T, engine schemas.Engine) (*synth.Synthesizer, *mocks.RecordingHost) {
	t.Helper()
	host := mocks.NewRecordingHost(engine)
	q, err := synth.Detect(context.Background(), host)
	require.NoError(t, err)
	return synth.New(host, q, zaptest.NewLogger(t)), host
}

func TestDefaultButtonCodes(t *testing.T) {
	codes := synth.DefaultButtonCodes()
	assert.Equal(t, 4, codes.Code(schemas.EngineTrident, true))
	assert.Equal(t, 1, codes.Code(schemas.EngineTrident, false))
	assert.Equal(t, 1, codes.Code(schemas.EngineStandard, true))
	assert.Equal(t, 0, codes.Code(schemas.EngineStandard, false))

	// Unknown engines fall back to the standard entries.
	assert.Equal(t, 1, codes.Code(schemas.Engine("gecko"), true))
	assert.Equal(t, 0, synth.ButtonCodes{}.Code(schemas.EngineTrident, false))
}

func TestDetect(t *testing.T) {
	ctx := context.Background()

	t.Run("DefaultsInvalidEngine", func(t *testing.T) {
		host := mocks.NewRecordingHost("")
		q, err := synth.Detect(ctx, host)
		require.NoError(t, err)
		assert.Equal(t, schemas.EngineStandard, q.Engine)
		assert.True(t, q.StandardEvents)
		assert.NotEmpty(t, q.Buttons)
	})

	t.Run("ProbeFailure", func(t *testing.T) {
		host := mocks.NewRecordingHost(schemas.EngineStandard)
		host.ProbeErr = errors.New("page crashed")
		_, err := synth.Detect(ctx, host)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "page crashed")
	})

	t.Run("NilHost", func(t *testing.T) {
		_, err := synth.Detect(ctx, nil)
		assert.Error(t, err)
	})

	t.Run("Override", func(t *testing.T) {
		q := synth.NewQuirks(synth.Capabilities{Engine: schemas.EngineStandard, StandardEvents: true})
		assert.True(t, q.Override(schemas.EngineTrident).IsLegacyEngine())
		assert.False(t, q.Override("").IsLegacyEngine())
	})
}

func TestInjectMouseClick(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		engine schemas.Engine
		opts   schemas.ClickOptions
		want   schemas.NativeEvent
	}{
		{
			name:   "StandardLeftClick",
			engine: schemas.EngineStandard,
			want: schemas.NativeEvent{
				Type: "click", Bubbles: true, Cancelable: true, View: "window",
				Button: schemas.IntPtr(0),
			},
		},
		{
			name:   "StandardRightDoubleClickWithCtrl",
			engine: schemas.EngineStandard,
			opts: schemas.ClickOptions{
				DoubleClick: true, RightButton: true,
				Modifiers: schemas.Modifiers{Ctrl: true},
			},
			want: schemas.NativeEvent{
				Type: "dblclick", Bubbles: true, Cancelable: true, View: "window",
				Modifiers: schemas.Modifiers{Ctrl: true},
				Button:    schemas.IntPtr(1),
			},
		},
		{
			name:   "TridentLeftClick",
			engine: schemas.EngineTrident,
			want: schemas.NativeEvent{
				Type: "click", Bubbles: true, Cancelable: true, View: "window",
				Button: schemas.IntPtr(1),
			},
		},
		{
			name:   "TridentRightClickWithShiftAlt",
			engine: schemas.EngineTrident,
			opts: schemas.ClickOptions{
				RightButton: true,
				Modifiers:   schemas.Modifiers{Shift: true, Alt: true},
			},
			want: schemas.NativeEvent{
				Type: "click", Bubbles: true, Cancelable: true, View: "window",
				Modifiers: schemas.Modifiers{Shift: true, Alt: true},
				Button:    schemas.IntPtr(4),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, host := setupSynth(t, tt.engine)

			require.NoError(t, s.InjectMouseClick(ctx, mocks.FakeNode("btn-1"), tt.opts))

			got := host.Dispatches()
			require.Len(t, got, 1, "exactly one event per call")
			assert.Equal(t, schemas.ClassMouseEvents, got[0].Class)
			assert.Equal(t, "btn-1", got[0].Target)
			assert.NotEmpty(t, got[0].Event.ID)
			if diff := cmp.Diff(tt.want, got[0].Event, ignoreID); diff != "" {
				t.Errorf("event mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestInjectMouseClick_FallsBackToEventsClass(t *testing.T) {
	s, host := setupSynth(t, schemas.EngineStandard)
	host.Rejected[schemas.ClassMouseEvents] = true

	require.NoError(t, s.InjectMouseClick(context.Background(), mocks.FakeNode("a"), schemas.ClickOptions{}))

	assert.Equal(t, []schemas.EventClass{schemas.ClassMouseEvents, schemas.ClassEvents}, host.Attempts())
	got := host.Dispatches()
	require.Len(t, got, 1)
	assert.Equal(t, schemas.ClassEvents, got[0].Class)
}

func TestInjectMouseClick_LegacyPath(t *testing.T) {
	host := mocks.NewRecordingHost(schemas.EngineTrident)
	host.Caps.StandardEvents = false
	host.Caps.LegacyEvents = true
	q, err := synth.Detect(context.Background(), host)
	require.NoError(t, err)
	s := synth.New(host, q, nil)

	require.NoError(t, s.InjectMouseClick(context.Background(), mocks.FakeNode("a"), schemas.ClickOptions{RightButton: true}))

	got := host.Dispatches()
	require.Len(t, got, 1)
	assert.True(t, got[0].Legacy)
	assert.Equal(t, "click", got[0].Event.Type)
	require.NotNil(t, got[0].Event.Button)
	assert.Equal(t, 4, *got[0].Event.Button)
}

func TestInjectMouseClick_NilTarget(t *testing.T) {
	s, host := setupSynth(t, schemas.EngineStandard)

	err := s.InjectMouseClick(context.Background(), nil, schemas.ClickOptions{})
	assert.ErrorIs(t, err, synth.ErrInvalidTarget)
	assert.Empty(t, host.Dispatches())
}

func TestInjectKeyEvent_FieldMapping(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name         string
		engine       schemas.Engine
		code         int
		opts         schemas.KeyOptions
		wantKeyCode  *int
		wantCharCode *int
	}{
		{"StandardCharacter", schemas.EngineStandard, 65, schemas.KeyOptions{}, schemas.IntPtr(0), schemas.IntPtr(65)},
		{"StandardKeyCode", schemas.EngineStandard, 13, schemas.KeyOptions{IsKeyCode: true}, schemas.IntPtr(13), schemas.IntPtr(0)},
		{"TridentCharacter", schemas.EngineTrident, 97, schemas.KeyOptions{}, schemas.IntPtr(97), nil},
		{"TridentKeyCode", schemas.EngineTrident, 27, schemas.KeyOptions{IsKeyCode: true}, schemas.IntPtr(27), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, host := setupSynth(t, tt.engine)

			require.NoError(t, s.InjectKeyEvent(ctx, mocks.FakeNode("field"), schemas.KeyDown, tt.code, tt.opts))

			got := host.Dispatches()
			require.Len(t, got, 1)
			assert.Equal(t, schemas.ClassEvents, got[0].Class)
			want := schemas.NativeEvent{
				Type: "keydown", Bubbles: true, Cancelable: true, View: "window",
				KeyCode: tt.wantKeyCode, CharCode: tt.wantCharCode,
			}
			if diff := cmp.Diff(want, got[0].Event, ignoreID); diff != "" {
				t.Errorf("event mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestInjectKeyEvent_Modifiers(t *testing.T) {
	s, host := setupSynth(t, schemas.EngineStandard)
	mods := schemas.Modifiers{Ctrl: true, Meta: true}

	require.NoError(t, s.InjectKeyEvent(context.Background(), mocks.FakeNode("f"), schemas.KeyPress, 120,
		schemas.KeyOptions{Modifiers: mods}))

	got := host.Dispatches()
	require.Len(t, got, 1)
	assert.Equal(t, mods, got[0].Event.Modifiers)
	assert.Equal(t, "keypress", got[0].Event.Type)
}

func TestInjectKeyEvent_FallsBackToUIEvents(t *testing.T) {
	s, host := setupSynth(t, schemas.EngineStandard)
	host.Rejected[schemas.ClassEvents] = true

	require.NoError(t, s.InjectKeyEvent(context.Background(), mocks.FakeNode("f"), schemas.KeyUp, 65, schemas.KeyOptions{}))

	assert.Equal(t, []schemas.EventClass{schemas.ClassEvents, schemas.ClassUIEvents}, host.Attempts())
	got := host.Dispatches()
	require.Len(t, got, 1)
	assert.Equal(t, schemas.ClassUIEvents, got[0].Class)
}

func TestInjectKeyEvent_AllClassesRejected(t *testing.T) {
	s, host := setupSynth(t, schemas.EngineStandard)
	host.Rejected[schemas.ClassEvents] = true
	host.Rejected[schemas.ClassUIEvents] = true

	err := s.InjectKeyEvent(context.Background(), mocks.FakeNode("f"), schemas.KeyUp, 65, schemas.KeyOptions{})
	assert.ErrorIs(t, err, synth.ErrUnsupportedEventClass)
	assert.Empty(t, host.Dispatches())
}

func TestInjectKeyEvent_LegacyPath(t *testing.T) {
	// A standard engine without createEvent still takes the event object path,
	// which carries only keyCode.
	host := mocks.NewRecordingHost(schemas.EngineStandard)
	host.Caps = synth.Capabilities{Engine: schemas.EngineStandard, LegacyEvents: true}
	q, err := synth.Detect(context.Background(), host)
	require.NoError(t, err)
	s := synth.New(host, q, zaptest.NewLogger(t))

	require.NoError(t, s.InjectKeyEvent(context.Background(), mocks.FakeNode("f"), schemas.KeyPress, 65, schemas.KeyOptions{}))

	got := host.Dispatches()
	require.Len(t, got, 1)
	assert.True(t, got[0].Legacy)
	require.NotNil(t, got[0].Event.KeyCode)
	assert.Equal(t, 65, *got[0].Event.KeyCode)
	assert.Nil(t, got[0].Event.CharCode)
}

func TestInjectKeyEvent_NoEventSupport(t *testing.T) {
	host := mocks.NewRecordingHost(schemas.EngineStandard)
	host.Caps.StandardEvents = false
	q, err := synth.Detect(context.Background(), host)
	require.NoError(t, err)
	s := synth.New(host, q, nil)

	err = s.InjectKeyEvent(context.Background(), mocks.FakeNode("f"), schemas.KeyDown, 65, schemas.KeyOptions{})
	assert.ErrorIs(t, err, synth.ErrNoEventSimulationSupport)

	err = s.InjectMouseClick(context.Background(), mocks.FakeNode("f"), schemas.ClickOptions{})
	assert.ErrorIs(t, err, synth.ErrNoEventSimulationSupport)
	assert.Empty(t, host.Dispatches())
}

func TestInjectKeyEvent_Validation(t *testing.T) {
	ctx := context.Background()

	t.Run("NilTarget", func(t *testing.T) {
		s, _ := setupSynth(t, schemas.EngineStandard)
		err := s.InjectKeyEvent(ctx, nil, schemas.KeyDown, 65, schemas.KeyOptions{})
		assert.ErrorIs(t, err, synth.ErrInvalidTarget)
	})

	t.Run("NilTargetCheckedBeforePhase", func(t *testing.T) {
		s, _ := setupSynth(t, schemas.EngineStandard)
		err := s.InjectKeyEvent(ctx, nil, "keyhold", 65, schemas.KeyOptions{})
		assert.ErrorIs(t, err, synth.ErrInvalidTarget)
	})

	t.Run("InvalidPhaseIsNotResolved", func(t *testing.T) {
		host := new(mocks.MockHost)
		s := synth.New(host, synth.NewQuirks(synth.Capabilities{StandardEvents: true}), nil)

		err := s.InjectKeyEvent(ctx, mocks.FakeNode("f"), "click", 65, schemas.KeyOptions{})
		assert.ErrorIs(t, err, synth.ErrInvalidEventType)
		host.AssertNotCalled(t, "Wrap", mock.Anything, mock.Anything)
		host.AssertNotCalled(t, "DispatchEvent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestInjectKeyEvent_HostErrorPropagates(t *testing.T) {
	s, host := setupSynth(t, schemas.EngineStandard)
	boom := errors.New("target detached")
	host.MockDispatchEvent = func(context.Context, synth.Element, schemas.EventClass, *schemas.NativeEvent) error {
		return boom
	}

	err := s.InjectKeyEvent(context.Background(), mocks.FakeNode("f"), schemas.KeyDown, 65, schemas.KeyOptions{})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []schemas.EventClass{schemas.ClassEvents}, host.Attempts(), "non-class errors must not trigger the fallback")
}

func TestResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("ElementPassesThrough", func(t *testing.T) {
		host := new(mocks.MockHost)
		s := synth.New(host, synth.NewQuirks(synth.Capabilities{}), nil)
		el := mocks.NewFakeElement("x")

		got, err := s.Resolve(ctx, el)
		require.NoError(t, err)
		assert.Same(t, el, got)
		host.AssertNotCalled(t, "Wrap", mock.Anything, mock.Anything)
	})

	t.Run("NodeIsWrapped", func(t *testing.T) {
		s, host := setupSynth(t, schemas.EngineStandard)
		got, err := s.Resolve(ctx, mocks.FakeNode("y"))
		require.NoError(t, err)
		assert.Same(t, host.Element("y"), got)
	})

	t.Run("WrapFailure", func(t *testing.T) {
		host := new(mocks.MockHost)
		host.On("Wrap", mock.Anything, mocks.FakeNode("gone")).Return(nil, errors.New("stale node"))
		s := synth.New(host, synth.NewQuirks(synth.Capabilities{StandardEvents: true}), nil)

		err := s.InjectMouseClick(ctx, mocks.FakeNode("gone"), schemas.ClickOptions{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "stale node")
		host.AssertExpectations(t)
	})
}

func TestInject_RoutesIntent(t *testing.T) {
	s, host := setupSynth(t, schemas.EngineStandard)
	ctx := context.Background()

	require.NoError(t, s.Inject(ctx, mocks.FakeNode("t"), schemas.InputIntent{
		Kind:  schemas.IntentClick,
		Click: schemas.ClickOptions{DoubleClick: true},
	}))
	require.NoError(t, s.Inject(ctx, mocks.FakeNode("t"), schemas.InputIntent{
		Kind: schemas.IntentKey, Phase: schemas.KeyUp, Code: 9,
		Key: schemas.KeyOptions{IsKeyCode: true},
	}))

	assert.Equal(t, []string{"dblclick", "keyup"}, host.Types())
	assert.Error(t, s.Inject(ctx, mocks.FakeNode("t"), schemas.InputIntent{Kind: "scroll"}))
}

func TestInjectKeyEvent_FreshDescriptorPerCall(t *testing.T) {
	s, host := setupSynth(t, schemas.EngineStandard)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, s.InjectKeyEvent(ctx, mocks.FakeNode("f"), schemas.KeyDown, 65, schemas.KeyOptions{}))
	}

	seen := make(map[string]bool)
	for _, d := range host.Dispatches() {
		assert.False(t, seen[d.Event.ID], "event ids must not repeat")
		seen[d.Event.ID] = true
	}
	assert.Len(t, seen, 3)
}
