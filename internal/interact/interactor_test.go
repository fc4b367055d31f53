package interact_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/uxsim/api/schemas"
	"github.com/xkilldash9x/uxsim/internal/interact"
	"github.com/xkilldash9x/uxsim/internal/mocks"
	"github.com/xkilldash9x/uxsim/internal/synth"
)

// setupInteractor wires a real synthesizer to a recording host.
func setupInteractor(t *testing.T, engine schemas.Engine, opts ...interact.Option) (*interact.Interactor, *mocks.RecordingHost) {
	t.Helper()
	host := mocks.NewRecordingHost(engine)
	q, err := synth.Detect(context.Background(), host)
	require.NoError(t, err)
	logger := zaptest.NewLogger(t)
	return interact.New(synth.New(host, q, logger), logger, opts...), host
}

func newField(id string, rendered bool) (*mocks.FakeField, *mocks.FakeElement) {
	input := mocks.NewFakeElement(id + "-inputEl")
	f := &mocks.FakeField{}
	f.Id = id
	f.IsRendered = rendered
	f.Root = mocks.NewFakeElement(id)
	f.Input = input
	return f, input
}

func waitDone(t *testing.T, c *interact.Completion) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, c.Wait(ctx), "completion did not resolve")
}

func TestTypeKey_SequenceAndValue(t *testing.T) {
	defer goleak.VerifyNone(t)
	ix, host := setupInteractor(t, schemas.EngineStandard)
	el := host.Element("input-1")
	el.Val = "ab"

	c, err := ix.TypeKey(context.Background(), mocks.FakeNode("input-1"), 'c', interact.KeyOptions{})
	require.NoError(t, err)
	waitDone(t, c)

	assert.Equal(t, []string{"keydown", "keypress", "keyup"}, host.Types())
	assert.Equal(t, "abc", el.Val)
	for _, d := range host.Dispatches() {
		require.NotNil(t, d.Event.CharCode)
		assert.Equal(t, int('c'), *d.Event.CharCode)
	}
}

func TestTypeKey_CompletionRunsCallbackAfterSettle(t *testing.T) {
	defer goleak.VerifyNone(t)
	ix, _ := setupInteractor(t, schemas.EngineStandard)

	var calls atomic.Int32
	settle := 30 * time.Millisecond
	start := time.Now()
	c, err := ix.TypeKey(context.Background(), mocks.FakeNode("f"), 'x', interact.KeyOptions{
		Settle:     settle,
		OnComplete: func() { calls.Add(1) },
	})
	require.NoError(t, err)

	// The callback is scheduled, never invoked inline.
	assert.Equal(t, int32(0), calls.Load())
	waitDone(t, c)
	assert.GreaterOrEqual(t, time.Since(start), settle)
	assert.Equal(t, int32(1), calls.Load())
}

func TestTypeKey_NilTarget(t *testing.T) {
	ix, host := setupInteractor(t, schemas.EngineStandard)

	c, err := ix.TypeKey(context.Background(), nil, 'a', interact.KeyOptions{})
	assert.ErrorIs(t, err, synth.ErrInvalidTarget)
	assert.Nil(t, c)
	assert.Empty(t, host.Dispatches())
}

func TestTypeText(t *testing.T) {
	defer goleak.VerifyNone(t)
	ix, host := setupInteractor(t, schemas.EngineStandard)
	field, input := newField("name", true)

	var calls atomic.Int32
	c, err := ix.TypeText(context.Background(), field, "hi!", interact.KeyOptions{
		OnComplete: func() { calls.Add(1) },
	})
	require.NoError(t, err)
	waitDone(t, c)

	assert.Equal(t, "hi!", input.Val)
	assert.Equal(t, int32(1), calls.Load(), "callback runs once for the whole string")
	assert.Equal(t, 3, input.SetValueCalls())

	types := host.Types()
	require.Len(t, types, 9)
	var codes []int
	for _, d := range host.Dispatches() {
		assert.Equal(t, "name-inputEl", d.Target)
		if d.Event.Type == "keypress" {
			codes = append(codes, *d.Event.CharCode)
		}
	}
	assert.Equal(t, []int{'h', 'i', '!'}, codes)
}

func TestTypeText_Unicode(t *testing.T) {
	defer goleak.VerifyNone(t)
	ix, _ := setupInteractor(t, schemas.EngineStandard)
	field, input := newField("name", true)

	c, err := ix.TypeText(context.Background(), field, "héllo✓", interact.KeyOptions{})
	require.NoError(t, err)
	waitDone(t, c)
	assert.Equal(t, "héllo✓", input.Val)
}

func TestTypeText_EmptyString(t *testing.T) {
	defer goleak.VerifyNone(t)
	ix, host := setupInteractor(t, schemas.EngineStandard)
	field, _ := newField("name", true)

	var calls atomic.Int32
	c, err := ix.TypeText(context.Background(), field, "", interact.KeyOptions{OnComplete: func() { calls.Add(1) }})
	require.NoError(t, err)
	waitDone(t, c)
	assert.Empty(t, host.Dispatches())
	assert.Equal(t, int32(1), calls.Load())
}

func TestTypeText_Validation(t *testing.T) {
	ctx := context.Background()
	ix, host := setupInteractor(t, schemas.EngineStandard)

	t.Run("NilField", func(t *testing.T) {
		_, err := ix.TypeText(ctx, nil, "x", interact.KeyOptions{})
		assert.ErrorIs(t, err, interact.ErrInvalidField)
	})

	t.Run("NotAFormField", func(t *testing.T) {
		btn := &mocks.FakeButton{FakeComponent: mocks.NewFakeComponent("b", mocks.NewFakeElement("b"))}
		_, err := ix.TypeText(ctx, btn, "x", interact.KeyOptions{})
		assert.ErrorIs(t, err, interact.ErrInvalidField)
	})

	t.Run("NotRendered", func(t *testing.T) {
		field, input := newField("hidden", false)
		_, err := ix.TypeText(ctx, field, "x", interact.KeyOptions{})
		assert.ErrorIs(t, err, interact.ErrFieldNotRendered)
		assert.Empty(t, input.Val)
	})

	assert.Empty(t, host.Dispatches())
}

func TestTypeText_FailureAbortsRemainingCharacters(t *testing.T) {
	ix, host := setupInteractor(t, schemas.EngineStandard)
	field, input := newField("name", true)

	boom := errors.New("detached")
	var n atomic.Int32
	host.MockDispatchEvent = func(ctx context.Context, target synth.Element, class schemas.EventClass, ev *schemas.NativeEvent) error {
		// Fail on the keydown of the second character.
		if n.Add(1) == 4 {
			return boom
		}
		return nil
	}

	c, err := ix.TypeText(context.Background(), field, "abc", interact.KeyOptions{})
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, c)
	assert.Equal(t, "a", input.Val)
	assert.Equal(t, int32(4), n.Load())
}

func TestTypeText_CancelledContext(t *testing.T) {
	ix, host := setupInteractor(t, schemas.EngineStandard)
	field, _ := newField("name", true)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ix.TypeText(ctx, field, "abc", interact.KeyOptions{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, host.Dispatches())
}

func TestTypeText_KeystrokeRate(t *testing.T) {
	defer goleak.VerifyNone(t)
	ix, _ := setupInteractor(t, schemas.EngineStandard, interact.WithKeystrokeRate(100))
	field, input := newField("name", true)

	start := time.Now()
	c, err := ix.TypeText(context.Background(), field, "abcde", interact.KeyOptions{})
	require.NoError(t, err)
	waitDone(t, c)

	// Burst of one: four waits of 10ms each after the first keystroke.
	assert.GreaterOrEqual(t, time.Since(start), 35*time.Millisecond)
	assert.Equal(t, "abcde", input.Val)
}

func TestTypeText_DefaultSettle(t *testing.T) {
	defer goleak.VerifyNone(t)
	ix, _ := setupInteractor(t, schemas.EngineStandard, interact.WithSettle(25*time.Millisecond))
	field, _ := newField("name", true)

	start := time.Now()
	c, err := ix.TypeText(context.Background(), field, "a", interact.KeyOptions{})
	require.NoError(t, err)
	waitDone(t, c)
	assert.GreaterOrEqual(t, time.Since(start), 25*time.Millisecond)
}

func TestEnterSpecialKey(t *testing.T) {
	defer goleak.VerifyNone(t)
	ix, host := setupInteractor(t, schemas.EngineStandard)
	root := mocks.NewFakeElement("grid")
	comp := mocks.NewFakeComponent("grid", root)

	c, err := ix.EnterSpecialKey(context.Background(), &comp, interact.KeyDown, interact.KeyOptions{})
	require.NoError(t, err)
	waitDone(t, c)

	got := host.Dispatches()
	require.Len(t, got, 3)
	for _, d := range got {
		assert.Equal(t, "grid", d.Target)
		require.NotNil(t, d.Event.KeyCode)
		assert.Equal(t, interact.KeyDown, *d.Event.KeyCode, "special keys travel as key codes")
		assert.Equal(t, 0, *d.Event.CharCode)
	}
	assert.Equal(t, string(rune(interact.KeyDown)), root.Val)
}

func TestEnterSpecialKey_UnusableTargetIsNoop(t *testing.T) {
	defer goleak.VerifyNone(t)
	ix, host := setupInteractor(t, schemas.EngineStandard)
	hidden := mocks.NewFakeComponent("hidden", mocks.NewFakeElement("hidden"))
	hidden.IsRendered = false

	var calls atomic.Int32
	opts := interact.KeyOptions{OnComplete: func() { calls.Add(1) }}

	c, err := ix.EnterSpecialKey(context.Background(), nil, interact.KeyEnter, opts)
	require.NoError(t, err)
	waitDone(t, c)

	c, err = ix.PressEnter(context.Background(), &hidden, opts)
	require.NoError(t, err)
	waitDone(t, c)

	assert.Empty(t, host.Dispatches())
	assert.Equal(t, int32(0), calls.Load())
}

func TestPressSpecialKey(t *testing.T) {
	defer goleak.VerifyNone(t)
	ctx := context.Background()

	tests := []struct {
		key  string
		want int
	}{
		{"Enter", interact.KeyEnter},
		{"escape", interact.KeyEsc},
		{"PgDn", interact.KeyPageDown},
		{"backsp", interact.KeyBackspace},
		{"f5", 116},
		{"113", 113},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			ix, host := setupInteractor(t, schemas.EngineTrident)
			comp := mocks.NewFakeComponent("c", mocks.NewFakeElement("c"))

			c, err := ix.PressSpecialKey(ctx, &comp, tt.key, interact.KeyOptions{})
			require.NoError(t, err)
			waitDone(t, c)

			got := host.Dispatches()
			require.Len(t, got, 3)
			assert.Equal(t, tt.want, *got[0].Event.KeyCode)
			assert.Nil(t, got[0].Event.CharCode)
		})
	}
}

func TestPressSpecialKey_UnknownKey(t *testing.T) {
	ix, host := setupInteractor(t, schemas.EngineStandard)
	comp := mocks.NewFakeComponent("c", mocks.NewFakeElement("c"))

	_, err := ix.PressSpecialKey(context.Background(), &comp, "Hyper", interact.KeyOptions{})
	assert.ErrorIs(t, err, interact.ErrUnknownKey)

	// Unknown names on an unusable target stay silent.
	comp.IsRendered = false
	c, err := ix.PressSpecialKey(context.Background(), &comp, "Hyper", interact.KeyOptions{})
	assert.NoError(t, err)
	assert.NotNil(t, c)
	assert.Empty(t, host.Dispatches())
}

func TestClickWidgets(t *testing.T) {
	ctx := context.Background()
	ix, host := setupInteractor(t, schemas.EngineStandard)

	btn := &mocks.FakeButton{FakeComponent: mocks.NewFakeComponent("ok-btn", mocks.NewFakeElement("ok-btn"))}
	cb := &mocks.FakeCheckbox{}
	cb.FakeComponent = mocks.NewFakeComponent("cb", mocks.NewFakeElement("cb"))
	cb.Input = mocks.NewFakeElement("cb-inputEl")
	rb := &mocks.FakeRadio{}
	rb.FakeComponent = mocks.NewFakeComponent("rb", mocks.NewFakeElement("rb"))
	rb.Input = mocks.NewFakeElement("rb-inputEl")

	require.NoError(t, ix.ClickButton(ctx, btn))
	require.NoError(t, ix.ClickCheckbox(ctx, cb))
	require.NoError(t, ix.ClickRadio(ctx, rb))

	got := host.Dispatches()
	require.Len(t, got, 3)
	assert.Equal(t, "ok-btn", got[0].Target)
	assert.Equal(t, "cb-inputEl", got[1].Target)
	assert.Equal(t, "rb-inputEl", got[2].Target)
	for _, d := range got {
		assert.Equal(t, "click", d.Event.Type)
		assert.Equal(t, 0, *d.Event.Button)
	}
}

func TestClickWidgets_Validation(t *testing.T) {
	ctx := context.Background()
	inj := new(mocks.MockInjector)
	ix := interact.New(inj, nil)

	btn := &mocks.FakeButton{FakeComponent: mocks.NewFakeComponent("b", mocks.NewFakeElement("b"))}
	field, _ := newField("f", true)

	assert.ErrorIs(t, ix.ClickButton(ctx, nil), interact.ErrInvalidWidget)
	assert.ErrorIs(t, ix.ClickButton(ctx, field), interact.ErrInvalidWidget)
	assert.ErrorIs(t, ix.ClickCheckbox(ctx, btn), interact.ErrInvalidWidget)
	assert.ErrorIs(t, ix.ClickRadio(ctx, btn), interact.ErrInvalidWidget)

	btn.IsRendered = false
	assert.ErrorIs(t, ix.ClickButton(ctx, btn), interact.ErrWidgetNotRendered)

	inj.AssertNotCalled(t, "InjectMouseClick", mock.Anything, mock.Anything, mock.Anything)
}

func TestClickButton_InjectorError(t *testing.T) {
	ctx := context.Background()
	inj := new(mocks.MockInjector)
	ix := interact.New(inj, nil)
	root := mocks.NewFakeElement("b")
	btn := &mocks.FakeButton{FakeComponent: mocks.NewFakeComponent("b", root)}

	boom := errors.New("no event simulation")
	inj.On("InjectMouseClick", ctx, root, schemas.ClickOptions{}).Return(boom).Once()

	assert.ErrorIs(t, ix.ClickButton(ctx, btn), boom)
	inj.AssertExpectations(t)
}

func TestCompletion_NilIsResolved(t *testing.T) {
	var c *interact.Completion
	select {
	case <-c.Done():
	default:
		t.Fatal("nil completion should be resolved")
	}
	assert.NoError(t, c.Wait(context.Background()))
}
