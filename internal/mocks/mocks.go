// File: internal/mocks/mocks.go
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/xkilldash9x/uxsim/api/schemas"
	"github.com/xkilldash9x/uxsim/internal/synth"
	"github.com/xkilldash9x/uxsim/internal/widget"
)

// -- Host Mock --

// MockHost mocks the synth.Host interface.
type MockHost struct {
	mock.Mock
}

func (m *MockHost) Wrap(ctx context.Context, n synth.Node) (synth.Element, error) {
	args := m.Called(ctx, n)
	if el := args.Get(0); el != nil {
		return el.(synth.Element), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockHost) Probe(ctx context.Context) (synth.Capabilities, error) {
	args := m.Called(ctx)
	return args.Get(0).(synth.Capabilities), args.Error(1)
}

func (m *MockHost) DispatchEvent(ctx context.Context, target synth.Element, class schemas.EventClass, ev *schemas.NativeEvent) error {
	args := m.Called(ctx, target, class, ev)
	return args.Error(0)
}

func (m *MockHost) FireEvent(ctx context.Context, target synth.Element, ev *schemas.NativeEvent) error {
	args := m.Called(ctx, target, ev)
	return args.Error(0)
}

// -- Injector Mock --

// MockInjector mocks the interact.Injector interface.
type MockInjector struct {
	mock.Mock
}

func (m *MockInjector) Resolve(ctx context.Context, target synth.Node) (synth.Element, error) {
	args := m.Called(ctx, target)
	if el := args.Get(0); el != nil {
		return el.(synth.Element), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockInjector) InjectMouseClick(ctx context.Context, target synth.Node, opts schemas.ClickOptions) error {
	args := m.Called(ctx, target, opts)
	return args.Error(0)
}

func (m *MockInjector) InjectKeyEvent(ctx context.Context, target synth.Node, phase schemas.KeyPhase, code int, opts schemas.KeyOptions) error {
	args := m.Called(ctx, target, phase, code, opts)
	return args.Error(0)
}

// -- Dialog Collaborator Mocks --

// MockTree mocks the dialog.Tree interface.
type MockTree struct {
	mock.Mock
}

func (m *MockTree) QueryClass(ctx context.Context, class string) ([]synth.Element, error) {
	args := m.Called(ctx, class)
	if els := args.Get(0); els != nil {
		return els.([]synth.Element), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockRegistry mocks the dialog.Registry interface.
type MockRegistry struct {
	mock.Mock
}

func (m *MockRegistry) Lookup(ctx context.Context, id string) (widget.MessageBox, bool, error) {
	args := m.Called(ctx, id)
	if box := args.Get(0); box != nil {
		return box.(widget.MessageBox), args.Bool(1), args.Error(2)
	}
	return nil, args.Bool(1), args.Error(2)
}
