package synth

import (
	"context"
	"fmt"

	"github.com/xkilldash9x/uxsim/api/schemas"
)

// ButtonSlot keys the button code table.
type ButtonSlot struct {
	Engine schemas.Engine
	Right  bool
}

// ButtonCodes maps an engine and button choice to the numeric button code
// click handlers expect. Legacy and standard event models disagree on which
// code denotes the primary button.
type ButtonCodes map[ButtonSlot]int

// DefaultButtonCodes returns the stock button table.
func DefaultButtonCodes() ButtonCodes {
	return ButtonCodes{
		{Engine: schemas.EngineTrident, Right: true}:   4,
		{Engine: schemas.EngineTrident, Right: false}:  1,
		{Engine: schemas.EngineStandard, Right: true}:  1,
		{Engine: schemas.EngineStandard, Right: false}: 0,
	}
}

// Code returns the button code for the slot. Unknown slots fall back to the
// standard engine entries.
func (c ButtonCodes) Code(engine schemas.Engine, right bool) int {
	if code, ok := c[ButtonSlot{Engine: engine, Right: right}]; ok {
		return code
	}
	return DefaultButtonCodes()[ButtonSlot{Engine: schemas.EngineStandard, Right: right}]
}

// Quirks describes the platform differences the synthesizer branches on.
type Quirks struct {
	Capabilities
	Buttons ButtonCodes
}

// IsLegacyEngine reports whether key codes must be delivered the Trident way.
func (q Quirks) IsLegacyEngine() bool {
	return q.Engine == schemas.EngineTrident
}

// NewQuirks builds quirks from probed capabilities with the default button table.
func NewQuirks(caps Capabilities) Quirks {
	if !caps.Engine.Valid() {
		caps.Engine = schemas.EngineStandard
	}
	return Quirks{Capabilities: caps, Buttons: DefaultButtonCodes()}
}

// Detect probes the host once and returns the resulting quirks.
func Detect(ctx context.Context, host Host) (Quirks, error) {
	if host == nil {
		return Quirks{}, fmt.Errorf("synth: cannot probe a nil host")
	}
	caps, err := host.Probe(ctx)
	if err != nil {
		return Quirks{}, fmt.Errorf("synth: failed to probe host capabilities: %w", err)
	}
	return NewQuirks(caps), nil
}

// Override forces the engine reported by the host, keeping API availability.
// An empty engine leaves q unchanged.
func (q Quirks) Override(engine schemas.Engine) Quirks {
	if engine == "" {
		return q
	}
	q.Engine = engine
	return q
}
