package aero

import (
	"errors"
	"fmt"
)

// ErrTickPanic marks a tick that was abandoned after an unexpected runtime failure.
var ErrTickPanic = errors.New("aero: tick aborted by runtime failure")

// Stage names the step of a tick that was executing.
type Stage string

const (
	StageSetup     Stage = "setup"
	StageAirflow   Stage = "airflow"
	StageDensity   Stage = "density"
	StageTransonic Stage = "transonic"
	StageLift      Stage = "lift"
	StageContrail  Stage = "contrail"
	StageCleanup   Stage = "cleanup"
)

// TickError wraps a failure with the tick context it happened in.
type TickError struct {
	Tick    uint64
	Stage   Stage
	Wrapped error
}

func (e *TickError) Error() string {
	return fmt.Sprintf("tick %d (%s): %v", e.Tick, e.Stage, e.Wrapped)
}

func (e *TickError) Unwrap() error {
	return e.Wrapped
}
