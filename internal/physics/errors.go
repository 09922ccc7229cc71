package physics

import (
	"errors"
	"fmt"
)

// Domain errors surfaced by the engine.
var (
	// ErrFatalInvariant indicates an energy deviation beyond the hard
	// ceiling or a structural breach; the step was rolled back.
	ErrFatalInvariant = errors.New("physics: fatal invariant breach, step rolled back")

	// ErrInvalidParameter indicates a configuration value outside its domain.
	ErrInvalidParameter = errors.New("physics: invalid parameter")

	// ErrNodeOutOfRange indicates a node id outside the lattice.
	ErrNodeOutOfRange = errors.New("physics: node id out of range")
)

// StepError carries the step context of a fatal failure.
type StepError struct {
	Step      int64
	Deviation float64
	Wrapped   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d: %v (deviation %.3e)", e.Step, e.Wrapped, e.Deviation)
}

func (e *StepError) Unwrap() error { return e.Wrapped }
