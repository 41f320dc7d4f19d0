package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidState indicates a state vector containing NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrZeroMass indicates a vehicle whose total mass cannot divide forces.
	ErrZeroMass = errors.New("dynamo: mass is zero or not finite")

	// ErrSingularInertia indicates an inertia matrix that cannot be inverted.
	ErrSingularInertia = errors.New("dynamo: inertia matrix is singular")

	// ErrStepTooSmall indicates adaptive timestep became too small.
	ErrStepTooSmall = errors.New("dynamo: adaptive timestep below minimum")

	// ErrStepBudget indicates the step budget ran out before the end time.
	ErrStepBudget = errors.New("dynamo: step budget exhausted")

	// ErrDimensionMismatch indicates a state of the wrong length for the system.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")

	// ErrInvalidConfig indicates an unusable time span, sample count or tolerance.
	ErrInvalidConfig = errors.New("dynamo: invalid simulation config")
)

// IntegrationError wraps an error with the point the integration reached.
type IntegrationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *IntegrationError) Error() string {
	return fmt.Sprintf("integration failed at step %d (t=%.6g): %v", e.Step, e.Time, e.Wrapped)
}

func (e *IntegrationError) Unwrap() error {
	return e.Wrapped
}
