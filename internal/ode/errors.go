package ode

import (
	"errors"
	"fmt"
)

// Domain errors for solving sessions.
var (
	// ErrInvalidState indicates a state vector containing NaN or Inf.
	ErrInvalidState = errors.New("ode: invalid state (NaN or Inf detected)")

	// ErrDimensionMismatch indicates a state whose length does not match the system.
	ErrDimensionMismatch = errors.New("ode: dimension mismatch between state and system")

	// ErrMaxSteps indicates the fixed-step loop hit its step cap.
	ErrMaxSteps = errors.New("ode: maximum step count exceeded")

	// ErrNoInitialValue indicates Solve was called before SetInitialValue.
	ErrNoInitialValue = errors.New("ode: no initial value set")
)

// SolveError wraps an error with the step and time it occurred at.
type SolveError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *SolveError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SolveError) Unwrap() error {
	return e.Wrapped
}
