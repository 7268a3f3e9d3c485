package leimesh

import (
	"errors"
	"fmt"
)

var (
	// ErrDegenerate is matched by errors.Is for every *DegenerateInputError.
	ErrDegenerate = errors.New("degenerate input")
	// ErrInvalidParameter is matched by errors.Is for every *InvalidParameterError.
	ErrInvalidParameter = errors.New("invalid parameter")
)

// DegenerateInputError is returned when a curve segment cannot be fitted
// because its endpoints share the same x coordinate.
type DegenerateInputError struct {
	X   float64 // shared x coordinate
	err error   // underlying solver error, may be nil
}

func (e *DegenerateInputError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("degenerate segment at x=%g: %s", e.X, e.err)
	}
	return fmt.Sprintf("degenerate segment: both endpoints at x=%g", e.X)
}

func (e *DegenerateInputError) Is(target error) bool { return target == ErrDegenerate }

func (e *DegenerateInputError) Unwrap() error { return e.err }

// InvalidParameterError is returned when a design or flow parameter is out
// of the range the construction is defined for.
type InvalidParameterError struct {
	Name   string
	Value  float64
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid %s=%g: %s", e.Name, e.Value, e.Reason)
}

func (e *InvalidParameterError) Is(target error) bool { return target == ErrInvalidParameter }

func invalid(name string, value float64, reason string) error {
	return &InvalidParameterError{Name: name, Value: value, Reason: reason}
}
