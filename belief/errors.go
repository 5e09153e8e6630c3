package belief

import (
	"fmt"

	"github.com/pkg/errors"
)

// InvalidParameterError is returned when a Beta parameter, an observation
// count, or an interval mass is out of range. Nothing is computed when it is
// returned.
type InvalidParameterError struct {
	Name   string  // Parameter name (alpha, beta, successes, ...)
	Value  float64 // Offending value
	Reason string  // What the value must satisfy
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("Invalid parameter %s=%v: %s", e.Name, e.Value, e.Reason)
}

// DomainError is returned when a function of the belief is evaluated at a
// point where it is not defined, like a density at p outside [0,1].
type DomainError struct {
	Op    string  // Operation that was attempted
	Value float64 // Point it was attempted at
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s is undefined at %v", e.Op, e.Value)
}

func invalidParam(name string, value float64, reason string) error {
	return errors.WithStack(&InvalidParameterError{Name: name, Value: value, Reason: reason})
}

func outsideDomain(op string, value float64) error {
	return errors.WithStack(&DomainError{Op: op, Value: value})
}

// IsInvalidParameter reports whether the root cause of err is an
// InvalidParameterError
func IsInvalidParameter(err error) bool {
	_, ok := errors.Cause(err).(*InvalidParameterError)
	return ok
}

// IsDomain reports whether the root cause of err is a DomainError
func IsDomain(err error) bool {
	_, ok := errors.Cause(err).(*DomainError)
	return ok
}
