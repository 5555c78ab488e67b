// Package fairdiverrors contains generic errors returned by the fair division packages.
// Callers should use errors.As to look through the chain of errors rather than comparing the topmost error.
//
// If multiple errors occur in some function (e.g., several negative preference entries), that
// function should return an error of type multierror.Error from package
// github.com/hashicorp/go-multierror that encapsulates those individual errors.
package fairdiverrors

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrInvalidArgument is a generic error to be returned on invalid argument.
// Message is optional and is omitted from the error message if not provided.
type ErrInvalidArgument struct {
	Name    string      // Name of the field referred to, e.g., "budgets"
	Value   interface{} // The invalid value that was provided
	Message string      // An optional message to include with the error message, e.g., explaining why the value is invalid
}

func (err *ErrInvalidArgument) Error() string {
	if err.Message == "" {
		return fmt.Sprintf("value %v is invalid for field %q", err.Value, err.Name)
	} else {
		return fmt.Sprintf("value %v is invalid for field %q; %s", err.Value, err.Name, err.Message)
	}
}

// ErrNotSupported is returned when a component is asked to do something outside of what it can handle,
// e.g., a linear programming oracle receiving a logarithmic objective.
type ErrNotSupported struct {
	Component string
	Feature   string
	Message   string
}

func (err *ErrNotSupported) Error() (s string) {
	s = fmt.Sprintf("%s does not support %s", err.Component, err.Feature)
	if err.Message != "" {
		s = s + fmt.Sprintf("; %s", err.Message)
	}
	return
}

// IsInvalidArgument returns true if err, or any error it wraps, is an *ErrInvalidArgument.
func IsInvalidArgument(err error) bool {
	var e *ErrInvalidArgument
	return errors.As(err, &e)
}

// IsNotSupported returns true if err, or any error it wraps, is an *ErrNotSupported.
func IsNotSupported(err error) bool {
	var e *ErrNotSupported
	return errors.As(err, &e)
}
