package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by lookups that found nothing.
var ErrNotFound = errors.New("not found")

// InvalidArgumentError reports a caller contract violation: a negative price,
// an unknown role, a price range with min above max, a missing product id.
type InvalidArgumentError struct {
	Field  string
	Reason string
	Value  interface{}
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument: field=%s, reason=%s, value=%v", e.Field, e.Reason, e.Value)
}

// Is lets errors.Is match any InvalidArgumentError.
func (e *InvalidArgumentError) Is(target error) bool {
	_, ok := target.(*InvalidArgumentError)
	return ok
}

func NewInvalidArgument(field, reason string, value interface{}) error {
	return &InvalidArgumentError{Field: field, Reason: reason, Value: value}
}

func IsInvalidArgument(err error) bool {
	var iae *InvalidArgumentError
	return errors.As(err, &iae)
}
