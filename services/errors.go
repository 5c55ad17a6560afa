// services/errors.go
package services

import (
	"errors"
	"fmt"
)

// NotFoundError is returned when a referenced key does not exist. Terminal for
// the call that raised it.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s '%s' not found", e.Resource, e.Key)
}

// ConstraintViolationError is returned when a request violates a business
// invariant (bad state, bad dates, blank fields, duplicate key).
type ConstraintViolationError struct {
	Message string
}

func (e *ConstraintViolationError) Error() string {
	return e.Message
}

func notFound(resource, key string) error {
	return &NotFoundError{Resource: resource, Key: key}
}

func constraintViolation(format string, args ...any) error {
	return &ConstraintViolationError{Message: fmt.Sprintf(format, args...)}
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsConstraintViolation reports whether err is (or wraps) a ConstraintViolationError.
func IsConstraintViolation(err error) bool {
	var target *ConstraintViolationError
	return errors.As(err, &target)
}
