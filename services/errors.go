package services

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrTableNotFound      = errors.New("table not found")
	ErrInvalidInterval    = errors.New("slot start must be before slot end")
	ErrSlotConflict       = errors.New("reservation overlaps with an existing one")
	ErrDuplicateID        = errors.New("table id already exists")
	ErrStoreUnavailable   = errors.New("store unavailable")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// storeError marks an infrastructure failure so callers can tell it apart
// from a booking conflict.
func storeError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
