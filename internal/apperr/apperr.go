package apperr

import (
	"errors"
	"fmt"
)

// Kind sentinels. Every service error wraps exactly one of these so
// handlers can map it to an HTTP status with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrPermission = errors.New("permission denied")
	ErrStore      = errors.New("store failure")
)

func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func Conflictf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

func Permissionf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrPermission, fmt.Sprintf(format, args...))
}

// Store wraps a collaborator failure. The cause is flattened into the
// message so the store kind stays the only match for errors.Is.
func Store(op string, cause error) error {
	return fmt.Errorf("%w: %s: %v", ErrStore, op, cause)
}
