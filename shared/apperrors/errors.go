package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors shared by every service. Handlers classify failures with
// errors.Is against these and map them to HTTP statuses via StatusCode.
var (
	// ErrValidation indicates malformed input, caught before any store access
	ErrValidation = errors.New("validation failed")

	// ErrNotFound indicates no matching user or record
	ErrNotFound = errors.New("not found")

	// ErrInvalidState indicates the operation is not applicable to the
	// current state (e.g. unlocking an account that is not locked)
	ErrInvalidState = errors.New("operation not applicable to current state")

	// ErrStorageUnavailable indicates the backing store is unreachable.
	// Propagated as-is; retry policy belongs to the caller.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrUnauthorized indicates the caller has no resolved identity
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the caller's role does not permit the operation
	ErrForbidden = errors.New("forbidden")

	// ErrAccountLocked is the explicit locked-account signal, distinct from
	// invalid credentials. The failed-attempt count is never attached.
	ErrAccountLocked = errors.New("account locked")
)

// Validation wraps a field-level failure as an ErrValidation
func Validation(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFound wraps a lookup miss as an ErrNotFound
func NotFound(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// InvalidState wraps a state-precondition failure as an ErrInvalidState
func InvalidState(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, fmt.Sprintf(format, args...))
}

// Storage wraps a store error as an ErrStorageUnavailable, preserving the
// driver error in the chain
func Storage(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
}

// StatusCode maps a classified error to its HTTP status. Unclassified errors
// are treated as server faults.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAccountLocked):
		return http.StatusLocked
	case errors.Is(err, ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
