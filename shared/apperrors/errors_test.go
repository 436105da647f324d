package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation("email is required"), http.StatusBadRequest},
		{"not found", NotFound("no security record for %s", "u-1"), http.StatusNotFound},
		{"invalid state", InvalidState("account is not locked"), http.StatusConflict},
		{"storage", Storage(errors.New("dial tcp: connection refused")), http.StatusServiceUnavailable},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden", ErrForbidden, http.StatusForbidden},
		{"locked", ErrAccountLocked, http.StatusLocked},
		{"wrapped locked", fmt.Errorf("login: %w", ErrAccountLocked), http.StatusLocked},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusCode(tt.err); got != tt.want {
				t.Errorf("StatusCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStorageNil(t *testing.T) {
	if Storage(nil) != nil {
		t.Error("Storage(nil) should return nil")
	}
}

func TestWrappersPreserveSentinel(t *testing.T) {
	if !errors.Is(Validation("x"), ErrValidation) {
		t.Error("Validation should wrap ErrValidation")
	}
	if !errors.Is(NotFound("x"), ErrNotFound) {
		t.Error("NotFound should wrap ErrNotFound")
	}
	if !errors.Is(InvalidState("x"), ErrInvalidState) {
		t.Error("InvalidState should wrap ErrInvalidState")
	}
	inner := errors.New("socket closed")
	wrapped := Storage(inner)
	if !errors.Is(wrapped, ErrStorageUnavailable) {
		t.Error("Storage should wrap ErrStorageUnavailable")
	}
}
