package handlers

import (
	"testing"

	"dwellport-backend/shared/database/models"
)

func TestServiceRequestTransitions(t *testing.T) {
	tests := []struct {
		from string
		to   string
		want bool
	}{
		{models.ServiceRequestStatusOpen, models.ServiceRequestStatusInProgress, true},
		{models.ServiceRequestStatusOpen, models.ServiceRequestStatusClosed, true},
		{models.ServiceRequestStatusOpen, models.ServiceRequestStatusResolved, false},
		{models.ServiceRequestStatusInProgress, models.ServiceRequestStatusResolved, true},
		{models.ServiceRequestStatusInProgress, models.ServiceRequestStatusClosed, true},
		{models.ServiceRequestStatusInProgress, models.ServiceRequestStatusOpen, false},
		{models.ServiceRequestStatusResolved, models.ServiceRequestStatusClosed, true},
		{models.ServiceRequestStatusResolved, models.ServiceRequestStatusInProgress, false},
		{models.ServiceRequestStatusClosed, models.ServiceRequestStatusOpen, false},
		{models.ServiceRequestStatusClosed, models.ServiceRequestStatusClosed, false},
	}

	for _, tt := range tests {
		if got := transitionAllowed(tt.from, tt.to); got != tt.want {
			t.Errorf("transitionAllowed(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestPeriodKeyPattern(t *testing.T) {
	valid := []string{"2026-01", "2026-12", "1999-06"}
	invalid := []string{"2026-13", "2026-00", "2026-1", "26-01", "2026/01", "202601", ""}

	for _, key := range valid {
		if !periodKeyPattern.MatchString(key) {
			t.Errorf("periodKeyPattern rejected valid key %q", key)
		}
	}
	for _, key := range invalid {
		if periodKeyPattern.MatchString(key) {
			t.Errorf("periodKeyPattern accepted invalid key %q", key)
		}
	}
}
