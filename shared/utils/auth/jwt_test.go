package utils

import (
	"testing"

	"github.com/google/uuid"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	userID := uuid.New()

	token, err := GenerateJWT(userID, "tenant@dwellport.com", "TENANT")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := ValidateJWT(token)
	if err != nil {
		t.Fatalf("valid access token rejected: %v", err)
	}
	if claims.UserID != userID.String() {
		t.Errorf("UserID = %q, want %q", claims.UserID, userID)
	}
	if claims.Email != "tenant@dwellport.com" {
		t.Errorf("Email = %q", claims.Email)
	}
	if claims.Role != "TENANT" {
		t.Errorf("Role = %q, want TENANT", claims.Role)
	}
}

func TestRefreshTokenIsNotAnAccessToken(t *testing.T) {
	userID := uuid.New()

	refresh, err := GenerateRefreshJWT(userID, "tenant@dwellport.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := ValidateJWT(refresh); err == nil {
		t.Error("refresh token accepted as access token")
	}
	if _, err := ValidateRefreshJWT(refresh); err != nil {
		t.Errorf("valid refresh token rejected: %v", err)
	}
}

func TestValidateJWTRejectsGarbage(t *testing.T) {
	if _, err := ValidateJWT("not-a-token"); err == nil {
		t.Error("garbage token accepted")
	}
}
