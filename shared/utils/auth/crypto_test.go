package utils

import (
	"strings"
	"testing"
)

func TestHashSessionToken(t *testing.T) {
	hash := HashSessionToken("some-session-token")

	if len(hash) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(hash))
	}
	if hash != HashSessionToken("some-session-token") {
		t.Error("hashing the same token twice gave different results")
	}
	if hash == HashSessionToken("some-session-tokeN") {
		t.Error("different tokens hashed to the same value")
	}
	if strings.Contains(hash, "some-session-token") {
		t.Error("hash leaks the raw token")
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !CheckPasswordHash("correct horse battery staple", hash) {
		t.Error("correct password rejected")
	}
	if CheckPasswordHash("wrong password", hash) {
		t.Error("wrong password accepted")
	}
}

func TestGenerateSessionID(t *testing.T) {
	first, err := GenerateSessionID()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := GenerateSessionID()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(first) != 64 {
		t.Errorf("session id length = %d, want 64", len(first))
	}
	if first == second {
		t.Error("two generated session ids collided")
	}
}

func TestGenerateNumericCode(t *testing.T) {
	code, err := GenerateNumericCode(6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(code) != 6 {
		t.Errorf("code length = %d, want 6", len(code))
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			t.Errorf("code %q contains non-digit %q", code, r)
		}
	}
}
