package utils

import "testing"

func TestValidateEmail(t *testing.T) {
	valid := []string{"tenant@dwellport.com", "first.last+tag@example.org", " padded@example.com "}
	invalid := []string{"", "not-an-email", "missing@domain@twice.com"}

	for _, email := range valid {
		if err := ValidateEmail(email); err != nil {
			t.Errorf("ValidateEmail(%q) = %v, want nil", email, err)
		}
	}
	for _, email := range invalid {
		if err := ValidateEmail(email); err == nil {
			t.Errorf("ValidateEmail(%q) = nil, want error", email)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		wantErr  bool
	}{
		{"letters1andDigits", false},
		{"abc12345", false},
		{"short1", true},
		{"allletters", true},
		{"12345678", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidatePassword(tt.password)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidatePassword(%q) error = %v, wantErr %v", tt.password, err, tt.wantErr)
		}
	}
}
