package auth

import (
	"testing"
)

func TestHashPassword_Deterministic(t *testing.T) {
	t.Parallel()

	first := HashPassword("correct horse battery staple")
	second := HashPassword("correct horse battery staple")

	if first != second {
		t.Errorf("expected identical digests, got %s and %s", first, second)
	}

	if len(first) != PasswordHashLen {
		t.Errorf("expected %d hex chars, got %d", PasswordHashLen, len(first))
	}
}

func TestHashPassword_KnownVector(t *testing.T) {
	t.Parallel()

	// SHA3-256("")
	const want = "a7ffc6f8bf1ed76651c14756a061d662f580ff4de43b49fa82d80a4b80f8434a"
	if got := HashPassword(""); got != want {
		t.Errorf("HashPassword(\"\") = %s, want %s", got, want)
	}
}

func TestHashPassword_DifferentInputs(t *testing.T) {
	t.Parallel()

	if HashPassword("password1") == HashPassword("password2") {
		t.Error("different passwords should produce different digests")
	}
}

func TestVerifyPassword(t *testing.T) {
	t.Parallel()

	stored := HashPassword("hunter2")

	tests := []struct {
		name     string
		password string
		hash     string
		want     bool
	}{
		{"match", "hunter2", stored, true},
		{"wrong password", "hunter3", stored, false},
		{"empty password", "", stored, false},
		{"corrupted hash", "hunter2", stored[:10], false},
		{"empty hash", "hunter2", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VerifyPassword(tt.password, tt.hash); got != tt.want {
				t.Errorf("VerifyPassword() = %v, want %v", got, tt.want)
			}
		})
	}
}
