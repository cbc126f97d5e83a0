package auth

import (
	"testing"
	"time"
)

func TestGenerateAPIKey_Format(t *testing.T) {
	t.Parallel()

	key, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("GenerateAPIKey failed: %v", err)
	}

	if len(key) != APIKeyLen {
		t.Errorf("Key should be %d chars, got: %d", APIKeyLen, len(key))
	}

	if !ValidateAPIKeyFormat(key) {
		t.Errorf("Key should be lowercase hex, got: %s", key)
	}
}

func TestGenerateAPIKey_Uniqueness(t *testing.T) {
	t.Parallel()

	const iterations = 10000
	seen := make(map[string]struct{}, iterations)

	for i := 0; i < iterations; i++ {
		key, err := GenerateAPIKey()
		if err != nil {
			t.Fatalf("GenerateAPIKey failed on iteration %d: %v", i, err)
		}
		if !ValidateAPIKeyFormat(key) {
			t.Fatalf("invalid key format on iteration %d: %s", i, key)
		}
		if _, dup := seen[key]; dup {
			t.Fatalf("duplicate key on iteration %d: %s", i, key)
		}
		seen[key] = struct{}{}
	}
}

func TestValidateAPIKeyFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		key   string
		valid bool
	}{
		{"valid", "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef", true},
		{"too short", "0123456789abcdef", false},
		{"too long", "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef00", false},
		{"uppercase", "0123456789ABCDEF0123456789abcdef0123456789abcdef0123456789abcdef", false},
		{"non hex", "z123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateAPIKeyFormat(tt.key); got != tt.valid {
				t.Errorf("ValidateAPIKeyFormat(%q) = %v, want %v", tt.key, got, tt.valid)
			}
		})
	}
}

func TestComputeExpiration(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		days int
		want time.Time
	}{
		{"default thirty", DefaultKeyTTLDays, time.Date(2026, 11, 17, 9, 30, 0, 0, time.UTC)},
		{"one day", 1, time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)},
		{"zero falls back", 0, time.Date(2026, 11, 17, 9, 30, 0, 0, time.UTC)},
		{"negative falls back", -5, time.Date(2026, 11, 17, 9, 30, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeExpiration(now, tt.days); !got.Equal(tt.want) {
				t.Errorf("ComputeExpiration(%d) = %s, want %s", tt.days, got, tt.want)
			}
		})
	}
}

func TestComputeExpiration_ReturnsUTC(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC+5", 5*60*60)
	got := ComputeExpiration(time.Date(2026, 1, 1, 0, 0, 0, 0, loc), 30)

	if got.Location() != time.UTC {
		t.Errorf("expected UTC location, got %s", got.Location())
	}
}

func BenchmarkGenerateAPIKey(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = GenerateAPIKey()
	}
}
