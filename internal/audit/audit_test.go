package audit

import (
	"testing"
)

func TestIsSecret(t *testing.T) {
	tests := []struct {
		key      string
		isSecret bool
	}{
		{"password", true},
		{"secret", true},
		{"token", true},
		{"key", true},
		{"api_key", true},
		{"authorization", true},
		{"user_id", false},
		{"tenant_id", false},
		{"status", false},
		{"tenants", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := isSecret(tt.key); got != tt.isSecret {
				t.Errorf("isSecret(%q) = %v, want %v", tt.key, got, tt.isSecret)
			}
		})
	}
}
