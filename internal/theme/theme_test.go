package theme

import (
	"strings"
	"testing"
)

func TestMessages(t *testing.T) {
	DisableColor()

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"error", ErrorMessage("no Node.js installation found"), "✗ no Node.js installation found"},
		{"warning", WarningMessage("Could not list packages for v20.11.1"), "⚠ Could not list packages for v20.11.1"},
		{"info", InfoMessage("Update postponed"), "ℹ Update postponed"},
		{"success", SuccessMessage("Updated"), "✓ Updated"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if strings.TrimSpace(tt.got) != tt.want {
				t.Errorf("message = %q, want %q", tt.got, tt.want)
			}
		})
	}
}
