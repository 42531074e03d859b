// ABOUTME: Tests for shared utility functions used by CLI commands
// ABOUTME: Verifies truncate, formatTime, and volume formatting helpers

package commands

import (
	"testing"
	"time"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{
			name:   "short string unchanged",
			input:  "Shell",
			maxLen: 10,
			want:   "Shell",
		},
		{
			name:   "exact length unchanged",
			input:  "Shell",
			maxLen: 5,
			want:   "Shell",
		},
		{
			name:   "long string truncated",
			input:  "Shell Trading International",
			maxLen: 15,
			want:   "Shell Tradin...",
		},
		{
			name:   "very short maxLen",
			input:  "Shell",
			maxLen: 2,
			want:   "Sh",
		},
		{
			name:   "empty string",
			input:  "",
			maxLen: 10,
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.input, tt.maxLen)
			if got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestFormatTime(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"just now", now.Add(-30 * time.Second), "just now"},
		{"minutes ago", now.Add(-5 * time.Minute), "5m ago"},
		{"hours ago", now.Add(-3 * time.Hour), "3h ago"},
		{"days ago", now.Add(-48 * time.Hour), "2d ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatTime(tt.t); got != tt.want {
				t.Errorf("formatTime() = %q, want %q", got, tt.want)
			}
		})
	}

	old := now.Add(-30 * 24 * time.Hour)
	if got := formatTime(old); got != old.Format("2006-01-02") {
		t.Errorf("formatTime(old) = %q, want date format", got)
	}
}

func TestFormatVolume(t *testing.T) {
	if got := formatVolume(500000, "BBL"); got != "500000 BBL" {
		t.Errorf("formatVolume() = %q, want %q", got, "500000 BBL")
	}
	if got := formatVolume(0, ""); got != "0" {
		t.Errorf("formatVolume() = %q, want %q", got, "0")
	}
}
