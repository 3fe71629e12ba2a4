package config

import (
	"testing"
	"time"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Duration
		wantErr  bool
	}{
		// Days
		{"1d", 24 * time.Hour, false},
		{"14d", 14 * 24 * time.Hour, false},

		// Weeks
		{"1w", 7 * 24 * time.Hour, false},
		{"2w", 14 * 24 * time.Hour, false},

		// Standard Go durations
		{"100ms", 100 * time.Millisecond, false},
		{"1h", time.Hour, false},

		// Edge cases
		{"0d", 0, false},
		{"", 0, false},
		{"  14d  ", 14 * 24 * time.Hour, false},

		// Errors
		{"invalid", 0, true},
		{"d", 0, true},
		{"w", 0, true},
		{"-1d", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseDuration(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseDuration(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if got != tt.expected {
				t.Errorf("parseDuration(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if cfg.IconSize != 24 {
		t.Errorf("IconSize = %d, want 24", cfg.IconSize)
	}
	if cfg.Background != "#1a1a1a" {
		t.Errorf("Background = %q, want #1a1a1a", cfg.Background)
	}
	if cfg.RedockDelay != 100*time.Millisecond {
		t.Errorf("RedockDelay = %v, want 100ms", cfg.RedockDelay)
	}
}

func TestLoadFromMissingFile(t *testing.T) {
	if _, err := LoadFrom("/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestApplyDefaultsFillsZeroValues(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()
	if cfg.IconSize != 24 || cfg.Background != "#1a1a1a" || cfg.RedockDelay != 100*time.Millisecond {
		t.Errorf("applyDefaults left zero values: %+v", cfg)
	}
}
