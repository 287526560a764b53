package config

import (
	"errors"
	"testing"
	"time"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
	}{
		{"90m", 90 * time.Minute},
		{"1h30m", 90 * time.Minute},
		{"24h", 24 * time.Hour},
		{"7d", 7 * 24 * time.Hour},
		{"2w", 14 * 24 * time.Hour},
		{"1d12h", 36 * time.Hour},
		{"1w1d", 8 * 24 * time.Hour},
		{" 3d ", 72 * time.Hour},
	}

	for _, tt := range tests {
		got, err := ParseDuration(tt.input)
		if err != nil {
			t.Errorf("ParseDuration(%q) error = %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDuration(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseDurationInvalid(t *testing.T) {
	for _, input := range []string{"", "soon", "7x", "d7", "1d soon", "x1d"} {
		_, err := ParseDuration(input)
		if !errors.Is(err, ErrInvalidDuration) {
			t.Errorf("ParseDuration(%q) error = %v, want ErrInvalidDuration", input, err)
		}
	}
}

func TestParseTimeRefAbsolute(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{"2025-01-26T10:00:01Z", time.Date(2025, 1, 26, 10, 0, 1, 0, time.UTC)},
		{"2025-01-26 10:00:01", time.Date(2025, 1, 26, 10, 0, 1, 0, time.UTC)},
		{"2025-01-26 10:00", time.Date(2025, 1, 26, 10, 0, 0, 0, time.UTC)},
		{"2025-01-26", time.Date(2025, 1, 26, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		got, err := ParseTimeRef(tt.input)
		if err != nil {
			t.Fatalf("ParseTimeRef(%q) error = %v", tt.input, err)
		}
		if !got.Equal(tt.want) {
			t.Errorf("ParseTimeRef(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseTimeRefRelative(t *testing.T) {
	now := time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		input string
		want  time.Time
	}{
		{"1h30m", now.Add(-90 * time.Minute)},
		{"1d2h", now.Add(-26 * time.Hour)},
		{"1w", now.Add(-7 * 24 * time.Hour)},
		{"today", time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)},
		{"Yesterday", time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		got, err := parseTimeRef(tt.input, now)
		if err != nil {
			t.Fatalf("parseTimeRef(%q) error = %v", tt.input, err)
		}
		if !got.Equal(tt.want) {
			t.Errorf("parseTimeRef(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseTimeRefUsesClock(t *testing.T) {
	before := time.Now()
	got, err := ParseTimeRef("1h")
	if err != nil {
		t.Fatalf("ParseTimeRef() error = %v", err)
	}
	if got.After(before.Add(-time.Hour + time.Second)) || got.Before(before.Add(-time.Hour-2*time.Second)) {
		t.Errorf("ParseTimeRef(1h) = %v, want about an hour before %v", got, before)
	}
}

func TestParseTimeRefInvalid(t *testing.T) {
	for _, input := range []string{"", "banana", "-1h", "0s"} {
		if _, err := ParseTimeRef(input); err == nil {
			t.Errorf("ParseTimeRef(%q) expected error", input)
		}
	}
}
