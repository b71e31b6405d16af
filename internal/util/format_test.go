package util

import (
	"math"
	"testing"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes uint64
		want  string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.00 KiB"},
		{1536, "1.50 KiB"},
		{5 * MiB, "5.00 MiB"},
		{2 * GiB, "2.00 GiB"},
	}

	for _, tt := range tests {
		if got := FormatBytes(tt.bytes); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00"},
		{59.9, "00:00:59"},
		{61, "00:01:01"},
		{3661, "01:01:01"},
		{-5, "??:??:??"},
		{math.NaN(), "??:??:??"},
	}

	for _, tt := range tests {
		if got := FormatDuration(tt.seconds); got != tt.want {
			t.Errorf("FormatDuration(%f) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestParseFFmpegTime(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		ok    bool
	}{
		{"00:00:10.50", 10.5, true},
		{"01:02:03", 3723, true},
		{"10:00", 0, false},
		{"aa:bb:cc", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseFFmpegTime(tt.input)
		if ok != tt.ok || math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("ParseFFmpegTime(%q) = (%f, %v), want (%f, %v)", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}

func TestFormatSeconds(t *testing.T) {
	if got := FormatSeconds(1.5); got != "1.500" {
		t.Errorf("FormatSeconds(1.5) = %q, want 1.500", got)
	}
	if got := FormatSeconds(0.01); got != "0.010" {
		t.Errorf("FormatSeconds(0.01) = %q, want 0.010", got)
	}
}
