package cli

import (
	"testing"
	"time"
)

func TestParseTimePoint(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
	}{
		{"", 0},
		{"90", 90 * time.Second},
		{"90.5", 90*time.Second + 500*time.Millisecond},
		{"1:30", 90 * time.Second},
		{"01:02:03", time.Hour + 2*time.Minute + 3*time.Second},
		{"1m30s", 90 * time.Second},
		{"  45 ", 45 * time.Second},
	}
	for _, tc := range cases {
		got, err := parseTimePoint(tc.in)
		if err != nil {
			t.Errorf("parseTimePoint(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("parseTimePoint(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestParseTimePointRejectsGarbage(t *testing.T) {
	for _, in := range []string{"abc", "-5", "1:2:3:4", "1:-30", "-1m"} {
		if _, err := parseTimePoint(in); err == nil {
			t.Errorf("parseTimePoint(%q): expected error", in)
		}
	}
}
