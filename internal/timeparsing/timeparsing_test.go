package timeparsing

import (
	"testing"
	"time"
)

var now = time.Date(2024, 6, 5, 15, 30, 0, 0, time.UTC) // a Wednesday

func TestParseTimeAbsolute(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-06-01 12:00:00", time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)},
		{"2024-06-01", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
		{"2024-06-01T12:00:00+03:30", time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := ParseTime(tt.in, now)
		if err != nil {
			t.Errorf("ParseTime(%q) error: %v", tt.in, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("ParseTime(%q) = %v, want %v", tt.in, got, tt.want)
		}
		if got.Location() != time.UTC {
			t.Errorf("ParseTime(%q) location = %v, want UTC", tt.in, got.Location())
		}
	}
}

func TestParseTimeNow(t *testing.T) {
	got, err := ParseTime("NOW", now)
	if err != nil || !got.Equal(now) {
		t.Errorf("ParseTime(NOW) = %v, %v", got, err)
	}
}

func TestParseTimeRelative(t *testing.T) {
	got, err := ParseTime("2 hours ago", now)
	if err != nil {
		t.Fatalf("ParseTime error: %v", err)
	}
	if want := now.Add(-2 * time.Hour); !got.Equal(want) {
		t.Errorf("ParseTime(2 hours ago) = %v, want %v", got, want)
	}

	got, err = ParseTime("yesterday", now)
	if err != nil {
		t.Fatalf("ParseTime error: %v", err)
	}
	if got.Day() != 4 {
		t.Errorf("ParseTime(yesterday) = %v, want June 4", got)
	}
}

func TestParseTimeRejects(t *testing.T) {
	for _, in := range []string{"", "   ", "whenever you like"} {
		if _, err := ParseTime(in, now); err == nil {
			t.Errorf("ParseTime(%q) should fail", in)
		}
	}
}
