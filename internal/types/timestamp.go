package types

import (
	"fmt"
	"time"
)

// TimestampLayout is the stored form of every updated_at value. It sorts
// lexicographically in chronological order.
const TimestampLayout = "2006-01-02 15:04:05"

// FormatTimestamp renders t in UTC at second resolution.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp reads a value written by FormatTimestamp.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.ParseInLocation(TimestampLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}

// Truncate drops everything below one second, which is what a stored
// timestamp can represent.
func Truncate(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

// Supersedes reports whether a write stamped at replaces a record stored
// with the stamp stored. Equal stamps keep the stored record. A stored stamp
// that is empty or unreadable loses to any write.
func Supersedes(at time.Time, stored string) bool {
	prev, err := ParseTimestamp(stored)
	if err != nil {
		return true
	}
	return Truncate(at).After(prev)
}
