package utils

import (
	"fmt"
	"time"
)

// now is swapped in tests
var now = time.Now

// Iso8601Now returns the current time in ISO8601 format
func Iso8601Now() string {
	return now().UTC().Format(time.RFC3339)
}

// Iso8601FromUnixSeconds converts Unix timestamp to ISO8601 format
func Iso8601FromUnixSeconds(sec int64) string {
	return time.Unix(sec, 0).UTC().Format(time.RFC3339)
}

// Iso8601FromTime formats t in UTC, returning "" for the zero time
func Iso8601FromTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// ValidUntilFrom calculates the valid until timestamp
func ValidUntilFrom(base time.Time, interval time.Duration) string {
	if base.IsZero() || interval <= 0 {
		return ""
	}
	return base.Add(interval).UTC().Format(time.RFC3339)
}

// FormatHMS renders a duration as HH:MM:SS. Negative durations render as 00:00:00,
// sub-second remainders are truncated.
func FormatHMS(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// FormatClock renders the wall clock time of day of t in UTC as HH:MM:SS
func FormatClock(t time.Time) string {
	if t.IsZero() {
		return "--:--:--"
	}
	return t.UTC().Format("15:04:05")
}
