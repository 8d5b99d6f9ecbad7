package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatHMS(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "00:00:00"},
		{-5 * time.Second, "00:00:00"},
		{1500 * time.Millisecond, "00:00:01"},
		{245 * time.Minute, "04:05:00"},
		{26*time.Hour + 3*time.Minute + 9*time.Second, "26:03:09"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatHMS(tt.in), "FormatHMS(%v)", tt.in)
	}
}

func TestFormatClock(t *testing.T) {
	ts := time.Date(2024, 3, 1, 8, 2, 30, 0, time.UTC)
	assert.Equal(t, "08:02:30", FormatClock(ts))
	assert.Equal(t, "--:--:--", FormatClock(time.Time{}))
}

func TestIso8601Now(t *testing.T) {
	defer func() { now = time.Now }()
	now = func() time.Time {
		return time.Date(2024, 3, 1, 8, 0, 0, 0, time.FixedZone("X", 3600))
	}
	assert.Equal(t, "2024-03-01T07:00:00Z", Iso8601Now())
}

func TestValidUntilFrom(t *testing.T) {
	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-01T08:00:02Z", ValidUntilFrom(base, 2*time.Second))
	assert.Equal(t, "", ValidUntilFrom(base, 0))
	assert.Equal(t, "", ValidUntilFrom(time.Time{}, time.Second))
	assert.Equal(t, "", Iso8601FromTime(time.Time{}))
	assert.Equal(t, "1970-01-01T00:00:10Z", Iso8601FromUnixSeconds(10))
}

func TestPresentableDistance(t *testing.T) {
	assert.Equal(t, "0 m", PresentableDistance(0))
	assert.Equal(t, "850 m", PresentableDistance(849.6))
	assert.Equal(t, "12.3 km", PresentableDistance(12345))
	assert.Equal(t, "stopped", PresentableSpeed(0))
	assert.Equal(t, "23 km/h", PresentableSpeed(22.7))
}
