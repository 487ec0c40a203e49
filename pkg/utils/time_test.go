package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatISO(t *testing.T) {
	loc := time.FixedZone("CEST", 2*60*60)
	ts := time.Date(2024, 5, 1, 12, 30, 15, 123456789, loc)

	assert.Equal(t, "2024-05-01T10:30:15.123Z", FormatISO(ts))
}

func TestParseISO(t *testing.T) {
	parsed, err := ParseISO("2024-05-01T10:30:15.123Z")
	require.NoError(t, err)
	assert.Equal(t, 123*int(time.Millisecond), parsed.Nanosecond())

	parsed, err = ParseISO("2024-05-01T12:30:15+02:00")
	require.NoError(t, err)
	assert.Equal(t, 10, parsed.UTC().Hour())

	_, err = ParseISO("yesterday")
	assert.Error(t, err)
}

func TestMonotonicClock_NeverRepeatsAMillisecond(t *testing.T) {
	frozen := time.Date(2024, 5, 1, 10, 0, 0, 400_000, time.UTC)
	clock := MonotonicClock(func() time.Time { return frozen })

	first := FormatISO(clock())
	second := FormatISO(clock())
	third := FormatISO(clock())

	assert.Equal(t, "2024-05-01T10:00:00.000Z", first)
	assert.Equal(t, "2024-05-01T10:00:00.001Z", second)
	assert.Equal(t, "2024-05-01T10:00:00.002Z", third)
}

func TestMonotonicClock_FollowsAdvancingTime(t *testing.T) {
	current := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	clock := MonotonicClock(func() time.Time { return current })

	clock()
	current = current.Add(time.Second)

	assert.Equal(t, current, clock())
}
