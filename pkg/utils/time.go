package utils

import (
	"sync"
	"time"
)

// ISOMillis is the timestamp layout of every stored item: UTC with
// millisecond precision.
const ISOMillis = "2006-01-02T15:04:05.000Z"

// FormatISO renders t in UTC with millisecond precision
func FormatISO(t time.Time) string {
	return t.UTC().Format(ISOMillis)
}

// NowISO returns the current time in ISOMillis format
func NowISO() string {
	return FormatISO(time.Now())
}

// MonotonicClock wraps now so that every call returns a time at least one
// millisecond after the previous one, truncated to milliseconds. Two writes
// made through the same clock therefore never format to the same ISOMillis
// timestamp.
func MonotonicClock(now func() time.Time) func() time.Time {
	var (
		mu   sync.Mutex
		last time.Time
	)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := now().UTC().Truncate(time.Millisecond)
		if !t.After(last) {
			t = last.Add(time.Millisecond)
		}
		last = t
		return t
	}
}

// ParseISO parses a stored timestamp. RFC 3339 strings written by other
// clients are accepted as well.
func ParseISO(s string) (time.Time, error) {
	if t, err := time.Parse(ISOMillis, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}
