package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNowIsUTC(t *testing.T) {
	now := Now()
	assert.Equal(t, time.UTC, now.Location())
	assert.WithinDuration(t, time.Now(), now, time.Second)
}

// Meta delivers message timestamps as unix-second strings, e.g. "1717243200".
func TestUnixToTime_MetaTimestamps(t *testing.T) {
	tests := []struct {
		name      string
		timestamp int64
		expected  time.Time
		zero      bool
	}{
		{name: "message timestamp", timestamp: 1717243200, expected: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)},
		{name: "missing field", timestamp: 0, zero: true},
		{name: "garbage parsed as negative", timestamp: -42, zero: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := UnixToTime(tc.timestamp)
			if tc.zero {
				assert.True(t, got.IsZero())
				return
			}
			assert.True(t, tc.expected.Equal(got))
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestFormatISO8601_HealthTimestamp(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*60*60)
	stamp := FormatISO8601(time.Date(2024, 6, 1, 19, 0, 0, 500, jakarta))
	assert.Equal(t, "2024-06-01T12:00:00Z", stamp)

	parsed, err := time.Parse(time.RFC3339, FormatISO8601(Now()))
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), parsed, 2*time.Second)
}
