package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"08:00", 8 * time.Hour, false},
		{"18:30", 18*time.Hour + 30*time.Minute, false},
		{"00:00", 0, false},
		{"09:00:00", 9 * time.Hour, false},
		{"09:00:30", 9*time.Hour + 30*time.Second, false},
		{"24:00", 0, true},
		{"08:60", 0, true},
		{"09:00:99", 0, true},
		{"09:00:xx", 0, true},
		{"eight", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDayWindow(t *testing.T) {
	s := DefaultSettings()

	monday := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	start, end, ok := s.dayWindow(monday)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC), end)

	saturday := time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC)
	_, _, ok = s.dayWindow(saturday)
	assert.False(t, ok)
}

func TestReminderWindow(t *testing.T) {
	s := DefaultSettings()
	now := time.Date(2026, 3, 2, 7, 0, 0, 0, time.UTC)

	from, to := s.reminderWindow(now, 0)
	assert.Equal(t, now, from)
	assert.Equal(t, now.Add(24*time.Hour), to)

	_, to = s.reminderWindow(now, 48*time.Hour)
	assert.Equal(t, now.Add(48*time.Hour), to)
}
