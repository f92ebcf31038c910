package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWorkDays(t *testing.T) {
	days, err := parseWorkDays("1,2,3,4,5")
	require.NoError(t, err)
	assert.Equal(t, []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}, days)

	days, err = parseWorkDays("0, 6")
	require.NoError(t, err)
	assert.Equal(t, []time.Weekday{time.Sunday, time.Saturday}, days)

	_, err = parseWorkDays("7")
	assert.Error(t, err)

	_, err = parseWorkDays("mon")
	assert.Error(t, err)

	_, err = parseWorkDays("")
	assert.Error(t, err)
}

func TestLoadRequiresDSNAndSecret(t *testing.T) {
	t.Setenv("DB_DSN", "")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("DB_DSN", "postgres://localhost/clinic")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", "secret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 30, cfg.BufferMinutes)
	assert.Equal(t, 2*time.Hour, cfg.CancelCutoff)
	assert.Equal(t, 24*time.Hour, cfg.ReminderLookAhead)
	assert.Equal(t, "UTC", cfg.ClinicTimezone)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/clinic")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("BOOKING_BUFFER_MINUTES", "0")
	t.Setenv("SLOT_MINUTES", "15")
	t.Setenv("CANCEL_CUTOFF", "90m")
	t.Setenv("WORK_DAYS", "1,3,5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.BufferMinutes)
	assert.Equal(t, 15, cfg.SlotMinutes)
	assert.Equal(t, 90*time.Minute, cfg.CancelCutoff)
	assert.Equal(t, []time.Weekday{time.Monday, time.Wednesday, time.Friday}, cfg.WorkDays)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/clinic")
	t.Setenv("JWT_SECRET", "secret")

	t.Run("slot minutes must be positive", func(t *testing.T) {
		t.Setenv("SLOT_MINUTES", "0")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("bad timezone", func(t *testing.T) {
		t.Setenv("CLINIC_TIMEZONE", "Mars/Olympus")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("bad duration", func(t *testing.T) {
		t.Setenv("CANCEL_CUTOFF", "two hours")
		_, err := Load()
		assert.Error(t, err)
	})
}
