package booking

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Settings are the engine tunables, injected at construction so tenants
// can override the clinic defaults without code changes.
type Settings struct {
	Buffer            time.Duration // padding around bookings for conflict checks
	SlotWidth         time.Duration // agenda slot width
	DayStart          time.Duration // working window start, offset from midnight
	DayEnd            time.Duration // working window end, offset from midnight
	WorkDays          map[time.Weekday]bool
	CancelCutoff      time.Duration // minimum lead time for cancellation
	ReminderLookAhead time.Duration
	Location          *time.Location // clinic reference timezone
}

// DefaultSettings returns the standing clinic policy: 30-minute buffer
// and slots, 08:00-18:00 Monday through Friday, 2-hour cancellation
// cutoff, 24-hour reminder look-ahead, UTC.
func DefaultSettings() Settings {
	return Settings{
		Buffer:    30 * time.Minute,
		SlotWidth: 30 * time.Minute,
		DayStart:  8 * time.Hour,
		DayEnd:    18 * time.Hour,
		WorkDays: map[time.Weekday]bool{
			time.Monday:    true,
			time.Tuesday:   true,
			time.Wednesday: true,
			time.Thursday:  true,
			time.Friday:    true,
		},
		CancelCutoff:      2 * time.Hour,
		ReminderLookAhead: 24 * time.Hour,
		Location:          time.UTC,
	}
}

// ParseTimeOfDay converts "HH:MM" or "HH:MM:SS" into an offset from midnight.
func ParseTimeOfDay(s string) (time.Duration, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	var sec int
	if len(parts) == 3 {
		sec, err = strconv.Atoi(parts[2])
		if err != nil || sec < 0 || sec > 59 {
			return 0, fmt.Errorf("invalid second in %q", s)
		}
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(sec)*time.Second, nil
}
