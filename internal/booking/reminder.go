package booking

import "time"

// reminderWindow computes the [now, now+lookAhead] range a booking's
// scheduled time must fall into to be due for a reminder. A zero or
// negative override falls back to the configured look-ahead.
func (s Settings) reminderWindow(now time.Time, lookAhead time.Duration) (from, to time.Time) {
	if lookAhead <= 0 {
		lookAhead = s.ReminderLookAhead
	}
	return now, now.Add(lookAhead)
}
