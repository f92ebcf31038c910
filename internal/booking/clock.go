package booking

import "time"

// Clock provides the current instant. Injected so the cutoff and
// reminder-window logic can be tested against a frozen time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }
