package booking

import (
	"context"
	"fmt"
	"time"
)

// overlapFinder is the slice of the store the checker needs.
type overlapFinder interface {
	FindOverlapping(ctx context.Context, tenantID, practitionerID string, from, to time.Time, statuses []Status, excludeID string) ([]*Booking, error)
}

// AvailabilityChecker decides whether a candidate interval conflicts
// with a practitioner's existing bookings once the buffer is applied.
type AvailabilityChecker struct {
	store  overlapFinder
	buffer time.Duration
}

func NewAvailabilityChecker(store overlapFinder, buffer time.Duration) *AvailabilityChecker {
	return &AvailabilityChecker{store: store, buffer: buffer}
}

// IsAvailable reports whether the candidate interval is free for the
// practitioner within the tenant. excludeID ignores one booking, used
// when re-checking during a reschedule so the booking does not conflict
// with itself. A booking without a practitioner is vacuously available.
// A store failure is always surfaced, never treated as "available".
func (c *AvailabilityChecker) IsAvailable(ctx context.Context, tenantID, practitionerID string, start time.Time, durationMinutes int, excludeID string) (bool, error) {
	if practitionerID == "" {
		return true, nil
	}

	end := start.Add(time.Duration(durationMinutes) * time.Minute)
	bufStart, bufEnd := WithBuffer(start, end, c.buffer)

	existing, err := c.store.FindOverlapping(ctx, tenantID, practitionerID, bufStart, bufEnd, ActiveStatuses, excludeID)
	if err != nil {
		return false, fmt.Errorf("availability lookup failed: %w", err)
	}

	for _, b := range existing {
		if b.ID == excludeID {
			continue
		}
		if Overlaps(bufStart, bufEnd, b.ScheduledAt, b.End()) {
			return false, nil
		}
	}
	return true, nil
}
