package booking

import "time"

// Policy encodes the time-based eligibility rules gating transitions.
// Pure predicates over a booking snapshot; the service consults them
// before applying the lifecycle and rejects with a domain error.
type Policy struct {
	CancelCutoff time.Duration
}

// CanCancel reports whether the booking may still be cancelled at the
// given instant: active status and at least the cutoff of lead time.
// A booking exactly at the cutoff boundary is still cancellable.
func (p Policy) CanCancel(b *Booking, now time.Time) bool {
	if b.Status != StatusScheduled && b.Status != StatusConfirmed {
		return false
	}
	return b.ScheduledAt.Sub(now) >= p.CancelCutoff
}

// CanReschedule reports whether the booking may be moved. Cancelled
// bookings are deliberately included (revive path, pending product
// clarification).
func (p Policy) CanReschedule(b *Booking) bool {
	switch b.Status {
	case StatusScheduled, StatusConfirmed, StatusRescheduled, StatusCancelled:
		return true
	}
	return false
}
