package booking

import "time"

// Event names a lifecycle transition request.
type Event string

const (
	EventConfirm    Event = "confirm"
	EventCancel     Event = "cancel"
	EventReschedule Event = "reschedule"
	EventStart      Event = "start_attendance"
	EventFinalize   Event = "finalize"
	EventRealize    Event = "mark_realized"
	EventNoShow     Event = "mark_no_show"
)

// transitions lists the statuses each event may fire from. Terminal
// statuses (cancelled, completed, no_show) appear as a source only for
// reschedule, which deliberately admits cancelled (revive path).
var transitions = map[Event][]Status{
	EventConfirm:    {StatusScheduled},
	EventCancel:     {StatusScheduled, StatusConfirmed},
	EventReschedule: {StatusScheduled, StatusConfirmed, StatusRescheduled, StatusCancelled},
	EventStart:      {StatusScheduled, StatusConfirmed},
	EventFinalize:   {StatusInProgress},
	EventRealize:    {StatusScheduled, StatusConfirmed},
	EventNoShow:     {StatusScheduled, StatusConfirmed},
}

// kindOnly restricts events that make sense for a single kind.
var kindOnly = map[Event]Kind{
	EventStart:    KindClinicalVisit,
	EventFinalize: KindClinicalVisit,
	EventRealize:  KindAppointment,
}

// CanTransition reports whether the event is legal for the booking's
// current status and kind.
func CanTransition(b *Booking, ev Event) bool {
	if k, restricted := kindOnly[ev]; restricted && b.Kind != k {
		return false
	}
	for _, s := range transitions[ev] {
		if b.Status == s {
			return true
		}
	}
	return false
}

// applyTransition mutates the booking for a legal event, recording the
// event's timestamp side effects. Field-level validation (reason and
// diagnosis lengths, availability of the new time) happens before this
// is called; an illegal event returns ErrInvalidTransition untouched.
func applyTransition(b *Booking, ev Event, now time.Time) error {
	if !CanTransition(b, ev) {
		return ErrInvalidTransition
	}

	switch ev {
	case EventConfirm:
		b.Status = StatusConfirmed
		b.ConfirmedAt = &now

	case EventCancel:
		b.Status = StatusCancelled
		b.CancelledAt = &now

	case EventReschedule:
		revived := b.Status == StatusCancelled
		if b.Kind == KindAppointment {
			b.Status = StatusRescheduled
		} else if revived {
			b.Status = StatusScheduled
		}
		if revived {
			b.CancelledAt = nil
			b.CancellationReason = ""
		}
		// A moved booking becomes eligible for a fresh reminder.
		b.ReminderSent = false

	case EventStart:
		b.Status = StatusInProgress
		b.StartedAt = &now

	case EventFinalize:
		b.Status = StatusCompleted
		b.EndedAt = &now

	case EventRealize:
		b.Status = StatusCompleted

	case EventNoShow:
		b.Status = StatusNoShow
	}

	b.UpdatedAt = now
	return nil
}
