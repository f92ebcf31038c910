package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name   string
		kind   Kind
		status Status
		event  Event
		want   bool
	}{
		{"confirm from scheduled", KindAppointment, StatusScheduled, EventConfirm, true},
		{"confirm from confirmed", KindAppointment, StatusConfirmed, EventConfirm, false},
		{"cancel from scheduled", KindAppointment, StatusScheduled, EventCancel, true},
		{"cancel from confirmed", KindAppointment, StatusConfirmed, EventCancel, true},
		{"cancel from completed", KindAppointment, StatusCompleted, EventCancel, false},
		{"cancel from no_show", KindAppointment, StatusNoShow, EventCancel, false},
		{"reschedule from scheduled", KindAppointment, StatusScheduled, EventReschedule, true},
		{"reschedule from rescheduled", KindAppointment, StatusRescheduled, EventReschedule, true},
		{"reschedule revives cancelled", KindClinicalVisit, StatusCancelled, EventReschedule, true},
		{"reschedule from completed", KindAppointment, StatusCompleted, EventReschedule, false},
		{"start visit from confirmed", KindClinicalVisit, StatusConfirmed, EventStart, true},
		{"start appointment is illegal", KindAppointment, StatusConfirmed, EventStart, false},
		{"finalize from in_progress", KindClinicalVisit, StatusInProgress, EventFinalize, true},
		{"finalize from scheduled", KindClinicalVisit, StatusScheduled, EventFinalize, false},
		{"realize appointment from confirmed", KindAppointment, StatusConfirmed, EventRealize, true},
		{"realize visit is illegal", KindClinicalVisit, StatusConfirmed, EventRealize, false},
		{"no_show from scheduled", KindAppointment, StatusScheduled, EventNoShow, true},
		{"no_show from in_progress", KindClinicalVisit, StatusInProgress, EventNoShow, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Booking{Kind: tt.kind, Status: tt.status}
			assert.Equal(t, tt.want, CanTransition(b, tt.event))
		})
	}
}

func TestApplyTransitionTimestamps(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	b := &Booking{Kind: KindClinicalVisit, Status: StatusScheduled}
	require.NoError(t, applyTransition(b, EventConfirm, now))
	assert.Equal(t, StatusConfirmed, b.Status)
	require.NotNil(t, b.ConfirmedAt)
	assert.Equal(t, now, *b.ConfirmedAt)

	later := now.Add(time.Hour)
	require.NoError(t, applyTransition(b, EventStart, later))
	assert.Equal(t, StatusInProgress, b.Status)
	require.NotNil(t, b.StartedAt)
	assert.Equal(t, later, *b.StartedAt)

	end := later.Add(30 * time.Minute)
	require.NoError(t, applyTransition(b, EventFinalize, end))
	assert.Equal(t, StatusCompleted, b.Status)
	require.NotNil(t, b.EndedAt)
	assert.Equal(t, end, *b.EndedAt)
	assert.True(t, b.IsTerminal())
}

func TestApplyTransitionIllegalLeavesBookingUntouched(t *testing.T) {
	now := time.Now()
	b := &Booking{Kind: KindAppointment, Status: StatusCompleted}

	err := applyTransition(b, EventCancel, now)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, StatusCompleted, b.Status)
	assert.Nil(t, b.CancelledAt)
}

func TestApplyTransitionRescheduleAppointment(t *testing.T) {
	now := time.Now()
	b := &Booking{Kind: KindAppointment, Status: StatusConfirmed, ReminderSent: true}

	require.NoError(t, applyTransition(b, EventReschedule, now))
	assert.Equal(t, StatusRescheduled, b.Status)
	assert.False(t, b.ReminderSent, "a moved booking is due a fresh reminder")

	// A rescheduled appointment may be moved again.
	require.NoError(t, applyTransition(b, EventReschedule, now))
	assert.Equal(t, StatusRescheduled, b.Status)
}

func TestApplyTransitionRescheduleRevivesCancelledVisit(t *testing.T) {
	now := time.Now()
	cancelled := now.Add(-time.Hour)
	b := &Booking{
		Kind:               KindClinicalVisit,
		Status:             StatusCancelled,
		CancelledAt:        &cancelled,
		CancellationReason: "patient request",
		ReminderSent:       true,
	}

	require.NoError(t, applyTransition(b, EventReschedule, now))
	assert.Equal(t, StatusScheduled, b.Status)
	assert.Nil(t, b.CancelledAt)
	assert.Empty(t, b.CancellationReason)
	assert.False(t, b.ReminderSent)
}
