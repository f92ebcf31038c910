package http

import (
	"time"

	"github.com/Deijai/clinic-scheduling-backend/internal/booking"
	"github.com/Deijai/clinic-scheduling-backend/internal/pkg/request"
)

// ListBookingsRequest defines query parameters for listing bookings.
type ListBookingsRequest struct {
	request.ListParams
	PatientID      string     `form:"patient_id" binding:"omitempty,uuid"`
	PractitionerID string     `form:"practitioner_id" binding:"omitempty,uuid"`
	UnitID         string     `form:"unit_id" binding:"omitempty,uuid"`
	Status         string     `form:"status" binding:"omitempty,oneof=scheduled confirmed in_progress completed cancelled rescheduled no_show"`
	Kind           string     `form:"kind" binding:"omitempty,oneof=appointment clinical_visit"`
	ScheduledFrom  *time.Time `form:"scheduled_from" time_format:"2006-01-02T15:04:05Z07:00"`
	ScheduledTo    *time.Time `form:"scheduled_to" time_format:"2006-01-02T15:04:05Z07:00"`
	SortBy         string     `form:"sort_by" binding:"omitempty,oneof=scheduled_at created_at status priority"`
	SortOrder      string     `form:"sort_order" binding:"omitempty,oneof=asc desc"`
}

type CreateBookingRequest struct {
	PatientID       string    `json:"patient_id" binding:"required,uuid"`
	PractitionerID  string    `json:"practitioner_id" binding:"omitempty,uuid"`
	UnitID          string    `json:"unit_id" binding:"omitempty,uuid"`
	ScheduledAt     time.Time `json:"scheduled_at" binding:"required"`
	DurationMinutes int       `json:"duration_minutes" binding:"required"`
	Kind            string    `json:"kind" binding:"required,oneof=appointment clinical_visit"`
	Type            string    `json:"type" binding:"required"`
	Priority        string    `json:"priority" binding:"omitempty,oneof=normal high urgent"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type RescheduleBookingRequest struct {
	ScheduledAt     time.Time `json:"scheduled_at" binding:"required"`
	DurationMinutes int       `json:"duration_minutes" binding:"omitempty"`
}

type FinalizeBookingRequest struct {
	Diagnosis string `json:"diagnosis" binding:"required"`
}

// AgendaRequest defines query parameters for the day agenda views.
type AgendaRequest struct {
	PractitionerID string `form:"practitioner_id" binding:"required,uuid"`
	Date           string `form:"date" binding:"required,datetime=2006-01-02"`
}

// RemindersDueRequest optionally overrides the configured look-ahead.
type RemindersDueRequest struct {
	LookAheadHours int `form:"look_ahead_hours" binding:"omitempty,min=1,max=168"`
}

type BookingResponse struct {
	ID              string     `json:"id"`
	PatientID       string     `json:"patient_id"`
	PractitionerID  string     `json:"practitioner_id,omitempty"`
	UnitID          string     `json:"unit_id,omitempty"`
	ScheduledAt     time.Time  `json:"scheduled_at"`
	EndsAt          time.Time  `json:"ends_at"`
	DurationMinutes int        `json:"duration_minutes"`
	Kind            string     `json:"kind"`
	Type            string     `json:"type"`
	Status          string     `json:"status"`
	Priority        string     `json:"priority"`
	ConfirmedAt     *time.Time `json:"confirmed_at,omitempty"`
	CancelledAt     *time.Time `json:"cancelled_at,omitempty"`
	CancelReason    string     `json:"cancellation_reason,omitempty"`
	ReminderSent    bool       `json:"reminder_sent"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	EndedAt         *time.Time `json:"ended_at,omitempty"`
	Diagnosis       string     `json:"diagnosis,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:              b.ID,
		PatientID:       b.PatientID,
		PractitionerID:  b.PractitionerID,
		UnitID:          b.UnitID,
		ScheduledAt:     b.ScheduledAt,
		EndsAt:          b.End(),
		DurationMinutes: b.DurationMinutes,
		Kind:            string(b.Kind),
		Type:            b.Type,
		Status:          string(b.Status),
		Priority:        string(b.Priority),
		ConfirmedAt:     b.ConfirmedAt,
		CancelledAt:     b.CancelledAt,
		CancelReason:    b.CancellationReason,
		ReminderSent:    b.ReminderSent,
		StartedAt:       b.StartedAt,
		EndedAt:         b.EndedAt,
		Diagnosis:       b.Diagnosis,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}
