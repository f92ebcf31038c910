package booking

import (
	"net/http"
	"time"

	"github.com/Deijai/clinic-scheduling-backend/internal/pkg/apperror"
)

var (
	ErrNotFound             = apperror.New(http.StatusNotFound, apperror.KindNotFound, "booking not found")
	ErrTimeConflict         = apperror.New(http.StatusConflict, apperror.KindConflict, "time slot unavailable for practitioner")
	ErrConcurrentUpdate     = apperror.New(http.StatusConflict, apperror.KindConflict, "booking was modified concurrently")
	ErrInvalidTransition    = apperror.New(http.StatusBadRequest, apperror.KindInvalidTransition, "transition not allowed from current status")
	ErrCancelCutoff         = apperror.New(http.StatusBadRequest, apperror.KindPolicyViolation, "cancellation window has closed")
	ErrReasonTooShort       = apperror.New(http.StatusBadRequest, apperror.KindPolicyViolation, "cancellation reason must be at least 5 characters")
	ErrDiagnosisTooShort    = apperror.New(http.StatusBadRequest, apperror.KindPolicyViolation, "diagnosis must be at least 10 characters")
	ErrRescheduleForbidden  = apperror.New(http.StatusBadRequest, apperror.KindPolicyViolation, "booking cannot be rescheduled")
	ErrInvalidDuration      = apperror.New(http.StatusBadRequest, apperror.KindInvalidInput, "duration must be between 5 and 480 minutes")
	ErrStartTimePast        = apperror.New(http.StatusBadRequest, apperror.KindInvalidInput, "cannot schedule a booking in the past")
	ErrUnknownType          = apperror.New(http.StatusBadRequest, apperror.KindInvalidInput, "unknown booking type for kind")
	ErrPractitionerRequired = apperror.New(http.StatusBadRequest, apperror.KindInvalidInput, "practitioner is required")
)

// Kind discriminates the two booking flavors sharing one lifecycle.
type Kind string

const (
	KindAppointment   Kind = "appointment"
	KindClinicalVisit Kind = "clinical_visit"
)

type Status string

const (
	StatusScheduled   Status = "scheduled"
	StatusConfirmed   Status = "confirmed"
	StatusInProgress  Status = "in_progress"
	StatusCompleted   Status = "completed"
	StatusCancelled   Status = "cancelled"
	StatusRescheduled Status = "rescheduled"
	StatusNoShow      Status = "no_show"
)

// ActiveStatuses are the statuses that occupy a practitioner's time.
var ActiveStatuses = []Status{StatusScheduled, StatusConfirmed, StatusInProgress}

type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Per-kind booking types. An appointment may exist without a
// practitioner (e.g. vaccine drive-through); a clinical visit may not.
var (
	appointmentTypes = map[string]bool{
		"consultation": true,
		"exam":         true,
		"procedure":    true,
		"vaccine":      true,
	}
	visitTypes = map[string]bool{
		"first_visit": true,
		"follow_up":   true,
		"emergency":   true,
		"urgent":      true,
		"preventive":  true,
	}
)

// ValidType reports whether t is a known type for the given kind.
func ValidType(kind Kind, t string) bool {
	switch kind {
	case KindAppointment:
		return appointmentTypes[t]
	case KindClinicalVisit:
		return visitTypes[t]
	default:
		return false
	}
}

// Booking is a tenant-scoped appointment or clinical visit.
type Booking struct {
	ID             string
	TenantID       string
	PatientID      string
	PractitionerID string // empty = no practitioner assigned
	UnitID         string

	ScheduledAt     time.Time
	DurationMinutes int

	Kind     Kind
	Type     string
	Status   Status
	Priority Priority

	ConfirmedAt        *time.Time
	CancelledAt        *time.Time
	CancellationReason string
	ReminderSent       bool

	// Clinical-visit only: recorded entering/leaving in_progress.
	StartedAt *time.Time
	EndedAt   *time.Time
	Diagnosis string

	CreatedAt time.Time
	UpdatedAt time.Time
	CreatedBy string
	UpdatedBy string
}

// End returns the instant the booking's occupied interval closes.
func (b *Booking) End() time.Time {
	return b.ScheduledAt.Add(time.Duration(b.DurationMinutes) * time.Minute)
}

// IsTerminal reports whether no further transition is legal.
func (b *Booking) IsTerminal() bool {
	switch b.Status {
	case StatusCancelled, StatusCompleted, StatusNoShow:
		return true
	}
	return false
}

// Filter defines parameters for listing bookings within a tenant.
type Filter struct {
	PatientID      string
	PractitionerID string
	UnitID         string
	Status         string
	Kind           string
	ScheduledFrom  *time.Time
	ScheduledTo    *time.Time
	Page           int
	PageSize       int
	SortBy         string
	SortOrder      string
}
