package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Deijai/clinic-scheduling-backend/internal/cache"
	"github.com/Deijai/clinic-scheduling-backend/internal/events"
	"github.com/Deijai/clinic-scheduling-backend/internal/metrics"
)

// CreateRequest carries an already-validated scheduling request.
// Foreign keys (patient, practitioner, unit) are resolved upstream.
type CreateRequest struct {
	PatientID       string
	PractitionerID  string
	UnitID          string
	ScheduledAt     time.Time
	DurationMinutes int
	Kind            Kind
	Type            string
	Priority        Priority
}

// Service is the scheduling facade. It is the only entry point callers
// interact with; availability, lifecycle and policy are internals.
type Service interface {
	Create(ctx context.Context, tenantID, actorID string, req CreateRequest) (*Booking, error)
	GetByID(ctx context.Context, tenantID, id string) (*Booking, error)
	List(ctx context.Context, tenantID string, filter Filter) ([]*Booking, int, error)

	Confirm(ctx context.Context, tenantID, actorID, id string) (*Booking, error)
	Cancel(ctx context.Context, tenantID, actorID, id, reason string) (*Booking, error)
	Reschedule(ctx context.Context, tenantID, actorID, id string, newTime time.Time, newDurationMinutes int) (*Booking, error)
	StartAttendance(ctx context.Context, tenantID, actorID, id string) (*Booking, error)
	Finalize(ctx context.Context, tenantID, actorID, id, diagnosis string) (*Booking, error)
	MarkRealized(ctx context.Context, tenantID, actorID, id string) (*Booking, error)
	MarkNoShow(ctx context.Context, tenantID, actorID, id string) (*Booking, error)

	DayAgenda(ctx context.Context, tenantID, practitionerID string, date time.Time) (*DayAgenda, error)
	FreeSlots(ctx context.Context, tenantID, practitionerID string, date time.Time) ([]Slot, error)
	ReminderCandidates(ctx context.Context, tenantID string, lookAhead time.Duration) ([]*Booking, error)
	MarkReminderSent(ctx context.Context, tenantID, id string) error
}

// ServiceParams bundles the facade dependencies. Clock, Cache and
// Publisher may be nil; sensible no-op defaults are used.
type ServiceParams struct {
	Repo      Repository
	Settings  Settings
	Clock     Clock
	Logger    zerolog.Logger
	Metrics   *metrics.SchedulingMetrics
	Cache     cache.Cache
	CacheTTL  time.Duration
	Publisher events.Publisher
}

type service struct {
	repo      Repository
	checker   *AvailabilityChecker
	settings  Settings
	policy    Policy
	clock     Clock
	logger    zerolog.Logger
	metrics   *metrics.SchedulingMetrics
	cache     cache.Cache
	cacheTTL  time.Duration
	publisher events.Publisher
}

func NewService(p ServiceParams) Service {
	if p.Clock == nil {
		p.Clock = SystemClock()
	}
	if p.Cache == nil {
		p.Cache = cache.Noop{}
	}
	if p.Publisher == nil {
		p.Publisher = events.Noop{}
	}
	if p.CacheTTL <= 0 {
		p.CacheTTL = time.Minute
	}
	if p.Settings.Location == nil {
		p.Settings.Location = time.UTC
	}
	return &service{
		repo:      p.Repo,
		checker:   NewAvailabilityChecker(p.Repo, p.Settings.Buffer),
		settings:  p.Settings,
		policy:    Policy{CancelCutoff: p.Settings.CancelCutoff},
		clock:     p.Clock,
		logger:    p.Logger,
		metrics:   p.Metrics,
		cache:     p.Cache,
		cacheTTL:  p.CacheTTL,
		publisher: p.Publisher,
	}
}

// normalize fills defaults before validation. Pure: it never rejects.
func normalize(req CreateRequest) CreateRequest {
	if req.Priority == "" {
		req.Priority = PriorityNormal
	}
	req.Type = strings.ToLower(strings.TrimSpace(req.Type))
	return req
}

func (s *service) validateCreate(req CreateRequest, now time.Time) error {
	if req.DurationMinutes < 5 || req.DurationMinutes > 480 {
		return ErrInvalidDuration
	}
	if !ValidType(req.Kind, req.Type) {
		return ErrUnknownType
	}
	if req.Kind == KindClinicalVisit && req.PractitionerID == "" {
		return ErrPractitionerRequired
	}
	if !req.ScheduledAt.After(now) {
		return ErrStartTimePast
	}
	return nil
}

func (s *service) Create(ctx context.Context, tenantID, actorID string, req CreateRequest) (*Booking, error) {
	req = normalize(req)
	now := s.clock.Now()

	if err := s.validateCreate(req, now); err != nil {
		return nil, err
	}

	free, err := s.checker.IsAvailable(ctx, tenantID, req.PractitionerID, req.ScheduledAt, req.DurationMinutes, "")
	if err != nil {
		return nil, err
	}
	if !free {
		s.metrics.ObserveConflict()
		return nil, ErrTimeConflict
	}

	b := &Booking{
		TenantID:        tenantID,
		PatientID:       req.PatientID,
		PractitionerID:  req.PractitionerID,
		UnitID:          req.UnitID,
		ScheduledAt:     req.ScheduledAt,
		DurationMinutes: req.DurationMinutes,
		Kind:            req.Kind,
		Type:            req.Type,
		Status:          StatusScheduled,
		Priority:        req.Priority,
		CreatedBy:       actorID,
		UpdatedBy:       actorID,
	}

	// The repository re-checks under a per-practitioner lock; the check
	// above only gives callers a fast, friendly failure.
	if err := s.repo.Insert(ctx, b); err != nil {
		if errors.Is(err, ErrTimeConflict) {
			s.metrics.ObserveConflict()
		}
		return nil, err
	}

	s.metrics.ObserveCreated(string(b.Kind))
	s.invalidateAgenda(ctx, b.TenantID, b.PractitionerID, b.ScheduledAt)
	s.publish(ctx, "booking.created", b)

	return b, nil
}

func (s *service) GetByID(ctx context.Context, tenantID, id string) (*Booking, error) {
	return s.repo.FindByID(ctx, tenantID, id)
}

func (s *service) List(ctx context.Context, tenantID string, filter Filter) ([]*Booking, int, error) {
	return s.repo.List(ctx, tenantID, filter)
}

func (s *service) Confirm(ctx context.Context, tenantID, actorID, id string) (*Booking, error) {
	return s.applyAndPersist(ctx, tenantID, actorID, id, EventConfirm, nil)
}

func (s *service) Cancel(ctx context.Context, tenantID, actorID, id, reason string) (*Booking, error) {
	return s.applyAndPersist(ctx, tenantID, actorID, id, EventCancel, func(b *Booking, now time.Time) error {
		if !s.policy.CanCancel(b, now) {
			if CanTransition(b, EventCancel) {
				return ErrCancelCutoff
			}
			return ErrInvalidTransition
		}
		if len(strings.TrimSpace(reason)) < 5 {
			return ErrReasonTooShort
		}
		b.CancellationReason = strings.TrimSpace(reason)
		return nil
	})
}

func (s *service) StartAttendance(ctx context.Context, tenantID, actorID, id string) (*Booking, error) {
	return s.applyAndPersist(ctx, tenantID, actorID, id, EventStart, nil)
}

func (s *service) Finalize(ctx context.Context, tenantID, actorID, id, diagnosis string) (*Booking, error) {
	return s.applyAndPersist(ctx, tenantID, actorID, id, EventFinalize, func(b *Booking, now time.Time) error {
		if !CanTransition(b, EventFinalize) {
			return ErrInvalidTransition
		}
		if len(strings.TrimSpace(diagnosis)) < 10 {
			return ErrDiagnosisTooShort
		}
		b.Diagnosis = strings.TrimSpace(diagnosis)
		return nil
	})
}

func (s *service) MarkRealized(ctx context.Context, tenantID, actorID, id string) (*Booking, error) {
	return s.applyAndPersist(ctx, tenantID, actorID, id, EventRealize, nil)
}

func (s *service) MarkNoShow(ctx context.Context, tenantID, actorID, id string) (*Booking, error) {
	return s.applyAndPersist(ctx, tenantID, actorID, id, EventNoShow, nil)
}

// applyAndPersist runs the shared transition flow: load, guard, apply,
// persist, then invalidate the agenda and emit the event. The optional
// guard runs before the lifecycle and may set transition fields.
func (s *service) applyAndPersist(ctx context.Context, tenantID, actorID, id string, ev Event, guard func(*Booking, time.Time) error) (*Booking, error) {
	b, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if guard != nil {
		if err := guard(b, now); err != nil {
			return nil, err
		}
	}

	prev := b.Status
	if err := applyTransition(b, ev, now); err != nil {
		return nil, err
	}
	b.UpdatedBy = actorID

	// Status-guarded write: if a concurrent transition won, the update
	// misses and the caller sees a conflict instead of a lost update.
	if err := s.repo.Update(ctx, b, prev); err != nil {
		return nil, err
	}

	s.metrics.ObserveTransition(string(ev))
	s.invalidateAgenda(ctx, b.TenantID, b.PractitionerID, b.ScheduledAt)
	s.publish(ctx, "booking."+transitionTopic(ev), b)

	return b, nil
}

func (s *service) Reschedule(ctx context.Context, tenantID, actorID, id string, newTime time.Time, newDurationMinutes int) (*Booking, error) {
	b, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if !s.policy.CanReschedule(b) {
		return nil, ErrRescheduleForbidden
	}

	now := s.clock.Now()
	if !newTime.After(now) {
		return nil, ErrStartTimePast
	}
	duration := b.DurationMinutes
	if newDurationMinutes != 0 {
		duration = newDurationMinutes
	}
	if duration < 5 || duration > 480 {
		return nil, ErrInvalidDuration
	}

	free, err := s.checker.IsAvailable(ctx, tenantID, b.PractitionerID, newTime, duration, b.ID)
	if err != nil {
		return nil, err
	}
	if !free {
		s.metrics.ObserveConflict()
		return nil, ErrTimeConflict
	}

	previousDay := b.ScheduledAt
	prev := b.Status

	if err := applyTransition(b, EventReschedule, now); err != nil {
		return nil, err
	}
	b.ScheduledAt = newTime
	b.DurationMinutes = duration
	b.UpdatedBy = actorID

	if err := s.repo.Reschedule(ctx, b, prev); err != nil {
		if errors.Is(err, ErrTimeConflict) {
			s.metrics.ObserveConflict()
		}
		return nil, err
	}

	s.metrics.ObserveTransition(string(EventReschedule))
	s.invalidateAgenda(ctx, b.TenantID, b.PractitionerID, previousDay, b.ScheduledAt)
	s.publish(ctx, "booking.rescheduled", b)

	return b, nil
}

func (s *service) DayAgenda(ctx context.Context, tenantID, practitionerID string, date time.Time) (*DayAgenda, error) {
	if practitionerID == "" {
		return nil, ErrPractitionerRequired
	}

	// The caller names a calendar date; pin it to the clinic timezone
	// so a clinic west of UTC does not serve the previous day.
	date = s.settings.clinicDate(date)

	key := agendaKey(tenantID, practitionerID, date)

	var cached DayAgenda
	if hit, err := s.cache.Get(ctx, key, &cached); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("agenda cache read failed")
	} else if hit {
		return &cached, nil
	}

	now := s.clock.Now()
	var bookings []*Booking
	if dayStart, dayEnd, ok := s.settings.dayWindow(date); ok {
		// Widen the fetch so bookings whose buffer bleeds into the
		// working window are included.
		from, to := WithBuffer(dayStart, dayEnd, s.settings.Buffer)
		var err error
		bookings, err = s.repo.FindOverlapping(ctx, tenantID, practitionerID, from, to, ActiveStatuses, "")
		if err != nil {
			return nil, err
		}
	}

	agenda := buildDayAgenda(s.settings, practitionerID, date, bookings, now)

	if err := s.cache.Set(ctx, key, agenda, s.cacheTTL); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("agenda cache write failed")
	}
	return &agenda, nil
}

func (s *service) FreeSlots(ctx context.Context, tenantID, practitionerID string, date time.Time) ([]Slot, error) {
	agenda, err := s.DayAgenda(ctx, tenantID, practitionerID, date)
	if err != nil {
		return nil, err
	}
	return freeSlots(*agenda), nil
}

func (s *service) ReminderCandidates(ctx context.Context, tenantID string, lookAhead time.Duration) ([]*Booking, error) {
	from, to := s.settings.reminderWindow(s.clock.Now(), lookAhead)
	return s.repo.FindDueReminders(ctx, tenantID, from, to)
}

func (s *service) MarkReminderSent(ctx context.Context, tenantID, id string) error {
	if err := s.repo.MarkReminderSent(ctx, tenantID, id); err != nil {
		return err
	}
	s.metrics.ObserveReminderMarked()
	return nil
}

func transitionTopic(ev Event) string {
	switch ev {
	case EventConfirm:
		return "confirmed"
	case EventCancel:
		return "cancelled"
	case EventStart:
		return "started"
	case EventFinalize, EventRealize:
		return "completed"
	case EventNoShow:
		return "no_show"
	default:
		return string(ev)
	}
}

func agendaKey(tenantID, practitionerID string, day time.Time) string {
	return fmt.Sprintf("agenda:%s:%s:%s", tenantID, practitionerID, day.Format("2006-01-02"))
}

// invalidateAgenda drops cached agendas for the days touched by a write.
// Bookings without a practitioner have no agenda to invalidate.
func (s *service) invalidateAgenda(ctx context.Context, tenantID, practitionerID string, days ...time.Time) {
	if practitionerID == "" {
		return
	}
	keys := make([]string, 0, len(days))
	seen := make(map[string]bool, len(days))
	for _, d := range days {
		key := agendaKey(tenantID, practitionerID, d.In(s.settings.Location))
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Warn().Err(err).Msg("agenda cache invalidation failed")
	}
}

// publish emits a lifecycle event; delivery failures are logged, never
// propagated into the scheduling flow.
func (s *service) publish(ctx context.Context, key string, b *Booking) {
	payload := map[string]any{
		"event_id":        uuid.NewString(),
		"occurred_at":     s.clock.Now(),
		"booking_id":      b.ID,
		"tenant_id":       b.TenantID,
		"patient_id":      b.PatientID,
		"practitioner_id": b.PractitionerID,
		"kind":            b.Kind,
		"status":          b.Status,
		"scheduled_at":    b.ScheduledAt,
	}
	if err := s.publisher.PublishJSON(ctx, key, payload); err != nil {
		s.logger.Warn().Err(err).Str("event", key).Msg("event publish failed")
	}
}
