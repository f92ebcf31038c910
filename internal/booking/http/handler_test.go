package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Deijai/clinic-scheduling-backend/internal/booking"
)

// stubService lets each test pin just the method under test.
type stubService struct {
	createFn  func(ctx context.Context, tenantID, actorID string, req booking.CreateRequest) (*booking.Booking, error)
	getFn     func(ctx context.Context, tenantID, id string) (*booking.Booking, error)
	cancelFn  func(ctx context.Context, tenantID, actorID, id, reason string) (*booking.Booking, error)
	agendaFn  func(ctx context.Context, tenantID, practitionerID string, date time.Time) (*booking.DayAgenda, error)
	minderFn  func(ctx context.Context, tenantID string, lookAhead time.Duration) ([]*booking.Booking, error)
	minderSet func(ctx context.Context, tenantID, id string) error
}

func (s *stubService) Create(ctx context.Context, tenantID, actorID string, req booking.CreateRequest) (*booking.Booking, error) {
	return s.createFn(ctx, tenantID, actorID, req)
}

func (s *stubService) GetByID(ctx context.Context, tenantID, id string) (*booking.Booking, error) {
	return s.getFn(ctx, tenantID, id)
}

func (s *stubService) List(ctx context.Context, tenantID string, filter booking.Filter) ([]*booking.Booking, int, error) {
	return nil, 0, nil
}

func (s *stubService) Confirm(ctx context.Context, tenantID, actorID, id string) (*booking.Booking, error) {
	return nil, booking.ErrNotFound
}

func (s *stubService) Cancel(ctx context.Context, tenantID, actorID, id, reason string) (*booking.Booking, error) {
	return s.cancelFn(ctx, tenantID, actorID, id, reason)
}

func (s *stubService) Reschedule(ctx context.Context, tenantID, actorID, id string, newTime time.Time, newDurationMinutes int) (*booking.Booking, error) {
	return nil, booking.ErrNotFound
}

func (s *stubService) StartAttendance(ctx context.Context, tenantID, actorID, id string) (*booking.Booking, error) {
	return nil, booking.ErrNotFound
}

func (s *stubService) Finalize(ctx context.Context, tenantID, actorID, id, diagnosis string) (*booking.Booking, error) {
	return nil, booking.ErrNotFound
}

func (s *stubService) MarkRealized(ctx context.Context, tenantID, actorID, id string) (*booking.Booking, error) {
	return nil, booking.ErrNotFound
}

func (s *stubService) MarkNoShow(ctx context.Context, tenantID, actorID, id string) (*booking.Booking, error) {
	return nil, booking.ErrNotFound
}

func (s *stubService) DayAgenda(ctx context.Context, tenantID, practitionerID string, date time.Time) (*booking.DayAgenda, error) {
	return s.agendaFn(ctx, tenantID, practitionerID, date)
}

func (s *stubService) FreeSlots(ctx context.Context, tenantID, practitionerID string, date time.Time) ([]booking.Slot, error) {
	return nil, nil
}

func (s *stubService) ReminderCandidates(ctx context.Context, tenantID string, lookAhead time.Duration) ([]*booking.Booking, error) {
	return s.minderFn(ctx, tenantID, lookAhead)
}

func (s *stubService) MarkReminderSent(ctx context.Context, tenantID, id string) error {
	return s.minderSet(ctx, tenantID, id)
}

const (
	tenantID = "11111111-1111-1111-1111-111111111111"
	actorID  = "22222222-2222-2222-2222-222222222222"
	bookID   = "55555555-5555-5555-5555-555555555555"
	doctorID = "44444444-4444-4444-4444-444444444444"
)

func newTestRouter(svc booking.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	fakeAuth := func(c *gin.Context) {
		c.Set("actorID", actorID)
		c.Set("tenantID", tenantID)
		c.Next()
	}

	RegisterRoutes(r.Group("/v1"), NewHandler(svc), fakeAuth)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandlerCreate(t *testing.T) {
	scheduled := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	svc := &stubService{
		createFn: func(ctx context.Context, gotTenant, gotActor string, req booking.CreateRequest) (*booking.Booking, error) {
			assert.Equal(t, tenantID, gotTenant)
			assert.Equal(t, actorID, gotActor)
			assert.Equal(t, booking.KindAppointment, req.Kind)
			return &booking.Booking{
				ID:              bookID,
				TenantID:        gotTenant,
				PatientID:       req.PatientID,
				PractitionerID:  req.PractitionerID,
				ScheduledAt:     req.ScheduledAt,
				DurationMinutes: req.DurationMinutes,
				Kind:            req.Kind,
				Type:            req.Type,
				Status:          booking.StatusScheduled,
				Priority:        booking.PriorityNormal,
			}, nil
		},
	}
	r := newTestRouter(svc)

	body := `{
		"patient_id": "33333333-3333-3333-3333-333333333333",
		"practitioner_id": "` + doctorID + `",
		"scheduled_at": "` + scheduled.Format(time.RFC3339) + `",
		"duration_minutes": 30,
		"kind": "appointment",
		"type": "consultation"
	}`

	w := doJSON(t, r, http.MethodPost, "/v1/bookings", body)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp BookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, bookID, resp.ID)
	assert.Equal(t, "scheduled", resp.Status)
	assert.Equal(t, scheduled.Add(30*time.Minute), resp.EndsAt)
}

func TestHandlerCreateRejectsBadBody(t *testing.T) {
	r := newTestRouter(&stubService{})

	w := doJSON(t, r, http.MethodPost, "/v1/bookings", `{"kind":"appointment"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlerCreateConflict(t *testing.T) {
	svc := &stubService{
		createFn: func(ctx context.Context, tenantID, actorID string, req booking.CreateRequest) (*booking.Booking, error) {
			return nil, booking.ErrTimeConflict
		},
	}
	r := newTestRouter(svc)

	body := `{
		"patient_id": "33333333-3333-3333-3333-333333333333",
		"scheduled_at": "2026-03-02T10:00:00Z",
		"duration_minutes": 30,
		"kind": "appointment",
		"type": "consultation"
	}`

	w := doJSON(t, r, http.MethodPost, "/v1/bookings", body)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"conflict"`)
}

func TestHandlerGetNotFound(t *testing.T) {
	svc := &stubService{
		getFn: func(ctx context.Context, tenantID, id string) (*booking.Booking, error) {
			return nil, booking.ErrNotFound
		},
	}
	r := newTestRouter(svc)

	w := doJSON(t, r, http.MethodGet, "/v1/bookings/"+bookID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	// A malformed id never reaches the service.
	w = doJSON(t, r, http.MethodGet, "/v1/bookings/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlerCancelPolicyViolation(t *testing.T) {
	svc := &stubService{
		cancelFn: func(ctx context.Context, tenantID, actorID, id, reason string) (*booking.Booking, error) {
			return nil, booking.ErrCancelCutoff
		},
	}
	r := newTestRouter(svc)

	w := doJSON(t, r, http.MethodPost, "/v1/bookings/"+bookID+"/cancel", `{"reason":"patient request"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"policy_violation"`)
}

func TestHandlerAgendaValidation(t *testing.T) {
	called := false
	svc := &stubService{
		agendaFn: func(ctx context.Context, gotTenant, practitionerID string, date time.Time) (*booking.DayAgenda, error) {
			called = true
			assert.Equal(t, tenantID, gotTenant)
			assert.Equal(t, doctorID, practitionerID)
			return &booking.DayAgenda{PractitionerID: practitionerID, Date: "2026-03-02"}, nil
		},
	}
	r := newTestRouter(svc)

	w := doJSON(t, r, http.MethodGet, "/v1/agenda?date=2026-03-02", "")
	assert.Equal(t, http.StatusBadRequest, w.Code, "practitioner_id is required")

	w = doJSON(t, r, http.MethodGet, "/v1/agenda?practitioner_id="+doctorID+"&date=03/02/2026", "")
	assert.Equal(t, http.StatusBadRequest, w.Code, "date must be ISO")

	w = doJSON(t, r, http.MethodGet, "/v1/agenda?practitioner_id="+doctorID+"&date=2026-03-02", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, called)
}

func TestHandlerReminders(t *testing.T) {
	svc := &stubService{
		minderFn: func(ctx context.Context, gotTenant string, lookAhead time.Duration) ([]*booking.Booking, error) {
			assert.Equal(t, 48*time.Hour, lookAhead)
			return []*booking.Booking{{ID: bookID, Status: booking.StatusScheduled}}, nil
		},
		minderSet: func(ctx context.Context, gotTenant, id string) error {
			assert.Equal(t, bookID, id)
			return nil
		},
	}
	r := newTestRouter(svc)

	w := doJSON(t, r, http.MethodGet, "/v1/reminders/due?look_ahead_hours=48", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), bookID)

	w = doJSON(t, r, http.MethodPost, "/v1/reminders/"+bookID+"/sent", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}
