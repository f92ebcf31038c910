package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Deijai/clinic-scheduling-backend/internal/auth"
	"github.com/Deijai/clinic-scheduling-backend/internal/booking"
	"github.com/Deijai/clinic-scheduling-backend/internal/pkg/request"
	"github.com/Deijai/clinic-scheduling-backend/internal/pkg/response"
)

type Handler struct {
	service booking.Service
}

func NewHandler(service booking.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	req := booking.CreateRequest{
		PatientID:       body.PatientID,
		PractitionerID:  body.PractitionerID,
		UnitID:          body.UnitID,
		ScheduledAt:     body.ScheduledAt,
		DurationMinutes: body.DurationMinutes,
		Kind:            booking.Kind(body.Kind),
		Type:            body.Type,
		Priority:        booking.Priority(body.Priority),
	}

	b, err := h.service.Create(c.Request.Context(), auth.GetTenantID(c), auth.GetActorID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewBookingResponse(b))
}

func (h *Handler) List(c *gin.Context) {
	var q ListBookingsRequest
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}
	if q.Page == 0 {
		q.Page = 1
	}
	if q.PageSize == 0 {
		q.PageSize = 20
	}

	filter := booking.Filter{
		PatientID:      q.PatientID,
		PractitionerID: q.PractitionerID,
		UnitID:         q.UnitID,
		Status:         q.Status,
		Kind:           q.Kind,
		ScheduledFrom:  q.ScheduledFrom,
		ScheduledTo:    q.ScheduledTo,
		Page:           q.Page,
		PageSize:       q.PageSize,
		SortBy:         q.SortBy,
		SortOrder:      q.SortOrder,
	}

	bookings, total, err := h.service.List(c.Request.Context(), auth.GetTenantID(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		items[i] = NewBookingResponse(b)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, q.Page, q.PageSize, total))
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), auth.GetTenantID(c), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) Confirm(c *gin.Context) {
	h.transition(c, func(tenantID, actorID, id string) (*booking.Booking, error) {
		return h.service.Confirm(c.Request.Context(), tenantID, actorID, id)
	})
}

func (h *Handler) Cancel(c *gin.Context) {
	var body CancelBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	h.transition(c, func(tenantID, actorID, id string) (*booking.Booking, error) {
		return h.service.Cancel(c.Request.Context(), tenantID, actorID, id, body.Reason)
	})
}

func (h *Handler) Reschedule(c *gin.Context) {
	var body RescheduleBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	h.transition(c, func(tenantID, actorID, id string) (*booking.Booking, error) {
		return h.service.Reschedule(c.Request.Context(), tenantID, actorID, id, body.ScheduledAt, body.DurationMinutes)
	})
}

func (h *Handler) StartAttendance(c *gin.Context) {
	h.transition(c, func(tenantID, actorID, id string) (*booking.Booking, error) {
		return h.service.StartAttendance(c.Request.Context(), tenantID, actorID, id)
	})
}

func (h *Handler) Finalize(c *gin.Context) {
	var body FinalizeBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	h.transition(c, func(tenantID, actorID, id string) (*booking.Booking, error) {
		return h.service.Finalize(c.Request.Context(), tenantID, actorID, id, body.Diagnosis)
	})
}

func (h *Handler) MarkRealized(c *gin.Context) {
	h.transition(c, func(tenantID, actorID, id string) (*booking.Booking, error) {
		return h.service.MarkRealized(c.Request.Context(), tenantID, actorID, id)
	})
}

func (h *Handler) MarkNoShow(c *gin.Context) {
	h.transition(c, func(tenantID, actorID, id string) (*booking.Booking, error) {
		return h.service.MarkNoShow(c.Request.Context(), tenantID, actorID, id)
	})
}

// transition binds the id, applies the operation, and renders the result.
func (h *Handler) transition(c *gin.Context, op func(tenantID, actorID, id string) (*booking.Booking, error)) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	b, err := op(auth.GetTenantID(c), auth.GetActorID(c), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) DayAgenda(c *gin.Context) {
	q, date, ok := bindAgendaQuery(c)
	if !ok {
		return
	}

	agenda, err := h.service.DayAgenda(c.Request.Context(), auth.GetTenantID(c), q.PractitionerID, date)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, agenda)
}

func (h *Handler) FreeSlots(c *gin.Context) {
	q, date, ok := bindAgendaQuery(c)
	if !ok {
		return
	}

	slots, err := h.service.FreeSlots(c.Request.Context(), auth.GetTenantID(c), q.PractitionerID, date)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"practitioner_id": q.PractitionerID,
		"date":            q.Date,
		"slots":           slots,
	})
}

func bindAgendaQuery(c *gin.Context) (AgendaRequest, time.Time, bool) {
	var q AgendaRequest
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return q, time.Time{}, false
	}
	date, err := time.Parse("2006-01-02", q.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
		return q, time.Time{}, false
	}
	return q, date, true
}

func (h *Handler) RemindersDue(c *gin.Context) {
	var q RemindersDueRequest
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	due, err := h.service.ReminderCandidates(c.Request.Context(), auth.GetTenantID(c), time.Duration(q.LookAheadHours)*time.Hour)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]BookingResponse, len(due))
	for i, b := range due {
		items[i] = NewBookingResponse(b)
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
}

func (h *Handler) MarkReminderSent(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	if err := h.service.MarkReminderSent(c.Request.Context(), auth.GetTenantID(c), uri.ID); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
