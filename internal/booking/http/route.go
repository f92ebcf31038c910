package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	bookings := g.Group("/bookings")
	bookings.Use(authMiddleware)
	{
		bookings.GET("", h.List)
		bookings.POST("", h.Create)
		bookings.GET("/:id", h.Get)
		bookings.POST("/:id/confirm", h.Confirm)
		bookings.POST("/:id/cancel", h.Cancel)
		bookings.POST("/:id/reschedule", h.Reschedule)
		bookings.POST("/:id/start", h.StartAttendance)
		bookings.POST("/:id/finalize", h.Finalize)
		bookings.POST("/:id/realize", h.MarkRealized)
		bookings.POST("/:id/no-show", h.MarkNoShow)
	}

	agenda := g.Group("/agenda")
	agenda.Use(authMiddleware)
	{
		agenda.GET("", h.DayAgenda)
		agenda.GET("/free", h.FreeSlots)
	}

	reminders := g.Group("/reminders")
	reminders.Use(authMiddleware)
	{
		reminders.GET("/due", h.RemindersDue)
		reminders.POST("/:id/sent", h.MarkReminderSent)
	}
}
