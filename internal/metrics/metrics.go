package metrics

import "github.com/prometheus/client_golang/prometheus"

// SchedulingMetrics exposes counters for scheduling outcomes.
type SchedulingMetrics struct {
	bookingsCreated *prometheus.CounterVec
	conflicts       prometheus.Counter
	transitions     *prometheus.CounterVec
	remindersMarked prometheus.Counter
}

func NewSchedulingMetrics(reg prometheus.Registerer) *SchedulingMetrics {
	m := &SchedulingMetrics{
		bookingsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "scheduling",
			Name:      "bookings_created_total",
			Help:      "Total bookings created, by kind",
		}, []string{"kind"}),
		conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "scheduling",
			Name:      "booking_conflicts_total",
			Help:      "Total create/reschedule attempts rejected for time conflicts",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "scheduling",
			Name:      "transitions_total",
			Help:      "Total successful lifecycle transitions, by event",
		}, []string{"event"}),
		remindersMarked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "scheduling",
			Name:      "reminders_marked_total",
			Help:      "Total bookings flagged as reminded",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingsCreated, m.conflicts, m.transitions, m.remindersMarked)
	return m
}

func (m *SchedulingMetrics) ObserveCreated(kind string) {
	if m == nil {
		return
	}
	m.bookingsCreated.WithLabelValues(kind).Inc()
}

func (m *SchedulingMetrics) ObserveConflict() {
	if m == nil {
		return
	}
	m.conflicts.Inc()
}

func (m *SchedulingMetrics) ObserveTransition(event string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(event).Inc()
}

func (m *SchedulingMetrics) ObserveReminderMarked() {
	if m == nil {
		return
	}
	m.remindersMarked.Inc()
}
