package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	messages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "barberbot",
			Name:      "whatsapp_messages_total",
			Help:      "WhatsApp messages by direction.",
		},
		[]string{"direction"},
	)

	appointments = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "barberbot",
			Name:      "appointments_total",
			Help:      "Appointment lifecycle events.",
		},
		[]string{"event"},
	)

	slotQueries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "barberbot",
			Name:      "slot_queries_total",
			Help:      "Available-slot computations served.",
		},
	)

	reminders = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "barberbot",
			Name:      "reminders_sent_total",
			Help:      "Appointment reminders sent.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "barberbot",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint and status code.",
		},
		[]string{"endpoint", "code"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(messages, appointments, slotQueries, reminders, httpRequests)
	})
}

// IncMessage counts an inbound ("in") or outbound ("out") WhatsApp message.
func IncMessage(direction string) {
	messages.WithLabelValues(direction).Inc()
}

// IncAppointment counts a lifecycle event (created, confirmed, cancelled, deleted).
func IncAppointment(event string) {
	appointments.WithLabelValues(event).Inc()
}

// IncSlotQuery counts one slot computation.
func IncSlotQuery() {
	slotQueries.Inc()
}

// IncReminder counts one reminder send.
func IncReminder() {
	reminders.Inc()
}

// IncHTTP counts a served HTTP request.
func IncHTTP(endpoint, code string) {
	httpRequests.WithLabelValues(endpoint, code).Inc()
}
