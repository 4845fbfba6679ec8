package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)
)

var (
	BookingsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "appointments_booked_total",
			Help: "Total appointments successfully created",
		},
	)

	BookingConflictsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "appointment_booking_conflicts_total",
			Help: "Booking attempts rejected because the slot was no longer available",
		},
	)

	RevenueEntriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "revenue_entries_recorded_total",
			Help: "Revenue entries recorded by attribution",
		},
	)

	NotificationFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "notification_failures_total",
			Help: "Notification deliveries that failed",
		},
	)
)

func Init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(BookingsTotal)
	prometheus.MustRegister(BookingConflictsTotal)
	prometheus.MustRegister(RevenueEntriesTotal)
	prometheus.MustRegister(NotificationFailuresTotal)
}

func Handler() http.Handler {
	return promhttp.Handler()
}
