package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitify_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fitify_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	BookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitify_bookings_total",
			Help: "Total number of booking attempts by outcome",
		},
		[]string{"outcome"},
	)

	BookingCancellationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fitify_booking_cancellations_total",
			Help: "Total number of booking cancellations",
		},
	)

	WaitlistJoinsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fitify_waitlist_joins_total",
			Help: "Total number of waitlist joins",
		},
	)

	WaitlistPromotionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fitify_waitlist_promotions_total",
			Help: "Total number of waitlist promotions",
		},
	)

	ClassCancellationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fitify_class_cancellations_total",
			Help: "Total number of class cancellations",
		},
	)

	VersionConflictsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitify_version_conflicts_total",
			Help: "Total number of optimistic concurrency conflicts",
		},
		[]string{"operation"},
	)

	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitify_events_published_total",
			Help: "Total number of domain events relayed",
		},
		[]string{"type", "status"},
	)

	OutboxPendingEvents = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fitify_outbox_pending_events",
			Help: "Number of domain events awaiting relay",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordBooking(outcome string) {
	BookingsTotal.WithLabelValues(outcome).Inc()
}

func RecordBookingCancellation() {
	BookingCancellationsTotal.Inc()
}

func RecordWaitlistJoin() {
	WaitlistJoinsTotal.Inc()
}

func RecordWaitlistPromotion() {
	WaitlistPromotionsTotal.Inc()
}

func RecordClassCancellation() {
	ClassCancellationsTotal.Inc()
}

func RecordVersionConflict(operation string) {
	VersionConflictsTotal.WithLabelValues(operation).Inc()
}

func RecordEventPublished(eventType, status string) {
	EventsPublishedTotal.WithLabelValues(eventType, status).Inc()
}
