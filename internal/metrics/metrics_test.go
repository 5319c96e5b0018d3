package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordHTTPRequest(t *testing.T) {
	HTTPRequestsTotal.Reset()
	HTTPRequestDuration.Reset()

	RecordHTTPRequest("GET", "/classes/:classID", "200", 0.05)

	count := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/classes/:classID", "200"))
	assert.Equal(t, float64(1), count)
}

func TestRecordHTTPRequestMultiple(t *testing.T) {
	HTTPRequestsTotal.Reset()

	RecordHTTPRequest("POST", "/classes/:classID/book", "201", 0.1)
	RecordHTTPRequest("POST", "/classes/:classID/book", "201", 0.2)
	RecordHTTPRequest("POST", "/classes/:classID/book", "409", 0.05)

	successCount := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/classes/:classID/book", "201"))
	conflictCount := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/classes/:classID/book", "409"))

	assert.Equal(t, float64(2), successCount)
	assert.Equal(t, float64(1), conflictCount)
}

func TestRecordBooking(t *testing.T) {
	BookingsTotal.Reset()

	RecordBooking("booked")
	RecordBooking("booked")
	RecordBooking("waitlisted")

	bookedCount := testutil.ToFloat64(BookingsTotal.WithLabelValues("booked"))
	waitlistedCount := testutil.ToFloat64(BookingsTotal.WithLabelValues("waitlisted"))

	assert.Equal(t, float64(2), bookedCount)
	assert.Equal(t, float64(1), waitlistedCount)
}

func TestRecordBookingCancellation(t *testing.T) {
	testCounter := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fitify_booking_cancellations_total_test",
			Help: "Total number of booking cancellations",
		},
	)

	oldCounter := BookingCancellationsTotal
	BookingCancellationsTotal = testCounter
	defer func() { BookingCancellationsTotal = oldCounter }()

	RecordBookingCancellation()
	RecordBookingCancellation()

	count := testutil.ToFloat64(testCounter)
	assert.Equal(t, float64(2), count)
}

func TestRecordWaitlistPromotion(t *testing.T) {
	testCounter := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fitify_waitlist_promotions_total_test",
			Help: "Total number of waitlist promotions",
		},
	)

	oldCounter := WaitlistPromotionsTotal
	WaitlistPromotionsTotal = testCounter
	defer func() { WaitlistPromotionsTotal = oldCounter }()

	RecordWaitlistPromotion()

	count := testutil.ToFloat64(testCounter)
	assert.Equal(t, float64(1), count)
}

func TestRecordVersionConflict(t *testing.T) {
	VersionConflictsTotal.Reset()

	RecordVersionConflict("book_class")
	RecordVersionConflict("book_class")
	RecordVersionConflict("cancel_booking")

	bookCount := testutil.ToFloat64(VersionConflictsTotal.WithLabelValues("book_class"))
	cancelCount := testutil.ToFloat64(VersionConflictsTotal.WithLabelValues("cancel_booking"))

	assert.Equal(t, float64(2), bookCount)
	assert.Equal(t, float64(1), cancelCount)
}

func TestRecordEventPublished(t *testing.T) {
	EventsPublishedTotal.Reset()

	RecordEventPublished("class.booked", "ok")
	RecordEventPublished("class.booked", "ok")
	RecordEventPublished("class.cancelled", "error")

	okCount := testutil.ToFloat64(EventsPublishedTotal.WithLabelValues("class.booked", "ok"))
	errorCount := testutil.ToFloat64(EventsPublishedTotal.WithLabelValues("class.cancelled", "error"))

	assert.Equal(t, float64(2), okCount)
	assert.Equal(t, float64(1), errorCount)
}

func TestOutboxPendingEvents(t *testing.T) {
	OutboxPendingEvents.Set(10)
	assert.Equal(t, float64(10), testutil.ToFloat64(OutboxPendingEvents))

	OutboxPendingEvents.Set(0)
	assert.Equal(t, float64(0), testutil.ToFloat64(OutboxPendingEvents))
}
