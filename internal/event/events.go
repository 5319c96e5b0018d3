package event

import "time"

// Domain event types emitted by the booking engine and class lifecycle.
const (
	TypeClassBooked      = "class.booked"
	TypeClassFull        = "class.full"
	TypeBookingCancelled = "booking.cancelled"
	TypeWaitlistPromoted = "waitlist.promoted"
	TypeClassCancelled   = "class.cancelled"
	TypeClassUpdated     = "class.updated"
)

type ClassBooked struct {
	UserID    int       `json:"user_id"`
	ClassID   int       `json:"class_id"`
	ClassName string    `json:"class_name"`
	StartTime time.Time `json:"start_time"`
}

type ClassFull struct {
	ClassID      int    `json:"class_id"`
	ClassName    string `json:"class_name"`
	WaitlistSize int    `json:"waitlist_size"`
}

type BookingCancelled struct {
	UserID      int       `json:"user_id"`
	ClassID     int       `json:"class_id"`
	CancelledAt time.Time `json:"cancelled_at"`
}

type WaitlistPromoted struct {
	UserID    int       `json:"user_id"`
	ClassID   int       `json:"class_id"`
	ClassName string    `json:"class_name"`
	StartTime time.Time `json:"start_time"`
}

type ClassCancelled struct {
	ClassID           int       `json:"class_id"`
	ClassName         string    `json:"class_name"`
	LocationID        int       `json:"location_id"`
	OriginalStartTime time.Time `json:"original_start_time"`
	AffectedUserIDs   []int     `json:"affected_user_ids"`
	WaitlistUserIDs   []int     `json:"waitlist_user_ids"`
	CancelledAt       time.Time `json:"cancelled_at"`
}

type ClassUpdated struct {
	ClassID         int      `json:"class_id"`
	ClassName       string   `json:"class_name"`
	LocationID      int      `json:"location_id"`
	UpdatedFields   []string `json:"updated_fields"`
	AffectedUserIDs []int    `json:"affected_user_ids"`
}

// Record is an event pending insertion into the outbox. Payload is one of the
// structs above.
type Record struct {
	Type    string
	Payload interface{}
}
