package booking

import "time"

const (
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

type Booking struct {
	ID          int        `db:"id" json:"id"`
	ClassID     int        `db:"class_id" json:"class_id"`
	UserID      int        `db:"user_id" json:"user_id"`
	Status      string     `db:"status" json:"status"`
	BookedAt    time.Time  `db:"booked_at" json:"booked_at"`
	CancelledAt *time.Time `db:"cancelled_at" json:"cancelled_at,omitempty"`
}

// WaitlistEntry positions for a class are always exactly {1..N}: appends take
// size+1, every removal renumbers the remainder to close the gap.
type WaitlistEntry struct {
	ID        int       `db:"id" json:"id"`
	ClassID   int       `db:"class_id" json:"class_id"`
	UserID    int       `db:"user_id" json:"user_id"`
	Position  int       `db:"position" json:"position"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type BookingWithClass struct {
	Booking
	ClassName  string    `db:"class_name" json:"class_name"`
	ClassStart time.Time `db:"class_start" json:"class_start"`
	ClassEnd   time.Time `db:"class_end" json:"class_end"`
	Room       string    `db:"room" json:"room"`
}

const (
	OutcomeBooked     = "booked"
	OutcomeWaitlisted = "waitlisted"
)

// BookResult reports which way the admission decision went.
type BookResult struct {
	Outcome       string         `json:"outcome" example:"booked"`
	Booking       *Booking       `json:"booking,omitempty"`
	WaitlistEntry *WaitlistEntry `json:"waitlist_entry,omitempty"`
}

// CancelResult reports the cancelled booking and, when the promotion cascade
// filled the freed seat, the promoted user.
type CancelResult struct {
	CancelledAt    time.Time `json:"cancelled_at"`
	PromotedUserID *int      `json:"promoted_user_id,omitempty"`
}
