package class

import "time"

const (
	StatusActive    = "active"
	StatusCancelled = "cancelled"
)

// Class is a scheduled, time-boxed session with a hard capacity. Rows are
// never deleted; cancellation is a status change. Version backs the
// optimistic concurrency checks on every booking/waitlist mutation.
type Class struct {
	ID          int       `db:"id" json:"id"`
	LocationID  int       `db:"location_id" json:"location_id"`
	CoachID     int       `db:"coach_id" json:"coach_id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	ClassType   string    `db:"class_type" json:"class_type"`
	Room        string    `db:"room" json:"room"`
	StartTime   time.Time `db:"start_time" json:"start_time"`
	EndTime     time.Time `db:"end_time" json:"end_time"`
	Capacity    int       `db:"capacity" json:"capacity"`
	Status      string    `db:"status" json:"status"`
	Version     int       `db:"version" json:"version"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

type ClassWithAvailability struct {
	Class
	ConfirmedCount int  `db:"confirmed_count" json:"confirmed_count"`
	SeatsLeft      int  `db:"seats_left" json:"seats_left"`
	WaitlistSize   int  `db:"waitlist_size" json:"waitlist_size"`
	IsFull         bool `db:"is_full" json:"is_full"`
}

type UtilizationStat struct {
	ClassID   int       `db:"class_id" json:"class_id"`
	Name      string    `db:"name" json:"name"`
	StartTime time.Time `db:"start_time" json:"start_time"`
	Confirmed int       `db:"confirmed" json:"confirmed"`
	Capacity  int       `db:"capacity" json:"capacity"`
}

type CreateClassRequest struct {
	LocationID  int    `json:"location_id" binding:"required"`
	CoachID     int    `json:"coach_id" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	ClassType   string `json:"class_type" binding:"required"`
	Room        string `json:"room" binding:"required"`
	StartTime   string `json:"start_time" binding:"required"`
	EndTime     string `json:"end_time" binding:"required"`
	Capacity    int    `json:"capacity" binding:"required,min=1"`
}

type UpdateClassRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	ClassType   *string `json:"class_type,omitempty"`
	Room        *string `json:"room,omitempty"`
	StartTime   *string `json:"start_time,omitempty"`
	EndTime     *string `json:"end_time,omitempty"`
	Capacity    *int    `json:"capacity,omitempty"`
}

type CancelClassResult struct {
	Class           *Class `json:"class"`
	AffectedUserIDs []int  `json:"affected_user_ids"`
	WaitlistUserIDs []int  `json:"waitlist_user_ids"`
	AlreadyDone     bool   `json:"already_cancelled"`
}
