package class

import (
	"context"
	"time"

	"fitify/internal/event"
)

type CreateParams struct {
	LocationID  int
	CoachID     int
	Name        string
	Description string
	ClassType   string
	Room        string
	StartTime   time.Time
	EndTime     time.Time
	Capacity    int
}

type Repository interface {
	Create(ctx context.Context, p CreateParams) (*Class, error)
	GetByID(ctx context.Context, id int) (*Class, error)

	// FindCoachConflicts returns active classes for the coach whose [start,end)
	// interval intersects the given range. excludeClassID skips a class
	// checking against itself during update; zero means no exclusion.
	FindCoachConflicts(ctx context.Context, coachID int, start, end time.Time, excludeClassID int) ([]Class, error)

	// Update writes all mutable fields, guarded by the version the caller
	// read. Events commit in the same transaction.
	Update(ctx context.Context, cls *Class, events []event.Record) error

	// CancelCascade flips the class to cancelled, bulk-cancels its confirmed
	// bookings and clears the waitlist in one version-guarded transaction.
	CancelCascade(ctx context.Context, classID, expectedVersion int, cancelledAt time.Time, events []event.Record) error

	ConfirmedUserIDs(ctx context.Context, classID int) ([]int, error)
	WaitlistUserIDs(ctx context.Context, classID int) ([]int, error)

	ListUpcomingByLocation(ctx context.Context, locationID int) ([]ClassWithAvailability, error)
	ListByCoachRange(ctx context.Context, coachID int, from, to time.Time) ([]Class, error)
	UtilizationStats(ctx context.Context, from, to time.Time) ([]UtilizationStat, error)
	CountCancellations(ctx context.Context, from, to time.Time, locationID *int) (int, error)
}
