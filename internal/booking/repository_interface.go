package booking

import (
	"context"
	"time"

	"fitify/internal/event"
)

// Promotion names the waitlist entry converted to a confirmed booking during
// a cancellation.
type Promotion struct {
	EntryID  int
	UserID   int
	Position int
}

type CancelParams struct {
	BookingID       int
	ClassID         int
	ExpectedVersion int
	CancelledAt     time.Time
	Promotion       *Promotion
}

type Repository interface {
	GetConfirmed(ctx context.Context, classID, userID int) (*Booking, error)
	HasConfirmed(ctx context.Context, classID, userID int) (bool, error)
	CountConfirmed(ctx context.Context, classID int) (int, error)

	// FindOverlapping returns the user's confirmed bookings whose class
	// interval intersects [start,end) under half-open semantics.
	FindOverlapping(ctx context.Context, userID int, start, end time.Time) ([]BookingWithClass, error)

	// CountConfirmedOnDay counts the user's confirmed bookings for classes
	// starting on the given UTC calendar day.
	CountConfirmedOnDay(ctx context.Context, userID int, day time.Time) (int, error)

	ListWaitlist(ctx context.Context, classID int) ([]WaitlistEntry, error)
	CountWaitlist(ctx context.Context, classID int) (int, error)
	GetWaitlistEntry(ctx context.Context, classID, userID int) (*WaitlistEntry, error)

	// CreateConfirmed inserts a confirmed booking in a transaction guarded by
	// the class version the caller read. Events commit with it.
	CreateConfirmed(ctx context.Context, classID, userID, expectedVersion int, events []event.Record) (*Booking, error)

	// AppendWaitlist adds an entry at the given position, version-guarded.
	AppendWaitlist(ctx context.Context, classID, userID, position, expectedVersion int, events []event.Record) (*WaitlistEntry, error)

	// CancelWithPromotion marks the booking cancelled and, when a promotion is
	// given, confirms the promoted user, removes their entry and renumbers the
	// remaining waitlist, all in one version-guarded transaction.
	CancelWithPromotion(ctx context.Context, p CancelParams, events []event.Record) error

	// RemoveWaitlistEntry deletes the entry and renumbers the remainder.
	RemoveWaitlistEntry(ctx context.Context, entryID, classID, position, expectedVersion int) error

	ListByUser(ctx context.Context, userID int) ([]BookingWithClass, error)
	ListByClass(ctx context.Context, classID int) ([]Booking, error)
}
