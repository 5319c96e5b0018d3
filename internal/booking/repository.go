package booking

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"fitify/internal/db"
	"fitify/internal/event"
)

var ErrBookingNotFoundOrAlreadyCancelled = errors.New("booking not found or already cancelled")

type repository struct {
	db     *sqlx.DB
	outbox *event.Outbox
}

func NewRepository(database *sqlx.DB, outbox *event.Outbox) Repository {
	return &repository{db: database, outbox: outbox}
}

func (r *repository) GetConfirmed(ctx context.Context, classID, userID int) (*Booking, error) {
	query := `
		SELECT id, class_id, user_id, status, booked_at, cancelled_at
		FROM bookings
		WHERE class_id = $1 AND user_id = $2 AND status = 'confirmed'
	`

	var booking Booking
	err := r.db.GetContext(ctx, &booking, query, classID, userID)
	if err != nil {
		return nil, err
	}

	return &booking, nil
}

func (r *repository) HasConfirmed(ctx context.Context, classID, userID int) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM bookings
			WHERE class_id = $1 AND user_id = $2 AND status = 'confirmed'
		)
	`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, classID, userID)
	if err != nil {
		return false, err
	}

	return exists, nil
}

func (r *repository) CountConfirmed(ctx context.Context, classID int) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM bookings
		WHERE class_id = $1 AND status = 'confirmed'
	`

	var count int
	err := r.db.GetContext(ctx, &count, query, classID)
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *repository) FindOverlapping(ctx context.Context, userID int, start, end time.Time) ([]BookingWithClass, error) {
	query := `
		SELECT b.id, b.class_id, b.user_id, b.status, b.booked_at, b.cancelled_at,
		       c.name AS class_name,
		       c.start_time AS class_start,
		       c.end_time AS class_end,
		       c.room
		FROM bookings b
		JOIN classes c ON c.id = b.class_id
		WHERE b.user_id = $1
		  AND b.status = 'confirmed'
		  AND c.start_time < $3
		  AND $2 < c.end_time
		ORDER BY c.start_time ASC
	`

	var bookings []BookingWithClass
	err := r.db.SelectContext(ctx, &bookings, query, userID, start, end)
	if err != nil {
		return nil, err
	}

	return bookings, nil
}

func (r *repository) CountConfirmedOnDay(ctx context.Context, userID int, day time.Time) (int, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	query := `
		SELECT COUNT(*)
		FROM bookings b
		JOIN classes c ON c.id = b.class_id
		WHERE b.user_id = $1
		  AND b.status = 'confirmed'
		  AND c.start_time >= $2
		  AND c.start_time < $3
	`

	var count int
	err := r.db.GetContext(ctx, &count, query, userID, dayStart, dayEnd)
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *repository) ListWaitlist(ctx context.Context, classID int) ([]WaitlistEntry, error) {
	query := `
		SELECT id, class_id, user_id, position, created_at
		FROM waitlist_entries
		WHERE class_id = $1
		ORDER BY position ASC
	`

	var entries []WaitlistEntry
	err := r.db.SelectContext(ctx, &entries, query, classID)
	if err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *repository) CountWaitlist(ctx context.Context, classID int) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM waitlist_entries
		WHERE class_id = $1
	`

	var count int
	err := r.db.GetContext(ctx, &count, query, classID)
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *repository) GetWaitlistEntry(ctx context.Context, classID, userID int) (*WaitlistEntry, error) {
	query := `
		SELECT id, class_id, user_id, position, created_at
		FROM waitlist_entries
		WHERE class_id = $1 AND user_id = $2
	`

	var entry WaitlistEntry
	err := r.db.GetContext(ctx, &entry, query, classID, userID)
	if err != nil {
		return nil, err
	}

	return &entry, nil
}

func (r *repository) CreateConfirmed(ctx context.Context, classID, userID, expectedVersion int, events []event.Record) (*Booking, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := db.BumpVersion(ctx, tx, classID, expectedVersion); err != nil {
		return nil, err
	}

	var booking Booking
	err = tx.QueryRowxContext(ctx, `
		INSERT INTO bookings (class_id, user_id, status)
		VALUES ($1, $2, 'confirmed')
		RETURNING id, class_id, user_id, status, booked_at, cancelled_at`,
		classID, userID,
	).StructScan(&booking)
	if err != nil {
		return nil, err
	}

	if err := r.outbox.AppendTx(ctx, tx, events...); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &booking, nil
}

func (r *repository) AppendWaitlist(ctx context.Context, classID, userID, position, expectedVersion int, events []event.Record) (*WaitlistEntry, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := db.BumpVersion(ctx, tx, classID, expectedVersion); err != nil {
		return nil, err
	}

	var entry WaitlistEntry
	err = tx.QueryRowxContext(ctx, `
		INSERT INTO waitlist_entries (class_id, user_id, position)
		VALUES ($1, $2, $3)
		RETURNING id, class_id, user_id, position, created_at`,
		classID, userID, position,
	).StructScan(&entry)
	if err != nil {
		return nil, err
	}

	if err := r.outbox.AppendTx(ctx, tx, events...); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &entry, nil
}

func (r *repository) CancelWithPromotion(ctx context.Context, p CancelParams, events []event.Record) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := db.BumpVersion(ctx, tx, p.ClassID, p.ExpectedVersion); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE bookings SET status = 'cancelled', cancelled_at = $1 WHERE id = $2 AND status = 'confirmed'`,
		p.CancelledAt, p.BookingID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrBookingNotFoundOrAlreadyCancelled
	}

	if p.Promotion != nil {
		if err := r.promoteTx(ctx, tx, p.ClassID, p.Promotion); err != nil {
			return err
		}
	}

	if err := r.outbox.AppendTx(ctx, tx, events...); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *repository) promoteTx(ctx context.Context, tx *sqlx.Tx, classID int, promo *Promotion) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO bookings (class_id, user_id, status)
		VALUES ($1, $2, 'confirmed')`,
		classID, promo.UserID,
	)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM waitlist_entries WHERE id = $1`,
		promo.EntryID,
	)
	if err != nil {
		return err
	}

	return renumberAfterTx(ctx, tx, classID, promo.Position)
}

func (r *repository) RemoveWaitlistEntry(ctx context.Context, entryID, classID, position, expectedVersion int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := db.BumpVersion(ctx, tx, classID, expectedVersion); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx,
		`DELETE FROM waitlist_entries WHERE id = $1`,
		entryID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}

	if err := renumberAfterTx(ctx, tx, classID, position); err != nil {
		return err
	}

	return tx.Commit()
}

// renumberAfterTx closes the gap left by a removed entry, keeping positions
// contiguous 1..N in join order.
func renumberAfterTx(ctx context.Context, tx *sqlx.Tx, classID, removedPosition int) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE waitlist_entries SET position = position - 1 WHERE class_id = $1 AND position > $2`,
		classID, removedPosition,
	)
	return err
}

func (r *repository) ListByUser(ctx context.Context, userID int) ([]BookingWithClass, error) {
	query := `
		SELECT b.id, b.class_id, b.user_id, b.status, b.booked_at, b.cancelled_at,
		       c.name AS class_name,
		       c.start_time AS class_start,
		       c.end_time AS class_end,
		       c.room
		FROM bookings b
		JOIN classes c ON c.id = b.class_id
		WHERE b.user_id = $1
		ORDER BY c.start_time DESC
	`

	var bookings []BookingWithClass
	err := r.db.SelectContext(ctx, &bookings, query, userID)
	if err != nil {
		return nil, err
	}

	return bookings, nil
}

func (r *repository) ListByClass(ctx context.Context, classID int) ([]Booking, error) {
	query := `
		SELECT id, class_id, user_id, status, booked_at, cancelled_at
		FROM bookings
		WHERE class_id = $1
		ORDER BY booked_at ASC
	`

	var bookings []Booking
	err := r.db.SelectContext(ctx, &bookings, query, classID)
	if err != nil {
		return nil, err
	}

	return bookings, nil
}
