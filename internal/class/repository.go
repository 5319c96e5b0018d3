package class

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"fitify/internal/db"
	"fitify/internal/event"
)

type repository struct {
	db     *sqlx.DB
	outbox *event.Outbox
}

func NewRepository(database *sqlx.DB, outbox *event.Outbox) Repository {
	return &repository{db: database, outbox: outbox}
}

const classColumns = `id, location_id, coach_id, name, description, class_type, room,
	start_time, end_time, capacity, status, version, created_at`

func (r *repository) Create(ctx context.Context, p CreateParams) (*Class, error) {
	query := `
		INSERT INTO classes (location_id, coach_id, name, description, class_type, room, start_time, end_time, capacity)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + classColumns

	var cls Class
	err := r.db.GetContext(ctx, &cls, query,
		p.LocationID, p.CoachID, p.Name, p.Description, p.ClassType, p.Room,
		p.StartTime, p.EndTime, p.Capacity,
	)
	if err != nil {
		return nil, err
	}

	return &cls, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Class, error) {
	query := `SELECT ` + classColumns + ` FROM classes WHERE id = $1`

	var cls Class
	err := r.db.GetContext(ctx, &cls, query, id)
	if err != nil {
		return nil, err
	}

	return &cls, nil
}

func (r *repository) FindCoachConflicts(ctx context.Context, coachID int, start, end time.Time, excludeClassID int) ([]Class, error) {
	// Half-open intervals: [start1,end1) and [start2,end2) conflict iff
	// start1 < end2 AND start2 < end1.
	query := `
		SELECT ` + classColumns + `
		FROM classes
		WHERE coach_id = $1
		  AND status = 'active'
		  AND start_time < $3
		  AND $2 < end_time
		  AND id != $4
		ORDER BY start_time ASC
	`

	var classes []Class
	err := r.db.SelectContext(ctx, &classes, query, coachID, start, end, excludeClassID)
	if err != nil {
		return nil, err
	}

	return classes, nil
}

func (r *repository) Update(ctx context.Context, cls *Class, events []event.Record) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := db.BumpVersion(ctx, tx, cls.ID, cls.Version); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE classes
		SET name = $1, description = $2, class_type = $3, room = $4,
		    start_time = $5, end_time = $6, capacity = $7
		WHERE id = $8`,
		cls.Name, cls.Description, cls.ClassType, cls.Room,
		cls.StartTime, cls.EndTime, cls.Capacity, cls.ID,
	)
	if err != nil {
		return err
	}

	if err := r.outbox.AppendTx(ctx, tx, events...); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *repository) CancelCascade(ctx context.Context, classID, expectedVersion int, cancelledAt time.Time, events []event.Record) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := db.BumpVersion(ctx, tx, classID, expectedVersion); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE classes SET status = 'cancelled' WHERE id = $1`,
		classID,
	)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE bookings SET status = 'cancelled', cancelled_at = $1 WHERE class_id = $2 AND status = 'confirmed'`,
		cancelledAt, classID,
	)
	if err != nil {
		return err
	}

	// Full clear, no renumbering: nothing remains to renumber.
	_, err = tx.ExecContext(ctx,
		`DELETE FROM waitlist_entries WHERE class_id = $1`,
		classID,
	)
	if err != nil {
		return err
	}

	if err := r.outbox.AppendTx(ctx, tx, events...); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *repository) ConfirmedUserIDs(ctx context.Context, classID int) ([]int, error) {
	query := `
		SELECT user_id
		FROM bookings
		WHERE class_id = $1 AND status = 'confirmed'
		ORDER BY booked_at ASC
	`

	var userIDs []int
	err := r.db.SelectContext(ctx, &userIDs, query, classID)
	if err != nil {
		return nil, err
	}

	return userIDs, nil
}

func (r *repository) WaitlistUserIDs(ctx context.Context, classID int) ([]int, error) {
	query := `
		SELECT user_id
		FROM waitlist_entries
		WHERE class_id = $1
		ORDER BY position ASC
	`

	var userIDs []int
	err := r.db.SelectContext(ctx, &userIDs, query, classID)
	if err != nil {
		return nil, err
	}

	return userIDs, nil
}

func (r *repository) ListUpcomingByLocation(ctx context.Context, locationID int) ([]ClassWithAvailability, error) {
	query := `
		SELECT c.id, c.location_id, c.coach_id, c.name, c.description, c.class_type, c.room,
		       c.start_time, c.end_time, c.capacity, c.status, c.version, c.created_at,
		       COUNT(b.id) FILTER (WHERE b.status = 'confirmed') AS confirmed_count,
		       c.capacity - COUNT(b.id) FILTER (WHERE b.status = 'confirmed') AS seats_left,
		       (SELECT COUNT(*) FROM waitlist_entries w WHERE w.class_id = c.id) AS waitlist_size,
		       COUNT(b.id) FILTER (WHERE b.status = 'confirmed') >= c.capacity AS is_full
		FROM classes c
		LEFT JOIN bookings b ON b.class_id = c.id
		WHERE c.location_id = $1
		  AND c.status = 'active'
		  AND c.start_time > NOW()
		GROUP BY c.id
		ORDER BY c.start_time ASC
	`

	var classes []ClassWithAvailability
	err := r.db.SelectContext(ctx, &classes, query, locationID)
	if err != nil {
		return nil, err
	}

	return classes, nil
}

func (r *repository) ListByCoachRange(ctx context.Context, coachID int, from, to time.Time) ([]Class, error) {
	query := `
		SELECT ` + classColumns + `
		FROM classes
		WHERE coach_id = $1
		  AND start_time >= $2
		  AND start_time < $3
		ORDER BY start_time ASC
	`

	var classes []Class
	err := r.db.SelectContext(ctx, &classes, query, coachID, from, to)
	if err != nil {
		return nil, err
	}

	return classes, nil
}

func (r *repository) UtilizationStats(ctx context.Context, from, to time.Time) ([]UtilizationStat, error) {
	query := `
		SELECT c.id AS class_id,
		       c.name,
		       c.start_time,
		       COUNT(b.id) FILTER (WHERE b.status = 'confirmed') AS confirmed,
		       c.capacity
		FROM classes c
		LEFT JOIN bookings b ON b.class_id = c.id
		WHERE c.start_time BETWEEN $1 AND $2
		GROUP BY c.id
		ORDER BY c.start_time ASC
	`

	var stats []UtilizationStat
	err := r.db.SelectContext(ctx, &stats, query, from, to)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

func (r *repository) CountCancellations(ctx context.Context, from, to time.Time, locationID *int) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM bookings b
		JOIN classes c ON c.id = b.class_id
		WHERE b.status = 'cancelled'
		  AND b.cancelled_at BETWEEN $1 AND $2
	`
	args := []interface{}{from, to}

	if locationID != nil {
		query += " AND c.location_id = $3"
		args = append(args, *locationID)
	}

	var count int
	err := r.db.GetContext(ctx, &count, query, args...)
	if err != nil {
		return 0, err
	}

	return count, nil
}
