package event

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
)

// Outbox persists domain events in the same transaction as the state change
// they describe. A separate relay pushes committed rows to Redis, giving
// at-least-once delivery without dual-write races.
type Outbox struct {
	db *sqlx.DB
}

func NewOutbox(db *sqlx.DB) *Outbox {
	return &Outbox{db: db}
}

type Row struct {
	ID          int64      `db:"id" json:"id"`
	EventType   string     `db:"event_type" json:"event_type"`
	Payload     []byte     `db:"payload" json:"payload"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	PublishedAt *time.Time `db:"published_at" json:"published_at,omitempty"`
}

// AppendTx inserts records inside the caller's transaction.
func (o *Outbox) AppendTx(ctx context.Context, tx *sqlx.Tx, recs ...Record) error {
	for _, rec := range recs {
		payload, err := json.Marshal(rec.Payload)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO domain_events (event_type, payload) VALUES ($1, $2)`,
			rec.Type, payload,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (o *Outbox) ListPending(ctx context.Context, limit int) ([]Row, error) {
	query := `
		SELECT id, event_type, payload, created_at, published_at
		FROM domain_events
		WHERE published_at IS NULL
		ORDER BY id
		LIMIT $1
	`

	var rows []Row
	err := o.db.SelectContext(ctx, &rows, query, limit)
	if err != nil {
		return nil, err
	}

	return rows, nil
}

func (o *Outbox) MarkPublished(ctx context.Context, id int64) error {
	_, err := o.db.ExecContext(ctx,
		`UPDATE domain_events SET published_at = NOW() WHERE id = $1`,
		id,
	)
	return err
}

func (o *Outbox) PendingCount(ctx context.Context) (int, error) {
	var count int
	err := o.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM domain_events WHERE published_at IS NULL`,
	)
	if err != nil {
		return 0, err
	}
	return count, nil
}
