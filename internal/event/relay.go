package event

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"fitify/internal/logger"
	"fitify/internal/metrics"
)

// Queue is the Redis list consumed by downstream collaborators
// (notification fan-out, metrics rollups).
const Queue = "fitify:events"

const relayBatchSize = 100

// Relay drains committed outbox rows to the Redis queue. Rows are marked
// published only after a successful push, so a crash mid-batch re-delivers
// rather than drops.
type Relay struct {
	outbox   *Outbox
	redis    *redis.Client
	interval time.Duration
}

func NewRelay(outbox *Outbox, client *redis.Client, interval time.Duration) *Relay {
	if interval <= 0 {
		interval = time.Second
	}
	return &Relay{
		outbox:   outbox,
		redis:    client,
		interval: interval,
	}
}

type envelope struct {
	ID        int64           `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

func (r *Relay) Start(ctx context.Context) {
	logger.Info("Event relay started")

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Event relay stopped")
			return
		case <-ticker.C:
			r.drain(ctx)
		}
	}
}

func (r *Relay) drain(ctx context.Context) {
	for {
		rows, err := r.outbox.ListPending(ctx, relayBatchSize)
		if err != nil {
			logger.Errorf("Failed to list pending events: %v", err)
			return
		}
		if len(rows) == 0 {
			metrics.OutboxPendingEvents.Set(0)
			return
		}

		for _, row := range rows {
			if err := r.publish(ctx, row); err != nil {
				logger.Errorf("Failed to publish event %d (%s): %v", row.ID, row.EventType, err)
				metrics.RecordEventPublished(row.EventType, "error")
				return
			}
			metrics.RecordEventPublished(row.EventType, "ok")
		}

		if len(rows) < relayBatchSize {
			return
		}
	}
}

func (r *Relay) publish(ctx context.Context, row Row) error {
	data, err := json.Marshal(envelope{
		ID:        row.ID,
		Type:      row.EventType,
		Payload:   json.RawMessage(row.Payload),
		CreatedAt: row.CreatedAt,
	})
	if err != nil {
		return err
	}

	if err := r.redis.LPush(ctx, Queue, data).Err(); err != nil {
		return err
	}

	return r.outbox.MarkPublished(ctx, row.ID)
}
