package rules

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"fitify/internal/logger"
)

// Channel carries business-rule updates pushed by the admin tooling.
const Channel = "fitify:rules"

// Subscriber listens for rule updates on a Redis pub/sub channel and applies
// them to the store without a restart.
type Subscriber struct {
	redis *redis.Client
	store *Store
}

func NewSubscriber(client *redis.Client, store *Store) *Subscriber {
	return &Subscriber{redis: client, store: store}
}

func (s *Subscriber) Start(ctx context.Context) {
	pubsub := s.redis.Subscribe(ctx, Channel)
	defer pubsub.Close()

	logger.Infof("Rules subscriber listening on %s", Channel)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			logger.Info("Rules subscriber stopped")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			s.handle(msg.Payload)
		}
	}
}

func (s *Subscriber) handle(payload string) {
	var u Update
	if err := json.Unmarshal([]byte(payload), &u); err != nil {
		logger.Errorf("Bad rules update payload: %v", err)
		return
	}

	applied := s.store.Apply(u)
	logger.Infof("Business rules updated: window=%dh waitlist=%d daily=%d",
		applied.CancellationWindowHours, applied.MaxWaitlistSize, applied.MaxBookingsPerDay)
}
