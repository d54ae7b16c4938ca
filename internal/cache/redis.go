// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/launchcast/stealgame/internal/models"
	"github.com/redis/go-redis/v9"
)

// DefaultQueueName is the Redis list (queue) name for steal action events.
const DefaultQueueName = "steal_actions"

// Queue publishes resolved steal actions for the notifier worker. The
// push is best-effort; resolution is durable before it happens.
type Queue struct {
	rdb  *redis.Client
	name string
}

// Connect initializes a Queue and verifies the Redis connection.
func Connect(addr string, db int, queueName string) (*Queue, error) {
	if queueName == "" {
		queueName = DefaultQueueName
	}
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return &Queue{rdb: rdb, name: queueName}, nil
}

// PublishStealAction serializes the record to JSON and pushes it onto
// the queue. This does not block the resolving request beyond a quick
// network send.
func (q *Queue) PublishStealAction(ctx context.Context, rec models.ActionRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal action record: %w", err)
	}
	if err := q.rdb.RPush(ctx, q.name, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", q.name, err)
	}
	return nil
}

// Client exposes the underlying redis client for consumers (cmd/notifier).
func (q *Queue) Client() *redis.Client { return q.rdb }

// Name returns the queue's list name.
func (q *Queue) Name() string { return q.name }
