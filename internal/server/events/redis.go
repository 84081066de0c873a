package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/LondonVandervort/PrivacyDating/internal/logging"
	"github.com/redis/go-redis/v9"
)

// RedisPublisher appends events to a redis stream via XADD. Publish never
// returns an error to the caller; broker failures are logged and dropped.
type RedisPublisher struct {
	client *redis.Client
	stream string
	logger logging.Logger
}

// NewRedisPublisher connects to redis and verifies the connection.
func NewRedisPublisher(opts *redis.Options, stream string, logger logging.Logger) (*RedisPublisher, error) {
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisPublisher{
		client: client,
		stream: stream,
		logger: logger.With("module", "events"),
	}, nil
}

func (p *RedisPublisher) Publish(ctx context.Context, e Event) {
	fields, err := json.Marshal(e.Fields)
	if err != nil {
		p.logger.Error(ctx, "encoding event fields", "event", e.Name, "error", err.Error())
		return
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{
			"name":   e.Name,
			"at":     e.At.Format(time.RFC3339Nano),
			"fields": string(fields),
		},
	}).Err()
	if err != nil {
		p.logger.Error(ctx, "publishing event", "event", e.Name, "error", err.Error())
	}
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
