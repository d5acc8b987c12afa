package broadcast

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/autobot/fleetctl/pkg/log"
	"github.com/autobot/fleetctl/pkg/types"
	"github.com/redis/go-redis/v9"
)

const channelPrefix = "fleetctl:progress:"

// RedisRelay bridges a local Broker and Redis pub/sub: PublishRemote
// sends one event onto an op_id's Redis channel, and Subscribe forwards
// events received on that channel from other processes into the local
// Broker. Broker.Publish does not call PublishRemote, so an event
// reaches Redis only through an explicit PublishRemote call. This lets a
// horizontally-scaled deployment fan progress out to a subscriber
// connected to a different process than the one running the sync.
// Entirely optional: a Broker with no relay just serves local
// subscribers, per REDIS_URL being unset.
type RedisRelay struct {
	client *redis.Client
	broker *Broker
}

// NewRedisRelay connects to redisURL and wraps broker.
func NewRedisRelay(ctx context.Context, redisURL string, broker *Broker) (*RedisRelay, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisRelay{client: client, broker: broker}, nil
}

type relayedEvent struct {
	OpID  string              `json:"op_id"`
	Event types.ProgressEvent `json:"event"`
}

// PublishRemote sends a locally-originated event onto the shared
// channel, in addition to whatever local delivery Broker.Publish did.
func (r *RedisRelay) PublishRemote(ctx context.Context, opID string, event types.ProgressEvent) error {
	payload, err := json.Marshal(relayedEvent{OpID: opID, Event: event})
	if err != nil {
		return fmt.Errorf("marshal relayed event: %w", err)
	}
	return r.client.Publish(ctx, channelPrefix+opID, payload).Err()
}

// Subscribe listens on opID's channel and forwards whatever arrives
// into the local broker, until ctx is cancelled.
func (r *RedisRelay) Subscribe(ctx context.Context, opID string) {
	logger := log.WithComponent("broadcast-redis")
	pubsub := r.client.Subscribe(ctx, channelPrefix+opID)

	go func() {
		defer func() { _ = pubsub.Close() }()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var wrapped relayedEvent
				if err := json.Unmarshal([]byte(msg.Payload), &wrapped); err != nil {
					logger.Warn().Err(err).Msg("discarding malformed relayed progress event")
					continue
				}
				r.broker.Publish(wrapped.OpID, wrapped.Event)
			}
		}
	}()
}

// Close releases the underlying Redis client.
func (r *RedisRelay) Close() error {
	return r.client.Close()
}
