package events

import (
	"context"
	"encoding/json"
	"fmt"

	"gameclub_backend/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// NewRedis creates and validates a go-redis client connection.
func NewRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

// Publisher is the subset of *redis.Client used to publish.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisNotifier publishes events as JSON so every API instance can relay them.
type RedisNotifier struct {
	client  Publisher
	channel string
}

func NewRedisNotifier(client Publisher, channel string) *RedisNotifier {
	return &RedisNotifier{client: client, channel: channel}
}

func (n *RedisNotifier) Notify(ctx context.Context, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		utils.LogError(err, "Failed to encode event", map[string]interface{}{"event_id": event.ID})
		return
	}
	if err := n.client.Publish(ctx, n.channel, payload).Err(); err != nil {
		utils.LogError(err, "Failed to publish event to redis", map[string]interface{}{"event_id": event.ID, "channel": n.channel})
	}
}

// RelayFromRedis forwards events published on channel into the local hub until ctx is done.
func RelayFromRedis(ctx context.Context, client *redis.Client, channel string, hub *Hub) {
	sub := client.Subscribe(ctx, channel)
	defer sub.Close()

	utils.LogInfo("Relaying events from redis", map[string]interface{}{"channel": channel})
	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			event, err := decodeEvent(msg.Payload)
			if err != nil {
				utils.LogError(err, "Ignoring malformed event from redis")
				continue
			}
			hub.Notify(ctx, event)
		}
	}
}

func decodeEvent(payload string) (Event, error) {
	var event Event
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return Event{}, fmt.Errorf("decoding event: %w", err)
	}
	return event, nil
}
