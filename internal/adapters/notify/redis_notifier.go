package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"route-collection-service/internal/platform/obs"
	"route-collection-service/internal/ports"
)

// RedisNotifier publishes change events as JSON on a redis pub/sub channel
// so side panels and other UI surfaces can react without polling.
type RedisNotifier struct {
	client  *redis.Client
	channel string
}

func NewRedisNotifier(addr, channel string) *RedisNotifier {
	return &RedisNotifier{
		client:  redis.NewClient(&redis.Options{Addr: addr}),
		channel: channel,
	}
}

// Ping verifies the broker connection.
func (n *RedisNotifier) Ping(ctx context.Context) error {
	if err := n.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis notifier: ping: %w", err)
	}
	return nil
}

func (n *RedisNotifier) Notify(ctx context.Context, ev ports.ChangeEvent) (err error) {
	defer obs.Time(ctx, "notify.redis.Publish")(&err)

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("redis notifier: marshal event %s: %w", ev.ID, err)
	}

	if err := n.client.Publish(ctx, n.channel, payload).Err(); err != nil {
		return fmt.Errorf("redis notifier: publish to %q: %w", n.channel, err)
	}
	return nil
}

func (n *RedisNotifier) Close() error {
	return n.client.Close()
}
