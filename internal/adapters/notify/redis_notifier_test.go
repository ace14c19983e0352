package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"route-collection-service/internal/ports"
)

func TestRedisNotifierPublishesEvent(t *testing.T) {
	srv := miniredis.RunT(t)

	n := NewRedisNotifier(srv.Addr(), "routes.events")
	defer n.Close()

	ctx := context.Background()
	if err := n.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	sub := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	defer sub.Close()
	pubsub := sub.Subscribe(ctx, "routes.events")
	defer pubsub.Close()
	if _, err := pubsub.Receive(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	ev := ports.ChangeEvent{
		ID:        "ev-1",
		Kind:      ports.EventRouteAdded,
		RouteName: "Trail",
		At:        time.Now().UTC(),
	}
	if err := n.Notify(ctx, ev); err != nil {
		t.Fatalf("notify: %v", err)
	}

	msg, err := pubsub.ReceiveTimeout(ctx, 2*time.Second)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	m, ok := msg.(*redis.Message)
	if !ok {
		t.Fatalf("received %T, want *redis.Message", msg)
	}

	var got ports.ChangeEvent
	if err := json.Unmarshal([]byte(m.Payload), &got); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if got.ID != "ev-1" || got.Kind != ports.EventRouteAdded || got.RouteName != "Trail" {
		t.Fatalf("decoded event = %+v", got)
	}
}

func TestRedisNotifierPingFailsWhenDown(t *testing.T) {
	srv := miniredis.RunT(t)
	addr := srv.Addr()
	srv.Close()

	n := NewRedisNotifier(addr, "routes.events")
	defer n.Close()

	if err := n.Ping(context.Background()); err == nil {
		t.Fatal("expected ping error against a closed broker")
	}
}
