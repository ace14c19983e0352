package notify

import (
	"context"
	"log"

	"route-collection-service/internal/ports"
)

// LogNotifier writes change events to the process log. It is the default
// sink when no broker is configured.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, ev ports.ChangeEvent) error {
	log.Printf("change event: kind=%s route=%q id=%s", ev.Kind, ev.RouteName, ev.ID)
	return nil
}
