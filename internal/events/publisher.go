package events

import "context"

// Publisher emits integration events after successful booking state
// changes. Delivery is best-effort; the scheduling flow never fails
// because a broker is down.
type Publisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

// Noop discards events. Used when no broker is configured.
type Noop struct{}

func (Noop) PublishJSON(ctx context.Context, key string, v any) error { return nil }
