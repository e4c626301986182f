package ports

import (
	"context"
	"time"
)

// OrderPlaced is emitted after a checkout completes. Downstream consumers
// (notifications, analytics) subscribe to it; the workflow itself never
// depends on a publish succeeding.
type OrderPlaced struct {
	OrderID   string    `json:"order_id"`
	CallerID  string    `json:"caller_id"`
	Total     string    `json:"total"`
	LineCount int       `json:"line_count"`
	PlacedAt  time.Time `json:"placed_at"`
}

type OrderEventPublisher interface {
	PublishOrderPlaced(ctx context.Context, evt OrderPlaced) error
}

// NopPublisher drops events. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishOrderPlaced(context.Context, OrderPlaced) error { return nil }
