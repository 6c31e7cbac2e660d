// Package events delivers "consumables-updated" notifications to live listeners.
// Delivery is best-effort: a failed or dropped notification never affects the
// stock operation that produced it.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TypeConsumablesUpdated is emitted after every committed stock-affecting write.
const TypeConsumablesUpdated = "consumables-updated"

// Event is the payload pushed to listeners.
type Event struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	Reason        string    `json:"reason"` // stock move reason that triggered it
	ConsumableIDs []int64   `json:"consumable_ids"`
	SaleID        *int64    `json:"sale_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// NewConsumablesUpdated builds an event with a fresh id and timestamp.
func NewConsumablesUpdated(reason string, consumableIDs []int64, saleID *int64) Event {
	return Event{
		ID:            uuid.NewString(),
		Type:          TypeConsumablesUpdated,
		Reason:        reason,
		ConsumableIDs: consumableIDs,
		SaleID:        saleID,
		OccurredAt:    time.Now().UTC(),
	}
}

// Notifier receives events after commit.
type Notifier interface {
	Notify(ctx context.Context, event Event)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Notify(context.Context, Event) {}
