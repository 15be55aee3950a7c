package events

import (
	"time"

	"github.com/google/uuid"
)

// Event types published by the engine. Consumers (notification fan-out,
// analytics) subscribe to the shared topic and filter by type.
const (
	BookingConfirmed  = "booking.confirmed"
	BookingCancelled  = "booking.cancelled"
	BookingCompleted  = "booking.completed"
	GiftCardIssued    = "giftcard.issued"
	GiftCardRedeemed  = "giftcard.redeemed"
	GiftCardCancelled = "giftcard.cancelled"
)

type Event struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	TenantID   string         `json:"tenant_id"`
	OccurredAt time.Time      `json:"occurred_at"`
	Payload    map[string]any `json:"payload,omitempty"`
}

func New(eventType, tenantID string, payload map[string]any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		TenantID:   tenantID,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}
