package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/danielavelez12/goupromo/internal/cart"
)

const (
	CartCheckedOutEventName           = "CartCheckedOut"
	CartCheckedOutEventVersion        = 1
	CartCheckedOutEnvelopedSchemaPath = "contracts/events/cart/CartCheckedOut.v1.enveloped.schema.json"
	CartServiceProducer               = "goupromo-cart-service"
)

type EventEnvelope struct {
	EventName     string                `json:"eventName"`
	EventVersion  int                   `json:"eventVersion"`
	EventID       string                `json:"eventId"`
	CorrelationID string                `json:"correlationId,omitempty"`
	Producer      string                `json:"producer"`
	PartitionKey  string                `json:"partitionKey"`
	Sequence      int64                 `json:"sequence"`
	OccurredAt    time.Time             `json:"occurredAt"`
	Schema        string                `json:"schema"`
	Payload       CartCheckedOutPayload `json:"payload"`
}

type CartCheckedOutPayload struct {
	SessionKey  string               `json:"sessionKey"`
	Items       []CartCheckedOutItem `json:"items"`
	TotalAmount float64              `json:"totalAmount"`
	Timestamp   time.Time            `json:"timestamp"`
}

type CartCheckedOutItem struct {
	ItemNumber     string  `json:"item_number"`
	Name           string  `json:"name"`
	OfferPrice     float64 `json:"offer_price"`
	Quantity       int     `json:"quantity"`
	RestaurantName string  `json:"restaurant_name"`
}

type EnvelopeOptions struct {
	Sequence      int64
	CorrelationID string
	EventID       string
	OccurredAt    time.Time
}

// BuildCartCheckedOutEvent wraps a cart snapshot in the versioned envelope
// downstream order processing consumes. The session key doubles as the
// partition key so every session's events stay ordered.
func BuildCartCheckedOutEvent(sessionKey string, snap cart.Snapshot, opts EnvelopeOptions) EventEnvelope {
	eventID := opts.EventID
	if eventID == "" {
		eventID = uuid.NewString()
	}

	occurredAt := opts.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	payload := CartCheckedOutPayload{
		SessionKey:  sessionKey,
		TotalAmount: snap.Total,
		Timestamp:   occurredAt,
	}
	for _, it := range snap.Items {
		payload.Items = append(payload.Items, CartCheckedOutItem{
			ItemNumber:     it.ItemID,
			Name:           it.Name,
			OfferPrice:     it.UnitPrice,
			Quantity:       it.Quantity,
			RestaurantName: it.VendorName,
		})
	}

	return EventEnvelope{
		EventName:     CartCheckedOutEventName,
		EventVersion:  CartCheckedOutEventVersion,
		EventID:       eventID,
		CorrelationID: opts.CorrelationID,
		Producer:      CartServiceProducer,
		PartitionKey:  sessionKey,
		Sequence:      opts.Sequence,
		OccurredAt:    occurredAt,
		Schema:        CartCheckedOutEnvelopedSchemaPath,
		Payload:       payload,
	}
}
