package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/danielavelez12/goupromo/internal/cart"
)

func TestBuildCartCheckedOutEventDefaults(t *testing.T) {
	snap := cart.Snapshot{
		Items: []cart.LineItem{
			{ItemID: "surprise-1", Name: "Surprise bag", UnitPrice: 5, Quantity: 3, VendorName: "Trattoria Nina"},
		},
		Total: 15,
	}

	ev := BuildCartCheckedOutEvent("session-1", snap, EnvelopeOptions{Sequence: 7})

	if ev.EventName != CartCheckedOutEventName || ev.EventVersion != CartCheckedOutEventVersion {
		t.Fatalf("unexpected event identity: %s v%d", ev.EventName, ev.EventVersion)
	}
	if ev.EventID == "" {
		t.Fatal("expected generated event id")
	}
	if ev.OccurredAt.IsZero() {
		t.Fatal("expected occurredAt to be set")
	}
	if ev.PartitionKey != "session-1" || ev.Sequence != 7 {
		t.Fatalf("unexpected partitioning: key=%q seq=%d", ev.PartitionKey, ev.Sequence)
	}
	if ev.Producer != CartServiceProducer || ev.Schema != CartCheckedOutEnvelopedSchemaPath {
		t.Fatalf("unexpected producer/schema: %q %q", ev.Producer, ev.Schema)
	}

	if len(ev.Payload.Items) != 1 {
		t.Fatalf("expected 1 payload item, got %d", len(ev.Payload.Items))
	}
	it := ev.Payload.Items[0]
	if it.ItemNumber != "surprise-1" || it.Quantity != 3 || it.OfferPrice != 5 || it.RestaurantName != "Trattoria Nina" {
		t.Fatalf("unexpected payload item: %+v", it)
	}
	if ev.Payload.TotalAmount != 15 {
		t.Fatalf("unexpected total: %v", ev.Payload.TotalAmount)
	}
}

func TestBuildCartCheckedOutEventHonorsOptions(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ev := BuildCartCheckedOutEvent("session-1", cart.Snapshot{}, EnvelopeOptions{
		Sequence:      1,
		EventID:       "ev-1",
		CorrelationID: "corr-1",
		OccurredAt:    at,
	})

	if ev.EventID != "ev-1" || ev.CorrelationID != "corr-1" || !ev.OccurredAt.Equal(at) {
		t.Fatalf("options not honored: %+v", ev)
	}
	if !ev.Payload.Timestamp.Equal(at) {
		t.Fatalf("payload timestamp %v, want %v", ev.Payload.Timestamp, at)
	}
}

func TestCartCheckedOutEventWireFormat(t *testing.T) {
	ev := BuildCartCheckedOutEvent("session-1", cart.Snapshot{
		Items: []cart.LineItem{{ItemID: "a", UnitPrice: 2, Quantity: 1}},
		Total: 2,
	}, EnvelopeOptions{Sequence: 1, EventID: "ev-1"})

	body, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"eventName", "eventVersion", "eventId", "producer", "partitionKey", "sequence", "occurredAt", "schema", "payload"} {
		if _, ok := raw[key]; !ok {
			t.Fatalf("envelope missing %q: %s", key, body)
		}
	}

	payload := raw["payload"].(map[string]any)
	items := payload["items"].([]any)
	first := items[0].(map[string]any)
	if _, ok := first["item_number"]; !ok {
		t.Fatalf("payload item missing item_number: %s", body)
	}
}
