package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNewOrderCreatedMessage(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	order := Order{
		ID:          "order-1",
		CustomerID:  "c1",
		AmountMinor: 300,
		Items: []OrderItem{
			{ID: "i1", ProductID: "p1", Quantity: 2, PriceMinor: 100},
			{ID: "i2", ProductID: "p2", Quantity: 1, PriceMinor: 100},
		},
		CreatedAt: created,
	}

	msg, err := NewOrderCreatedMessage(order)
	if err != nil {
		t.Fatalf("NewOrderCreatedMessage: %v", err)
	}
	if msg.AggregateType != AggregateTypeOrder || msg.AggregateID != "order-1" || msg.EventType != EventTypeOrderCreated {
		t.Fatalf("unexpected envelope: %+v", msg)
	}

	var payload OrderCreatedPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if len(payload.Items) != 2 || payload.Items[0].ProductID != "p1" || payload.Items[1].ProductID != "p2" {
		t.Fatalf("items must keep order: %+v", payload.Items)
	}
	if !payload.CreatedAt.Equal(created) {
		t.Fatalf("unexpected created_at: %s", payload.CreatedAt)
	}
}
