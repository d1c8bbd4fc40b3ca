package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	// AggregateTypeOrder - тип агрегата для событий заказа в outbox.
	AggregateTypeOrder = "order"
	// EventTypeOrderCreated публикуется после успешного оформления заказа.
	EventTypeOrderCreated = "order.created"
)

// OrderCreatedItem - позиция в payload события order.created.
type OrderCreatedItem struct {
	ProductID  string `json:"product_id"`
	Quantity   int64  `json:"quantity"`
	PriceMinor int64  `json:"price_minor"`
}

// OrderCreatedPayload - тело события order.created.
type OrderCreatedPayload struct {
	OrderID     string             `json:"order_id"`
	CustomerID  string             `json:"customer_id"`
	AmountMinor int64              `json:"amount_minor"`
	Items       []OrderCreatedItem `json:"items"`
	CreatedAt   time.Time          `json:"created_at"`
}

// NewOrderCreatedMessage собирает outbox-сообщение для только что созданного заказа.
func NewOrderCreatedMessage(order Order) (OutboxMessage, error) {
	payload := OrderCreatedPayload{
		OrderID:     order.ID,
		CustomerID:  order.CustomerID,
		AmountMinor: order.AmountMinor,
		Items:       make([]OrderCreatedItem, 0, len(order.Items)),
		CreatedAt:   order.CreatedAt,
	}
	for _, item := range order.Items {
		payload.Items = append(payload.Items, OrderCreatedItem{
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			PriceMinor: item.PriceMinor,
		})
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return OutboxMessage{}, fmt.Errorf("marshal order.created payload: %w", err)
	}

	return OutboxMessage{
		AggregateType: AggregateTypeOrder,
		AggregateID:   order.ID,
		EventType:     EventTypeOrderCreated,
		Payload:       data,
	}, nil
}
