package httpapi

import (
	"time"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

type createOrderRequest struct {
	CustomerID string             `json:"customer_id"`
	Products   []orderLineRequest `json:"products"`
}

type orderLineRequest struct {
	ID       string `json:"id"`
	Quantity int64  `json:"quantity"`
}

func (r createOrderRequest) toDomain() domain.CreateOrderRequest {
	lines := make([]domain.OrderLineRequest, 0, len(r.Products))
	for _, p := range r.Products {
		lines = append(lines, domain.OrderLineRequest{ProductID: p.ID, Quantity: p.Quantity})
	}
	return domain.CreateOrderRequest{CustomerID: r.CustomerID, Lines: lines}
}

type orderItemResponse struct {
	ID         string `json:"id"`
	ProductID  string `json:"product_id"`
	Quantity   int64  `json:"quantity"`
	PriceMinor int64  `json:"price_minor"`
}

type orderResponse struct {
	ID          string              `json:"id"`
	CustomerID  string              `json:"customer_id"`
	AmountMinor int64               `json:"amount_minor"`
	Items       []orderItemResponse `json:"items"`
	CreatedAt   time.Time           `json:"created_at"`
}

type ordersResponse struct {
	Orders []orderResponse `json:"orders"`
}

type productResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PriceMinor int64  `json:"price_minor"`
	Quantity   int64  `json:"quantity"`
}

func mapOrder(order domain.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemResponse{
			ID:         item.ID,
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			PriceMinor: item.PriceMinor,
		})
	}
	return orderResponse{
		ID:          order.ID,
		CustomerID:  order.CustomerID,
		AmountMinor: order.AmountMinor,
		Items:       items,
		CreatedAt:   order.CreatedAt,
	}
}

func mapProduct(p domain.Product) productResponse {
	return productResponse{ID: p.ID, Name: p.Name, PriceMinor: p.PriceMinor, Quantity: p.Quantity}
}
