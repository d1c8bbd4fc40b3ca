package checkout

import (
	"context"
	"fmt"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

const (
	// DefaultListLimit применяется, если limit не задан.
	DefaultListLimit = 50
	// MaxListLimit ограничивает размер страницы списка заказов.
	MaxListLimit = 200
)

// GetOrder возвращает заказ по ID.
func (s *Service) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	ctx, span := tracer.Start(ctx, "checkout.GetOrder")
	defer span.End()

	return s.orders.Get(ctx, id)
}

// ListCustomerOrders возвращает последние заказы клиента.
// Для неизвестного клиента возвращается ErrCustomerNotFound.
func (s *Service) ListCustomerOrders(ctx context.Context, customerID string, limit int) ([]domain.Order, error) {
	ctx, span := tracer.Start(ctx, "checkout.ListCustomerOrders")
	defer span.End()

	if _, err := s.customers.FindByID(ctx, customerID); err != nil {
		return nil, err
	}

	switch {
	case limit <= 0:
		limit = DefaultListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}

	orders, err := s.orders.ListByCustomer(ctx, customerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list orders for customer %s: %w", customerID, err)
	}
	return orders, nil
}

// GetProduct возвращает товар каталога с текущим остатком.
func (s *Service) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	ctx, span := tracer.Start(ctx, "checkout.GetProduct")
	defer span.End()

	return s.products.Get(ctx, id)
}
