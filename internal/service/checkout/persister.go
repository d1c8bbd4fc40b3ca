package checkout

import (
	"context"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

// persist записывает заказ, затем новые остатки и событие order.created. Если создание
// заказа не прошло, остатки не трогаются. Ошибка после записи заказа несёт его ID.
func (s *Service) persist(ctx context.Context, customer domain.Customer, items []domain.OrderItem, adjustments []domain.StockAdjustment) (domain.Order, error) {
	ctx, span := tracer.Start(ctx, "checkout.persist")
	defer span.End()

	order, err := s.orders.Create(ctx, customer, items)
	if err != nil {
		return domain.Order{}, &domain.StoreFailureError{Stage: domain.StageOrderCreate, Err: err}
	}

	if err := s.products.UpdateQuantities(ctx, adjustments); err != nil {
		return order, &domain.StoreFailureError{Stage: domain.StageStockUpdate, OrderID: order.ID, Err: err}
	}

	if s.outbox != nil {
		if err := s.enqueueCreated(ctx, order); err != nil {
			return order, &domain.StoreFailureError{Stage: domain.StageEventEnqueue, OrderID: order.ID, Err: err}
		}
	}

	return order, nil
}

func (s *Service) enqueueCreated(ctx context.Context, order domain.Order) error {
	msg, err := domain.NewOrderCreatedMessage(order)
	if err != nil {
		return err
	}
	_, err = s.outbox.Enqueue(ctx, msg)
	return err
}
