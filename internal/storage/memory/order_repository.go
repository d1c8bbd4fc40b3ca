package memory

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

// orderRepositoryInMemory - in-memory реализация OrderRepository.
type orderRepositoryInMemory struct {
	store *Store
}

// NewOrderRepository возвращает in-memory репозиторий для локальной разработки и тестов.
func NewOrderRepository(store *Store) domain.OrderRepository {
	return &orderRepositoryInMemory{store: store}
}

// Create сохраняет заказ с позициями, назначая идентификаторы и временные метки.
func (r *orderRepositoryInMemory) Create(ctx context.Context, customer domain.Customer, items []domain.OrderItem) (domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return domain.Order{}, err
	}

	now := r.store.now()
	order := domain.Order{
		ID:         uuid.NewString(),
		CustomerID: customer.ID,
		Items:      make([]domain.OrderItem, len(items)),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for i, item := range items {
		item.ID = uuid.NewString()
		item.CreatedAt = now
		order.Items[i] = item
	}
	total, err := domain.ItemsTotal(order.Items)
	if err != nil {
		return domain.Order{}, err
	}
	order.AmountMinor = total

	if errs := order.ValidateInvariants(); len(errs) > 0 {
		return domain.Order{}, errors.Join(errs...)
	}

	err = r.store.write(ctx, func() (func(), error) {
		if _, exists := r.store.orders[order.ID]; exists {
			return nil, domain.ErrOrderAlreadyExists
		}
		r.store.orders[order.ID] = cloneOrder(order)
		return func() { delete(r.store.orders, order.ID) }, nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	return order, nil
}

// Get возвращает заказ или ErrOrderNotFound, если его нет.
func (r *orderRepositoryInMemory) Get(ctx context.Context, id string) (domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return domain.Order{}, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	order, ok := r.store.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return cloneOrder(order), nil
}

// ListByCustomer возвращает заказы клиента, ограничивая выборку limit (если >0).
func (r *orderRepositoryInMemory) ListByCustomer(ctx context.Context, customerID string, limit int) ([]domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]domain.Order, 0)
	for _, order := range r.store.orders {
		if order.CustomerID != customerID {
			continue
		}
		result = append(result, cloneOrder(order))
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

// cloneOrder копирует позиции, чтобы вызывающий код не менял состояние хранилища.
func cloneOrder(order domain.Order) domain.Order {
	order.Items = append([]domain.OrderItem(nil), order.Items...)
	return order
}

var _ domain.OrderRepository = (*orderRepositoryInMemory)(nil)
