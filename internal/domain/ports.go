package domain

import (
	"context"
	"time"
)

// CustomerRepository даёт доступ на чтение к клиентам.
type CustomerRepository interface {
	// FindByID возвращает клиента или ErrCustomerNotFound.
	FindByID(ctx context.Context, id string) (Customer, error)
}

// ProductRepository описывает требования к каталогу товаров.
type ProductRepository interface {
	// FindByIDs возвращает только существующие товары из набора ids.
	FindByIDs(ctx context.Context, ids []string) ([]Product, error)
	// Get возвращает товар по ID или ErrProductNotFound.
	Get(ctx context.Context, id string) (Product, error)
	// UpdateQuantities выставляет новые остатки одним батчем.
	UpdateQuantities(ctx context.Context, adjustments []StockAdjustment) error
}

// OrderRepository описывает требования к хранилищу заказов.
type OrderRepository interface {
	// Create атомарно сохраняет заказ вместе с позициями.
	// ID заказа, позиций и временные метки назначает хранилище.
	Create(ctx context.Context, customer Customer, items []OrderItem) (Order, error)
	// Get возвращает заказ по идентификатору или ErrOrderNotFound.
	Get(ctx context.Context, id string) (Order, error)
	// ListByCustomer возвращает заказы клиента, новые первыми; limit <= 0 снимает ограничение.
	ListByCustomer(ctx context.Context, customerID string, limit int) ([]Order, error)
}

// Transactor выполняет fn в одной транзакции, общей для всех репозиториев хранилища.
// Ошибка fn откатывает все записи внутри неё.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// OutboxPublisher публикует события из transactional outbox.
type OutboxPublisher interface {
	// Publish передаёт событие наружу; должен быть идемпотентным.
	Publish(event OutboxMessage) error
}

// OutboxRepository позволяет сохранять события для последующей публикации.
type OutboxRepository interface {
	Enqueue(ctx context.Context, msg OutboxMessage) (OutboxMessage, error)
	PullPending(ctx context.Context, limit int) ([]OutboxMessage, error)
	Stats(ctx context.Context) (OutboxStats, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string) error
}

// OutboxMessage хранит данные для публикуемого события.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats описывает текущее состояние backlog transactional outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}
