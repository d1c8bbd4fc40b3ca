package checkout_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/shop/internal/domain"
	"github.com/vladislavdragonenkov/shop/internal/service/checkout"
	"github.com/vladislavdragonenkov/shop/internal/storage/memory"
)

var errStore = errors.New("store unavailable")

type fixture struct {
	store     *memory.Store
	customers domain.CustomerRepository
	products  domain.ProductRepository
	orders    domain.OrderRepository
	outbox    *memory.OutboxRepository
}

// newFixture возвращает store с клиентом C1 и товарами P1 (цена 1000, остаток 5) и P2 (цена 250, остаток 20).
func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	require.NoError(t, store.Seed(memory.SeedData{
		Customers: []memory.SeedCustomer{{ID: "C1", Name: "Alice"}},
		Products: []memory.SeedProduct{
			{ID: "P1", Name: "Desk lamp", PriceMinor: 1000, Quantity: 5},
			{ID: "P2", Name: "Notebook", PriceMinor: 250, Quantity: 20},
		},
	}))

	return &fixture{
		store:     store,
		customers: memory.NewCustomerRepository(store),
		products:  memory.NewProductRepository(store),
		orders:    memory.NewOrderRepository(store),
		outbox:    memory.NewOutboxRepository(store),
	}
}

func (f *fixture) deps() checkout.Deps {
	return checkout.Deps{
		Customers: f.customers,
		Products:  f.products,
		Orders:    f.orders,
		Logger:    quietLogger(),
	}
}

func (f *fixture) stock(t *testing.T, id string) int64 {
	t.Helper()
	product, err := f.products.Get(context.Background(), id)
	require.NoError(t, err)
	return product.Quantity
}

func (f *fixture) orderCount(t *testing.T, customerID string) int {
	t.Helper()
	orders, err := f.orders.ListByCustomer(context.Background(), customerID, 0)
	require.NoError(t, err)
	return len(orders)
}

func quietLogger() *log.Entry {
	logger := log.New()
	logger.SetOutput(io.Discard)
	return logger.WithField("component", "checkout-test")
}

// failingOrders отказывает в Create, остальные вызовы передаёт дальше.
type failingOrders struct {
	domain.OrderRepository
	err error
}

func (f *failingOrders) Create(context.Context, domain.Customer, []domain.OrderItem) (domain.Order, error) {
	return domain.Order{}, f.err
}

// failingStock отказывает в UpdateQuantities и считает вызовы.
type failingStock struct {
	domain.ProductRepository
	err error

	mu    sync.Mutex
	calls int
}

func (f *failingStock) UpdateQuantities(context.Context, []domain.StockAdjustment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.err
}

func (f *failingStock) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// recordingProducts запоминает последние запрошенные ID и применённые остатки.
type recordingProducts struct {
	domain.ProductRepository

	mu          sync.Mutex
	lookups     [][]string
	adjustments [][]domain.StockAdjustment
}

func (r *recordingProducts) FindByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	r.mu.Lock()
	r.lookups = append(r.lookups, append([]string(nil), ids...))
	r.mu.Unlock()
	return r.ProductRepository.FindByIDs(ctx, ids)
}

func (r *recordingProducts) UpdateQuantities(ctx context.Context, adjustments []domain.StockAdjustment) error {
	r.mu.Lock()
	r.adjustments = append(r.adjustments, append([]domain.StockAdjustment(nil), adjustments...))
	r.mu.Unlock()
	return r.ProductRepository.UpdateQuantities(ctx, adjustments)
}

// brokenCustomers возвращает инфраструктурную ошибку на любой запрос.
type brokenCustomers struct{}

func (brokenCustomers) FindByID(context.Context, string) (domain.Customer, error) {
	return domain.Customer{}, errStore
}

// extraProducts возвращает вместе с найденными товарами лишний, не запрошенный товар.
type extraProducts struct {
	domain.ProductRepository
}

func (e extraProducts) FindByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	found, err := e.ProductRepository.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return append(found, domain.Product{ID: "stray", Name: "Stray", Quantity: 1}), nil
}

// failingOutbox отказывает в Enqueue.
type failingOutbox struct {
	domain.OutboxRepository
}

func (failingOutbox) Enqueue(context.Context, domain.OutboxMessage) (domain.OutboxMessage, error) {
	return domain.OutboxMessage{}, errStore
}

func lines(pairs ...any) []domain.OrderLineRequest {
	result := make([]domain.OrderLineRequest, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		result = append(result, domain.OrderLineRequest{
			ProductID: pairs[i].(string),
			Quantity:  int64(pairs[i+1].(int)),
		})
	}
	return result
}
