package memory

import (
	"context"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

// PutCustomer добавляет или заменяет клиента.
func (s *Store) PutCustomer(customer domain.Customer) error {
	if customer.ID == "" {
		return domain.ErrCustomerRequired
	}
	if customer.CreatedAt.IsZero() {
		customer.CreatedAt = s.now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers[customer.ID] = customer
	return nil
}

// PutProduct добавляет или заменяет товар каталога.
func (s *Store) PutProduct(product domain.Product) error {
	if errs := product.Validate(); len(errs) > 0 {
		return fmt.Errorf("invalid product %q: %w", product.ID, errors.Join(errs...))
	}
	if product.UpdatedAt.IsZero() {
		product.UpdatedAt = s.now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[product.ID] = product
	return nil
}

type customerRepositoryInMemory struct {
	store *Store
}

// NewCustomerRepository возвращает репозиторий клиентов поверх store.
func NewCustomerRepository(store *Store) domain.CustomerRepository {
	return &customerRepositoryInMemory{store: store}
}

func (r *customerRepositoryInMemory) FindByID(ctx context.Context, id string) (domain.Customer, error) {
	if err := ctx.Err(); err != nil {
		return domain.Customer{}, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	customer, ok := r.store.customers[id]
	if !ok {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}
	return customer, nil
}

type productRepositoryInMemory struct {
	store *Store
}

// NewProductRepository возвращает репозиторий товаров поверх store.
func NewProductRepository(store *Store) domain.ProductRepository {
	return &productRepositoryInMemory{store: store}
}

// FindByIDs возвращает существующие товары; отсутствующие ID пропускаются.
func (r *productRepositoryInMemory) FindByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]domain.Product, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if product, ok := r.store.products[id]; ok {
			result = append(result, product)
		}
	}
	return result, nil
}

func (r *productRepositoryInMemory) Get(ctx context.Context, id string) (domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return domain.Product{}, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	product, ok := r.store.products[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return product, nil
}

// UpdateQuantities применяет все остатки или ни одного.
func (r *productRepositoryInMemory) UpdateQuantities(ctx context.Context, adjustments []domain.StockAdjustment) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.store.write(ctx, func() (func(), error) {
		for _, adj := range adjustments {
			if _, ok := r.store.products[adj.ProductID]; !ok {
				return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, adj.ProductID)
			}
			if adj.Quantity < 0 {
				return nil, fmt.Errorf("%w: %s", domain.ErrNegativeStock, adj.ProductID)
			}
		}

		previous := make(map[string]domain.Product, len(adjustments))
		now := r.store.now()
		for _, adj := range adjustments {
			product := r.store.products[adj.ProductID]
			if _, ok := previous[adj.ProductID]; !ok {
				previous[adj.ProductID] = product
			}
			product.Quantity = adj.Quantity
			product.UpdatedAt = now
			r.store.products[adj.ProductID] = product
		}

		return func() {
			for id, product := range previous {
				r.store.products[id] = product
			}
		}, nil
	})
}

var (
	_ domain.CustomerRepository = (*customerRepositoryInMemory)(nil)
	_ domain.ProductRepository  = (*productRepositoryInMemory)(nil)
)
