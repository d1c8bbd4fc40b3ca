package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

// validate проверяет клиента, наличие товаров и остатки. Порядок проверок важен:
// клиент, затем состав товаров, затем остатки. Ничего не меняет.
func (s *Service) validate(ctx context.Context, req domain.CreateOrderRequest) (domain.Customer, map[string]domain.Product, error) {
	ctx, span := tracer.Start(ctx, "checkout.validate")
	defer span.End()

	customer, err := s.customers.FindByID(ctx, req.CustomerID)
	if err != nil {
		if errors.Is(err, domain.ErrCustomerNotFound) {
			return domain.Customer{}, nil, fmt.Errorf("%w: %s", domain.ErrInvalidCustomer, req.CustomerID)
		}
		return domain.Customer{}, nil, fmt.Errorf("lookup customer %s: %w", req.CustomerID, err)
	}

	ids := req.DistinctProductIDs()
	found, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return domain.Customer{}, nil, fmt.Errorf("lookup products: %w", err)
	}

	catalog := indexProducts(found, ids)
	if len(catalog) != len(ids) {
		return domain.Customer{}, nil, fmt.Errorf("%w: requested %d products, found %d",
			domain.ErrInvalidProductSet, len(ids), len(catalog))
	}
	for _, line := range req.Lines {
		if _, ok := catalog[line.ProductID]; !ok {
			return domain.Customer{}, nil, fmt.Errorf("%w: product %s", domain.ErrInvalidProductSet, line.ProductID)
		}
	}

	// Повторяющиеся товары проверяются по суммарному количеству.
	requested := req.RequestedByProduct()
	for _, id := range ids {
		product := catalog[id]
		if product.Quantity < requested[id] {
			return domain.Customer{}, nil, &domain.InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Requested:   requested[id],
				Available:   product.Quantity,
			}
		}
	}

	return customer, catalog, nil
}

// indexProducts строит индекс по ID, оставляя только запрошенные товары.
func indexProducts(products []domain.Product, ids []string) map[string]domain.Product {
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	catalog := make(map[string]domain.Product, len(ids))
	for _, product := range products {
		if _, ok := wanted[product.ID]; ok {
			catalog[product.ID] = product
		}
	}
	return catalog
}
