package checkout

import (
	"fmt"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

// compute строит позиции заказа в порядке запроса по текущим ценам каталога
// и новые остатки по каждому товару в порядке первого появления.
func compute(lines []domain.OrderLineRequest, catalog map[string]domain.Product) ([]domain.OrderItem, []domain.StockAdjustment, error) {
	items := make([]domain.OrderItem, 0, len(lines))
	remaining := make(map[string]int64, len(catalog))
	seen := make([]string, 0, len(catalog))

	for _, line := range lines {
		product, ok := catalog[line.ProductID]
		if !ok {
			return nil, nil, fmt.Errorf("%w: product %s", domain.ErrInvalidProductSet, line.ProductID)
		}

		items = append(items, domain.OrderItem{
			ProductID:  line.ProductID,
			Quantity:   line.Quantity,
			PriceMinor: product.PriceMinor,
		})

		left, ok := remaining[line.ProductID]
		if !ok {
			left = product.Quantity
			seen = append(seen, line.ProductID)
		}
		remaining[line.ProductID] = left - line.Quantity
	}

	adjustments := make([]domain.StockAdjustment, 0, len(seen))
	for _, id := range seen {
		if remaining[id] < 0 {
			product := catalog[id]
			return nil, nil, &domain.InsufficientStockError{
				ProductID:   id,
				ProductName: product.Name,
				Requested:   product.Quantity - remaining[id],
				Available:   product.Quantity,
			}
		}
		adjustments = append(adjustments, domain.StockAdjustment{ProductID: id, Quantity: remaining[id]})
	}

	if _, err := domain.ItemsTotal(items); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}

	return items, adjustments, nil
}
