package domain

import (
	"math"
	"time"
)

// OrderItem представляет одну позицию заказа.
type OrderItem struct {
	// ID позиции назначает хранилище заказов.
	ID        string
	ProductID string
	Quantity  int64
	// PriceMinor - цена за единицу, зафиксированная в момент оформления.
	// Последующие изменения цены в каталоге на заказ не влияют.
	PriceMinor int64
	CreatedAt  time.Time
}

// Order агрегирует заказ клиента и его позиции.
type Order struct {
	ID          string
	CustomerID  string
	AmountMinor int64
	Items       []OrderItem
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ItemsTotal считает сумму qty * price по позициям.
// Возвращает ErrAmountOverflow, если произведение или сумма не помещаются в int64.
func ItemsTotal(items []OrderItem) (int64, error) {
	var total int64
	for _, item := range items {
		if item.Quantity <= 0 || item.PriceMinor <= 0 {
			continue
		}
		if item.PriceMinor > math.MaxInt64/item.Quantity {
			return 0, ErrAmountOverflow
		}
		line := item.Quantity * item.PriceMinor
		if total > math.MaxInt64-line {
			return 0, ErrAmountOverflow
		}
		total += line
	}
	return total, nil
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.CustomerID == "" {
		errs = append(errs, ErrCustomerRequired)
	}
	if len(o.Items) == 0 {
		errs = append(errs, ErrItemsRequired)
	}
	if o.AmountMinor < 0 {
		errs = append(errs, ErrAmountNegative)
	}

	for _, item := range o.Items {
		if item.ProductID == "" {
			errs = append(errs, ErrProductRequired)
		}
		if item.Quantity <= 0 {
			errs = append(errs, ErrItemQtyInvalid)
		}
		if item.PriceMinor < 0 {
			errs = append(errs, ErrItemPriceInvalid)
		}
	}
	switch total, err := ItemsTotal(o.Items); {
	case err != nil:
		errs = append(errs, err)
	case total != o.AmountMinor:
		errs = append(errs, ErrAmountMismatch)
	}

	return errs
}
