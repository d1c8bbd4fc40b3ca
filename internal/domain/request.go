package domain

import "errors"

// MaxOrderQuantity ограничивает количество одного товара в заказе, в том числе
// суммарное по нескольким строкам. Граница держит арифметику остатков в int64.
const MaxOrderQuantity int64 = 1<<31 - 1

// OrderLineRequest - запрошенная клиентом позиция: товар и количество.
type OrderLineRequest struct {
	ProductID string
	Quantity  int64
}

// CreateOrderRequest - входные данные оформления заказа.
// Один и тот же товар может встречаться в нескольких строках.
type CreateOrderRequest struct {
	CustomerID string
	Lines      []OrderLineRequest
}

// Validate проверяет форму запроса до обращения к хранилищам.
// Возвращает nil или ошибку, совместимую с ErrInvalidRequest.
func (r CreateOrderRequest) Validate() error {
	errs := []error{}

	if r.CustomerID == "" {
		errs = append(errs, ErrCustomerRequired)
	}
	if len(r.Lines) == 0 {
		errs = append(errs, ErrItemsRequired)
	}

	var missingProduct, badQty, tooLarge bool
	totals := make(map[string]int64, len(r.Lines))
	for _, line := range r.Lines {
		if line.ProductID == "" {
			missingProduct = true
		}
		if line.Quantity <= 0 {
			badQty = true
			continue
		}
		// Обе части не больше MaxOrderQuantity, поэтому сложение не переполняется.
		if line.Quantity > MaxOrderQuantity || totals[line.ProductID] > MaxOrderQuantity-line.Quantity {
			tooLarge = true
			continue
		}
		totals[line.ProductID] += line.Quantity
	}
	if missingProduct {
		errs = append(errs, ErrProductRequired)
	}
	if badQty {
		errs = append(errs, ErrItemQtyInvalid)
	}
	if tooLarge {
		errs = append(errs, ErrItemQtyTooLarge)
	}

	if len(errs) == 0 {
		return nil
	}
	return errors.Join(append([]error{ErrInvalidRequest}, errs...)...)
}

// DistinctProductIDs возвращает уникальные ID товаров в порядке первого появления.
func (r CreateOrderRequest) DistinctProductIDs() []string {
	seen := make(map[string]struct{}, len(r.Lines))
	ids := make([]string, 0, len(r.Lines))
	for _, line := range r.Lines {
		if _, ok := seen[line.ProductID]; ok {
			continue
		}
		seen[line.ProductID] = struct{}{}
		ids = append(ids, line.ProductID)
	}
	return ids
}

// RequestedByProduct суммирует запрошенное количество по каждому товару.
// Без переполнения только для запроса, прошедшего Validate.
func (r CreateOrderRequest) RequestedByProduct() map[string]int64 {
	totals := make(map[string]int64, len(r.Lines))
	for _, line := range r.Lines {
		totals[line.ProductID] += line.Quantity
	}
	return totals
}
