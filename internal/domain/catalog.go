package domain

import "time"

// Customer - клиент магазина. Для оформления заказа важен только факт существования.
type Customer struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
}

// Product - товар каталога с текущей ценой и доступным остатком.
type Product struct {
	ID   string
	Name string
	// PriceMinor - цена за единицу в минимальных денежных единицах.
	PriceMinor int64
	// Quantity - количество единиц на складе.
	Quantity  int64
	UpdatedAt time.Time
}

// Validate проверяет поля товара перед сохранением в каталог.
func (p *Product) Validate() []error {
	var errs []error

	if p.ID == "" {
		errs = append(errs, ErrProductRequired)
	}
	if p.Name == "" {
		errs = append(errs, ErrProductNameRequired)
	}
	if p.PriceMinor < 0 {
		errs = append(errs, ErrItemPriceInvalid)
	}
	if p.Quantity < 0 {
		errs = append(errs, ErrNegativeStock)
	}

	return errs
}

// StockAdjustment - новый остаток товара после продажи.
type StockAdjustment struct {
	ProductID string
	Quantity  int64
}
