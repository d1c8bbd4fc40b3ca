package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

type customerRepository struct {
	store *Store
}

// NewCustomerRepository создаёт PostgreSQL-реализацию CustomerRepository.
func NewCustomerRepository(store *Store) domain.CustomerRepository {
	return &customerRepository{store: store}
}

func (r *customerRepository) FindByID(ctx context.Context, id string) (domain.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var customer domain.Customer
	err := r.store.conn(ctx).QueryRowContext(ctx, `
		SELECT id, name, email, created_at
		FROM customers
		WHERE id = $1
	`, id).Scan(&customer.ID, &customer.Name, &customer.Email, &customer.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Customer{}, domain.ErrCustomerNotFound
		}
		return domain.Customer{}, fmt.Errorf("select customer: %w", err)
	}
	return customer, nil
}

type productRepository struct {
	store *Store
}

// NewProductRepository создаёт PostgreSQL-реализацию ProductRepository.
//
// Внутри WithinTx FindByIDs блокирует строки товаров (FOR UPDATE) до конца транзакции,
// поэтому параллельные оформления одного товара выполняются по очереди.
func NewProductRepository(store *Store) domain.ProductRepository {
	return &productRepository{store: store}
}

func (r *productRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	// Сортировка по id задаёт единый порядок блокировок.
	query := `
		SELECT id, name, price_minor, quantity, updated_at
		FROM products
		WHERE id = ANY($1)
		ORDER BY id
	`
	if inTx(ctx) {
		query += " FOR UPDATE"
	}

	rows, err := r.store.conn(ctx).QueryContext(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0, len(ids))
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.PriceMinor, &p.Quantity, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}

func (r *productRepository) Get(ctx context.Context, id string) (domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var p domain.Product
	err := r.store.conn(ctx).QueryRowContext(ctx, `
		SELECT id, name, price_minor, quantity, updated_at
		FROM products
		WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.PriceMinor, &p.Quantity, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("select product: %w", err)
	}
	return p, nil
}

// UpdateQuantities применяет новые остатки в одной транзакции: все или ни одного.
func (r *productRepository) UpdateQuantities(ctx context.Context, adjustments []domain.StockAdjustment) error {
	for _, adj := range adjustments {
		if adj.Quantity < 0 {
			return fmt.Errorf("%w: %s", domain.ErrNegativeStock, adj.ProductID)
		}
	}

	return r.store.WithinTx(ctx, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, opTimeout)
		defer cancel()

		now := time.Now().UTC()
		for _, adj := range adjustments {
			res, err := r.store.conn(ctx).ExecContext(ctx, `
				UPDATE products
				SET quantity = $2,
				    updated_at = $3
				WHERE id = $1
			`, adj.ProductID, adj.Quantity, now)
			if err != nil {
				if isCheckViolation(err) {
					return fmt.Errorf("%w: %s", domain.ErrNegativeStock, adj.ProductID)
				}
				return fmt.Errorf("update product quantity %s: %w", adj.ProductID, err)
			}

			affected, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("rows affected for product %s: %w", adj.ProductID, err)
			}
			if affected == 0 {
				return fmt.Errorf("%w: %s", domain.ErrProductNotFound, adj.ProductID)
			}
		}
		return nil
	})
}

// UpsertCustomer добавляет клиента или обновляет его данные (seed и тесты).
func (s *Store) UpsertCustomer(ctx context.Context, customer domain.Customer) error {
	if customer.ID == "" {
		return domain.ErrCustomerRequired
	}
	if customer.CreatedAt.IsZero() {
		customer.CreatedAt = time.Now().UTC()
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := s.conn(ctx).ExecContext(ctx, `
		INSERT INTO customers (id, name, email, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    email = EXCLUDED.email
	`, customer.ID, customer.Name, customer.Email, customer.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert customer %s: %w", customer.ID, err)
	}
	return nil
}

// UpsertProduct добавляет товар или обновляет цену и остаток (seed и тесты).
func (s *Store) UpsertProduct(ctx context.Context, product domain.Product) error {
	if errs := product.Validate(); len(errs) > 0 {
		return fmt.Errorf("invalid product %q: %w", product.ID, errors.Join(errs...))
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := s.conn(ctx).ExecContext(ctx, `
		INSERT INTO products (id, name, price_minor, quantity, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    price_minor = EXCLUDED.price_minor,
		    quantity = EXCLUDED.quantity,
		    updated_at = EXCLUDED.updated_at
	`, product.ID, product.Name, product.PriceMinor, product.Quantity, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert product %s: %w", product.ID, err)
	}
	return nil
}

var (
	_ domain.CustomerRepository = (*customerRepository)(nil)
	_ domain.ProductRepository  = (*productRepository)(nil)
)
