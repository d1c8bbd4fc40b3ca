package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

func TestOrderRepository_PostgresCreateGetList(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	seedCatalogForIntegrationTest(t, store)
	repo := NewOrderRepository(store)
	ctx := context.Background()

	items := []domain.OrderItem{
		{ProductID: "P2", Quantity: 3, PriceMinor: 250},
		{ProductID: "P1", Quantity: 1, PriceMinor: 1000},
		{ProductID: "P2", Quantity: 1, PriceMinor: 250},
	}
	first, err := repo.Create(ctx, domain.Customer{ID: "C1"}, items)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if first.AmountMinor != 2000 {
		t.Fatalf("expected amount 2000, got %d", first.AmountMinor)
	}
	second, err := repo.Create(ctx, domain.Customer{ID: "C1"}, items[:1])
	if err != nil {
		t.Fatalf("create second order: %v", err)
	}

	got, err := repo.Get(ctx, first.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if len(got.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(got.Items))
	}
	for i, item := range got.Items {
		if item.ProductID != items[i].ProductID || item.Quantity != items[i].Quantity {
			t.Fatalf("item %d out of request order: %+v", i, item)
		}
	}

	listed, err := repo.ListByCustomer(ctx, "C1", 1)
	if err != nil {
		t.Fatalf("list with limit: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != second.ID {
		t.Fatalf("expected newest order first, got %+v", listed)
	}

	all, err := repo.ListByCustomer(ctx, "C1", 0)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 || len(all[1].Items) != 3 {
		t.Fatalf("unexpected list result: %+v", all)
	}
}

func TestOrderRepository_PostgresErrors(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	seedCatalogForIntegrationTest(t, store)
	repo := NewOrderRepository(store)
	ctx := context.Background()

	if _, err := repo.Get(ctx, "not-a-uuid"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
	if _, err := repo.Get(ctx, "00000000-0000-0000-0000-000000000000"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}

	_, err := repo.Create(ctx, domain.Customer{ID: "ghost"}, []domain.OrderItem{{ProductID: "P1", Quantity: 1, PriceMinor: 1}})
	if !errors.Is(err, domain.ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound for unknown customer, got %v", err)
	}

	_, err = repo.Create(ctx, domain.Customer{ID: "C1"}, []domain.OrderItem{{ProductID: "P9", Quantity: 1, PriceMinor: 1}})
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound for unknown product, got %v", err)
	}

	listed, err := repo.ListByCustomer(ctx, "C1", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 0 {
		t.Fatalf("failed creates must not leave orders, got %d", len(listed))
	}
}
