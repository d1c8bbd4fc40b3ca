package checkout_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/shop/internal/domain"
	"github.com/vladislavdragonenkov/shop/internal/service/checkout"
)

func TestListCustomerOrders(t *testing.T) {
	f := newFixture(t)
	svc := checkout.NewService(f.deps())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.CreateOrder(ctx, domain.CreateOrderRequest{CustomerID: "C1", Lines: lines("P2", 1)})
		require.NoError(t, err)
	}

	orders, err := svc.ListCustomerOrders(ctx, "C1", 2)
	require.NoError(t, err)
	assert.Len(t, orders, 2)

	orders, err = svc.ListCustomerOrders(ctx, "C1", 0)
	require.NoError(t, err)
	assert.Len(t, orders, 3)

	_, err = svc.ListCustomerOrders(ctx, "C404", 10)
	assert.ErrorIs(t, err, domain.ErrCustomerNotFound)
}

func TestGetOrderAndProduct(t *testing.T) {
	f := newFixture(t)
	svc := checkout.NewService(f.deps())
	ctx := context.Background()

	_, err := svc.GetOrder(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)

	product, err := svc.GetProduct(ctx, "P2")
	require.NoError(t, err)
	assert.Equal(t, "Notebook", product.Name)

	_, err = svc.GetProduct(ctx, "P9")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}
