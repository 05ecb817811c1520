package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"materiaux-pro/internal/apperr"
	"materiaux-pro/internal/database/models"
)

func TestCreateOrderTotals(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	client := env.registerClient(t, "alice")
	supplier := env.registerSupplier(t, "bob")
	brick := env.addProduct(t, supplier, "Brick", "0.80", 500)
	cement := env.addProduct(t, supplier, "Cement 25kg", "12.50", 40)

	order, err := env.orders.CreateOrder(ctx, client, []LineInput{
		{ProductID: brick.ID, Quantity: 100},
		{ProductID: cement.ID, Quantity: 2},
	})
	require.NoError(t, err)

	assert.Equal(t, models.OrderPending, order.Status)
	assert.True(t, order.Total.Equal(decimal.RequireFromString("105.00")), "got %s", order.Total)
	require.Len(t, order.Lines, 2)
	assert.True(t, order.Lines[0].PriceAtPurchase.Equal(brick.Price))
}

func TestCreateOrderSnapshotsPrice(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	client := env.registerClient(t, "alice")
	supplier := env.registerSupplier(t, "bob")
	brick := env.addProduct(t, supplier, "Brick", "0.80", 500)

	order, err := env.orders.CreateOrder(ctx, client, []LineInput{{ProductID: brick.ID, Quantity: 10}})
	require.NoError(t, err)

	newPrice := decimal.RequireFromString("1.20")
	_, err = env.catalog.UpdateProduct(ctx, supplier, brick.ID, UpdateProductInput{Price: &newPrice})
	require.NoError(t, err)

	loaded, err := env.orders.GetOrder(ctx, client, order.ID)
	require.NoError(t, err)
	assert.True(t, loaded.Lines[0].PriceAtPurchase.Equal(decimal.RequireFromString("0.80")))
	assert.True(t, loaded.Total.Equal(decimal.RequireFromString("8.00")))
}

func TestCreateOrderValidation(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	client := env.registerClient(t, "alice")
	supplier := env.registerSupplier(t, "bob")
	brick := env.addProduct(t, supplier, "Brick", "0.80", 500)

	t.Run("empty lines persist nothing", func(t *testing.T) {
		_, err := env.orders.CreateOrder(ctx, client, nil)
		assert.True(t, apperr.IsValidation(err), "got %v", err)

		count, err := env.store.CountOrders(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("non-positive quantity", func(t *testing.T) {
		_, err := env.orders.CreateOrder(ctx, client, []LineInput{{ProductID: brick.ID, Quantity: 0}})
		assert.True(t, apperr.IsValidation(err), "got %v", err)
	})

	t.Run("unknown product", func(t *testing.T) {
		_, err := env.orders.CreateOrder(ctx, client, []LineInput{{ProductID: 9999, Quantity: 1}})
		assert.True(t, apperr.IsValidation(err), "got %v", err)
	})

	t.Run("supplier has no client profile", func(t *testing.T) {
		_, err := env.orders.CreateOrder(ctx, supplier, []LineInput{{ProductID: brick.ID, Quantity: 1}})
		assert.True(t, apperr.IsNotFound(err), "got %v", err)
	})
}

func TestOrderStatusTransitions(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	client := env.registerClient(t, "alice")
	supplier := env.registerSupplier(t, "bob")
	brick := env.addProduct(t, supplier, "Brick", "0.80", 500)

	newOrder := func(t *testing.T) *models.Order {
		order, err := env.orders.CreateOrder(ctx, client, []LineInput{{ProductID: brick.ID, Quantity: 1}})
		require.NoError(t, err)
		return order
	}

	t.Run("pending to shipped to delivered", func(t *testing.T) {
		order := newOrder(t)
		updated, err := env.orders.UpdateOrderStatus(ctx, adminIdentity, order.ID, models.OrderShipped)
		require.NoError(t, err)
		assert.Equal(t, models.OrderShipped, updated.Status)

		updated, err = env.orders.UpdateOrderStatus(ctx, adminIdentity, order.ID, models.OrderDelivered)
		require.NoError(t, err)
		assert.Equal(t, models.OrderDelivered, updated.Status)
	})

	t.Run("pending cannot jump to delivered", func(t *testing.T) {
		order := newOrder(t)
		_, err := env.orders.UpdateOrderStatus(ctx, adminIdentity, order.ID, models.OrderDelivered)
		assert.True(t, apperr.IsValidation(err), "got %v", err)
	})

	t.Run("terminal states are frozen", func(t *testing.T) {
		order := newOrder(t)
		_, err := env.orders.UpdateOrderStatus(ctx, adminIdentity, order.ID, models.OrderCancelled)
		require.NoError(t, err)

		_, err = env.orders.UpdateOrderStatus(ctx, adminIdentity, order.ID, models.OrderShipped)
		assert.True(t, apperr.IsValidation(err), "got %v", err)
	})

	t.Run("unknown status", func(t *testing.T) {
		order := newOrder(t)
		_, err := env.orders.UpdateOrderStatus(ctx, adminIdentity, order.ID, models.OrderStatus("teleported"))
		assert.True(t, apperr.IsValidation(err), "got %v", err)
	})

	t.Run("missing order", func(t *testing.T) {
		_, err := env.orders.UpdateOrderStatus(ctx, adminIdentity, 9999, models.OrderShipped)
		assert.True(t, apperr.IsNotFound(err), "got %v", err)
	})
}

func TestGetOrderOwnership(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	alice := env.registerClient(t, "alice")
	mallory := env.registerClient(t, "mallory")
	bob := env.registerSupplier(t, "bob")
	carol := env.registerSupplier(t, "carol")
	brick := env.addProduct(t, bob, "Brick", "0.80", 500)

	order, err := env.orders.CreateOrder(ctx, alice, []LineInput{{ProductID: brick.ID, Quantity: 5}})
	require.NoError(t, err)

	t.Run("owner reads", func(t *testing.T) {
		_, err := env.orders.GetOrder(ctx, alice, order.ID)
		assert.NoError(t, err)
	})

	t.Run("other client forbidden", func(t *testing.T) {
		_, err := env.orders.GetOrder(ctx, mallory, order.ID)
		assert.True(t, apperr.IsForbidden(err), "got %v", err)
	})

	t.Run("selling supplier reads", func(t *testing.T) {
		_, err := env.orders.GetOrder(ctx, bob, order.ID)
		assert.NoError(t, err)
	})

	t.Run("uninvolved supplier forbidden", func(t *testing.T) {
		_, err := env.orders.GetOrder(ctx, carol, order.ID)
		assert.True(t, apperr.IsForbidden(err), "got %v", err)
	})

	t.Run("admin reads anything", func(t *testing.T) {
		_, err := env.orders.GetOrder(ctx, adminIdentity, order.ID)
		assert.NoError(t, err)
	})
}

func TestUpdateOrderStatusOwnership(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	alice := env.registerClient(t, "alice")
	bob := env.registerSupplier(t, "bob")
	carol := env.registerSupplier(t, "carol")
	brick := env.addProduct(t, bob, "Brick", "0.80", 500)

	order, err := env.orders.CreateOrder(ctx, alice, []LineInput{{ProductID: brick.ID, Quantity: 5}})
	require.NoError(t, err)

	t.Run("uninvolved supplier forbidden and status unchanged", func(t *testing.T) {
		_, err := env.orders.UpdateOrderStatus(ctx, carol, order.ID, models.OrderCancelled)
		assert.True(t, apperr.IsForbidden(err), "got %v", err)

		loaded, err := env.orders.GetOrder(ctx, alice, order.ID)
		require.NoError(t, err)
		assert.Equal(t, models.OrderPending, loaded.Status)
	})

	t.Run("selling supplier transitions", func(t *testing.T) {
		updated, err := env.orders.UpdateOrderStatus(ctx, bob, order.ID, models.OrderShipped)
		require.NoError(t, err)
		assert.Equal(t, models.OrderShipped, updated.Status)
	})
}

func TestDeliveries(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	client := env.registerClient(t, "alice")
	supplier := env.registerSupplier(t, "bob")
	brick := env.addProduct(t, supplier, "Brick", "0.80", 500)

	order, err := env.orders.CreateOrder(ctx, client, []LineInput{{ProductID: brick.ID, Quantity: 5}})
	require.NoError(t, err)

	t.Run("order must exist", func(t *testing.T) {
		_, err := env.orders.CreateDelivery(ctx, DeliveryInput{OrderID: 9999, Address: "12 rue des Lilas"})
		assert.True(t, apperr.IsNotFound(err), "got %v", err)
	})

	delivery, err := env.orders.CreateDelivery(ctx, DeliveryInput{OrderID: order.ID, Address: "12 rue des Lilas"})
	require.NoError(t, err)

	t.Run("one delivery per order", func(t *testing.T) {
		_, err := env.orders.CreateDelivery(ctx, DeliveryInput{OrderID: order.ID, Address: "elsewhere"})
		assert.True(t, apperr.IsConflict(err), "got %v", err)
	})

	t.Run("owner sees delivery", func(t *testing.T) {
		got, err := env.orders.GetOrderDelivery(ctx, client, order.ID)
		require.NoError(t, err)
		assert.Equal(t, delivery.ID, got.ID)
	})

	t.Run("update address", func(t *testing.T) {
		addr := "14 rue des Lilas"
		updated, err := env.orders.UpdateDelivery(ctx, delivery.ID, UpdateDeliveryInput{Address: &addr})
		require.NoError(t, err)
		assert.Equal(t, addr, updated.Address)
	})
}

func TestOrderWorkflowEndToEnd(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	alice := env.registerClient(t, "alice")
	bob := env.registerSupplier(t, "bob")
	cement := env.addProduct(t, bob, "Cement 25kg", "12.50", 40)

	order, err := env.orders.CreateOrder(ctx, alice, []LineInput{{ProductID: cement.ID, Quantity: 2}})
	require.NoError(t, err)
	assert.True(t, order.Total.Equal(decimal.RequireFromString("25.00")), "got %s", order.Total)

	mine, err := env.orders.ListClientOrders(ctx, alice)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	incoming, err := env.orders.ListSupplierOrders(ctx, bob)
	require.NoError(t, err)
	require.Len(t, incoming, 1)

	shipped, err := env.orders.UpdateOrderStatus(ctx, adminIdentity, order.ID, models.OrderShipped)
	require.NoError(t, err)
	assert.Equal(t, models.OrderShipped, shipped.Status)

	stats, err := env.stats.SupplierStats(ctx, bob)
	require.NoError(t, err)
	assert.True(t, stats.TotalSales.Equal(decimal.RequireFromString("25.00")))
	assert.EqualValues(t, 1, stats.TotalOrders)
}
