package storage

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"materiaux-pro/internal/database/models"
)

func seedSupplier(t *testing.T, store *MemStorage, username string) *models.Supplier {
	t.Helper()
	user := &models.User{Username: username, Email: username + "@example.com", Password: "x", Role: "supplier"}
	supplier := &models.Supplier{CompanyName: username + " SARL", ContactName: username}
	require.NoError(t, store.CreateSupplierWithUser(context.Background(), user, supplier))
	return supplier
}

func seedClient(t *testing.T, store *MemStorage, username string) *models.Client {
	t.Helper()
	user := &models.User{Username: username, Email: username + "@example.com", Password: "x", Role: "client"}
	client := &models.Client{FirstName: username, LastName: "Test"}
	require.NoError(t, store.CreateClientWithUser(context.Background(), user, client))
	return client
}

func seedProduct(t *testing.T, store *MemStorage, supplierID int64, name, price string, stock int, categoryID *int64) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:       name,
		Price:      decimal.RequireFromString(price),
		Stock:      stock,
		SupplierID: supplierID,
		CategoryID: categoryID,
	}
	require.NoError(t, store.CreateProduct(context.Background(), product))
	return product
}

func TestMemStorageMissingReadsReturnNil(t *testing.T) {
	store := NewMemStorage()
	ctx := context.Background()

	user, err := store.GetUser(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, user)

	order, err := store.GetOrder(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, order)

	updated, err := store.UpdateOrderStatus(ctx, 42, models.OrderShipped)
	require.NoError(t, err)
	assert.Nil(t, updated)
}

func TestMemStorageUserUniqueness(t *testing.T) {
	store := NewMemStorage()
	ctx := context.Background()
	seedClient(t, store, "alice")

	err := store.CreateClientWithUser(ctx,
		&models.User{Username: "alice", Email: "other@example.com", Password: "x", Role: "client"},
		&models.Client{FirstName: "A", LastName: "B"})
	assert.Error(t, err)

	err = store.CreateSupplierWithUser(ctx,
		&models.User{Username: "someone", Email: "alice@example.com", Password: "x", Role: "supplier"},
		&models.Supplier{CompanyName: "C", ContactName: "D"})
	assert.Error(t, err)
}

func TestMemStorageFilterProductsIsConjunctive(t *testing.T) {
	store := NewMemStorage()
	ctx := context.Background()

	supplierA := seedSupplier(t, store, "supa")
	supplierB := seedSupplier(t, store, "supb")

	cement := &models.Category{Name: "Cement"}
	require.NoError(t, store.CreateCategory(ctx, cement))

	seedProduct(t, store, supplierA.ID, "Cement 25kg", "12.50", 10, &cement.ID)
	seedProduct(t, store, supplierA.ID, "Cement 50kg", "22.00", 0, &cement.ID)
	seedProduct(t, store, supplierB.ID, "Gravel", "8.00", 5, nil)

	t.Run("category and stock", func(t *testing.T) {
		products, err := store.FilterProducts(ctx, ProductFilter{
			CategoryIDs: []int64{cement.ID},
			InStock:     true,
		})
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, "Cement 25kg", products[0].Name)
	})

	t.Run("price range", func(t *testing.T) {
		min := decimal.RequireFromString("10.00")
		max := decimal.RequireFromString("15.00")
		products, err := store.FilterProducts(ctx, ProductFilter{MinPrice: &min, MaxPrice: &max})
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, "Cement 25kg", products[0].Name)
	})

	t.Run("empty filter matches all", func(t *testing.T) {
		products, err := store.FilterProducts(ctx, ProductFilter{})
		require.NoError(t, err)
		assert.Len(t, products, 3)
	})
}

func TestMemStorageSearchProducts(t *testing.T) {
	store := NewMemStorage()
	ctx := context.Background()
	supplier := seedSupplier(t, store, "sup")

	desc := "reinforced steel bar"
	product := &models.Product{
		Name:        "Rebar 12mm",
		Description: &desc,
		Price:       decimal.RequireFromString("4.20"),
		SupplierID:  supplier.ID,
	}
	require.NoError(t, store.CreateProduct(ctx, product))
	seedProduct(t, store, supplier.ID, "Sand", "3.00", 1, nil)

	byName, err := store.SearchProducts(ctx, "rebar")
	require.NoError(t, err)
	require.Len(t, byName, 1)

	byDescription, err := store.SearchProducts(ctx, "STEEL")
	require.NoError(t, err)
	require.Len(t, byDescription, 1)
	assert.Equal(t, product.ID, byDescription[0].ID)
}

func TestMemStorageCreateOrderAssignsLines(t *testing.T) {
	store := NewMemStorage()
	ctx := context.Background()

	client := seedClient(t, store, "buyer")
	supplier := seedSupplier(t, store, "seller")
	product := seedProduct(t, store, supplier.ID, "Brick", "0.80", 500, nil)

	order := &models.Order{ClientID: client.ID, Total: decimal.RequireFromString("80.00")}
	lines := []models.OrderLine{
		{ProductID: product.ID, Quantity: 100, PriceAtPurchase: product.Price},
	}
	require.NoError(t, store.CreateOrder(ctx, order, lines))
	require.NotZero(t, order.ID)

	loaded, err := store.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Len(t, loaded.Lines, 1)
	assert.Equal(t, order.ID, loaded.Lines[0].OrderID)
	assert.Equal(t, models.OrderPending, loaded.Status)
}

func TestMemStorageSupplierAggregates(t *testing.T) {
	store := NewMemStorage()
	ctx := context.Background()

	client := seedClient(t, store, "buyer")
	supplier := seedSupplier(t, store, "seller")
	other := seedSupplier(t, store, "bystander")

	brick := seedProduct(t, store, supplier.ID, "Brick", "0.80", 500, nil)
	sand := seedProduct(t, store, other.ID, "Sand", "3.00", 50, nil)

	require.NoError(t, store.CreateOrder(ctx,
		&models.Order{ClientID: client.ID, Total: decimal.RequireFromString("86.00")},
		[]models.OrderLine{
			{ProductID: brick.ID, Quantity: 100, PriceAtPurchase: brick.Price},
			{ProductID: sand.ID, Quantity: 2, PriceAtPurchase: sand.Price},
		}))

	total, err := store.TotalSalesBySupplier(ctx, supplier.ID)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.RequireFromString("80.00")), "got %s", total)

	orders, err := store.CountOrdersBySupplier(ctx, supplier.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, orders)

	supplierOrders, err := store.ListOrdersBySupplier(ctx, supplier.ID)
	require.NoError(t, err)
	assert.Len(t, supplierOrders, 1)

	emptyTotal, err := store.TotalSalesBySupplier(ctx, 999)
	require.NoError(t, err)
	assert.True(t, emptyTotal.IsZero())
}

func TestMemStorageFavoriteUniqueness(t *testing.T) {
	store := NewMemStorage()
	ctx := context.Background()

	client := seedClient(t, store, "buyer")
	supplier := seedSupplier(t, store, "seller")
	product := seedProduct(t, store, supplier.ID, "Brick", "0.80", 500, nil)

	require.NoError(t, store.AddFavorite(ctx, &models.Favorite{ClientID: client.ID, ProductID: product.ID}))
	err := store.AddFavorite(ctx, &models.Favorite{ClientID: client.ID, ProductID: product.ID})
	assert.Error(t, err)

	require.NoError(t, store.RemoveFavorite(ctx, client.ID, product.ID))
	favorites, err := store.ListFavoritesByClient(ctx, client.ID)
	require.NoError(t, err)
	assert.Empty(t, favorites)
}
