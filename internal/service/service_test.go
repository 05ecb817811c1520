package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"materiaux-pro/internal/auth"
	"materiaux-pro/internal/database/models"
	"materiaux-pro/internal/storage"
)

// testEnv wires every service over one shared in-memory store, the same
// way cmd/server wires them over postgres.
type testEnv struct {
	store     *storage.MemStorage
	accounts  *AccountService
	catalog   *CatalogService
	orders    *OrderService
	quotes    *QuoteService
	favorites *FavoriteService
	stats     *StatsService
}

func newTestEnv() *testEnv {
	store := storage.NewMemStorage()
	sessions := auth.NewSessionManager(auth.NewMemorySessionStore(), []byte("test-secret"), time.Hour)
	return &testEnv{
		store:     store,
		accounts:  NewAccountService(store, sessions),
		catalog:   NewCatalogService(store),
		orders:    NewOrderService(store),
		quotes:    NewQuoteService(store),
		favorites: NewFavoriteService(store),
		stats:     NewStatsService(store),
	}
}

func (e *testEnv) registerClient(t *testing.T, username string) auth.Identity {
	t.Helper()
	user, _, err := e.accounts.RegisterClient(context.Background(), RegisterClientInput{
		Username:  username,
		Email:     username + "@example.com",
		Password:  "secret123",
		FirstName: username,
		LastName:  "Test",
	})
	require.NoError(t, err)
	return auth.Identity{UserID: user.ID, Role: auth.RoleClient}
}

func (e *testEnv) registerSupplier(t *testing.T, username string) auth.Identity {
	t.Helper()
	user, _, err := e.accounts.RegisterSupplier(context.Background(), RegisterSupplierInput{
		Username:    username,
		Email:       username + "@example.com",
		Password:    "secret123",
		CompanyName: username + " Materiaux",
		ContactName: username,
	})
	require.NoError(t, err)
	return auth.Identity{UserID: user.ID, Role: auth.RoleSupplier}
}

func (e *testEnv) addProduct(t *testing.T, supplier auth.Identity, name, price string, stock int) *models.Product {
	t.Helper()
	product, err := e.catalog.CreateProduct(context.Background(), supplier, ProductInput{
		Name:  name,
		Price: decimal.RequireFromString(price),
		Stock: stock,
	})
	require.NoError(t, err)
	return product
}

var adminIdentity = auth.Identity{UserID: 9999, Role: auth.RoleAdmin}
