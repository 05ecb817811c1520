// Package storage owns all access to the relational store. Reads against
// a missing id return (nil, nil); callers decide whether that is a 404.
// The only multi-row atomic units are CreateOrder and CreateQuote (and
// the register-with-profile creates), which write header plus lines in a
// single transaction.
package storage

import (
	"context"

	"github.com/shopspring/decimal"

	"materiaux-pro/internal/database/models"
)

// ProductFilter clauses are conjunctive; a zero-value field imposes no
// constraint. InStock means stock > 0 strictly.
type ProductFilter struct {
	CategoryIDs []int64
	SupplierIDs []int64
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
	InStock     bool
}

type Storage interface {
	// Users
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id int64) error
	ListUsers(ctx context.Context, page, limit int) ([]models.User, int64, error)

	// Clients
	GetClient(ctx context.Context, id int64) (*models.Client, error)
	GetClientByUserID(ctx context.Context, userID int64) (*models.Client, error)
	CreateClientWithUser(ctx context.Context, user *models.User, client *models.Client) error
	UpdateClient(ctx context.Context, client *models.Client) error

	// Suppliers
	GetSupplier(ctx context.Context, id int64) (*models.Supplier, error)
	GetSupplierByUserID(ctx context.Context, userID int64) (*models.Supplier, error)
	CreateSupplierWithUser(ctx context.Context, user *models.User, supplier *models.Supplier) error
	UpdateSupplier(ctx context.Context, supplier *models.Supplier) error

	// Products
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	ListProducts(ctx context.Context, page, limit int) ([]models.Product, error)
	ListProductsBySupplier(ctx context.Context, supplierID int64) ([]models.Product, error)
	ListProductsByCategory(ctx context.Context, categoryID int64) ([]models.Product, error)
	SearchProducts(ctx context.Context, query string) ([]models.Product, error)
	FilterProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	UpdateProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id int64) error

	// Categories
	GetCategory(ctx context.Context, id int64) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, category *models.Category) error
	UpdateCategory(ctx context.Context, category *models.Category) error
	DeleteCategory(ctx context.Context, id int64) error

	// Orders
	GetOrder(ctx context.Context, id int64) (*models.Order, error)
	ListOrdersByClient(ctx context.Context, clientID int64) ([]models.Order, error)
	ListOrdersBySupplier(ctx context.Context, supplierID int64) ([]models.Order, error)
	CreateOrder(ctx context.Context, order *models.Order, lines []models.OrderLine) error
	UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) (*models.Order, error)

	// Quotes
	GetQuote(ctx context.Context, id int64) (*models.Quote, error)
	ListQuotesByClient(ctx context.Context, clientID int64) ([]models.Quote, error)
	ListQuotesBySupplier(ctx context.Context, supplierID int64) ([]models.Quote, error)
	CreateQuote(ctx context.Context, quote *models.Quote, lines []models.QuoteLine) error
	UpdateQuoteStatus(ctx context.Context, id int64, status models.QuoteStatus) (*models.Quote, error)

	// Deliveries
	GetDelivery(ctx context.Context, id int64) (*models.Delivery, error)
	GetDeliveryByOrder(ctx context.Context, orderID int64) (*models.Delivery, error)
	CreateDelivery(ctx context.Context, delivery *models.Delivery) error
	UpdateDelivery(ctx context.Context, delivery *models.Delivery) error

	// Favorites
	ListFavoritesByClient(ctx context.Context, clientID int64) ([]models.Favorite, error)
	GetFavorite(ctx context.Context, clientID, productID int64) (*models.Favorite, error)
	AddFavorite(ctx context.Context, favorite *models.Favorite) error
	RemoveFavorite(ctx context.Context, clientID, productID int64) error

	// Aggregates. All tolerate zero rows and return zero values.
	TotalSalesBySupplier(ctx context.Context, supplierID int64) (decimal.Decimal, error)
	CountOrdersBySupplier(ctx context.Context, supplierID int64) (int64, error)
	CountProductsBySupplier(ctx context.Context, supplierID int64) (int64, error)
	CountUsers(ctx context.Context) (int64, error)
	CountOrders(ctx context.Context) (int64, error)
	CountSuppliers(ctx context.Context) (int64, error)
	CountProducts(ctx context.Context) (int64, error)
}
