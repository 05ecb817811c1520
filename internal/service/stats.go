package service

import (
	"context"

	"github.com/shopspring/decimal"

	"materiaux-pro/internal/apperr"
	"materiaux-pro/internal/auth"
	"materiaux-pro/internal/storage"
)

type StatsService struct {
	store storage.Storage
}

func NewStatsService(store storage.Storage) *StatsService {
	return &StatsService{store: store}
}

// SupplierStats aggregates over the supplier's order lines regardless of
// order status. A supplier with no sales gets zeroes, not an error.
type SupplierStats struct {
	TotalSales    decimal.Decimal `json:"total_sales"`
	TotalOrders   int64           `json:"total_orders"`
	TotalProducts int64           `json:"total_products"`
}

func (s *StatsService) SupplierStats(ctx context.Context, identity auth.Identity) (*SupplierStats, error) {
	supplier, err := s.store.GetSupplierByUserID(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, apperr.New(apperr.NotFound, "supplier profile not found")
	}

	sales, err := s.store.TotalSalesBySupplier(ctx, supplier.ID)
	if err != nil {
		return nil, err
	}
	orders, err := s.store.CountOrdersBySupplier(ctx, supplier.ID)
	if err != nil {
		return nil, err
	}
	products, err := s.store.CountProductsBySupplier(ctx, supplier.ID)
	if err != nil {
		return nil, err
	}

	return &SupplierStats{
		TotalSales:    sales,
		TotalOrders:   orders,
		TotalProducts: products,
	}, nil
}

type AdminStats struct {
	TotalUsers     int64 `json:"total_users"`
	TotalOrders    int64 `json:"total_orders"`
	TotalSuppliers int64 `json:"total_suppliers"`
	TotalProducts  int64 `json:"total_products"`
}

func (s *StatsService) AdminStats(ctx context.Context) (*AdminStats, error) {
	users, err := s.store.CountUsers(ctx)
	if err != nil {
		return nil, err
	}
	orders, err := s.store.CountOrders(ctx)
	if err != nil {
		return nil, err
	}
	suppliers, err := s.store.CountSuppliers(ctx)
	if err != nil {
		return nil, err
	}
	products, err := s.store.CountProducts(ctx)
	if err != nil {
		return nil, err
	}

	return &AdminStats{
		TotalUsers:     users,
		TotalOrders:    orders,
		TotalSuppliers: suppliers,
		TotalProducts:  products,
	}, nil
}
