package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"materiaux-pro/internal/apperr"
	"materiaux-pro/internal/auth"
	"materiaux-pro/internal/database/models"
	"materiaux-pro/internal/storage"
)

// lowStockThreshold is the stock level below which a product shows up in
// the supplier's low-stock listing.
const lowStockThreshold = 10

type CatalogService struct {
	store storage.Storage
}

func NewCatalogService(store storage.Storage) *CatalogService {
	return &CatalogService{store: store}
}

// --- Products ---

func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	product, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperr.New(apperr.NotFound, "product not found")
	}
	return product, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, page, limit int) ([]models.Product, error) {
	return s.store.ListProducts(ctx, page, limit)
}

func (s *CatalogService) ListProductsByCategory(ctx context.Context, categoryID int64) ([]models.Product, error) {
	category, err := s.store.GetCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, apperr.New(apperr.NotFound, "category not found")
	}
	return s.store.ListProductsByCategory(ctx, categoryID)
}

func (s *CatalogService) SearchProducts(ctx context.Context, query string) ([]models.Product, error) {
	if strings.TrimSpace(query) == "" {
		return nil, apperr.New(apperr.Validation, "search query is required")
	}
	return s.store.SearchProducts(ctx, query)
}

func (s *CatalogService) FilterProducts(ctx context.Context, filter storage.ProductFilter) ([]models.Product, error) {
	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return nil, apperr.New(apperr.Validation, "min price exceeds max price")
	}
	return s.store.FilterProducts(ctx, filter)
}

// SupplierProducts lists the acting supplier's own products. With lowStock
// set, only products under the restock threshold are returned.
func (s *CatalogService) SupplierProducts(ctx context.Context, identity auth.Identity, lowStock bool) ([]models.Product, error) {
	supplier, err := s.supplierFor(ctx, identity)
	if err != nil {
		return nil, err
	}
	products, err := s.store.ListProductsBySupplier(ctx, supplier.ID)
	if err != nil {
		return nil, err
	}
	if !lowStock {
		return products, nil
	}

	short := make([]models.Product, 0, len(products))
	for _, product := range products {
		if product.Stock < lowStockThreshold {
			short = append(short, product)
		}
	}
	return short, nil
}

type ProductInput struct {
	Name        string
	Description *string
	Price       decimal.Decimal
	Stock       int
	ImageURL    *string
	CategoryID  *int64
	// SupplierID is honored only when an admin creates on a supplier's
	// behalf; suppliers always create under their own profile.
	SupplierID *int64
}

func (s *CatalogService) CreateProduct(ctx context.Context, identity auth.Identity, input ProductInput) (*models.Product, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperr.New(apperr.Validation, "product name is required")
	}
	if input.Price.IsNegative() {
		return nil, apperr.New(apperr.Validation, "price cannot be negative")
	}
	if input.Stock < 0 {
		return nil, apperr.New(apperr.Validation, "stock cannot be negative")
	}

	var supplierID int64
	if identity.Role == auth.RoleAdmin {
		if input.SupplierID == nil {
			return nil, apperr.New(apperr.Validation, "supplier id is required")
		}
		supplier, err := s.store.GetSupplier(ctx, *input.SupplierID)
		if err != nil {
			return nil, err
		}
		if supplier == nil {
			return nil, apperr.New(apperr.NotFound, "supplier not found")
		}
		supplierID = supplier.ID
	} else {
		supplier, err := s.supplierFor(ctx, identity)
		if err != nil {
			return nil, err
		}
		supplierID = supplier.ID
	}

	if input.CategoryID != nil {
		category, err := s.store.GetCategory(ctx, *input.CategoryID)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, apperr.New(apperr.Validation, "unknown category")
		}
	}

	product := &models.Product{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
		ImageURL:    input.ImageURL,
		SupplierID:  supplierID,
		CategoryID:  input.CategoryID,
	}
	if err := s.store.CreateProduct(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

type UpdateProductInput struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int
	ImageURL    *string
	CategoryID  *int64
}

func (s *CatalogService) UpdateProduct(ctx context.Context, identity auth.Identity, id int64, input UpdateProductInput) (*models.Product, error) {
	product, err := s.ownedProduct(ctx, identity, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, apperr.New(apperr.Validation, "product name is required")
		}
		product.Name = *input.Name
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, apperr.New(apperr.Validation, "price cannot be negative")
		}
		product.Price = *input.Price
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, apperr.New(apperr.Validation, "stock cannot be negative")
		}
		product.Stock = *input.Stock
	}
	if input.ImageURL != nil {
		product.ImageURL = input.ImageURL
	}
	if input.CategoryID != nil {
		category, err := s.store.GetCategory(ctx, *input.CategoryID)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, apperr.New(apperr.Validation, "unknown category")
		}
		product.CategoryID = input.CategoryID
	}

	product.Category = nil
	if err := s.store.UpdateProduct(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, identity auth.Identity, id int64) error {
	if _, err := s.ownedProduct(ctx, identity, id); err != nil {
		return err
	}
	return s.store.DeleteProduct(ctx, id)
}

// ownedProduct loads the product and verifies the acting supplier owns it.
// Admins may act on any product.
func (s *CatalogService) ownedProduct(ctx context.Context, identity auth.Identity, id int64) (*models.Product, error) {
	product, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperr.New(apperr.NotFound, "product not found")
	}
	if identity.Role == auth.RoleAdmin {
		return product, nil
	}

	supplier, err := s.supplierFor(ctx, identity)
	if err != nil {
		return nil, err
	}
	if product.SupplierID != supplier.ID {
		return nil, apperr.New(apperr.Forbidden, "product belongs to another supplier")
	}
	return product, nil
}

func (s *CatalogService) supplierFor(ctx context.Context, identity auth.Identity) (*models.Supplier, error) {
	supplier, err := s.store.GetSupplierByUserID(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, apperr.New(apperr.NotFound, "supplier profile not found")
	}
	return supplier, nil
}

// --- Categories ---

func (s *CatalogService) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	category, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, apperr.New(apperr.NotFound, "category not found")
	}
	return category, nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.store.ListCategories(ctx)
}

type CategoryInput struct {
	Name        string
	Description *string
}

func (s *CatalogService) CreateCategory(ctx context.Context, input CategoryInput) (*models.Category, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperr.New(apperr.Validation, "category name is required")
	}
	category := &models.Category{Name: input.Name, Description: input.Description}
	if err := s.store.CreateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

type UpdateCategoryInput struct {
	Name        *string
	Description *string
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id int64, input UpdateCategoryInput) (*models.Category, error) {
	category, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, apperr.New(apperr.Validation, "category name is required")
		}
		category.Name = *input.Name
	}
	if input.Description != nil {
		category.Description = input.Description
	}
	if err := s.store.UpdateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory removes the category only. Products keep their dangling
// category id; listings treat them as uncategorized.
func (s *CatalogService) DeleteCategory(ctx context.Context, id int64) error {
	if _, err := s.GetCategory(ctx, id); err != nil {
		return err
	}
	return s.store.DeleteCategory(ctx, id)
}
