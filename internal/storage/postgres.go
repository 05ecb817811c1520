package storage

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"materiaux-pro/internal/database/models"
)

type gormStorage struct {
	db *gorm.DB
}

func New(db *gorm.DB) Storage {
	return &gormStorage{db: db}
}

func notFoundAsNil(err error) error {
	if err == gorm.ErrRecordNotFound {
		return nil
	}
	return err
}

// --- Users ---

func (s *gormStorage) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFoundAsNil(err)
	}
	return &user, nil
}

func (s *gormStorage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, notFoundAsNil(err)
	}
	return &user, nil
}

func (s *gormStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFoundAsNil(err)
	}
	return &user, nil
}

func (s *gormStorage) UpdateUser(ctx context.Context, user *models.User) error {
	return s.db.WithContext(ctx).Save(user).Error
}

func (s *gormStorage) DeleteUser(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Delete(&models.User{}, id).Error
}

func (s *gormStorage) ListUsers(ctx context.Context, page, limit int) ([]models.User, int64, error) {
	var users []models.User
	var total int64

	query := s.db.WithContext(ctx).Model(&models.User{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 10
	}
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// --- Clients ---

func (s *gormStorage) GetClient(ctx context.Context, id int64) (*models.Client, error) {
	var client models.Client
	if err := s.db.WithContext(ctx).First(&client, id).Error; err != nil {
		return nil, notFoundAsNil(err)
	}
	return &client, nil
}

func (s *gormStorage) GetClientByUserID(ctx context.Context, userID int64) (*models.Client, error) {
	var client models.Client
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&client).Error; err != nil {
		return nil, notFoundAsNil(err)
	}
	return &client, nil
}

func (s *gormStorage) CreateClientWithUser(ctx context.Context, user *models.User, client *models.Client) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		client.UserID = user.ID
		return tx.Create(client).Error
	})
}

func (s *gormStorage) UpdateClient(ctx context.Context, client *models.Client) error {
	return s.db.WithContext(ctx).Save(client).Error
}

// --- Suppliers ---

func (s *gormStorage) GetSupplier(ctx context.Context, id int64) (*models.Supplier, error) {
	var supplier models.Supplier
	if err := s.db.WithContext(ctx).First(&supplier, id).Error; err != nil {
		return nil, notFoundAsNil(err)
	}
	return &supplier, nil
}

func (s *gormStorage) GetSupplierByUserID(ctx context.Context, userID int64) (*models.Supplier, error) {
	var supplier models.Supplier
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&supplier).Error; err != nil {
		return nil, notFoundAsNil(err)
	}
	return &supplier, nil
}

func (s *gormStorage) CreateSupplierWithUser(ctx context.Context, user *models.User, supplier *models.Supplier) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		supplier.UserID = user.ID
		return tx.Create(supplier).Error
	})
}

func (s *gormStorage) UpdateSupplier(ctx context.Context, supplier *models.Supplier) error {
	return s.db.WithContext(ctx).Save(supplier).Error
}

// --- Products ---

func (s *gormStorage) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).Preload("Category").First(&product, id).Error; err != nil {
		return nil, notFoundAsNil(err)
	}
	return &product, nil
}

func (s *gormStorage) ListProducts(ctx context.Context, page, limit int) ([]models.Product, error) {
	if limit <= 0 {
		limit = 10
	}
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	var products []models.Product
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&products).Error
	return products, err
}

func (s *gormStorage) ListProductsBySupplier(ctx context.Context, supplierID int64) ([]models.Product, error) {
	var products []models.Product
	err := s.db.WithContext(ctx).
		Where("supplier_id = ?", supplierID).
		Order("created_at DESC").
		Find(&products).Error
	return products, err
}

func (s *gormStorage) ListProductsByCategory(ctx context.Context, categoryID int64) ([]models.Product, error) {
	var products []models.Product
	err := s.db.WithContext(ctx).
		Where("category_id = ?", categoryID).
		Order("created_at DESC").
		Find(&products).Error
	return products, err
}

func (s *gormStorage) SearchProducts(ctx context.Context, query string) ([]models.Product, error) {
	pattern := "%" + query + "%"
	var products []models.Product
	err := s.db.WithContext(ctx).
		Where("name ILIKE ? OR description ILIKE ?", pattern, pattern).
		Order("created_at DESC").
		Find(&products).Error
	return products, err
}

func (s *gormStorage) FilterProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	query := s.db.WithContext(ctx).Model(&models.Product{})

	if len(filter.CategoryIDs) > 0 {
		query = query.Where("category_id IN ?", filter.CategoryIDs)
	}
	if len(filter.SupplierIDs) > 0 {
		query = query.Where("supplier_id IN ?", filter.SupplierIDs)
	}
	if filter.MinPrice != nil {
		query = query.Where("price >= ?", filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", filter.MaxPrice)
	}
	if filter.InStock {
		query = query.Where("stock > 0")
	}

	var products []models.Product
	err := query.Order("created_at DESC").Find(&products).Error
	return products, err
}

func (s *gormStorage) CreateProduct(ctx context.Context, product *models.Product) error {
	return s.db.WithContext(ctx).Create(product).Error
}

func (s *gormStorage) UpdateProduct(ctx context.Context, product *models.Product) error {
	return s.db.WithContext(ctx).Save(product).Error
}

func (s *gormStorage) DeleteProduct(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Delete(&models.Product{}, id).Error
}

// --- Categories ---

func (s *gormStorage) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	var category models.Category
	if err := s.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, notFoundAsNil(err)
	}
	return &category, nil
}

func (s *gormStorage) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := s.db.WithContext(ctx).Order("name").Find(&categories).Error
	return categories, err
}

func (s *gormStorage) CreateCategory(ctx context.Context, category *models.Category) error {
	return s.db.WithContext(ctx).Create(category).Error
}

func (s *gormStorage) UpdateCategory(ctx context.Context, category *models.Category) error {
	return s.db.WithContext(ctx).Save(category).Error
}

func (s *gormStorage) DeleteCategory(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Delete(&models.Category{}, id).Error
}

// --- Orders ---

func (s *gormStorage) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Lines").
		Preload("Delivery").
		First(&order, id).Error
	if err != nil {
		return nil, notFoundAsNil(err)
	}
	return &order, nil
}

func (s *gormStorage) ListOrdersByClient(ctx context.Context, clientID int64) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.WithContext(ctx).
		Preload("Lines").
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

func (s *gormStorage) ListOrdersBySupplier(ctx context.Context, supplierID int64) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.WithContext(ctx).
		Preload("Lines").
		Distinct("orders.*").
		Joins("JOIN order_lines ON order_lines.order_id = orders.id").
		Joins("JOIN products ON products.id = order_lines.product_id").
		Where("products.supplier_id = ?", supplierID).
		Order("orders.created_at DESC").
		Find(&orders).Error
	return orders, err
}

// CreateOrder writes the order header and every line in one transaction:
// either all rows persist or none do.
func (s *gormStorage) CreateOrder(ctx context.Context, order *models.Order, lines []models.OrderLine) error {
	tx := s.db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Create(order).Error; err != nil {
		tx.Rollback()
		return errors.Wrap(err, "creating order")
	}

	for i := range lines {
		lines[i].OrderID = order.ID
	}
	if err := tx.Create(&lines).Error; err != nil {
		tx.Rollback()
		return errors.Wrap(err, "creating order lines")
	}

	if err := tx.Commit().Error; err != nil {
		return errors.Wrap(err, "committing order")
	}
	order.Lines = lines
	return nil
}

func (s *gormStorage) UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) (*models.Order, error) {
	order, err := s.GetOrder(ctx, id)
	if err != nil || order == nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(order).Update("status", status).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// --- Quotes ---

func (s *gormStorage) GetQuote(ctx context.Context, id int64) (*models.Quote, error) {
	var quote models.Quote
	if err := s.db.WithContext(ctx).Preload("Lines").First(&quote, id).Error; err != nil {
		return nil, notFoundAsNil(err)
	}
	return &quote, nil
}

func (s *gormStorage) ListQuotesByClient(ctx context.Context, clientID int64) ([]models.Quote, error) {
	var quotes []models.Quote
	err := s.db.WithContext(ctx).
		Preload("Lines").
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		Find(&quotes).Error
	return quotes, err
}

func (s *gormStorage) ListQuotesBySupplier(ctx context.Context, supplierID int64) ([]models.Quote, error) {
	var quotes []models.Quote
	err := s.db.WithContext(ctx).
		Preload("Lines").
		Where("supplier_id = ?", supplierID).
		Order("created_at DESC").
		Find(&quotes).Error
	return quotes, err
}

func (s *gormStorage) CreateQuote(ctx context.Context, quote *models.Quote, lines []models.QuoteLine) error {
	tx := s.db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Create(quote).Error; err != nil {
		tx.Rollback()
		return errors.Wrap(err, "creating quote")
	}

	for i := range lines {
		lines[i].QuoteID = quote.ID
	}
	if err := tx.Create(&lines).Error; err != nil {
		tx.Rollback()
		return errors.Wrap(err, "creating quote lines")
	}

	if err := tx.Commit().Error; err != nil {
		return errors.Wrap(err, "committing quote")
	}
	quote.Lines = lines
	return nil
}

func (s *gormStorage) UpdateQuoteStatus(ctx context.Context, id int64, status models.QuoteStatus) (*models.Quote, error) {
	quote, err := s.GetQuote(ctx, id)
	if err != nil || quote == nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(quote).Update("status", status).Error; err != nil {
		return nil, err
	}
	return quote, nil
}

// --- Deliveries ---

func (s *gormStorage) GetDelivery(ctx context.Context, id int64) (*models.Delivery, error) {
	var delivery models.Delivery
	if err := s.db.WithContext(ctx).First(&delivery, id).Error; err != nil {
		return nil, notFoundAsNil(err)
	}
	return &delivery, nil
}

func (s *gormStorage) GetDeliveryByOrder(ctx context.Context, orderID int64) (*models.Delivery, error) {
	var delivery models.Delivery
	if err := s.db.WithContext(ctx).Where("order_id = ?", orderID).First(&delivery).Error; err != nil {
		return nil, notFoundAsNil(err)
	}
	return &delivery, nil
}

func (s *gormStorage) CreateDelivery(ctx context.Context, delivery *models.Delivery) error {
	return s.db.WithContext(ctx).Create(delivery).Error
}

func (s *gormStorage) UpdateDelivery(ctx context.Context, delivery *models.Delivery) error {
	return s.db.WithContext(ctx).Save(delivery).Error
}

// --- Favorites ---

func (s *gormStorage) ListFavoritesByClient(ctx context.Context, clientID int64) ([]models.Favorite, error) {
	var favorites []models.Favorite
	err := s.db.WithContext(ctx).
		Preload("Product").
		Where("client_id = ?", clientID).
		Find(&favorites).Error
	return favorites, err
}

func (s *gormStorage) GetFavorite(ctx context.Context, clientID, productID int64) (*models.Favorite, error) {
	var favorite models.Favorite
	err := s.db.WithContext(ctx).
		Where("client_id = ? AND product_id = ?", clientID, productID).
		First(&favorite).Error
	if err != nil {
		return nil, notFoundAsNil(err)
	}
	return &favorite, nil
}

func (s *gormStorage) AddFavorite(ctx context.Context, favorite *models.Favorite) error {
	return s.db.WithContext(ctx).Create(favorite).Error
}

func (s *gormStorage) RemoveFavorite(ctx context.Context, clientID, productID int64) error {
	return s.db.WithContext(ctx).
		Where("client_id = ? AND product_id = ?", clientID, productID).
		Delete(&models.Favorite{}).Error
}

// --- Aggregates ---

func (s *gormStorage) TotalSalesBySupplier(ctx context.Context, supplierID int64) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.db.WithContext(ctx).
		Model(&models.OrderLine{}).
		Select("COALESCE(SUM(order_lines.price_at_purchase * order_lines.quantity), 0)").
		Joins("JOIN products ON products.id = order_lines.product_id").
		Where("products.supplier_id = ?", supplierID).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

func (s *gormStorage) CountOrdersBySupplier(ctx context.Context, supplierID int64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.OrderLine{}).
		Joins("JOIN products ON products.id = order_lines.product_id").
		Where("products.supplier_id = ?", supplierID).
		Distinct("order_lines.order_id").
		Count(&count).Error
	return count, err
}

func (s *gormStorage) CountProductsBySupplier(ctx context.Context, supplierID int64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("supplier_id = ?", supplierID).
		Count(&count).Error
	return count, err
}

func (s *gormStorage) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error
	return count, err
}

func (s *gormStorage) CountOrders(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Order{}).Count(&count).Error
	return count, err
}

func (s *gormStorage) CountSuppliers(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Supplier{}).Count(&count).Error
	return count, err
}

func (s *gormStorage) CountProducts(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Product{}).Count(&count).Error
	return count, err
}
