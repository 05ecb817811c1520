package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"materiaux-pro/internal/database/models"
)

// MemStorage is an in-memory Storage used by the service tests. It keeps
// the same contract as the postgres implementation: missing-id reads
// return (nil, nil), unique constraints surface as errors, and the
// multi-row creates are all-or-nothing.
type MemStorage struct {
	mu sync.Mutex

	users      map[int64]models.User
	clients    map[int64]models.Client
	suppliers  map[int64]models.Supplier
	products   map[int64]models.Product
	categories map[int64]models.Category
	orders     map[int64]models.Order
	orderLines map[int64]models.OrderLine
	quotes     map[int64]models.Quote
	quoteLines map[int64]models.QuoteLine
	deliveries map[int64]models.Delivery
	favorites  map[int64]models.Favorite

	nextID int64
}

func NewMemStorage() *MemStorage {
	return &MemStorage{
		users:      make(map[int64]models.User),
		clients:    make(map[int64]models.Client),
		suppliers:  make(map[int64]models.Supplier),
		products:   make(map[int64]models.Product),
		categories: make(map[int64]models.Category),
		orders:     make(map[int64]models.Order),
		orderLines: make(map[int64]models.OrderLine),
		quotes:     make(map[int64]models.Quote),
		quoteLines: make(map[int64]models.QuoteLine),
		deliveries: make(map[int64]models.Delivery),
		favorites:  make(map[int64]models.Favorite),
	}
}

func (s *MemStorage) id() int64 {
	s.nextID++
	return s.nextID
}

// --- Users ---

func (s *MemStorage) GetUser(ctx context.Context, id int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.users[id]; ok {
		return &user, nil
	}
	return nil, nil
}

func (s *MemStorage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Username == username {
			u := user
			return &u, nil
		}
	}
	return nil, nil
}

func (s *MemStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, nil
}

func (s *MemStorage) UpdateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return errors.New("user not found")
	}
	s.users[user.ID] = *user
	return nil
}

// DeleteUser mirrors the ON DELETE CASCADE chain of the postgres schema:
// profile rows go, and through them every order, quote, delivery, product
// and favorite hanging off the account.
func (s *MemStorage) DeleteUser(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
	for cid, client := range s.clients {
		if client.UserID == id {
			s.cascadeClient(cid)
		}
	}
	for sid, supplier := range s.suppliers {
		if supplier.UserID == id {
			s.cascadeSupplier(sid)
		}
	}
	return nil
}

// Cascade helpers. Callers hold s.mu.

func (s *MemStorage) cascadeClient(id int64) {
	delete(s.clients, id)
	for oid, order := range s.orders {
		if order.ClientID == id {
			s.cascadeOrder(oid)
		}
	}
	for qid, quote := range s.quotes {
		if quote.ClientID == id {
			s.cascadeQuote(qid)
		}
	}
	for fid, favorite := range s.favorites {
		if favorite.ClientID == id {
			delete(s.favorites, fid)
		}
	}
}

func (s *MemStorage) cascadeSupplier(id int64) {
	delete(s.suppliers, id)
	for pid, product := range s.products {
		if product.SupplierID == id {
			s.cascadeProduct(pid)
		}
	}
}

func (s *MemStorage) cascadeOrder(id int64) {
	delete(s.orders, id)
	for lid, line := range s.orderLines {
		if line.OrderID == id {
			delete(s.orderLines, lid)
		}
	}
	for did, delivery := range s.deliveries {
		if delivery.OrderID == id {
			delete(s.deliveries, did)
		}
	}
}

func (s *MemStorage) cascadeQuote(id int64) {
	delete(s.quotes, id)
	for lid, line := range s.quoteLines {
		if line.QuoteID == id {
			delete(s.quoteLines, lid)
		}
	}
}

func (s *MemStorage) cascadeProduct(id int64) {
	delete(s.products, id)
	for lid, line := range s.orderLines {
		if line.ProductID == id {
			delete(s.orderLines, lid)
		}
	}
	for lid, line := range s.quoteLines {
		if line.ProductID == id {
			delete(s.quoteLines, lid)
		}
	}
	for fid, favorite := range s.favorites {
		if favorite.ProductID == id {
			delete(s.favorites, fid)
		}
	}
}

func (s *MemStorage) ListUsers(ctx context.Context, page, limit int) ([]models.User, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]models.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })

	total := int64(len(users))
	if limit <= 0 {
		limit = 10
	}
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit
	if offset >= len(users) {
		return []models.User{}, total, nil
	}
	end := offset + limit
	if end > len(users) {
		end = len(users)
	}
	return users[offset:end], total, nil
}

// --- Clients ---

func (s *MemStorage) GetClient(ctx context.Context, id int64) (*models.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if client, ok := s.clients[id]; ok {
		return &client, nil
	}
	return nil, nil
}

func (s *MemStorage) GetClientByUserID(ctx context.Context, userID int64) (*models.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, client := range s.clients {
		if client.UserID == userID {
			c := client
			return &c, nil
		}
	}
	return nil, nil
}

func (s *MemStorage) CreateClientWithUser(ctx context.Context, user *models.User, client *models.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkUserUnique(user); err != nil {
		return err
	}
	user.ID = s.id()
	user.CreatedAt = time.Now()
	s.users[user.ID] = *user

	client.ID = s.id()
	client.UserID = user.ID
	s.clients[client.ID] = *client
	return nil
}

func (s *MemStorage) UpdateClient(ctx context.Context, client *models.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[client.ID]; !ok {
		return errors.New("client not found")
	}
	s.clients[client.ID] = *client
	return nil
}

func (s *MemStorage) checkUserUnique(user *models.User) error {
	for _, existing := range s.users {
		if existing.Username == user.Username {
			return errors.New("duplicate username")
		}
		if existing.Email == user.Email {
			return errors.New("duplicate email")
		}
	}
	return nil
}

// --- Suppliers ---

func (s *MemStorage) GetSupplier(ctx context.Context, id int64) (*models.Supplier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if supplier, ok := s.suppliers[id]; ok {
		return &supplier, nil
	}
	return nil, nil
}

func (s *MemStorage) GetSupplierByUserID(ctx context.Context, userID int64) (*models.Supplier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, supplier := range s.suppliers {
		if supplier.UserID == userID {
			sp := supplier
			return &sp, nil
		}
	}
	return nil, nil
}

func (s *MemStorage) CreateSupplierWithUser(ctx context.Context, user *models.User, supplier *models.Supplier) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkUserUnique(user); err != nil {
		return err
	}
	user.ID = s.id()
	user.CreatedAt = time.Now()
	s.users[user.ID] = *user

	supplier.ID = s.id()
	supplier.UserID = user.ID
	s.suppliers[supplier.ID] = *supplier
	return nil
}

func (s *MemStorage) UpdateSupplier(ctx context.Context, supplier *models.Supplier) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.suppliers[supplier.ID]; !ok {
		return errors.New("supplier not found")
	}
	s.suppliers[supplier.ID] = *supplier
	return nil
}

// --- Products ---

func (s *MemStorage) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if product, ok := s.products[id]; ok {
		return &product, nil
	}
	return nil, nil
}

func (s *MemStorage) sortedProducts(keep func(models.Product) bool) []models.Product {
	products := make([]models.Product, 0)
	for _, product := range s.products {
		if keep(product) {
			products = append(products, product)
		}
	}
	sort.Slice(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
	return products
}

func (s *MemStorage) ListProducts(ctx context.Context, page, limit int) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products := s.sortedProducts(func(models.Product) bool { return true })
	if limit <= 0 {
		limit = 10
	}
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit
	if offset >= len(products) {
		return []models.Product{}, nil
	}
	end := offset + limit
	if end > len(products) {
		end = len(products)
	}
	return products[offset:end], nil
}

func (s *MemStorage) ListProductsBySupplier(ctx context.Context, supplierID int64) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedProducts(func(p models.Product) bool { return p.SupplierID == supplierID }), nil
}

func (s *MemStorage) ListProductsByCategory(ctx context.Context, categoryID int64) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedProducts(func(p models.Product) bool {
		return p.CategoryID != nil && *p.CategoryID == categoryID
	}), nil
}

func (s *MemStorage) SearchProducts(ctx context.Context, query string) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	needle := strings.ToLower(query)
	return s.sortedProducts(func(p models.Product) bool {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			return true
		}
		return p.Description != nil && strings.Contains(strings.ToLower(*p.Description), needle)
	}), nil
}

func (s *MemStorage) FilterProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sortedProducts(func(p models.Product) bool {
		if len(filter.CategoryIDs) > 0 {
			if p.CategoryID == nil || !containsID(filter.CategoryIDs, *p.CategoryID) {
				return false
			}
		}
		if len(filter.SupplierIDs) > 0 && !containsID(filter.SupplierIDs, p.SupplierID) {
			return false
		}
		if filter.MinPrice != nil && p.Price.LessThan(*filter.MinPrice) {
			return false
		}
		if filter.MaxPrice != nil && p.Price.GreaterThan(*filter.MaxPrice) {
			return false
		}
		if filter.InStock && p.Stock <= 0 {
			return false
		}
		return true
	}), nil
}

func containsID(ids []int64, id int64) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func (s *MemStorage) CreateProduct(ctx context.Context, product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	product.ID = s.id()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now()
	}
	s.products[product.ID] = *product
	return nil
}

func (s *MemStorage) UpdateProduct(ctx context.Context, product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[product.ID]; !ok {
		return errors.New("product not found")
	}
	s.products[product.ID] = *product
	return nil
}

func (s *MemStorage) DeleteProduct(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cascadeProduct(id)
	return nil
}

// --- Categories ---

func (s *MemStorage) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if category, ok := s.categories[id]; ok {
		return &category, nil
	}
	return nil, nil
}

func (s *MemStorage) ListCategories(ctx context.Context) ([]models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	categories := make([]models.Category, 0, len(s.categories))
	for _, category := range s.categories {
		categories = append(categories, category)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}

func (s *MemStorage) CreateCategory(ctx context.Context, category *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	category.ID = s.id()
	s.categories[category.ID] = *category
	return nil
}

func (s *MemStorage) UpdateCategory(ctx context.Context, category *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[category.ID]; !ok {
		return errors.New("category not found")
	}
	s.categories[category.ID] = *category
	return nil
}

func (s *MemStorage) DeleteCategory(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.categories, id)
	return nil
}

// --- Orders ---

func (s *MemStorage) orderWithLines(order models.Order) models.Order {
	lines := make([]models.OrderLine, 0)
	for _, line := range s.orderLines {
		if line.OrderID == order.ID {
			lines = append(lines, line)
		}
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ID < lines[j].ID })
	order.Lines = lines
	for _, delivery := range s.deliveries {
		if delivery.OrderID == order.ID {
			d := delivery
			order.Delivery = &d
		}
	}
	return order
}

func (s *MemStorage) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if order, ok := s.orders[id]; ok {
		full := s.orderWithLines(order)
		return &full, nil
	}
	return nil, nil
}

func (s *MemStorage) ListOrdersByClient(ctx context.Context, clientID int64) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders := make([]models.Order, 0)
	for _, order := range s.orders {
		if order.ClientID == clientID {
			orders = append(orders, s.orderWithLines(order))
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID > orders[j].ID })
	return orders, nil
}

func (s *MemStorage) ListOrdersBySupplier(ctx context.Context, supplierID int64) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders := make([]models.Order, 0)
	for _, order := range s.orders {
		full := s.orderWithLines(order)
		for _, line := range full.Lines {
			product, ok := s.products[line.ProductID]
			if ok && product.SupplierID == supplierID {
				orders = append(orders, full)
				break
			}
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID > orders[j].ID })
	return orders, nil
}

func (s *MemStorage) CreateOrder(ctx context.Context, order *models.Order, lines []models.OrderLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order.ID = s.id()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	if order.Status == "" {
		order.Status = models.OrderPending
	}
	s.orders[order.ID] = *order

	for i := range lines {
		lines[i].ID = s.id()
		lines[i].OrderID = order.ID
		s.orderLines[lines[i].ID] = lines[i]
	}
	order.Lines = lines
	return nil
}

func (s *MemStorage) UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok {
		return nil, nil
	}
	order.Status = status
	s.orders[id] = order
	full := s.orderWithLines(order)
	return &full, nil
}

// --- Quotes ---

func (s *MemStorage) quoteWithLines(quote models.Quote) models.Quote {
	lines := make([]models.QuoteLine, 0)
	for _, line := range s.quoteLines {
		if line.QuoteID == quote.ID {
			lines = append(lines, line)
		}
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ID < lines[j].ID })
	quote.Lines = lines
	return quote
}

func (s *MemStorage) GetQuote(ctx context.Context, id int64) (*models.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if quote, ok := s.quotes[id]; ok {
		full := s.quoteWithLines(quote)
		return &full, nil
	}
	return nil, nil
}

func (s *MemStorage) ListQuotesByClient(ctx context.Context, clientID int64) ([]models.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	quotes := make([]models.Quote, 0)
	for _, quote := range s.quotes {
		if quote.ClientID == clientID {
			quotes = append(quotes, s.quoteWithLines(quote))
		}
	}
	sort.Slice(quotes, func(i, j int) bool { return quotes[i].ID > quotes[j].ID })
	return quotes, nil
}

func (s *MemStorage) ListQuotesBySupplier(ctx context.Context, supplierID int64) ([]models.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	quotes := make([]models.Quote, 0)
	for _, quote := range s.quotes {
		if quote.SupplierID != nil && *quote.SupplierID == supplierID {
			quotes = append(quotes, s.quoteWithLines(quote))
		}
	}
	sort.Slice(quotes, func(i, j int) bool { return quotes[i].ID > quotes[j].ID })
	return quotes, nil
}

func (s *MemStorage) CreateQuote(ctx context.Context, quote *models.Quote, lines []models.QuoteLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	quote.ID = s.id()
	if quote.CreatedAt.IsZero() {
		quote.CreatedAt = time.Now()
	}
	if quote.Status == "" {
		quote.Status = models.QuotePending
	}
	s.quotes[quote.ID] = *quote

	for i := range lines {
		lines[i].ID = s.id()
		lines[i].QuoteID = quote.ID
		s.quoteLines[lines[i].ID] = lines[i]
	}
	quote.Lines = lines
	return nil
}

func (s *MemStorage) UpdateQuoteStatus(ctx context.Context, id int64, status models.QuoteStatus) (*models.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	quote, ok := s.quotes[id]
	if !ok {
		return nil, nil
	}
	quote.Status = status
	s.quotes[id] = quote
	full := s.quoteWithLines(quote)
	return &full, nil
}

// --- Deliveries ---

func (s *MemStorage) GetDelivery(ctx context.Context, id int64) (*models.Delivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if delivery, ok := s.deliveries[id]; ok {
		return &delivery, nil
	}
	return nil, nil
}

func (s *MemStorage) GetDeliveryByOrder(ctx context.Context, orderID int64) (*models.Delivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, delivery := range s.deliveries {
		if delivery.OrderID == orderID {
			d := delivery
			return &d, nil
		}
	}
	return nil, nil
}

func (s *MemStorage) CreateDelivery(ctx context.Context, delivery *models.Delivery) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.deliveries {
		if existing.OrderID == delivery.OrderID {
			return errors.New("duplicate delivery for order")
		}
	}
	delivery.ID = s.id()
	s.deliveries[delivery.ID] = *delivery
	return nil
}

func (s *MemStorage) UpdateDelivery(ctx context.Context, delivery *models.Delivery) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.deliveries[delivery.ID]; !ok {
		return errors.New("delivery not found")
	}
	s.deliveries[delivery.ID] = *delivery
	return nil
}

// --- Favorites ---

func (s *MemStorage) ListFavoritesByClient(ctx context.Context, clientID int64) ([]models.Favorite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	favorites := make([]models.Favorite, 0)
	for _, favorite := range s.favorites {
		if favorite.ClientID == clientID {
			if product, ok := s.products[favorite.ProductID]; ok {
				p := product
				favorite.Product = &p
			}
			favorites = append(favorites, favorite)
		}
	}
	sort.Slice(favorites, func(i, j int) bool { return favorites[i].ID < favorites[j].ID })
	return favorites, nil
}

func (s *MemStorage) GetFavorite(ctx context.Context, clientID, productID int64) (*models.Favorite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, favorite := range s.favorites {
		if favorite.ClientID == clientID && favorite.ProductID == productID {
			f := favorite
			return &f, nil
		}
	}
	return nil, nil
}

func (s *MemStorage) AddFavorite(ctx context.Context, favorite *models.Favorite) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.favorites {
		if existing.ClientID == favorite.ClientID && existing.ProductID == favorite.ProductID {
			return errors.New("duplicate favorite")
		}
	}
	favorite.ID = s.id()
	s.favorites[favorite.ID] = *favorite
	return nil
}

func (s *MemStorage) RemoveFavorite(ctx context.Context, clientID, productID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for fid, favorite := range s.favorites {
		if favorite.ClientID == clientID && favorite.ProductID == productID {
			delete(s.favorites, fid)
		}
	}
	return nil
}

// --- Aggregates ---

func (s *MemStorage) TotalSalesBySupplier(ctx context.Context, supplierID int64) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, line := range s.orderLines {
		product, ok := s.products[line.ProductID]
		if !ok || product.SupplierID != supplierID {
			continue
		}
		total = total.Add(line.PriceAtPurchase.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total, nil
}

func (s *MemStorage) CountOrdersBySupplier(ctx context.Context, supplierID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[int64]bool)
	for _, line := range s.orderLines {
		product, ok := s.products[line.ProductID]
		if ok && product.SupplierID == supplierID {
			seen[line.OrderID] = true
		}
	}
	return int64(len(seen)), nil
}

func (s *MemStorage) CountProductsBySupplier(ctx context.Context, supplierID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for _, product := range s.products {
		if product.SupplierID == supplierID {
			count++
		}
	}
	return count, nil
}

func (s *MemStorage) CountUsers(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.users)), nil
}

func (s *MemStorage) CountOrders(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.orders)), nil
}

func (s *MemStorage) CountSuppliers(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.suppliers)), nil
}

func (s *MemStorage) CountProducts(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.products)), nil
}
