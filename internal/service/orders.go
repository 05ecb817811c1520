package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"materiaux-pro/internal/apperr"
	"materiaux-pro/internal/auth"
	"materiaux-pro/internal/database/models"
	"materiaux-pro/internal/storage"
)

// orderTransitions is the legal status graph. Delivered and cancelled are
// terminal.
var orderTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderPending: {models.OrderShipped, models.OrderCancelled},
	models.OrderShipped: {models.OrderDelivered, models.OrderCancelled},
}

func orderTransitionAllowed(from, to models.OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type OrderService struct {
	store storage.Storage
}

func NewOrderService(store storage.Storage) *OrderService {
	return &OrderService{store: store}
}

// LineInput is one requested order or quote line. Prices are never taken
// from the caller; the product's current price is snapshotted server-side.
type LineInput struct {
	ProductID int64
	Quantity  int
}

// CreateOrder places an order for the acting client. Each line snapshots
// the product's current price; the total is the decimal sum over lines.
// Stock is not checked or reserved here.
func (s *OrderService) CreateOrder(ctx context.Context, identity auth.Identity, lines []LineInput) (*models.Order, error) {
	client, err := s.clientFor(ctx, identity)
	if err != nil {
		return nil, err
	}

	orderLines, total, err := s.priceLines(ctx, lines)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		ClientID: client.ID,
		Total:    total,
		Status:   models.OrderPending,
	}
	built := make([]models.OrderLine, len(orderLines))
	for i, line := range orderLines {
		built[i] = models.OrderLine{
			ProductID:       line.ProductID,
			Quantity:        line.Quantity,
			PriceAtPurchase: line.Price,
		}
	}
	if err := s.store.CreateOrder(ctx, order, built); err != nil {
		return nil, err
	}
	return order, nil
}

// GetOrder enforces ownership: the owning client, a supplier with at least
// one product in the order, or an admin.
func (s *OrderService) GetOrder(ctx context.Context, identity auth.Identity, id int64) (*models.Order, error) {
	order, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperr.New(apperr.NotFound, "order not found")
	}
	if err := s.authorizeOrderAccess(ctx, identity, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) ListClientOrders(ctx context.Context, identity auth.Identity) ([]models.Order, error) {
	client, err := s.clientFor(ctx, identity)
	if err != nil {
		return nil, err
	}
	return s.store.ListOrdersByClient(ctx, client.ID)
}

func (s *OrderService) ListSupplierOrders(ctx context.Context, identity auth.Identity) ([]models.Order, error) {
	supplier, err := s.supplierFor(ctx, identity)
	if err != nil {
		return nil, err
	}
	return s.store.ListOrdersBySupplier(ctx, supplier.ID)
}

// UpdateOrderStatus validates the transition against the status graph.
// The same ownership rule as GetOrder applies: a supplier may only
// transition orders containing their own products.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, identity auth.Identity, id int64, status models.OrderStatus) (*models.Order, error) {
	switch status {
	case models.OrderPending, models.OrderShipped, models.OrderDelivered, models.OrderCancelled:
	default:
		return nil, apperr.New(apperr.Validation, "unknown order status")
	}

	order, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperr.New(apperr.NotFound, "order not found")
	}
	if err := s.authorizeOrderAccess(ctx, identity, order); err != nil {
		return nil, err
	}
	if !orderTransitionAllowed(order.Status, status) {
		return nil, apperr.New(apperr.Validation,
			"cannot move order from "+string(order.Status)+" to "+string(status))
	}
	return s.store.UpdateOrderStatus(ctx, id, status)
}

// --- Deliveries ---

type DeliveryInput struct {
	OrderID      int64
	Address      string
	DeliveryDate *time.Time
}

func (s *OrderService) CreateDelivery(ctx context.Context, input DeliveryInput) (*models.Delivery, error) {
	if input.Address == "" {
		return nil, apperr.New(apperr.Validation, "delivery address is required")
	}

	order, err := s.store.GetOrder(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperr.New(apperr.NotFound, "order not found")
	}

	existing, err := s.store.GetDeliveryByOrder(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.New(apperr.Conflict, "order already has a delivery")
	}

	delivery := &models.Delivery{
		OrderID:      input.OrderID,
		Address:      input.Address,
		DeliveryDate: input.DeliveryDate,
	}
	if err := s.store.CreateDelivery(ctx, delivery); err != nil {
		return nil, err
	}
	return delivery, nil
}

type UpdateDeliveryInput struct {
	Address      *string
	DeliveryDate *time.Time
}

func (s *OrderService) UpdateDelivery(ctx context.Context, id int64, input UpdateDeliveryInput) (*models.Delivery, error) {
	delivery, err := s.store.GetDelivery(ctx, id)
	if err != nil {
		return nil, err
	}
	if delivery == nil {
		return nil, apperr.New(apperr.NotFound, "delivery not found")
	}

	if input.Address != nil {
		if *input.Address == "" {
			return nil, apperr.New(apperr.Validation, "delivery address is required")
		}
		delivery.Address = *input.Address
	}
	if input.DeliveryDate != nil {
		delivery.DeliveryDate = input.DeliveryDate
	}
	if err := s.store.UpdateDelivery(ctx, delivery); err != nil {
		return nil, err
	}
	return delivery, nil
}

// GetOrderDelivery applies the same ownership rule as GetOrder.
func (s *OrderService) GetOrderDelivery(ctx context.Context, identity auth.Identity, orderID int64) (*models.Delivery, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperr.New(apperr.NotFound, "order not found")
	}
	if err := s.authorizeOrderAccess(ctx, identity, order); err != nil {
		return nil, err
	}

	delivery, err := s.store.GetDeliveryByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if delivery == nil {
		return nil, apperr.New(apperr.NotFound, "no delivery scheduled for this order")
	}
	return delivery, nil
}

// --- helpers ---

type pricedLine struct {
	ProductID int64
	Quantity  int
	Price     decimal.Decimal
}

// priceLines validates the requested lines and snapshots current product
// prices. Shared by orders and quotes.
func (s *OrderService) priceLines(ctx context.Context, lines []LineInput) ([]pricedLine, decimal.Decimal, error) {
	return priceLines(ctx, s.store, lines)
}

func priceLines(ctx context.Context, store storage.Storage, lines []LineInput) ([]pricedLine, decimal.Decimal, error) {
	if len(lines) == 0 {
		return nil, decimal.Zero, apperr.New(apperr.Validation, "at least one line is required")
	}

	priced := make([]pricedLine, 0, len(lines))
	total := decimal.Zero
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, decimal.Zero, apperr.New(apperr.Validation, "quantity must be positive")
		}
		product, err := store.GetProduct(ctx, line.ProductID)
		if err != nil {
			return nil, decimal.Zero, err
		}
		if product == nil {
			return nil, decimal.Zero, apperr.New(apperr.Validation, "unknown product in lines")
		}
		priced = append(priced, pricedLine{
			ProductID: product.ID,
			Quantity:  line.Quantity,
			Price:     product.Price,
		})
		total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return priced, total, nil
}

func (s *OrderService) authorizeOrderAccess(ctx context.Context, identity auth.Identity, order *models.Order) error {
	switch identity.Role {
	case auth.RoleAdmin:
		return nil
	case auth.RoleClient:
		client, err := s.clientFor(ctx, identity)
		if err != nil {
			return err
		}
		if order.ClientID != client.ID {
			return apperr.New(apperr.Forbidden, "order belongs to another client")
		}
		return nil
	case auth.RoleSupplier:
		supplier, err := s.supplierFor(ctx, identity)
		if err != nil {
			return err
		}
		for _, line := range order.Lines {
			product, err := s.store.GetProduct(ctx, line.ProductID)
			if err != nil {
				return err
			}
			if product != nil && product.SupplierID == supplier.ID {
				return nil
			}
		}
		return apperr.New(apperr.Forbidden, "order contains none of your products")
	}
	return apperr.New(apperr.Forbidden, "access denied")
}

func (s *OrderService) clientFor(ctx context.Context, identity auth.Identity) (*models.Client, error) {
	client, err := s.store.GetClientByUserID(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, apperr.New(apperr.NotFound, "client profile not found")
	}
	return client, nil
}

func (s *OrderService) supplierFor(ctx context.Context, identity auth.Identity) (*models.Supplier, error) {
	supplier, err := s.store.GetSupplierByUserID(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, apperr.New(apperr.NotFound, "supplier profile not found")
	}
	return supplier, nil
}
