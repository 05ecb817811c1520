package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// Quote statuses. Client-reviewed quotes move to approved/rejected;
// supplier-reviewed quotes move to accepted/rejected. The two vocabularies
// are intentionally kept apart, one per flow.
type QuoteStatus string

const (
	QuotePending  QuoteStatus = "pending"
	QuoteApproved QuoteStatus = "approved"
	QuoteAccepted QuoteStatus = "accepted"
	QuoteRejected QuoteStatus = "rejected"
)

type User struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Username  string    `gorm:"uniqueIndex;not null" json:"username"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	Role      string    `gorm:"type:varchar(16);not null" json:"role"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	Client   *Client   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"client,omitempty"`
	Supplier *Supplier `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"supplier,omitempty"`
}

type Client struct {
	ID        int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64   `gorm:"uniqueIndex;not null" json:"user_id"`
	FirstName string  `gorm:"not null" json:"first_name"`
	LastName  string  `gorm:"not null" json:"last_name"`
	Address   *string `json:"address,omitempty"`
	Phone     *string `json:"phone,omitempty"`
}

type Supplier struct {
	ID          int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      int64   `gorm:"uniqueIndex;not null" json:"user_id"`
	CompanyName string  `gorm:"not null" json:"company_name"`
	ContactName string  `gorm:"not null" json:"contact_name"`
	Address     *string `json:"address,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Description *string `gorm:"type:text" json:"description,omitempty"`
}

type Product struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string          `gorm:"not null" json:"name"`
	Description *string         `gorm:"type:text" json:"description,omitempty"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Stock       int             `gorm:"not null;default:0" json:"stock"`
	ImageURL    *string         `json:"image_url,omitempty"`
	SupplierID  int64           `gorm:"index;not null" json:"supplier_id"`
	// No ON DELETE action on the category reference; deleting a category
	// leaves the product's category id dangling.
	CategoryID *int64    `gorm:"index" json:"category_id,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`

	Supplier *Supplier `gorm:"foreignKey:SupplierID;constraint:OnDelete:CASCADE" json:"supplier,omitempty"`
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

type Category struct {
	ID          int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string  `gorm:"not null" json:"name"`
	Description *string `gorm:"type:text" json:"description,omitempty"`
}

type Order struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	ClientID  int64           `gorm:"index;not null" json:"client_id"`
	Total     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`
	Status    OrderStatus     `gorm:"type:varchar(16);not null;default:'pending'" json:"status"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`

	Client   *Client     `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"client,omitempty"`
	Lines    []OrderLine `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"lines,omitempty"`
	Delivery *Delivery   `gorm:"foreignKey:OrderID" json:"delivery,omitempty"`
}

// OrderLine is an immutable price-snapshot row: PriceAtPurchase is the
// product price at order time and never changes afterwards.
type OrderLine struct {
	ID              int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID         int64           `gorm:"index;not null" json:"order_id"`
	ProductID       int64           `gorm:"not null" json:"product_id"`
	Quantity        int             `gorm:"not null" json:"quantity"`
	PriceAtPurchase decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price_at_purchase"`

	Product *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"product,omitempty"`
}

type Quote struct {
	ID         int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	ClientID   int64           `gorm:"index;not null" json:"client_id"`
	SupplierID *int64          `gorm:"index" json:"supplier_id,omitempty"`
	Status     QuoteStatus     `gorm:"type:varchar(16);not null;default:'pending'" json:"status"`
	Total      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`
	ValidUntil *time.Time      `json:"valid_until,omitempty"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`

	Client *Client     `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"client,omitempty"`
	Lines  []QuoteLine `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE" json:"lines,omitempty"`
}

type QuoteLine struct {
	ID           int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	QuoteID      int64           `gorm:"index;not null" json:"quote_id"`
	ProductID    int64           `gorm:"not null" json:"product_id"`
	Quantity     int             `gorm:"not null" json:"quantity"`
	PriceAtQuote decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price_at_quote"`

	Product *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"product,omitempty"`
}

type Delivery struct {
	ID           int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID      int64      `gorm:"uniqueIndex;not null" json:"order_id"`
	Address      string     `gorm:"not null" json:"address"`
	DeliveryDate *time.Time `json:"delivery_date,omitempty"`

	Order *Order `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"order,omitempty"`
}

// Favorite pairs a client and a product; the pair is unique so the UI can
// treat favoriting as a toggle.
type Favorite struct {
	ID        int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	ClientID  int64 `gorm:"uniqueIndex:idx_favorites_client_product;not null" json:"client_id"`
	ProductID int64 `gorm:"uniqueIndex:idx_favorites_client_product;not null" json:"product_id"`

	Client  *Client  `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"client,omitempty"`
	Product *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"product,omitempty"`
}
