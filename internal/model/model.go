package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Base carries the identity and timestamps shared by every entity.
type Base struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Audit records which user created and last modified an entity.
type Audit struct {
	CreatedBy  uuid.UUID
	ModifiedBy uuid.UUID
}

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	Base
	Email    string
	Password string
	Role     Role
	IsActive bool
}

// Customer is the commerce-facing profile linked 1:1 to a User.
type Customer struct {
	Base
	UserID    uuid.UUID
	FirstName string
	LastName  string
	Phone     string
}

func (c Customer) FullName() string { return c.FirstName + " " + c.LastName }

// Account is a user row joined with its customer profile.
type Account struct {
	User
	FirstName string
	LastName  string
	Phone     string
}

type Category struct {
	Base
	Audit
	Name        string
	Description string
	Slug        string
	IsDeleted   bool
}

type Product struct {
	Base
	Audit
	CategoryID        uuid.UUID
	Name              string
	Description       string
	Price             decimal.Decimal
	AvailableQuantity int
	ImageURL          string
	Slug              string
	IsDeleted         bool
}

// FeaturedProduct is a promotional placement of a product over a closed date
// window. Windows for the same product must never overlap.
type FeaturedProduct struct {
	Base
	Audit
	ProductID   uuid.UUID
	StartDate   time.Time
	EndDate     time.Time
	Description string
}

// Overlaps reports whether the window shares at least one day with
// [start, end], both intervals closed.
func (f FeaturedProduct) Overlaps(start, end time.Time) bool {
	return !f.StartDate.After(end) && !start.After(f.EndDate)
}

// FeaturedProductRow is a featured window joined with its product snapshot
// for listings.
type FeaturedProductRow struct {
	FeaturedProduct
	ProductName  string
	ProductSlug  string
	ProductPrice decimal.Decimal
	ImageURL     string
	IsDeleted    bool
}

type Cart struct {
	Base
	CustomerID uuid.UUID
	Items      []CartItem
}

type CartItem struct {
	Base
	CartID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int
}

// CartItemDetail is a cart item joined with a display snapshot of its
// product. Stock is informational here; it is re-checked on mutation.
type CartItemDetail struct {
	CartItem
	ProductName       string
	ProductSlug       string
	Price             decimal.Decimal
	ImageURL          string
	AvailableQuantity int
}

type Review struct {
	Base
	CustomerID uuid.UUID
	ProductID  uuid.UUID
	Rating     int
	Comment    string
}

// ReviewRow is a review joined with reviewer and product names.
type ReviewRow struct {
	Review
	CustomerName string
	ProductName  string
}

type RatingCount struct {
	Rating  int
	Count   int64
	Percent float64
}

type ReviewStatistic struct {
	Count         int64
	AverageRating float64
	Ratings       []RatingCount
}

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusReturned   OrderStatus = "returned"
	OrderStatusRefunded   OrderStatus = "refunded"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled, OrderStatusReturned, OrderStatusRefunded:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

type PaymentMethod string

const (
	PaymentMethodCard PaymentMethod = "card"
	PaymentMethodCOD  PaymentMethod = "cod"
	PaymentMethodBank PaymentMethod = "bank"
)

// Order is a snapshot of the cart at checkout time with captured prices.
type Order struct {
	Base
	CustomerID      uuid.UUID
	Status          OrderStatus
	PaymentStatus   PaymentStatus
	PaymentMethod   PaymentMethod
	ShippingAddress string
	TotalPrice      decimal.Decimal
	Items           []OrderItem
}

type OrderItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Quantity  int
	Price     decimal.Decimal
}

type ShippingAddress struct {
	Base
	CustomerID uuid.UUID
	Recipient  string
	Phone      string
	Line1      string
	City       string
	PostalCode string
	IsDefault  bool
}

// OrderMessage is published at checkout and consumed by the order worker.
type OrderMessage struct {
	OrderID    uuid.UUID `json:"order_id"`
	CustomerID uuid.UUID `json:"customer_id"`
}
