package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rookies/ecommerce-api/internal/model"
)

// APIResponse is the envelope every endpoint answers with. Errors carry a
// nil Data.
type APIResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
}

type Page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Size  int   `json:"size"`
}

// PageQuery binds the shared pagination and sorting query parameters. The
// sort field is validated against a per-repository whitelist, not here.
type PageQuery struct {
	Page    int    `form:"page,default=1" binding:"min=1"`
	Size    int    `form:"size,default=10" binding:"min=1,max=100"`
	SortBy  string `form:"sortBy,default=created_at"`
	SortDir string `form:"sortDir,default=desc"`
}

func (q PageQuery) Offset() int { return (q.Page - 1) * q.Size }

// --- Auth ---

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Phone     string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type LoginResponse struct {
	Token         string       `json:"token"`
	RefreshToken  string       `json:"refresh_token"`
	ExpiresAt     time.Time    `json:"expires_at"`
	User          UserResponse `json:"user"`
	CartItemCount int64        `json:"cart_item_count"`
}

type UserResponse struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Phone     string     `json:"phone,omitempty"`
	Role      model.Role `json:"role"`
	IsActive  bool       `json:"is_active"`
}

type UpdateUserInfoRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Phone     string `json:"phone"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

type ToggleUserStatusRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// --- Category ---

type CreateUpdateCategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type CategoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Slug        string    `json:"slug"`
	IsDeleted   bool      `json:"is_deleted"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// --- Product ---

// CreateUpdateProductRequest is the JSON part of the multipart product
// endpoints; the image file travels in a separate part.
type CreateUpdateProductRequest struct {
	Name              string          `json:"name" binding:"required"`
	Description       string          `json:"description" binding:"required"`
	Price             decimal.Decimal `json:"price" binding:"required"`
	AvailableQuantity int             `json:"available_quantity" binding:"min=0"`
	CategoryID        uuid.UUID       `json:"category_id" binding:"required"`
}

type ProductResponse struct {
	ID                uuid.UUID       `json:"id"`
	Name              string          `json:"name"`
	Price             decimal.Decimal `json:"price"`
	AvailableQuantity int             `json:"available_quantity"`
	ImageURL          string          `json:"image_url"`
	Slug              string          `json:"slug"`
	IsDeleted         bool            `json:"is_deleted"`
}

type ProductDetailResponse struct {
	ProductResponse
	Description string    `json:"description"`
	CategoryID  uuid.UUID `json:"category_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProductAdminDetail adds resolved auditor names for the admin console.
type ProductAdminDetail struct {
	ProductDetailResponse
	CreatedBy  string `json:"created_by"`
	ModifiedBy string `json:"modified_by"`
}

type ToggleResponse struct {
	IsDeleted bool `json:"is_deleted"`
}

// --- Featured products ---

// Date is a day-precision timestamp serialized as "2006-01-02".
type Date struct{ time.Time }

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(time.DateOnly) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' {
		s = s[1 : len(s)-1]
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

type CreateFeaturedProductRequest struct {
	ProductID   uuid.UUID `json:"product_id" binding:"required"`
	StartDate   Date      `json:"start_date" binding:"required"`
	EndDate     Date      `json:"end_date" binding:"required"`
	Description string    `json:"description"`
}

type UpdateFeaturedProductRequest struct {
	StartDate   Date   `json:"start_date" binding:"required"`
	EndDate     Date   `json:"end_date" binding:"required"`
	Description string `json:"description"`
}

type FeaturedProductResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	ProductSlug string          `json:"product_slug"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url"`
	StartDate   Date            `json:"start_date"`
	EndDate     Date            `json:"end_date"`
	Description string          `json:"description"`
}

// --- Cart ---

type CreateUpdateCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

type RemoveCartItemsRequest struct {
	ProductIDs []uuid.UUID `json:"product_ids" binding:"required,min=1"`
}

// CartQuantityResponse reports the distinct-item count after a mutation.
type CartQuantityResponse struct {
	Count int64 `json:"count"`
}

type CartItemResponse struct {
	ProductID         uuid.UUID       `json:"product_id"`
	ProductName       string          `json:"product_name"`
	ProductSlug       string          `json:"product_slug"`
	Price             decimal.Decimal `json:"price"`
	ImageURL          string          `json:"image_url"`
	Quantity          int             `json:"quantity"`
	AvailableQuantity int             `json:"available_quantity"`
}

// --- Review ---

type CreateReviewRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Rating    int       `json:"rating" binding:"required,min=1,max=5"`
	Comment   string    `json:"comment"`
}

type UpdateReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

type ReviewResponse struct {
	ID           uuid.UUID `json:"id"`
	ProductID    uuid.UUID `json:"product_id"`
	ProductName  string    `json:"product_name,omitempty"`
	CustomerName string    `json:"customer_name,omitempty"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment"`
	CreatedAt    time.Time `json:"created_at"`
}

type RatingCountResponse struct {
	Rating  int     `json:"rating"`
	Count   int64   `json:"count"`
	Percent float64 `json:"percent"`
}

type ReviewStatisticResponse struct {
	Count         int64                 `json:"count"`
	AverageRating float64               `json:"average_rating"`
	Ratings       []RatingCountResponse `json:"ratings"`
}

// --- Order ---

type CheckoutRequest struct {
	PaymentMethod   model.PaymentMethod `json:"payment_method" binding:"required,oneof=card cod bank"`
	ShippingAddress string              `json:"shipping_address" binding:"required"`
}

type UpdateOrderStatusRequest struct {
	Status model.OrderStatus `json:"status" binding:"required"`
}

type OrderResponse struct {
	ID              uuid.UUID           `json:"id"`
	Status          model.OrderStatus   `json:"status"`
	PaymentStatus   model.PaymentStatus `json:"payment_status"`
	PaymentMethod   model.PaymentMethod `json:"payment_method"`
	ShippingAddress string              `json:"shipping_address"`
	TotalPrice      decimal.Decimal     `json:"total_price"`
	Items           []OrderItemResponse `json:"items"`
	CreatedAt       time.Time           `json:"created_at"`
}

type OrderItemResponse struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}
