// Package apperr defines the domain error taxonomy. Services return these
// errors (possibly wrapped); the handler layer translates them to HTTP
// statuses and never leaks storage-level detail to the client.
package apperr

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
)

type Error struct {
	Code    string
	Message string
	Status  int
}

func (e *Error) Error() string { return e.Message }

func New(code, message string, status int) *Error {
	return &Error{Code: code, Message: message, Status: status}
}

var (
	ErrCategoryNotFound = New("CATEGORY_NOT_FOUND", "Category not found", http.StatusNotFound)
	ErrProductNotFound  = New("PRODUCT_NOT_FOUND", "Product not found", http.StatusNotFound)
	ErrCartItemNotFound = New("CART_ITEM_NOT_FOUND", "Cart item not found", http.StatusNotFound)
	ErrOrderNotFound    = New("ORDER_NOT_FOUND", "Order not found", http.StatusNotFound)
	ErrResourceNotFound = New("RESOURCE_NOT_FOUND", "Resource not found", http.StatusNotFound)

	ErrInvalidImageFile   = New("INVALID_IMAGE_FILE", "Invalid image file", http.StatusBadRequest)
	ErrQuantityExceeded   = New("QUANTITY_EXCEEDED", "Quantity exceeds available stock", http.StatusBadRequest)
	ErrOverlappingWindow  = New("OVERLAPPING_FEATURED_PRODUCT", "Featured window overlaps an existing one", http.StatusBadRequest)
	ErrInvalidDateRange   = New("INVALID_DATE_RANGE", "End date must not be before start date", http.StatusBadRequest)
	ErrInvalidSortField   = New("INVALID_SORT_FIELD", "Invalid sort field", http.StatusBadRequest)
	ErrAlreadyReviewed    = New("ALREADY_REVIEWED", "You have already reviewed this product", http.StatusBadRequest)
	ErrEmailExists        = New("EMAIL_ALREADY_EXISTS", "Email already exists", http.StatusBadRequest)
	ErrCategoryNameExists = New("CATEGORY_NAME_EXISTED", "Category name already exists", http.StatusBadRequest)
	ErrEmptyCart          = New("EMPTY_CART", "Cart is empty", http.StatusBadRequest)
	ErrInvalidRequest     = New("INVALID_REQUEST", "Invalid request data", http.StatusBadRequest)
	ErrInvalidStatus      = New("INVALID_STATUS", "Invalid order status", http.StatusBadRequest)

	ErrLoginFailed     = New("LOGIN_FAILED", "Incorrect email or password", http.StatusUnauthorized)
	ErrUnauthorized    = New("UNAUTHORIZED", "Unauthorized request", http.StatusUnauthorized)
	ErrInvalidPassword = New("INVALID_PASSWORD", "Incorrect password", http.StatusUnauthorized)

	ErrUserDisabled = New("USER_DISABLED", "User is locked", http.StatusForbidden)
	ErrAccessDenied = New("ACCESS_DENIED", "Access denied", http.StatusForbidden)
)

const uniqueViolation = "23505"

// FromConstraint maps a Postgres unique violation to the domain error for its
// constraint. Any other error is returned unchanged.
func FromConstraint(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return err
	}
	switch pgErr.ConstraintName {
	case "users_email_key":
		return ErrEmailExists
	case "reviews_customer_product_key":
		return ErrAlreadyReviewed
	case "categories_name_key":
		return ErrCategoryNameExists
	default:
		return ErrInvalidRequest
	}
}

// Status resolves err to an HTTP status and client-facing message, falling
// back to 500 without exposing the underlying text.
func Status(err error) (int, string) {
	var e *Error
	if errors.As(err, &e) {
		return e.Status, e.Message
	}
	return http.StatusInternalServerError, "Unknown error"
}
