package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/rookies/ecommerce-api/internal/apperr"
	"github.com/rookies/ecommerce-api/internal/dto"
	"github.com/rookies/ecommerce-api/internal/model"
	"github.com/rookies/ecommerce-api/internal/repository"
)

// OrderPublisher hands a freshly created order to the asynchronous
// fulfillment pipeline.
type OrderPublisher interface {
	PublishOrderCreated(ctx context.Context, msg model.OrderMessage) error
}

type OrderService struct {
	orderRepo   repository.OrderRepository
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	publisher   OrderPublisher
	log         *slog.Logger
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	publisher OrderPublisher,
	log *slog.Logger,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		publisher:   publisher,
		log:         log,
	}
}

// Checkout snapshots the cart into a pending order with prices captured at
// checkout time, hands it to the fulfillment queue, and empties the cart.
// Stock is reserved by the worker, not here.
func (s *OrderService) Checkout(ctx context.Context, userID uuid.UUID, req dto.CheckoutRequest) (*dto.OrderResponse, error) {
	customer, err := s.userRepo.CustomerByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperr.ErrUnauthorized
	}
	cart, err := s.cartRepo.GetByCustomer(ctx, customer.ID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, apperr.ErrResourceNotFound
	}

	items, err := s.cartRepo.ListItems(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, apperr.ErrEmptyCart
	}

	order := &model.Order{
		CustomerID:      customer.ID,
		Status:          model.OrderStatusPending,
		PaymentStatus:   model.PaymentStatusPending,
		PaymentMethod:   req.PaymentMethod,
		ShippingAddress: req.ShippingAddress,
	}
	total := decimal.Zero
	for _, item := range items {
		product, err := s.productRepo.GetByID(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil || product.IsDeleted {
			return nil, apperr.ErrProductNotFound
		}
		order.Items = append(order.Items, model.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     product.Price,
		})
		total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	order.TotalPrice = total

	if err := s.orderRepo.CreateWithItems(ctx, order); err != nil {
		return nil, err
	}

	msg := model.OrderMessage{OrderID: order.ID, CustomerID: customer.ID}
	if err := s.publisher.PublishOrderCreated(ctx, msg); err != nil {
		// The order stays pending; a later republish or manual retry picks
		// it up.
		s.log.Error("publish order", "order_id", order.ID, "error", err)
	}

	if err := s.cartRepo.ClearCart(ctx, cart.ID); err != nil {
		return nil, fmt.Errorf("clear cart: %w", err)
	}

	resp := toOrderResponse(order)
	return &resp, nil
}

// GetByID returns the order to its owner; admins may read any order.
func (s *OrderService) GetByID(ctx context.Context, userID uuid.UUID, role model.Role, id uuid.UUID) (*dto.OrderResponse, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperr.ErrOrderNotFound
	}

	if role != model.RoleAdmin {
		customer, err := s.userRepo.CustomerByUserID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if customer == nil || order.CustomerID != customer.ID {
			return nil, apperr.ErrAccessDenied
		}
	}

	resp := toOrderResponse(order)
	return &resp, nil
}

func (s *OrderService) ListMine(ctx context.Context, userID uuid.UUID, q dto.PageQuery) (*dto.Page[dto.OrderResponse], error) {
	customer, err := s.userRepo.CustomerByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperr.ErrUnauthorized
	}

	orders, total, err := s.orderRepo.ListByCustomer(ctx, customer.ID, q.Size, q.Offset(), q.SortBy, q.SortDir)
	if err != nil {
		return nil, err
	}
	items := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		items = append(items, toOrderResponse(&orders[i]))
	}
	return &dto.Page[dto.OrderResponse]{Items: items, Total: total, Page: q.Page, Size: q.Size}, nil
}

func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, req dto.UpdateOrderStatusRequest) error {
	if !req.Status.Valid() {
		return apperr.ErrInvalidStatus
	}
	err := s.orderRepo.UpdateStatus(ctx, id, req.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.ErrOrderNotFound
	}
	return err
}

func toOrderResponse(o *model.Order) dto.OrderResponse {
	resp := dto.OrderResponse{
		ID:              o.ID,
		Status:          o.Status,
		PaymentStatus:   o.PaymentStatus,
		PaymentMethod:   o.PaymentMethod,
		ShippingAddress: o.ShippingAddress,
		TotalPrice:      o.TotalPrice,
		CreatedAt:       o.CreatedAt,
	}
	for _, item := range o.Items {
		resp.Items = append(resp.Items, dto.OrderItemResponse{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	return resp
}
