package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/rookies/ecommerce-api/internal/apperr"
	"github.com/rookies/ecommerce-api/internal/dto"
	"github.com/rookies/ecommerce-api/internal/model"
	"github.com/rookies/ecommerce-api/internal/repository"
)

// CartService keeps at most one cart item per (cart, product) and enforces
// the available-stock ceiling. Every mutation runs its read-check-write
// sequence inside one transaction with the product row locked, so two
// concurrent adds for the same cart and product cannot both pass the stock
// check.
type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository, userRepo repository.UserRepository) *CartService {
	return &CartService{cartRepo: cartRepo, productRepo: productRepo, userRepo: userRepo}
}

func (s *CartService) cartOf(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
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
	return cart, nil
}

// AddToCart merges quantity into the existing item for (cart, product), or
// creates the item when absent. The merged total must fit the available
// stock.
func (s *CartService) AddToCart(ctx context.Context, userID uuid.UUID, req dto.CreateUpdateCartItemRequest) (*dto.CartQuantityResponse, error) {
	cart, err := s.cartOf(ctx, userID)
	if err != nil {
		return nil, err
	}

	tx, err := s.cartRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	product, err := s.productRepo.GetForUpdate(ctx, tx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperr.ErrProductNotFound
	}
	if product.AvailableQuantity < req.Quantity {
		return nil, apperr.ErrQuantityExceeded
	}

	item, err := s.cartRepo.GetItemForUpdate(ctx, tx, cart.ID, req.ProductID)
	if err != nil {
		return nil, err
	}
	switch {
	case item == nil:
		item = &model.CartItem{CartID: cart.ID, ProductID: req.ProductID, Quantity: req.Quantity}
		if err := s.cartRepo.InsertItem(ctx, tx, item); err != nil {
			return nil, err
		}
	case product.AvailableQuantity < item.Quantity+req.Quantity:
		return nil, apperr.ErrQuantityExceeded
	default:
		if err := s.cartRepo.UpdateItemQuantity(ctx, tx, item.ID, item.Quantity+req.Quantity); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.quantity(ctx, cart.ID)
}

// UpdateCart overwrites the item's quantity; the item must already exist.
func (s *CartService) UpdateCart(ctx context.Context, userID uuid.UUID, req dto.CreateUpdateCartItemRequest) (*dto.CartQuantityResponse, error) {
	cart, err := s.cartOf(ctx, userID)
	if err != nil {
		return nil, err
	}

	tx, err := s.cartRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	product, err := s.productRepo.GetForUpdate(ctx, tx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperr.ErrProductNotFound
	}

	item, err := s.cartRepo.GetItemForUpdate(ctx, tx, cart.ID, req.ProductID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperr.ErrCartItemNotFound
	}
	if product.AvailableQuantity < req.Quantity {
		return nil, apperr.ErrQuantityExceeded
	}

	if err := s.cartRepo.UpdateItemQuantity(ctx, tx, item.ID, req.Quantity); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.quantity(ctx, cart.ID)
}

// RemoveItems deletes the items for the given products all-or-nothing: every
// product must have an item in the cart or the whole call fails and nothing
// is removed.
func (s *CartService) RemoveItems(ctx context.Context, userID uuid.UUID, req dto.RemoveCartItemsRequest) (*dto.CartQuantityResponse, error) {
	cart, err := s.cartOf(ctx, userID)
	if err != nil {
		return nil, err
	}

	tx, err := s.cartRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var itemIDs []uuid.UUID
	for _, productID := range req.ProductIDs {
		item, err := s.cartRepo.GetItemForUpdate(ctx, tx, cart.ID, productID)
		if err != nil {
			return nil, err
		}
		if item == nil {
			return nil, apperr.ErrCartItemNotFound
		}
		itemIDs = append(itemIDs, item.ID)
	}
	for _, itemID := range itemIDs {
		if err := s.cartRepo.DeleteItem(ctx, tx, itemID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.quantity(ctx, cart.ID)
}

// GetCartDetail lists the cart with product snapshots for display; it does
// not re-validate stock.
func (s *CartService) GetCartDetail(ctx context.Context, userID uuid.UUID, q dto.PageQuery) (*dto.Page[dto.CartItemResponse], error) {
	cart, err := s.cartOf(ctx, userID)
	if err != nil {
		return nil, err
	}

	details, total, err := s.cartRepo.ListDetails(ctx, cart.ID, q.Size, q.Offset(), q.SortBy, q.SortDir)
	if err != nil {
		return nil, err
	}

	items := make([]dto.CartItemResponse, 0, len(details))
	for _, d := range details {
		items = append(items, dto.CartItemResponse{
			ProductID:         d.ProductID,
			ProductName:       d.ProductName,
			ProductSlug:       d.ProductSlug,
			Price:             d.Price,
			ImageURL:          d.ImageURL,
			Quantity:          d.Quantity,
			AvailableQuantity: d.AvailableQuantity,
		})
	}
	return &dto.Page[dto.CartItemResponse]{Items: items, Total: total, Page: q.Page, Size: q.Size}, nil
}

func (s *CartService) quantity(ctx context.Context, cartID uuid.UUID) (*dto.CartQuantityResponse, error) {
	count, err := s.cartRepo.Count(ctx, cartID)
	if err != nil {
		return nil, err
	}
	return &dto.CartQuantityResponse{Count: count}, nil
}
