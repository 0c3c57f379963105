package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rookies/ecommerce-api/internal/apperr"
	"github.com/rookies/ecommerce-api/internal/dto"
	"github.com/rookies/ecommerce-api/internal/model"
)

type cartFixture struct {
	svc      *CartService
	cartRepo *mockCartRepo
	products *mockProductRepo
	userID   uuid.UUID
	cartID   uuid.UUID
}

func newCartFixture(t *testing.T) *cartFixture {
	t.Helper()
	userRepo := newMockUserRepo()
	cartRepo := newMockCartRepo()
	products := newMockProductRepo()

	user, customer := userRepo.seed("shopper@example.com", "hash", model.RoleUser, true)
	cart := cartRepo.seedCart(customer.ID)

	return &cartFixture{
		svc:      NewCartService(cartRepo, products, userRepo),
		cartRepo: cartRepo,
		products: products,
		userID:   user.ID,
		cartID:   cart.ID,
	}
}

func (f *cartFixture) seedProduct(stock int) uuid.UUID {
	p := &model.Product{AvailableQuantity: stock}
	p.ID = uuid.New()
	f.products.products[p.ID] = p
	f.cartRepo.products[p.ID] = p
	return p.ID
}

func (f *cartFixture) itemQuantity(productID uuid.UUID) int {
	for _, item := range f.cartRepo.items {
		if item.ProductID == productID {
			return item.Quantity
		}
	}
	return 0
}

func TestCartService_AddToCart(t *testing.T) {
	f := newCartFixture(t)
	pid := f.seedProduct(10)

	resp, err := f.svc.AddToCart(context.Background(), f.userID, dto.CreateUpdateCartItemRequest{
		ProductID: pid, Quantity: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Count)
	assert.Equal(t, 3, f.itemQuantity(pid))
}

func TestCartService_AddToCart_MergesQuantity(t *testing.T) {
	f := newCartFixture(t)
	pid := f.seedProduct(10)

	_, err := f.svc.AddToCart(context.Background(), f.userID, dto.CreateUpdateCartItemRequest{ProductID: pid, Quantity: 3})
	require.NoError(t, err)
	resp, err := f.svc.AddToCart(context.Background(), f.userID, dto.CreateUpdateCartItemRequest{ProductID: pid, Quantity: 2})
	require.NoError(t, err)

	// One item per (cart, product); adding merges instead of duplicating.
	assert.Equal(t, int64(1), resp.Count)
	assert.Equal(t, 5, f.itemQuantity(pid))
}

func TestCartService_AddToCart_MergedTotalExceedsStock(t *testing.T) {
	f := newCartFixture(t)
	pid := f.seedProduct(4)

	_, err := f.svc.AddToCart(context.Background(), f.userID, dto.CreateUpdateCartItemRequest{ProductID: pid, Quantity: 3})
	require.NoError(t, err)

	_, err = f.svc.AddToCart(context.Background(), f.userID, dto.CreateUpdateCartItemRequest{ProductID: pid, Quantity: 2})
	assert.ErrorIs(t, err, apperr.ErrQuantityExceeded)
	assert.Equal(t, 3, f.itemQuantity(pid))
}

func TestCartService_AddToCart_ProductNotFound(t *testing.T) {
	f := newCartFixture(t)

	_, err := f.svc.AddToCart(context.Background(), f.userID, dto.CreateUpdateCartItemRequest{
		ProductID: uuid.New(), Quantity: 1,
	})
	assert.ErrorIs(t, err, apperr.ErrProductNotFound)
}

func TestCartService_UpdateCart_Overwrites(t *testing.T) {
	f := newCartFixture(t)
	pid := f.seedProduct(10)

	_, err := f.svc.AddToCart(context.Background(), f.userID, dto.CreateUpdateCartItemRequest{ProductID: pid, Quantity: 3})
	require.NoError(t, err)

	_, err = f.svc.UpdateCart(context.Background(), f.userID, dto.CreateUpdateCartItemRequest{ProductID: pid, Quantity: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, f.itemQuantity(pid))
}

func TestCartService_UpdateCart_ItemNotFound(t *testing.T) {
	f := newCartFixture(t)
	pid := f.seedProduct(10)

	_, err := f.svc.UpdateCart(context.Background(), f.userID, dto.CreateUpdateCartItemRequest{ProductID: pid, Quantity: 5})
	assert.ErrorIs(t, err, apperr.ErrCartItemNotFound)
}

func TestCartService_UpdateCart_ExceedsStock(t *testing.T) {
	f := newCartFixture(t)
	pid := f.seedProduct(4)

	_, err := f.svc.AddToCart(context.Background(), f.userID, dto.CreateUpdateCartItemRequest{ProductID: pid, Quantity: 2})
	require.NoError(t, err)

	_, err = f.svc.UpdateCart(context.Background(), f.userID, dto.CreateUpdateCartItemRequest{ProductID: pid, Quantity: 5})
	assert.ErrorIs(t, err, apperr.ErrQuantityExceeded)
	assert.Equal(t, 2, f.itemQuantity(pid))
}

func TestCartService_RemoveItems(t *testing.T) {
	f := newCartFixture(t)
	pid1 := f.seedProduct(10)
	pid2 := f.seedProduct(10)

	_, err := f.svc.AddToCart(context.Background(), f.userID, dto.CreateUpdateCartItemRequest{ProductID: pid1, Quantity: 1})
	require.NoError(t, err)
	_, err = f.svc.AddToCart(context.Background(), f.userID, dto.CreateUpdateCartItemRequest{ProductID: pid2, Quantity: 1})
	require.NoError(t, err)

	resp, err := f.svc.RemoveItems(context.Background(), f.userID, dto.RemoveCartItemsRequest{
		ProductIDs: []uuid.UUID{pid1, pid2},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), resp.Count)
	assert.Empty(t, f.cartRepo.items)
}

func TestCartService_RemoveItems_MissingItemFailsWhole(t *testing.T) {
	f := newCartFixture(t)
	pid := f.seedProduct(10)

	_, err := f.svc.AddToCart(context.Background(), f.userID, dto.CreateUpdateCartItemRequest{ProductID: pid, Quantity: 1})
	require.NoError(t, err)

	_, err = f.svc.RemoveItems(context.Background(), f.userID, dto.RemoveCartItemsRequest{
		ProductIDs: []uuid.UUID{pid, uuid.New()},
	})
	assert.ErrorIs(t, err, apperr.ErrCartItemNotFound)
	assert.Len(t, f.cartRepo.items, 1)
}

func TestCartService_GetCartDetail(t *testing.T) {
	f := newCartFixture(t)
	pid := f.seedProduct(10)
	f.products.products[pid].Name = "Keyboard"

	_, err := f.svc.AddToCart(context.Background(), f.userID, dto.CreateUpdateCartItemRequest{ProductID: pid, Quantity: 2})
	require.NoError(t, err)

	page, err := f.svc.GetCartDetail(context.Background(), f.userID, dto.PageQuery{Page: 1, Size: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Keyboard", page.Items[0].ProductName)
	assert.Equal(t, 2, page.Items[0].Quantity)
}

func TestCartService_NoCustomerProfile(t *testing.T) {
	f := newCartFixture(t)
	pid := f.seedProduct(10)

	_, err := f.svc.AddToCart(context.Background(), uuid.New(), dto.CreateUpdateCartItemRequest{
		ProductID: pid, Quantity: 1,
	})
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}
