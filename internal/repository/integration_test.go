package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rookies/ecommerce-api/internal/apperr"
	"github.com/rookies/ecommerce-api/internal/model"
)

func TestUserRepo_CreateWithCustomer(t *testing.T) {
	cleanupAll(t)
	ctx := context.Background()
	repo := NewUserRepository(testPool)

	user, customer, cart := seedAccount(t, "jane@example.com")
	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, user.ID, customer.UserID)
	assert.Equal(t, customer.ID, cart.CustomerID)

	found, err := repo.GetByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, user.ID, found.ID)
	assert.True(t, found.IsActive)

	missing, err := repo.GetByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserRepo_DuplicateEmail(t *testing.T) {
	cleanupAll(t)
	ctx := context.Background()
	repo := NewUserRepository(testPool)

	seedAccount(t, "dup@example.com")

	user := &model.User{Email: "dup@example.com", Password: "h", Role: model.RoleUser, IsActive: true}
	err := repo.CreateWithCustomer(ctx, user, &model.Customer{FirstName: "A", LastName: "B"})
	require.Error(t, err)
	assert.ErrorIs(t, apperr.FromConstraint(err), apperr.ErrEmailExists)
}

func TestUserRepo_ToggleActive(t *testing.T) {
	cleanupAll(t)
	ctx := context.Background()
	repo := NewUserRepository(testPool)

	seedAccount(t, "toggle@example.com")

	active, err := repo.ToggleActive(ctx, "toggle@example.com")
	require.NoError(t, err)
	assert.False(t, active)

	active, err = repo.ToggleActive(ctx, "toggle@example.com")
	require.NoError(t, err)
	assert.True(t, active)

	_, err = repo.ToggleActive(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestUserRepo_ListByRoleAndActive(t *testing.T) {
	cleanupAll(t)
	ctx := context.Background()
	repo := NewUserRepository(testPool)

	seedAccount(t, "a@example.com")
	seedAccount(t, "b@example.com")
	_, err := repo.ToggleActive(ctx, "b@example.com")
	require.NoError(t, err)

	accounts, total, err := repo.ListByRoleAndActive(ctx, model.RoleUser, true, 10, 0, "email", "asc")
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, accounts, 1)
	assert.Equal(t, "a@example.com", accounts[0].Email)

	_, _, err = repo.ListByRoleAndActive(ctx, model.RoleUser, true, 10, 0, "password", "asc")
	assert.ErrorIs(t, err, apperr.ErrInvalidSortField)
}

func TestCategoryRepo_UniqueName(t *testing.T) {
	cleanupAll(t)
	ctx := context.Background()
	repo := NewCategoryRepository(testPool)

	seedCategory(t, "Books")

	dup := &model.Category{Name: "Books", Slug: "books-2"}
	dup.CreatedBy = uuid.New()
	err := repo.Create(ctx, dup)
	assert.ErrorIs(t, err, apperr.ErrCategoryNameExists)
}

func TestCategoryRepo_UpdateAndToggle(t *testing.T) {
	cleanupAll(t)
	ctx := context.Background()
	repo := NewCategoryRepository(testPool)

	category := seedCategory(t, "Books")

	category.Name = "Paper Books"
	category.Slug = "paper-books"
	require.NoError(t, repo.Update(ctx, category))

	found, err := repo.GetByID(ctx, category.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Paper Books", found.Name)

	deleted, err := repo.Toggle(ctx, category.ID, uuid.New())
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = repo.Toggle(ctx, uuid.New(), uuid.New())
	assert.ErrorIs(t, err, apperr.ErrCategoryNotFound)
}

func TestProductRepo_CRUD(t *testing.T) {
	cleanupAll(t)
	ctx := context.Background()
	repo := NewProductRepository(testPool)

	category := seedCategory(t, "Electronics")
	product := seedProduct(t, category.ID, "Gaming Mouse", 10)

	found, err := repo.GetByID(ctx, product.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Gaming Mouse", found.Name)
	assert.True(t, found.Price.Equal(decimal.NewFromFloat(19.99)))

	bySlug, err := repo.GetBySlug(ctx, product.Slug)
	require.NoError(t, err)
	require.NotNil(t, bySlug)
	assert.Equal(t, product.ID, bySlug.ID)

	product.Name = "Office Mouse"
	require.NoError(t, repo.Update(ctx, product))
	found, err = repo.GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Office Mouse", found.Name)

	deleted, err := repo.Toggle(ctx, product.ID, uuid.New())
	require.NoError(t, err)
	assert.True(t, deleted)

	hidden, total, err := repo.ListByDeleted(ctx, true, 10, 0, "created_at", "desc")
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, hidden, 1)
	assert.Equal(t, product.ID, hidden[0].ID)
}

func TestProductRepo_SearchAndListByCategory(t *testing.T) {
	cleanupAll(t)
	ctx := context.Background()
	repo := NewProductRepository(testPool)

	electronics := seedCategory(t, "Electronics")
	books := seedCategory(t, "Books")
	seedProduct(t, electronics.ID, "Gaming Mouse", 10)
	seedProduct(t, electronics.ID, "Gaming Keyboard", 10)
	seedProduct(t, books.ID, "Go in Practice", 10)

	results, total, err := repo.SearchByName(ctx, "gaming", 10, 0, "name", "asc")
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, results, 2)
	assert.Equal(t, "Gaming Keyboard", results[0].Name)

	byCategory, total, err := repo.ListByCategory(ctx, books.ID, 10, 0, "name", "asc")
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, byCategory, 1)
	assert.Equal(t, "Go in Practice", byCategory[0].Name)
}

func TestProductRepo_DecrementStock(t *testing.T) {
	cleanupAll(t)
	ctx := context.Background()
	repo := NewProductRepository(testPool)

	category := seedCategory(t, "Electronics")
	product := seedProduct(t, category.ID, "Gaming Mouse", 5)

	tx, err := testPool.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.DecrementStock(ctx, tx, product.ID, 3))
	require.NoError(t, tx.Commit(ctx))

	found, err := repo.GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, found.AvailableQuantity)

	tx, err = testPool.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)
	assert.Error(t, repo.DecrementStock(ctx, tx, product.ID, 3))
}

func TestFeaturedRepo_WindowLifecycle(t *testing.T) {
	cleanupAll(t)
	ctx := context.Background()
	repo := NewFeaturedProductRepository(testPool)

	category := seedCategory(t, "Electronics")
	product := seedProduct(t, category.ID, "Gaming Mouse", 10)

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)

	exists, err := repo.LockProduct(ctx, tx, product.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	fp := &model.FeaturedProduct{
		ProductID:   product.ID,
		StartDate:   time.Now().AddDate(0, 0, -1),
		EndDate:     time.Now().AddDate(0, 0, 1),
		Description: "launch week",
	}
	fp.CreatedBy = uuid.New()
	fp.ModifiedBy = fp.CreatedBy
	require.NoError(t, repo.Create(ctx, tx, fp))

	windows, err := repo.ListByProduct(ctx, tx, product.ID)
	require.NoError(t, err)
	require.Len(t, windows, 1)
	require.NoError(t, tx.Commit(ctx))

	row, err := repo.GetRowByID(ctx, fp.ID)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, "Gaming Mouse", row.ProductName)

	active, total, err := repo.ListActive(ctx, time.Now(), 10, 0, "start_date", "asc")
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, active, 1)

	require.NoError(t, repo.Delete(ctx, fp.ID))
	assert.ErrorIs(t, repo.Delete(ctx, fp.ID), pgx.ErrNoRows)
}

func TestFeaturedRepo_ListActiveHidesDeletedProducts(t *testing.T) {
	cleanupAll(t)
	ctx := context.Background()
	repo := NewFeaturedProductRepository(testPool)
	productRepo := NewProductRepository(testPool)

	category := seedCategory(t, "Electronics")
	product := seedProduct(t, category.ID, "Gaming Mouse", 10)

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)
	fp := &model.FeaturedProduct{
		ProductID: product.ID,
		StartDate: time.Now().AddDate(0, 0, -1),
		EndDate:   time.Now().AddDate(0, 0, 1),
	}
	fp.CreatedBy = uuid.New()
	fp.ModifiedBy = fp.CreatedBy
	require.NoError(t, repo.Create(ctx, tx, fp))
	require.NoError(t, tx.Commit(ctx))

	_, err = productRepo.Toggle(ctx, product.ID, uuid.New())
	require.NoError(t, err)

	_, total, err := repo.ListActive(ctx, time.Now(), 10, 0, "start_date", "asc")
	require.NoError(t, err)
	assert.Zero(t, total)

	all, total, err := repo.ListAll(ctx, 10, 0, "start_date", "asc")
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, all, 1)
	assert.True(t, all[0].IsDeleted)
}

func TestCartRepo_ItemLifecycle(t *testing.T) {
	cleanupAll(t)
	ctx := context.Background()
	repo := NewCartRepository(testPool)

	_, _, cart := seedAccount(t, "cart@example.com")
	category := seedCategory(t, "Electronics")
	product := seedProduct(t, category.ID, "Gaming Mouse", 10)

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)
	item := &model.CartItem{CartID: cart.ID, ProductID: product.ID, Quantity: 2}
	require.NoError(t, repo.InsertItem(ctx, tx, item))
	require.NoError(t, tx.Commit(ctx))

	tx, err = repo.BeginTx(ctx)
	require.NoError(t, err)
	locked, err := repo.GetItemForUpdate(ctx, tx, cart.ID, product.ID)
	require.NoError(t, err)
	require.NotNil(t, locked)
	assert.Equal(t, 2, locked.Quantity)
	require.NoError(t, repo.UpdateItemQuantity(ctx, tx, locked.ID, 5))
	require.NoError(t, tx.Commit(ctx))

	details, total, err := repo.ListDetails(ctx, cart.ID, 10, 0, "created_at", "asc")
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, details, 1)
	assert.Equal(t, 5, details[0].Quantity)
	assert.Equal(t, "Gaming Mouse", details[0].ProductName)

	count, err := repo.Count(ctx, cart.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	require.NoError(t, repo.ClearCart(ctx, cart.ID))
	items, err := repo.ListItems(ctx, cart.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCartRepo_DuplicateProductRejected(t *testing.T) {
	cleanupAll(t)
	ctx := context.Background()
	repo := NewCartRepository(testPool)

	_, _, cart := seedAccount(t, "cart2@example.com")
	category := seedCategory(t, "Electronics")
	product := seedProduct(t, category.ID, "Gaming Mouse", 10)

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.InsertItem(ctx, tx, &model.CartItem{CartID: cart.ID, ProductID: product.ID, Quantity: 1}))
	require.NoError(t, tx.Commit(ctx))

	tx, err = repo.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)
	err = repo.InsertItem(ctx, tx, &model.CartItem{CartID: cart.ID, ProductID: product.ID, Quantity: 1})
	assert.Error(t, err)
}

func TestReviewRepo_DuplicateAndStatistic(t *testing.T) {
	cleanupAll(t)
	ctx := context.Background()
	repo := NewReviewRepository(testPool)

	_, customer, _ := seedAccount(t, "reviewer@example.com")
	_, other, _ := seedAccount(t, "reviewer2@example.com")
	category := seedCategory(t, "Electronics")
	product := seedProduct(t, category.ID, "Gaming Mouse", 10)

	require.NoError(t, repo.Create(ctx, &model.Review{
		CustomerID: customer.ID, ProductID: product.ID, Rating: 5, Comment: "great",
	}))
	err := repo.Create(ctx, &model.Review{
		CustomerID: customer.ID, ProductID: product.ID, Rating: 1, Comment: "again",
	})
	assert.ErrorIs(t, err, apperr.ErrAlreadyReviewed)

	require.NoError(t, repo.Create(ctx, &model.Review{
		CustomerID: other.ID, ProductID: product.ID, Rating: 3,
	}))

	stat, err := repo.Statistic(ctx, product.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stat.Count)
	assert.InDelta(t, 4.0, stat.AverageRating, 0.001)
	require.Len(t, stat.Ratings, 5)
	assert.Equal(t, 5, stat.Ratings[0].Rating)
	assert.EqualValues(t, 1, stat.Ratings[0].Count)
	assert.InDelta(t, 50.0, stat.Ratings[0].Percent, 0.001)

	rows, total, err := repo.ListByProduct(ctx, product.ID, 10, 0, "rating", "desc")
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, rows, 2)
	assert.Equal(t, "Jane Doe", rows[0].CustomerName)
	assert.Equal(t, "Gaming Mouse", rows[0].ProductName)
}

func TestOrderRepo_CreateWithItemsAndStatus(t *testing.T) {
	cleanupAll(t)
	ctx := context.Background()
	repo := NewOrderRepository(testPool)

	_, customer, _ := seedAccount(t, "buyer@example.com")
	category := seedCategory(t, "Electronics")
	product := seedProduct(t, category.ID, "Gaming Mouse", 10)

	order := &model.Order{
		CustomerID:      customer.ID,
		Status:          model.OrderStatusPending,
		PaymentStatus:   model.PaymentStatusPending,
		PaymentMethod:   model.PaymentMethodCOD,
		ShippingAddress: "1 Main St",
		TotalPrice:      decimal.NewFromFloat(39.98),
		Items: []model.OrderItem{
			{ProductID: product.ID, Quantity: 2, Price: product.Price},
		},
	}
	require.NoError(t, repo.CreateWithItems(ctx, order))
	assert.NotEqual(t, uuid.Nil, order.ID)

	found, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, model.OrderStatusPending, found.Status)
	require.Len(t, found.Items, 1)
	assert.Equal(t, 2, found.Items[0].Quantity)

	require.NoError(t, repo.UpdateStatus(ctx, order.ID, model.OrderStatusShipped))
	assert.ErrorIs(t, repo.UpdateStatus(ctx, uuid.New(), model.OrderStatusShipped), pgx.ErrNoRows)

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.UpdateStatusTx(ctx, tx, order.ID, model.OrderStatusDelivered))
	require.NoError(t, tx.Commit(ctx))

	orders, total, err := repo.ListByCustomer(ctx, customer.ID, 10, 0, "created_at", "desc")
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, orders, 1)
	assert.Equal(t, model.OrderStatusDelivered, orders[0].Status)
}
