package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rookies/ecommerce-api/internal/apperr"
	"github.com/rookies/ecommerce-api/internal/model"
)

// fakeTx satisfies pgx.Tx for services that run their checks inside a
// transaction. Commit and Rollback are no-ops; everything else panics if a
// test reaches it.
type fakeTx struct{ pgx.Tx }

func (fakeTx) Commit(context.Context) error   { return nil }
func (fakeTx) Rollback(context.Context) error { return nil }

// --- users ---

type mockUserRepo struct {
	usersByEmail map[string]*model.User
	usersByID    map[uuid.UUID]*model.User
	customers    map[uuid.UUID]*model.Customer // keyed by user id
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		usersByEmail: make(map[string]*model.User),
		usersByID:    make(map[uuid.UUID]*model.User),
		customers:    make(map[uuid.UUID]*model.Customer),
	}
}

func (m *mockUserRepo) seed(email, passwordHash string, role model.Role, active bool) (*model.User, *model.Customer) {
	user := &model.User{Email: email, Password: passwordHash, Role: role, IsActive: active}
	user.ID = uuid.New()
	customer := &model.Customer{UserID: user.ID, FirstName: "Jane", LastName: "Doe"}
	customer.ID = uuid.New()
	m.usersByEmail[email] = user
	m.usersByID[user.ID] = user
	m.customers[user.ID] = customer
	return user, customer
}

func (m *mockUserRepo) CreateWithCustomer(_ context.Context, user *model.User, customer *model.Customer) error {
	if _, ok := m.usersByEmail[user.Email]; ok {
		return apperr.ErrEmailExists
	}
	user.ID = uuid.New()
	customer.ID = uuid.New()
	customer.UserID = user.ID
	m.usersByEmail[user.Email] = user
	m.usersByID[user.ID] = user
	m.customers[user.ID] = customer
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	return m.usersByID[id], nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	return m.usersByEmail[email], nil
}

func (m *mockUserRepo) CustomerByUserID(_ context.Context, userID uuid.UUID) (*model.Customer, error) {
	return m.customers[userID], nil
}

func (m *mockUserRepo) CustomerByID(_ context.Context, id uuid.UUID) (*model.Customer, error) {
	for _, c := range m.customers {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) UpdateCustomer(_ context.Context, customer *model.Customer) error {
	m.customers[customer.UserID] = customer
	return nil
}

func (m *mockUserRepo) UpdatePassword(_ context.Context, userID uuid.UUID, hash string) error {
	if user, ok := m.usersByID[userID]; ok {
		user.Password = hash
	}
	return nil
}

func (m *mockUserRepo) ToggleActive(_ context.Context, email string) (bool, error) {
	user, ok := m.usersByEmail[email]
	if !ok {
		return false, pgx.ErrNoRows
	}
	user.IsActive = !user.IsActive
	return user.IsActive, nil
}

func (m *mockUserRepo) ListByRoleAndActive(_ context.Context, role model.Role, active bool, _, _ int, _, _ string) ([]model.Account, int64, error) {
	var accounts []model.Account
	for _, user := range m.usersByID {
		if user.Role != role || user.IsActive != active {
			continue
		}
		a := model.Account{User: *user}
		if c := m.customers[user.ID]; c != nil {
			a.FirstName, a.LastName, a.Phone = c.FirstName, c.LastName, c.Phone
		}
		accounts = append(accounts, a)
	}
	return accounts, int64(len(accounts)), nil
}

// --- products ---

type mockProductRepo struct {
	products map[uuid.UUID]*model.Product
}

func newMockProductRepo() *mockProductRepo {
	return &mockProductRepo{products: make(map[uuid.UUID]*model.Product)}
}

func (m *mockProductRepo) Create(_ context.Context, p *model.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	m.products[p.ID] = p
	return nil
}

func (m *mockProductRepo) Update(_ context.Context, p *model.Product) error {
	if _, ok := m.products[p.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.products[p.ID] = p
	return nil
}

func (m *mockProductRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	return m.products[id], nil
}

func (m *mockProductRepo) GetBySlug(_ context.Context, slug string) (*model.Product, error) {
	for _, p := range m.products {
		if p.Slug == slug {
			return p, nil
		}
	}
	return nil, nil
}

func (m *mockProductRepo) GetForUpdate(_ context.Context, _ pgx.Tx, id uuid.UUID) (*model.Product, error) {
	return m.products[id], nil
}

func (m *mockProductRepo) ListByDeleted(_ context.Context, deleted bool, _, _ int, _, _ string) ([]model.Product, int64, error) {
	var out []model.Product
	for _, p := range m.products {
		if p.IsDeleted == deleted {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

func (m *mockProductRepo) ListByCategory(_ context.Context, categoryID uuid.UUID, _, _ int, _, _ string) ([]model.Product, int64, error) {
	var out []model.Product
	for _, p := range m.products {
		if p.CategoryID == categoryID && !p.IsDeleted {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

func (m *mockProductRepo) SearchByName(_ context.Context, _ string, _, _ int, _, _ string) ([]model.Product, int64, error) {
	return nil, 0, nil
}

func (m *mockProductRepo) Toggle(_ context.Context, id, _ uuid.UUID) (bool, error) {
	p, ok := m.products[id]
	if !ok {
		return false, pgx.ErrNoRows
	}
	p.IsDeleted = !p.IsDeleted
	return p.IsDeleted, nil
}

func (m *mockProductRepo) DecrementStock(_ context.Context, _ pgx.Tx, productID uuid.UUID, quantity int) error {
	p, ok := m.products[productID]
	if !ok || p.AvailableQuantity < quantity {
		return fmt.Errorf("insufficient stock for product %s", productID)
	}
	p.AvailableQuantity -= quantity
	return nil
}

// --- categories ---

type mockCategoryRepo struct {
	categories map[uuid.UUID]*model.Category
}

func newMockCategoryRepo() *mockCategoryRepo {
	return &mockCategoryRepo{categories: make(map[uuid.UUID]*model.Category)}
}

func (m *mockCategoryRepo) Create(_ context.Context, c *model.Category) error {
	for _, existing := range m.categories {
		if existing.Name == c.Name {
			return apperr.ErrCategoryNameExists
		}
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	m.categories[c.ID] = c
	return nil
}

func (m *mockCategoryRepo) Update(_ context.Context, c *model.Category) error {
	if _, ok := m.categories[c.ID]; !ok {
		return apperr.ErrCategoryNotFound
	}
	m.categories[c.ID] = c
	return nil
}

func (m *mockCategoryRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Category, error) {
	return m.categories[id], nil
}

func (m *mockCategoryRepo) List(_ context.Context, _, _ int, _, _ string) ([]model.Category, int64, error) {
	var out []model.Category
	for _, c := range m.categories {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (m *mockCategoryRepo) Toggle(_ context.Context, id, _ uuid.UUID) (bool, error) {
	c, ok := m.categories[id]
	if !ok {
		return false, apperr.ErrCategoryNotFound
	}
	c.IsDeleted = !c.IsDeleted
	return c.IsDeleted, nil
}

// --- featured products ---

type mockFeaturedRepo struct {
	products map[uuid.UUID]bool
	windows  map[uuid.UUID]*model.FeaturedProduct
}

func newMockFeaturedRepo() *mockFeaturedRepo {
	return &mockFeaturedRepo{
		products: make(map[uuid.UUID]bool),
		windows:  make(map[uuid.UUID]*model.FeaturedProduct),
	}
}

func (m *mockFeaturedRepo) BeginTx(context.Context) (pgx.Tx, error) { return fakeTx{}, nil }

func (m *mockFeaturedRepo) LockProduct(_ context.Context, _ pgx.Tx, productID uuid.UUID) (bool, error) {
	return m.products[productID], nil
}

func (m *mockFeaturedRepo) ListByProduct(_ context.Context, _ pgx.Tx, productID uuid.UUID) ([]model.FeaturedProduct, error) {
	var out []model.FeaturedProduct
	for _, w := range m.windows {
		if w.ProductID == productID {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (m *mockFeaturedRepo) Create(_ context.Context, _ pgx.Tx, fp *model.FeaturedProduct) error {
	fp.ID = uuid.New()
	clone := *fp
	m.windows[fp.ID] = &clone
	return nil
}

func (m *mockFeaturedRepo) Update(_ context.Context, _ pgx.Tx, fp *model.FeaturedProduct) error {
	if _, ok := m.windows[fp.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *fp
	m.windows[fp.ID] = &clone
	return nil
}

func (m *mockFeaturedRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.windows[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.windows, id)
	return nil
}

func (m *mockFeaturedRepo) GetByID(_ context.Context, id uuid.UUID) (*model.FeaturedProduct, error) {
	return m.windows[id], nil
}

func (m *mockFeaturedRepo) GetRowByID(_ context.Context, id uuid.UUID) (*model.FeaturedProductRow, error) {
	w, ok := m.windows[id]
	if !ok {
		return nil, nil
	}
	return &model.FeaturedProductRow{FeaturedProduct: *w}, nil
}

func (m *mockFeaturedRepo) ListAll(_ context.Context, _, _ int, _, _ string) ([]model.FeaturedProductRow, int64, error) {
	var out []model.FeaturedProductRow
	for _, w := range m.windows {
		out = append(out, model.FeaturedProductRow{FeaturedProduct: *w})
	}
	return out, int64(len(out)), nil
}

func (m *mockFeaturedRepo) ListActive(_ context.Context, now time.Time, _, _ int, _, _ string) ([]model.FeaturedProductRow, int64, error) {
	var out []model.FeaturedProductRow
	for _, w := range m.windows {
		if w.Overlaps(now, now) {
			out = append(out, model.FeaturedProductRow{FeaturedProduct: *w})
		}
	}
	return out, int64(len(out)), nil
}

// --- carts ---

type mockCartRepo struct {
	carts    map[uuid.UUID]*model.Cart // keyed by customer id
	items    map[uuid.UUID]*model.CartItem
	products map[uuid.UUID]*model.Product // snapshots for ListDetails
}

func newMockCartRepo() *mockCartRepo {
	return &mockCartRepo{
		carts:    make(map[uuid.UUID]*model.Cart),
		items:    make(map[uuid.UUID]*model.CartItem),
		products: make(map[uuid.UUID]*model.Product),
	}
}

func (m *mockCartRepo) seedCart(customerID uuid.UUID) *model.Cart {
	cart := &model.Cart{CustomerID: customerID}
	cart.ID = uuid.New()
	m.carts[customerID] = cart
	return cart
}

func (m *mockCartRepo) BeginTx(context.Context) (pgx.Tx, error) { return fakeTx{}, nil }

func (m *mockCartRepo) GetByCustomer(_ context.Context, customerID uuid.UUID) (*model.Cart, error) {
	return m.carts[customerID], nil
}

func (m *mockCartRepo) GetItemForUpdate(_ context.Context, _ pgx.Tx, cartID, productID uuid.UUID) (*model.CartItem, error) {
	for _, item := range m.items {
		if item.CartID == cartID && item.ProductID == productID {
			return item, nil
		}
	}
	return nil, nil
}

func (m *mockCartRepo) InsertItem(_ context.Context, _ pgx.Tx, item *model.CartItem) error {
	item.ID = uuid.New()
	m.items[item.ID] = item
	return nil
}

func (m *mockCartRepo) UpdateItemQuantity(_ context.Context, _ pgx.Tx, itemID uuid.UUID, quantity int) error {
	item, ok := m.items[itemID]
	if !ok {
		return pgx.ErrNoRows
	}
	item.Quantity = quantity
	return nil
}

func (m *mockCartRepo) DeleteItem(_ context.Context, _ pgx.Tx, itemID uuid.UUID) error {
	if _, ok := m.items[itemID]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.items, itemID)
	return nil
}

func (m *mockCartRepo) Count(_ context.Context, cartID uuid.UUID) (int64, error) {
	var count int64
	for _, item := range m.items {
		if item.CartID == cartID {
			count++
		}
	}
	return count, nil
}

func (m *mockCartRepo) ClearCart(_ context.Context, cartID uuid.UUID) error {
	for id, item := range m.items {
		if item.CartID == cartID {
			delete(m.items, id)
		}
	}
	return nil
}

func (m *mockCartRepo) ListItems(_ context.Context, cartID uuid.UUID) ([]model.CartItem, error) {
	var out []model.CartItem
	for _, item := range m.items {
		if item.CartID == cartID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (m *mockCartRepo) ListDetails(_ context.Context, cartID uuid.UUID, _, _ int, _, _ string) ([]model.CartItemDetail, int64, error) {
	var out []model.CartItemDetail
	for _, item := range m.items {
		if item.CartID != cartID {
			continue
		}
		d := model.CartItemDetail{CartItem: *item}
		if p := m.products[item.ProductID]; p != nil {
			d.ProductName, d.ProductSlug = p.Name, p.Slug
			d.Price, d.ImageURL = p.Price, p.ImageURL
			d.AvailableQuantity = p.AvailableQuantity
		}
		out = append(out, d)
	}
	return out, int64(len(out)), nil
}

// --- reviews ---

type mockReviewRepo struct {
	reviews map[uuid.UUID]*model.Review
}

func newMockReviewRepo() *mockReviewRepo {
	return &mockReviewRepo{reviews: make(map[uuid.UUID]*model.Review)}
}

func (m *mockReviewRepo) Create(_ context.Context, review *model.Review) error {
	for _, existing := range m.reviews {
		if existing.CustomerID == review.CustomerID && existing.ProductID == review.ProductID {
			return apperr.ErrAlreadyReviewed
		}
	}
	review.ID = uuid.New()
	m.reviews[review.ID] = review
	return nil
}

func (m *mockReviewRepo) Update(_ context.Context, review *model.Review) error {
	if _, ok := m.reviews[review.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.reviews[review.ID] = review
	return nil
}

func (m *mockReviewRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.reviews[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.reviews, id)
	return nil
}

func (m *mockReviewRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Review, error) {
	return m.reviews[id], nil
}

func (m *mockReviewRepo) ListByProduct(_ context.Context, productID uuid.UUID, _, _ int, _, _ string) ([]model.ReviewRow, int64, error) {
	var out []model.ReviewRow
	for _, r := range m.reviews {
		if r.ProductID == productID {
			out = append(out, model.ReviewRow{Review: *r})
		}
	}
	return out, int64(len(out)), nil
}

func (m *mockReviewRepo) ListByCustomer(_ context.Context, customerID uuid.UUID, _, _ int, _, _ string) ([]model.ReviewRow, int64, error) {
	var out []model.ReviewRow
	for _, r := range m.reviews {
		if r.CustomerID == customerID {
			out = append(out, model.ReviewRow{Review: *r})
		}
	}
	return out, int64(len(out)), nil
}

func (m *mockReviewRepo) ListAll(_ context.Context, _, _ int, _, _ string) ([]model.ReviewRow, int64, error) {
	var out []model.ReviewRow
	for _, r := range m.reviews {
		out = append(out, model.ReviewRow{Review: *r})
	}
	return out, int64(len(out)), nil
}

func (m *mockReviewRepo) Statistic(_ context.Context, productID uuid.UUID) (*model.ReviewStatistic, error) {
	stat := &model.ReviewStatistic{}
	counts := make(map[int]int64)
	var sum int
	for _, r := range m.reviews {
		if r.ProductID != productID {
			continue
		}
		stat.Count++
		sum += r.Rating
		counts[r.Rating]++
	}
	if stat.Count > 0 {
		stat.AverageRating = float64(sum) / float64(stat.Count)
	}
	for rating := 5; rating >= 1; rating-- {
		rc := model.RatingCount{Rating: rating, Count: counts[rating]}
		if stat.Count > 0 {
			rc.Percent = float64(rc.Count) / float64(stat.Count) * 100
		}
		stat.Ratings = append(stat.Ratings, rc)
	}
	return stat, nil
}

// --- orders ---

type mockOrderRepo struct {
	orders map[uuid.UUID]*model.Order
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{orders: make(map[uuid.UUID]*model.Order)}
}

func (m *mockOrderRepo) BeginTx(context.Context) (pgx.Tx, error) { return fakeTx{}, nil }

func (m *mockOrderRepo) CreateWithItems(_ context.Context, order *model.Order) error {
	order.ID = uuid.New()
	for i := range order.Items {
		order.Items[i].ID = uuid.New()
		order.Items[i].OrderID = order.ID
	}
	m.orders[order.ID] = order
	return nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	return m.orders[id], nil
}

func (m *mockOrderRepo) ListByCustomer(_ context.Context, customerID uuid.UUID, _, _ int, _, _ string) ([]model.Order, int64, error) {
	var out []model.Order
	for _, o := range m.orders {
		if o.CustomerID == customerID {
			out = append(out, *o)
		}
	}
	return out, int64(len(out)), nil
}

func (m *mockOrderRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.OrderStatus) error {
	order, ok := m.orders[id]
	if !ok {
		return pgx.ErrNoRows
	}
	order.Status = status
	return nil
}

func (m *mockOrderRepo) UpdateStatusTx(ctx context.Context, _ pgx.Tx, id uuid.UUID, status model.OrderStatus) error {
	return m.UpdateStatus(ctx, id, status)
}

// --- collaborators ---

type mapTokenStore struct {
	revoked map[string]bool
}

func newMapTokenStore() *mapTokenStore { return &mapTokenStore{revoked: make(map[string]bool)} }

func (s *mapTokenStore) Invalidate(_ context.Context, jti string, _ time.Duration) error {
	s.revoked[jti] = true
	return nil
}

func (s *mapTokenStore) IsInvalidated(_ context.Context, jti string) (bool, error) {
	return s.revoked[jti], nil
}

type mockPublisher struct {
	published []model.OrderMessage
}

func (p *mockPublisher) PublishOrderCreated(_ context.Context, msg model.OrderMessage) error {
	p.published = append(p.published, msg)
	return nil
}

type mockUploader struct {
	uploaded map[string]string // path -> content type
}

func newMockUploader() *mockUploader { return &mockUploader{uploaded: make(map[string]string)} }

func (u *mockUploader) Upload(_ context.Context, path, contentType string, _ io.Reader) (string, error) {
	u.uploaded[path] = contentType
	return "https://storage.test/" + path, nil
}
