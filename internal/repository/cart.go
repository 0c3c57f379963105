package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rookies/ecommerce-api/internal/model"
)

// CartRepository persists carts and their items. Item mutations run inside a
// caller-managed transaction so the stock check and the write are atomic;
// GetItemForUpdate locks the item row for the duration.
type CartRepository interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
	GetByCustomer(ctx context.Context, customerID uuid.UUID) (*model.Cart, error)
	GetItemForUpdate(ctx context.Context, tx pgx.Tx, cartID, productID uuid.UUID) (*model.CartItem, error)
	InsertItem(ctx context.Context, tx pgx.Tx, item *model.CartItem) error
	UpdateItemQuantity(ctx context.Context, tx pgx.Tx, itemID uuid.UUID, quantity int) error
	DeleteItem(ctx context.Context, tx pgx.Tx, itemID uuid.UUID) error
	Count(ctx context.Context, cartID uuid.UUID) (int64, error)
	ClearCart(ctx context.Context, cartID uuid.UUID) error
	ListItems(ctx context.Context, cartID uuid.UUID) ([]model.CartItem, error)
	ListDetails(ctx context.Context, cartID uuid.UUID, limit, offset int, sortBy, sortDir string) ([]model.CartItemDetail, int64, error)
}

var cartSortColumns = map[string]string{
	"created_at": "ci.created_at",
	"quantity":   "ci.quantity",
	"name":       "p.name",
}

type pgCartRepo struct{ pool *pgxpool.Pool }

func NewCartRepository(pool *pgxpool.Pool) CartRepository {
	return &pgCartRepo{pool: pool}
}

func (r *pgCartRepo) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

func (r *pgCartRepo) GetByCustomer(ctx context.Context, customerID uuid.UUID) (*model.Cart, error) {
	cart := &model.Cart{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, customer_id, created_at, updated_at FROM carts WHERE customer_id = $1`, customerID,
	).Scan(&cart.ID, &cart.CustomerID, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return cart, nil
}

func (r *pgCartRepo) GetItemForUpdate(ctx context.Context, tx pgx.Tx, cartID, productID uuid.UUID) (*model.CartItem, error) {
	item := &model.CartItem{}
	err := tx.QueryRow(ctx,
		`SELECT id, cart_id, product_id, quantity, created_at, updated_at
		 FROM cart_items WHERE cart_id = $1 AND product_id = $2 FOR UPDATE`,
		cartID, productID,
	).Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cart item: %w", err)
	}
	return item, nil
}

func (r *pgCartRepo) InsertItem(ctx context.Context, tx pgx.Tx, item *model.CartItem) error {
	item.ID = uuid.New()
	err := tx.QueryRow(ctx,
		`INSERT INTO cart_items (id, cart_id, product_id, quantity, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, NOW(), NOW()) RETURNING created_at, updated_at`,
		item.ID, item.CartID, item.ProductID, item.Quantity,
	).Scan(&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert cart item: %w", err)
	}
	return nil
}

func (r *pgCartRepo) UpdateItemQuantity(ctx context.Context, tx pgx.Tx, itemID uuid.UUID, quantity int) error {
	ct, err := tx.Exec(ctx,
		`UPDATE cart_items SET quantity = $2, updated_at = NOW() WHERE id = $1`, itemID, quantity,
	)
	if err != nil {
		return fmt.Errorf("update cart item: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *pgCartRepo) DeleteItem(ctx context.Context, tx pgx.Tx, itemID uuid.UUID) error {
	ct, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE id = $1`, itemID)
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *pgCartRepo) Count(ctx context.Context, cartID uuid.UUID) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM cart_items WHERE cart_id = $1`, cartID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count cart items: %w", err)
	}
	return count, nil
}

func (r *pgCartRepo) ClearCart(ctx context.Context, cartID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func (r *pgCartRepo) ListItems(ctx context.Context, cartID uuid.UUID) ([]model.CartItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, cart_id, product_id, quantity, created_at, updated_at
		 FROM cart_items WHERE cart_id = $1`, cartID)
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}
	defer rows.Close()

	var items []model.CartItem
	for rows.Next() {
		var item model.CartItem
		if err := rows.Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity,
			&item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *pgCartRepo) ListDetails(ctx context.Context, cartID uuid.UUID, limit, offset int, sortBy, sortDir string) ([]model.CartItemDetail, int64, error) {
	order, err := orderClause(sortBy, sortDir, cartSortColumns)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM cart_items WHERE cart_id = $1`, cartID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count cart items: %w", err)
	}

	rows, err := r.pool.Query(ctx, fmt.Sprintf(
		`SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity, ci.created_at, ci.updated_at,
		        p.name, p.slug, p.price, p.image_url, p.available_quantity
		 FROM cart_items ci JOIN products p ON p.id = ci.product_id
		 WHERE ci.cart_id = $1 ORDER BY %s LIMIT $2 OFFSET $3`, order),
		cartID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list cart details: %w", err)
	}
	defer rows.Close()

	var details []model.CartItemDetail
	for rows.Next() {
		var d model.CartItemDetail
		if err := rows.Scan(&d.ID, &d.CartID, &d.ProductID, &d.Quantity, &d.CreatedAt, &d.UpdatedAt,
			&d.ProductName, &d.ProductSlug, &d.Price, &d.ImageURL, &d.AvailableQuantity); err != nil {
			return nil, 0, fmt.Errorf("scan cart detail: %w", err)
		}
		details = append(details, d)
	}
	return details, total, rows.Err()
}
