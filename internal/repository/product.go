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

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	Update(ctx context.Context, product *model.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	GetBySlug(ctx context.Context, slug string) (*model.Product, error)
	// GetForUpdate reads the product inside tx with its row locked, so a
	// stock check and the following write serialize against concurrent
	// writers.
	GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Product, error)
	ListByDeleted(ctx context.Context, deleted bool, limit, offset int, sortBy, sortDir string) ([]model.Product, int64, error)
	ListByCategory(ctx context.Context, categoryID uuid.UUID, limit, offset int, sortBy, sortDir string) ([]model.Product, int64, error)
	SearchByName(ctx context.Context, name string, limit, offset int, sortBy, sortDir string) ([]model.Product, int64, error)
	Toggle(ctx context.Context, id, modifiedBy uuid.UUID) (bool, error)
	DecrementStock(ctx context.Context, tx pgx.Tx, productID uuid.UUID, quantity int) error
}

var productSortColumns = map[string]string{
	"name":               "name",
	"price":              "price",
	"created_at":         "created_at",
	"available_quantity": "available_quantity",
}

const productColumns = `id, category_id, name, description, price, available_quantity,
	image_url, slug, is_deleted, created_by, modified_by, created_at, updated_at`

type pgProductRepo struct{ pool *pgxpool.Pool }

func NewProductRepository(pool *pgxpool.Pool) ProductRepository {
	return &pgProductRepo{pool: pool}
}

func scanProduct(row pgx.Row) (*model.Product, error) {
	p := &model.Product{}
	err := row.Scan(&p.ID, &p.CategoryID, &p.Name, &p.Description, &p.Price, &p.AvailableQuantity,
		&p.ImageURL, &p.Slug, &p.IsDeleted, &p.CreatedBy, &p.ModifiedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func (r *pgProductRepo) Create(ctx context.Context, product *model.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO products (id, category_id, name, description, price, available_quantity,
		        image_url, slug, is_deleted, created_by, modified_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, false, $9, $9, NOW(), NOW())
		 RETURNING created_at, updated_at`,
		product.ID, product.CategoryID, product.Name, product.Description, product.Price,
		product.AvailableQuantity, product.ImageURL, product.Slug, product.CreatedBy,
	).Scan(&product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (r *pgProductRepo) Update(ctx context.Context, product *model.Product) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE products SET category_id=$2, name=$3, description=$4, price=$5,
		        available_quantity=$6, image_url=$7, slug=$8, modified_by=$9, updated_at=NOW()
		 WHERE id=$1 RETURNING updated_at`,
		product.ID, product.CategoryID, product.Name, product.Description, product.Price,
		product.AvailableQuantity, product.ImageURL, product.Slug, product.ModifiedBy,
	).Scan(&product.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return pgx.ErrNoRows
		}
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

func (r *pgProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *pgProductRepo) GetBySlug(ctx context.Context, slug string) (*model.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE slug = $1`, slug))
	if err != nil {
		return nil, fmt.Errorf("get product by slug: %w", err)
	}
	return p, nil
}

func (r *pgProductRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Product, error) {
	p, err := scanProduct(tx.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, fmt.Errorf("lock product: %w", err)
	}
	return p, nil
}

func (r *pgProductRepo) ListByDeleted(ctx context.Context, deleted bool, limit, offset int, sortBy, sortDir string) ([]model.Product, int64, error) {
	return r.list(ctx, `WHERE is_deleted = $1`, []any{deleted}, limit, offset, sortBy, sortDir)
}

func (r *pgProductRepo) ListByCategory(ctx context.Context, categoryID uuid.UUID, limit, offset int, sortBy, sortDir string) ([]model.Product, int64, error) {
	return r.list(ctx, `WHERE category_id = $1 AND is_deleted = false`, []any{categoryID}, limit, offset, sortBy, sortDir)
}

func (r *pgProductRepo) SearchByName(ctx context.Context, name string, limit, offset int, sortBy, sortDir string) ([]model.Product, int64, error) {
	return r.list(ctx, `WHERE name ILIKE '%' || $1 || '%' AND is_deleted = false`, []any{name}, limit, offset, sortBy, sortDir)
}

func (r *pgProductRepo) list(ctx context.Context, where string, args []any, limit, offset int, sortBy, sortDir string) ([]model.Product, int64, error) {
	order, err := orderClause(sortBy, sortDir, productSortColumns)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	n := len(args)
	query := fmt.Sprintf(`SELECT %s FROM products %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		productColumns, where, order, n+1, n+2)
	rows, err := r.pool.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.CategoryID, &p.Name, &p.Description, &p.Price, &p.AvailableQuantity,
			&p.ImageURL, &p.Slug, &p.IsDeleted, &p.CreatedBy, &p.ModifiedBy, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

func (r *pgProductRepo) Toggle(ctx context.Context, id, modifiedBy uuid.UUID) (bool, error) {
	var deleted bool
	err := r.pool.QueryRow(ctx,
		`UPDATE products SET is_deleted = NOT is_deleted, modified_by=$2, updated_at=NOW()
		 WHERE id=$1 RETURNING is_deleted`,
		id, modifiedBy,
	).Scan(&deleted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, pgx.ErrNoRows
		}
		return false, fmt.Errorf("toggle product: %w", err)
	}
	return deleted, nil
}

func (r *pgProductRepo) DecrementStock(ctx context.Context, tx pgx.Tx, productID uuid.UUID, quantity int) error {
	ct, err := tx.Exec(ctx,
		`UPDATE products SET available_quantity = available_quantity - $2, updated_at = NOW()
		 WHERE id = $1 AND available_quantity >= $2`,
		productID, quantity,
	)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("insufficient stock for product %s", productID)
	}
	return nil
}
