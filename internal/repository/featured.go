package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rookies/ecommerce-api/internal/model"
)

// FeaturedProductRepository persists promotional windows. Writes happen
// inside a caller-managed transaction: the service locks the product row,
// scans the existing windows for overlap, then inserts or updates, so two
// concurrent writers for the same product serialize.
type FeaturedProductRepository interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
	// LockProduct takes a row lock on the product and reports whether it
	// exists.
	LockProduct(ctx context.Context, tx pgx.Tx, productID uuid.UUID) (bool, error)
	ListByProduct(ctx context.Context, tx pgx.Tx, productID uuid.UUID) ([]model.FeaturedProduct, error)
	Create(ctx context.Context, tx pgx.Tx, fp *model.FeaturedProduct) error
	Update(ctx context.Context, tx pgx.Tx, fp *model.FeaturedProduct) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.FeaturedProduct, error)
	GetRowByID(ctx context.Context, id uuid.UUID) (*model.FeaturedProductRow, error)
	ListAll(ctx context.Context, limit, offset int, sortBy, sortDir string) ([]model.FeaturedProductRow, int64, error)
	// ListActive returns windows containing now whose product is not
	// soft-deleted.
	ListActive(ctx context.Context, now time.Time, limit, offset int, sortBy, sortDir string) ([]model.FeaturedProductRow, int64, error)
}

var featuredSortColumns = map[string]string{
	"start_date": "f.start_date",
	"end_date":   "f.end_date",
	"created_at": "f.created_at",
}

const featuredRowColumns = `f.id, f.product_id, f.start_date, f.end_date, f.description,
	f.created_by, f.modified_by, f.created_at, f.updated_at,
	p.name, p.slug, p.price, p.image_url, p.is_deleted`

type pgFeaturedRepo struct{ pool *pgxpool.Pool }

func NewFeaturedProductRepository(pool *pgxpool.Pool) FeaturedProductRepository {
	return &pgFeaturedRepo{pool: pool}
}

func (r *pgFeaturedRepo) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

func (r *pgFeaturedRepo) LockProduct(ctx context.Context, tx pgx.Tx, productID uuid.UUID) (bool, error) {
	var one int
	err := tx.QueryRow(ctx, `SELECT 1 FROM products WHERE id = $1 FOR UPDATE`, productID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("lock product: %w", err)
	}
	return true, nil
}

func (r *pgFeaturedRepo) ListByProduct(ctx context.Context, tx pgx.Tx, productID uuid.UUID) ([]model.FeaturedProduct, error) {
	rows, err := tx.Query(ctx,
		`SELECT id, product_id, start_date, end_date, description, created_by, modified_by, created_at, updated_at
		 FROM featured_products WHERE product_id = $1`, productID)
	if err != nil {
		return nil, fmt.Errorf("list featured by product: %w", err)
	}
	defer rows.Close()

	var windows []model.FeaturedProduct
	for rows.Next() {
		var f model.FeaturedProduct
		if err := rows.Scan(&f.ID, &f.ProductID, &f.StartDate, &f.EndDate, &f.Description,
			&f.CreatedBy, &f.ModifiedBy, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan featured product: %w", err)
		}
		windows = append(windows, f)
	}
	return windows, rows.Err()
}

func (r *pgFeaturedRepo) Create(ctx context.Context, tx pgx.Tx, fp *model.FeaturedProduct) error {
	fp.ID = uuid.New()
	err := tx.QueryRow(ctx,
		`INSERT INTO featured_products (id, product_id, start_date, end_date, description,
		        created_by, modified_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $6, NOW(), NOW()) RETURNING created_at, updated_at`,
		fp.ID, fp.ProductID, fp.StartDate, fp.EndDate, fp.Description, fp.CreatedBy,
	).Scan(&fp.CreatedAt, &fp.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create featured product: %w", err)
	}
	return nil
}

func (r *pgFeaturedRepo) Update(ctx context.Context, tx pgx.Tx, fp *model.FeaturedProduct) error {
	err := tx.QueryRow(ctx,
		`UPDATE featured_products SET start_date=$2, end_date=$3, description=$4, modified_by=$5, updated_at=NOW()
		 WHERE id=$1 RETURNING updated_at`,
		fp.ID, fp.StartDate, fp.EndDate, fp.Description, fp.ModifiedBy,
	).Scan(&fp.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return pgx.ErrNoRows
		}
		return fmt.Errorf("update featured product: %w", err)
	}
	return nil
}

func (r *pgFeaturedRepo) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM featured_products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete featured product: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *pgFeaturedRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.FeaturedProduct, error) {
	f := &model.FeaturedProduct{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, product_id, start_date, end_date, description, created_by, modified_by, created_at, updated_at
		 FROM featured_products WHERE id = $1`, id,
	).Scan(&f.ID, &f.ProductID, &f.StartDate, &f.EndDate, &f.Description,
		&f.CreatedBy, &f.ModifiedBy, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get featured product: %w", err)
	}
	return f, nil
}

func (r *pgFeaturedRepo) GetRowByID(ctx context.Context, id uuid.UUID) (*model.FeaturedProductRow, error) {
	row := &model.FeaturedProductRow{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+featuredRowColumns+`
		 FROM featured_products f JOIN products p ON p.id = f.product_id
		 WHERE f.id = $1`, id,
	).Scan(&row.ID, &row.ProductID, &row.StartDate, &row.EndDate, &row.Description,
		&row.CreatedBy, &row.ModifiedBy, &row.CreatedAt, &row.UpdatedAt,
		&row.ProductName, &row.ProductSlug, &row.ProductPrice, &row.ImageURL, &row.IsDeleted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get featured product: %w", err)
	}
	return row, nil
}

func (r *pgFeaturedRepo) ListAll(ctx context.Context, limit, offset int, sortBy, sortDir string) ([]model.FeaturedProductRow, int64, error) {
	return r.listRows(ctx, ``, nil, limit, offset, sortBy, sortDir)
}

func (r *pgFeaturedRepo) ListActive(ctx context.Context, now time.Time, limit, offset int, sortBy, sortDir string) ([]model.FeaturedProductRow, int64, error) {
	where := `WHERE f.start_date <= $1 AND f.end_date >= $1 AND p.is_deleted = false`
	return r.listRows(ctx, where, []any{now}, limit, offset, sortBy, sortDir)
}

func (r *pgFeaturedRepo) listRows(ctx context.Context, where string, args []any, limit, offset int, sortBy, sortDir string) ([]model.FeaturedProductRow, int64, error) {
	order, err := orderClause(sortBy, sortDir, featuredSortColumns)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	countQ := `SELECT COUNT(*) FROM featured_products f JOIN products p ON p.id = f.product_id ` + where
	if err := r.pool.QueryRow(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count featured products: %w", err)
	}

	n := len(args)
	query := fmt.Sprintf(
		`SELECT %s FROM featured_products f JOIN products p ON p.id = f.product_id
		 %s ORDER BY %s LIMIT $%d OFFSET $%d`, featuredRowColumns, where, order, n+1, n+2)
	rows, err := r.pool.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list featured products: %w", err)
	}
	defer rows.Close()

	var result []model.FeaturedProductRow
	for rows.Next() {
		var row model.FeaturedProductRow
		if err := rows.Scan(&row.ID, &row.ProductID, &row.StartDate, &row.EndDate, &row.Description,
			&row.CreatedBy, &row.ModifiedBy, &row.CreatedAt, &row.UpdatedAt,
			&row.ProductName, &row.ProductSlug, &row.ProductPrice, &row.ImageURL, &row.IsDeleted); err != nil {
			return nil, 0, fmt.Errorf("scan featured product: %w", err)
		}
		result = append(result, row)
	}
	return result, total, rows.Err()
}
