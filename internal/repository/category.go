package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rookies/ecommerce-api/internal/apperr"
	"github.com/rookies/ecommerce-api/internal/model"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *model.Category) error
	Update(ctx context.Context, category *model.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Category, error)
	List(ctx context.Context, limit, offset int, sortBy, sortDir string) ([]model.Category, int64, error)
	Toggle(ctx context.Context, id, modifiedBy uuid.UUID) (bool, error)
}

var categorySortColumns = map[string]string{
	"name":       "name",
	"created_at": "created_at",
}

type pgCategoryRepo struct{ pool *pgxpool.Pool }

func NewCategoryRepository(pool *pgxpool.Pool) CategoryRepository {
	return &pgCategoryRepo{pool: pool}
}

func (r *pgCategoryRepo) Create(ctx context.Context, category *model.Category) error {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO categories (id, name, description, slug, is_deleted, created_by, modified_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, false, $5, $5, NOW(), NOW()) RETURNING created_at, updated_at`,
		category.ID, category.Name, category.Description, category.Slug, category.CreatedBy,
	).Scan(&category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		return apperr.FromConstraint(fmt.Errorf("create category: %w", err))
	}
	return nil
}

func (r *pgCategoryRepo) Update(ctx context.Context, category *model.Category) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE categories SET name=$2, description=$3, slug=$4, modified_by=$5, updated_at=NOW()
		 WHERE id=$1 RETURNING updated_at`,
		category.ID, category.Name, category.Description, category.Slug, category.ModifiedBy,
	).Scan(&category.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.ErrCategoryNotFound
		}
		return apperr.FromConstraint(fmt.Errorf("update category: %w", err))
	}
	return nil
}

func (r *pgCategoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	c := &model.Category{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, description, slug, is_deleted, created_by, modified_by, created_at, updated_at
		 FROM categories WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.Description, &c.Slug, &c.IsDeleted,
		&c.CreatedBy, &c.ModifiedBy, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (r *pgCategoryRepo) List(ctx context.Context, limit, offset int, sortBy, sortDir string) ([]model.Category, int64, error) {
	order, err := orderClause(sortBy, sortDir, categorySortColumns)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM categories`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count categories: %w", err)
	}

	rows, err := r.pool.Query(ctx, fmt.Sprintf(
		`SELECT id, name, description, slug, is_deleted, created_by, modified_by, created_at, updated_at
		 FROM categories ORDER BY %s LIMIT $1 OFFSET $2`, order), limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Slug, &c.IsDeleted,
			&c.CreatedBy, &c.ModifiedBy, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, total, rows.Err()
}

func (r *pgCategoryRepo) Toggle(ctx context.Context, id, modifiedBy uuid.UUID) (bool, error) {
	var deleted bool
	err := r.pool.QueryRow(ctx,
		`UPDATE categories SET is_deleted = NOT is_deleted, modified_by=$2, updated_at=NOW()
		 WHERE id=$1 RETURNING is_deleted`,
		id, modifiedBy,
	).Scan(&deleted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, apperr.ErrCategoryNotFound
		}
		return false, fmt.Errorf("toggle category: %w", err)
	}
	return deleted, nil
}
