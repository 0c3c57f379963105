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

type ReviewRepository interface {
	Create(ctx context.Context, review *model.Review) error
	Update(ctx context.Context, review *model.Review) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Review, error)
	ListByProduct(ctx context.Context, productID uuid.UUID, limit, offset int, sortBy, sortDir string) ([]model.ReviewRow, int64, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int, sortBy, sortDir string) ([]model.ReviewRow, int64, error)
	ListAll(ctx context.Context, limit, offset int, sortBy, sortDir string) ([]model.ReviewRow, int64, error)
	Statistic(ctx context.Context, productID uuid.UUID) (*model.ReviewStatistic, error)
}

var reviewSortColumns = map[string]string{
	"rating":     "r.rating",
	"created_at": "r.created_at",
}

const reviewRowColumns = `r.id, r.customer_id, r.product_id, r.rating, r.comment, r.created_at, r.updated_at,
	c.first_name || ' ' || c.last_name, p.name`

type pgReviewRepo struct{ pool *pgxpool.Pool }

func NewReviewRepository(pool *pgxpool.Pool) ReviewRepository {
	return &pgReviewRepo{pool: pool}
}

func (r *pgReviewRepo) Create(ctx context.Context, review *model.Review) error {
	review.ID = uuid.New()
	err := r.pool.QueryRow(ctx,
		`INSERT INTO reviews (id, customer_id, product_id, rating, comment, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, NOW(), NOW()) RETURNING created_at, updated_at`,
		review.ID, review.CustomerID, review.ProductID, review.Rating, review.Comment,
	).Scan(&review.CreatedAt, &review.UpdatedAt)
	if err != nil {
		// The (customer, product) unique constraint surfaces as a domain
		// error, never as raw constraint text.
		return apperr.FromConstraint(fmt.Errorf("create review: %w", err))
	}
	return nil
}

func (r *pgReviewRepo) Update(ctx context.Context, review *model.Review) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE reviews SET rating=$2, comment=$3, updated_at=NOW() WHERE id=$1 RETURNING updated_at`,
		review.ID, review.Rating, review.Comment,
	).Scan(&review.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return pgx.ErrNoRows
		}
		return fmt.Errorf("update review: %w", err)
	}
	return nil
}

func (r *pgReviewRepo) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *pgReviewRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Review, error) {
	review := &model.Review{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, customer_id, product_id, rating, comment, created_at, updated_at
		 FROM reviews WHERE id = $1`, id,
	).Scan(&review.ID, &review.CustomerID, &review.ProductID, &review.Rating, &review.Comment,
		&review.CreatedAt, &review.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get review: %w", err)
	}
	return review, nil
}

func (r *pgReviewRepo) ListByProduct(ctx context.Context, productID uuid.UUID, limit, offset int, sortBy, sortDir string) ([]model.ReviewRow, int64, error) {
	return r.list(ctx, `WHERE r.product_id = $1`, []any{productID}, limit, offset, sortBy, sortDir)
}

func (r *pgReviewRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int, sortBy, sortDir string) ([]model.ReviewRow, int64, error) {
	return r.list(ctx, `WHERE r.customer_id = $1`, []any{customerID}, limit, offset, sortBy, sortDir)
}

func (r *pgReviewRepo) ListAll(ctx context.Context, limit, offset int, sortBy, sortDir string) ([]model.ReviewRow, int64, error) {
	return r.list(ctx, ``, nil, limit, offset, sortBy, sortDir)
}

func (r *pgReviewRepo) list(ctx context.Context, where string, args []any, limit, offset int, sortBy, sortDir string) ([]model.ReviewRow, int64, error) {
	order, err := orderClause(sortBy, sortDir, reviewSortColumns)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	countQ := `SELECT COUNT(*) FROM reviews r ` + where
	if err := r.pool.QueryRow(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count reviews: %w", err)
	}

	n := len(args)
	query := fmt.Sprintf(
		`SELECT %s FROM reviews r
		 JOIN customers c ON c.id = r.customer_id
		 JOIN products p ON p.id = r.product_id
		 %s ORDER BY %s LIMIT $%d OFFSET $%d`, reviewRowColumns, where, order, n+1, n+2)
	rows, err := r.pool.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var result []model.ReviewRow
	for rows.Next() {
		var row model.ReviewRow
		if err := rows.Scan(&row.ID, &row.CustomerID, &row.ProductID, &row.Rating, &row.Comment,
			&row.CreatedAt, &row.UpdatedAt, &row.CustomerName, &row.ProductName); err != nil {
			return nil, 0, fmt.Errorf("scan review: %w", err)
		}
		result = append(result, row)
	}
	return result, total, rows.Err()
}

func (r *pgReviewRepo) Statistic(ctx context.Context, productID uuid.UUID) (*model.ReviewStatistic, error) {
	stat := &model.ReviewStatistic{}
	var avg *float64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*), AVG(rating) FROM reviews WHERE product_id = $1`, productID,
	).Scan(&stat.Count, &avg)
	if err != nil {
		return nil, fmt.Errorf("review statistic: %w", err)
	}
	if avg != nil {
		stat.AverageRating = *avg
	}

	counts := make(map[int]int64)
	rows, err := r.pool.Query(ctx,
		`SELECT rating, COUNT(*) FROM reviews WHERE product_id = $1 GROUP BY rating`, productID)
	if err != nil {
		return nil, fmt.Errorf("review rating counts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var rating int
		var count int64
		if err := rows.Scan(&rating, &count); err != nil {
			return nil, fmt.Errorf("scan rating count: %w", err)
		}
		counts[rating] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
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
