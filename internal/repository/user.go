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

type UserRepository interface {
	// CreateWithCustomer inserts the user, its customer profile, and an empty
	// cart in one transaction.
	CreateWithCustomer(ctx context.Context, user *model.User, customer *model.Customer) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	CustomerByUserID(ctx context.Context, userID uuid.UUID) (*model.Customer, error)
	CustomerByID(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	UpdateCustomer(ctx context.Context, customer *model.Customer) error
	UpdatePassword(ctx context.Context, userID uuid.UUID, hash string) error
	ToggleActive(ctx context.Context, email string) (bool, error)
	ListByRoleAndActive(ctx context.Context, role model.Role, active bool, limit, offset int, sortBy, sortDir string) ([]model.Account, int64, error)
}

var userSortColumns = map[string]string{
	"email":      "u.email",
	"created_at": "u.created_at",
	"first_name": "c.first_name",
}

type pgUserRepo struct{ pool *pgxpool.Pool }

func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &pgUserRepo{pool: pool}
}

func (r *pgUserRepo) CreateWithCustomer(ctx context.Context, user *model.User, customer *model.Customer) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	user.ID = uuid.New()
	err = tx.QueryRow(ctx,
		`INSERT INTO users (id, email, password_hash, role, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, NOW(), NOW()) RETURNING created_at, updated_at`,
		user.ID, user.Email, user.Password, user.Role, user.IsActive,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	customer.ID = uuid.New()
	customer.UserID = user.ID
	err = tx.QueryRow(ctx,
		`INSERT INTO customers (id, user_id, first_name, last_name, phone, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, NOW(), NOW()) RETURNING created_at, updated_at`,
		customer.ID, customer.UserID, customer.FirstName, customer.LastName, customer.Phone,
	).Scan(&customer.CreatedAt, &customer.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create customer: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO carts (id, customer_id, created_at, updated_at) VALUES ($1, $2, NOW(), NOW())`,
		uuid.New(), customer.ID,
	)
	if err != nil {
		return fmt.Errorf("create cart: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *pgUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.getUser(ctx, `WHERE id = $1`, id)
}

func (r *pgUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getUser(ctx, `WHERE email = $1`, email)
}

func (r *pgUserRepo) getUser(ctx context.Context, where string, arg any) (*model.User, error) {
	user := &model.User{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, password_hash, role, is_active, created_at, updated_at FROM users `+where, arg,
	).Scan(&user.ID, &user.Email, &user.Password, &user.Role, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (r *pgUserRepo) CustomerByUserID(ctx context.Context, userID uuid.UUID) (*model.Customer, error) {
	return r.getCustomer(ctx, `WHERE user_id = $1`, userID)
}

func (r *pgUserRepo) CustomerByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	return r.getCustomer(ctx, `WHERE id = $1`, id)
}

func (r *pgUserRepo) getCustomer(ctx context.Context, where string, arg any) (*model.Customer, error) {
	c := &model.Customer{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, first_name, last_name, phone, created_at, updated_at FROM customers `+where, arg,
	).Scan(&c.ID, &c.UserID, &c.FirstName, &c.LastName, &c.Phone, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

func (r *pgUserRepo) UpdateCustomer(ctx context.Context, customer *model.Customer) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE customers SET first_name=$2, last_name=$3, phone=$4, updated_at=NOW()
		 WHERE id=$1 RETURNING updated_at`,
		customer.ID, customer.FirstName, customer.LastName, customer.Phone,
	).Scan(&customer.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	return nil
}

func (r *pgUserRepo) UpdatePassword(ctx context.Context, userID uuid.UUID, hash string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET password_hash=$2, updated_at=NOW() WHERE id=$1`, userID, hash,
	)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

func (r *pgUserRepo) ToggleActive(ctx context.Context, email string) (bool, error) {
	var active bool
	err := r.pool.QueryRow(ctx,
		`UPDATE users SET is_active = NOT is_active, updated_at=NOW() WHERE email=$1 RETURNING is_active`,
		email,
	).Scan(&active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, pgx.ErrNoRows
		}
		return false, fmt.Errorf("toggle user status: %w", err)
	}
	return active, nil
}

func (r *pgUserRepo) ListByRoleAndActive(ctx context.Context, role model.Role, active bool, limit, offset int, sortBy, sortDir string) ([]model.Account, int64, error) {
	order, err := orderClause(sortBy, sortDir, userSortColumns)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	err = r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM users u WHERE u.role = $1 AND u.is_active = $2`, role, active,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	rows, err := r.pool.Query(ctx, fmt.Sprintf(
		`SELECT u.id, u.email, u.role, u.is_active, u.created_at, u.updated_at,
		        c.first_name, c.last_name, c.phone
		 FROM users u JOIN customers c ON c.user_id = u.id
		 WHERE u.role = $1 AND u.is_active = $2
		 ORDER BY %s LIMIT $3 OFFSET $4`, order), role, active, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		var a model.Account
		if err := rows.Scan(&a.ID, &a.Email, &a.Role, &a.IsActive, &a.CreatedAt, &a.UpdatedAt,
			&a.FirstName, &a.LastName, &a.Phone); err != nil {
			return nil, 0, fmt.Errorf("scan user: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, total, rows.Err()
}
