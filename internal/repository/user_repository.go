package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/expense-tracker/internal/database"
	"gitlab.com/yelinaung/expense-tracker/internal/models"
)

// UserRepository handles user database operations.
type UserRepository struct {
	db database.PGXDB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db database.PGXDB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a user and fills in ID, MonthlyBudget and CreatedAt.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO users (email, name, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, COALESCE(monthly_budget, 0), created_at
	`, user.Email, user.Name, user.PasswordHash).Scan(&user.ID, &user.MonthlyBudget, &user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, "id = $1", id)
}

// GetByEmail retrieves a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, "email = $1", email)
}

func (r *UserRepository) getOne(ctx context.Context, cond string, arg any) (*models.User, error) {
	var user models.User
	err := r.db.QueryRow(ctx, `
		SELECT id, email, name, password_hash, COALESCE(monthly_budget, 0), created_at
		FROM users WHERE `+cond, arg,
	).Scan(&user.ID, &user.Email, &user.Name, &user.PasswordHash, &user.MonthlyBudget, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// GetBudget returns the user's monthly budget. A budget that was never set,
// or a user row that does not exist, reads as zero.
func (r *UserRepository) GetBudget(ctx context.Context, userID int64) (decimal.Decimal, error) {
	var budget decimal.Decimal
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(monthly_budget, 0) FROM users WHERE id = $1
	`, userID).Scan(&budget)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("failed to get budget: %w", err)
	}
	return budget, nil
}

// UpdateBudget sets the user's monthly budget. It returns ErrNotFound when
// the user does not exist.
func (r *UserRepository) UpdateBudget(ctx context.Context, userID int64, amount decimal.Decimal) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET monthly_budget = $1 WHERE id = $2`, amount, userID)
	if err != nil {
		return fmt.Errorf("failed to update budget: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
