package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/expense-tracker/internal/database"
	"gitlab.com/yelinaung/expense-tracker/internal/models"
)

// TrendMonths is the number of calendar months covered by MonthlyTrend.
const TrendMonths = 6

const expenseColumns = `id, user_id, amount, description, category, date, created_at`

// ExpenseRepository handles expense database operations.
type ExpenseRepository struct {
	db database.PGXDB
}

// NewExpenseRepository creates a new ExpenseRepository.
func NewExpenseRepository(db database.PGXDB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

// Create adds a new expense and fills in its ID and CreatedAt.
func (r *ExpenseRepository) Create(ctx context.Context, expense *models.Expense) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO expenses (user_id, amount, description, category, date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, expense.UserID, expense.Amount, expense.Description, expense.Category, expense.Date.Time,
	).Scan(&expense.ID, &expense.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}
	return nil
}

// GetByID retrieves an expense owned by userID.
func (r *ExpenseRepository) GetByID(ctx context.Context, userID int64, id int) (*models.Expense, error) {
	where, args := Where(OwnedBy(userID), Clause{Expr: "id = ?", Args: []any{id}})
	exp, err := scanExpense(r.db.QueryRow(ctx, `SELECT `+expenseColumns+` FROM expenses `+where, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return exp, nil
}

// List returns the user's expenses matching filter, newest first.
func (r *ExpenseRepository) List(ctx context.Context, userID int64, filter ExpenseFilter) ([]models.Expense, error) {
	where, args := Where(filter.Clauses(userID)...)
	rows, err := r.db.Query(ctx, `
		SELECT `+expenseColumns+`
		FROM expenses
		`+where+`
		ORDER BY date DESC, created_at DESC, id DESC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	return scanExpenses(rows)
}

// Update replaces amount, description, category and date of an expense
// owned by expense.UserID. It returns ErrNotFound when no such row exists.
func (r *ExpenseRepository) Update(ctx context.Context, expense *models.Expense) error {
	err := r.db.QueryRow(ctx, `
		UPDATE expenses SET
			amount = $1,
			description = $2,
			category = $3,
			date = $4
		WHERE id = $5 AND user_id = $6
		RETURNING created_at
	`, expense.Amount, expense.Description, expense.Category, expense.Date.Time,
		expense.ID, expense.UserID,
	).Scan(&expense.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update expense: %w", err)
	}
	return nil
}

// Delete removes an expense owned by userID. It returns ErrNotFound when no
// such row exists.
func (r *ExpenseRepository) Delete(ctx context.Context, userID int64, id int) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM expenses WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// TotalForMonth sums the user's expenses in a calendar month.
func (r *ExpenseRepository) TotalForMonth(ctx context.Context, userID int64, month time.Month, year int) (decimal.Decimal, error) {
	where, args := Where(OwnedBy(userID), InMonth(month, year))
	var total decimal.Decimal
	err := r.db.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0) FROM expenses `+where, args...).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get total: %w", err)
	}
	return total, nil
}

// CountForMonth counts the user's expenses in a calendar month.
func (r *ExpenseRepository) CountForMonth(ctx context.Context, userID int64, month time.Month, year int) (int, error) {
	where, args := Where(OwnedBy(userID), InMonth(month, year))
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM expenses `+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count expenses: %w", err)
	}
	return count, nil
}

// CategoryBreakdown returns per-category totals for a calendar month,
// largest first.
func (r *ExpenseRepository) CategoryBreakdown(
	ctx context.Context,
	userID int64,
	month time.Month,
	year int,
) ([]models.CategoryTotal, error) {
	where, args := Where(OwnedBy(userID), InMonth(month, year))
	rows, err := r.db.Query(ctx, `
		SELECT category, SUM(amount) AS total, COUNT(*)
		FROM expenses
		`+where+`
		GROUP BY category
		ORDER BY total DESC, category ASC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query category breakdown: %w", err)
	}
	defer rows.Close()

	totals := []models.CategoryTotal{}
	for rows.Next() {
		var ct models.CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.Total, &ct.Count); err != nil {
			return nil, fmt.Errorf("failed to scan category total: %w", err)
		}
		totals = append(totals, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category totals: %w", err)
	}
	return totals, nil
}

// MonthlyTrend returns per-month totals for the TrendMonths calendar months
// ending with now's month, oldest first. Months without expenses are
// omitted.
func (r *ExpenseRepository) MonthlyTrend(ctx context.Context, userID int64, now time.Time) ([]models.TrendPoint, error) {
	_, end := monthBounds(now.Month(), now.Year())
	start := end.AddDate(0, -TrendMonths, 0)
	where, args := Where(OwnedBy(userID), Clause{Expr: "date >= ? AND date < ?", Args: []any{start, end}})

	rows, err := r.db.Query(ctx, `
		SELECT date_trunc('month', date)::date AS month, SUM(amount)
		FROM expenses
		`+where+`
		GROUP BY month
		ORDER BY month ASC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly trend: %w", err)
	}
	defer rows.Close()

	points := []models.TrendPoint{}
	for rows.Next() {
		var month time.Time
		var total decimal.Decimal
		if err := rows.Scan(&month, &total); err != nil {
			return nil, fmt.Errorf("failed to scan trend point: %w", err)
		}
		points = append(points, models.TrendPoint{
			Month:    models.TrendLabel(month.Year(), month.Month()),
			MonthNum: int(month.Month()),
			YearNum:  month.Year(),
			Total:    total,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trend: %w", err)
	}
	return points, nil
}

func scanExpense(row pgx.Row) (*models.Expense, error) {
	var exp models.Expense
	if err := row.Scan(
		&exp.ID, &exp.UserID, &exp.Amount, &exp.Description, &exp.Category, &exp.Date.Time, &exp.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &exp, nil
}

// scanExpenses collects expense rows. The result is never nil.
func scanExpenses(rows pgx.Rows) ([]models.Expense, error) {
	expenses := []models.Expense{}
	for rows.Next() {
		exp, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, *exp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expenses: %w", err)
	}
	return expenses, nil
}
