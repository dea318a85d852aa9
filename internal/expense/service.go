// Package expense implements expense use cases on top of the repositories.
package expense

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/expense-tracker/internal/budget"
	"gitlab.com/yelinaung/expense-tracker/internal/logger"
	"gitlab.com/yelinaung/expense-tracker/internal/models"
	"gitlab.com/yelinaung/expense-tracker/internal/repository"
)

// ExpenseStore persists expenses. Every method is scoped to one user.
type ExpenseStore interface {
	Create(ctx context.Context, expense *models.Expense) error
	GetByID(ctx context.Context, userID int64, id int) (*models.Expense, error)
	List(ctx context.Context, userID int64, filter repository.ExpenseFilter) ([]models.Expense, error)
	Update(ctx context.Context, expense *models.Expense) error
	Delete(ctx context.Context, userID int64, id int) error
	TotalForMonth(ctx context.Context, userID int64, month time.Month, year int) (decimal.Decimal, error)
	CountForMonth(ctx context.Context, userID int64, month time.Month, year int) (int, error)
	CategoryBreakdown(ctx context.Context, userID int64, month time.Month, year int) ([]models.CategoryTotal, error)
	MonthlyTrend(ctx context.Context, userID int64, now time.Time) ([]models.TrendPoint, error)
}

// BudgetStore reads and writes the per-user monthly budget.
type BudgetStore interface {
	GetBudget(ctx context.Context, userID int64) (decimal.Decimal, error)
	UpdateBudget(ctx context.Context, userID int64, amount decimal.Decimal) error
}

var (
	_ ExpenseStore = (*repository.ExpenseRepository)(nil)
	_ BudgetStore  = (*repository.UserRepository)(nil)
)

// NewExpense is the input of Create. Empty Category asks the categorizer;
// nil Date means today.
type NewExpense struct {
	Amount      decimal.Decimal
	Description string
	Category    string
	Date        *models.Date
}

// ExpenseUpdate replaces every editable field of an expense.
type ExpenseUpdate struct {
	Amount      decimal.Decimal
	Description string
	Category    string
	Date        models.Date
}

// Service implements the expense and budget use cases.
type Service struct {
	expenses ExpenseStore
	budgets  BudgetStore
	resolver *Resolver
	notifier budget.Notifier
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithNotifier sends budget alerts to n.
func WithNotifier(n budget.Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a Service.
func NewService(expenses ExpenseStore, budgets BudgetStore, resolver *Resolver, opts ...Option) *Service {
	s := &Service{
		expenses: expenses,
		budgets:  budgets,
		resolver: resolver,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.resolver == nil {
		s.resolver = NewResolver(nil)
	}
	return s
}

// Create categorizes and stores a new expense, then checks the budget of the
// expense's month. Categorization and alerting failures never fail Create.
// Amounts that are not positive or need more than two decimal places are
// rejected with ErrInvalidAmount.
func (s *Service) Create(ctx context.Context, userID int64, in NewExpense) (*models.Expense, error) {
	if !validAmount(in.Amount) {
		return nil, ErrInvalidAmount
	}
	description := strings.TrimSpace(in.Description)
	resolution := s.resolver.Resolve(ctx, description, in.Category)

	date := models.NewDate(s.now())
	if in.Date != nil {
		date = *in.Date
	}

	exp := &models.Expense{
		UserID:      userID,
		Amount:      in.Amount,
		Description: description,
		Category:    resolution.Category,
		Date:        date,
	}
	if err := s.expenses.Create(ctx, exp); err != nil {
		return nil, err
	}

	logger.Log.Info().
		Str("user_hash", logger.HashUserID(userID)).
		Int("expense_id", exp.ID).
		Str("category", exp.Category).
		Str("categorization", string(resolution.Outcome)).
		Msg("Expense created")

	s.checkBudget(ctx, userID, exp)
	return exp, nil
}

// checkBudget sends an alert when exp moved its month to a higher budget
// level. Errors are logged only.
func (s *Service) checkBudget(ctx context.Context, userID int64, exp *models.Expense) {
	if s.notifier == nil {
		return
	}

	month, year := exp.Date.Month(), exp.Date.Year()
	limit, err := s.budgets.GetBudget(ctx, userID)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("budget check: failed to read budget")
		return
	}
	if !limit.IsPositive() {
		return
	}
	total, err := s.expenses.TotalForMonth(ctx, userID, month, year)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("budget check: failed to read total")
		return
	}

	before := budget.Evaluate(total.Sub(exp.Amount), limit)
	after := budget.Evaluate(total, limit)
	if !budget.Crossed(before, after) {
		return
	}

	alert := budget.Alert{
		UserID:   userID,
		Year:     year,
		Month:    month,
		Previous: before.Level,
		Status:   after,
		At:       s.now().UTC(),
	}
	if err := s.notifier.Notify(ctx, alert); err != nil {
		logger.Log.Warn().Err(err).
			Str("user_hash", logger.HashUserID(userID)).
			Str("level", string(after.Level)).
			Msg("budget check: failed to deliver alert")
		return
	}
	logger.Log.Info().
		Str("user_hash", logger.HashUserID(userID)).
		Str("level", string(after.Level)).
		Msg("Budget alert sent")
}

// Get returns one expense owned by userID.
func (s *Service) Get(ctx context.Context, userID int64, id int) (*models.Expense, error) {
	return s.expenses.GetByID(ctx, userID, id)
}

// List returns the user's expenses matching filter.
func (s *Service) List(ctx context.Context, userID int64, filter repository.ExpenseFilter) ([]models.Expense, error) {
	return s.expenses.List(ctx, userID, filter)
}

// Update overwrites an expense owned by userID. The category is stored as
// given, except that "All" is rejected with ErrReservedCategory. Amounts
// follow the rules of Create.
func (s *Service) Update(ctx context.Context, userID int64, id int, in ExpenseUpdate) (*models.Expense, error) {
	if !validAmount(in.Amount) {
		return nil, ErrInvalidAmount
	}
	if isAllSentinel(in.Category) {
		return nil, ErrReservedCategory
	}
	exp := &models.Expense{
		ID:          id,
		UserID:      userID,
		Amount:      in.Amount,
		Description: strings.TrimSpace(in.Description),
		Category:    strings.TrimSpace(in.Category),
		Date:        in.Date,
	}
	if err := s.expenses.Update(ctx, exp); err != nil {
		return nil, err
	}
	return exp, nil
}

// Delete removes an expense owned by userID.
func (s *Service) Delete(ctx context.Context, userID int64, id int) error {
	return s.expenses.Delete(ctx, userID, id)
}

// period resolves a requested month and year, defaulting each to now.
func (s *Service) period(month, year int) (time.Month, int) {
	now := s.now()
	m, y := now.Month(), now.Year()
	if month != 0 {
		m = time.Month(month)
	}
	if year != 0 {
		y = year
	}
	return m, y
}

// Stats builds the dashboard bundle for a month. month and year of zero
// mean the current ones. The trend always ends at the current month.
func (s *Service) Stats(ctx context.Context, userID int64, month, year int) (*models.Stats, error) {
	m, y := s.period(month, year)

	total, err := s.expenses.TotalForMonth(ctx, userID, m, y)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}
	count, err := s.expenses.CountForMonth(ctx, userID, m, y)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}
	byCategory, err := s.expenses.CategoryBreakdown(ctx, userID, m, y)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}
	trend, err := s.expenses.MonthlyTrend(ctx, userID, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	if byCategory == nil {
		byCategory = []models.CategoryTotal{}
	}
	if trend == nil {
		trend = []models.TrendPoint{}
	}

	return &models.Stats{
		TotalSpent:   total,
		ExpenseCount: count,
		ByCategory:   byCategory,
		MonthlyTrend: trend,
	}, nil
}

// CategoryTotals returns the month's per-category totals, for charts.
func (s *Service) CategoryTotals(ctx context.Context, userID int64, month, year int) ([]models.CategoryTotal, time.Month, int, error) {
	m, y := s.period(month, year)
	totals, err := s.expenses.CategoryBreakdown(ctx, userID, m, y)
	if err != nil {
		return nil, m, y, err
	}
	return totals, m, y, nil
}

// Budget returns the user's monthly budget, zero when never set.
func (s *Service) Budget(ctx context.Context, userID int64) (decimal.Decimal, error) {
	return s.budgets.GetBudget(ctx, userID)
}

// SetBudget stores the user's monthly budget. Negative amounts and amounts
// the column cannot hold exactly are rejected with ErrInvalidBudget.
func (s *Service) SetBudget(ctx context.Context, userID int64, amount decimal.Decimal) error {
	if amount.IsNegative() || !models.FitsMoneyColumn(amount) {
		return ErrInvalidBudget
	}
	return s.budgets.UpdateBudget(ctx, userID, amount)
}

// BudgetStatus derives the budget position of a month.
func (s *Service) BudgetStatus(ctx context.Context, userID int64, month, year int) (budget.Status, error) {
	m, y := s.period(month, year)

	limit, err := s.budgets.GetBudget(ctx, userID)
	if err != nil {
		return budget.Status{}, err
	}
	total, err := s.expenses.TotalForMonth(ctx, userID, m, y)
	if err != nil {
		return budget.Status{}, err
	}
	return budget.Evaluate(total, limit), nil
}
