// Package expensetest provides an in-memory store for tests of code built
// on the expense service.
package expensetest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/expense-tracker/internal/models"
	"gitlab.com/yelinaung/expense-tracker/internal/repository"
)

// MemStore is an in-memory expense and budget store with the same
// ownership and ordering rules as the Postgres repositories.
type MemStore struct {
	mu       sync.Mutex
	nextID   int
	expenses map[int]models.Expense
	budgets  map[int64]decimal.Decimal
	FailWith error
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{expenses: map[int]models.Expense{}, budgets: map[int64]decimal.Decimal{}}
}

func (m *MemStore) Create(_ context.Context, e *models.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	m.nextID++
	e.ID = m.nextID
	e.CreatedAt = time.Now()
	m.expenses[e.ID] = *e
	return nil
}

func (m *MemStore) GetByID(_ context.Context, userID int64, id int) (*models.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.expenses[id]
	if !ok || e.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (m *MemStore) List(_ context.Context, userID int64, f repository.ExpenseFilter) ([]models.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Expense{}
	for _, e := range m.expenses {
		if e.UserID != userID {
			continue
		}
		if f.Month != 0 && f.Year != 0 && (int(e.Date.Month()) != f.Month || e.Date.Year() != f.Year) {
			continue
		}
		if f.Category != "" && f.Category != models.CategoryAll && e.Category != f.Category {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(e.Description), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date.Time)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *MemStore) Update(_ context.Context, e *models.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.expenses[e.ID]
	if !ok || old.UserID != e.UserID {
		return repository.ErrNotFound
	}
	e.CreatedAt = old.CreatedAt
	m.expenses[e.ID] = *e
	return nil
}

func (m *MemStore) Delete(_ context.Context, userID int64, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.expenses[id]
	if !ok || e.UserID != userID {
		return repository.ErrNotFound
	}
	delete(m.expenses, id)
	return nil
}

func (m *MemStore) inMonth(userID int64, month time.Month, year int) []models.Expense {
	var out []models.Expense
	for _, e := range m.expenses {
		if e.UserID == userID && e.Date.Month() == month && e.Date.Year() == year {
			out = append(out, e)
		}
	}
	return out
}

func (m *MemStore) TotalForMonth(_ context.Context, userID int64, month time.Month, year int) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := decimal.Zero
	for _, e := range m.inMonth(userID, month, year) {
		total = total.Add(e.Amount)
	}
	return total, nil
}

func (m *MemStore) CountForMonth(_ context.Context, userID int64, month time.Month, year int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.inMonth(userID, month, year)), nil
}

func (m *MemStore) CategoryBreakdown(_ context.Context, userID int64, month time.Month, year int) ([]models.CategoryTotal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byCat := map[string]*models.CategoryTotal{}
	for _, e := range m.inMonth(userID, month, year) {
		ct, ok := byCat[e.Category]
		if !ok {
			ct = &models.CategoryTotal{Category: e.Category}
			byCat[e.Category] = ct
		}
		ct.Total = ct.Total.Add(e.Amount)
		ct.Count++
	}
	out := []models.CategoryTotal{}
	for _, ct := range byCat {
		out = append(out, *ct)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Total.Equal(out[j].Total) {
			return out[i].Total.GreaterThan(out[j].Total)
		}
		return out[i].Category < out[j].Category
	})
	return out, nil
}

func (m *MemStore) MonthlyTrend(_ context.Context, userID int64, now time.Time) ([]models.TrendPoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -5, 0)
	points := []models.TrendPoint{}
	for i := 0; i < 6; i++ {
		month := first.AddDate(0, i, 0)
		var total decimal.Decimal
		var found bool
		for _, e := range m.inMonth(userID, month.Month(), month.Year()) {
			total = total.Add(e.Amount)
			found = true
		}
		if found {
			points = append(points, models.TrendPoint{
				Month:    models.TrendLabel(month.Year(), month.Month()),
				MonthNum: int(month.Month()),
				YearNum:  month.Year(),
				Total:    total,
			})
		}
	}
	return points, nil
}

func (m *MemStore) GetBudget(_ context.Context, userID int64) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.budgets[userID], nil
}

func (m *MemStore) UpdateBudget(_ context.Context, userID int64, amount decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.budgets[userID] = amount
	return nil
}

// SetBudget sets a user's budget directly.
func (m *MemStore) SetBudget(userID int64, amount decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.budgets[userID] = amount
}

// Len returns the number of stored expenses.
func (m *MemStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.expenses)
}
