// Package models defines the domain entities for the expense tracker.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxDescriptionLength is the maximum allowed length for expense descriptions.
const MaxDescriptionLength = 500

// MaxCategoryLength is the maximum allowed length for a stored category label.
const MaxCategoryLength = 100

// AmountPlaces is the number of decimal places stored for money.
const AmountPlaces = 2

// MaxAmount is the largest value a DECIMAL(10,2) column holds.
var MaxAmount = decimal.RequireFromString("99999999.99")

// FitsMoneyColumn reports whether d is stored exactly, without rounding to
// AmountPlaces or overflowing MaxAmount.
func FitsMoneyColumn(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(AmountPlaces)) && d.Abs().LessThanOrEqual(MaxAmount)
}

// User represents an account holder.
type User struct {
	ID            int64           `json:"id"`
	Email         string          `json:"email"`
	Name          string          `json:"name"`
	PasswordHash  string          `json:"-"`
	MonthlyBudget decimal.Decimal `json:"monthlyBudget"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Expense represents a single expense entry owned by one user.
type Expense struct {
	ID          int             `json:"id"`
	UserID      int64           `json:"-"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Date        Date            `json:"date"`
	CreatedAt   time.Time       `json:"created_at"`
}

// CategoryTotal is the spend of one category within a month.
type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
	Count    int             `json:"count"`
}

// TrendPoint is the total spend of one calendar month.
type TrendPoint struct {
	Month    string          `json:"month"`
	MonthNum int             `json:"month_num"`
	YearNum  int             `json:"year_num"`
	Total    decimal.Decimal `json:"total"`
}

// Stats is the dashboard aggregation bundle for one month.
type Stats struct {
	TotalSpent   decimal.Decimal `json:"totalSpent"`
	ExpenseCount int             `json:"expenseCount"`
	ByCategory   []CategoryTotal `json:"byCategory"`
	MonthlyTrend []TrendPoint    `json:"monthlyTrend"`
}

// TrendLabel formats a month as shown on the trend chart, e.g. "Mar 2024".
func TrendLabel(year int, month time.Month) string {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format("Jan 2006")
}
