package expense

import (
	"errors"

	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/expense-tracker/internal/models"
)

var (
	// ErrInvalidAmount is returned for expense amounts that are not positive
	// or do not fit the stored precision.
	ErrInvalidAmount = errors.New("amount must be positive with at most two decimal places")
	// ErrInvalidBudget is returned for budgets below zero or beyond the
	// stored precision.
	ErrInvalidBudget = errors.New("budget must be a non-negative amount with at most two decimal places")
	// ErrReservedCategory is returned when an update names the "All" filter
	// value as a category.
	ErrReservedCategory = errors.New(`category "All" is reserved`)
)

func validAmount(amount decimal.Decimal) bool {
	return amount.IsPositive() && models.FitsMoneyColumn(amount)
}
