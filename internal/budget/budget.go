// Package budget derives monthly budget status from spend and budget.
// Nothing here is stored; status is recomputed on every read.
package budget

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Level is the severity of budget use.
type Level string

const (
	LevelOK       Level = "ok"
	LevelWarning  Level = "warning"
	LevelCritical Level = "critical"
	LevelExceeded Level = "exceeded"
)

// Percentage thresholds at which each level starts.
var (
	WarningThreshold  = decimal.NewFromInt(80)
	CriticalThreshold = decimal.NewFromInt(90)
	ExceededThreshold = decimal.NewFromInt(100)
)

var hundred = decimal.NewFromInt(100)

func (l Level) rank() int {
	switch l {
	case LevelWarning:
		return 1
	case LevelCritical:
		return 2
	case LevelExceeded:
		return 3
	default:
		return 0
	}
}

// Status is the budget position of one month.
type Status struct {
	Budget     decimal.Decimal `json:"monthlyBudget"`
	TotalSpent decimal.Decimal `json:"totalSpent"`
	Percentage decimal.Decimal `json:"percentage"`
	Remaining  decimal.Decimal `json:"remaining"`
	OverBudget bool            `json:"overBudget"`
	Level      Level           `json:"level"`
}

// Evaluate computes the status of totalSpent against budget. Percentage is
// rounded to two places. Remaining is negative once spend passes the
// budget. A budget of zero or less means no budget: the level is ok and the
// percentage is zero.
func Evaluate(totalSpent, budget decimal.Decimal) Status {
	s := Status{
		Budget:     budget,
		TotalSpent: totalSpent,
		Percentage: decimal.Zero,
		Remaining:  budget.Sub(totalSpent),
		Level:      LevelOK,
	}
	if !budget.IsPositive() {
		s.Remaining = decimal.Zero
		return s
	}

	pct := totalSpent.Div(budget).Mul(hundred)
	s.Percentage = pct.Round(2)
	s.OverBudget = totalSpent.GreaterThan(budget)

	switch {
	case pct.GreaterThanOrEqual(ExceededThreshold):
		s.Level = LevelExceeded
	case pct.GreaterThanOrEqual(CriticalThreshold):
		s.Level = LevelCritical
	case pct.GreaterThanOrEqual(WarningThreshold):
		s.Level = LevelWarning
	}
	return s
}

// Crossed reports whether after is at a higher level than before.
func Crossed(before, after Status) bool {
	return after.Level.rank() > before.Level.rank()
}

// Alert announces that a user's spend reached a new level in a month.
type Alert struct {
	UserID   int64      `json:"userId"`
	Year     int        `json:"year"`
	Month    time.Month `json:"month"`
	Previous Level      `json:"previousLevel"`
	Status   Status     `json:"status"`
	At       time.Time  `json:"at"`
}

// Message is a short human-readable description of the alert. It carries no
// user identifiers.
func (a Alert) Message() string {
	period := time.Date(a.Year, a.Month, 1, 0, 0, 0, 0, time.UTC).Format("January 2006")
	return fmt.Sprintf("Budget %s: %s%% used in %s (%s of %s)",
		a.Status.Level, a.Status.Percentage.StringFixed(2), period,
		a.Status.TotalSpent.StringFixed(2), a.Status.Budget.StringFixed(2))
}

// Notifier delivers alerts.
type Notifier interface {
	Notify(ctx context.Context, alert Alert) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, alert Alert) error

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, alert Alert) error {
	return f(ctx, alert)
}
