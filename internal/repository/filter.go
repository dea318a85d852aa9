package repository

import (
	"strconv"
	"strings"
	"time"

	"gitlab.com/yelinaung/expense-tracker/internal/models"
)

// Clause is one SQL predicate. Expr uses ? as the argument marker; markers
// are numbered when clauses are combined by Where.
type Clause struct {
	Expr string
	Args []any
}

// OwnedBy restricts rows to a single user.
func OwnedBy(userID int64) Clause {
	return Clause{Expr: "user_id = ?", Args: []any{userID}}
}

// InMonth restricts rows to one calendar month.
func InMonth(month time.Month, year int) Clause {
	start, end := monthBounds(month, year)
	return Clause{Expr: "date >= ? AND date < ?", Args: []any{start, end}}
}

// CategoryIs matches an exact category label.
func CategoryIs(label string) Clause {
	return Clause{Expr: "category = ?", Args: []any{label}}
}

// DescriptionContains is a case-insensitive substring match. LIKE
// metacharacters in text match literally.
func DescriptionContains(text string) Clause {
	return Clause{Expr: `description ILIKE ? ESCAPE '\'`, Args: []any{"%" + escapeLike(text) + "%"}}
}

// Where joins clauses with AND and renders positional parameters starting
// at $1. It returns an empty string when there are no clauses.
func Where(clauses ...Clause) (string, []any) {
	if len(clauses) == 0 {
		return "", nil
	}

	var b strings.Builder
	args := make([]any, 0, len(clauses)*2)
	b.WriteString("WHERE ")
	for i, c := range clauses {
		if i > 0 {
			b.WriteString(" AND ")
		}
		expr := c.Expr
		for _, arg := range c.Args {
			args = append(args, arg)
			expr = strings.Replace(expr, "?", "$"+strconv.Itoa(len(args)), 1)
		}
		b.WriteString(expr)
	}
	return b.String(), args
}

// ExpenseFilter holds the optional listing filters of a request.
type ExpenseFilter struct {
	Month    int
	Year     int
	Category string
	Search   string
}

// Clauses returns the predicates for the filter, scoped to userID.
// The ownership predicate is always first.
func (f ExpenseFilter) Clauses(userID int64) []Clause {
	clauses := []Clause{OwnedBy(userID)}
	if f.Month != 0 && f.Year != 0 {
		clauses = append(clauses, InMonth(time.Month(f.Month), f.Year))
	}
	if f.Category != "" && f.Category != models.CategoryAll {
		clauses = append(clauses, CategoryIs(f.Category))
	}
	if f.Search != "" {
		clauses = append(clauses, DescriptionContains(f.Search))
	}
	return clauses
}

func monthBounds(month time.Month, year int) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
