package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/expense-tracker/internal/expense"
	"gitlab.com/yelinaung/expense-tracker/internal/models"
	"gitlab.com/yelinaung/expense-tracker/internal/repository"
)

type createExpenseRequest struct {
	Amount      decimal.Decimal `json:"amount" validate:"positive,money"`
	Description string          `json:"description" validate:"required,max=500"`
	Category    string          `json:"category" validate:"omitempty,max=100"`
	Date        string          `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

type updateExpenseRequest struct {
	Amount      decimal.Decimal `json:"amount" validate:"positive,money"`
	Description string          `json:"description" validate:"required,max=500"`
	Category    string          `json:"category" validate:"required,max=100"`
	Date        string          `json:"date" validate:"required,datetime=2006-01-02"`
}

// periodQuery is the optional month/year selector of read endpoints.
type periodQuery struct {
	Month int `json:"month" validate:"omitempty,min=1,max=12"`
	Year  int `json:"year" validate:"omitempty,min=1970,max=9999"`
}

// parsePeriod reads month and year from the query string, answering 400 on
// malformed values.
func (h *handler) parsePeriod(w http.ResponseWriter, r *http.Request) (periodQuery, bool) {
	var p periodQuery
	q := r.URL.Query()

	for _, field := range []struct {
		name string
		dst  *int
	}{{"month", &p.Month}, {"year", &p.Year}} {
		raw := strings.TrimSpace(q.Get(field.name))
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, field.name+" must be a number")
			return p, false
		}
		*field.dst = n
	}

	if err := h.validate.Struct(p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return p, false
	}
	return p, true
}

// parseFilter reads the listing filters shared by list and export. Without
// month and year every month is listed.
func (h *handler) parseFilter(w http.ResponseWriter, r *http.Request) (repository.ExpenseFilter, bool) {
	p, ok := h.parsePeriod(w, r)
	if !ok {
		return repository.ExpenseFilter{}, false
	}
	q := r.URL.Query()
	filter := repository.ExpenseFilter{
		Month:    p.Month,
		Year:     p.Year,
		Category: strings.TrimSpace(q.Get("category")),
		Search:   strings.TrimSpace(q.Get("search")),
	}

	// A lone month or year is completed from today, as for stats.
	if (p.Month == 0) != (p.Year == 0) {
		now := h.now()
		if p.Month == 0 {
			filter.Month = int(now.Month())
		} else {
			filter.Year = now.Year()
		}
	}
	return filter, true
}

func (h *handler) listExpenses(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	filter, ok := h.parseFilter(w, r)
	if !ok {
		return
	}

	expenses, err := h.expenses.List(r.Context(), uid, filter)
	if err != nil {
		writeInternalError(w, r, err, "Failed to fetch expenses")
		return
	}
	if expenses == nil {
		expenses = []models.Expense{}
	}
	writeJSON(w, http.StatusOK, expenses)
}

func (h *handler) createExpense(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req createExpenseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Description = strings.TrimSpace(req.Description)
	req.Category = strings.TrimSpace(req.Category)
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	in := expense.NewExpense{
		Amount:      req.Amount,
		Description: req.Description,
		Category:    req.Category,
	}
	if req.Date != "" {
		date, err := models.ParseDate(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must be in YYYY-MM-DD format")
			return
		}
		in.Date = &date
	}

	exp, err := h.expenses.Create(r.Context(), uid, in)
	if errors.Is(err, expense.ErrInvalidAmount) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		writeInternalError(w, r, err, "Failed to create expense")
		return
	}
	writeJSON(w, http.StatusCreated, exp)
}

func (h *handler) updateExpense(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	id, ok := expenseID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Expense not found")
		return
	}

	var req updateExpenseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Description = strings.TrimSpace(req.Description)
	req.Category = strings.TrimSpace(req.Category)
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	date, err := models.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be in YYYY-MM-DD format")
		return
	}

	exp, err := h.expenses.Update(r.Context(), uid, id, expense.ExpenseUpdate{
		Amount:      req.Amount,
		Description: req.Description,
		Category:    req.Category,
		Date:        date,
	})
	switch {
	case errors.Is(err, expense.ErrInvalidAmount), errors.Is(err, expense.ErrReservedCategory):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "Expense not found")
	case err != nil:
		writeInternalError(w, r, err, "Failed to update expense")
	default:
		writeJSON(w, http.StatusOK, exp)
	}
}

func (h *handler) deleteExpense(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	id, ok := expenseID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Expense not found")
		return
	}

	err := h.expenses.Delete(r.Context(), uid, id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "Expense not found")
	case err != nil:
		writeInternalError(w, r, err, "Failed to delete expense")
	default:
		writeJSON(w, http.StatusOK, map[string]string{"message": "Expense deleted successfully"})
	}
}

func (h *handler) stats(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	p, ok := h.parsePeriod(w, r)
	if !ok {
		return
	}

	stats, err := h.expenses.Stats(r.Context(), uid, p.Month, p.Year)
	if err != nil {
		writeInternalError(w, r, err, "Failed to fetch stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
