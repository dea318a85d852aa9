package api

import (
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/expense-tracker/internal/expense"
	"gitlab.com/yelinaung/expense-tracker/internal/models"
	"gitlab.com/yelinaung/expense-tracker/internal/repository"
)

type budgetBody struct {
	MonthlyBudget *decimal.Decimal `json:"monthlyBudget"`
}

func (h *handler) getBudget(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	amount, err := h.expenses.Budget(r.Context(), uid)
	if err != nil {
		writeInternalError(w, r, err, "Failed to fetch budget")
		return
	}
	writeJSON(w, http.StatusOK, budgetBody{MonthlyBudget: &amount})
}

func (h *handler) updateBudget(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req budgetBody
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.MonthlyBudget == nil || req.MonthlyBudget.IsNegative() || !models.FitsMoneyColumn(*req.MonthlyBudget) {
		writeError(w, http.StatusBadRequest, "Invalid budget amount")
		return
	}

	err := h.expenses.SetBudget(r.Context(), uid, *req.MonthlyBudget)
	switch {
	case errors.Is(err, expense.ErrInvalidBudget):
		writeError(w, http.StatusBadRequest, "Invalid budget amount")
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "User not found")
	case err != nil:
		writeInternalError(w, r, err, "Failed to update budget")
	default:
		writeJSON(w, http.StatusOK, req)
	}
}

func (h *handler) budgetStatus(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	p, ok := h.parsePeriod(w, r)
	if !ok {
		return
	}

	status, err := h.expenses.BudgetStatus(r.Context(), uid, p.Month, p.Year)
	if err != nil {
		writeInternalError(w, r, err, "Failed to fetch budget status")
		return
	}
	writeJSON(w, http.StatusOK, status)
}
