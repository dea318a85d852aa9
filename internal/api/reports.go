package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"gitlab.com/yelinaung/expense-tracker/internal/models"
	"gitlab.com/yelinaung/expense-tracker/internal/report"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

func (h *handler) statsChart(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	p, ok := h.parsePeriod(w, r)
	if !ok {
		return
	}

	totals, month, year, err := h.expenses.CategoryTotals(r.Context(), uid, p.Month, p.Year)
	if err != nil {
		writeInternalError(w, r, err, "Failed to fetch stats")
		return
	}

	png, err := report.CategoryChart(totals, fmt.Sprintf("%s %d", month, year))
	if errors.Is(err, report.ErrNoData) {
		writeError(w, http.StatusNotFound, "No expenses to chart")
		return
	}
	if err != nil {
		writeInternalError(w, r, err, "Failed to render chart")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (h *handler) export(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "xlsx" {
		writeError(w, http.StatusBadRequest, "format must be one of [csv xlsx]")
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

	var (
		body        []byte
		contentType string
	)
	switch format {
	case "xlsx":
		body, err = report.ExpensesXLSX(expenses, exportTitle(filter.Month, filter.Year))
		contentType = contentTypeXLSX
	default:
		body, err = report.ExpensesCSV(expenses)
		contentType = contentTypeCSV
	}
	if err != nil {
		writeInternalError(w, r, err, "Failed to export expenses")
		return
	}

	filename := report.ExportFilename(format, filter.Month, filter.Year)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func exportTitle(month, year int) string {
	if month == 0 || year == 0 {
		return "Expenses"
	}
	return fmt.Sprintf("Expenses - %s", models.TrendLabel(year, time.Month(month)))
}
