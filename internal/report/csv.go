// Package report renders expenses as downloadable files and charts.
package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"gitlab.com/yelinaung/expense-tracker/internal/models"
)

// CSVHeader is the first row of every CSV export.
var CSVHeader = []string{"Date", "Description", "Category", "Amount"}

// ExpensesCSV renders expenses as RFC 4180 CSV, one row per expense in the
// given order.
func ExpensesCSV(expenses []models.Expense) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(CSVHeader); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i := range expenses {
		row := []string{
			expenses[i].Date.String(),
			expenses[i].Description,
			expenses[i].Category,
			expenses[i].Amount.StringFixed(2),
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportFilename names an export file, e.g. "expenses_March_2024.csv".
// Without a month and year the file covers all expenses.
func ExportFilename(ext string, month, year int) string {
	if month < 1 || month > 12 || year == 0 {
		return fmt.Sprintf("expenses_all.%s", ext)
	}
	return fmt.Sprintf("expenses_%s_%d.%s", time.Month(month), year, ext)
}
