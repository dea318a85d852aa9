package report

import (
	"errors"
	"fmt"

	"github.com/go-analyze/charts"
	"gitlab.com/yelinaung/expense-tracker/internal/models"
)

// ErrNoData is returned when there is nothing to chart.
var ErrNoData = errors.New("no expenses to chart")

// CategoryChart renders per-category totals as a PNG pie chart.
func CategoryChart(totals []models.CategoryTotal, period string) ([]byte, error) {
	values := make([]float64, 0, len(totals))
	names := make([]string, 0, len(totals))
	for _, ct := range totals {
		if !ct.Total.IsPositive() {
			continue
		}
		values = append(values, ct.Total.InexactFloat64())
		names = append(names, ct.Category)
	}
	if len(values) == 0 {
		return nil, ErrNoData
	}

	p, err := charts.PieRender(
		values,
		charts.TitleOptionFunc(charts.TitleOption{
			Text: fmt.Sprintf("Expense Breakdown - %s", period),
		}),
		charts.LegendLabelsOptionFunc(names),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}

	return buf, nil
}
