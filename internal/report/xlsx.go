package report

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gitlab.com/yelinaung/expense-tracker/internal/models"
)

// SheetName is the worksheet holding exported expenses.
const SheetName = "Expenses"

// ExpensesXLSX renders expenses as a spreadsheet: a title row, a header row,
// one row per expense and a total row.
func ExpensesXLSX(expenses []models.Expense, title string) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#4F46E5"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "#000000", Style: 1},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}
	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}
	totalStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, NumFmt: 2})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}

	set := func(cell string, value any) {
		if err == nil {
			err = f.SetCellValue(SheetName, cell, value)
		}
	}
	style := func(from, to string, id int) {
		if err == nil {
			err = f.SetCellStyle(SheetName, from, to, id)
		}
	}

	set("A1", title)
	style("A1", "A1", titleStyle)

	for i, h := range CSVHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		set(cell, h)
	}
	style("A2", "D2", headerStyle)

	total := decimal.Zero
	row := 3
	for i := range expenses {
		e := &expenses[i]
		set(fmt.Sprintf("A%d", row), e.Date.String())
		set(fmt.Sprintf("B%d", row), e.Description)
		set(fmt.Sprintf("C%d", row), e.Category)
		set(fmt.Sprintf("D%d", row), e.Amount.InexactFloat64())
		style(fmt.Sprintf("D%d", row), fmt.Sprintf("D%d", row), amountStyle)
		total = total.Add(e.Amount)
		row++
	}

	set(fmt.Sprintf("C%d", row), "Total")
	set(fmt.Sprintf("D%d", row), total.InexactFloat64())
	style(fmt.Sprintf("C%d", row), fmt.Sprintf("D%d", row), totalStyle)
	if err != nil {
		return nil, fmt.Errorf("failed to write sheet: %w", err)
	}

	for col, width := range map[string]float64{"A": 12, "B": 48, "C": 20, "D": 12} {
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
