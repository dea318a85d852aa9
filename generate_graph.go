//go:build ignore
// +build ignore

package main

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/expense-tracker/internal/models"
	"gitlab.com/yelinaung/expense-tracker/internal/report"
)

func main() {
	totals := []models.CategoryTotal{
		{Category: models.CategoryFoodDining, Total: decimal.NewFromFloat(281.00), Count: 14},
		{Category: models.CategoryBills, Total: decimal.NewFromFloat(120.00), Count: 2},
		{Category: models.CategoryTransport, Total: decimal.NewFromFloat(60.00), Count: 9},
		{Category: models.CategoryEntertainment, Total: decimal.NewFromFloat(25.00), Count: 1},
	}

	chartData, err := report.CategoryChart(totals, "January 2026")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile("graph.png", chartData, 0600); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("✓ Created graph.png - Example category breakdown chart")
}
