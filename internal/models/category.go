package models

import "strings"

// Category labels. The set is closed: automatic categorization only ever
// yields one of these.
const (
	CategoryFoodDining    = "Food & Dining"
	CategoryTransport     = "Transportation"
	CategoryShopping      = "Shopping"
	CategoryEntertainment = "Entertainment"
	CategoryBills         = "Bills & Utilities"
	CategoryHealthcare    = "Healthcare"
	CategoryTravel        = "Travel"
	CategoryEducation     = "Education"
	CategoryOther         = "Other"
)

// CategoryAll is the client-side "no filter" sentinel. It is never stored
// and never queried as a literal label.
const CategoryAll = "All"

// Categories lists the closed category set in display order.
var Categories = []string{
	CategoryFoodDining,
	CategoryTransport,
	CategoryShopping,
	CategoryEntertainment,
	CategoryBills,
	CategoryHealthcare,
	CategoryTravel,
	CategoryEducation,
	CategoryOther,
}

// IsCategory reports whether label is exactly one of the known categories.
func IsCategory(label string) bool {
	for _, c := range Categories {
		if c == label {
			return true
		}
	}
	return false
}

// CanonicalCategory matches label case-insensitively against the known
// categories and returns the canonical spelling.
func CanonicalCategory(label string) (string, bool) {
	label = strings.TrimSpace(label)
	for _, c := range Categories {
		if strings.EqualFold(c, label) {
			return c, true
		}
	}
	return "", false
}
