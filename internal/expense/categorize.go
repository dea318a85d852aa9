package expense

import (
	"context"
	"strings"

	"gitlab.com/yelinaung/expense-tracker/internal/logger"
	"gitlab.com/yelinaung/expense-tracker/internal/models"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "gitlab.com/yelinaung/expense-tracker/internal/expense"

// Categorizer suggests a category label for a description.
type Categorizer interface {
	Categorize(ctx context.Context, description string) (string, error)
}

// Outcome tells how a category was chosen.
type Outcome string

const (
	// OutcomeManual means the caller supplied the category.
	OutcomeManual Outcome = "manual"
	// OutcomeResolved means the categorizer returned a known category.
	OutcomeResolved Outcome = "resolved"
	// OutcomeFallback means the categorizer was unavailable, failed, or
	// answered outside the category list, and Other was used.
	OutcomeFallback Outcome = "fallback"
)

// Resolution is the category chosen for an expense and how it was chosen.
// Reason is set for fallbacks.
type Resolution struct {
	Category string
	Outcome  Outcome
	Reason   string
}

// Resolver applies the categorization policy. A nil categorizer is valid
// and always falls back.
type Resolver struct {
	categorizer Categorizer
	outcomes    metric.Int64Counter
}

// NewResolver creates a Resolver that counts outcomes on the global meter
// provider.
func NewResolver(categorizer Categorizer) *Resolver {
	return newResolver(categorizer, otel.Meter(meterName))
}

func newResolver(categorizer Categorizer, meter metric.Meter) *Resolver {
	outcomes, err := meter.Int64Counter(
		"expense.categorization.outcomes",
		metric.WithDescription("Categorization results by outcome"),
	)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("failed to create categorization counter")
	}
	return &Resolver{categorizer: categorizer, outcomes: outcomes}
}

// Resolve picks the category for a new expense. A non-empty manual category
// is used as given and the categorizer is not called. The "All" filter
// sentinel counts as empty. Otherwise the categorizer is asked once; any
// failure yields Other. Resolve never fails.
func (r *Resolver) Resolve(ctx context.Context, description, manual string) Resolution {
	if manual = strings.TrimSpace(manual); manual != "" && !isAllSentinel(manual) {
		return r.record(ctx, Resolution{Category: manual, Outcome: OutcomeManual})
	}

	if r.categorizer == nil {
		return r.fallback(ctx, description, "categorizer not configured")
	}

	label, err := r.categorizer.Categorize(ctx, description)
	if err != nil {
		return r.fallback(ctx, description, "categorizer error: "+err.Error())
	}

	category, ok := models.CanonicalCategory(label)
	if !ok {
		return r.fallback(ctx, description, "unknown label: "+logger.SanitizeDescription(label))
	}

	return r.record(ctx, Resolution{Category: category, Outcome: OutcomeResolved})
}

func (r *Resolver) fallback(ctx context.Context, description, reason string) Resolution {
	logger.Log.Warn().
		Str("description", logger.SanitizeDescription(description)).
		Str("reason", reason).
		Msg("categorization fell back to Other")
	return r.record(ctx, Resolution{Category: models.CategoryOther, Outcome: OutcomeFallback, Reason: reason})
}

func (r *Resolver) record(ctx context.Context, res Resolution) Resolution {
	if r.outcomes != nil {
		r.outcomes.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", string(res.Outcome))))
	}
	return res
}

// isAllSentinel reports whether label is the list filter's "All" value,
// which is never stored as a category.
func isAllSentinel(label string) bool {
	return strings.EqualFold(strings.TrimSpace(label), models.CategoryAll)
}
