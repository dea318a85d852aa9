package expense

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gitlab.com/yelinaung/expense-tracker/internal/models"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"pgregory.net/rapid"
)

func TestResolver_Resolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		categorizer *stubCategorizer
		manual      string
		want        Resolution
		wantCalls   int
	}{
		{
			name:        "manual category wins without calling categorizer",
			categorizer: &stubCategorizer{label: models.CategoryTravel},
			manual:      "Pets",
			want:        Resolution{Category: "Pets", Outcome: OutcomeManual},
			wantCalls:   0,
		},
		{
			name:        "manual category is trimmed",
			categorizer: &stubCategorizer{},
			manual:      "  Shopping ",
			want:        Resolution{Category: models.CategoryShopping, Outcome: OutcomeManual},
		},
		{
			name:        "known label resolves",
			categorizer: &stubCategorizer{label: models.CategoryTravel},
			want:        Resolution{Category: models.CategoryTravel, Outcome: OutcomeResolved},
			wantCalls:   1,
		},
		{
			name:        "label is canonicalized",
			categorizer: &stubCategorizer{label: "food & dining"},
			want:        Resolution{Category: models.CategoryFoodDining, Outcome: OutcomeResolved},
			wantCalls:   1,
		},
		{
			name:        "unknown label falls back",
			categorizer: &stubCategorizer{label: "Groceries"},
			want:        Resolution{Category: models.CategoryOther, Outcome: OutcomeFallback},
			wantCalls:   1,
		},
		{
			name:        "error falls back",
			categorizer: &stubCategorizer{err: errBoom},
			want:        Resolution{Category: models.CategoryOther, Outcome: OutcomeFallback},
			wantCalls:   1,
		},
		{
			name:        "whitespace manual is not manual",
			categorizer: &stubCategorizer{label: models.CategoryHealthcare},
			manual:      "   ",
			want:        Resolution{Category: models.CategoryHealthcare, Outcome: OutcomeResolved},
			wantCalls:   1,
		},
		{
			name:        "All sentinel is not a manual category",
			categorizer: &stubCategorizer{label: models.CategoryEducation},
			manual:      " all ",
			want:        Resolution{Category: models.CategoryEducation, Outcome: OutcomeResolved},
			wantCalls:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := NewResolver(tt.categorizer)
			got := r.Resolve(context.Background(), "some expense", tt.manual)

			require.Equal(t, tt.want.Category, got.Category)
			require.Equal(t, tt.want.Outcome, got.Outcome)
			if got.Outcome == OutcomeFallback {
				require.NotEmpty(t, got.Reason)
			} else {
				require.Empty(t, got.Reason)
			}
			require.Equal(t, tt.wantCalls, tt.categorizer.calls)
		})
	}
}

func TestResolver_NilCategorizer(t *testing.T) {
	t.Parallel()

	got := NewResolver(nil).Resolve(context.Background(), "coffee", "")
	require.Equal(t, models.CategoryOther, got.Category)
	require.Equal(t, OutcomeFallback, got.Outcome)
}

func TestResolver_AlwaysInClosedSetWithoutManual(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		label := rapid.OneOf(rapid.SampledFrom(models.Categories), rapid.String()).Draw(t, "label")
		fail := rapid.Bool().Draw(t, "fail")

		c := &stubCategorizer{label: label}
		if fail {
			c.err = errBoom
		}
		got := NewResolver(c).Resolve(context.Background(), "x", "")

		if !models.IsCategory(got.Category) {
			t.Fatalf("category %q outside the closed set", got.Category)
		}
		if fail && got.Category != models.CategoryOther {
			t.Fatalf("failed call resolved to %q", got.Category)
		}
	})
}

func TestResolver_CountsOutcomes(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	ctx := context.Background()

	r := newResolver(&stubCategorizer{label: "nope"}, provider.Meter(meterName))
	r.Resolve(ctx, "a", "")
	r.Resolve(ctx, "b", "")
	r.Resolve(ctx, "c", models.CategoryTravel)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	counts := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "expense.categorization.outcomes" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				v, _ := dp.Attributes.Value("outcome")
				counts[v.AsString()] += dp.Value
			}
		}
	}
	require.Equal(t, map[string]int64{"fallback": 2, "manual": 1}, counts)
}
