package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"gitlab.com/yelinaung/expense-tracker/internal/auth"
	"gitlab.com/yelinaung/expense-tracker/internal/expense"
	"gitlab.com/yelinaung/expense-tracker/internal/expense/expensetest"
	"gitlab.com/yelinaung/expense-tracker/internal/gemini"
	"gitlab.com/yelinaung/expense-tracker/internal/models"
)

var fixedNow = time.Date(2024, time.March, 15, 9, 0, 0, 0, time.UTC)

// testAuth authenticates every request as the user named by X-User,
// defaulting to user 1.
func testAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := int64(1)
		if raw := r.Header.Get("X-User"); raw != "" {
			id, _ = strconv.ParseInt(raw, 10, 64)
		}
		ctx := auth.WithIdentity(r.Context(), auth.Identity{ID: id, Email: "user@example.com"})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type fakeCategorizer struct{ label string }

func (f fakeCategorizer) Categorize(context.Context, string) (string, error) {
	return f.label, nil
}

type fakeReceipts struct {
	receipt  *gemini.Receipt
	err      error
	mimeType string
}

func (f *fakeReceipts) ExtractReceipt(_ context.Context, _ []byte, mimeType string) (*gemini.Receipt, error) {
	f.mimeType = mimeType
	return f.receipt, f.err
}

type testServer struct {
	handler http.Handler
	store   *expensetest.MemStore
}

func newTestServer(t *testing.T, receipts ReceiptExtractor) *testServer {
	t.Helper()
	store := expensetest.NewMemStore()
	svc := expense.NewService(store, store,
		expense.NewResolver(fakeCategorizer{label: models.CategoryShopping}),
		expense.WithClock(func() time.Time { return fixedNow }),
	)
	return &testServer{
		handler: NewRouter(Config{
			Expenses:    svc,
			Receipts:    receipts,
			Auth:        testAuth,
			FrontendURL: "http://localhost:5173",
			Now:         func() time.Time { return fixedNow },
		}),
		store: store,
	}
}

func (s *testServer) do(t *testing.T, method, path string, body any, user ...int64) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if len(user) > 0 {
		req.Header.Set("X-User", strconv.FormatInt(user[0], 10))
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeBody[map[string]string](t, rec)["error"]
}

type expenseJSON struct {
	ID          int             `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Date        string          `json:"date"`
}

func (s *testServer) createExpense(t *testing.T, body map[string]any, user ...int64) expenseJSON {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/expenses", body, user...)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[expenseJSON](t, rec)
}

func TestHealth_NoAuth(t *testing.T) {
	t.Parallel()

	h := NewRouter(Config{
		Expenses:    expense.NewService(expensetest.NewMemStore(), expensetest.NewMemStore(), nil),
		Auth:        auth.Middleware(auth.NewVerifier("secret")),
		FrontendURL: "http://localhost:5173",
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[map[string]string](t, rec)
	require.Equal(t, "ok", body["status"])
	_, err := time.Parse(time.RFC3339, body["timestamp"])
	require.NoError(t, err)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/expenses", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Authorization header is required", errorMessage(t, rec))
}

func TestCORS_Preflight(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/expenses", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	require.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCreateExpense(t *testing.T) {
	t.Parallel()

	t.Run("categorizes and defaults date", func(t *testing.T) {
		t.Parallel()
		s := newTestServer(t, nil)

		exp := s.createExpense(t, map[string]any{"amount": 12.5, "description": "  New shoes  "})
		require.NotZero(t, exp.ID)
		require.True(t, decimal.RequireFromString("12.5").Equal(exp.Amount))
		require.Equal(t, "New shoes", exp.Description)
		require.Equal(t, models.CategoryShopping, exp.Category)
		require.Equal(t, "2024-03-15", exp.Date)
	})

	t.Run("largest storable amount", func(t *testing.T) {
		t.Parallel()
		s := newTestServer(t, nil)

		exp := s.createExpense(t, map[string]any{"amount": "99999999.99", "description": "House"})
		require.Equal(t, "99999999.99", exp.Amount.StringFixed(2))
	})

	t.Run("All is categorized like a blank category", func(t *testing.T) {
		t.Parallel()
		s := newTestServer(t, nil)

		exp := s.createExpense(t, map[string]any{"amount": 3, "description": "Socks", "category": "All"})
		require.Equal(t, models.CategoryShopping, exp.Category)
	})

	t.Run("manual category and date win", func(t *testing.T) {
		t.Parallel()
		s := newTestServer(t, nil)

		exp := s.createExpense(t, map[string]any{
			"amount": "7.25", "description": "Bus", "category": "Transport", "date": "2024-02-29",
		})
		require.Equal(t, "Transport", exp.Category)
		require.Equal(t, "2024-02-29", exp.Date)
	})

	tests := []struct {
		name    string
		body    any
		wantMsg string
	}{
		{"zero amount", map[string]any{"amount": 0, "description": "x"}, "amount"},
		{"negative amount", map[string]any{"amount": -3, "description": "x"}, "amount"},
		{"missing amount", map[string]any{"description": "x"}, "amount"},
		{"sub-cent amount", `{"amount":0.001,"description":"x"}`, "at most 2 decimal places"},
		{"three decimal places", `{"amount":"12.345","description":"x"}`, "at most 2 decimal places"},
		{"amount too large", `{"amount":123456789012,"description":"x"}`, "not exceed 99999999.99"},
		{"missing description", map[string]any{"amount": 3}, "description"},
		{"blank description", map[string]any{"amount": 3, "description": "   "}, "description"},
		{"long description", map[string]any{"amount": 3, "description": strings.Repeat("a", 501)}, "description"},
		{"bad date", map[string]any{"amount": 3, "description": "x", "date": "15/03/2024"}, "date"},
		{"long category", map[string]any{"amount": 3, "description": "x", "category": strings.Repeat("c", 101)}, "category"},
		{"malformed json", `{"amount":`, "Invalid request body"},
		{"non-numeric amount", `{"amount":"abc","description":"x"}`, "Invalid request body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := newTestServer(t, nil)

			rec := s.do(t, http.MethodPost, "/api/expenses", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			require.Contains(t, errorMessage(t, rec), tt.wantMsg)
			require.Zero(t, s.store.Len())
		})
	}
}

func TestCreateExpense_BodyTooLarge(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil)

	body := `{"amount":1,"description":"` + strings.Repeat("a", MaxBodyBytes) + `"}`
	rec := s.do(t, http.MethodPost, "/api/expenses", body)
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestListExpenses(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil)

	s.createExpense(t, map[string]any{"amount": 10, "description": "Lunch", "category": "Food & Dining", "date": "2024-03-02"})
	s.createExpense(t, map[string]any{"amount": 20, "description": "Dinner", "category": "Food & Dining", "date": "2024-03-05"})
	s.createExpense(t, map[string]any{"amount": 30, "description": "Taxi", "category": "Transport", "date": "2024-02-20"})
	s.createExpense(t, map[string]any{"amount": 99, "description": "Other user's lunch", "date": "2024-03-03"}, 2)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"all, newest first", "", []string{"Dinner", "Lunch", "Taxi"}},
		{"month", "?month=3&year=2024", []string{"Dinner", "Lunch"}},
		{"category", "?category=Transport", []string{"Taxi"}},
		{"category All", "?category=All", []string{"Dinner", "Lunch", "Taxi"}},
		{"search is case-insensitive", "?search=LUN", []string{"Lunch"}},
		{"search matches nothing", "?search=zzz", []string{}},
		{"lone month uses the current year", "?month=2", []string{"Taxi"}},
		{"lone year uses the current month", "?year=2024", []string{"Dinner", "Lunch"}},
		{"other year matches nothing", "?month=3&year=2023", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodGet, "/api/expenses"+tt.query, nil)
			require.Equal(t, http.StatusOK, rec.Code)

			got := []string{}
			for _, e := range decodeBody[[]expenseJSON](t, rec) {
				got = append(got, e.Description)
			}
			require.Equal(t, tt.want, got)
		})
	}

	t.Run("invalid month", func(t *testing.T) {
		for _, q := range []string{"?month=13&year=2024", "?month=abc", "?year=-1"} {
			rec := s.do(t, http.MethodGet, "/api/expenses"+q, nil)
			require.Equal(t, http.StatusBadRequest, rec.Code, q)
		}
	})
}

func TestUpdateExpense(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil)
	exp := s.createExpense(t, map[string]any{"amount": 10, "description": "Lunch", "date": "2024-03-02"})
	path := "/api/expenses/" + strconv.Itoa(exp.ID)

	full := map[string]any{"amount": "11.75", "description": " Brunch ", "category": "Food & Dining", "date": "2024-03-03"}

	t.Run("replaces every field", func(t *testing.T) {
		rec := s.do(t, http.MethodPut, path, full)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		got := decodeBody[expenseJSON](t, rec)
		require.Equal(t, exp.ID, got.ID)
		require.True(t, decimal.RequireFromString("11.75").Equal(got.Amount))
		require.Equal(t, "Brunch", got.Description)
		require.Equal(t, "Food & Dining", got.Category)
		require.Equal(t, "2024-03-03", got.Date)
	})

	t.Run("requires every field", func(t *testing.T) {
		for _, missing := range []string{"amount", "description", "category", "date"} {
			body := map[string]any{}
			for k, v := range full {
				if k != missing {
					body[k] = v
				}
			}
			rec := s.do(t, http.MethodPut, path, body)
			require.Equal(t, http.StatusBadRequest, rec.Code, missing)
			require.Contains(t, errorMessage(t, rec), missing)
		}
	})

	t.Run("rejects invalid values", func(t *testing.T) {
		tests := []struct {
			name    string
			field   string
			value   any
			wantMsg string
		}{
			{"sub-cent amount", "amount", "0.001", "at most 2 decimal places"},
			{"zero amount", "amount", 0, "amount must be greater than 0"},
			{"amount too large", "amount", "100000000", "not exceed 99999999.99"},
			{"All category", "category", "All", `category "All" is reserved`},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				body := map[string]any{}
				for k, v := range full {
					body[k] = v
				}
				body[tt.field] = tt.value

				rec := s.do(t, http.MethodPut, path, body)
				require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
				require.Contains(t, errorMessage(t, rec), tt.wantMsg)
			})
		}

		rec := s.do(t, http.MethodGet, "/api/expenses", nil)
		got := decodeBody[[]expenseJSON](t, rec)
		require.Len(t, got, 1)
		require.Equal(t, "11.75", got[0].Amount.StringFixed(2))
		require.Equal(t, "Food & Dining", got[0].Category)
	})

	t.Run("other user's expense is not found", func(t *testing.T) {
		rec := s.do(t, http.MethodPut, path, full, 2)
		require.Equal(t, http.StatusNotFound, rec.Code)
		require.Equal(t, "Expense not found", errorMessage(t, rec))
	})

	t.Run("unknown and malformed ids are not found", func(t *testing.T) {
		for _, id := range []string{"999", "abc", "-1", "0"} {
			rec := s.do(t, http.MethodPut, "/api/expenses/"+id, full)
			require.Equal(t, http.StatusNotFound, rec.Code, id)
		}
	})
}

func TestDeleteExpense(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil)
	exp := s.createExpense(t, map[string]any{"amount": 10, "description": "Lunch"})
	path := "/api/expenses/" + strconv.Itoa(exp.ID)

	rec := s.do(t, http.MethodDelete, path, nil, 2)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Expense deleted successfully", decodeBody[map[string]string](t, rec)["message"])
	require.Zero(t, s.store.Len())

	rec = s.do(t, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/expenses/nope", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBudget(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil)

	type budgetJSON struct {
		MonthlyBudget decimal.Decimal `json:"monthlyBudget"`
	}

	rec := s.do(t, http.MethodGet, "/api/budget", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, decodeBody[budgetJSON](t, rec).MonthlyBudget.IsZero())

	rec = s.do(t, http.MethodPut, "/api/budget", map[string]any{"monthlyBudget": 200})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.True(t, decimal.NewFromInt(200).Equal(decodeBody[budgetJSON](t, rec).MonthlyBudget))

	rec = s.do(t, http.MethodGet, "/api/budget", nil)
	require.True(t, decimal.NewFromInt(200).Equal(decodeBody[budgetJSON](t, rec).MonthlyBudget))

	rec = s.do(t, http.MethodPut, "/api/budget", map[string]any{"monthlyBudget": 0})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/budget", map[string]any{"monthlyBudget": "99999999.99"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	tests := []struct {
		name string
		body any
	}{
		{"negative", map[string]any{"monthlyBudget": -5}},
		{"missing", map[string]any{}},
		{"null", map[string]any{"monthlyBudget": nil}},
		{"too large", `{"monthlyBudget":1e12}`},
		{"just over the limit", `{"monthlyBudget":"100000000.00"}`},
		{"three decimal places", `{"monthlyBudget":"10.005"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPut, "/api/budget", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			require.Equal(t, "Invalid budget amount", errorMessage(t, rec))
		})
	}

	rec = s.do(t, http.MethodGet, "/api/budget", nil)
	require.Equal(t, "99999999.99", decodeBody[budgetJSON](t, rec).MonthlyBudget.StringFixed(2))
}

func TestBudgetStatus(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil)

	s.do(t, http.MethodPut, "/api/budget", map[string]any{"monthlyBudget": 100})
	s.createExpense(t, map[string]any{"amount": 85, "description": "Groceries", "date": "2024-03-10"})

	type statusJSON struct {
		MonthlyBudget decimal.Decimal `json:"monthlyBudget"`
		TotalSpent    decimal.Decimal `json:"totalSpent"`
		Percentage    decimal.Decimal `json:"percentage"`
		Remaining     decimal.Decimal `json:"remaining"`
		OverBudget    bool            `json:"overBudget"`
		Level         string          `json:"level"`
	}

	rec := s.do(t, http.MethodGet, "/api/budget/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[statusJSON](t, rec)
	require.True(t, decimal.NewFromInt(85).Equal(got.TotalSpent))
	require.True(t, decimal.NewFromInt(85).Equal(got.Percentage))
	require.True(t, decimal.NewFromInt(15).Equal(got.Remaining))
	require.False(t, got.OverBudget)
	require.Equal(t, "warning", got.Level)

	rec = s.do(t, http.MethodGet, "/api/budget/status?month=2&year=2024", nil)
	got = decodeBody[statusJSON](t, rec)
	require.True(t, got.TotalSpent.IsZero())
	require.Equal(t, "ok", got.Level)
}

func TestStats(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil)

	s.createExpense(t, map[string]any{"amount": 10, "description": "Lunch", "category": "Food & Dining", "date": "2024-03-02"})
	s.createExpense(t, map[string]any{"amount": 25, "description": "Shirt", "date": "2024-03-04"})
	s.createExpense(t, map[string]any{"amount": 5, "description": "Bus", "category": "Transport", "date": "2024-01-04"})

	type statsJSON struct {
		TotalSpent   decimal.Decimal `json:"totalSpent"`
		ExpenseCount int             `json:"expenseCount"`
		ByCategory   []struct {
			Category string          `json:"category"`
			Total    decimal.Decimal `json:"total"`
			Count    int             `json:"count"`
		} `json:"byCategory"`
		MonthlyTrend []struct {
			Month string          `json:"month"`
			Total decimal.Decimal `json:"total"`
		} `json:"monthlyTrend"`
	}

	rec := s.do(t, http.MethodGet, "/api/expenses/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[statsJSON](t, rec)
	require.True(t, decimal.NewFromInt(35).Equal(got.TotalSpent))
	require.Equal(t, 2, got.ExpenseCount)
	require.Len(t, got.ByCategory, 2)
	require.Equal(t, models.CategoryShopping, got.ByCategory[0].Category)
	require.Len(t, got.MonthlyTrend, 2)
	require.Equal(t, "Jan 2024", got.MonthlyTrend[0].Month)
	require.Equal(t, "Mar 2024", got.MonthlyTrend[1].Month)

	rec = s.do(t, http.MethodGet, "/api/expenses/stats?month=1&year=2024", nil)
	got = decodeBody[statsJSON](t, rec)
	require.True(t, decimal.NewFromInt(5).Equal(got.TotalSpent))
}

func TestStatsChart(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodGet, "/api/expenses/stats/chart", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	s.createExpense(t, map[string]any{"amount": 10, "description": "Lunch", "category": "Food & Dining"})
	s.createExpense(t, map[string]any{"amount": 20, "description": "Shirt"})

	rec = s.do(t, http.MethodGet, "/api/expenses/stats/chart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	require.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))
}

func TestExport(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil)

	s.createExpense(t, map[string]any{"amount": 10, "description": "Lunch", "category": "Food & Dining", "date": "2024-03-02"})
	s.createExpense(t, map[string]any{"amount": 4, "description": "Bus", "category": "Transport", "date": "2024-02-02"})

	t.Run("csv is the default", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/expenses/export?month=3&year=2024", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, contentTypeCSV, rec.Header().Get("Content-Type"))
		require.Equal(t, `attachment; filename="expenses_March_2024.csv"`, rec.Header().Get("Content-Disposition"))
		require.Equal(t, "Date,Description,Category,Amount\n2024-03-02,Lunch,Food & Dining,10.00\n", rec.Body.String())
	})

	t.Run("lone month uses the current year", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/expenses/export?month=2", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, `attachment; filename="expenses_February_2024.csv"`, rec.Header().Get("Content-Disposition"))
		require.Equal(t, "Date,Description,Category,Amount\n2024-02-02,Bus,Transport,4.00\n", rec.Body.String())
	})

	t.Run("xlsx", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/expenses/export?format=xlsx", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, contentTypeXLSX, rec.Header().Get("Content-Type"))
		require.Contains(t, rec.Header().Get("Content-Disposition"), "expenses_all.xlsx")

		f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
		require.NoError(t, err)
		defer func() { _ = f.Close() }()
		rows, err := f.GetRows("Expenses")
		require.NoError(t, err)
		require.Len(t, rows, 5)
	})

	t.Run("unknown format", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/expenses/export?format=pdf", nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestExtractReceipt(t *testing.T) {
	t.Parallel()

	pngHeader := base64.StdEncoding.EncodeToString([]byte("\x89PNG\r\n\x1a\n0000"))

	t.Run("not configured", func(t *testing.T) {
		t.Parallel()
		s := newTestServer(t, nil)
		rec := s.do(t, http.MethodPost, "/api/receipt/extract", map[string]string{"image": pngHeader})
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("image required", func(t *testing.T) {
		t.Parallel()
		s := newTestServer(t, &fakeReceipts{})
		rec := s.do(t, http.MethodPost, "/api/receipt/extract", map[string]string{})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "Image is required", errorMessage(t, rec))
	})

	t.Run("invalid base64", func(t *testing.T) {
		t.Parallel()
		s := newTestServer(t, &fakeReceipts{})
		rec := s.do(t, http.MethodPost, "/api/receipt/extract", map[string]string{"image": "***"})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("extracts", func(t *testing.T) {
		t.Parallel()
		fake := &fakeReceipts{receipt: &gemini.Receipt{
			Amount:      decimal.RequireFromString("45.67"),
			Merchant:    "Starbucks",
			Description: "Coffee",
		}}
		s := newTestServer(t, fake)

		rec := s.do(t, http.MethodPost, "/api/receipt/extract",
			map[string]string{"image": "data:image/webp;base64," + pngHeader})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		require.Equal(t, "image/webp", fake.mimeType)

		got := decodeBody[receiptResponse](t, rec)
		require.True(t, decimal.RequireFromString("45.67").Equal(got.Amount))
		require.Equal(t, "Starbucks", got.Merchant)
		require.Equal(t, "Starbucks - Coffee", got.Description)
	})

	t.Run("extractor failure", func(t *testing.T) {
		t.Parallel()
		s := newTestServer(t, &fakeReceipts{err: gemini.ErrTimeout})
		rec := s.do(t, http.MethodPost, "/api/receipt/extract", map[string]string{"image": pngHeader})
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.Equal(t, "Failed to extract receipt data", errorMessage(t, rec))
	})
}
