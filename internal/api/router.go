// Package api exposes the expense tracker over a JSON HTTP API.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"gitlab.com/yelinaung/expense-tracker/internal/budget"
	"gitlab.com/yelinaung/expense-tracker/internal/expense"
	"gitlab.com/yelinaung/expense-tracker/internal/gemini"
	"gitlab.com/yelinaung/expense-tracker/internal/models"
	"gitlab.com/yelinaung/expense-tracker/internal/repository"
)

// MaxBodyBytes bounds request bodies. Receipt images arrive base64 encoded.
const MaxBodyBytes = 10 << 20

// ExpenseService is the use-case surface the handlers depend on.
type ExpenseService interface {
	Create(ctx context.Context, userID int64, in expense.NewExpense) (*models.Expense, error)
	List(ctx context.Context, userID int64, filter repository.ExpenseFilter) ([]models.Expense, error)
	Update(ctx context.Context, userID int64, id int, in expense.ExpenseUpdate) (*models.Expense, error)
	Delete(ctx context.Context, userID int64, id int) error
	Stats(ctx context.Context, userID int64, month, year int) (*models.Stats, error)
	CategoryTotals(ctx context.Context, userID int64, month, year int) ([]models.CategoryTotal, time.Month, int, error)
	Budget(ctx context.Context, userID int64) (decimal.Decimal, error)
	SetBudget(ctx context.Context, userID int64, amount decimal.Decimal) error
	BudgetStatus(ctx context.Context, userID int64, month, year int) (budget.Status, error)
}

var _ ExpenseService = (*expense.Service)(nil)

// ReceiptExtractor reads purchase details from a receipt image.
type ReceiptExtractor interface {
	ExtractReceipt(ctx context.Context, image []byte, mimeType string) (*gemini.Receipt, error)
}

var _ ReceiptExtractor = (*gemini.Client)(nil)

// Config holds the router dependencies.
type Config struct {
	Expenses ExpenseService
	// Receipts may be nil; receipt extraction then answers 503.
	Receipts ReceiptExtractor
	// Auth authenticates every route except /api/health.
	Auth        func(http.Handler) http.Handler
	FrontendURL string
	// Now completes partial month/year filters. Defaults to time.Now.
	Now func() time.Time
}

type handler struct {
	expenses ExpenseService
	receipts ReceiptExtractor
	validate *requestValidator
	now      func() time.Time
}

// NewRouter builds the HTTP handler for the whole API.
func NewRouter(cfg Config) http.Handler {
	h := &handler{
		expenses: cfg.Expenses,
		receipts: cfg.Receipts,
		validate: newRequestValidator(),
		now:      cfg.Now,
	}
	if h.now == nil {
		h.now = time.Now
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(limitBody(MaxBodyBytes))

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", h.health)

		api.Group(func(p chi.Router) {
			if cfg.Auth != nil {
				p.Use(cfg.Auth)
			}

			p.Get("/budget", h.getBudget)
			p.Put("/budget", h.updateBudget)
			p.Get("/budget/status", h.budgetStatus)

			p.Get("/expenses", h.listExpenses)
			p.Post("/expenses", h.createExpense)
			p.Get("/expenses/stats", h.stats)
			p.Get("/expenses/stats/chart", h.statsChart)
			p.Get("/expenses/export", h.export)
			p.Put("/expenses/{id}", h.updateExpense)
			p.Delete("/expenses/{id}", h.deleteExpense)

			p.Post("/receipt/extract", h.extractReceipt)
		})
	})

	return otelhttp.NewHandler(r, "expense-tracker")
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}
