// Package main is the entry point for the expense tracker API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/expense-tracker/internal/api"
	"gitlab.com/yelinaung/expense-tracker/internal/auth"
	"gitlab.com/yelinaung/expense-tracker/internal/budget"
	"gitlab.com/yelinaung/expense-tracker/internal/config"
	"gitlab.com/yelinaung/expense-tracker/internal/database"
	"gitlab.com/yelinaung/expense-tracker/internal/expense"
	"gitlab.com/yelinaung/expense-tracker/internal/gemini"
	"gitlab.com/yelinaung/expense-tracker/internal/logger"
	"gitlab.com/yelinaung/expense-tracker/internal/models"
	"gitlab.com/yelinaung/expense-tracker/internal/notify"
	"gitlab.com/yelinaung/expense-tracker/internal/repository"
	"gitlab.com/yelinaung/expense-tracker/internal/telemetry"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const usage = `usage:
  expense-tracker [serve]
  expense-tracker version
  expense-tracker adduser <email> <name> <password>
  expense-tracker token <email> [ttl]`

func main() {
	args := os.Args[1:]
	cmd := "serve"
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	if cmd == "version" {
		fmt.Printf("expense-tracker %s (commit: %s, built: %s)\n", version, commit, date)
		return
	}

	// Amounts are JSON numbers on the wire.
	decimal.MarshalJSONWithoutQuotes = true

	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to load config")
	}

	logger.SetFormat(cfg.LogFormat)
	logger.SetLevel(cfg.LogLevel)
	logger.InitHashSalt()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case "serve":
		err = serve(ctx, cfg)
	case "adduser":
		err = addUser(ctx, cfg, args)
	case "token":
		err = issueToken(ctx, cfg, args)
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		logger.Log.Fatal().Err(err).Str("command", cmd).Msg("Command failed")
	}
}

func openDatabase(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.RunMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.Log.Info().Msg("Database initialized successfully")
	return pool, nil
}

func serve(ctx context.Context, cfg *config.Config) error {
	shutdownTelemetry, err := telemetry.Setup(ctx, telemetry.Options{
		Exporter:       cfg.OTelExporter,
		ServiceVersion: version,
	})
	if err != nil {
		return fmt.Errorf("failed to set up telemetry: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(sctx); err != nil {
			logger.Log.Warn().Err(err).Msg("Failed to flush telemetry")
		}
	}()

	pool, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	var (
		categorizer expense.Categorizer
		receipts    api.ReceiptExtractor
	)
	if cfg.AIEnabled() {
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return fmt.Errorf("failed to create Gemini client: %w", err)
		}
		categorizer, receipts = client, client
		logger.Log.Info().Str("model", client.Model()).Msg("AI categorization enabled")
	} else {
		logger.Log.Warn().Msg("GEMINI_API_KEY not set, expenses without a category are filed as Other")
	}

	notifier, closeNotifiers, err := buildNotifier(cfg)
	if err != nil {
		return err
	}
	defer closeNotifiers()

	opts := []expense.Option{}
	if notifier != nil {
		opts = append(opts, expense.WithNotifier(notifier))
	}
	svc := expense.NewService(
		repository.NewExpenseRepository(pool),
		repository.NewUserRepository(pool),
		expense.NewResolver(categorizer),
		opts...,
	)

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: api.NewRouter(api.Config{
			Expenses:    svc,
			Receipts:    receipts,
			Auth:        auth.Middleware(auth.NewVerifier(cfg.JWTSecret)),
			FrontendURL: cfg.FrontendURL,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Info().Str("addr", srv.Addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Log.Info().Msg("Shutting down...")
	sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	logger.Log.Info().Msg("Server stopped")
	return nil
}

// buildNotifier combines the configured budget alert channels. The returned
// notifier is nil when none is configured.
func buildNotifier(cfg *config.Config) (budget.Notifier, func(), error) {
	var (
		notifiers notify.Multi
		closers   []func()
	)
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	if cfg.AMQPURL != "" {
		pub, err := notify.DialAMQP(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			return nil, closeAll, fmt.Errorf("failed to connect to AMQP: %w", err)
		}
		notifiers = append(notifiers, pub)
		closers = append(closers, func() {
			if err := pub.Close(); err != nil {
				logger.Log.Warn().Err(err).Msg("Failed to close AMQP connection")
			}
		})
		logger.Log.Info().Str("exchange", cfg.AMQPExchange).Msg("Budget alerts published to AMQP")
	}

	if cfg.TelegramAlertsEnabled() {
		pub, err := notify.NewTelegramPublisher(cfg.TelegramBotToken, cfg.TelegramAlertChatID)
		if err != nil {
			closeAll()
			return nil, func() {}, fmt.Errorf("failed to create Telegram publisher: %w", err)
		}
		notifiers = append(notifiers, pub)
		logger.Log.Info().Msg("Budget alerts sent to Telegram")
	}

	if len(notifiers) == 0 {
		return nil, closeAll, nil
	}
	return notifiers, closeAll, nil
}

func addUser(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 3 {
		return errors.New(usage)
	}
	email, name, password := strings.TrimSpace(args[0]), strings.TrimSpace(args[1]), args[2]
	if email == "" || name == "" || password == "" {
		return errors.New("email, name and password are required")
	}

	pool, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	user := &models.User{Email: email, Name: name, PasswordHash: hash}
	if err := repository.NewUserRepository(pool).Create(ctx, user); err != nil {
		return err
	}

	logger.Log.Info().Str("user_hash", logger.HashUserID(user.ID)).Msg("User created")
	fmt.Printf("created user %d\n", user.ID)
	return nil
}

// issueToken prints a bearer token for an existing user.
func issueToken(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return errors.New(usage)
	}
	ttl := 24 * time.Hour
	if len(args) == 2 {
		d, err := time.ParseDuration(args[1])
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid ttl %q", args[1])
		}
		ttl = d
	}

	pool, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	user, err := repository.NewUserRepository(pool).GetByEmail(ctx, strings.TrimSpace(args[0]))
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}

	token, err := auth.NewVerifier(cfg.JWTSecret).Issue(auth.Identity{ID: user.ID, Email: user.Email}, ttl)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
