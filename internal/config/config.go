// Package config provides application configuration loading from environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Exporter names accepted by OTEL_EXPORTER.
const (
	ExporterNone     = "none"
	ExporterStdout   = "stdout"
	ExporterOTLPHTTP = "otlp-http"
	ExporterOTLPGRPC = "otlp-grpc"
)

const (
	defaultPort            = 3001
	defaultFrontendURL     = "http://localhost:5173"
	defaultGeminiModel     = "gemini-2.5-flash"
	defaultAMQPExchange    = "budget"
	defaultAMQPQueue       = "budget_alerts"
	defaultShutdownTimeout = 10 * time.Second
)

// Config holds all configuration for the application.
type Config struct {
	Port            int
	DatabaseURL     string
	JWTSecret       string
	FrontendURL     string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	GeminiAPIKey string
	GeminiModel  string

	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	TelegramBotToken    string
	TelegramAlertChatID int64

	OTelExporter string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:             defaultPort,
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		FrontendURL:      envOr("FRONTEND_URL", defaultFrontendURL),
		LogLevel:         os.Getenv("LOG_LEVEL"),
		LogFormat:        os.Getenv("LOG_FORMAT"),
		ShutdownTimeout:  defaultShutdownTimeout,
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiModel:      envOr("GEMINI_MODEL", defaultGeminiModel),
		AMQPURL:          os.Getenv("AMQP_URL"),
		AMQPExchange:     envOr("AMQP_EXCHANGE", defaultAMQPExchange),
		AMQPQueue:        envOr("AMQP_QUEUE", defaultAMQPQueue),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		OTelExporter:     strings.ToLower(envOr("OTEL_EXPORTER", ExporterNone)),
	}

	var errs []string

	if portStr := os.Getenv("PORT"); portStr != "" {
		p, err := strconv.Atoi(portStr)
		if err != nil || p <= 0 || p > 65535 {
			errs = append(errs, fmt.Sprintf("PORT must be a valid port number, got %q", portStr))
		} else {
			cfg.Port = p
		}
	}

	if timeoutStr := os.Getenv("SHUTDOWN_TIMEOUT"); timeoutStr != "" {
		d, err := time.ParseDuration(timeoutStr)
		if err != nil || d <= 0 {
			errs = append(errs, fmt.Sprintf("SHUTDOWN_TIMEOUT must be a positive duration, got %q", timeoutStr))
		} else {
			cfg.ShutdownTimeout = d
		}
	}

	if chatStr := os.Getenv("TELEGRAM_ALERT_CHAT_ID"); chatStr != "" {
		id, err := strconv.ParseInt(strings.TrimSpace(chatStr), 10, 64)
		if err != nil {
			errs = append(errs, fmt.Sprintf("TELEGRAM_ALERT_CHAT_ID must be an integer, got %q", chatStr))
		} else {
			cfg.TelegramAlertChatID = id
		}
	}

	errs = append(errs, cfg.validate()...)
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return cfg, nil
}

// validate checks that all required configuration is present.
func (c *Config) validate() []string {
	var errs []string

	if c.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}

	if c.JWTSecret == "" {
		errs = append(errs, "JWT_SECRET is required")
	}

	switch c.OTelExporter {
	case ExporterNone, ExporterStdout, ExporterOTLPHTTP, ExporterOTLPGRPC:
	default:
		errs = append(errs, fmt.Sprintf("OTEL_EXPORTER must be one of none, stdout, otlp-http, otlp-grpc, got %q", c.OTelExporter))
	}

	if c.TelegramBotToken != "" && c.TelegramAlertChatID == 0 {
		errs = append(errs, "TELEGRAM_ALERT_CHAT_ID is required when TELEGRAM_BOT_TOKEN is set")
	}

	return errs
}

// AIEnabled reports whether an AI provider is configured.
func (c *Config) AIEnabled() bool {
	return c.GeminiAPIKey != ""
}

// TelegramAlertsEnabled reports whether budget alerts go to Telegram.
func (c *Config) TelegramAlertsEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramAlertChatID != 0
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
