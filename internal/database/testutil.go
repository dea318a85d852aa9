package database

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TestDB returns a database connection pool for testing.
// Skips the test if TEST_DATABASE_URL is not set.
func TestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	pool, err := Connect(ctx, dbURL)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
	})

	return pool
}

// CleanupTables truncates all tables for a clean test state.
func CleanupTables(t *testing.T, db PGXDB) {
	t.Helper()

	ctx := context.Background()
	for _, table := range []string{"expenses", "users"} {
		if _, err := db.Exec(ctx, "TRUNCATE TABLE "+table+" RESTART IDENTITY CASCADE"); err != nil {
			t.Fatalf("failed to truncate table %s: %v", table, err)
		}
	}
}

// InsertTestUser creates a user row with a placeholder password hash and
// returns its id.
func InsertTestUser(t *testing.T, db PGXDB, email string) int64 {
	t.Helper()

	var id int64
	err := db.QueryRow(context.Background(), `
		INSERT INTO users (email, name, password_hash)
		VALUES ($1, $2, 'x')
		RETURNING id
	`, email, email).Scan(&id)
	if err != nil {
		t.Fatalf("failed to insert test user %s: %v", email, err)
	}
	return id
}
