package database

import (
	"context"
	"fmt"
)

// RunMigrations creates the database schema. Every statement is idempotent,
// so it runs on each startup.
func RunMigrations(ctx context.Context, db PGXDB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			email VARCHAR(255) UNIQUE NOT NULL,
			name VARCHAR(255) NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			monthly_budget DECIMAL(10, 2) DEFAULT 0,
			created_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS expenses (
			id SERIAL PRIMARY KEY,
			user_id INTEGER REFERENCES users(id) ON DELETE CASCADE,
			amount DECIMAL(10, 2) NOT NULL,
			description VARCHAR(500) NOT NULL,
			category VARCHAR(100) NOT NULL DEFAULT 'Other',
			date DATE NOT NULL DEFAULT CURRENT_DATE,
			created_at TIMESTAMP DEFAULT NOW()
		)`,

		// Databases created before budgets existed.
		`ALTER TABLE users ADD COLUMN IF NOT EXISTS monthly_budget DECIMAL(10, 2) DEFAULT 0`,

		`CREATE INDEX IF NOT EXISTS idx_expenses_user_date ON expenses(user_id, date)`,
	}

	for i, migration := range migrations {
		if _, err := db.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}
