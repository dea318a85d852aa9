// Package dbtest starts a disposable Postgres for integration tests.
package dbtest

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const image = "postgres:16-alpine"

// Postgres starts a container and returns its connection string together
// with a func that terminates it.
func Postgres(ctx context.Context) (string, func(), error) {
	ctr, err := postgres.Run(ctx, image,
		postgres.WithDatabase("expense_tracker_test"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return "", nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	terminate := func() {
		_ = ctr.Terminate(context.Background())
	}

	url, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		terminate()
		return "", nil, fmt.Errorf("failed to get connection string: %w", err)
	}
	return url, terminate, nil
}

// Main runs a package's tests. With TESTCONTAINERS=1 and no
// TEST_DATABASE_URL it points TEST_DATABASE_URL at a fresh container for
// the lifetime of the test binary.
//
//	func TestMain(m *testing.M) { dbtest.Main(m) }
func Main(m *testing.M) {
	if os.Getenv("TESTCONTAINERS") != "1" || os.Getenv("TEST_DATABASE_URL") != "" {
		os.Exit(m.Run())
	}

	url, terminate, err := Postgres(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	_ = os.Setenv("TEST_DATABASE_URL", url)

	code := m.Run()
	terminate()
	os.Exit(code)
}
