package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when a row does not exist or is not owned by
	// the requesting user. Callers cannot tell the two apart.
	ErrNotFound = errors.New("not found")

	// ErrEmailTaken is returned when a user is created with an email that
	// already exists.
	ErrEmailTaken = errors.New("email already registered")
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
