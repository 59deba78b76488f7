// Package store persists users and notes in Postgres.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"server-notes/internal/goerrors"
)

// storeError maps driver errors to the catalog. notFound is returned for pgx.ErrNoRows.
// Deadlines and connection failures are reported as UpstreamUnavailable, everything else is wrapped as is.
func storeError(err error, notFound *goerrors.CustomError) error {
	if err == nil {
		return nil
	}

	var connectErr *pgconn.ConnectError
	switch {
	case errors.Is(err, pgx.ErrNoRows) && notFound != nil:
		return notFound
	case errors.Is(err, context.DeadlineExceeded), pgconn.Timeout(err), errors.As(err, &connectErr):
		return fmt.Errorf("%w: %v", goerrors.UpstreamUnavailable, err)
	default:
		return fmt.Errorf("database error: %w", err)
	}
}

// uniqueViolation returns the violated constraint name if err is a unique violation.
func uniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}
