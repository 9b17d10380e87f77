package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Sentinel errors for the store layer. ErrConflict and ErrUnavailable are
// safely retryable; ErrNotFound is not.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("concurrent update conflict")
	ErrUnavailable = errors.New("store unavailable")
)

// Postgres error codes mapped to ErrConflict.
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
)

// mapError translates driver errors into the store's sentinel taxonomy,
// keeping the original error in the chain.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
			return fmt.Errorf("%s: %w: %w", op, ErrConflict, err)
		}
	}

	return fmt.Errorf("%s: %w", op, err)
}
