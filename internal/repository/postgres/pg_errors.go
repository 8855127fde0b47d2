package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/perzequiel/woki-brain/internal/repository"
)

const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// IsRetryable reports whether err is a serialization failure or deadlock.
func IsRetryable(err error) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeSerializationFailure, codeDeadlockDetected:
			return true
		}
	}

	return false
}

// wrapDBErr maps driver errors onto repository errors and prefixes op.
// A lost serialization race is reported as a conflict: another writer
// touched the same tables first.
func wrapDBErr(op string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	var pge *pgconn.PgError
	if errors.As(err, &pge) {
		switch pge.Code {
		case codeUniqueViolation:
			return fmt.Errorf("%s:%w", op, repository.ErrConflict)
		case codeForeignKeyViolation:
			return fmt.Errorf("%s: %s:%w", op, pge.ConstraintName, repository.ErrNotFound)
		}
	}

	if IsRetryable(err) {
		return fmt.Errorf("%s:%w", op, repository.ErrConflict)
	}

	return fmt.Errorf("%s:%w", op, err)
}
