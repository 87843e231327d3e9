package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const (
	codeUniqueViolation     pq.ErrorCode = "23505"
	codeForeignKeyViolation pq.ErrorCode = "23503"
	codeInvalidText         pq.ErrorCode = "22P02"
)

// queryer is satisfied by both *sqlx.DB and *sqlx.Tx.
type queryer interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

// isNotFound also accepts a malformed uuid, which cannot match any row.
func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || pqCode(err) == codeInvalidText
}

func pqCode(err error) pq.ErrorCode {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return pqCode(err) == codeUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	return pqCode(err) == codeForeignKeyViolation
}

// insertOrGet looks up a row by its natural key and inserts it on a miss. A
// unique violation from a concurrent writer is answered by re-reading the
// winner's row. Inside a transaction the insert runs under a savepoint so the
// violation leaves the outer transaction usable.
func insertOrGet[T any](
	ctx context.Context,
	db queryer,
	inTx bool,
	lookup func(ctx context.Context) (T, bool, error),
	insert func(ctx context.Context) (T, error),
	onConflict func(),
) (T, bool, error) {
	var zero T

	existing, found, err := lookup(ctx)
	if err != nil {
		return zero, false, err
	}
	if found {
		return existing, false, nil
	}

	if inTx {
		if _, err := db.ExecContext(ctx, "SAVEPOINT insert_or_get"); err != nil {
			return zero, false, fmt.Errorf("create savepoint: %w", err)
		}
	}

	inserted, err := insert(ctx)
	if err == nil {
		if inTx {
			if _, err := db.ExecContext(ctx, "RELEASE SAVEPOINT insert_or_get"); err != nil {
				return zero, false, fmt.Errorf("release savepoint: %w", err)
			}
		}
		return inserted, true, nil
	}
	if !isUniqueViolation(err) {
		return zero, false, err
	}

	if inTx {
		if _, rbErr := db.ExecContext(ctx, "ROLLBACK TO SAVEPOINT insert_or_get"); rbErr != nil {
			return zero, false, fmt.Errorf("rollback to savepoint: %w", rbErr)
		}
	}
	if onConflict != nil {
		onConflict()
	}

	existing, found, err = lookup(ctx)
	if err != nil {
		return zero, false, err
	}
	if !found {
		return zero, false, errors.New("row missing after unique violation")
	}
	return existing, false, nil
}

func optionalString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func nullStringValue(value sql.NullString) string {
	if !value.Valid {
		return ""
	}
	return value.String
}
