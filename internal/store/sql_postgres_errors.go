// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrorClassificator maps driver-specific errors onto the sentinel errors of
// this package. Errors it does not recognise are returned unchanged.
type ErrorClassificator interface {
	Classify(err error) error
}

// PostgresErrorClassifier implements [ErrorClassificator] for PostgreSQL.
// It inspects the pgconn error code returned by the pgx driver.
type PostgresErrorClassifier struct{}

// NewPostgresErrorClassifier constructs a [PostgresErrorClassifier] ready for use.
func NewPostgresErrorClassifier() *PostgresErrorClassifier {
	return &PostgresErrorClassifier{}
}

// Classify implements [ErrorClassificator]. It attempts to unwrap err as a
// *pgconn.PgError and wraps it with the matching sentinel.
//
//   - 23505 unique_violation  → [ErrDocumentExists]
//   - 42P01 undefined_table   → [ErrSchemaMissing]
//   - 42703 undefined_column  → [ErrSchemaMissing]
//   - class 08 connection errors → [ErrConnection]
func (c *PostgresErrorClassifier) Classify(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		return fmt.Errorf("%w: %w", ErrDocumentExists, err)
	case pgerrcode.UndefinedTable, pgerrcode.UndefinedColumn:
		return fmt.Errorf("%w: %w", ErrSchemaMissing, err)
	}

	if pgerrcode.IsConnectionException(pgErr.Code) {
		return fmt.Errorf("%w: %w", ErrConnection, err)
	}

	return err
}

type noopClassifier struct{}

func (noopClassifier) Classify(err error) error { return err }
