// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package store implements the local side of content-sync: the SQL
// connection (PostgreSQL or SQLite), the sync state mapping table, the
// document repository of the local content store and the upload file
// storage (local disk or S3).
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/MKhiriev/content-sync/internal/logger"
	"github.com/MKhiriev/content-sync/migrations"
	"github.com/Masterminds/squirrel"
)

// Dialect identifies the SQL flavour behind a [DB].
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite3"
)

// DB is a *sql.DB bound to a dialect. Queries are built with
// [DB.builder], which picks the placeholder format of the dialect.
type DB struct {
	*sql.DB
	dialect            Dialect
	errorClassificator ErrorClassificator
	logger             *logger.Logger
}

// NewConnect opens the database described by dsn. postgres:// and
// postgresql:// DSNs are opened with the pgx driver, anything else is treated
// as a SQLite file (an optional sqlite:// or sqlite3:// prefix is removed).
func NewConnect(ctx context.Context, dsn string, log *logger.Logger) (*DB, error) {
	dialect, driverDSN := DetectDialect(dsn)
	switch dialect {
	case DialectPostgres:
		return NewConnectPostgres(ctx, driverDSN, log)
	default:
		return NewConnectSQLite(ctx, driverDSN, log)
	}
}

// DetectDialect returns the dialect of dsn and the DSN to hand to the driver.
func DetectDialect(dsn string) (Dialect, string) {
	dsn = strings.TrimSpace(dsn)
	lower := strings.ToLower(dsn)

	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return DialectPostgres, dsn
	case strings.HasPrefix(lower, "sqlite3://"):
		return DialectSQLite, dsn[len("sqlite3://"):]
	case strings.HasPrefix(lower, "sqlite://"):
		return DialectSQLite, dsn[len("sqlite://"):]
	default:
		return DialectSQLite, dsn
	}
}

// NewDB wraps an already opened connection. It is used by tests and by
// callers that manage the pool themselves.
func NewDB(conn *sql.DB, dialect Dialect, log *logger.Logger) *DB {
	db := &DB{DB: conn, dialect: dialect, logger: log}
	if dialect == DialectPostgres {
		db.errorClassificator = NewPostgresErrorClassifier()
	} else {
		db.errorClassificator = noopClassifier{}
	}
	return db
}

// Dialect reports the SQL flavour of the connection.
func (db *DB) Dialect() Dialect {
	return db.dialect
}

// Migrate applies the embedded schema migrations of the local content store.
func (db *DB) Migrate() error {
	if err := migrations.Migrate(db.DB, string(db.dialect)); err != nil {
		return fmt.Errorf("error migrating local store: %w", err)
	}
	return nil
}

func (db *DB) builder() squirrel.StatementBuilderType {
	if db.dialect == DialectPostgres {
		return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	}
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)
}

// classify maps a driver error to a store sentinel when the dialect knows it.
func (db *DB) classify(err error) error {
	if db.errorClassificator == nil {
		return err
	}
	return db.errorClassificator.Classify(err)
}
