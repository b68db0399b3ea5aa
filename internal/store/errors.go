// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import "errors"

// Sentinel errors returned by store methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrDocumentNotFound is returned when no document of the collection has
	// the requested id.
	ErrDocumentNotFound = errors.New("document was not found")

	// ErrDocumentExists is returned when a document is created with an
	// explicit id that is already taken.
	ErrDocumentExists = errors.New("document already exists")

	// ErrSchemaMissing is returned when the local store tables are missing
	// (migrations were not applied).
	ErrSchemaMissing = errors.New("local store schema is missing")

	// ErrConnection is returned when the database connection is lost.
	ErrConnection = errors.New("database connection error")

	// ErrMissingRequiredField is returned when a document is created without
	// a top-level field its collection marks as required.
	ErrMissingRequiredField = errors.New("missing required field")

	// ErrMappingStoreClosed is returned by mapping store calls after Close.
	ErrMappingStoreClosed = errors.New("mapping store is closed")

	// ErrFileNotFound is returned when an upload file does not exist.
	ErrFileNotFound = errors.New("upload file was not found")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT or similar
	// read-only query against the database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrBeginningTransaction is returned when the database driver cannot
	// start a new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing an open transaction
	// fails. The transaction is considered rolled back at this point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) or DDL fails.
	ErrExecutingStatement = errors.New("failed to executing statement")

	// ErrScanningRow is returned when scanning column values from a single
	// result row fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrEncodingDocument is returned when a document cannot be serialised to
	// or from its JSON column.
	ErrEncodingDocument = errors.New("failed to encode document")
)
