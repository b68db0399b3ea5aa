// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/MKhiriev/content-sync/internal/logger"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	insertMappingSQL = regexp.QuoteMeta(`INSERT INTO "__sync" (collection,remote_id,local_id) VALUES ($1,$2,$3) ON CONFLICT (collection, remote_id) DO UPDATE SET local_id = EXCLUDED.local_id`)
	selectMappingSQL = regexp.QuoteMeta(`SELECT local_id FROM "__sync" WHERE collection = $1 AND remote_id = $2 LIMIT 1`)
	createMappingSQL = regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS "__sync"`)
	dropMappingSQL   = regexp.QuoteMeta(`DROP TABLE IF EXISTS "__sync"`)
)

func newTestMappingStore(t *testing.T) (*mappingStore, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)

	store := NewMappingStore(NewDB(conn, DialectPostgres, logger.Nop()), logger.Nop()).(*mappingStore)
	return store, mock
}

func pgError(code string) error {
	return &pgconn.PgError{Code: code}
}

// ── Open ────────────────────────────────────────────────────────────────────

func TestMappingStore_Open(t *testing.T) {
	store, mock := newTestMappingStore(t)
	defer store.DB.Close()

	mock.ExpectExec(createMappingSQL).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.Open(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMappingStore_Open_Error(t *testing.T) {
	store, mock := newTestMappingStore(t)
	defer store.DB.Close()

	mock.ExpectExec(createMappingSQL).WillReturnError(pgError(pgerrcode.ConnectionFailure))

	err := store.Open(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExecutingStatement)
	assert.ErrorIs(t, err, ErrConnection)
}

// ── Record / Lookup ─────────────────────────────────────────────────────────

func TestMappingStore_Record_PrimesCache(t *testing.T) {
	store, mock := newTestMappingStore(t)
	defer store.DB.Close()

	mock.ExpectExec(insertMappingSQL).
		WithArgs("authors", "7", "1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	ctx := context.Background()
	require.NoError(t, store.Record(ctx, "authors", json.Number("7"), int64(1)))

	// served from the cache: no query expected
	got, ok, err := store.Lookup(ctx, "authors", json.Number("7"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(1), got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMappingStore_Lookup_CoercesCachedIDs(t *testing.T) {
	store, mock := newTestMappingStore(t)
	defer store.DB.Close()

	mock.ExpectExec(insertMappingSQL).WithArgs("posts", "7", "12").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insertMappingSQL).WithArgs("tags", "abc", "3").WillReturnResult(sqlmock.NewResult(0, 1))

	ctx := context.Background()
	require.NoError(t, store.Record(ctx, "posts", json.Number("7"), "12"))
	require.NoError(t, store.Record(ctx, "tags", "abc", int64(3)))

	tests := []struct {
		name       string
		collection string
		remoteID   any
		want       any
	}{
		{name: "numeric remote id", collection: "posts", remoteID: json.Number("7"), want: int64(12)},
		{name: "numeric remote id of another type", collection: "posts", remoteID: 7, want: int64(12)},
		{name: "string remote id of a numeric mapping", collection: "posts", remoteID: "7", want: "12"},
		{name: "string remote id", collection: "tags", remoteID: "abc", want: "3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := store.Lookup(ctx, tt.collection, tt.remoteID)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMappingStore_Record_Overwrites(t *testing.T) {
	store, mock := newTestMappingStore(t)
	defer store.DB.Close()

	mock.ExpectExec(insertMappingSQL).WithArgs("posts", "42", "1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insertMappingSQL).WithArgs("posts", "42", "2").WillReturnResult(sqlmock.NewResult(0, 1))

	ctx := context.Background()
	require.NoError(t, store.Record(ctx, "posts", 42, int64(1)))
	require.NoError(t, store.Record(ctx, "posts", 42, int64(2)))

	got, ok, err := store.Lookup(ctx, "posts", 42)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(2), got)
}

func TestMappingStore_Record_Error(t *testing.T) {
	store, mock := newTestMappingStore(t)
	defer store.DB.Close()

	mock.ExpectExec(insertMappingSQL).WillReturnError(errors.New("boom"))

	ctx := context.Background()
	err := store.Record(ctx, "posts", 42, int64(1))
	assert.ErrorIs(t, err, ErrExecutingStatement)

	// a failed record must not be cached
	mock.ExpectQuery(selectMappingSQL).WithArgs("posts", "42").
		WillReturnRows(sqlmock.NewRows([]string{"local_id"}))
	_, ok, err := store.Lookup(ctx, "posts", 42)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMappingStore_Lookup_FromTable(t *testing.T) {
	tests := []struct {
		name     string
		remoteID any
		stored   string
		want     any
	}{
		{"numeric remote id", json.Number("7"), "3", int64(3)},
		{"numeric remote id, string local id", 7, "abc", "abc"},
		{"string remote id", "65f0c0ffee", "3", "3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := newTestMappingStore(t)
			defer store.DB.Close()

			mock.ExpectQuery(selectMappingSQL).
				WithArgs("authors", sqlmock.AnyArg()).
				WillReturnRows(sqlmock.NewRows([]string{"local_id"}).AddRow(tt.stored))

			got, ok, err := store.Lookup(context.Background(), "authors", tt.remoteID)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)

			// second lookup is cached
			again, ok, err := store.Lookup(context.Background(), "authors", tt.remoteID)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, tt.want, again)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestMappingStore_Lookup_Miss(t *testing.T) {
	store, mock := newTestMappingStore(t)
	defer store.DB.Close()

	mock.ExpectQuery(selectMappingSQL).
		WithArgs("authors", "99").
		WillReturnRows(sqlmock.NewRows([]string{"local_id"}))

	got, ok, err := store.Lookup(context.Background(), "authors", 99)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestMappingStore_Lookup_KeyedByCollection(t *testing.T) {
	store, mock := newTestMappingStore(t)
	defer store.DB.Close()

	mock.ExpectExec(insertMappingSQL).WithArgs("authors", "7", "1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(selectMappingSQL).WithArgs("posts", "7").
		WillReturnRows(sqlmock.NewRows([]string{"local_id"}))

	ctx := context.Background()
	require.NoError(t, store.Record(ctx, "authors", 7, int64(1)))

	_, ok, err := store.Lookup(ctx, "posts", 7)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMappingStore_Lookup_QueryError(t *testing.T) {
	store, mock := newTestMappingStore(t)
	defer store.DB.Close()

	mock.ExpectQuery(selectMappingSQL).WillReturnError(pgError(pgerrcode.UndefinedTable))

	_, _, err := store.Lookup(context.Background(), "authors", 1)
	assert.ErrorIs(t, err, ErrExecutingQuery)
	assert.ErrorIs(t, err, ErrSchemaMissing)
}

// ── Close ───────────────────────────────────────────────────────────────────

func TestMappingStore_Close(t *testing.T) {
	store, mock := newTestMappingStore(t)

	mock.ExpectExec(dropMappingSQL).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectClose()

	ctx := context.Background()
	require.NoError(t, store.Close(ctx))
	// second close is a no-op
	require.NoError(t, store.Close(ctx))
	assert.NoError(t, mock.ExpectationsWereMet())

	_, _, err := store.Lookup(ctx, "authors", 1)
	assert.ErrorIs(t, err, ErrMappingStoreClosed)
	assert.ErrorIs(t, store.Record(ctx, "authors", 1, 1), ErrMappingStoreClosed)
}

func TestMappingStore_Close_DropFailsStillCloses(t *testing.T) {
	store, mock := newTestMappingStore(t)

	mock.ExpectExec(dropMappingSQL).WillReturnError(errors.New("connection reset"))
	mock.ExpectClose()

	err := store.Close(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExecutingStatement)
	assert.NoError(t, mock.ExpectationsWereMet())
}
