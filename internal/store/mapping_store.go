// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/MKhiriev/content-sync/internal/fields"
	"github.com/MKhiriev/content-sync/internal/logger"
)

// MappingTable is the scratch table holding remote→local id pairs during a
// run. It is created by Open and dropped by Close.
const MappingTable = `"__sync"`

const createMappingTable = `CREATE TABLE IF NOT EXISTS "__sync" (
	collection TEXT NOT NULL,
	remote_id  TEXT NOT NULL,
	local_id   TEXT NOT NULL,
	PRIMARY KEY (collection, remote_id)
)`

const dropMappingTable = `DROP TABLE IF EXISTS "__sync"`

// mappingStore is the SQL-backed implementation of [MappingStore]. Every
// recorded pair is also kept in an in-memory cache so that lookups of the
// current run rarely reach the database.
type mappingStore struct {
	*DB

	mu     sync.RWMutex
	cache  map[string]string
	closed bool

	logger *logger.Logger
}

// NewMappingStore constructs a [MappingStore] that owns db: Close drops the
// mapping table and then closes the connection pool.
func NewMappingStore(db *DB, logger *logger.Logger) MappingStore {
	return &mappingStore{
		DB:     db,
		cache:  make(map[string]string),
		logger: logger,
	}
}

func cacheKey(collection string, remoteID any) string {
	return collection + ":" + fields.StringifyID(remoteID)
}

// Open implements [MappingStore].
func (m *mappingStore) Open(ctx context.Context) error {
	if _, err := m.DB.ExecContext(ctx, createMappingTable); err != nil {
		m.logger.Err(err).Str("func", "mappingStore.Open").Msg("failed to create mapping table")
		return fmt.Errorf("%w: create mapping table: %w", ErrExecutingStatement, m.classify(err))
	}
	return nil
}

// Record implements [MappingStore]. An existing mapping of the same remote
// document is replaced.
func (m *mappingStore) Record(ctx context.Context, collection string, remoteID, localID any) error {
	m.mu.RLock()
	closed := m.closed
	m.mu.RUnlock()
	if closed {
		return ErrMappingStoreClosed
	}

	query, args, err := m.builder().
		Insert(MappingTable).
		Columns("collection", "remote_id", "local_id").
		Values(collection, fields.StringifyID(remoteID), fields.StringifyID(localID)).
		Suffix("ON CONFLICT (collection, remote_id) DO UPDATE SET local_id = EXCLUDED.local_id").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = m.DB.ExecContext(ctx, query, args...); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "mappingStore.Record").
			Str("collection", collection).
			Str("remote_id", fields.StringifyID(remoteID)).
			Msg("failed to record id mapping")
		return fmt.Errorf("%w: record mapping %s/%s: %w", ErrExecutingStatement, collection, fields.StringifyID(remoteID), m.classify(err))
	}

	m.mu.Lock()
	m.cache[cacheKey(collection, remoteID)] = fields.StringifyID(localID)
	m.mu.Unlock()

	return nil
}

// Lookup implements [MappingStore]. The local id is kept in canonical string
// form and returned as an int64 when the remote id is numeric and the stored
// value is an integer, as a string otherwise.
func (m *mappingStore) Lookup(ctx context.Context, collection string, remoteID any) (any, bool, error) {
	key := cacheKey(collection, remoteID)

	m.mu.RLock()
	closed := m.closed
	stored, hit := m.cache[key]
	m.mu.RUnlock()
	if closed {
		return nil, false, ErrMappingStoreClosed
	}
	if hit {
		return fields.CoerceID(stored, remoteID), true, nil
	}

	query, args, err := m.builder().
		Select("local_id").
		From(MappingTable).
		Where("collection = ? AND remote_id = ?", collection, fields.StringifyID(remoteID)).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	err = m.DB.QueryRowContext(ctx, query, args...).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: lookup mapping %s: %w", ErrExecutingQuery, key, m.classify(err))
	}

	m.mu.Lock()
	m.cache[key] = stored
	m.mu.Unlock()

	return fields.CoerceID(stored, remoteID), true, nil
}

// Close implements [MappingStore]. The table is dropped and the pool closed
// even if one of the steps fails; both errors are reported.
func (m *mappingStore) Close(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.cache = make(map[string]string)
	m.mu.Unlock()

	var errs []error
	if _, err := m.DB.ExecContext(ctx, dropMappingTable); err != nil {
		m.logger.Err(err).Str("func", "mappingStore.Close").Msg("failed to drop mapping table")
		errs = append(errs, fmt.Errorf("%w: drop mapping table: %w", ErrExecutingStatement, err))
	}
	if err := m.DB.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close mapping store connection: %w", err))
	}

	return errors.Join(errs...)
}
