// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/MKhiriev/content-sync/internal/fields"
	"github.com/MKhiriev/content-sync/internal/logger"
	"github.com/MKhiriev/content-sync/models"
	"github.com/Masterminds/squirrel"
)

const (
	documentsTable = "documents"
	versionsTable  = "document_versions"
)

// documentRepository is the SQL implementation of [DocumentRepository]. Each
// document is one row of the "documents" table; its fields (everything but
// the id) are stored as a JSON object in the data column.
type documentRepository struct {
	*DB
	now    func() time.Time
	logger *logger.Logger
}

// NewDocumentRepository constructs a [DocumentRepository] backed by the
// provided database connection and logger.
func NewDocumentRepository(db *DB, logger *logger.Logger) DocumentRepository {
	return &documentRepository{
		DB:     db,
		now:    func() time.Time { return time.Now().UTC() },
		logger: logger,
	}
}

// FindByID implements [DocumentRepository]. Ids that cannot be a local id
// (anything but an integer) never match.
func (r *documentRepository) FindByID(ctx context.Context, collection string, id any) (models.Document, error) {
	localID, ok := parseLocalID(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrDocumentNotFound, collection, fields.StringifyID(id))
	}

	query, args, err := r.builder().
		Select("id", "data").
		From(documentsTable).
		Where(squirrel.Eq{"collection": collection, "id": localID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var (
		foundID int64
		data    []byte
	)
	err = r.DB.QueryRowContext(ctx, query, args...).Scan(&foundID, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s/%d", ErrDocumentNotFound, collection, localID)
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "documentRepository.FindByID").
			Str("collection", collection).
			Int64("id", localID).
			Msg("failed to query document")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, r.classify(err))
	}

	doc, err := decodeDocument(data)
	if err != nil {
		return nil, err
	}
	doc["id"] = foundID
	return doc, nil
}

// Create implements [DocumentRepository].
func (r *documentRepository) Create(ctx context.Context, collection string, data models.Document) (models.Document, error) {
	payload := data.Clone()
	delete(payload, "id")

	body, err := encodeDocument(payload)
	if err != nil {
		return nil, err
	}

	now := r.now()
	columns := []string{"collection", "data", "created_at", "updated_at"}
	values := []any{collection, body, timestampField(payload, "createdAt", now), timestampField(payload, "updatedAt", now)}

	explicitID, hasExplicitID := parseLocalID(data["id"])
	if hasExplicitID {
		columns = append([]string{"id"}, columns...)
		values = append([]any{explicitID}, values...)
	}

	query, args, err := r.builder().
		Insert(documentsTable).
		Columns(columns...).
		Values(values...).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var id int64
	if err = r.DB.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "documentRepository.Create").
			Str("collection", collection).
			Msg("failed to insert document")
		return nil, fmt.Errorf("%w: create in %s: %w", ErrExecutingStatement, collection, r.classify(err))
	}

	// keep the serial ahead of explicitly inserted ids
	if hasExplicitID && r.dialect == DialectPostgres {
		if _, err = r.DB.ExecContext(ctx, resetDocumentsSequence); err != nil {
			return nil, fmt.Errorf("%w: reset documents sequence: %w", ErrExecutingStatement, r.classify(err))
		}
	}

	payload["id"] = id
	return payload, nil
}

const resetDocumentsSequence = `SELECT setval(pg_get_serial_sequence('documents', 'id'), GREATEST((SELECT MAX(id) FROM documents), 1))`

// UpdateOne implements [DocumentRepository].
func (r *documentRepository) UpdateOne(ctx context.Context, collection string, id any, data models.Document) (models.Document, error) {
	localID, ok := parseLocalID(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrDocumentNotFound, collection, fields.StringifyID(id))
	}

	payload := data.Clone()
	delete(payload, "id")

	body, err := encodeDocument(payload)
	if err != nil {
		return nil, err
	}

	query, args, err := r.builder().
		Update(documentsTable).
		Set("data", body).
		Set("updated_at", timestampField(payload, "updatedAt", r.now())).
		Where(squirrel.Eq{"collection": collection, "id": localID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "documentRepository.UpdateOne").
			Str("collection", collection).
			Int64("id", localID).
			Msg("failed to update document")
		return nil, fmt.Errorf("%w: update %s/%d: %w", ErrExecutingStatement, collection, localID, r.classify(err))
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("%w: %s/%d", ErrDocumentNotFound, collection, localID)
	}

	payload["id"] = localID
	return payload, nil
}

// CreateVersion implements [DocumentRepository]. The previous latest entry of
// the same document loses its flag in the same transaction.
func (r *documentRepository) CreateVersion(ctx context.Context, version models.LocalVersion) error {
	parentID, ok := parseLocalID(version.Parent)
	if !ok {
		return fmt.Errorf("%w: version parent %s/%s", ErrDocumentNotFound, version.Collection, fields.StringifyID(version.Parent))
	}

	body, err := encodeDocument(version.Data)
	if err != nil {
		return err
	}

	clearLatest, clearArgs, err := r.builder().
		Update(versionsTable).
		Set("latest", false).
		Where(squirrel.Eq{"collection": version.Collection, "parent_id": parentID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var publishedLocale any
	if version.PublishedLocale != "" {
		publishedLocale = version.PublishedLocale
	}

	insert, insertArgs, err := r.builder().
		Insert(versionsTable).
		Columns("collection", "parent_id", "version", "autosave", "published_locale", "snapshot", "latest", "created_at", "updated_at").
		Values(version.Collection, parentID, body, version.Autosave, publishedLocale, version.Snapshot, true, version.CreatedAt, version.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, clearLatest, clearArgs...); err != nil {
		return fmt.Errorf("%w: clear latest version of %s/%d: %w", ErrExecutingStatement, version.Collection, parentID, r.classify(err))
	}
	if _, err = tx.ExecContext(ctx, insert, insertArgs...); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "documentRepository.CreateVersion").
			Str("collection", version.Collection).
			Int64("parent", parentID).
			Msg("failed to insert version")
		return fmt.Errorf("%w: create version of %s/%d: %w", ErrExecutingStatement, version.Collection, parentID, r.classify(err))
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
	}
	return nil
}

// HasDocuments implements [DocumentRepository] with a single-row probe.
func (r *documentRepository) HasDocuments(ctx context.Context, collection string) (bool, error) {
	query, args, err := r.builder().
		Select("id").
		From(documentsTable).
		Where(squirrel.Eq{"collection": collection}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var id int64
	err = r.DB.QueryRowContext(ctx, query, args...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: probe %s: %w", ErrExecutingQuery, collection, r.classify(err))
	}
	return true, nil
}

// parseLocalID converts an id of any supported representation into the
// integer primary key of the documents table.
func parseLocalID(id any) (int64, bool) {
	switch v := id.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case uint32:
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) || v > math.MaxInt64 || v < math.MinInt64 {
			return 0, false
		}
		return int64(v), true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

// timestampField reads an RFC 3339 timestamp stored under key, falling back
// to def.
func timestampField(doc models.Document, key string, def time.Time) time.Time {
	s, ok := doc[key].(string)
	if !ok {
		return def
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return def
	}
	return t.UTC()
}

func encodeDocument(doc models.Document) (string, error) {
	if doc == nil {
		doc = models.Document{}
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrEncodingDocument, err)
	}
	return string(body), nil
}

func decodeDocument(data []byte) (models.Document, error) {
	doc := models.Document{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncodingDocument, err)
	}
	return doc, nil
}
