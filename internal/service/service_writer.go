// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"sync"

	"github.com/MKhiriev/content-sync/internal/adapter"
	"github.com/MKhiriev/content-sync/internal/fields"
	"github.com/MKhiriev/content-sync/internal/logger"
	"github.com/MKhiriev/content-sync/internal/store"
	"github.com/MKhiriev/content-sync/models"
)

const defaultMimeType = "application/octet-stream"

// uploadMetadataFields are the upload fields copied from the remote document
// when a record is created for a file that is already stored locally.
var uploadMetadataFields = []string{"filename", "filesize", "mimeType", "width", "height", "focalX", "focalY"}

type localWriter struct {
	content store.ContentStore
	remote  adapter.RemoteReader

	// media is the set of stored upload file names, listed on first use.
	media   map[string]struct{}
	mediaMu sync.Mutex

	logger *logger.Logger
}

// NewLocalWriter constructs a [LocalWriter] writing to content and fetching
// upload binaries from remote.
func NewLocalWriter(content store.ContentStore, remote adapter.RemoteReader, logger *logger.Logger) LocalWriter {
	return &localWriter{content: content, remote: remote, logger: logger}
}

// FindExisting implements [LocalWriter].
func (w *localWriter) FindExisting(ctx context.Context, collection string, id any) (models.Document, bool, error) {
	doc, err := w.content.FindByID(ctx, collection, id)
	if errors.Is(err, store.ErrDocumentNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return doc, true, nil
}

// Create implements [LocalWriter]. The remote id is never written: the
// local store assigns a fresh one.
func (w *localWriter) Create(ctx context.Context, meta models.CollectionMetadata, required, remote models.Document) (any, bool, error) {
	payload := required.Clone()
	delete(payload, "id")

	var (
		created models.Document
		fetched bool
		err     error
	)
	if meta.Upload {
		created, fetched, err = w.createUpload(ctx, meta, payload, remote)
	} else {
		created, err = w.content.Create(ctx, meta.Slug, payload)
	}
	if err != nil {
		return nil, false, fmt.Errorf("create %s/%s: %w", meta.Slug, fields.StringifyID(remote["id"]), err)
	}

	localID, ok := created.ID()
	if !ok {
		return nil, false, fmt.Errorf("%w: created %s document", ErrMissingDocumentID, meta.Slug)
	}
	return localID, fetched, nil
}

func (w *localWriter) createUpload(ctx context.Context, meta models.CollectionMetadata, payload, remote models.Document) (models.Document, bool, error) {
	filename, _ := remote["filename"].(string)
	if filename == "" {
		logger.FromContext(ctx).Warn().
			Str("collection", meta.Slug).
			Str("remote_id", fields.StringifyID(remote["id"])).
			Msg("upload document has no filename, creating record without file")
		doc, err := w.content.Create(ctx, meta.Slug, payload)
		return doc, false, err
	}

	stored, err := w.hasFile(ctx, filename)
	if err != nil {
		return nil, false, err
	}
	if stored {
		for _, key := range uploadMetadataFields {
			if v, ok := remote[key]; ok {
				payload[key] = v
			}
		}
		payload["url"] = store.UploadURL(meta.Slug, filename)
		doc, err := w.content.Create(ctx, meta.Slug, payload)
		return doc, false, err
	}

	path, _ := remote["url"].(string)
	if path == "" {
		path = store.UploadURL(meta.Slug, filename)
	}
	data, contentType, err := w.remote.DownloadFile(ctx, path)
	if err != nil {
		return nil, false, fmt.Errorf("download %s: %w", filename, err)
	}

	file := models.UploadFile{
		Name:     filename,
		MimeType: pickMimeType(remote["mimeType"], contentType),
		Size:     pickFileSize(remote["filesize"], len(data)),
		Data:     data,
	}
	doc, err := w.content.CreateWithFile(ctx, meta, payload, file)
	if err != nil {
		return nil, true, err
	}

	w.mediaMu.Lock()
	if w.media != nil {
		w.media[filename] = struct{}{}
	}
	w.mediaMu.Unlock()

	return doc, true, nil
}

func (w *localWriter) hasFile(ctx context.Context, name string) (bool, error) {
	w.mediaMu.Lock()
	defer w.mediaMu.Unlock()

	if w.media == nil {
		names, err := w.content.ListFiles(ctx)
		if err != nil {
			return false, fmt.Errorf("list local upload files: %w", err)
		}
		w.media = make(map[string]struct{}, len(names))
		for _, n := range names {
			w.media[n] = struct{}{}
		}
	}
	_, ok := w.media[name]
	return ok, nil
}

// Patch implements [LocalWriter].
func (w *localWriter) Patch(ctx context.Context, collection string, localID any, optional models.Document) error {
	existing, err := w.content.FindByID(ctx, collection, localID)
	if err != nil {
		return fmt.Errorf("load %s/%s for update: %w", collection, fields.StringifyID(localID), err)
	}

	merged := fields.MergeDocument(existing, optional, func(path string) {
		logger.FromContext(ctx).Warn().
			Str("collection", collection).
			Str("local_id", fields.StringifyID(localID)).
			Str("field", path).
			Msg("array elements may not line up, merging by position")
	})

	if _, err = w.content.UpdateOne(ctx, collection, localID, merged); err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, fields.StringifyID(localID), err)
	}
	return nil
}

// CreateVersion implements [LocalWriter].
func (w *localWriter) CreateVersion(ctx context.Context, version models.LocalVersion) error {
	if err := w.content.CreateVersion(ctx, version); err != nil {
		return fmt.Errorf("create version of %s/%s: %w", version.Collection, fields.StringifyID(version.Parent), err)
	}
	return nil
}

// pickMimeType prefers the type recorded on the remote document, then the
// download response header.
func pickMimeType(recorded any, header string) string {
	if s, ok := recorded.(string); ok && s != "" {
		return s
	}
	if header != "" {
		if mediaType, _, err := mime.ParseMediaType(header); err == nil {
			return mediaType
		}
	}
	return defaultMimeType
}

func pickFileSize(recorded any, fallback int) int64 {
	switch v := recorded.(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil && n > 0 {
			return n
		}
	case float64:
		if v > 0 {
			return int64(v)
		}
	case int64:
		if v > 0 {
			return v
		}
	case int:
		if v > 0 {
			return int64(v)
		}
	}
	return int64(fallback)
}
