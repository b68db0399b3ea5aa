// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/MKhiriev/content-sync/internal/fields"
	"github.com/MKhiriev/content-sync/internal/logger"
	"github.com/MKhiriev/content-sync/internal/store"
	"github.com/MKhiriev/content-sync/models"
)

// SeedAuthUser creates the bootstrap principal described by the JSON object
// raw in the collection meta. The document goes through the validated create
// path. An explicit id is kept, and when a document with that id already
// exists nothing is written.
func SeedAuthUser(ctx context.Context, content store.ContentStore, meta models.CollectionMetadata, raw string) (models.Document, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	var user models.Document
	if err := dec.Decode(&user); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBootstrapUser, err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: expected a JSON object", ErrInvalidBootstrapUser)
	}

	if id, ok := user.ID(); ok {
		existing, err := content.FindByID(ctx, meta.Slug, id)
		if err != nil && !errors.Is(err, store.ErrDocumentNotFound) {
			return nil, fmt.Errorf("look up bootstrap auth user in %s: %w", meta.Slug, err)
		}
		if err == nil {
			logger.FromContext(ctx).Info().
				Str("collection", meta.Slug).
				Str("id", fields.StringifyID(id)).
				Msg("bootstrap auth user already exists")
			return existing, nil
		}
	}

	created, err := content.CreateDocument(ctx, meta, user)
	if err != nil {
		return nil, fmt.Errorf("create bootstrap auth user in %s: %w", meta.Slug, err)
	}

	logger.FromContext(ctx).Info().
		Str("collection", meta.Slug).
		Str("id", fields.StringifyID(created["id"])).
		Msg("bootstrap auth user created")
	return created, nil
}
