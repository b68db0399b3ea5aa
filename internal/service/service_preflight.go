// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MKhiriev/content-sync/internal/adapter"
	"github.com/MKhiriev/content-sync/internal/logger"
	"github.com/MKhiriev/content-sync/internal/store"
	"github.com/MKhiriev/content-sync/models"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentProbes bounds the emptiness probes run in parallel.
const maxConcurrentProbes = 4

type preflightValidator struct {
	local   map[string]models.CollectionMetadata
	content store.DocumentRepository
	remote  adapter.RemoteReader
	logger  *logger.Logger
}

// NewPreflightValidator constructs a [PreflightValidator] checking requested
// collections against the local collection descriptions in local.
func NewPreflightValidator(local map[string]models.CollectionMetadata, content store.DocumentRepository, remote adapter.RemoteReader, logger *logger.Logger) PreflightValidator {
	return &preflightValidator{local: local, content: content, remote: remote, logger: logger}
}

// Validate implements [PreflightValidator]. The checks run in this order and
// each reports every offending collection at once:
//  1. every slug is described by the local config;
//  2. every non-auth collection is empty locally;
//  3. no collection accepts uploads remotely but not locally.
//
// Only the last step talks to the remote store.
func (p *preflightValidator) Validate(ctx context.Context, collections []string) ([]models.CollectionMetadata, error) {
	metas, err := p.resolve(collections)
	if err != nil {
		return nil, err
	}
	if err = p.checkEmpty(ctx, metas); err != nil {
		return nil, err
	}
	if err = p.checkUploads(ctx, metas); err != nil {
		return nil, err
	}
	return metas, nil
}

func (p *preflightValidator) resolve(collections []string) ([]models.CollectionMetadata, error) {
	metas := make([]models.CollectionMetadata, 0, len(collections))
	var missing []string
	for _, slug := range collections {
		meta, ok := p.local[slug]
		if !ok {
			missing = append(missing, slug)
			continue
		}
		metas = append(metas, meta)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollections, strings.Join(missing, ", "))
	}
	return metas, nil
}

func (p *preflightValidator) checkEmpty(ctx context.Context, metas []models.CollectionMetadata) error {
	nonEmpty := make([]bool, len(metas))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentProbes)
	for i, meta := range metas {
		if meta.Auth {
			continue
		}
		g.Go(func() error {
			has, err := p.content.HasDocuments(gctx, meta.Slug)
			if err != nil {
				return fmt.Errorf("probe collection %s: %w", meta.Slug, err)
			}
			nonEmpty[i] = has
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var offending []string
	for i, has := range nonEmpty {
		if has {
			offending = append(offending, metas[i].Slug)
		}
	}
	if len(offending) > 0 {
		return fmt.Errorf("%w: %s", ErrCollectionsNotEmpty, strings.Join(offending, ", "))
	}
	return nil
}

func (p *preflightValidator) checkUploads(ctx context.Context, metas []models.CollectionMetadata) error {
	remote, err := p.remote.GetCollections(ctx)
	if errors.Is(err, adapter.ErrNotFound) {
		logger.FromContext(ctx).Warn().
			Msg("remote store does not publish collection metadata, skipping upload capability check")
		return nil
	}
	if err != nil {
		return fmt.Errorf("get remote collection metadata: %w", err)
	}

	remoteUpload := make(map[string]bool, len(remote))
	for _, c := range remote {
		remoteUpload[c.Slug] = c.Upload
	}

	var mismatched []string
	for _, meta := range metas {
		if remoteUpload[meta.Slug] && !meta.Upload {
			mismatched = append(mismatched, meta.Slug)
		}
	}
	if len(mismatched) > 0 {
		return fmt.Errorf("%w: upload-enabled remotely but not locally: %s", ErrUploadMismatch, strings.Join(mismatched, ", "))
	}
	return nil
}
