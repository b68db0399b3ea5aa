// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package service implements the sync engine: relationship remapping, the
// local writer, the preflight checks and the two-pass orchestrator that ties
// them to the remote reader and the local stores.
package service

import (
	"context"

	"github.com/MKhiriev/content-sync/models"
)

// SyncService runs one complete remote-to-local synchronization.
type SyncService interface {
	// Run executes the configured sync: preflight, bootstrap, the required
	// pass and the optional pass over all collections. The sync state store
	// is torn down before Run returns, whatever the outcome.
	Run(ctx context.Context) (models.SyncReport, error)
}

// Remapper rewrites relationship values from remote ids to local ids.
type Remapper interface {
	// Remap returns a copy of data in which every reference found through
	// defs points at the local id of the referenced document. data itself is
	// not modified. In [LookupStrict] mode an unmapped reference fails with
	// *MissingMappingError; in [LookupPermissive] mode it is left as it is.
	Remap(ctx context.Context, data models.Document, defs []models.Field, mode LookupMode) (models.Document, error)
}

// PreflightValidator checks that a run may start.
type PreflightValidator interface {
	// Validate resolves collections against the local config and verifies
	// that the local store can receive them. The metadata is returned in the
	// order of collections.
	Validate(ctx context.Context, collections []string) ([]models.CollectionMetadata, error)
}

// LocalWriter performs the writes of a sync run against the local content
// store.
type LocalWriter interface {
	// FindExisting returns the local document with the given id, if any.
	FindExisting(ctx context.Context, collection string, id any) (models.Document, bool, error)

	// Create creates the local twin of the remote document remote from its
	// remapped required half. Upload binaries are fetched from the remote
	// store when the file is not stored locally yet; fetched reports whether
	// that happened.
	Create(ctx context.Context, meta models.CollectionMetadata, required, remote models.Document) (localID any, fetched bool, err error)

	// Patch deep-merges optional onto the stored document localID.
	Patch(ctx context.Context, collection string, localID any, optional models.Document) error

	// CreateVersion stores a version-history snapshot.
	CreateVersion(ctx context.Context, version models.LocalVersion) error
}
