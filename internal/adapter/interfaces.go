// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides the transport layer used to read content from the
// remote content store.
//
// The primary abstraction is [RemoteReader], which decouples the sync service
// from the underlying protocol. The package ships an HTTP/REST implementation
// ([NewHTTPRemoteReader]) built on resty.
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic error
// handling (e.g. [ErrNotFound] for 404, [ErrUnauthorized] for 401).
package adapter

import (
	"context"

	"github.com/MKhiriev/content-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/remote_reader_mock.go -package=mock

// RemoteReader defines read-only access to the remote content store. All
// requests carry the API key header; none of them is retried.
type RemoteReader interface {
	// ListDocuments returns one page (1-based) of documents of collection,
	// sorted by id, with the configured page size.
	ListDocuments(ctx context.Context, collection string, page int) (models.DocumentsPage, error)

	// GetLatestVersion returns the latest version-history entry of the
	// document parentID, or nil when the document has none.
	GetLatestVersion(ctx context.Context, collection string, parentID any) (*models.VersionSnapshot, error)

	// DownloadFile fetches the binary served at path (relative to the remote
	// base URL, e.g. a document's url field) and returns its bytes together
	// with the Content-Type response header.
	DownloadFile(ctx context.Context, path string) ([]byte, string, error)

	// GetCollections returns the collection capabilities published by the
	// remote sync metadata endpoint. It fails with [ErrNotFound] when the
	// remote does not expose the endpoint.
	GetCollections(ctx context.Context) ([]models.RemoteCollection, error)
}
