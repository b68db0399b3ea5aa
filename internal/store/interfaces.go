// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"

	"github.com/MKhiriev/content-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// MappingStore persists remote→local id mappings for the duration of one
// sync run. It owns a scratch table that exists between Open and Close.
type MappingStore interface {
	// Open creates the mapping table if it does not exist.
	Open(ctx context.Context) error

	// Record stores (or replaces) the local id of a remote document.
	Record(ctx context.Context, collection string, remoteID, localID any) error

	// Lookup returns the local id of a remote document. ok is false when no
	// mapping exists.
	Lookup(ctx context.Context, collection string, remoteID any) (localID any, ok bool, err error)

	// Close drops the mapping table and releases the connection. It is safe
	// to call more than once.
	Close(ctx context.Context) error
}

// DocumentRepository is the low-level access to documents of the local
// content store. It performs no validation and runs no hooks.
type DocumentRepository interface {
	// FindByID returns the document with the given id or
	// [ErrDocumentNotFound].
	FindByID(ctx context.Context, collection string, id any) (models.Document, error)

	// Create inserts data as a new document and returns it with its id. The
	// store assigns the id unless data carries an explicit numeric one.
	Create(ctx context.Context, collection string, data models.Document) (models.Document, error)

	// UpdateOne replaces the stored data of a document and returns the
	// result.
	UpdateOne(ctx context.Context, collection string, id any, data models.Document) (models.Document, error)

	// CreateVersion appends a version-history entry and marks it latest.
	CreateVersion(ctx context.Context, version models.LocalVersion) error

	// HasDocuments reports whether the collection holds at least one
	// document.
	HasDocuments(ctx context.Context, collection string) (bool, error)
}

// FileStorage holds the binaries of upload collections.
type FileStorage interface {
	// List returns the names of all stored files.
	List(ctx context.Context) ([]string, error)

	// Save stores file under file.Name, replacing an existing one.
	Save(ctx context.Context, file models.UploadFile) error
}

// ContentStore is the high-level write API of the local content store used
// by the sync engine.
type ContentStore interface {
	DocumentRepository

	// CreateDocument creates a document after checking that every required
	// top-level field of meta is present.
	CreateDocument(ctx context.Context, meta models.CollectionMetadata, data models.Document) (models.Document, error)

	// CreateWithFile stores file, regenerates the upload fields of data from
	// it and creates the document.
	CreateWithFile(ctx context.Context, meta models.CollectionMetadata, data models.Document, file models.UploadFile) (models.Document, error)

	// ListFiles returns the names of the stored upload files.
	ListFiles(ctx context.Context) ([]string, error)
}
