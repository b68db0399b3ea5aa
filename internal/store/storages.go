// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/content-sync/internal/config"
	"github.com/MKhiriev/content-sync/internal/logger"
)

// Storages groups the local storage backends of a sync run.
type Storages struct {
	// Mappings is the sync state store. It owns its own connection, which
	// is released by Mappings.Close.
	Mappings MappingStore

	// Content is the local content store the documents are written to.
	Content ContentStore

	contentDB *DB
}

// NewStorages initialises the storage layer. It performs the following
// steps:
//  1. Opens the connection of the sync state store from cfg.DB.DSN.
//  2. Opens the local content store from contentDSN (cfg.DB.DSN when empty)
//     and applies its schema migrations.
//  3. Builds the upload file storage selected by cfg.Files.Driver.
//
// Connections opened before a failing step are closed.
func NewStorages(ctx context.Context, cfg config.Storage, contentDSN string, logger *logger.Logger) (*Storages, error) {
	logger.Info().Msg("creating new storages...")

	if contentDSN == "" {
		contentDSN = cfg.DB.DSN
	}

	mappingDB, err := NewConnect(ctx, cfg.DB.DSN, logger)
	if err != nil {
		return nil, fmt.Errorf("sync state database connection error: %w", err)
	}

	contentDB, err := NewConnect(ctx, contentDSN, logger)
	if err != nil {
		_ = mappingDB.Close()
		return nil, fmt.Errorf("local store database connection error: %w", err)
	}

	closeAll := func() {
		_ = mappingDB.Close()
		_ = contentDB.Close()
	}

	if err = contentDB.Migrate(); err != nil {
		closeAll()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	files, err := NewFileStorage(ctx, cfg.Files, logger)
	if err != nil {
		closeAll()
		return nil, err
	}

	return &Storages{
		Mappings:  NewMappingStore(mappingDB, logger),
		Content:   NewContentStore(NewDocumentRepository(contentDB, logger), files, logger),
		contentDB: contentDB,
	}, nil
}

// NewFileStorage builds the upload file storage selected by cfg.Driver.
func NewFileStorage(ctx context.Context, cfg config.Files, logger *logger.Logger) (FileStorage, error) {
	switch cfg.Driver {
	case config.FilesDriverS3:
		files, err := NewS3FileStorage(ctx, cfg.S3, logger)
		if err != nil {
			return nil, fmt.Errorf("s3 file storage error: %w", err)
		}
		return files, nil
	case config.FilesDriverDisk, "":
		return NewDiskFileStorage(cfg.MediaDir, logger), nil
	default:
		return nil, fmt.Errorf("unknown files driver %q", cfg.Driver)
	}
}

// Close releases the local content store connection. The sync state store
// is closed separately through Mappings.Close.
func (s *Storages) Close() error {
	if s.contentDB == nil {
		return nil
	}
	return s.contentDB.Close()
}
