// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/MKhiriev/content-sync/internal/logger"
	"github.com/MKhiriev/content-sync/models"
)

// contentStore is the default [ContentStore]. It adds upload handling and a
// required-field check on top of a [DocumentRepository].
type contentStore struct {
	DocumentRepository
	files  FileStorage
	logger *logger.Logger
}

// NewContentStore constructs a [ContentStore] writing documents through repo
// and upload binaries through files.
func NewContentStore(repo DocumentRepository, files FileStorage, logger *logger.Logger) ContentStore {
	return &contentStore{DocumentRepository: repo, files: files, logger: logger}
}

// CreateDocument implements [ContentStore].
func (c *contentStore) CreateDocument(ctx context.Context, meta models.CollectionMetadata, data models.Document) (models.Document, error) {
	if err := checkRequiredFields(meta, data); err != nil {
		return nil, err
	}
	return c.Create(ctx, meta.Slug, data)
}

// CreateWithFile implements [ContentStore]. The generated upload fields
// (filename, filesize, mimeType, url and, for decodable images, width and
// height) are derived from file and override whatever data holds.
func (c *contentStore) CreateWithFile(ctx context.Context, meta models.CollectionMetadata, data models.Document, file models.UploadFile) (models.Document, error) {
	if !meta.Upload {
		return nil, fmt.Errorf("collection %q does not accept uploads", meta.Slug)
	}

	file.Name = filepath.Base(strings.ReplaceAll(file.Name, `\`, "/"))
	if err := validateFileName(file.Name); err != nil {
		return nil, err
	}
	if err := checkRequiredFields(meta, data); err != nil {
		return nil, err
	}

	if file.Size <= 0 {
		file.Size = int64(len(file.Data))
	}
	if file.MimeType == "" {
		file.MimeType = "application/octet-stream"
	}

	if err := c.files.Save(ctx, file); err != nil {
		return nil, fmt.Errorf("error storing upload file for %s: %w", meta.Slug, err)
	}

	doc := data.Clone()
	doc["filename"] = file.Name
	doc["filesize"] = file.Size
	doc["mimeType"] = file.MimeType
	doc["url"] = UploadURL(meta.Slug, file.Name)
	if strings.HasPrefix(file.MimeType, "image/") {
		if cfg, _, err := image.DecodeConfig(bytes.NewReader(file.Data)); err == nil {
			doc["width"] = cfg.Width
			doc["height"] = cfg.Height
		}
	}

	return c.Create(ctx, meta.Slug, doc)
}

// ListFiles implements [ContentStore].
func (c *contentStore) ListFiles(ctx context.Context) ([]string, error) {
	return c.files.List(ctx)
}

// UploadURL is the path the local store serves an upload file of collection
// from.
func UploadURL(collection, filename string) string {
	return "/api/" + url.PathEscape(collection) + "/file/" + url.PathEscape(filename)
}

// checkRequiredFields verifies that every required named field reachable
// from the top level of meta, through transparent containers only, is
// present and not null.
func checkRequiredFields(meta models.CollectionMetadata, data models.Document) error {
	var missing []string
	collectMissing(meta.Fields, data, &missing)
	if len(missing) > 0 {
		return fmt.Errorf("%w in %s: %s", ErrMissingRequiredField, meta.Slug, strings.Join(missing, ", "))
	}
	return nil
}

func collectMissing(defs []models.Field, data models.Document, missing *[]string) {
	for _, field := range defs {
		switch field.Kind() {
		case models.KindRow:
			collectMissing(field.Fields, data, missing)
		case models.KindTabs:
			for _, tab := range field.Tabs {
				if tab.Name == "" {
					collectMissing(tab.Fields, data, missing)
				}
			}
		default:
			if field.Name == "" || !field.Required {
				continue
			}
			if v, ok := data[field.Name]; !ok || v == nil {
				*missing = append(*missing, field.Name)
			}
		}
	}
}
