// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/MKhiriev/content-sync/internal/logger"
	"github.com/MKhiriev/content-sync/models"
)

// ErrInvalidFileName is returned for names that are empty or would escape
// the storage root.
var ErrInvalidFileName = errors.New("invalid upload file name")

// diskFileStorage is the local filesystem implementation of [FileStorage].
// Files live flat in dir, under their upload filename.
type diskFileStorage struct {
	dir    string
	logger *logger.Logger
}

// NewDiskFileStorage constructs a [FileStorage] rooted at dir. The directory
// is created on the first Save.
func NewDiskFileStorage(dir string, logger *logger.Logger) FileStorage {
	return &diskFileStorage{dir: dir, logger: logger}
}

// List implements [FileStorage]. A missing directory holds no files.
func (d *diskFileStorage) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(d.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error listing upload directory %s: %w", d.dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

// Save implements [FileStorage]. The file is written to a temporary name
// and renamed into place.
func (d *diskFileStorage) Save(ctx context.Context, file models.UploadFile) error {
	path, err := d.path(file.Name)
	if err != nil {
		return err
	}

	if err = os.MkdirAll(d.dir, 0o755); err != nil {
		return fmt.Errorf("error creating upload directory %s: %w", d.dir, err)
	}

	tmp, err := os.CreateTemp(d.dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("error creating temporary upload file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err = tmp.Write(file.Data); err != nil {
		tmp.Close()
		return fmt.Errorf("error writing upload file %s: %w", file.Name, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("error writing upload file %s: %w", file.Name, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("error saving upload file %s: %w", file.Name, err)
	}

	logger.FromContext(ctx).Debug().
		Str("file", file.Name).
		Int("bytes", len(file.Data)).
		Msg("saved upload file to disk")
	return nil
}

func (d *diskFileStorage) path(name string) (string, error) {
	if err := validateFileName(name); err != nil {
		return "", err
	}
	return filepath.Join(d.dir, name), nil
}

func validateFileName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return fmt.Errorf("%w: %q", ErrInvalidFileName, name)
	}
	return nil
}
