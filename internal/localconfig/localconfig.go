// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package localconfig loads the description of the local content store: the
// collections it defines (with their field trees), the database it lives in
// and the directory holding its upload files.
//
// The file is YAML; JSON documents are accepted as well since they are valid
// YAML. String values of the database and upload sections are expanded with
// os.ExpandEnv, so a DSN can be written as "${DATABASE_URI}".
package localconfig

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/MKhiriev/content-sync/models"
	"gopkg.in/yaml.v3"
)

var (
	// ErrNoCollections is returned when the file defines no collection.
	ErrNoCollections = errors.New("local config defines no collections")
	// ErrInvalidCollection is returned for a collection without a slug or
	// with a slug defined twice.
	ErrInvalidCollection = errors.New("invalid collection definition")
)

// LocalConfig is the parsed local store description.
type LocalConfig struct {
	Database    Database                    `yaml:"database"`
	Upload      Upload                      `yaml:"upload"`
	Collections []models.CollectionMetadata `yaml:"collections"`

	bySlug map[string]models.CollectionMetadata
}

// Database points at the local store database. An empty DSN means the one
// from DATABASE_URI is used.
type Database struct {
	DSN string `yaml:"dsn"`
}

// Upload configures where upload files of the local store live.
type Upload struct {
	Dir string `yaml:"dir"`
}

// Load reads and validates the description stored at path.
func Load(path string) (*LocalConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening local config: %w", err)
	}
	defer f.Close()

	cfg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("error loading local config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a description from r.
func Parse(r io.Reader) (*LocalConfig, error) {
	var cfg LocalConfig
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoCollections
		}
		return nil, fmt.Errorf("error decoding local config: %w", err)
	}

	cfg.Database.DSN = strings.TrimSpace(os.ExpandEnv(cfg.Database.DSN))
	cfg.Upload.Dir = strings.TrimSpace(os.ExpandEnv(cfg.Upload.Dir))

	if err := cfg.index(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *LocalConfig) index() error {
	if len(c.Collections) == 0 {
		return ErrNoCollections
	}

	c.bySlug = make(map[string]models.CollectionMetadata, len(c.Collections))
	for i, col := range c.Collections {
		if col.Slug == "" {
			return fmt.Errorf("%w: collection #%d has no slug", ErrInvalidCollection, i)
		}
		if _, dup := c.bySlug[col.Slug]; dup {
			return fmt.Errorf("%w: %q is defined twice", ErrInvalidCollection, col.Slug)
		}
		c.bySlug[col.Slug] = col
	}
	return nil
}

// Collection returns the metadata of slug.
func (c *LocalConfig) Collection(slug string) (models.CollectionMetadata, bool) {
	col, ok := c.bySlug[slug]
	return col, ok
}

// Metadata returns the collections keyed by slug.
func (c *LocalConfig) Metadata() map[string]models.CollectionMetadata {
	out := make(map[string]models.CollectionMetadata, len(c.bySlug))
	for slug, col := range c.bySlug {
		out[slug] = col
	}
	return out
}
