// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"errors"
	"fmt"
	"strings"
)

// ParseCollections splits a comma-separated slug list, trims every entry,
// drops empty ones and removes duplicates while keeping the first
// occurrence. An empty result is an error.
func ParseCollections(value string) ([]string, error) {
	collections := normalizeCollections(strings.Split(value, ","))
	if len(collections) == 0 {
		return nil, ErrNoCollections
	}
	return collections, nil
}

func normalizeCollections(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, slug := range in {
		slug = strings.TrimSpace(slug)
		if slug == "" {
			continue
		}
		if _, ok := seen[slug]; ok {
			continue
		}
		seen[slug] = struct{}{}
		out = append(out, slug)
	}
	return out
}

// normalize cleans list values that may come from env or JSON without going
// through ParseCollections.
func (cfg *StructuredConfig) normalize() {
	cfg.Sync.Collections = normalizeCollections(cfg.Sync.Collections)
	cfg.Sync.PriorityCollections = normalizeCollections(cfg.Sync.PriorityCollections)
	cfg.Remote.URL = strings.TrimSpace(cfg.Remote.URL)
	cfg.Storage.Files.Driver = strings.ToLower(strings.TrimSpace(cfg.Storage.Files.Driver))
}

// validate checks that the final merged [StructuredConfig] can drive a sync
// run. All violations are reported together.
func (cfg *StructuredConfig) validate() error {
	var errs []error

	if cfg.Storage.DB.DSN == "" {
		errs = append(errs, ErrMissingDatabaseURI)
	}

	var missing []string
	if cfg.Remote.URL == "" {
		missing = append(missing, "url")
	}
	if cfg.Remote.APIKey == "" {
		missing = append(missing, "api key")
	}
	if cfg.Remote.APIKeyCollection == "" {
		missing = append(missing, "api key collection")
	}
	if len(missing) > 0 {
		errs = append(errs, fmt.Errorf("%w: missing %s", ErrInvalidRemoteConfig, strings.Join(missing, ", ")))
	}

	if cfg.Sync.LocalConfigPath == "" {
		errs = append(errs, ErrMissingLocalConfig)
	}
	if len(cfg.Sync.Collections) == 0 {
		errs = append(errs, ErrNoCollections)
	}
	if cfg.Sync.Limit < 1 {
		errs = append(errs, fmt.Errorf("%w: %d", ErrInvalidLimit, cfg.Sync.Limit))
	}

	switch cfg.Storage.Files.Driver {
	case FilesDriverDisk, "":
	case FilesDriverS3:
		if cfg.Storage.Files.S3.Bucket == "" {
			errs = append(errs, fmt.Errorf("%w: s3 bucket is required", ErrInvalidStorageConfig))
		}
	default:
		errs = append(errs, fmt.Errorf("%w: unknown files driver %q", ErrInvalidStorageConfig, cfg.Storage.Files.Driver))
	}

	return errors.Join(errs...)
}
