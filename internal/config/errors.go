// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "errors"

// Validation errors returned by [StructuredConfig.validate]. Several of them
// may be reported at once through errors.Join.
var (
	// ErrMissingDatabaseURI indicates that DATABASE_URI is not set.
	ErrMissingDatabaseURI = errors.New("missing DATABASE_URI environment variable")
	// ErrInvalidRemoteConfig indicates incomplete remote settings (URL, API
	// key or API key collection).
	ErrInvalidRemoteConfig = errors.New("invalid remote configuration")
	// ErrMissingLocalConfig indicates that no local store description was
	// given.
	ErrMissingLocalConfig = errors.New("missing local config path")
	// ErrNoCollections indicates an empty collections list.
	ErrNoCollections = errors.New("provide at least one collection slug")
	// ErrInvalidLimit indicates a page size below 1.
	ErrInvalidLimit = errors.New("limit must be a positive integer")
	// ErrInvalidStorageConfig indicates unusable file storage settings.
	ErrInvalidStorageConfig = errors.New("invalid storage configuration")
)
