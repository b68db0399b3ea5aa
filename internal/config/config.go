// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"
)

// DefaultLimit is the remote page size used when none is configured.
const DefaultLimit = 10

// StructuredConfig is the top-level configuration container for
// content-sync. It is populated by merging values from an optional JSON file,
// environment variables and command-line flags.
//
// Struct tags:
//   - envPrefix — prefix applied to all nested env tag lookups (caarlos0/env).
//   - env       — direct environment variable name for scalar fields.
type StructuredConfig struct {
	// Remote describes the remote content store the data is copied from.
	Remote Remote `envPrefix:"CONTENT_SYNC_REMOTE_"`

	// Sync holds the run parameters: which collections, in which order and
	// with which page size.
	Sync Sync `envPrefix:"CONTENT_SYNC_"`

	// Storage holds the local persistence settings. The database DSN is read
	// from the unprefixed DATABASE_URI variable shared with the local store.
	Storage Storage

	// Log controls verbosity and output format.
	Log Log `envPrefix:"CONTENT_SYNC_LOG_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// Values from the file have the lowest precedence.
	// Env: CONTENT_SYNC_CONFIG, flag: --config
	JSONFilePath string `env:"CONTENT_SYNC_CONFIG"`
}

// Remote holds the connection settings of the remote content store.
type Remote struct {
	// URL is the base URL of the remote instance, without the /api suffix.
	// Env: CONTENT_SYNC_REMOTE_URL
	URL string `env:"URL"`

	// APIKey authenticates every remote request.
	// Env: CONTENT_SYNC_REMOTE_API_KEY
	APIKey string `env:"API_KEY"`

	// APIKeyCollection is the auth collection the API key belongs to. It is
	// also the collection the bootstrap auth document is created in.
	// Env: CONTENT_SYNC_REMOTE_API_KEY_COLLECTION
	APIKeyCollection string `env:"API_KEY_COLLECTION"`

	// RequestTimeout bounds a single remote request. Zero leaves the
	// transport default (no timeout).
	// Env: CONTENT_SYNC_REMOTE_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Sync holds the parameters of one sync run.
type Sync struct {
	// LocalConfigPath points at the local store description (YAML or JSON).
	// Env: CONTENT_SYNC_LOCAL_CONFIG
	LocalConfigPath string `env:"LOCAL_CONFIG"`

	// Collections is the ordered list of collection slugs to sync.
	// Env: CONTENT_SYNC_COLLECTIONS (comma separated)
	Collections []string `env:"COLLECTIONS" envSeparator:","`

	// PriorityCollections are moved to the front of Collections.
	// Env: CONTENT_SYNC_PRIORITY_COLLECTIONS (comma separated)
	PriorityCollections []string `env:"PRIORITY_COLLECTIONS" envSeparator:","`

	// Limit is the remote page size.
	// Env: CONTENT_SYNC_LIMIT
	Limit int `env:"LIMIT"`

	// LocalAuthUserData is a JSON document created in the API key collection
	// before the run starts.
	// Env: CONTENT_SYNC_LOCAL_AUTH_USER_DATA
	LocalAuthUserData string `env:"LOCAL_AUTH_USER_DATA"`
}

// Storage groups the configuration for the local storage backends.
type Storage struct {
	// DB holds the relational database connection settings.
	DB DB

	// Files holds the upload file storage settings.
	Files Files `envPrefix:"CONTENT_SYNC_FILES_"`
}

// DB holds connection settings for the relational database backend.
type DB struct {
	// DSN is the connection string of the local database. postgres:// and
	// postgresql:// select PostgreSQL, anything else is opened as SQLite.
	// Env: DATABASE_URI
	DSN string `env:"DATABASE_URI"`
}

// Files holds settings for the upload file store.
type Files struct {
	// Driver is "disk" (default) or "s3".
	// Env: CONTENT_SYNC_FILES_DRIVER
	Driver string `env:"DRIVER"`

	// MediaDir is the directory upload files are stored in by the disk driver.
	// Env: CONTENT_SYNC_FILES_MEDIA_DIR
	MediaDir string `env:"MEDIA_DIR"`

	// S3 configures the s3 driver.
	S3 S3 `envPrefix:"S3_"`
}

// S3 holds settings for an S3-compatible object store (AWS, MinIO).
type S3 struct {
	Bucket    string `env:"BUCKET"`
	Prefix    string `env:"PREFIX"`
	Region    string `env:"REGION"`
	Endpoint  string `env:"ENDPOINT"`
	AccessKey string `env:"ACCESS_KEY"`
	SecretKey string `env:"SECRET_KEY"`
}

// Log controls the application logger.
type Log struct {
	// Level is a zerolog level name.
	// Env: CONTENT_SYNC_LOG_LEVEL
	Level string `env:"LEVEL"`

	// Format is "json" or "console".
	// Env: CONTENT_SYNC_LOG_FORMAT
	Format string `env:"FORMAT"`

	// File optionally duplicates log output into a rotating file.
	// Env: CONTENT_SYNC_LOG_FILE
	File string `env:"FILE"`
}

// defaults returns the lowest-precedence configuration layer.
func defaults() *StructuredConfig {
	return &StructuredConfig{
		Sync: Sync{
			Limit: DefaultLimit,
		},
		Storage: Storage{
			Files: Files{
				Driver:   FilesDriverDisk,
				MediaDir: "media",
			},
		},
		Log: Log{
			Level:  "info",
			Format: "json",
		},
	}
}

// File storage drivers.
const (
	FilesDriverDisk = "disk"
	FilesDriverS3   = "s3"
)

// GetStructuredConfig loads, merges, and validates the configuration from
// all available sources in the following priority order (later sources
// override earlier non-zero fields):
//  1. Built-in defaults
//  2. JSON file (path resolved from sources 3 and 4)
//  3. Environment variables (after .env files are loaded)
//  4. Command-line flags bound with BindFlags
//
// Returns a fully populated *StructuredConfig or an error if any source
// fails to load or the final config fails validation.
func GetStructuredConfig(flags *Flags) (*StructuredConfig, error) {
	return newConfigBuilder().
		withDefaults().
		withEnv().
		withFlags(flags).
		withJSON().
		build()
}
