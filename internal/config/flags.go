// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"

	"github.com/spf13/pflag"
)

// Flags holds the command-line layer of the configuration. It is bound to a
// pflag.FlagSet (usually the one of a cobra command) with BindFlags and read
// after the set has been parsed.
type Flags struct {
	fs *pflag.FlagSet

	cfg         StructuredConfig
	collections string
	priority    string
}

// BindFlags registers all configuration flags on fs.
//
// Flags:
//
//	--url                   remote base URL
//	--api-key               remote API key
//	--api-key-collection    collection the API key belongs to
//	--local-config          local store description file
//	--collections           comma-separated collection slugs, in sync order
//	--priority-collections  comma-separated slugs moved to the front
//	--limit                 remote page size
//	--request-timeout       timeout of a single remote request (e.g. 30s)
//	--media-dir             upload directory of the disk file driver
//	--log-level             log level
//	--log-format            json or console
//	-c / --config           json file path with configs
func BindFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{fs: fs}

	fs.StringVar(&f.cfg.Remote.URL, "url", "", "Remote API base URL")
	fs.StringVar(&f.cfg.Remote.APIKey, "api-key", "", "Remote API key")
	fs.StringVar(&f.cfg.Remote.APIKeyCollection, "api-key-collection", "", "Collection slug used to validate the API key")
	fs.DurationVar(&f.cfg.Remote.RequestTimeout, "request-timeout", 0, "Timeout of a single remote request (e.g. 30s); 0 disables it")
	fs.StringVar(&f.cfg.Sync.LocalConfigPath, "local-config", "", "Path to the local store description (yaml or json)")
	fs.StringVar(&f.collections, "collections", "", "Comma-separated list of collections to sync")
	fs.StringVar(&f.priority, "priority-collections", "", "Comma-separated list of collections to prioritize during sync")
	fs.IntVar(&f.cfg.Sync.Limit, "limit", 0, fmt.Sprintf("Maximum number of documents per request (default %d)", DefaultLimit))
	fs.StringVar(&f.cfg.Storage.Files.MediaDir, "media-dir", "", "Directory holding local upload files (disk driver)")
	fs.StringVar(&f.cfg.Log.Level, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&f.cfg.Log.Format, "log-format", "", "Log format (json, console)")
	fs.StringVarP(&f.cfg.JSONFilePath, "config", "c", "", "JSON config file path")

	return f
}

// config returns the flag layer. Collection lists are split and
// deduplicated here so that an explicitly empty --collections is reported.
func (f *Flags) config() (*StructuredConfig, error) {
	cfg := f.cfg

	if f.fs.Changed("collections") {
		collections, err := ParseCollections(f.collections)
		if err != nil {
			return nil, fmt.Errorf("invalid --collections value: %w", err)
		}
		cfg.Sync.Collections = collections
	}

	if f.priority != "" {
		priority, err := ParseCollections(f.priority)
		if err != nil {
			return nil, fmt.Errorf("invalid --priority-collections value: %w", err)
		}
		cfg.Sync.PriorityCollections = priority
	}

	if f.fs.Changed("limit") && cfg.Sync.Limit < 1 {
		return nil, fmt.Errorf("%w: --limit %d", ErrInvalidLimit, cfg.Sync.Limit)
	}

	return &cfg, nil
}
