// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/content-sync/internal/adapter"
	"github.com/MKhiriev/content-sync/internal/config"
	"github.com/MKhiriev/content-sync/internal/localconfig"
	"github.com/MKhiriev/content-sync/internal/logger"
	"github.com/MKhiriev/content-sync/internal/service"
	"github.com/MKhiriev/content-sync/internal/store"
	"github.com/MKhiriev/content-sync/internal/validators"
	"github.com/MKhiriev/content-sync/models"
)

type App struct {
	cfg    config.StructuredConfig
	logger *logger.Logger
}

var _ Runner = (*App)(nil)

func NewApp(cfg *config.StructuredConfig, logger *logger.Logger) (*App, error) {
	if cfg == nil {
		return nil, errors.New("nil config")
	}
	return &App{cfg: *cfg, logger: logger}, nil
}

// Run implements [Runner].
func (a *App) Run(ctx context.Context) (report models.SyncReport, err error) {
	local, err := localconfig.Load(a.cfg.Sync.LocalConfigPath)
	if err != nil {
		return report, err
	}

	slugs := make([]string, 0, len(local.Collections))
	for _, c := range local.Collections {
		slugs = append(slugs, c.Slug)
	}
	if err = validators.NewCollectionValidator(slugs).Validate(ctx, local.Collections); err != nil {
		return report, fmt.Errorf("invalid local config: %w", err)
	}

	cfg := a.cfg
	if local.Upload.Dir != "" {
		cfg.Storage.Files.MediaDir = local.Upload.Dir
	}

	remote, err := adapter.NewHTTPRemoteReader(cfg.Remote, cfg.Sync.Limit, a.logger)
	if err != nil {
		return report, fmt.Errorf("create remote reader: %w", err)
	}

	storages, err := store.NewStorages(ctx, cfg.Storage, local.Database.DSN, a.logger)
	if err != nil {
		return report, fmt.Errorf("create storages: %w", err)
	}
	defer func() {
		if closeErr := storages.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close local store: %w", closeErr))
		}
	}()

	services := service.NewServices(remote, storages, local, cfg, a.logger)

	report, err = services.SyncService.Run(ctx)
	if err != nil {
		return report, err
	}

	for _, c := range report.Collections {
		a.logger.Info().
			Str("collection", c.Slug).
			Int("created", c.Created).
			Int("preserved_auth", c.PreservedAuth).
			Int("updated", c.Updated).
			Int("skipped", c.Skipped).
			Int("versions", c.Versions).
			Int("files_fetched", c.FilesFetched).
			Msg("collection synced")
	}
	return report, nil
}
