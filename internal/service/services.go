// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"github.com/MKhiriev/content-sync/internal/adapter"
	"github.com/MKhiriev/content-sync/internal/config"
	"github.com/MKhiriev/content-sync/internal/localconfig"
	"github.com/MKhiriev/content-sync/internal/logger"
	"github.com/MKhiriev/content-sync/internal/store"
)

type Services struct {
	SyncService SyncService
}

func NewServices(remote adapter.RemoteReader, storages *store.Storages, local *localconfig.LocalConfig, cfg config.StructuredConfig, logger *logger.Logger) *Services {
	return &Services{
		SyncService: NewSyncService(remote, storages.Mappings, storages.Content, local.Metadata(), cfg, logger),
	}
}
