// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package app

import (
	"context"

	"github.com/MKhiriev/content-sync/models"
)

// Runner defines the lifecycle contract of a one-shot sync process.
type Runner interface {
	// Run performs one sync run and blocks until it finishes or ctx is
	// cancelled.
	Run(ctx context.Context) (models.SyncReport, error)
}
