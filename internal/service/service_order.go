// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import "github.com/MKhiriev/content-sync/internal/logger"

// OrderCollections moves the priority slugs that are also in collections to
// the front, in priority order. The other collections keep their order.
// Priority slugs that are not synced are logged and ignored.
func OrderCollections(collections, priority []string, log *logger.Logger) []string {
	selected := make(map[string]struct{}, len(collections))
	for _, slug := range collections {
		selected[slug] = struct{}{}
	}

	ordered := make([]string, 0, len(collections))
	placed := make(map[string]struct{}, len(priority))
	for _, slug := range priority {
		if _, ok := selected[slug]; !ok {
			log.Warn().Str("collection", slug).Msg("priority collection is not selected for sync, ignoring")
			continue
		}
		if _, ok := placed[slug]; ok {
			continue
		}
		placed[slug] = struct{}{}
		ordered = append(ordered, slug)
	}

	for _, slug := range collections {
		if _, ok := placed[slug]; !ok {
			ordered = append(ordered, slug)
		}
	}
	return ordered
}
