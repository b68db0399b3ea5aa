// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// CollectionReport counts what a run did to one collection.
type CollectionReport struct {
	Slug string `json:"slug"`

	// Created is the number of local documents created in the required pass.
	Created int `json:"created"`
	// PreservedAuth is the number of pre-existing auth documents that were
	// identity-mapped instead of created.
	PreservedAuth int `json:"preserved_auth"`
	// Updated is the number of documents patched in the optional pass.
	Updated int `json:"updated"`
	// Skipped is the number of documents with nothing to do in the optional pass.
	Skipped int `json:"skipped"`
	// Versions is the number of version snapshots replayed.
	Versions int `json:"versions"`
	// FilesFetched is the number of binaries downloaded from the remote store.
	FilesFetched int `json:"files_fetched"`
}

// SyncReport summarizes a finished run.
type SyncReport struct {
	RunID       string             `json:"run_id"`
	StartedAt   time.Time          `json:"started_at"`
	FinishedAt  time.Time          `json:"finished_at"`
	Collections []CollectionReport `json:"collections"`
}

// Collection returns the report entry for slug, creating it on first use.
func (r *SyncReport) Collection(slug string) *CollectionReport {
	for i := range r.Collections {
		if r.Collections[i].Slug == slug {
			return &r.Collections[i]
		}
	}
	r.Collections = append(r.Collections, CollectionReport{Slug: slug})
	return &r.Collections[len(r.Collections)-1]
}
