// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// DocumentsPage is the paginated envelope returned by the remote collection
// listing endpoint.
type DocumentsPage struct {
	Docs        []Document `json:"docs"`
	HasNextPage bool       `json:"hasNextPage"`
	Page        int        `json:"page"`
	Limit       int        `json:"limit"`
	TotalDocs   int        `json:"totalDocs"`
	TotalPages  int        `json:"totalPages"`
}

// VersionsPage is the paginated envelope returned by the remote versions
// endpoint. Only the first entry is used.
type VersionsPage struct {
	Docs        []VersionSnapshot `json:"docs"`
	HasNextPage bool              `json:"hasNextPage"`
	TotalDocs   int               `json:"totalDocs"`
}

// RemoteCollection is the capability summary of one collection as reported by
// the remote sync metadata endpoint.
type RemoteCollection struct {
	Slug     string `json:"slug"`
	Upload   bool   `json:"upload"`
	Auth     bool   `json:"auth,omitempty"`
	Versions bool   `json:"versions,omitempty"`
}

// SyncMetadataResponse is the body of GET /api/sync on the remote store.
type SyncMetadataResponse struct {
	Collections []RemoteCollection `json:"collections"`
}
