// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// VersionSnapshot is a revision of a document as returned by the remote
// versions endpoint. Flags are kept loosely typed because the remote store
// may omit them or send null. Version holds the full document payload and is
// expected to decode as a JSON object.
type VersionSnapshot struct {
	ID              any `json:"id"`
	Parent          any `json:"parent"`
	Version         any `json:"version"`
	CreatedAt       any `json:"createdAt"`
	UpdatedAt       any `json:"updatedAt"`
	Autosave        any `json:"autosave"`
	PublishedLocale any `json:"publishedLocale"`
	Snapshot        any `json:"snapshot"`
	Latest          any `json:"latest"`
}

// LocalVersion is a version-history entry written to the local store.
type LocalVersion struct {
	Collection      string
	Parent          any
	Data            Document
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Autosave        bool
	PublishedLocale string
	Snapshot        bool
}
