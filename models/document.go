// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// Document is one record of a collection keyed by field name. Numbers
// decoded from the remote store are kept as json.Number so that ids and
// integers round-trip without float conversion.
type Document map[string]any

// ID returns the value stored under the "id" key.
func (d Document) ID() (any, bool) {
	id, ok := d["id"]
	if !ok || id == nil {
		return nil, false
	}
	return id, true
}

// Clone returns a shallow copy of d.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// SplitDocument is a document partitioned for the two sync passes.
type SplitDocument struct {
	// Required holds the fields needed to create a minimally valid record,
	// plus the source id.
	Required Document

	// Optional holds everything else.
	Optional Document
}

// UploadFile is a binary attached to an upload-capable document on create.
type UploadFile struct {
	Name     string
	MimeType string
	Size     int64
	Data     []byte
}
