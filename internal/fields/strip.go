// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package fields

import "github.com/MKhiriev/content-sync/models"

// GeneratedUploadFields are derived by the local store from the stored file
// and are regenerated rather than copied.
var GeneratedUploadFields = map[string]struct{}{
	"filename":     {},
	"filesize":     {},
	"focalX":       {},
	"focalY":       {},
	"height":       {},
	"mimeType":     {},
	"sizes":        {},
	"thumbnailURL": {},
	"url":          {},
	"width":        {},
}

// HardExcludedAuthFields are never carried over from an auth collection.
var HardExcludedAuthFields = map[string]struct{}{
	"sessions": {},
}

// Strip returns a copy of doc without generated upload fields (upload
// collections) and hard-excluded fields (auth collections). doc itself is
// left untouched.
func Strip(doc map[string]any, meta models.CollectionMetadata) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		if meta.Upload {
			if _, ok := GeneratedUploadFields[k]; ok {
				continue
			}
		}
		if meta.Auth {
			if _, ok := HardExcludedAuthFields[k]; ok {
				continue
			}
		}
		out[k] = v
	}
	return out
}
