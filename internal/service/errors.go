// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"errors"
	"fmt"

	"github.com/MKhiriev/content-sync/internal/fields"
)

var (
	// ErrMissingMapping is matched by every *MissingMappingError.
	ErrMissingMapping = errors.New("missing id mapping")

	ErrUnknownCollections  = errors.New("collections not found in local config")
	ErrCollectionsNotEmpty = errors.New("target collections are not empty")
	ErrUploadMismatch      = errors.New("upload capability mismatch")

	ErrInvalidVersion    = errors.New("invalid version snapshot")
	ErrMissingDocumentID = errors.New("document has no id")

	ErrInvalidBootstrapUser = errors.New("invalid bootstrap auth user data")
)

// MissingMappingError reports a remote id with no local counterpart. It is
// raised by strict lookups in the required pass and when the optional pass
// cannot find the local twin of a remote document.
type MissingMappingError struct {
	Collection string
	RemoteID   any
	// Path locates the reference inside the document. Empty for document ids.
	Path string
}

func (e *MissingMappingError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s/%s", ErrMissingMapping, e.Collection, fields.StringifyID(e.RemoteID))
	}
	return fmt.Sprintf("%s: %s/%s (at %s)", ErrMissingMapping, e.Collection, fields.StringifyID(e.RemoteID), e.Path)
}

// Is reports whether target is ErrMissingMapping.
func (e *MissingMappingError) Is(target error) bool {
	return target == ErrMissingMapping
}
