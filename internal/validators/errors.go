// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownCheck    = errors.New("unknown check for validation")

	ErrEmptySlug             = errors.New("collection slug is required")
	ErrUnnamedField          = errors.New("field requires a name")
	ErrMissingRelationTarget = errors.New("relationship field has no relationTo")
	ErrUnknownRelationTarget = errors.New("relationship targets an unknown collection")
	ErrEmptyBlocks           = errors.New("blocks field declares no blocks")
	ErrInvalidBlockSlug      = errors.New("block slug is empty or duplicated")
)
