// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import (
	"context"
	"fmt"
	"strings"

	"github.com/MKhiriev/content-sync/models"
)

// Checks run by [CollectionValidator]. All of them run when none is named.
const (
	CheckSlug            = "slug"
	CheckFieldNames      = "field_names"
	CheckRelationTargets = "relation_targets"
	CheckBlocks          = "blocks"
)

var allChecks = []string{CheckSlug, CheckFieldNames, CheckRelationTargets, CheckBlocks}

// CollectionValidator checks field-definition trees against the collections
// known to the local store.
type CollectionValidator struct {
	known map[string]struct{}
}

// NewCollectionValidator returns a [Validator] accepting relationships to the
// given collection slugs only.
func NewCollectionValidator(known []string) Validator {
	v := &CollectionValidator{known: make(map[string]struct{}, len(known))}
	for _, slug := range known {
		v.known[slug] = struct{}{}
	}
	return v
}

// Validate accepts a models.CollectionMetadata, a pointer to one or a slice
// of them. The first violation is returned.
func (v *CollectionValidator) Validate(ctx context.Context, obj any, checks ...string) error {
	if len(checks) == 0 {
		checks = allChecks
	}
	for _, c := range checks {
		if !isKnownCheck(c) {
			return fmt.Errorf("%w: %s", ErrUnknownCheck, c)
		}
	}

	switch value := obj.(type) {
	case models.CollectionMetadata:
		return v.validateCollection(ctx, value, checks)
	case *models.CollectionMetadata:
		return v.validateCollection(ctx, *value, checks)
	case []models.CollectionMetadata:
		for _, meta := range value {
			if err := v.validateCollection(ctx, meta, checks); err != nil {
				return err
			}
		}
		return nil
	default:
		return ErrUnsupportedType
	}
}

func isKnownCheck(check string) bool {
	for _, c := range allChecks {
		if c == check {
			return true
		}
	}
	return false
}

func hasCheck(checks []string, check string) bool {
	for _, c := range checks {
		if c == check {
			return true
		}
	}
	return false
}

func (v *CollectionValidator) validateCollection(_ context.Context, meta models.CollectionMetadata, checks []string) error {
	if hasCheck(checks, CheckSlug) && strings.TrimSpace(meta.Slug) == "" {
		return ErrEmptySlug
	}
	if err := v.validateFields(meta.Fields, meta.Slug, checks); err != nil {
		return err
	}
	return nil
}

func (v *CollectionValidator) validateFields(defs []models.Field, path string, checks []string) error {
	for i, f := range defs {
		fieldPath := path + "." + f.Name
		if f.Name == "" {
			fieldPath = fmt.Sprintf("%s[%d]", path, i)
		}

		if err := v.validateField(f, fieldPath, checks); err != nil {
			return err
		}

		switch f.Kind() {
		case models.KindTabs:
			for j, tab := range f.Tabs {
				tabPath := fmt.Sprintf("%s.tabs[%d]", fieldPath, j)
				if tab.Name != "" {
					tabPath = fieldPath + "." + tab.Name
				}
				if err := v.validateFields(tab.Fields, tabPath, checks); err != nil {
					return err
				}
			}
		case models.KindBlocks:
			for _, b := range f.Blocks {
				if err := v.validateFields(b.Fields, fieldPath+"."+b.Slug, checks); err != nil {
					return err
				}
			}
		default:
			if err := v.validateFields(f.Fields, fieldPath, checks); err != nil {
				return err
			}
		}
	}
	return nil
}

func (v *CollectionValidator) validateField(f models.Field, path string, checks []string) error {
	typ := strings.ToLower(f.Type)

	if hasCheck(checks, CheckFieldNames) && f.Name == "" {
		switch f.Kind() {
		case models.KindArray, models.KindBlocks:
			return fmt.Errorf("%w: %s field at %s", ErrUnnamedField, typ, path)
		case models.KindScalar:
			if typ != "ui" {
				return fmt.Errorf("%w: %s field at %s", ErrUnnamedField, typ, path)
			}
		}
	}

	if hasCheck(checks, CheckRelationTargets) {
		if (typ == "relationship" || typ == "upload") && f.RelationTo.IsEmpty() {
			return fmt.Errorf("%w: %s", ErrMissingRelationTarget, path)
		}
		for _, target := range f.RelationTo.Collections {
			if _, ok := v.known[target]; !ok {
				return fmt.Errorf("%w: %s -> %s", ErrUnknownRelationTarget, path, target)
			}
		}
	}

	if hasCheck(checks, CheckBlocks) && f.Kind() == models.KindBlocks {
		if len(f.Blocks) == 0 {
			return fmt.Errorf("%w: %s", ErrEmptyBlocks, path)
		}
		seen := make(map[string]struct{}, len(f.Blocks))
		for _, b := range f.Blocks {
			if _, dup := seen[b.Slug]; dup || b.Slug == "" {
				return fmt.Errorf("%w: %s %q", ErrInvalidBlockSlug, path, b.Slug)
			}
			seen[b.Slug] = struct{}{}
		}
	}

	return nil
}
