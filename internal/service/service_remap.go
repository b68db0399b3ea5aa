// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"

	"github.com/MKhiriev/content-sync/internal/fields"
	"github.com/MKhiriev/content-sync/internal/logger"
	"github.com/MKhiriev/content-sync/internal/store"
	"github.com/MKhiriev/content-sync/models"
)

// LookupMode selects what [Remapper.Remap] does with references that have no
// mapping yet.
type LookupMode int

const (
	// LookupStrict fails on the first unmapped reference.
	LookupStrict LookupMode = iota
	// LookupPermissive keeps unmapped references unchanged.
	LookupPermissive
)

func (m LookupMode) String() string {
	if m == LookupPermissive {
		return "permissive"
	}
	return "strict"
}

type relationshipRemapper struct {
	mappings store.MappingStore
	logger   *logger.Logger
}

// NewRemapper constructs a [Remapper] resolving ids through mappings.
func NewRemapper(mappings store.MappingStore, logger *logger.Logger) Remapper {
	return &relationshipRemapper{mappings: mappings, logger: logger}
}

// Remap implements [Remapper].
func (r *relationshipRemapper) Remap(ctx context.Context, data models.Document, defs []models.Field, mode LookupMode) (models.Document, error) {
	if data == nil {
		return nil, nil
	}
	out, _ := deepCopy(map[string]any(data)).(map[string]any)

	err := fields.Walk(out, defs, func(obj map[string]any, field models.Field, path string) error {
		value, err := r.remapValue(ctx, obj[field.Name], field, path, mode)
		if err != nil {
			return err
		}
		obj[field.Name] = value
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// remapValue handles the shapes a relationship value may take: a bare id, a
// populated document, a polymorphic {relationTo, value} envelope, or a list
// of any of those.
func (r *relationshipRemapper) remapValue(ctx context.Context, value any, field models.Field, path string, mode LookupMode) (any, error) {
	if items, ok := value.([]any); ok {
		out := make([]any, len(items))
		for i, item := range items {
			mapped, err := r.remapSingle(ctx, item, field, path, mode)
			if err != nil {
				return nil, err
			}
			out[i] = mapped
		}
		return out, nil
	}
	return r.remapSingle(ctx, value, field, path, mode)
}

func (r *relationshipRemapper) remapSingle(ctx context.Context, value any, field models.Field, path string, mode LookupMode) (any, error) {
	if value == nil {
		return nil, nil
	}

	if field.RelationTo.Polymorphic {
		envelope, ok := value.(map[string]any)
		if !ok {
			return value, nil
		}
		collection, ok := envelope["relationTo"].(string)
		if !ok || collection == "" {
			return value, nil
		}
		mapped, err := r.remapReference(ctx, collection, envelope["value"], path, mode)
		if err != nil {
			return nil, err
		}
		out := make(map[string]any, len(envelope))
		for k, v := range envelope {
			out[k] = v
		}
		out["value"] = mapped
		return out, nil
	}

	return r.remapReference(ctx, field.RelationTo.Target(), value, path, mode)
}

// remapReference resolves one reference to collection. Populated documents
// collapse to the local id.
func (r *relationshipRemapper) remapReference(ctx context.Context, collection string, value any, path string, mode LookupMode) (any, error) {
	remoteID, ok := fields.ReferencedID(value)
	if !ok {
		return value, nil
	}

	localID, found, err := r.mappings.Lookup(ctx, collection, remoteID)
	if err != nil {
		return nil, err
	}
	if found {
		return localID, nil
	}

	if mode == LookupStrict {
		return nil, &MissingMappingError{Collection: collection, RemoteID: remoteID, Path: path}
	}

	logger.FromContext(ctx).Debug().
		Str("collection", collection).
		Str("remote_id", fields.StringifyID(remoteID)).
		Str("path", path).
		Msg("reference has no mapping yet, keeping remote id")
	return value, nil
}

func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = deepCopy(val)
		}
		return out
	case models.Document:
		return deepCopy(map[string]any(t))
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = deepCopy(val)
		}
		return out
	default:
		return v
	}
}
