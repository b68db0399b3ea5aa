// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package fields

import (
	"github.com/MKhiriev/content-sync/models"
)

// Split partitions data into the fields needed to create a minimally valid
// record (required) and everything else (optional), following defs.
//
// The partition is lossless: every top-level key of data ends up in at least
// one half, and a leaf never appears in both. Containers may appear in both
// halves with complementary children. Keys not described by defs go to the
// optional half untouched.
func Split(data map[string]any, defs []models.Field) (required, optional map[string]any) {
	required = make(map[string]any)
	optional = make(map[string]any)
	visited := make(map[string]struct{})

	splitInto(data, defs, required, optional, visited)

	for k, v := range data {
		if _, ok := visited[k]; !ok {
			optional[k] = v
		}
	}

	return required, optional
}

// SplitForPasses prepares a remote document for the two sync passes: it
// strips generated upload fields and hard-excluded auth fields, splits the
// remainder and moves the source id into the required half.
func SplitForPasses(doc models.Document, meta models.CollectionMetadata) models.SplitDocument {
	source := Strip(doc, meta)

	required, optional := Split(source, meta.Fields)
	if id, ok := source["id"]; ok {
		required["id"] = id
		delete(optional, "id")
	}

	return models.SplitDocument{Required: required, Optional: optional}
}

func splitInto(data map[string]any, defs []models.Field, required, optional map[string]any, visited map[string]struct{}) {
	for _, f := range defs {
		switch f.Kind() {
		case models.KindRow:
			splitInto(data, f.Fields, required, optional, visited)
			continue

		case models.KindTabs:
			for _, tab := range f.Tabs {
				if tab.Name == "" {
					splitInto(data, tab.Fields, required, optional, visited)
					continue
				}
				value, ok := data[tab.Name]
				if !ok {
					continue
				}
				visited[tab.Name] = struct{}{}
				splitObject(tab.Name, value, tab.Fields, false, required, optional)
			}
			continue
		}

		if f.Name == "" {
			continue
		}
		value, ok := data[f.Name]
		if !ok {
			continue
		}
		visited[f.Name] = struct{}{}

		switch {
		case f.IsRelationship():
			placeWhole(f.Name, value, f.Required, required, optional)
		case f.Kind() == models.KindGroup:
			splitObject(f.Name, value, f.Fields, f.Required, required, optional)
		case f.Kind() == models.KindArray:
			splitList(f, value, required, optional, func(map[string]any) ([]models.Field, bool) {
				return f.Fields, true
			})
		case f.Kind() == models.KindBlocks:
			splitList(f, value, required, optional, func(item map[string]any) ([]models.Field, bool) {
				block, ok := f.BlockFor(item["blockType"])
				return block.Fields, ok
			})
		default:
			placeWhole(f.Name, value, f.Required, required, optional)
		}
	}
}

// splitObject handles named groups and tabs.
func splitObject(name string, value any, defs []models.Field, isRequired bool, required, optional map[string]any) {
	sub, ok := value.(map[string]any)
	if !ok {
		placeWhole(name, value, isRequired, required, optional)
		return
	}

	r, o := Split(sub, defs)
	attached := false
	if len(r) > 0 || isRequired {
		required[name] = r
		attached = true
	}
	if len(o) > 0 || !attached {
		optional[name] = o
	}
}

// splitList handles arrays and blocks. Every record item is split against the
// field list returned by resolve; items resolve cannot describe go to the
// optional half whole. The id and blockType of an item are copied onto its
// required half and always kept on its optional half, so the optional list
// lists every identified item in source order.
func splitList(f models.Field, value any, required, optional map[string]any, resolve func(map[string]any) ([]models.Field, bool)) {
	items, ok := value.([]any)
	if !ok {
		placeWhole(f.Name, value, f.Required, required, optional)
		return
	}

	requiredItems := make([]any, 0, len(items))
	optionalItems := make([]any, 0, len(items))

	for _, item := range items {
		record, ok := item.(map[string]any)
		if !ok {
			optionalItems = append(optionalItems, item)
			continue
		}

		defs, ok := resolve(record)
		if !ok {
			optionalItems = append(optionalItems, record)
			continue
		}

		r, o := Split(record, defs)
		if len(r) > 0 {
			for _, key := range []string{"id", "blockType"} {
				if v, ok := record[key]; ok {
					r[key] = v
				}
			}
			requiredItems = append(requiredItems, r)
		}
		if len(o) > 0 {
			optionalItems = append(optionalItems, o)
		}
	}

	if len(requiredItems) > 0 || f.Required {
		required[f.Name] = requiredItems
	}
	if len(optionalItems) > 0 || !f.Required {
		optional[f.Name] = optionalItems
	}
}

func placeWhole(name string, value any, isRequired bool, required, optional map[string]any) {
	if isRequired {
		required[name] = value
		return
	}
	optional[name] = value
}
