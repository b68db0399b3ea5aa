// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package fields implements the pure, schema-driven document transformations
// of a sync run: splitting a document into its required and optional halves,
// walking relationship leaves, stripping generated or unsafe fields, and
// merging optional data onto an existing local record.
//
// Nothing in this package performs I/O. Documents are plain
// map[string]any trees as produced by encoding/json with UseNumber.
package fields

import (
	"strconv"

	"github.com/MKhiriev/content-sync/models"
)

// Visitor is called by [Walk] for every relationship leaf present in the
// data. obj is the object that holds the leaf, so a visitor may replace
// obj[field.Name] in place. path is a dotted location used in log and error
// messages.
type Visitor func(obj map[string]any, field models.Field, path string) error

// Walk visits every relationship leaf of data described by defs, descending
// through rows, tabs, groups, arrays and blocks. Items of a blocks field whose
// blockType matches no declared variant are not descended into. The first
// error returned by visit stops the walk.
func Walk(data map[string]any, defs []models.Field, visit Visitor) error {
	return walk(data, defs, "", visit)
}

func walk(obj map[string]any, defs []models.Field, path string, visit Visitor) error {
	for _, f := range defs {
		// a relationship leaf wins over any container semantics of its type
		if f.IsRelationship() {
			if _, ok := obj[f.Name]; ok {
				if err := visit(obj, f, joinPath(path, f.Name)); err != nil {
					return err
				}
			}
			continue
		}

		switch f.Kind() {
		case models.KindRow:
			if err := walk(obj, f.Fields, path, visit); err != nil {
				return err
			}

		case models.KindTabs:
			for _, tab := range f.Tabs {
				if tab.Name == "" {
					if err := walk(obj, tab.Fields, path, visit); err != nil {
						return err
					}
					continue
				}
				if sub, ok := obj[tab.Name].(map[string]any); ok {
					if err := walk(sub, tab.Fields, joinPath(path, tab.Name), visit); err != nil {
						return err
					}
				}
			}

		case models.KindGroup:
			if sub, ok := obj[f.Name].(map[string]any); ok {
				if err := walk(sub, f.Fields, joinPath(path, f.Name), visit); err != nil {
					return err
				}
			}

		case models.KindArray:
			items, _ := obj[f.Name].([]any)
			for i, item := range items {
				sub, ok := item.(map[string]any)
				if !ok {
					continue
				}
				if err := walk(sub, f.Fields, indexPath(path, f.Name, i), visit); err != nil {
					return err
				}
			}

		case models.KindBlocks:
			items, _ := obj[f.Name].([]any)
			for i, item := range items {
				sub, ok := item.(map[string]any)
				if !ok {
					continue
				}
				block, ok := f.BlockFor(sub["blockType"])
				if !ok {
					continue
				}
				if err := walk(sub, block.Fields, indexPath(path, f.Name, i), visit); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

func indexPath(path, name string, i int) string {
	return joinPath(path, name) + "[" + strconv.Itoa(i) + "]"
}
