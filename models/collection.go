// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// CollectionMetadata describes one content type selected for synchronization.
// It is loaded once from the local store description and never mutated during
// a run.
type CollectionMetadata struct {
	// Slug is the unique collection name used in URLs and the mapping table.
	Slug string `json:"slug" yaml:"slug"`

	// Upload reports whether documents of the collection carry a binary file.
	Upload bool `json:"upload" yaml:"upload"`

	// Auth reports whether the collection holds authentication principals.
	// Auth documents that already exist locally are never overwritten.
	Auth bool `json:"auth" yaml:"auth"`

	// Versions reports whether the collection keeps a version history.
	Versions bool `json:"versions" yaml:"versions"`

	// Fields is the ordered field-definition tree of the collection.
	Fields []Field `json:"fields" yaml:"fields"`
}

// FieldKind is the structural variant of a [Field] node. Traversals switch on
// it instead of inspecting the raw type tag.
type FieldKind int

const (
	// KindScalar is a leaf holding a value (text, number, relationship...).
	KindScalar FieldKind = iota
	// KindGroup is a named container whose children live in a sub-object.
	KindGroup
	// KindArray is a named list of records sharing one field list.
	KindArray
	// KindBlocks is a named list of records tagged with a blockType.
	KindBlocks
	// KindTabs is a list of tabs, each either named (sub-object) or transparent.
	KindTabs
	// KindRow is a transparent container whose children belong to the parent.
	KindRow
)

// String implements fmt.Stringer.
func (k FieldKind) String() string {
	switch k {
	case KindGroup:
		return "group"
	case KindArray:
		return "array"
	case KindBlocks:
		return "blocks"
	case KindTabs:
		return "tabs"
	case KindRow:
		return "row"
	default:
		return "scalar"
	}
}

// Field is a node of the field-definition tree.
type Field struct {
	Type       string     `json:"type" yaml:"type"`
	Name       string     `json:"name,omitempty" yaml:"name,omitempty"`
	Required   bool       `json:"required,omitempty" yaml:"required,omitempty"`
	RelationTo RelationTo `json:"relationTo,omitzero" yaml:"relationTo,omitempty"`
	HasMany    bool       `json:"hasMany,omitempty" yaml:"hasMany,omitempty"`
	Fields     []Field    `json:"fields,omitempty" yaml:"fields,omitempty"`
	Tabs       []Tab      `json:"tabs,omitempty" yaml:"tabs,omitempty"`
	Blocks     []Block    `json:"blocks,omitempty" yaml:"blocks,omitempty"`
}

// Tab is one section of a tabs container. A tab with a Name stores its
// children in a sub-object, an unnamed tab is transparent.
type Tab struct {
	Name   string  `json:"name,omitempty" yaml:"name,omitempty"`
	Label  string  `json:"label,omitempty" yaml:"label,omitempty"`
	Fields []Field `json:"fields" yaml:"fields"`
}

// Block is one variant of a blocks container, selected by the blockType
// discriminant of a list item.
type Block struct {
	Slug   string  `json:"slug" yaml:"slug"`
	Fields []Field `json:"fields" yaml:"fields"`
}

// Kind resolves the structural variant of f.
//
// Groups and collapsibles without a name carry no data of their own and are
// treated exactly like rows.
func (f Field) Kind() FieldKind {
	switch strings.ToLower(f.Type) {
	case "group", "collapsible":
		if f.Name == "" {
			return KindRow
		}
		return KindGroup
	case "array":
		return KindArray
	case "blocks":
		return KindBlocks
	case "tabs":
		return KindTabs
	case "row":
		return KindRow
	default:
		return KindScalar
	}
}

// IsRelationship reports whether f is a named leaf that references documents
// of other collections.
func (f Field) IsRelationship() bool {
	return f.Name != "" && !f.RelationTo.IsEmpty()
}

// BlockFor returns the block variant whose slug equals blockType.
func (f Field) BlockFor(blockType any) (Block, bool) {
	slug, ok := blockType.(string)
	if !ok || slug == "" {
		return Block{}, false
	}
	for _, b := range f.Blocks {
		if b.Slug == slug {
			return b, true
		}
	}
	return Block{}, false
}

// RelationTo holds the target collection(s) of a relationship field. It is
// decoded either from a single slug or from a list of slugs; the list form
// marks the relationship as polymorphic even when it has one element.
type RelationTo struct {
	Collections []string
	Polymorphic bool
}

// Single builds a non-polymorphic [RelationTo] targeting collection.
func Single(collection string) RelationTo {
	return RelationTo{Collections: []string{collection}}
}

// Polymorphic builds a polymorphic [RelationTo] over collections.
func Polymorphic(collections ...string) RelationTo {
	return RelationTo{Collections: collections, Polymorphic: true}
}

// IsEmpty reports whether no target collection is declared.
func (r RelationTo) IsEmpty() bool {
	return len(r.Collections) == 0
}

// Target returns the single target collection of a non-polymorphic
// relationship.
func (r RelationTo) Target() string {
	if len(r.Collections) == 0 {
		return ""
	}
	return r.Collections[0]
}

// UnmarshalJSON accepts `"slug"` or `["a", "b"]`.
func (r *RelationTo) UnmarshalJSON(b []byte) error {
	var single string
	if err := json.Unmarshal(b, &single); err == nil {
		*r = RelationTo{}
		if single != "" {
			*r = Single(single)
		}
		return nil
	}

	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return fmt.Errorf("relationTo must be a string or a list of strings: %w", err)
	}
	*r = Polymorphic(list...)
	return nil
}

// MarshalJSON mirrors UnmarshalJSON.
func (r RelationTo) MarshalJSON() ([]byte, error) {
	if r.Polymorphic {
		return json.Marshal(r.Collections)
	}
	return json.Marshal(r.Target())
}

// UnmarshalYAML accepts a scalar slug or a sequence of slugs.
func (r *RelationTo) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*r = RelationTo{}
		if node.Value != "" {
			*r = Single(node.Value)
		}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return fmt.Errorf("relationTo: %w", err)
		}
		*r = Polymorphic(list...)
		return nil
	default:
		return fmt.Errorf("relationTo must be a string or a list of strings (line %d)", node.Line)
	}
}

// IsZero lets yaml and json omitempty skip unset relations.
func (r RelationTo) IsZero() bool {
	return r.IsEmpty()
}
