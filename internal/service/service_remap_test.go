// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/MKhiriev/content-sync/internal/logger"
	"github.com/MKhiriev/content-sync/internal/mock"
	"github.com/MKhiriev/content-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func testContext() context.Context {
	return logger.Nop().WithContext(context.Background())
}

// stubLookups makes m resolve the given remote ids and miss everything else.
func stubLookups(m *mock.MockMappingStore, known map[string]map[string]any) {
	m.EXPECT().Lookup(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, collection string, remoteID any) (any, bool, error) {
			id, ok := known[collection][stringID(remoteID)]
			return id, ok, nil
		}).AnyTimes()
}

func stringID(v any) string {
	switch id := v.(type) {
	case json.Number:
		return id.String()
	case string:
		return id
	default:
		b, _ := json.Marshal(id)
		return string(b)
	}
}

var postFields = []models.Field{
	{Type: "relationship", Name: "author", RelationTo: models.Single("authors")},
	{Type: "relationship", Name: "tags", RelationTo: models.Single("tags"), HasMany: true},
	{Type: "relationship", Name: "related", RelationTo: models.Polymorphic("posts", "pages")},
	{Type: "relationship", Name: "links", RelationTo: models.Polymorphic("posts", "pages"), HasMany: true},
	{Type: "row", Fields: []models.Field{
		{Type: "upload", Name: "cover", RelationTo: models.Single("media")},
	}},
	{Type: "group", Name: "meta", Fields: []models.Field{
		{Type: "upload", Name: "image", RelationTo: models.Single("media")},
	}},
	{Type: "array", Name: "sections", Fields: []models.Field{
		{Type: "relationship", Name: "ref", RelationTo: models.Single("authors")},
	}},
	{Type: "blocks", Name: "layout", Blocks: []models.Block{
		{Slug: "quote", Fields: []models.Field{
			{Type: "relationship", Name: "by", RelationTo: models.Single("authors")},
		}},
	}},
	{Type: "text", Name: "title"},
}

var knownIDs = map[string]map[string]any{
	"authors": {"7": int64(1), "8": int64(2)},
	"tags":    {"a": int64(10), "b": int64(11)},
	"posts":   {"42": int64(3)},
	"pages":   {"p1": "local-page"},
	"media":   {"5": int64(20)},
}

// ── value shapes ────────────────────────────────────────────────────────────

func TestRemap_Shapes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mappings := mock.NewMockMappingStore(ctrl)
	stubLookups(mappings, knownIDs)
	r := NewRemapper(mappings, logger.Nop())

	data := models.Document{
		"author":  json.Number("7"),
		"tags":    []any{"a", "b"},
		"related": map[string]any{"relationTo": "pages", "value": "p1"},
		"links": []any{
			map[string]any{"relationTo": "posts", "value": json.Number("42")},
			map[string]any{"relationTo": "pages", "value": map[string]any{"id": "p1", "title": "Home"}},
		},
		"cover":    map[string]any{"id": json.Number("5"), "filename": "a.png"},
		"meta":     map[string]any{"image": json.Number("5"), "description": "d"},
		"sections": []any{map[string]any{"id": "s1", "ref": json.Number("8")}},
		"layout": []any{
			map[string]any{"blockType": "quote", "by": json.Number("7")},
			map[string]any{"blockType": "unknown", "by": json.Number("999")},
		},
		"title": "T",
	}

	// Act
	got, err := r.Remap(testContext(), data, postFields, LookupStrict)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(1), got["author"])
	assert.Equal(t, []any{int64(10), int64(11)}, got["tags"])
	assert.Equal(t, map[string]any{"relationTo": "pages", "value": "local-page"}, got["related"])
	assert.Equal(t, []any{
		map[string]any{"relationTo": "posts", "value": int64(3)},
		map[string]any{"relationTo": "pages", "value": "local-page"},
	}, got["links"])
	assert.Equal(t, int64(20), got["cover"])
	assert.Equal(t, map[string]any{"image": int64(20), "description": "d"}, got["meta"])
	assert.Equal(t, []any{map[string]any{"id": "s1", "ref": int64(2)}}, got["sections"])
	assert.Equal(t, []any{
		map[string]any{"blockType": "quote", "by": int64(1)},
		map[string]any{"blockType": "unknown", "by": json.Number("999")},
	}, got["layout"])
	assert.Equal(t, "T", got["title"])

	// input untouched
	assert.Equal(t, json.Number("7"), data["author"])
	assert.Equal(t, json.Number("8"), data["sections"].([]any)[0].(map[string]any)["ref"])
}

func TestRemap_NonReferencesPassThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// no lookup is expected for values that are not references
	mappings := mock.NewMockMappingStore(ctrl)
	r := NewRemapper(mappings, logger.Nop())

	data := models.Document{
		"author":  nil,
		"related": "not-an-envelope",
		"tags":    []any{nil, true},
		"cover":   map[string]any{"filename": "no id"},
	}

	got, err := r.Remap(testContext(), data, postFields, LookupStrict)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

// ── lookup modes ────────────────────────────────────────────────────────────

func TestRemap_StrictMiss(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mappings := mock.NewMockMappingStore(ctrl)
	stubLookups(mappings, knownIDs)
	r := NewRemapper(mappings, logger.Nop())

	_, err := r.Remap(testContext(), models.Document{
		"sections": []any{map[string]any{"ref": json.Number("99")}},
	}, postFields, LookupStrict)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingMapping)

	var missing *MissingMappingError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "authors", missing.Collection)
	assert.Equal(t, json.Number("99"), missing.RemoteID)
	assert.Equal(t, "sections[0].ref", missing.Path)
}

func TestRemap_StrictMissPolymorphic(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mappings := mock.NewMockMappingStore(ctrl)
	stubLookups(mappings, knownIDs)
	r := NewRemapper(mappings, logger.Nop())

	_, err := r.Remap(testContext(), models.Document{
		"related": map[string]any{"relationTo": "pages", "value": "missing"},
	}, postFields, LookupStrict)

	var missing *MissingMappingError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "pages", missing.Collection)
}

func TestRemap_PermissiveMissKeepsValue(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mappings := mock.NewMockMappingStore(ctrl)
	stubLookups(mappings, knownIDs)
	r := NewRemapper(mappings, logger.Nop())

	data := models.Document{
		"author": json.Number("99"),
		"tags":   []any{"a", "zzz"},
		"cover":  map[string]any{"id": json.Number("404")},
	}

	got, err := r.Remap(testContext(), data, postFields, LookupPermissive)
	require.NoError(t, err)
	assert.Equal(t, json.Number("99"), got["author"])
	assert.Equal(t, []any{int64(10), "zzz"}, got["tags"])
	assert.Equal(t, map[string]any{"id": json.Number("404")}, got["cover"])
}

func TestRemap_LookupError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mappings := mock.NewMockMappingStore(ctrl)
	mappings.EXPECT().Lookup(gomock.Any(), "authors", json.Number("7")).Return(nil, false, errors.New("db down"))
	r := NewRemapper(mappings, logger.Nop())

	_, err := r.Remap(testContext(), models.Document{"author": json.Number("7")}, postFields, LookupPermissive)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMissingMapping)
}

func TestRemap_Nil(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	r := NewRemapper(mock.NewMockMappingStore(ctrl), logger.Nop())
	got, err := r.Remap(testContext(), nil, postFields, LookupStrict)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLookupMode_String(t *testing.T) {
	assert.Equal(t, "strict", LookupStrict.String())
	assert.Equal(t, "permissive", LookupPermissive.String())
}

func TestMissingMappingError_Message(t *testing.T) {
	err := &MissingMappingError{Collection: "authors", RemoteID: json.Number("7")}
	assert.Equal(t, "missing id mapping: authors/7", err.Error())

	err.Path = "author"
	assert.Equal(t, "missing id mapping: authors/7 (at author)", err.Error())
}
