// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/MKhiriev/content-sync/internal/adapter"
	"github.com/MKhiriev/content-sync/internal/config"
	"github.com/MKhiriev/content-sync/internal/fields"
	"github.com/MKhiriev/content-sync/internal/logger"
	"github.com/MKhiriev/content-sync/internal/store"
	"github.com/MKhiriev/content-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ─────────────────────────────────────────────────────────────────────────────
// Fakes
// ─────────────────────────────────────────────────────────────────────────────

type remoteFile struct {
	contentType string
	body        string
}

// fakeRemote serves the remote REST API from memory.
type fakeRemote struct {
	docs map[string][]map[string]any
	// versions is keyed by collection, then by parent id.
	versions map[string]map[string]map[string]any
	files    map[string]remoteFile
	// collections is served on /api/sync; nil answers 404.
	collections []models.RemoteCollection
	// fail answers listings of a collection with the given status.
	fail map[string]int

	mu       sync.Mutex
	requests []string
}

func (f *fakeRemote) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r.URL.Path)
	f.mu.Unlock()

	if r.Header.Get("Authorization") != "users API-Key secret" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case r.URL.Path == "/api/sync":
		if f.collections == nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeJSON(w, models.SyncMetadataResponse{Collections: f.collections})

	case len(parts) == 3 && parts[2] == "versions":
		parent := r.URL.Query().Get("where[parent][equals]")
		docs := []any{}
		if v, ok := f.versions[parts[1]][parent]; ok {
			docs = append(docs, v)
		}
		writeJSON(w, map[string]any{"docs": docs, "hasNextPage": false, "totalDocs": len(docs)})

	case len(parts) == 2:
		if code, ok := f.fail[parts[1]]; ok {
			w.WriteHeader(code)
			return
		}
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		all := f.docs[parts[1]]
		from := min((page-1)*limit, len(all))
		to := min(from+limit, len(all))
		writeJSON(w, map[string]any{
			"docs":        all[from:to],
			"hasNextPage": to < len(all),
			"page":        page,
			"limit":       limit,
			"totalDocs":   len(all),
		})

	default:
		file, ok := f.files[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", file.contentType)
		_, _ = w.Write([]byte(file.body))
	}
}

func (f *fakeRemote) requestCount(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, path := range f.requests {
		if strings.HasPrefix(path, prefix) {
			n++
		}
	}
	return n
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// memoryContent is an in-memory local content store. Generated ids start at
// 101 so they never collide with remote ids used in the tests.
type memoryContent struct {
	mu       sync.Mutex
	docs     map[string][]models.Document
	versions []models.LocalVersion
	files    map[string]models.UploadFile
	nextID   int64
	// created logs "collection/id" in creation order.
	created []string
}

var _ store.ContentStore = (*memoryContent)(nil)

func newMemoryContent() *memoryContent {
	return &memoryContent{
		docs:   make(map[string][]models.Document),
		files:  make(map[string]models.UploadFile),
		nextID: 100,
	}
}

func (m *memoryContent) seed(collection string, doc models.Document) {
	m.docs[collection] = append(m.docs[collection], doc)
}

func (m *memoryContent) get(collection string, id any) models.Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, doc := range m.docs[collection] {
		if fields.SameID(doc["id"], id) {
			return doc
		}
	}
	return nil
}

func (m *memoryContent) FindByID(_ context.Context, collection string, id any) (models.Document, error) {
	if doc := m.get(collection, id); doc != nil {
		return doc.Clone(), nil
	}
	return nil, store.ErrDocumentNotFound
}

func (m *memoryContent) Create(_ context.Context, collection string, data models.Document) (models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc := data.Clone()
	if id, ok := doc.ID(); ok && fields.IsNumericID(id) {
		doc["id"] = fields.CoerceID(fields.StringifyID(id), id)
	} else {
		m.nextID++
		doc["id"] = m.nextID
	}
	m.docs[collection] = append(m.docs[collection], doc)
	m.created = append(m.created, collection+"/"+fields.StringifyID(doc["id"]))
	return doc.Clone(), nil
}

func (m *memoryContent) UpdateOne(_ context.Context, collection string, id any, data models.Document) (models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, doc := range m.docs[collection] {
		if fields.SameID(doc["id"], id) {
			updated := data.Clone()
			updated["id"] = doc["id"]
			m.docs[collection][i] = updated
			return updated.Clone(), nil
		}
	}
	return nil, store.ErrDocumentNotFound
}

func (m *memoryContent) CreateVersion(_ context.Context, version models.LocalVersion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.versions = append(m.versions, version)
	return nil
}

func (m *memoryContent) HasDocuments(_ context.Context, collection string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs[collection]) > 0, nil
}

func (m *memoryContent) CreateDocument(ctx context.Context, meta models.CollectionMetadata, data models.Document) (models.Document, error) {
	for _, f := range meta.Fields {
		if f.Required && f.Name != "" && data[f.Name] == nil {
			return nil, fmt.Errorf("%w in %s: %s", store.ErrMissingRequiredField, meta.Slug, f.Name)
		}
	}
	return m.Create(ctx, meta.Slug, data)
}

func (m *memoryContent) CreateWithFile(ctx context.Context, meta models.CollectionMetadata, data models.Document, file models.UploadFile) (models.Document, error) {
	m.mu.Lock()
	m.files[file.Name] = file
	m.mu.Unlock()

	doc := data.Clone()
	doc["filename"] = file.Name
	doc["mimeType"] = file.MimeType
	doc["filesize"] = file.Size
	doc["url"] = store.UploadURL(meta.Slug, file.Name)
	return m.CreateDocument(ctx, meta, doc)
}

func (m *memoryContent) ListFiles(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.files))
	for name := range m.files {
		names = append(names, name)
	}
	return names, nil
}

// memoryMappings is an in-memory mapping store that remembers its lifecycle.
type memoryMappings struct {
	mu       sync.Mutex
	ids      map[string]any
	opened   bool
	closed   bool
	closeErr error
}

var _ store.MappingStore = (*memoryMappings)(nil)

func newMemoryMappings() *memoryMappings {
	return &memoryMappings{ids: make(map[string]any)}
}

func mappingKey(collection string, remoteID any) string {
	return collection + "/" + fields.StringifyID(remoteID)
}

func (m *memoryMappings) Open(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opened = true
	return nil
}

func (m *memoryMappings) Record(_ context.Context, collection string, remoteID, localID any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.opened || m.closed {
		return store.ErrMappingStoreClosed
	}
	m.ids[mappingKey(collection, remoteID)] = localID
	return nil
}

func (m *memoryMappings) Lookup(_ context.Context, collection string, remoteID any) (any, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.opened || m.closed {
		return nil, false, store.ErrMappingStoreClosed
	}
	id, ok := m.ids[mappingKey(collection, remoteID)]
	return id, ok, nil
}

func (m *memoryMappings) Close(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return m.closeErr
}

// ─────────────────────────────────────────────────────────────────────────────
// Fixtures
// ─────────────────────────────────────────────────────────────────────────────

var syncLocal = map[string]models.CollectionMetadata{
	"users": {Slug: "users", Auth: true, Fields: []models.Field{
		{Type: "email", Name: "email", Required: true},
		{Type: "text", Name: "name"},
	}},
	"authors": {Slug: "authors", Fields: []models.Field{
		{Type: "text", Name: "name", Required: true},
		{Type: "relationship", Name: "bestPost", RelationTo: models.Single("posts")},
	}},
	"media": {Slug: "media", Upload: true, Fields: []models.Field{
		{Type: "text", Name: "alt", Required: true},
	}},
	"posts": {Slug: "posts", Versions: true, Fields: []models.Field{
		{Type: "text", Name: "title", Required: true},
		{Type: "relationship", Name: "author", RelationTo: models.Single("authors"), Required: true},
		{Type: "upload", Name: "cover", RelationTo: models.Single("media")},
		{Type: "richText", Name: "body"},
	}},
}

func blogRemote() *fakeRemote {
	return &fakeRemote{
		docs: map[string][]map[string]any{
			"authors": {
				{"id": 7, "name": "Ann", "bestPost": 42},
				{"id": 8, "name": "Bob"},
			},
			"media": {
				{"id": 5, "alt": "logo", "filename": "logo.png", "mimeType": "image/png", "filesize": 3, "url": "/api/media/file/logo.png"},
			},
			"posts": {
				{"id": 42, "title": "Hello", "author": 7, "cover": 5, "body": "first"},
			},
		},
		versions: map[string]map[string]map[string]any{
			"posts": {
				"42": {
					"id":        "v1",
					"parent":    42,
					"version":   map[string]any{"id": 42, "title": "Hello v2", "author": 7, "cover": 5},
					"createdAt": "2024-01-02T03:04:05.000Z",
					"updatedAt": "2024-01-02T04:00:00.000Z",
					"autosave":  true,
					"latest":    true,
				},
			},
		},
		files: map[string]remoteFile{
			"/api/media/file/logo.png": {contentType: "image/png", body: "png"},
		},
	}
}

func newTestSyncService(t *testing.T, remote *fakeRemote, content *memoryContent, mappings *memoryMappings, syncCfg config.Sync) SyncService {
	t.Helper()

	srv := httptest.NewServer(remote)
	t.Cleanup(srv.Close)

	cfg := config.StructuredConfig{
		Remote: config.Remote{URL: srv.URL, APIKey: "secret", APIKeyCollection: "users"},
		Sync:   syncCfg,
	}
	reader, err := adapter.NewHTTPRemoteReader(cfg.Remote, syncCfg.Limit, logger.Nop())
	require.NoError(t, err)

	return NewSyncService(reader, mappings, content, syncLocal, cfg, logger.Nop())
}

func collectionReport(t *testing.T, report models.SyncReport, slug string) models.CollectionReport {
	t.Helper()
	for _, c := range report.Collections {
		if c.Slug == slug {
			return c
		}
	}
	t.Fatalf("no report for collection %s", slug)
	return models.CollectionReport{}
}

// ─────────────────────────────────────────────────────────────────────────────
// Scenarios
// ─────────────────────────────────────────────────────────────────────────────

func TestSyncService_Run_RemapsAcrossCollections(t *testing.T) {
	remote := blogRemote()
	content := newMemoryContent()
	mappings := newMemoryMappings()

	svc := newTestSyncService(t, remote, content, mappings, config.Sync{
		Collections:         []string{"posts", "authors", "media"},
		PriorityCollections: []string{"authors", "media"},
		Limit:               1,
	})

	report, err := svc.Run(context.Background())
	require.NoError(t, err)

	// required pass in priority order, ids assigned locally
	assert.Equal(t, []string{"authors/101", "authors/102", "media/103", "posts/104"}, content.created)

	post := content.get("posts", int64(104))
	require.NotNil(t, post)
	assert.Equal(t, "Hello", post["title"])
	assert.Equal(t, int64(101), post["author"])
	assert.Equal(t, int64(103), post["cover"])
	assert.Equal(t, "first", post["body"])

	// forward reference resolved in the optional pass
	ann := content.get("authors", int64(101))
	assert.Equal(t, int64(104), ann["bestPost"])
	assert.Equal(t, "Ann", ann["name"])

	// file fetched once and stored under its name
	media := content.get("media", int64(103))
	assert.Equal(t, "logo", media["alt"])
	assert.Equal(t, "/api/media/file/logo.png", media["url"])
	require.Contains(t, content.files, "logo.png")
	assert.Equal(t, "image/png", content.files["logo.png"].MimeType)
	assert.Equal(t, int64(3), content.files["logo.png"].Size)
	assert.Equal(t, 1, remote.requestCount("/api/media/file/"))

	// latest version replayed onto the local parent
	require.Len(t, content.versions, 1)
	version := content.versions[0]
	assert.Equal(t, "posts", version.Collection)
	assert.Equal(t, int64(104), version.Parent)
	assert.Equal(t, models.Document{"id": int64(104), "title": "Hello v2", "author": int64(101), "cover": int64(103)}, version.Data)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), version.CreatedAt)
	assert.Equal(t, time.Date(2024, 1, 2, 4, 0, 0, 0, time.UTC), version.UpdatedAt)
	assert.True(t, version.Autosave)
	assert.False(t, version.Snapshot)

	// report
	assert.NotEmpty(t, report.RunID)
	assert.False(t, report.FinishedAt.Before(report.StartedAt))
	assert.Equal(t, models.CollectionReport{Slug: "authors", Created: 2, Updated: 1, Skipped: 1}, collectionReport(t, report, "authors"))
	assert.Equal(t, models.CollectionReport{Slug: "media", Created: 1, Skipped: 1, FilesFetched: 1}, collectionReport(t, report, "media"))
	assert.Equal(t, models.CollectionReport{Slug: "posts", Created: 1, Updated: 1, Versions: 1}, collectionReport(t, report, "posts"))

	// mapping table lives only for the run
	assert.True(t, mappings.opened)
	assert.True(t, mappings.closed)
}

func TestSyncService_Run_PreservesExistingAuthDocuments(t *testing.T) {
	remote := &fakeRemote{docs: map[string][]map[string]any{
		"users": {
			{"id": 1, "email": "remote@example.com", "name": "Remote", "sessions": []any{map[string]any{"id": "s"}}},
			{"id": 2, "email": "new@example.com", "name": "New", "sessions": []any{map[string]any{"id": "t"}}},
		},
		"posts": {
			{"id": 42, "title": "Hi", "author": 7},
		},
		"authors": {
			{"id": 7, "name": "Ann"},
		},
	}}
	content := newMemoryContent()
	content.seed("users", models.Document{"id": int64(1), "email": "local@example.com", "name": "Local"})

	svc := newTestSyncService(t, remote, content, newMemoryMappings(), config.Sync{
		Collections: []string{"users"},
		Limit:       10,
	})

	report, err := svc.Run(context.Background())
	require.NoError(t, err)

	kept := content.get("users", int64(1))
	assert.Equal(t, "local@example.com", kept["email"])
	assert.Equal(t, "Local", kept["name"])

	created := content.get("users", int64(101))
	require.NotNil(t, created)
	assert.Equal(t, "new@example.com", created["email"])
	assert.Equal(t, "New", created["name"])
	assert.NotContains(t, created, "sessions")

	assert.Equal(t, models.CollectionReport{Slug: "users", Created: 1, PreservedAuth: 1, Updated: 1, Skipped: 1}, collectionReport(t, report, "users"))
}

func TestSyncService_Run_AuthIDCreatedThisRunIsNotPreserved(t *testing.T) {
	remote := &fakeRemote{docs: map[string][]map[string]any{
		"authors": {
			{"id": 10, "name": "Ann"},
			{"id": 11, "name": "Bob"},
		},
		"users": {
			{"id": 1, "email": "one@example.com", "name": "One"},
			{"id": 2, "email": "two@example.com", "name": "Two"},
			{"id": 4, "email": "four@example.com", "name": "Four"},
		},
	}}
	content := newMemoryContent()
	content.nextID = 1
	content.seed("users", models.Document{"id": int64(1), "email": "local@example.com", "name": "Local"})

	svc := newTestSyncService(t, remote, content, newMemoryMappings(), config.Sync{
		Collections: []string{"authors", "users"},
		Limit:       10,
	})

	report, err := svc.Run(context.Background())
	require.NoError(t, err)

	// remote user 2 takes local id 4, which remote user 4 must not claim
	assert.Equal(t, []string{"authors/2", "authors/3", "users/4", "users/5"}, content.created)
	assert.Equal(t, "local@example.com", content.get("users", int64(1))["email"])
	assert.Equal(t, "two@example.com", content.get("users", int64(4))["email"])
	assert.Equal(t, "four@example.com", content.get("users", int64(5))["email"])

	got := collectionReport(t, report, "users")
	assert.Equal(t, 2, got.Created)
	assert.Equal(t, 1, got.PreservedAuth)
}

func TestSyncService_Run_ReusesStoredUploadFiles(t *testing.T) {
	remote := blogRemote()
	content := newMemoryContent()
	content.files["logo.png"] = models.UploadFile{Name: "logo.png"}

	svc := newTestSyncService(t, remote, content, newMemoryMappings(), config.Sync{
		Collections: []string{"media"},
		Limit:       10,
	})

	report, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Zero(t, remote.requestCount("/api/media/file/"))
	media := content.get("media", int64(101))
	require.NotNil(t, media)
	assert.Equal(t, "logo.png", media["filename"])
	assert.Equal(t, "/api/media/file/logo.png", media["url"])
	assert.Equal(t, json.Number("3"), media["filesize"])
	assert.Equal(t, 0, collectionReport(t, report, "media").FilesFetched)
}

func TestSyncService_Run_BootstrapsAuthUser(t *testing.T) {
	remote := blogRemote()
	content := newMemoryContent()

	svc := newTestSyncService(t, remote, content, newMemoryMappings(), config.Sync{
		Collections:       []string{"authors"},
		Limit:             10,
		LocalAuthUserData: `{"email":"admin@example.com","name":"Admin"}`,
	})

	_, err := svc.Run(context.Background())
	require.NoError(t, err)

	require.NotEmpty(t, content.created)
	assert.Equal(t, "users/101", content.created[0])
	assert.Equal(t, "admin@example.com", content.get("users", int64(101))["email"])
}

func TestSyncService_Run_UploadCapabilityFromRemote(t *testing.T) {
	remote := blogRemote()
	remote.collections = []models.RemoteCollection{{Slug: "authors", Upload: true}}

	svc := newTestSyncService(t, remote, newMemoryContent(), newMemoryMappings(), config.Sync{
		Collections: []string{"authors"},
		Limit:       10,
	})

	_, err := svc.Run(context.Background())

	assert.ErrorIs(t, err, ErrUploadMismatch)
	assert.Zero(t, remote.requestCount("/api/authors"))
}

// ─────────────────────────────────────────────────────────────────────────────
// Failures
// ─────────────────────────────────────────────────────────────────────────────

func TestSyncService_Run_RejectsNonEmptyTargetsBeforeFetching(t *testing.T) {
	remote := blogRemote()
	content := newMemoryContent()
	content.seed("authors", models.Document{"id": int64(1), "name": "Existing"})
	mappings := newMemoryMappings()

	svc := newTestSyncService(t, remote, content, mappings, config.Sync{
		Collections:       []string{"authors", "posts"},
		Limit:             10,
		LocalAuthUserData: `{"email":"admin@example.com"}`,
	})

	_, err := svc.Run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCollectionsNotEmpty)
	assert.Zero(t, remote.requestCount("/"))
	assert.Empty(t, content.docs["users"], "bootstrap must not run after a failed preflight")
	assert.True(t, mappings.closed)
}

func TestSyncService_Run_UnknownCollection(t *testing.T) {
	remote := blogRemote()

	svc := newTestSyncService(t, remote, newMemoryContent(), newMemoryMappings(), config.Sync{
		Collections: []string{"authors", "comments"},
	})

	_, err := svc.Run(context.Background())

	assert.ErrorIs(t, err, ErrUnknownCollections)
	assert.Zero(t, remote.requestCount("/"))
}

func TestSyncService_Run_StrictMissingReference(t *testing.T) {
	remote := blogRemote()
	// posts before authors: the required author cannot be resolved
	svc := newTestSyncService(t, remote, newMemoryContent(), newMemoryMappings(), config.Sync{
		Collections: []string{"posts", "authors"},
		Limit:       10,
	})

	_, err := svc.Run(context.Background())

	require.Error(t, err)
	var missing *MissingMappingError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "authors", missing.Collection)
	assert.Equal(t, "author", missing.Path)
}

func TestSyncService_Run_TearsDownOnFailure(t *testing.T) {
	remote := blogRemote()
	remote.fail = map[string]int{"posts": http.StatusInternalServerError}
	mappings := newMemoryMappings()

	svc := newTestSyncService(t, remote, newMemoryContent(), mappings, config.Sync{
		Collections: []string{"authors", "posts"},
		Limit:       10,
	})

	_, err := svc.Run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, adapter.ErrInternalServerError)
	assert.True(t, mappings.closed)
}

func TestSyncService_Run_ReportsTeardownError(t *testing.T) {
	dropErr := errors.New("drop table failed")
	mappings := newMemoryMappings()
	mappings.closeErr = dropErr

	svc := newTestSyncService(t, blogRemote(), newMemoryContent(), mappings, config.Sync{
		Collections: []string{"authors", "posts"},
		Limit:       10,
	})

	_, err := svc.Run(context.Background())

	assert.ErrorIs(t, err, dropErr)
}

func TestSyncService_Run_InvalidVersion(t *testing.T) {
	tests := []struct {
		name    string
		version map[string]any
	}{
		{
			name:    "payload is not an object",
			version: map[string]any{"version": "oops", "createdAt": "2024-01-02T03:04:05Z"},
		},
		{
			name:    "missing createdAt",
			version: map[string]any{"version": map[string]any{"title": "x"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remote := blogRemote()
			remote.versions["posts"]["42"] = tt.version

			svc := newTestSyncService(t, remote, newMemoryContent(), newMemoryMappings(), config.Sync{
				Collections: []string{"authors", "media", "posts"},
				Limit:       10,
			})

			_, err := svc.Run(context.Background())
			assert.ErrorIs(t, err, ErrInvalidVersion)
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	got, ok := parseTimestamp("2024-01-02T03:04:05.123+02:00")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 2, 1, 4, 5, 123000000, time.UTC), got)

	for _, v := range []any{nil, "", "yesterday", json.Number("1")} {
		_, ok := parseTimestamp(v)
		assert.False(t, ok)
	}
}

func TestFlag(t *testing.T) {
	assert.True(t, flag(true))
	assert.False(t, flag(nil))
	assert.False(t, flag("true"))
	assert.False(t, flag(false))
}
