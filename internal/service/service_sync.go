// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/content-sync/internal/adapter"
	"github.com/MKhiriev/content-sync/internal/config"
	"github.com/MKhiriev/content-sync/internal/fields"
	"github.com/MKhiriev/content-sync/internal/logger"
	"github.com/MKhiriev/content-sync/internal/store"
	"github.com/MKhiriev/content-sync/internal/utils"
	"github.com/MKhiriev/content-sync/models"
)

type syncService struct {
	remote   adapter.RemoteReader
	mappings store.MappingStore
	content  store.ContentStore

	remapper  Remapper
	writer    LocalWriter
	preflight PreflightValidator

	local          map[string]models.CollectionMetadata
	collections    []string
	priority       []string
	authCollection string
	bootstrapUser  string

	runIDs *utils.RunIDGenerator
	now    func() time.Time

	logger *logger.Logger
}

// NewSyncService wires the sync engine. local describes the collections of
// the local store; cfg supplies the collection selection, the bootstrap auth
// user and the collection it belongs to.
func NewSyncService(
	remote adapter.RemoteReader,
	mappings store.MappingStore,
	content store.ContentStore,
	local map[string]models.CollectionMetadata,
	cfg config.StructuredConfig,
	logger *logger.Logger,
) SyncService {
	return &syncService{
		remote:         remote,
		mappings:       mappings,
		content:        content,
		remapper:       NewRemapper(mappings, logger),
		writer:         NewLocalWriter(content, remote, logger),
		preflight:      NewPreflightValidator(local, content, remote, logger),
		local:          local,
		collections:    cfg.Sync.Collections,
		priority:       cfg.Sync.PriorityCollections,
		authCollection: cfg.Remote.APIKeyCollection,
		bootstrapUser:  cfg.Sync.LocalAuthUserData,
		runIDs:         utils.NewRunIDGenerator(),
		now:            time.Now,
		logger:         logger,
	}
}

// syncRun is the state of one Run.
type syncRun struct {
	// preserved holds the remote ids of auth documents that already existed
	// locally, per collection. They are never written.
	preserved idSets
	// created holds the local ids written by the required pass, per
	// collection. A local auth document with one of these ids did not exist
	// before the run.
	created idSets
	report  models.SyncReport
}

// idSets is a set of canonical ids per collection.
type idSets map[string]map[string]struct{}

func (s idSets) has(collection string, id any) bool {
	_, ok := s[collection][fields.StringifyID(id)]
	return ok
}

func (s idSets) add(collection string, id any) {
	if s[collection] == nil {
		s[collection] = make(map[string]struct{})
	}
	s[collection][fields.StringifyID(id)] = struct{}{}
}

// Run implements [SyncService].
func (s *syncService) Run(ctx context.Context) (report models.SyncReport, err error) {
	runID := s.runIDs.Generate()
	log := s.logger.WithRunID(runID)
	ctx = log.WithContext(utils.WithRunID(ctx, runID))

	run := &syncRun{
		preserved: make(idSets),
		created:   make(idSets),
		report:    models.SyncReport{RunID: runID, StartedAt: s.now().UTC()},
	}

	collections := OrderCollections(s.collections, s.priority, log)
	log.Info().Strs("collections", collections).Msg("starting sync run")

	if err = s.mappings.Open(ctx); err != nil {
		err = fmt.Errorf("open sync state store: %w", err)
	}
	// the mapping table never outlives the run
	defer func() {
		if closeErr := s.mappings.Close(context.WithoutCancel(ctx)); closeErr != nil {
			log.Err(closeErr).Msg("failed to tear down sync state store")
			err = errors.Join(err, fmt.Errorf("close sync state store: %w", closeErr))
		}
	}()
	if err != nil {
		return run.report, err
	}

	metas, err := s.preflight.Validate(ctx, collections)
	if err != nil {
		return run.report, fmt.Errorf("preflight: %w", err)
	}

	if err = s.bootstrap(ctx); err != nil {
		return run.report, err
	}

	for _, meta := range metas {
		if err = s.requiredPass(ctx, run, meta); err != nil {
			return run.report, fmt.Errorf("required pass of %s: %w", meta.Slug, err)
		}
	}
	for _, meta := range metas {
		if err = s.optionalPass(ctx, run, meta); err != nil {
			return run.report, fmt.Errorf("optional pass of %s: %w", meta.Slug, err)
		}
	}

	run.report.FinishedAt = s.now().UTC()
	log.Info().
		Dur("elapsed", run.report.FinishedAt.Sub(run.report.StartedAt)).
		Int("collections", len(run.report.Collections)).
		Msg("sync run finished")

	return run.report, nil
}

func (s *syncService) bootstrap(ctx context.Context) error {
	if s.bootstrapUser == "" {
		return nil
	}
	meta, ok := s.local[s.authCollection]
	if !ok {
		return fmt.Errorf("bootstrap auth user: %w: %s", ErrUnknownCollections, s.authCollection)
	}
	_, err := SeedAuthUser(ctx, s.content, meta, s.bootstrapUser)
	return err
}

// eachDocument pages through the remote documents of collection in id order.
func (s *syncService) eachDocument(ctx context.Context, collection string, fn func(doc models.Document) error) error {
	for page := 1; ; page++ {
		result, err := s.remote.ListDocuments(ctx, collection, page)
		if err != nil {
			return fmt.Errorf("list page %d: %w", page, err)
		}
		for _, doc := range result.Docs {
			if err = fn(doc); err != nil {
				return err
			}
		}
		if !result.HasNextPage || len(result.Docs) == 0 {
			return nil
		}
	}
}

// requiredPass creates the local twin of every remote document of meta from
// its required half and records the id mapping.
func (s *syncService) requiredPass(ctx context.Context, run *syncRun, meta models.CollectionMetadata) error {
	log := logger.FromContext(ctx).With().Str("collection", meta.Slug).Str("pass", "required").Logger()
	stats := run.report.Collection(meta.Slug)

	err := s.eachDocument(ctx, meta.Slug, func(doc models.Document) error {
		remoteID, ok := doc.ID()
		if !ok {
			return fmt.Errorf("%w: remote %s document", ErrMissingDocumentID, meta.Slug)
		}

		if meta.Auth {
			existing, found, err := s.writer.FindExisting(ctx, meta.Slug, remoteID)
			if err != nil {
				return err
			}
			localID, _ := existing.ID()
			if localID == nil {
				localID = remoteID
			}
			if found && !run.created.has(meta.Slug, localID) {
				if err = s.mappings.Record(ctx, meta.Slug, remoteID, localID); err != nil {
					return err
				}
				run.preserved.add(meta.Slug, remoteID)
				stats.PreservedAuth++
				log.Debug().Str("remote_id", fields.StringifyID(remoteID)).Msg("auth document exists locally, keeping it")
				return nil
			}
		}

		split := fields.SplitForPasses(doc, meta)
		required, err := s.remapper.Remap(ctx, split.Required, meta.Fields, LookupStrict)
		if err != nil {
			return fmt.Errorf("remap %s/%s: %w", meta.Slug, fields.StringifyID(remoteID), err)
		}

		localID, fetched, err := s.writer.Create(ctx, meta, required, doc)
		if err != nil {
			return err
		}
		if err = s.mappings.Record(ctx, meta.Slug, remoteID, localID); err != nil {
			return err
		}
		run.created.add(meta.Slug, localID)

		stats.Created++
		if fetched {
			stats.FilesFetched++
		}
		log.Debug().
			Str("remote_id", fields.StringifyID(remoteID)).
			Str("local_id", fields.StringifyID(localID)).
			Msg("document created")
		return nil
	})
	if err != nil {
		return err
	}

	log.Info().
		Int("created", stats.Created).
		Int("preserved_auth", stats.PreservedAuth).
		Int("files_fetched", stats.FilesFetched).
		Msg("required pass done")
	return nil
}

// optionalPass merges the optional half of every remote document of meta
// onto its local twin and replays the latest version.
func (s *syncService) optionalPass(ctx context.Context, run *syncRun, meta models.CollectionMetadata) error {
	log := logger.FromContext(ctx).With().Str("collection", meta.Slug).Str("pass", "optional").Logger()
	stats := run.report.Collection(meta.Slug)

	err := s.eachDocument(ctx, meta.Slug, func(doc models.Document) error {
		remoteID, ok := doc.ID()
		if !ok {
			return fmt.Errorf("%w: remote %s document", ErrMissingDocumentID, meta.Slug)
		}
		if run.preserved.has(meta.Slug, remoteID) {
			stats.Skipped++
			return nil
		}

		split := fields.SplitForPasses(doc, meta)
		if len(split.Optional) == 0 && !meta.Versions {
			stats.Skipped++
			return nil
		}

		localID, found, err := s.mappings.Lookup(ctx, meta.Slug, remoteID)
		if err != nil {
			return err
		}
		if !found {
			return &MissingMappingError{Collection: meta.Slug, RemoteID: remoteID}
		}

		if len(split.Optional) > 0 {
			optional, err := s.remapper.Remap(ctx, split.Optional, meta.Fields, LookupPermissive)
			if err != nil {
				return fmt.Errorf("remap %s/%s: %w", meta.Slug, fields.StringifyID(remoteID), err)
			}
			if err = s.writer.Patch(ctx, meta.Slug, localID, optional); err != nil {
				return err
			}
			stats.Updated++
		} else {
			stats.Skipped++
		}

		if meta.Versions {
			replayed, err := s.replayLatestVersion(ctx, meta, remoteID, localID)
			if err != nil {
				return err
			}
			if replayed {
				stats.Versions++
			}
		}

		log.Debug().
			Str("remote_id", fields.StringifyID(remoteID)).
			Str("local_id", fields.StringifyID(localID)).
			Msg("document updated")
		return nil
	})
	if err != nil {
		return err
	}

	log.Info().
		Int("updated", stats.Updated).
		Int("skipped", stats.Skipped).
		Int("versions", stats.Versions).
		Msg("optional pass done")
	return nil
}

// replayLatestVersion copies the latest remote version of remoteID into the
// version history of localID. Only the latest version is mirrored.
func (s *syncService) replayLatestVersion(ctx context.Context, meta models.CollectionMetadata, remoteID, localID any) (bool, error) {
	snapshot, err := s.remote.GetLatestVersion(ctx, meta.Slug, remoteID)
	if err != nil {
		return false, fmt.Errorf("latest version of %s/%s: %w", meta.Slug, fields.StringifyID(remoteID), err)
	}
	if snapshot == nil {
		return false, nil
	}

	payload, ok := snapshot.Version.(map[string]any)
	if !ok {
		return false, fmt.Errorf("%w: %s/%s: version is not an object", ErrInvalidVersion, meta.Slug, fields.StringifyID(remoteID))
	}

	createdAt, ok := parseTimestamp(snapshot.CreatedAt)
	if !ok {
		return false, fmt.Errorf("%w: %s/%s: missing createdAt", ErrInvalidVersion, meta.Slug, fields.StringifyID(remoteID))
	}
	updatedAt, ok := parseTimestamp(snapshot.UpdatedAt)
	if !ok {
		updatedAt = createdAt
	}

	data, err := s.remapper.Remap(ctx, fields.Strip(payload, meta), meta.Fields, LookupPermissive)
	if err != nil {
		return false, fmt.Errorf("remap version of %s/%s: %w", meta.Slug, fields.StringifyID(remoteID), err)
	}
	data["id"] = localID

	locale, _ := snapshot.PublishedLocale.(string)
	err = s.writer.CreateVersion(ctx, models.LocalVersion{
		Collection:      meta.Slug,
		Parent:          localID,
		Data:            data,
		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
		Autosave:        flag(snapshot.Autosave),
		PublishedLocale: locale,
		Snapshot:        flag(snapshot.Snapshot),
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func parseTimestamp(v any) (time.Time, bool) {
	s, ok := v.(string)
	if !ok || s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// flag reads a loosely typed boolean; anything but true is false.
func flag(v any) bool {
	b, _ := v.(bool)
	return b
}
