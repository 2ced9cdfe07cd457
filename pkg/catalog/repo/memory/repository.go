// Package memory implements catalog.VideoRepository with in-memory tables
// for tests and local development.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/helloauslan/auslan-server/pkg/catalog"
)

// Repository implements catalog.VideoRepository using in-memory maps. It
// mirrors the conflict semantics of the PostgreSQL repository: one row per
// storage key, mutable fields overwritten on re-ingest, id and bucket and
// created_at kept from first sight.
type Repository struct {
	mu     sync.RWMutex
	tables map[string]map[string]*catalog.VideoRecord
}

// New creates a new in-memory repository.
func New() *Repository {
	return &Repository{
		tables: make(map[string]map[string]*catalog.VideoRecord),
	}
}

// EnsureTable creates the table if absent. Idempotent.
func (r *Repository) EnsureTable(ctx context.Context, table string) error {
	if !catalog.IsValidTableName(table) {
		return fmt.Errorf("%w: %q", catalog.ErrInvalidTableName, table)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tables[table]; !ok {
		r.tables[table] = make(map[string]*catalog.VideoRecord)
	}
	return nil
}

// Upsert writes one row keyed by storage key.
func (r *Repository) Upsert(ctx context.Context, table string, rec *catalog.VideoRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, ok := r.tables[table]
	if !ok {
		return catalog.ErrTableNotFound
	}

	now := time.Now().UTC()
	if existing, ok := rows[rec.Key]; ok {
		existing.Filename = rec.Filename
		existing.URL = rec.URL
		existing.SizeBytes = rec.SizeBytes
		existing.ETag = rec.ETag
		existing.LastModified = rec.LastModified
		existing.Collection = rec.Collection
		existing.UpdatedAt = now
		return nil
	}

	// Copy to avoid external modifications.
	recCopy := *rec
	recCopy.CreatedAt = now
	recCopy.UpdatedAt = now
	rows[rec.Key] = &recCopy
	return nil
}

// List returns the catalog projection of a table ordered by filename.
func (r *Repository) List(ctx context.Context, table string) ([]catalog.VideoInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows, ok := r.tables[table]
	if !ok {
		return nil, catalog.ErrTableNotFound
	}

	videos := make([]catalog.VideoInfo, 0, len(rows))
	for _, rec := range rows {
		videos = append(videos, catalog.VideoInfo{
			ID:       rec.ID,
			Filename: rec.Filename,
			Key:      rec.Key,
		})
	}
	sort.Slice(videos, func(i, j int) bool { return videos[i].Filename < videos[j].Filename })
	return videos, nil
}

// Get returns a copy of the stored record for one key.
func (r *Repository) Get(ctx context.Context, table, key string) (*catalog.VideoRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows, ok := r.tables[table]
	if !ok {
		return nil, catalog.ErrTableNotFound
	}
	rec, ok := rows[key]
	if !ok {
		return nil, catalog.ErrObjectNotFound
	}
	recCopy := *rec
	return &recCopy, nil
}

// HasTable reports whether a table has been created.
func (r *Repository) HasTable(table string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tables[table]
	return ok
}

// RowCount returns the number of rows in a table.
func (r *Repository) RowCount(table string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tables[table])
}
