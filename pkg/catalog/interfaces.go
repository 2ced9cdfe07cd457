package catalog

import (
	"context"
	"time"
)

// ObjectLister pages through a bucket and yields every object whose key ends
// in MediaExtension (case-insensitively). Implementations must follow the
// storage service's pagination transparently and hold at most one page in
// memory; fn is invoked once per matching object in listing order. An error
// returned by fn aborts the listing and is returned unchanged.
type ObjectLister interface {
	ListVideos(ctx context.Context, prefix string, fn func(ObjectInfo) error) error

	// PublicURL builds the deterministic public address for a key. Pure
	// string formatting; no signing, no expiry.
	PublicURL(key string) string
}

// MediaStore is the full object-store surface used by the HTTP layer: the
// listing capability of the ingestion path plus presigned playback URLs and
// the content-type repair sweep.
type MediaStore interface {
	ObjectLister

	PresignGetURL(ctx context.Context, key string, expires time.Duration) (string, error)
	FixContentTypes(ctx context.Context, prefix string) (*ContentTypeFixSummary, error)
}

// VideoRepository persists video rows in per-collection destination tables.
// Table names must already have passed ResolveTableName; implementations
// re-validate before interpolating them into schema statements.
type VideoRepository interface {
	// EnsureTable creates the destination table and its lookup indexes if
	// absent. Safe to call on every ingestion run.
	EnsureTable(ctx context.Context, table string) error

	// Upsert writes one row keyed by storage key, overwriting only the
	// mutable columns on conflict.
	Upsert(ctx context.Context, table string, rec *VideoRecord) error

	// List returns the catalog projection of a destination table.
	List(ctx context.Context, table string) ([]VideoInfo, error)
}
