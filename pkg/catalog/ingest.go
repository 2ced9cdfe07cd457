package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Ingestor scans a bucket and mirrors its video objects into relational
// rows. A run is synchronous: listing pagination is sequential and each row
// write commits independently, so rows written before a mid-scan failure
// stay committed and counted. Concurrent runs against the same destination
// table are not mutually excluded; the last writer for a key wins.
type Ingestor struct {
	lister ObjectLister
	repo   VideoRepository
	bucket string
	logger *slog.Logger
}

// NewIngestor creates an Ingestor. All collaborators are explicit; the
// ingestor keeps no hidden global state.
func NewIngestor(lister ObjectLister, repo VideoRepository, bucket string, logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{
		lister: lister,
		repo:   repo,
		bucket: bucket,
		logger: logger,
	}
}

// Run performs one ingestion pass over the objects under prefix, writing one
// row per object into the table resolved from collection and prefix.
//
// Only two conditions fail the run outright: an unresolvable table name and
// a failed table creation, since no writes can proceed without a
// destination. Everything else is captured in the summary: per-object write
// failures as "<key>: <message>" entries, and a listing failure as a single
// "S3 error: ..." entry with the counts accumulated up to that point.
func (ing *Ingestor) Run(ctx context.Context, prefix, collection string) (*IngestSummary, error) {
	table, err := ResolveTableName(collection, prefix)
	if err != nil {
		return nil, err
	}
	if err := ing.repo.EnsureTable(ctx, table); err != nil {
		return nil, fmt.Errorf("ensure table %s: %w", table, err)
	}

	summary := &IngestSummary{
		RunID:  uuid.NewString(),
		Bucket: ing.bucket,
		Prefix: prefix,
		Table:  table,
		Errors: []string{},
	}
	logger := ing.logger.With("run_id", summary.RunID, "bucket", ing.bucket, "table", table)
	logger.Info("starting ingest", "prefix", prefix)

	listErr := ing.lister.ListVideos(ctx, prefix, func(obj ObjectInfo) error {
		summary.Scanned++

		id, name := ParseKey(obj.Key)
		rec := &VideoRecord{
			ID:           id,
			Filename:     name,
			Bucket:       ing.bucket,
			Key:          obj.Key,
			URL:          ing.lister.PublicURL(obj.Key),
			SizeBytes:    obj.Size,
			ETag:         obj.ETag,
			LastModified: obj.LastModified,
			Collection:   &table,
		}

		if err := ing.repo.Upsert(ctx, table, rec); err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", obj.Key, err))
			logger.Warn("upsert failed", "key", obj.Key, "err", err)
			return nil
		}
		summary.Upserted++
		return nil
	})
	if listErr != nil {
		// The scan stops here; rows already upserted stand.
		summary.Errors = append(summary.Errors, fmt.Sprintf("S3 error: %v", listErr))
		logger.Error("listing aborted", "err", listErr)
	}

	logger.Info("ingest finished",
		"scanned", summary.Scanned,
		"upserted", summary.Upserted,
		"errors", len(summary.Errors))
	return summary, nil
}
