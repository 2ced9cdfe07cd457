// Package postgres implements catalog.VideoRepository on PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/helloauslan/auslan-server/pkg/catalog"
)

// DBTX is an interface that allows us to use either a database connection or
// a transaction.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements catalog.VideoRepository using PostgreSQL.
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository.
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository from a connection pool.
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("duplicate entry")
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return catalog.ErrTableNotFound
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}
	return fmt.Errorf("database error in %s: %w", operation, err)
}

// EnsureTable creates the destination table and its lookup indexes if they
// do not exist. The statements are idempotent, so every ingestion run may
// call this. The table name is re-checked against the identifier allow-list
// because identifiers cannot be bound as statement parameters.
func (r *Repository) EnsureTable(ctx context.Context, table string) error {
	if !catalog.IsValidTableName(table) {
		return fmt.Errorf("%w: %q", catalog.ErrInvalidTableName, table)
	}

	statements := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id BIGINT NULL,
				filename TEXT NOT NULL,
				s3_bucket TEXT NOT NULL,
				s3_key TEXT NOT NULL,
				url TEXT NOT NULL,
				size_bytes BIGINT NULL,
				etag TEXT NULL,
				last_modified TIMESTAMPTZ NULL,
				collection TEXT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				CONSTRAINT uk_%s_s3_key UNIQUE (s3_key)
			)`, table, table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_id ON %s (id)`, table, table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_filename ON %s (filename)`, table, table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_collection ON %s (collection)`, table, table),
	}

	for _, stmt := range statements {
		if _, err := r.db.Exec(ctx, stmt); err != nil {
			return r.handlePostgresError("ensure table", err)
		}
	}
	return nil
}

// Upsert writes one row keyed by s3_key. On conflict only the mutable
// columns are overwritten; id, s3_bucket and created_at keep their first
// values. Each call is its own statement, so one failed row never rolls
// back its neighbors.
func (r *Repository) Upsert(ctx context.Context, table string, rec *catalog.VideoRecord) error {
	if !catalog.IsValidTableName(table) {
		return fmt.Errorf("%w: %q", catalog.ErrInvalidTableName, table)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, filename, s3_bucket, s3_key, url, size_bytes, etag, last_modified, collection)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (s3_key) DO UPDATE SET
			filename      = EXCLUDED.filename,
			url           = EXCLUDED.url,
			size_bytes    = EXCLUDED.size_bytes,
			etag          = EXCLUDED.etag,
			last_modified = EXCLUDED.last_modified,
			collection    = EXCLUDED.collection,
			updated_at    = now()`, table)

	_, err := r.db.Exec(ctx, query,
		rec.ID, rec.Filename, rec.Bucket, rec.Key, rec.URL,
		rec.SizeBytes, rec.ETag, rec.LastModified, rec.Collection)
	if err != nil {
		return r.handlePostgresError("upsert video", err)
	}
	return nil
}

// List returns the catalog projection of a destination table ordered by
// filename.
func (r *Repository) List(ctx context.Context, table string) ([]catalog.VideoInfo, error) {
	if !catalog.IsValidTableName(table) {
		return nil, fmt.Errorf("%w: %q", catalog.ErrInvalidTableName, table)
	}

	query := fmt.Sprintf(`SELECT id, filename, s3_key FROM %s ORDER BY filename`, table)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, r.handlePostgresError("list videos", err)
	}
	defer rows.Close()

	var videos []catalog.VideoInfo
	for rows.Next() {
		var v catalog.VideoInfo
		if err := rows.Scan(&v.ID, &v.Filename, &v.Key); err != nil {
			return nil, fmt.Errorf("failed to scan video row: %w", err)
		}
		videos = append(videos, v)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("list videos", err)
	}
	return videos, nil
}

// Get returns the full record for one key, mainly for tests and admin
// inspection.
func (r *Repository) Get(ctx context.Context, table, key string) (*catalog.VideoRecord, error) {
	if !catalog.IsValidTableName(table) {
		return nil, fmt.Errorf("%w: %q", catalog.ErrInvalidTableName, table)
	}

	query := fmt.Sprintf(`
		SELECT id, filename, s3_bucket, s3_key, url, size_bytes, etag, last_modified, collection, created_at, updated_at
		FROM %s WHERE s3_key = $1`, table)

	var rec catalog.VideoRecord
	err := r.db.QueryRow(ctx, query, key).Scan(
		&rec.ID, &rec.Filename, &rec.Bucket, &rec.Key, &rec.URL,
		&rec.SizeBytes, &rec.ETag, &rec.LastModified, &rec.Collection,
		&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrObjectNotFound
		}
		return nil, r.handlePostgresError("get video", err)
	}
	return &rec, nil
}
