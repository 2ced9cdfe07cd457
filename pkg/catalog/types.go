package catalog

import "time"

// MediaExtension is the object key suffix recognized by bucket scans.
const MediaExtension = ".mp4"

// ObjectInfo describes one object yielded by a bucket listing.
type ObjectInfo struct {
	Key          string
	Size         *int64
	ETag         *string
	LastModified *time.Time
}

// VideoRecord is one row of a destination table. Key is the natural key;
// re-ingesting the same key overwrites the mutable fields and never
// duplicates a row. ID is informational only.
type VideoRecord struct {
	ID           *int64     `json:"id"`
	Filename     string     `json:"filename"`
	Bucket       string     `json:"s3_bucket"`
	Key          string     `json:"s3_key"`
	URL          string     `json:"url"`
	SizeBytes    *int64     `json:"size_bytes,omitempty"`
	ETag         *string    `json:"etag,omitempty"`
	LastModified *time.Time `json:"last_modified,omitempty"`
	Collection   *string    `json:"collection,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// VideoInfo is the listing projection served by the read API.
type VideoInfo struct {
	ID       *int64 `json:"id"`
	Filename string `json:"filename"`
	Key      string `json:"s3_key"`
	URL      string `json:"url,omitempty"`
}

// IngestSummary reports the outcome of a single ingestion run. Errors holds
// one "<key>: <message>" entry per failed object plus at most one
// "S3 error: ..." entry when the listing itself failed mid-scan.
type IngestSummary struct {
	RunID    string   `json:"run_id"`
	Bucket   string   `json:"bucket"`
	Prefix   string   `json:"prefix"`
	Table    string   `json:"table"`
	Scanned  int      `json:"scanned"`
	Upserted int      `json:"upserted"`
	Errors   []string `json:"errors"`
}

// ContentTypeFixSummary reports the outcome of a content-type repair sweep.
type ContentTypeFixSummary struct {
	Bucket  string   `json:"bucket"`
	Prefix  string   `json:"prefix"`
	Checked int      `json:"checked"`
	Fixed   int      `json:"fixed"`
	Errors  []string `json:"errors"`
}
