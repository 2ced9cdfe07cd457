// Package catalog mirrors the video objects of an S3 bucket into relational
// rows and serves the resulting catalog to the read API.
//
// The central piece is the Ingestor, which pages through a bucket listing,
// derives a numeric identifier and a display name from each object key, and
// upserts one row per object into a destination table resolved from the scan
// prefix. Per-object failures are collected into the run summary instead of
// aborting the scan.
package catalog
