// Package memory provides an in-memory object store used in tests and local
// development.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/helloauslan/auslan-server/pkg/catalog"
)

// Store is an in-memory catalog.MediaStore. Objects live in a map keyed by
// object key; listings are served in key order.
type Store struct {
	mu          sync.RWMutex
	bucket      string
	objects     map[string]catalog.ObjectInfo
	contentType map[string]string

	// ListErr, when set, makes every listing fail after yielding the
	// objects already stored. It simulates a mid-scan transport failure.
	ListErr error
}

// New creates a new in-memory store for the named bucket.
func New(bucket string) *Store {
	return &Store{
		bucket:      bucket,
		objects:     make(map[string]catalog.ObjectInfo),
		contentType: make(map[string]string),
	}
}

// Put stores one object descriptor.
func (s *Store) Put(key string, size int64, etag string, lastModified time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = catalog.ObjectInfo{
		Key:          key,
		Size:         &size,
		ETag:         &etag,
		LastModified: &lastModified,
	}
}

// SetContentType records the stored content type for a key.
func (s *Store) SetContentType(key, contentType string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contentType[key] = contentType
}

// ContentType returns the stored content type for a key.
func (s *Store) ContentType(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.contentType[key]
}

func (s *Store) sortedKeys(prefix string) []string {
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		if prefix != "" && !strings.HasPrefix(k, prefix) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ListVideos yields every stored object under prefix whose key ends in
// catalog.MediaExtension, in key order.
func (s *Store) ListVideos(ctx context.Context, prefix string, fn func(catalog.ObjectInfo) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, k := range s.sortedKeys(prefix) {
		if !strings.HasSuffix(strings.ToLower(k), catalog.MediaExtension) {
			continue
		}
		if err := fn(s.objects[k]); err != nil {
			return err
		}
	}
	if s.ListErr != nil {
		return &catalog.StorageError{Bucket: s.bucket, Op: "list", Err: s.ListErr}
	}
	return nil
}

// PublicURL mirrors the address shape of the S3 backend.
func (s *Store) PublicURL(key string) string {
	return fmt.Sprintf("https://%s.s3.us-east-1.amazonaws.com/%s", s.bucket, key)
}

// PresignGetURL returns a stable fake signed URL.
func (s *Store) PresignGetURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.objects[key]; !ok {
		return "", &catalog.StorageError{Bucket: s.bucket, Key: key, Op: "presign", Err: catalog.ErrObjectNotFound}
	}
	return fmt.Sprintf("%s?X-Amz-Expires=%d", s.PublicURL(key), int(expires.Seconds())), nil
}

// FixContentTypes rewrites the stored content type of every listed video
// object that is not already video/mp4.
func (s *Store) FixContentTypes(ctx context.Context, prefix string) (*catalog.ContentTypeFixSummary, error) {
	summary := &catalog.ContentTypeFixSummary{
		Bucket: s.bucket,
		Prefix: prefix,
		Errors: []string{},
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, k := range s.sortedKeys(prefix) {
		if !strings.HasSuffix(strings.ToLower(k), catalog.MediaExtension) {
			continue
		}
		summary.Checked++
		if s.contentType[k] != "video/mp4" {
			s.contentType[k] = "video/mp4"
			summary.Fixed++
		}
	}
	if s.ListErr != nil {
		summary.Errors = append(summary.Errors, fmt.Sprintf("S3 error: %v", s.ListErr))
	}
	return summary, nil
}
