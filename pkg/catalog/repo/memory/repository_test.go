package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helloauslan/auslan-server/pkg/catalog"
)

func record(key, filename string) *catalog.VideoRecord {
	size := int64(100)
	etag := "etag-1"
	return &catalog.VideoRecord{
		Filename:  filename,
		Bucket:    "bucket",
		Key:       key,
		URL:       "https://bucket.s3.us-east-1.amazonaws.com/" + key,
		SizeBytes: &size,
		ETag:      &etag,
	}
}

func TestEnsureTableIdempotent(t *testing.T) {
	repo := New()
	ctx := context.Background()

	require.NoError(t, repo.EnsureTable(ctx, "demo_video"))
	require.NoError(t, repo.EnsureTable(ctx, "demo_video"))
	assert.True(t, repo.HasTable("demo_video"))
}

func TestEnsureTableRejectsInvalidName(t *testing.T) {
	repo := New()
	err := repo.EnsureTable(context.Background(), `videos"; drop table videos`)
	assert.ErrorIs(t, err, catalog.ErrInvalidTableName)
}

func TestUpsertInsertThenUpdate(t *testing.T) {
	repo := New()
	ctx := context.Background()
	require.NoError(t, repo.EnsureTable(ctx, "videos"))

	require.NoError(t, repo.Upsert(ctx, "videos", record("a.mp4", "a")))
	first, err := repo.Get(ctx, "videos", "a.mp4")
	require.NoError(t, err)

	updated := record("a.mp4", "a")
	newSize := int64(250)
	newETag := "etag-2"
	updated.SizeBytes = &newSize
	updated.ETag = &newETag
	require.NoError(t, repo.Upsert(ctx, "videos", updated))

	second, err := repo.Get(ctx, "videos", "a.mp4")
	require.NoError(t, err)

	assert.Equal(t, 1, repo.RowCount("videos"))
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.False(t, second.UpdatedAt.Before(first.UpdatedAt))
	require.NotNil(t, second.SizeBytes)
	assert.Equal(t, int64(250), *second.SizeBytes)
	require.NotNil(t, second.ETag)
	assert.Equal(t, "etag-2", *second.ETag)
}

func TestUpsertUnknownTable(t *testing.T) {
	repo := New()
	err := repo.Upsert(context.Background(), "videos", record("a.mp4", "a"))
	assert.ErrorIs(t, err, catalog.ErrTableNotFound)
}

func TestListOrderedByFilename(t *testing.T) {
	repo := New()
	ctx := context.Background()
	require.NoError(t, repo.EnsureTable(ctx, "videos"))

	require.NoError(t, repo.Upsert(ctx, "videos", record("z.mp4", "zebra")))
	require.NoError(t, repo.Upsert(ctx, "videos", record("a.mp4", "apple")))

	videos, err := repo.List(ctx, "videos")
	require.NoError(t, err)
	require.Len(t, videos, 2)
	assert.Equal(t, "apple", videos[0].Filename)
	assert.Equal(t, "zebra", videos[1].Filename)
}

func TestGetReturnsCopy(t *testing.T) {
	repo := New()
	ctx := context.Background()
	require.NoError(t, repo.EnsureTable(ctx, "videos"))
	require.NoError(t, repo.Upsert(ctx, "videos", record("a.mp4", "a")))

	got, err := repo.Get(ctx, "videos", "a.mp4")
	require.NoError(t, err)
	got.Filename = "mutated"

	again, err := repo.Get(ctx, "videos", "a.mp4")
	require.NoError(t, err)
	assert.Equal(t, "a", again.Filename)
}
