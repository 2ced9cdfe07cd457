package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helloauslan/auslan-server/pkg/catalog"
	memoryrepo "github.com/helloauslan/auslan-server/pkg/catalog/repo/memory"
	memorystore "github.com/helloauslan/auslan-server/pkg/catalog/storage/memory"
)

func setupVideosTest(t *testing.T) (*chi.Mux, *memorystore.Store, *memoryrepo.Repository) {
	t.Helper()
	store := memorystore.New("test-bucket")
	repo := memoryrepo.New()
	handler := NewVideosHandler(repo, store)

	router := chi.NewRouter()
	router.Mount("/videos", handler.Routes())
	router.Mount("/collections", handler.CollectionRoutes())
	return router, store, repo
}

func seedVideo(t *testing.T, repo *memoryrepo.Repository, table, key, filename string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, repo.EnsureTable(ctx, table))
	require.NoError(t, repo.Upsert(ctx, table, &catalog.VideoRecord{
		Filename: filename,
		Bucket:   "test-bucket",
		Key:      key,
		URL:      "https://test-bucket.s3.us-east-1.amazonaws.com/" + key,
	}))
}

func TestListVideos(t *testing.T) {
	router, _, repo := setupVideosTest(t)
	seedVideo(t, repo, catalog.DefaultTable, "b.mp4", "banana")
	seedVideo(t, repo, catalog.DefaultTable, "a.mp4", "apple")

	req := httptest.NewRequest(http.MethodGet, "/videos/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var videos []catalog.VideoInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &videos))
	require.Len(t, videos, 2)
	assert.Equal(t, "apple", videos[0].Filename)
	assert.Equal(t, "banana", videos[1].Filename)
}

func TestListVideosBeforeFirstIngest(t *testing.T) {
	router, _, _ := setupVideosTest(t)

	req := httptest.NewRequest(http.MethodGet, "/videos/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestGetVideoURL(t *testing.T) {
	router, store, _ := setupVideosTest(t)
	store.Put("converted/00042_b.mp4", 100, "etag", time.Now().UTC())

	req := httptest.NewRequest(http.MethodGet, "/videos/converted/00042_b.mp4", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp["url"], "converted/00042_b.mp4")
	assert.Contains(t, resp["url"], "X-Amz-Expires=3600")
}

func TestGetVideoURLNotFound(t *testing.T) {
	router, _, _ := setupVideosTest(t)

	req := httptest.NewRequest(http.MethodGet, "/videos/missing.mp4", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListCollection(t *testing.T) {
	router, store, repo := setupVideosTest(t)
	store.Put("books/a.mp4", 100, "etag", time.Now().UTC())
	seedVideo(t, repo, "book_2_video", "books/a.mp4", "a")

	req := httptest.NewRequest(http.MethodGet, "/collections/book_2_video/videos", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var videos []catalog.VideoInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &videos))
	require.Len(t, videos, 1)
	assert.Equal(t, "books/a.mp4", videos[0].Key)
	assert.Contains(t, videos[0].URL, "X-Amz-Expires=604800")
}

func TestListCollectionUnknown(t *testing.T) {
	router, _, _ := setupVideosTest(t)

	req := httptest.NewRequest(http.MethodGet, "/collections/absent_video/videos", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListCollectionInvalidName(t *testing.T) {
	router, _, _ := setupVideosTest(t)

	req := httptest.NewRequest(http.MethodGet, "/collections/not%20a%20table/videos", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
