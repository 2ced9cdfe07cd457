package api

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/helloauslan/auslan-server/pkg/catalog"
)

const (
	// playbackExpiry is the lifetime of a single-video presigned URL.
	playbackExpiry = time.Hour

	// collectionExpiry is the lifetime of the presigned URLs embedded in a
	// collection listing.
	collectionExpiry = 7 * 24 * time.Hour
)

// VideosHandler serves the video catalog and presigned playback URLs.
type VideosHandler struct {
	repo  catalog.VideoRepository
	store catalog.MediaStore
}

// NewVideosHandler creates a new videos handler.
func NewVideosHandler(repo catalog.VideoRepository, store catalog.MediaStore) *VideosHandler {
	return &VideosHandler{
		repo:  repo,
		store: store,
	}
}

// Routes returns the routes for the default video catalog.
func (h *VideosHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListVideos)
	// Object keys may contain path separators, so the key is a wildcard.
	r.Get("/*", h.GetVideoURL)
	return r
}

// CollectionRoutes returns the routes for per-collection catalogs.
func (h *VideosHandler) CollectionRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{collection}/videos", h.ListCollection)
	return r
}

// ListVideos returns the rows of the default catalog table. An absent table
// just means nothing has been ingested yet.
func (h *VideosHandler) ListVideos(w http.ResponseWriter, r *http.Request) {
	videos, err := h.repo.List(r.Context(), catalog.DefaultTable)
	if err != nil {
		if errors.Is(err, catalog.ErrTableNotFound) {
			render.JSON(w, r, []catalog.VideoInfo{})
			return
		}
		slog.Error("failed to list videos", "err", err)
		http.Error(w, "failed to list videos", http.StatusInternalServerError)
		return
	}
	if videos == nil {
		videos = []catalog.VideoInfo{}
	}
	render.JSON(w, r, videos)
}

// GetVideoURL returns a presigned playback URL for one object key.
func (h *VideosHandler) GetVideoURL(w http.ResponseWriter, r *http.Request) {
	key, err := url.PathUnescape(chi.URLParam(r, "*"))
	if err != nil || key == "" {
		http.Error(w, "invalid video key", http.StatusBadRequest)
		return
	}

	signed, err := h.store.PresignGetURL(r.Context(), key, playbackExpiry)
	if err != nil {
		if errors.Is(err, catalog.ErrObjectNotFound) {
			http.Error(w, "video not found", http.StatusNotFound)
			return
		}
		slog.Error("failed to presign video URL", "key", key, "err", err)
		http.Error(w, "failed to presign video URL", http.StatusInternalServerError)
		return
	}
	render.JSON(w, r, map[string]string{"url": signed})
}

// ListCollection returns the rows of one per-collection table with a
// presigned URL per row. The collection name goes through the same
// identifier allow-list as the table resolver.
func (h *VideosHandler) ListCollection(w http.ResponseWriter, r *http.Request) {
	table, err := catalog.ResolveTableName(chi.URLParam(r, "collection"), "")
	if err != nil {
		http.Error(w, "invalid collection name", http.StatusBadRequest)
		return
	}

	videos, err := h.repo.List(r.Context(), table)
	if err != nil {
		if errors.Is(err, catalog.ErrTableNotFound) {
			http.Error(w, "collection not found", http.StatusNotFound)
			return
		}
		slog.Error("failed to list collection", "table", table, "err", err)
		http.Error(w, "failed to list collection", http.StatusInternalServerError)
		return
	}

	for i := range videos {
		signed, err := h.store.PresignGetURL(r.Context(), videos[i].Key, collectionExpiry)
		if err != nil {
			slog.Warn("failed to presign collection URL", "key", videos[i].Key, "err", err)
			continue
		}
		videos[i].URL = signed
	}
	render.JSON(w, r, videos)
}
