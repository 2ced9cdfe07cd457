package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/helloauslan/auslan-server/internal/metrics"
	"github.com/helloauslan/auslan-server/pkg/catalog"
)

// AdminHandler handles the administrative ingestion and repair endpoints.
type AdminHandler struct {
	ingestor *catalog.Ingestor
	store    catalog.MediaStore
	metrics  *metrics.Metrics
}

// NewAdminHandler creates a new admin handler. metrics may be nil in tests.
func NewAdminHandler(ingestor *catalog.Ingestor, store catalog.MediaStore, m *metrics.Metrics) *AdminHandler {
	return &AdminHandler{
		ingestor: ingestor,
		store:    store,
		metrics:  m,
	}
}

// Routes returns the routes for admin operations.
func (h *AdminHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/ingest-s3", h.RunIngest)
	r.Post("/fix-content-type", h.FixContentTypes)
	return r
}

// IngestResponse is the envelope returned by the ingestion endpoint. The
// summary fields are flattened next to the status.
type IngestResponse struct {
	Status string `json:"status"`
	*catalog.IngestSummary
}

// RunIngest triggers a one-off bucket-to-database import and returns its
// summary. Per-object and listing failures ride inside the summary of a 200
// response; only an unusable destination table fails the request.
func (h *AdminHandler) RunIngest(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")
	collection := r.URL.Query().Get("collection")

	summary, err := h.ingestor.Run(r.Context(), prefix, collection)
	if err != nil {
		if h.metrics != nil {
			h.metrics.ObserveIngestRun("failed", 0, 0, 0)
		}
		slog.Error("ingest failed", "prefix", prefix, "collection", collection, "err", err)
		status := http.StatusInternalServerError
		if errors.Is(err, catalog.ErrInvalidTableName) {
			status = http.StatusBadRequest
		}
		render.Status(r, status)
		render.JSON(w, r, map[string]string{"status": "error", "detail": err.Error()})
		return
	}

	if h.metrics != nil {
		h.metrics.ObserveIngestRun("ok", summary.Scanned, summary.Upserted, len(summary.Errors))
	}
	render.JSON(w, r, IngestResponse{Status: "ok", IngestSummary: summary})
}

// FixResponse is the envelope returned by the content-type repair endpoint.
type FixResponse struct {
	Status string `json:"status"`
	*catalog.ContentTypeFixSummary
}

// FixContentTypes sweeps the bucket and rewrites stale video content types.
func (h *AdminHandler) FixContentTypes(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")

	summary, err := h.store.FixContentTypes(r.Context(), prefix)
	if err != nil {
		slog.Error("content-type sweep failed", "prefix", prefix, "err", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, map[string]string{"status": "error", "detail": err.Error()})
		return
	}
	render.JSON(w, r, FixResponse{Status: "ok", ContentTypeFixSummary: summary})
}
