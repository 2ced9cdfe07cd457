package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/helloauslan/auslan-server/pkg/stats"
)

// StatsHandler serves the population statistics endpoints.
type StatsHandler struct {
	svc *stats.Service
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(svc *stats.Service) *StatsHandler {
	return &StatsHandler{svc: svc}
}

// Routes returns the routes for the statistics endpoints. Paths mirror the
// frontend's existing map/year/violin sections.
func (h *StatsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/map/state-pop-2021", h.StatePopulations)
	r.Get("/year/population-by-year", h.PopulationByYear)
	r.Get("/violin/age-data", h.AgeData)
	r.Get("/violin/trends/age-data", h.TrendsAgeData)
	return r
}

// StatePopulations returns per-state population figures sorted descending.
func (h *StatsHandler) StatePopulations(w http.ResponseWriter, r *http.Request) {
	states, err := h.svc.StatePopulations(r.Context())
	if err != nil {
		slog.Error("state population query failed", "err", err)
		http.Error(w, "database query failed", http.StatusInternalServerError)
		return
	}
	render.JSON(w, r, map[string]interface{}{"states": states})
}

// PopulationByYear returns the yearly population series.
func (h *StatsHandler) PopulationByYear(w http.ResponseWriter, r *http.Request) {
	years, err := h.svc.PopulationByYear(r.Context())
	if err != nil {
		slog.Error("population by year query failed", "err", err)
		http.Error(w, "database query failed", http.StatusInternalServerError)
		return
	}
	render.JSON(w, r, map[string]interface{}{"yearly_population": years})
}

// AgeData returns the cleaned age bands with the default male/female split.
func (h *StatsHandler) AgeData(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.AgePyramid(r.Context(), stats.DefaultMaleRatio)
	if err != nil {
		slog.Error("age distribution query failed", "err", err)
		http.Error(w, "database query failed", http.StatusInternalServerError)
		return
	}
	render.JSON(w, r, map[string]interface{}{"rows": rows})
}

// TrendsAgeData returns the age bands split by a caller-chosen male ratio.
func (h *StatsHandler) TrendsAgeData(w http.ResponseWriter, r *http.Request) {
	ratio := stats.DefaultMaleRatio
	if raw := r.URL.Query().Get("male_ratio"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed < 0 || parsed > 1 {
			http.Error(w, "male_ratio must be a number within [0, 1]", http.StatusBadRequest)
			return
		}
		ratio = parsed
	}

	rows, err := h.svc.AgePyramid(r.Context(), ratio)
	if err != nil {
		slog.Error("age distribution query failed", "err", err)
		http.Error(w, "database query failed", http.StatusInternalServerError)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"scope":      "trends",
		"male_ratio": ratio,
		"rows":       rows,
	})
}
