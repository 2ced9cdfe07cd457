package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helloauslan/auslan-server/pkg/stats"
	memoryrepo "github.com/helloauslan/auslan-server/pkg/stats/repo/memory"
)

func setupStatsTest(t *testing.T) (*chi.Mux, *memoryrepo.Repository) {
	t.Helper()
	repo := memoryrepo.New()
	handler := NewStatsHandler(stats.NewService(repo))

	router := chi.NewRouter()
	router.Mount("/", handler.Routes())
	return router, repo
}

func TestStatePopulationsEndpoint(t *testing.T) {
	router, repo := setupStatsTest(t)
	repo.SetStates([]stats.StatePopulation{
		{Name: "Victoria", Value: 5000},
		{Name: "Total", Value: 9000},
		{Name: "New South Wales", Value: 4000},
	})

	req := httptest.NewRequest(http.MethodGet, "/map/state-pop-2021", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		States []stats.StatePopulation `json:"states"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.States, 2)
	assert.Equal(t, "Victoria", resp.States[0].Name)
}

func TestPopulationByYearEndpoint(t *testing.T) {
	router, repo := setupStatsTest(t)
	repo.SetYears([]stats.YearlyPopulation{
		{Year: "2021", Population: 16000},
		{Year: "2016", Population: 11000},
	})

	req := httptest.NewRequest(http.MethodGet, "/year/population-by-year", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		YearlyPopulation []stats.YearlyPopulation `json:"yearly_population"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.YearlyPopulation, 2)
	assert.Equal(t, "2016", resp.YearlyPopulation[0].Year)
}

func TestAgeDataEndpoint(t *testing.T) {
	router, repo := setupStatsTest(t)
	repo.SetAges([]stats.AgeBand{
		{AgeYears: "0-4 years", Population: 100},
		{AgeYears: "25-34 years", Population: 200},
	})

	req := httptest.NewRequest(http.MethodGet, "/violin/age-data", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Rows []stats.PyramidRow `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Rows, 2)
	assert.Equal(t, "25-34 years", resp.Rows[0].AgeYears)
}

func TestTrendsAgeDataCustomRatio(t *testing.T) {
	router, repo := setupStatsTest(t)
	repo.SetAges([]stats.AgeBand{{AgeYears: "0-4 years", Population: 100}})

	req := httptest.NewRequest(http.MethodGet, "/violin/trends/age-data?male_ratio=0.4", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Scope     string             `json:"scope"`
		MaleRatio float64            `json:"male_ratio"`
		Rows      []stats.PyramidRow `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "trends", resp.Scope)
	assert.Equal(t, 0.4, resp.MaleRatio)
	require.Len(t, resp.Rows, 1)
	assert.Equal(t, int64(40), resp.Rows[0].Male)
	assert.Equal(t, int64(60), resp.Rows[0].Female)
}

func TestTrendsAgeDataInvalidRatio(t *testing.T) {
	router, _ := setupStatsTest(t)

	for _, raw := range []string{"1.5", "-0.2", "abc"} {
		req := httptest.NewRequest(http.MethodGet, "/violin/trends/age-data?male_ratio="+raw, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, "ratio %q", raw)
	}
}

func TestStatsQueryFailure(t *testing.T) {
	router, repo := setupStatsTest(t)
	repo.Err = assert.AnError

	req := httptest.NewRequest(http.MethodGet, "/map/state-pop-2021", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
