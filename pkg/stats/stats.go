// Package stats serves the population statistics behind the visualization
// endpoints: state totals, yearly totals, and the age distribution that the
// frontend draws as a population pyramid.
package stats

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// DefaultMaleRatio is the assumed male share used to split age bands when
// the source census table carries no sex breakdown.
const DefaultMaleRatio = 0.51

// StatePopulation is one state's population figure.
type StatePopulation struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

// YearlyPopulation is the population figure for one census year.
type YearlyPopulation struct {
	Year       string `json:"year"`
	Population int64  `json:"population"`
}

// AgeBand is one raw row of the age distribution table.
type AgeBand struct {
	AgeYears   string `json:"age_years"`
	Population int64  `json:"population"`
}

// PyramidRow is one cleaned age band with the inferred male/female split.
type PyramidRow struct {
	AgeYears   string `json:"age_years"`
	Population int64  `json:"population"`
	AgeStart   int    `json:"age_start"`
	Male       int64  `json:"male"`
	Female     int64  `json:"female"`
}

// Store provides the read-only statistical tables.
type Store interface {
	StatePopulations(ctx context.Context) ([]StatePopulation, error)
	PopulationByYear(ctx context.Context) ([]YearlyPopulation, error)
	AgeDistribution(ctx context.Context) ([]AgeBand, error)
}

// Service shapes raw statistical rows into the payloads the visualization
// endpoints serve. All methods perform one bounded query per call and keep
// no state between requests.
type Service struct {
	store Store
}

// NewService creates a stats service backed by store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// stateBlacklist drops aggregate and placeholder rows from the state table.
var stateBlacklist = map[string]struct{}{
	"Total":             {},
	"Other Territories": {},
	"Other Territory":   {},
	"OT":                {},
}

// StatePopulations returns per-state figures with aggregate rows and
// non-positive values filtered out, sorted by population descending.
func (s *Service) StatePopulations(ctx context.Context) ([]StatePopulation, error) {
	rows, err := s.store.StatePopulations(ctx)
	if err != nil {
		return nil, fmt.Errorf("query state populations: %w", err)
	}

	states := make([]StatePopulation, 0, len(rows))
	for _, row := range rows {
		name := strings.TrimSpace(row.Name)
		if name == "" {
			continue
		}
		if _, skip := stateBlacklist[name]; skip {
			continue
		}
		if row.Value <= 0 {
			continue
		}
		states = append(states, StatePopulation{Name: name, Value: row.Value})
	}
	sort.Slice(states, func(i, j int) bool { return states[i].Value > states[j].Value })
	return states, nil
}

// PopulationByYear returns the yearly series ordered by year.
func (s *Service) PopulationByYear(ctx context.Context) ([]YearlyPopulation, error) {
	rows, err := s.store.PopulationByYear(ctx)
	if err != nil {
		return nil, fmt.Errorf("query population by year: %w", err)
	}

	result := make([]YearlyPopulation, 0, len(rows))
	for _, row := range rows {
		year := strings.TrimSpace(row.Year)
		if year == "" {
			continue
		}
		result = append(result, YearlyPopulation{Year: year, Population: row.Population})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Year < result[j].Year })
	return result, nil
}

// agePrefix matches the starting age of a band label like "25-34 years".
var agePrefix = regexp.MustCompile(`^\d+`)

// ageStart extracts the starting age of a band label for sorting. "100 and
// over" style labels sort as 100; unparsable labels sort last.
func ageStart(label string) int {
	l := strings.ToLower(strings.TrimSpace(label))
	if strings.Contains(l, "100") {
		return 100
	}
	m := agePrefix.FindString(l)
	if m == "" {
		return -1
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return -1
	}
	return n
}

// AgePyramid returns the cleaned age bands with an inferred male/female
// split, sorted by descending starting age the way the pyramid is drawn.
// Blank and total rows are dropped. maleRatio must be within [0, 1];
// callers pass DefaultMaleRatio when the client did not choose one.
func (s *Service) AgePyramid(ctx context.Context, maleRatio float64) ([]PyramidRow, error) {
	if maleRatio < 0 || maleRatio > 1 {
		return nil, fmt.Errorf("male ratio %v out of range [0, 1]", maleRatio)
	}

	rows, err := s.store.AgeDistribution(ctx)
	if err != nil {
		return nil, fmt.Errorf("query age distribution: %w", err)
	}

	result := make([]PyramidRow, 0, len(rows))
	for _, band := range rows {
		label := strings.TrimSpace(band.AgeYears)
		lower := strings.ToLower(label)
		if label == "" || lower == "age_years" || strings.Contains(lower, "total") {
			continue
		}
		male := int64(math.Floor(float64(band.Population) * maleRatio))
		result = append(result, PyramidRow{
			AgeYears:   label,
			Population: band.Population,
			AgeStart:   ageStart(label),
			Male:       male,
			Female:     band.Population - male,
		})
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].AgeStart > result[j].AgeStart })
	return result, nil
}
