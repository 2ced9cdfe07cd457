// Package memory implements stats.Store with fixed in-memory rows for tests
// and local development.
package memory

import (
	"context"
	"sync"

	"github.com/helloauslan/auslan-server/pkg/stats"
)

// Repository implements stats.Store from slices supplied by the caller.
type Repository struct {
	mu     sync.RWMutex
	states []stats.StatePopulation
	years  []stats.YearlyPopulation
	ages   []stats.AgeBand

	// Err, when set, is returned by every query.
	Err error
}

// New creates an empty in-memory stats repository.
func New() *Repository {
	return &Repository{}
}

// SetStates replaces the state rows.
func (r *Repository) SetStates(rows []stats.StatePopulation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = rows
}

// SetYears replaces the yearly rows.
func (r *Repository) SetYears(rows []stats.YearlyPopulation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.years = rows
}

// SetAges replaces the age band rows.
func (r *Repository) SetAges(rows []stats.AgeBand) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ages = rows
}

func (r *Repository) StatePopulations(ctx context.Context) ([]stats.StatePopulation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Err != nil {
		return nil, r.Err
	}
	return append([]stats.StatePopulation(nil), r.states...), nil
}

func (r *Repository) PopulationByYear(ctx context.Context) ([]stats.YearlyPopulation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Err != nil {
		return nil, r.Err
	}
	return append([]stats.YearlyPopulation(nil), r.years...), nil
}

func (r *Repository) AgeDistribution(ctx context.Context) ([]stats.AgeBand, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Err != nil {
		return nil, r.Err
	}
	return append([]stats.AgeBand(nil), r.ages...), nil
}
