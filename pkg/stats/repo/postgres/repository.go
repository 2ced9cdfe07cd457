// Package postgres implements stats.Store on PostgreSQL.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/helloauslan/auslan-server/pkg/stats"
)

// DBTX is an interface that allows us to use either a database connection or
// a transaction.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements stats.Store using PostgreSQL. The three statistical
// tables are loaded by a separate import pipeline; this repository only
// reads them.
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL stats repository.
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL stats repository from a connection pool.
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// StatePopulations returns every per-state row with a non-null name.
func (r *Repository) StatePopulations(ctx context.Context) ([]stats.StatePopulation, error) {
	query := `
		SELECT state_name, COALESCE(population, 0)
		FROM state_population
		WHERE state_name IS NOT NULL AND state_name <> ''`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query state_population: %w", err)
	}
	defer rows.Close()

	var result []stats.StatePopulation
	for rows.Next() {
		var sp stats.StatePopulation
		if err := rows.Scan(&sp.Name, &sp.Value); err != nil {
			return nil, fmt.Errorf("failed to scan state row: %w", err)
		}
		result = append(result, sp)
	}
	return result, rows.Err()
}

// PopulationByYear returns the yearly series ordered by year.
func (r *Repository) PopulationByYear(ctx context.Context) ([]stats.YearlyPopulation, error) {
	query := `
		SELECT year, population
		FROM population_by_year
		WHERE year IS NOT NULL AND population IS NOT NULL
		ORDER BY year`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query population_by_year: %w", err)
	}
	defer rows.Close()

	var result []stats.YearlyPopulation
	for rows.Next() {
		var yp stats.YearlyPopulation
		if err := rows.Scan(&yp.Year, &yp.Population); err != nil {
			return nil, fmt.Errorf("failed to scan year row: %w", err)
		}
		result = append(result, yp)
	}
	return result, rows.Err()
}

// AgeDistribution returns the raw age bands.
func (r *Repository) AgeDistribution(ctx context.Context) ([]stats.AgeBand, error) {
	query := `
		SELECT age_years, COALESCE(population, 0)
		FROM age_distribution
		WHERE age_years IS NOT NULL`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query age_distribution: %w", err)
	}
	defer rows.Close()

	var result []stats.AgeBand
	for rows.Next() {
		var band stats.AgeBand
		if err := rows.Scan(&band.AgeYears, &band.Population); err != nil {
			return nil, fmt.Errorf("failed to scan age row: %w", err)
		}
		result = append(result, band)
	}
	return result, rows.Err()
}
