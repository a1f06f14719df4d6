package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"fleet_filter/internal/models"
)

// Airport is one row of the airport reference table
type Airport struct {
	ICAO        string
	IATA        string
	City        string
	CountryCode string
	RegionCode  string
}

type ReferenceRepository interface {
	InsertAirports(ctx context.Context, airports []Airport) error
	InsertMaintenanceActivities(ctx context.Context, activities []models.MaintenanceActivity) error
	ListMaintenanceActivities(ctx context.Context) ([]models.MaintenanceActivity, error)
	ResolveGeography(ctx context.Context, c models.FilterCriteria) (models.GeographicFilterValues, error)
}

type referenceRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewReferenceRepository(db *sql.DB) ReferenceRepository {
	return &referenceRepository{db: db, now: time.Now}
}

// NewReferenceRepositoryWithClock creates a repository that stamps portfolio
// watermarks with the given clock
func NewReferenceRepositoryWithClock(db *sql.DB, now func() time.Time) ReferenceRepository {
	return &referenceRepository{db: db, now: now}
}

// InsertAirports stores airports and moves every portfolio watermark, since
// location filters of any portfolio may resolve differently afterwards
func (r *referenceRepository) InsertAirports(ctx context.Context, airports []Airport) error {
	if len(airports) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, a := range airports {
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO airports (
			icao, iata, city, country_code, region_code
		) VALUES (?, ?, ?, ?, ?)`,
			strings.ToUpper(a.ICAO), strings.ToUpper(a.IATA), a.City,
			strings.ToUpper(a.CountryCode), strings.ToUpper(a.RegionCode),
		); err != nil {
			return fmt.Errorf("failed to insert airport: %w", err)
		}
	}

	if err := touchAllPortfolios(ctx, tx, r.now()); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// InsertMaintenanceActivities stores activity names and moves every portfolio
// watermark so cached rows stop showing the old names
func (r *referenceRepository) InsertMaintenanceActivities(ctx context.Context, activities []models.MaintenanceActivity) error {
	if len(activities) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, a := range activities {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO maintenance_activities (id, name) VALUES (?, ?)`, a.ID, a.Name,
		); err != nil {
			return fmt.Errorf("failed to insert maintenance activity: %w", err)
		}
	}

	if err := touchAllPortfolios(ctx, tx, r.now()); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *referenceRepository) ListMaintenanceActivities(ctx context.Context) ([]models.MaintenanceActivity, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM maintenance_activities ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query maintenance activities: %w", err)
	}
	defer rows.Close()

	var activities []models.MaintenanceActivity
	for rows.Next() {
		var a models.MaintenanceActivity
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, fmt.Errorf("failed to scan maintenance activity: %w", err)
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

// ResolveGeography canonicalises the requested geography: region and country
// codes are upper-cased, cities take their reference spelling and airport
// codes given as IATA are mapped to ICAO. Unknown values are kept as given.
func (r *referenceRepository) ResolveGeography(ctx context.Context, c models.FilterCriteria) (models.GeographicFilterValues, error) {
	var values models.GeographicFilterValues

	if regions, ok := c.RegionCodes.Get(); ok {
		values.Regions = upper(regions)
	}
	if countries, ok := c.CountryCodes.Get(); ok {
		values.Countries = upper(countries)
	}

	for _, city := range c.Cities.OrZero() {
		var canonical string
		err := r.db.QueryRowContext(ctx,
			`SELECT city FROM airports WHERE UPPER(city) = ? LIMIT 1`, strings.ToUpper(strings.TrimSpace(city))).
			Scan(&canonical)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			canonical = strings.TrimSpace(city)
		case err != nil:
			return models.GeographicFilterValues{}, fmt.Errorf("failed to resolve city: %w", err)
		}
		values.Cities = append(values.Cities, canonical)
	}

	for _, code := range upper(c.AirportCodes.OrZero()) {
		var icao string
		err := r.db.QueryRowContext(ctx,
			`SELECT icao FROM airports WHERE icao = ? OR iata = ? ORDER BY icao = ? DESC LIMIT 1`, code, code, code).
			Scan(&icao)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			icao = code
		case err != nil:
			return models.GeographicFilterValues{}, fmt.Errorf("failed to resolve airport: %w", err)
		}
		values.Airports = append(values.Airports, icao)
	}

	return values, nil
}
