package database

import (
	"context"
	"database/sql"
	"time"

	"fleet_filter/internal/models"
)

// FleetStore is the read side used by the window strategies
type FleetStore struct {
	aircraft   AircraftRepository
	activity   ActivityRepository
	portfolios PortfolioRepository
}

// NewFleetStore creates a store whose ground-stay arithmetic uses now
func NewFleetStore(db *sql.DB, now func() time.Time) *FleetStore {
	return &FleetStore{
		aircraft:   NewAircraftRepositoryWithClock(db, now),
		activity:   NewActivityRepositoryWithClock(db, now),
		portfolios: NewPortfolioRepository(db),
	}
}

// FleetStore returns the read side of the database
func (d *DB) FleetStore(now func() time.Time) *FleetStore {
	return NewFleetStore(d.db, now)
}

func (s *FleetStore) StaticAircraft(ctx context.Context, portfolioID int, c models.FilterCriteria) ([]models.AircraftRow, error) {
	return s.aircraft.StaticAircraft(ctx, portfolioID, c)
}

func (s *FleetStore) Utilization(ctx context.Context, portfolioID int, from, to time.Time, c models.FilterCriteria) ([]models.UtilizationRow, error) {
	return s.activity.Utilization(ctx, portfolioID, from, to, c)
}

func (s *FleetStore) LastModified(ctx context.Context, portfolioID int) (time.Time, error) {
	return s.portfolios.LastModified(ctx, portfolioID)
}
