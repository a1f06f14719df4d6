package window

import (
	"context"
	"time"

	"fleet_filter/internal/models"
)

// Store is the data source strategies read from
type Store interface {
	StaticAircraft(ctx context.Context, portfolioID int, c models.FilterCriteria) ([]models.AircraftRow, error)
	Utilization(ctx context.Context, portfolioID int, from, to time.Time, c models.FilterCriteria) ([]models.UtilizationRow, error)
	LastModified(ctx context.Context, portfolioID int) (time.Time, error)
}

// storeStrategy implements everything but the window resolution
type storeStrategy struct {
	store Store
}

func (s storeStrategy) FetchStatic(ctx context.Context, portfolioID int, c models.FilterCriteria) ([]models.AircraftRow, error) {
	return s.store.StaticAircraft(ctx, portfolioID, c)
}

func (s storeStrategy) Watermark(ctx context.Context, portfolioID int) (time.Time, error) {
	return s.store.LastModified(ctx, portfolioID)
}
