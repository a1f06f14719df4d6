package aggregator

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"fleet_filter/internal/models"
	"fleet_filter/internal/window"
)

// GeographicResolver resolves the geography a request allows
type GeographicResolver interface {
	ResolveGeography(ctx context.Context, c models.FilterCriteria) (models.GeographicFilterValues, error)
}

// ActivityNameResolver returns the maintenance-activity id->name table
type ActivityNameResolver interface {
	Names(ctx context.Context) (map[int]string, error)
}

// Aggregator fetches, merges and filters the rows of one request
type Aggregator struct {
	geo   GeographicResolver
	names ActivityNameResolver
}

func New(geo GeographicResolver, names ActivityNameResolver) *Aggregator {
	return &Aggregator{geo: geo, names: names}
}

// Aggregate runs the static, utilization and (when any filter is active)
// geography fetches concurrently, then merges and filters the result.
// Any fetch failure fails the whole request.
func (a *Aggregator) Aggregate(ctx context.Context, strategy window.Strategy, portfolioID int, c models.FilterCriteria) ([]models.MergedRow, error) {
	var (
		static      []models.AircraftRow
		utilization []models.UtilizationRow
		geo         = models.None[models.GeographicFilterValues]()
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := strategy.FetchStatic(gctx, portfolioID, c)
		if err != nil {
			return fmt.Errorf("failed to fetch static aircraft: %w", err)
		}
		static = rows
		return nil
	})
	g.Go(func() error {
		rows, err := strategy.FetchUtilization(gctx, portfolioID, c)
		if err != nil {
			return fmt.Errorf("failed to fetch utilization: %w", err)
		}
		utilization = rows
		return nil
	})
	if c.HasActiveFilters() {
		g.Go(func() error {
			values, err := a.geo.ResolveGeography(gctx, c)
			if err != nil {
				return fmt.Errorf("failed to resolve geographic filter values: %w", err)
			}
			geo = models.Some(values)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rows := Filter(static, utilization, geo, c)

	if err := a.rewriteActivities(ctx, rows); err != nil {
		return nil, err
	}

	slog.Debug("Aggregated filtered table",
		"portfolio_id", portfolioID,
		"strategy", strategy.Name(),
		"static_rows", len(static),
		"utilization_rows", len(utilization),
		"result_rows", len(rows),
	)
	return rows, nil
}

// rewriteActivities replaces raw activity ids with display names. Ids
// without a name are dropped from the display string.
func (a *Aggregator) rewriteActivities(ctx context.Context, rows []models.MergedRow) error {
	var names map[int]string
	for i := range rows {
		ids := models.ParseActivityIDs(rows[i].MaintenanceActivityIDs)
		if len(ids) == 0 {
			continue
		}
		if names == nil {
			var err error
			if names, err = a.names.Names(ctx); err != nil {
				return err
			}
		}
		rows[i].MaintenanceActivities = ActivityDisplay(ids, names)
	}
	return nil
}
