package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fleet_filter/internal/models"
)

// TableService is the part of the filter service a watcher needs
type TableService interface {
	GetFilteredTable(ctx context.Context, portfolioID int, c models.FilterCriteria, callerID string, isServiceCaller bool) (models.TableResult, error)
}

// QueryWatcher re-runs a saved query on an interval and hands each result to a sink
type QueryWatcher struct {
	service         TableService
	portfolioID     int
	criteria        models.FilterCriteria
	callerID        string
	isServiceCaller bool
	interval        time.Duration
	sink            func(models.TableResult)
}

func NewQueryWatcher(service TableService, portfolioID int, criteria models.FilterCriteria, callerID string, isServiceCaller bool, interval time.Duration, sink func(models.TableResult)) *QueryWatcher {
	return &QueryWatcher{
		service:         service,
		portfolioID:     portfolioID,
		criteria:        criteria,
		callerID:        callerID,
		isServiceCaller: isServiceCaller,
		interval:        interval,
		sink:            sink,
	}
}

func (w *QueryWatcher) Run(ctx context.Context) error {
	start := time.Now()
	result, err := w.service.GetFilteredTable(ctx, w.portfolioID, w.criteria, w.callerID, w.isServiceCaller)
	if err != nil {
		return fmt.Errorf("failed to run watched query: %w", err)
	}

	slog.Info("Watched query refreshed",
		"portfolio_id", w.portfolioID,
		"period", w.criteria.Window.Period,
		"rows", len(result.Rows),
		"duration", time.Since(start),
	)
	if w.sink != nil {
		w.sink(result)
	}
	return nil
}

func (w *QueryWatcher) Interval() time.Duration {
	return w.interval
}

func (w *QueryWatcher) Name() string {
	return "query_watcher"
}
