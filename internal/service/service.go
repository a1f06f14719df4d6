package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"fleet_filter/internal/aggregator"
	"fleet_filter/internal/auth"
	"fleet_filter/internal/cache"
	"fleet_filter/internal/models"
	"fleet_filter/internal/window"
)

// PortfolioLookup loads a portfolio; archived portfolios are only visible
// to service callers.
type PortfolioLookup interface {
	GetPortfolio(ctx context.Context, portfolioID int, isServiceCaller bool) (models.Portfolio, error)
}

// Service answers filtered-table and filtered-count requests
type Service struct {
	portfolios PortfolioLookup
	gate       auth.Gate
	dispatcher *window.Dispatcher
	aggregator *aggregator.Aggregator
	tables     *cache.TTLCache[[]models.MergedRow]
	counts     *cache.TTLCache[int]
	ttl        time.Duration
}

// Config holds the collaborators of a Service
type Config struct {
	Portfolios PortfolioLookup
	Gate       auth.Gate
	Dispatcher *window.Dispatcher
	Aggregator *aggregator.Aggregator
	Tables     *cache.TTLCache[[]models.MergedRow]
	Counts     *cache.TTLCache[int]
	TTL        time.Duration
}

func New(cfg Config) *Service {
	return &Service{
		portfolios: cfg.Portfolios,
		gate:       cfg.Gate,
		dispatcher: cfg.Dispatcher,
		aggregator: cfg.Aggregator,
		tables:     cfg.Tables,
		counts:     cfg.Counts,
		ttl:        cfg.TTL,
	}
}

// GetFilteredTable returns the sorted, paginated rows matching c
func (s *Service) GetFilteredTable(ctx context.Context, portfolioID int, c models.FilterCriteria, callerID string, isServiceCaller bool) (models.TableResult, error) {
	c = c.Normalized()
	strategy, key, err := s.prepare(ctx, portfolioID, c, callerID, isServiceCaller, cache.ModeTable)
	if err != nil {
		return models.TableResult{}, err
	}

	// cached rows are shared between requests and are only ever handed out as copies
	if rows, ok := s.tables.Get(key); ok {
		slog.Debug("Filtered table cache hit", "portfolio_id", portfolioID, "key", key)
		return models.TableResult{Rows: slices.Clone(rows)}, nil
	}

	rows, err := s.aggregator.Aggregate(ctx, strategy, portfolioID, c)
	if err != nil {
		slog.Error("Failed to aggregate filtered table", "portfolio_id", portfolioID, "error", err)
		return models.TableResult{}, err
	}

	aggregator.Sort(rows, c.SortColumn, c.SortDesc)
	rows = aggregator.Page(rows, c.Skip, c.Take)

	// an abandoned request must not populate the cache
	if err := ctx.Err(); err != nil {
		return models.TableResult{}, err
	}
	s.tables.Set(key, slices.Clone(rows), s.ttl)

	return models.TableResult{Rows: rows}, nil
}

// GetFilteredCount returns how many rows match c, ignoring pagination
func (s *Service) GetFilteredCount(ctx context.Context, portfolioID int, c models.FilterCriteria, callerID string, isServiceCaller bool) (models.CountResult, error) {
	c = c.Normalized()
	strategy, key, err := s.prepare(ctx, portfolioID, c, callerID, isServiceCaller, cache.ModeCount)
	if err != nil {
		return models.CountResult{}, err
	}

	if count, ok := s.counts.Get(key); ok {
		slog.Debug("Filtered count cache hit", "portfolio_id", portfolioID, "key", key)
		return models.CountResult{Count: count}, nil
	}

	rows, err := s.aggregator.Aggregate(ctx, strategy, portfolioID, c)
	if err != nil {
		slog.Error("Failed to aggregate filtered count", "portfolio_id", portfolioID, "error", err)
		return models.CountResult{}, err
	}

	if err := ctx.Err(); err != nil {
		return models.CountResult{}, err
	}
	s.counts.Set(key, len(rows), s.ttl)

	return models.CountResult{Count: len(rows)}, nil
}

// prepare validates, authorizes and dispatches a request and derives its fingerprint
func (s *Service) prepare(ctx context.Context, portfolioID int, c models.FilterCriteria, callerID string, isServiceCaller bool, mode cache.Mode) (window.Strategy, string, error) {
	if err := c.Validate(); err != nil {
		return nil, "", err
	}

	portfolio, err := s.portfolios.GetPortfolio(ctx, portfolioID, isServiceCaller)
	if err != nil {
		return nil, "", err
	}
	if err := s.gate.ValidateAccess(portfolio, callerID); err != nil {
		return nil, "", err
	}

	strategy, err := s.dispatcher.Select(c)
	if err != nil {
		slog.Error("No window strategy registered", "period", c.Window.Period, "error", err)
		return nil, "", err
	}

	watermark, err := strategy.Watermark(ctx, portfolioID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read portfolio watermark: %w", err)
	}

	return strategy, cache.BuildKey(portfolioID, keyedWindow(strategy, c), watermark, mode), nil
}

// keyedWindow pins a relative period to the range its strategy resolves right
// now, so cached entries stop matching once the period rolls over at midnight
func keyedWindow(strategy window.Strategy, c models.FilterCriteria) models.FilterCriteria {
	bounded, ok := strategy.(window.Bounded)
	if !ok {
		return c
	}
	from, to := bounded.Bounds()
	c.Window.From = models.Some(from)
	c.Window.To = models.Some(to)
	return c
}
