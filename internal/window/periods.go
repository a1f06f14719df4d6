package window

import (
	"context"
	"time"

	"fleet_filter/internal/models"
)

// DefaultPriority is the priority of the built-in strategies
const DefaultPriority = 10

// periodStrategy serves one relative period ending at the start of tomorrow
type periodStrategy struct {
	storeStrategy
	period models.Period
	days   int
	months int
	now    func() time.Time
}

// NewPeriodStrategy returns the strategy for a relative period
func NewPeriodStrategy(store Store, period models.Period, now func() time.Time) Strategy {
	s := &periodStrategy{storeStrategy: storeStrategy{store: store}, period: period, now: now}
	switch period {
	case models.PeriodLast7Days:
		s.days = 7
	case models.PeriodLast30Days:
		s.days = 30
	case models.PeriodLast3Months:
		s.months = 3
	case models.PeriodLast6Months:
		s.months = 6
	case models.PeriodLast12Months:
		s.months = 12
	}
	return s
}

func (s *periodStrategy) Name() string { return s.period.String() }

func (s *periodStrategy) Priority() int { return DefaultPriority }

func (s *periodStrategy) CanHandle(c models.FilterCriteria) bool {
	return c.Window.Period == s.period
}

var _ Bounded = (*periodStrategy)(nil)

// Bounds returns the [from, to) range of the period as of now
func (s *periodStrategy) Bounds() (time.Time, time.Time) {
	to := NormalizeDate(s.now()).AddDate(0, 0, 1)
	from := to.AddDate(0, -s.months, -s.days)
	return from, to
}

func (s *periodStrategy) FetchUtilization(ctx context.Context, portfolioID int, c models.FilterCriteria) ([]models.UtilizationRow, error) {
	from, to := s.Bounds()
	return s.store.Utilization(ctx, portfolioID, from, to, c)
}

// rangeStrategy serves explicit [from, to) windows
type rangeStrategy struct {
	storeStrategy
}

// NewRangeStrategy returns the strategy for explicit ranges
func NewRangeStrategy(store Store) Strategy {
	return &rangeStrategy{storeStrategy: storeStrategy{store: store}}
}

func (s *rangeStrategy) Name() string { return models.PeriodCustom.String() }

func (s *rangeStrategy) Priority() int { return DefaultPriority }

func (s *rangeStrategy) CanHandle(c models.FilterCriteria) bool {
	return c.Window.Period == models.PeriodCustom && c.Window.From.IsSome() && c.Window.To.IsSome()
}

func (s *rangeStrategy) FetchUtilization(ctx context.Context, portfolioID int, c models.FilterCriteria) ([]models.UtilizationRow, error) {
	from, _ := c.Window.From.Get()
	to, _ := c.Window.To.Get()
	return s.store.Utilization(ctx, portfolioID, from, to, c)
}

// Defaults registers one strategy per relative period plus the explicit range strategy
func Defaults(store Store, now func() time.Time) *Dispatcher {
	return NewDispatcher(
		NewPeriodStrategy(store, models.PeriodLast7Days, now),
		NewPeriodStrategy(store, models.PeriodLast30Days, now),
		NewPeriodStrategy(store, models.PeriodLast3Months, now),
		NewPeriodStrategy(store, models.PeriodLast6Months, now),
		NewPeriodStrategy(store, models.PeriodLast12Months, now),
		NewRangeStrategy(store),
	)
}

// NormalizeDate returns the date at 00:00:00 in t's location
func NormalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
