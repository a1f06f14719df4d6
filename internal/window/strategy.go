package window

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"fleet_filter/internal/models"
)

// ErrNoStrategy is matched by NoStrategyError
var ErrNoStrategy = errors.New("no window strategy can handle criteria")

// NoStrategyError is a configuration fault: no registered strategy accepted
// the requested window.
type NoStrategyError struct {
	Period models.Period
}

func (e *NoStrategyError) Error() string {
	return fmt.Sprintf("%s: period %s", ErrNoStrategy.Error(), e.Period)
}

func (e *NoStrategyError) Is(target error) bool {
	return target == ErrNoStrategy
}

// Strategy fetches the static and windowed datasets for one kind of window
type Strategy interface {
	Name() string
	CanHandle(c models.FilterCriteria) bool
	Priority() int
	FetchStatic(ctx context.Context, portfolioID int, c models.FilterCriteria) ([]models.AircraftRow, error)
	FetchUtilization(ctx context.Context, portfolioID int, c models.FilterCriteria) ([]models.UtilizationRow, error)
	Watermark(ctx context.Context, portfolioID int) (time.Time, error)
}

// Bounded is implemented by strategies whose range is resolved from the clock
type Bounded interface {
	Bounds() (from, to time.Time)
}

// Dispatcher selects the strategy for a request
type Dispatcher struct {
	strategies []Strategy
}

// NewDispatcher orders strategies by descending priority. Equal priorities
// keep registration order.
func NewDispatcher(strategies ...Strategy) *Dispatcher {
	ordered := append([]Strategy(nil), strategies...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority() > ordered[j].Priority()
	})
	return &Dispatcher{strategies: ordered}
}

// Select returns the highest-priority strategy that can handle c
func (d *Dispatcher) Select(c models.FilterCriteria) (Strategy, error) {
	for _, s := range d.strategies {
		if s.CanHandle(c) {
			return s, nil
		}
	}
	return nil, &NoStrategyError{Period: c.Window.Period}
}
