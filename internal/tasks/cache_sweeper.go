package tasks

import (
	"context"
	"log/slog"
	"time"
)

// Sweepable is a cache whose expired entries can be removed
type Sweepable interface {
	Name() string
	Sweep() int
}

// CacheSweeper periodically removes expired entries from the result caches.
// Expiry is enforced on read regardless; sweeping only bounds memory.
type CacheSweeper struct {
	caches   []Sweepable
	interval time.Duration
}

func NewCacheSweeper(interval time.Duration, caches ...Sweepable) *CacheSweeper {
	return &CacheSweeper{caches: caches, interval: interval}
}

func (s *CacheSweeper) Run(ctx context.Context) error {
	for _, c := range s.caches {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if removed := c.Sweep(); removed > 0 {
			slog.Debug("Swept expired cache entries", "cache", c.Name(), "removed", removed)
		}
	}
	return nil
}

func (s *CacheSweeper) Interval() time.Duration {
	return s.interval
}

func (s *CacheSweeper) Name() string {
	return "cache_sweeper"
}
