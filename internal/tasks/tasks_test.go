package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet_filter/internal/cache"
	"fleet_filter/internal/models"
)

func TestCacheSweeper_RemovesExpiredEntries(t *testing.T) {
	now := time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	tables := cache.NewTTLCache[models.TableResult]("table").WithClock(clock)
	counts := cache.NewTTLCache[models.CountResult]("count").WithClock(clock)
	tables.Set("a", models.TableResult{}, time.Minute)
	tables.Set("b", models.TableResult{}, time.Hour)
	counts.Set("a", models.CountResult{Count: 3}, time.Minute)

	sweeper := NewCacheSweeper(time.Minute, tables, counts)
	assert.Equal(t, "cache_sweeper", sweeper.Name())
	assert.Equal(t, time.Minute, sweeper.Interval())

	require.NoError(t, sweeper.Run(context.Background()))
	assert.Equal(t, 2, tables.Len())
	assert.Equal(t, 1, counts.Len())

	now = now.Add(2 * time.Minute)
	require.NoError(t, sweeper.Run(context.Background()))
	assert.Equal(t, 1, tables.Len())
	assert.Equal(t, 0, counts.Len())
}

func TestCacheSweeper_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sweeper := NewCacheSweeper(time.Minute, cache.NewTTLCache[int]("n"))
	assert.ErrorIs(t, sweeper.Run(ctx), context.Canceled)
}

type mockTableService struct {
	calls  int
	result models.TableResult
	err    error
	got    models.FilterCriteria
	caller string
}

func (m *mockTableService) GetFilteredTable(ctx context.Context, portfolioID int, c models.FilterCriteria, callerID string, isServiceCaller bool) (models.TableResult, error) {
	m.calls++
	m.got = c
	m.caller = callerID
	return m.result, m.err
}

func TestQueryWatcher_DeliversResult(t *testing.T) {
	svc := &mockTableService{result: models.TableResult{Rows: []models.MergedRow{
		{AircraftRow: models.AircraftRow{AircraftID: 1}},
	}}}
	criteria := models.FilterCriteria{Window: models.Window{Period: models.PeriodLast30Days}}

	var delivered []models.TableResult
	watcher := NewQueryWatcher(svc, 11, criteria, "alice", false, time.Minute, func(r models.TableResult) {
		delivered = append(delivered, r)
	})
	assert.Equal(t, "query_watcher", watcher.Name())
	assert.Equal(t, time.Minute, watcher.Interval())

	require.NoError(t, watcher.Run(context.Background()))
	require.NoError(t, watcher.Run(context.Background()))

	assert.Equal(t, 2, svc.calls)
	assert.Equal(t, "alice", svc.caller)
	assert.Equal(t, models.PeriodLast30Days, svc.got.Window.Period)
	require.Len(t, delivered, 2)
	assert.Len(t, delivered[0].Rows, 1)
}

func TestQueryWatcher_ErrorSkipsSink(t *testing.T) {
	svc := &mockTableService{err: errors.New("store unavailable")}
	called := false
	watcher := NewQueryWatcher(svc, 11, models.FilterCriteria{}, "alice", false, time.Minute, func(models.TableResult) {
		called = true
	})

	err := watcher.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store unavailable")
	assert.False(t, called)
}
