package cache

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet_filter/internal/models"
)

type mockActivityLookup struct {
	calls      atomic.Int32
	activities []models.MaintenanceActivity
	err        error
}

func (m *mockActivityLookup) ListMaintenanceActivities(ctx context.Context) ([]models.MaintenanceActivity, error) {
	m.calls.Add(1)
	return m.activities, m.err
}

func TestActivityNames_RepeatedResolutionIsCached(t *testing.T) {
	lookup := &mockActivityLookup{activities: []models.MaintenanceActivity{
		{ID: 1, Name: "A-check"},
		{ID: 2, Name: "C-check"},
	}}
	names := NewActivityNames(lookup, NewTTLCache[map[int]string]("test_lookup"), 5*time.Minute)

	first, err := names.Names(context.Background())
	require.NoError(t, err)
	second, err := names.Names(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "C-check", first[2])
	assert.Equal(t, first[2], second[2])
	assert.Equal(t, int32(1), lookup.calls.Load())

	_, ok := second[99]
	assert.False(t, ok)
	assert.Equal(t, int32(1), lookup.calls.Load())
}

func TestActivityNames_RefreshesWholesaleOnExpiry(t *testing.T) {
	clock := newFakeClock()
	lookup := &mockActivityLookup{activities: []models.MaintenanceActivity{{ID: 1, Name: "A-check"}}}
	names := NewActivityNames(lookup, NewTTLCache[map[int]string]("test_lookup_expiry").WithClock(clock.Now), time.Minute)

	_, err := names.Names(context.Background())
	require.NoError(t, err)

	lookup.activities = []models.MaintenanceActivity{{ID: 1, Name: "A-check (line)"}}
	clock.Advance(2 * time.Minute)

	table, err := names.Names(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "A-check (line)", table[1])
	assert.Equal(t, int32(2), lookup.calls.Load())
}

func TestActivityNames_LookupFailureIsNotCached(t *testing.T) {
	lookup := &mockActivityLookup{err: assert.AnError}
	names := NewActivityNames(lookup, NewTTLCache[map[int]string]("test_lookup_error"), time.Minute)

	_, err := names.Names(context.Background())
	assert.ErrorIs(t, err, assert.AnError)

	lookup.err = nil
	_, err = names.Names(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, int32(2), lookup.calls.Load())
}
