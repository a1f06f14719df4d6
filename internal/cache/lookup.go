package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fleet_filter/internal/models"
)

const maintenanceActivitiesKey = "maintenance-activities"

// MaintenanceActivityLookup lists every known maintenance activity
type MaintenanceActivityLookup interface {
	ListMaintenanceActivities(ctx context.Context) ([]models.MaintenanceActivity, error)
}

// ActivityNames resolves maintenance-activity ids to display names. The full
// list is fetched once per TTL and stored under a single key; individual ids
// are resolved in memory.
type ActivityNames struct {
	lookup MaintenanceActivityLookup
	cache  *TTLCache[map[int]string]
	ttl    time.Duration
}

func NewActivityNames(lookup MaintenanceActivityLookup, cache *TTLCache[map[int]string], ttl time.Duration) *ActivityNames {
	return &ActivityNames{lookup: lookup, cache: cache, ttl: ttl}
}

// Names returns the id->name table, refreshing it wholesale on expiry
func (a *ActivityNames) Names(ctx context.Context) (map[int]string, error) {
	if names, ok := a.cache.Get(maintenanceActivitiesKey); ok {
		return names, nil
	}

	activities, err := a.lookup.ListMaintenanceActivities(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list maintenance activities: %w", err)
	}

	names := make(map[int]string, len(activities))
	for _, activity := range activities {
		names[activity.ID] = activity.Name
	}
	a.cache.Set(maintenanceActivitiesKey, names, a.ttl)

	slog.Debug("Refreshed maintenance activity names", "count", len(names))
	return names, nil
}
