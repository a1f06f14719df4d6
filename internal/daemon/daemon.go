package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fleet_filter/internal/aggregator"
	"fleet_filter/internal/auth"
	"fleet_filter/internal/cache"
	"fleet_filter/internal/config"
	"fleet_filter/internal/database"
	"fleet_filter/internal/models"
	"fleet_filter/internal/scheduler"
	"fleet_filter/internal/service"
	"fleet_filter/internal/tasks"
	"fleet_filter/internal/window"
)

// Daemon owns the process-lifetime state: the database, the caches, the
// filter service and the background scheduler
type Daemon struct {
	ctx       context.Context
	cancel    context.CancelFunc
	scheduler *scheduler.Scheduler
	database  *database.DB
	service   *service.Service
}

// New opens the database, seeds it when empty and wires the filter service
func New(cfg *config.Config) (*Daemon, error) {
	db, err := database.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := seed(db, cfg.Seed); err != nil {
		db.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	tables := cache.NewTTLCache[[]models.MergedRow]("filtered_table")
	counts := cache.NewTTLCache[int]("filtered_count")
	activities := cache.NewTTLCache[map[int]string]("maintenance_activities")

	svc := service.New(service.Config{
		Portfolios: db.Portfolios(),
		Gate:       auth.PortfolioGate{},
		Dispatcher: window.Defaults(db.FleetStore(time.Now), time.Now),
		Aggregator: aggregator.New(db.Reference(), cache.NewActivityNames(db.Reference(), activities, cfg.Cache.TTL)),
		Tables:     tables,
		Counts:     counts,
		TTL:        cfg.Cache.TTL,
	})

	sched := scheduler.New(ctx)
	sched.AddTask(tasks.NewCacheSweeper(cfg.Cache.SweepInterval, tables, counts, activities))

	return &Daemon{
		ctx:       ctx,
		cancel:    cancel,
		scheduler: sched,
		database:  db,
		service:   svc,
	}, nil
}

func seed(db *database.DB, cfg config.SeedConfig) error {
	if len(cfg.CSVPaths) == 0 {
		return nil
	}

	repo := db.Aircraft()
	populated, err := repo.IsTablePopulated()
	if err != nil {
		return err
	}
	if populated {
		slog.Info("Aircraft table is already populated")
		return nil
	}

	slog.Info("Aircraft table is empty, loading from CSV files", "csv_paths", cfg.CSVPaths)
	if err := repo.LoadFromMultipleCSV(cfg.CSVPaths, cfg.BatchSize); err != nil {
		return fmt.Errorf("failed to load aircraft from CSV: %w", err)
	}
	slog.Info("Successfully loaded aircraft from CSV")
	return nil
}

// Service returns the filter service
func (d *Daemon) Service() *service.Service {
	return d.service
}

// Context is cancelled when the daemon stops
func (d *Daemon) Context() context.Context {
	return d.ctx
}

// Watch re-runs a query on an interval
func (d *Daemon) Watch(portfolioID int, c models.FilterCriteria, callerID string, isServiceCaller bool, interval time.Duration, sink func(models.TableResult)) {
	d.scheduler.AddTask(tasks.NewQueryWatcher(d.service, portfolioID, c, callerID, isServiceCaller, interval, sink))
}

// Start begins the background tasks
func (d *Daemon) Start() {
	slog.Info("Starting daemon")
	d.scheduler.Start()
}

// Stop gracefully stops the daemon
func (d *Daemon) Stop() error {
	slog.Info("Stopping daemon")
	d.cancel()
	d.scheduler.Stop()

	if err := d.database.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	slog.Info("Daemon stopped")
	return nil
}
