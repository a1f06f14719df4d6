package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// ErrPortfolioNotFound is returned when a portfolio does not exist or is not
// visible to the caller
var ErrPortfolioNotFound = errors.New("portfolio not found")

// DB owns the SQLite connection holding fleet data
type DB struct {
	db *sql.DB
}

// New creates and initializes a new database connection
func New(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := optimizeSQLite(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to optimize database: %w", err)
	}

	database := &DB{db: db}

	if err := database.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return database, nil
}

// optimizeSQLite applies connection settings suited to a read-mostly workload
func optimizeSQLite(db *sql.DB) error {
	pragmas := []string{
		// WAL allows concurrent readers while the fleet feed writes
		"PRAGMA journal_mode=WAL",
		"PRAGMA cache_size=-64000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}
	return nil
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.db.Close()
}

// Aircraft returns the repository for static aircraft data
func (d *DB) Aircraft() AircraftRepository {
	return NewAircraftRepository(d.db)
}

// Activity returns the repository for flights and ground events
func (d *DB) Activity() ActivityRepository {
	return NewActivityRepository(d.db)
}

// Portfolios returns the repository for portfolios and their watermarks
func (d *DB) Portfolios() PortfolioRepository {
	return NewPortfolioRepository(d.db)
}

// Reference returns the repository for airports and maintenance activities
func (d *DB) Reference() ReferenceRepository {
	return NewReferenceRepository(d.db)
}

// initSchema creates the database schema if it doesn't exist
func (d *DB) initSchema() error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS portfolios (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			owner_id TEXT NOT NULL,
			archived INTEGER NOT NULL DEFAULT 0,
			last_modified TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS portfolio_members (
			portfolio_id INTEGER NOT NULL REFERENCES portfolios(id),
			user_id TEXT NOT NULL,
			PRIMARY KEY (portfolio_id, user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS aircraft (
			id INTEGER PRIMARY KEY,
			registration TEXT NOT NULL,
			serial_number TEXT NOT NULL DEFAULT '',
			series_id INTEGER NOT NULL DEFAULT 0,
			series_name TEXT NOT NULL DEFAULT '',
			engine_series_id INTEGER NOT NULL DEFAULT 0,
			engine_series_name TEXT NOT NULL DEFAULT '',
			operator_id INTEGER NOT NULL DEFAULT 0,
			operator_name TEXT NOT NULL DEFAULT '',
			manager_id INTEGER NOT NULL DEFAULT 0,
			manager_name TEXT NOT NULL DEFAULT '',
			route_category INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS portfolio_aircraft (
			portfolio_id INTEGER NOT NULL REFERENCES portfolios(id),
			aircraft_id INTEGER NOT NULL REFERENCES aircraft(id),
			PRIMARY KEY (portfolio_id, aircraft_id)
		)`,
		`CREATE TABLE IF NOT EXISTS airports (
			icao TEXT PRIMARY KEY,
			iata TEXT NOT NULL DEFAULT '',
			city TEXT NOT NULL,
			country_code TEXT NOT NULL,
			region_code TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS flights (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			aircraft_id INTEGER NOT NULL REFERENCES aircraft(id),
			departure_time TIMESTAMP NOT NULL,
			arrival_time TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS ground_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			aircraft_id INTEGER NOT NULL REFERENCES aircraft(id),
			airport_icao TEXT NOT NULL,
			start_time TIMESTAMP NOT NULL,
			end_time TIMESTAMP,
			maintenance_activity_ids TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS maintenance_activities (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL
		)`,
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_flights_aircraft_departure ON flights(aircraft_id, departure_time)`,
		`CREATE INDEX IF NOT EXISTS idx_ground_events_aircraft_start ON ground_events(aircraft_id, start_time)`,
		`CREATE INDEX IF NOT EXISTS idx_portfolio_aircraft_aircraft ON portfolio_aircraft(aircraft_id)`,
		`CREATE INDEX IF NOT EXISTS idx_airports_iata ON airports(iata)`,
	}

	for _, table := range tables {
		if _, err := d.db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	for _, idx := range indexes {
		if _, err := d.db.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

// inClause renders "column IN (?, ?, ...)" and its arguments
func inClause[T any](column string, values []T) (string, []any) {
	placeholders := make([]string, len(values))
	args := make([]any, len(values))
	for i, v := range values {
		placeholders[i] = "?"
		args[i] = v
	}
	return fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ", ")), args
}

// upper returns a copy of values in upper case
func upper(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToUpper(strings.TrimSpace(v))
	}
	return out
}
