package database

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"fleet_filter/internal/models"
)

// Aircraft is one row of the aircraft master table
type Aircraft struct {
	ID               int
	Registration     string
	SerialNumber     string
	SeriesID         int
	SeriesName       string
	EngineSeriesID   int
	EngineSeriesName string
	OperatorID       int
	OperatorName     string
	ManagerID        int
	ManagerName      string
	RouteCategory    models.RouteCategory
	PortfolioID      int // optional, only read from seed files
}

type AircraftRepository interface {
	InsertBatch(aircraft []*Aircraft) error
	IsTablePopulated() (bool, error)
	LoadFromMultipleCSV(csvPaths []string, batchSize int) error
	StaticAircraft(ctx context.Context, portfolioID int, c models.FilterCriteria) ([]models.AircraftRow, error)
}

type aircraftRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewAircraftRepository(db *sql.DB) AircraftRepository {
	return &aircraftRepository{db: db, now: time.Now}
}

// NewAircraftRepositoryWithClock creates a repository that measures current
// ground stays against the given clock
func NewAircraftRepositoryWithClock(db *sql.DB, now func() time.Time) AircraftRepository {
	return &aircraftRepository{db: db, now: now}
}

// InsertBatch inserts or replaces aircraft records in a single transaction
func (r *aircraftRepository) InsertBatch(aircraft []*Aircraft) error {
	if len(aircraft) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO aircraft (
		id, registration, serial_number, series_id, series_name,
		engine_series_id, engine_series_name, operator_id, operator_name,
		manager_id, manager_name, route_category
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	ids := make([]int, 0, len(aircraft))
	for _, ac := range aircraft {
		if _, err := stmt.Exec(
			ac.ID, ac.Registration, ac.SerialNumber, ac.SeriesID, ac.SeriesName,
			ac.EngineSeriesID, ac.EngineSeriesName, ac.OperatorID, ac.OperatorName,
			ac.ManagerID, ac.ManagerName, int(ac.RouteCategory),
		); err != nil {
			return fmt.Errorf("failed to insert aircraft: %w", err)
		}
		if ac.PortfolioID > 0 {
			if _, err := tx.Exec(
				`INSERT OR IGNORE INTO portfolio_aircraft (portfolio_id, aircraft_id) VALUES (?, ?)`,
				ac.PortfolioID, ac.ID); err != nil {
				return fmt.Errorf("failed to add aircraft to portfolio: %w", err)
			}
		}
		ids = append(ids, ac.ID)
	}

	if err := touchAircraftPortfolios(context.Background(), tx, r.now(), ids...); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *aircraftRepository) IsTablePopulated() (bool, error) {
	var ignored int
	err := r.db.QueryRow("SELECT 1 FROM aircraft LIMIT 1").Scan(&ignored)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check aircraft table: %w", err)
	}
	return true, nil
}

// LoadFromMultipleCSV loads aircraft master data from CSV exports sharing the
// header of the first file.
func (r *aircraftRepository) LoadFromMultipleCSV(csvPaths []string, batchSize int) error {
	var headerMap map[string]int
	var expectedFields int
	batch := make([]*Aircraft, 0, batchSize)

	for fileIdx, csvPath := range csvPaths {
		if err := func() error {
			file, err := os.Open(csvPath)
			if err != nil {
				return fmt.Errorf("failed to open CSV file %s: %w", csvPath, err)
			}
			defer file.Close()

			reader := csv.NewReader(file)
			reader.LazyQuotes = true
			reader.FieldsPerRecord = -1

			header, err := reader.Read()
			if err != nil {
				return fmt.Errorf("failed to read CSV header from %s: %w", csvPath, err)
			}

			if fileIdx == 0 {
				expectedFields = len(header)
				headerMap = make(map[string]int)
				for i, h := range header {
					headerMap[strings.Trim(strings.TrimSpace(h), "'\"")] = i
				}
			}

			for {
				record, err := reader.Read()
				if err == io.EOF {
					return nil
				}
				if err != nil {
					return fmt.Errorf("failed to read CSV record from %s: %w", csvPath, err)
				}

				if len(record) != expectedFields {
					continue
				}

				ac := &Aircraft{
					ID:               getIntField(record, headerMap, "id"),
					Registration:     getField(record, headerMap, "registration"),
					SerialNumber:     getField(record, headerMap, "serialNumber"),
					SeriesID:         getIntField(record, headerMap, "seriesId"),
					SeriesName:       getField(record, headerMap, "seriesName"),
					EngineSeriesID:   getIntField(record, headerMap, "engineSeriesId"),
					EngineSeriesName: getField(record, headerMap, "engineSeriesName"),
					OperatorID:       getIntField(record, headerMap, "operatorId"),
					OperatorName:     getField(record, headerMap, "operatorName"),
					ManagerID:        getIntField(record, headerMap, "managerId"),
					ManagerName:      getField(record, headerMap, "managerName"),
					PortfolioID:      getIntField(record, headerMap, "portfolioId"),
				}
				var category models.RouteCategory
				if err := category.UnmarshalText([]byte(getField(record, headerMap, "routeCategory"))); err == nil {
					ac.RouteCategory = category
				}

				// Skip records without identity
				if ac.ID <= 0 || ac.Registration == "" {
					continue
				}

				batch = append(batch, ac)

				if len(batch) >= batchSize {
					if err := r.InsertBatch(batch); err != nil {
						return fmt.Errorf("failed to insert batch: %w", err)
					}
					batch = batch[:0]
				}
			}
		}(); err != nil {
			return err
		}
	}

	if len(batch) > 0 {
		if err := r.InsertBatch(batch); err != nil {
			return fmt.Errorf("failed to insert final batch: %w", err)
		}
	}

	return nil
}

// StaticAircraft returns the portfolio's aircraft matching the organizational
// dimensions of c, located at their most recent ground event.
func (r *aircraftRepository) StaticAircraft(ctx context.Context, portfolioID int, c models.FilterCriteria) ([]models.AircraftRow, error) {
	query := `SELECT a.id, a.registration, a.serial_number, a.series_id, a.series_name,
		a.engine_series_id, a.engine_series_name, a.operator_id, a.operator_name,
		a.manager_id, a.manager_name, a.route_category,
		ge.airport_icao, ap.city, ap.country_code, ap.region_code, ge.start_time, ge.end_time
	FROM aircraft a
	JOIN portfolio_aircraft pa ON pa.aircraft_id = a.id AND pa.portfolio_id = ?
	LEFT JOIN ground_events ge ON ge.id = (
		SELECT g.id FROM ground_events g WHERE g.aircraft_id = a.id ORDER BY g.start_time DESC, g.id DESC LIMIT 1)
	LEFT JOIN airports ap ON ap.icao = ge.airport_icao`

	where := []string{}
	args := []any{portfolioID}
	dimensions := []struct {
		column string
		ids    models.Option[[]int]
	}{
		{"a.operator_id", c.OperatorIDs},
		{"a.manager_id", c.LessorIDs},
		{"a.series_id", c.AircraftSeriesIDs},
		{"a.engine_series_id", c.EngineSeriesIDs},
		{"a.id", c.AircraftIDs},
	}
	for _, d := range dimensions {
		if ids, ok := d.ids.Get(); ok {
			clause, clauseArgs := inClause(d.column, ids)
			where = append(where, clause)
			args = append(args, clauseArgs...)
		}
	}
	if c.AircraftOnGround {
		where = append(where, "ge.id IS NOT NULL AND ge.end_time IS NULL")
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY a.id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query static aircraft: %w", err)
	}
	defer rows.Close()

	now := r.now()
	var result []models.AircraftRow
	for rows.Next() {
		var (
			row                            models.AircraftRow
			category                       int
			airport, city, country, region sql.NullString
			start, end                     sql.NullTime
		)
		if err := rows.Scan(
			&row.AircraftID, &row.Registration, &row.SerialNumber, &row.SeriesID, &row.SeriesName,
			&row.EngineSeriesID, &row.EngineSeriesName, &row.OperatorID, &row.OperatorName,
			&row.ManagerID, &row.ManagerName, &category,
			&airport, &city, &country, &region, &start, &end,
		); err != nil {
			return nil, fmt.Errorf("failed to scan static aircraft: %w", err)
		}
		row.RouteCategory = models.RouteCategory(category)
		row.AirportCode = airport.String
		row.City = city.String
		row.CountryCode = country.String
		row.RegionCode = region.String
		if start.Valid && !end.Valid {
			row.OnGround = true
			row.CurrentGroundStart = models.Some(start.Time)
			if stay := now.Sub(start.Time); stay > 0 {
				row.CurrentGroundStayMinutes = int(stay / time.Minute)
			}
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// getField safely retrieves a field from a CSV record by header name
func getField(record []string, headerMap map[string]int, fieldName string) string {
	if idx, ok := headerMap[fieldName]; ok && idx < len(record) {
		return strings.Trim(strings.TrimSpace(record[idx]), "'\"")
	}
	return ""
}

func getIntField(record []string, headerMap map[string]int, fieldName string) int {
	n, err := strconv.Atoi(getField(record, headerMap, fieldName))
	if err != nil {
		return 0
	}
	return n
}
