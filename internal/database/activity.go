package database

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"fleet_filter/internal/models"
)

// Flight is one completed flight
type Flight struct {
	AircraftID int
	Departure  time.Time
	Arrival    time.Time
}

// GroundEvent is one stay on the ground; End is zero while the aircraft is still there
type GroundEvent struct {
	AircraftID             int
	AirportICAO            string
	Start                  time.Time
	End                    time.Time
	MaintenanceActivityIDs []int
}

type ActivityRepository interface {
	InsertFlights(ctx context.Context, flights []Flight) error
	InsertGroundEvents(ctx context.Context, events []GroundEvent) error
	Utilization(ctx context.Context, portfolioID int, from, to time.Time, c models.FilterCriteria) ([]models.UtilizationRow, error)
}

type activityRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewActivityRepository(db *sql.DB) ActivityRepository {
	return &activityRepository{db: db, now: time.Now}
}

// NewActivityRepositoryWithClock creates a repository that closes open ground
// events at the given clock when aggregating
func NewActivityRepositoryWithClock(db *sql.DB, now func() time.Time) ActivityRepository {
	return &activityRepository{db: db, now: now}
}

// InsertFlights stores flights and moves the watermark of affected portfolios
func (r *activityRepository) InsertFlights(ctx context.Context, flights []Flight) error {
	if len(flights) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO flights (aircraft_id, departure_time, arrival_time) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	ids := make([]int, 0, len(flights))
	for _, f := range flights {
		if _, err := stmt.ExecContext(ctx, f.AircraftID, f.Departure.UTC(), f.Arrival.UTC()); err != nil {
			return fmt.Errorf("failed to insert flight: %w", err)
		}
		ids = append(ids, f.AircraftID)
	}

	if err := touchAircraftPortfolios(ctx, tx, r.now(), ids...); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// InsertGroundEvents stores ground events and moves the watermark of affected portfolios
func (r *activityRepository) InsertGroundEvents(ctx context.Context, events []GroundEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO ground_events (
		aircraft_id, airport_icao, start_time, end_time, maintenance_activity_ids
	) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	ids := make([]int, 0, len(events))
	for _, e := range events {
		var end any
		if !e.End.IsZero() {
			end = e.End.UTC()
		}
		activities := ""
		if len(e.MaintenanceActivityIDs) > 0 {
			activities = models.FormatActivityIDs(e.MaintenanceActivityIDs)
		}
		if _, err := stmt.ExecContext(ctx,
			e.AircraftID, strings.ToUpper(e.AirportICAO), e.Start.UTC(), end, activities,
		); err != nil {
			return fmt.Errorf("failed to insert ground event: %w", err)
		}
		ids = append(ids, e.AircraftID)
	}

	if err := touchAircraftPortfolios(ctx, tx, r.now(), ids...); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Utilization aggregates flights and ground events of the portfolio's
// aircraft over [from, to). When geography is requested only ground events at
// matching airports count, and only aircraft with such an event get a row.
// When maintenance activities are requested only aircraft with a ground event
// carrying one of them get a row.
func (r *activityRepository) Utilization(ctx context.Context, portfolioID int, from, to time.Time, c models.FilterCriteria) ([]models.UtilizationRow, error) {
	byAircraft := make(map[int]*models.UtilizationRow)
	row := func(id int) *models.UtilizationRow {
		u, ok := byAircraft[id]
		if !ok {
			u = &models.UtilizationRow{AircraftID: id}
			byAircraft[id] = u
		}
		return u
	}

	flights, err := r.db.QueryContext(ctx, `SELECT f.aircraft_id, f.departure_time, f.arrival_time
		FROM flights f
		JOIN portfolio_aircraft pa ON pa.aircraft_id = f.aircraft_id AND pa.portfolio_id = ?
		WHERE f.departure_time >= ? AND f.departure_time < ?`,
		portfolioID, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query flights: %w", err)
	}
	defer flights.Close()

	for flights.Next() {
		var f Flight
		if err := flights.Scan(&f.AircraftID, &f.Departure, &f.Arrival); err != nil {
			return nil, fmt.Errorf("failed to scan flight: %w", err)
		}
		u := row(f.AircraftID)
		u.Flights++
		if d := f.Arrival.Sub(f.Departure); d > 0 {
			u.FlightMinutes += int(d / time.Minute)
		}
	}
	if err := flights.Err(); err != nil {
		return nil, fmt.Errorf("failed to read flights: %w", err)
	}

	events, err := r.groundEvents(ctx, portfolioID, from, to, c)
	if err != nil {
		return nil, err
	}

	now := r.now()
	windowEnd := to
	if now.Before(windowEnd) {
		windowEnd = now
	}

	requested := map[int]bool{}
	for _, id := range c.MaintenanceActivityIDs.OrZero() {
		requested[id] = true
	}
	matchedGeo := map[int]bool{}
	matchedMaintenance := map[int]bool{}
	activityIDs := map[int][]int{}

	for _, e := range events {
		u := row(e.AircraftID)
		matchedGeo[e.AircraftID] = true

		end := e.End
		if end.IsZero() {
			end = now
		}
		clippedStart, clippedEnd := e.Start, end
		if clippedStart.Before(from) {
			clippedStart = from
		}
		if clippedEnd.After(windowEnd) {
			clippedEnd = windowEnd
		}
		if d := clippedEnd.Sub(clippedStart); d > 0 {
			u.TotalGroundStayMinutes += int(d / time.Minute)
		}

		if inIndividualBand(end.Sub(e.Start), c) {
			u.IndividualGroundStayHits++
		}

		for _, id := range e.MaintenanceActivityIDs {
			activityIDs[e.AircraftID] = append(activityIDs[e.AircraftID], id)
			if requested[id] {
				matchedMaintenance[e.AircraftID] = true
			}
		}
	}

	result := make([]models.UtilizationRow, 0, len(byAircraft))
	for id, u := range byAircraft {
		if c.HasGeography() && !matchedGeo[id] {
			continue
		}
		if c.MaintenanceActivityIDs.IsSome() && !matchedMaintenance[id] {
			continue
		}
		if ids := activityIDs[id]; len(ids) > 0 {
			u.MaintenanceActivityIDs = models.FormatActivityIDs(ids)
		}
		result = append(result, *u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].AircraftID < result[j].AircraftID })
	return result, nil
}

// inIndividualBand reports whether a stay falls in the requested
// individual-ground-stay band; it never matches when no band is requested
func inIndividualBand(stay time.Duration, c models.FilterCriteria) bool {
	if c.MinIndividualGroundStay == 0 && c.MaxIndividualGroundStay == 0 {
		return false
	}
	if stay < time.Duration(c.MinIndividualGroundStay)*time.Hour {
		return false
	}
	if c.MaxIndividualGroundStay > 0 && stay > time.Duration(c.MaxIndividualGroundStay)*time.Hour {
		return false
	}
	return true
}

// groundEvents returns the portfolio's ground events overlapping [from, to),
// restricted to the requested geography
func (r *activityRepository) groundEvents(ctx context.Context, portfolioID int, from, to time.Time, c models.FilterCriteria) ([]GroundEvent, error) {
	query := `SELECT ge.aircraft_id, ge.airport_icao, ge.start_time, ge.end_time, ge.maintenance_activity_ids
		FROM ground_events ge
		JOIN portfolio_aircraft pa ON pa.aircraft_id = ge.aircraft_id AND pa.portfolio_id = ?
		LEFT JOIN airports ap ON ap.icao = ge.airport_icao
		WHERE ge.start_time < ? AND (ge.end_time IS NULL OR ge.end_time > ?)`
	args := []any{portfolioID, to.UTC(), from.UTC()}

	geo := []struct {
		column string
		values models.Option[[]string]
	}{
		{"UPPER(ap.region_code)", c.RegionCodes},
		{"UPPER(ap.country_code)", c.CountryCodes},
		{"UPPER(ap.city)", c.Cities},
	}
	for _, g := range geo {
		if values, ok := g.values.Get(); ok {
			clause, clauseArgs := inClause(g.column, upper(values))
			query += " AND " + clause
			args = append(args, clauseArgs...)
		}
	}
	if codes, ok := c.AirportCodes.Get(); ok {
		icao, icaoArgs := inClause("ge.airport_icao", upper(codes))
		iata, iataArgs := inClause("UPPER(ap.iata)", upper(codes))
		query += " AND (" + icao + " OR " + iata + ")"
		args = append(args, icaoArgs...)
		args = append(args, iataArgs...)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ground events: %w", err)
	}
	defer rows.Close()

	var events []GroundEvent
	for rows.Next() {
		var (
			e          GroundEvent
			end        sql.NullTime
			activities string
		)
		if err := rows.Scan(&e.AircraftID, &e.AirportICAO, &e.Start, &end, &activities); err != nil {
			return nil, fmt.Errorf("failed to scan ground event: %w", err)
		}
		if end.Valid {
			e.End = end.Time
		}
		e.MaintenanceActivityIDs = models.ParseActivityIDs(activities)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ground events: %w", err)
	}
	return events, nil
}
