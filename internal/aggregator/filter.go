package aggregator

import (
	"strings"

	"fleet_filter/internal/models"
)

// Filter merges static rows with their utilization and applies, in order,
// the row-removal rules, the stepper filter and the long-window exclusion.
func Filter(static []models.AircraftRow, utilization []models.UtilizationRow, geo models.Option[models.GeographicFilterValues], c models.FilterCriteria) []models.MergedRow {
	byAircraft := make(map[int]models.UtilizationRow, len(utilization))
	for _, u := range utilization {
		if _, dup := byAircraft[u.AircraftID]; !dup {
			byAircraft[u.AircraftID] = u
		}
	}

	rows := make([]models.MergedRow, 0, len(static))
	for _, ac := range static {
		u, ok := byAircraft[ac.AircraftID]
		var up *models.UtilizationRow
		if ok {
			up = &u
		}
		row := Merge(ac, up)
		if ShouldRemove(row, geo, c) {
			continue
		}
		rows = append(rows, row)
	}

	rows = FilterBySteppers(rows, c)

	if c.Window.Period.IsLongWindow() && (c.AircraftOnGround || c.MaintenanceActivityIDs.IsSome()) {
		kept := rows[:0]
		for _, row := range rows {
			if row.HasUtilization {
				kept = append(kept, row)
			}
		}
		rows = kept
	}

	return rows
}

// Merge joins a static row with its utilization row, which may be nil
func Merge(ac models.AircraftRow, u *models.UtilizationRow) models.MergedRow {
	row := models.MergedRow{
		AircraftRow:            ac,
		CurrentGroundStayHours: float64(ac.CurrentGroundStayMinutes) / 60,
	}
	if u == nil {
		return row
	}
	row.HasUtilization = true
	row.Flights = models.Some(u.Flights)
	row.FlightHours = models.Some(float64(u.FlightMinutes) / 60)
	row.TotalGroundStayHours = models.Some(float64(u.TotalGroundStayMinutes) / 60)
	row.IndividualGroundStayHits = models.Some(u.IndividualGroundStayHits)
	row.MaintenanceActivityIDs = u.MaintenanceActivityIDs
	return row
}

// ShouldRemove decides whether a merged row leaves the result. First match wins:
//  1. geography mismatch while only aircraft on ground are requested
//  2. no utilization and no active filter: keep
//  3. no utilization: remove on current-ground-stay, route or geography mismatch
//  4. keep
func ShouldRemove(row models.MergedRow, geo models.Option[models.GeographicFilterValues], c models.FilterCriteria) bool {
	values, hasGeo := geo.Get()
	matchesGeo := !hasGeo || MatchesGeography(row.AircraftRow, values)

	if !matchesGeo && c.AircraftOnGround {
		return true
	}
	if row.HasUtilization || !hasGeo {
		return false
	}

	if row.CurrentGroundStayMinutes < c.MinCurrentGroundStay*60 {
		return true
	}
	if rc, ok := c.RouteCategory.Get(); ok && row.RouteCategory != rc {
		return true
	}
	return !matchesGeo
}

// MatchesGeography applies each non-empty sub-list of values to the row
func MatchesGeography(ac models.AircraftRow, values models.GeographicFilterValues) bool {
	return within(values.Regions, ac.RegionCode) &&
		within(values.Countries, ac.CountryCode) &&
		within(values.Cities, ac.City) &&
		within(values.Airports, ac.AirportCode)
}

func within(allowed []string, v string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if strings.EqualFold(a, v) {
			return true
		}
	}
	return false
}

// FilterBySteppers applies the numeric bounds. A current-ground-stay bound
// takes precedence over every other stepper; otherwise a row is kept when
// any of flights, total ground stay or the individual-ground-stay band matches.
func FilterBySteppers(rows []models.MergedRow, c models.FilterCriteria) []models.MergedRow {
	if !c.HasSteppers() {
		return rows
	}
	kept := rows[:0]
	for _, row := range rows {
		if keepBySteppers(row, c) {
			kept = append(kept, row)
		}
	}
	return kept
}

func keepBySteppers(row models.MergedRow, c models.FilterCriteria) bool {
	current := row.CurrentGroundStayMinutes
	minCurrent := c.MinCurrentGroundStay * 60
	maxCurrent := c.MaxCurrentGroundStay * 60

	switch {
	case c.MinCurrentGroundStay > 0 && c.MaxCurrentGroundStay > 0:
		return current >= minCurrent && current <= maxCurrent
	case c.MinCurrentGroundStay > 0:
		return current >= minCurrent
	case c.MaxCurrentGroundStay > 0:
		return current <= maxCurrent
	}

	if c.MinFlights > 0 && row.Flights.OrZero() >= c.MinFlights {
		return true
	}
	if c.MinTotalGroundStay > 0 && row.TotalGroundStayHours.OrZero() >= float64(c.MinTotalGroundStay) {
		return true
	}
	return row.IndividualGroundStayHits.OrZero() > 0
}
