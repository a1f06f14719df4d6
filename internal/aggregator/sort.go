package aggregator

import (
	"sort"
	"strings"

	"fleet_filter/internal/models"
)

// DefaultSortColumn is used when the request names no sort column
const DefaultSortColumn = "registration"

var sortKeys = map[string]func(a, b models.MergedRow) int{
	"registration": func(a, b models.MergedRow) int { return strings.Compare(a.Registration, b.Registration) },
	"serial":       func(a, b models.MergedRow) int { return strings.Compare(a.SerialNumber, b.SerialNumber) },
	"operator":     func(a, b models.MergedRow) int { return strings.Compare(a.OperatorName, b.OperatorName) },
	"lessor":       func(a, b models.MergedRow) int { return strings.Compare(a.ManagerName, b.ManagerName) },
	"series":       func(a, b models.MergedRow) int { return strings.Compare(a.SeriesName, b.SeriesName) },
	"flights":      func(a, b models.MergedRow) int { return compareInt(a.Flights.OrZero(), b.Flights.OrZero()) },
	"flightHours": func(a, b models.MergedRow) int {
		return compareFloat(a.FlightHours.OrZero(), b.FlightHours.OrZero())
	},
	"groundStay": func(a, b models.MergedRow) int {
		return compareFloat(a.TotalGroundStayHours.OrZero(), b.TotalGroundStayHours.OrZero())
	},
	"currentGroundStay": func(a, b models.MergedRow) int {
		return compareInt(a.CurrentGroundStayMinutes, b.CurrentGroundStayMinutes)
	},
}

// Sort orders rows by the requested column, breaking ties by aircraft id.
// Unknown columns fall back to registration.
func Sort(rows []models.MergedRow, column string, desc bool) {
	cmp, ok := sortKeys[column]
	if !ok {
		cmp = sortKeys[DefaultSortColumn]
	}
	sort.SliceStable(rows, func(i, j int) bool {
		c := cmp(rows[i], rows[j])
		if desc {
			c = -c
		}
		if c == 0 {
			return rows[i].AircraftID < rows[j].AircraftID
		}
		return c < 0
	})
}

// Page returns rows[skip:skip+take]; take 0 means no limit
func Page(rows []models.MergedRow, skip, take int) []models.MergedRow {
	if skip >= len(rows) {
		return []models.MergedRow{}
	}
	rows = rows[skip:]
	if take > 0 && take < len(rows) {
		rows = rows[:take]
	}
	return rows
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
