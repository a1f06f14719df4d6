package models

import "time"

// AircraftRow holds the static attributes of one tracked aircraft as of fetch time
type AircraftRow struct {
	AircraftID         int               `json:"aircraftId"`
	Registration       string            `json:"registration"`
	SerialNumber       string            `json:"serialNumber"`
	SeriesID           int               `json:"seriesId"`
	SeriesName         string            `json:"seriesName"`
	EngineSeriesID     int               `json:"engineSeriesId"`
	EngineSeriesName   string            `json:"engineSeriesName"`
	OperatorID         int               `json:"operatorId"`
	OperatorName       string            `json:"operatorName"`
	ManagerID          int               `json:"managerId"` // lessor
	ManagerName        string            `json:"managerName"`
	RegionCode         string            `json:"regionCode"`
	CountryCode        string            `json:"countryCode"`
	City               string            `json:"city"`
	AirportCode        string            `json:"airportCode"` // current ground event location
	RouteCategory      RouteCategory     `json:"routeCategory"`
	OnGround           bool              `json:"onGround"`
	CurrentGroundStart Option[time.Time] `json:"currentGroundStart"`
	// CurrentGroundStayMinutes is zero when the aircraft has no open ground event
	CurrentGroundStayMinutes int `json:"currentGroundStayMinutes"`
}

// UtilizationRow aggregates one aircraft's activity over the selected window
type UtilizationRow struct {
	AircraftID               int    `json:"aircraftId"`
	Flights                  int    `json:"flights"`
	FlightMinutes            int    `json:"flightMinutes"`
	TotalGroundStayMinutes   int    `json:"totalGroundStayMinutes"`
	IndividualGroundStayHits int    `json:"individualGroundStayHits"`
	MaintenanceActivityIDs   string `json:"maintenanceActivityIds"` // raw, e.g. "[3,7,3]"
}

// MergedRow is an AircraftRow joined with its UtilizationRow, if any
type MergedRow struct {
	AircraftRow
	CurrentGroundStayHours   float64         `json:"currentGroundStayHours"`
	Flights                  Option[int]     `json:"flights"`
	FlightHours              Option[float64] `json:"flightHours"`
	TotalGroundStayHours     Option[float64] `json:"totalGroundStayHours"`
	IndividualGroundStayHits Option[int]     `json:"individualGroundStayHits"`
	MaintenanceActivityIDs   string          `json:"-"`
	MaintenanceActivities    string          `json:"maintenanceActivities"`
	HasUtilization           bool            `json:"-"`
}

// GeographicFilterValues is the resolved geography allowed by one request.
// An empty sub-list means that sub-check is not applied.
type GeographicFilterValues struct {
	Regions   []string
	Countries []string
	Cities    []string
	Airports  []string
}

// MaintenanceActivity maps a maintenance-activity id to its display name
type MaintenanceActivity struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Portfolio is a named set of tracked aircraft
type Portfolio struct {
	ID           int
	Name         string
	OwnerID      string
	Members      []string
	Archived     bool
	LastModified time.Time
}

// TableResult is returned by the filtered table operation
type TableResult struct {
	Rows []MergedRow `json:"rows"`
}

// CountResult is returned by the filtered count operation
type CountResult struct {
	Count int `json:"count"`
}
