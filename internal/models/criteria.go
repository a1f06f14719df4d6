package models

import "time"

// Window is either a relative period or an explicit [From, To) range
type Window struct {
	Period Period            `json:"period"`
	From   Option[time.Time] `json:"dateFrom"`
	To     Option[time.Time] `json:"dateTo"`
}

// FilterCriteria describes one filtered-table request. Stepper bounds are in
// hours (flights for MinFlights); zero means the bound is not set.
type FilterCriteria struct {
	Window Window `json:"window"`

	RegionCodes            Option[[]string]      `json:"regionCodes"`
	CountryCodes           Option[[]string]      `json:"countryCodes"`
	Cities                 Option[[]string]      `json:"cities"`
	AirportCodes           Option[[]string]      `json:"airportCodes"`
	OperatorIDs            Option[[]int]         `json:"operatorIds"`
	LessorIDs              Option[[]int]         `json:"lessorIds"`
	AircraftSeriesIDs      Option[[]int]         `json:"aircraftSeriesIds"`
	EngineSeriesIDs        Option[[]int]         `json:"engineSeriesIds"`
	AircraftIDs            Option[[]int]         `json:"aircraftIds"`
	MaintenanceActivityIDs Option[[]int]         `json:"maintenanceActivityIds"`
	RouteCategory          Option[RouteCategory] `json:"routeCategory"`

	AircraftOnGround bool `json:"aircraftOnGround"`

	MinFlights              int `json:"minFlights"`
	MinTotalGroundStay      int `json:"minTotalGroundStay"`
	MinIndividualGroundStay int `json:"minIndividualGroundStay"`
	MaxIndividualGroundStay int `json:"maxIndividualGroundStay"`
	MinCurrentGroundStay    int `json:"minCurrentGroundStay"`
	MaxCurrentGroundStay    int `json:"maxCurrentGroundStay"`

	SortColumn string `json:"sortColumn"`
	SortDesc   bool   `json:"sortDesc"`
	Skip       int    `json:"skip"`
	Take       int    `json:"take"`
}

// Validate checks the criteria before anything is dispatched or fetched
func (c FilterCriteria) Validate() error {
	switch c.Window.Period {
	case PeriodLast7Days, PeriodLast30Days, PeriodLast3Months, PeriodLast6Months, PeriodLast12Months:
	case PeriodCustom:
		from, hasFrom := c.Window.From.Get()
		if !hasFrom {
			return &ValidationError{Field: "dateFrom", Message: "date-from required"}
		}
		to, hasTo := c.Window.To.Get()
		if !hasTo {
			return &ValidationError{Field: "dateTo", Message: "date-to required"}
		}
		if !from.Before(to) {
			return &ValidationError{Field: "dateFrom", Message: "date-from must be before date-to"}
		}
	default:
		return &ValidationError{Field: "period", Message: "unknown period"}
	}

	sets := []struct {
		field string
		size  int
		ok    bool
	}{
		{"regionCodes", len(c.RegionCodes.OrZero()), c.RegionCodes.IsSome()},
		{"countryCodes", len(c.CountryCodes.OrZero()), c.CountryCodes.IsSome()},
		{"cities", len(c.Cities.OrZero()), c.Cities.IsSome()},
		{"airportCodes", len(c.AirportCodes.OrZero()), c.AirportCodes.IsSome()},
		{"operatorIds", len(c.OperatorIDs.OrZero()), c.OperatorIDs.IsSome()},
		{"lessorIds", len(c.LessorIDs.OrZero()), c.LessorIDs.IsSome()},
		{"aircraftSeriesIds", len(c.AircraftSeriesIDs.OrZero()), c.AircraftSeriesIDs.IsSome()},
		{"engineSeriesIds", len(c.EngineSeriesIDs.OrZero()), c.EngineSeriesIDs.IsSome()},
		{"aircraftIds", len(c.AircraftIDs.OrZero()), c.AircraftIDs.IsSome()},
		{"maintenanceActivityIds", len(c.MaintenanceActivityIDs.OrZero()), c.MaintenanceActivityIDs.IsSome()},
	}
	for _, s := range sets {
		if s.ok && s.size == 0 {
			return &ValidationError{Field: s.field, Message: s.field + " must be omitted rather than empty"}
		}
	}

	steppers := map[string]int{
		"minFlights":              c.MinFlights,
		"minTotalGroundStay":      c.MinTotalGroundStay,
		"minIndividualGroundStay": c.MinIndividualGroundStay,
		"maxIndividualGroundStay": c.MaxIndividualGroundStay,
		"minCurrentGroundStay":    c.MinCurrentGroundStay,
		"maxCurrentGroundStay":    c.MaxCurrentGroundStay,
		"skip":                    c.Skip,
		"take":                    c.Take,
	}
	for field, v := range steppers {
		if v < 0 {
			return &ValidationError{Field: field, Message: field + " must not be negative"}
		}
	}

	return nil
}

// HasGeography reports whether any geographic dimension is present
func (c FilterCriteria) HasGeography() bool {
	return c.RegionCodes.IsSome() || c.CountryCodes.IsSome() || c.Cities.IsSome() || c.AirportCodes.IsSome()
}

// HasSteppers reports whether at least one stepper bound is set
func (c FilterCriteria) HasSteppers() bool {
	return c.MinFlights > 0 || c.MinTotalGroundStay > 0 ||
		c.MinIndividualGroundStay > 0 || c.MaxIndividualGroundStay > 0 ||
		c.MinCurrentGroundStay > 0 || c.MaxCurrentGroundStay > 0
}

// HasActiveFilters reports whether any non-window filter dimension is present.
// Geographic filter values are only resolved when this is true.
func (c FilterCriteria) HasActiveFilters() bool {
	return c.HasGeography() ||
		c.OperatorIDs.IsSome() || c.LessorIDs.IsSome() ||
		c.AircraftSeriesIDs.IsSome() || c.EngineSeriesIDs.IsSome() ||
		c.AircraftIDs.IsSome() || c.MaintenanceActivityIDs.IsSome() ||
		c.RouteCategory.IsSome() || c.AircraftOnGround || c.HasSteppers()
}

// Normalized drops the dimensions that "aircraft on ground only" supersedes
// and explicit bounds sent with a relative period, so the fingerprint and the
// filtering always see the same criteria.
func (c FilterCriteria) Normalized() FilterCriteria {
	if c.Window.Period != PeriodCustom {
		c.Window.From = None[time.Time]()
		c.Window.To = None[time.Time]()
	}
	if !c.AircraftOnGround {
		return c
	}
	c.MinFlights = 0
	c.MinTotalGroundStay = 0
	c.MaintenanceActivityIDs = None[[]int]()
	return c
}
