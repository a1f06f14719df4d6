package models

import (
	"fmt"
	"strings"
)

// Period selects the time window utilization is aggregated over
type Period int

const (
	PeriodUnknown Period = iota
	PeriodLast7Days
	PeriodLast30Days
	PeriodLast3Months
	PeriodLast6Months
	PeriodLast12Months
	PeriodCustom
)

var periodNames = map[Period]string{
	PeriodLast7Days:    "last7days",
	PeriodLast30Days:   "last30days",
	PeriodLast3Months:  "last3months",
	PeriodLast6Months:  "last6months",
	PeriodLast12Months: "last12months",
	PeriodCustom:       "custom",
}

func (p Period) String() string {
	if name, ok := periodNames[p]; ok {
		return name
	}
	return fmt.Sprintf("period(%d)", int(p))
}

// IsLongWindow reports whether the period is one of the two longest relative windows
func (p Period) IsLongWindow() bool {
	return p == PeriodLast6Months || p == PeriodLast12Months
}

func (p Period) MarshalText() ([]byte, error) {
	name, ok := periodNames[p]
	if !ok {
		return nil, fmt.Errorf("unknown period: %d", int(p))
	}
	return []byte(name), nil
}

func (p *Period) UnmarshalText(text []byte) error {
	want := strings.ToLower(strings.TrimSpace(string(text)))
	for period, name := range periodNames {
		if name == want {
			*p = period
			return nil
		}
	}
	return fmt.Errorf("unknown period: %q", string(text))
}

// RouteCategory classifies the routes an aircraft is flying
type RouteCategory int

const (
	RouteDomestic RouteCategory = iota + 1
	RouteRegional
	RouteInternational
)

var routeCategoryNames = map[RouteCategory]string{
	RouteDomestic:      "domestic",
	RouteRegional:      "regional",
	RouteInternational: "international",
}

func (r RouteCategory) String() string {
	if name, ok := routeCategoryNames[r]; ok {
		return name
	}
	return fmt.Sprintf("route(%d)", int(r))
}

func (r RouteCategory) MarshalText() ([]byte, error) {
	name, ok := routeCategoryNames[r]
	if !ok {
		return nil, fmt.Errorf("unknown route category: %d", int(r))
	}
	return []byte(name), nil
}

func (r *RouteCategory) UnmarshalText(text []byte) error {
	want := strings.ToLower(strings.TrimSpace(string(text)))
	for category, name := range routeCategoryNames {
		if name == want {
			*r = category
			return nil
		}
	}
	return fmt.Errorf("unknown route category: %q", string(text))
}
