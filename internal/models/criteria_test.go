package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_CustomWindowRequiresBothBounds(t *testing.T) {
	to := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	c := FilterCriteria{Window: Window{Period: PeriodCustom, To: Some(to)}}
	err := c.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "date-from required", verr.Message)

	c = FilterCriteria{Window: Window{Period: PeriodCustom, From: Some(to.AddDate(0, -1, 0))}}
	require.True(t, errors.As(c.Validate(), &verr))
	assert.Equal(t, "date-to required", verr.Message)

	c = FilterCriteria{Window: Window{Period: PeriodCustom, From: Some(to), To: Some(to)}}
	assert.ErrorIs(t, c.Validate(), ErrValidation)

	c = FilterCriteria{Window: Window{Period: PeriodCustom, From: Some(to.AddDate(0, -1, 0)), To: Some(to)}}
	assert.NoError(t, c.Validate())
}

func TestValidate_RejectsEmptyPresentSet(t *testing.T) {
	c := FilterCriteria{
		Window:      Window{Period: PeriodLast7Days},
		OperatorIDs: Some([]int{}),
	}
	var verr *ValidationError
	require.True(t, errors.As(c.Validate(), &verr))
	assert.Equal(t, "operatorIds", verr.Field)
}

func TestValidate_UnknownPeriodAndNegativeBounds(t *testing.T) {
	assert.ErrorIs(t, FilterCriteria{}.Validate(), ErrValidation)

	c := FilterCriteria{Window: Window{Period: PeriodLast30Days}, MinFlights: -1}
	assert.ErrorIs(t, c.Validate(), ErrValidation)
}

func TestOption(t *testing.T) {
	assert.False(t, None[[]string]().IsSome())

	v, ok := Some([]string{"EU", "NA"}).Get()
	assert.True(t, ok)
	assert.Equal(t, []string{"EU", "NA"}, v)
}

func TestNormalized_RelativePeriodDropsExplicitBounds(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	c := FilterCriteria{Window: Window{Period: PeriodLast30Days, From: Some(from), To: Some(to)}}
	n := c.Normalized()
	assert.False(t, n.Window.From.IsSome())
	assert.False(t, n.Window.To.IsSome())

	c.Window.Period = PeriodCustom
	assert.Equal(t, c, c.Normalized())
}

func TestHasActiveFilters(t *testing.T) {
	c := FilterCriteria{Window: Window{Period: PeriodLast7Days}}
	assert.False(t, c.HasActiveFilters())

	c.MinFlights = 5
	assert.True(t, c.HasActiveFilters())

	c = FilterCriteria{Window: Window{Period: PeriodLast7Days}, LessorIDs: Some([]int{4})}
	assert.True(t, c.HasActiveFilters())

	c = FilterCriteria{Window: Window{Period: PeriodLast7Days}, AircraftOnGround: true}
	assert.True(t, c.HasActiveFilters())
}

func TestNormalized_AircraftOnGroundSupersedesSteppers(t *testing.T) {
	c := FilterCriteria{
		Window:                  Window{Period: PeriodLast7Days},
		AircraftOnGround:        true,
		MinFlights:              3,
		MinTotalGroundStay:      10,
		MaintenanceActivityIDs:  Some([]int{1, 2}),
		MinIndividualGroundStay: 4,
	}

	n := c.Normalized()
	assert.Zero(t, n.MinFlights)
	assert.Zero(t, n.MinTotalGroundStay)
	assert.False(t, n.MaintenanceActivityIDs.IsSome())
	assert.Equal(t, 4, n.MinIndividualGroundStay)

	c.AircraftOnGround = false
	assert.Equal(t, c, c.Normalized())
}

func TestFilterCriteria_JSON(t *testing.T) {
	raw := `{
		"window": {"period": "custom", "dateFrom": "2024-01-01T00:00:00Z", "dateTo": null},
		"regionCodes": ["EU"],
		"lessorIds": [7, 9],
		"routeCategory": "international",
		"minFlights": 5
	}`

	var c FilterCriteria
	require.NoError(t, json.Unmarshal([]byte(raw), &c))

	assert.Equal(t, PeriodCustom, c.Window.Period)
	assert.True(t, c.Window.From.IsSome())
	assert.False(t, c.Window.To.IsSome())
	assert.Equal(t, []string{"EU"}, c.RegionCodes.OrZero())
	assert.Equal(t, []int{7, 9}, c.LessorIDs.OrZero())
	assert.False(t, c.OperatorIDs.IsSome())
	assert.Equal(t, RouteInternational, c.RouteCategory.OrZero())
	assert.Equal(t, 5, c.MinFlights)

	var verr *ValidationError
	require.True(t, errors.As(c.Validate(), &verr))
	assert.Equal(t, "date-to required", verr.Message)
}

func TestPeriod_Text(t *testing.T) {
	var p Period
	require.NoError(t, p.UnmarshalText([]byte("Last12Months")))
	assert.Equal(t, PeriodLast12Months, p)
	assert.True(t, p.IsLongWindow())
	assert.False(t, PeriodLast3Months.IsLongWindow())

	assert.Error(t, p.UnmarshalText([]byte("fortnight")))
}

func TestParseActivityIDs(t *testing.T) {
	assert.Equal(t, []int{3, 7, 12}, ParseActivityIDs("[3, 7,3][12]"))
	assert.Equal(t, []int{5}, ParseActivityIDs("x,5,,"))
	assert.Empty(t, ParseActivityIDs(""))
	assert.Equal(t, "[1,2]", FormatActivityIDs([]int{1, 2}))
}
