package cache

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"fleet_filter/internal/models"
)

var watermark = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func baseCriteria() models.FilterCriteria {
	return models.FilterCriteria{
		Window:       models.Window{Period: models.PeriodLast30Days},
		RegionCodes:  models.Some([]string{"EU"}),
		CountryCodes: models.Some([]string{"DE", "FR"}),
		OperatorIDs:  models.Some([]int{3}),
		MinFlights:   5,
		SortColumn:   "registration",
		Take:         50,
	}
}

func segments(key string) []string {
	return strings.Split(key, segmentSeparator)
}

func TestBuildKey_Deterministic(t *testing.T) {
	c := baseCriteria()
	assert.Equal(t, BuildKey(1, c, watermark, ModeTable), BuildKey(1, c, watermark, ModeTable))
	assert.Equal(t, BuildKey(1, c, watermark, ModeCount), BuildKey(1, c, watermark, ModeCount))
}

func TestBuildKey_EveryDimensionChangesKey(t *testing.T) {
	base := BuildKey(1, baseCriteria(), watermark, ModeTable)

	changes := map[string]func(c *models.FilterCriteria){
		"period":        func(c *models.FilterCriteria) { c.Window.Period = models.PeriodLast7Days },
		"countries":     func(c *models.FilterCriteria) { c.CountryCodes = models.Some([]string{"DE"}) },
		"cities":        func(c *models.FilterCriteria) { c.Cities = models.Some([]string{"Dublin"}) },
		"airports":      func(c *models.FilterCriteria) { c.AirportCodes = models.Some([]string{"EIDW"}) },
		"regions":       func(c *models.FilterCriteria) { c.RegionCodes = models.Some([]string{"NA"}) },
		"operators":     func(c *models.FilterCriteria) { c.OperatorIDs = models.Some([]int{4}) },
		"lessors":       func(c *models.FilterCriteria) { c.LessorIDs = models.Some([]int{1}) },
		"series":        func(c *models.FilterCriteria) { c.AircraftSeriesIDs = models.Some([]int{1}) },
		"engines":       func(c *models.FilterCriteria) { c.EngineSeriesIDs = models.Some([]int{1}) },
		"aircraft":      func(c *models.FilterCriteria) { c.AircraftIDs = models.Some([]int{1}) },
		"aog":           func(c *models.FilterCriteria) { c.AircraftOnGround = true },
		"minFlights":    func(c *models.FilterCriteria) { c.MinFlights = 6 },
		"minTotal":      func(c *models.FilterCriteria) { c.MinTotalGroundStay = 2 },
		"maintenance":   func(c *models.FilterCriteria) { c.MaintenanceActivityIDs = models.Some([]int{8}) },
		"minIndividual": func(c *models.FilterCriteria) { c.MinIndividualGroundStay = 1 },
		"maxIndividual": func(c *models.FilterCriteria) { c.MaxIndividualGroundStay = 1 },
		"minCurrent":    func(c *models.FilterCriteria) { c.MinCurrentGroundStay = 1 },
		"maxCurrent":    func(c *models.FilterCriteria) { c.MaxCurrentGroundStay = 1 },
		"route":         func(c *models.FilterCriteria) { c.RouteCategory = models.Some(models.RouteDomestic) },
		"sortColumn":    func(c *models.FilterCriteria) { c.SortColumn = "operator" },
		"sortDesc":      func(c *models.FilterCriteria) { c.SortDesc = true },
		"skip":          func(c *models.FilterCriteria) { c.Skip = 50 },
		"take":          func(c *models.FilterCriteria) { c.Take = 25 },
	}

	for name, change := range changes {
		t.Run(name, func(t *testing.T) {
			c := baseCriteria()
			change(&c)
			assert.NotEqual(t, base, BuildKey(1, c, watermark, ModeTable))
		})
	}

	assert.NotEqual(t, base, BuildKey(2, baseCriteria(), watermark, ModeTable))
}

func TestBuildKey_CountModeIgnoresPagination(t *testing.T) {
	a := baseCriteria()
	b := baseCriteria()
	b.Skip, b.Take, b.SortColumn, b.SortDesc = 100, 10, "flights", true

	assert.Equal(t, BuildKey(1, a, watermark, ModeCount), BuildKey(1, b, watermark, ModeCount))
	assert.NotEqual(t, BuildKey(1, a, watermark, ModeTable), BuildKey(1, b, watermark, ModeTable))
	assert.NotEqual(t, BuildKey(1, a, watermark, ModeTable), BuildKey(1, a, watermark, ModeCount))

	for _, seg := range segments(BuildKey(1, b, watermark, ModeCount)) {
		assert.False(t, strings.HasPrefix(seg, "skip"))
		assert.False(t, strings.HasPrefix(seg, "take"))
		assert.False(t, strings.HasPrefix(seg, "sort"))
	}
}

func TestBuildKey_WatermarkSensitivity(t *testing.T) {
	c := baseCriteria()
	assert.NotEqual(t,
		BuildKey(1, c, watermark, ModeTable),
		BuildKey(1, c, watermark.Add(time.Second), ModeTable))
	assert.NotEqual(t,
		BuildKey(1, c, watermark, ModeCount),
		BuildKey(1, c, watermark.Add(time.Nanosecond), ModeCount))
}

func TestBuildKey_ZeroBoundsOmitted(t *testing.T) {
	c := models.FilterCriteria{
		Window:                  models.Window{Period: models.PeriodLast7Days},
		MinFlights:              5,
		MinIndividualGroundStay: 0,
	}

	segs := segments(BuildKey(11, c, watermark, ModeTable))
	assert.Equal(t, "p11", segs[0])
	assert.Contains(t, segs, "minF5")
	for _, seg := range segs {
		assert.False(t, strings.HasPrefix(seg, "minI"), seg)
	}
	assert.True(t, strings.HasPrefix(segs[len(segs)-1], "wm"))
}

func TestBuildKey_AircraftOnGroundExcludesStepperGroup(t *testing.T) {
	c := baseCriteria()
	c.MaintenanceActivityIDs = models.Some([]int{4})
	c.AircraftOnGround = true

	segs := segments(BuildKey(1, c, watermark, ModeTable))
	assert.Contains(t, segs, "aog1")
	for _, seg := range segs {
		assert.False(t, strings.HasPrefix(seg, "minF"), seg)
		assert.False(t, strings.HasPrefix(seg, "mx"), seg)
	}
}

func TestBuildKey_CanonicalOrder(t *testing.T) {
	c := baseCriteria()
	c.AirportCodes = models.Some([]string{"EGLL"})
	c.MaxCurrentGroundStay = 10

	key := BuildKey(1, c, watermark, ModeTable)
	order := []string{"p1", "wlast30days", "coDE,FR", "apEGLL", "rgEU", "op3", "minF5", "maxC10", "sortregistration:asc"}
	last := -1
	for _, seg := range order {
		idx := strings.Index(key, seg)
		assert.Greater(t, idx, last, seg)
		last = idx
	}
}

func TestBuildKey_ValueOrderAndEscaping(t *testing.T) {
	a := baseCriteria()
	b := baseCriteria()
	b.CountryCodes = models.Some([]string{"FR", "DE"})
	assert.Equal(t, BuildKey(1, a, watermark, ModeTable), BuildKey(1, b, watermark, ModeTable))

	x := baseCriteria()
	x.Cities = models.Some([]string{"A,B"})
	y := baseCriteria()
	y.Cities = models.Some([]string{"A", "B"})
	assert.NotEqual(t, BuildKey(1, x, watermark, ModeTable), BuildKey(1, y, watermark, ModeTable))
}

func TestBuildKey_CustomWindowBounds(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	c := models.FilterCriteria{Window: models.Window{
		Period: models.PeriodCustom, From: models.Some(from), To: models.Some(to),
	}}

	base := BuildKey(1, c, watermark, ModeTable)
	c.Window.To = models.Some(to.AddDate(0, 0, 1))
	assert.NotEqual(t, base, BuildKey(1, c, watermark, ModeTable))
}

func TestBuildKey_ResolvedBoundsOfRelativePeriod(t *testing.T) {
	today := time.Date(2024, 5, 16, 0, 0, 0, 0, time.UTC)
	c := models.FilterCriteria{Window: models.Window{
		Period: models.PeriodLast7Days, From: models.Some(today.AddDate(0, 0, -7)), To: models.Some(today),
	}}
	base := BuildKey(1, c, watermark, ModeTable)
	assert.Contains(t, segments(base), "wlast7days")

	c.Window.From = models.Some(today.AddDate(0, 0, -6))
	c.Window.To = models.Some(today.AddDate(0, 0, 1))
	assert.NotEqual(t, base, BuildKey(1, c, watermark, ModeTable))
}
