package cache

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"fleet_filter/internal/models"
)

// Mode selects which result a fingerprint addresses
type Mode int

const (
	ModeTable Mode = iota
	ModeCount
)

const segmentSeparator = "|"

var valueEscaper = strings.NewReplacer("%", "%25", "|", "%7C", ",", "%2C")

// KeyBuilder appends named, ordered segments. A segment is a short tag
// followed directly by its value, e.g. "p11" or "minF5".
type KeyBuilder struct {
	segments []string
}

// Add appends tag+value
func (b *KeyBuilder) Add(tag, value string) *KeyBuilder {
	b.segments = append(b.segments, tag+valueEscaper.Replace(value))
	return b
}

// AddInt appends tag+n only when n is set (non-zero)
func (b *KeyBuilder) AddInt(tag string, n int) *KeyBuilder {
	if n == 0 {
		return b
	}
	return b.Add(tag, strconv.Itoa(n))
}

// AddStrings appends tag plus the sorted values only when the dimension is present
func (b *KeyBuilder) AddStrings(tag string, opt models.Option[[]string]) *KeyBuilder {
	vals, ok := opt.Get()
	if !ok {
		return b
	}
	sorted := make([]string, len(vals))
	for i, v := range vals {
		sorted[i] = valueEscaper.Replace(v)
	}
	sort.Strings(sorted)
	b.segments = append(b.segments, tag+strings.Join(sorted, ","))
	return b
}

// AddInts appends tag plus the sorted ids only when the dimension is present
func (b *KeyBuilder) AddInts(tag string, opt models.Option[[]int]) *KeyBuilder {
	vals, ok := opt.Get()
	if !ok {
		return b
	}
	sorted := append([]int(nil), vals...)
	sort.Ints(sorted)
	parts := make([]string, len(sorted))
	for i, v := range sorted {
		parts[i] = strconv.Itoa(v)
	}
	b.segments = append(b.segments, tag+strings.Join(parts, ","))
	return b
}

func (b *KeyBuilder) String() string {
	return strings.Join(b.segments, segmentSeparator)
}

// BuildKey derives the fingerprint of a filtered-table or filtered-count
// request. Segment order is fixed; absent dimensions and zero bounds are
// omitted. The watermark is always last so any change to the portfolio's
// data yields new fingerprints.
func BuildKey(portfolioID int, c models.FilterCriteria, watermark time.Time, mode Mode) string {
	b := &KeyBuilder{}
	b.Add("p", strconv.Itoa(portfolioID))

	// relative periods carry bounds only once a strategy has resolved them
	b.Add("w", c.Window.Period.String())
	if from, ok := c.Window.From.Get(); ok {
		b.Add("from", formatInstant(from))
	}
	if to, ok := c.Window.To.Get(); ok {
		b.Add("to", formatInstant(to))
	}

	b.AddStrings("co", c.CountryCodes).
		AddStrings("ci", c.Cities).
		AddStrings("ap", c.AirportCodes).
		AddStrings("rg", c.RegionCodes).
		AddInts("op", c.OperatorIDs).
		AddInts("ls", c.LessorIDs).
		AddInts("srs", c.AircraftSeriesIDs).
		AddInts("eng", c.EngineSeriesIDs).
		AddInts("ac", c.AircraftIDs)

	// AOG supersedes the flight-count, total-ground-stay and maintenance steppers
	if c.AircraftOnGround {
		b.Add("aog", "1")
	} else {
		b.AddInt("minF", c.MinFlights).
			AddInt("minT", c.MinTotalGroundStay).
			AddInts("mx", c.MaintenanceActivityIDs)
	}

	b.AddInt("minI", c.MinIndividualGroundStay).
		AddInt("maxI", c.MaxIndividualGroundStay).
		AddInt("minC", c.MinCurrentGroundStay).
		AddInt("maxC", c.MaxCurrentGroundStay)

	if rc, ok := c.RouteCategory.Get(); ok {
		b.Add("rc", rc.String())
	}

	if mode == ModeCount {
		b.Add("cnt", "")
	} else {
		dir := "asc"
		if c.SortDesc {
			dir = "desc"
		}
		b.Add("sort", c.SortColumn+":"+dir).
			Add("skip", strconv.Itoa(c.Skip)).
			Add("take", strconv.Itoa(c.Take))
	}

	b.Add("wm", strconv.FormatInt(watermark.UnixNano(), 10))
	return b.String()
}

func formatInstant(t time.Time) string {
	return t.UTC().Format("20060102T150405.000000000Z")
}
