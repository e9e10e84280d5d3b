package region

import (
	"math"
	"strings"
	"time"
)

// Strategy records which rule produced a resolution. Exposed for logging and
// metrics only; callers must not branch on it.
type Strategy string

const (
	StrategyExact   Strategy = "exact"
	StrategyPrefix  Strategy = "prefix"
	StrategyOffset  Strategy = "offset"
	StrategyDefault Strategy = "default"
)

func (s Strategy) String() string { return string(s) }

// exactRegions overrides the coarser rules for a handful of high-traffic
// identifiers clustered around the east coast.
var exactRegions = map[string]Region{
	"America/New_York": USEast1,
	"America/Detroit":  USEast1,
	"America/Toronto":  USEast1,
	"America/Montreal": USEast1,
	"America/Boston":   USEast1,
	"America/Chicago":  USEast1,
}

// prefixRegions maps the leading path segment of a timezone identifier
// (the text before the first slash) to a region.
var prefixRegions = map[string]Region{
	"America":   USWest2,
	"US":        USWest2,
	"Canada":    USWest2,
	"Europe":    EUCentral1,
	"Africa":    EUCentral1,
	"Asia":      APSoutheast1,
	"Australia": APSoutheast1,
	"Pacific":   APSoutheast1,
}

// offsetBand binds an inclusive range of whole-hour UTC offsets to a region.
type offsetBand struct {
	min, max int
	region   Region
}

// offsetBands jointly cover every whole-hour offset in -24..+24 with no gaps
// or overlaps. Band edges (-4/-3 and 4/5) are load-bearing; tests pin them.
var offsetBands = []offsetBand{
	{min: -24, max: -4, region: USWest2},
	{min: -3, max: 4, region: EUCentral1},
	{min: 5, max: 24, region: APSoutheast1},
}

// Resolve maps a client-supplied timezone identifier to a region.
// It never fails: unknown, malformed, or empty input yields DefaultRegion.
func Resolve(timezone string) Region {
	r, _ := ResolveWithStrategy(timezone)
	return r
}

// ResolveWithStrategy is Resolve plus the strategy that matched, so callers
// can count how traffic is being routed.
func ResolveWithStrategy(timezone string) (Region, Strategy) {
	if timezone == "" {
		return DefaultRegion, StrategyDefault
	}
	if r, ok := exactRegions[timezone]; ok {
		return r, StrategyExact
	}
	prefix, _, _ := strings.Cut(timezone, "/")
	if r, ok := prefixRegions[prefix]; ok {
		return r, StrategyPrefix
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return DefaultRegion, StrategyDefault
	}
	if r, ok := regionForOffset(currentOffsetHours(loc)); ok {
		return r, StrategyOffset
	}
	// Unreachable while the bands cover -24..+24, kept as a guard.
	return DefaultRegion, StrategyDefault
}

// currentOffsetHours returns the zone's offset from UTC at the current
// instant, rounded to the nearest whole hour. Fractional-offset zones such
// as Asia/Kolkata are caught by the prefix table first, so rounding here
// only ever sees whole-hour zones in practice.
func currentOffsetHours(loc *time.Location) int {
	_, seconds := time.Now().In(loc).Zone()
	return int(math.Round(float64(seconds) / 3600))
}

func regionForOffset(hours int) (Region, bool) {
	for _, band := range offsetBands {
		if hours >= band.min && hours <= band.max {
			return band.region, true
		}
	}
	return DefaultRegion, false
}
