package telemetry

import (
	"fmt"
	"math"
	"strconv"
	"time"

	nmea "github.com/adrianmo/go-nmea"
)

// NoData is the display value for readings the rover reported empty.
const NoData = "No Data available"

// Fallback map center (campus reference point) used until the first fix.
const (
	FallbackLat = 49.1218934023163
	FallbackLon = 9.20657878456699
)

// Position is a decimal-degrees coordinate pair for the map.
type Position struct {
	Lat float64
	Lon float64
}

// FixTypeLabel maps a GNSS fix quality code to its display label. The mapping
// is total: codes outside 0-9 yield the no-data label.
func FixTypeLabel(fixType int) string {
	switch fixType {
	case 0:
		return "No fix"
	case 1:
		return "GPS Only"
	case 2:
		return "Differential GPS"
	case 3:
		return "PPS"
	case 4:
		return "RTK Fix"
	case 5:
		return "RTK Float"
	case 6:
		return "Dead Reckoning"
	case 7:
		return "Manual Input Mode"
	case 8:
		return "Simulation Mode"
	case 9:
		return "WAAS Fix"
	default:
		return NoData
	}
}

// ToDecimalDegrees converts an NMEA DDMM.MMMMM (or DDDMM.MMMMM) value to
// decimal degrees, rounded half-to-even at 8 fractional digits.
func ToDecimalDegrees(v float64) float64 {
	degrees := math.Trunc(v / 100)
	minutes := v - degrees*100
	decimal := degrees + minutes/60
	return math.RoundToEven(decimal*1e8) / 1e8
}

// FormatCoordinate renders an NMEA coordinate string as decimal degrees with
// 7 fractional digits. Empty input is the no-data label, never an error.
func FormatCoordinate(raw string) string {
	if raw == "" {
		return NoData
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return NoData
	}
	return strconv.FormatFloat(ToDecimalDegrees(v), 'f', 7, 64)
}

// FormatElevation renders an elevation reading with 2 fractional digits.
// The value is already a plain decimal, no coordinate conversion applies.
func FormatElevation(raw string) string {
	if raw == "" {
		return NoData
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return NoData
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// FormatAccuracy converts a decimeter accuracy reading to meters, keeping the
// natural decimal representation of the division ("20" -> "2", "25" -> "2.5").
func FormatAccuracy(raw string) string {
	if raw == "" {
		return NoData
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return NoData
	}
	return strconv.FormatFloat(v/10, 'f', -1, 64)
}

// FormatRTCM renders the correction-stream flag.
func FormatRTCM(enabled bool) string {
	if enabled {
		return "Enabled"
	}
	return "Disabled"
}

// FormatFixTime renders an NMEA HHMMSS.SS time as HH:MM:SS.ss, with the hour
// replaced by the local wall-clock hour of now. The substitution mirrors the
// rover protocol's missing-date workaround; latency depends on it too.
func FormatFixTime(raw string, now time.Time) string {
	t, ok := parseFixTime(raw)
	if !ok {
		return NoData
	}
	return fmt.Sprintf("%02d:%02d:%02d.%02d", now.Hour(), t.Minute, t.Second, t.Millisecond/10)
}

// Latency computes the elapsed milliseconds between a fix time and now,
// after the same hour substitution as FormatFixTime. Only meaningful while
// the device clock is in the same hour as the local clock.
func Latency(raw string, now time.Time) string {
	t, ok := parseFixTime(raw)
	if !ok {
		return NoData
	}
	fixMillis := int64(now.Hour())*3600000 + int64(t.Minute)*60000 + int64(t.Second)*1000 + int64(t.Millisecond)
	nowMillis := int64(now.Hour())*3600000 + int64(now.Minute())*60000 + int64(now.Second())*1000 + int64(now.Nanosecond()/1e6)
	return strconv.FormatInt(nowMillis-fixMillis, 10)
}

// MapPosition derives the decimal map coordinate from raw NMEA latitude and
// longitude. An empty latitude yields the fallback center, never an error.
func MapPosition(lat, lon string) Position {
	if lat == "" {
		return Position{Lat: FallbackLat, Lon: FallbackLon}
	}
	latV, errLat := strconv.ParseFloat(lat, 64)
	lonV, errLon := strconv.ParseFloat(lon, 64)
	if errLat != nil || errLon != nil {
		return Position{Lat: FallbackLat, Lon: FallbackLon}
	}
	return Position{Lat: ToDecimalDegrees(latV), Lon: ToDecimalDegrees(lonV)}
}

func parseFixTime(raw string) (nmea.Time, bool) {
	if raw == "" {
		return nmea.Time{}, false
	}
	t, err := nmea.ParseTime(raw)
	if err != nil || !t.Valid {
		return nmea.Time{}, false
	}
	return t, true
}
