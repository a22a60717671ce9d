package sim

import (
	"fmt"
	"math"
	"math/rand"
	"time"
)

// Frame is one telemetry message in the rover's wire format.
type Frame struct {
	Exception   string `json:"exception"`
	Time        string `json:"time"`
	FixType     int    `json:"fixType"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	Elev        string `json:"elev"`
	HAcc        string `json:"hAcc"`
	VAcc        string `json:"vAcc"`
	RTCMEnabled bool   `json:"rtcmEnabled"`
}

// Feed produces synthetic fixes drifting around a base coordinate, encoded
// the way the device encodes them: NMEA DDMM.MMMMM positions, HHMMSS.SS UTC
// timestamps, decimeter accuracies.
type Feed struct {
	rng  *rand.Rand
	now  func() time.Time
	lat  float64 // decimal degrees
	lon  float64
	elev float64
}

// NewFeed builds a feed starting at the given decimal-degree position.
func NewFeed(baseLat, baseLon float64) *Feed {
	return &Feed{
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
		now:  time.Now,
		lat:  baseLat,
		lon:  baseLon,
		elev: 160,
	}
}

// Next advances the simulated rover one step and returns its frame.
func (f *Feed) Next() Frame {
	f.lat += (f.rng.Float64() - 0.5) * 2e-5
	f.lon += (f.rng.Float64() - 0.5) * 2e-5
	f.elev += (f.rng.Float64() - 0.5) * 0.2

	fixType := 4 // RTK Fix
	if f.rng.Intn(10) == 0 {
		fixType = 5 // occasional float solution
	}

	return Frame{
		Time:        encodeFixTime(f.now().UTC()),
		FixType:     fixType,
		Lat:         encodeNMEA(f.lat, 10),
		Lon:         encodeNMEA(f.lon, 11),
		Elev:        fmt.Sprintf("%.2f", f.elev),
		HAcc:        fmt.Sprintf("%d", 10+f.rng.Intn(15)),
		VAcc:        fmt.Sprintf("%d", 15+f.rng.Intn(20)),
		RTCMEnabled: true,
	}
}

// encodeNMEA converts decimal degrees to the DDMM.MMMMM text form, zero
// padded to width (10 for latitude, 11 for longitude).
func encodeNMEA(decimal float64, width int) string {
	degrees := math.Trunc(decimal)
	minutes := (decimal - degrees) * 60
	return fmt.Sprintf("%0*.5f", width, degrees*100+minutes)
}

// encodeFixTime renders t as NMEA HHMMSS.SS.
func encodeFixTime(t time.Time) string {
	seconds := float64(t.Second()) + float64(t.Nanosecond())/1e9
	return fmt.Sprintf("%02d%02d%05.2f", t.Hour(), t.Minute(), seconds)
}
