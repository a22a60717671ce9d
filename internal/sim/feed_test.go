package sim

import (
	"math"
	"regexp"
	"strconv"
	"testing"
	"time"

	"roverclient/internal/telemetry"
)

func TestFeedFramesRoundTripThroughConverter(t *testing.T) {
	feed := NewFeed(49.1218934023163, 9.20657878456699)
	frame := feed.Next()

	latRaw, err := strconv.ParseFloat(frame.Lat, 64)
	if err != nil {
		t.Fatalf("latitude %q not numeric: %v", frame.Lat, err)
	}
	lonRaw, err := strconv.ParseFloat(frame.Lon, 64)
	if err != nil {
		t.Fatalf("longitude %q not numeric: %v", frame.Lon, err)
	}

	if got := telemetry.ToDecimalDegrees(latRaw); math.Abs(got-feed.lat) > 1e-6 {
		t.Errorf("latitude round trip: encoded %q, decoded %.8f, want %.8f", frame.Lat, got, feed.lat)
	}
	if got := telemetry.ToDecimalDegrees(lonRaw); math.Abs(got-feed.lon) > 1e-6 {
		t.Errorf("longitude round trip: encoded %q, decoded %.8f, want %.8f", frame.Lon, got, feed.lon)
	}
}

func TestFeedFrameShape(t *testing.T) {
	feed := NewFeed(49.1218934023163, 9.20657878456699)
	feed.now = func() time.Time {
		return time.Date(2026, 9, 1, 7, 8, 9, 500_000_000, time.UTC)
	}
	frame := feed.Next()

	if frame.Time != "070809.50" {
		t.Errorf("time: expected 070809.50, got %q", frame.Time)
	}
	if matched, _ := regexp.MatchString(`^\d{4}\.\d{5}$`, frame.Lat); !matched {
		t.Errorf("latitude not in DDMM.MMMMM form: %q", frame.Lat)
	}
	if matched, _ := regexp.MatchString(`^\d{5}\.\d{5}$`, frame.Lon); !matched {
		t.Errorf("longitude not in DDDMM.MMMMM form: %q", frame.Lon)
	}
	if frame.FixType != 4 && frame.FixType != 5 {
		t.Errorf("unexpected fix type %d", frame.FixType)
	}
	if !frame.RTCMEnabled {
		t.Error("simulated rover should report RTCM enabled")
	}
}

func TestEncodeNMEA(t *testing.T) {
	if got := encodeNMEA(49.5, 10); got != "4930.00000" {
		t.Errorf("expected 4930.00000, got %q", got)
	}
	if got := encodeNMEA(7.665, 11); got != "00739.90000" {
		t.Errorf("expected 00739.90000, got %q", got)
	}
}
