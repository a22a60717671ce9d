package telemetry

import (
	"math"
	"testing"
	"time"
)

func TestFormatCoordinate(t *testing.T) {
	if got := FormatCoordinate("4916.45"); got != "49.2741667" {
		t.Fatalf("expected 49.2741667, got %s", got)
	}
	if got := FormatCoordinate("00739.90"); got != "7.6650000" {
		t.Fatalf("expected 7.6650000, got %s", got)
	}
	if got := FormatCoordinate("00000.0"); got != "0.0000000" {
		t.Fatalf("expected 0.0000000, got %s", got)
	}
	if got := FormatCoordinate(""); got != NoData {
		t.Fatalf("empty input should yield %q, got %s", NoData, got)
	}
	if got := FormatCoordinate("not-a-number"); got != NoData {
		t.Fatalf("garbage input should yield %q, got %s", NoData, got)
	}
}

func TestToDecimalDegrees(t *testing.T) {
	got := ToDecimalDegrees(4916.45)
	if math.Abs(got-49.27416667) > 1e-8 {
		t.Fatalf("expected ~49.27416667, got %.10f", got)
	}
	if got := ToDecimalDegrees(0); got != 0 {
		t.Fatalf("expected 0, got %f", got)
	}
}

func TestFixTypeLabelIsTotal(t *testing.T) {
	labels := map[int]string{
		0: "No fix",
		1: "GPS Only",
		2: "Differential GPS",
		3: "PPS",
		4: "RTK Fix",
		5: "RTK Float",
		6: "Dead Reckoning",
		7: "Manual Input Mode",
		8: "Simulation Mode",
		9: "WAAS Fix",
	}
	for code, want := range labels {
		if got := FixTypeLabel(code); got != want {
			t.Errorf("code %d: expected %q, got %q", code, want, got)
		}
	}
	for _, code := range []int{-1, 10, 42, math.MaxInt32, math.MinInt32} {
		if got := FixTypeLabel(code); got != NoData {
			t.Errorf("code %d: expected %q, got %q", code, NoData, got)
		}
	}
}

func TestFormatAccuracy(t *testing.T) {
	cases := []struct{ in, want string }{
		{"20", "2"},
		{"30", "3"},
		{"25", "2.5"},
		{"7", "0.7"},
		{"", NoData},
		{"junk", NoData},
	}
	for _, c := range cases {
		if got := FormatAccuracy(c.in); got != c.want {
			t.Errorf("accuracy %q: expected %q, got %q", c.in, c.want, got)
		}
	}
}

func TestFormatElevation(t *testing.T) {
	if got := FormatElevation("160.5"); got != "160.50" {
		t.Fatalf("expected 160.50, got %s", got)
	}
	if got := FormatElevation(""); got != NoData {
		t.Fatalf("empty input should yield %q, got %s", NoData, got)
	}
}

func TestFormatFixTimeSubstitutesLocalHour(t *testing.T) {
	now := time.Date(2026, 9, 1, 15, 4, 5, 0, time.Local)
	if got := FormatFixTime("123456.00", now); got != "15:34:56.00" {
		t.Fatalf("expected 15:34:56.00, got %s", got)
	}
	if got := FormatFixTime("", now); got != NoData {
		t.Fatalf("empty input should yield %q, got %s", NoData, got)
	}
	if got := FormatFixTime("bogus", now); got != NoData {
		t.Fatalf("garbage input should yield %q, got %s", NoData, got)
	}
}

func TestLatency(t *testing.T) {
	now := time.Date(2026, 9, 1, 15, 34, 58, 0, time.Local)
	if got := Latency("123456.00", now); got != "2000" {
		t.Fatalf("expected 2000, got %s", got)
	}
	// Hour is forced to "now", so only minutes/seconds matter.
	now = time.Date(2026, 9, 1, 3, 35, 1, 500_000_000, time.Local)
	if got := Latency("093456.00", now); got != "5500" {
		t.Fatalf("expected 5500, got %s", got)
	}
	if got := Latency("", now); got != NoData {
		t.Fatalf("empty input should yield %q, got %s", NoData, got)
	}
}

func TestMapPosition(t *testing.T) {
	pos := MapPosition("4916.45", "00739.90")
	if math.Abs(pos.Lat-49.27416667) > 1e-8 || math.Abs(pos.Lon-7.665) > 1e-8 {
		t.Fatalf("unexpected position %+v", pos)
	}

	fallback := MapPosition("", "")
	if fallback.Lat != FallbackLat || fallback.Lon != FallbackLon {
		t.Fatalf("expected fallback position, got %+v", fallback)
	}
}

func TestEmptyInputIdempotence(t *testing.T) {
	now := time.Now()
	for i := 0; i < 3; i++ {
		if FormatFixTime("", now) != NoData ||
			Latency("", now) != NoData ||
			FormatCoordinate("") != NoData ||
			FormatElevation("") != NoData ||
			FormatAccuracy("") != NoData {
			t.Fatal("empty input must always yield the no-data label")
		}
	}
}
