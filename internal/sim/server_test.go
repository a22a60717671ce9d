package sim

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"roverclient/internal/stream"
	"roverclient/internal/telemetry"
	libconfig "roverclient/libs/config"
)

// The simulator should look exactly like a rover to the real pipeline.
func TestSimulatorFeedsThePipeline(t *testing.T) {
	server := NewServer(&Config{
		Port:     "0",
		Interval: libconfig.Duration(20 * time.Millisecond),
		BaseLat:  49.1218934023163,
		BaseLon:  9.20657878456699,
	}, zap.NewNop())

	httpSrv := httptest.NewServer(http.HandlerFunc(server.handleStream))
	defer httpSrv.Close()
	url := "ws" + strings.TrimPrefix(httpSrv.URL, "http")

	sink := telemetry.NewSink()
	session := stream.NewSession(stream.Config{}, zap.NewNop())
	feed, err := session.Open(url)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		telemetry.NewNormalizer(sink, zap.NewNop()).Run(feed)
	}()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if sink.Current().ConnectionStatus == telemetry.StatusConnected {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	state := sink.Current()
	if state.ConnectionStatus != telemetry.StatusConnected {
		t.Fatalf("pipeline never connected, state %+v", state)
	}
	if state.FixType != "RTK Fix" && state.FixType != "RTK Float" {
		t.Errorf("unexpected fix label %q", state.FixType)
	}
	if state.Lat == "" || state.Lat == telemetry.NoData {
		t.Errorf("latitude not derived: %q", state.Lat)
	}
	if state.RTCM != "Enabled" {
		t.Errorf("rtcm label: %q", state.RTCM)
	}

	session.Close()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("normalizer did not stop after close")
	}
	if final := sink.Current(); final.ConnectionStatus != telemetry.StatusDisconnected {
		t.Fatalf("expected disconnected after close, got %+v", final)
	}
}
