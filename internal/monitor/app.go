package monitor

import (
	"context"

	"go.uber.org/zap"

	"roverclient/internal/bridge"
	"roverclient/internal/stream"
	"roverclient/internal/telemetry"
)

// App wires rover monitor dependencies: one streaming session, one
// normalizer, the shared state sink and the optional MQTT bridge.
type App struct {
	endpoint   string
	session    *stream.Session
	normalizer *telemetry.Normalizer
	sink       *telemetry.Sink
	bridge     *bridge.Bridge
	logger     *zap.Logger
}

// New constructs application components.
func New(cfg *Config, logger *zap.Logger) (*App, error) {
	sink := telemetry.NewSink()
	session := stream.NewSession(stream.Config{
		ConnectTimeout:     cfg.Stream.ConnectTimeout.Std(),
		ReadTimeout:        cfg.Stream.ReadTimeout.Std(),
		InsecureSkipVerify: cfg.Stream.InsecureTLS,
	}, logger)

	app := &App{
		endpoint:   cfg.StreamURL(),
		session:    session,
		normalizer: telemetry.NewNormalizer(sink, logger),
		sink:       sink,
		logger:     logger,
	}

	if cfg.MQTT.Broker != "" {
		b, err := bridge.New(cfg.MQTT.Broker, cfg.MQTT.ClientID, cfg.MQTT.Topic, logger)
		if err != nil {
			return nil, err
		}
		app.bridge = b
	}

	return app, nil
}

// Run opens the session and consumes its feed until it terminates or ctx is
// cancelled. Reconnecting after a failure is the caller's (or supervisor's)
// business; one Run is one session.
func (a *App) Run(ctx context.Context) error {
	feed, err := a.session.Open(a.endpoint)
	if err != nil {
		return err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		a.normalizer.Run(feed)
	}()

	updates, cancel := a.sink.Subscribe()
	defer cancel()

	if a.bridge != nil {
		bridgeUpdates, cancelBridge := a.sink.Subscribe()
		defer cancelBridge()
		go a.bridge.Run(bridgeUpdates)
	}

	for {
		select {
		case <-ctx.Done():
			a.session.Close()
			<-done
			return nil
		case <-done:
			final := a.sink.Current()
			a.logger.Info("session ended",
				zap.String("status", final.ConnectionStatus),
				zap.String("notification", final.Notification))
			return nil
		case state := <-updates:
			a.logger.Info("position update",
				zap.String("status", state.ConnectionStatus),
				zap.String("fix", state.FixType),
				zap.String("lat", state.Lat),
				zap.String("lon", state.Lon),
				zap.String("elev", state.Elev),
				zap.String("h_acc", state.HAcc),
				zap.String("v_acc", state.VAcc),
				zap.String("latency_ms", state.Latency),
				zap.String("rtcm", state.RTCM))
		}
	}
}

// Close releases resources.
func (a *App) Close() {
	a.session.Close()
	if a.bridge != nil {
		a.bridge.Close()
	}
}
