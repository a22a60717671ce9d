package bridge

import (
	"encoding/json"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"roverclient/internal/telemetry"
)

// Bridge republishes presentation snapshots to an MQTT topic so other
// consumers on the network (dashboards, loggers) can follow the rover without
// their own socket to it. Messages are retained, so late joiners get the
// latest snapshot immediately.
type Bridge struct {
	client mqtt.Client
	topic  string
	logger *zap.Logger
}

// New connects to the broker and returns a ready bridge.
func New(brokerURL, clientID, topic string, logger *zap.Logger) (*Bridge, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(clientID)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	logger.Info("bridge connected to MQTT broker", zap.String("broker", brokerURL))

	return &Bridge{client: client, topic: topic, logger: logger}, nil
}

// Run publishes every state received on updates until the channel closes.
func (b *Bridge) Run(updates <-chan telemetry.State) {
	for state := range updates {
		payload, err := json.Marshal(state)
		if err != nil {
			b.logger.Warn("state marshal failed", zap.Error(err))
			continue
		}
		token := b.client.Publish(b.topic, 0, true, payload)
		token.Wait()
		if err := token.Error(); err != nil {
			b.logger.Warn("state publish failed", zap.Error(err))
		}
	}
}

// Close disconnects from the broker.
func (b *Bridge) Close() {
	b.client.Disconnect(250)
}
