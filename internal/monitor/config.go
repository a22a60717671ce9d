package monitor

import (
	"errors"
	"fmt"
	"strings"
	"time"

	libconfig "roverclient/libs/config"
)

// RoverConfig addresses the device. The host is supplied by an external
// discovery step; it is not validated for reachability here.
type RoverConfig struct {
	Host string `yaml:"host" env:"ROVER_HOST"`
	Port string `yaml:"port" env:"ROVER_PORT"`
}

// StreamConfig tunes the streaming session transport.
type StreamConfig struct {
	ConnectTimeout libconfig.Duration `yaml:"connect_timeout" env:"STREAM_CONNECT_TIMEOUT"`
	ReadTimeout    libconfig.Duration `yaml:"read_timeout" env:"STREAM_READ_TIMEOUT"`
	// InsecureTLS accepts any server identity on wss endpoints. Explicit
	// opt-in; the old client hard-coded this.
	InsecureTLS bool `yaml:"insecure_tls" env:"STREAM_INSECURE_TLS"`
}

// MQTTConfig enables the optional state bridge when Broker is set.
type MQTTConfig struct {
	Broker   string `yaml:"broker" env:"MQTT_BROKER"`
	ClientID string `yaml:"client_id" env:"MQTT_CLIENT_ID"`
	Topic    string `yaml:"topic" env:"MQTT_TOPIC"`
}

// Config defines rover monitor configuration.
type Config struct {
	Rover  RoverConfig  `yaml:"rover"`
	Stream StreamConfig `yaml:"stream"`
	MQTT   MQTTConfig   `yaml:"mqtt"`
}

// Load configuration using shared helper.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.Rover.Port = "80"
	cfg.Stream.ConnectTimeout = libconfig.Duration(39 * time.Second)
	cfg.Stream.ReadTimeout = libconfig.Duration(30 * time.Second)
	cfg.MQTT.ClientID = "rover-monitor"
	cfg.MQTT.Topic = "rover/state"

	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.Rover.Host) == "" {
		return nil, errors.New("config: rover host required")
	}
	return cfg, nil
}

// StreamURL returns the ws:// endpoint of the rover's position feed.
func (c *Config) StreamURL() string {
	return fmt.Sprintf("ws://%s:%s/", strings.TrimSpace(c.Rover.Host), strings.TrimSpace(c.Rover.Port))
}
