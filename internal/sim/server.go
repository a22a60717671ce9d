package sim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	libconfig "roverclient/libs/config"
)

// Config defines rover simulator configuration.
type Config struct {
	Port     string             `yaml:"port" env:"SIM_PORT"`
	Interval libconfig.Duration `yaml:"interval" env:"SIM_INTERVAL"`
	BaseLat  float64            `yaml:"base_lat" env:"SIM_BASE_LAT"`
	BaseLon  float64            `yaml:"base_lon" env:"SIM_BASE_LON"`
}

// Load configuration using shared helper.
func Load() (*Config, error) {
	cfg := &Config{
		Port:     "8181",
		Interval: libconfig.Duration(time.Second),
		BaseLat:  49.1218934023163,
		BaseLon:  9.20657878456699,
	}
	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.Port)
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// Server is a mock rover: it upgrades connections on / and pushes synthetic
// telemetry frames at a fixed interval until the client or the server stops.
type Server struct {
	server   *http.Server
	interval time.Duration
	baseLat  float64
	baseLon  float64
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewServer builds the simulator.
func NewServer(cfg *Config, logger *zap.Logger) *Server {
	interval := cfg.Interval.Std()
	if interval <= 0 {
		interval = time.Second
	}
	s := &Server{
		interval: interval,
		baseLat:  cfg.BaseLat,
		baseLon:  cfg.BaseLon,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger: logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleStream)
	s.server = &http.Server{
		Addr:         cfg.HTTPAddress(),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Run starts serving until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting rover simulator", zap.String("addr", s.server.Addr))
		if err := s.server.ListenAndServe(); err != nil {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}
	s.logger.Info("client connected", zap.String("remote", r.RemoteAddr))

	// Each client gets its own drifting rover.
	feed := NewFeed(s.baseLat, s.baseLon)

	// Read pump exists only to process control frames and notice the client
	// going away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	defer conn.Close()

	for {
		select {
		case <-gone:
			s.logger.Info("client disconnected", zap.String("remote", r.RemoteAddr))
			return
		case <-ticker.C:
			payload, err := json.Marshal(feed.Next())
			if err != nil {
				s.logger.Warn("frame marshal failed", zap.Error(err))
				continue
			}
			if err := conn.SetWriteDeadline(time.Now().Add(10 * time.Second)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				s.logger.Info("client write failed", zap.String("remote", r.RemoteAddr), zap.Error(err))
				return
			}
		}
	}
}
