package stream

import (
	"crypto/tls"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// FeedCapacity bounds the event feed. A full feed blocks the producer and
// therefore the socket read, so frames are never dropped.
const FeedCapacity = 10

const closeGraceTimeout = 5 * time.Second

// ErrAlreadyOpened is returned when Open is called twice on one session.
var ErrAlreadyOpened = errors.New("stream: session already opened")

// Config holds transport settings for a session.
type Config struct {
	// ConnectTimeout bounds the dial/handshake. Distinct from ReadTimeout so
	// connect failures are tellable from read stalls.
	ConnectTimeout time.Duration
	// ReadTimeout bounds each read; an idle stream past it fails the session.
	ReadTimeout time.Duration
	// InsecureSkipVerify disables server certificate and hostname checks for
	// wss endpoints. Off by default; only for rovers with self-signed certs
	// on a trusted LAN.
	InsecureSkipVerify bool
}

func (c Config) withDefaults() Config {
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 39 * time.Second
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 30 * time.Second
	}
	return c
}

// Session owns one streaming connection to a rover and translates its
// lifecycle and inbound frames into an ordered event feed. A session is
// single-use: one Open, then Close.
type Session struct {
	cfg    Config
	logger *zap.Logger

	events chan Event

	mu      sync.Mutex
	conn    *websocket.Conn
	opened  bool
	closing bool
}

// NewSession builds a session with the given transport settings.
func NewSession(cfg Config, logger *zap.Logger) *Session {
	return &Session{
		cfg:    cfg.withDefaults(),
		logger: logger,
	}
}

// Open establishes the streaming connection to endpoint and returns the event
// feed. The feed is a finite, ordered, single-consumer sequence: zero or more
// Message events between an optional Opened and exactly one terminal event
// (Closing or Failed), after which the channel is closed. Transport failures,
// including dial failures, surface on the feed, never as a returned error;
// the only error here is calling Open twice.
func (s *Session) Open(endpoint string) (<-chan Event, error) {
	s.mu.Lock()
	if s.opened {
		s.mu.Unlock()
		return nil, ErrAlreadyOpened
	}
	s.opened = true
	s.events = make(chan Event, FeedCapacity)
	s.mu.Unlock()

	go s.run(endpoint)
	return s.events, nil
}

// Close initiates a normal closure of the connection. Idempotent, safe to
// call before Open or after the feed terminated, and never returns an error
// to the caller; internal teardown errors are only logged. The producer
// reacts by pushing a synthetic Closing event and closing the feed.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		return
	}
	s.closing = true
	conn := s.conn
	s.mu.Unlock()

	if conn == nil {
		return
	}

	deadline := time.Now().Add(closeGraceTimeout)
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := conn.WriteControl(websocket.CloseMessage, msg, deadline); err != nil {
		s.logger.Debug("close frame write failed", zap.Error(err))
	}
	if err := conn.Close(); err != nil {
		s.logger.Debug("connection close failed", zap.Error(err))
	}
}

// run is the sole producer into the feed: it dials, pushes one event per
// inbound frame, pushes exactly one terminal event and closes the feed.
func (s *Session) run(endpoint string) {
	defer close(s.events)

	dialer := websocket.Dialer{
		HandshakeTimeout: s.cfg.ConnectTimeout,
	}
	if s.cfg.InsecureSkipVerify {
		dialer.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		s.logger.Warn("server identity checks disabled for this session")
	}

	conn, _, err := dialer.Dial(endpoint, nil)
	if err != nil {
		if s.isClosing() {
			s.events <- Closing{}
			return
		}
		s.events <- Failed{Err: fmt.Errorf("connect %s: %w", endpoint, err)}
		return
	}

	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		if err := conn.Close(); err != nil {
			s.logger.Debug("connection close failed", zap.Error(err))
		}
		s.events <- Closing{}
		return
	}
	s.conn = conn
	s.mu.Unlock()

	// Whatever ends the read loop, the transport goes with it. Close is also
	// called from Close(); a second close on the conn is harmless.
	defer conn.Close()

	s.logger.Info("rover stream connected", zap.String("endpoint", endpoint))
	s.events <- Opened{}

	for {
		if err := conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout)); err != nil {
			s.terminate(fmt.Errorf("set read deadline: %w", err))
			return
		}
		_, data, err := conn.ReadMessage()
		if err != nil {
			s.terminate(err)
			return
		}
		s.events <- Message{Text: string(data)}
	}
}

// terminate pushes the single terminal event for a broken read loop. A read
// error after Close, or a clean close frame from the peer, counts as a
// normal closure.
func (s *Session) terminate(err error) {
	if s.isClosing() || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		s.logger.Info("rover stream closed")
		s.events <- Closing{}
		return
	}
	s.logger.Warn("rover stream failed", zap.Error(err))
	s.events <- Failed{Err: err}
}

func (s *Session) isClosing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closing
}
