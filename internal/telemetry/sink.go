package telemetry

import "sync"

// Connection status labels published to the UI.
const (
	StatusConnected    = "Connected"
	StatusDisconnected = "Disconnected"
)

// State is the normalized, UI-ready snapshot of current telemetry. The
// normalizer replaces it wholesale on every event, so readers never observe a
// partially updated field set.
type State struct {
	ConnectionStatus string   `json:"connectionStatus"`
	FixType          string   `json:"fixType"`
	Time             string   `json:"time"`
	Latency          string   `json:"latency"`
	Lat              string   `json:"lat"`
	Lon              string   `json:"lon"`
	Elev             string   `json:"elev"`
	HAcc             string   `json:"hAcc"`
	VAcc             string   `json:"vAcc"`
	RTCM             string   `json:"rtcm"`
	Position         Position `json:"position"`
	Notification     string   `json:"notification"`
}

// DisconnectedState is the baseline before the first fix and after a reset:
// disconnected, labels cleared, map centered on the fallback position.
func DisconnectedState() State {
	return State{
		ConnectionStatus: StatusDisconnected,
		Position:         Position{Lat: FallbackLat, Lon: FallbackLon},
	}
}

// Sink holds the current presentation state and fans updates out to
// subscribers. It is written by a single normalizer and read by any number of
// presentation surfaces. Slow subscribers are conflated to the latest value
// rather than blocking the writer.
type Sink struct {
	mu     sync.RWMutex
	state  State
	subs   map[uint64]chan State
	nextID uint64
}

// NewSink builds a sink starting from the disconnected baseline.
func NewSink() *Sink {
	return &Sink{
		state: DisconnectedState(),
		subs:  make(map[uint64]chan State),
	}
}

// Current returns the latest published state.
func (s *Sink) Current() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe registers a consumer. The returned channel immediately carries
// the current state, then every subsequent update (conflated to the latest if
// the consumer lags). The cancel func detaches and closes the channel.
func (s *Sink) Subscribe() (<-chan State, func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	ch := make(chan State, 1)
	ch <- s.state
	s.subs[id] = ch
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish replaces the current state and notifies all subscribers.
func (s *Sink) Publish(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	for _, ch := range s.subs {
		select {
		case ch <- state:
		default:
			// Lagging subscriber: displace the stale value.
			select {
			case <-ch:
			default:
			}
			ch <- state
		}
	}
}
