package stream

// Event is one unit of a session's output feed. The concrete types below are
// the only implementations; a consumer switch over them is exhaustive.
type Event interface {
	sessionEvent()
}

// Opened signals that the connection to the rover is established.
type Opened struct{}

// Message carries one inbound telemetry frame, raw text.
type Message struct {
	Text string
}

// Closing signals a normal shutdown, local or peer initiated. It is terminal:
// the feed is closed right after it.
type Closing struct{}

// Failed signals a transport failure during setup or mid-stream. It is
// terminal: the feed is closed right after it.
type Failed struct {
	Err error
}

func (Opened) sessionEvent()  {}
func (Message) sessionEvent() {}
func (Closing) sessionEvent() {}
func (Failed) sessionEvent()  {}
