package telemetry

import (
	"time"

	"go.uber.org/zap"

	"roverclient/internal/stream"
)

// Normalizer consumes a session's event feed strictly in order, decodes each
// frame into a Record, and publishes complete presentation snapshots to its
// sink. It is purely reactive: no retries, no reconnects. It terminates
// exactly when the feed terminates.
type Normalizer struct {
	sink   *Sink
	logger *zap.Logger
	now    func() time.Time

	// last is the most recent successfully decoded record, owned by this
	// normalizer instance (one per session, no process-wide state).
	last Record
	seen bool
}

// NewNormalizer builds a normalizer publishing into sink.
func NewNormalizer(sink *Sink, logger *zap.Logger) *Normalizer {
	return &Normalizer{
		sink:   sink,
		logger: logger,
		now:    time.Now,
	}
}

// Run consumes the feed until it closes. Connection status flips to Connected
// only once the first frame decodes, so a malformed initial payload never
// flashes a spurious "connected". Decode failures reset presentation state
// like a transport failure but do not stop the loop; the next valid frame
// recovers. Terminal events reset state and end the loop.
func (n *Normalizer) Run(feed <-chan stream.Event) {
	for ev := range feed {
		switch e := ev.(type) {
		case stream.Opened:
			n.logger.Debug("session opened, waiting for first frame")
		case stream.Message:
			rec, err := DecodeRecord([]byte(e.Text))
			if err != nil {
				n.logger.Warn("dropping malformed frame", zap.Error(err))
				n.reset(err.Error())
				continue
			}
			n.publish(rec)
		case stream.Closing:
			n.logger.Info("session closed")
			n.reset("session closed")
		case stream.Failed:
			n.logger.Warn("session failed", zap.Error(e.Err))
			n.reset(e.Err.Error())
		}
	}
}

// LastRecord returns the most recent decoded record, if any.
func (n *Normalizer) LastRecord() (Record, bool) {
	return n.last, n.seen
}

// publish derives every presentation field from the record and replaces the
// sink state in one shot.
func (n *Normalizer) publish(rec Record) {
	n.last = rec
	n.seen = true
	now := n.now()
	n.sink.Publish(State{
		ConnectionStatus: StatusConnected,
		FixType:          FixTypeLabel(rec.FixType),
		Time:             FormatFixTime(rec.Time, now),
		Latency:          Latency(rec.Time, now),
		Lat:              FormatCoordinate(rec.Lat),
		Lon:              FormatCoordinate(rec.Lon),
		Elev:             FormatElevation(rec.Elev),
		HAcc:             FormatAccuracy(rec.HAcc),
		VAcc:             FormatAccuracy(rec.VAcc),
		RTCM:             FormatRTCM(rec.RTCMEnabled),
		Position:         MapPosition(rec.Lat, rec.Lon),
		Notification:     n.sink.Current().Notification,
	})
}

// reset publishes the disconnected baseline with cause as the notification.
func (n *Normalizer) reset(cause string) {
	state := DisconnectedState()
	state.Notification = cause
	n.sink.Publish(state)
}
