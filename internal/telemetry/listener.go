package telemetry

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

// errNotFinite rejects NaN and infinities, which parse but cannot be stored.
var errNotFinite = errors.New("value is not finite")

// Listener turns inbound bus messages into cache updates.
//
// Handle is safe to call from any number of goroutines. It never touches
// the sink; errors it returns are for counting and logging only.
type Listener struct {
	cache   *Cache
	metrics *Metrics
	logger  Logger
	now     func() time.Time
}

// NewListener creates a listener feeding cache. metrics may be nil.
func NewListener(cache *Cache, metrics *Metrics) *Listener {
	return &Listener{
		cache:   cache,
		metrics: metrics,
		logger:  noopLogger{},
		now:     time.Now,
	}
}

// SetLogger sets the logger for message warnings.
func (l *Listener) SetLogger(logger Logger) {
	if logger != nil {
		l.logger = logger
	}
}

// SetClock replaces the arrival-time source. Used by tests.
func (l *Listener) SetClock(now func() time.Time) {
	if now != nil {
		l.now = now
	}
}

// Handle records the reading carried by payload as the latest for topicName.
//
// Returns *UnknownTopicError if the topic is not configured and
// *DecodeError if the payload is not a finite number. In both cases the
// cache is left untouched.
func (l *Listener) Handle(topicName string, payload []byte) error {
	if !l.cache.Configured(topicName) {
		l.metrics.messageReceived(resultUnknownTopic)
		l.logger.Warn("message on unconfigured topic ignored", "topic", topicName)
		return &UnknownTopicError{Topic: topicName}
	}

	reading, err := decodeReading(topicName, payload, l.now())
	if err != nil {
		l.metrics.messageReceived(resultDecodeError)
		l.logger.Warn("discarding undecodable payload", "topic", topicName, "error", err)
		return err
	}

	l.cache.Upsert(reading.Topic, reading.Value, reading.ArrivedAt)
	l.metrics.messageReceived(resultAccepted)
	l.logger.Debug("received value", "topic", topicName, "value", reading.Value)

	return nil
}

// decodeReading parses a UTF-8 decimal payload. Surrounding whitespace is
// ignored.
func decodeReading(topicName string, payload []byte, arrivedAt time.Time) (Reading, error) {
	text := strings.TrimSpace(string(payload))

	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Reading{}, &DecodeError{Topic: topicName, Payload: text, Err: err}
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Reading{}, &DecodeError{Topic: topicName, Payload: text, Err: errNotFinite}
	}

	return Reading{Topic: topicName, Value: value, ArrivedAt: arrivedAt}, nil
}
