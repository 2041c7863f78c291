package telemetry

import (
	"errors"
	"fmt"
)

// Sentinel errors. Match with errors.Is; the typed errors below wrap them.
var (
	// ErrDecode is returned when a payload is not a finite decimal number.
	ErrDecode = errors.New("telemetry: payload is not a number")

	// ErrUnknownTopic is returned for messages on topics absent from the registry.
	ErrUnknownTopic = errors.New("telemetry: topic not configured")

	// ErrSinkWrite is returned when the time-series store rejects a point.
	ErrSinkWrite = errors.New("telemetry: sink write failed")
)

// DecodeError reports a payload that could not be parsed as a reading.
type DecodeError struct {
	Topic   string
	Payload string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding payload %q on %s: %v", e.Payload, e.Topic, e.Err)
}

// Unwrap exposes both ErrDecode and the parse error.
func (e *DecodeError) Unwrap() []error {
	return []error{ErrDecode, e.Err}
}

// UnknownTopicError reports a message on a topic with no configuration.
type UnknownTopicError struct {
	Topic string
}

func (e *UnknownTopicError) Error() string {
	return fmt.Sprintf("topic %s is not configured", e.Topic)
}

func (e *UnknownTopicError) Unwrap() error {
	return ErrUnknownTopic
}

// SinkWriteError reports one point that a flusher failed to write.
type SinkWriteError struct {
	Flusher string
	Topic   string
	Field   string
	Err     error
}

func (e *SinkWriteError) Error() string {
	return fmt.Sprintf("%s flusher: writing %q for %s: %v", e.Flusher, e.Field, e.Topic, e.Err)
}

// Unwrap exposes both ErrSinkWrite and the sink's own error.
func (e *SinkWriteError) Unwrap() []error {
	return []error{ErrSinkWrite, e.Err}
}
