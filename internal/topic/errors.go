package topic

import "errors"

// Domain-specific errors for topic registry operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrInvalidConfig is returned when a topic entry is missing a required field.
	ErrInvalidConfig = errors.New("topic: invalid configuration")

	// ErrNoTopics is returned by loaders when the source defines no topics.
	ErrNoTopics = errors.New("topic: no topics configured")
)
