package mqtt

import (
	"fmt"
	"strings"
)

// StatusTopic carries the bridge's retained online/offline status.
const StatusTopic = "sensorbridge/status"

// ValidateFilter checks a subscription filter against the MQTT rules:
// non-empty, "+" only as a whole level, "#" only as the whole last level.
func ValidateFilter(filter string) error {
	if filter == "" {
		return fmt.Errorf("%w: empty filter", ErrInvalidTopic)
	}

	levels := strings.Split(filter, "/")
	for i, level := range levels {
		switch {
		case level == "#" && i != len(levels)-1:
			return fmt.Errorf("%w: %q: '#' must be the last level", ErrInvalidTopic, filter)
		case level != "#" && strings.Contains(level, "#"):
			return fmt.Errorf("%w: %q: '#' must occupy a whole level", ErrInvalidTopic, filter)
		case level != "+" && strings.Contains(level, "+"):
			return fmt.Errorf("%w: %q: '+' must occupy a whole level", ErrInvalidTopic, filter)
		}
	}
	return nil
}

// ValidateTopicName checks a publish topic: non-empty and wildcard-free.
func ValidateTopicName(topic string) error {
	if topic == "" {
		return fmt.Errorf("%w: empty topic", ErrInvalidTopic)
	}
	if strings.ContainsAny(topic, "+#") {
		return fmt.Errorf("%w: %q: wildcards are not allowed in topic names", ErrInvalidTopic, topic)
	}
	return nil
}
