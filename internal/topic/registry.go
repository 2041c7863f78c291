package topic

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nerrad567/gray-logic-sensorbridge/internal/infrastructure/mqtt"
)

// Config describes how readings on one topic are written to the store.
type Config struct {
	// Measurement is the time-series measurement name (e.g. "temp").
	Measurement string `yaml:"measurement" json:"measurement"`

	// TagKey is the tag key identifying the sensor (e.g. "sensor").
	TagKey string `yaml:"tag" json:"tag"`

	// SensorName is the tag value for TagKey (e.g. "s1").
	SensorName string `yaml:"sensor_name" json:"sensor_name"`

	// ValueField is carried over from the topics file for compatibility.
	// Neither flush cadence reads it; their field names come from config.
	ValueField string `yaml:"value_field" json:"value_field"`
}

// Validate reports the first missing required field.
func (c Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Measurement) == "":
		return fmt.Errorf("%w: measurement is required", ErrInvalidConfig)
	case strings.TrimSpace(c.TagKey) == "":
		return fmt.Errorf("%w: tag is required", ErrInvalidConfig)
	case strings.TrimSpace(c.SensorName) == "":
		return fmt.Errorf("%w: sensor_name is required", ErrInvalidConfig)
	case strings.TrimSpace(c.ValueField) == "":
		return fmt.Errorf("%w: value_field is required", ErrInvalidConfig)
	}
	return nil
}

// Registry is the immutable topic → Config mapping.
//
// Safe for concurrent use: nothing is written after NewRegistry returns.
type Registry struct {
	configs map[string]Config
	topics  []string
}

// NewRegistry validates configs and returns a registry holding a private copy.
// Topic names must be concrete: MQTT wildcards "+" and "#" are rejected.
func NewRegistry(configs map[string]Config) (*Registry, error) {
	r := &Registry{
		configs: make(map[string]Config, len(configs)),
		topics:  make([]string, 0, len(configs)),
	}

	for name, cfg := range configs {
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("%w: empty topic name", ErrInvalidConfig)
		}
		// Readings are looked up by exact topic, so a wildcard key would
		// subscribe to traffic that can never match.
		if err := mqtt.ValidateTopicName(name); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("topic %q: %w", name, err)
		}
		r.configs[name] = cfg
		r.topics = append(r.topics, name)
	}
	sort.Strings(r.topics)

	return r, nil
}

// Lookup returns the configuration for a topic.
func (r *Registry) Lookup(topic string) (Config, bool) {
	cfg, ok := r.configs[topic]
	return cfg, ok
}

// Topics returns the configured topic names in sorted order.
// The returned slice is a copy.
func (r *Registry) Topics() []string {
	out := make([]string, len(r.topics))
	copy(out, r.topics)
	return out
}

// Len returns the number of configured topics.
func (r *Registry) Len() int {
	return len(r.configs)
}
