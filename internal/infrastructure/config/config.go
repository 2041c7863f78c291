package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Sink kinds accepted in sink.kind.
const (
	SinkInfluxDB        = "influxdb"
	SinkVictoriaMetrics = "victoriametrics"
)

// Topic sources accepted in topics.source.
const (
	TopicSourceFile     = "file"
	TopicSourceDatabase = "database"
)

// Config is the root configuration structure for the sensor bridge.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Service         ServiceConfig         `yaml:"service"`
	MQTT            MQTTConfig            `yaml:"mqtt"`
	Sink            SinkConfig            `yaml:"sink"`
	InfluxDB        InfluxDBConfig        `yaml:"influxdb"`
	VictoriaMetrics VictoriaMetricsConfig `yaml:"victoriametrics"`
	Topics          TopicsConfig          `yaml:"topics"`
	Database        DatabaseConfig        `yaml:"database"`
	Flush           FlushConfig           `yaml:"flush"`
	API             APIConfig             `yaml:"api"`
	Logging         LoggingConfig         `yaml:"logging"`
}

// ServiceConfig identifies this bridge instance.
type ServiceConfig struct {
	Name string `yaml:"name"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// SinkConfig selects the time-series backend points are written to.
type SinkConfig struct {
	Kind string `yaml:"kind"`
}

// InfluxDBConfig contains InfluxDB v2 connection settings.
type InfluxDBConfig struct {
	URL    string `yaml:"url"`
	Token  string `yaml:"token"`
	Org    string `yaml:"org"`
	Bucket string `yaml:"bucket"`
}

// VictoriaMetricsConfig contains settings for the VictoriaMetrics line-protocol endpoint.
type VictoriaMetricsConfig struct {
	URL string `yaml:"url"`
}

// TopicsConfig controls where the topic registry is loaded from.
type TopicsConfig struct {
	// Source is "file" (default) or "database".
	Source string `yaml:"source"`

	// File is the YAML or JSON topics file used when Source is "file".
	File string `yaml:"file"`
}

// DatabaseConfig contains SQLite database settings.
// Only used when topics.source is "database".
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// FlushConfig contains the flush cadences.
type FlushConfig struct {
	Slow SlowFlushConfig `yaml:"slow"`
	Fast FastFlushConfig `yaml:"fast"`

	// WriteTimeout bounds a single point write, in seconds.
	WriteTimeout int `yaml:"write_timeout"`
}

// SlowFlushConfig configures the time-faithful raw + derived cadence.
type SlowFlushConfig struct {
	Enabled         bool    `yaml:"enabled"`
	Interval        int     `yaml:"interval"` // seconds
	MeasuredField   string  `yaml:"measured_field"`
	CalculatedField string  `yaml:"calculated_field"`
	DerivedOffset   float64 `yaml:"derived_offset"`

	// ResendUnchanged re-writes entries that have not changed since the last tick.
	ResendUnchanged bool `yaml:"resend_unchanged"`
}

// FastFlushConfig configures the flush-time stamped raw cadence.
type FastFlushConfig struct {
	Enabled         bool   `yaml:"enabled"`
	Interval        int    `yaml:"interval"` // seconds
	Field           string `yaml:"field"`
	ResendUnchanged bool   `yaml:"resend_unchanged"`
}

// APIConfig contains HTTP status server settings.
type APIConfig struct {
	Enabled  bool             `yaml:"enabled"`
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
}

// APITimeoutConfig contains HTTP timeout settings.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: SENSORBRIDGE_SECTION_KEY
// For example: SENSORBRIDGE_MQTT_HOST, SENSORBRIDGE_INFLUXDB_TOKEN
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Service: ServiceConfig{
			Name: "sensorbridge",
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host: "localhost",
				Port: 1883,
			},
			QoS: 0,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		Sink: SinkConfig{
			Kind: SinkInfluxDB,
		},
		InfluxDB: InfluxDBConfig{
			URL:    "http://localhost:8086",
			Org:    "iot",
			Bucket: "iot-device",
		},
		VictoriaMetrics: VictoriaMetricsConfig{
			URL: "http://localhost:8428",
		},
		Topics: TopicsConfig{
			Source: TopicSourceFile,
			File:   "configs/topics.json",
		},
		Database: DatabaseConfig{
			Path:        "./data/sensorbridge.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		Flush: FlushConfig{
			Slow: SlowFlushConfig{
				Enabled:         true,
				Interval:        3600,
				MeasuredField:   "measured",
				CalculatedField: "calculated",
				DerivedOffset:   1.5,
				ResendUnchanged: true,
			},
			Fast: FastFlushConfig{
				Enabled:         true,
				Interval:        5,
				Field:           "fast measured",
				ResendUnchanged: true,
			},
			WriteTimeout: 5,
		},
		API: APIConfig{
			Enabled: true,
			Host:    "0.0.0.0",
			Port:    8090,
			Timeouts: APITimeoutConfig{
				Read:  10,
				Write: 10,
				Idle:  60,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: SENSORBRIDGE_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// MQTT
	if v := os.Getenv("SENSORBRIDGE_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("SENSORBRIDGE_MQTT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.MQTT.Broker.Port = port
		}
	}
	if v := os.Getenv("SENSORBRIDGE_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("SENSORBRIDGE_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("SENSORBRIDGE_INFLUXDB_URL"); v != "" {
		cfg.InfluxDB.URL = v
	}
	if v := os.Getenv("SENSORBRIDGE_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
	if v := os.Getenv("SENSORBRIDGE_INFLUXDB_ORG"); v != "" {
		cfg.InfluxDB.Org = v
	}
	if v := os.Getenv("SENSORBRIDGE_INFLUXDB_BUCKET"); v != "" {
		cfg.InfluxDB.Bucket = v
	}

	// Topics
	if v := os.Getenv("SENSORBRIDGE_TOPICS_FILE"); v != "" {
		cfg.Topics.File = v
	}

	// Logging
	if v := os.Getenv("SENSORBRIDGE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// MQTT validation
	if c.MQTT.Broker.Host == "" {
		errs = append(errs, "mqtt.broker.host is required")
	}
	if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
		errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	// Sink validation
	switch c.Sink.Kind {
	case SinkInfluxDB:
		if c.InfluxDB.URL == "" {
			errs = append(errs, "influxdb.url is required")
		}
		if c.InfluxDB.Org == "" {
			errs = append(errs, "influxdb.org is required")
		}
		if c.InfluxDB.Bucket == "" {
			errs = append(errs, "influxdb.bucket is required")
		}
	case SinkVictoriaMetrics:
		if c.VictoriaMetrics.URL == "" {
			errs = append(errs, "victoriametrics.url is required")
		}
	default:
		errs = append(errs, fmt.Sprintf("sink.kind must be %q or %q", SinkInfluxDB, SinkVictoriaMetrics))
	}

	// Topic source validation
	switch c.Topics.Source {
	case TopicSourceFile:
		if c.Topics.File == "" {
			errs = append(errs, "topics.file is required when topics.source is \"file\"")
		}
	case TopicSourceDatabase:
		if c.Database.Path == "" {
			errs = append(errs, "database.path is required when topics.source is \"database\"")
		}
	default:
		errs = append(errs, fmt.Sprintf("topics.source must be %q or %q", TopicSourceFile, TopicSourceDatabase))
	}

	// Flush validation
	if c.Flush.Slow.Enabled {
		if c.Flush.Slow.Interval <= 0 {
			errs = append(errs, "flush.slow.interval must be positive")
		}
		if c.Flush.Slow.MeasuredField == "" || c.Flush.Slow.CalculatedField == "" {
			errs = append(errs, "flush.slow.measured_field and flush.slow.calculated_field are required")
		}
	}
	if c.Flush.Fast.Enabled {
		if c.Flush.Fast.Interval <= 0 {
			errs = append(errs, "flush.fast.interval must be positive")
		}
		if c.Flush.Fast.Field == "" {
			errs = append(errs, "flush.fast.field is required")
		}
	}
	if c.Flush.WriteTimeout <= 0 {
		errs = append(errs, "flush.write_timeout must be positive")
	}

	// API validation
	if c.API.Enabled && (c.API.Port < 1 || c.API.Port > 65535) {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// SlowInterval returns the slow flush cadence as a Duration.
func (f FlushConfig) SlowInterval() time.Duration {
	return time.Duration(f.Slow.Interval) * time.Second
}

// FastInterval returns the fast flush cadence as a Duration.
func (f FlushConfig) FastInterval() time.Duration {
	return time.Duration(f.Fast.Interval) * time.Second
}

// WriteTimeoutDuration returns the per-point write bound as a Duration.
func (f FlushConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(f.WriteTimeout) * time.Second
}

// GetReadTimeout returns the read timeout as a Duration.
func (a APIConfig) GetReadTimeout() time.Duration {
	return time.Duration(a.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the write timeout as a Duration.
func (a APIConfig) GetWriteTimeout() time.Duration {
	return time.Duration(a.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the idle timeout as a Duration.
func (a APIConfig) GetIdleTimeout() time.Duration {
	return time.Duration(a.Timeouts.Idle) * time.Second
}
