package topic

import (
	"errors"
	"testing"
)

func validConfig() Config {
	return Config{Measurement: "temp", TagKey: "sensor", SensorName: "s1", ValueField: "valor"}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"missing measurement", func(c *Config) { c.Measurement = "" }, true},
		{"blank tag", func(c *Config) { c.TagKey = "  " }, true},
		{"missing sensor name", func(c *Config) { c.SensorName = "" }, true},
		{"missing value field", func(c *Config) { c.ValueField = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error %v does not wrap ErrInvalidConfig", err)
			}
		})
	}
}

func TestNewRegistry(t *testing.T) {
	src := map[string]Config{
		"sensors/t2": validConfig(),
		"sensors/t1": validConfig(),
	}

	r, err := NewRegistry(src)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	if r.Len() != 2 {
		t.Errorf("Len() = %d, want 2", r.Len())
	}

	topics := r.Topics()
	if len(topics) != 2 || topics[0] != "sensors/t1" || topics[1] != "sensors/t2" {
		t.Errorf("Topics() = %v, want sorted [sensors/t1 sensors/t2]", topics)
	}

	// Mutating the source map or the returned slice must not leak in.
	delete(src, "sensors/t1")
	topics[0] = "changed"
	if _, ok := r.Lookup("sensors/t1"); !ok {
		t.Error("registry changed after source map mutation")
	}
	if r.Topics()[0] != "sensors/t1" {
		t.Error("Topics() returned internal slice")
	}

	if _, ok := r.Lookup("sensors/unknown"); ok {
		t.Error("Lookup() found unconfigured topic")
	}
}

func TestNewRegistry_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		configs map[string]Config
	}{
		{"empty topic name", map[string]Config{"": validConfig()}},
		{"invalid entry", map[string]Config{"sensors/t1": {Measurement: "temp"}}},
		{"single-level wildcard", map[string]Config{"sensors/+": validConfig()}},
		{"multi-level wildcard", map[string]Config{"sensors/#": validConfig()}},
		{"wildcard inside level", map[string]Config{"sensors/t+1": validConfig()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewRegistry(tt.configs); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("NewRegistry() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}
