package topic

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a topics file and builds a Registry from it.
//
// The file is a mapping of topic name to Config. Both YAML and JSON are
// accepted since yaml.v3 parses JSON documents as well.
//
// Returns ErrNoTopics if the file defines no topics.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading topics file: %w", err)
	}

	configs := make(map[string]Config)
	if err := yaml.Unmarshal(data, &configs); err != nil {
		return nil, fmt.Errorf("parsing topics file: %w", err)
	}

	if len(configs) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoTopics)
	}

	return NewRegistry(configs)
}
