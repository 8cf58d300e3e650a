// Package config loads the bus's JSON configuration file: the ordered
// connector list and block list that the pipeline and dispatcher are
// built from. There is no environment-variable configuration surface;
// everything the process needs comes from this one file.
package config

import (
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"

	"github.com/relaywire/relay/internal/block"
	"github.com/relaywire/relay/internal/connector"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Config is the top-level on-disk schema.
type Config struct {
	Connectors []connector.Config `json:"connectors"`
	Blocks     []block.Config     `json:"blocks"`
}

// Load reads and decodes the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}

	return &cfg, nil
}
