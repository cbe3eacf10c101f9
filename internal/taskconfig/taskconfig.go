// Package taskconfig loads per-task configuration from YAML.
//
// A Config carries the three configuration surfaces the connection layer
// consumes: explicit connection-name overrides, template values, and
// boolean option flags read by connection trimmers. Anything else a task
// needs (algorithm parameters and the like) is user logic and stays out
// of this core.
package taskconfig

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/quantaforge/quanta/internal/connection"
)

// Config is the YAML-visible configuration of one task.
type Config struct {
	// Connections maps connection identifier to an explicit dataset type
	// name, overriding all template resolution for that connection.
	Connections map[string]string `yaml:"connections,omitempty"`

	// Templates maps template identifier to a per-task value, overriding
	// the declaration default.
	Templates map[string]string `yaml:"templates,omitempty"`

	// Options are free-form boolean flags consumed by connection
	// trimmers (for example doApplyCorrections: false).
	Options map[string]bool `yaml:"options,omitempty"`
}

// Load reads and parses a config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML config data. Unknown fields are an error so that a
// typo in a config file fails loudly instead of being ignored.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Merge layers other on top of c and returns the result. Values from
// other win on conflict; neither input is modified. Merging nil is a
// no-op copy.
func (c *Config) Merge(other *Config) *Config {
	out := &Config{
		Connections: make(map[string]string),
		Templates:   make(map[string]string),
		Options:     make(map[string]bool),
	}
	for _, src := range []*Config{c, other} {
		if src == nil {
			continue
		}
		for k, v := range src.Connections {
			out.Connections[k] = v
		}
		for k, v := range src.Templates {
			out.Templates[k] = v
		}
		for k, v := range src.Options {
			out.Options[k] = v
		}
	}
	return out
}

// BindConfig converts the Config to the form the connection layer
// consumes.
func (c *Config) BindConfig() connection.BindConfig {
	if c == nil {
		return connection.BindConfig{}
	}
	return connection.BindConfig{
		Names:     c.Connections,
		Templates: c.Templates,
		Options:   c.Options,
	}
}
