// Package config loads engine settings from YAML files.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/envelo/envelo-go/algorithms"
	"github.com/envelo/envelo-go/envelope"
)

// Config is the file-configurable subset of the engine settings. Absent
// fields keep the engine defaults. A full file looks like:
//
//	compression: zstd
//	encoding: base64
//	checksum: sha256
//	prefer_smaller_payload: false
//	attribute_limit: 8
type Config struct {
	Compression          string `yaml:"compression"`
	Encoding             string `yaml:"encoding"`
	Checksum             string `yaml:"checksum"`
	PreferSmallerPayload *bool  `yaml:"prefer_smaller_payload"`
	AttributeLimit       int    `yaml:"attribute_limit"`
}

// Load reads and parses a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML config bytes.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// EngineOptions converts the config into engine options. Unset fields are
// skipped so the engine defaults apply; set fields are validated and
// unknown algorithm identifiers are rejected.
func (c *Config) EngineOptions() ([]envelope.EngineOption, error) {
	var options []envelope.EngineOption

	if c.Compression != "" {
		compression, err := algorithms.ParseCompression(c.Compression)
		if err != nil {
			return nil, err
		}
		options = append(options, envelope.WithCompression(compression))
	}

	if c.Encoding != "" {
		encoding, err := algorithms.ParseEncoding(c.Encoding)
		if err != nil {
			return nil, err
		}
		options = append(options, envelope.WithEncoding(encoding))
	}

	if c.Checksum != "" {
		checksum, err := algorithms.ParseChecksum(c.Checksum)
		if err != nil {
			return nil, err
		}
		options = append(options, envelope.WithChecksum(checksum))
	}

	if c.PreferSmallerPayload != nil {
		options = append(options, envelope.WithPreferSmallerPayload(*c.PreferSmallerPayload))
	}

	if c.AttributeLimit != 0 {
		if c.AttributeLimit < 0 {
			return nil, fmt.Errorf("attribute_limit must be positive, got %d", c.AttributeLimit)
		}
		options = append(options, envelope.WithAttributeLimit(c.AttributeLimit))
	}

	return options, nil
}

// NewEngine builds an engine directly from the config.
func (c *Config) NewEngine() (*envelope.Engine, error) {
	options, err := c.EngineOptions()
	if err != nil {
		return nil, err
	}
	return envelope.NewEngine(options...), nil
}
