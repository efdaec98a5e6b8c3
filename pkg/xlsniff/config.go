package xlsniff

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the optional xlsniff.yaml file. Every field is optional;
// the zero config changes nothing.
type Config struct {
	Threshold *float64 `yaml:"threshold"`
	Enabled   []string `yaml:"enabled"`
	Disabled  []string `yaml:"disabled"`
	Output    struct {
		JSON     string `yaml:"json"`
		Markdown string `yaml:"markdown"`
		Pretty   bool   `yaml:"pretty"`
	} `yaml:"output"`
}

// LoadConfig reads and parses a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Apply overlays the config onto options. Explicit option values win
// over config values.
func (c *Config) Apply(opts Options) Options {
	if opts.Threshold == nil && c.Threshold != nil {
		opts.Threshold = c.Threshold
	}
	if len(opts.Enabled) == 0 {
		opts.Enabled = append(opts.Enabled, c.Enabled...)
	}
	opts.Disabled = append(opts.Disabled, c.Disabled...)
	return opts
}
