// Package config loads fillmate's configuration from a YAML file with
// environment-variable overrides for deployment knobs.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level fillmate configuration.
type Config struct {
	Port     string        `yaml:"port"`
	DataDir  string        `yaml:"data_dir"`
	DBPath   string        `yaml:"db_path"`
	LogLevel string        `yaml:"log_level"`
	Convert  ConvertConfig `yaml:"convert"`
	Sign     SignConfig    `yaml:"sign"`
}

// ConvertConfig controls the DOCX to PDF engine.
type ConvertConfig struct {
	Binary  string        `yaml:"binary"`
	Timeout time.Duration `yaml:"-"`
}

// UnmarshalYAML accepts the timeout in Go duration syntax ("90s", "2m").
func (c *ConvertConfig) UnmarshalYAML(n *yaml.Node) error {
	var raw struct {
		Binary  string `yaml:"binary"`
		Timeout string `yaml:"timeout"`
	}
	if err := n.Decode(&raw); err != nil {
		return err
	}
	c.Binary = raw.Binary
	if raw.Timeout != "" {
		d, err := time.ParseDuration(raw.Timeout)
		if err != nil {
			return fmt.Errorf("convert.timeout: %w", err)
		}
		c.Timeout = d
	}
	return nil
}

// SignConfig places the signature box on the page, in points from the
// page's bottom-left corner.
type SignConfig struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Load reads the YAML file at path (skipped when path is empty), applies
// environment overrides, then defaults.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		c.Port = v
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("FILLMATE_DB"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("SOFFICE_BIN"); v != "" {
		c.Convert.Binary = v
	}
}

func (c *Config) applyDefaults() {
	if c.Port == "" {
		c.Port = "8086"
	}
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.DBPath == "" {
		c.DBPath = "db/fillmate.db"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Convert.Binary == "" {
		c.Convert.Binary = "soffice"
	}
	if c.Convert.Timeout <= 0 {
		c.Convert.Timeout = 2 * time.Minute
	}
	if c.Sign.Width <= 0 || c.Sign.Height <= 0 {
		c.Sign.Width, c.Sign.Height = 150, 50
	}
	if c.Sign.X == 0 && c.Sign.Y == 0 {
		c.Sign.X, c.Sign.Y = 400, 30
	}
}
