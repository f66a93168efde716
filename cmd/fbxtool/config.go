package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the fbxtool configuration file
// (~/.config/fbxtool/config.yaml). Pointer fields distinguish "not set"
// from zero values.
type Config struct {
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
	MemoryLimit *int64 `yaml:"memory_limit"`
	Strict      *bool  `yaml:"strict"`
	WideRecords *bool  `yaml:"wide_records"`

	// Server
	ServerAddress string   `yaml:"server_address"`
	MaxUpload     *int64   `yaml:"max_upload"`
	RateLimit     *float64 `yaml:"rate_limit"`
	RateBurst     *int     `yaml:"rate_burst"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "fbxtool", "config.yaml")
}

// LoadConfig reads the config file at path, or at the default location when
// path is empty. A missing default file yields a zero Config; a missing
// explicit file is an error.
func LoadConfig(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = configPath()
	}
	if path == "" {
		return Config{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return c, nil
}

// applyGlobalConfig applies config file defaults to the global flags that
// were not explicitly set.
func applyGlobalConfig(c *cli.Command, cfg Config) {
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
	if cfg.MemoryLimit != nil && !c.IsSet("memory-limit") {
		memoryLimit = *cfg.MemoryLimit
	}
	if cfg.Strict != nil && !c.IsSet("strict") {
		strict = *cfg.Strict
	}
	if cfg.WideRecords != nil && !c.IsSet("wide-records") {
		wideRecords = *cfg.WideRecords
	}
}

// applyServeConfig applies config file defaults to serve command variables.
func applyServeConfig(c *cli.Command, cfg Config, addr *string, maxUpload *int64, rateLimit *float64, rateBurst *int) {
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
	if cfg.MaxUpload != nil && !c.IsSet("max-upload") {
		*maxUpload = *cfg.MaxUpload
	}
	if cfg.RateLimit != nil && !c.IsSet("rate") {
		*rateLimit = *cfg.RateLimit
	}
	if cfg.RateBurst != nil && !c.IsSet("burst") {
		*rateBurst = *cfg.RateBurst
	}
}
