// Package config loads the id3depad TOML configuration file.
package config

import (
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/simonhull/id3depad/internal/logging"
)

// Config holds the settings shared by the command line flags and the
// config file. Flags given on the command line win over the file.
type Config struct {
	Silent          bool
	BackupSuffix    string
	PreserveModTime bool
	Validate        bool
	Concurrency     int
	MetricsTextfile string
	LogLevel        string
	LogNoColor      bool
}

type fileConfig struct {
	Silent          bool   `toml:"silent"`
	BackupSuffix    string `toml:"backup_suffix"`
	PreserveModTime bool   `toml:"preserve_mod_time"`
	Validate        bool   `toml:"validate"`
	Concurrency     int    `toml:"concurrency"`
	MetricsTextfile string `toml:"metrics_textfile"`
	LogLevel        string `toml:"log_level"`
	LogNoColor      bool   `toml:"log_no_color"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		LogLevel: "warn",
	}
}

// Load reads path and overlays every key it defines onto Default().
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, errors.Wrap(err, "load config")
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, errors.Errorf("load config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("silent") {
		cfg.Silent = raw.Silent
	}
	if meta.IsDefined("backup_suffix") {
		cfg.BackupSuffix = strings.TrimSpace(raw.BackupSuffix)
	}
	if meta.IsDefined("preserve_mod_time") {
		cfg.PreserveModTime = raw.PreserveModTime
	}
	if meta.IsDefined("validate") {
		cfg.Validate = raw.Validate
	}
	if meta.IsDefined("concurrency") {
		if raw.Concurrency < 0 {
			return Config{}, errors.Errorf("parse concurrency: must not be negative, got %d", raw.Concurrency)
		}
		cfg.Concurrency = raw.Concurrency
	}
	if meta.IsDefined("metrics_textfile") {
		cfg.MetricsTextfile = strings.TrimSpace(raw.MetricsTextfile)
	}
	if meta.IsDefined("log_level") {
		if _, ok := logging.ParseLevel(raw.LogLevel); !ok {
			return Config{}, errors.Errorf("parse log_level: unknown level %q", raw.LogLevel)
		}
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("log_no_color") {
		cfg.LogNoColor = raw.LogNoColor
	}

	return cfg, nil
}
