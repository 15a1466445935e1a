// Package config loads the tunable knobs for a Store: storage
// directory, badger options, and the optional kafka changelog
// publisher. It follows the pack's per-component viper.New() +
// Unmarshal idiom rather than a single global viper instance, so that
// multiple Stores in the same process never fight over bound flags.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config is the full set of options a Store can be configured from,
// e.g. loaded from a TOML/YAML/JSON file on disk.
type Config struct {
	Storage StorageConfig `mapstructure:"storage"`
	Kafka   KafkaConfig   `mapstructure:"kafka"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// StorageConfig configures the embedded badger substrate.
type StorageConfig struct {
	Path     string `mapstructure:"path"`
	InMemory bool   `mapstructure:"in_memory"`
}

// KafkaConfig configures the optional activity-feed publisher. Servers
// is left empty when no changelog publishing is desired.
type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Topic   string   `mapstructure:"topic"`
	Servers []string `mapstructure:"servers"`
}

// LoggingConfig configures the package-level zap logger.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Default returns the configuration used when no file is supplied: an
// on-disk badger store rooted at path, no changelog publishing.
func Default(path string) Config {
	return Config{
		Storage: StorageConfig{Path: path},
	}
}

// Load reads configuration from the file at path (format inferred
// from its extension, e.g. .toml, .yaml, .json) and unmarshals it into
// a Config, starting from Default("") so unset fields keep sane zero
// values.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("storage.path", "")
	v.SetDefault("storage.in_memory", false)
	v.SetDefault("kafka.enabled", false)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("config: reading %q: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshaling %q: %w", path, err)
	}
	return cfg, nil
}
