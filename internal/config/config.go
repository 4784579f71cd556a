// Package config loads settings for the ringqueue demo session.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Settings is the effective configuration of a producer/consumer session.
type Settings struct {
	Queue     QueueSettings `mapstructure:"queue" yaml:"queue"`
	Producers int           `mapstructure:"producers" yaml:"producers"`
	Consumers int           `mapstructure:"consumers" yaml:"consumers"`
	// Items is the number of values sent across all producers.
	Items int `mapstructure:"items" yaml:"items"`
	// Rate paces each producer in values per second; 0 means unpaced.
	Rate float64 `mapstructure:"rate" yaml:"rate"`
	// LogEvery logs every Nth produced and consumed value; 0 disables it.
	LogEvery int             `mapstructure:"log_every" yaml:"log_every"`
	Log      LogSettings     `mapstructure:"log" yaml:"log"`
	Metrics  MetricsSettings `mapstructure:"metrics" yaml:"metrics"`
}

type QueueSettings struct {
	Capacity int `mapstructure:"capacity" yaml:"capacity"`
}

type LogSettings struct {
	Level  string `mapstructure:"level" yaml:"level"`   // debug, info, warn, error
	Format string `mapstructure:"format" yaml:"format"` // text, json
}

type MetricsSettings struct {
	Listen string `mapstructure:"listen" yaml:"listen"` // host:port for /metrics, empty = disabled
}

// EnvPrefix is prepended to environment overrides, e.g. RINGQUEUE_QUEUE_CAPACITY.
const EnvPrefix = "RINGQUEUE"

// ErrInvalidSettings is wrapped by every Validate failure.
var ErrInvalidSettings = errors.New("config: invalid settings")

// SetDefaults registers default values on v. They reproduce the classic
// demo: a two-slot buffer, one producer, three consumers.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("queue.capacity", 2)
	v.SetDefault("producers", 1)
	v.SetDefault("consumers", 3)
	v.SetDefault("items", 100000)
	v.SetDefault("rate", 0.0)
	v.SetDefault("log_every", 10000)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("metrics.listen", "")
}

// New returns a viper instance with defaults and environment overrides.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the optional yaml file at path into v and decodes the result.
func Load(v *viper.Viper, path string) (*Settings, error) {
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
	}
	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("config: decoding settings: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// Validate rejects settings no session can run with.
func (s *Settings) Validate() error {
	var errs []error
	if s.Queue.Capacity <= 0 {
		errs = append(errs, fmt.Errorf("queue.capacity must be positive, got %d", s.Queue.Capacity))
	}
	if s.Producers < 1 {
		errs = append(errs, fmt.Errorf("producers must be at least 1, got %d", s.Producers))
	}
	if s.Consumers < 1 {
		errs = append(errs, fmt.Errorf("consumers must be at least 1, got %d", s.Consumers))
	}
	if s.Items < 0 {
		errs = append(errs, fmt.Errorf("items must not be negative, got %d", s.Items))
	}
	if s.Rate < 0 {
		errs = append(errs, fmt.Errorf("rate must not be negative, got %g", s.Rate))
	}
	if s.LogEvery < 0 {
		errs = append(errs, fmt.Errorf("log_every must not be negative, got %d", s.LogEvery))
	}
	switch s.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", s.Log.Format))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidSettings, errors.Join(errs...))
	}
	return nil
}

// YAML renders s as a yaml document.
func (s *Settings) YAML() ([]byte, error) {
	return yaml.Marshal(s)
}
