package config

import (
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/powermix/core/metrics"
	"github.com/kilianp07/powermix/infra/mqtt"
)

// EnvPrefix marks environment overrides. A double underscore separates
// nested keys: PM_SIMULATION__DAYS=10 sets simulation.days.
const EnvPrefix = "PM_"

type Config struct {
	Simulation SimulationConfig `json:"simulation"`
	Seasons    SeasonsConfig    `json:"seasons"`
	Wind       WindConfig       `json:"wind"`
	Water      WaterConfig      `json:"water"`
	Optimizer  OptimizerConfig  `json:"optimizer"`
	// Factories is the required set of consumers, by identifier.
	Factories map[string]int  `json:"factories"`
	EnergyMix EnergyMixConfig `json:"energy_mix"`
	Catalog   CatalogConfig   `json:"catalog"`
	Metrics   metrics.Config  `json:"metrics"`
	MQTT      mqtt.Config     `json:"mqtt"`
	Logging   LoggingConfig   `json:"logging"`
	Sentry    SentryConfig    `json:"sentry"`
}

// Default returns a configuration with every section defaulted. It is used
// when no file is given.
func Default() *Config {
	var cfg Config
	cfg.SetDefaults()
	return &cfg
}

// Load reads a yaml or json file, applies environment overrides, defaults
// and validation. An empty path loads only the environment.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills every unset field.
func (c *Config) SetDefaults() {
	c.Simulation.SetDefaults()
	c.Seasons.SetDefaults()
	c.Wind.SetDefaults()
	c.Water.SetDefaults()
	c.Optimizer.SetDefaults()
	c.Logging.SetDefaults()
	c.Sentry.SetDefaults()
	if c.MQTT.TopicPrefix == "" {
		c.MQTT.TopicPrefix = mqtt.DefaultTopicPrefix
	}
}

// Validate checks every section and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error
	sections := []struct {
		name string
		err  error
	}{
		{"simulation", c.Simulation.Validate()},
		{"seasons", c.Seasons.Validate()},
		{"wind", c.Wind.Validate()},
		{"water", c.Water.Validate()},
		{"optimizer", c.Optimizer.Validate()},
		{"catalog", c.Catalog.Validate()},
		{"logging", c.Logging.Validate()},
	}
	for _, s := range sections {
		if s.err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.name, s.err))
		}
	}
	for _, id := range slices.Sorted(maps.Keys(c.Factories)) {
		if n := c.Factories[id]; n < 0 {
			errs = append(errs, fmt.Errorf("factories: %s: negative count %d", id, n))
		}
	}
	return errors.Join(errs...)
}
