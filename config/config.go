package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/railfleet/core/metrics"
	"github.com/kilianp07/railfleet/core/recommend"
	"github.com/kilianp07/railfleet/infra/mqtt"
)

type Config struct {
	Engine  recommend.Thresholds `json:"engine"`
	Fleet   FleetConfig          `json:"fleet"`
	HTTP    HTTPConfig           `json:"http"`
	MQTT    mqtt.Config          `json:"mqtt"`
	Metrics metrics.Config       `json:"metrics"`
	Logging LoggingConfig        `json:"logging"`
	Sentry  SentryConfig         `json:"sentry"`
}

// SetDefaults fills every section's unset fields.
func (c *Config) SetDefaults() {
	c.Engine.SetDefaults()
	c.Fleet.SetDefaults()
	c.HTTP.SetDefaults()
	c.Logging.SetDefaults()
	if c.MQTT.Enabled() {
		c.MQTT.SetDefaults()
	}
}

// Validate checks every section, prefixing errors with the section name.
func (c Config) Validate() error {
	if err := c.Engine.Validate(); err != nil {
		return err
	}
	if err := c.Fleet.Validate(); err != nil {
		return fmt.Errorf("fleet: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if c.MQTT.Enabled() {
		if err := c.MQTT.Validate(); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}
	return nil
}

// Default returns a configuration with every default applied, used when no
// config file is given.
func Default() *Config {
	var cfg Config
	cfg.SetDefaults()
	return &cfg
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
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
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
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
