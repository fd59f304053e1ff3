// Package config loads application configuration from defaults, an optional
// YAML file, PANELCUT_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/piwi3910/PanelCut/internal/model"
	"github.com/piwi3910/PanelCut/internal/share"
)

// EnvPrefix prefixes every environment override, e.g. PANELCUT_SETTINGS_KERF.
const EnvPrefix = "PANELCUT"

// Share backends.
const (
	BackendMemory = "memory"
	BackendS3     = "s3"
)

type ShareConfig struct {
	Backend string        `mapstructure:"backend"`
	TTL     time.Duration `mapstructure:"ttl"`
	Bucket  string        `mapstructure:"bucket"`
	Prefix  string        `mapstructure:"prefix"`
}

type ServerConfig struct {
	Addr    string `mapstructure:"addr"`
	BaseURL string `mapstructure:"base_url"`
}

type LogConfig struct {
	Format string `mapstructure:"format"` // text or json
	Level  string `mapstructure:"level"`
}

type TelemetryConfig struct {
	// Endpoint is an OTLP/HTTP collector URL. Empty falls back to
	// OTEL_EXPORTER_OTLP_ENDPOINT, then to a discarding exporter.
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
}

// Config is the complete application configuration.
type Config struct {
	Settings         model.Settings  `mapstructure:"settings"`
	CatalogPath      string          `mapstructure:"catalog_path"`
	DefaultMaterial  string          `mapstructure:"default_material"`
	DefaultThickness float64         `mapstructure:"default_thickness"`
	Share            ShareConfig     `mapstructure:"share"`
	Server           ServerConfig    `mapstructure:"server"`
	Log              LogConfig       `mapstructure:"log"`
	Telemetry        TelemetryConfig `mapstructure:"telemetry"`
}

// DefaultPath returns ~/.panelcut.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".panelcut.yaml"
	}
	return filepath.Join(home, ".panelcut.yaml")
}

// SetDefaults registers every key with its default value. Keys must be
// known to viper for environment overrides to apply on Unmarshal.
func SetDefaults(v *viper.Viper) {
	s := model.DefaultSettings()
	v.SetDefault("settings.kerf", s.Kerf)
	v.SetDefault("settings.thickness_tolerance", s.ThicknessTolerance)
	v.SetDefault("settings.merge_interval", s.MergeInterval)
	v.SetDefault("settings.heuristic", string(s.Heuristic))
	v.SetDefault("settings.split", string(s.Split))
	v.SetDefault("settings.order", string(s.Order))
	v.SetDefault("settings.stock_selection", string(s.StockSelection))
	v.SetDefault("settings.algorithm", string(s.Algorithm))
	v.SetDefault("settings.concurrency", s.Concurrency)
	v.SetDefault("settings.genetic.population_size", s.Genetic.PopulationSize)
	v.SetDefault("settings.genetic.generations", s.Genetic.Generations)
	v.SetDefault("settings.genetic.mutation_rate", s.Genetic.MutationRate)
	v.SetDefault("settings.genetic.tournament_size", s.Genetic.TournamentSize)
	v.SetDefault("settings.genetic.elite_count", s.Genetic.EliteCount)
	v.SetDefault("settings.genetic.seed", s.Genetic.Seed)

	v.SetDefault("catalog_path", "")
	v.SetDefault("default_material", "")
	v.SetDefault("default_thickness", 0.0)

	v.SetDefault("share.backend", BackendMemory)
	v.SetDefault("share.ttl", share.DefaultTTL)
	v.SetDefault("share.bucket", "")
	v.SetDefault("share.prefix", "shared/")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.base_url", "http://localhost:8080")

	v.SetDefault("log.format", "text")
	v.SetDefault("log.level", "info")

	v.SetDefault("telemetry.endpoint", "")
	v.SetDefault("telemetry.service_name", "panelcut")
}

// New returns a viper instance with defaults and environment binding. It
// reads path when set, or DefaultPath when that file exists.
func New(path string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = DefaultPath()
		if _, err := os.Stat(path); err != nil {
			return v, nil
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return v, nil
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	c.Settings = c.Settings.WithDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate reports the first invalid value.
func (c Config) Validate() error {
	if err := c.Settings.Validate(); err != nil {
		return fmt.Errorf("settings: %w", err)
	}
	if c.DefaultThickness < 0 {
		return fmt.Errorf("default_thickness must not be negative, got %g", c.DefaultThickness)
	}
	switch c.Share.Backend {
	case BackendMemory:
	case BackendS3:
		if c.Share.Bucket == "" {
			return errors.New("share.bucket is required for the s3 backend")
		}
	default:
		return fmt.Errorf("unknown share backend %q", c.Share.Backend)
	}
	if c.Share.TTL <= 0 {
		return fmt.Errorf("share.ttl must be positive, got %s", c.Share.TTL)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}
