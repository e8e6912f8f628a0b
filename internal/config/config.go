// Package config loads the dashgrid configuration file.
//
// The file is YAML (JSON is accepted too, being a YAML subset). It is decoded into
// a generic map first and then into Config with mapstructure, so widths may be
// written as tokens or numbers and durations as strings like "750ms".
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"time"

	"github.com/aretw0/dashgrid/internal/logging"
	"github.com/aretw0/dashgrid/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// EnvPath names the environment variable that overrides the config path.
const EnvPath = "DASHGRID_CONFIG"

// Store drivers.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverRedis  = "redis"
	DriverSQLite = "sqlite"
)

// Config is the full application configuration.
type Config struct {
	Zones      []domain.ZoneDescriptor      `mapstructure:"zones" yaml:"zones"`
	Components []domain.ComponentDescriptor `mapstructure:"components" yaml:"components,omitempty"`
	Activation ActivationConfig             `mapstructure:"activation" yaml:"activation"`
	Store      StoreConfig                  `mapstructure:"store" yaml:"store"`
	Server     ServerConfig                 `mapstructure:"server" yaml:"server"`
	Log        LogConfig                    `mapstructure:"log" yaml:"log"`
	Tracing    TracingConfig                `mapstructure:"tracing" yaml:"tracing"`
}

// ActivationConfig selects the drag activation policy.
type ActivationConfig struct {
	Mode      string        `mapstructure:"mode" yaml:"mode"`
	Delay     time.Duration `mapstructure:"delay" yaml:"delay,omitempty"`
	Tolerance float64       `mapstructure:"tolerance" yaml:"tolerance,omitempty"`
}

// StoreConfig selects where layout snapshots are persisted.
type StoreConfig struct {
	Driver   string        `mapstructure:"driver" yaml:"driver"`
	Path     string        `mapstructure:"path" yaml:"path,omitempty"`
	Addr     string        `mapstructure:"addr" yaml:"addr,omitempty"`
	Password string        `mapstructure:"password" yaml:"password,omitempty"`
	DB       int           `mapstructure:"db" yaml:"db,omitempty"`
	Prefix   string        `mapstructure:"prefix" yaml:"prefix,omitempty"`
	TTL      time.Duration `mapstructure:"ttl" yaml:"ttl,omitempty"`
	Lock     bool          `mapstructure:"lock" yaml:"lock,omitempty"`
	LayoutID string        `mapstructure:"layout_id" yaml:"layout_id"`
	Autosave bool          `mapstructure:"autosave" yaml:"autosave"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// LogConfig configures the slog logger.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	JSON  bool   `mapstructure:"json" yaml:"json,omitempty"`
}

// TracingConfig enables OTLP trace export when Endpoint is set.
type TracingConfig struct {
	Endpoint    string `mapstructure:"endpoint" yaml:"endpoint,omitempty"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name,omitempty"`
}

// Default returns a configuration with a single full-width zone.
func Default() *Config {
	return &Config{
		Zones: []domain.ZoneDescriptor{
			{ID: "main", Width: domain.TokenWidth(domain.WidthFull)},
		},
		Activation: ActivationConfig{Mode: string(domain.ActivationImmediate)},
		Store:      StoreConfig{Driver: DriverMemory, LayoutID: "default", Autosave: true},
		Server:     ServerConfig{Addr: ":8080"},
		Log:        LogConfig{Level: "info"},
		Tracing:    TracingConfig{ServiceName: "dashgrid"},
	}
}

// Load reads the configuration at path. An empty path falls back to $DASHGRID_CONFIG;
// when neither is set, or the file does not exist, defaults are returned.
// Values present in the file override the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvPath)
	}
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := Decode(data, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode parses YAML or JSON data onto cfg and validates the result.
func Decode(data []byte, cfg *Config) error {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	if len(raw) > 0 {
		// A file that lists zones replaces the default zone set instead of merging into it.
		if _, ok := raw["zones"]; ok {
			cfg.Zones = nil
		}
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				widthHook,
				mapstructure.StringToTimeDurationHookFunc(),
			),
			ErrorUnused:      true,
			WeaklyTypedInput: false,
			Result:           cfg,
		})
		if err != nil {
			return err
		}
		if err := decoder.Decode(raw); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
	}
	return cfg.Validate()
}

// widthHook turns "small" / 320 / "320" into domain.Width.
func widthHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(domain.Width{}) {
		return data, nil
	}
	switch v := data.(type) {
	case string:
		return domain.ParseWidth(v)
	case int:
		w := domain.CustomWidth(float64(v))
		return w, w.Validate()
	case float64:
		w := domain.CustomWidth(v)
		return w, w.Validate()
	case domain.Width:
		return v, nil
	default:
		return nil, fmt.Errorf("%w: unsupported value %v (%s)", domain.ErrInvalidWidth, data, from)
	}
}

// Validate checks cross-field rules that decoding cannot express.
func (c *Config) Validate() error {
	var errs []error
	if len(c.Zones) == 0 {
		errs = append(errs, errors.New("at least one zone is required"))
	}
	for i, z := range c.Zones {
		if z.ID == "" {
			errs = append(errs, fmt.Errorf("zones[%d]: id is required", i))
		}
	}
	if _, err := c.Activation.Policy(); err != nil {
		errs = append(errs, err)
	}
	if c.Activation.Tolerance < 0 {
		errs = append(errs, errors.New("activation.tolerance must not be negative"))
	}
	switch c.Store.Driver {
	case DriverMemory, DriverFile, DriverSQLite:
	case DriverRedis:
		if c.Store.Addr == "" {
			errs = append(errs, errors.New("store.addr is required for the redis driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store driver %q", c.Store.Driver))
	}
	if c.Store.LayoutID == "" {
		errs = append(errs, errors.New("store.layout_id is required"))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Policy converts the activation section into a domain policy.
func (a ActivationConfig) Policy() (domain.ActivationPolicy, error) {
	mode, err := domain.ParseActivationMode(a.Mode)
	if err != nil {
		return domain.ActivationPolicy{}, err
	}
	if mode == domain.ActivationDelayed {
		return domain.Delayed(a.Delay), nil
	}
	return domain.Immediate(), nil
}
