// Package config defines the configuration of the taskpool command.
//
// Values are resolved by viper in this order: command-line flags, TASKPOOL_*
// environment variables, an optional YAML file, then the defaults below.
//
//	┌──────────────────┬──────────────┬───────────────────────────────────┐
//	│ Key              │ Default      │ Description                       │
//	├──────────────────┼──────────────┼───────────────────────────────────┤
//	│ workers          │ NumCPU       │ Workers in the benchmark pool     │
//	│ log.level        │ "info"       │ debug, info, warn or error        │
//	│ log.format       │ "console"    │ console or json                   │
//	│ metrics.enabled  │ true         │ Serve Prometheus metrics          │
//	│ metrics.address  │ ":9090"      │ Listen address for /metrics       │
//	│ heartbeat        │ "@every 5s"  │ Cron spec for the stats heartbeat │
//	└──────────────────┴──────────────┴───────────────────────────────────┘
package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/vnykmshr/taskpool/internal/logging"
	"github.com/vnykmshr/taskpool/pkg/common/validation"
	"github.com/vnykmshr/taskpool/pkg/scheduling/scheduler"
)

// EnvPrefix is prepended to every environment variable, e.g. TASKPOOL_WORKERS.
const EnvPrefix = "TASKPOOL"

// Configuration is the effective configuration of the command.
type Configuration struct {
	Workers   int     `mapstructure:"workers" yaml:"workers"`
	Log       Log     `mapstructure:"log" yaml:"log"`
	Metrics   Metrics `mapstructure:"metrics" yaml:"metrics"`
	Heartbeat string  `mapstructure:"heartbeat" yaml:"heartbeat"`
}

// Log configures the process logger.
type Log struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Metrics configures the Prometheus endpoint.
type Metrics struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Address string `mapstructure:"address" yaml:"address"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Configuration {
	return Configuration{
		Workers: runtime.NumCPU(),
		Log: Log{
			Level:  "info",
			Format: logging.FormatConsole,
		},
		Metrics: Metrics{
			Enabled: true,
			Address: ":9090",
		},
		Heartbeat: "@every 5s",
	}
}

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()
	d := Default()
	v.SetDefault("workers", d.Workers)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.address", d.Metrics.Address)
	v.SetDefault("heartbeat", d.Heartbeat)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// RegisterFlags adds the persistent flags of the command to fs and binds them
// to v.
func RegisterFlags(fs *pflag.FlagSet, v *viper.Viper) error {
	d := Default()
	fs.String("config", "", "Path to a YAML configuration file")
	fs.Int("workers", d.Workers, "Number of pool workers")
	fs.String("log-level", d.Log.Level, "Log level: debug, info, warn or error")
	fs.String("log-format", d.Log.Format, "Log format: console or json")
	fs.Bool("metrics", d.Metrics.Enabled, "Serve Prometheus metrics")
	fs.String("metrics-address", d.Metrics.Address, "Listen address for the metrics endpoint")
	fs.String("heartbeat", d.Heartbeat, "Cron spec for the stats heartbeat")

	bindings := map[string]string{
		"workers":         "workers",
		"log.level":       "log-level",
		"log.format":      "log-format",
		"metrics.enabled": "metrics",
		"metrics.address": "metrics-address",
		"heartbeat":       "heartbeat",
	}
	for key, flag := range bindings {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return fmt.Errorf("failed to bind flag %q: %w", flag, err)
		}
	}
	return nil
}

// Load reads the optional config file and returns the validated configuration.
func Load(v *viper.Viper, file string) (Configuration, error) {
	if file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Configuration{}, fmt.Errorf("failed to read config file %q: %w", file, err)
		}
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return Configuration{}, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Configuration{}, err
	}
	return cfg, nil
}

// Validate checks every field and reports all problems at once.
func (c Configuration) Validate() error {
	var errs []error
	if err := validation.ValidateNonNegative("config", "workers", c.Workers); err != nil {
		errs = append(errs, err)
	}
	if err := logging.Validate(c.Log.Level, c.Log.Format); err != nil {
		errs = append(errs, err)
	}
	if c.Metrics.Enabled {
		if err := validation.ValidateNotEmpty("config", "metrics.address", c.Metrics.Address); err != nil {
			errs = append(errs, err)
		}
	}
	if err := scheduler.ValidateCron(c.Heartbeat); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// YAML renders the configuration as a YAML document.
func (c Configuration) YAML() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to encode configuration: %w", err)
	}
	return out, nil
}
