package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	defaultCount    = 1
	defaultTimeout  = 10 * time.Second
	defaultLogLevel = "info"

	// EnvPrefix prefixes every environment override, e.g. HTTPBENCH_COUNT.
	EnvPrefix = "HTTPBENCH"
)

type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("duration must be a scalar")
	}
	switch value.Tag {
	case "!!int", "!!float":
		var secs float64
		if err := value.Decode(&secs); err != nil {
			return err
		}
		*d = Duration(time.Duration(secs * float64(time.Second)))
		return nil
	default:
		var raw string
		if err := value.Decode(&raw); err != nil {
			return err
		}
		if raw == "" {
			*d = 0
			return nil
		}
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return err
		}
		*d = Duration(parsed)
		return nil
	}
}

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Config is the validated run configuration.
type Config struct {
	Hosts       []string `yaml:"hosts" validate:"required,min=1,dive,httphost"`
	HostsFile   string   `yaml:"hosts_file"`
	Count       int      `yaml:"count" validate:"min=1"`
	Output      string   `yaml:"output"`
	Timeout     Duration `yaml:"timeout" validate:"gt=0"`
	Rate        float64  `yaml:"rate" validate:"gte=0"`
	MetricsAddr string   `yaml:"metrics_addr"`
	LogLevel    string   `yaml:"log_level" validate:"oneof=debug info warn error"`
}

// Overrides carries optional values from the environment or the command
// line. Nil fields leave the lower layer untouched.
type Overrides struct {
	Hosts       *string        `envconfig:"HOSTS"`
	File        *string        `envconfig:"FILE"`
	Count       *int           `envconfig:"COUNT"`
	Output      *string        `envconfig:"OUTPUT"`
	Timeout     *time.Duration `envconfig:"TIMEOUT"`
	Rate        *float64       `envconfig:"RATE"`
	MetricsAddr *string        `envconfig:"METRICS_ADDR"`
	LogLevel    *string        `envconfig:"LOG_LEVEL"`
}

// Sources lists where Load reads configuration from.
type Sources struct {
	// ConfigPath is an optional YAML file.
	ConfigPath string
	// EnvFile is an optional dotenv file loaded before reading the environment.
	EnvFile string
	// Flags holds command-line values, applied last.
	Flags Overrides
}

func defaults() Config {
	return Config{
		Count:    defaultCount,
		Timeout:  Duration(defaultTimeout),
		LogLevel: defaultLogLevel,
	}
}

// Load layers defaults, the YAML file, the environment and flags, resolves
// the host list and validates the result.
func Load(src Sources) (Config, error) {
	cfg := defaults()
	if src.ConfigPath != "" {
		if err := loadFile(src.ConfigPath, &cfg); err != nil {
			return Config{}, err
		}
	}

	env, err := loadEnv(src.EnvFile)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.apply(env); err != nil {
		return Config{}, fmt.Errorf("environment: %w", err)
	}
	if err := cfg.apply(src.Flags); err != nil {
		return Config{}, err
	}

	if cfg.HostsFile != "" {
		hosts, err := ReadHostsFile(cfg.HostsFile)
		if err != nil {
			return Config{}, err
		}
		cfg.Hosts = hosts
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if len(cfg.Hosts) > 0 && cfg.HostsFile != "" {
		return fmt.Errorf("%s: %w", path, ErrConflictingHosts)
	}
	return nil
}

func loadEnv(envFile string) (Overrides, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return Overrides{}, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}
	var env Overrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return Overrides{}, err
	}
	return env, nil
}

func (c *Config) apply(o Overrides) error {
	if o.Hosts != nil && o.File != nil {
		return ErrConflictingHosts
	}
	if o.Hosts != nil {
		c.Hosts = ParseHostList(*o.Hosts)
		c.HostsFile = ""
	}
	if o.File != nil {
		c.HostsFile = *o.File
		c.Hosts = nil
	}
	if o.Count != nil {
		c.Count = *o.Count
	}
	if o.Output != nil {
		c.Output = *o.Output
	}
	if o.Timeout != nil {
		c.Timeout = Duration(*o.Timeout)
	}
	if o.Rate != nil {
		c.Rate = *o.Rate
	}
	if o.MetricsAddr != nil {
		c.MetricsAddr = *o.MetricsAddr
	}
	if o.LogLevel != nil {
		c.LogLevel = *o.LogLevel
	}
	return nil
}
