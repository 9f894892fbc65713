package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration for parsing duration strings such as "2s".
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

type Config struct {
	Inventory InventoryConfig `toml:"inventory" yaml:"inventory"`
	Signal    SignalConfig    `toml:"signal" yaml:"signal"`
	Stream    StreamConfig    `toml:"stream" yaml:"stream"`
	Log       LogConfig       `toml:"log" yaml:"log"`
	Metrics   MetricsConfig   `toml:"metrics" yaml:"metrics"`
	Nats      NatsConfig      `toml:"nats" yaml:"nats"`
}

// InventoryConfig selects the providers whose devices make up a snapshot.
type InventoryConfig struct {
	Sources    []string `toml:"sources" yaml:"sources"`
	Subsystems []string `toml:"subsystems" yaml:"subsystems"`
}

// SignalConfig selects the hook notifying about hardware changes.
type SignalConfig struct {
	Transport    string   `toml:"transport" yaml:"transport"`
	PollInterval Duration `toml:"poll_interval" yaml:"poll_interval"`
}

type StreamConfig struct {
	KeepBaselineOnFailure bool `toml:"keep_baseline_on_failure" yaml:"keep_baseline_on_failure"`
}

type LogConfig struct {
	Level string `toml:"level" yaml:"level"`
}

// MetricsConfig enables the prometheus endpoint when Listen is set.
type MetricsConfig struct {
	Listen string `toml:"listen" yaml:"listen"`
}

// NatsConfig enables forwarding of changes when Url is set.
type NatsConfig struct {
	Url      string `toml:"url" yaml:"url"`
	Subject  string `toml:"subject" yaml:"subject"`
	Encoding string `toml:"encoding" yaml:"encoding"`
}

// DefaultPath returns $XDG_CONFIG_HOME/devchange/config.toml, falling back
// to ~/.config.
func DefaultPath() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "devchange", "config.toml"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "cannot determine home directory")
	}
	return filepath.Join(home, ".config", "devchange", "config.toml"), nil
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads a TOML or YAML config file, chosen by extension. If path is
// empty the default path is used, and a missing default file yields Default().
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		defaultPath, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, errors.Wrap(err, "cannot read config file")
	}

	cfg := &Config{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = toml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.Wrap(err, "cannot parse config file")
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return cfg, nil
}
