package config

import (
	stderrors "errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const (
	SourceUdev  = "udev"
	SourceUsb   = "usb"
	SourceScard = "scard"

	TransportUdev  = "udev"
	TransportScard = "scard"
	TransportPoll  = "poll"

	EncodingJson = "json"
	EncodingCbor = "cbor"
)

const (
	DefaultPollInterval = Duration(2 * time.Second)
	DefaultSubject      = "devices.changes"
	DefaultLogLevel     = "info"
)

var DefaultSubsystems = []string{"usb"}

func applyDefaults(cfg *Config) {
	if len(cfg.Inventory.Sources) == 0 {
		cfg.Inventory.Sources = []string{defaultSource}
	}
	if len(cfg.Inventory.Subsystems) == 0 {
		cfg.Inventory.Subsystems = append([]string(nil), DefaultSubsystems...)
	}
	if cfg.Signal.Transport == "" {
		cfg.Signal.Transport = defaultTransport
	}
	if cfg.Signal.PollInterval == 0 {
		cfg.Signal.PollInterval = DefaultPollInterval
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Nats.Subject == "" {
		cfg.Nats.Subject = DefaultSubject
	}
	if cfg.Nats.Encoding == "" {
		cfg.Nats.Encoding = EncodingJson
	}
}

func validate(cfg *Config) error {
	var errs []error

	for _, source := range cfg.Inventory.Sources {
		switch source {
		case SourceUdev, SourceUsb, SourceScard:
		default:
			errs = append(errs, fmt.Errorf("inventory.sources: unknown source %q", source))
		}
	}

	switch cfg.Signal.Transport {
	case TransportUdev, TransportScard, TransportPoll:
	default:
		errs = append(errs, fmt.Errorf("signal.transport: unknown transport %q", cfg.Signal.Transport))
	}

	if cfg.Signal.PollInterval < 0 {
		errs = append(errs, stderrors.New("signal.poll_interval must be positive"))
	}

	if _, err := zerolog.ParseLevel(cfg.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}

	switch cfg.Nats.Encoding {
	case EncodingJson, EncodingCbor:
	default:
		errs = append(errs, fmt.Errorf("nats.encoding: unknown encoding %q", cfg.Nats.Encoding))
	}

	return stderrors.Join(errs...)
}
