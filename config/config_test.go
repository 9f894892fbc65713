package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, name string, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("toml", func(t *testing.T) {
		path := writeTempConfig(t, "config.toml", `
[inventory]
sources = ["usb", "scard"]
subsystems = ["usb", "hidraw"]

[signal]
transport = "poll"
poll_interval = "500ms"

[stream]
keep_baseline_on_failure = true

[log]
level = "debug"

[metrics]
listen = ":9100"

[nats]
url = "nats://localhost:4222"
subject = "lab.devices"
encoding = "cbor"
`)

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, []string{"usb", "scard"}, cfg.Inventory.Sources)
		assert.Equal(t, []string{"usb", "hidraw"}, cfg.Inventory.Subsystems)
		assert.Equal(t, TransportPoll, cfg.Signal.Transport)
		assert.Equal(t, Duration(500*time.Millisecond), cfg.Signal.PollInterval)
		assert.True(t, cfg.Stream.KeepBaselineOnFailure)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, ":9100", cfg.Metrics.Listen)
		assert.Equal(t, "nats://localhost:4222", cfg.Nats.Url)
		assert.Equal(t, "lab.devices", cfg.Nats.Subject)
		assert.Equal(t, EncodingCbor, cfg.Nats.Encoding)
	})

	t.Run("yaml", func(t *testing.T) {
		path := writeTempConfig(t, "config.yaml", `
inventory:
  sources: [scard]
signal:
  transport: scard
  poll_interval: 3s
nats:
  url: nats://broker:4222
`)

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, []string{SourceScard}, cfg.Inventory.Sources)
		assert.Equal(t, TransportScard, cfg.Signal.Transport)
		assert.Equal(t, Duration(3*time.Second), cfg.Signal.PollInterval)
		assert.Equal(t, "nats://broker:4222", cfg.Nats.Url)
		assert.Equal(t, DefaultSubject, cfg.Nats.Subject)
	})

	t.Run("defaults", func(t *testing.T) {
		path := writeTempConfig(t, "config.toml", `
[metrics]
listen = ":9100"
`)

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, []string{defaultSource}, cfg.Inventory.Sources)
		assert.Equal(t, DefaultSubsystems, cfg.Inventory.Subsystems)
		assert.Equal(t, defaultTransport, cfg.Signal.Transport)
		assert.Equal(t, DefaultPollInterval, cfg.Signal.PollInterval)
		assert.False(t, cfg.Stream.KeepBaselineOnFailure)
		assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
		assert.Equal(t, EncodingJson, cfg.Nats.Encoding)
		assert.Empty(t, cfg.Nats.Url)
	})

	t.Run("explicit path must exist", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
		assert.Error(t, err)
	})

	t.Run("missing default file yields defaults", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("malformed file", func(t *testing.T) {
		path := writeTempConfig(t, "config.toml", `[signal`)

		_, err := Load(path)
		assert.ErrorContains(t, err, "cannot parse config file")
	})

	t.Run("invalid values are all reported", func(t *testing.T) {
		path := writeTempConfig(t, "config.toml", `
[inventory]
sources = ["firewire"]

[signal]
transport = "carrier-pigeon"

[log]
level = "loud"

[nats]
encoding = "xml"
`)

		_, err := Load(path)
		require.Error(t, err)
		assert.ErrorContains(t, err, `unknown source "firewire"`)
		assert.ErrorContains(t, err, `unknown transport "carrier-pigeon"`)
		assert.ErrorContains(t, err, "log.level")
		assert.ErrorContains(t, err, `unknown encoding "xml"`)
	})

	t.Run("bad duration", func(t *testing.T) {
		path := writeTempConfig(t, "config.toml", `
[signal]
poll_interval = "soon"
`)

		_, err := Load(path)
		assert.Error(t, err)
	})
}

func TestDefaultPath(t *testing.T) {
	t.Run("xdg", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

		path, err := DefaultPath()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join("/tmp/xdg", "devchange", "config.toml"), path)
	})

	t.Run("home", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("XDG_CONFIG_HOME", "")
		t.Setenv("HOME", home)

		path, err := DefaultPath()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, ".config", "devchange", "config.toml"), path)
	})
}
