package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/MeneDev/devchange/changestream"
	"github.com/MeneDev/devchange/config"
	"github.com/MeneDev/devchange/device"
	"github.com/MeneDev/devchange/inventory"
	"github.com/MeneDev/devchange/metric"
	"github.com/MeneDev/devchange/natsink"
	"github.com/MeneDev/devchange/signalpump"
	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			evt := log.Error()

			switch v := r.(type) {
			case string:
				evt.Str("error", v)
			case error:
				evt.Err(v)
			default:
				evt.Str("error", fmt.Sprintf("%v", v))
			}

			evt.Msg("panicked")
		}
	}()

	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		NoColor:    true,
		TimeFormat: "2006/01/02 15:04:05",
	})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var opts Options
	_, err := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash).Parse()
	if opts.ShowVersion {
		showVersion()
		os.Exit(0)
	}

	if err != nil {
		log.Fatal().Err(err).Msg("cannot parse flags")
	}

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}
	applyOptions(cfg, opts)

	level, _ := zerolog.ParseLevel(cfg.Log.Level)
	zerolog.SetGlobalLevel(level)
	if opts.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), shutdownSignals...)
	defer func() {
		log.Debug().Msg("Canceling root context")
		cancel()
	}()

	if err := run(ctx, cfg); err != nil {
		log.Error().Err(err).Msg("devicewatch failed")
		cancel()
		os.Exit(1)
	}
}

func applyOptions(cfg *config.Config, opts Options) {
	if len(opts.Sources) > 0 {
		cfg.Inventory.Sources = opts.Sources
	}
	if opts.Transport != "" {
		cfg.Signal.Transport = opts.Transport
	}
	if opts.Metrics != "" {
		cfg.Metrics.Listen = opts.Metrics
	}
	if opts.NatsUrl != "" {
		cfg.Nats.Url = opts.NatsUrl
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	provider, release, err := inventory.ForSources(cfg.Inventory.Sources, cfg.Inventory.Subsystems)
	if err != nil {
		return err
	}
	defer release()

	transport, err := signalpump.ForName(cfg.Signal.Transport, cfg.Inventory.Subsystems, time.Duration(cfg.Signal.PollInterval))
	if err != nil {
		return err
	}

	metrics := metric.MetricsNew()
	if cfg.Metrics.Listen != "" {
		registry := prometheus.NewRegistry()
		if err := metrics.Register(registry); err != nil {
			return err
		}
		server := serveMetrics(cfg.Metrics.Listen, registry)
		defer server.Close()
	}

	policy := changestream.AdvanceOnFailure
	if cfg.Stream.KeepBaselineOnFailure {
		policy = changestream.RetainOnFailure
	}

	registry := changestream.RegistryNew(changestream.Config{
		Provider:  provider,
		Transport: transport,
		Policy:    policy,
		OnScanError: func(err error) {
			log.Warn().Err(err).Msg("Device scan failed")
		},
		Metrics: metrics,
	})

	if cfg.Nats.Url != "" {
		conn, err := natsink.Connect(cfg.Nats.Url)
		if err != nil {
			return err
		}
		defer conn.Close()

		forwarder, err := natsink.ForwarderNew(conn, cfg.Nats.Subject, cfg.Nats.Encoding)
		if err != nil {
			return err
		}

		sub, err := registry.Subscribe(forwarder.Handle)
		if err != nil {
			return err
		}
		defer sub.Dispose()
	}

	events, err := registry.Events(ctx, 16)
	if err != nil {
		return err
	}

	if baseline, ok := registry.Baseline(); ok {
		log.Info().
			Str("transport", cfg.Signal.Transport).
			Strs("sources", cfg.Inventory.Sources).
			Int("devices", baseline.Len()).
			Msg("Watching for device changes")
	}

	for event := range events {
		logChange(event)
	}

	log.Info().Msg("Received Interrupt, shutting down")
	return nil
}

func logChange(event device.ChangeEvent) {
	log.Info().
		Str("kind", event.Kind.String()).
		Str("device", event.Device.Id).
		Str("status", event.Device.Status).
		Msg("Device changed")
}

func serveMetrics(addr string, gatherer prometheus.Gatherer) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info().Str("listen", addr).Msg("Serving metrics")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Str("listen", addr).Msg("metrics endpoint failed")
		}
	}()
	return server
}

var Version string = "<unknown>"
var BuildDate string = "<unknown>"
var BuildNumber string = "<unknown>"
var BuildCommit string = "<unknown>"

func showVersion() {
	format := "%-13s%s\n"
	fmt.Printf(format, "Version:", Version)
	fmt.Printf(format, "BuildDate:", BuildDate)
	fmt.Printf(format, "BuildNumber:", BuildNumber)
	fmt.Printf(format, "BuildCommit:", BuildCommit)
	fmt.Printf(format, "Compiler:", runtime.Compiler)
	fmt.Printf(format, "Architecture:", runtime.GOARCH)
	fmt.Printf(format, "OS:", runtime.GOOS)
	fmt.Printf(format, "Go version:", runtime.Version())
}
