package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/MeneDev/devchange/config"
	"github.com/MeneDev/devchange/device"
	"github.com/MeneDev/devchange/inventory"
	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Options struct {
	ConfigFile string   `required:"no" short:"c" long:"config" description:"Path to a TOML or YAML config file"`
	Sources    []string `required:"no" short:"s" long:"source" description:"Inventory source (udev, usb, scard), may be repeated"`
	Debug      bool     `required:"no" short:"d" long:"debug" description:"Enable debug logging"`
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		NoColor:    true,
		TimeFormat: "2006/01/02 15:04:05",
	})
	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	var opts Options
	if _, err := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash).Parse(); err != nil {
		log.Fatal().Err(err).Msg("cannot parse flags")
	}
	if opts.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}
	if len(opts.Sources) > 0 {
		cfg.Inventory.Sources = opts.Sources
	}

	provider, release, err := inventory.ForSources(cfg.Inventory.Sources, cfg.Inventory.Subsystems)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot set up inventory")
	}
	defer release()

	snapshot, err := provider.Snapshot(context.Background())
	if err != nil {
		log.Error().Err(err).Msg("enumeration failed")
		release()
		os.Exit(1)
	}

	printSnapshot(os.Stdout, snapshot)
}

func printSnapshot(w io.Writer, snapshot device.Snapshot) {
	for _, r := range snapshot.Records() {
		fmt.Fprintf(w, "%-12s%s\n", r.Status, r.Id)
	}
}
