package main

type Options struct {
	ConfigFile  string   `required:"no" short:"c" long:"config" description:"Path to a TOML or YAML config file"`
	Sources     []string `required:"no" short:"s" long:"source" description:"Inventory source (udev, usb, scard), may be repeated"`
	Transport   string   `required:"no" short:"t" long:"transport" description:"Signal transport (udev, scard, poll)"`
	Metrics     string   `required:"no" short:"m" long:"metrics" description:"Listen address of the prometheus endpoint"`
	NatsUrl     string   `required:"no" short:"n" long:"nats" description:"NATS server to forward changes to"`
	Debug       bool     `required:"no" short:"d" long:"debug" description:"Enable debug logging"`
	ShowVersion bool     `required:"no" short:"v" long:"version" description:"Show version and exit"`
}
