//go:build !linux

package config

const defaultSource = SourceUsb
const defaultTransport = TransportPoll
