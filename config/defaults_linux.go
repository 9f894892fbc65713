package config

const defaultSource = SourceUdev
const defaultTransport = TransportUdev
