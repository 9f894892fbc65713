package signalpump

func udevTransport(subsystems []string) (Transport, error) {
	return &UdevTransport{Subsystems: subsystems}, nil
}
