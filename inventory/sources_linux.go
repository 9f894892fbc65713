package inventory

func udevProvider(subsystems []string) (Provider, error) {
	return &UdevProvider{Subsystems: subsystems}, nil
}
