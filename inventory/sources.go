package inventory

import (
	"github.com/pkg/errors"
)

// ForSources builds a provider merging the named sources ("udev", "usb",
// "scard") in the given order. The returned release function frees native
// resources held by the providers.
func ForSources(sources []string, subsystems []string) (Provider, func(), error) {
	var providers Multi
	var closers []func() error

	release := func() {
		for _, c := range closers {
			_ = c()
		}
	}

	for _, source := range sources {
		switch source {
		case "usb":
			p := USBProviderNew()
			providers = append(providers, p)
			closers = append(closers, p.Close)
		case "scard":
			providers = append(providers, &ScardProvider{})
		case "udev":
			p, err := udevProvider(subsystems)
			if err != nil {
				release()
				return nil, nil, err
			}
			providers = append(providers, p)
		default:
			release()
			return nil, nil, errors.Errorf("unknown inventory source %q", source)
		}
	}

	if len(providers) == 0 {
		release()
		return nil, nil, errors.New("no inventory source configured")
	}
	if len(providers) == 1 {
		return providers[0], release, nil
	}
	return providers, release, nil
}
