package signalpump

import (
	"time"

	"github.com/pkg/errors"
)

// ForName returns the transport called name ("udev", "scard" or "poll").
func ForName(name string, subsystems []string, pollInterval time.Duration) (Transport, error) {
	switch name {
	case "poll":
		return &PollTransport{Interval: pollInterval}, nil
	case "scard":
		return &ScardTransport{}, nil
	case "udev":
		return udevTransport(subsystems)
	}
	return nil, errors.Errorf("unknown signal transport %q", name)
}
