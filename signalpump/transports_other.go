//go:build !linux

package signalpump

import "github.com/pkg/errors"

func udevTransport(subsystems []string) (Transport, error) {
	return nil, errors.New("udev is only available on linux")
}
