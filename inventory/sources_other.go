//go:build !linux

package inventory

import "github.com/pkg/errors"

func udevProvider(subsystems []string) (Provider, error) {
	return nil, errors.New("udev is only available on linux")
}
