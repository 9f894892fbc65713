//go:build linux

package inventory

import (
	"context"

	"github.com/MeneDev/devchange/device"
	"github.com/jochenvg/go-udev"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const StatusUnbound = "Unbound"

var _ Provider = (*UdevProvider)(nil)

// UdevProvider lists initialized udev devices of the configured subsystems.
// A device counts as OK once a driver is bound to it.
type UdevProvider struct {
	Subsystems []string
}

func (p *UdevProvider) Snapshot(ctx context.Context) (device.Snapshot, error) {
	u := udev.Udev{}
	e := u.NewEnumerate()

	for _, subsystem := range p.Subsystems {
		if err := e.AddMatchSubsystem(subsystem); err != nil {
			return device.Snapshot{}, &EnumerationError{Source: "udev", Err: errors.Wrapf(err, "match subsystem %s", subsystem)}
		}
	}
	if err := e.AddMatchIsInitialized(); err != nil {
		return device.Snapshot{}, &EnumerationError{Source: "udev", Err: errors.Wrap(err, "match initialized")}
	}

	devices, err := e.Devices()
	if err != nil {
		return device.Snapshot{}, &EnumerationError{Source: "udev", Err: errors.Wrap(err, "list devices")}
	}

	records := make([]device.Record, 0, len(devices))
	for _, d := range devices {
		status := StatusOK
		if d.Driver() == "" {
			status = StatusUnbound
		}
		records = append(records, device.Record{Id: d.Syspath(), Status: status})
	}

	log.Debug().Strs("subsystems", p.Subsystems).Int("devices", len(records)).Msg("enumerated udev devices")
	return device.SnapshotNew(records...), nil
}
