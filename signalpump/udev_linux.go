//go:build linux

package signalpump

import (
	"context"

	"github.com/jochenvg/go-udev"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var _ Transport = (*UdevTransport)(nil)

// UdevTransport listens on the udev netlink socket. Every add, remove or
// change of a device in one of the Subsystems becomes a signal.
type UdevTransport struct {
	Subsystems []string
}

func (t *UdevTransport) Open() (Conn, error) {
	u := udev.Udev{}
	m := u.NewMonitorFromNetlink("udev")
	if m == nil {
		return nil, errors.New("cannot create udev netlink monitor")
	}

	for _, subsystem := range t.Subsystems {
		if err := m.FilterAddMatchSubsystem(subsystem); err != nil {
			return nil, errors.Wrapf(err, "cannot filter udev subsystem %s", subsystem)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := m.DeviceChan(ctx)
	if err != nil {
		cancel()
		return nil, errors.Wrap(err, "cannot receive udev events")
	}

	conn := &chanConn{signals: make(chan struct{}), done: ctx.Done(), cancel: cancel}

	go func() {
		defer close(conn.signals)

		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-ch:
				if !ok {
					return
				}

				action := d.Action()
				log.Debug().Str("action", action).Str("device", d.Syspath()).Msg("udev event")

				if action == "add" || action == "remove" || action == "change" {
					if !conn.emit() {
						return
					}
				}
			}
		}
	}()

	return conn, nil
}
