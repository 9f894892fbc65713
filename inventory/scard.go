package inventory

import (
	"context"

	"github.com/MeneDev/devchange/device"
	"github.com/ebfe/scard"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	StatusPresent     = "Present"
	StatusEmpty       = "Empty"
	StatusUnavailable = "Unavailable"
)

var _ Provider = (*ScardProvider)(nil)

// ScardProvider lists PC/SC smart card readers. A reader's status tells
// whether a card is inserted.
type ScardProvider struct{}

func (p *ScardProvider) Snapshot(ctx context.Context) (device.Snapshot, error) {
	scardCtx, err := scard.EstablishContext()
	if err != nil {
		return device.Snapshot{}, &EnumerationError{Source: "scard", Err: errors.Wrap(err, "establish context")}
	}
	defer func() {
		if errRelease := scardCtx.Release(); errRelease != nil {
			log.Debug().Err(errRelease).Msg("could not release scard context")
		}
	}()

	readers, err := scardCtx.ListReaders()
	if err == scard.ErrNoReadersAvailable {
		return device.SnapshotNew(), nil
	}
	if err != nil {
		return device.Snapshot{}, &EnumerationError{Source: "scard", Err: errors.Wrap(err, "list readers")}
	}

	states := make([]scard.ReaderState, len(readers))
	for i, reader := range readers {
		states[i].Reader = reader
		states[i].CurrentState = scard.StateUnaware
	}

	// a zero timeout only reads the current state
	if err := scardCtx.GetStatusChange(states, 0); err != nil && err != scard.ErrTimeout {
		return device.Snapshot{}, &EnumerationError{Source: "scard", Err: errors.Wrap(err, "read reader states")}
	}

	records := make([]device.Record, 0, len(states))
	for _, state := range states {
		records = append(records, device.Record{Id: state.Reader, Status: readerStatus(state.EventState)})
	}

	log.Debug().Int("readers", len(records)).Msg("enumerated scard readers")
	return device.SnapshotNew(records...), nil
}

func readerStatus(flags scard.StateFlag) string {
	switch {
	case flags&scard.StatePresent != 0:
		return StatusPresent
	case flags&scard.StateEmpty != 0:
		return StatusEmpty
	}
	return StatusUnavailable
}
