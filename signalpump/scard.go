package signalpump

import (
	"sync"
	"time"

	"github.com/ebfe/scard"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// PC/SC pseudo reader whose state changes whenever a reader is attached or
// detached.
const pnpNotificationReader = "\\\\?PnP?\\Notification"

var _ Transport = (*ScardTransport)(nil)

type ScardTransport struct{}

func (t *ScardTransport) Open() (Conn, error) {
	scardCtx, err := scard.EstablishContext()
	if err != nil {
		return nil, errors.Wrap(err, "cannot establish scard context")
	}

	return scardConnNew(scardCtx), nil
}

// scardContext is the part of *scard.Context the notification loop uses.
type scardContext interface {
	GetStatusChange(readerStates []scard.ReaderState, timeout time.Duration) error
	Cancel() error
	Release() error
}

var _ scardContext = (*scard.Context)(nil)

func scardConnNew(scardCtx scardContext) *scardConn {
	conn := &scardConn{
		scardCtx: scardCtx,
		signals:  make(chan struct{}),
		closed:   make(chan struct{}),
	}
	go conn.waitLoop()
	return conn
}

var _ Conn = (*scardConn)(nil)

type scardConn struct {
	scardCtx scardContext
	signals  chan struct{}
	closed   chan struct{}
	once     sync.Once
}

func (c *scardConn) Signals() <-chan struct{} {
	return c.signals
}

func (c *scardConn) Close() error {
	var err error
	c.once.Do(func() {
		// unblocks a pending GetStatusChange; waitLoop releases the context
		// only after closed is closed
		err = c.scardCtx.Cancel()
		close(c.closed)
	})
	return err
}

func (c *scardConn) waitLoop() {
	defer close(c.signals)
	defer func() {
		if errRelease := c.scardCtx.Release(); errRelease != nil {
			log.Debug().Err(errRelease).Msg("could not release scard context")
		}
	}()

	states := []scard.ReaderState{{
		Reader:       pnpNotificationReader,
		CurrentState: scard.StateUnaware,
	}}

	for {
		err := c.scardCtx.GetStatusChange(states, -1)

		select {
		case <-c.closed:
			return
		default:
		}

		if err != nil {
			log.Debug().Err(err).Msg("GetStatusChange on pnp notification failed")
			select {
			case <-c.closed:
				return
			case <-time.After(100 * time.Millisecond):
			}
			continue
		}

		changed := states[0].EventState&scard.StateChanged != 0
		states[0].CurrentState = states[0].EventState &^ scard.StateChanged

		if changed {
			select {
			case c.signals <- struct{}{}:
			case <-c.closed:
				return
			}
		}
	}
}
