package signalpump

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var _ Transport = (*PollTransport)(nil)

// PollTransport emits a signal every Interval. It serves hosts without a
// native change notification.
type PollTransport struct {
	Interval time.Duration
}

func (t *PollTransport) Open() (Conn, error) {
	if t.Interval <= 0 {
		return nil, errors.Errorf("invalid poll interval %s", t.Interval)
	}

	ctx, cancel := context.WithCancel(context.Background())
	conn := &chanConn{signals: make(chan struct{}), done: ctx.Done(), cancel: cancel}

	go func() {
		defer close(conn.signals)

		ticker := time.NewTicker(t.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !conn.emit() {
					return
				}
			}
		}
	}()

	return conn, nil
}
