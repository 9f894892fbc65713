// Package signalpumptest provides a transport whose signals are injected by
// the test.
package signalpumptest

import (
	"sync"

	"github.com/MeneDev/devchange/signalpump"
)

var _ signalpump.Transport = (*Manual)(nil)

type Manual struct {
	// OpenErr, when set, is returned by Open.
	OpenErr error

	mu     sync.Mutex
	conn   *manualConn
	opens  int
	closes int
}

func (m *Manual) Open() (signalpump.Conn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.OpenErr != nil {
		return nil, m.OpenErr
	}

	m.opens++
	conn := &manualConn{
		owner:   m,
		in:      make(chan chan struct{}),
		signals: make(chan struct{}),
		closed:  make(chan struct{}),
	}
	go conn.forward()
	m.conn = conn

	return conn, nil
}

// Fire injects a signal and returns once the pump has taken it. It reports
// false when no connection is open.
func (m *Manual) Fire() bool {
	m.mu.Lock()
	conn := m.conn
	m.mu.Unlock()

	if conn == nil {
		return false
	}

	taken := make(chan struct{})
	select {
	case conn.in <- taken:
	case <-conn.closed:
		return false
	}

	select {
	case <-taken:
		return true
	case <-conn.closed:
		return false
	}
}

// FireAsync injects a signal without waiting for the pump to take it.
func (m *Manual) FireAsync() {
	go m.Fire()
}

func (m *Manual) Opens() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opens
}

func (m *Manual) Closes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closes
}

type manualConn struct {
	owner   *Manual
	in      chan chan struct{}
	signals chan struct{}
	closed  chan struct{}
	once    sync.Once
}

func (c *manualConn) Signals() <-chan struct{} {
	return c.signals
}

func (c *manualConn) Close() error {
	c.once.Do(func() {
		close(c.closed)

		c.owner.mu.Lock()
		c.owner.closes++
		if c.owner.conn == c {
			c.owner.conn = nil
		}
		c.owner.mu.Unlock()
	})
	return nil
}

func (c *manualConn) forward() {
	defer close(c.signals)

	for {
		select {
		case <-c.closed:
			return
		case taken := <-c.in:
			select {
			case c.signals <- struct{}{}:
				close(taken)
			case <-c.closed:
				return
			}
		}
	}
}
