// Package signalpump delivers hardware change notifications of the host to a
// handler running on a dedicated goroutine.
package signalpump

// Transport is the OS hook producing raw change notifications.
type Transport interface {
	// Open creates the receiving context. It returns once the context is
	// ready to receive notifications.
	Open() (Conn, error)
}

// Conn is an open receiving context.
type Conn interface {
	// Signals yields one value per notification. It is closed after Close.
	Signals() <-chan struct{}
	Close() error
}

// InitializationError reports that the receiving context could not be created.
type InitializationError struct {
	Err error
}

func (e *InitializationError) Error() string {
	return "cannot initialize signal transport: " + e.Err.Error()
}

func (e *InitializationError) Unwrap() error {
	return e.Err
}

func (e *InitializationError) Cause() error {
	return e.Err
}

// chanConn is a Conn fed by a transport goroutine that exits once ctx is done.
type chanConn struct {
	signals chan struct{}
	done    <-chan struct{}
	cancel  func()
}

func (c *chanConn) Signals() <-chan struct{} {
	return c.signals
}

func (c *chanConn) Close() error {
	c.cancel()
	return nil
}

// emit blocks until the signal is taken or the connection is closed.
func (c *chanConn) emit() bool {
	select {
	case c.signals <- struct{}{}:
		return true
	case <-c.done:
		return false
	}
}
