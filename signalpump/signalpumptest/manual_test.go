package signalpumptest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManual(t *testing.T) {
	t.Run("fire without connection", func(t *testing.T) {
		m := &Manual{}
		assert.False(t, m.Fire())
	})

	t.Run("fire returns once the signal is taken", func(t *testing.T) {
		m := &Manual{}
		conn, err := m.Open()
		require.NoError(t, err)
		defer conn.Close()

		received := make(chan struct{})
		go func() {
			<-conn.Signals()
			close(received)
		}()

		assert.True(t, m.Fire())
		select {
		case <-received:
		case <-time.After(time.Second):
			t.Fatal("signal not received")
		}
	})

	t.Run("close ends signals and is counted once", func(t *testing.T) {
		m := &Manual{}
		conn, err := m.Open()
		require.NoError(t, err)

		assert.NoError(t, conn.Close())
		assert.NoError(t, conn.Close())

		_, open := <-conn.Signals()
		assert.False(t, open)
		assert.Equal(t, 1, m.Opens())
		assert.Equal(t, 1, m.Closes())
		assert.False(t, m.Fire())
	})

	t.Run("open error", func(t *testing.T) {
		m := &Manual{OpenErr: assert.AnError}
		_, err := m.Open()
		assert.ErrorIs(t, err, assert.AnError)
		assert.Equal(t, 0, m.Opens())
	})
}
