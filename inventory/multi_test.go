package inventory

import (
	"context"
	"testing"

	"github.com/MeneDev/devchange/device"
	"github.com/ebfe/scard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func static(records ...device.Record) Provider {
	return ProviderFunc(func(ctx context.Context) (device.Snapshot, error) {
		return device.SnapshotNew(records...), nil
	})
}

func TestMulti_Snapshot(t *testing.T) {
	t.Run("concatenates in provider order", func(t *testing.T) {
		m := Multi{
			static(device.Record{Id: "usb-1", Status: StatusOK}),
			static(device.Record{Id: "reader-1", Status: StatusEmpty}, device.Record{Id: "reader-2", Status: StatusPresent}),
		}

		s, err := m.Snapshot(context.Background())
		require.NoError(t, err)

		assert.Equal(t, []string{"usb-1", "reader-1", "reader-2"}, s.IDs())
	})

	t.Run("one failure fails the snapshot", func(t *testing.T) {
		failing := ProviderFunc(func(ctx context.Context) (device.Snapshot, error) {
			return device.Snapshot{}, &EnumerationError{Source: "scard", Err: assert.AnError}
		})

		_, err := Multi{static(), failing}.Snapshot(context.Background())

		var enumErr *EnumerationError
		require.ErrorAs(t, err, &enumErr)
		assert.Equal(t, "scard", enumErr.Source)
		assert.ErrorIs(t, err, assert.AnError)
	})

	t.Run("untyped failure is wrapped", func(t *testing.T) {
		failing := ProviderFunc(func(ctx context.Context) (device.Snapshot, error) {
			return device.Snapshot{}, assert.AnError
		})

		_, err := Multi{failing}.Snapshot(context.Background())

		var enumErr *EnumerationError
		require.ErrorAs(t, err, &enumErr)
		assert.Equal(t, "multi", enumErr.Source)
	})

	t.Run("no providers is empty", func(t *testing.T) {
		s, err := Multi{}.Snapshot(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, 0, s.Len())
	})
}

func TestEnumerationError(t *testing.T) {
	err := &EnumerationError{Source: "usb", Err: assert.AnError}

	assert.Equal(t, "enumerating usb devices: "+assert.AnError.Error(), err.Error())
	assert.Equal(t, assert.AnError, err.Cause())
}

func TestReaderStatus(t *testing.T) {
	assert.Equal(t, StatusPresent, readerStatus(scard.StatePresent|scard.StateChanged))
	assert.Equal(t, StatusEmpty, readerStatus(scard.StateEmpty))
	assert.Equal(t, StatusUnavailable, readerStatus(scard.StateUnavailable))
}
