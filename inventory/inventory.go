package inventory

import (
	"context"
	"fmt"

	"github.com/MeneDev/devchange/device"
)

// Provider enumerates the devices currently attached to the host.
type Provider interface {
	Snapshot(ctx context.Context) (device.Snapshot, error)
}

type ProviderFunc func(ctx context.Context) (device.Snapshot, error)

func (f ProviderFunc) Snapshot(ctx context.Context) (device.Snapshot, error) {
	return f(ctx)
}

// EnumerationError reports that a provider could not produce a snapshot.
type EnumerationError struct {
	Source string
	Err    error
}

func (e *EnumerationError) Error() string {
	return fmt.Sprintf("enumerating %s devices: %s", e.Source, e.Err.Error())
}

func (e *EnumerationError) Unwrap() error {
	return e.Err
}

func (e *EnumerationError) Cause() error {
	return e.Err
}
