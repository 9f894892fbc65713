package inventory

import (
	"context"

	"github.com/MeneDev/devchange/device"
	"golang.org/x/sync/errgroup"
)

var _ Provider = Multi(nil)

// Multi enumerates all providers concurrently and concatenates their
// snapshots in provider order. One failing provider fails the whole snapshot.
type Multi []Provider

func (m Multi) Snapshot(ctx context.Context) (device.Snapshot, error) {
	snapshots := make([]device.Snapshot, len(m))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range m {
		g.Go(func() error {
			s, err := p.Snapshot(gctx)
			if err != nil {
				return err
			}
			snapshots[i] = s
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if _, typed := err.(*EnumerationError); typed {
			return device.Snapshot{}, err
		}
		return device.Snapshot{}, &EnumerationError{Source: "multi", Err: err}
	}

	records := make([]device.Record, 0)
	for _, s := range snapshots {
		records = append(records, s.Records()...)
	}
	return device.SnapshotNew(records...), nil
}
