package changestream

import (
	"context"
	"sync"
	"time"

	"github.com/MeneDev/devchange/device"
	"github.com/MeneDev/devchange/inventory"
	"github.com/MeneDev/devchange/metric"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// BaselinePolicy decides what becomes the baseline after a failed scan.
// No events are published for a failed scan under either policy.
type BaselinePolicy int

const (
	// AdvanceOnFailure replaces the baseline with whatever the failed
	// enumeration returned, usually an empty snapshot.
	AdvanceOnFailure BaselinePolicy = iota
	// RetainOnFailure keeps the last baseline so the next successful scan is
	// diffed against it.
	RetainOnFailure
)

// Coordinator turns pump signals into scans. At most one scan runs at a time:
// HandleSignal blocks the pump goroutine until the previous scan released the
// gate, so signals are delayed but never dropped.
type Coordinator struct {
	provider inventory.Provider
	publish  func(device.ChangeEvent)
	policy   BaselinePolicy
	onError  func(error)
	metrics  *metric.Metrics

	gate       chan struct{}
	retired    chan struct{}
	retireOnce sync.Once
	scans      sync.WaitGroup

	// baseline is written only by the scan holding the gate
	baselineMu sync.RWMutex
	baseline   device.Snapshot
}

func coordinatorNew(config Config, publish func(device.ChangeEvent)) *Coordinator {
	onError := config.OnScanError
	if onError == nil {
		onError = func(err error) {
			log.Debug().Err(err).Msg("scan failed")
		}
	}

	return &Coordinator{
		provider: config.Provider,
		publish:  publish,
		policy:   config.Policy,
		onError:  onError,
		metrics:  config.Metrics,
		gate:     make(chan struct{}, 1),
		retired:  make(chan struct{}),
	}
}

// prime fetches the initial baseline. A failed fetch leaves the baseline at
// whatever the provider returned.
func (c *Coordinator) prime() {
	snapshot, err := c.fetch()
	if err != nil {
		c.onError(errors.Wrap(err, "initial enumeration"))
	}

	c.baselineMu.Lock()
	c.baseline = snapshot
	c.baselineMu.Unlock()

	log.Debug().Int("devices", snapshot.Len()).Msg("baseline primed")
}

// HandleSignal admits one scan. It returns without scanning once the
// coordinator is retired.
func (c *Coordinator) HandleSignal() {
	c.metrics.RecordSignal()

	select {
	case <-c.retired:
		return
	default:
	}

	select {
	case c.gate <- struct{}{}:
	case <-c.retired:
		log.Debug().Msg("coordinator retired, signal not admitted")
		return
	}

	c.scans.Add(1)
	go c.scan()
}

func (c *Coordinator) scan() {
	defer c.scans.Done()
	defer func() { <-c.gate }()

	start := time.Now()
	next, err := c.fetchAndPublish()
	c.metrics.RecordScan(err == nil, time.Since(start))

	if err != nil {
		c.onError(err)
		if c.policy == RetainOnFailure {
			return
		}
	}

	c.baselineMu.Lock()
	defer c.baselineMu.Unlock()

	select {
	case <-c.retired:
		return
	default:
	}
	c.baseline = next
}

func (c *Coordinator) fetchAndPublish() (device.Snapshot, error) {
	next, err := c.fetch()
	if err != nil {
		return next, err
	}

	changes, err := c.diff(next)
	if err != nil {
		return next, err
	}

	log.Debug().Int("changes", len(changes)).Int("devices", next.Len()).Msg("scan finished")
	for _, change := range changes {
		c.publish(change)
	}

	return next, nil
}

func (c *Coordinator) fetch() (snapshot device.Snapshot, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("enumeration panicked: %v", r)
		}
	}()

	// an admitted scan is never cancelled
	return c.provider.Snapshot(context.Background())
}

func (c *Coordinator) diff(next device.Snapshot) (changes []device.ChangeEvent, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("diff panicked: %v", r)
		}
	}()

	return device.Diff(c.Baseline(), next), nil
}

// Baseline returns the snapshot the next scan is diffed against.
func (c *Coordinator) Baseline() device.Snapshot {
	c.baselineMu.RLock()
	defer c.baselineMu.RUnlock()
	return c.baseline
}

// Retire stops admitting scans and discards the baseline. A scan that is
// already admitted runs to completion.
func (c *Coordinator) Retire() {
	c.retireOnce.Do(func() {
		close(c.retired)

		c.baselineMu.Lock()
		c.baseline = device.Snapshot{}
		c.baselineMu.Unlock()
	})
}

// Wait blocks until all admitted scans have finished.
func (c *Coordinator) Wait() {
	c.scans.Wait()
}
