package changestream

import (
	"context"
	"sync"

	"github.com/MeneDev/devchange/device"
	"github.com/MeneDev/devchange/inventory"
	"github.com/MeneDev/devchange/metric"
	"github.com/MeneDev/devchange/signalpump"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// InitializationError is returned by Subscribe when the signal transport of a
// new stream cannot be opened.
type InitializationError = signalpump.InitializationError

type Config struct {
	Provider  inventory.Provider
	Transport signalpump.Transport
	Policy    BaselinePolicy

	// OnScanError receives failures of scans. Failed scans never reach
	// subscribers. Defaults to debug logging.
	OnScanError func(error)

	// Metrics may be nil.
	Metrics *metric.Metrics
}

// Registry hands out subscriptions to a shared, reference counted change
// stream. The first subscriber starts a new stream with a freshly enumerated
// baseline, the last one to leave tears it down.
type Registry struct {
	config Config

	mu      sync.Mutex
	current *Stream
}

func RegistryNew(config Config) *Registry {
	return &Registry{config: config}
}

// Subscribe registers callback for device changes. If an event was published
// by the running stream, callback receives the latest one before any live
// event. Callbacks run on the scan goroutine and must not call Subscribe.
func (r *Registry) Subscribe(callback func(device.ChangeEvent)) (*Subscription, error) {
	if callback == nil {
		return nil, errors.New("callback must not be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current != nil {
		if sub, ok := r.current.join(callback); ok {
			return sub, nil
		}
	}

	stream, sub, err := r.startStream(callback)
	if err != nil {
		return nil, err
	}
	r.current = stream

	return sub, nil
}

// startStream primes a new stream and joins callback before the pump starts,
// so the first subscriber sees every event of the stream.
func (r *Registry) startStream(callback func(device.ChangeEvent)) (*Stream, *Subscription, error) {
	if r.config.Provider == nil || r.config.Transport == nil {
		return nil, nil, errors.New("registry needs a provider and a transport")
	}

	stream := &Stream{metrics: r.config.Metrics}
	stream.coordinator = coordinatorNew(r.config, stream.publish)
	stream.coordinator.prime()
	stream.pump = signalpump.PumpNew(r.config.Transport)

	sub, _ := stream.join(callback)

	if err := stream.pump.Start(stream.coordinator.HandleSignal); err != nil {
		stream.abandon()
		log.Error().Err(err).Msg("cannot start change stream")
		return nil, nil, err
	}

	r.config.Metrics.RecordStreamStarted()
	log.Debug().Int("devices", stream.coordinator.Baseline().Len()).Msg("change stream started")
	return stream, sub, nil
}

// Baseline returns the devices known to the running stream. It reports false
// when no stream is running.
func (r *Registry) Baseline() (device.Snapshot, bool) {
	r.mu.Lock()
	stream := r.current
	r.mu.Unlock()

	if stream == nil || stream.isRetired() {
		return device.Snapshot{}, false
	}
	return stream.coordinator.Baseline(), true
}

// Subscribers returns the subscriber count of the running stream.
func (r *Registry) Subscribers() int {
	r.mu.Lock()
	stream := r.current
	r.mu.Unlock()

	if stream == nil {
		return 0
	}
	return stream.subscriberCount()
}

// Events subscribes a channel that is closed once ctx is done. ctx must be
// cancellable: cancelling it is the only way to end the subscription, so a
// context that is never done is rejected. Delivery blocks while the channel
// buffer is full, holding back the stream for all subscribers.
func (r *Registry) Events(ctx context.Context, buffer int) (<-chan device.ChangeEvent, error) {
	if ctx.Done() == nil {
		return nil, errors.New("events context must be cancellable")
	}

	// room for the replayed event, which is delivered before Subscribe returns
	if buffer < 1 {
		buffer = 1
	}
	events := make(chan device.ChangeEvent, buffer)

	var sendMu sync.Mutex
	closed := false

	sub, err := r.Subscribe(func(event device.ChangeEvent) {
		sendMu.Lock()
		defer sendMu.Unlock()

		if closed {
			return
		}
		select {
		case events <- event:
		case <-ctx.Done():
		}
	})
	if err != nil {
		return nil, err
	}

	go func() {
		<-ctx.Done()
		sub.Dispose()

		sendMu.Lock()
		closed = true
		close(events)
		sendMu.Unlock()
	}()

	return events, nil
}
