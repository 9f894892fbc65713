package changestream

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/MeneDev/devchange/device"
	"github.com/MeneDev/devchange/metric"
	"github.com/MeneDev/devchange/signalpump"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Stream is one instance of the shared change stream. It lives from its first
// subscriber until its subscriber count drops back to zero and is never
// reused afterwards.
type Stream struct {
	coordinator *Coordinator
	pump        *signalpump.Pump
	metrics     *metric.Metrics

	// emitMu orders replay to a joining subscriber against live delivery
	emitMu sync.Mutex

	mu          sync.Mutex
	subscribers []*Subscription
	last        *device.ChangeEvent
	retired     bool
}

func (s *Stream) publish(event device.ChangeEvent) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	if s.retired {
		s.mu.Unlock()
		return
	}
	s.last = &event
	subscribers := append([]*Subscription(nil), s.subscribers...)
	s.mu.Unlock()

	s.metrics.RecordEvent(event.Kind.String())
	log.Debug().Str("device", event.Device.Id).Str("status", event.Device.Status).Stringer("kind", event.Kind).Int("subscribers", len(subscribers)).Msg("publishing device change")

	for _, sub := range subscribers {
		sub.deliver(event)
	}
}

// join registers callback and replays the last published event to it. It
// reports false if the stream is already retired.
func (s *Stream) join(callback func(device.ChangeEvent)) (*Subscription, bool) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	if s.retired {
		s.mu.Unlock()
		return nil, false
	}

	sub := &Subscription{id: uuid.New(), stream: s, callback: callback}
	s.subscribers = append(s.subscribers, sub)
	count := len(s.subscribers)
	last := s.last
	s.mu.Unlock()

	s.metrics.RecordSubscribers(count)

	if last != nil {
		sub.deliver(*last)
	}

	return sub, true
}

func (s *Stream) leave(sub *Subscription) {
	s.mu.Lock()
	idx := -1
	for i, candidate := range s.subscribers {
		if candidate == sub {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return
	}

	s.subscribers = append(s.subscribers[:idx], s.subscribers[idx+1:]...)
	count := len(s.subscribers)
	if count == 0 {
		s.retired = true
		s.last = nil
	}
	s.mu.Unlock()

	s.metrics.RecordSubscribers(count)

	if count == 0 {
		log.Debug().Msg("last subscriber left, retiring change stream")
		s.pump.Stop()
		s.coordinator.Retire()
	}
}

// abandon retires a stream whose pump never started. Its subscriptions are
// dropped without stopping the pump.
func (s *Stream) abandon() {
	s.mu.Lock()
	for _, sub := range s.subscribers {
		sub.disposed.Store(true)
	}
	s.subscribers = nil
	s.retired = true
	s.last = nil
	s.mu.Unlock()

	s.metrics.RecordSubscribers(0)
	s.coordinator.Retire()
}

func (s *Stream) isRetired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.retired
}

func (s *Stream) subscriberCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subscribers)
}

// Subscription is a registered callback of a shared change stream.
type Subscription struct {
	id       uuid.UUID
	stream   *Stream
	callback func(device.ChangeEvent)
	disposed atomic.Bool
}

func (s *Subscription) ID() uuid.UUID {
	return s.id
}

// Dispose removes the callback. Disposing the last subscription of a stream
// stops its signal pump. Calling Dispose more than once has no effect.
func (s *Subscription) Dispose() {
	if s.disposed.CompareAndSwap(false, true) {
		s.stream.leave(s)
	}
}

func (s *Subscription) Close() error {
	s.Dispose()
	return nil
}

func (s *Subscription) deliver(event device.ChangeEvent) {
	if s.disposed.Load() {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("subscription", s.id.String()).Str("panic", fmt.Sprintf("%v", r)).Msg("subscriber callback panicked")
		}
	}()

	s.callback(event)
}
