// Package inventorytest provides a scripted inventory provider for tests.
package inventorytest

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/MeneDev/devchange/device"
	"github.com/MeneDev/devchange/inventory"
)

type step struct {
	snapshot device.Snapshot
	err      error
	panicked interface{}
}

var _ inventory.Provider = (*Scripted)(nil)

// Scripted returns queued results in order. Once the queue is drained the
// last result is repeated. The zero value returns empty snapshots.
type Scripted struct {
	mu    sync.Mutex
	steps []step
	last  step
	calls int

	// Gate, when set, is received from before every snapshot returns.
	Gate chan struct{}

	inFlight    int32
	maxInFlight int32
}

// ScriptedNew queues initial as the first result.
func ScriptedNew(initial ...device.Record) *Scripted {
	return (&Scripted{}).Then(initial...)
}

func (s *Scripted) Then(records ...device.Record) *Scripted {
	return s.push(step{snapshot: device.SnapshotNew(records...)})
}

// ThenFail queues a failing enumeration that still returns snapshot.
func (s *Scripted) ThenFail(err error, records ...device.Record) *Scripted {
	return s.push(step{snapshot: device.SnapshotNew(records...), err: err})
}

func (s *Scripted) ThenPanic(v interface{}) *Scripted {
	return s.push(step{panicked: v})
}

func (s *Scripted) push(st step) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.steps = append(s.steps, st)
	return s
}

func (s *Scripted) Snapshot(ctx context.Context) (device.Snapshot, error) {
	n := atomic.AddInt32(&s.inFlight, 1)
	defer atomic.AddInt32(&s.inFlight, -1)
	for {
		max := atomic.LoadInt32(&s.maxInFlight)
		if n <= max || atomic.CompareAndSwapInt32(&s.maxInFlight, max, n) {
			break
		}
	}

	if s.Gate != nil {
		<-s.Gate
	}

	s.mu.Lock()
	s.calls++
	st := s.last
	if len(s.steps) > 0 {
		st = s.steps[0]
		s.steps = s.steps[1:]
		s.last = st
	}
	s.mu.Unlock()

	if st.panicked != nil {
		panic(st.panicked)
	}
	if st.err != nil {
		return st.snapshot, &inventory.EnumerationError{Source: "scripted", Err: st.err}
	}
	return st.snapshot, nil
}

func (s *Scripted) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// MaxInFlight is the highest number of concurrent Snapshot calls observed.
func (s *Scripted) MaxInFlight() int {
	return int(atomic.LoadInt32(&s.maxInFlight))
}

// InFlight is the number of Snapshot calls currently running.
func (s *Scripted) InFlight() int {
	return int(atomic.LoadInt32(&s.inFlight))
}
