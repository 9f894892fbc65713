package signalpump

import (
	"sync"

	"github.com/looplab/fsm"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	StateUninitialized = "uninitialized"
	StateStarting      = "starting"
	StateRunning       = "running"
	StateStopping      = "stopping"
	StateStopped       = "stopped"
)

const evStart = "evStart"
const evReady = "evReady"
const evFail = "evFail"
const evStop = "evStop"
const evHalt = "evHalt"

// Pump owns the goroutine that receives notifications from a Transport and
// invokes the handler for each of them, one at a time. A Pump is started at
// most once.
type Pump struct {
	transport Transport
	states    *fsm.FSM

	mu   sync.Mutex
	conn Conn
	done chan struct{}
}

func PumpNew(transport Transport) *Pump {
	p := &Pump{transport: transport, done: make(chan struct{})}

	p.states = fsm.NewFSM(
		StateUninitialized,
		fsm.Events{
			{Name: evStart, Src: []string{StateUninitialized}, Dst: StateStarting},
			{Name: evReady, Src: []string{StateStarting}, Dst: StateRunning},
			{Name: evFail, Src: []string{StateStarting}, Dst: StateStopped},
			{Name: evStop, Src: []string{StateRunning}, Dst: StateStopping},
			{Name: evHalt, Src: []string{StateStopping}, Dst: StateStopped},
		},
		fsm.Callbacks{
			"enter_state": func(e *fsm.Event) {
				log.Debug().Str("old", e.Src).Str("event", e.Event).Str("new", e.Dst).Msg("signal pump transitioning state")
			},
		},
	)

	return p
}

func (p *Pump) State() string {
	return p.states.Current()
}

// Done is closed once the pump goroutine has exited.
func (p *Pump) Done() <-chan struct{} {
	return p.done
}

// Start opens the transport and starts delivering notifications to onSignal.
// onSignal runs on the pump goroutine; while it blocks no further
// notifications are taken from the transport.
func (p *Pump) Start(onSignal func()) error {
	if err := p.states.Event(evStart); err != nil {
		return errors.Wrapf(err, "cannot start signal pump in state %s", p.states.Current())
	}

	conn, err := p.transport.Open()
	if err != nil {
		p.transition(evFail)
		close(p.done)
		return &InitializationError{Err: err}
	}

	p.mu.Lock()
	p.conn = conn
	p.mu.Unlock()

	// running before the loop takes its first signal
	p.transition(evReady)
	go p.pumpLoop(conn, onSignal)

	return nil
}

func (p *Pump) pumpLoop(conn Conn, onSignal func()) {
	defer close(p.done)
	defer log.Debug().Msg("signal pump done")

	for range conn.Signals() {
		if !p.states.Is(StateRunning) {
			log.Debug().Str("state", p.states.Current()).Msg("dropping signal")
			continue
		}
		onSignal()
	}
}

// Stop closes the transport. Errors while closing are logged and otherwise
// ignored. Stopping a pump that is not running does nothing.
func (p *Pump) Stop() {
	if err := p.states.Event(evStop); err != nil {
		log.Debug().Err(err).Str("state", p.states.Current()).Msg("signal pump not running")
		return
	}

	p.mu.Lock()
	conn := p.conn
	p.mu.Unlock()

	if err := conn.Close(); err != nil {
		log.Warn().Err(err).Msg("could not close signal transport")
	}

	p.transition(evHalt)
}

func (p *Pump) transition(event string) {
	if err := p.states.Event(event); err != nil {
		log.Error().Err(err).Str("event", event).Msg("signal pump transition failed")
	}
}
