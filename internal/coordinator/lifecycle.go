package coordinator

import "sync/atomic"

// State is the coordinator's lifecycle state.
//
// The machine is strictly one-way:
//
//	Accepting → Draining → Stopped
//
// Accepting admits new range requests. Draining rejects them (logged and
// dropped, not queued) while outstanding chunks finish. Stopped is
// terminal: the coordinator ceases processing and the result sink is
// told to stop as well.
type State int

const (
	// StateAccepting is the initial state: new requests are admitted.
	StateAccepting State = iota

	// StateDraining rejects new requests while outstanding work drains.
	StateDraining

	// StateStopped is terminal. No transition leaves it.
	StateStopped
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateAccepting:
		return "accepting"
	case StateDraining:
		return "draining"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Lifecycle tracks the coordinator's two-phase shutdown.
//
// All mutating events are processed one at a time on the coordinator's
// single event loop. The state is stored atomically only so that
// observers on other goroutines (status endpoints, tests) can read it;
// decisions are made solely on the event loop.
type Lifecycle struct {
	state atomic.Int32
}

// NewLifecycle returns a lifecycle in StateAccepting.
func NewLifecycle() *Lifecycle {
	l := &Lifecycle{}
	l.state.Store(int32(StateAccepting))
	return l
}

// State returns the current state.
func (l *Lifecycle) State() State {
	return State(l.state.Load())
}

// Accepting reports whether new range requests may be admitted.
func (l *Lifecycle) Accepting() bool {
	return l.State() == StateAccepting
}

// Drain moves Accepting to Draining. It is a no-op in any later state;
// the transition happens at most once and never reverts.
func (l *Lifecycle) Drain() {
	l.state.CompareAndSwap(int32(StateAccepting), int32(StateDraining))
}

// Stop moves Draining to Stopped. Stopping without draining first is a
// protocol error and is ignored: the coordinator must not terminate
// while the request source may still produce work.
func (l *Lifecycle) Stop() {
	l.state.CompareAndSwap(int32(StateDraining), int32(StateStopped))
}
