package orchestration

import "fmt"

// State is a step of the cluster creation state machine.
type State string

const (
	StateInit                State = "INIT"
	StateManagerProvisioning State = "MANAGER_PROVISIONING"
	StateAwaitingJoinSecret  State = "AWAITING_JOIN_SECRET"
	StateWorkersProvisioning State = "WORKERS_PROVISIONING"
	StateDone                State = "DONE"
	StatePartial             State = "PARTIAL"
	StateFailed              State = "FAILED"
)

var transitions = map[State][]State{
	StateInit:                {StateManagerProvisioning, StateFailed},
	StateManagerProvisioning: {StateAwaitingJoinSecret, StateFailed},
	StateAwaitingJoinSecret:  {StateWorkersProvisioning, StateFailed},
	StateWorkersProvisioning: {StateDone, StatePartial},
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s == StateDone || s == StatePartial || s == StateFailed
}

// CanTransition reports whether the state machine allows from -> to.
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// machine tracks the current state and the path taken.
type machine struct {
	current State
	history []State
}

func newMachine() *machine {
	return &machine{current: StateInit, history: []State{StateInit}}
}

func (m *machine) transition(to State) error {
	if !CanTransition(m.current, to) {
		return fmt.Errorf("invalid state transition %s -> %s", m.current, to)
	}
	m.current = to
	m.history = append(m.history, to)
	return nil
}

func (m *machine) path() []State {
	out := make([]State, len(m.history))
	copy(out, m.history)
	return out
}
