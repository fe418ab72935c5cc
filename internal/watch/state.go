package watch

import "github.com/google/uuid"

// State is a watch session lifecycle state.
type State int

const (
	StateStarting State = iota
	StateRunning
	StateError
	StateRestarting
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateError:
		return "error"
	case StateRestarting:
		return "restarting"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// sessionState belongs to one engine instance. A restart replaces it with a
// fresh value that only inherits the last reported error signature.
type sessionState struct {
	id         string
	generation int
	rebuilds   int
	// lastErrorSignature is the stack text of the last diagnostic shown.
	lastErrorSignature string
}

func newSessionState() *sessionState {
	return &sessionState{id: uuid.NewString(), generation: 1}
}

func (st *sessionState) next() *sessionState {
	return &sessionState{
		id:                 uuid.NewString(),
		generation:         st.generation + 1,
		lastErrorSignature: st.lastErrorSignature,
	}
}
