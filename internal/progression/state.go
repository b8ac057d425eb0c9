package progression

// State is a record's position in the quest lifecycle.
type State string

const (
	StateActive    State = "active"
	StateCooldown  State = "cooldown"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
	StateExpired   State = "expired"
)

// AllStates returns every state in declaration order.
func AllStates() []State {
	return []State{StateActive, StateCooldown, StateCompleted, StateFailed, StateExpired}
}

// Valid reports whether s is a known state.
func (s State) Valid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

// allowedTransitions lists the permitted state changes. Self-transitions are
// handled separately and always allowed.
var allowedTransitions = map[State]map[State]struct{}{
	StateActive: {
		StateCompleted: {},
		StateFailed:    {},
		StateExpired:   {},
		StateCooldown:  {},
	},
	StateCooldown: {
		StateActive:  {},
		StateExpired: {},
	},
	StateCompleted: {
		StateCooldown: {},
		StateActive:   {},
	},
	StateFailed: {
		StateActive: {},
	},
	StateExpired: {
		StateActive: {},
	},
}

// CanTransition returns nil if from -> to is permitted, otherwise an
// *InvalidTransitionError.
func CanTransition(from, to State) error {
	if !from.Valid() || !to.Valid() {
		return &InvalidTransitionError{From: from, To: to}
	}
	if from == to {
		return nil
	}
	if _, ok := allowedTransitions[from][to]; !ok {
		return &InvalidTransitionError{From: from, To: to}
	}
	return nil
}

// checkPath validates each consecutive hop of a multi-step transition.
func checkPath(path ...State) error {
	for i := 1; i < len(path); i++ {
		if err := CanTransition(path[i-1], path[i]); err != nil {
			return err
		}
	}
	return nil
}
