package jobs

import (
	"strconv"
	"strings"
)

// State is the lifecycle state of a batch job. Values are persisted as integers.
type State int

const (
	StateInitial     State = 0 // Αρχική
	StateInProgress  State = 1 // Σε εξέλιξη
	StateInterrupted State = 2 // Διακόπηκε
	StateFailed      State = 3 // Απέτυχε
	StateCompleted   State = 4 // Ολοκληρώθηκε
)

func (s State) String() string {
	switch s {
	case StateInitial:
		return "initial"
	case StateInProgress:
		return "in_progress"
	case StateInterrupted:
		return "interrupted"
	case StateFailed:
		return "failed"
	case StateCompleted:
		return "completed"
	default:
		return "unknown(" + strconv.Itoa(int(s)) + ")"
	}
}

func (s State) Valid() bool {
	return s >= StateInitial && s <= StateCompleted
}

// IsTerminal reports whether no further transition may leave s.
func (s State) IsTerminal() bool {
	return s == StateInterrupted || s == StateFailed || s == StateCompleted
}

// ParseState accepts either the integer code or the lower-case name.
func ParseState(raw string) (State, bool) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(raw); err == nil {
		s := State(n)
		return s, s.Valid()
	}
	for s := StateInitial; s <= StateCompleted; s++ {
		if s.String() == raw {
			return s, true
		}
	}
	return 0, false
}

// CanTransition is the allow-list of state changes after a job was started.
func CanTransition(from, to State) bool {
	switch from {
	case StateInitial:
		return to == StateInProgress
	case StateInProgress:
		return to == StateInterrupted || to == StateFailed || to == StateCompleted
	default:
		return false
	}
}
