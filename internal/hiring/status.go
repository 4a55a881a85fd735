// Package hiring implements the application lifecycle state machine for the
// hiring service.
//
// Valid status graph:
//
//	APPLIED ──► INTERVIEWING ──► HIRED
//	                  │
//	                  └────────► REJECTED
//
// APPLIED is the only initial state. HIRED and REJECTED are terminal.
// INTERVIEWING is the only state from which HIRED or REJECTED are reachable.
package hiring

import "fmt"

// Status values mirror the application_status enum in PostgreSQL.
type Status string

const (
	StatusApplied      Status = "APPLIED"
	StatusInterviewing Status = "INTERVIEWING"
	StatusHired        Status = "HIRED"
	StatusRejected     Status = "REJECTED"
)

// validTransitions lists every allowed (from → to) pair.
var validTransitions = map[Status][]Status{
	StatusApplied:      {StatusInterviewing},
	StatusInterviewing: {StatusHired, StatusRejected},
	// HIRED and REJECTED are terminal — no outgoing transitions
}

// ParseStatus converts a raw string to a Status, returning an error for
// unknown values.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusApplied, StatusInterviewing, StatusHired, StatusRejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown application status %q", s)
}

// IsTransitionAllowed returns true when moving from → to is permitted by the
// state machine.
func IsTransitionAllowed(from, to Status) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false // terminal state — no outgoing transitions
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal returns true when no outgoing transition exists for s.
func IsTerminal(s Status) bool {
	_, ok := validTransitions[s]
	return !ok
}
