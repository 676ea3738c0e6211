// Package lifecycle holds the shared state machine guard for business
// documents. Each document type declares its transition table as data; the
// guard is the single place that decides whether a transition is allowed,
// so terminal-state checks are never re-implemented at call sites.
package lifecycle

import "errors"

var (
	// ErrDocumentLocked reports any mutation or transition attempted on a
	// document whose current status is terminal. It takes precedence over
	// ErrInvalidTransition so callers see a stable error regardless of the
	// target they requested.
	ErrDocumentLocked = errors.New("document_locked")

	// ErrInvalidTransition reports a target status not reachable from the
	// current status.
	ErrInvalidTransition = errors.New("invalid_transition")

	// ErrConfirmationRequired reports a transition into a terminal state
	// without the caller-supplied confirmation flag.
	ErrConfirmationRequired = errors.New("confirmation_required")

	// ErrUnknownStatus reports a status missing from the transition table.
	ErrUnknownStatus = errors.New("unknown_status")
)

// Machine is a transition table over a string-typed status enum. A status
// is terminal exactly when it has no outgoing transitions; entering one
// requires explicit confirmation from the caller.
type Machine[S ~string] struct {
	transitions map[S][]S
}

// New builds a machine from a transition table. Every status must appear
// as a key, terminal statuses with an empty transition list.
func New[S ~string](transitions map[S][]S) Machine[S] {
	return Machine[S]{transitions: transitions}
}

// Known reports whether the status appears in the transition table.
func (m Machine[S]) Known(status S) bool {
	_, ok := m.transitions[status]
	return ok
}

// IsTerminal reports whether no transition leaves the given status.
func (m Machine[S]) IsTerminal(status S) bool {
	next, ok := m.transitions[status]
	return ok && len(next) == 0
}

// Guard rejects any change to a document in a terminal status.
func (m Machine[S]) Guard(current S) error {
	if !m.Known(current) {
		return ErrUnknownStatus
	}
	if m.IsTerminal(current) {
		return ErrDocumentLocked
	}
	return nil
}

// Transition validates a status change request. The locked check runs
// first, then the transition table, then the confirmation requirement for
// terminal targets.
func (m Machine[S]) Transition(current, target S, confirmed bool) error {
	if err := m.Guard(current); err != nil {
		return err
	}
	if !m.Known(target) {
		return ErrInvalidTransition
	}
	allowed := false
	for _, next := range m.transitions[current] {
		if next == target {
			allowed = true
			break
		}
	}
	if !allowed {
		return ErrInvalidTransition
	}
	if m.IsTerminal(target) && !confirmed {
		return ErrConfirmationRequired
	}
	return nil
}
