// Package reviewer contains the pure business logic for the reviewer lifecycle.
// This is part of the Functional Core - no I/O, only pure functions.
package reviewer

import "fmt"

// State represents the lifecycle state of a reviewer record.
type State string

const (
	StateCreated  State = "created"
	StateInvited  State = "invited"
	StateAccepted State = "accepted"
	StateRejected State = "rejected"
)

// Event is a request to move a reviewer between states.
type Event string

const (
	EventInvite Event = "invite"
	EventAccept Event = "accept"
	EventReject Event = "reject"
)

// ReviewerRole is the directory role held by users with an accepted reviewer record.
const ReviewerRole = "reviewer"

// InitialState returns the state every new reviewer record starts in.
func InitialState() State {
	return StateCreated
}

// IsTerminal reports whether no event can leave the state.
func (s State) IsTerminal() bool {
	return s == StateAccepted || s == StateRejected
}

// ParseState converts a stored or user-supplied value into a State.
func ParseState(s string) (State, error) {
	switch State(s) {
	case StateCreated, StateInvited, StateAccepted, StateRejected:
		return State(s), nil
	}
	return "", fmt.Errorf("unknown reviewer state %q", s)
}

// ParseEvent converts a user-supplied value into an Event.
func ParseEvent(s string) (Event, error) {
	switch Event(s) {
	case EventInvite, EventAccept, EventReject:
		return Event(s), nil
	}
	return "", fmt.Errorf("unknown reviewer event %q", s)
}
