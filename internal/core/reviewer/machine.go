package reviewer

import "github.com/example/confer/internal/core/effects"

// Snapshot is the part of a reviewer record the state machine reads.
type Snapshot struct {
	ReviewerID        string
	UserID            int64
	State             State
	ReviewerAgreement bool
	Preferences       []Preference
}

// FireOptions carries values the shell supplies to keep Fire pure.
type FireOptions struct {
	InvitationToken string // Embedded in the invitation notice when invite fires
}

// TransitionResult captures the outcome of firing an event.
// When Fired is false, To equals From and Effects is empty.
type TransitionResult struct {
	Fired   bool
	From    State
	To      State
	Errors  ValidationErrors // Guard failures; empty when the state simply disallows the event
	Effects []effects.Effect
}

type transitionKey struct {
	from  State
	event Event
}

type transition struct {
	to      State
	guard   func(Snapshot) ValidationErrors
	effects func(Snapshot, FireOptions) []effects.Effect
}

// transitions is the complete lifecycle. Pairs not listed are refused.
var transitions = map[transitionKey]transition{
	{StateCreated, EventInvite}: {to: StateInvited, effects: inviteEffects},
	{StateInvited, EventInvite}: {to: StateInvited, effects: inviteEffects},
	{StateInvited, EventAccept}: {to: StateAccepted, guard: CheckAccept, effects: acceptEffects},
	{StateInvited, EventReject}: {to: StateRejected, effects: rejectEffects},
}

// Fire evaluates event against the snapshot and returns the resulting transition.
// It never mutates the snapshot; callers apply To when Fired is true.
func Fire(s Snapshot, event Event, opts FireOptions) TransitionResult {
	result := TransitionResult{From: s.State, To: s.State}

	t, ok := transitions[transitionKey{s.State, event}]
	if !ok {
		return result
	}

	if t.guard != nil {
		if errs := t.guard(s); !errs.Empty() {
			result.Errors = errs
			return result
		}
	}

	result.Fired = true
	result.To = t.to
	if t.effects != nil {
		result.Effects = t.effects(s, opts)
	}
	return result
}

// Allowed reports whether the state machine has a transition for event from state.
// Guards are not evaluated.
func Allowed(from State, event Event) bool {
	_, ok := transitions[transitionKey{from, event}]
	return ok
}

// AvailableEvents lists the events with a transition out of state, in lifecycle order.
func AvailableEvents(from State) []Event {
	var events []Event
	for _, e := range []Event{EventInvite, EventAccept, EventReject} {
		if Allowed(from, e) {
			events = append(events, e)
		}
	}
	return events
}

// CheckAccept is the guard on the accept transition.
// Rules:
// - The reviewer agreement must be accepted
// - At least one preference must be accepted
func CheckAccept(s Snapshot) ValidationErrors {
	var errs ValidationErrors
	if !s.ReviewerAgreement {
		errs.Add(FieldReviewerAgreement, ErrAgreementNotAccepted)
	}
	if !HasAcceptedPreference(s.Preferences) {
		errs.Add(FieldBase, ErrNoPreferenceAccepted)
	}
	return errs
}

func inviteEffects(s Snapshot, opts FireOptions) []effects.Effect {
	return []effects.Effect{
		effects.NotifyEffect{
			Kind:            effects.NotifyReviewerInvitation,
			ReviewerID:      s.ReviewerID,
			UserID:          s.UserID,
			InvitationToken: opts.InvitationToken,
		},
	}
}

func acceptEffects(s Snapshot, _ FireOptions) []effects.Effect {
	return []effects.Effect{
		effects.RoleEffect{
			Operation: effects.RoleGrant,
			UserID:    s.UserID,
			Role:      ReviewerRole,
		},
	}
}

func rejectEffects(s Snapshot, _ FireOptions) []effects.Effect {
	return []effects.Effect{
		effects.LogEffect{
			Level:   "INFO",
			Message: "reviewer declined invitation",
			Fields: map[string]any{
				"reviewer_id": s.ReviewerID,
				"user_id":     s.UserID,
			},
		},
	}
}
