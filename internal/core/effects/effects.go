// Package effects defines effect types as data structures representing I/O operations.
// This is the foundation of the Functional Core / Imperative Shell pattern.
// Effects are pure data - they describe what should happen, not how.
package effects

// Effect is the base interface for all effects.
// Effects represent I/O operations as data that can be interpreted by the shell.
type Effect interface {
	// EffectType returns a string identifier for the effect type.
	EffectType() string
}

// Role operations understood by RoleEffect.
const (
	RoleGrant  = "grant"
	RoleRevoke = "revoke"
)

// Notification kinds understood by NotifyEffect.
const (
	NotifyReviewerInvitation = "reviewer_invitation"
)

// LogEffect represents a logging operation. Level uses slog level names.
type LogEffect struct {
	Level   string
	Message string
	Fields  map[string]any
}

func (e LogEffect) EffectType() string { return "log" }

// NotifyEffect represents an outbound notice to a user.
// Delivery is best-effort: the shell never reports a failure back to the core.
type NotifyEffect struct {
	Kind            string // e.g., "reviewer_invitation"
	ReviewerID      string
	UserID          int64
	InvitationToken string
}

func (e NotifyEffect) EffectType() string { return "notify" }

// RoleEffect represents a change to a user's role membership in the directory.
type RoleEffect struct {
	Operation string // "grant" or "revoke"
	UserID    int64
	Role      string
}

func (e RoleEffect) EffectType() string { return "role" }

// NoEffect represents an operation that produces no side effects.
type NoEffect struct{}

func (e NoEffect) EffectType() string { return "none" }
