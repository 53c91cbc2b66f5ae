// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import (
	"context"
	"errors"
)

// ErrNotFound is wrapped by adapters when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateUser is returned by ReviewerRepository when the unique constraint on
// the reviewer's user reference rejects a write at commit time.
var ErrDuplicateUser = errors.New("reviewer already exists for user")

// ErrUnknownPreferenceTarget is returned by ReviewerRepository when a preference
// references a track or audience level that does not exist.
var ErrUnknownPreferenceTarget = errors.New("preference references an unknown track or audience level")

// ReviewerRepository defines the secondary port for reviewer persistence.
// Implementations own the uniqueness invariant on UserID and enforce it atomically.
type ReviewerRepository interface {
	// Create persists a new reviewer together with its preferences in one transaction.
	// Inserted preferences get their ID set.
	// Returns ErrDuplicateUser if another reviewer already references the user and
	// ErrUnknownPreferenceTarget if a preference points at a missing track or level.
	Create(ctx context.Context, reviewer *ReviewerRecord, prefs []*PreferenceRecord) error

	// GetByID retrieves a reviewer by its ID. Wraps ErrNotFound if absent.
	GetByID(ctx context.Context, id string) (*ReviewerRecord, error)

	// GetByUserID retrieves the reviewer referencing a user. Wraps ErrNotFound if absent.
	GetByUserID(ctx context.Context, userID int64) (*ReviewerRecord, error)

	// List retrieves reviewers matching the given filters.
	List(ctx context.Context, filters ReviewerFilters) ([]*ReviewerRecord, error)

	// Update writes every mutable column of the reviewer and appends newPrefs,
	// all in one transaction. Inserted preferences get their ID set.
	// Returns ErrDuplicateUser on a user reference clash and
	// ErrUnknownPreferenceTarget for a preference pointing at a missing track or level.
	Update(ctx context.Context, reviewer *ReviewerRecord, newPrefs []*PreferenceRecord) error

	// RemovePreferences deletes the given preferences of a reviewer.
	RemovePreferences(ctx context.Context, reviewerID string, ids []int64) error

	// Delete removes a reviewer and its preferences.
	Delete(ctx context.Context, id string) error

	// GetPreferences retrieves the preferences owned by a reviewer, in insertion order.
	GetPreferences(ctx context.Context, reviewerID string) ([]*PreferenceRecord, error)

	// CountAccepted returns how many reviewers in state accepted reference the user,
	// ignoring excludeReviewerID when it is non-empty.
	CountAccepted(ctx context.Context, userID int64, excludeReviewerID string) (int, error)

	// ListAcceptedUserIDs returns the distinct users with at least one accepted reviewer.
	ListAcceptedUserIDs(ctx context.Context) ([]int64, error)

	// GetNextID returns the next available reviewer ID.
	GetNextID(ctx context.Context) (string, error)
}

// ReviewerRecord represents a reviewer as stored in persistence.
type ReviewerRecord struct {
	ID                string
	UserID            int64
	ReviewerAgreement bool
	State             string // created, invited, accepted, rejected
	InvitationToken   string // Empty string means null
	InvitedAt         string // Empty string means null
	AcceptedAt        string // Empty string means null
	CreatedAt         string
	UpdatedAt         string
}

// PreferenceRecord represents a reviewer preference as stored in persistence.
type PreferenceRecord struct {
	ID              int64
	ReviewerID      string
	TrackID         int64 // 0 means null
	AudienceLevelID int64 // 0 means null
	Accepted        bool
}

// ReviewerFilters contains filter options for querying reviewers.
type ReviewerFilters struct {
	State  string
	UserID int64
	Limit  int
}

// UserDirectory defines the secondary port for user identity lookup and role membership.
type UserDirectory interface {
	// FindByID retrieves a user by numeric ID. Wraps ErrNotFound if absent.
	FindByID(ctx context.Context, id int64) (*UserIdentity, error)

	// FindByUsername retrieves a user by username. Wraps ErrNotFound if absent.
	FindByUsername(ctx context.Context, username string) (*UserIdentity, error)

	// GrantRole adds a role to a user. Granting a held role is a no-op.
	GrantRole(ctx context.Context, userID int64, role string) error

	// RevokeRole removes a role from a user. Revoking an absent role is a no-op.
	RevokeRole(ctx context.Context, userID int64, role string) error

	// HasRole reports whether a user holds a role.
	HasRole(ctx context.Context, userID int64, role string) (bool, error)

	// ListUsersWithRole returns the IDs of users holding a role.
	ListUsersWithRole(ctx context.Context, role string) ([]int64, error)
}

// UserIdentity represents a user as exposed by the directory.
type UserIdentity struct {
	ID       int64
	Username string
	Name     string // Empty string means null
	Email    string // Empty string means null
}

// OrganizerChecker defines the secondary port answering track organizer questions.
type OrganizerChecker interface {
	// IsOrganizer reports whether the user organizes the track.
	IsOrganizer(ctx context.Context, userID, trackID int64) (bool, error)
}

// NotificationPort defines the secondary port for outbound reviewer notices.
// Sends are fire-and-forget: implementations report their own failures.
type NotificationPort interface {
	// SendReviewerInvitation delivers an invitation notice to the reviewer's user.
	SendReviewerInvitation(ctx context.Context, invitation ReviewerInvitation)
}

// ReviewerInvitation carries what an invitation notice needs.
type ReviewerInvitation struct {
	ReviewerID      string
	UserID          int64
	Username        string
	Name            string
	Email           string
	InvitationToken string
}
