// Package primary defines the primary ports (driving adapters) for the application.
// These are the interfaces through which the outside world drives the application.
package primary

import (
	"context"

	corereviewer "github.com/example/confer/internal/core/reviewer"
)

// ReviewerService defines the primary port for reviewer lifecycle operations.
type ReviewerService interface {
	// CreateReviewer validates and persists a reviewer, then invites it.
	// Validation failures are returned as corereviewer.ValidationErrors and nothing is stored.
	CreateReviewer(ctx context.Context, req CreateReviewerRequest) (*CreateReviewerResponse, error)

	// GetReviewer retrieves a reviewer by ID.
	GetReviewer(ctx context.Context, reviewerID string) (*Reviewer, error)

	// ListReviewers lists reviewers with optional filters.
	ListReviewers(ctx context.Context, filters ReviewerFilters) ([]*Reviewer, error)

	// UpdateReviewer changes the user reference, the agreement flag, and/or appends
	// preferences, then fires StateEvent when one is given.
	UpdateReviewer(ctx context.Context, req UpdateReviewerRequest) (*TransitionResponse, error)

	// InviteReviewer fires the invite event.
	InviteReviewer(ctx context.Context, reviewerID string) (*TransitionResponse, error)

	// AcceptReviewer fires the accept event, optionally applying agreement and
	// preferences built for this acceptance first.
	AcceptReviewer(ctx context.Context, req AcceptReviewerRequest) (*TransitionResponse, error)

	// RejectReviewer fires the reject event.
	RejectReviewer(ctx context.Context, reviewerID string) (*TransitionResponse, error)

	// DeleteReviewer destroys a reviewer and its preferences, revoking the reviewer
	// role when no other accepted reviewer justifies it.
	DeleteReviewer(ctx context.Context, reviewerID string) error

	// CanReview reports whether the reviewer may review the track.
	CanReview(ctx context.Context, reviewerID string, trackID int64) (bool, error)

	// SyncReviewerRoles recomputes the reviewer role for every affected user.
	SyncReviewerRoles(ctx context.Context) (*SyncRolesResponse, error)
}

// PreferenceInput describes a preference supplied by a caller.
type PreferenceInput struct {
	TrackID         int64
	AudienceLevelID int64
	Accepted        bool
}

// CreateReviewerRequest contains parameters for creating a reviewer.
// Username takes precedence over UserID when it is not blank.
type CreateReviewerRequest struct {
	UserID            int64
	Username          string
	ReviewerAgreement bool
	Preferences       []PreferenceInput
}

// CreateReviewerResponse contains the result of creating a reviewer.
type CreateReviewerResponse struct {
	ReviewerID string
	Reviewer   *Reviewer
	Invited    bool
}

// UpdateReviewerRequest contains parameters for updating a reviewer.
// Nil pointers leave the field unchanged; a blank Username clears the reference
// and therefore fails validation. Username wins over UserID when both are set.
type UpdateReviewerRequest struct {
	ReviewerID        string
	Username          *string
	UserID            *int64
	ReviewerAgreement *bool
	AddPreferences    []PreferenceInput
	StateEvent        string // Optional: invite, accept, reject
}

// AcceptReviewerRequest contains parameters for accepting a reviewer invitation.
type AcceptReviewerRequest struct {
	ReviewerID        string
	ReviewerAgreement *bool
	Preferences       []PreferenceInput
}

// TransitionResponse reports the outcome of firing a lifecycle event.
// Fired is false when the state disallows the event or a guard failed;
// guard failures are listed in Errors.
type TransitionResponse struct {
	Fired    bool
	State    string
	Errors   corereviewer.ValidationErrors
	Reviewer *Reviewer
}

// SyncRolesResponse summarises a role recomputation pass.
type SyncRolesResponse struct {
	Checked int
	Granted []int64
	Revoked []int64
}

// Reviewer represents a reviewer entity at the port boundary.
type Reviewer struct {
	ID                string
	UserID            int64
	Username          string
	ReviewerAgreement bool
	State             string
	HasReviewerRole   bool
	AvailableEvents   []string // Events with a transition out of State
	Preferences       []*Preference
	InvitedAt         string
	AcceptedAt        string
	CreatedAt         string
	UpdatedAt         string
}

// Preference represents a reviewer preference at the port boundary.
type Preference struct {
	ID              int64
	TrackID         int64
	AudienceLevelID int64
	Accepted        bool
}

// ReviewerFilters contains filter options for listing reviewers.
type ReviewerFilters struct {
	State    string
	Username string
	Limit    int
}
