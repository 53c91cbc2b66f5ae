package reviewer

// Reviewer is the in-memory reviewer record: a user reference, the agreement flag,
// the owned preference set, and the lifecycle state.
// Operations on one Reviewer are expected to run sequentially.
type Reviewer struct {
	ID                string
	User              UserResolution
	ReviewerAgreement bool
	State             State
	Preferences       []Preference
}

// NewReviewer returns a reviewer in the initial state with no user.
func NewReviewer() *Reviewer {
	return &Reviewer{
		User:  Cleared(),
		State: InitialState(),
	}
}

// SetUser replaces the user reference with a resolution produced by the shell.
func (r *Reviewer) SetUser(res UserResolution) {
	r.User = res
}

// UserID returns the resolved user ID, or 0 when no user is resolved.
func (r *Reviewer) UserID() int64 {
	if r.User.Kind != ResolutionResolved {
		return 0
	}
	return r.User.UserID
}

// Username returns the resolved user's username, or "" when no user is resolved.
func (r *Reviewer) Username() string {
	if r.User.Kind != ResolutionResolved {
		return ""
	}
	return r.User.Username
}

// AddPreference appends a preference before or after the record is persisted.
func (r *Reviewer) AddPreference(p Preference) {
	r.Preferences = append(r.Preferences, p)
}

// AcceptedPreferences returns the preferences marked accepted.
func (r *Reviewer) AcceptedPreferences() []Preference {
	return AcceptedPreferences(r.Preferences)
}

// Snapshot returns the state machine's view of the record.
func (r *Reviewer) Snapshot() Snapshot {
	return Snapshot{
		ReviewerID:        r.ID,
		UserID:            r.UserID(),
		State:             r.State,
		ReviewerAgreement: r.ReviewerAgreement,
		Preferences:       r.Preferences,
	}
}

// Validate runs the save-time rules. duplicateOf is the ID of another reviewer
// already referencing the same user, or "".
func (r *Reviewer) Validate(duplicateOf string) ValidationErrors {
	return Validate(ValidateContext{
		ReviewerID:  r.ID,
		User:        r.User,
		DuplicateOf: duplicateOf,
		Preferences: r.Preferences,
	})
}

// Invite fires the invite event.
func (r *Reviewer) Invite(opts FireOptions) TransitionResult {
	return r.fire(EventInvite, opts)
}

// Accept fires the accept event.
func (r *Reviewer) Accept() TransitionResult {
	return r.fire(EventAccept, FireOptions{})
}

// Reject fires the reject event.
func (r *Reviewer) Reject() TransitionResult {
	return r.fire(EventReject, FireOptions{})
}

// Fire fires an arbitrary event, applying the new state when it fires.
func (r *Reviewer) Fire(event Event, opts FireOptions) TransitionResult {
	return r.fire(event, opts)
}

func (r *Reviewer) fire(event Event, opts FireOptions) TransitionResult {
	result := Fire(r.Snapshot(), event, opts)
	if result.Fired {
		r.State = result.To
	}
	return result
}

// CanReview reports whether the reviewer may review a track.
// isOrganizer tells whether the reviewer's user organizes that track.
func (r *Reviewer) CanReview(trackID int64, isOrganizer bool) bool {
	return CanReviewTrack(CanReviewContext{
		ReviewerID:  r.ID,
		UserID:      r.UserID(),
		TrackID:     trackID,
		IsOrganizer: isOrganizer,
	}).Allowed
}
