package reviewer

import "fmt"

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string // Human-readable reason (populated when not allowed)
}

// Error returns the guard result as an error if not allowed, nil otherwise.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// CanReviewContext provides context for the track review guard.
type CanReviewContext struct {
	ReviewerID  string
	UserID      int64
	TrackID     int64
	IsOrganizer bool // Reviewer's user organizes TrackID
}

// CanReviewTrack evaluates whether a reviewer may review a track.
// Rule: An organizer may never review their own track.
func CanReviewTrack(ctx CanReviewContext) GuardResult {
	if ctx.IsOrganizer {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("reviewer %s organizes track %d and cannot review it", ctx.ReviewerID, ctx.TrackID),
		}
	}
	return GuardResult{Allowed: true}
}

// DeleteContext provides context for reviewer deletion guards.
type DeleteContext struct {
	ReviewerID     string
	ReviewerExists bool
}

// CanDeleteReviewer evaluates whether a reviewer record can be destroyed.
// Rule: The reviewer must exist.
func CanDeleteReviewer(ctx DeleteContext) GuardResult {
	if !ctx.ReviewerExists {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("reviewer %s not found", ctx.ReviewerID),
		}
	}
	return GuardResult{Allowed: true}
}
