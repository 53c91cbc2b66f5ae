// Package cli provides thin CLI adapters that translate between CLI concerns
// and application services. Adapters handle argument parsing and output
// formatting, but delegate business logic to services.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	corereviewer "github.com/example/confer/internal/core/reviewer"
	"github.com/example/confer/internal/ports/primary"
)

// ReviewerAdapter translates CLI operations to ReviewerService calls.
type ReviewerAdapter struct {
	service primary.ReviewerService
	out     io.Writer
}

// NewReviewerAdapter creates a new ReviewerAdapter with the given service.
func NewReviewerAdapter(service primary.ReviewerService, out io.Writer) *ReviewerAdapter {
	return &ReviewerAdapter{
		service: service,
		out:     out,
	}
}

// ParsePreference parses "track:level" with an optional ":declined" or
// ":accepted" suffix. Preferences are accepted unless declined.
func ParsePreference(s string) (primary.PreferenceInput, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return primary.PreferenceInput{}, fmt.Errorf("invalid preference %q: want track:level[:accepted|declined]", s)
	}

	trackID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return primary.PreferenceInput{}, fmt.Errorf("invalid track ID in %q: %w", s, err)
	}
	levelID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return primary.PreferenceInput{}, fmt.Errorf("invalid audience level ID in %q: %w", s, err)
	}

	pref := primary.PreferenceInput{TrackID: trackID, AudienceLevelID: levelID, Accepted: true}
	if len(parts) == 3 {
		switch parts[2] {
		case "accepted", "yes":
		case "declined", "no":
			pref.Accepted = false
		default:
			return primary.PreferenceInput{}, fmt.Errorf("invalid preference flag %q in %q", parts[2], s)
		}
	}
	return pref, nil
}

// ParsePreferences parses every entry with ParsePreference.
func ParsePreferences(raw []string) ([]primary.PreferenceInput, error) {
	prefs := make([]primary.PreferenceInput, 0, len(raw))
	for _, s := range raw {
		p, err := ParsePreference(s)
		if err != nil {
			return nil, err
		}
		prefs = append(prefs, p)
	}
	return prefs, nil
}

// ValidateReviewerID rejects arguments that are not shaped like REV-NNN.
func ValidateReviewerID(id string) error {
	if corereviewer.ParseReviewerNumber(id) < 1 {
		return fmt.Errorf("invalid reviewer ID %q: want REV-NNN", id)
	}
	return nil
}

// Create creates and invites a reviewer.
func (a *ReviewerAdapter) Create(ctx context.Context, req primary.CreateReviewerRequest) error {
	resp, err := a.service.CreateReviewer(ctx, req)
	if err != nil {
		return describeError("failed to create reviewer", err)
	}

	fmt.Fprintf(a.out, "✓ Created reviewer %s for %s\n", resp.ReviewerID, resp.Reviewer.Username)
	if resp.Invited {
		fmt.Fprintf(a.out, "  State: %s (invitation sent)\n", colorState(resp.Reviewer.State))
	} else {
		fmt.Fprintf(a.out, "  State: %s\n", colorState(resp.Reviewer.State))
	}
	return nil
}

// List lists reviewers with optional filters.
func (a *ReviewerAdapter) List(ctx context.Context, filters primary.ReviewerFilters) error {
	reviewers, err := a.service.ListReviewers(ctx, filters)
	if err != nil {
		return fmt.Errorf("failed to list reviewers: %w", err)
	}

	if len(reviewers) == 0 {
		fmt.Fprintln(a.out, "No reviewers found")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-10s %-20s %-10s %-10s %s\n", "ID", "USER", "STATE", "AGREEMENT", "PREFS")
	fmt.Fprintln(a.out, "────────────────────────────────────────────────────────────────")
	for _, r := range reviewers {
		agreement := "no"
		if r.ReviewerAgreement {
			agreement = "yes"
		}
		// Pad before coloring so escape codes do not break alignment
		fmt.Fprintf(a.out, "%-10s %-20s %s %-10s %d\n",
			r.ID, r.Username, colorState(fmt.Sprintf("%-10s", r.State)), agreement, len(r.Preferences))
	}
	fmt.Fprintln(a.out)

	return nil
}

// Show displays details for a single reviewer.
func (a *ReviewerAdapter) Show(ctx context.Context, reviewerID string) (*primary.Reviewer, error) {
	r, err := a.service.GetReviewer(ctx, reviewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reviewer: %w", err)
	}

	fmt.Fprintf(a.out, "\nReviewer:  %s\n", r.ID)
	fmt.Fprintf(a.out, "User:      %s (#%d)\n", r.Username, r.UserID)
	fmt.Fprintf(a.out, "State:     %s\n", colorState(r.State))
	fmt.Fprintf(a.out, "Agreement: %t\n", r.ReviewerAgreement)
	fmt.Fprintf(a.out, "Role:      %t\n", r.HasReviewerRole)
	if len(r.AvailableEvents) > 0 {
		fmt.Fprintf(a.out, "Next:      %s\n", strings.Join(r.AvailableEvents, ", "))
	} else {
		fmt.Fprintln(a.out, "Next:      none (final)")
	}
	if r.InvitedAt != "" {
		fmt.Fprintf(a.out, "Invited:   %s\n", r.InvitedAt)
	}
	if r.AcceptedAt != "" {
		fmt.Fprintf(a.out, "Accepted:  %s\n", r.AcceptedAt)
	}
	fmt.Fprintf(a.out, "Created:   %s\n", r.CreatedAt)

	if len(r.Preferences) > 0 {
		fmt.Fprintln(a.out, "\nPreferences:")
		for _, p := range r.Preferences {
			mark := color.New(color.FgRed).Sprint("✗")
			if p.Accepted {
				mark = color.New(color.FgGreen).Sprint("✓")
			}
			fmt.Fprintf(a.out, "  %s track %d, audience level %d\n", mark, p.TrackID, p.AudienceLevelID)
		}
	}
	fmt.Fprintln(a.out)

	return r, nil
}

// Update applies field changes and an optional state event.
func (a *ReviewerAdapter) Update(ctx context.Context, req primary.UpdateReviewerRequest) error {
	if req.Username == nil && req.UserID == nil && req.ReviewerAgreement == nil && len(req.AddPreferences) == 0 && req.StateEvent == "" {
		return errors.New("must specify at least one of --user, --user-id, --agreement, --pref or --event")
	}

	resp, err := a.service.UpdateReviewer(ctx, req)
	if err != nil {
		return describeError("failed to update reviewer", err)
	}
	if req.StateEvent != "" {
		return a.reportTransition(req.ReviewerID, req.StateEvent, resp)
	}

	fmt.Fprintf(a.out, "✓ Reviewer %s updated\n", req.ReviewerID)
	return nil
}

// Invite (re-)sends the reviewer invitation.
func (a *ReviewerAdapter) Invite(ctx context.Context, reviewerID string) error {
	resp, err := a.service.InviteReviewer(ctx, reviewerID)
	if err != nil {
		return err
	}
	return a.reportTransition(reviewerID, string(corereviewer.EventInvite), resp)
}

// Accept accepts the invitation on the reviewer's behalf.
func (a *ReviewerAdapter) Accept(ctx context.Context, req primary.AcceptReviewerRequest) error {
	resp, err := a.service.AcceptReviewer(ctx, req)
	if err != nil {
		return err
	}
	return a.reportTransition(req.ReviewerID, string(corereviewer.EventAccept), resp)
}

// Reject declines the invitation on the reviewer's behalf.
func (a *ReviewerAdapter) Reject(ctx context.Context, reviewerID string) error {
	resp, err := a.service.RejectReviewer(ctx, reviewerID)
	if err != nil {
		return err
	}
	return a.reportTransition(reviewerID, string(corereviewer.EventReject), resp)
}

// Delete removes a reviewer.
func (a *ReviewerAdapter) Delete(ctx context.Context, reviewerID string) error {
	if err := a.service.DeleteReviewer(ctx, reviewerID); err != nil {
		return fmt.Errorf("failed to delete reviewer: %w", err)
	}

	fmt.Fprintf(a.out, "✓ Reviewer %s deleted\n", reviewerID)
	return nil
}

// CanReview prints whether the reviewer may review the track.
func (a *ReviewerAdapter) CanReview(ctx context.Context, reviewerID string, trackID int64) (bool, error) {
	ok, err := a.service.CanReview(ctx, reviewerID, trackID)
	if err != nil {
		return false, fmt.Errorf("failed to check reviewer: %w", err)
	}

	if ok {
		fmt.Fprintf(a.out, "%s %s may review track %d\n", color.New(color.FgGreen).Sprint("✓"), reviewerID, trackID)
	} else {
		fmt.Fprintf(a.out, "%s %s may not review track %d\n", color.New(color.FgRed).Sprint("✗"), reviewerID, trackID)
	}
	return ok, nil
}

// SyncRoles recomputes reviewer roles and prints what changed.
func (a *ReviewerAdapter) SyncRoles(ctx context.Context) error {
	resp, err := a.service.SyncReviewerRoles(ctx)
	if err != nil {
		return fmt.Errorf("failed to sync reviewer roles: %w", err)
	}

	fmt.Fprintf(a.out, "✓ Checked %d user(s): %d granted, %d revoked\n", resp.Checked, len(resp.Granted), len(resp.Revoked))
	for _, id := range resp.Granted {
		fmt.Fprintf(a.out, "  + user #%d\n", id)
	}
	for _, id := range resp.Revoked {
		fmt.Fprintf(a.out, "  - user #%d\n", id)
	}
	return nil
}

func (a *ReviewerAdapter) reportTransition(reviewerID, event string, resp *primary.TransitionResponse) error {
	if resp.Fired {
		fmt.Fprintf(a.out, "✓ Reviewer %s: %s → %s\n", reviewerID, event, colorState(resp.State))
		return nil
	}

	if !resp.Errors.Empty() {
		fmt.Fprintf(a.out, "✗ Cannot %s reviewer %s:\n", event, reviewerID)
		printFieldErrors(a.out, resp.Errors)
		return fmt.Errorf("%s refused: %w", event, resp.Errors)
	}
	return fmt.Errorf("cannot %s reviewer %s in state %s", event, reviewerID, resp.State)
}

// describeError flattens validation failures into one line per field.
func describeError(prefix string, err error) error {
	var verrs corereviewer.ValidationErrors
	if errors.As(err, &verrs) {
		lines := make([]string, len(verrs))
		for i, fe := range verrs {
			lines[i] = fmt.Sprintf("  %s: %v", fe.Field, fe.Err)
		}
		return fmt.Errorf("%s:\n%s", prefix, strings.Join(lines, "\n"))
	}
	return fmt.Errorf("%s: %w", prefix, err)
}

func printFieldErrors(out io.Writer, errs corereviewer.ValidationErrors) {
	for _, fe := range errs {
		fmt.Fprintf(out, "  %s: %v\n", fe.Field, fe.Err)
	}
}

func colorState(state string) string {
	switch corereviewer.State(strings.TrimSpace(state)) {
	case corereviewer.StateAccepted:
		return color.New(color.FgGreen).Sprint(state)
	case corereviewer.StateRejected:
		return color.New(color.FgRed).Sprint(state)
	case corereviewer.StateInvited:
		return color.New(color.FgYellow).Sprint(state)
	default:
		return state
	}
}
