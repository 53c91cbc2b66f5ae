package app

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	corereviewer "github.com/example/confer/internal/core/reviewer"
	"github.com/example/confer/internal/ctxutil"
	"github.com/example/confer/internal/ports/primary"
	"github.com/example/confer/internal/ports/secondary"
)

type reviewerFixture struct {
	service    *ReviewerServiceImpl
	repo       *fakeReviewerRepository
	directory  *fakeUserDirectory
	organizers *fakeOrganizerChecker
	notifier   *recordingNotifier
	logWriter  *recordingLogWriter
}

func newTestReviewerService() *reviewerFixture {
	repo := newFakeReviewerRepository()
	directory := newFakeUserDirectory()
	directory.addUser(1, "alice", "alice@example.com")
	directory.addUser(2, "bob", "bob@example.com")
	directory.addUser(3, "carol", "")
	organizers := &fakeOrganizerChecker{tracks: map[int64][]int64{1: {10}}}
	notifier := &recordingNotifier{}
	logWriter := &recordingLogWriter{}

	executor := NewEffectExecutor(directory, notifier, nil)
	service := NewReviewerService(repo, directory, organizers, logWriter, executor, nil)
	tokens := 0
	service.newToken = func() string {
		tokens++
		return fmt.Sprintf("token-%d", tokens)
	}

	return &reviewerFixture{
		service:    service,
		repo:       repo,
		directory:  directory,
		organizers: organizers,
		notifier:   notifier,
		logWriter:  logWriter,
	}
}

func boolPtr(b bool) *bool { return &b }

func strPtr(s string) *string { return &s }

func acceptedPref(track, level int64) primary.PreferenceInput {
	return primary.PreferenceInput{TrackID: track, AudienceLevelID: level, Accepted: true}
}

// createInvited creates a reviewer for username and returns its ID.
func (f *reviewerFixture) createInvited(t *testing.T, username string) string {
	t.Helper()
	resp, err := f.service.CreateReviewer(context.Background(), primary.CreateReviewerRequest{Username: username})
	require.NoError(t, err)
	require.True(t, resp.Invited)
	return resp.ReviewerID
}

// createAccepted creates and accepts a reviewer for username and returns its ID.
func (f *reviewerFixture) createAccepted(t *testing.T, username string) string {
	t.Helper()
	id := f.createInvited(t, username)
	resp, err := f.service.AcceptReviewer(context.Background(), primary.AcceptReviewerRequest{
		ReviewerID:        id,
		ReviewerAgreement: boolPtr(true),
		Preferences:       []primary.PreferenceInput{acceptedPref(1, 1)},
	})
	require.NoError(t, err)
	require.True(t, resp.Fired)
	return id
}

func fieldErrors(t *testing.T, err error, field string) []error {
	t.Helper()
	var verrs corereviewer.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	return verrs.On(field)
}

func TestReviewerService_CreateReviewer_InvitesAndNotifies(t *testing.T) {
	f := newTestReviewerService()
	ctx := ctxutil.WithActorID(context.Background(), "organizer")

	resp, err := f.service.CreateReviewer(ctx, primary.CreateReviewerRequest{Username: "alice"})
	require.NoError(t, err)

	assert.Equal(t, "REV-001", resp.ReviewerID)
	assert.True(t, resp.Invited)
	assert.Equal(t, "invited", resp.Reviewer.State)
	assert.Equal(t, int64(1), resp.Reviewer.UserID)
	assert.NotEmpty(t, resp.Reviewer.InvitedAt)

	require.Len(t, f.notifier.sent, 1)
	sent := f.notifier.sent[0]
	assert.Equal(t, "REV-001", sent.ReviewerID)
	assert.Equal(t, "alice@example.com", sent.Email)
	assert.Equal(t, "token-1", sent.InvitationToken)
	assert.Equal(t, "token-1", f.repo.reviewers["REV-001"].InvitationToken)
	assert.Equal(t, []string{"invite", "accept", "reject"}, resp.Reviewer.AvailableEvents)

	require.Len(t, f.logWriter.calls, 2)
	assert.Equal(t, "create", f.logWriter.calls[0].action)
	assert.Equal(t, logCall{"update", "reviewer", "REV-001", "state", "created", "invited"}, f.logWriter.calls[1])
}

func TestReviewerService_CreateReviewer_NotKeptWhenInviteFails(t *testing.T) {
	f := newTestReviewerService()
	f.repo.updateErr = errors.New("disk full")

	_, err := f.service.CreateReviewer(context.Background(), primary.CreateReviewerRequest{Username: "alice"})
	require.Error(t, err)
	assert.Empty(t, f.repo.reviewers)
	assert.Empty(t, f.repo.prefs)
	assert.Empty(t, f.notifier.sent)

	// Nothing left behind blocks a retry for the same user
	f.repo.updateErr = nil
	resp, err := f.service.CreateReviewer(context.Background(), primary.CreateReviewerRequest{Username: "alice"})
	require.NoError(t, err)
	assert.True(t, resp.Invited)
	assert.Equal(t, "invited", f.repo.reviewers[resp.ReviewerID].State)
}

func TestReviewerService_CreateReviewer_UnknownTrack(t *testing.T) {
	f := newTestReviewerService()
	f.repo.missingTracks = map[int64]bool{99: true}

	_, err := f.service.CreateReviewer(context.Background(), primary.CreateReviewerRequest{
		Username:    "alice",
		Preferences: []primary.PreferenceInput{acceptedPref(99, 1)},
	})
	require.Error(t, err)
	assert.Equal(t, []error{corereviewer.ErrPreferenceUnknown}, fieldErrors(t, err, corereviewer.FieldPreferences))
	assert.Empty(t, f.repo.reviewers)
}

func TestReviewerService_CreateReviewer_PersistsPreferences(t *testing.T) {
	f := newTestReviewerService()

	resp, err := f.service.CreateReviewer(context.Background(), primary.CreateReviewerRequest{
		Username:          "alice",
		ReviewerAgreement: true,
		Preferences: []primary.PreferenceInput{
			acceptedPref(1, 2),
			{TrackID: 2},
		},
	})
	require.NoError(t, err)

	require.Len(t, resp.Reviewer.Preferences, 2)
	assert.True(t, resp.Reviewer.Preferences[0].Accepted)
	assert.NotZero(t, resp.Reviewer.Preferences[0].ID)
	assert.True(t, resp.Reviewer.ReviewerAgreement)
}

func TestReviewerService_CreateReviewer_InvalidUser(t *testing.T) {
	tests := []struct {
		name       string
		req        primary.CreateReviewerRequest
		wantField  string
		wantErr    error
		wantOnUser bool
	}{
		{
			name:      "unknown username",
			req:       primary.CreateReviewerRequest{Username: "mallory"},
			wantField: corereviewer.FieldUserUsername,
			wantErr:   corereviewer.ErrUserReferenceInvalid,
		},
		{
			name:       "unknown user id",
			req:        primary.CreateReviewerRequest{UserID: 99},
			wantField:  corereviewer.FieldUserUsername,
			wantErr:    corereviewer.ErrUserReferenceInvalid,
			wantOnUser: true,
		},
		{
			name:      "blank username",
			req:       primary.CreateReviewerRequest{Username: "   "},
			wantField: corereviewer.FieldUserUsername,
			wantErr:   corereviewer.ErrUsernameRequired,
		},
		{
			name:      "no reference",
			req:       primary.CreateReviewerRequest{},
			wantField: corereviewer.FieldUserUsername,
			wantErr:   corereviewer.ErrUsernameRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestReviewerService()

			resp, err := f.service.CreateReviewer(context.Background(), tt.req)
			require.Error(t, err)
			assert.Nil(t, resp)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.NotEmpty(t, fieldErrors(t, err, tt.wantField))
			assert.Equal(t, tt.wantOnUser, len(fieldErrors(t, err, corereviewer.FieldUser)) > 0)

			assert.Empty(t, f.repo.reviewers, "nothing should be persisted")
			assert.Empty(t, f.notifier.sent, "no invitation should be sent")
		})
	}
}

func TestReviewerService_CreateReviewer_UsernameWinsOverID(t *testing.T) {
	f := newTestReviewerService()

	resp, err := f.service.CreateReviewer(context.Background(), primary.CreateReviewerRequest{
		UserID:   1,
		Username: "bob",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Reviewer.UserID)
}

func TestReviewerService_CreateReviewer_DuplicateUser(t *testing.T) {
	f := newTestReviewerService()
	f.createInvited(t, "alice")

	_, err := f.service.CreateReviewer(context.Background(), primary.CreateReviewerRequest{Username: "alice"})
	require.Error(t, err)
	assert.ErrorIs(t, err, corereviewer.ErrDuplicateUser)
	assert.NotEmpty(t, fieldErrors(t, err, corereviewer.FieldUserUsername))
	assert.Len(t, f.repo.reviewers, 1)
	assert.Len(t, f.notifier.sent, 1)
}

func TestReviewerService_CreateReviewer_DuplicateAtCommit(t *testing.T) {
	f := newTestReviewerService()
	f.repo.createErr = secondary.ErrDuplicateUser

	_, err := f.service.CreateReviewer(context.Background(), primary.CreateReviewerRequest{Username: "alice"})
	require.Error(t, err)
	assert.ErrorIs(t, err, corereviewer.ErrDuplicateUser)
	assert.NotEmpty(t, fieldErrors(t, err, corereviewer.FieldUserUsername))
	assert.Empty(t, f.notifier.sent)
}

func TestReviewerService_UsernameRoundTrip(t *testing.T) {
	f := newTestReviewerService()
	id := f.createInvited(t, "  alice  ")

	reviewer, err := f.service.GetReviewer(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "alice", reviewer.Username)
}

func TestReviewerService_InviteReviewer_ResendsNotice(t *testing.T) {
	f := newTestReviewerService()
	id := f.createInvited(t, "alice")

	resp, err := f.service.InviteReviewer(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, resp.Fired)
	assert.Equal(t, "invited", resp.State)

	require.Len(t, f.notifier.sent, 2)
	assert.Equal(t, "token-2", f.notifier.sent[1].InvitationToken)
}

func TestReviewerService_AcceptReviewer_GrantsRole(t *testing.T) {
	f := newTestReviewerService()
	id := f.createInvited(t, "alice")

	resp, err := f.service.AcceptReviewer(context.Background(), primary.AcceptReviewerRequest{
		ReviewerID:        id,
		ReviewerAgreement: boolPtr(true),
		Preferences:       []primary.PreferenceInput{acceptedPref(1, 1)},
	})
	require.NoError(t, err)

	assert.True(t, resp.Fired)
	assert.Equal(t, "accepted", resp.State)
	assert.True(t, resp.Reviewer.HasReviewerRole)
	assert.NotEmpty(t, resp.Reviewer.AcceptedAt)
	assert.Len(t, resp.Reviewer.Preferences, 1)
	assert.Equal(t, []int64{1}, f.directory.grants)
}

func TestReviewerService_AcceptReviewer_GuardFailures(t *testing.T) {
	tests := []struct {
		name      string
		req       primary.AcceptReviewerRequest
		wantField string
		wantErr   error
	}{
		{
			name:      "agreement not accepted",
			req:       primary.AcceptReviewerRequest{Preferences: []primary.PreferenceInput{acceptedPref(1, 1)}},
			wantField: corereviewer.FieldReviewerAgreement,
			wantErr:   corereviewer.ErrAgreementNotAccepted,
		},
		{
			name:      "no accepted preference",
			req:       primary.AcceptReviewerRequest{ReviewerAgreement: boolPtr(true), Preferences: []primary.PreferenceInput{{TrackID: 1, AudienceLevelID: 1}}},
			wantField: corereviewer.FieldBase,
			wantErr:   corereviewer.ErrNoPreferenceAccepted,
		},
		{
			name:      "incomplete preference",
			req:       primary.AcceptReviewerRequest{ReviewerAgreement: boolPtr(true), Preferences: []primary.PreferenceInput{{TrackID: 1, Accepted: true}}},
			wantField: corereviewer.FieldPreferences,
			wantErr:   corereviewer.ErrPreferenceIncomplete,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestReviewerService()
			id := f.createInvited(t, "alice")
			tt.req.ReviewerID = id

			resp, err := f.service.AcceptReviewer(context.Background(), tt.req)
			require.NoError(t, err)

			assert.False(t, resp.Fired)
			assert.Equal(t, "invited", resp.State)
			assert.NotEmpty(t, resp.Errors.On(tt.wantField))
			assert.ErrorIs(t, resp.Errors, tt.wantErr)

			assert.Equal(t, "invited", f.repo.reviewers[id].State)
			assert.False(t, f.repo.reviewers[id].ReviewerAgreement)
			assert.Empty(t, f.repo.prefs[id])
			assert.Empty(t, f.directory.grants)
		})
	}
}

func TestReviewerService_AcceptReviewer_RollsBackOnDirectoryFailure(t *testing.T) {
	f := newTestReviewerService()
	id := f.createInvited(t, "alice")
	f.directory.grantErr = errDirectoryDown

	_, err := f.service.AcceptReviewer(context.Background(), primary.AcceptReviewerRequest{
		ReviewerID:        id,
		ReviewerAgreement: boolPtr(true),
		Preferences:       []primary.PreferenceInput{acceptedPref(1, 1)},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, errDirectoryDown)

	stored := f.repo.reviewers[id]
	assert.Equal(t, "invited", stored.State)
	assert.False(t, stored.ReviewerAgreement)
	assert.Empty(t, stored.AcceptedAt)
	assert.Empty(t, f.repo.prefs[id])
}

func TestReviewerService_RejectReviewer(t *testing.T) {
	f := newTestReviewerService()
	ctx := context.Background()
	id := f.createInvited(t, "alice")

	resp, err := f.service.RejectReviewer(ctx, id)
	require.NoError(t, err)
	assert.True(t, resp.Fired)
	assert.Equal(t, "rejected", resp.State)

	// Rejected is terminal
	for _, fire := range []func() (*primary.TransitionResponse, error){
		func() (*primary.TransitionResponse, error) { return f.service.InviteReviewer(ctx, id) },
		func() (*primary.TransitionResponse, error) {
			return f.service.AcceptReviewer(ctx, primary.AcceptReviewerRequest{
				ReviewerID:        id,
				ReviewerAgreement: boolPtr(true),
				Preferences:       []primary.PreferenceInput{acceptedPref(1, 1)},
			})
		},
		func() (*primary.TransitionResponse, error) { return f.service.RejectReviewer(ctx, id) },
	} {
		resp, err := fire()
		require.NoError(t, err)
		assert.False(t, resp.Fired)
		assert.Equal(t, "rejected", resp.State)
	}
	assert.Len(t, f.notifier.sent, 1)
	assert.Empty(t, f.directory.grants)
}

func TestReviewerService_AcceptedIsTerminal(t *testing.T) {
	f := newTestReviewerService()
	id := f.createAccepted(t, "alice")

	resp, err := f.service.InviteReviewer(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, resp.Fired)
	assert.Equal(t, "accepted", resp.State)
	assert.Len(t, f.notifier.sent, 1)

	reviewer, err := f.service.GetReviewer(context.Background(), id)
	require.NoError(t, err)
	assert.Empty(t, reviewer.AvailableEvents)
}

func TestReviewerService_AcceptReviewer_UnknownTrack(t *testing.T) {
	f := newTestReviewerService()
	id := f.createInvited(t, "alice")
	f.repo.missingTracks = map[int64]bool{99: true}

	resp, err := f.service.AcceptReviewer(context.Background(), primary.AcceptReviewerRequest{
		ReviewerID:        id,
		ReviewerAgreement: boolPtr(true),
		Preferences:       []primary.PreferenceInput{acceptedPref(99, 1)},
	})
	require.NoError(t, err)
	assert.False(t, resp.Fired)
	assert.Equal(t, "invited", resp.State)
	assert.Equal(t, []error{corereviewer.ErrPreferenceUnknown}, resp.Errors.On(corereviewer.FieldPreferences))
	assert.Equal(t, "invited", f.repo.reviewers[id].State)
	assert.Empty(t, f.directory.grants)
}

func TestReviewerService_UpdateReviewer(t *testing.T) {
	t.Run("blank username fails validation", func(t *testing.T) {
		f := newTestReviewerService()
		id := f.createInvited(t, "alice")

		_, err := f.service.UpdateReviewer(context.Background(), primary.UpdateReviewerRequest{
			ReviewerID: id,
			Username:   strPtr(" "),
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, corereviewer.ErrUsernameRequired)
		assert.Equal(t, int64(1), f.repo.reviewers[id].UserID)
	})

	t.Run("switch to user held by another reviewer", func(t *testing.T) {
		f := newTestReviewerService()
		id := f.createInvited(t, "alice")
		f.createInvited(t, "bob")

		_, err := f.service.UpdateReviewer(context.Background(), primary.UpdateReviewerRequest{
			ReviewerID: id,
			Username:   strPtr("bob"),
		})
		assert.ErrorIs(t, err, corereviewer.ErrDuplicateUser)
	})

	t.Run("same user is not a duplicate of itself", func(t *testing.T) {
		f := newTestReviewerService()
		id := f.createInvited(t, "alice")

		resp, err := f.service.UpdateReviewer(context.Background(), primary.UpdateReviewerRequest{
			ReviewerID: id,
			Username:   strPtr("alice"),
		})
		require.NoError(t, err)
		assert.False(t, resp.Fired)
		assert.Equal(t, "invited", resp.State)
	})

	t.Run("state event accept", func(t *testing.T) {
		f := newTestReviewerService()
		id := f.createInvited(t, "alice")

		resp, err := f.service.UpdateReviewer(context.Background(), primary.UpdateReviewerRequest{
			ReviewerID:        id,
			ReviewerAgreement: boolPtr(true),
			AddPreferences:    []primary.PreferenceInput{acceptedPref(2, 1)},
			StateEvent:        "accept",
		})
		require.NoError(t, err)
		assert.True(t, resp.Fired)
		assert.Equal(t, "accepted", resp.State)
		assert.True(t, resp.Reviewer.HasReviewerRole)
	})

	t.Run("unknown state event", func(t *testing.T) {
		f := newTestReviewerService()
		id := f.createInvited(t, "alice")

		_, err := f.service.UpdateReviewer(context.Background(), primary.UpdateReviewerRequest{
			ReviewerID: id,
			StateEvent: "promote",
		})
		assert.Error(t, err)
	})

	t.Run("accepted reviewer moving users moves the role", func(t *testing.T) {
		f := newTestReviewerService()
		id := f.createAccepted(t, "alice")

		_, err := f.service.UpdateReviewer(context.Background(), primary.UpdateReviewerRequest{
			ReviewerID: id,
			Username:   strPtr("carol"),
		})
		require.NoError(t, err)

		hasAlice, _ := f.directory.HasRole(context.Background(), 1, corereviewer.ReviewerRole)
		hasCarol, _ := f.directory.HasRole(context.Background(), 3, corereviewer.ReviewerRole)
		assert.False(t, hasAlice)
		assert.True(t, hasCarol)
	})

	t.Run("role grant failure keeps the reviewer with its user", func(t *testing.T) {
		f := newTestReviewerService()
		id := f.createAccepted(t, "alice")
		f.directory.grantErr = errDirectoryDown

		_, err := f.service.UpdateReviewer(context.Background(), primary.UpdateReviewerRequest{
			ReviewerID: id,
			Username:   strPtr("bob"),
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, errDirectoryDown)

		stored := f.repo.reviewers[id]
		assert.Equal(t, int64(1), stored.UserID)
		assert.Equal(t, "accepted", stored.State)
		hasAlice, _ := f.directory.HasRole(context.Background(), 1, corereviewer.ReviewerRole)
		hasBob, _ := f.directory.HasRole(context.Background(), 2, corereviewer.ReviewerRole)
		assert.True(t, hasAlice)
		assert.False(t, hasBob)
		assert.Empty(t, f.directory.revokes)
	})

	t.Run("role revoke failure restores both users", func(t *testing.T) {
		f := newTestReviewerService()
		id := f.createAccepted(t, "alice")
		f.directory.revokeErr = errDirectoryDown

		_, err := f.service.UpdateReviewer(context.Background(), primary.UpdateReviewerRequest{
			ReviewerID: id,
			Username:   strPtr("bob"),
		})
		assert.ErrorIs(t, err, errDirectoryDown)
		assert.Equal(t, int64(1), f.repo.reviewers[id].UserID)

		// Revoking bob's fresh grant fails too; the next sync pass repairs it
		f.directory.revokeErr = nil
		_, err = f.service.SyncReviewerRoles(context.Background())
		require.NoError(t, err)
		hasAlice, _ := f.directory.HasRole(context.Background(), 1, corereviewer.ReviewerRole)
		hasBob, _ := f.directory.HasRole(context.Background(), 2, corereviewer.ReviewerRole)
		assert.True(t, hasAlice)
		assert.False(t, hasBob)
	})

	t.Run("user id switches the user", func(t *testing.T) {
		f := newTestReviewerService()
		id := f.createInvited(t, "alice")
		userID := int64(2)

		resp, err := f.service.UpdateReviewer(context.Background(), primary.UpdateReviewerRequest{
			ReviewerID: id,
			UserID:     &userID,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), resp.Reviewer.UserID)
		assert.Equal(t, "bob", resp.Reviewer.Username)
		assert.Equal(t, logCall{"update", "reviewer", id, "user_id", "1", "2"}, f.logWriter.calls[len(f.logWriter.calls)-1])
	})

	t.Run("unknown user id fails validation", func(t *testing.T) {
		f := newTestReviewerService()
		id := f.createInvited(t, "alice")
		userID := int64(404)

		_, err := f.service.UpdateReviewer(context.Background(), primary.UpdateReviewerRequest{
			ReviewerID: id,
			UserID:     &userID,
		})
		assert.ErrorIs(t, err, corereviewer.ErrUserReferenceInvalid)
		assert.Equal(t, int64(1), f.repo.reviewers[id].UserID)
	})

	t.Run("username wins over user id", func(t *testing.T) {
		f := newTestReviewerService()
		id := f.createInvited(t, "alice")
		userID := int64(2)

		resp, err := f.service.UpdateReviewer(context.Background(), primary.UpdateReviewerRequest{
			ReviewerID: id,
			Username:   strPtr("carol"),
			UserID:     &userID,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(3), resp.Reviewer.UserID)
	})

	t.Run("unknown track on added preference", func(t *testing.T) {
		f := newTestReviewerService()
		id := f.createInvited(t, "alice")
		f.repo.missingTracks = map[int64]bool{99: true}

		_, err := f.service.UpdateReviewer(context.Background(), primary.UpdateReviewerRequest{
			ReviewerID:     id,
			AddPreferences: []primary.PreferenceInput{acceptedPref(99, 1)},
		})
		require.Error(t, err)
		assert.Equal(t, []error{corereviewer.ErrPreferenceUnknown}, fieldErrors(t, err, corereviewer.FieldPreferences))
		assert.Empty(t, f.repo.prefs[id])
	})
}

func TestReviewerService_DeleteReviewer(t *testing.T) {
	t.Run("accepted reviewer loses role", func(t *testing.T) {
		f := newTestReviewerService()
		id := f.createAccepted(t, "alice")

		require.NoError(t, f.service.DeleteReviewer(context.Background(), id))

		assert.NotContains(t, f.repo.reviewers, id)
		assert.Equal(t, []int64{1}, f.directory.revokes)
		hasRole, _ := f.directory.HasRole(context.Background(), 1, corereviewer.ReviewerRole)
		assert.False(t, hasRole)
		assert.Equal(t, "delete", f.logWriter.calls[len(f.logWriter.calls)-1].action)
	})

	t.Run("invited reviewer leaves roles alone", func(t *testing.T) {
		f := newTestReviewerService()
		id := f.createInvited(t, "alice")

		require.NoError(t, f.service.DeleteReviewer(context.Background(), id))
		assert.Empty(t, f.directory.revokes)
	})

	t.Run("missing reviewer", func(t *testing.T) {
		f := newTestReviewerService()

		err := f.service.DeleteReviewer(context.Background(), "REV-404")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "REV-404")
	})

	t.Run("revoke failure keeps the reviewer", func(t *testing.T) {
		f := newTestReviewerService()
		id := f.createAccepted(t, "alice")
		f.directory.revokeErr = errDirectoryDown

		err := f.service.DeleteReviewer(context.Background(), id)
		assert.ErrorIs(t, err, errDirectoryDown)
		assert.Contains(t, f.repo.reviewers, id)
	})

	t.Run("delete failure restores the role", func(t *testing.T) {
		f := newTestReviewerService()
		id := f.createAccepted(t, "alice")
		f.repo.deleteErr = errors.New("disk full")

		err := f.service.DeleteReviewer(context.Background(), id)
		require.Error(t, err)
		hasRole, _ := f.directory.HasRole(context.Background(), 1, corereviewer.ReviewerRole)
		assert.True(t, hasRole)
	})
}

func TestReviewerService_CanReview(t *testing.T) {
	f := newTestReviewerService()
	id := f.createInvited(t, "alice") // alice organizes track 10

	tests := []struct {
		name    string
		trackID int64
		want    bool
	}{
		{"organized track", 10, false},
		{"other track", 11, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.service.CanReview(context.Background(), id, tt.trackID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("organizer lookup failure", func(t *testing.T) {
		f.organizers.err = errDirectoryDown
		defer func() { f.organizers.err = nil }()

		_, err := f.service.CanReview(context.Background(), id, 11)
		assert.ErrorIs(t, err, errDirectoryDown)
	})
}

func TestReviewerService_ListReviewers(t *testing.T) {
	f := newTestReviewerService()
	ctx := context.Background()
	f.createAccepted(t, "alice")
	f.createInvited(t, "bob")

	all, err := f.service.ListReviewers(ctx, primary.ReviewerFilters{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	accepted, err := f.service.ListReviewers(ctx, primary.ReviewerFilters{State: "accepted"})
	require.NoError(t, err)
	require.Len(t, accepted, 1)
	assert.Equal(t, "alice", accepted[0].Username)

	byName, err := f.service.ListReviewers(ctx, primary.ReviewerFilters{Username: "bob"})
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "invited", byName[0].State)

	none, err := f.service.ListReviewers(ctx, primary.ReviewerFilters{Username: "nobody"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestReviewerService_SyncReviewerRoles(t *testing.T) {
	f := newTestReviewerService()
	ctx := context.Background()
	f.createAccepted(t, "alice")

	// alice lost the role out of band, carol holds it without a reviewer record
	require.NoError(t, f.directory.RevokeRole(ctx, 1, corereviewer.ReviewerRole))
	require.NoError(t, f.directory.GrantRole(ctx, 3, corereviewer.ReviewerRole))

	resp, err := f.service.SyncReviewerRoles(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, resp.Checked)
	assert.Equal(t, []int64{1}, resp.Granted)
	assert.Equal(t, []int64{3}, resp.Revoked)
}

func TestReviewerService_AuditFailureDoesNotFailOperation(t *testing.T) {
	f := newTestReviewerService()
	f.logWriter.err = errors.New("audit table locked")

	resp, err := f.service.CreateReviewer(context.Background(), primary.CreateReviewerRequest{Username: "alice"})
	require.NoError(t, err)
	assert.True(t, resp.Invited)
}
