package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/example/confer/internal/core/effects"
	corereviewer "github.com/example/confer/internal/core/reviewer"
	"github.com/example/confer/internal/ctxutil"
	"github.com/example/confer/internal/ports/primary"
	"github.com/example/confer/internal/ports/secondary"
)

const entityReviewer = "reviewer"

// ReviewerServiceImpl implements the ReviewerService interface.
type ReviewerServiceImpl struct {
	reviewerRepo secondary.ReviewerRepository
	directory    secondary.UserDirectory
	organizers   secondary.OrganizerChecker
	logWriter    secondary.LogWriter
	executor     EffectExecutor
	logger       *slog.Logger

	newToken func() string
	now      func() time.Time
}

// NewReviewerService creates a new ReviewerService with injected dependencies.
func NewReviewerService(
	reviewerRepo secondary.ReviewerRepository,
	directory secondary.UserDirectory,
	organizers secondary.OrganizerChecker,
	logWriter secondary.LogWriter,
	executor EffectExecutor,
	logger *slog.Logger,
) *ReviewerServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReviewerServiceImpl{
		reviewerRepo: reviewerRepo,
		directory:    directory,
		organizers:   organizers,
		logWriter:    logWriter,
		executor:     executor,
		logger:       logger,
		newToken:     uuid.NewString,
		now:          time.Now,
	}
}

// CreateReviewer validates and persists a reviewer, then fires invite.
func (s *ReviewerServiceImpl) CreateReviewer(ctx context.Context, req primary.CreateReviewerRequest) (*primary.CreateReviewerResponse, error) {
	// 1. Resolve the user reference and build the in-memory record
	resolution, err := s.resolveUser(ctx, req.Username, req.UserID)
	if err != nil {
		return nil, err
	}

	r := corereviewer.NewReviewer()
	r.SetUser(resolution)
	r.ReviewerAgreement = req.ReviewerAgreement
	for _, p := range req.Preferences {
		r.AddPreference(toCorePreference(p))
	}

	// 2. Validate; nothing is persisted and no transition fires on failure
	duplicateOf, err := s.duplicateOf(ctx, resolution)
	if err != nil {
		return nil, err
	}
	if errs := r.Validate(duplicateOf); !errs.Empty() {
		return nil, errs
	}

	// 3. Persist reviewer and preferences together
	nextID, err := s.reviewerRepo.GetNextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate reviewer ID: %w", err)
	}
	r.ID = nextID

	record := &secondary.ReviewerRecord{
		ID:                r.ID,
		UserID:            r.UserID(),
		ReviewerAgreement: r.ReviewerAgreement,
		State:             string(r.State),
	}
	if err := s.reviewerRepo.Create(ctx, record, toPreferenceRecords(r.ID, r.Preferences)); err != nil {
		if verrs := writeValidationErrors(err); verrs != nil {
			return nil, verrs
		}
		return nil, fmt.Errorf("failed to create reviewer: %w", err)
	}
	s.audit(ctx, func() error { return s.logWriter.LogCreate(ctx, entityReviewer, record.ID) })
	s.logger.InfoContext(ctx, "reviewer created",
		"actor", ctxutil.ActorFromContext(ctx),
		"reviewer_id", record.ID,
		"user_id", record.UserID,
	)

	// 4. First persistence always invites; a reviewer that cannot be invited is not kept
	resp, err := s.transition(ctx, record, r, corereviewer.EventInvite, nil)
	if err != nil {
		if derr := s.reviewerRepo.Delete(ctx, record.ID); derr != nil {
			s.logger.ErrorContext(ctx, "failed to remove uninvited reviewer", "reviewer_id", record.ID, "error", derr)
		} else {
			s.audit(ctx, func() error { return s.logWriter.LogDelete(ctx, entityReviewer, record.ID) })
		}
		return nil, err
	}

	reviewer, err := s.GetReviewer(ctx, record.ID)
	if err != nil {
		return nil, err
	}

	return &primary.CreateReviewerResponse{
		ReviewerID: record.ID,
		Reviewer:   reviewer,
		Invited:    resp.Fired,
	}, nil
}

// GetReviewer retrieves a reviewer by ID.
func (s *ReviewerServiceImpl) GetReviewer(ctx context.Context, reviewerID string) (*primary.Reviewer, error) {
	record, err := s.reviewerRepo.GetByID(ctx, reviewerID)
	if err != nil {
		return nil, fmt.Errorf("reviewer not found: %w", err)
	}
	return s.recordToReviewer(ctx, record)
}

// ListReviewers lists reviewers with optional filters.
func (s *ReviewerServiceImpl) ListReviewers(ctx context.Context, filters primary.ReviewerFilters) ([]*primary.Reviewer, error) {
	repoFilters := secondary.ReviewerFilters{
		State: filters.State,
		Limit: filters.Limit,
	}

	if name, ok := corereviewer.NormalizeUsername(filters.Username); ok {
		user, err := s.directory.FindByUsername(ctx, name)
		if errors.Is(err, secondary.ErrNotFound) {
			return []*primary.Reviewer{}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to look up user %s: %w", name, err)
		}
		repoFilters.UserID = user.ID
	}

	records, err := s.reviewerRepo.List(ctx, repoFilters)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviewers: %w", err)
	}

	reviewers := make([]*primary.Reviewer, 0, len(records))
	for _, record := range records {
		reviewer, err := s.recordToReviewer(ctx, record)
		if err != nil {
			return nil, err
		}
		reviewers = append(reviewers, reviewer)
	}
	return reviewers, nil
}

// UpdateReviewer changes mutable fields, re-validates, persists, then fires StateEvent.
func (s *ReviewerServiceImpl) UpdateReviewer(ctx context.Context, req primary.UpdateReviewerRequest) (*primary.TransitionResponse, error) {
	var event corereviewer.Event
	if req.StateEvent != "" {
		parsed, err := corereviewer.ParseEvent(req.StateEvent)
		if err != nil {
			return nil, err
		}
		event = parsed
	}

	record, r, err := s.load(ctx, req.ReviewerID)
	if err != nil {
		return nil, err
	}
	previous := *record

	if req.Username != nil || req.UserID != nil {
		var username string
		var userID int64
		if req.Username != nil {
			username = *req.Username
		} else {
			userID = *req.UserID
		}
		resolution, err := s.resolveUser(ctx, username, userID)
		if err != nil {
			return nil, err
		}
		r.SetUser(resolution)
	}
	if req.ReviewerAgreement != nil {
		r.ReviewerAgreement = *req.ReviewerAgreement
	}
	added := make([]corereviewer.Preference, 0, len(req.AddPreferences))
	for _, p := range req.AddPreferences {
		pref := toCorePreference(p)
		r.AddPreference(pref)
		added = append(added, pref)
	}

	duplicateOf, err := s.duplicateOf(ctx, r.User)
	if err != nil {
		return nil, err
	}
	if errs := r.Validate(duplicateOf); !errs.Empty() {
		return nil, errs
	}

	record.UserID = r.UserID()
	record.ReviewerAgreement = r.ReviewerAgreement
	newPrefs := toPreferenceRecords(record.ID, added)
	if err := s.reviewerRepo.Update(ctx, record, newPrefs); err != nil {
		if verrs := writeValidationErrors(err); verrs != nil {
			return nil, verrs
		}
		return nil, fmt.Errorf("failed to update reviewer: %w", err)
	}

	// An accepted reviewer moving between users carries the role with it.
	// The new user is granted first so a directory failure leaves the old user untouched.
	if previous.UserID != record.UserID && record.State == string(corereviewer.StateAccepted) {
		for _, userID := range []int64{record.UserID, previous.UserID} {
			if _, err := s.syncUserRole(ctx, userID, ""); err != nil {
				s.restore(ctx, &previous, newPrefs)
				s.resyncRoles(ctx, record.UserID, previous.UserID)
				return nil, fmt.Errorf("failed to sync reviewer role for user %d: %w", userID, err)
			}
		}
	}
	s.auditChanges(ctx, &previous, record, len(newPrefs))

	if event == "" {
		reviewer, err := s.recordToReviewer(ctx, record)
		if err != nil {
			return nil, err
		}
		return &primary.TransitionResponse{State: record.State, Reviewer: reviewer}, nil
	}
	return s.transition(ctx, record, r, event, nil)
}

// InviteReviewer fires the invite event.
func (s *ReviewerServiceImpl) InviteReviewer(ctx context.Context, reviewerID string) (*primary.TransitionResponse, error) {
	record, r, err := s.load(ctx, reviewerID)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, record, r, corereviewer.EventInvite, nil)
}

// AcceptReviewer fires the accept event after applying the supplied agreement and preferences.
// Supplied values are only persisted when the transition fires.
func (s *ReviewerServiceImpl) AcceptReviewer(ctx context.Context, req primary.AcceptReviewerRequest) (*primary.TransitionResponse, error) {
	record, r, err := s.load(ctx, req.ReviewerID)
	if err != nil {
		return nil, err
	}

	if req.ReviewerAgreement != nil {
		r.ReviewerAgreement = *req.ReviewerAgreement
	}
	added := make([]corereviewer.Preference, 0, len(req.Preferences))
	for _, p := range req.Preferences {
		pref := toCorePreference(p)
		r.AddPreference(pref)
		added = append(added, pref)
	}
	if errs := corereviewer.ValidatePreferences(r.Preferences); !errs.Empty() {
		return &primary.TransitionResponse{State: record.State, Errors: errs}, nil
	}

	return s.transition(ctx, record, r, corereviewer.EventAccept, toPreferenceRecords(record.ID, added))
}

// RejectReviewer fires the reject event.
func (s *ReviewerServiceImpl) RejectReviewer(ctx context.Context, reviewerID string) (*primary.TransitionResponse, error) {
	record, r, err := s.load(ctx, reviewerID)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, record, r, corereviewer.EventReject, nil)
}

// DeleteReviewer destroys a reviewer. For accepted reviewers the reviewer role is
// recomputed without this record before the row is removed.
func (s *ReviewerServiceImpl) DeleteReviewer(ctx context.Context, reviewerID string) error {
	// 1. Fetch reviewer
	record, err := s.reviewerRepo.GetByID(ctx, reviewerID)
	if err != nil && !errors.Is(err, secondary.ErrNotFound) {
		return fmt.Errorf("failed to get reviewer: %w", err)
	}

	// 2. Guard check
	deleteCtx := corereviewer.DeleteContext{
		ReviewerID:     reviewerID,
		ReviewerExists: record != nil,
	}
	if result := corereviewer.CanDeleteReviewer(deleteCtx); !result.Allowed {
		return result.Error()
	}

	// 3. Revoke before delete so a directory failure leaves both sides untouched
	var roleEffect effects.Effect = effects.NoEffect{}
	if record.State == string(corereviewer.StateAccepted) {
		roleEffect, err = s.syncUserRole(ctx, record.UserID, record.ID)
		if err != nil {
			return fmt.Errorf("failed to revoke reviewer role: %w", err)
		}
	}

	// 4. Delete, restoring the role if the row survives
	if err := s.reviewerRepo.Delete(ctx, reviewerID); err != nil {
		if role, ok := roleEffect.(effects.RoleEffect); ok && role.Operation == effects.RoleRevoke {
			restore := effects.RoleEffect{Operation: effects.RoleGrant, UserID: role.UserID, Role: role.Role}
			if rerr := s.executor.Execute(ctx, []effects.Effect{restore}); rerr != nil {
				s.logger.ErrorContext(ctx, "failed to restore reviewer role", "user_id", role.UserID, "error", rerr)
			}
		}
		return fmt.Errorf("failed to delete reviewer: %w", err)
	}

	s.audit(ctx, func() error { return s.logWriter.LogDelete(ctx, entityReviewer, reviewerID) })
	s.logger.InfoContext(ctx, "reviewer deleted",
		"actor", ctxutil.ActorFromContext(ctx),
		"reviewer_id", reviewerID,
		"state", record.State,
	)
	return nil
}

// CanReview reports whether the reviewer's user may review the track.
func (s *ReviewerServiceImpl) CanReview(ctx context.Context, reviewerID string, trackID int64) (bool, error) {
	_, r, err := s.load(ctx, reviewerID)
	if err != nil {
		return false, err
	}

	isOrganizer, err := s.organizers.IsOrganizer(ctx, r.UserID(), trackID)
	if err != nil {
		return false, fmt.Errorf("failed to check track organizers: %w", err)
	}
	return r.CanReview(trackID, isOrganizer), nil
}

// SyncReviewerRoles recomputes the reviewer role for every user that holds it or
// has an accepted reviewer record.
func (s *ReviewerServiceImpl) SyncReviewerRoles(ctx context.Context) (*primary.SyncRolesResponse, error) {
	accepted, err := s.reviewerRepo.ListAcceptedUserIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accepted reviewers: %w", err)
	}
	holders, err := s.directory.ListUsersWithRole(ctx, corereviewer.ReviewerRole)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviewer role holders: %w", err)
	}

	userIDs := append(slices.Clone(accepted), holders...)
	slices.Sort(userIDs)
	userIDs = slices.Compact(userIDs)

	resp := &primary.SyncRolesResponse{Checked: len(userIDs)}
	for _, userID := range userIDs {
		eff, err := s.syncUserRole(ctx, userID, "")
		if err != nil {
			return resp, fmt.Errorf("failed to sync reviewer role for user %d: %w", userID, err)
		}
		if role, ok := eff.(effects.RoleEffect); ok {
			switch role.Operation {
			case effects.RoleGrant:
				resp.Granted = append(resp.Granted, userID)
			case effects.RoleRevoke:
				resp.Revoked = append(resp.Revoked, userID)
			}
		}
	}

	s.logger.InfoContext(ctx, "reviewer roles synced",
		"actor", ctxutil.ActorFromContext(ctx),
		"checked", resp.Checked,
		"granted", len(resp.Granted),
		"revoked", len(resp.Revoked),
	)
	return resp, nil
}

// transition fires event on r and, when it fires, persists the new state with any
// new preferences and then executes the side effects. A failing side effect
// restores the previous row.
func (s *ReviewerServiceImpl) transition(
	ctx context.Context,
	record *secondary.ReviewerRecord,
	r *corereviewer.Reviewer,
	event corereviewer.Event,
	newPrefs []*secondary.PreferenceRecord,
) (*primary.TransitionResponse, error) {
	opts := corereviewer.FireOptions{}
	if event == corereviewer.EventInvite {
		opts.InvitationToken = s.newToken()
	}

	result := r.Fire(event, opts)
	if !result.Fired {
		s.logger.InfoContext(ctx, "reviewer transition refused",
			"actor", ctxutil.ActorFromContext(ctx),
			"reviewer_id", record.ID,
			"event", string(event),
			"state", string(result.From),
			"errors", result.Errors.Error(),
		)
		return &primary.TransitionResponse{State: string(result.From), Errors: result.Errors}, nil
	}

	previous := *record
	now := s.now().UTC().Format(time.RFC3339)
	record.State = string(result.To)
	record.ReviewerAgreement = r.ReviewerAgreement
	switch event {
	case corereviewer.EventInvite:
		record.InvitationToken = opts.InvitationToken
		record.InvitedAt = now
	case corereviewer.EventAccept:
		record.AcceptedAt = now
	}

	if err := s.reviewerRepo.Update(ctx, record, newPrefs); err != nil {
		*record = previous
		if verrs := writeValidationErrors(err); verrs != nil {
			return &primary.TransitionResponse{State: previous.State, Errors: verrs}, nil
		}
		return nil, fmt.Errorf("failed to save reviewer %s: %w", record.ID, err)
	}

	if err := s.executor.Execute(ctx, result.Effects); err != nil {
		s.restore(ctx, &previous, newPrefs)
		*record = previous
		return nil, fmt.Errorf("reviewer %s %s rolled back: %w", previous.ID, event, err)
	}

	if previous.State != record.State {
		s.audit(ctx, func() error {
			return s.logWriter.LogUpdate(ctx, entityReviewer, record.ID, "state", previous.State, record.State)
		})
	}
	s.logger.InfoContext(ctx, "reviewer transition",
		"actor", ctxutil.ActorFromContext(ctx),
		"reviewer_id", record.ID,
		"event", string(event),
		"from", string(result.From),
		"to", string(result.To),
	)

	reviewer, err := s.recordToReviewer(ctx, record)
	if err != nil {
		return nil, err
	}
	return &primary.TransitionResponse{Fired: true, State: record.State, Reviewer: reviewer}, nil
}

// restore writes back the pre-transition row. Preferences inserted with the
// transition are dropped by rewriting the row without them.
func (s *ReviewerServiceImpl) restore(ctx context.Context, previous *secondary.ReviewerRecord, newPrefs []*secondary.PreferenceRecord) {
	if err := s.reviewerRepo.Update(ctx, previous, nil); err != nil {
		s.logger.ErrorContext(ctx, "failed to restore reviewer", "reviewer_id", previous.ID, "error", err)
	}
	if len(newPrefs) == 0 {
		return
	}
	ids := make([]int64, 0, len(newPrefs))
	for _, p := range newPrefs {
		if p.ID != 0 {
			ids = append(ids, p.ID)
		}
	}
	if err := s.reviewerRepo.RemovePreferences(ctx, previous.ID, ids); err != nil {
		s.logger.ErrorContext(ctx, "failed to remove preferences", "reviewer_id", previous.ID, "error", err)
	}
}

// resyncRoles recomputes the role of each user after a rollback, logging failures.
func (s *ReviewerServiceImpl) resyncRoles(ctx context.Context, userIDs ...int64) {
	for _, userID := range userIDs {
		if _, err := s.syncUserRole(ctx, userID, ""); err != nil {
			s.logger.ErrorContext(ctx, "failed to restore reviewer role", "user_id", userID, "error", err)
		}
	}
}

// syncUserRole recomputes the reviewer role of one user and applies the change.
// excludeReviewerID leaves a record out of the count (one about to be destroyed).
func (s *ReviewerServiceImpl) syncUserRole(ctx context.Context, userID int64, excludeReviewerID string) (effects.Effect, error) {
	count, err := s.reviewerRepo.CountAccepted(ctx, userID, excludeReviewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count accepted reviewers: %w", err)
	}
	hasRole, err := s.directory.HasRole(ctx, userID, corereviewer.ReviewerRole)
	if err != nil {
		return nil, fmt.Errorf("failed to check reviewer role: %w", err)
	}

	eff := corereviewer.PlanRoleSync(corereviewer.RoleSyncContext{
		UserID:        userID,
		AcceptedCount: count,
		HasRole:       hasRole,
	})
	if err := s.executor.Execute(ctx, []effects.Effect{eff}); err != nil {
		return nil, err
	}
	return eff, nil
}

// resolveUser turns a username or user ID into a typed resolution.
// A non-blank username wins over the ID.
func (s *ReviewerServiceImpl) resolveUser(ctx context.Context, username string, userID int64) (corereviewer.UserResolution, error) {
	if name, ok := corereviewer.NormalizeUsername(username); ok {
		user, err := s.directory.FindByUsername(ctx, name)
		if errors.Is(err, secondary.ErrNotFound) {
			return corereviewer.NotFound(name), nil
		}
		if err != nil {
			return corereviewer.UserResolution{}, fmt.Errorf("failed to look up user %s: %w", name, err)
		}
		return corereviewer.Resolved(user.ID, user.Username), nil
	}

	if userID != 0 {
		user, err := s.directory.FindByID(ctx, userID)
		if errors.Is(err, secondary.ErrNotFound) {
			return corereviewer.InvalidID(userID), nil
		}
		if err != nil {
			return corereviewer.UserResolution{}, fmt.Errorf("failed to look up user %d: %w", userID, err)
		}
		res := corereviewer.Resolved(user.ID, user.Username)
		res.ByID = true
		return res, nil
	}

	return corereviewer.Cleared(), nil
}

// duplicateOf returns the ID of the reviewer already referencing the resolved user.
func (s *ReviewerServiceImpl) duplicateOf(ctx context.Context, res corereviewer.UserResolution) (string, error) {
	if res.Kind != corereviewer.ResolutionResolved {
		return "", nil
	}
	existing, err := s.reviewerRepo.GetByUserID(ctx, res.UserID)
	if errors.Is(err, secondary.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to check existing reviewers: %w", err)
	}
	return existing.ID, nil
}

// load fetches a persisted reviewer and rebuilds the in-memory record.
func (s *ReviewerServiceImpl) load(ctx context.Context, reviewerID string) (*secondary.ReviewerRecord, *corereviewer.Reviewer, error) {
	record, err := s.reviewerRepo.GetByID(ctx, reviewerID)
	if err != nil {
		return nil, nil, fmt.Errorf("reviewer not found: %w", err)
	}
	prefs, err := s.reviewerRepo.GetPreferences(ctx, reviewerID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get preferences: %w", err)
	}
	state, err := corereviewer.ParseState(record.State)
	if err != nil {
		return nil, nil, err
	}

	r := corereviewer.NewReviewer()
	r.ID = record.ID
	r.State = state
	r.ReviewerAgreement = record.ReviewerAgreement
	r.SetUser(corereviewer.Resolved(record.UserID, s.usernameOf(ctx, record.UserID)))
	for _, p := range prefs {
		r.AddPreference(corereviewer.Preference{
			TrackID:         p.TrackID,
			AudienceLevelID: p.AudienceLevelID,
			Accepted:        p.Accepted,
		})
	}
	return record, r, nil
}

func (s *ReviewerServiceImpl) usernameOf(ctx context.Context, userID int64) string {
	user, err := s.directory.FindByID(ctx, userID)
	if err != nil {
		return ""
	}
	return user.Username
}

func (s *ReviewerServiceImpl) audit(ctx context.Context, write func() error) {
	if s.logWriter == nil {
		return
	}
	if err := write(); err != nil {
		s.logger.WarnContext(ctx, "failed to write audit log", "error", err)
	}
}

func (s *ReviewerServiceImpl) auditChanges(ctx context.Context, before, after *secondary.ReviewerRecord, addedPrefs int) {
	if before.UserID != after.UserID {
		s.audit(ctx, func() error {
			return s.logWriter.LogUpdate(ctx, entityReviewer, after.ID, "user_id",
				strconv.FormatInt(before.UserID, 10), strconv.FormatInt(after.UserID, 10))
		})
	}
	if before.ReviewerAgreement != after.ReviewerAgreement {
		s.audit(ctx, func() error {
			return s.logWriter.LogUpdate(ctx, entityReviewer, after.ID, "reviewer_agreement",
				strconv.FormatBool(before.ReviewerAgreement), strconv.FormatBool(after.ReviewerAgreement))
		})
	}
	if addedPrefs > 0 {
		s.audit(ctx, func() error {
			return s.logWriter.LogUpdate(ctx, entityReviewer, after.ID, "preferences", "", fmt.Sprintf("+%d", addedPrefs))
		})
	}
}

// Helper methods

func (s *ReviewerServiceImpl) recordToReviewer(ctx context.Context, r *secondary.ReviewerRecord) (*primary.Reviewer, error) {
	prefs, err := s.reviewerRepo.GetPreferences(ctx, r.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}
	hasRole, err := s.directory.HasRole(ctx, r.UserID, corereviewer.ReviewerRole)
	if err != nil {
		return nil, fmt.Errorf("failed to check reviewer role: %w", err)
	}

	reviewer := &primary.Reviewer{
		ID:                r.ID,
		UserID:            r.UserID,
		Username:          s.usernameOf(ctx, r.UserID),
		ReviewerAgreement: r.ReviewerAgreement,
		State:             r.State,
		HasReviewerRole:   hasRole,
		AvailableEvents:   availableEvents(r.State),
		Preferences:       make([]*primary.Preference, len(prefs)),
		InvitedAt:         r.InvitedAt,
		AcceptedAt:        r.AcceptedAt,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
	for i, p := range prefs {
		reviewer.Preferences[i] = &primary.Preference{
			ID:              p.ID,
			TrackID:         p.TrackID,
			AudienceLevelID: p.AudienceLevelID,
			Accepted:        p.Accepted,
		}
	}
	return reviewer, nil
}

func availableEvents(state string) []string {
	parsed, err := corereviewer.ParseState(state)
	if err != nil || parsed.IsTerminal() {
		return nil
	}
	events := corereviewer.AvailableEvents(parsed)
	names := make([]string, len(events))
	for i, e := range events {
		names[i] = string(e)
	}
	return names
}

func toCorePreference(p primary.PreferenceInput) corereviewer.Preference {
	return corereviewer.Preference{
		TrackID:         p.TrackID,
		AudienceLevelID: p.AudienceLevelID,
		Accepted:        p.Accepted,
	}
}

func toPreferenceRecords(reviewerID string, prefs []corereviewer.Preference) []*secondary.PreferenceRecord {
	records := make([]*secondary.PreferenceRecord, len(prefs))
	for i, p := range prefs {
		records[i] = &secondary.PreferenceRecord{
			ReviewerID:      reviewerID,
			TrackID:         p.TrackID,
			AudienceLevelID: p.AudienceLevelID,
			Accepted:        p.Accepted,
		}
	}
	return records
}

// writeValidationErrors maps constraint violations reported by the repository on
// write to field errors. Other errors yield nil.
func writeValidationErrors(err error) corereviewer.ValidationErrors {
	var errs corereviewer.ValidationErrors
	switch {
	case errors.Is(err, secondary.ErrDuplicateUser):
		errs.Add(corereviewer.FieldUserUsername, corereviewer.ErrDuplicateUser)
	case errors.Is(err, secondary.ErrUnknownPreferenceTarget):
		errs.Add(corereviewer.FieldPreferences, corereviewer.ErrPreferenceUnknown)
	}
	return errs
}

// Ensure ReviewerServiceImpl implements the interface
var _ primary.ReviewerService = (*ReviewerServiceImpl)(nil)
