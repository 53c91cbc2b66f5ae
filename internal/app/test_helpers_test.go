package app

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/example/confer/internal/ports/secondary"
)

// Ensure the fakes implement their ports
var (
	_ secondary.ReviewerRepository = (*fakeReviewerRepository)(nil)
	_ secondary.UserDirectory      = (*fakeUserDirectory)(nil)
	_ secondary.OrganizerChecker   = (*fakeOrganizerChecker)(nil)
	_ secondary.NotificationPort   = (*recordingNotifier)(nil)
	_ secondary.LogWriter          = (*recordingLogWriter)(nil)
)

// fakeReviewerRepository is an in-memory ReviewerRepository that enforces the
// unique user reference like the real schema does.
type fakeReviewerRepository struct {
	reviewers  map[string]*secondary.ReviewerRecord
	prefs      map[string][]*secondary.PreferenceRecord
	nextPrefID int64

	// missingTracks are rejected the way a foreign key would reject them.
	missingTracks map[int64]bool

	createErr error
	updateErr error
	deleteErr error
}

func newFakeReviewerRepository() *fakeReviewerRepository {
	return &fakeReviewerRepository{
		reviewers:  make(map[string]*secondary.ReviewerRecord),
		prefs:      make(map[string][]*secondary.PreferenceRecord),
		nextPrefID: 1,
	}
}

func (m *fakeReviewerRepository) userTaken(userID int64, exceptID string) bool {
	for id, r := range m.reviewers {
		if id != exceptID && r.UserID == userID {
			return true
		}
	}
	return false
}

func (m *fakeReviewerRepository) checkPrefs(prefs []*secondary.PreferenceRecord) error {
	for _, p := range prefs {
		if m.missingTracks[p.TrackID] {
			return fmt.Errorf("track %d: %w", p.TrackID, secondary.ErrUnknownPreferenceTarget)
		}
	}
	return nil
}

func (m *fakeReviewerRepository) appendPrefs(reviewerID string, prefs []*secondary.PreferenceRecord) {
	for _, p := range prefs {
		p.ID = m.nextPrefID
		p.ReviewerID = reviewerID
		m.nextPrefID++
		cp := *p
		m.prefs[reviewerID] = append(m.prefs[reviewerID], &cp)
	}
}

func (m *fakeReviewerRepository) Create(ctx context.Context, reviewer *secondary.ReviewerRecord, prefs []*secondary.PreferenceRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	if m.userTaken(reviewer.UserID, "") {
		return secondary.ErrDuplicateUser
	}
	if err := m.checkPrefs(prefs); err != nil {
		return err
	}
	reviewer.CreatedAt = "2026-01-01T00:00:00Z"
	reviewer.UpdatedAt = reviewer.CreatedAt
	cp := *reviewer
	m.reviewers[reviewer.ID] = &cp
	m.appendPrefs(reviewer.ID, prefs)
	return nil
}

func (m *fakeReviewerRepository) GetByID(ctx context.Context, id string) (*secondary.ReviewerRecord, error) {
	r, ok := m.reviewers[id]
	if !ok {
		return nil, fmt.Errorf("reviewer %s: %w", id, secondary.ErrNotFound)
	}
	cp := *r
	return &cp, nil
}

func (m *fakeReviewerRepository) GetByUserID(ctx context.Context, userID int64) (*secondary.ReviewerRecord, error) {
	for _, r := range m.reviewers {
		if r.UserID == userID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("reviewer for user %d: %w", userID, secondary.ErrNotFound)
}

func (m *fakeReviewerRepository) List(ctx context.Context, filters secondary.ReviewerFilters) ([]*secondary.ReviewerRecord, error) {
	var result []*secondary.ReviewerRecord
	for _, r := range m.reviewers {
		if filters.State != "" && r.State != filters.State {
			continue
		}
		if filters.UserID != 0 && r.UserID != filters.UserID {
			continue
		}
		cp := *r
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	if filters.Limit > 0 && len(result) > filters.Limit {
		result = result[:filters.Limit]
	}
	return result, nil
}

func (m *fakeReviewerRepository) Update(ctx context.Context, reviewer *secondary.ReviewerRecord, newPrefs []*secondary.PreferenceRecord) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.reviewers[reviewer.ID]; !ok {
		return fmt.Errorf("reviewer %s: %w", reviewer.ID, secondary.ErrNotFound)
	}
	if m.userTaken(reviewer.UserID, reviewer.ID) {
		return secondary.ErrDuplicateUser
	}
	if err := m.checkPrefs(newPrefs); err != nil {
		return err
	}
	cp := *reviewer
	m.reviewers[reviewer.ID] = &cp
	m.appendPrefs(reviewer.ID, newPrefs)
	return nil
}

func (m *fakeReviewerRepository) RemovePreferences(ctx context.Context, reviewerID string, ids []int64) error {
	m.prefs[reviewerID] = slices.DeleteFunc(m.prefs[reviewerID], func(p *secondary.PreferenceRecord) bool {
		return slices.Contains(ids, p.ID)
	})
	return nil
}

func (m *fakeReviewerRepository) Delete(ctx context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.reviewers[id]; !ok {
		return fmt.Errorf("reviewer %s: %w", id, secondary.ErrNotFound)
	}
	delete(m.reviewers, id)
	delete(m.prefs, id)
	return nil
}

func (m *fakeReviewerRepository) GetPreferences(ctx context.Context, reviewerID string) ([]*secondary.PreferenceRecord, error) {
	var result []*secondary.PreferenceRecord
	for _, p := range m.prefs[reviewerID] {
		cp := *p
		result = append(result, &cp)
	}
	return result, nil
}

func (m *fakeReviewerRepository) CountAccepted(ctx context.Context, userID int64, excludeReviewerID string) (int, error) {
	count := 0
	for id, r := range m.reviewers {
		if id != excludeReviewerID && r.UserID == userID && r.State == "accepted" {
			count++
		}
	}
	return count, nil
}

func (m *fakeReviewerRepository) ListAcceptedUserIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	for _, r := range m.reviewers {
		if r.State == "accepted" && !slices.Contains(ids, r.UserID) {
			ids = append(ids, r.UserID)
		}
	}
	return ids, nil
}

func (m *fakeReviewerRepository) GetNextID(ctx context.Context) (string, error) {
	return fmt.Sprintf("REV-%03d", len(m.reviewers)+1), nil
}

// fakeUserDirectory is an in-memory UserDirectory.
type fakeUserDirectory struct {
	users     map[int64]*secondary.UserIdentity
	roles     map[int64]map[string]bool
	grantErr  error
	revokeErr error

	grants  []int64
	revokes []int64
}

func newFakeUserDirectory() *fakeUserDirectory {
	return &fakeUserDirectory{
		users: make(map[int64]*secondary.UserIdentity),
		roles: make(map[int64]map[string]bool),
	}
}

func (m *fakeUserDirectory) addUser(id int64, username, email string) {
	m.users[id] = &secondary.UserIdentity{ID: id, Username: username, Name: username, Email: email}
}

func (m *fakeUserDirectory) FindByID(ctx context.Context, id int64) (*secondary.UserIdentity, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, secondary.ErrNotFound)
	}
	return u, nil
}

func (m *fakeUserDirectory) FindByUsername(ctx context.Context, username string) (*secondary.UserIdentity, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", username, secondary.ErrNotFound)
}

func (m *fakeUserDirectory) GrantRole(ctx context.Context, userID int64, role string) error {
	if m.grantErr != nil {
		return m.grantErr
	}
	if m.roles[userID] == nil {
		m.roles[userID] = make(map[string]bool)
	}
	m.roles[userID][role] = true
	m.grants = append(m.grants, userID)
	return nil
}

func (m *fakeUserDirectory) RevokeRole(ctx context.Context, userID int64, role string) error {
	if m.revokeErr != nil {
		return m.revokeErr
	}
	delete(m.roles[userID], role)
	m.revokes = append(m.revokes, userID)
	return nil
}

func (m *fakeUserDirectory) HasRole(ctx context.Context, userID int64, role string) (bool, error) {
	return m.roles[userID][role], nil
}

func (m *fakeUserDirectory) ListUsersWithRole(ctx context.Context, role string) ([]int64, error) {
	var ids []int64
	for id, roles := range m.roles {
		if roles[role] {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// fakeOrganizerChecker answers from a user -> tracks map.
type fakeOrganizerChecker struct {
	tracks map[int64][]int64
	err    error
}

func (m *fakeOrganizerChecker) IsOrganizer(ctx context.Context, userID, trackID int64) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return slices.Contains(m.tracks[userID], trackID), nil
}

// recordingNotifier records every invitation it is asked to send.
type recordingNotifier struct {
	sent []secondary.ReviewerInvitation
}

func (m *recordingNotifier) SendReviewerInvitation(ctx context.Context, invitation secondary.ReviewerInvitation) {
	m.sent = append(m.sent, invitation)
}

type logCall struct {
	action, entityType, entityID, field, oldValue, newValue string
}

// recordingLogWriter records audit calls.
type recordingLogWriter struct {
	calls []logCall
	err   error
}

func (m *recordingLogWriter) LogCreate(ctx context.Context, entityType, entityID string) error {
	m.calls = append(m.calls, logCall{action: "create", entityType: entityType, entityID: entityID})
	return m.err
}

func (m *recordingLogWriter) LogUpdate(ctx context.Context, entityType, entityID, fieldName, oldValue, newValue string) error {
	m.calls = append(m.calls, logCall{"update", entityType, entityID, fieldName, oldValue, newValue})
	return m.err
}

func (m *recordingLogWriter) LogDelete(ctx context.Context, entityType, entityID string) error {
	m.calls = append(m.calls, logCall{action: "delete", entityType: entityType, entityID: entityID})
	return m.err
}

var errDirectoryDown = errors.New("directory unavailable")
