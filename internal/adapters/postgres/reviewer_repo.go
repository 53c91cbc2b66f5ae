package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	corereviewer "github.com/example/confer/internal/core/reviewer"
	"github.com/example/confer/internal/ports/secondary"
)

// ReviewerRepository implements secondary.ReviewerRepository with PostgreSQL.
type ReviewerRepository struct {
	db *sql.DB
}

// NewReviewerRepository creates a new PostgreSQL reviewer repository.
func NewReviewerRepository(db *sql.DB) *ReviewerRepository {
	return &ReviewerRepository{db: db}
}

const reviewerColumns = `id, user_id, reviewer_agreement, state, invitation_token, invited_at, accepted_at, created_at, updated_at`

// Create persists a new reviewer and its preferences in one transaction.
func (r *ReviewerRepository) Create(ctx context.Context, reviewer *secondary.ReviewerRecord, prefs []*secondary.PreferenceRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO reviewers (id, user_id, reviewer_agreement, state, invitation_token, invited_at, accepted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		reviewer.ID,
		reviewer.UserID,
		reviewer.ReviewerAgreement,
		reviewer.State,
		nullString(reviewer.InvitationToken),
		nullString(reviewer.InvitedAt),
		nullString(reviewer.AcceptedAt),
	)
	if err != nil {
		return mapReviewerWriteError("create", err)
	}

	if err := insertPreferences(ctx, tx, reviewer.ID, prefs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return mapReviewerWriteError("commit", err)
	}
	return nil
}

// GetByID retrieves a reviewer by its ID.
func (r *ReviewerRepository) GetByID(ctx context.Context, id string) (*secondary.ReviewerRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+reviewerColumns+" FROM reviewers WHERE id = $1", id)
	record, err := scanReviewer(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("reviewer %s: %w", id, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reviewer: %w", err)
	}
	return record, nil
}

// GetByUserID retrieves the reviewer referencing a user.
func (r *ReviewerRepository) GetByUserID(ctx context.Context, userID int64) (*secondary.ReviewerRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+reviewerColumns+" FROM reviewers WHERE user_id = $1", userID)
	record, err := scanReviewer(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("reviewer for user %d: %w", userID, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reviewer: %w", err)
	}
	return record, nil
}

// List retrieves reviewers matching the given filters.
func (r *ReviewerRepository) List(ctx context.Context, filters secondary.ReviewerFilters) ([]*secondary.ReviewerRecord, error) {
	query := "SELECT " + reviewerColumns + " FROM reviewers WHERE 1=1"
	args := []any{}
	argPos := 1

	if filters.State != "" {
		query += fmt.Sprintf(" AND state = $%d", argPos)
		args = append(args, filters.State)
		argPos++
	}

	if filters.UserID != 0 {
		query += fmt.Sprintf(" AND user_id = $%d", argPos)
		args = append(args, filters.UserID)
		argPos++
	}

	query += " ORDER BY id"

	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argPos)
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviewers: %w", err)
	}
	defer rows.Close()

	var reviewers []*secondary.ReviewerRecord
	for rows.Next() {
		record, err := scanReviewer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reviewer: %w", err)
		}
		reviewers = append(reviewers, record)
	}
	return reviewers, rows.Err()
}

// Update writes the mutable columns and appends newPrefs in one transaction.
func (r *ReviewerRepository) Update(ctx context.Context, reviewer *secondary.ReviewerRecord, newPrefs []*secondary.PreferenceRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE reviewers SET user_id = $1, reviewer_agreement = $2, state = $3, invitation_token = $4,
		invited_at = $5, accepted_at = $6, updated_at = now() WHERE id = $7`,
		reviewer.UserID,
		reviewer.ReviewerAgreement,
		reviewer.State,
		nullString(reviewer.InvitationToken),
		nullString(reviewer.InvitedAt),
		nullString(reviewer.AcceptedAt),
		reviewer.ID,
	)
	if err != nil {
		return mapReviewerWriteError("update", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("reviewer %s: %w", reviewer.ID, secondary.ErrNotFound)
	}

	if err := insertPreferences(ctx, tx, reviewer.ID, newPrefs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return mapReviewerWriteError("commit", err)
	}
	return nil
}

// RemovePreferences deletes the given preferences of a reviewer.
func (r *ReviewerRepository) RemovePreferences(ctx context.Context, reviewerID string, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM preferences WHERE reviewer_id = $1 AND id = ANY($2)",
		reviewerID, pq.Array(ids),
	)
	if err != nil {
		return fmt.Errorf("failed to remove preferences: %w", err)
	}
	return nil
}

// Delete removes a reviewer; its preferences cascade.
func (r *ReviewerRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM reviewers WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete reviewer: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("reviewer %s: %w", id, secondary.ErrNotFound)
	}
	return nil
}

// GetPreferences retrieves a reviewer's preferences in insertion order.
func (r *ReviewerRepository) GetPreferences(ctx context.Context, reviewerID string) ([]*secondary.PreferenceRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, reviewer_id, track_id, audience_level_id, accepted FROM preferences WHERE reviewer_id = $1 ORDER BY id",
		reviewerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list preferences: %w", err)
	}
	defer rows.Close()

	var prefs []*secondary.PreferenceRecord
	for rows.Next() {
		var trackID, levelID sql.NullInt64
		p := &secondary.PreferenceRecord{}
		if err := rows.Scan(&p.ID, &p.ReviewerID, &trackID, &levelID, &p.Accepted); err != nil {
			return nil, fmt.Errorf("failed to scan preference: %w", err)
		}
		p.TrackID = trackID.Int64
		p.AudienceLevelID = levelID.Int64
		prefs = append(prefs, p)
	}
	return prefs, rows.Err()
}

// CountAccepted counts accepted reviewers referencing a user.
func (r *ReviewerRepository) CountAccepted(ctx context.Context, userID int64, excludeReviewerID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM reviewers WHERE user_id = $1 AND state = 'accepted' AND id <> $2",
		userID, excludeReviewerID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count accepted reviewers: %w", err)
	}
	return count, nil
}

// ListAcceptedUserIDs returns the distinct users with an accepted reviewer.
func (r *ReviewerRepository) ListAcceptedUserIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT DISTINCT user_id FROM reviewers WHERE state = 'accepted' ORDER BY user_id",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list accepted reviewers: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GetNextID returns the next available reviewer ID.
func (r *ReviewerRepository) GetNextID(ctx context.Context) (string, error) {
	var maxID int
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(CAST(SUBSTRING(id FROM 5) AS INTEGER)), 0) FROM reviewers",
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to get next reviewer ID: %w", err)
	}

	return corereviewer.GenerateReviewerID(maxID), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReviewer(row rowScanner) (*secondary.ReviewerRecord, error) {
	var (
		token      sql.NullString
		invitedAt  sql.NullString
		acceptedAt sql.NullString
		createdAt  time.Time
		updatedAt  time.Time
	)

	record := &secondary.ReviewerRecord{}
	err := row.Scan(
		&record.ID,
		&record.UserID,
		&record.ReviewerAgreement,
		&record.State,
		&token,
		&invitedAt,
		&acceptedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.InvitationToken = token.String
	record.InvitedAt = invitedAt.String
	record.AcceptedAt = acceptedAt.String
	record.CreatedAt = createdAt.UTC().Format(time.RFC3339)
	record.UpdatedAt = updatedAt.UTC().Format(time.RFC3339)
	return record, nil
}

func insertPreferences(ctx context.Context, tx *sql.Tx, reviewerID string, prefs []*secondary.PreferenceRecord) error {
	for _, p := range prefs {
		err := tx.QueryRowContext(ctx,
			"INSERT INTO preferences (reviewer_id, track_id, audience_level_id, accepted) VALUES ($1, $2, $3, $4) RETURNING id",
			reviewerID, nullInt64(p.TrackID), nullInt64(p.AudienceLevelID), p.Accepted,
		).Scan(&p.ID)
		if err != nil {
			return mapPreferenceWriteError(err)
		}
		p.ReviewerID = reviewerID
	}
	return nil
}

// Ensure ReviewerRepository implements the interface
var _ secondary.ReviewerRepository = (*ReviewerRepository)(nil)
