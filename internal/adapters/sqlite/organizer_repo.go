package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/confer/internal/ports/secondary"
)

// OrganizerRepository implements secondary.OrganizerChecker with SQLite.
type OrganizerRepository struct {
	db *sql.DB
}

// NewOrganizerRepository creates a new SQLite organizer repository.
func NewOrganizerRepository(db *sql.DB) *OrganizerRepository {
	return &OrganizerRepository{db: db}
}

// IsOrganizer reports whether the user organizes the track.
func (r *OrganizerRepository) IsOrganizer(ctx context.Context, userID, trackID int64) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM organizers WHERE user_id = ? AND track_id = ?",
		userID, trackID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check organizer: %w", err)
	}
	return count > 0, nil
}

// Ensure OrganizerRepository implements the interface
var _ secondary.OrganizerChecker = (*OrganizerRepository)(nil)
